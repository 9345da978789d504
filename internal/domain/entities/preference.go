package entities

import (
	"time"

	"github.com/google/uuid"
)

// SettlementPreference is a receiver's stored choice of where incoming
// payments should land. The three fields are always replaced together; a
// partially updated preference is never persisted.
type SettlementPreference struct {
	IdentityID  uuid.UUID `json:"identityId"`
	NetworkID   string    `json:"networkId"`
	AssetSymbol string    `json:"assetSymbol"`
	Address     string    `json:"address"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UpdatePreferenceInput is the payload for replacing a settlement preference
type UpdatePreferenceInput struct {
	NetworkID   string `json:"networkId" binding:"required"`
	AssetSymbol string `json:"assetSymbol" binding:"required"`
	Address     string `json:"address" binding:"required"`
}
