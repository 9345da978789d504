package models

import (
	"time"

	"github.com/google/uuid"
)

// SettlementPreference is one row per identity, replaced wholesale on update.
// No soft delete: losing a preference silently would break payments, and an
// explicit replacement is the only supported mutation.
type SettlementPreference struct {
	IdentityID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	NetworkID   string    `gorm:"type:varchar(100);not null"`
	AssetSymbol string    `gorm:"type:varchar(20);not null"`
	Address     string    `gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SettlementPreference) TableName() string {
	return "settlement_preferences"
}
