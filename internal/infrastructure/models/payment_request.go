package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentRequest rows are append-only: no DeletedAt column on purpose, the
// table is the audit trail.
type PaymentRequest struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	PayerIdentityID     uuid.UUID `gorm:"type:uuid;not null;index"`
	PayeeIdentityID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount              string    `gorm:"type:decimal(36,18);not null"`
	Note                string    `gorm:"type:text"`
	Status              string    `gorm:"type:varchar(20);not null;index"`
	OverrideNetworkID   *string   `gorm:"type:varchar(100)"`
	OverrideAssetSymbol *string   `gorm:"type:varchar(20)"`
	OverrideAddress     *string   `gorm:"type:varchar(255)"`
	SettledTxHash       *string   `gorm:"type:varchar(255)"`
	ExpiresAt           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
