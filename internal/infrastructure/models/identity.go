package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Identity struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Handle       string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	DisplayName  string    `gorm:"type:varchar(100)"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	Wallets []IdentityWallet `gorm:"foreignKey:IdentityID"`
}

func (Identity) TableName() string {
	return "identities"
}

type IdentityWallet struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	IdentityID uuid.UUID `gorm:"type:uuid;not null;index"`
	NetworkID  string    `gorm:"type:varchar(100);not null;index"`
	Address    string    `gorm:"type:varchar(255);not null"`
	IsPrimary  bool      `gorm:"default:false"`
	VerifiedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}
