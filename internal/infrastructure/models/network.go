package models

import (
	"time"

	"gorm.io/gorm"
)

type Network struct {
	ID              string `gorm:"type:varchar(100);primaryKey"` // CAIP-2 style id
	DisplayName     string `gorm:"type:varchar(100);not null"`
	NetworkType     string `gorm:"type:varchar(20);not null;default:'EVM'"`
	NativeCurrency  string `gorm:"type:varchar(20);not null"`
	GatewayAddress  string `gorm:"type:varchar(255);not null"`
	FinalitySeconds int    `gorm:"default:0"`
	IsActive        bool   `gorm:"default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`

	// Relations
	RPCs      []NetworkRPC      `gorm:"foreignKey:NetworkID"`
	Explorers []NetworkExplorer `gorm:"foreignKey:NetworkID"`
	Aliases   []NetworkAlias    `gorm:"foreignKey:NetworkID"`
	Assets    []Asset           `gorm:"foreignKey:NetworkID"`
}

type NetworkRPC struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	NetworkID string `gorm:"type:varchar(100);not null;index"`
	URL       string `gorm:"type:text;not null"`
	Priority  int    `gorm:"default:0"`
	IsActive  bool   `gorm:"default:true;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type NetworkExplorer struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	NetworkID string `gorm:"type:varchar(100);not null;index"`
	URL       string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// NetworkAlias maps an external provider name (e.g. "BASE", "polygon-pos")
// back to the internal network id. One row per alias keeps the mapping
// bidirectional without a second table to drift.
type NetworkAlias struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	NetworkID string `gorm:"type:varchar(100);not null;index"`
	Alias     string `gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedAt time.Time
}

type Asset struct {
	ID              uint    `gorm:"primaryKey;autoIncrement"`
	NetworkID       string  `gorm:"type:varchar(100);not null;index:idx_assets_network_symbol,unique"`
	Symbol          string  `gorm:"type:varchar(20);not null;index:idx_assets_network_symbol,unique"`
	DisplayName     string  `gorm:"type:varchar(100);not null"`
	Decimals        int     `gorm:"not null"`
	ContractAddress string  `gorm:"type:varchar(255);not null"`
	PriceFeedID     *string `gorm:"type:varchar(100)"`
	IsStablecoin    bool    `gorm:"default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}
