package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Identity represents a social-platform identity with an account on this
// service. The handle is the public name other identities pay to.
type Identity struct {
	ID           uuid.UUID `json:"id"`
	Handle       string    `json:"handle"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Wallets []*IdentityWallet `json:"wallets,omitempty"`
}

// IdentityWallet is a verified wallet address owned by an identity on one
// network.
type IdentityWallet struct {
	ID         uuid.UUID `json:"id"`
	IdentityID uuid.UUID `json:"identityId"`
	NetworkID  string    `json:"networkId"`
	Address    string    `json:"address"`
	IsPrimary  bool      `json:"isPrimary"`
	VerifiedAt null.Time `json:"verifiedAt,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RegisterIdentityInput is the payload for creating an identity
type RegisterIdentityInput struct {
	Handle      string `json:"handle" binding:"required"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password" binding:"required,min=8"`
}
