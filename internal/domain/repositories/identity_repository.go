package repositories

import (
	"context"

	"github.com/google/uuid"
	"paylink.backend/internal/domain/entities"
)

// IdentityRepository defines identity and social-graph wallet lookups
type IdentityRepository interface {
	Create(ctx context.Context, identity *entities.Identity) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Identity, error)
	GetByHandle(ctx context.Context, handle string) (*entities.Identity, error)
	GetWallets(ctx context.Context, identityID uuid.UUID) ([]*entities.IdentityWallet, error)
	GetWalletByNetwork(ctx context.Context, identityID uuid.UUID, networkID string) (*entities.IdentityWallet, error)
	AddWallet(ctx context.Context, wallet *entities.IdentityWallet) error
}
