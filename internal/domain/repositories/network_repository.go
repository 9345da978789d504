package repositories

import (
	"context"

	"paylink.backend/internal/domain/entities"
)

// NetworkRepository defines network and asset reference-data operations.
// The registry snapshots this data at startup; mutation endpoints exist for
// operators only.
type NetworkRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Network, error)
	GetAll(ctx context.Context) ([]*entities.Network, error)
	GetAssets(ctx context.Context, networkID string) ([]*entities.Asset, error)
	GetAllAssets(ctx context.Context) ([]*entities.Asset, error)
	CreateNetwork(ctx context.Context, network *entities.Network) error
	CreateAsset(ctx context.Context, asset *entities.Asset) error
}
