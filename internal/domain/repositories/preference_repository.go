package repositories

import (
	"context"

	"github.com/google/uuid"
	"paylink.backend/internal/domain/entities"
)

// PreferenceRepository defines settlement-preference persistence. Replace
// swaps all fields atomically; there is no partial update.
type PreferenceRepository interface {
	GetByIdentity(ctx context.Context, identityID uuid.UUID) (*entities.SettlementPreference, error)
	Replace(ctx context.Context, pref *entities.SettlementPreference) error
}
