package usecases

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/domain/repositories"
)

// PreferenceUsecase handles settlement-preference reads and atomic
// replacements. Unknown network/asset combinations are rejected here, at the
// boundary, so the orchestrator never sees them.
type PreferenceUsecase struct {
	preferenceRepo repositories.PreferenceRepository
	registry       *Registry
}

// NewPreferenceUsecase creates a new preference usecase
func NewPreferenceUsecase(preferenceRepo repositories.PreferenceRepository, registry *Registry) *PreferenceUsecase {
	return &PreferenceUsecase{
		preferenceRepo: preferenceRepo,
		registry:       registry,
	}
}

// Get returns the identity's stored settlement preference
func (u *PreferenceUsecase) Get(ctx context.Context, identityID uuid.UUID) (*entities.SettlementPreference, error) {
	return u.preferenceRepo.GetByIdentity(ctx, identityID)
}

// Update atomically replaces all three preference fields
func (u *PreferenceUsecase) Update(ctx context.Context, identityID uuid.UUID, input *entities.UpdatePreferenceInput) (*entities.SettlementPreference, error) {
	network, err := u.registry.LookupNetwork(input.NetworkID)
	if err != nil {
		return nil, domainerrors.ErrUnsupportedNetwork
	}
	asset, err := u.registry.LookupAsset(input.NetworkID, input.AssetSymbol)
	if err != nil {
		return nil, domainerrors.ErrUnsupportedAsset
	}

	address := strings.TrimSpace(input.Address)
	if address == "" || containsEllipsis(address) {
		return nil, domainerrors.Validation("address must be a complete, untruncated string")
	}
	if !addressMatchesNetworkType(address, network.NetworkType) {
		return nil, domainerrors.Validation("address does not match the network's address convention")
	}

	pref := &entities.SettlementPreference{
		IdentityID:  identityID,
		NetworkID:   network.ID,
		AssetSymbol: asset.Symbol,
		Address:     address,
	}
	if err := u.preferenceRepo.Replace(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}
