package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/domain/repositories"
	"paylink.backend/internal/infrastructure/models"
)

// preferenceRepo implements repositories.PreferenceRepository
type preferenceRepo struct {
	db *gorm.DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *gorm.DB) repositories.PreferenceRepository {
	return &preferenceRepo{db: db}
}

func (r *preferenceRepo) GetByIdentity(ctx context.Context, identityID uuid.UUID) (*entities.SettlementPreference, error) {
	var m models.SettlementPreference
	if err := getDB(ctx, r.db).First(&m, "identity_id = ?", identityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.SettlementPreference{
		IdentityID:  m.IdentityID,
		NetworkID:   m.NetworkID,
		AssetSymbol: m.AssetSymbol,
		Address:     m.Address,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// Replace upserts the whole preference row. All three settlement fields are
// written together so a reader never sees a partially updated preference.
func (r *preferenceRepo) Replace(ctx context.Context, pref *entities.SettlementPreference) error {
	m := &models.SettlementPreference{
		IdentityID:  pref.IdentityID,
		NetworkID:   pref.NetworkID,
		AssetSymbol: pref.AssetSymbol,
		Address:     pref.Address,
		UpdatedAt:   time.Now(),
	}
	return getDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"network_id", "asset_symbol", "address", "updated_at"}),
	}).Create(m).Error
}
