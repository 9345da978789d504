package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/domain/repositories"
	"paylink.backend/internal/infrastructure/models"
	"paylink.backend/pkg/utils"
)

// identityRepo implements repositories.IdentityRepository
type identityRepo struct {
	db *gorm.DB
}

// NewIdentityRepository creates a new identity repository
func NewIdentityRepository(db *gorm.DB) repositories.IdentityRepository {
	return &identityRepo{db: db}
}

func (r *identityRepo) Create(ctx context.Context, identity *entities.Identity) error {
	if identity.ID == uuid.Nil {
		identity.ID = utils.GenerateUUIDv7()
	}
	m := &models.Identity{
		ID:           identity.ID,
		Handle:       strings.ToLower(identity.Handle),
		DisplayName:  identity.DisplayName,
		PasswordHash: identity.PasswordHash,
	}
	if err := getDB(ctx, r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *identityRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Identity, error) {
	var m models.Identity
	if err := getDB(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *identityRepo) GetByHandle(ctx context.Context, handle string) (*entities.Identity, error) {
	var m models.Identity
	if err := getDB(ctx, r.db).
		Preload("Wallets").
		Where("handle = ?", strings.ToLower(strings.TrimSpace(handle))).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *identityRepo) GetWallets(ctx context.Context, identityID uuid.UUID) ([]*entities.IdentityWallet, error) {
	var ms []models.IdentityWallet
	if err := getDB(ctx, r.db).
		Where("identity_id = ?", identityID).
		Order("is_primary DESC, created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var wallets []*entities.IdentityWallet
	for _, m := range ms {
		model := m
		wallets = append(wallets, walletToEntity(&model))
	}
	return wallets, nil
}

func (r *identityRepo) GetWalletByNetwork(ctx context.Context, identityID uuid.UUID, networkID string) (*entities.IdentityWallet, error) {
	var m models.IdentityWallet
	if err := getDB(ctx, r.db).
		Where("identity_id = ? AND network_id = ?", identityID, networkID).
		Order("is_primary DESC").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return walletToEntity(&m), nil
}

func (r *identityRepo) AddWallet(ctx context.Context, wallet *entities.IdentityWallet) error {
	if wallet.ID == uuid.Nil {
		wallet.ID = utils.GenerateUUIDv7()
	}
	m := &models.IdentityWallet{
		ID:         wallet.ID,
		IdentityID: wallet.IdentityID,
		NetworkID:  wallet.NetworkID,
		Address:    wallet.Address,
		IsPrimary:  wallet.IsPrimary,
	}
	if wallet.VerifiedAt.Valid {
		t := wallet.VerifiedAt.Time
		m.VerifiedAt = &t
	}
	return getDB(ctx, r.db).Create(m).Error
}

func (r *identityRepo) toEntity(m *models.Identity) *entities.Identity {
	e := &entities.Identity{
		ID:           m.ID,
		Handle:       m.Handle,
		DisplayName:  m.DisplayName,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	for _, w := range m.Wallets {
		wallet := w
		e.Wallets = append(e.Wallets, walletToEntity(&wallet))
	}
	return e
}

func walletToEntity(m *models.IdentityWallet) *entities.IdentityWallet {
	e := &entities.IdentityWallet{
		ID:         m.ID,
		IdentityID: m.IdentityID,
		NetworkID:  m.NetworkID,
		Address:    m.Address,
		IsPrimary:  m.IsPrimary,
		CreatedAt:  m.CreatedAt,
	}
	if m.VerifiedAt != nil {
		e.VerifiedAt = null.TimeFrom(*m.VerifiedAt)
	}
	return e
}
