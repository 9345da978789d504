package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/domain/repositories"
	"paylink.backend/internal/infrastructure/models"
	"paylink.backend/pkg/utils"
)

// PaymentRequestRepositoryImpl implements repositories.PaymentRequestRepository
type PaymentRequestRepositoryImpl struct {
	db *gorm.DB
}

// NewPaymentRequestRepository creates a new payment request repository
func NewPaymentRequestRepository(db *gorm.DB) *PaymentRequestRepositoryImpl {
	return &PaymentRequestRepositoryImpl{db: db}
}

var _ repositories.PaymentRequestRepository = (*PaymentRequestRepositoryImpl)(nil)

func (r *PaymentRequestRepositoryImpl) Create(ctx context.Context, req *entities.PaymentRequest) error {
	if req.ID == uuid.Nil {
		req.ID = utils.GenerateUUIDv7()
	}
	m := &models.PaymentRequest{
		ID:              req.ID,
		PayerIdentityID: req.PayerIdentityID,
		PayeeIdentityID: req.PayeeIdentityID,
		Amount:          req.Amount,
		Note:            req.Note,
		Status:          string(req.Status),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if req.OverrideNetworkID.Valid {
		v := req.OverrideNetworkID.String
		m.OverrideNetworkID = &v
	}
	if req.OverrideAssetSymbol.Valid {
		v := req.OverrideAssetSymbol.String
		m.OverrideAssetSymbol = &v
	}
	if req.OverrideAddress.Valid {
		v := req.OverrideAddress.String
		m.OverrideAddress = &v
	}
	if req.ExpiresAt.Valid {
		t := req.ExpiresAt.Time
		m.ExpiresAt = &t
	}
	return getDB(ctx, r.db).Create(m).Error
}

func (r *PaymentRequestRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.PaymentRequest, error) {
	var m models.PaymentRequest
	if err := getDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *PaymentRequestRepositoryImpl) ListByIdentity(
	ctx context.Context,
	identityID uuid.UUID,
	direction entities.RequestDirection,
	statusFilter *entities.PaymentRequestStatus,
	limit, offset int,
) ([]*entities.PaymentRequest, int64, error) {
	column := "payee_identity_id"
	if direction == entities.RequestDirectionReceived {
		column = "payer_identity_id"
	}

	query := getDB(ctx, r.db).Model(&models.PaymentRequest{}).Where(column+" = ?", identityID)
	if statusFilter != nil {
		query = query.Where("status = ?", string(*statusFilter))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.PaymentRequest
	if err := query.
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var requests []*entities.PaymentRequest
	for _, m := range ms {
		model := m
		requests = append(requests, r.toEntity(&model))
	}
	return requests, total, nil
}

// UpdateStatus moves a pending request to a terminal status. The pending
// guard in the WHERE clause makes terminal states sticky at the storage
// layer, not just in usecase checks.
func (r *PaymentRequestRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.PaymentRequestStatus) error {
	res := getDB(ctx, r.db).Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", id, entities.PaymentRequestStatusPending).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrRequestNotPending
	}
	return nil
}

func (r *PaymentRequestRepositoryImpl) MarkAccepted(ctx context.Context, id uuid.UUID, txHash string) error {
	now := time.Now()
	res := getDB(ctx, r.db).Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", id, entities.PaymentRequestStatusPending).
		Updates(map[string]interface{}{
			"status":          string(entities.PaymentRequestStatusAccepted),
			"settled_tx_hash": txHash,
			"updated_at":      now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrRequestNotPending
	}
	return nil
}

func (r *PaymentRequestRepositoryImpl) GetExpiredPending(ctx context.Context, limit int) ([]*entities.PaymentRequest, error) {
	var ms []models.PaymentRequest
	if err := getDB(ctx, r.db).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", entities.PaymentRequestStatusPending, time.Now()).
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var requests []*entities.PaymentRequest
	for _, m := range ms {
		model := m
		requests = append(requests, r.toEntity(&model))
	}
	return requests, nil
}

func (r *PaymentRequestRepositoryImpl) ExpireRequests(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return getDB(ctx, r.db).Model(&models.PaymentRequest{}).
		Where("id IN ? AND status = ?", ids, entities.PaymentRequestStatusPending).
		Updates(map[string]interface{}{
			"status":     string(entities.PaymentRequestStatusExpired),
			"updated_at": time.Now(),
		}).Error
}

func (r *PaymentRequestRepositoryImpl) toEntity(m *models.PaymentRequest) *entities.PaymentRequest {
	e := &entities.PaymentRequest{
		ID:              m.ID,
		PayerIdentityID: m.PayerIdentityID,
		PayeeIdentityID: m.PayeeIdentityID,
		Amount:          m.Amount,
		Note:            m.Note,
		Status:          entities.PaymentRequestStatus(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.OverrideNetworkID != nil {
		e.OverrideNetworkID = null.StringFrom(*m.OverrideNetworkID)
	}
	if m.OverrideAssetSymbol != nil {
		e.OverrideAssetSymbol = null.StringFrom(*m.OverrideAssetSymbol)
	}
	if m.OverrideAddress != nil {
		e.OverrideAddress = null.StringFrom(*m.OverrideAddress)
	}
	if m.SettledTxHash != nil {
		e.SettledTxHash = null.StringFrom(*m.SettledTxHash)
	}
	if m.ExpiresAt != nil {
		e.ExpiresAt = null.TimeFrom(*m.ExpiresAt)
	}
	return e
}
