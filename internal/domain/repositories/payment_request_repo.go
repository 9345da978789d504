package repositories

import (
	"context"

	"github.com/google/uuid"
	"paylink.backend/internal/domain/entities"
)

// PaymentRequestRepository defines payment-request persistence. Requests are
// append-only: there is no delete and status updates only move pending
// requests to a terminal state.
type PaymentRequestRepository interface {
	Create(ctx context.Context, request *entities.PaymentRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.PaymentRequest, error)
	ListByIdentity(ctx context.Context, identityID uuid.UUID, direction entities.RequestDirection, statusFilter *entities.PaymentRequestStatus, limit, offset int) ([]*entities.PaymentRequest, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.PaymentRequestStatus) error
	MarkAccepted(ctx context.Context, id uuid.UUID, txHash string) error
	GetExpiredPending(ctx context.Context, limit int) ([]*entities.PaymentRequest, error)
	ExpireRequests(ctx context.Context, ids []uuid.UUID) error
}
