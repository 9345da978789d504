package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"paylink.backend/internal/domain/repositories"
	"paylink.backend/internal/observability"
	"paylink.backend/pkg/logger"
)

const expiryBatchSize = 100

// PaymentRequestExpiryJob periodically moves pending requests past their
// expiry time to the expired status.
type PaymentRequestExpiryJob struct {
	repo     repositories.PaymentRequestRepository
	interval time.Duration
	stop     chan struct{}
}

// NewPaymentRequestExpiryJob creates an expiry job with the given sweep
// interval.
func NewPaymentRequestExpiryJob(repo repositories.PaymentRequestRepository, interval time.Duration) *PaymentRequestExpiryJob {
	return &PaymentRequestExpiryJob{
		repo:     repo,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is called
func (j *PaymentRequestExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "payment request expiry job started",
		zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "payment request expiry job stopped")
			return
		case <-j.stop:
			logger.Info(ctx, "payment request expiry job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

// Stop signals the loop to exit
func (j *PaymentRequestExpiryJob) Stop() {
	close(j.stop)
}

func (j *PaymentRequestExpiryJob) sweep(ctx context.Context) {
	expired, err := j.repo.GetExpiredPending(ctx, expiryBatchSize)
	if err != nil {
		logger.Error(ctx, "could not fetch expired payment requests", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(expired))
	for _, request := range expired {
		ids = append(ids, request.ID)
	}

	if err := j.repo.ExpireRequests(ctx, ids); err != nil {
		logger.Error(ctx, "could not expire payment requests", zap.Error(err))
		return
	}

	observability.Payments().RequestsExpired.Add(float64(len(ids)))
	logger.Info(ctx, "expired payment requests", zap.Int("count", len(ids)))
}
