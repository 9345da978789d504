package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/interfaces/http/middleware"
	"paylink.backend/internal/interfaces/http/response"
	"paylink.backend/internal/usecases"
	"paylink.backend/pkg/logger"
)

// attemptRetention is how long a finished attempt stays pollable before it is
// dropped from memory.
const attemptRetention = 30 * time.Minute

// SessionProvider derives a wallet session bound to a network
type SessionProvider interface {
	Session(networkID string) (*entities.WalletSession, error)
}

type attemptEntry struct {
	owner   uuid.UUID
	attempt *entities.PaymentAttempt
}

// PaymentHandler drives payment attempts through the orchestrator. Attempts
// run in the background; the handler hands out an attempt ID the client polls
// and can cancel with. Attempts are visible only to the identity that started
// them, and terminal attempts are evicted after a retention window.
type PaymentHandler struct {
	orchestrator *usecases.PaymentOrchestrator
	sessions     SessionProvider
	retention    time.Duration

	mu       sync.RWMutex
	attempts map[uuid.UUID]attemptEntry
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(orchestrator *usecases.PaymentOrchestrator, sessions SessionProvider) *PaymentHandler {
	return &PaymentHandler{
		orchestrator: orchestrator,
		sessions:     sessions,
		retention:    attemptRetention,
		attempts:     make(map[uuid.UUID]attemptEntry),
	}
}

type initiatePaymentRequest struct {
	RequestID         string `json:"requestId"`
	ReceiverHandle    string `json:"receiverHandle"`
	SourceNetworkID   string `json:"sourceNetworkId" binding:"required"`
	SourceAssetSymbol string `json:"sourceAssetSymbol" binding:"required"`
	Amount            string `json:"amount"`
}

// Initiate starts a payment attempt
// POST /api/v1/payments
func (h *PaymentHandler) Initiate(c *gin.Context) {
	identityID, ok := middleware.GetIdentityID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	order := usecases.PaymentOrder{
		InitiatorID:       identityID,
		ReceiverHandle:    req.ReceiverHandle,
		SourceNetworkID:   req.SourceNetworkID,
		SourceAssetSymbol: req.SourceAssetSymbol,
		Amount:            req.Amount,
	}

	if req.RequestID != "" {
		requestID, err := uuid.Parse(req.RequestID)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("invalid request ID"))
			return
		}
		order.RequestID = requestID
	} else if req.ReceiverHandle == "" || req.Amount == "" {
		response.Error(c, domainerrors.BadRequest("receiverHandle and amount are required for free-form payments"))
		return
	}

	session, err := h.sessions.Session(order.SourceNetworkID)
	if err != nil {
		response.Error(c, err)
		return
	}

	attempt := entities.NewPaymentAttempt(nil)
	attemptID := uuid.New()

	h.mu.Lock()
	h.attempts[attemptID] = attemptEntry{owner: identityID, attempt: attempt}
	h.mu.Unlock()

	// The run outlives the HTTP request; clients poll the attempt for
	// progress
	go func() {
		ctx := context.Background()
		if _, err := h.orchestrator.Run(ctx, session, order, attempt); err != nil {
			logger.Warn(ctx, "payment attempt ended with error",
				zap.String("attemptId", attemptID.String()),
				zap.Error(err))
		}
		time.AfterFunc(h.retention, func() {
			h.mu.Lock()
			delete(h.attempts, attemptID)
			h.mu.Unlock()
		})
	}()

	response.Success(c, http.StatusAccepted, gin.H{
		"attemptId": attemptID,
		"step":      attempt.Step(),
	})
}

// Get returns the current state of a payment attempt
// GET /api/v1/payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	attempt, id, ok := h.lookup(c)
	if !ok {
		return
	}

	body := gin.H{
		"attemptId": id,
		"step":      attempt.Step(),
	}
	if hash := attempt.LastTxHash(); hash != "" {
		body["lastTxHash"] = hash
	}
	if reason := attempt.FailureReason(); reason != "" {
		body["failureReason"] = reason
	}
	if attempt.Plan != nil {
		body["plan"] = attempt.Plan
	}

	response.Success(c, http.StatusOK, body)
}

// Cancel requests cancellation of a running attempt. Cancellation takes
// effect only while the attempt is waiting for a signature.
// POST /api/v1/payments/:id/cancel
func (h *PaymentHandler) Cancel(c *gin.Context) {
	attempt, id, ok := h.lookup(c)
	if !ok {
		return
	}

	attempt.RequestCancel()

	response.Success(c, http.StatusAccepted, gin.H{
		"attemptId": id,
		"step":      attempt.Step(),
	})
}

// lookup resolves the attempt in the path and checks it belongs to the
// caller. A foreign attempt reads as not found.
func (h *PaymentHandler) lookup(c *gin.Context) (*entities.PaymentAttempt, uuid.UUID, bool) {
	identityID, ok := middleware.GetIdentityID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid attempt ID"))
		return nil, uuid.Nil, false
	}

	h.mu.RLock()
	entry, exists := h.attempts[id]
	h.mu.RUnlock()
	if !exists || entry.owner != identityID {
		response.Error(c, domainerrors.NotFound("payment attempt not found"))
		return nil, uuid.Nil, false
	}

	return entry.attempt, id, true
}
