package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/interfaces/http/middleware"
	"paylink.backend/internal/interfaces/http/response"
	"paylink.backend/internal/usecases"
	"paylink.backend/pkg/utils"
)

// PaymentRequestHandler handles payment request endpoints
type PaymentRequestHandler struct {
	usecase *usecases.PaymentRequestUsecase
}

// NewPaymentRequestHandler creates a new payment request handler
func NewPaymentRequestHandler(usecase *usecases.PaymentRequestUsecase) *PaymentRequestHandler {
	return &PaymentRequestHandler{usecase: usecase}
}

// Create creates a payment request asking another identity to pay
// POST /api/v1/payment-requests
func (h *PaymentRequestHandler) Create(c *gin.Context) {
	identityID, ok := middleware.GetIdentityID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	var input entities.CreatePaymentRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	request, err := h.usecase.Create(c.Request.Context(), identityID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, request)
}

// Get returns a single payment request visible to the caller
// GET /api/v1/payment-requests/:id
func (h *PaymentRequestHandler) Get(c *gin.Context) {
	identityID, ok := middleware.GetIdentityID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid request ID"))
		return
	}

	request, err := h.usecase.Get(c.Request.Context(), id, identityID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, request)
}

// List returns the caller's payment requests in one direction
// GET /api/v1/payment-requests?direction=sent|received&status=pending&page=1&limit=10
func (h *PaymentRequestHandler) List(c *gin.Context) {
	identityID, ok := middleware.GetIdentityID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	direction := entities.RequestDirection(c.DefaultQuery("direction", string(entities.RequestDirectionReceived)))

	var statusFilter *entities.PaymentRequestStatus
	if raw := c.Query("status"); raw != "" {
		status := entities.PaymentRequestStatus(raw)
		statusFilter = &status
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	params := utils.GetPaginationParams(page, limit)

	requests, total, err := h.usecase.List(c.Request.Context(), identityID, direction, statusFilter, params.Limit, params.CalculateOffset())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"requests":   requests,
		"pagination": utils.CalculateMeta(total, params.Page, params.Limit),
	})
}

// Deny rejects a pending payment request addressed to the caller
// POST /api/v1/payment-requests/:id/deny
func (h *PaymentRequestHandler) Deny(c *gin.Context) {
	identityID, ok := middleware.GetIdentityID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid request ID"))
		return
	}

	request, err := h.usecase.Deny(c.Request.Context(), id, identityID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, request)
}
