package usecases

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/domain/repositories"
)

// PaymentRequestUsecase handles the request-to-be-paid lifecycle
type PaymentRequestUsecase struct {
	requestRepo  repositories.PaymentRequestRepository
	identityRepo repositories.IdentityRepository
	registry     *Registry
}

// NewPaymentRequestUsecase creates a new payment request usecase
func NewPaymentRequestUsecase(requestRepo repositories.PaymentRequestRepository, identityRepo repositories.IdentityRepository, registry *Registry) *PaymentRequestUsecase {
	return &PaymentRequestUsecase{
		requestRepo:  requestRepo,
		identityRepo: identityRepo,
		registry:     registry,
	}
}

// Create records a payee's ask to be paid by the payer named in the input
func (u *PaymentRequestUsecase) Create(ctx context.Context, payeeIdentityID uuid.UUID, input *entities.CreatePaymentRequestInput) (*entities.PaymentRequest, error) {
	payer, err := u.identityRepo.GetByHandle(ctx, input.PayerHandle)
	if err != nil {
		return nil, domainerrors.NotFound("payer handle not found")
	}
	if payer.ID == payeeIdentityID {
		return nil, domainerrors.BadRequest("cannot request a payment from yourself")
	}

	if d, err := decimal.NewFromString(strings.TrimSpace(input.Amount)); err != nil || d.Sign() <= 0 {
		return nil, domainerrors.Validation("amount must be a positive decimal")
	}

	request := &entities.PaymentRequest{
		PayerIdentityID: payer.ID,
		PayeeIdentityID: payeeIdentityID,
		Amount:          strings.TrimSpace(input.Amount),
		Note:            input.Note,
		Status:          entities.PaymentRequestStatusPending,
	}
	if input.ExpiresAt != nil {
		request.ExpiresAt = null.TimeFrom(*input.ExpiresAt)
	}

	if err := u.applyOverride(request, input); err != nil {
		return nil, err
	}

	if err := u.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// applyOverride validates the optional per-request settlement override. The
// three fields are all-or-none and face the same registry and address-format
// checks as a stored preference.
func (u *PaymentRequestUsecase) applyOverride(request *entities.PaymentRequest, input *entities.CreatePaymentRequestInput) error {
	hasAny := input.OverrideNetworkID != "" || input.OverrideAssetSymbol != "" || input.OverrideAddress != ""
	if !hasAny {
		return nil
	}
	if input.OverrideNetworkID == "" || input.OverrideAssetSymbol == "" || input.OverrideAddress == "" {
		return domainerrors.Validation("override requires network, asset and address together")
	}

	network, err := u.registry.LookupNetwork(input.OverrideNetworkID)
	if err != nil {
		return domainerrors.ErrUnsupportedNetwork
	}
	asset, err := u.registry.LookupAsset(input.OverrideNetworkID, input.OverrideAssetSymbol)
	if err != nil {
		return domainerrors.ErrUnsupportedAsset
	}
	if containsEllipsis(input.OverrideAddress) || !addressMatchesNetworkType(input.OverrideAddress, network.NetworkType) {
		return domainerrors.Validation("override address does not match the network's address convention")
	}

	request.OverrideNetworkID = null.StringFrom(network.ID)
	request.OverrideAssetSymbol = null.StringFrom(asset.Symbol)
	request.OverrideAddress = null.StringFrom(input.OverrideAddress)
	return nil
}

// Get returns a request visible to the caller. Only the payer and payee may
// see a request.
func (u *PaymentRequestUsecase) Get(ctx context.Context, id, callerID uuid.UUID) (*entities.PaymentRequest, error) {
	request, err := u.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.PayerIdentityID != callerID && request.PayeeIdentityID != callerID {
		return nil, domainerrors.ErrForbidden
	}
	return request, nil
}

// List returns the caller's requests in one direction, optionally filtered
// by status.
func (u *PaymentRequestUsecase) List(ctx context.Context, identityID uuid.UUID, direction entities.RequestDirection, statusFilter *entities.PaymentRequestStatus, limit, offset int) ([]*entities.PaymentRequest, int64, error) {
	if direction != entities.RequestDirectionSent && direction != entities.RequestDirectionReceived {
		return nil, 0, domainerrors.BadRequest("direction must be sent or received")
	}
	return u.requestRepo.ListByIdentity(ctx, identityID, direction, statusFilter, limit, offset)
}

// Deny rejects a pending request. Only the payer may deny; a terminal
// request stays as it is.
func (u *PaymentRequestUsecase) Deny(ctx context.Context, id, callerID uuid.UUID) (*entities.PaymentRequest, error) {
	request, err := u.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.PayerIdentityID != callerID {
		return nil, domainerrors.ErrForbidden
	}

	if err := u.requestRepo.UpdateStatus(ctx, id, entities.PaymentRequestStatusRejected); err != nil {
		return nil, err
	}
	return u.requestRepo.GetByID(ctx, id)
}
