package usecases

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/domain/repositories"
	"paylink.backend/internal/infrastructure/settlement"
	"paylink.backend/internal/observability"
	"paylink.backend/pkg/logger"
)

// WalletBridge is the signing boundary. The orchestrator never holds key
// material; it hands unsigned transactions across this interface and receives
// hashes back.
type WalletBridge interface {
	SwitchNetwork(ctx context.Context, session *entities.WalletSession, networkID string) error
	SignAndSubmit(ctx context.Context, session *entities.WalletSession, tx *entities.UnsignedTransaction) (string, error)
}

// TransactionObserver is the confirmation boundary. A timeout is reported as
// an inconclusive outcome, not an error.
type TransactionObserver interface {
	AwaitConfirmation(ctx context.Context, networkID, txHash string, timeout time.Duration) (*entities.ConfirmationOutcome, error)
}

// PaymentOrder describes one payment a payer wants to make. RequestID is
// uuid.Nil for free-form pay actions. InitiatorID identifies the paying
// identity; a request-backed order is refused unless it matches the
// request's payer.
type PaymentOrder struct {
	InitiatorID       uuid.UUID
	RequestID         uuid.UUID
	ReceiverHandle    string
	SourceNetworkID   string
	SourceAssetSymbol string
	Amount            string
}

// PaymentOrchestrator drives one payment attempt through quote resolution,
// optional approval, settlement submission and confirmation. Each attempt is
// strictly sequential; independent attempts share nothing but the read-only
// registry.
type PaymentOrchestrator struct {
	registry       *Registry
	resolver       *QuoteResolver
	builder        *PlanBuilder
	allowance      *AllowanceChecker
	provider       QuoteProvider
	wallet         WalletBridge
	observer       TransactionObserver
	identityRepo   repositories.IdentityRepository
	preferenceRepo repositories.PreferenceRepository
	requestRepo    repositories.PaymentRequestRepository
	metrics        *observability.PaymentMetrics
}

// NewPaymentOrchestrator creates a new payment orchestrator
func NewPaymentOrchestrator(
	registry *Registry,
	resolver *QuoteResolver,
	builder *PlanBuilder,
	allowance *AllowanceChecker,
	provider QuoteProvider,
	wallet WalletBridge,
	observer TransactionObserver,
	identityRepo repositories.IdentityRepository,
	preferenceRepo repositories.PreferenceRepository,
	requestRepo repositories.PaymentRequestRepository,
) *PaymentOrchestrator {
	return &PaymentOrchestrator{
		registry:       registry,
		resolver:       resolver,
		builder:        builder,
		allowance:      allowance,
		provider:       provider,
		wallet:         wallet,
		observer:       observer,
		identityRepo:   identityRepo,
		preferenceRepo: preferenceRepo,
		requestRepo:    requestRepo,
		metrics:        observability.Payments(),
	}
}

// Run executes one payment attempt end to end. The caller may pass a
// pre-created attempt to retain a cancellation handle; nil means a fresh one.
// The returned attempt always reflects the final step; on failure the error
// carries the cause and the attempt carries the human-readable reason. A
// cancelled attempt comes back at StepNone with a nil error.
func (o *PaymentOrchestrator) Run(ctx context.Context, session *entities.WalletSession, order PaymentOrder, attempt *entities.PaymentAttempt) (*entities.PaymentAttempt, error) {
	if attempt == nil {
		attempt = entities.NewPaymentAttempt(nil)
	}
	o.metrics.AttemptsStarted.WithLabelValues(order.SourceNetworkID).Inc()

	var request *entities.PaymentRequest
	amount := order.Amount
	if order.RequestID != uuid.Nil {
		var err error
		request, err = o.requestRepo.GetByID(ctx, order.RequestID)
		if err != nil {
			return o.fail(ctx, attempt, "payment request not found", err)
		}
		if request.PayerIdentityID != order.InitiatorID {
			return o.fail(ctx, attempt, "payment request is addressed to another payer", domainerrors.ErrForbidden)
		}
		if request.Status != entities.PaymentRequestStatusPending {
			return o.fail(ctx, attempt, "payment request is no longer pending", domainerrors.ErrRequestNotPending)
		}
		amount = request.Amount
	}

	receiver, preference, err := o.resolveReceiver(ctx, request, order.ReceiverHandle)
	if err != nil {
		return o.fail(ctx, attempt, "receiver has no usable settlement preference", err)
	}

	attempt.SetStep(entities.StepRouting)

	quoteCtx, cancel := context.WithTimeout(ctx, QuoteRequestTimeout)
	quoteStart := time.Now()
	route, err := o.resolver.ResolveRoute(quoteCtx, session.Address, amount, order.SourceNetworkID, order.SourceAssetSymbol)
	cancel()
	o.metrics.QuoteLatency.Observe(time.Since(quoteStart).Seconds())
	if err != nil {
		return o.fail(ctx, attempt, "no settlement route available", err)
	}

	plan, err := o.builder.BuildPlan(ctx, order.SourceNetworkID, order.SourceAssetSymbol, amount, route, preference, session.Address)
	if err != nil {
		return o.fail(ctx, attempt, "settlement plan rejected", err)
	}
	attempt.Plan = plan

	depositNetworkID := plan.DestinationNetworkID
	depositAssetSymbol := plan.DestinationAssetSymbol
	depositAmount := route.DepositAmount
	if plan.IsDirectTransfer {
		depositNetworkID = plan.SourceNetworkID
		depositAssetSymbol = plan.SourceAssetSymbol
		depositAmount = plan.SourceAmount
	}

	// All signing happens on the chain the deposit is collected on.
	if session.ActiveNetworkID != depositNetworkID {
		if err := o.wallet.SwitchNetwork(ctx, session, depositNetworkID); err != nil {
			return o.fail(ctx, attempt, "wallet could not switch to "+depositNetworkID, domainerrors.ErrNetworkSwitch)
		}
	}

	if plan.RequiresApproval {
		attempt.SetStep(entities.StepAwaitingApprovalSignature)
		if attempt.CancelRequested() {
			attempt.SetStep(entities.StepNone)
			return attempt, nil
		}

		approveTx, err := o.buildApprovalTx(depositNetworkID, depositAssetSymbol, plan.ApprovalAmount)
		if err != nil {
			return o.fail(ctx, attempt, "could not build approval transaction", err)
		}

		hash, err := o.wallet.SignAndSubmit(ctx, session, approveTx)
		if err != nil {
			if errors.Is(err, domainerrors.ErrUserRejected) {
				return o.fail(ctx, attempt, "payer rejected the approval signature", err)
			}
			return o.fail(ctx, attempt, "approval submission failed", err)
		}
		attempt.RecordTxHash(hash)
		attempt.SetStep(entities.StepAwaitingApprovalConfirmation)

		if err := o.awaitApproval(ctx, session, attempt, depositNetworkID, depositAssetSymbol, depositAmount, hash); err != nil {
			return o.fail(ctx, attempt, "approval reverted on-chain", err)
		}
	}

	attempt.SetStep(entities.StepAwaitingSettlementSignature)
	if attempt.CancelRequested() {
		attempt.SetStep(entities.StepNone)
		return attempt, nil
	}

	buildReq := settlement.BuildTransactionRequest{
		ReceiverIdentity:  receiver.Handle,
		Amount:            amount,
		SourceNetwork:     plan.SourceNetworkID,
		SourceAssetSymbol: plan.SourceAssetSymbol,
		SourceAddress:     session.Address,
	}
	if request != nil && request.OverrideAddress.Valid {
		buildReq.OverrideNetwork = request.OverrideNetworkID.String
		buildReq.OverrideAssetSymbol = request.OverrideAssetSymbol.String
		buildReq.OverrideAddress = request.OverrideAddress.String
	}

	built, err := o.provider.BuildTransaction(ctx, buildReq)
	if err != nil {
		return o.fail(ctx, attempt, "settlement provider could not build the transaction", err)
	}
	tx := built.Transaction
	tx.NetworkID = depositNetworkID

	hash, err := o.wallet.SignAndSubmit(ctx, session, tx)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserRejected) {
			return o.fail(ctx, attempt, "payer rejected the settlement signature", err)
		}
		return o.fail(ctx, attempt, "settlement submission failed", err)
	}
	attempt.RecordTxHash(hash)
	attempt.SetStep(entities.StepAwaitingSettlementConfirm)

	outcome, err := o.observer.AwaitConfirmation(ctx, depositNetworkID, hash, o.confirmationTimeout(depositNetworkID))
	if err != nil {
		return o.fail(ctx, attempt, "settlement confirmation unavailable", domainerrors.ErrTransactionFailed)
	}
	switch outcome.Status {
	case entities.ConfirmationSuccess:
		o.CompleteSettlement(ctx, attempt, request, hash)
		return attempt, nil
	case entities.ConfirmationReverted:
		return o.fail(ctx, attempt, "settlement reverted on-chain", domainerrors.ErrTransactionFailed)
	default:
		return o.fail(ctx, attempt, "settlement confirmation timed out", domainerrors.ErrTransactionFailed)
	}
}

// CompleteSettlement runs completion side effects for a confirmed settlement
// hash. Side effects run exactly once per hash: a replayed confirmation for
// an already-processed hash is a silent no-op and the method reports false.
func (o *PaymentOrchestrator) CompleteSettlement(ctx context.Context, attempt *entities.PaymentAttempt, request *entities.PaymentRequest, txHash string) bool {
	if !attempt.MarkProcessed(txHash) {
		return false
	}
	attempt.SetStep(entities.StepComplete)

	routeLabel := "bridged"
	if attempt.Plan != nil && attempt.Plan.IsDirectTransfer {
		routeLabel = "direct"
	}
	o.metrics.AttemptsCompleted.WithLabelValues(routeLabel).Inc()

	if request != nil {
		if err := o.requestRepo.MarkAccepted(ctx, request.ID, txHash); err != nil {
			logger.Error(ctx, "could not mark payment request accepted",
				zap.String("request_id", request.ID.String()), zap.Error(err))
		}
	}
	return true
}

// resolveReceiver loads the receiving identity and the preference the plan
// should target. A request override replaces the stored preference for this
// one payment.
func (o *PaymentOrchestrator) resolveReceiver(ctx context.Context, request *entities.PaymentRequest, receiverHandle string) (*entities.Identity, *entities.SettlementPreference, error) {
	var receiver *entities.Identity
	var err error
	if request != nil {
		receiver, err = o.identityRepo.GetByID(ctx, request.PayeeIdentityID)
	} else {
		receiver, err = o.identityRepo.GetByHandle(ctx, receiverHandle)
	}
	if err != nil {
		return nil, nil, err
	}

	if request != nil && request.OverrideNetworkID.Valid && request.OverrideAssetSymbol.Valid && request.OverrideAddress.Valid {
		return receiver, &entities.SettlementPreference{
			IdentityID:  receiver.ID,
			NetworkID:   request.OverrideNetworkID.String,
			AssetSymbol: request.OverrideAssetSymbol.String,
			Address:     request.OverrideAddress.String,
		}, nil
	}

	preference, err := o.preferenceRepo.GetByIdentity(ctx, receiver.ID)
	if err != nil {
		return nil, nil, err
	}
	return receiver, preference, nil
}

// awaitApproval waits for the approval receipt. Before waiting it re-checks
// the allowance: if a prior attempt already granted enough, settlement can
// proceed without waiting for this submission's receipt. A transient wait
// failure or timeout is logged and treated optimistically, since the approval
// may still have landed; only an observed revert is fatal.
func (o *PaymentOrchestrator) awaitApproval(ctx context.Context, session *entities.WalletSession, attempt *entities.PaymentAttempt, networkID, assetSymbol, humanAmount, txHash string) error {
	recheck, err := o.allowance.CheckApprovalNeeded(ctx, networkID, assetSymbol, session.Address, "", humanAmount)
	if err == nil && !recheck.NeedsApproval {
		logger.Info(ctx, "allowance already sufficient, skipping approval wait",
			zap.String("network_id", networkID), zap.String("tx_hash", txHash))
		return nil
	}

	outcome, err := o.observer.AwaitConfirmation(ctx, networkID, txHash, o.confirmationTimeout(networkID))
	if err != nil {
		logger.Warn(ctx, "approval confirmation wait failed, proceeding optimistically",
			zap.String("tx_hash", txHash), zap.Error(err))
		return nil
	}
	switch outcome.Status {
	case entities.ConfirmationReverted:
		return domainerrors.ErrTransactionFailed
	case entities.ConfirmationInconclusive:
		logger.Warn(ctx, "approval confirmation inconclusive, proceeding optimistically",
			zap.String("tx_hash", txHash))
	}
	return nil
}

func (o *PaymentOrchestrator) buildApprovalTx(networkID, assetSymbol string, amount *big.Int) (*entities.UnsignedTransaction, error) {
	asset, err := o.registry.LookupAsset(networkID, assetSymbol)
	if err != nil {
		return nil, domainerrors.ErrUnsupportedAsset
	}
	gateway, err := o.registry.GatewayAddress(networkID)
	if err != nil {
		return nil, err
	}
	if amount == nil {
		return nil, domainerrors.ErrValidation
	}

	data := make([]byte, 0, 4+2*EVMWordSize)
	data = append(data, common.Hex2Bytes(ApproveSelector[2:])...)
	data = append(data, common.LeftPadBytes(common.HexToAddress(gateway).Bytes(), EVMWordSize)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), EVMWordSize)...)

	return &entities.UnsignedTransaction{
		NetworkID: networkID,
		To:        asset.ContractAddress,
		Data:      data,
	}, nil
}

func (o *PaymentOrchestrator) confirmationTimeout(networkID string) time.Duration {
	network, err := o.registry.LookupNetwork(networkID)
	if err != nil || network.FinalityTimeout <= 0 {
		return DefaultConfirmationTimeout
	}
	return network.FinalityTimeout
}

func (o *PaymentOrchestrator) fail(ctx context.Context, attempt *entities.PaymentAttempt, reason string, err error) (*entities.PaymentAttempt, error) {
	attempt.Fail(reason)
	o.metrics.AttemptsFailed.WithLabelValues(failureClass(err)).Inc()
	logger.Warn(ctx, "payment attempt failed",
		zap.String("reason", reason), zap.Error(err))
	return attempt, err
}

func failureClass(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domainerrors.ErrUserRejected):
		return "user_rejected"
	case errors.Is(err, domainerrors.ErrNetworkSwitch):
		return "network_switch"
	case errors.Is(err, domainerrors.ErrQuoteUnavailable):
		return "quote_unavailable"
	case errors.Is(err, domainerrors.ErrUnsupportedRoute):
		return "unsupported_route"
	case errors.Is(err, domainerrors.ErrSettlementBuildFailed):
		return "settlement_build"
	case errors.Is(err, domainerrors.ErrTransactionFailed):
		return "transaction_failed"
	case errors.Is(err, domainerrors.ErrChainRead):
		return "chain_read"
	case errors.Is(err, domainerrors.ErrValidation):
		return "validation"
	default:
		return "error"
	}
}
