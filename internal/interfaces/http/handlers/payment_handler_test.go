package handlers

import (
	"context"
	"encoding/hex"
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"paylink.backend/internal/domain/entities"
	"paylink.backend/internal/infrastructure/settlement"
	"paylink.backend/internal/usecases"
)

type paymentFixture struct {
	router      *gin.Engine
	handler     *PaymentHandler
	wallet      *stubWalletBridge
	requestRepo *stubRequestRepo
	payer       *entities.Identity
	receiver    *entities.Identity
}

// routerAs mounts the payment routes authenticated as another identity.
func (f *paymentFixture) routerAs(identity *entities.Identity) *gin.Engine {
	r := gin.New()
	auth := authAs(identity.ID, identity.Handle)
	r.POST("/payments", auth, f.handler.Initiate)
	r.GET("/payments/:id", auth, f.handler.Get)
	r.POST("/payments/:id/cancel", auth, f.handler.Cancel)
	return r
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	identityRepo := newStubIdentityRepo()
	payer := identityRepo.add("payer")
	receiver := identityRepo.add("receiver")

	preferenceRepo := newStubPreferenceRepo()
	preferenceRepo.byIdentity[receiver.ID] = &entities.SettlementPreference{
		IdentityID:  receiver.ID,
		NetworkID:   "eip155:8453",
		AssetSymbol: "USDC",
		Address:     testReceiverEVM,
	}

	requestRepo := newStubRequestRepo()
	registry := testRegistry(t)
	factory := allowanceFactory(big.NewInt(1_000_000_000_000)) // always sufficient

	calldata, err := hex.DecodeString("a9059cbb" + "00000000000000000000000000000000000000000000000000000000000000ff")
	require.NoError(t, err)

	provider := &stubQuoteProvider{
		quote: &settlement.QuoteResponse{
			Blockchain:    "base",
			TokenSymbol:   "USDC",
			TokenDecimals: 6,
			DepositAmount: "25.50",
		},
		built: &settlement.BuildResult{
			Transaction: &entities.UnsignedTransaction{To: testGatewayBase, Data: calldata},
		},
	}

	allowance := usecases.NewAllowanceChecker(registry, factory)
	wallet := &stubWalletBridge{}
	orchestrator := usecases.NewPaymentOrchestrator(
		registry,
		usecases.NewQuoteResolver(registry, provider),
		usecases.NewPlanBuilder(registry, allowance),
		allowance,
		provider,
		wallet,
		&stubObserver{},
		identityRepo,
		preferenceRepo,
		requestRepo,
	)

	h := NewPaymentHandler(orchestrator, stubSessionProvider{})

	r := gin.New()
	auth := authAs(payer.ID, "payer")
	r.POST("/payments", auth, h.Initiate)
	r.GET("/payments/:id", auth, h.Get)
	r.POST("/payments/:id/cancel", auth, h.Cancel)

	return &paymentFixture{router: r, handler: h, wallet: wallet, requestRepo: requestRepo, payer: payer, receiver: receiver}
}

func awaitTerminalStep(t *testing.T, f *paymentFixture, attemptID string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		w := doJSON(t, f.router, http.MethodGet, "/payments/"+attemptID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		step := body["step"].(string)
		if step == string(entities.StepComplete) || step == string(entities.StepFailed) {
			return body
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("attempt did not reach a terminal step")
	return nil
}

func TestPaymentHandler_FreeFormPaymentCompletes(t *testing.T) {
	f := newPaymentFixture(t)

	w := doJSON(t, f.router, http.MethodPost, "/payments", gin.H{
		"receiverHandle":    "receiver",
		"sourceNetworkId":   "eip155:8453",
		"sourceAssetSymbol": "USDC",
		"amount":            "25.50",
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	attemptID := decodeBody(t, w)["attemptId"].(string)
	body := awaitTerminalStep(t, f, attemptID)

	require.Equal(t, string(entities.StepComplete), body["step"])
	require.NotEmpty(t, body["lastTxHash"])
	require.Equal(t, 1, f.wallet.submissions)
}

func TestPaymentHandler_RequestBackedPayment(t *testing.T) {
	f := newPaymentFixture(t)

	request := &entities.PaymentRequest{
		PayerIdentityID: f.payer.ID,
		PayeeIdentityID: f.receiver.ID,
		Amount:          "25.50",
		Status:          entities.PaymentRequestStatusPending,
	}
	require.NoError(t, f.requestRepo.Create(context.Background(), request))

	w := doJSON(t, f.router, http.MethodPost, "/payments", gin.H{
		"requestId":         request.ID.String(),
		"sourceNetworkId":   "eip155:8453",
		"sourceAssetSymbol": "USDC",
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	attemptID := decodeBody(t, w)["attemptId"].(string)
	body := awaitTerminalStep(t, f, attemptID)

	require.Equal(t, string(entities.StepComplete), body["step"])
	require.Equal(t, entities.PaymentRequestStatusAccepted, request.Status)
}

// A request can only be paid by the identity it is addressed to; a
// different logged-in identity paying it must not flip it to accepted.
func TestPaymentHandler_RequestNotPayableByThirdParty(t *testing.T) {
	f := newPaymentFixture(t)

	request := &entities.PaymentRequest{
		PayerIdentityID: f.receiver.ID,
		PayeeIdentityID: f.payer.ID,
		Amount:          "25.50",
		Status:          entities.PaymentRequestStatusPending,
	}
	require.NoError(t, f.requestRepo.Create(context.Background(), request))

	// authenticated as "payer", who is not this request's payer
	w := doJSON(t, f.router, http.MethodPost, "/payments", gin.H{
		"requestId":         request.ID.String(),
		"sourceNetworkId":   "eip155:8453",
		"sourceAssetSymbol": "USDC",
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	attemptID := decodeBody(t, w)["attemptId"].(string)
	body := awaitTerminalStep(t, f, attemptID)

	require.Equal(t, string(entities.StepFailed), body["step"])
	require.Contains(t, body["failureReason"], "another payer")
	require.Equal(t, 0, f.wallet.submissions)
	require.Equal(t, entities.PaymentRequestStatusPending, request.Status)
}

// Attempts belong to the identity that started them; other identities get a
// 404 on poll and cancel.
func TestPaymentHandler_AttemptInvisibleToOtherIdentities(t *testing.T) {
	f := newPaymentFixture(t)

	w := doJSON(t, f.router, http.MethodPost, "/payments", gin.H{
		"receiverHandle":    "receiver",
		"sourceNetworkId":   "eip155:8453",
		"sourceAssetSymbol": "USDC",
		"amount":            "25.50",
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	attemptID := decodeBody(t, w)["attemptId"].(string)

	other := f.routerAs(f.receiver)
	w = doJSON(t, other, http.MethodGet, "/payments/"+attemptID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, other, http.MethodPost, "/payments/"+attemptID+"/cancel", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// the owner still sees it
	w = doJSON(t, f.router, http.MethodGet, "/payments/"+attemptID, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

// Finished attempts are dropped after the retention window.
func TestPaymentHandler_TerminalAttemptEvicted(t *testing.T) {
	f := newPaymentFixture(t)
	f.handler.retention = 10 * time.Millisecond

	w := doJSON(t, f.router, http.MethodPost, "/payments", gin.H{
		"receiverHandle":    "receiver",
		"sourceNetworkId":   "eip155:8453",
		"sourceAssetSymbol": "USDC",
		"amount":            "25.50",
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	attemptID := decodeBody(t, w)["attemptId"].(string)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		w = doJSON(t, f.router, http.MethodGet, "/payments/"+attemptID, nil)
		if w.Code == http.StatusNotFound {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("terminal attempt was not evicted")
}

func TestPaymentHandler_FreeFormRequiresReceiverAndAmount(t *testing.T) {
	f := newPaymentFixture(t)

	w := doJSON(t, f.router, http.MethodPost, "/payments", gin.H{
		"sourceNetworkId":   "eip155:8453",
		"sourceAssetSymbol": "USDC",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_InvalidRequestID(t *testing.T) {
	f := newPaymentFixture(t)

	w := doJSON(t, f.router, http.MethodPost, "/payments", gin.H{
		"requestId":         "not-a-uuid",
		"sourceNetworkId":   "eip155:8453",
		"sourceAssetSymbol": "USDC",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_GetUnknownAttempt(t *testing.T) {
	f := newPaymentFixture(t)

	w := doJSON(t, f.router, http.MethodGet, "/payments/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentHandler_CancelUnknownAttempt(t *testing.T) {
	f := newPaymentFixture(t)

	w := doJSON(t, f.router, http.MethodPost, "/payments/"+uuid.NewString()+"/cancel", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
