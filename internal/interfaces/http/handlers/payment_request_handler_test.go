package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"paylink.backend/internal/domain/entities"
	"paylink.backend/internal/usecases"
)

type requestFixture struct {
	router      *gin.Engine
	requestRepo *stubRequestRepo
	alice       *entities.Identity // payee, authenticated
	bob         *entities.Identity // payer
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	identityRepo := newStubIdentityRepo()
	alice := identityRepo.add("alice")
	bob := identityRepo.add("bob")

	requestRepo := newStubRequestRepo()
	usecase := usecases.NewPaymentRequestUsecase(requestRepo, identityRepo, testRegistry(t))
	h := NewPaymentRequestHandler(usecase)

	r := gin.New()
	auth := authAs(alice.ID, "alice")
	r.POST("/payment-requests", auth, h.Create)
	r.GET("/payment-requests", auth, h.List)
	r.GET("/payment-requests/:id", auth, h.Get)
	r.POST("/payment-requests/:id/deny", auth, h.Deny)

	return &requestFixture{router: r, requestRepo: requestRepo, alice: alice, bob: bob}
}

func TestPaymentRequestHandler_CreateAndList(t *testing.T) {
	f := newRequestFixture(t)

	w := doJSON(t, f.router, http.MethodPost, "/payment-requests", gin.H{
		"payerHandle": "bob",
		"amount":      "25.50",
		"note":        "lunch",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	require.Equal(t, "pending", body["status"])
	require.Equal(t, f.bob.ID.String(), body["payerIdentityId"])

	w = doJSON(t, f.router, http.MethodGet, "/payment-requests?direction=sent", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeBody(t, w)["requests"], 1)
}

func TestPaymentRequestHandler_CreateUnknownPayer(t *testing.T) {
	f := newRequestFixture(t)

	w := doJSON(t, f.router, http.MethodPost, "/payment-requests", gin.H{
		"payerHandle": "nobody",
		"amount":      "10",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentRequestHandler_CreateSelfRequest(t *testing.T) {
	f := newRequestFixture(t)

	w := doJSON(t, f.router, http.MethodPost, "/payment-requests", gin.H{
		"payerHandle": "alice",
		"amount":      "10",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentRequestHandler_CreatePartialOverride(t *testing.T) {
	f := newRequestFixture(t)

	w := doJSON(t, f.router, http.MethodPost, "/payment-requests", gin.H{
		"payerHandle":       "bob",
		"amount":            "10",
		"overrideNetworkId": "eip155:8453",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPaymentRequestHandler_GetForbiddenForStranger(t *testing.T) {
	f := newRequestFixture(t)

	request := &entities.PaymentRequest{
		PayerIdentityID: f.bob.ID,
		PayeeIdentityID: uuid.New(), // a third identity the caller is not
		Amount:          "10",
		Status:          entities.PaymentRequestStatusPending,
	}
	require.NoError(t, f.requestRepo.Create(context.Background(), request))

	w := doJSON(t, f.router, http.MethodGet, "/payment-requests/"+request.ID.String(), nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestPaymentRequestHandler_DenyOnlyByPayer(t *testing.T) {
	f := newRequestFixture(t)

	// Alice is the payee here, so she cannot deny her own ask
	request := &entities.PaymentRequest{
		PayerIdentityID: f.bob.ID,
		PayeeIdentityID: f.alice.ID,
		Amount:          "10",
		Status:          entities.PaymentRequestStatusPending,
	}
	require.NoError(t, f.requestRepo.Create(context.Background(), request))

	w := doJSON(t, f.router, http.MethodPost, "/payment-requests/"+request.ID.String()+"/deny", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestPaymentRequestHandler_DenyByPayer(t *testing.T) {
	f := newRequestFixture(t)

	// Alice is the payer on this one
	request := &entities.PaymentRequest{
		PayerIdentityID: f.alice.ID,
		PayeeIdentityID: f.bob.ID,
		Amount:          "10",
		Status:          entities.PaymentRequestStatusPending,
	}
	require.NoError(t, f.requestRepo.Create(context.Background(), request))

	w := doJSON(t, f.router, http.MethodPost, "/payment-requests/"+request.ID.String()+"/deny", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "rejected", decodeBody(t, w)["status"])

	// Terminal requests stay rejected
	w = doJSON(t, f.router, http.MethodPost, "/payment-requests/"+request.ID.String()+"/deny", nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestPaymentRequestHandler_InvalidID(t *testing.T) {
	f := newRequestFixture(t)

	w := doJSON(t, f.router, http.MethodGet, "/payment-requests/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
