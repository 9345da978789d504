package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PaymentRequestStatus represents the status of a payment request
type PaymentRequestStatus string

const (
	PaymentRequestStatusPending  PaymentRequestStatus = "pending"
	PaymentRequestStatusAccepted PaymentRequestStatus = "accepted"
	PaymentRequestStatusRejected PaymentRequestStatus = "rejected"
	PaymentRequestStatusExpired  PaymentRequestStatus = "expired"
)

// IsTerminal reports whether the status admits no further transitions
func (s PaymentRequestStatus) IsTerminal() bool {
	return s != PaymentRequestStatusPending
}

// PaymentRequest is a payee's ask to be paid by a specific payer. Requests
// are an append-only audit trail: they transition out of pending exactly once
// and are never deleted.
type PaymentRequest struct {
	ID              uuid.UUID            `json:"id"`
	PayerIdentityID uuid.UUID            `json:"payerIdentityId"`
	PayeeIdentityID uuid.UUID            `json:"payeeIdentityId"`
	Amount          string               `json:"amount"` // human units, positive decimal
	Note            string               `json:"note,omitempty"`
	Status          PaymentRequestStatus `json:"status"`
	// Optional override of the payee's stored settlement preference for
	// this one request. All three set together or none.
	OverrideNetworkID   null.String `json:"overrideNetworkId,omitempty"`
	OverrideAssetSymbol null.String `json:"overrideAssetSymbol,omitempty"`
	OverrideAddress     null.String `json:"overrideAddress,omitempty"`
	SettledTxHash       null.String `json:"settledTxHash,omitempty"`
	ExpiresAt           null.Time   `json:"expiresAt,omitempty"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

// RequestDirection selects which side of a request an identity is on when
// listing.
type RequestDirection string

const (
	RequestDirectionSent     RequestDirection = "sent"     // requests the identity created (asking to be paid)
	RequestDirectionReceived RequestDirection = "received" // requests asking the identity to pay
)

// CreatePaymentRequestInput is the payload for creating a request
type CreatePaymentRequestInput struct {
	PayerHandle         string     `json:"payerHandle" binding:"required"`
	Amount              string     `json:"amount" binding:"required"`
	Note                string     `json:"note"`
	OverrideNetworkID   string     `json:"overrideNetworkId"`
	OverrideAssetSymbol string     `json:"overrideAssetSymbol"`
	OverrideAddress     string     `json:"overrideAddress"`
	ExpiresAt           *time.Time `json:"expiresAt"`
}
