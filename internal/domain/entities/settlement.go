package entities

import (
	"math/big"
	"sync"
	"time"
)

// Route is the externally-determined leg of a payment: the network, asset and
// amount the settlement provider expects the payer's deposit on. Direct
// transfers collapse the route onto the source pair.
type Route struct {
	DestinationNetworkID   string `json:"destinationNetworkId"`
	DestinationAssetSymbol string `json:"destinationAssetSymbol"`
	DepositAmount          string `json:"depositAmount"` // human units
	IsDirectTransfer       bool   `json:"isDirectTransfer"`
}

// SettlementPlan is the validated, ordered set of transactions needed to
// complete one payment: zero or one approval followed by exactly one
// settlement. Plans are built fresh per attempt and never mutated — a new
// quote produces a new plan.
type SettlementPlan struct {
	SourceNetworkID        string   `json:"sourceNetworkId"`
	SourceAssetSymbol      string   `json:"sourceAssetSymbol"`
	SourceAmount           string   `json:"sourceAmount"` // human units
	DestinationNetworkID   string   `json:"destinationNetworkId"`
	DestinationAssetSymbol string   `json:"destinationAssetSymbol"`
	DestinationAddress     string   `json:"destinationAddress"`
	RequiresApproval       bool     `json:"requiresApproval"`
	ApprovalAmount         *big.Int `json:"-"` // smallest units, nil unless RequiresApproval
	IsDirectTransfer       bool     `json:"isDirectTransfer"`
}

// AttemptStep identifies where a payment attempt currently is in its state
// machine.
type AttemptStep string

const (
	StepNone                         AttemptStep = "none"
	StepRouting                      AttemptStep = "routing"
	StepAwaitingApprovalSignature    AttemptStep = "awaiting_approval_signature"
	StepAwaitingApprovalConfirmation AttemptStep = "awaiting_approval_confirmation"
	StepAwaitingSettlementSignature  AttemptStep = "awaiting_settlement_signature"
	StepAwaitingSettlementConfirm    AttemptStep = "awaiting_settlement_confirmation"
	StepComplete                     AttemptStep = "complete"
	StepFailed                       AttemptStep = "failed"
)

// PaymentAttempt is the mutable run state of one execution of a
// SettlementPlan. An attempt lives in memory for the duration of the run and
// is discarded on completion, failure or cancellation.
type PaymentAttempt struct {
	mu sync.Mutex

	Plan *SettlementPlan

	currentStep     AttemptStep
	lastSeenTxHash  string
	failureReason   string
	cancelRequested bool
	// processedHashes guards completion side effects: a confirmation replay
	// for an already-processed hash is a silent no-op.
	processedHashes map[string]struct{}
}

// NewPaymentAttempt creates a fresh attempt with empty run state
func NewPaymentAttempt(plan *SettlementPlan) *PaymentAttempt {
	return &PaymentAttempt{
		Plan:            plan,
		currentStep:     StepNone,
		processedHashes: make(map[string]struct{}),
	}
}

// Step returns the current step
func (a *PaymentAttempt) Step() AttemptStep {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentStep
}

// SetStep advances the state machine
func (a *PaymentAttempt) SetStep(step AttemptStep) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentStep = step
}

// LastTxHash returns the most recently observed transaction hash
func (a *PaymentAttempt) LastTxHash() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSeenTxHash
}

// RecordTxHash remembers the most recently submitted transaction
func (a *PaymentAttempt) RecordTxHash(hash string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastSeenTxHash = hash
}

// FailureReason returns the human-readable reason when the attempt failed
func (a *PaymentAttempt) FailureReason() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failureReason
}

// Fail moves the attempt to the failed step with a reason
func (a *PaymentAttempt) Fail(reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentStep = StepFailed
	a.failureReason = reason
}

// RequestCancel asks the attempt to stop before the next broadcast.
// Cancellation is only honored while awaiting a signature; once a transaction
// is broadcast it cannot be undone.
func (a *PaymentAttempt) RequestCancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelRequested = true
}

// CancelRequested reports whether cancellation was requested
func (a *PaymentAttempt) CancelRequested() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancelRequested
}

// MarkProcessed records a confirmation hash, returning false when the hash
// was already processed. Callers run completion side effects only on true.
func (a *PaymentAttempt) MarkProcessed(hash string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, seen := a.processedHashes[hash]; seen {
		return false
	}
	a.processedHashes[hash] = struct{}{}
	return true
}

// UnsignedTransaction is a ready-to-sign transaction targeting one network
type UnsignedTransaction struct {
	NetworkID string   `json:"networkId"`
	To        string   `json:"to"`
	Data      []byte   `json:"-"`
	Value     *big.Int `json:"-"`
}

// ConfirmationStatus classifies the outcome of a confirmation wait
type ConfirmationStatus string

const (
	ConfirmationSuccess      ConfirmationStatus = "success"
	ConfirmationReverted     ConfirmationStatus = "reverted"
	ConfirmationInconclusive ConfirmationStatus = "inconclusive"
)

// ConfirmationOutcome is the observed result of one transaction's
// confirmation wait.
type ConfirmationOutcome struct {
	Status      ConfirmationStatus `json:"status"`
	TxHash      string             `json:"txHash"`
	BlockNumber uint64             `json:"blockNumber,omitempty"`
	ObservedAt  time.Time          `json:"observedAt"`
}

// WalletSession is the explicit wallet-connection state handed to the
// orchestrator at attempt start. Core logic never reads wallet state from
// ambient context.
type WalletSession struct {
	Address         string `json:"address"`
	ActiveNetworkID string `json:"activeNetworkId"`
}
