package blockchain

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/domain/repositories"
)

const defaultPollInterval = 3 * time.Second

// ReceiptObserver waits for transaction confirmations by polling receipts on
// the network the transaction was submitted to. A timeout is reported as an
// inconclusive outcome rather than an error: the transaction may still land.
type ReceiptObserver struct {
	networkRepo   repositories.NetworkRepository
	clientFactory *ClientFactory
	pollInterval  time.Duration
}

// NewReceiptObserver creates a receipt observer
func NewReceiptObserver(networkRepo repositories.NetworkRepository, clientFactory *ClientFactory) *ReceiptObserver {
	return &ReceiptObserver{
		networkRepo:   networkRepo,
		clientFactory: clientFactory,
		pollInterval:  defaultPollInterval,
	}
}

// AwaitConfirmation polls for the receipt of txHash until it appears or the
// timeout elapses.
func (o *ReceiptObserver) AwaitConfirmation(ctx context.Context, networkID, txHash string, timeout time.Duration) (*entities.ConfirmationOutcome, error) {
	network, err := o.networkRepo.GetByID(ctx, networkID)
	if err != nil {
		return nil, domainerrors.ErrUnsupportedNetwork
	}

	client, err := o.clientFactory.ClientForNetwork(network.RPCEndpoints)
	if err != nil {
		return nil, domainerrors.ErrChainRead
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := client.GetTransactionReceipt(waitCtx, txHash)
		if err == nil && receipt != nil {
			outcome := &entities.ConfirmationOutcome{
				TxHash:      txHash,
				BlockNumber: receipt.BlockNumber.Uint64(),
				ObservedAt:  time.Now(),
			}
			if receipt.Status == 1 {
				outcome.Status = entities.ConfirmationSuccess
			} else {
				outcome.Status = entities.ConfirmationReverted
			}
			return outcome, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, domainerrors.ErrChainRead
		}

		select {
		case <-waitCtx.Done():
			return &entities.ConfirmationOutcome{
				Status:     entities.ConfirmationInconclusive,
				TxHash:     txHash,
				ObservedAt: time.Now(),
			}, nil
		case <-ticker.C:
		}
	}
}
