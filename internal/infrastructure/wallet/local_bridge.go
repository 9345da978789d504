package wallet

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/domain/repositories"
	"paylink.backend/internal/infrastructure/blockchain"
)

// LocalWalletBridge signs and submits transactions with an operator key held
// by the service. It stands in for an interactive wallet: signature requests
// are approved immediately and network switches are a client reconnect.
type LocalWalletBridge struct {
	networkRepo   repositories.NetworkRepository
	clientFactory *blockchain.ClientFactory
	privateKeyHex string
	// testSubmit bypasses key handling and RPC submission in unit tests.
	testSubmit func(ctx context.Context, networkID string, tx *entities.UnsignedTransaction) (string, error)
}

// NewLocalWalletBridge creates a bridge around an operator private key.
func NewLocalWalletBridge(networkRepo repositories.NetworkRepository, clientFactory *blockchain.ClientFactory, privateKeyHex string) *LocalWalletBridge {
	return &LocalWalletBridge{
		networkRepo:   networkRepo,
		clientFactory: clientFactory,
		privateKeyHex: privateKeyHex,
	}
}

// NewLocalWalletBridgeWithSubmit creates a bridge with an injected submit
// function for tests.
func NewLocalWalletBridgeWithSubmit(networkRepo repositories.NetworkRepository, submitFn func(ctx context.Context, networkID string, tx *entities.UnsignedTransaction) (string, error)) *LocalWalletBridge {
	return &LocalWalletBridge{
		networkRepo: networkRepo,
		testSubmit:  submitFn,
	}
}

// Session derives a wallet session from the operator key, starting on the
// given network.
func (b *LocalWalletBridge) Session(networkID string) (*entities.WalletSession, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(b.privateKeyHex, "0x"))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid operator private key")
	}
	return &entities.WalletSession{
		Address:         crypto.PubkeyToAddress(key.PublicKey).Hex(),
		ActiveNetworkID: networkID,
	}, nil
}

// SwitchNetwork moves the session to another network. The switch fails when
// the network is unknown, inactive, or unreachable.
func (b *LocalWalletBridge) SwitchNetwork(ctx context.Context, session *entities.WalletSession, networkID string) error {
	network, err := b.networkRepo.GetByID(ctx, networkID)
	if err != nil || !network.IsActive {
		return domainerrors.ErrNetworkSwitch
	}

	if b.testSubmit == nil {
		if _, err := b.clientFactory.ClientForNetwork(network.RPCEndpoints); err != nil {
			return domainerrors.ErrNetworkSwitch
		}
	}

	session.ActiveNetworkID = networkID
	return nil
}

// SignAndSubmit signs the transaction with the operator key and broadcasts
// it on the session's active network. The session must already be on the
// transaction's network.
func (b *LocalWalletBridge) SignAndSubmit(ctx context.Context, session *entities.WalletSession, tx *entities.UnsignedTransaction) (string, error) {
	if session.ActiveNetworkID != tx.NetworkID {
		return "", domainerrors.ErrNetworkSwitch
	}

	if b.testSubmit != nil {
		return b.testSubmit(ctx, tx.NetworkID, tx)
	}

	network, err := b.networkRepo.GetByID(ctx, tx.NetworkID)
	if err != nil {
		return "", domainerrors.ErrUnsupportedNetwork
	}

	client, err := b.clientFactory.ClientForNetwork(network.RPCEndpoints)
	if err != nil {
		return "", domainerrors.ErrChainRead
	}
	raw := client.Raw()
	if raw == nil {
		return "", domainerrors.ErrChainRead
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(b.privateKeyHex, "0x"))
	if err != nil {
		return "", domainerrors.BadRequest("invalid operator private key")
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, client.ChainID())
	if err != nil {
		return "", err
	}
	auth.Context = ctx
	if tx.Value != nil {
		auth.Value = tx.Value
	}

	contract := bind.NewBoundContract(common.HexToAddress(tx.To), abi.ABI{}, raw, raw, raw)
	sent, err := contract.RawTransact(auth, tx.Data)
	if err != nil {
		return "", err
	}
	return sent.Hash().Hex(), nil
}
