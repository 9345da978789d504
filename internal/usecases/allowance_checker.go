package usecases

import (
	"context"
	"math/big"

	"go.uber.org/zap"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/infrastructure/blockchain"
	"paylink.backend/pkg/logger"
)

// ApprovalCheck is the result of an allowance comparison.
type ApprovalCheck struct {
	NeedsApproval    bool     `json:"needsApproval"`
	CurrentAllowance *big.Int `json:"currentAllowance"`
	RequiredAmount   *big.Int `json:"requiredAmount"`
}

// AllowanceChecker decides whether a payer must grant an ERC20 approval
// before the gateway can collect a deposit.
type AllowanceChecker struct {
	registry      *Registry
	clientFactory *blockchain.ClientFactory
}

// NewAllowanceChecker creates a new allowance checker
func NewAllowanceChecker(registry *Registry, clientFactory *blockchain.ClientFactory) *AllowanceChecker {
	return &AllowanceChecker{
		registry:      registry,
		clientFactory: clientFactory,
	}
}

// CheckApprovalNeeded compares the owner's on-chain allowance for the
// spender against the amount the payment needs. The amount is converted to
// base units rounding down, so an approval is never requested for more than
// the payer typed. A non-positive or non-numeric amount is a deliberate
// no-op, not an error. An empty spenderAddress means the network's gateway.
func (c *AllowanceChecker) CheckApprovalNeeded(ctx context.Context, networkID, assetSymbol, ownerAddress, spenderAddress, humanAmount string) (*ApprovalCheck, error) {
	noApproval := &ApprovalCheck{
		NeedsApproval:    false,
		CurrentAllowance: big.NewInt(0),
		RequiredAmount:   big.NewInt(0),
	}

	asset, err := c.registry.LookupAsset(networkID, assetSymbol)
	if err != nil {
		return nil, domainerrors.ErrUnsupportedAsset
	}

	gateway, err := c.registry.GatewayAddress(networkID)
	if err != nil {
		return nil, err
	}
	if gateway == entities.GatewayNativeIntegration {
		// Natively integrated settlement has no token contract to approve
		// against.
		return noApproval, nil
	}

	required, err := toBaseUnits(humanAmount, asset.Decimals)
	if err != nil {
		return noApproval, nil
	}

	network, err := c.registry.LookupNetwork(networkID)
	if err != nil {
		return nil, domainerrors.ErrUnsupportedNetwork
	}
	if network.NetworkType != entities.NetworkTypeEVM {
		return noApproval, nil
	}

	spender := spenderAddress
	if spender == "" {
		spender = gateway
	}

	client, err := c.clientFactory.ClientForNetwork(network.RPCEndpoints)
	if err != nil {
		logger.Warn(ctx, "allowance read unavailable",
			zap.String("network_id", networkID), zap.Error(err))
		return nil, domainerrors.ErrChainRead
	}

	current, err := client.GetAllowance(ctx, asset.ContractAddress, ownerAddress, spender)
	if err != nil {
		logger.Warn(ctx, "allowance read failed",
			zap.String("network_id", networkID), zap.String("asset", asset.Symbol), zap.Error(err))
		return nil, domainerrors.ErrChainRead
	}

	return &ApprovalCheck{
		NeedsApproval:    current.Cmp(required) < 0,
		CurrentAllowance: current,
		RequiredAmount:   required,
	}, nil
}
