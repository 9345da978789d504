package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
)

// PlanBuilder turns a resolved route and the receiver's settlement
// preference into a validated SettlementPlan.
type PlanBuilder struct {
	registry         *Registry
	allowanceChecker *AllowanceChecker
}

// NewPlanBuilder creates a new plan builder
func NewPlanBuilder(registry *Registry, allowanceChecker *AllowanceChecker) *PlanBuilder {
	return &PlanBuilder{
		registry:         registry,
		allowanceChecker: allowanceChecker,
	}
}

// BuildPlan validates the inputs in order, failing fast on the first
// violation, then decides whether the payer must grant an approval before
// settlement. For a bridged route the approval lives on the chain the
// deposit is collected on; for a direct transfer it lives on the source
// chain.
func (b *PlanBuilder) BuildPlan(ctx context.Context, sourceNetworkID, sourceAssetSymbol, amount string, route *entities.Route, preference *entities.SettlementPreference, payerAddress string) (*entities.SettlementPlan, error) {
	if d, err := decimal.NewFromString(strings.TrimSpace(amount)); err != nil || d.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive decimal", domainerrors.ErrValidation)
	}

	// A truncated display string must never reach a transfer.
	if strings.TrimSpace(preference.Address) == "" {
		return nil, fmt.Errorf("%w: receiver address is empty", domainerrors.ErrValidation)
	}
	if containsEllipsis(preference.Address) {
		return nil, fmt.Errorf("%w: receiver address is truncated", domainerrors.ErrValidation)
	}

	prefNetwork, err := b.registry.LookupNetwork(preference.NetworkID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrUnsupportedNetwork, preference.NetworkID)
	}
	if !addressMatchesNetworkType(preference.Address, prefNetwork.NetworkType) {
		return nil, fmt.Errorf("%w: receiver address does not match the %s address convention", domainerrors.ErrValidation, prefNetwork.ID)
	}

	if _, err := b.registry.LookupAsset(sourceNetworkID, sourceAssetSymbol); err != nil {
		return nil, fmt.Errorf("%w: %s on %s", domainerrors.ErrUnsupportedAsset, sourceAssetSymbol, sourceNetworkID)
	}
	if _, err := b.registry.LookupAsset(route.DestinationNetworkID, route.DestinationAssetSymbol); err != nil {
		return nil, fmt.Errorf("%w: %s on %s", domainerrors.ErrUnsupportedAsset, route.DestinationAssetSymbol, route.DestinationNetworkID)
	}

	approvalNetworkID := route.DestinationNetworkID
	approvalAssetSymbol := route.DestinationAssetSymbol
	approvalAmount := route.DepositAmount
	if route.IsDirectTransfer {
		approvalNetworkID = sourceNetworkID
		approvalAssetSymbol = sourceAssetSymbol
		approvalAmount = amount
	}

	check, err := b.allowanceChecker.CheckApprovalNeeded(ctx, approvalNetworkID, approvalAssetSymbol, payerAddress, "", approvalAmount)
	if err != nil {
		return nil, err
	}

	plan := &entities.SettlementPlan{
		SourceNetworkID:        sourceNetworkID,
		SourceAssetSymbol:      sourceAssetSymbol,
		SourceAmount:           amount,
		DestinationNetworkID:   route.DestinationNetworkID,
		DestinationAssetSymbol: route.DestinationAssetSymbol,
		DestinationAddress:     preference.Address,
		RequiresApproval:       check.NeedsApproval,
		IsDirectTransfer:       route.IsDirectTransfer,
	}
	if check.NeedsApproval {
		plan.ApprovalAmount = check.RequiredAmount
	}
	return plan, nil
}
