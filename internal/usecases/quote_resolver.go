package usecases

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/infrastructure/settlement"
	"paylink.backend/pkg/logger"
)

// QuoteProvider is the external settlement service boundary.
type QuoteProvider interface {
	Quote(ctx context.Context, payerAddress, amount string) (*settlement.QuoteResponse, error)
	BuildTransaction(ctx context.Context, req settlement.BuildTransactionRequest) (*settlement.BuildResult, error)
}

// QuoteResolver turns a payer and amount into a concrete deposit route via
// the external settlement provider.
type QuoteResolver struct {
	registry *Registry
	provider QuoteProvider
}

// NewQuoteResolver creates a new quote resolver
func NewQuoteResolver(registry *Registry, provider QuoteProvider) *QuoteResolver {
	return &QuoteResolver{
		registry: registry,
		provider: provider,
	}
}

// ResolveRoute asks the provider for its best route and maps the provider's
// blockchain name onto a registered network. Unknown names fail closed as an
// unsupported route, never a guessed network. No retries here: a failed
// quote call surfaces immediately and the caller decides whether to start a
// fresh attempt.
func (r *QuoteResolver) ResolveRoute(ctx context.Context, payerAddress, humanAmount, sourceNetworkID, sourceAssetSymbol string) (*entities.Route, error) {
	quote, err := r.provider.Quote(ctx, payerAddress, humanAmount)
	if err != nil {
		return nil, err
	}

	network, err := r.registry.NetworkByAlias(quote.Blockchain)
	if err != nil {
		logger.Warn(ctx, "quote names an unmapped blockchain",
			zap.String("blockchain", quote.Blockchain))
		return nil, fmt.Errorf("%w: unknown blockchain %q", domainerrors.ErrUnsupportedRoute, quote.Blockchain)
	}

	asset, err := r.registry.LookupAsset(network.ID, quote.TokenSymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: token %s not registered on %s", domainerrors.ErrUnsupportedRoute, quote.TokenSymbol, network.ID)
	}
	if asset.Decimals != int(quote.TokenDecimals) {
		return nil, fmt.Errorf("%w: decimals mismatch for %s on %s", domainerrors.ErrUnsupportedRoute, asset.Symbol, network.ID)
	}

	return &entities.Route{
		DestinationNetworkID:   network.ID,
		DestinationAssetSymbol: asset.Symbol,
		DepositAmount:          quote.DepositAmount,
		IsDirectTransfer: network.ID == sourceNetworkID &&
			strings.EqualFold(asset.Symbol, sourceAssetSymbol),
	}, nil
}
