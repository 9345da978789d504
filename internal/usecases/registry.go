package usecases

import (
	"context"
	"strings"

	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/domain/repositories"
)

// Registry is an immutable snapshot of the configured networks and assets.
// It is built once at startup and never mutated afterwards, so lookups are
// safe from any number of goroutines without synchronization.
type Registry struct {
	networks map[string]*entities.Network
	assets   map[string]map[string]*entities.Asset
	aliases  map[string]string
}

// NewRegistry loads all networks, assets and provider-name aliases into an
// in-memory snapshot.
func NewRegistry(ctx context.Context, networkRepo repositories.NetworkRepository) (*Registry, error) {
	networks, err := networkRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		networks: make(map[string]*entities.Network, len(networks)),
		assets:   make(map[string]map[string]*entities.Asset, len(networks)),
		aliases:  make(map[string]string),
	}

	for _, network := range networks {
		r.networks[network.ID] = network
		r.aliases[strings.ToLower(network.ID)] = network.ID
		for _, alias := range network.Aliases {
			r.aliases[strings.ToLower(alias)] = network.ID
		}

		assets, err := networkRepo.GetAssets(ctx, network.ID)
		if err != nil {
			return nil, err
		}
		bySymbol := make(map[string]*entities.Asset, len(assets))
		for _, asset := range assets {
			bySymbol[strings.ToUpper(asset.Symbol)] = asset
		}
		r.assets[network.ID] = bySymbol
	}

	return r, nil
}

// LookupNetwork returns the network with the given id.
func (r *Registry) LookupNetwork(id string) (*entities.Network, error) {
	network, ok := r.networks[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return network, nil
}

// LookupAsset returns the asset with the given symbol on the given network.
// Symbol matching is case-insensitive.
func (r *Registry) LookupAsset(networkID, symbol string) (*entities.Asset, error) {
	asset, ok := r.assets[networkID][strings.ToUpper(symbol)]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return asset, nil
}

// ListAssets returns the assets configured on a network. An unknown network
// yields an empty list, not an error: absence of tokens is valid.
func (r *Registry) ListAssets(networkID string) []*entities.Asset {
	bySymbol := r.assets[networkID]
	out := make([]*entities.Asset, 0, len(bySymbol))
	for _, asset := range bySymbol {
		out = append(out, asset)
	}
	return out
}

// ListNetworks returns all registered networks.
func (r *Registry) ListNetworks() []*entities.Network {
	out := make([]*entities.Network, 0, len(r.networks))
	for _, network := range r.networks {
		out = append(out, network)
	}
	return out
}

// GatewayAddress returns the settlement gateway for a network. The returned
// value may be the native-integration sentinel.
func (r *Registry) GatewayAddress(networkID string) (string, error) {
	network, ok := r.networks[networkID]
	if !ok {
		return "", domainerrors.ErrUnsupportedNetwork
	}
	return network.GatewayAddress, nil
}

// NetworkByAlias resolves an external provider name (or a network id) to the
// network it denotes. All aliases live on the network record itself, so a
// provider name and its reverse mapping can never drift apart.
func (r *Registry) NetworkByAlias(name string) (*entities.Network, error) {
	id, ok := r.aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return r.networks[id], nil
}
