package usecases

import (
	"testing"

	"github.com/stretchr/testify/require"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
)

func TestRegistry_LookupNetwork(t *testing.T) {
	registry := testRegistry(t)

	network, err := registry.LookupNetwork("eip155:8453")
	require.NoError(t, err)
	require.Equal(t, "Base", network.DisplayName)

	_, err = registry.LookupNetwork("eip155:999999")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRegistry_LookupAsset_CaseInsensitiveSymbol(t *testing.T) {
	registry := testRegistry(t)

	asset, err := registry.LookupAsset("eip155:8453", "usdc")
	require.NoError(t, err)
	require.Equal(t, "USDC", asset.Symbol)
	require.Equal(t, 6, asset.Decimals)

	_, err = registry.LookupAsset("eip155:8453", "DAI")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRegistry_ListAssets_UnknownNetworkIsEmptyNotError(t *testing.T) {
	registry := testRegistry(t)

	assets := registry.ListAssets("eip155:999999")
	require.NotNil(t, assets)
	require.Empty(t, assets)

	require.Len(t, registry.ListAssets("eip155:8453"), 1)
}

func TestRegistry_GatewayAddress(t *testing.T) {
	registry := testRegistry(t)

	gateway, err := registry.GatewayAddress("eip155:8453")
	require.NoError(t, err)
	require.Equal(t, testGatewayBase, gateway)

	gateway, err = registry.GatewayAddress("solana:mainnet")
	require.NoError(t, err)
	require.Equal(t, entities.GatewayNativeIntegration, gateway)

	_, err = registry.GatewayAddress("eip155:999999")
	require.ErrorIs(t, err, domainerrors.ErrUnsupportedNetwork)
}

func TestRegistry_NetworkByAlias(t *testing.T) {
	registry := testRegistry(t)

	for _, name := range []string{"base", "Base", " BASE ", "eip155:8453"} {
		network, err := registry.NetworkByAlias(name)
		require.NoError(t, err, name)
		require.Equal(t, "eip155:8453", network.ID)
	}

	network, err := registry.NetworkByAlias("matic")
	require.NoError(t, err)
	require.Equal(t, "eip155:137", network.ID)

	_, err = registry.NetworkByAlias("tron")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRegistry_ListNetworks(t *testing.T) {
	registry := testRegistry(t)
	require.Len(t, registry.ListNetworks(), 3)
}
