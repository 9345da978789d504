package entities

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// NetworkType represents the execution model of a blockchain network
type NetworkType string

const (
	NetworkTypeEVM NetworkType = "EVM"
	NetworkTypeSVM NetworkType = "SVM"
)

// GatewayNativeIntegration marks networks whose settlement is natively
// integrated, i.e. no gateway contract exists to hold allowances.
const GatewayNativeIntegration = "native-integration"

// Network represents a blockchain network supported for settlement
type Network struct {
	ID             string      `json:"id"` // CAIP-2 style, e.g. "eip155:8453"
	DisplayName    string      `json:"displayName"`
	NetworkType    NetworkType `json:"networkType"`
	NativeCurrency string      `json:"nativeCurrency"`
	GatewayAddress string      `json:"gatewayAddress"` // contract address or GatewayNativeIntegration
	RPCEndpoints   []string    `json:"rpcEndpoints"`
	ExplorerURLs   []string    `json:"explorerUrls,omitempty"`
	// Aliases carries every external name the settlement provider may use
	// for this network, so provider responses map back without a second
	// hand-maintained table.
	Aliases []string `json:"aliases,omitempty"`
	// FinalityTimeout bounds confirmation waits on this network; zero means
	// the orchestrator default applies.
	FinalityTimeout time.Duration `json:"-"`
	IsActive        bool          `json:"isActive"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Namespace returns the namespace part of the network ID (e.g. "eip155")
func (n *Network) Namespace() string {
	if i := strings.IndexByte(n.ID, ':'); i > 0 {
		return n.ID[:i]
	}
	return n.ID
}

// IsNativeIntegration reports whether settlement on this network bypasses a
// gateway contract entirely.
func (n *Network) IsNativeIntegration() bool {
	return n.GatewayAddress == GatewayNativeIntegration
}

// Asset represents a fungible token on a specific network
type Asset struct {
	NetworkID       string      `json:"networkId"`
	Symbol          string      `json:"symbol"`
	DisplayName     string      `json:"displayName"`
	Decimals        int         `json:"decimals"`
	ContractAddress string      `json:"contractAddress"`
	PriceFeedID     null.String `json:"priceFeedId,omitempty"`
	IsStablecoin    bool        `json:"isStablecoin"`
	CreatedAt       time.Time   `json:"createdAt"`
}
