package settlement

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
)

// minCalldataLen rejects payloads too short to carry a function selector.
const minCalldataLen = 4

// QuoteResponse is the provider's best route for a payer and amount.
// DepositAmount is in human units of the quoted token.
type QuoteResponse struct {
	Blockchain    string `json:"blockchain"`
	TokenSymbol   string `json:"tokenSymbol"`
	TokenDecimals int32  `json:"tokenDecimals"`
	DepositAmount string `json:"depositAmount"`
}

// BuildTransactionRequest asks the provider for a ready-to-sign settlement
// transaction.
type BuildTransactionRequest struct {
	ReceiverIdentity    string `json:"receiverIdentity"`
	Amount              string `json:"amount"`
	SourceNetwork       string `json:"sourceNetwork"`
	SourceAssetSymbol   string `json:"sourceAssetSymbol"`
	SourceAddress       string `json:"sourceAddress"`
	OverrideNetwork     string `json:"overrideNetwork,omitempty"`
	OverrideAssetSymbol string `json:"overrideAssetSymbol,omitempty"`
	OverrideAddress     string `json:"overrideAddress,omitempty"`
}

type providerTransaction struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

type buildTransactionResponse struct {
	Success          bool                 `json:"success"`
	IsDirectTransfer bool                 `json:"isDirectTransfer"`
	Transaction      *providerTransaction `json:"transaction,omitempty"`
	Error            string               `json:"error,omitempty"`
}

// BuildResult is a validated settlement transaction returned by the provider.
type BuildResult struct {
	IsDirectTransfer bool
	Transaction      *entities.UnsignedTransaction
}

// ProviderClient talks to the external settlement provider over HTTP.
// No retries at this layer: a failed call surfaces immediately so callers
// never settle against a stale or guessed route.
type ProviderClient struct {
	baseURL string
	http    *http.Client
}

// NewProviderClient constructs a provider client with an explicit timeout.
func NewProviderClient(baseURL string, timeout time.Duration) *ProviderClient {
	return &ProviderClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// Quote requests the provider's best route for the payer and amount.
func (c *ProviderClient) Quote(ctx context.Context, payerAddress, amount string) (*QuoteResponse, error) {
	body := map[string]string{
		"payerAddress": payerAddress,
		"amount":       amount,
	}

	var out QuoteResponse
	if err := c.post(ctx, "/quote", body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrQuoteUnavailable, err)
	}
	if out.Blockchain == "" || out.TokenSymbol == "" || out.DepositAmount == "" {
		return nil, fmt.Errorf("%w: incomplete quote response", domainerrors.ErrQuoteUnavailable)
	}
	return &out, nil
}

// BuildTransaction requests a settlement transaction and validates the
// payload before handing it to signing code. A success=false response or a
// malformed transaction both surface as a build failure.
func (c *ProviderClient) BuildTransaction(ctx context.Context, req BuildTransactionRequest) (*BuildResult, error) {
	var out buildTransactionResponse
	if err := c.post(ctx, "/transactions", req, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrSettlementBuildFailed, err)
	}

	if !out.Success {
		reason := out.Error
		if reason == "" {
			reason = "provider declined the transaction"
		}
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrSettlementBuildFailed, reason)
	}
	if out.Transaction == nil {
		return nil, fmt.Errorf("%w: success response without transaction", domainerrors.ErrSettlementBuildFailed)
	}

	tx, err := validateTransaction(out.Transaction)
	if err != nil {
		return nil, err
	}

	return &BuildResult{
		IsDirectTransfer: out.IsDirectTransfer,
		Transaction:      tx,
	}, nil
}

func validateTransaction(tx *providerTransaction) (*entities.UnsignedTransaction, error) {
	if !common.IsHexAddress(tx.To) {
		return nil, fmt.Errorf("%w: malformed destination address %q", domainerrors.ErrSettlementBuildFailed, tx.To)
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(tx.Data, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: calldata is not valid hex", domainerrors.ErrSettlementBuildFailed)
	}
	if len(raw) < minCalldataLen {
		return nil, fmt.Errorf("%w: calldata implausibly short (%d bytes)", domainerrors.ErrSettlementBuildFailed, len(raw))
	}

	return &entities.UnsignedTransaction{
		To:   common.HexToAddress(tx.To).Hex(),
		Data: raw,
	}, nil
}

func (c *ProviderClient) post(ctx context.Context, path string, body, out interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider %s failed: status=%d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
