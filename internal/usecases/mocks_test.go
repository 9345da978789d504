package usecases

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/infrastructure/settlement"
)

const (
	testGatewayBase    = "0x1111111111111111111111111111111111111111"
	testGatewayPolygon = "0x2222222222222222222222222222222222222222"
	testUSDCBase       = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	testUSDCPolygon    = "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359"
	testPayerAddress   = "0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa"
	testReceiverEVM    = "0xBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBb"
	testReceiverSVM    = "7EYnhQoR9YM3N7UoaKRoA44Uy8JeaZV3qyouov87awMs"
)

type mockNetworkRepo struct {
	networks []*entities.Network
	assets   map[string][]*entities.Asset
}

func (m *mockNetworkRepo) GetByID(_ context.Context, id string) (*entities.Network, error) {
	for _, n := range m.networks {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (m *mockNetworkRepo) GetAll(context.Context) ([]*entities.Network, error) {
	return m.networks, nil
}

func (m *mockNetworkRepo) GetAssets(_ context.Context, networkID string) ([]*entities.Asset, error) {
	return m.assets[networkID], nil
}

func (m *mockNetworkRepo) GetAllAssets(context.Context) ([]*entities.Asset, error) {
	var out []*entities.Asset
	for _, assets := range m.assets {
		out = append(out, assets...)
	}
	return out, nil
}

func (m *mockNetworkRepo) CreateNetwork(context.Context, *entities.Network) error { return nil }
func (m *mockNetworkRepo) CreateAsset(context.Context, *entities.Asset) error     { return nil }

func testNetworkRepo() *mockNetworkRepo {
	return &mockNetworkRepo{
		networks: []*entities.Network{
			{
				ID:              "eip155:8453",
				DisplayName:     "Base",
				NetworkType:     entities.NetworkTypeEVM,
				NativeCurrency:  "ETH",
				GatewayAddress:  testGatewayBase,
				RPCEndpoints:    []string{"mock://base"},
				Aliases:         []string{"base"},
				FinalityTimeout: 30 * time.Second,
				IsActive:        true,
			},
			{
				ID:              "eip155:137",
				DisplayName:     "Polygon",
				NetworkType:     entities.NetworkTypeEVM,
				NativeCurrency:  "POL",
				GatewayAddress:  testGatewayPolygon,
				RPCEndpoints:    []string{"mock://polygon"},
				Aliases:         []string{"polygon", "matic"},
				FinalityTimeout: 30 * time.Second,
				IsActive:        true,
			},
			{
				ID:             "solana:mainnet",
				DisplayName:    "Solana",
				NetworkType:    entities.NetworkTypeSVM,
				NativeCurrency: "SOL",
				GatewayAddress: entities.GatewayNativeIntegration,
				Aliases:        []string{"solana"},
				IsActive:       true,
			},
		},
		assets: map[string][]*entities.Asset{
			"eip155:8453": {
				{NetworkID: "eip155:8453", Symbol: "USDC", DisplayName: "USD Coin", Decimals: 6, ContractAddress: testUSDCBase, IsStablecoin: true},
			},
			"eip155:137": {
				{NetworkID: "eip155:137", Symbol: "USDC", DisplayName: "USD Coin", Decimals: 6, ContractAddress: testUSDCPolygon, IsStablecoin: true},
			},
			"solana:mainnet": {
				{NetworkID: "solana:mainnet", Symbol: "USDC", DisplayName: "USD Coin", Decimals: 6, ContractAddress: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", IsStablecoin: true},
			},
		},
	}
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := NewRegistry(context.Background(), testNetworkRepo())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return registry
}

type mockIdentityRepo struct {
	byHandle map[string]*entities.Identity
	wallets  map[uuid.UUID][]*entities.IdentityWallet
}

func newMockIdentityRepo() *mockIdentityRepo {
	return &mockIdentityRepo{
		byHandle: make(map[string]*entities.Identity),
		wallets:  make(map[uuid.UUID][]*entities.IdentityWallet),
	}
}

func (m *mockIdentityRepo) add(handle string) *entities.Identity {
	identity := &entities.Identity{ID: uuid.New(), Handle: handle}
	m.byHandle[handle] = identity
	return identity
}

func (m *mockIdentityRepo) Create(_ context.Context, identity *entities.Identity) error {
	if _, ok := m.byHandle[identity.Handle]; ok {
		return domainerrors.ErrAlreadyExists
	}
	identity.ID = uuid.New()
	m.byHandle[identity.Handle] = identity
	return nil
}

func (m *mockIdentityRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Identity, error) {
	for _, identity := range m.byHandle {
		if identity.ID == id {
			return identity, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (m *mockIdentityRepo) GetByHandle(_ context.Context, handle string) (*entities.Identity, error) {
	identity, ok := m.byHandle[strings.ToLower(strings.TrimSpace(handle))]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return identity, nil
}

func (m *mockIdentityRepo) GetWallets(_ context.Context, identityID uuid.UUID) ([]*entities.IdentityWallet, error) {
	return m.wallets[identityID], nil
}

func (m *mockIdentityRepo) GetWalletByNetwork(_ context.Context, identityID uuid.UUID, networkID string) (*entities.IdentityWallet, error) {
	for _, w := range m.wallets[identityID] {
		if w.NetworkID == networkID {
			return w, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (m *mockIdentityRepo) AddWallet(_ context.Context, wallet *entities.IdentityWallet) error {
	wallet.ID = uuid.New()
	m.wallets[wallet.IdentityID] = append(m.wallets[wallet.IdentityID], wallet)
	return nil
}

type mockPreferenceRepo struct {
	byIdentity map[uuid.UUID]*entities.SettlementPreference
}

func newMockPreferenceRepo() *mockPreferenceRepo {
	return &mockPreferenceRepo{byIdentity: make(map[uuid.UUID]*entities.SettlementPreference)}
}

func (m *mockPreferenceRepo) GetByIdentity(_ context.Context, identityID uuid.UUID) (*entities.SettlementPreference, error) {
	pref, ok := m.byIdentity[identityID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return pref, nil
}

func (m *mockPreferenceRepo) Replace(_ context.Context, pref *entities.SettlementPreference) error {
	m.byIdentity[pref.IdentityID] = pref
	return nil
}

type mockRequestRepo struct {
	byID          map[uuid.UUID]*entities.PaymentRequest
	acceptedCalls int
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{byID: make(map[uuid.UUID]*entities.PaymentRequest)}
}

func (m *mockRequestRepo) Create(_ context.Context, request *entities.PaymentRequest) error {
	request.ID = uuid.New()
	request.CreatedAt = time.Now()
	m.byID[request.ID] = request
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.PaymentRequest, error) {
	request, ok := m.byID[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return request, nil
}

func (m *mockRequestRepo) ListByIdentity(_ context.Context, identityID uuid.UUID, direction entities.RequestDirection, statusFilter *entities.PaymentRequestStatus, limit, offset int) ([]*entities.PaymentRequest, int64, error) {
	var out []*entities.PaymentRequest
	for _, r := range m.byID {
		owner := r.PayerIdentityID
		if direction == entities.RequestDirectionSent {
			owner = r.PayeeIdentityID
		}
		if owner != identityID {
			continue
		}
		if statusFilter != nil && r.Status != *statusFilter {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (m *mockRequestRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entities.PaymentRequestStatus) error {
	request, ok := m.byID[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if request.Status != entities.PaymentRequestStatusPending {
		return domainerrors.ErrRequestNotPending
	}
	request.Status = status
	return nil
}

func (m *mockRequestRepo) MarkAccepted(_ context.Context, id uuid.UUID, txHash string) error {
	request, ok := m.byID[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if request.Status != entities.PaymentRequestStatusPending {
		return domainerrors.ErrRequestNotPending
	}
	m.acceptedCalls++
	request.Status = entities.PaymentRequestStatusAccepted
	request.SettledTxHash = null.StringFrom(txHash)
	return nil
}

func (m *mockRequestRepo) GetExpiredPending(_ context.Context, limit int) ([]*entities.PaymentRequest, error) {
	var out []*entities.PaymentRequest
	now := time.Now()
	for _, r := range m.byID {
		if r.Status == entities.PaymentRequestStatusPending && r.ExpiresAt.Valid && r.ExpiresAt.Time.Before(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) ExpireRequests(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if r, ok := m.byID[id]; ok && r.Status == entities.PaymentRequestStatusPending {
			r.Status = entities.PaymentRequestStatusExpired
		}
	}
	return nil
}

type mockQuoteProvider struct {
	quote      *settlement.QuoteResponse
	quoteErr   error
	built      *settlement.BuildResult
	buildErr   error
	quoteCalls int
	buildCalls int
}

func (m *mockQuoteProvider) Quote(context.Context, string, string) (*settlement.QuoteResponse, error) {
	m.quoteCalls++
	if m.quoteErr != nil {
		return nil, m.quoteErr
	}
	return m.quote, nil
}

func (m *mockQuoteProvider) BuildTransaction(context.Context, settlement.BuildTransactionRequest) (*settlement.BuildResult, error) {
	m.buildCalls++
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	return m.built, nil
}

type submission struct {
	networkID string
	to        string
}

type mockWalletBridge struct {
	switchErr    error
	rejectAll    bool
	rejectAfter  int
	submissions  []submission
	switchCalls  []string
	nextHash     int
	failOnSubmit error
}

func (m *mockWalletBridge) SwitchNetwork(_ context.Context, session *entities.WalletSession, networkID string) error {
	m.switchCalls = append(m.switchCalls, networkID)
	if m.switchErr != nil {
		return m.switchErr
	}
	session.ActiveNetworkID = networkID
	return nil
}

func (m *mockWalletBridge) SignAndSubmit(_ context.Context, session *entities.WalletSession, tx *entities.UnsignedTransaction) (string, error) {
	if session.ActiveNetworkID != tx.NetworkID {
		return "", domainerrors.ErrNetworkSwitch
	}
	if m.rejectAll || (m.rejectAfter > 0 && len(m.submissions) >= m.rejectAfter) {
		return "", domainerrors.ErrUserRejected
	}
	if m.failOnSubmit != nil {
		return "", m.failOnSubmit
	}
	m.submissions = append(m.submissions, submission{networkID: tx.NetworkID, to: tx.To})
	m.nextHash++
	return testTxHash(m.nextHash), nil
}

func testTxHash(n int) string {
	return fmt.Sprintf("0x%064d", n)
}

type mockObserver struct {
	outcomes map[string]*entities.ConfirmationOutcome
	err      error
	calls    []string
}

func (m *mockObserver) AwaitConfirmation(_ context.Context, _ string, txHash string, _ time.Duration) (*entities.ConfirmationOutcome, error) {
	m.calls = append(m.calls, txHash)
	if m.err != nil {
		return nil, m.err
	}
	if outcome, ok := m.outcomes[txHash]; ok {
		return outcome, nil
	}
	return &entities.ConfirmationOutcome{Status: entities.ConfirmationSuccess, TxHash: txHash, ObservedAt: time.Now()}, nil
}
