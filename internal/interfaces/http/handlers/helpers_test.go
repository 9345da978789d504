package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/infrastructure/blockchain"
	"paylink.backend/internal/infrastructure/settlement"
	"paylink.backend/internal/interfaces/http/middleware"
	"paylink.backend/internal/usecases"
	"paylink.backend/pkg/jwt"
)

const (
	testGatewayBase  = "0x1111111111111111111111111111111111111111"
	testUSDCBase     = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	testUSDCPolygon  = "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359"
	testPayerAddress = "0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa"
	testReceiverEVM  = "0xBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBb"
)

type stubNetworkRepo struct {
	networks []*entities.Network
	assets   map[string][]*entities.Asset
}

func (s *stubNetworkRepo) GetByID(_ context.Context, id string) (*entities.Network, error) {
	for _, n := range s.networks {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (s *stubNetworkRepo) GetAll(context.Context) ([]*entities.Network, error) {
	return s.networks, nil
}

func (s *stubNetworkRepo) GetAssets(_ context.Context, networkID string) ([]*entities.Asset, error) {
	return s.assets[networkID], nil
}

func (s *stubNetworkRepo) GetAllAssets(context.Context) ([]*entities.Asset, error) {
	var out []*entities.Asset
	for _, assets := range s.assets {
		out = append(out, assets...)
	}
	return out, nil
}

func (s *stubNetworkRepo) CreateNetwork(context.Context, *entities.Network) error { return nil }
func (s *stubNetworkRepo) CreateAsset(context.Context, *entities.Asset) error     { return nil }

func testNetworkRepo() *stubNetworkRepo {
	return &stubNetworkRepo{
		networks: []*entities.Network{
			{
				ID:              "eip155:8453",
				DisplayName:     "Base",
				NetworkType:     entities.NetworkTypeEVM,
				NativeCurrency:  "ETH",
				GatewayAddress:  testGatewayBase,
				RPCEndpoints:    []string{"mock://base"},
				Aliases:         []string{"base"},
				FinalityTimeout: time.Second,
				IsActive:        true,
			},
			{
				ID:             "eip155:137",
				DisplayName:    "Polygon",
				NetworkType:    entities.NetworkTypeEVM,
				NativeCurrency: "POL",
				GatewayAddress: "0x2222222222222222222222222222222222222222",
				RPCEndpoints:   []string{"mock://polygon"},
				Aliases:        []string{"polygon", "matic"},
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
		},
	}
}

func testRegistry(t *testing.T) *usecases.Registry {
	t.Helper()
	registry, err := usecases.NewRegistry(context.Background(), testNetworkRepo())
	require.NoError(t, err)
	return registry
}

type stubIdentityRepo struct {
	byHandle map[string]*entities.Identity
	wallets  map[uuid.UUID][]*entities.IdentityWallet
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{
		byHandle: make(map[string]*entities.Identity),
		wallets:  make(map[uuid.UUID][]*entities.IdentityWallet),
	}
}

func (s *stubIdentityRepo) add(handle string) *entities.Identity {
	identity := &entities.Identity{ID: uuid.New(), Handle: handle}
	s.byHandle[handle] = identity
	return identity
}

func (s *stubIdentityRepo) Create(_ context.Context, identity *entities.Identity) error {
	if _, ok := s.byHandle[identity.Handle]; ok {
		return domainerrors.ErrAlreadyExists
	}
	identity.ID = uuid.New()
	s.byHandle[identity.Handle] = identity
	return nil
}

func (s *stubIdentityRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Identity, error) {
	for _, identity := range s.byHandle {
		if identity.ID == id {
			return identity, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (s *stubIdentityRepo) GetByHandle(_ context.Context, handle string) (*entities.Identity, error) {
	identity, ok := s.byHandle[strings.ToLower(strings.TrimSpace(handle))]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return identity, nil
}

func (s *stubIdentityRepo) GetWallets(_ context.Context, identityID uuid.UUID) ([]*entities.IdentityWallet, error) {
	return s.wallets[identityID], nil
}

func (s *stubIdentityRepo) GetWalletByNetwork(_ context.Context, identityID uuid.UUID, networkID string) (*entities.IdentityWallet, error) {
	for _, w := range s.wallets[identityID] {
		if w.NetworkID == networkID {
			return w, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (s *stubIdentityRepo) AddWallet(_ context.Context, wallet *entities.IdentityWallet) error {
	wallet.ID = uuid.New()
	s.wallets[wallet.IdentityID] = append(s.wallets[wallet.IdentityID], wallet)
	return nil
}

type stubPreferenceRepo struct {
	byIdentity map[uuid.UUID]*entities.SettlementPreference
}

func newStubPreferenceRepo() *stubPreferenceRepo {
	return &stubPreferenceRepo{byIdentity: make(map[uuid.UUID]*entities.SettlementPreference)}
}

func (s *stubPreferenceRepo) GetByIdentity(_ context.Context, identityID uuid.UUID) (*entities.SettlementPreference, error) {
	pref, ok := s.byIdentity[identityID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return pref, nil
}

func (s *stubPreferenceRepo) Replace(_ context.Context, pref *entities.SettlementPreference) error {
	s.byIdentity[pref.IdentityID] = pref
	return nil
}

type stubRequestRepo struct {
	byID map[uuid.UUID]*entities.PaymentRequest
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{byID: make(map[uuid.UUID]*entities.PaymentRequest)}
}

func (s *stubRequestRepo) Create(_ context.Context, request *entities.PaymentRequest) error {
	request.ID = uuid.New()
	request.CreatedAt = time.Now()
	s.byID[request.ID] = request
	return nil
}

func (s *stubRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.PaymentRequest, error) {
	request, ok := s.byID[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return request, nil
}

func (s *stubRequestRepo) ListByIdentity(_ context.Context, identityID uuid.UUID, direction entities.RequestDirection, statusFilter *entities.PaymentRequestStatus, limit, offset int) ([]*entities.PaymentRequest, int64, error) {
	var out []*entities.PaymentRequest
	for _, r := range s.byID {
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

func (s *stubRequestRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entities.PaymentRequestStatus) error {
	request, ok := s.byID[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if request.Status != entities.PaymentRequestStatusPending {
		return domainerrors.ErrRequestNotPending
	}
	request.Status = status
	return nil
}

func (s *stubRequestRepo) MarkAccepted(_ context.Context, id uuid.UUID, txHash string) error {
	request, ok := s.byID[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if request.Status != entities.PaymentRequestStatusPending {
		return domainerrors.ErrRequestNotPending
	}
	request.Status = entities.PaymentRequestStatusAccepted
	request.SettledTxHash = null.StringFrom(txHash)
	return nil
}

func (s *stubRequestRepo) GetExpiredPending(context.Context, int) ([]*entities.PaymentRequest, error) {
	return nil, nil
}

func (s *stubRequestRepo) ExpireRequests(context.Context, []uuid.UUID) error { return nil }

type stubQuoteProvider struct {
	quote *settlement.QuoteResponse
	built *settlement.BuildResult
}

func (s *stubQuoteProvider) Quote(context.Context, string, string) (*settlement.QuoteResponse, error) {
	return s.quote, nil
}

func (s *stubQuoteProvider) BuildTransaction(context.Context, settlement.BuildTransactionRequest) (*settlement.BuildResult, error) {
	return s.built, nil
}

type stubWalletBridge struct {
	submissions int
}

func (s *stubWalletBridge) SwitchNetwork(_ context.Context, session *entities.WalletSession, networkID string) error {
	session.ActiveNetworkID = networkID
	return nil
}

func (s *stubWalletBridge) SignAndSubmit(_ context.Context, session *entities.WalletSession, tx *entities.UnsignedTransaction) (string, error) {
	if session.ActiveNetworkID != tx.NetworkID {
		return "", domainerrors.ErrNetworkSwitch
	}
	s.submissions++
	return "0x" + strings.Repeat("ab", 32), nil
}

type stubObserver struct{}

func (s *stubObserver) AwaitConfirmation(_ context.Context, _, txHash string, _ time.Duration) (*entities.ConfirmationOutcome, error) {
	return &entities.ConfirmationOutcome{
		Status:     entities.ConfirmationSuccess,
		TxHash:     txHash,
		ObservedAt: time.Now(),
	}, nil
}

type stubSessionProvider struct{}

func (stubSessionProvider) Session(networkID string) (*entities.WalletSession, error) {
	return &entities.WalletSession{Address: testPayerAddress, ActiveNetworkID: networkID}, nil
}

// allowanceFactory returns a client factory whose mock endpoints report the
// given allowance for every query.
func allowanceFactory(allowance *big.Int) *blockchain.ClientFactory {
	factory := blockchain.NewClientFactory()
	client := blockchain.NewEVMClientWithCallView(big.NewInt(8453), func(context.Context, string, []byte) ([]byte, error) {
		return common.LeftPadBytes(allowance.Bytes(), 32), nil
	})
	factory.RegisterEVMClient("mock://base", client)
	factory.RegisterEVMClient("mock://polygon", client)
	return factory
}

// authAs injects an authenticated identity without running the JWT middleware
func authAs(identityID uuid.UUID, handle string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityIDKey, identityID)
		c.Set(middleware.HandleKey, handle)
		c.Next()
	}
}

func testJWTService() *jwt.JWTService {
	return jwt.NewJWTService("test-secret", time.Hour, 24*time.Hour)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func init() {
	gin.SetMode(gin.TestMode)
}
