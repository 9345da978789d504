package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/domain/repositories"
	"paylink.backend/pkg/crypto"
	"paylink.backend/pkg/jwt"
)

// IdentityUsecase handles registration, login and the wallet directory
type IdentityUsecase struct {
	identityRepo repositories.IdentityRepository
	registry     *Registry
	jwtService   *jwt.JWTService
}

// NewIdentityUsecase creates a new identity usecase
func NewIdentityUsecase(identityRepo repositories.IdentityRepository, registry *Registry, jwtService *jwt.JWTService) *IdentityUsecase {
	return &IdentityUsecase{
		identityRepo: identityRepo,
		registry:     registry,
		jwtService:   jwtService,
	}
}

// Register creates a new identity and returns a token pair
func (u *IdentityUsecase) Register(ctx context.Context, input *entities.RegisterIdentityInput) (*entities.Identity, *jwt.TokenPair, error) {
	handle := strings.ToLower(strings.TrimSpace(input.Handle))
	if handle == "" || strings.ContainsAny(handle, " \t\n") {
		return nil, nil, domainerrors.BadRequest("handle must be a non-empty word")
	}

	_, err := u.identityRepo.GetByHandle(ctx, handle)
	if err == nil {
		return nil, nil, domainerrors.ErrAlreadyExists
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, nil, err
	}

	identity := &entities.Identity{
		Handle:       handle,
		DisplayName:  input.DisplayName,
		PasswordHash: passwordHash,
	}
	if err := u.identityRepo.Create(ctx, identity); err != nil {
		return nil, nil, err
	}

	tokens, err := u.jwtService.GenerateTokenPair(identity.ID, identity.Handle)
	if err != nil {
		return nil, nil, err
	}
	return identity, tokens, nil
}

// Login verifies credentials and returns a token pair
func (u *IdentityUsecase) Login(ctx context.Context, handle, password string) (*entities.Identity, *jwt.TokenPair, error) {
	identity, err := u.identityRepo.GetByHandle(ctx, handle)
	if err != nil {
		return nil, nil, domainerrors.ErrUnauthorized
	}
	if !crypto.CheckPassword(password, identity.PasswordHash) {
		return nil, nil, domainerrors.ErrUnauthorized
	}

	tokens, err := u.jwtService.GenerateTokenPair(identity.ID, identity.Handle)
	if err != nil {
		return nil, nil, err
	}
	return identity, tokens, nil
}

// Lookup resolves a handle to its identity and verified wallets
func (u *IdentityUsecase) Lookup(ctx context.Context, handle string) (*entities.Identity, error) {
	identity, err := u.identityRepo.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	wallets, err := u.identityRepo.GetWallets(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	identity.Wallets = wallets
	return identity, nil
}

// AddWallet links a wallet address to the identity on one network. The
// address must match the network's address convention.
func (u *IdentityUsecase) AddWallet(ctx context.Context, identityID uuid.UUID, networkID, address string, isPrimary bool) (*entities.IdentityWallet, error) {
	network, err := u.registry.LookupNetwork(networkID)
	if err != nil {
		return nil, domainerrors.ErrUnsupportedNetwork
	}
	if containsEllipsis(address) || !addressMatchesNetworkType(address, network.NetworkType) {
		return nil, domainerrors.Validation("address does not match the network's address convention")
	}

	wallet := &entities.IdentityWallet{
		IdentityID: identityID,
		NetworkID:  networkID,
		Address:    address,
		IsPrimary:  isPrimary,
	}
	if err := u.identityRepo.AddWallet(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// WalletOnNetwork returns the identity's wallet for a specific network
func (u *IdentityUsecase) WalletOnNetwork(ctx context.Context, identityID uuid.UUID, networkID string) (*entities.IdentityWallet, error) {
	return u.identityRepo.GetWalletByNetwork(ctx, identityID, networkID)
}
