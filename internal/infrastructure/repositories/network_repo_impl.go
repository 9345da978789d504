package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/domain/repositories"
	"paylink.backend/internal/infrastructure/models"
)

// networkRepo implements repositories.NetworkRepository
type networkRepo struct {
	db *gorm.DB
}

// NewNetworkRepository creates a new network repository
func NewNetworkRepository(db *gorm.DB) repositories.NetworkRepository {
	return &networkRepo{db: db}
}

// GetByID gets a network by its CAIP-2 style id
func (r *networkRepo) GetByID(ctx context.Context, id string) (*entities.Network, error) {
	var m models.Network
	if err := getDB(ctx, r.db).
		Preload("RPCs").Preload("Explorers").Preload("Aliases").
		First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetAll gets all networks with relations preloaded
func (r *networkRepo) GetAll(ctx context.Context) ([]*entities.Network, error) {
	var ms []models.Network
	if err := getDB(ctx, r.db).
		Preload("RPCs").Preload("Explorers").Preload("Aliases").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var networks []*entities.Network
	for _, m := range ms {
		model := m
		networks = append(networks, r.toEntity(&model))
	}
	return networks, nil
}

// GetAssets gets all assets on one network
func (r *networkRepo) GetAssets(ctx context.Context, networkID string) ([]*entities.Asset, error) {
	var ms []models.Asset
	if err := getDB(ctx, r.db).
		Where("network_id = ?", networkID).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return assetsToEntities(ms), nil
}

// GetAllAssets gets every asset across networks
func (r *networkRepo) GetAllAssets(ctx context.Context) ([]*entities.Asset, error) {
	var ms []models.Asset
	if err := getDB(ctx, r.db).Find(&ms).Error; err != nil {
		return nil, err
	}
	return assetsToEntities(ms), nil
}

// CreateNetwork persists a network with its RPCs, explorers and aliases
func (r *networkRepo) CreateNetwork(ctx context.Context, network *entities.Network) error {
	m := &models.Network{
		ID:              network.ID,
		DisplayName:     network.DisplayName,
		NetworkType:     string(network.NetworkType),
		NativeCurrency:  network.NativeCurrency,
		GatewayAddress:  network.GatewayAddress,
		FinalitySeconds: int(network.FinalityTimeout / time.Second),
		IsActive:        network.IsActive,
	}
	for i, url := range network.RPCEndpoints {
		m.RPCs = append(m.RPCs, models.NetworkRPC{NetworkID: network.ID, URL: url, Priority: i, IsActive: true})
	}
	for _, url := range network.ExplorerURLs {
		m.Explorers = append(m.Explorers, models.NetworkExplorer{NetworkID: network.ID, URL: url})
	}
	for _, alias := range network.Aliases {
		m.Aliases = append(m.Aliases, models.NetworkAlias{NetworkID: network.ID, Alias: alias})
	}
	return getDB(ctx, r.db).Create(m).Error
}

// CreateAsset persists an asset scoped to one network
func (r *networkRepo) CreateAsset(ctx context.Context, asset *entities.Asset) error {
	m := &models.Asset{
		NetworkID:       asset.NetworkID,
		Symbol:          asset.Symbol,
		DisplayName:     asset.DisplayName,
		Decimals:        asset.Decimals,
		ContractAddress: asset.ContractAddress,
		IsStablecoin:    asset.IsStablecoin,
	}
	if asset.PriceFeedID.Valid {
		feed := asset.PriceFeedID.String
		m.PriceFeedID = &feed
	}
	return getDB(ctx, r.db).Create(m).Error
}

func (r *networkRepo) toEntity(m *models.Network) *entities.Network {
	e := &entities.Network{
		ID:              m.ID,
		DisplayName:     m.DisplayName,
		NetworkType:     entities.NetworkType(m.NetworkType),
		NativeCurrency:  m.NativeCurrency,
		GatewayAddress:  m.GatewayAddress,
		FinalityTimeout: time.Duration(m.FinalitySeconds) * time.Second,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
	}
	for _, rpc := range m.RPCs {
		if rpc.IsActive {
			e.RPCEndpoints = append(e.RPCEndpoints, rpc.URL)
		}
	}
	for _, ex := range m.Explorers {
		e.ExplorerURLs = append(e.ExplorerURLs, ex.URL)
	}
	for _, alias := range m.Aliases {
		e.Aliases = append(e.Aliases, alias.Alias)
	}
	return e
}

func assetsToEntities(ms []models.Asset) []*entities.Asset {
	var assets []*entities.Asset
	for _, m := range ms {
		e := &entities.Asset{
			NetworkID:       m.NetworkID,
			Symbol:          m.Symbol,
			DisplayName:     m.DisplayName,
			Decimals:        m.Decimals,
			ContractAddress: m.ContractAddress,
			IsStablecoin:    m.IsStablecoin,
			CreatedAt:       m.CreatedAt,
		}
		if m.PriceFeedID != nil {
			e.PriceFeedID.SetValid(*m.PriceFeedID)
		}
		assets = append(assets, e)
	}
	return assets
}
