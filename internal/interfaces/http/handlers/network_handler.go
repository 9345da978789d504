package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/interfaces/http/response"
	"paylink.backend/internal/usecases"
)

// NetworkHandler serves the network and asset registry
type NetworkHandler struct {
	registry *usecases.Registry
}

// NewNetworkHandler creates a new network handler
func NewNetworkHandler(registry *usecases.Registry) *NetworkHandler {
	return &NetworkHandler{registry: registry}
}

// List returns all configured networks
// GET /api/v1/networks
func (h *NetworkHandler) List(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"networks": h.registry.ListNetworks(),
	})
}

// ListAssets returns the assets configured on one network. The network may
// be addressed by ID or by alias.
// GET /api/v1/networks/:id/assets
func (h *NetworkHandler) ListAssets(c *gin.Context) {
	network, err := h.registry.NetworkByAlias(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"network": network.ID,
		"assets":  h.registry.ListAssets(network.ID),
	})
}

// Resolve maps a human network name to its canonical network
// GET /api/v1/networks/resolve?name=base
func (h *NetworkHandler) Resolve(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		response.Error(c, domainerrors.BadRequest("name query parameter is required"))
		return
	}

	network, err := h.registry.NetworkByAlias(name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, network)
}
