package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"paylink.backend/internal/domain/entities"
	domainerrors "paylink.backend/internal/domain/errors"
	"paylink.backend/internal/interfaces/http/middleware"
	"paylink.backend/internal/interfaces/http/response"
	"paylink.backend/internal/usecases"
)

// IdentityHandler handles registration, login and identity lookups
type IdentityHandler struct {
	usecase *usecases.IdentityUsecase
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(usecase *usecases.IdentityUsecase) *IdentityHandler {
	return &IdentityHandler{usecase: usecase}
}

// Register handles identity registration
// POST /api/v1/auth/register
func (h *IdentityHandler) Register(c *gin.Context) {
	var input entities.RegisterIdentityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	identity, tokens, err := h.usecase.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"identity":     identity,
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	})
}

type loginRequest struct {
	Handle   string `json:"handle" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles identity login
// POST /api/v1/auth/login
func (h *IdentityHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	identity, tokens, err := h.usecase.Login(c.Request.Context(), req.Handle, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"identity":     identity,
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	})
}

// Lookup returns a public identity with its verified wallets
// GET /api/v1/identities/:handle
func (h *IdentityHandler) Lookup(c *gin.Context) {
	identity, err := h.usecase.Lookup(c.Request.Context(), c.Param("handle"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, identity)
}

type addWalletRequest struct {
	NetworkID string `json:"networkId" binding:"required"`
	Address   string `json:"address" binding:"required"`
	IsPrimary bool   `json:"isPrimary"`
}

// AddWallet attaches a wallet address to the authenticated identity
// POST /api/v1/identities/me/wallets
func (h *IdentityHandler) AddWallet(c *gin.Context) {
	identityID, ok := middleware.GetIdentityID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	var req addWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	wallet, err := h.usecase.AddWallet(c.Request.Context(), identityID, req.NetworkID, req.Address, req.IsPrimary)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, wallet)
}
