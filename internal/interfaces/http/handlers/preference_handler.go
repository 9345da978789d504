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

// PreferenceHandler handles settlement preference endpoints
type PreferenceHandler struct {
	usecase *usecases.PreferenceUsecase
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(usecase *usecases.PreferenceUsecase) *PreferenceHandler {
	return &PreferenceHandler{usecase: usecase}
}

// Get returns the authenticated identity's settlement preference
// GET /api/v1/preferences
func (h *PreferenceHandler) Get(c *gin.Context) {
	identityID, ok := middleware.GetIdentityID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	pref, err := h.usecase.Get(c.Request.Context(), identityID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pref)
}

// Update replaces the authenticated identity's settlement preference
// PUT /api/v1/preferences
func (h *PreferenceHandler) Update(c *gin.Context) {
	identityID, ok := middleware.GetIdentityID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	var input entities.UpdatePreferenceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	pref, err := h.usecase.Update(c.Request.Context(), identityID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pref)
}
