package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "paylink.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. AppErrors carry their own status; bare
// domain sentinels are mapped here so usecases can return them unwrapped.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{
			"message": appErr.Message,
			"error":   appErr.Message,
		})
		return
	}

	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	c.JSON(status, gin.H{
		"message": message,
		"error":   message,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domainerrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domainerrors.ErrInvalidInput), errors.Is(err, domainerrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domainerrors.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainerrors.ErrUnsupportedNetwork),
		errors.Is(err, domainerrors.ErrUnsupportedAsset),
		errors.Is(err, domainerrors.ErrUnsupportedRoute):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainerrors.ErrRequestNotPending):
		return http.StatusConflict
	case errors.Is(err, domainerrors.ErrQuoteUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
