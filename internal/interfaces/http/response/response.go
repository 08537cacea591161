package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "research-fi.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps a domain error to its HTTP shape. AppErrors carry their own
// status; bare sentinels get the status of the constraint they represent.
func Error(c *gin.Context, err error) {
	appErr := toAppError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}

// ProfileRequired is the profile-gate rejection. The machine-readable code
// lets the client open the profile form and retry afterwards.
func ProfileRequired(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{
		"error": "a profile with a display name is required",
		"code":  "PROFILE_REQUIRED",
	})
}

func toAppError(err error) *domainerrors.AppError {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound(err.Error())
	case errors.Is(err, domainerrors.ErrInvalidInput):
		return domainerrors.BadRequest(err.Error())
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return domainerrors.Unauthorized(err.Error())
	case errors.Is(err, domainerrors.ErrForbidden), errors.Is(err, domainerrors.ErrProfileRequired):
		return domainerrors.Forbidden(err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyExists),
		errors.Is(err, domainerrors.ErrAlreadyEnrolled),
		errors.Is(err, domainerrors.ErrAlreadyFunded),
		errors.Is(err, domainerrors.ErrSessionSettled):
		return domainerrors.Conflict(err.Error(), err)
	case errors.Is(err, domainerrors.ErrNotFunded),
		errors.Is(err, domainerrors.ErrInsufficientFunds):
		return domainerrors.BadRequest(err.Error())
	case errors.Is(err, domainerrors.ErrNotConfigured):
		return domainerrors.NewAppError(http.StatusServiceUnavailable, err.Error(), err)
	default:
		return domainerrors.InternalError(err)
	}
}
