package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"research-fi.backend/internal/domain/entities"
	"research-fi.backend/internal/interfaces/http/middleware"
	"research-fi.backend/internal/interfaces/http/response"
	"research-fi.backend/internal/usecases"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	profileUsecase *usecases.ProfileUsecase
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileUsecase *usecases.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{profileUsecase: profileUsecase}
}

// GetMe returns the caller's profile
// GET /api/v1/profiles/me
func (h *ProfileHandler) GetMe(c *gin.Context) {
	profile, err := h.profileUsecase.Get(c.Request.Context(), middleware.GetWallet(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// SetMe upserts the caller's profile. The response carries the pending
// action captured when the profile gate last blocked this wallet, so the
// client can resume what the caller was doing; it is returned at most once.
// PUT /api/v1/profiles/me
func (h *ProfileHandler) SetMe(c *gin.Context) {
	var input entities.SetProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, action, err := h.profileUsecase.Set(c.Request.Context(), middleware.GetWallet(c), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"profile":       profile,
		"pendingAction": action,
	})
}
