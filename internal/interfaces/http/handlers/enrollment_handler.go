package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"research-fi.backend/internal/domain/entities"
	"research-fi.backend/internal/interfaces/http/middleware"
	"research-fi.backend/internal/interfaces/http/response"
	"research-fi.backend/internal/usecases"
)

// EnrollmentHandler handles enrollment endpoints
type EnrollmentHandler struct {
	enrollmentUsecase *usecases.EnrollmentUsecase
	profileUsecase    *usecases.ProfileUsecase
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollmentUsecase *usecases.EnrollmentUsecase, profileUsecase *usecases.ProfileUsecase) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentUsecase: enrollmentUsecase,
		profileUsecase:    profileUsecase,
	}
}

// Join enrolls the caller into a study. Gated on a minimal profile; a
// blocked attempt parks an APPLY_STUDY pending action for after the save.
// POST /api/v1/studies/:id/join
func (h *EnrollmentHandler) Join(c *gin.Context) {
	studyID, ok := parseIDParam(c)
	if !ok {
		return
	}
	wallet := middleware.GetWallet(c)

	complete, err := h.profileUsecase.HasMinimalProfile(c.Request.Context(), wallet)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !complete {
		_ = h.profileUsecase.RecordPendingAction(c.Request.Context(), wallet, &entities.PendingAction{
			Type:    entities.PendingActionApplyStudy,
			StudyID: &studyID,
		})
		response.ProfileRequired(c)
		return
	}

	enrollment, err := h.enrollmentUsecase.Join(c.Request.Context(), wallet, studyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, enrollment)
}

// Mine returns the caller's enrollments with their studies
// GET /api/v1/enrollments/mine
func (h *EnrollmentHandler) Mine(c *gin.Context) {
	rows, err := h.enrollmentUsecase.ListForParticipant(c.Request.Context(), middleware.GetWallet(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrollments": rows})
}

// Complete marks an enrollment completed; researcher-only
// POST /api/v1/enrollments/:id/complete
func (h *EnrollmentHandler) Complete(c *gin.Context) {
	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enrollment id"})
		return
	}

	enrollment, err := h.enrollmentUsecase.MarkCompleted(c.Request.Context(), middleware.GetWallet(c), enrollmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, enrollment)
}

// Roster returns a study's enrollments for its owning researcher
// GET /api/v1/studies/:id/roster
func (h *EnrollmentHandler) Roster(c *gin.Context) {
	studyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	rows, err := h.enrollmentUsecase.Roster(c.Request.Context(), middleware.GetWallet(c), studyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrollments": rows})
}
