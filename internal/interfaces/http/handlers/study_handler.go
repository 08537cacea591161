package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"research-fi.backend/internal/domain/entities"
	"research-fi.backend/internal/interfaces/http/middleware"
	"research-fi.backend/internal/interfaces/http/response"
	"research-fi.backend/internal/usecases"
	"research-fi.backend/pkg/utils"
)

// StudyHandler handles study lifecycle endpoints
type StudyHandler struct {
	studyUsecase   *usecases.StudyUsecase
	profileUsecase *usecases.ProfileUsecase
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(studyUsecase *usecases.StudyUsecase, profileUsecase *usecases.ProfileUsecase) *StudyHandler {
	return &StudyHandler{
		studyUsecase:   studyUsecase,
		profileUsecase: profileUsecase,
	}
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid study id"})
		return uuid.Nil, false
	}
	return id, true
}

// List returns all studies, enriched, newest first
// GET /api/v1/studies?page=&limit=
func (h *StudyHandler) List(c *gin.Context) {
	var params utils.PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params = utils.GetPaginationParams(params.Page, params.Limit)

	studies, err := h.studyUsecase.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	total := int64(len(studies))
	if params.Limit > 0 {
		offset := params.CalculateOffset()
		if offset > len(studies) {
			offset = len(studies)
		}
		end := offset + params.Limit
		if end > len(studies) {
			end = len(studies)
		}
		studies = studies[offset:end]
	}

	response.Success(c, http.StatusOK, gin.H{
		"studies":    studies,
		"pagination": utils.CalculateMeta(total, params.Page, params.Limit),
	})
}

// Get returns one study in its enriched listing form
// GET /api/v1/studies/:id
func (h *StudyHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	study, err := h.studyUsecase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, study)
}

// Create creates a study owned by the caller's wallet. Blocked by the
// profile gate: without a display name the intent is parked as a pending
// action and 403 PROFILE_REQUIRED returned.
// POST /api/v1/studies
func (h *StudyHandler) Create(c *gin.Context) {
	wallet := middleware.GetWallet(c)

	complete, err := h.profileUsecase.HasMinimalProfile(c.Request.Context(), wallet)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !complete {
		_ = h.profileUsecase.RecordPendingAction(c.Request.Context(), wallet, &entities.PendingAction{
			Type: entities.PendingActionCreateStudy,
		})
		response.ProfileRequired(c)
		return
	}

	var input entities.CreateStudyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	study, err := h.studyUsecase.Create(c.Request.Context(), wallet, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, study)
}

// Mine returns the caller's studies
// GET /api/v1/studies/mine
func (h *StudyHandler) Mine(c *gin.Context) {
	studies, err := h.studyUsecase.ListByResearcher(c.Request.Context(), middleware.GetWallet(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"studies": studies})
}

// Update applies a partial edit to a study owned by the caller
// PUT /api/v1/studies/:id
func (h *StudyHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input entities.UpdateStudyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	study, err := h.studyUsecase.Update(c.Request.Context(), middleware.GetWallet(c), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, study)
}

// UpdateStatus moves a study through its lifecycle
// PATCH /api/v1/studies/:id/status
func (h *StudyHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body struct {
		Status entities.StudyStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	study, err := h.studyUsecase.UpdateStatus(c.Request.Context(), middleware.GetWallet(c), id, body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, study)
}

// Delete removes a study owned by the caller
// DELETE /api/v1/studies/:id
func (h *StudyHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.studyUsecase.Delete(c.Request.Context(), middleware.GetWallet(c), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
