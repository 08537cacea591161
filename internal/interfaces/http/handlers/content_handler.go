package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"research-fi.backend/internal/interfaces/http/response"
	"research-fi.backend/internal/usecases"
)

// ContentHandler handles the content-generation endpoint
type ContentHandler struct {
	contentUsecase *usecases.ContentUsecase
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentUsecase *usecases.ContentUsecase) *ContentHandler {
	return &ContentHandler{contentUsecase: contentUsecase}
}

// Generate drafts a study listing for a topic
// POST /api/v1/content/generate
func (h *ContentHandler) Generate(c *gin.Context) {
	var body struct {
		Topic string `json:"topic" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := h.contentUsecase.Generate(c.Request.Context(), body.Topic)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, content)
}
