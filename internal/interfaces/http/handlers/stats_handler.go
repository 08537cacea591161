package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"research-fi.backend/internal/interfaces/http/response"
	"research-fi.backend/internal/usecases"
)

// StatsHandler handles the platform stats endpoint
type StatsHandler struct {
	statsUsecase *usecases.StatsUsecase
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsUsecase *usecases.StatsUsecase) *StatsHandler {
	return &StatsHandler{statsUsecase: statsUsecase}
}

// Get returns the live platform counters
// GET /api/v1/stats
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.statsUsecase.Totals(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
