package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"research-fi.backend/internal/interfaces/http/middleware"
	"research-fi.backend/internal/interfaces/http/response"
	"research-fi.backend/internal/usecases"
)

// FundingHandler handles the fund / credit / settle endpoints
type FundingHandler struct {
	fundingUsecase *usecases.FundingUsecase
}

// NewFundingHandler creates a new funding handler
func NewFundingHandler(fundingUsecase *usecases.FundingUsecase) *FundingHandler {
	return &FundingHandler{fundingUsecase: fundingUsecase}
}

// Fund locks the study budget in a payment session
// POST /api/v1/studies/:id/fund
func (h *FundingHandler) Fund(c *gin.Context) {
	studyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	study, err := h.fundingUsecase.FundStudy(c.Request.Context(), middleware.GetWallet(c), studyID, body.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, study)
}

// Credit moves one reward from the locked balance to a participant
// POST /api/v1/studies/:id/credit
func (h *FundingHandler) Credit(c *gin.Context) {
	studyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body struct {
		ParticipantWallet string          `json:"participantWallet" binding:"required"`
		Amount            decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.fundingUsecase.CreditParticipant(c.Request.Context(), middleware.GetWallet(c), studyID, body.ParticipantWallet, body.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// Session returns the study's ledger state
// GET /api/v1/studies/:id/session
func (h *FundingHandler) Session(c *gin.Context) {
	studyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	session, err := h.fundingUsecase.SessionBalances(c.Request.Context(), middleware.GetWallet(c), studyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// Settle closes the session and pays out completed enrollments
// POST /api/v1/studies/:id/settle
func (h *FundingHandler) Settle(c *gin.Context) {
	studyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.fundingUsecase.Settle(c.Request.Context(), middleware.GetWallet(c), studyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
