package handlers

import (
	"net/http"

	"proposalforge-backend/models"
	"proposalforge-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateHandler handles proposal generation requests
type GenerateHandler struct {
	ledger        *service.EntitlementLedger
	engine        *service.GenerationEngine
	secureCookies bool
	logger        *zap.Logger
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(ledger *service.EntitlementLedger, engine *service.GenerationEngine, secureCookies bool, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		ledger:        ledger,
		engine:        engine,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// GenerateRequest represents the request body for a generation
type GenerateRequest struct {
	RawNotes string `json:"rawNotes"`
	Tone     string `json:"tone"`
}

// GenerateResponse is the canonical generation output
type GenerateResponse struct {
	Markdown    string            `json:"markdown"`
	LineItems   []models.LineItem `json:"lineItems"`
	TotalAmount float64           `json:"total_amount"`
}

// Generate handles POST /generate. Quota is charged before the upstream
// call; for anonymous callers the new counter is written before it too.
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	genReq := service.GenerateRequest{RawNotes: req.RawNotes, Tone: req.Tone}
	if err := service.ValidateGenerateRequest(genReq); err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	ent, err := h.ledger.Authorize(ctx, identityFrom(c), anonCount(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if ent.Anonymous {
		setAnonCount(c, ent.AnonCount, h.secureCookies)
	}

	genReq.AverageRate = ent.AverageRate
	result, err := h.engine.Generate(ctx, genReq, ent.Credential)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Markdown:    result.Markdown,
		LineItems:   result.LineItems,
		TotalAmount: result.TotalAmount,
	})
}
