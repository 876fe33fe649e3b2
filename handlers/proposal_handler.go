package handlers

import (
	"net/http"
	"strings"

	"proposalforge-backend/models"
	"proposalforge-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProposalHandler handles HTTP requests for proposals
type ProposalHandler struct {
	proposals *service.ProposalService
	logger    *zap.Logger
}

// NewProposalHandler creates a new proposal handler
func NewProposalHandler(proposals *service.ProposalService, logger *zap.Logger) *ProposalHandler {
	return &ProposalHandler{
		proposals: proposals,
		logger:    logger,
	}
}

// CreateProposalRequest represents the request body for creating a proposal.
// total_amount is accepted for compatibility and ignored.
type CreateProposalRequest struct {
	ClientName      *string           `json:"client_name"`
	RawInput        string            `json:"raw_input"`
	RefinedMarkdown string            `json:"refined_markdown"`
	Status          string            `json:"status"`
	TotalAmount     *float64          `json:"total_amount"`
	LineItems       []models.LineItem `json:"lineItems"`
}

// UpdateProposalRequest represents a partial update. Fields that are not
// client settable (id, user_id, createdAt, updatedAt) are not part of it.
type UpdateProposalRequest struct {
	ClientName      *string            `json:"client_name"`
	RawInput        *string            `json:"raw_input"`
	RefinedMarkdown *string            `json:"refined_markdown"`
	Status          *string            `json:"status"`
	TotalAmount     *float64           `json:"total_amount"`
	LineItems       *[]models.LineItem `json:"lineItems"`
}

// ListProposals handles GET /proposals
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	result, err := h.proposals.ListProposals(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result.Proposals)
}

// CreateProposal handles POST /proposals
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	var req CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	serviceReq := service.CreateProposalRequest{
		ClientName:      req.ClientName,
		RawInput:        req.RawInput,
		RefinedMarkdown: req.RefinedMarkdown,
		Status:          parseStatus(&req.Status),
		LineItems:       req.LineItems,
	}
	if identity := identityFrom(c); identity != nil {
		serviceReq.OwnerID = &identity.UserID
	}

	result, err := h.proposals.CreateProposal(c.Request.Context(), serviceReq)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, result.Proposal)
}

// GetProposal handles GET /proposals/:id
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	id, ok := proposalID(c, h.logger)
	if !ok {
		return
	}

	result, err := h.proposals.GetProposal(c.Request.Context(), service.GetProposalRequest{ID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result.Proposal)
}

// UpdateProposal handles PUT /proposals/:id
func (h *ProposalHandler) UpdateProposal(c *gin.Context) {
	id, ok := proposalID(c, h.logger)
	if !ok {
		return
	}

	var req UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.proposals.UpdateProposal(c.Request.Context(), service.UpdateProposalRequest{
		ID: id,
		Patch: models.ProposalPatch{
			ClientName:      req.ClientName,
			RawInput:        req.RawInput,
			RefinedMarkdown: req.RefinedMarkdown,
			Status:          parseStatus(req.Status),
			LineItems:       req.LineItems,
		},
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result.Proposal)
}

// DeleteProposal handles DELETE /proposals/:id
func (h *ProposalHandler) DeleteProposal(c *gin.Context) {
	id, ok := proposalID(c, h.logger)
	if !ok {
		return
	}

	if err := h.proposals.DeleteProposal(c.Request.Context(), service.DeleteProposalRequest{ID: id}); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// parseStatus maps an absent or blank status to nil
func parseStatus(s *string) *models.ProposalStatus {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	status := models.ProposalStatus(strings.TrimSpace(*s))
	return &status
}

func proposalID(c *gin.Context, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, logger, service.NewValidationError("id", "Invalid proposal ID format"))
		return uuid.Nil, false
	}
	return id, true
}
