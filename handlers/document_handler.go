package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"proposalforge-backend/models"
	"proposalforge-backend/pricing"
	"proposalforge-backend/render"
	"proposalforge-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentHandler handles rendering and exported documents
type DocumentHandler struct {
	documents *service.DocumentService
	logger    *zap.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents *service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		logger:    logger,
	}
}

// PreviewRequest is an unsaved proposal to render
type PreviewRequest struct {
	Theme       string            `json:"theme"`
	ClientName  string            `json:"client_name"`
	Markdown    string            `json:"markdown"`
	LineItems   []models.LineItem `json:"lineItems"`
	TotalAmount *float64          `json:"total_amount"`
	Extras      render.Extras     `json:"extras"`
}

// PreviewResponse is the rendered proposal
type PreviewResponse struct {
	HTML          string           `json:"html"`
	Document      *render.Document `json:"document"`
	TotalAmount   float64          `json:"total_amount"`
	TotalMismatch bool             `json:"total_mismatch"`
}

// ExportRequest selects the theme and extras of a PDF export
type ExportRequest struct {
	Theme  string        `json:"theme"`
	Extras render.Extras `json:"extras"`
}

// Preview handles POST /render/preview
func (h *DocumentHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	total := pricing.ComputeTotal(req.LineItems)
	if req.TotalAmount != nil {
		total = *req.TotalAmount
	}

	result, err := h.documents.Preview(render.Input{
		Theme:       render.Theme(req.Theme),
		ClientName:  req.ClientName,
		Markdown:    req.Markdown,
		LineItems:   req.LineItems,
		TotalAmount: total,
		Extras:      req.Extras,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, PreviewResponse{
		HTML:          result.HTML,
		Document:      result.Document,
		TotalAmount:   result.TotalAmount,
		TotalMismatch: result.TotalMismatch,
	})
}

// ExportPDF handles POST /proposals/:id/pdf. The body is optional.
func (h *DocumentHandler) ExportPDF(c *gin.Context) {
	id, ok := proposalID(c, h.logger)
	if !ok {
		return
	}

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body")
		return
	}

	doc, err := h.documents.ExportPDF(c.Request.Context(), service.ExportRequest{
		ProposalID: id,
		Theme:      render.Theme(req.Theme),
		Extras:     req.Extras,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// ListDocuments handles GET /proposals/:id/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	id, ok := proposalID(c, h.logger)
	if !ok {
		return
	}

	docs, err := h.documents.ListDocuments(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}

// Download handles GET /documents/:id
func (h *DocumentHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, service.NewValidationError("id", "Invalid document ID format"))
		return
	}

	doc, reader, err := h.documents.OpenDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, doc.Size, doc.MimeType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", doc.Filename),
	})
}
