package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"proposalforge-backend/metrics"
	"proposalforge-backend/models"
	"proposalforge-backend/pricing"
	"proposalforge-backend/render"
	"proposalforge-backend/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const pdfMimeType = "application/pdf"

// DocumentService renders proposals and keeps exported PDFs
type DocumentService struct {
	proposals ProposalStore
	documents DocumentStore
	storage   storage.Storage
	printer   render.Printer
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// DocumentServiceOption is a functional option for DocumentService
type DocumentServiceOption func(*DocumentService)

// DocumentsWithProposalStore sets the proposal store
func DocumentsWithProposalStore(store ProposalStore) DocumentServiceOption {
	return func(s *DocumentService) {
		s.proposals = store
	}
}

// DocumentsWithDocumentStore sets the document store
func DocumentsWithDocumentStore(store DocumentStore) DocumentServiceOption {
	return func(s *DocumentService) {
		s.documents = store
	}
}

// DocumentsWithStorage sets the blob storage for PDFs
func DocumentsWithStorage(st storage.Storage) DocumentServiceOption {
	return func(s *DocumentService) {
		s.storage = st
	}
}

// DocumentsWithPrinter sets the PDF printer
func DocumentsWithPrinter(p render.Printer) DocumentServiceOption {
	return func(s *DocumentService) {
		s.printer = p
	}
}

// DocumentsWithLogger sets the logger
func DocumentsWithLogger(logger *zap.Logger) DocumentServiceOption {
	return func(s *DocumentService) {
		s.logger = logger
	}
}

// DocumentsWithMetrics sets the metrics collectors
func DocumentsWithMetrics(m *metrics.Metrics) DocumentServiceOption {
	return func(s *DocumentService) {
		s.metrics = m
	}
}

// NewDocumentService creates a new document service
func NewDocumentService(opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PreviewResult is a rendered proposal ready for display
type PreviewResult struct {
	HTML          string
	Document      *render.Document
	TotalAmount   float64
	TotalMismatch bool
}

// Preview renders in without persisting anything
func (s *DocumentService) Preview(in render.Input) (*PreviewResult, error) {
	doc := render.Render(in)
	html, err := doc.HTML()
	if err != nil {
		return nil, NewInternalError(err)
	}

	result := &PreviewResult{
		HTML:          html,
		Document:      doc,
		TotalAmount:   pricing.ComputeTotal(in.LineItems),
		TotalMismatch: doc.TotalMismatch,
	}
	return result, nil
}

// ExportRequest represents a request to export a stored proposal as PDF
type ExportRequest struct {
	ProposalID uuid.UUID
	Theme      render.Theme
	Extras     render.Extras
}

// ExportPDF renders the stored proposal, prints it and keeps the result
func (s *DocumentService) ExportPDF(ctx context.Context, req ExportRequest) (*models.Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	proposal, err := s.proposals.GetByID(ctx, req.ProposalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewNotFoundError("Proposal")
		}
		return nil, NewInternalError(err)
	}

	theme := render.ParseTheme(string(req.Theme))
	doc := render.Render(render.Input{
		Theme:       theme,
		ClientName:  proposal.ClientName,
		Markdown:    proposal.RefinedMarkdown,
		LineItems:   proposal.LineItems,
		TotalAmount: proposal.TotalAmount,
		Extras:      req.Extras,
	})
	if doc.TotalMismatch {
		s.logger.Warn("stored total disagrees with line items",
			zap.Stringer("proposal_id", proposal.ID),
			zap.Float64("stored_total", proposal.TotalAmount),
		)
	}

	html, err := doc.HTML()
	if err != nil {
		s.metrics.ObservePDFRender(string(theme), "error")
		return nil, NewInternalError(err)
	}

	start := time.Now()
	pdf, err := s.printer.PrintPDF(ctx, html)
	if err != nil {
		s.metrics.ObservePDFRender(string(theme), "error")
		s.logger.Error("failed to print PDF", zap.Stringer("proposal_id", proposal.ID), zap.Error(err))
		return nil, NewInternalError(err)
	}

	document := &models.Document{
		ID:         uuid.New(),
		ProposalID: proposal.ID,
		Theme:      string(theme),
		Filename:   doc.Title + ".pdf",
		MimeType:   pdfMimeType,
	}
	document.StoragePath = storage.DocumentKey(proposal.ID, document.ID, document.Filename)

	size, err := s.storage.Save(ctx, storage.Object{
		Key:         document.StoragePath,
		ContentType: pdfMimeType,
		Body:        bytes.NewReader(pdf),
	})
	if err != nil {
		s.metrics.ObservePDFRender(string(theme), "error")
		s.logger.Error("failed to store PDF", zap.String("key", document.StoragePath), zap.Error(err))
		return nil, NewInternalError(err)
	}
	document.Size = size

	if err := s.documents.Create(ctx, document); err != nil {
		if rmErr := s.storage.Remove(ctx, document.StoragePath); rmErr != nil {
			s.logger.Warn("failed to clean up orphaned PDF", zap.String("key", document.StoragePath), zap.Error(rmErr))
		}
		s.metrics.ObservePDFRender(string(theme), "error")
		return nil, NewInternalError(err)
	}

	s.metrics.ObservePDFRender(string(theme), "success")
	s.logger.Info("proposal exported",
		zap.Stringer("proposal_id", proposal.ID),
		zap.Stringer("document_id", document.ID),
		zap.String("theme", string(theme)),
		zap.Int64("size", size),
		zap.Duration("print_time", time.Since(start)),
	)
	return document, nil
}

// ListDocuments returns the exports of a proposal, newest first
func (s *DocumentService) ListDocuments(ctx context.Context, proposalID uuid.UUID) ([]*models.Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByProposal(ctx, proposalID)
	if err != nil {
		return nil, NewInternalError(err)
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	return docs, nil
}

// OpenDocument returns the document record and its content. The caller
// closes the reader.
func (s *DocumentService) OpenDocument(ctx context.Context, id uuid.UUID) (*models.Document, io.ReadCloser, error) {
	if err := s.ready(); err != nil {
		return nil, nil, err
	}

	document, err := s.documents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, NewNotFoundError("Document")
		}
		return nil, nil, NewInternalError(err)
	}

	rc, err := s.storage.Open(ctx, document.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, NewNotFoundError("Document")
		}
		return nil, nil, NewInternalError(err)
	}
	return document, rc, nil
}

func (s *DocumentService) ready() error {
	switch {
	case s.proposals == nil:
		return errors.New("proposal store not set")
	case s.documents == nil:
		return errors.New("document store not set")
	case s.storage == nil:
		return errors.New("storage not set")
	case s.printer == nil:
		return errors.New("printer not set")
	}
	return nil
}
