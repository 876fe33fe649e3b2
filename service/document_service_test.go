package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"proposalforge-backend/models"
	"proposalforge-backend/render"
	"proposalforge-backend/repository/memory"
	"proposalforge-backend/service"
	"proposalforge-backend/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocumentService(t *testing.T, printer *fakePrinter) (*service.DocumentService, *memory.ProposalStore) {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	proposals := memory.NewProposalStore()
	svc := service.NewDocumentService(
		service.DocumentsWithProposalStore(proposals),
		service.DocumentsWithDocumentStore(memory.NewDocumentStore()),
		service.DocumentsWithStorage(local),
		service.DocumentsWithPrinter(printer),
	)
	return svc, proposals
}

func TestDocumentService_Preview(t *testing.T) {
	svc, _ := newDocumentService(t, &fakePrinter{})

	result, err := svc.Preview(render.Input{
		Theme:       "creative",
		ClientName:  "Acme",
		Markdown:    "# Scope\n- Build",
		LineItems:   []models.LineItem{{Description: "Build", Quantity: 2, UnitPrice: 50}},
		TotalAmount: 10,
	})
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "Proposal for Acme")
	assert.Equal(t, 100.0, result.TotalAmount)
	assert.True(t, result.TotalMismatch)
	assert.Equal(t, render.ThemeCreative, result.Document.Theme)
}

func TestDocumentService_ExportAndOpen(t *testing.T) {
	ctx := context.Background()
	printer := &fakePrinter{}
	svc, proposals := newDocumentService(t, printer)

	p := &models.Proposal{
		ClientName:      "Acme",
		RefinedMarkdown: "# Executive Summary\nHello",
		LineItems:       []models.LineItem{{Description: "Build", Quantity: 1, UnitPrice: 900}},
		TotalAmount:     900,
	}
	require.NoError(t, proposals.Create(ctx, p))

	doc, err := svc.ExportPDF(ctx, service.ExportRequest{
		ProposalID: p.ID,
		Theme:      "minimal",
		Extras:     render.Extras{Terms: "Net 30"},
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, doc.ProposalID)
	assert.Equal(t, "minimal", doc.Theme)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Equal(t, int64(len("%PDF-1.7 fake")), doc.Size)
	assert.Contains(t, printer.html, "Net 30")
	assert.Contains(t, printer.html, "Estimated Investment")

	opened, rc, err := svc.OpenDocument(ctx, doc.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(data))
	assert.Equal(t, doc.StoragePath, opened.StoragePath)

	docs, err := svc.ListDocuments(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDocumentService_ExportErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown proposal", func(t *testing.T) {
		svc, _ := newDocumentService(t, &fakePrinter{})
		_, err := svc.ExportPDF(ctx, service.ExportRequest{ProposalID: uuid.New()})
		assert.True(t, service.IsKind(err, service.KindNotFound))
	})

	t.Run("printer failure", func(t *testing.T) {
		svc, proposals := newDocumentService(t, &fakePrinter{err: errors.New("chrome crashed")})
		p := &models.Proposal{}
		require.NoError(t, proposals.Create(ctx, p))

		_, err := svc.ExportPDF(ctx, service.ExportRequest{ProposalID: p.ID})
		assert.True(t, service.IsKind(err, service.KindInternal))
	})

	t.Run("unknown document", func(t *testing.T) {
		svc, _ := newDocumentService(t, &fakePrinter{})
		_, _, err := svc.OpenDocument(ctx, uuid.New())
		assert.True(t, service.IsKind(err, service.KindNotFound))
	})
}
