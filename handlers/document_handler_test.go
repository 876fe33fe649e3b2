package handlers

import (
	"net/http"
	"strings"
	"testing"

	"proposalforge-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/render/preview", `{
		"theme": "modern",
		"client_name": "Acme",
		"markdown": "# Title\n\nSome *italic* and **bold** text\n- item one",
		"lineItems": [{"description": "Build", "quantity": 2, "unit_price": 250}],
		"total_amount": 400,
		"extras": {"currency": {"code": "eur", "rate": 0.9}}
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[PreviewResponse](t, w)
	assert.Equal(t, 500.0, resp.TotalAmount)
	assert.True(t, resp.TotalMismatch)
	assert.Contains(t, resp.HTML, "Proposal for Acme")
	assert.Contains(t, resp.HTML, "<em>italic</em>")
	assert.Contains(t, resp.HTML, "EUR")
	require.NotNil(t, resp.Document)
	assert.Len(t, resp.Document.Body, 4)
}

func TestPreview_UnknownThemeFallsBack(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/render/preview", `{"theme": "neon", "markdown": "hello"}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[PreviewResponse](t, w)
	assert.Equal(t, "corporate", string(resp.Document.Theme))
	assert.False(t, resp.TotalMismatch)
	assert.Nil(t, resp.Document.Pricing)
}

func TestExportAndDownload(t *testing.T) {
	e := newTestEnv(t)
	p := createProposal(t, e, `{"client_name": "Acme", "refined_markdown": "# Scope", "lineItems": [{"description": "Build", "quantity": 1, "unit_price": 10}]}`)

	w := e.do(http.MethodPost, "/proposals/"+p.ID.String()+"/pdf", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	doc := decode[models.Document](t, w)
	assert.Equal(t, "corporate", doc.Theme)
	assert.Equal(t, "application/pdf", doc.MimeType)

	w = e.do(http.MethodPost, "/proposals/"+p.ID.String()+"/pdf", `{"theme": "creative", "extras": {"terms": "Net 30"}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "creative", decode[models.Document](t, w).Theme)

	w = e.do(http.MethodGet, "/proposals/"+p.ID.String()+"/documents", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Document](t, w), 2)

	w = e.do(http.MethodGet, "/documents/"+doc.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Proposal for Acme.pdf")
}

func TestExport_Errors(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/proposals/"+uuid.NewString()+"/pdf", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/documents/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/documents/nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())

	e.do(http.MethodPost, "/generate", `{"rawNotes": "notes"}`)
	w = e.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "proposalforge_generations_total")
}
