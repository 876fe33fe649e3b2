package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"proposalforge-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createProposal(t *testing.T, e *testEnv, body string, cookies ...*http.Cookie) models.Proposal {
	t.Helper()
	w := e.do(http.MethodPost, "/proposals", body, cookies...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Proposal](t, w)
}

func TestProposals_CRUD(t *testing.T) {
	e := newTestEnv(t)

	created := createProposal(t, e, `{
		"client_name": "Acme",
		"raw_input": "notes",
		"refined_markdown": "# Scope",
		"total_amount": 5,
		"lineItems": [
			{"description": "Design", "quantity": 2, "unit_price": 500},
			{"description": "Build", "quantity": 10, "unit_price": 100},
			{"description": "Hosting", "quantity": 12, "unit_price": 20}
		]
	}`)
	assert.Equal(t, "Acme", created.ClientName)
	assert.Equal(t, models.StatusDraft, created.Status)
	assert.Equal(t, 2240.0, created.TotalAmount)
	require.Len(t, created.LineItems, 3)

	path := "/proposals/" + created.ID.String()
	w := e.do(http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Proposal](t, w)
	require.Len(t, got.LineItems, 3)
	assert.Equal(t, "Hosting", got.LineItems[2].Description)

	otherID := uuid.New()
	update := fmt.Sprintf(`{
		"id": %q,
		"user_id": %q,
		"createdAt": "2001-01-01T00:00:00Z",
		"status": "Sent",
		"lineItems": [
			{"id": %q, "description": "Retainer", "quantity": 1, "unit_price": 3000},
			{"description": "Support", "quantity": 3, "unit_price": 150}
		]
	}`, otherID, otherID, *got.LineItems[0].ID)
	w = e.do(http.MethodPut, path, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Proposal](t, w)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.UserID, updated.UserID)
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())
	assert.Equal(t, models.StatusSent, updated.Status)
	assert.Equal(t, 3450.0, updated.TotalAmount)
	assert.Equal(t, "Acme", updated.ClientName)

	w = e.do(http.MethodGet, path, "")
	got = decode[models.Proposal](t, w)
	require.Len(t, got.LineItems, 2)
	for _, item := range got.LineItems {
		assert.NotEqual(t, *created.LineItems[0].ID, *item.ID)
	}

	w = e.do(http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["success"])

	w = e.do(http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, decode[map[string]string](t, w)["error"])
}

func TestProposals_ListNewestFirst(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/proposals", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	first := createProposal(t, e, `{"client_name": "First"}`)
	second := createProposal(t, e, `{"client_name": "Second"}`)

	w = e.do(http.MethodGet, "/proposals", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.Proposal](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestProposals_Owner(t *testing.T) {
	e := newTestEnv(t)

	anonymous := createProposal(t, e, `{}`)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", anonymous.UserID.String())
	assert.Equal(t, models.DefaultClientName, anonymous.ClientName)

	user := &models.User{Email: "a@example.com"}
	require.NoError(t, e.users.Create(context.Background(), user))
	owned := createProposal(t, e, `{"client_name": ""}`, sessionFor(t, e, user))
	assert.Equal(t, user.ID, owned.UserID)
	assert.Equal(t, models.DefaultClientName, owned.ClientName)
}

func TestProposals_BadRequests(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"invalid id", http.MethodGet, "/proposals/not-a-uuid", "", http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/proposals/" + uuid.NewString(), "", http.StatusNotFound},
		{"update unknown id", http.MethodPut, "/proposals/" + uuid.NewString(), `{"status": "Sent"}`, http.StatusNotFound},
		{"delete unknown id", http.MethodDelete, "/proposals/" + uuid.NewString(), "", http.StatusNotFound},
		{"malformed body", http.MethodPost, "/proposals", `{"lineItems": "x"}`, http.StatusBadRequest},
		{"unknown status", http.MethodPost, "/proposals", `{"status": "Archived"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
