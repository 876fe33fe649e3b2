package handlers

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"proposalforge-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_AnonymousQuota(t *testing.T) {
	e := newTestEnv(t)

	for count := 0; count < 3; count++ {
		w := e.do(http.MethodPost, "/generate", `{"rawNotes": "Build a site"}`,
			&http.Cookie{Name: anonCookie, Value: strconv.Itoa(count)})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		c := cookieNamed(w, anonCookie)
		require.NotNil(t, c)
		assert.Equal(t, strconv.Itoa(count+1), c.Value)
		assert.Equal(t, "/", c.Path)
	}

	w := e.do(http.MethodPost, "/generate", `{"rawNotes": "Build a site"}`,
		&http.Cookie{Name: anonCookie, Value: "3"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decode[map[string]string](t, w)
	assert.Contains(t, body["error"], "Free limit reached")
	assert.Equal(t, 3, e.generator.calls(), "no upstream call once the quota is exhausted")
}

func TestGenerate_ResponseShape(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/generate", `{"rawNotes": "notes", "tone": "Friendly"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[GenerateResponse](t, w)
	assert.Equal(t, "# Executive Summary\nA plan.", resp.Markdown)
	require.Len(t, resp.LineItems, 1)
	assert.Equal(t, 1000.0, resp.TotalAmount)
}

func TestGenerate_MissingNotes(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/generate", `{"rawNotes": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "rawNotes", decode[map[string]string](t, w)["field"])
	assert.Nil(t, cookieNamed(w, anonCookie), "validation failures are not charged")
	assert.Zero(t, e.generator.calls())

	w = e.do(http.MethodPost, "/generate", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_UnparseableOutput(t *testing.T) {
	e := newTestEnv(t)
	e.generator.response = "not json"

	w := e.do(http.MethodPost, "/generate", `{"rawNotes": "notes"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	body := decode[map[string]any](t, w)
	assert.Contains(t, body["error"], "Failed to generate proposal")
	assert.NotContains(t, body, "markdown")

	c := cookieNamed(w, anonCookie)
	require.NotNil(t, c)
	assert.Equal(t, "1", c.Value, "quota is charged on attempt")

	assert.Equal(t, 1, e.logs.FilterMessage("request failed").Len())
}

func TestGenerate_AccountQuotaAndCustomKey(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	user := &models.User{Email: "a@example.com", GenerationCount: 3}
	require.NoError(t, e.users.Create(ctx, user))
	session := sessionFor(t, e, user)

	w := e.do(http.MethodPost, "/generate", `{"rawNotes": "notes"}`, session)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "own API key")
	assert.Nil(t, cookieNamed(w, anonCookie))

	w = e.do(http.MethodPut, "/auth/update", `{"custom_api_key": "user-key"}`, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["has_custom_key"])

	w = e.do(http.MethodPost, "/generate", `{"rawNotes": "notes"}`, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"user-key"}, e.generator.keys)
}

func TestGenerate_AccountIsCharged(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	user := &models.User{Email: "b@example.com", GenerationCount: 2}
	require.NoError(t, e.users.Create(ctx, user))
	session := sessionFor(t, e, user)

	w := e.do(http.MethodPost, "/generate", `{"rawNotes": "notes"}`, session)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := e.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.GenerationCount)

	w = e.do(http.MethodPost, "/generate", `{"rawNotes": "notes"}`, session)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
