package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"proposalforge-backend/auth"
	"proposalforge-backend/metrics"
	"proposalforge-backend/models"
	"proposalforge-backend/repository/memory"
	"proposalforge-backend/service"
	"proposalforge-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const cannedGeneration = `{"markdown": "# Executive Summary\nA plan.", "lineItems": [{"description": "Design", "quantity": 2, "unit_price": 500}]}`

type stubGenerator struct {
	mu       sync.Mutex
	response string
	keys     []string
}

func (g *stubGenerator) GenerateJSON(ctx context.Context, apiKey, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.keys = append(g.keys, apiKey)
	return g.response, nil
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.keys)
}

type stubPrinter struct{}

func (stubPrinter) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.7 test"), nil
}

type testEnv struct {
	router    *gin.Engine
	generator *stubGenerator
	users     *memory.UserStore
	tokens    *auth.TokenManager
	logs      *observer.ObservedLogs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	owner := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	users := memory.NewUserStore()
	require.NoError(t, users.EnsureUser(context.Background(), &models.User{ID: owner, Email: "owner@localhost"}))
	proposals := memory.NewProposalStore()

	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	tokens := auth.NewTokenManager("test-secret")
	generator := &stubGenerator{response: cannedGeneration}
	m := metrics.New("test")

	router := SetupRouter(Dependencies{
		Auth: service.NewAuthService(
			service.WithUserStore(users),
			service.WithTokenManager(tokens),
		),
		Tokens: tokens,
		Ledger: service.NewEntitlementLedger(
			service.EntitlementWithUserStore(users),
			service.EntitlementWithPlatformKey("platform-key"),
			service.EntitlementWithLimit(3),
			service.EntitlementWithMetrics(m),
		),
		Engine: service.NewGenerationEngine(
			service.GenerationWithGenerator(generator),
			service.GenerationWithMetrics(m),
		),
		Proposals: service.NewProposalService(
			service.WithProposalStore(proposals),
			service.WithOwnerStore(users),
			service.WithDefaultOwner(owner),
		),
		Documents: service.NewDocumentService(
			service.DocumentsWithProposalStore(proposals),
			service.DocumentsWithDocumentStore(memory.NewDocumentStore()),
			service.DocumentsWithStorage(local),
			service.DocumentsWithPrinter(stubPrinter{}),
		),
		Metrics: m,
		Logger:  logger,
	})

	return &testEnv{router: router, generator: generator, users: users, tokens: tokens, logs: logs}
}

func (e *testEnv) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func sessionFor(t *testing.T, e *testEnv, user *models.User) *http.Cookie {
	t.Helper()
	token, err := e.tokens.Issue(auth.Identity{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookie, Value: token}
}
