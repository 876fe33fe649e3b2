package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"proposalforge-backend/auth"
	"proposalforge-backend/config"
	"proposalforge-backend/db"
	"proposalforge-backend/handlers"
	"proposalforge-backend/logging"
	"proposalforge-backend/metrics"
	"proposalforge-backend/models"
	"proposalforge-backend/render"
	"proposalforge-backend/repository"
	"proposalforge-backend/repository/memory"
	"proposalforge-backend/service"
	"proposalforge-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type stores struct {
	proposals service.ProposalStore
	users     service.UserStore
	documents service.DocumentStore
	close     func()
}

func main() {
	// Load .env from the working directory, falling back to the project root
	cfg, err := config.Load(".env", "../../.env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := initStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	// Unauthenticated proposal writes are owned by this account
	if err := st.users.EnsureUser(ctx, &models.User{
		ID:    cfg.DefaultOwnerID,
		Email: "owner@localhost",
	}); err != nil {
		return err
	}

	docStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("storage initialized", zap.String("type", string(cfg.Storage.Type)))

	geminiClient, err := initGemini(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if geminiClient != nil {
		defer geminiClient.Close()
	}

	printer := render.NewChromePrinter(
		render.WithChromePath(cfg.ChromePath),
		render.WithPrinterLogger(logger.Named("pdf")),
	)
	defer printer.Close()

	m := metrics.New(cfg.Environment)
	tokens := auth.NewTokenManager(cfg.JWTSecret)

	// Initialize services
	authService := service.NewAuthService(
		service.WithUserStore(st.users),
		service.WithTokenManager(tokens),
		service.WithAuthLogger(logger.Named("auth")),
	)

	ledger := service.NewEntitlementLedger(
		service.EntitlementWithUserStore(st.users),
		service.EntitlementWithPlatformKey(cfg.GeminiAPIKey),
		service.EntitlementWithLimit(cfg.FreeGenerationLimit),
		service.EntitlementWithLogger(logger.Named("entitlement")),
		service.EntitlementWithMetrics(m),
	)

	engine := service.NewGenerationEngine(
		service.GenerationWithGenerator(service.NewGeminiGenerator(geminiClient, cfg.GeminiAPIKey, cfg.GeminiModel, logger.Named("gemini"))),
		service.GenerationWithLogger(logger.Named("generation")),
		service.GenerationWithMetrics(m),
	)

	proposalService := service.NewProposalService(
		service.WithProposalStore(st.proposals),
		service.WithOwnerStore(st.users),
		service.WithDefaultOwner(cfg.DefaultOwnerID),
		service.WithProposalLogger(logger.Named("proposals")),
	)

	documentService := service.NewDocumentService(
		service.DocumentsWithProposalStore(st.proposals),
		service.DocumentsWithDocumentStore(st.documents),
		service.DocumentsWithStorage(docStorage),
		service.DocumentsWithPrinter(printer),
		service.DocumentsWithLogger(logger.Named("documents")),
		service.DocumentsWithMetrics(m),
	)

	router := handlers.SetupRouter(handlers.Dependencies{
		Auth:          authService,
		Tokens:        tokens,
		Ledger:        ledger,
		Engine:        engine,
		Proposals:     proposalService,
		Documents:     documentService,
		Metrics:       m,
		Logger:        logger.Named("http"),
		SecureCookies: cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreType))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.StoreType == config.StoreTypeMemory {
		logger.Warn("using in-memory stores, data is lost on restart")
		return &stores{
			proposals: memory.NewProposalStore(),
			users:     memory.NewUserStore(),
			documents: memory.NewDocumentStore(),
			close:     func() {},
		}, nil
	}

	if cfg.AutoMigrate {
		if err := db.Migrate(cfg.DatabaseURL, logger.Named("migrate")); err != nil {
			return nil, err
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("postgres connection established")

	return &stores{
		proposals: repository.NewProposalRepository(pool),
		users:     repository.NewUserRepository(pool),
		documents: repository.NewDocumentRepository(pool),
		close:     pool.Close,
	}, nil
}

// initGemini creates the client for the platform key. Without a key only
// accounts with their own key can generate.
func initGemini(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*genai.Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	logger.Info("gemini client initialized", zap.String("model", cfg.GeminiModel))
	return client, nil
}
