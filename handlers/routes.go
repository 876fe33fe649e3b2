package handlers

import (
	"net/http"

	"proposalforge-backend/auth"
	"proposalforge-backend/metrics"
	"proposalforge-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the components the router serves
type Dependencies struct {
	Auth          *service.AuthService
	Tokens        *auth.TokenManager
	Ledger        *service.EntitlementLedger
	Engine        *service.GenerationEngine
	Proposals     *service.ProposalService
	Documents     *service.DocumentService
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
	SecureCookies bool
}

// SetupRouter builds the gin engine with every route registered
func SetupRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(Recovery(logger), RequestLogger(logger), Session(deps.Tokens))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	authHandler := NewAuthHandler(deps.Auth, deps.SecureCookies, logger)
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authHandler.Me)
		authGroup.PUT("/update", authHandler.UpdateSettings)
	}

	generateHandler := NewGenerateHandler(deps.Ledger, deps.Engine, deps.SecureCookies, logger)
	r.POST("/generate", generateHandler.Generate)

	proposalHandler := NewProposalHandler(deps.Proposals, logger)
	documentHandler := NewDocumentHandler(deps.Documents, logger)
	proposals := r.Group("/proposals")
	{
		proposals.GET("", proposalHandler.ListProposals)
		proposals.POST("", proposalHandler.CreateProposal)
		proposals.GET("/:id", proposalHandler.GetProposal)
		proposals.PUT("/:id", proposalHandler.UpdateProposal)
		proposals.DELETE("/:id", proposalHandler.DeleteProposal)
		proposals.POST("/:id/pdf", documentHandler.ExportPDF)
		proposals.GET("/:id/documents", documentHandler.ListDocuments)
	}

	r.POST("/render/preview", documentHandler.Preview)
	r.GET("/documents/:id", documentHandler.Download)

	return r
}
