package handlers

import (
	"net/http"

	"proposalforge-backend/models"
	"proposalforge-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for accounts and sessions
type AuthHandler struct {
	auth          *service.AuthService
	secureCookies bool
	logger        *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, secureCookies bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:          authService,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	CompanyName *string `json:"company_name"`
}

// LoginRequest represents the request body for opening a session
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateSettingsRequest represents the request body for account settings
type UpdateSettingsRequest struct {
	CustomAPIKey *string  `json:"custom_api_key"`
	AverageRate  *float64 `json:"average_rate"`
}

type sessionUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type sessionResponse struct {
	Success bool        `json:"success"`
	User    sessionUser `json:"user"`
}

type profile struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	CompanyName     *string   `json:"company_name"`
	LogoURL         *string   `json:"logo_url"`
	HasCustomKey    bool      `json:"has_custom_key"`
	GenerationCount int       `json:"generation_count"`
	AverageRate     *float64  `json:"average_rate"`
}

type meResponse struct {
	Authenticated bool     `json:"authenticated"`
	User          *profile `json:"user,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.openSession(c, result)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.openSession(c, result)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	clearSessionCookie(c, h.secureCookies)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity := identityFrom(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, meResponse{Error: "Unauthorized"})
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), identity.UserID)
	if err != nil {
		if service.IsKind(err, service.KindAuth) {
			c.JSON(http.StatusUnauthorized, meResponse{Error: "Unauthorized"})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, meResponse{Authenticated: true, User: toProfile(user)})
}

// UpdateSettings handles PUT /auth/update
func (h *AuthHandler) UpdateSettings(c *gin.Context) {
	identity := identityFrom(c)
	if identity == nil {
		respondError(c, h.logger, service.NewAuthError("Unauthorized"))
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.auth.UpdateSettings(c.Request.Context(), service.UpdateSettingsRequest{
		UserID:       identity.UserID,
		CustomAPIKey: req.CustomAPIKey,
		AverageRate:  req.AverageRate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"has_custom_key": user.HasCustomKey(),
		"average_rate":   user.AverageRate,
	})
}

func (h *AuthHandler) openSession(c *gin.Context, result *service.SessionResult) {
	setSessionCookie(c, result.Token, h.secureCookies)
	c.JSON(http.StatusOK, sessionResponse{
		Success: true,
		User:    sessionUser{ID: result.User.ID, Email: result.User.Email},
	})
}

func toProfile(u *models.User) *profile {
	return &profile{
		ID:              u.ID,
		Email:           u.Email,
		CompanyName:     u.CompanyName,
		LogoURL:         u.LogoURL,
		HasCustomKey:    u.HasCustomKey(),
		GenerationCount: u.GenerationCount,
		AverageRate:     u.AverageRate,
	}
}
