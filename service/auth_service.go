package service

import (
	"context"
	"errors"
	"strings"

	"proposalforge-backend/auth"
	"proposalforge-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const msgInvalidCredentials = "Invalid credentials"

// AuthService handles registration, login and account settings
type AuthService struct {
	users  UserStore
	tokens *auth.TokenManager
	logger *zap.Logger
}

// AuthServiceOption is a functional option for AuthService
type AuthServiceOption func(*AuthService)

// WithUserStore sets the user store
func WithUserStore(users UserStore) AuthServiceOption {
	return func(s *AuthService) {
		s.users = users
	}
}

// WithTokenManager sets the session token manager
func WithTokenManager(tokens *auth.TokenManager) AuthServiceOption {
	return func(s *AuthService) {
		s.tokens = tokens
	}
}

// WithAuthLogger sets the logger
func WithAuthLogger(logger *zap.Logger) AuthServiceOption {
	return func(s *AuthService) {
		s.logger = logger
	}
}

// NewAuthService creates a new auth service
func NewAuthService(opts ...AuthServiceOption) *AuthService {
	s := &AuthService{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest represents a request to create an account
type RegisterRequest struct {
	Email       string
	Password    string
	CompanyName *string
}

// LoginRequest represents a request to open a session
type LoginRequest struct {
	Email    string
	Password string
}

// SessionResult carries the account and its freshly issued session token
type SessionResult struct {
	User  *models.User
	Token string
}

// Register creates an account and opens a session for it
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*SessionResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, NewValidationError("email", "Email and password are required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, NewInternalError(err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		CompanyName:  req.CompanyName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, NewValidationError("email", "User already exists")
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, NewInternalError(err)
	}

	s.logger.Info("user registered", zap.Stringer("user_id", user.ID))
	return s.openSession(user)
}

// Login verifies credentials without revealing which of them was wrong
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*SessionResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, NewValidationError("email", "Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewAuthError(msgInvalidCredentials)
		}
		s.logger.Error("failed to look up user", zap.Error(err))
		return nil, NewInternalError(err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, NewAuthError(msgInvalidCredentials)
	}

	return s.openSession(user)
}

// Authenticate resolves a session token to a live account. A token whose
// account no longer exists is an auth error.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, NewAuthError("Unauthorized")
	}
	identity, err := s.tokens.Verify(token)
	if err != nil {
		return nil, NewAuthError("Unauthorized")
	}
	return s.CurrentUser(ctx, identity.UserID)
}

// CurrentUser loads the account behind a verified identity
func (s *AuthService) CurrentUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewAuthError("Unauthorized")
		}
		return nil, NewInternalError(err)
	}
	return user, nil
}

// UpdateSettingsRequest represents a settings change. An empty key clears
// the stored key; a nil field is left unchanged.
type UpdateSettingsRequest struct {
	UserID       uuid.UUID
	CustomAPIKey *string
	AverageRate  *float64
}

// UpdateSettings stores the custom generation key and hourly rate
func (s *AuthService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*models.User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if req.AverageRate != nil && *req.AverageRate < 0 {
		return nil, NewValidationError("average_rate", "average_rate must not be negative")
	}

	settings := models.UserSettings{AverageRate: req.AverageRate}
	if req.CustomAPIKey != nil {
		key := strings.TrimSpace(*req.CustomAPIKey)
		settings.CustomAPIKey = &key
	}

	user, err := s.users.UpdateSettings(ctx, req.UserID, settings)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewAuthError("Unauthorized")
		}
		s.logger.Error("failed to update settings", zap.Stringer("user_id", req.UserID), zap.Error(err))
		return nil, NewInternalError(err)
	}

	s.logger.Info("settings updated",
		zap.Stringer("user_id", user.ID),
		zap.Bool("has_custom_key", user.HasCustomKey()),
	)
	return user, nil
}

func (s *AuthService) openSession(user *models.User) (*SessionResult, error) {
	token, err := s.tokens.Issue(auth.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, NewInternalError(err)
	}
	return &SessionResult{User: user, Token: token}, nil
}

func (s *AuthService) ready() error {
	if s.users == nil {
		return errors.New("user store not set")
	}
	if s.tokens == nil {
		return errors.New("token manager not set")
	}
	return nil
}
