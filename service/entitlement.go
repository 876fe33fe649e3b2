package service

import (
	"context"
	"errors"
	"fmt"

	"proposalforge-backend/auth"
	"proposalforge-backend/metrics"

	"go.uber.org/zap"
)

// DefaultGenerationLimit is the lifetime number of generations allowed on
// the platform credential, both for anonymous callers and for accounts.
const DefaultGenerationLimit = 3

const (
	msgFreeLimitReached  = "Free limit reached. Sign up or log in to keep generating proposals."
	msgUsageLimitReached = "Usage limit reached. Add your own API key in settings to keep generating proposals."
)

// CredentialSource tells which key backs a generation call.
type CredentialSource string

const (
	CredentialPlatform CredentialSource = "platform"
	CredentialUser     CredentialSource = "user"
)

// Credential is the API key used for one call to the generation capability.
type Credential struct {
	APIKey string
	Source CredentialSource
}

// String masks the key so credentials can be logged.
func (c Credential) String() string {
	return fmt.Sprintf("%s:%s", c.Source, MaskSecret(c.APIKey))
}

// MaskSecret keeps the last four characters of a secret.
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// Entitlement is an allowed generation.
type Entitlement struct {
	Credential Credential
	// Anonymous is true when no known identity was presented.
	Anonymous bool
	// AnonCount is the counter the anonymous caller must present next time.
	AnonCount int
	// AverageRate is the account's hourly rate hint, if any.
	AverageRate float64
}

// EntitlementLedger decides whether a generation may run and which
// credential backs it. Quota is charged when a generation is authorised,
// before the upstream call, and is never refunded.
type EntitlementLedger struct {
	users       UserStore
	platformKey string
	limit       int
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// EntitlementOption is a functional option for EntitlementLedger
type EntitlementOption func(*EntitlementLedger)

// EntitlementWithUserStore sets the user store
func EntitlementWithUserStore(users UserStore) EntitlementOption {
	return func(l *EntitlementLedger) {
		l.users = users
	}
}

// EntitlementWithPlatformKey sets the platform-wide default credential
func EntitlementWithPlatformKey(key string) EntitlementOption {
	return func(l *EntitlementLedger) {
		l.platformKey = key
	}
}

// EntitlementWithLimit sets the free generation quota
func EntitlementWithLimit(limit int) EntitlementOption {
	return func(l *EntitlementLedger) {
		l.limit = limit
	}
}

// EntitlementWithLogger sets the logger
func EntitlementWithLogger(logger *zap.Logger) EntitlementOption {
	return func(l *EntitlementLedger) {
		l.logger = logger
	}
}

// EntitlementWithMetrics sets the metrics collectors
func EntitlementWithMetrics(m *metrics.Metrics) EntitlementOption {
	return func(l *EntitlementLedger) {
		l.metrics = m
	}
}

// NewEntitlementLedger creates a new entitlement ledger
func NewEntitlementLedger(opts ...EntitlementOption) *EntitlementLedger {
	l := &EntitlementLedger{limit: DefaultGenerationLimit, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Limit returns the free generation quota.
func (l *EntitlementLedger) Limit() int {
	return l.limit
}

// Authorize applies the entitlement policy in order: anonymous callers are
// limited by the counter they present; accounts with their own key are never
// limited; other accounts consume the durable counter atomically.
func (l *EntitlementLedger) Authorize(ctx context.Context, identity *auth.Identity, anonCount int) (*Entitlement, error) {
	if l.users == nil {
		return nil, errors.New("user store not set")
	}

	if identity != nil {
		user, err := l.users.GetByID(ctx, identity.UserID)
		switch {
		case errors.Is(err, ErrNotFound):
			l.logger.Info("session user no longer exists, treating caller as anonymous",
				zap.String("user_id", identity.UserID.String()))
		case err != nil:
			return nil, NewInternalError(fmt.Errorf("failed to load user: %w", err))
		default:
			ent := &Entitlement{}
			if user.AverageRate != nil {
				ent.AverageRate = *user.AverageRate
			}

			if user.HasCustomKey() {
				ent.Credential = Credential{APIKey: *user.CustomAPIKey, Source: CredentialUser}
				return ent, nil
			}

			ok, err := l.users.ConsumeGeneration(ctx, user.ID, l.limit)
			if err != nil {
				return nil, NewInternalError(fmt.Errorf("failed to consume generation: %w", err))
			}
			if !ok {
				l.metrics.ObserveQuotaDenied("account")
				return nil, NewQuotaError(msgUsageLimitReached)
			}
			ent.Credential = l.platformCredential()
			return ent, nil
		}
	}

	if anonCount < 0 {
		anonCount = 0
	}
	if anonCount >= l.limit {
		l.metrics.ObserveQuotaDenied("anonymous")
		return nil, NewQuotaError(msgFreeLimitReached)
	}
	return &Entitlement{
		Credential: l.platformCredential(),
		Anonymous:  true,
		AnonCount:  anonCount + 1,
	}, nil
}

func (l *EntitlementLedger) platformCredential() Credential {
	return Credential{APIKey: l.platformKey, Source: CredentialPlatform}
}
