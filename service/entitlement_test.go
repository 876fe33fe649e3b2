package service_test

import (
	"context"
	"testing"

	"proposalforge-backend/auth"
	"proposalforge-backend/metrics"
	"proposalforge-backend/models"
	"proposalforge-backend/repository/memory"
	"proposalforge-backend/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(users service.UserStore, m *metrics.Metrics) *service.EntitlementLedger {
	return service.NewEntitlementLedger(
		service.EntitlementWithUserStore(users),
		service.EntitlementWithPlatformKey("platform-key"),
		service.EntitlementWithLimit(3),
		service.EntitlementWithMetrics(m),
	)
}

func createUser(t *testing.T, users *memory.UserStore, count int, key *string) *auth.Identity {
	t.Helper()
	u := &models.User{Email: uuid.NewString() + "@example.com", GenerationCount: count, CustomAPIKey: key}
	require.NoError(t, users.Create(context.Background(), u))
	return &auth.Identity{UserID: u.ID, Email: u.Email}
}

func TestAuthorize_Anonymous(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(memory.NewUserStore(), nil)

	for count := 0; count < 3; count++ {
		ent, err := ledger.Authorize(ctx, nil, count)
		require.NoError(t, err, "count %d", count)
		assert.True(t, ent.Anonymous)
		assert.Equal(t, count+1, ent.AnonCount)
		assert.Equal(t, service.CredentialPlatform, ent.Credential.Source)
		assert.Equal(t, "platform-key", ent.Credential.APIKey)
	}

	_, err := ledger.Authorize(ctx, nil, 3)
	assert.True(t, service.IsKind(err, service.KindQuota))

	ent, err := ledger.Authorize(ctx, nil, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, ent.AnonCount)
}

func TestAuthorize_Account(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	m := metrics.New("test")
	ledger := newLedger(users, m)

	t.Run("exhausted without key", func(t *testing.T) {
		identity := createUser(t, users, 3, nil)
		_, err := ledger.Authorize(ctx, identity, 0)
		require.Error(t, err)
		assert.True(t, service.IsKind(err, service.KindQuota))
		assert.Contains(t, err.(*service.Error).Message, "API key")
	})

	t.Run("custom key bypasses quota", func(t *testing.T) {
		key := "user-key"
		identity := createUser(t, users, 3, &key)
		ent, err := ledger.Authorize(ctx, identity, 0)
		require.NoError(t, err)
		assert.Equal(t, service.CredentialUser, ent.Credential.Source)
		assert.Equal(t, "user-key", ent.Credential.APIKey)
		assert.False(t, ent.Anonymous)

		got, err := users.GetByID(ctx, identity.UserID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.GenerationCount, "custom key usage is not counted")
	})

	t.Run("platform usage is charged", func(t *testing.T) {
		identity := createUser(t, users, 1, nil)
		for i := 0; i < 2; i++ {
			ent, err := ledger.Authorize(ctx, identity, 0)
			require.NoError(t, err)
			assert.Equal(t, service.CredentialPlatform, ent.Credential.Source)
		}
		_, err := ledger.Authorize(ctx, identity, 0)
		assert.True(t, service.IsKind(err, service.KindQuota))

		got, err := users.GetByID(ctx, identity.UserID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.GenerationCount)
	})

	t.Run("average rate is carried", func(t *testing.T) {
		identity := createUser(t, users, 0, nil)
		rate := 80.0
		_, err := users.UpdateSettings(ctx, identity.UserID, models.UserSettings{AverageRate: &rate})
		require.NoError(t, err)

		ent, err := ledger.Authorize(ctx, identity, 0)
		require.NoError(t, err)
		assert.Equal(t, 80.0, ent.AverageRate)
	})

	assert.Equal(t, 2.0, quotaDenied(t, m, "account"))
}

func quotaDenied(t *testing.T, m *metrics.Metrics, identity string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "proposalforge_quota_denied_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "identity" && label.GetValue() == identity {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestAuthorize_UnknownAccountIsAnonymous(t *testing.T) {
	ledger := newLedger(memory.NewUserStore(), nil)
	identity := &auth.Identity{UserID: uuid.New(), Email: "gone@example.com"}

	ent, err := ledger.Authorize(context.Background(), identity, 2)
	require.NoError(t, err)
	assert.True(t, ent.Anonymous)
	assert.Equal(t, 3, ent.AnonCount)

	_, err = ledger.Authorize(context.Background(), identity, 3)
	assert.True(t, service.IsKind(err, service.KindQuota))
}

func TestCredentialString(t *testing.T) {
	cred := service.Credential{APIKey: "AIzaSecretKey1234", Source: service.CredentialUser}
	assert.Equal(t, "user:****1234", cred.String())
	assert.Equal(t, "****", service.MaskSecret("abc"))
}
