package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"proposalforge-backend/models"
	"proposalforge-backend/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(n int) []models.LineItem {
	out := make([]models.LineItem, n)
	for i := range out {
		out[i] = models.LineItem{Description: "item", Quantity: float64(i + 1), UnitPrice: 10}
	}
	return out
}

func TestProposalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewProposalStore()

	p := &models.Proposal{ClientName: "Acme", Status: models.StatusDraft, LineItems: items(3)}
	require.NoError(t, store.Create(ctx, p))
	require.NotEqual(t, uuid.Nil, p.ID)

	got, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.LineItems, 3)
	for i, item := range got.LineItems {
		require.NotNil(t, item.ID)
		assert.Equal(t, p.ID, *item.ProposalID)
		assert.Equal(t, float64(i+1), item.Quantity)
	}

	got.ClientName = "mutated"
	again, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", again.ClientName)
}

func TestProposalStore_UpdateReplacesLineItems(t *testing.T) {
	ctx := context.Background()
	store := NewProposalStore()

	p := &models.Proposal{LineItems: items(3)}
	require.NoError(t, store.Create(ctx, p))
	before, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)

	replacement := items(2)
	name := "Globex"
	updated, err := store.Update(ctx, p.ID, models.ProposalPatch{ClientName: &name, LineItems: &replacement})
	require.NoError(t, err)
	assert.Equal(t, "Globex", updated.ClientName)
	require.Len(t, updated.LineItems, 2)

	oldIDs := map[uuid.UUID]bool{}
	for _, item := range before.LineItems {
		oldIDs[*item.ID] = true
	}
	for _, item := range updated.LineItems {
		assert.False(t, oldIDs[*item.ID])
	}

	status := models.StatusSent
	updated, err = store.Update(ctx, p.ID, models.ProposalPatch{Status: &status})
	require.NoError(t, err)
	assert.Len(t, updated.LineItems, 2, "nil line items leave the set unchanged")
	assert.Equal(t, "Globex", updated.ClientName)
}

func TestProposalStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewProposalStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		p := &models.Proposal{}
		require.NoError(t, store.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)
}

func TestProposalStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewProposalStore()
	id := uuid.New()

	_, err := store.GetByID(ctx, id)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = store.Update(ctx, id, models.ProposalPatch{})
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, id), service.ErrNotFound)
}

func TestUserStore_ConsumeGenerationIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	u := &models.User{Email: "a@example.com"}
	require.NoError(t, store.Create(ctx, u))

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.ConsumeGeneration(ctx, u.ID, 3)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), allowed)
	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.GenerationCount)
}

func TestUserStore_CreateAndSettings(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	u := &models.User{Email: "a@example.com"}
	require.NoError(t, store.Create(ctx, u))
	assert.ErrorIs(t, store.Create(ctx, &models.User{Email: "A@example.com"}), service.ErrUserExists)

	key := "sk-123"
	rate := 95.0
	updated, err := store.UpdateSettings(ctx, u.ID, models.UserSettings{CustomAPIKey: &key, AverageRate: &rate})
	require.NoError(t, err)
	assert.True(t, updated.HasCustomKey())
	assert.Equal(t, 95.0, *updated.AverageRate)

	empty := ""
	updated, err = store.UpdateSettings(ctx, u.ID, models.UserSettings{CustomAPIKey: &empty})
	require.NoError(t, err)
	assert.False(t, updated.HasCustomKey())
	assert.Equal(t, 95.0, *updated.AverageRate)
}

func TestUserStore_EnsureUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	id := uuid.New()

	require.NoError(t, store.EnsureUser(ctx, &models.User{ID: id, Email: "owner@localhost"}))
	require.NoError(t, store.EnsureUser(ctx, &models.User{ID: id, Email: "other@localhost"}))

	got, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "owner@localhost", got.Email)
}

func TestDocumentStore(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()
	proposalID := uuid.New()

	doc := &models.Document{ProposalID: proposalID, Theme: "corporate"}
	require.NoError(t, store.Create(ctx, doc))
	require.NoError(t, store.Create(ctx, &models.Document{ProposalID: uuid.New()}))

	got, err := store.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "corporate", got.Theme)

	list, err := store.ListByProposal(ctx, proposalID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = store.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
