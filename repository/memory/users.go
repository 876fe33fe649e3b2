package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"proposalforge-backend/models"
	"proposalforge-backend/service"

	"github.com/google/uuid"
)

// UserStore is a service.UserStore kept in memory
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

// NewUserStore creates an empty user store
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]*models.User)}
}

var _ service.UserStore = (*UserStore)(nil)

// Create stores a copy of user. Emails are compared case-insensitively.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByEmail(user.Email) != nil {
		return service.ErrUserExists
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := cloneUser(user)
	s.users[user.ID] = &stored
	return nil
}

// GetByID returns a copy of the user
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

// GetByEmail returns a copy of the user with email
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findByEmail(email)
	if u == nil {
		return nil, service.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

// UpdateSettings stores the key and rate; an empty key clears it
func (s *UserStore) UpdateSettings(ctx context.Context, id uuid.UUID, settings models.UserSettings) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	if settings.CustomAPIKey != nil {
		if *settings.CustomAPIKey == "" {
			u.CustomAPIKey = nil
		} else {
			key := *settings.CustomAPIKey
			u.CustomAPIKey = &key
		}
	}
	if settings.AverageRate != nil {
		rate := *settings.AverageRate
		u.AverageRate = &rate
	}
	u.UpdatedAt = time.Now()

	out := cloneUser(u)
	return &out, nil
}

// ConsumeGeneration increments the counter while it is below limit
func (s *UserStore) ConsumeGeneration(ctx context.Context, id uuid.UUID, limit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return false, service.ErrNotFound
	}
	if u.GenerationCount >= limit {
		return false, nil
	}
	u.GenerationCount++
	return true, nil
}

// EnsureUser inserts user unless its id is already present
func (s *UserStore) EnsureUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return nil
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := cloneUser(user)
	s.users[user.ID] = &stored
	return nil
}

func (s *UserStore) findByEmail(email string) *models.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func cloneUser(u *models.User) models.User {
	out := *u
	if u.CustomAPIKey != nil {
		key := *u.CustomAPIKey
		out.CustomAPIKey = &key
	}
	if u.AverageRate != nil {
		rate := *u.AverageRate
		out.AverageRate = &rate
	}
	return out
}
