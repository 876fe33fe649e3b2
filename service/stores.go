package service

import (
	"context"

	"proposalforge-backend/models"

	"github.com/google/uuid"
)

// ProposalStore persists proposals together with their line items.
// Lookups of unknown ids return ErrNotFound.
type ProposalStore interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	// List returns all proposals, newest created first.
	List(ctx context.Context) ([]*models.Proposal, error)
	// Update applies patch. A non-nil patch.LineItems deletes every existing
	// line item of the proposal and inserts the new set in one transaction.
	Update(ctx context.Context, id uuid.UUID, patch models.ProposalPatch) (*models.Proposal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserStore persists accounts and their entitlement counters.
type UserStore interface {
	// Create returns ErrUserExists when the email is taken.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, settings models.UserSettings) (*models.User, error)
	// ConsumeGeneration atomically increments the generation counter if it
	// is below limit. It returns false when the limit was already reached.
	ConsumeGeneration(ctx context.Context, id uuid.UUID, limit int) (bool, error)
	// EnsureUser creates user with its given id unless it already exists.
	EnsureUser(ctx context.Context, user *models.User) error
}

// DocumentStore records rendered PDFs kept in file storage.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*models.Document, error)
}
