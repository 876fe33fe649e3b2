// Package memory holds in-process stores used for local development and
// tests. They honour the same contracts as the Postgres repositories.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"proposalforge-backend/models"
	"proposalforge-backend/service"

	"github.com/google/uuid"
)

type proposalEntry struct {
	proposal models.Proposal
	seq      int
}

// ProposalStore is a service.ProposalStore kept in memory
type ProposalStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*proposalEntry
	seq   int
	now   func() time.Time
}

// NewProposalStore creates an empty proposal store
func NewProposalStore() *ProposalStore {
	return &ProposalStore{
		items: make(map[uuid.UUID]*proposalEntry),
		now:   time.Now,
	}
}

var _ service.ProposalStore = (*ProposalStore)(nil)

// Create stores a copy of proposal and fills in its id and timestamps
func (s *ProposalStore) Create(ctx context.Context, proposal *models.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	proposal.ID = uuid.New()
	proposal.CreatedAt = now
	proposal.UpdatedAt = now
	proposal.LineItems = assignItemIDs(proposal.ID, proposal.LineItems)

	s.seq++
	s.items[proposal.ID] = &proposalEntry{proposal: cloneProposal(proposal), seq: s.seq}
	return nil
}

// GetByID returns a copy of the proposal
func (s *ProposalStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.items[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	p := cloneProposal(&entry.proposal)
	return &p, nil
}

// List returns copies of all proposals, newest first
func (s *ProposalStore) List(ctx context.Context) ([]*models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*proposalEntry, 0, len(s.items))
	for _, entry := range s.items {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.proposal.CreatedAt.Equal(b.proposal.CreatedAt) {
			return a.proposal.CreatedAt.After(b.proposal.CreatedAt)
		}
		return a.seq > b.seq
	})

	proposals := make([]*models.Proposal, 0, len(entries))
	for _, entry := range entries {
		p := cloneProposal(&entry.proposal)
		proposals = append(proposals, &p)
	}
	return proposals, nil
}

// Update applies patch under the store lock, so a line item replacement is
// never observed half done
func (s *ProposalStore) Update(ctx context.Context, id uuid.UUID, patch models.ProposalPatch) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	p := &entry.proposal

	if patch.ClientName != nil {
		p.ClientName = *patch.ClientName
	}
	if patch.RawInput != nil {
		p.RawInput = *patch.RawInput
	}
	if patch.RefinedMarkdown != nil {
		p.RefinedMarkdown = *patch.RefinedMarkdown
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.TotalAmount != nil {
		p.TotalAmount = *patch.TotalAmount
	}
	if patch.LineItems != nil {
		p.LineItems = assignItemIDs(id, *patch.LineItems)
	}
	p.UpdatedAt = s.now()

	out := cloneProposal(p)
	return &out, nil
}

// Delete removes the proposal and its line items
func (s *ProposalStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return service.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func assignItemIDs(proposalID uuid.UUID, items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		itemID := uuid.New()
		pid := proposalID
		out = append(out, models.LineItem{
			ID:          &itemID,
			ProposalID:  &pid,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return out
}

func cloneProposal(p *models.Proposal) models.Proposal {
	out := *p
	out.LineItems = make([]models.LineItem, len(p.LineItems))
	copy(out.LineItems, p.LineItems)
	return out
}
