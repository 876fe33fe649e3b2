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

// DocumentStore is a service.DocumentStore kept in memory
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]models.Document
}

// NewDocumentStore creates an empty document store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[uuid.UUID]models.Document)}
}

var _ service.DocumentStore = (*DocumentStore)(nil)

// Create records doc, assigning an id if it has none
func (s *DocumentStore) Create(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = time.Now()
	s.docs[doc.ID] = *doc
	return nil
}

// GetByID returns the document record
func (s *DocumentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &doc, nil
}

// ListByProposal returns the documents of a proposal, newest first
func (s *DocumentStore) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []*models.Document
	for _, doc := range s.docs {
		if doc.ProposalID == proposalID {
			d := doc
			docs = append(docs, &d)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}
