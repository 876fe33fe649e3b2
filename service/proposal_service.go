package service

import (
	"context"
	"errors"
	"strings"

	"proposalforge-backend/models"
	"proposalforge-backend/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProposalService handles business logic for proposals
type ProposalService struct {
	proposals    ProposalStore
	users        UserStore
	defaultOwner uuid.UUID
	logger       *zap.Logger
}

// ProposalServiceOption is a functional option for ProposalService
type ProposalServiceOption func(*ProposalService)

// WithProposalStore sets the proposal store
func WithProposalStore(store ProposalStore) ProposalServiceOption {
	return func(s *ProposalService) {
		s.proposals = store
	}
}

// WithOwnerStore sets the user store used to check proposal owners
func WithOwnerStore(users UserStore) ProposalServiceOption {
	return func(s *ProposalService) {
		s.users = users
	}
}

// WithDefaultOwner sets the owner of proposals saved without a session
func WithDefaultOwner(id uuid.UUID) ProposalServiceOption {
	return func(s *ProposalService) {
		s.defaultOwner = id
	}
}

// WithProposalLogger sets the logger
func WithProposalLogger(logger *zap.Logger) ProposalServiceOption {
	return func(s *ProposalService) {
		s.logger = logger
	}
}

// NewProposalService creates a new proposal service
func NewProposalService(opts ...ProposalServiceOption) *ProposalService {
	s := &ProposalService{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProposalRequest represents a request to create a proposal.
// A caller supplied total is not accepted; it is always recomputed.
type CreateProposalRequest struct {
	OwnerID         *uuid.UUID
	ClientName      *string
	RawInput        string
	RefinedMarkdown string
	Status          *models.ProposalStatus
	LineItems       []models.LineItem
}

// CreateProposalResult represents the result of creating a proposal
type CreateProposalResult struct {
	Proposal *models.Proposal
}

// CreateProposal creates a new proposal with default values
func (s *ProposalService) CreateProposal(ctx context.Context, req CreateProposalRequest) (*CreateProposalResult, error) {
	if s.proposals == nil {
		return nil, errors.New("proposal store not set")
	}

	proposal := &models.Proposal{
		UserID:          s.defaultOwner,
		ClientName:      models.DefaultClientName,
		RawInput:        req.RawInput,
		RefinedMarkdown: req.RefinedMarkdown,
		Status:          models.StatusDraft,
		LineItems:       normalizeLineItems(req.LineItems),
	}
	if req.OwnerID != nil {
		owner, err := s.resolveOwner(ctx, *req.OwnerID)
		if err != nil {
			return nil, err
		}
		proposal.UserID = owner
	}
	if req.ClientName != nil && strings.TrimSpace(*req.ClientName) != "" {
		proposal.ClientName = *req.ClientName
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, NewValidationError("status", "Unknown proposal status: "+string(*req.Status))
		}
		proposal.Status = *req.Status
	}
	proposal.TotalAmount = pricing.ComputeTotal(proposal.LineItems)

	if err := s.proposals.Create(ctx, proposal); err != nil {
		s.logger.Error("failed to create proposal", zap.Error(err))
		return nil, NewInternalError(err)
	}

	return &CreateProposalResult{Proposal: proposal}, nil
}

// GetProposalRequest represents a request to get a proposal
type GetProposalRequest struct {
	ID uuid.UUID
}

// GetProposalResult represents the result of getting a proposal
type GetProposalResult struct {
	Proposal *models.Proposal
}

// GetProposal retrieves a proposal with its line items
func (s *ProposalService) GetProposal(ctx context.Context, req GetProposalRequest) (*GetProposalResult, error) {
	if s.proposals == nil {
		return nil, errors.New("proposal store not set")
	}

	proposal, err := s.proposals.GetByID(ctx, req.ID)
	if err != nil {
		return nil, s.storeError("get", req.ID, err)
	}

	return &GetProposalResult{Proposal: proposal}, nil
}

// ListProposalsResult represents the result of listing proposals
type ListProposalsResult struct {
	Proposals []*models.Proposal
}

// ListProposals lists all proposals, newest first
func (s *ProposalService) ListProposals(ctx context.Context) (*ListProposalsResult, error) {
	if s.proposals == nil {
		return nil, errors.New("proposal store not set")
	}

	proposals, err := s.proposals.List(ctx)
	if err != nil {
		s.logger.Error("failed to list proposals", zap.Error(err))
		return nil, NewInternalError(err)
	}
	if proposals == nil {
		proposals = []*models.Proposal{}
	}

	return &ListProposalsResult{Proposals: proposals}, nil
}

// UpdateProposalRequest represents a partial update of a proposal
type UpdateProposalRequest struct {
	ID    uuid.UUID
	Patch models.ProposalPatch
}

// UpdateProposalResult represents the result of updating a proposal
type UpdateProposalResult struct {
	Proposal *models.Proposal
}

// UpdateProposal applies a partial update. A new line item set replaces the
// old one wholesale and the total follows it.
func (s *ProposalService) UpdateProposal(ctx context.Context, req UpdateProposalRequest) (*UpdateProposalResult, error) {
	if s.proposals == nil {
		return nil, errors.New("proposal store not set")
	}

	patch := req.Patch
	patch.TotalAmount = nil
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, NewValidationError("status", "Unknown proposal status: "+string(*patch.Status))
	}
	if patch.LineItems != nil {
		items := normalizeLineItems(*patch.LineItems)
		total := pricing.ComputeTotal(items)
		patch.LineItems = &items
		patch.TotalAmount = &total
	}

	proposal, err := s.proposals.Update(ctx, req.ID, patch)
	if err != nil {
		return nil, s.storeError("update", req.ID, err)
	}

	return &UpdateProposalResult{Proposal: proposal}, nil
}

// DeleteProposalRequest represents a request to delete a proposal
type DeleteProposalRequest struct {
	ID uuid.UUID
}

// DeleteProposal removes a proposal and its line items
func (s *ProposalService) DeleteProposal(ctx context.Context, req DeleteProposalRequest) error {
	if s.proposals == nil {
		return errors.New("proposal store not set")
	}

	if err := s.proposals.Delete(ctx, req.ID); err != nil {
		return s.storeError("delete", req.ID, err)
	}
	return nil
}

// resolveOwner falls back to the default owner when the session account no
// longer exists.
func (s *ProposalService) resolveOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	if s.users == nil {
		return id, nil
	}
	_, err := s.users.GetByID(ctx, id)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, ErrNotFound):
		s.logger.Info("proposal owner not found, using default owner", zap.Stringer("user_id", id))
		return s.defaultOwner, nil
	default:
		return uuid.Nil, NewInternalError(err)
	}
}

func (s *ProposalService) storeError(op string, id uuid.UUID, err error) error {
	if errors.Is(err, ErrNotFound) {
		return NewNotFoundError("Proposal")
	}
	s.logger.Error("proposal store failed",
		zap.String("op", op),
		zap.Stringer("proposal_id", id),
		zap.Error(err),
	)
	return NewInternalError(err)
}

// normalizeLineItems drops caller supplied ids; items are always stored as
// new rows.
func normalizeLineItems(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return out
}
