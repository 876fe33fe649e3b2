package repository

import (
	"context"
	"fmt"

	"proposalforge-backend/models"
	"proposalforge-backend/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProposalRepository handles database operations for proposals and their
// line items
type ProposalRepository struct {
	db *pgxpool.Pool
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(db *pgxpool.Pool) *ProposalRepository {
	return &ProposalRepository{db: db}
}

var _ service.ProposalStore = (*ProposalRepository)(nil)

const proposalColumns = `id, user_id, client_name, raw_input, refined_markdown,
	status, total_amount, created_at, updated_at`

// Create inserts a proposal and its line items in one transaction
func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO proposals (
				user_id, client_name, raw_input, refined_markdown, status, total_amount
			) VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at`

		err := tx.QueryRow(
			ctx, query,
			proposal.UserID,
			proposal.ClientName,
			proposal.RawInput,
			proposal.RefinedMarkdown,
			proposal.Status,
			proposal.TotalAmount,
		).Scan(&proposal.ID, &proposal.CreatedAt, &proposal.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert proposal: %w", err)
		}

		items, err := insertLineItems(ctx, tx, proposal.ID, proposal.LineItems)
		if err != nil {
			return err
		}
		proposal.LineItems = items
		return nil
	})
}

// GetByID retrieves a proposal with its line items
func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	proposal, err := scanProposal(r.db.QueryRow(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}

	items, err := r.lineItems(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	proposal.LineItems = items[id]
	if proposal.LineItems == nil {
		proposal.LineItems = []models.LineItem{}
	}
	return proposal, nil
}

// List retrieves all proposals, newest first, with their line items
func (r *ProposalRepository) List(ctx context.Context) ([]*models.Proposal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+proposalColumns+` FROM proposals ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []*models.Proposal
	var ids []uuid.UUID
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, proposal)
		ids = append(ids, proposal.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Proposal{}, nil
	}

	items, err := r.lineItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, proposal := range proposals {
		proposal.LineItems = items[proposal.ID]
		if proposal.LineItems == nil {
			proposal.LineItems = []models.LineItem{}
		}
	}
	return proposals, nil
}

// Update applies patch. When it carries line items, every existing item is
// deleted and the new set inserted in the same transaction.
func (r *ProposalRepository) Update(ctx context.Context, id uuid.UUID, patch models.ProposalPatch) (*models.Proposal, error) {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE proposals SET
				client_name = COALESCE($2, client_name),
				raw_input = COALESCE($3, raw_input),
				refined_markdown = COALESCE($4, refined_markdown),
				status = COALESCE($5, status),
				total_amount = COALESCE($6, total_amount),
				updated_at = NOW()
			WHERE id = $1`

		tag, err := tx.Exec(
			ctx, query,
			id,
			patch.ClientName,
			patch.RawInput,
			patch.RefinedMarkdown,
			patch.Status,
			patch.TotalAmount,
		)
		if err != nil {
			return fmt.Errorf("update proposal: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return service.ErrNotFound
		}

		if patch.LineItems == nil {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE proposal_id = $1`, id); err != nil {
			return fmt.Errorf("delete line items: %w", err)
		}
		_, err = insertLineItems(ctx, tx, id, *patch.LineItems)
		return err
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Delete deletes a proposal; its line items go with it
func (r *ProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (r *ProposalRepository) lineItems(ctx context.Context, proposalIDs []uuid.UUID) (map[uuid.UUID][]models.LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, proposal_id, description, quantity, unit_price
		FROM line_items
		WHERE proposal_id = ANY($1)
		ORDER BY proposal_id, position`, proposalIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]models.LineItem)
	for rows.Next() {
		var itemID, proposalID uuid.UUID
		var item models.LineItem
		if err := rows.Scan(&itemID, &proposalID, &item.Description, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		item.ID = &itemID
		item.ProposalID = &proposalID
		items[proposalID] = append(items[proposalID], item)
	}
	return items, rows.Err()
}

func insertLineItems(ctx context.Context, tx pgx.Tx, proposalID uuid.UUID, items []models.LineItem) ([]models.LineItem, error) {
	out := make([]models.LineItem, 0, len(items))
	for i, item := range items {
		var itemID uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO line_items (proposal_id, position, description, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			proposalID, i, item.Description, item.Quantity, item.UnitPrice,
		).Scan(&itemID)
		if err != nil {
			return nil, fmt.Errorf("insert line item %d: %w", i, err)
		}
		pid := proposalID
		out = append(out, models.LineItem{
			ID:          &itemID,
			ProposalID:  &pid,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return out, nil
}

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	proposal := &models.Proposal{}
	err := row.Scan(
		&proposal.ID,
		&proposal.UserID,
		&proposal.ClientName,
		&proposal.RawInput,
		&proposal.RefinedMarkdown,
		&proposal.Status,
		&proposal.TotalAmount,
		&proposal.CreatedAt,
		&proposal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return proposal, nil
}
