package repository

import (
	"context"

	"proposalforge-backend/models"
	"proposalforge-backend/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for exported documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

var _ service.DocumentStore = (*DocumentRepository)(nil)

// Create records a stored document
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (
			id, proposal_id, theme, filename, mime_type, size, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}

	return r.db.QueryRow(
		ctx, query,
		doc.ID,
		doc.ProposalID,
		doc.Theme,
		doc.Filename,
		doc.MimeType,
		doc.Size,
		doc.StoragePath,
	).Scan(&doc.CreatedAt)
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc := &models.Document{}
	query := `
		SELECT id, proposal_id, theme, filename, mime_type, size, storage_path, created_at
		FROM documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.ProposalID,
		&doc.Theme,
		&doc.Filename,
		&doc.MimeType,
		&doc.Size,
		&doc.StoragePath,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return doc, nil
}

// ListByProposal retrieves all documents of a proposal, newest first
func (r *DocumentRepository) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*models.Document, error) {
	query := `
		SELECT id, proposal_id, theme, filename, mime_type, size, storage_path, created_at
		FROM documents
		WHERE proposal_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		err := rows.Scan(
			&doc.ID,
			&doc.ProposalID,
			&doc.Theme,
			&doc.Filename,
			&doc.MimeType,
			&doc.Size,
			&doc.StoragePath,
			&doc.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
