package repository

import (
	"context"
	"errors"

	"proposalforge-backend/models"
	"proposalforge-backend/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

var _ service.UserStore = (*UserRepository)(nil)

const userColumns = `id, email, password_hash, company_name, logo_url, custom_api_key,
	generation_count, average_rate, created_at, updated_at`

// Create inserts a user. A taken email yields service.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, company_name, logo_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, generation_count, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		user.Email,
		user.PasswordHash,
		user.CompanyName,
		user.LogoURL,
	).Scan(&user.ID, &user.GenerationCount, &user.CreatedAt, &user.UpdatedAt)

	return mapError(err)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, ignoring case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// UpdateSettings stores the custom key and average rate. An empty key is
// stored as NULL; nil fields are left unchanged.
func (r *UserRepository) UpdateSettings(ctx context.Context, id uuid.UUID, settings models.UserSettings) (*models.User, error) {
	query := `
		UPDATE users SET
			custom_api_key = CASE WHEN $2 THEN NULLIF($3, '') ELSE custom_api_key END,
			average_rate = COALESCE($4, average_rate),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var key string
	if settings.CustomAPIKey != nil {
		key = *settings.CustomAPIKey
	}

	user, err := scanUser(r.db.QueryRow(
		ctx, query,
		id,
		settings.CustomAPIKey != nil,
		key,
		settings.AverageRate,
	))
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// ConsumeGeneration increments generation_count only while it is below
// limit. The check and the increment are one statement.
func (r *UserRepository) ConsumeGeneration(ctx context.Context, id uuid.UUID, limit int) (bool, error) {
	query := `
		UPDATE users SET
			generation_count = generation_count + 1,
			updated_at = NOW()
		WHERE id = $1 AND generation_count < $2
		RETURNING generation_count`

	var count int
	err := r.db.QueryRow(ctx, query, id, limit).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EnsureUser inserts user with its own id unless that id exists
func (r *UserRepository) EnsureUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, company_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, user.CompanyName)
	return mapError(err)
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CompanyName,
		&user.LogoURL,
		&user.CustomAPIKey,
		&user.GenerationCount,
		&user.AverageRate,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
