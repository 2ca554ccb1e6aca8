package repository

import (
	"context"
	"errors"

	"github.com/MinilikBelachew/voice-chat/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, ai_name, ai_behavior, voice_id, selected_persona, email_verified_at, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.AIName,
		&user.AIBehavior,
		&user.VoiceID,
		&user.SelectedPersona,
		&user.EmailVerifiedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create creates a new user record
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, selected_persona, email_verified_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	if user.SelectedPersona == "" {
		user.SelectedPersona = models.PersonaFriendly
	}

	return r.db.QueryRow(
		ctx, query,
		user.Email,
		user.Name,
		user.SelectedPersona,
		user.EmailVerifiedAt,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// UpdateProfile updates the onboarding fields for a user
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, aiName, aiBehavior string, voiceID *string) (*models.User, error) {
	query := `
		UPDATE users
		SET name = $2, ai_name = $3, ai_behavior = $4, voice_id = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRow(ctx, query, id, name, aiName, aiBehavior, voiceID))
}

// UpdateSelectedPersona updates the persona preset for a user
func (r *UserRepository) UpdateSelectedPersona(ctx context.Context, id uuid.UUID, persona models.Persona) error {
	query := `UPDATE users SET selected_persona = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, persona)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
