package repository

import (
	"context"
	"errors"

	"github.com/MinilikBelachew/voice-chat/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VerificationTokenRepository handles database operations for one-time codes
type VerificationTokenRepository struct {
	db *pgxpool.Pool
}

// NewVerificationTokenRepository creates a new verification token repository
func NewVerificationTokenRepository(db *pgxpool.Pool) *VerificationTokenRepository {
	return &VerificationTokenRepository{db: db}
}

// Create creates a new verification token record
func (r *VerificationTokenRepository) Create(ctx context.Context, token *models.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (identifier, token, expires_at)
		VALUES ($1, $2, $3)`

	_, err := r.db.Exec(ctx, query, token.Identifier, token.Token, token.ExpiresAt)
	return err
}

// Find retrieves a token by identifier and code, expired or not.
// Expiry is the caller's decision so that expired codes can be reported
// distinctly from unknown ones.
func (r *VerificationTokenRepository) Find(ctx context.Context, identifier, code string) (*models.VerificationToken, error) {
	query := `
		SELECT identifier, token, expires_at
		FROM verification_tokens
		WHERE identifier = $1 AND token = $2`

	token := &models.VerificationToken{}
	err := r.db.QueryRow(ctx, query, identifier, code).Scan(
		&token.Identifier,
		&token.Token,
		&token.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

// Delete deletes a single token by identifier and code
func (r *VerificationTokenRepository) Delete(ctx context.Context, identifier, code string) error {
	query := `DELETE FROM verification_tokens WHERE identifier = $1 AND token = $2`
	_, err := r.db.Exec(ctx, query, identifier, code)
	return err
}

// DeleteByIdentifier purges all tokens for an identifier. Called before
// issuing a new code so at most one live token exists per email.
func (r *VerificationTokenRepository) DeleteByIdentifier(ctx context.Context, identifier string) error {
	query := `DELETE FROM verification_tokens WHERE identifier = $1`
	_, err := r.db.Exec(ctx, query, identifier)
	return err
}
