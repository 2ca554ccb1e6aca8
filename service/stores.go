package service

import (
	"context"

	"github.com/MinilikBelachew/voice-chat/models"

	"github.com/google/uuid"
)

// UserStore is the user persistence surface the services depend on.
// Satisfied by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, aiName, aiBehavior string, voiceID *string) (*models.User, error)
	UpdateSelectedPersona(ctx context.Context, id uuid.UUID, persona models.Persona) error
}

// MemoryStore is the memory persistence surface.
// Satisfied by repository.MemoryRepository.
type MemoryStore interface {
	Create(ctx context.Context, memory *models.Memory) error
	ListTopByImportance(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Memory, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Memory, error)
}

// TokenStore is the one-time-code persistence surface.
// Satisfied by repository.VerificationTokenRepository.
type TokenStore interface {
	Create(ctx context.Context, token *models.VerificationToken) error
	Find(ctx context.Context, identifier, code string) (*models.VerificationToken, error)
	Delete(ctx context.Context, identifier, code string) error
	DeleteByIdentifier(ctx context.Context, identifier string) error
}
