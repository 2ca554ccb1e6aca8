package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MinilikBelachew/voice-chat/models"
	"github.com/MinilikBelachew/voice-chat/repository"

	"github.com/google/uuid"
)

var (
	ErrMissingOnboardingFields = errors.New("name, ai_name and ai_behavior are required")
	ErrInvalidPersona          = errors.New("invalid persona")
	ErrInvalidCategory         = errors.New("invalid memory category")
	ErrMissingContent          = errors.New("content is required")
)

// topMemoryCount bounds the personalization snapshot. Memories beyond the
// top N by importance never reach the prompt.
const topMemoryCount = 5

// UserService handles profile, persona, and memory operations
type UserService struct {
	users    UserStore
	memories MemoryStore
	now      func() time.Time
}

// UserServiceOption is a functional option for UserService
type UserServiceOption func(*UserService)

// UserWithUserStore sets the user store
func UserWithUserStore(users UserStore) UserServiceOption {
	return func(s *UserService) {
		s.users = users
	}
}

// UserWithMemoryStore sets the memory store
func UserWithMemoryStore(memories MemoryStore) UserServiceOption {
	return func(s *UserService) {
		s.memories = memories
	}
}

// UserWithClock sets the time source (used in tests)
func UserWithClock(now func() time.Time) UserServiceOption {
	return func(s *UserService) {
		s.now = now
	}
}

// NewUserService creates a new user service
func NewUserService(opts ...UserServiceOption) *UserService {
	s := &UserService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSessionConfig fetches the personalization snapshot for a user and
// builds the per-session overrides from it
func (s *UserService) GetSessionConfig(ctx context.Context, userID uuid.UUID) (*SessionConfig, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.memories == nil {
		return nil, errors.New("memory store not set")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	memories, err := s.memories.ListTopByImportance(ctx, userID, topMemoryCount)
	if err != nil {
		return nil, fmt.Errorf("failed to load memories: %w", err)
	}

	contents := make([]string, 0, len(memories))
	for _, m := range memories {
		contents = append(contents, m.Content)
	}

	cfg := BuildSessionConfig(user, contents, s.now())
	return &cfg, nil
}

// CompleteOnboarding stores the user's name and companion configuration
func (s *UserService) CompleteOnboarding(ctx context.Context, userID uuid.UUID, name, aiName, aiBehavior string, voiceID *string) (*models.User, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if name == "" || aiName == "" || aiBehavior == "" {
		return nil, ErrMissingOnboardingFields
	}

	user, err := s.users.UpdateProfile(ctx, userID, name, aiName, aiBehavior, voiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// SelectPersona updates the user's persona preset
func (s *UserService) SelectPersona(ctx context.Context, userID uuid.UUID, persona models.Persona) error {
	if s.users == nil {
		return errors.New("user store not set")
	}
	if !persona.IsValid() {
		return ErrInvalidPersona
	}

	err := s.users.UpdateSelectedPersona(ctx, userID, persona)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// AddMemory stores a user-entered memory record
func (s *UserService) AddMemory(ctx context.Context, userID uuid.UUID, content string, category models.MemoryCategory) (*models.Memory, error) {
	if s.memories == nil {
		return nil, errors.New("memory store not set")
	}
	if content == "" {
		return nil, ErrMissingContent
	}
	if category == "" {
		category = models.CategoryGeneral
	} else if !category.IsValid() {
		return nil, ErrInvalidCategory
	}

	memory := &models.Memory{
		UserID:     userID,
		Content:    content,
		Category:   category,
		Importance: models.DefaultImportance,
	}
	if err := s.memories.Create(ctx, memory); err != nil {
		return nil, fmt.Errorf("failed to save memory: %w", err)
	}
	return memory, nil
}

// RecordAnalysisMemory stores a high-importance memory produced by
// post-conversation analysis (webhook or local analyzer)
func (s *UserService) RecordAnalysisMemory(ctx context.Context, userID uuid.UUID, content string) (*models.Memory, error) {
	if s.memories == nil {
		return nil, errors.New("memory store not set")
	}
	if content == "" {
		return nil, ErrMissingContent
	}

	memory := &models.Memory{
		UserID:     userID,
		Content:    content,
		Category:   models.CategoryAutomaticAnalysis,
		Importance: models.AnalysisImportance,
	}
	if err := s.memories.Create(ctx, memory); err != nil {
		return nil, fmt.Errorf("failed to save analysis memory: %w", err)
	}
	return memory, nil
}
