package service

import (
	"testing"
	"time"

	"github.com/MinilikBelachew/voice-chat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configuredUser() *models.User {
	name := "Sam"
	aiName := "Luna"
	aiBehavior := "You are a sarcastic gamer friend."
	voiceID := "voice-123"
	return &models.User{
		Email:           "sam@example.com",
		Name:            &name,
		AIName:          &aiName,
		AIBehavior:      &aiBehavior,
		VoiceID:         &voiceID,
		SelectedPersona: models.PersonaFunny,
	}
}

func TestBuildSessionConfig_NoMemories(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, time.May, 10, 8, 0, 0, 0, time.UTC)
	cfg := BuildSessionConfig(configuredUser(), nil, today)

	// Empty memories must render as an explicit placeholder, never an
	// empty string
	require.Contains(t, cfg.SystemPrompt, "No memories yet")
	require.Contains(t, cfg.SystemPrompt, "May 10, 2024")
	require.Contains(t, cfg.SystemPrompt, "Luna")
	require.Contains(t, cfg.SystemPrompt, "Sam")
	require.Contains(t, cfg.SystemPrompt, "You are a sarcastic gamer friend.")
	require.Contains(t, cfg.SystemPrompt, "never claim to be an AI")

	// First-meeting greeting names both parties
	assert.Contains(t, cfg.FirstMessage, "Luna")
	assert.Contains(t, cfg.FirstMessage, "Sam")
	assert.Contains(t, cfg.FirstMessage, "meet you")

	assert.Equal(t, "voice-123", cfg.VoiceID)
}

func TestBuildSessionConfig_WithMemories(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, time.May, 10, 8, 0, 0, 0, time.UTC)
	cfg := BuildSessionConfig(configuredUser(), []string{"A", "B"}, today)

	require.Contains(t, cfg.SystemPrompt, "A. B.")
	assert.NotContains(t, cfg.SystemPrompt, "No memories yet")

	// Continuing-relationship greeting references a prior conversation
	assert.Contains(t, cfg.FirstMessage, "last conversation")
}

func TestBuildSessionConfig_UnconfiguredPersona(t *testing.T) {
	t.Parallel()

	user := &models.User{Email: "new@example.com", SelectedPersona: models.PersonaFriendly}
	cfg := BuildSessionConfig(user, nil, time.Now())

	require.NotEmpty(t, cfg.SystemPrompt)
	require.NotEmpty(t, cfg.FirstMessage)
	assert.Equal(t, fallbackPrompt, cfg.SystemPrompt)
	assert.Equal(t, fallbackGreeting, cfg.FirstMessage)
	assert.Empty(t, cfg.VoiceID)
}

func TestBuildSessionConfig_PartialOnboardingFallsBack(t *testing.T) {
	t.Parallel()

	// ai_name without ai_behavior counts as unconfigured
	aiName := "Luna"
	user := &models.User{Email: "x@example.com", AIName: &aiName}
	cfg := BuildSessionConfig(user, nil, time.Now())

	assert.Equal(t, fallbackPrompt, cfg.SystemPrompt)
}

func TestBuildSessionConfig_Idempotent(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, time.May, 10, 8, 0, 0, 0, time.UTC)
	memories := []string{"User preference: \"I love pizza\""}

	first := BuildSessionConfig(configuredUser(), memories, today)
	second := BuildSessionConfig(configuredUser(), memories, today)
	assert.Equal(t, first, second)
}
