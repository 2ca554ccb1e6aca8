package models

import (
	"time"

	"github.com/google/uuid"
)

// Persona represents a selectable behavioral preset
type Persona string

const (
	PersonaProfessional Persona = "professional"
	PersonaFriendly     Persona = "friendly"
	PersonaFunny        Persona = "funny"
)

// IsValid reports whether the persona is one of the known presets
func (p Persona) IsValid() bool {
	switch p {
	case PersonaProfessional, PersonaFriendly, PersonaFunny:
		return true
	}
	return false
}

// User represents a user entity
type User struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Name            *string    `json:"name,omitempty"`
	AIName          *string    `json:"ai_name,omitempty"`
	AIBehavior      *string    `json:"ai_behavior,omitempty"`
	VoiceID         *string    `json:"voice_id,omitempty"`
	SelectedPersona Persona    `json:"selected_persona"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HasConfiguredPersona reports whether the user completed onboarding,
// i.e. named their companion and described its behavior
func (u *User) HasConfiguredPersona() bool {
	return u.AIName != nil && *u.AIName != "" && u.AIBehavior != nil && *u.AIBehavior != ""
}

// DisplayName returns the user's name, or a generic fallback when
// onboarding never set one
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return "friend"
}
