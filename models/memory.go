package models

import (
	"time"

	"github.com/google/uuid"
)

// MemoryCategory represents how a memory was produced
type MemoryCategory string

const (
	// CategoryGeneral is a memory entered directly by the user
	CategoryGeneral MemoryCategory = "general"
	// CategoryAutomatic is a memory derived from a conversation transcript
	CategoryAutomatic MemoryCategory = "automatic"
	// CategoryAutomaticAnalysis is a memory produced by post-conversation analysis
	CategoryAutomaticAnalysis MemoryCategory = "automatic_analysis"
)

// IsValid reports whether the category is one of the known tags
func (c MemoryCategory) IsValid() bool {
	switch c {
	case CategoryGeneral, CategoryAutomatic, CategoryAutomaticAnalysis:
		return true
	}
	return false
}

const (
	// DefaultImportance scores memories that were not ranked by analysis
	DefaultImportance = 1
	// AnalysisImportance scores analysis-derived memories so they win
	// the top-N selection at session start
	AnalysisImportance = 8
)

// Memory represents a durable fact about a user. Rows are append-only:
// memories are never updated after creation.
type Memory struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	Content    string         `json:"content"`
	Category   MemoryCategory `json:"category"`
	Importance int            `json:"importance"`
	CreatedAt  time.Time      `json:"created_at"`
}
