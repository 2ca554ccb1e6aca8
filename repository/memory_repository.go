package repository

import (
	"context"

	"github.com/MinilikBelachew/voice-chat/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MemoryRepository handles database operations for memories.
// Memories are append-only: there is intentionally no Update method.
type MemoryRepository struct {
	db *pgxpool.Pool
}

// NewMemoryRepository creates a new memory repository
func NewMemoryRepository(db *pgxpool.Pool) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// Create creates a new memory record
func (r *MemoryRepository) Create(ctx context.Context, memory *models.Memory) error {
	query := `
		INSERT INTO memories (user_id, content, category, importance)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	if memory.Category == "" {
		memory.Category = models.CategoryGeneral
	}
	if memory.Importance == 0 {
		memory.Importance = models.DefaultImportance
	}

	return r.db.QueryRow(
		ctx, query,
		memory.UserID,
		memory.Content,
		memory.Category,
		memory.Importance,
	).Scan(&memory.ID, &memory.CreatedAt)
}

// ListTopByImportance retrieves the highest-importance memories for a user,
// newest first among equal scores
func (r *MemoryRepository) ListTopByImportance(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Memory, error) {
	query := `
		SELECT id, user_id, content, category, importance, created_at
		FROM memories
		WHERE user_id = $1
		ORDER BY importance DESC, created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

// ListRecent retrieves the most recently created memories for a user
func (r *MemoryRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Memory, error) {
	query := `
		SELECT id, user_id, content, category, importance, created_at
		FROM memories
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

func scanMemories(rows pgx.Rows) ([]*models.Memory, error) {
	var memories []*models.Memory
	for rows.Next() {
		memory := &models.Memory{}
		err := rows.Scan(
			&memory.ID,
			&memory.UserID,
			&memory.Content,
			&memory.Category,
			&memory.Importance,
			&memory.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		memories = append(memories, memory)
	}

	return memories, rows.Err()
}
