package repository

import (
	"context"
	"fmt"

	"github.com/Abhishek-Jose7/CA-alternative/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationRepository is the durable, append-only log of chat turns
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// SaveTurn appends one turn to a user's log
func (r *ConversationRepository) SaveTurn(ctx context.Context, userID string, turn models.Turn) error {
	query := `
		INSERT INTO conversation_turns (user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, userID, turn.Role, turn.Content, turn.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert conversation turn: %w", err)
	}
	return nil
}

// RecentTurns returns up to limit most recent turns in ascending timestamp
// order
func (r *ConversationRepository) RecentTurns(ctx context.Context, userID string, limit int) ([]models.Turn, error) {
	// Ordered by the insert sequence rather than the timestamp: turns within
	// one exchange share a timestamp.
	query := `
		SELECT role, content, created_at
		FROM conversation_turns
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation turns: %w", err)
	}
	defer rows.Close()

	var turns []models.Turn
	for rows.Next() {
		var turn models.Turn
		if err := rows.Scan(&turn.Role, &turn.Content, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan conversation turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows come back newest-first; callers expect ascending order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
