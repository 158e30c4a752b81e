package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abhishek-Jose7/CA-alternative/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for extraction history
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// HistoryEntry represents one stored extraction result
type HistoryEntry struct {
	ID        uuid.UUID           `json:"id"`
	UserID    string              `json:"user_id"`
	DocType   models.DocumentType `json:"doc_type"`
	Payload   json.RawMessage     `json:"payload"`
	CreatedAt time.Time           `json:"created_at"`
}

// SaveDocument appends an extraction result to the user's history
func (r *DocumentRepository) SaveDocument(ctx context.Context, userID string, docType models.DocumentType, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal document payload: %w", err)
	}

	query := `
		INSERT INTO documents (user_id, doc_type, payload)
		VALUES ($1, $2, $3)`

	_, err = r.db.Exec(ctx, query, userID, docType, data)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// History returns the most recent extraction results for a user, newest first
func (r *DocumentRepository) History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, doc_type, payload, created_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.DocType, &entry.Payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
