package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Abhishek-Jose7/CA-alternative/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepository mirrors review queue items into Postgres for audit.
// The in-memory queue stays authoritative; rows here are never deleted.
type ReviewRepository struct {
	db *pgxpool.Pool
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Save inserts a newly enqueued review item
func (r *ReviewRepository) Save(ctx context.Context, item *models.ReviewItem) error {
	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal review payload: %w", err)
	}

	query := `
		INSERT INTO review_items (id, doc_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`

	_, err = r.db.Exec(ctx, query, item.ID, item.DocType, payload, item.Status, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert review item: %w", err)
	}
	return nil
}

// MarkReviewed records the CA decision on an item
func (r *ReviewRepository) MarkReviewed(ctx context.Context, item *models.ReviewItem) error {
	query := `
		UPDATE review_items SET
			status = $2,
			ca_action = $3,
			ca_comments = $4,
			reviewed_at = $5
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, item.ID, item.Status, item.CAAction, item.CAComments, item.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to update review item: %w", err)
	}
	return nil
}
