package models

import "time"

// ReviewStatus represents the lifecycle state of a review item
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending_review"
	ReviewStatusReviewed ReviewStatus = "reviewed" // terminal
)

// ReviewAction represents the decision a CA takes on a queued item
type ReviewAction string

const (
	ReviewActionApprove ReviewAction = "approve"
	ReviewActionFlag    ReviewAction = "flag"
)

// ReviewItem represents a document awaiting (or past) CA review.
// Items are never deleted; a reviewed item stays as the audit trail.
type ReviewItem struct {
	ID         string            `json:"id"`
	DocType    DocumentType      `json:"doc_type"`
	Payload    *ExtractionRecord `json:"payload"`
	Status     ReviewStatus      `json:"status"`
	CAAction   ReviewAction      `json:"ca_action,omitempty"`
	CAComments string            `json:"ca_comments,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	ReviewedAt *time.Time        `json:"reviewed_at,omitempty"`
}
