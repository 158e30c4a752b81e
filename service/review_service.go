package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Abhishek-Jose7/CA-alternative/models"
)

// ReviewStore mirrors queue mutations into durable storage for audit.
// Writes are best-effort; the in-memory queue is authoritative.
type ReviewStore interface {
	Save(ctx context.Context, item *models.ReviewItem) error
	MarkReviewed(ctx context.Context, item *models.ReviewItem) error
}

// ReviewQueue owns the set of documents waiting for CA sign-off. It is shared
// mutable state across concurrent extraction requests: all mutations happen
// under the queue lock, reads hand out copies, and the lock is never held
// across a durable write.
type ReviewQueue struct {
	mu    sync.RWMutex
	items map[string]*models.ReviewItem
	order []string

	store          ReviewStore
	persistTimeout time.Duration
}

// ReviewQueueOption is a functional option for ReviewQueue
type ReviewQueueOption func(*ReviewQueue)

// ReviewWithStore sets the durable audit mirror
func ReviewWithStore(store ReviewStore) ReviewQueueOption {
	return func(q *ReviewQueue) {
		q.store = store
	}
}

// NewReviewQueue creates an empty review queue
func NewReviewQueue(opts ...ReviewQueueOption) *ReviewQueue {
	q := &ReviewQueue{
		items:          make(map[string]*models.ReviewItem),
		persistTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue adds a record to the queue with status pending_review. The item id
// derives from the source artifact name; collisions get a numeric suffix so
// re-uploads of the same file stay distinguishable in the audit trail.
func (q *ReviewQueue) Enqueue(ctx context.Context, rec *models.ExtractionRecord, sourceName string) *models.ReviewItem {
	item := &models.ReviewItem{
		DocType:   rec.DocType,
		Payload:   rec,
		Status:    models.ReviewStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	q.mu.Lock()
	item.ID = q.nextIDLocked(sourceName)
	q.items[item.ID] = item
	q.order = append(q.order, item.ID)
	snapshot := *item
	q.mu.Unlock()

	q.persist(func(ctx context.Context) error {
		return q.store.Save(ctx, &snapshot)
	}, "save review item "+snapshot.ID)

	return &snapshot
}

// nextIDLocked derives a stable identifier from the artifact name.
// Caller must hold q.mu.
func (q *ReviewQueue) nextIDLocked(sourceName string) string {
	base := filepath.Base(sourceName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	if base == "" {
		base = "document"
	}

	id := base
	for n := 2; ; n++ {
		if _, exists := q.items[id]; !exists {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// Review applies a CA decision to a pending item. Unknown ids and repeated
// reviews are ordinary domain errors; the queue is left untouched for both.
// The original payload is never modified.
func (q *ReviewQueue) Review(ctx context.Context, id string, action models.ReviewAction, comments string) error {
	q.mu.Lock()
	item, ok := q.items[id]
	if !ok {
		q.mu.Unlock()
		return ErrReviewItemNotFound
	}
	if item.Status == models.ReviewStatusReviewed {
		q.mu.Unlock()
		return ErrAlreadyReviewed
	}

	now := time.Now().UTC()
	item.Status = models.ReviewStatusReviewed
	item.CAAction = action
	item.CAComments = comments
	item.ReviewedAt = &now
	snapshot := *item
	q.mu.Unlock()

	q.persist(func(ctx context.Context) error {
		return q.store.MarkReviewed(ctx, &snapshot)
	}, "mark review item "+id+" reviewed")

	return nil
}

// ListPending returns copies of the items still awaiting review, in enqueue
// order. Snapshot read, no side effects.
func (q *ReviewQueue) ListPending(ctx context.Context) []models.ReviewItem {
	q.mu.RLock()
	defer q.mu.RUnlock()

	pending := make([]models.ReviewItem, 0)
	for _, id := range q.order {
		item := q.items[id]
		if item.Status == models.ReviewStatusPending {
			pending = append(pending, *item)
		}
	}
	return pending
}

// Len returns the total number of items ever enqueued (items are never deleted)
func (q *ReviewQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.order)
}

// persist runs a durable write in the background with its own timeout.
// Persistence failures are logged and never surfaced: the in-memory queue is
// the source of truth for this feature.
func (q *ReviewQueue) persist(fn func(ctx context.Context) error, what string) {
	if q.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), q.persistTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("Warning: Failed to %s: %v", what, err)
		}
	}()
}
