package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Abhishek-Jose7/CA-alternative/models"
)

// ConversationStore is the durable, unbounded log backing the in-process
// conversation cache.
type ConversationStore interface {
	SaveTurn(ctx context.Context, userID string, turn models.Turn) error
	// RecentTurns returns up to limit most recent turns in ascending
	// timestamp order.
	RecentTurns(ctx context.Context, userID string, limit int) ([]models.Turn, error)
}

const (
	defaultContextWindow  = 10
	defaultRehydrateLimit = 20
)

// ConversationMemory keeps a bounded, per-user window of chat turns. The
// in-memory window is a cache over the durable log: it rehydrates on first
// access per process lifetime and persists appends fire-and-forget, so a
// durable-store outage degrades the advisory chat instead of blocking it.
//
// Concurrent chat requests for the same user serialize on the session lock;
// different users never contend with each other beyond the map lookup.
type ConversationMemory struct {
	store          ConversationStore
	window         int
	rehydrateLimit int
	persistTimeout time.Duration

	mu       sync.Mutex // guards the sessions map only
	sessions map[string]*session
}

type session struct {
	mu       sync.Mutex
	hydrated bool
	turns    []models.Turn

	// persistTail is the completion signal of the most recently scheduled
	// durable write, chaining writes so the log preserves append order.
	persistTail chan struct{}
}

// ConversationMemoryOption is a functional option for ConversationMemory
type ConversationMemoryOption func(*ConversationMemory)

// MemoryWithStore sets the durable log collaborator
func MemoryWithStore(store ConversationStore) ConversationMemoryOption {
	return func(m *ConversationMemory) {
		m.store = store
	}
}

// MemoryWithWindow sets the in-memory context window size
func MemoryWithWindow(n int) ConversationMemoryOption {
	return func(m *ConversationMemory) {
		m.window = n
	}
}

// NewConversationMemory creates a memory manager with a 10-turn window
func NewConversationMemory(opts ...ConversationMemoryOption) *ConversationMemory {
	m := &ConversationMemory{
		window:         defaultContextWindow,
		rehydrateLimit: defaultRehydrateLimit,
		persistTimeout: 10 * time.Second,
		sessions:       make(map[string]*session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetContext returns the most recent turns for a user, oldest first. The
// first call for a user rehydrates from the durable log; a rehydration
// failure is logged and the conversation starts empty rather than blocking.
func (m *ConversationMemory) GetContext(ctx context.Context, userID string) []models.Turn {
	s := m.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	m.rehydrateLocked(ctx, userID, s)

	out := make([]models.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// AppendTurn records a turn in the user's window and persists it to the
// durable log in the background. The in-memory append never rolls back on a
// persistence failure; losing the durable copy is acceptable for this
// advisory feature.
func (m *ConversationMemory) AppendTurn(ctx context.Context, userID string, role models.Role, content string) {
	m.append(ctx, userID, models.Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
}

// AppendExchange records a user message and the assistant reply as a single
// window update, so concurrent chats for the same user can never interleave
// inside a question/answer pair.
func (m *ConversationMemory) AppendExchange(ctx context.Context, userID, message, reply string) {
	now := time.Now().UTC()
	m.append(ctx, userID,
		models.Turn{Role: models.RoleUser, Content: message, Timestamp: now},
		models.Turn{Role: models.RoleAssistant, Content: reply, Timestamp: now},
	)
}

// append applies turns to the window under one session lock and schedules the
// durable write. Writes for a user chain on the previous write's completion,
// so the log receives turns in append order.
func (m *ConversationMemory) append(ctx context.Context, userID string, turns ...models.Turn) {
	s := m.session(userID)
	s.mu.Lock()
	m.rehydrateLocked(ctx, userID, s)
	s.turns = append(s.turns, turns...)
	if len(s.turns) > m.window {
		s.turns = s.turns[len(s.turns)-m.window:]
	}

	var prev, done chan struct{}
	if m.store != nil {
		prev = s.persistTail
		done = make(chan struct{})
		s.persistTail = done
	}
	s.mu.Unlock()

	if m.store == nil {
		return
	}
	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		pctx, cancel := context.WithTimeout(context.Background(), m.persistTimeout)
		defer cancel()
		for _, turn := range turns {
			if err := m.store.SaveTurn(pctx, userID, turn); err != nil {
				log.Printf("Warning: Failed to persist turn for user %s: %v", userID, err)
			}
		}
	}()
}

func (m *ConversationMemory) session(userID string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &session{}
		m.sessions[userID] = s
	}
	return s
}

// rehydrateLocked loads recent history from the durable log once per process
// lifetime per user. Caller must hold s.mu.
func (m *ConversationMemory) rehydrateLocked(ctx context.Context, userID string, s *session) {
	if s.hydrated {
		return
	}
	s.hydrated = true

	if m.store == nil {
		return
	}
	turns, err := m.store.RecentTurns(ctx, userID, m.rehydrateLimit)
	if err != nil {
		log.Printf("Warning: Failed to rehydrate history for user %s: %v", userID, err)
		return
	}
	if len(turns) > m.window {
		turns = turns[len(turns)-m.window:]
	}
	s.turns = turns
}
