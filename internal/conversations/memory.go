// Package conversations implements the side-channel transcript log.
// Writes are best-effort: the chat path records a turn after responding
// and ignores failures.
package conversations

import (
	"context"
	"sync"
	"time"

	"github.com/botify-ai/botify-backend/pkg/models"
	"github.com/google/uuid"
)

// DefaultMaxEntries caps the in-memory log.
const DefaultMaxEntries = 1000

// MemoryLog keeps the most recent conversation turns in memory. A
// document-store implementation can replace it behind
// contracts.ConversationStore without touching the chat path.
type MemoryLog struct {
	mu         sync.Mutex
	entries    []models.Conversation
	maxEntries int
}

// NewMemoryLog creates an in-memory transcript log. maxEntries <= 0
// selects the default cap.
func NewMemoryLog(maxEntries int) *MemoryLog {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryLog{maxEntries: maxEntries}
}

// Append records one turn, evicting the oldest entry once the cap is hit.
func (l *MemoryLog) Append(_ context.Context, conv *models.Conversation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := *conv
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}

	l.entries = append(l.entries, cp)
	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}
	return nil
}

// Recent returns up to limit turns, newest first.
func (l *MemoryLog) Recent(_ context.Context, limit int) ([]models.Conversation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}
	out := make([]models.Conversation, 0, limit)
	for i := len(l.entries) - 1; i >= len(l.entries)-limit; i-- {
		out = append(out, l.entries[i])
	}
	return out, nil
}
