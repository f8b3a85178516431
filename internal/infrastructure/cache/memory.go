package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryQuestionHistory is an in-process question history used when Redis is
// not configured, e.g. in local development and tests.
type MemoryQuestionHistory struct {
	mu    sync.RWMutex
	items map[uuid.UUID][]string
}

// NewMemoryQuestionHistory creates an in-memory question history
func NewMemoryQuestionHistory() *MemoryQuestionHistory {
	return &MemoryQuestionHistory{
		items: make(map[uuid.UUID][]string),
	}
}

// Recent returns up to limit of the user's most recent questions, newest first
func (m *MemoryQuestionHistory) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	questions := m.items[userID]
	if limit > 0 && limit < len(questions) {
		questions = questions[:limit]
	}
	out := make([]string, len(questions))
	copy(out, questions)
	return out, nil
}

// Record prepends a question to the user's history, trimming to the cap
func (m *MemoryQuestionHistory) Record(ctx context.Context, userID uuid.UUID, question string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	questions := append([]string{question}, m.items[userID]...)
	if len(questions) > historyCap {
		questions = questions[:historyCap]
	}
	m.items[userID] = questions
	return nil
}
