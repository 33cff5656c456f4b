package community

import (
	"context"
	"sync"
)

// MemoryStore keeps posts in process.
type MemoryStore struct {
	mu          sync.RWMutex
	moods       []MoodPost
	confessions []Confession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) AddMood(_ context.Context, post MoodPost) error {
	m.mu.Lock()
	m.moods = append(m.moods, post)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ListMoods(_ context.Context, limit int) ([]MoodPost, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.moods, limit), nil
}

func (m *MemoryStore) AddConfession(_ context.Context, c Confession) error {
	m.mu.Lock()
	m.confessions = append(m.confessions, c)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ListConfessions(_ context.Context, limit int) ([]Confession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.confessions, limit), nil
}

func (m *MemoryStore) IncrementSupport(_ context.Context, id string) (Confession, error) {
	return m.update(id, func(c *Confession) { c.SupportCount++ })
}

func (m *MemoryStore) SetMentorReply(_ context.Context, id, reply string) (Confession, error) {
	return m.update(id, func(c *Confession) { c.MentorReply = reply })
}

func (m *MemoryStore) update(id string, fn func(*Confession)) (Confession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.confessions {
		if m.confessions[i].ID == id {
			fn(&m.confessions[i])
			return m.confessions[i], nil
		}
	}
	return Confession{}, ErrNotFound
}

// newestFirst reverses insertion order and applies limit when positive.
func newestFirst[T any](items []T, limit int) []T {
	n := len(items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]T, 0, n)
	for i := len(items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, items[i])
	}
	return out
}
