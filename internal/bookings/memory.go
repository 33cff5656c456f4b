package bookings

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps bookings in process. Used when no database is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Insert(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) CountByUrgency(ctx context.Context) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int)
	for _, rec := range m.records {
		key := string(rec.Urgency)
		if key == "" {
			key = UnspecifiedUrgency
		}
		out[key]++
	}
	return out, nil
}

func (m *MemoryRepository) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.RLock()
	out := append([]Record(nil), m.records...)
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].ConfirmedAt.After(out[j].ConfirmedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
