package projcache

import (
	"context"
	"sync"

	"github.com/theirongolddev/nestegg/internal/model"
)

// Memory is an in-process cache. Rows are copied on the way in and out, so
// callers may modify what they pass to Set or receive from Get.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]model.YearRow
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]model.YearRow)}
}

func (m *Memory) Get(_ context.Context, key string) ([]model.YearRow, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return cloneRows(rows), true
}

func (m *Memory) Set(_ context.Context, key string, rows []model.YearRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = cloneRows(rows)
	return nil
}

func (m *Memory) Invalidate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]model.YearRow)
	return nil
}

// Len returns the number of cached projections.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func cloneRows(rows []model.YearRow) []model.YearRow {
	out := make([]model.YearRow, len(rows))
	for i, r := range rows {
		r.Months = append([]model.MonthRow(nil), r.Months...)
		out[i] = r
	}
	return out
}
