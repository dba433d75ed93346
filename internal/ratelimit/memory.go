package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps windows in process memory. State is lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]Window
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: map[string]Window{}}
}

// Take implements Store.
func (m *MemoryStore) Take(_ context.Context, key string, max int, window time.Duration, now time.Time) (Window, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || now.After(w.ResetAt) {
		w = Window{Count: 1, ResetAt: now.Add(window)}
		m.windows[key] = w
		return w, true, nil
	}
	if w.Count < max {
		w.Count++
		m.windows[key] = w
		return w, true, nil
	}
	return w, false, nil
}

// Peek implements Store.
func (m *MemoryStore) Peek(_ context.Context, key string) (Window, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[key]
	return w, ok, nil
}

// Sweep drops windows that expired before now and returns how many were removed.
func (m *MemoryStore) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, w := range m.windows {
		if now.After(w.ResetAt) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed
}
