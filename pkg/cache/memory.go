package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Expired items are dropped lazily on
// read and swept whenever a write finds the map past sweepThreshold.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

const sweepThreshold = 1024

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), now: time.Now}
}

// WithClock replaces the time source. Used by tests to step past expiry.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(item.expiresAt) {
		delete(s.items, key)
		return nil, false, nil
	}
	entry := item.entry
	entry.Body = append([]byte(nil), item.entry.Body...)
	return &entry, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, entry *Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if len(s.items) >= sweepThreshold {
		for k, item := range s.items {
			if !now.Before(item.expiresAt) {
				delete(s.items, k)
			}
		}
	}
	stored := *entry
	stored.Body = append([]byte(nil), entry.Body...)
	s.items[key] = memoryItem{entry: stored, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]memoryItem)
	return nil
}

// Len counts stored items, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
