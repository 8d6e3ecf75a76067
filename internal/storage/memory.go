package storage

import (
	"context"
	"sync"
)

// MemoryStorage is an in-memory storage backend backed by maps.
// Thread-safe for concurrent use.
type MemoryStorage struct {
	mu       sync.RWMutex
	counters map[string]int64
	items    map[string]memItem
}

type memItem struct {
	value   []byte
	version int64
}

// NewMemoryStorage creates a new in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		counters: make(map[string]int64),
		items:    make(map[string]memItem),
	}
}

func (s *MemoryStorage) Increment(_ context.Context, key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[key] += delta
	return s.counters[key], nil
}

func (s *MemoryStorage) SetIfNewer(_ context.Context, key string, version int64, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.items[key]; ok && cur.version > version {
		return false, nil
	}

	item := memItem{
		value:   make([]byte, len(value)),
		version: version,
	}
	copy(item.value, value)
	s.items[key] = item
	return true, nil
}

func (s *MemoryStorage) GetVersioned(_ context.Context, key string) ([]byte, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[key]
	if !ok {
		return nil, 0, nil
	}
	// Return a copy to prevent mutation.
	val := make([]byte, len(item.value))
	copy(val, item.value)
	return val, item.version, nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	delete(s.counters, key)
	return nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStorage) Close() error {
	return nil
}

// Len returns the number of versioned items.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
