package storage

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with FIFO eviction. It is the default
// backend when Redis is not configured.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]*memoryEntry
	order      *list.List // insertion order, front = oldest
	maxEntries int

	windowMu sync.Mutex
	windows  map[string]*windowEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
	elem      *list.Element
}

type windowEntry struct {
	events    []time.Time
	expiresAt time.Time
}

// NewMemoryStore creates a memory store bounded to maxEntries key-value
// entries. A maxEntries of 0 disables the bound.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]*memoryEntry),
		order:      list.New(),
		maxEntries: maxEntries,
		windows:    make(map[string]*windowEntry),
	}
}

// Get returns the value for key, treating expired entries as misses.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.removeLocked(key, entry)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores the value, evicting the oldest entry when the store is full.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if existing, ok := s.entries[key]; ok {
		existing.value = value
		existing.expiresAt = expiresAt
		s.order.MoveToBack(existing.elem)
		return nil
	}

	if s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictOldestLocked()
	}

	entry := &memoryEntry{value: value, expiresAt: expiresAt}
	entry.elem = s.order.PushBack(key)
	s.entries[key] = entry
	return nil
}

// Delete removes the key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok {
		s.removeLocked(key, entry)
	}
	return nil
}

// WindowCount prunes events older than cutoff and returns the remaining count.
func (s *MemoryStore) WindowCount(_ context.Context, key string, cutoff time.Time) (int64, error) {
	s.windowMu.Lock()
	defer s.windowMu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		return 0, nil
	}

	kept := w.events[:0]
	for _, at := range w.events {
		if !at.Before(cutoff) {
			kept = append(kept, at)
		}
	}
	w.events = kept

	if len(w.events) == 0 {
		delete(s.windows, key)
		return 0, nil
	}
	return int64(len(w.events)), nil
}

// WindowAllow prunes, checks, and records under one lock so two concurrent
// callers at limit-1 cannot both be admitted.
func (s *MemoryStore) WindowAllow(_ context.Context, key string, cutoff, at time.Time, ttl time.Duration, limit int64) (bool, int64, error) {
	s.windowMu.Lock()
	defer s.windowMu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		w = &windowEntry{}
		s.windows[key] = w
	}

	kept := w.events[:0]
	for _, event := range w.events {
		if !event.Before(cutoff) {
			kept = append(kept, event)
		}
	}
	w.events = kept

	count := int64(len(w.events))
	if count >= limit {
		if count == 0 {
			delete(s.windows, key)
		}
		return false, count, nil
	}

	w.events = append(w.events, at)
	if ttl > 0 {
		w.expiresAt = at.Add(ttl)
	}
	return true, count + 1, nil
}

// CleanupExpired removes expired key-value entries and stale windows.
func (s *MemoryStore) CleanupExpired(_ context.Context) (int64, error) {
	now := time.Now()
	var removed int64

	s.mu.Lock()
	for key, entry := range s.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			s.removeLocked(key, entry)
			removed++
		}
	}
	s.mu.Unlock()

	s.windowMu.Lock()
	for key, w := range s.windows {
		if !w.expiresAt.IsZero() && now.After(w.expiresAt) {
			delete(s.windows, key)
			removed++
		}
	}
	s.windowMu.Unlock()

	return removed, nil
}

// Len returns the number of live key-value entries.
func (s *MemoryStore) Len(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.entries)), nil
}

// Ping always succeeds for the memory store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close clears all entries.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.entries = make(map[string]*memoryEntry)
	s.order.Init()
	s.mu.Unlock()

	s.windowMu.Lock()
	s.windows = make(map[string]*windowEntry)
	s.windowMu.Unlock()
	return nil
}

func (s *MemoryStore) removeLocked(key string, entry *memoryEntry) {
	s.order.Remove(entry.elem)
	delete(s.entries, key)
}

func (s *MemoryStore) evictOldestLocked() {
	front := s.order.Front()
	if front == nil {
		return
	}
	key := front.Value.(string)
	if entry, ok := s.entries[key]; ok {
		s.removeLocked(key, entry)
	}
}
