package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(e)
	return &out, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.put(key, value, s.entries[key].Version+1), nil
}

func (s *MemoryStore) Create(ctx context.Context, key string, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		return 0, ErrKeyExists
	}
	return s.put(key, value, 1), nil
}

func (s *MemoryStore) CompareAndSwap(ctx context.Context, key string, value []byte, version int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[key]
	if !ok {
		return 0, ErrNotFound
	}
	if current.Version != version {
		return 0, ErrVersionConflict
	}
	return s.put(key, value, version+1), nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0)
	for k, e := range s.entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, clone(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// put must be called with mu held.
func (s *MemoryStore) put(key string, value []byte, version int64) int64 {
	buf := make([]byte, len(value))
	copy(buf, value)
	s.entries[key] = Entry{Key: key, Value: buf, Version: version}
	return version
}

func clone(e Entry) Entry {
	buf := make([]byte, len(e.Value))
	copy(buf, e.Value)
	return Entry{Key: e.Key, Value: buf, Version: e.Version}
}
