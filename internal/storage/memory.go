package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is a thread-safe in-memory Store suitable for tests and local
// dev. Records are kept as marshaled JSON so callers never share mutable
// state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
}

// NewMemory creates an empty in-memory store. Collections spring into
// existence on first Create.
func NewMemory() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]json.RawMessage)}
}

func (m *MemoryStore) Create(ctx context.Context, collection, id string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collections[collection]
	if coll == nil {
		coll = make(map[string]json.RawMessage)
		m.collections[collection] = coll
	}
	if _, ok := coll[id]; ok {
		return ErrExists
	}
	coll[id] = data
	return nil
}

func (m *MemoryStore) Read(ctx context.Context, collection, id string, out any) error {
	m.mu.RLock()
	data, ok := m.collections[collection][id]
	m.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, out)
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collections[collection]
	if _, ok := coll[id]; !ok {
		return ErrNotFound
	}
	coll[id] = data
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collections[collection]
	if _, ok := coll[id]; !ok {
		return ErrNotFound
	}
	delete(coll, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, collection string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll, ok := m.collections[collection]
	if !ok {
		return nil, ErrNoCollection
	}
	if len(coll) == 0 {
		return nil, ErrEmptyCollection
	}
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	return ids, nil
}
