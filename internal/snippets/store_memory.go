package snippets

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps snippets in process memory, in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	items map[string]Snippet
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]Snippet),
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *Snippet) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[s.ID]; exists {
		return ErrDuplicateID
	}

	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	m.order = append(m.order, s.ID)
	m.items[s.ID] = *s
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*Snippet, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) List(ctx context.Context, f SnippetFilter) ([]*Snippet, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Snippet, 0, len(m.order))
	for _, id := range m.order {
		s := m.items[id]
		if !f.Match(&s) {
			continue
		}
		out = append(out, &s)
	}
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, s *Snippet) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.items[s.ID]
	if !ok {
		return ErrNotFound
	}
	s.CreatedAt = prev.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	m.items[s.ID] = *s
	return nil
}

func (m *MemoryStore) SetActive(ctx context.Context, id string, active bool) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	s.Active = active
	s.UpdatedAt = time.Now().UTC()
	m.items[id] = s
	return nil
}

func (m *MemoryStore) ToggleActive(ctx context.Context, id string) (bool, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.items[id]
	if !ok {
		return false, ErrNotFound
	}
	s.Active = !s.Active
	s.UpdatedAt = time.Now().UTC()
	m.items[id] = s
	return s.Active, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
