package planner

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store with in-process concurrency safety. Used when
// no database is configured and by tests. Semantics mirror the Postgres
// store: owner-scoped reads, ErrNotFound on cross-owner access, and
// PurgeOwner standing in for the foreign-key cascade.
type MemoryStore struct {
	mu           sync.RWMutex
	notes        map[string]*Note
	tasks        map[string]*Task
	events       map[string]*Event
	goals        map[string]*Goal
	transactions map[string]*Transaction
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty planner store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notes:        make(map[string]*Note),
		tasks:        make(map[string]*Task),
		events:       make(map[string]*Event),
		goals:        make(map[string]*Goal),
		transactions: make(map[string]*Transaction),
	}
}

func (s *MemoryStore) Notes() NoteStore               { return memNotes{s} }
func (s *MemoryStore) Tasks() TaskStore               { return memTasks{s} }
func (s *MemoryStore) Events() EventStore             { return memEvents{s} }
func (s *MemoryStore) Goals() GoalStore               { return memGoals{s} }
func (s *MemoryStore) Transactions() TransactionStore { return memTransactions{s} }

func (s *MemoryStore) PurgeOwner(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.notes {
		if n.OwnerID == ownerID {
			delete(s.notes, id)
		}
	}
	for id, t := range s.tasks {
		if t.OwnerID == ownerID {
			delete(s.tasks, id)
		}
	}
	for id, e := range s.events {
		if e.OwnerID == ownerID {
			delete(s.events, id)
		}
	}
	for id, g := range s.goals {
		if g.OwnerID == ownerID {
			delete(s.goals, id)
		}
	}
	for id, t := range s.transactions {
		if t.OwnerID == ownerID {
			delete(s.transactions, id)
		}
	}
	return nil
}

// --- notes ---

type memNotes struct{ s *MemoryStore }

func (m memNotes) Create(ctx context.Context, n *Note) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stampNew(&n.CreatedAt, &n.UpdatedAt)
	clone := *n
	m.s.notes[n.ID] = &clone
	return nil
}

func (m memNotes) List(ctx context.Context, scope Scope) ([]*Note, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*Note, 0)
	for _, n := range m.s.notes {
		if !scope.All && n.OwnerID != scope.OwnerID {
			continue
		}
		clone := *n
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memNotes) Find(ctx context.Context, id, ownerID string) (*Note, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	n, ok := m.s.notes[id]
	if !ok || n.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (m memNotes) Update(ctx context.Context, n *Note) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	existing, ok := m.s.notes[n.ID]
	if !ok || existing.OwnerID != n.OwnerID {
		return ErrNotFound
	}
	n.CreatedAt = existing.CreatedAt
	n.UpdatedAt = time.Now().UTC()
	clone := *n
	m.s.notes[n.ID] = &clone
	return nil
}

func (m memNotes) Delete(ctx context.Context, id, ownerID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n, ok := m.s.notes[id]
	if !ok || n.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.s.notes, id)
	return nil
}

// --- tasks ---

type memTasks struct{ s *MemoryStore }

func (m memTasks) Create(ctx context.Context, t *Task) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stampNew(&t.CreatedAt, &t.UpdatedAt)
	clone := *t
	m.s.tasks[t.ID] = &clone
	return nil
}

func (m memTasks) List(ctx context.Context, scope Scope) ([]*Task, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*Task, 0)
	for _, t := range m.s.tasks {
		if !scope.All && t.OwnerID != scope.OwnerID {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memTasks) Find(ctx context.Context, id, ownerID string) (*Task, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	t, ok := m.s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m memTasks) Update(ctx context.Context, t *Task) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	existing, ok := m.s.tasks[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	clone := *t
	m.s.tasks[t.ID] = &clone
	return nil
}

func (m memTasks) Delete(ctx context.Context, id, ownerID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.s.tasks, id)
	return nil
}

// --- events ---

type memEvents struct{ s *MemoryStore }

func (m memEvents) Create(ctx context.Context, e *Event) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stampNew(&e.CreatedAt, &e.UpdatedAt)
	clone := *e
	m.s.events[e.ID] = &clone
	return nil
}

func (m memEvents) List(ctx context.Context, scope Scope) ([]*Event, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*Event, 0)
	for _, e := range m.s.events {
		if !scope.All && e.OwnerID != scope.OwnerID {
			continue
		}
		clone := *e
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDateTime.Before(out[j].StartDateTime)
	})
	return out, nil
}

func (m memEvents) Find(ctx context.Context, id, ownerID string) (*Event, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	e, ok := m.s.events[id]
	if !ok || e.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (m memEvents) Update(ctx context.Context, e *Event) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	existing, ok := m.s.events[e.ID]
	if !ok || existing.OwnerID != e.OwnerID {
		return ErrNotFound
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	clone := *e
	m.s.events[e.ID] = &clone
	return nil
}

func (m memEvents) Delete(ctx context.Context, id, ownerID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.events[id]
	if !ok || e.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.s.events, id)
	return nil
}

// --- goals ---

type memGoals struct{ s *MemoryStore }

func (m memGoals) Create(ctx context.Context, g *Goal) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stampNew(&g.CreatedAt, &g.UpdatedAt)
	clone := *g
	m.s.goals[g.ID] = &clone
	return nil
}

func (m memGoals) List(ctx context.Context, scope Scope) ([]*Goal, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*Goal, 0)
	for _, g := range m.s.goals {
		if !scope.All && g.OwnerID != scope.OwnerID {
			continue
		}
		clone := *g
		out = append(out, &clone)
	}
	// Pinned goals first, then newest.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m memGoals) Find(ctx context.Context, id, ownerID string) (*Goal, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	g, ok := m.s.goals[id]
	if !ok || g.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	clone := *g
	return &clone, nil
}

func (m memGoals) Update(ctx context.Context, g *Goal) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	existing, ok := m.s.goals[g.ID]
	if !ok || existing.OwnerID != g.OwnerID {
		return ErrNotFound
	}
	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = time.Now().UTC()
	clone := *g
	m.s.goals[g.ID] = &clone
	return nil
}

func (m memGoals) Delete(ctx context.Context, id, ownerID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	g, ok := m.s.goals[id]
	if !ok || g.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.s.goals, id)
	return nil
}

// --- transactions ---

type memTransactions struct{ s *MemoryStore }

func (m memTransactions) Create(ctx context.Context, t *Transaction) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stampNew(&t.CreatedAt, &t.UpdatedAt)
	clone := *t
	m.s.transactions[t.ID] = &clone
	return nil
}

func (m memTransactions) List(ctx context.Context, scope Scope) ([]*Transaction, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*Transaction, 0)
	for _, t := range m.s.transactions {
		if !scope.All && t.OwnerID != scope.OwnerID {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m memTransactions) Find(ctx context.Context, id, ownerID string) (*Transaction, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	t, ok := m.s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m memTransactions) Update(ctx context.Context, t *Transaction) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	existing, ok := m.s.transactions[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	clone := *t
	m.s.transactions[t.ID] = &clone
	return nil
}

func (m memTransactions) Delete(ctx context.Context, id, ownerID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.s.transactions, id)
	return nil
}

func stampNew(createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}
