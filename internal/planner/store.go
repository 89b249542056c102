package planner

import "context"

// Scope constrains a list query to an owner. All=true (admin callers) lists
// across owners, with owner identity joined on for display. Reads, updates
// and deletes of individual records are always owner-scoped regardless of
// role; only listing widens for admins.
type Scope struct {
	OwnerID string
	All     bool
}

// Store groups per-resource persistence. Implementations must never return
// records outside the given scope and must report cross-owner access as
// ErrNotFound so record existence is not leaked.
type Store interface {
	Notes() NoteStore
	Tasks() TaskStore
	Events() EventStore
	Goals() GoalStore
	Transactions() TransactionStore

	// PurgeOwner removes every record owned by the account. In Postgres the
	// foreign keys cascade on account deletion; this keeps the in-memory
	// store and any stragglers consistent with that behavior.
	PurgeOwner(ctx context.Context, ownerID string) error
}

// NoteStore persists notes.
type NoteStore interface {
	Create(ctx context.Context, n *Note) error
	List(ctx context.Context, scope Scope) ([]*Note, error)
	Find(ctx context.Context, id, ownerID string) (*Note, error)
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, id, ownerID string) error
}

// TaskStore persists tasks.
type TaskStore interface {
	Create(ctx context.Context, t *Task) error
	List(ctx context.Context, scope Scope) ([]*Task, error)
	Find(ctx context.Context, id, ownerID string) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id, ownerID string) error
}

// EventStore persists calendar events.
type EventStore interface {
	Create(ctx context.Context, e *Event) error
	List(ctx context.Context, scope Scope) ([]*Event, error)
	Find(ctx context.Context, id, ownerID string) (*Event, error)
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id, ownerID string) error
}

// GoalStore persists habit goals. List orders pinned goals first.
type GoalStore interface {
	Create(ctx context.Context, g *Goal) error
	List(ctx context.Context, scope Scope) ([]*Goal, error)
	Find(ctx context.Context, id, ownerID string) (*Goal, error)
	Update(ctx context.Context, g *Goal) error
	Delete(ctx context.Context, id, ownerID string) error
}

// TransactionStore persists finance entries.
type TransactionStore interface {
	Create(ctx context.Context, t *Transaction) error
	List(ctx context.Context, scope Scope) ([]*Transaction, error)
	Find(ctx context.Context, id, ownerID string) (*Transaction, error)
	Update(ctx context.Context, t *Transaction) error
	Delete(ctx context.Context, id, ownerID string) error
}
