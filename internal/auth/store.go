package auth

import "context"

// UserStore persists accounts. Create must fail with ErrEmailTaken when the
// email is already registered; the Postgres implementation relies on the
// unique index so that concurrent registrations with the same email resolve
// to exactly one winner.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, id string) error
}
