package api

import "context"

// Store is the persistence surface the router needs. The memory store and
// the sqlite store both implement it.
type Store interface {
	AddUser(u *User)
	FindUserByEmail(email string) *User

	AddEntry(ctx context.Context, e *Entry) error
	GetEntry(ctx context.Context, id string) (*Entry, error)
	ListEntriesByUser(ctx context.Context, userID string) ([]*Entry, error)

	GetPreference(ctx context.Context, owner, key string) (string, bool, error)
	SetPreference(ctx context.Context, owner, key, value string) error
}

var _ Store = (*memoryStore)(nil)
