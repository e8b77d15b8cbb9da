package domain

import "context"

// Store defines lifecycle and access operations for the credential store.
// Each implementation (SQLite, Postgres) owns its own migration files and
// strategy, ensuring the entire backend is swappable.
type Store interface {
	Migrate(ctx context.Context) error
	Close() error
	Users() UserRepository
	Browser() Browser
}
