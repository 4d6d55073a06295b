package domain

import "context"

// Store is a migrated database handing out every repository. Each backend
// owns its own migration files, so the whole storage layer is swappable.
type Store interface {
	Migrate(ctx context.Context) error
	Close() error

	Users() UserRepository
	Sessions() SessionRepository
	Settings() SettingsRepository
	Tasks() TaskRepository
}
