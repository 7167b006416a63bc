package store

import (
	"context"
	"errors"

	"github.com/storemesh/storemesh/internal/store/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this.
type Store interface {
	Stores() Stores
	Favorites() Favorites

	ApplyMigrations() error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Stores interface {
	// CreateStore inserts a new store (id is provided by app via ULID).
	CreateStore(ctx context.Context, s domain.Store) error

	// GetStoreByID returns a store by id.
	GetStoreByID(ctx context.Context, id string) (domain.Store, error)

	// ListStores returns stores matching any of the location types, up to
	// limit. An empty type list matches everything.
	ListStores(ctx context.Context, locationTypes []string, limit int) ([]domain.Store, error)

	// UpdateStore replaces the mutable fields and bumps updated_at.
	UpdateStore(ctx context.Context, s domain.Store) error

	// DeleteStore removes a store and, via cascade, its favorites.
	DeleteStore(ctx context.Context, id string) error
}

type Favorites interface {
	// AddFavorite records a favorite. Returns ErrAlreadyExists when the pair
	// is present and ErrNotFound when the store doesn't exist.
	AddFavorite(ctx context.Context, f domain.Favorite) error

	// RemoveFavorite deletes a favorite pair.
	RemoveFavorite(ctx context.Context, userName, storeID string) error

	// ListFavoriteStores returns the stores a user has favorited, newest
	// favorite first.
	ListFavoriteStores(ctx context.Context, userName string) ([]domain.Store, error)
}
