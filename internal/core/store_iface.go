package core

import (
	"context"

	"github.com/dkeye/Chat/internal/domain"
)

// MessageStore is the append-only message log.
// Implementations wrap their failures with domain.ErrPersistence.
type MessageStore interface {
	Append(ctx context.Context, msg domain.Message) error
	// Recent returns up to limit newest messages of room in ascending order.
	Recent(ctx context.Context, room domain.RoomName, limit int) ([]domain.Message, error)
	// Search returns up to limit messages newest first. An empty query
	// matches everything; otherwise a case-insensitive substring match on
	// content is applied.
	Search(ctx context.Context, room domain.RoomName, query string, limit int) ([]domain.Message, error)
	// All returns every message of room in ascending order.
	All(ctx context.Context, room domain.RoomName) ([]domain.Message, error)
}

// AccountStore keeps registered users keyed by unique username.
type AccountStore interface {
	// Create fails with domain.ErrAccountExists on duplicate usernames.
	Create(ctx context.Context, acc domain.Account) error
	// Find fails with domain.ErrNotFound for unknown usernames.
	Find(ctx context.Context, username domain.Username) (domain.Account, error)
}

// FavoriteStore keeps (username, room) pairs.
type FavoriteStore interface {
	// Add reports whether the pair was newly created.
	Add(ctx context.Context, fav domain.Favorite) (bool, error)
	// Remove reports whether the pair existed.
	Remove(ctx context.Context, fav domain.Favorite) (bool, error)
	List(ctx context.Context, username domain.Username) ([]domain.RoomName, error)
}

// Stores bundles the three store roles selected at startup.
type Stores struct {
	Messages  MessageStore
	Accounts  AccountStore
	Favorites FavoriteStore
	// Close releases backing resources; may be nil.
	Close func() error
}
