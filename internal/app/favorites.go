package app

import (
	"context"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

type Favorites struct {
	store core.FavoriteStore
}

func NewFavorites(store core.FavoriteStore) *Favorites {
	return &Favorites{store: store}
}

func (f *Favorites) parse(rawUser, rawRoom string) (domain.Favorite, error) {
	user, err := domain.NewUsername(rawUser)
	if err != nil {
		return domain.Favorite{}, err
	}
	room, err := domain.NewRoomName(rawRoom)
	if err != nil {
		return domain.Favorite{}, err
	}
	return domain.Favorite{Username: user, Room: room}, nil
}

// Add reports whether the favorite was newly created.
func (f *Favorites) Add(ctx context.Context, rawUser, rawRoom string) (bool, error) {
	fav, err := f.parse(rawUser, rawRoom)
	if err != nil {
		return false, err
	}
	return f.store.Add(ctx, fav)
}

func (f *Favorites) Remove(ctx context.Context, rawUser, rawRoom string) (bool, error) {
	fav, err := f.parse(rawUser, rawRoom)
	if err != nil {
		return false, err
	}
	return f.store.Remove(ctx, fav)
}

func (f *Favorites) List(ctx context.Context, rawUser string) ([]domain.RoomName, error) {
	user, err := domain.NewUsername(rawUser)
	if err != nil {
		return nil, err
	}
	return f.store.List(ctx, user)
}
