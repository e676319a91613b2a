package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dkeye/Chat/internal/domain"
)

type FavoriteStore struct {
	mu     sync.RWMutex
	byUser map[domain.Username]map[domain.RoomName]struct{}
}

func NewFavoriteStore() *FavoriteStore {
	return &FavoriteStore{byUser: make(map[domain.Username]map[domain.RoomName]struct{})}
}

func (s *FavoriteStore) Add(_ context.Context, fav domain.Favorite) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms, ok := s.byUser[fav.Username]
	if !ok {
		rooms = make(map[domain.RoomName]struct{})
		s.byUser[fav.Username] = rooms
	}
	if _, ok := rooms[fav.Room]; ok {
		return false, nil
	}
	rooms[fav.Room] = struct{}{}
	return true, nil
}

func (s *FavoriteStore) Remove(_ context.Context, fav domain.Favorite) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms, ok := s.byUser[fav.Username]
	if !ok {
		return false, nil
	}
	if _, ok := rooms[fav.Room]; !ok {
		return false, nil
	}
	delete(rooms, fav.Room)
	if len(rooms) == 0 {
		delete(s.byUser, fav.Username)
	}
	return true, nil
}

func (s *FavoriteStore) List(_ context.Context, username domain.Username) ([]domain.RoomName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RoomName, 0, len(s.byUser[username]))
	for room := range s.byUser[username] {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
