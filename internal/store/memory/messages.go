// Package memory holds process-local store implementations. Everything is
// lost on restart.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/dkeye/Chat/internal/domain"
)

// MessageStore keeps messages per room in insertion order.
type MessageStore struct {
	mu     sync.RWMutex
	byRoom map[domain.RoomName][]domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{byRoom: make(map[domain.RoomName][]domain.Message)}
}

func (s *MessageStore) Append(_ context.Context, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byRoom[msg.Room] = append(s.byRoom[msg.Room], msg)
	return nil
}

func (s *MessageStore) Recent(_ context.Context, room domain.RoomName, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.byRoom[room]
	if limit <= 0 || limit > len(msgs) {
		limit = len(msgs)
	}
	out := make([]domain.Message, limit)
	copy(out, msgs[len(msgs)-limit:])
	return out, nil
}

func (s *MessageStore) Search(_ context.Context, room domain.RoomName, query string, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.byRoom[room]
	needle := strings.ToLower(query)
	out := make([]domain.Message, 0)
	for i := len(msgs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if needle != "" && !strings.Contains(strings.ToLower(msgs[i].Content), needle) {
			continue
		}
		out = append(out, msgs[i])
	}
	return out, nil
}

func (s *MessageStore) All(_ context.Context, room domain.RoomName) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Message, len(s.byRoom[room]))
	copy(out, s.byRoom[room])
	return out, nil
}
