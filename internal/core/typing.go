package core

import (
	"sort"
	"sync"

	"github.com/dkeye/Chat/internal/domain"
)

// Typing tracks who is typing, scoped per room for broadcast.
// Nothing here is persisted.
type Typing struct {
	mu    sync.Mutex
	rooms map[domain.RoomName]map[domain.Username]struct{}
}

func NewTyping() *Typing {
	return &Typing{rooms: make(map[domain.RoomName]map[domain.Username]struct{})}
}

// SetTyping reports whether the state actually changed.
func (t *Typing) SetTyping(room domain.RoomName, user domain.Username, isTyping bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := t.rooms[room]
	_, was := set[user]
	if was == isTyping {
		return false
	}
	if isTyping {
		if set == nil {
			set = make(map[domain.Username]struct{})
			t.rooms[room] = set
		}
		set[user] = struct{}{}
		return true
	}
	delete(set, user)
	if len(set) == 0 {
		delete(t.rooms, room)
	}
	return true
}

func (t *Typing) IsTyping(room domain.RoomName, user domain.Username) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.rooms[room][user]
	return ok
}

// Clear drops user from every room and returns the rooms it was typing in.
func (t *Typing) Clear(user domain.Username) []domain.RoomName {
	t.mu.Lock()
	defer t.mu.Unlock()
	var cleared []domain.RoomName
	for room, set := range t.rooms {
		if _, ok := set[user]; !ok {
			continue
		}
		delete(set, user)
		if len(set) == 0 {
			delete(t.rooms, room)
		}
		cleared = append(cleared, room)
	}
	sort.Slice(cleared, func(i, j int) bool { return cleared[i] < cleared[j] })
	return cleared
}

func (t *Typing) Snapshot(room domain.RoomName) []string {
	t.mu.Lock()
	set := t.rooms[room]
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, string(u))
	}
	t.mu.Unlock()
	sort.Strings(out)
	return out
}
