package core

import (
	"sort"
	"sync"

	"github.com/dkeye/Chat/internal/domain"
)

// Presence maps rooms to the usernames currently joined there.
// Rooms are created on first Add and dropped once empty.
type Presence struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]map[domain.Username]struct{}
}

func NewPresence() *Presence {
	return &Presence{rooms: make(map[domain.RoomName]map[domain.Username]struct{})}
}

// Add reports whether the username was newly added.
func (p *Presence) Add(room domain.RoomName, user domain.Username) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.rooms[room]
	if !ok {
		set = make(map[domain.Username]struct{})
		p.rooms[room] = set
	}
	if _, ok := set[user]; ok {
		return false
	}
	set[user] = struct{}{}
	return true
}

// Remove is a no-op for non-members.
func (p *Presence) Remove(room domain.RoomName, user domain.Username) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.rooms[room]
	if !ok {
		return false
	}
	if _, ok := set[user]; !ok {
		return false
	}
	delete(set, user)
	if len(set) == 0 {
		delete(p.rooms, room)
	}
	return true
}

func (p *Presence) Contains(room domain.RoomName, user domain.Username) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.rooms[room][user]
	return ok
}

// Snapshot returns the members of room sorted by name, so two snapshots
// without an intervening mutation are identical.
func (p *Presence) Snapshot(room domain.RoomName) []string {
	p.mu.RLock()
	set := p.rooms[room]
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, string(u))
	}
	p.mu.RUnlock()
	sort.Strings(out)
	return out
}

type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"member_count"`
}

// Rooms lists non-empty rooms sorted by name.
func (p *Presence) Rooms() []RoomInfo {
	p.mu.RLock()
	out := make([]RoomInfo, 0, len(p.rooms))
	for name, set := range p.rooms {
		out = append(out, RoomInfo{Name: name, MemberCount: len(set)})
	}
	p.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
