package app

import (
	"sync"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Conn     core.SignalConnection
	State    core.SessionState
	Username domain.Username
	RoomName domain.RoomName
	Room     *Room
}

// SessionInfo is a read-only copy of a registry entry.
type SessionInfo struct {
	SID      core.SessionID
	State    core.SessionState
	Username domain.Username
	RoomName domain.RoomName
}

// Registry owns every live session and the global set of active
// usernames. A username is held by at most one session at a time.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	holders  map[domain.Username]core.SessionID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		holders:  make(map[domain.Username]core.SessionID),
	}
}

func (r *Registry) Bind(sid core.SessionID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Conn: conn, State: core.StateConnected}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound session")
}

// Unbind drops the session. The username is dropped too when the session
// is still joined; otherwise an in-flight Join or Leave owns it and
// releases it once the room has been cleaned up.
func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return
	}
	if e.State == core.StateJoined && r.holders[e.Username] == sid {
		delete(r.holders, e.Username)
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) Get(sid core.SessionID) (SessionInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return SessionInfo{}, false
	}
	return SessionInfo{SID: sid, State: e.State, Username: e.Username, RoomName: e.RoomName}, true
}

func (r *Registry) Conn(sid core.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	return e.Conn, true
}

// Claim atomically reserves username for sid.
func (r *Registry) Claim(sid core.SessionID, username domain.Username) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; !ok {
		return domain.ErrNotFound
	}
	if holder, ok := r.holders[username]; ok && holder != sid {
		return domain.ErrUsernameTaken
	}
	r.holders[username] = sid
	return nil
}

// Release frees username if sid still holds it.
func (r *Registry) Release(sid core.SessionID, username domain.Username) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.holders[username] == sid {
		delete(r.holders, username)
	}
}

func (r *Registry) IsActive(username domain.Username) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.holders[username]
	return ok
}

// RoomOf returns the room actor and username of a joined session.
func (r *Registry) RoomOf(sid core.SessionID) (*Room, domain.Username, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.State != core.StateJoined {
		return nil, "", false
	}
	return e.Room, e.Username, true
}

// MarkJoined records the room association. It fails if the session is
// gone or already joined.
func (r *Registry) MarkJoined(sid core.SessionID, username domain.Username, room *Room) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok || e.State == core.StateJoined {
		return false
	}
	e.State = core.StateJoined
	e.Username = username
	e.RoomName = room.Name()
	e.Room = room
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room.Name())).Msg("joined room")
	return true
}

// Depart flips a joined session to departed and hands back what it held.
// Only the first caller gets ok == true, which makes leave idempotent.
func (r *Registry) Depart(sid core.SessionID) (domain.Username, *Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok || e.State != core.StateJoined {
		return "", nil, false
	}
	username, room := e.Username, e.Room
	e.State = core.StateDeparted
	e.RoomName = ""
	e.Room = nil
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed room association")
	return username, room, true
}

// Len reports the number of bound sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
