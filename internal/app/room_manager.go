package app

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultHistoryLimit = 50

type RoomManagerOptions struct {
	Messages     core.MessageStore
	Presence     *core.Presence
	Typing       *core.Typing
	Policy       Policy
	HistoryLimit int
	// Now overrides the clock used for message timestamps.
	Now func() time.Time
}

// RoomManager creates room actors on first use and stops them once the
// last session holding them lets go.
type RoomManager struct {
	ctx   context.Context
	deps  *roomDeps
	mu    sync.Mutex
	rooms map[domain.RoomName]*Room
}

func NewRoomManager(ctx context.Context, opts RoomManagerOptions) *RoomManager {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Presence == nil {
		opts.Presence = core.NewPresence()
	}
	if opts.Typing == nil {
		opts.Typing = core.NewTyping()
	}
	return &RoomManager{
		ctx: ctx,
		deps: &roomDeps{
			presence:     opts.Presence,
			typing:       opts.Typing,
			messages:     opts.Messages,
			policy:       opts.Policy,
			clock:        newStamper(opts.Now),
			historyLimit: opts.HistoryLimit,
		},
		rooms: make(map[domain.RoomName]*Room),
	}
}

// Acquire returns the room actor for name, starting it if needed. Every
// Acquire must be paired with a Release.
func (m *RoomManager) Acquire(name domain.RoomName) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[name]
	if !ok {
		room = newRoom(name, m.deps)
		m.rooms[name] = room
		go room.run(m.ctx)
		log.Info().Str("module", "app.rooms").Str("room", string(name)).Msg("room created")
	}
	room.refs++
	return room
}

func (m *RoomManager) Release(room *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room.refs--
	if room.refs > 0 {
		return
	}
	if m.rooms[room.name] == room {
		delete(m.rooms, room.name)
	}
	close(room.stop)
	log.Info().Str("module", "app.rooms").Str("room", string(room.name)).Msg("room evicted")
}

// Active reports how many room actors are running.
func (m *RoomManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

func (m *RoomManager) List() []core.RoomInfo {
	return m.deps.presence.Rooms()
}

func (m *RoomManager) Members(name domain.RoomName) []string {
	return m.deps.presence.Snapshot(name)
}
