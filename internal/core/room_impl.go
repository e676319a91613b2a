package core

import (
	"sync"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Member is a fan-out target: a session, its username and its transport.
type Member struct {
	SID      SessionID
	Username domain.Username
	Conn     SignalConnection
}

// PublishResult reports delivery stats/backpressure to the coordinator.
type PublishResult struct {
	SentTo  int
	Dropped []Member
}

// Members is the set of sessions a room fans out to.
// It never closes adapter-owned resources.
type Members struct {
	room  domain.RoomName
	mu    sync.RWMutex
	bySID map[SessionID]Member
}

func NewMembers(room domain.RoomName) *Members {
	return &Members{
		room:  room,
		bySID: make(map[SessionID]Member),
	}
}

func (m *Members) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bySID)
}

func (m *Members) Add(mem Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bySID[mem.SID] = mem
	log.Debug().Str("module", "core.room").Str("room", string(m.room)).Str("sid", string(mem.SID)).Msg("member added")
}

func (m *Members) Remove(sid SessionID) (Member, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.bySID[sid]
	if ok {
		delete(m.bySID, sid)
		log.Debug().Str("module", "core.room").Str("room", string(m.room)).Str("sid", string(sid)).Msg("member removed")
	}
	return mem, ok
}

// Broadcast sends to every member except the given session; pass "" to
// include everyone.
func (m *Members) Broadcast(except SessionID, data Frame) PublishResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := PublishResult{}
	for sid, mem := range m.bySID {
		if sid == except {
			continue
		}
		if err := mem.Conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, mem)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(m.room)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
