// Package orch coordinates room sessions: who is connected, which room
// each session sits in, and how events reach the other members.
package orch

import (
	"context"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Coordinator is the only mutator of presence, typing and username state.
// Adapters talk to it, never to the registries directly.
type Coordinator struct {
	Registry *app.Registry
	Rooms    *app.RoomManager
}

func New(reg *app.Registry, rooms *app.RoomManager) *Coordinator {
	return &Coordinator{Registry: reg, Rooms: rooms}
}

// Connect registers a fresh session for a transport endpoint.
func (c *Coordinator) Connect(conn core.SignalConnection) core.SessionID {
	sid := core.SessionID(uuid.NewString())
	c.Registry.Bind(sid, conn)
	return sid
}

// Disconnect leaves the current room, if any, and forgets the session.
// Safe to call more than once and after Leave.
func (c *Coordinator) Disconnect(ctx context.Context, sid core.SessionID) {
	c.Leave(ctx, sid)
	c.Registry.Unbind(sid)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("disconnected")
}

// WhoAmI reports the username and room of a joined session.
func (c *Coordinator) WhoAmI(sid core.SessionID) (domain.Username, domain.RoomName, bool) {
	info, ok := c.Registry.Get(sid)
	if !ok || info.State != core.StateJoined {
		return "", "", false
	}
	return info.Username, info.RoomName, true
}
