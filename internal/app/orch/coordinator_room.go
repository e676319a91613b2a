package orch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join puts the session into room under username. A session that is
// already in a room leaves it first. The returned history (oldest first)
// has already been delivered to the session as a history event.
func (c *Coordinator) Join(ctx context.Context, sid core.SessionID, rawUser, rawRoom string) ([]core.MessageView, error) {
	username, err := domain.NewUsername(rawUser)
	if err != nil {
		return nil, err
	}
	roomName, err := domain.NewRoomName(rawRoom)
	if err != nil {
		return nil, err
	}
	conn, ok := c.Registry.Conn(sid)
	if !ok {
		return nil, fmt.Errorf("%w: unknown session", domain.ErrValidation)
	}

	if prev, prevRoom, joined := c.WhoAmI(sid); joined {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(prevRoom)).Str("user", string(prev)).Msg("rejoin, leaving current room")
		c.Leave(ctx, sid)
	}

	if err := c.Registry.Claim(sid, username); err != nil {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("user", string(username)).Msg("username taken")
		return nil, err
	}

	room := c.Rooms.Acquire(roomName)
	member := core.Member{SID: sid, Username: username, Conn: conn}
	history, err := room.Join(ctx, member)
	if err != nil {
		c.Rooms.Release(room)
		c.Registry.Release(sid, username)
		return nil, err
	}
	if !c.Registry.MarkJoined(sid, username, room) {
		// disconnected while joining
		_ = room.Leave(context.WithoutCancel(ctx), sid, username)
		c.Rooms.Release(room)
		c.Registry.Release(sid, username)
		return nil, fmt.Errorf("%w: session closed during join", domain.ErrValidation)
	}

	views := make([]core.MessageView, 0, len(history))
	for _, m := range history {
		views = append(views, core.NewMessageView(m))
	}
	return views, nil
}

// Send sanitizes and persists text, then broadcasts it to the room. Empty
// text or a session without a room is ignored. A persistence failure is
// returned to the caller and nothing is broadcast.
func (c *Coordinator) Send(ctx context.Context, sid core.SessionID, text string) error {
	if text == "" {
		return nil
	}
	room, username, ok := c.joinedRoom(sid)
	if !ok {
		return nil
	}
	content := domain.Sanitize(text)
	if strings.TrimSpace(content) == "" {
		return nil
	}
	if len(content) > domain.MaxMessageLen {
		return fmt.Errorf("%w: message too long", domain.ErrValidation)
	}
	_, err := room.Publish(ctx, username, content)
	return err
}

// SetTyping is notification-only; nothing is stored or acknowledged.
func (c *Coordinator) SetTyping(ctx context.Context, sid core.SessionID, isTyping bool) {
	room, username, ok := c.joinedRoom(sid)
	if !ok {
		return
	}
	if err := room.SetTyping(ctx, sid, username, isTyping); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("typing dropped")
	}
}

// Leave is idempotent: only the first call for a joined session acts.
func (c *Coordinator) Leave(ctx context.Context, sid core.SessionID) {
	username, room, ok := c.Registry.Depart(sid)
	if !ok {
		return
	}
	// the departure must reach the room even if the caller's context is gone
	if err := room.Leave(context.WithoutCancel(ctx), sid, username); err != nil && !errors.Is(err, app.ErrRoomStopped) {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("leave not delivered")
	}
	c.Rooms.Release(room)
	c.Registry.Release(sid, username)
}

func (c *Coordinator) joinedRoom(sid core.SessionID) (*app.Room, domain.Username, bool) {
	return c.Registry.RoomOf(sid)
}
