package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrRoomStopped is returned when a command reaches a room that has shut down.
var ErrRoomStopped = errors.New("room stopped")

// Room is a single-goroutine actor. Every command runs to completion,
// including its fan-out, before the next one starts, so all members see
// the same event order.
type Room struct {
	name   domain.RoomName
	deps   *roomDeps
	logger zerolog.Logger

	members *core.Members
	inbox   chan func()
	stop    chan struct{}
	done    chan struct{}

	refs int // guarded by RoomManager.mu
}

type roomDeps struct {
	presence     *core.Presence
	typing       *core.Typing
	messages     core.MessageStore
	policy       Policy
	clock        *stamper
	historyLimit int
}

func newRoom(name domain.RoomName, deps *roomDeps) *Room {
	return &Room{
		name:    name,
		deps:    deps,
		logger:  log.With().Str("module", "app.room").Str("room", string(name)).Logger(),
		members: core.NewMembers(name),
		inbox:   make(chan func(), 64),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (r *Room) Name() domain.RoomName { return r.name }

func (r *Room) run(ctx context.Context) {
	defer close(r.done)
	r.logger.Debug().Msg("room started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug().Msg("room ctx done")
			return
		case <-r.stop:
			r.logger.Debug().Msg("room stopped")
			return
		case cmd := <-r.inbox:
			cmd()
		}
	}
}

// do runs fn on the room goroutine and waits for it.
func (r *Room) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}
	select {
	case r.inbox <- cmd:
	case <-r.done:
		return ErrRoomStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-r.done:
		// the command may have been queued behind the stop
		return ErrRoomStopped
	}
}

// Join loads history, registers the member and announces it.
func (r *Room) Join(ctx context.Context, m core.Member) ([]domain.Message, error) {
	var (
		history []domain.Message
		err     error
	)
	if doErr := r.do(ctx, func() {
		history, err = r.deps.messages.Recent(ctx, r.name, r.deps.historyLimit)
		if err != nil {
			err = fmt.Errorf("%w: load history: %v", domain.ErrPersistence, err)
			return
		}
		r.deps.presence.Add(r.name, m.Username)
		r.members.Add(m)

		views := make([]core.MessageView, 0, len(history))
		for _, msg := range history {
			views = append(views, core.NewMessageView(msg))
		}
		r.sendTo(m, core.EventHistory, views)
		r.broadcast("", core.EventUserList, r.deps.presence.Snapshot(r.name))
		r.broadcast(m.SID, core.EventMessage, r.notice(fmt.Sprintf("%s joined the room.", m.Username)))
		r.logger.Info().Str("sid", string(m.SID)).Str("user", string(m.Username)).Int("history", len(history)).Msg("member joined")
	}); doErr != nil {
		return nil, doErr
	}
	return history, err
}

// Publish persists a message and, only once that succeeded, fans it out
// to every member including the author.
func (r *Room) Publish(ctx context.Context, author domain.Username, content string) (domain.Message, error) {
	var (
		msg domain.Message
		err error
	)
	if doErr := r.do(ctx, func() {
		msg = domain.Message{
			ID:        ulid.Make().String(),
			Room:      r.name,
			Author:    author,
			Content:   content,
			CreatedAt: r.deps.clock.Next(),
		}
		if err = r.deps.messages.Append(ctx, msg); err != nil {
			r.logger.Error().Err(err).Str("user", string(author)).Msg("persist message")
			err = fmt.Errorf("%w: append message: %v", domain.ErrPersistence, err)
			return
		}
		r.broadcast("", core.EventMessage, core.NewMessageView(msg))
	}); doErr != nil {
		return domain.Message{}, doErr
	}
	return msg, err
}

// SetTyping ignores users that are not present in the room.
func (r *Room) SetTyping(ctx context.Context, sid core.SessionID, user domain.Username, isTyping bool) error {
	return r.do(ctx, func() {
		if !r.deps.presence.Contains(r.name, user) {
			return
		}
		if !r.deps.typing.SetTyping(r.name, user, isTyping) {
			return
		}
		r.broadcast(sid, core.EventUserTyping, core.TypingView{Username: string(user), IsTyping: isTyping})
	})
}

// Leave removes typing and presence state, then tells the remaining members.
func (r *Room) Leave(ctx context.Context, sid core.SessionID, user domain.Username) error {
	return r.do(ctx, func() {
		wasTyping := len(r.deps.typing.Clear(user)) > 0
		r.members.Remove(sid)
		if !r.deps.presence.Remove(r.name, user) {
			return
		}
		if wasTyping {
			r.broadcast(sid, core.EventUserTyping, core.TypingView{Username: string(user), IsTyping: false})
		}
		r.broadcast(sid, core.EventUserList, r.deps.presence.Snapshot(r.name))
		r.broadcast(sid, core.EventMessage, r.notice(fmt.Sprintf("%s left the room.", user)))
		r.logger.Info().Str("sid", string(sid)).Str("user", string(user)).Msg("member left")
	})
}

func (r *Room) MemberCount() int { return r.members.Count() }

func (r *Room) notice(text string) core.MessageView {
	return core.MessageView{User: domain.SystemAuthor, Text: text, Timestamp: r.deps.clock.Now()}
}

func (r *Room) sendTo(m core.Member, event string, data any) {
	frame, err := core.Encode(event, data)
	if err != nil {
		r.logger.Error().Err(err).Str("event", event).Msg("encode event")
		return
	}
	if err := m.Conn.TrySend(frame); err != nil {
		r.onBackPressure([]core.Member{m})
	}
}

func (r *Room) broadcast(except core.SessionID, event string, data any) {
	frame, err := core.Encode(event, data)
	if err != nil {
		r.logger.Error().Err(err).Str("event", event).Msg("encode event")
		return
	}
	res := r.members.Broadcast(except, frame)
	if len(res.Dropped) > 0 {
		r.onBackPressure(res.Dropped)
	}
}

func (r *Room) onBackPressure(dropped []core.Member) {
	if r.deps.policy == nil {
		return
	}
	for _, m := range dropped {
		switch r.deps.policy.OnBackPressure(r.name, m) {
		case KickMember:
			r.logger.Warn().Str("sid", string(m.SID)).Str("user", string(m.Username)).Msg("kicking slow member")
			// closing the transport ends its read loop, which disconnects it
			m.Conn.Close()
		case DropFrame:
			r.logger.Debug().Str("sid", string(m.SID)).Str("user", string(m.Username)).Msg("dropped frame for slow member")
		case NoAction:
		}
	}
}

// stamper hands out non-decreasing UTC timestamps.
type stamper struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newStamper(now func() time.Time) *stamper {
	if now == nil {
		now = time.Now
	}
	return &stamper{now: now}
}

func (s *stamper) Now() time.Time { return s.now().UTC() }

func (s *stamper) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now().UTC()
	if t.Before(s.last) {
		t = s.last
	}
	s.last = t
	return t
}
