package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/dkeye/Chat/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stuckConn refuses every frame, as a full send queue would.
type stuckConn struct {
	mu     sync.Mutex
	closed bool
}

func (c *stuckConn) TrySend(core.Frame) error { return core.ErrBackpressure }

func (c *stuckConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *stuckConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestRoom_SlowMemberIsKicked(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewRoomManager(ctx, RoomManagerOptions{
		Messages: memory.NewMessageStore(),
		Policy:   SimplePolicy{},
	})
	room := m.Acquire("r1")
	defer m.Release(room)

	slow := &stuckConn{}
	_, err := room.Join(ctx, core.Member{SID: "s1", Username: "slow", Conn: slow})
	require.NoError(t, err)
	assert.True(t, slow.isClosed())
}

type fixedPolicy struct {
	action BackpressureAction
	mu     sync.Mutex
	seen   []core.SessionID
}

func (p *fixedPolicy) OnBackPressure(_ domain.RoomName, m core.Member) BackpressureAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, m.SID)
	return p.action
}

func TestRoom_LenientPoliciesKeepSlowMember(t *testing.T) {
	for name, action := range map[string]BackpressureAction{"drop frame": DropFrame, "no action": NoAction} {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			policy := &fixedPolicy{action: action}
			m := NewRoomManager(ctx, RoomManagerOptions{
				Messages: memory.NewMessageStore(),
				Policy:   policy,
			})
			room := m.Acquire("r1")
			defer m.Release(room)

			slow := &stuckConn{}
			_, err := room.Join(ctx, core.Member{SID: "s1", Username: "slow", Conn: slow})
			require.NoError(t, err)
			_, err = room.Publish(ctx, "slow", "still here")
			require.NoError(t, err)

			assert.False(t, slow.isClosed())
			assert.Equal(t, 1, room.MemberCount())
			policy.mu.Lock()
			defer policy.mu.Unlock()
			assert.NotEmpty(t, policy.seen)
			for _, sid := range policy.seen {
				assert.Equal(t, core.SessionID("s1"), sid)
			}
		})
	}
}

func TestStamper_NonDecreasing(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(-time.Second), base.Add(time.Second)}
	i := 0
	s := newStamper(func() time.Time {
		t := ticks[i]
		i++
		return t
	})

	first := s.Next()
	second := s.Next()
	third := s.Next()
	assert.Equal(t, base, first)
	assert.Equal(t, base, second, "clock going backwards is clamped")
	assert.Equal(t, base.Add(time.Second), third)
}

func TestRoom_PublishStampsAndStores(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := memory.NewMessageStore()
	fixed := time.Date(2025, 6, 1, 8, 0, 0, 0, time.FixedZone("X", 3600))
	m := NewRoomManager(ctx, RoomManagerOptions{
		Messages: store,
		Now:      func() time.Time { return fixed },
	})
	room := m.Acquire("r1")
	defer m.Release(room)

	msg, err := room.Publish(ctx, "alice", "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, time.UTC, msg.CreatedAt.Location())
	assert.True(t, fixed.Equal(msg.CreatedAt))

	all, err := store.All(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.Username("alice"), all[0].Author)
}
