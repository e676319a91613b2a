package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/app/orch"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/ratelimit"
	"github.com/dkeye/Chat/internal/store/memory"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	srv   *httptest.Server
	coord *orch.Coordinator
}

func newHarness(t *testing.T, limiter ratelimit.Limiter) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rooms := app.NewRoomManager(ctx, app.RoomManagerOptions{
		Messages: memory.NewMessageStore(),
		Policy:   app.SimplePolicy{},
	})
	coord := orch.New(app.NewRegistry(), rooms)
	ctl := NewSignalWSController(coord, limiter, Options{ReadLimit: 32768, PingPeriod: time.Minute})

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &harness{srv: srv, coord: coord}
}

type client struct {
	t  *testing.T
	ws *websocket.Conn
}

func (h *harness) dial(t *testing.T) *client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return &client{t: t, ws: ws}
}

func (c *client) send(event string, data any) {
	c.t.Helper()
	frame, err := core.Encode(event, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.ws.WriteMessage(websocket.TextMessage, frame))
}

func (c *client) next() core.Envelope {
	c.t.Helper()
	require.NoError(c.t, c.ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.ws.ReadMessage()
	require.NoError(c.t, err)
	var env core.Envelope
	require.NoError(c.t, json.Unmarshal(data, &env))
	return env
}

// expect skips frames until one of the given type arrives.
func (c *client) expect(event string) core.Envelope {
	c.t.Helper()
	for i := 0; i < 10; i++ {
		env := c.next()
		if env.Type == event {
			return env
		}
	}
	c.t.Fatalf("no %q event received", event)
	return core.Envelope{}
}

func TestSignal_JoinChatAndLeave(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.dial(t)
	bob := h.dial(t)

	alice.send(core.EventJoin, joinPayload{Username: "alice", Room: "r1"})
	assert.Equal(t, core.EventHistory, alice.next().Type)
	assert.Equal(t, core.EventUserList, alice.next().Type)

	bob.send(core.EventJoin, joinPayload{Username: "bob", Room: "r1"})
	assert.Equal(t, core.EventHistory, bob.next().Type)
	var users []string
	require.NoError(t, json.Unmarshal(bob.next().Data, &users))
	assert.Equal(t, []string{"alice", "bob"}, users)

	alice.send(core.EventMessage, messagePayload{Room: "r1", Text: "hi <b>bob</b>"})
	env := bob.expect(core.EventMessage)
	var msg core.MessageView
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Equal(t, "alice", msg.User)
	assert.Equal(t, "hi bob", msg.Text)

	bob.send(core.EventTyping, typingPayload{Room: "r1", IsTyping: true})
	env = alice.expect(core.EventUserTyping)
	var typing core.TypingView
	require.NoError(t, json.Unmarshal(env.Data, &typing))
	assert.Equal(t, core.TypingView{Username: "bob", IsTyping: true}, typing)

	bob.send(core.EventLeave, nil)
	assert.Equal(t, core.EventLeft, bob.expect(core.EventLeft).Type)

	env = alice.expect(core.EventUserList)
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Equal(t, []string{"alice"}, users)
}

func TestSignal_UsernameTaken(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.dial(t)
	carol := h.dial(t)

	alice.send(core.EventJoin, joinPayload{Username: "alice", Room: "r1"})
	alice.expect(core.EventUserList)

	carol.send(core.EventJoin, joinPayload{Username: "alice", Room: "r2"})
	env := carol.next()
	assert.Equal(t, core.EventError, env.Type)
	var e core.ErrorView
	require.NoError(t, json.Unmarshal(env.Data, &e))
	assert.Contains(t, e.Message, "taken")
	assert.Empty(t, h.coord.Rooms.Members("r2"))
}

func TestSignal_PingAndWhoAmI(t *testing.T) {
	h := newHarness(t, nil)
	c := h.dial(t)

	c.send(core.EventPing, nil)
	assert.Equal(t, core.EventPong, c.next().Type)

	c.send(core.EventJoin, joinPayload{Username: "dave", Room: "lobby"})
	c.expect(core.EventUserList)

	c.send(core.EventWhoAmI, nil)
	env := c.expect(core.EventWhoAmI)
	var who whoAmIView
	require.NoError(t, json.Unmarshal(env.Data, &who))
	assert.Equal(t, whoAmIView{Username: "dave", Room: "lobby"}, who)
}

func TestSignal_RateLimited(t *testing.T) {
	h := newHarness(t, ratelimit.NewMemoryLimiter(ratelimit.Config{Limit: 1, Interval: time.Minute}))
	c := h.dial(t)

	c.send(core.EventJoin, joinPayload{Username: "eve", Room: "r1"})
	c.expect(core.EventUserList)

	c.send(core.EventMessage, messagePayload{Text: "one"})
	assert.Equal(t, core.EventMessage, c.next().Type)

	c.send(core.EventMessage, messagePayload{Text: "two"})
	env := c.next()
	assert.Equal(t, core.EventError, env.Type)
}

func TestSignal_CloseDisconnects(t *testing.T) {
	h := newHarness(t, nil)
	alice := h.dial(t)
	bob := h.dial(t)

	alice.send(core.EventJoin, joinPayload{Username: "alice", Room: "r1"})
	alice.expect(core.EventUserList)
	bob.send(core.EventJoin, joinPayload{Username: "bob", Room: "r1"})
	bob.expect(core.EventUserList)
	alice.expect(core.EventMessage)

	require.NoError(t, bob.ws.Close())

	env := alice.expect(core.EventMessage)
	var notice core.MessageView
	require.NoError(t, json.Unmarshal(env.Data, &notice))
	assert.Equal(t, "System", notice.User)
	assert.Contains(t, notice.Text, "bob left")

	assert.Eventually(t, func() bool {
		return !h.coord.Registry.IsActive("bob")
	}, time.Second, 10*time.Millisecond)
}
