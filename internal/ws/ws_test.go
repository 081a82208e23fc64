package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ringtoss/backend/internal/game"
)

type fakeSession struct {
	mu       sync.Mutex
	controls []game.Control
}

func (f *fakeSession) Apply(c game.Control) error {
	if c.Type == "bogus" {
		return game.ErrUnknownCommand
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controls = append(f.controls, c)
	return nil
}

func (f *fakeSession) Snapshot() *game.Snapshot {
	return &game.Snapshot{SessionID: "s1", Total: 5}
}

func (f *fakeSession) applied() []game.Control {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]game.Control(nil), f.controls...)
}

type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func startHub(t *testing.T) (*Hub, *fakeSession, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	sess := &fakeSession{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, "s1", sess)
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		srv.Close()
		cancel()
	})
	return hub, sess, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServeSendsInitialState(t *testing.T) {
	_, _, conn := startHub(t)
	msg := readMessage(t, conn)
	assert.Equal(t, "state", msg.Type)

	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	assert.Equal(t, "s1", snap.SessionID)
	assert.Equal(t, 5, snap.Total)
}

func TestControlMessagesReachSession(t *testing.T) {
	_, sess, conn := startHub(t)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": MsgControl,
		"data": game.Control{Type: game.ControlForce, Direction: "up", Strength: 5},
	}))
	assert.Eventually(t, func() bool { return len(sess.applied()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "up", sess.applied()[0].Direction)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": MsgControl,
		"data": game.Control{Type: "bogus"},
	}))
	msg := readMessage(t, conn)
	assert.Equal(t, "error", msg.Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "dance"}))
	assert.Equal(t, "error", readMessage(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": MsgPing}))
	assert.Equal(t, "pong", readMessage(t, conn).Type)
}

func TestBroadcastAndRelay(t *testing.T) {
	hub, _, conn := startHub(t)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.RoomSize("s1") == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.BroadcastToSession("s1", []byte(`{"type":"state","data":{}}`))
	assert.Equal(t, "state", readMessage(t, conn).Type)

	hub.BroadcastToSession("other", []byte(`{"type":"state","data":{}}`))

	sub := NewSubscriber(nil, hub, zap.NewNop())
	payload, err := json.Marshal(game.Event{Type: game.EventRoundWon, SessionID: "s1", Score: 5, Total: 5})
	require.NoError(t, err)
	sub.Relay(payload)
	sub.Relay([]byte("not json"))

	msg := readMessage(t, conn)
	assert.Equal(t, "event", msg.Type)
	var ev game.Event
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, game.EventRoundWon, ev.Type)
	assert.Equal(t, 5, ev.Score)
}

func TestRoomEmptiesOnDisconnect(t *testing.T) {
	hub, _, conn := startHub(t)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.RoomSize("s1") == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.RoomSize("s1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubStopClosesClientsPromptly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(zap.NewNop())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = hub.Run(ctx)
	}()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, "s1", &fakeSession{})
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.RoomSize("s1") == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-stopped
	assert.Zero(t, hub.RoomSize("s1"))

	// Well inside the ping period: the close frame arrives as soon as the
	// send channel is closed.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseNormalClosure),
		"expected a close frame, got %v", err)
}
