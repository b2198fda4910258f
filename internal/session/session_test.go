package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapeboard/shapeboard/internal/board"
	"github.com/shapeboard/shapeboard/internal/engine"
)

func startServer(t *testing.T, defaults Defaults) (*Manager, *httptest.Server) {
	t.Helper()

	var n atomic.Int64
	m := NewManager(defaults, nil, board.WithIDGenerator(func() string {
		return fmt.Sprintf("circle_%d", n.Add(1))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(m.ServeWS))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return m, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func readFrame(t *testing.T, conn *websocket.Conn) FramePayload {
	t.Helper()
	msg := readMessage(t, conn)
	require.Equal(t, TypeFrame, msg.Type, string(msg.Payload))

	var frame FramePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &frame))
	return frame
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	data, err := json.Marshal(Message{Type: msgType, Payload: raw})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

// handshake consumes the welcome and the initial frame.
func handshake(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	msg := readMessage(t, conn)
	require.Equal(t, TypeWelcome, msg.Type)

	var welcome WelcomePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &welcome))
	assert.True(t, strings.HasPrefix(welcome.SessionID, "sess_"))

	frame := readFrame(t, conn)
	assert.Equal(t, []engine.DrawCommand{{Op: engine.OpClear}}, frame.Commands)
	assert.Equal(t, "Position: N/A", frame.Info.Position)
	return welcome.SessionID
}

func TestSessionClickDragResize(t *testing.T) {
	_, srv := startServer(t, Defaults{Color: "#00ff00", Radius: "20"})
	conn := dial(t, srv)
	handshake(t, conn)

	send(t, conn, TypeInput, board.Event{Kind: board.EventClick, X: 50, Y: 50})
	frame := readFrame(t, conn)
	assert.True(t, frame.Redraw)
	assert.Equal(t, board.StateSelected, frame.State)
	assert.Equal(t, board.Info{
		Position: "Position: (50, 50)",
		Radius:   "Radius: 20",
		Color:    "Color: #00ff00",
	}, frame.Info)
	require.Len(t, frame.Commands, 2)
	assert.Equal(t, engine.HighlightColor, frame.Commands[1].Fill)

	send(t, conn, TypeInput, board.Event{Kind: board.EventPointerDown, X: 55, Y: 55})
	frame = readFrame(t, conn)
	assert.False(t, frame.Redraw)
	assert.Empty(t, frame.Commands)
	assert.Equal(t, board.StateDragging, frame.State)

	send(t, conn, TypeInput, board.Event{Kind: board.EventPointerMove, X: 80, Y: 80})
	frame = readFrame(t, conn)
	assert.Equal(t, "Position: (75, 75)", frame.Info.Position)

	send(t, conn, TypeInput, board.Event{Kind: board.EventPointerUp})
	readFrame(t, conn)

	send(t, conn, TypeInput, board.Event{Kind: board.EventWheel, DeltaY: -1})
	frame = readFrame(t, conn)
	assert.True(t, frame.PreventDefault)
	assert.Equal(t, "Radius: 22", frame.Info.Radius)
}

func TestSessionWelcomeCarriesSettings(t *testing.T) {
	_, srv := startServer(t, Defaults{Color: "#00ff00", Radius: "30"})
	conn := dial(t, srv)

	msg := readMessage(t, conn)
	require.Equal(t, TypeWelcome, msg.Type)

	var welcome WelcomePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &welcome))
	assert.Equal(t, engine.Settings{Color: "#00ff00", Radius: "30"}, welcome.Settings)
}

func TestSessionSettings(t *testing.T) {
	_, srv := startServer(t, Defaults{})
	conn := dial(t, srv)
	handshake(t, conn)

	color, radius := "#123456", "35"
	send(t, conn, TypeSettings, SettingsPayload{Color: &color, Radius: &radius})
	send(t, conn, TypeInput, board.Event{Kind: board.EventClick, X: 10, Y: 10})

	frame := readFrame(t, conn)
	assert.Equal(t, "Radius: 35", frame.Info.Radius)
	assert.Equal(t, "Color: #123456", frame.Info.Color)
}

func TestSessionLoadSnapshot(t *testing.T) {
	_, srv := startServer(t, Defaults{})
	conn := dial(t, srv)
	handshake(t, conn)

	selected := 0
	send(t, conn, TypeLoad, engine.Snapshot{
		Circles:  []board.Circle{{ID: "circle_x", X: 5, Y: 6, Radius: 7, Color: "blue"}},
		Selected: &selected,
	})

	frame := readFrame(t, conn)
	require.Len(t, frame.Commands, 2)
	assert.Equal(t, "circle_x", frame.Commands[1].ObjectID)
	assert.Equal(t, "Color: blue", frame.Info.Color)
}

func TestSessionLoadRejectsBadRadius(t *testing.T) {
	_, srv := startServer(t, Defaults{})
	conn := dial(t, srv)
	handshake(t, conn)

	send(t, conn, TypeInput, board.Event{Kind: board.EventClick, X: 10, Y: 10})
	readFrame(t, conn)

	selected := 0
	send(t, conn, TypeLoad, engine.Snapshot{
		Circles:  []board.Circle{{ID: "a", X: 50, Y: 50, Radius: -6}},
		Selected: &selected,
	})
	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, string(msg.Payload), "radius must be positive")

	// The board from before the load is still in place.
	send(t, conn, TypeInput, board.Event{Kind: board.EventWheel, DeltaY: -1})
	frame := readFrame(t, conn)
	require.Len(t, frame.Commands, 2)
	assert.Equal(t, "circle_1", frame.Commands[1].ObjectID)
	assert.Equal(t, 22.0, frame.Commands[1].Radius)
}

func TestSessionErrors(t *testing.T) {
	_, srv := startServer(t, Defaults{})
	conn := dial(t, srv)
	handshake(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("not json")))
	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)

	send(t, conn, "teleport", map[string]int{})
	msg = readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, string(msg.Payload), "unknown message type")

	send(t, conn, TypeInput, board.Event{Kind: "hover"})
	msg = readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, string(msg.Payload), "unknown event kind")

	// The session survives errors.
	send(t, conn, TypeInput, board.Event{Kind: board.EventClear})
	frame := readFrame(t, conn)
	assert.Equal(t, board.StateIdle, frame.State)
}

func TestSessionsAreIsolated(t *testing.T) {
	m, srv := startServer(t, Defaults{})
	a := dial(t, srv)
	b := dial(t, srv)
	idA := handshake(t, a)
	idB := handshake(t, b)
	assert.NotEqual(t, idA, idB)

	require.Eventually(t, func() bool { return m.Count() == 2 }, 5*time.Second, 10*time.Millisecond)

	send(t, a, TypeInput, board.Event{Kind: board.EventClick, X: 50, Y: 50})
	frame := readFrame(t, a)
	assert.Len(t, frame.Commands, 2)

	send(t, b, TypeInput, board.Event{Kind: board.EventKeyDown, Key: board.DeleteKey})
	frame = readFrame(t, b)
	assert.Equal(t, board.StateIdle, frame.State, "b never saw a's circle")
	assert.False(t, frame.Redraw)
}

func TestSessionUnregistersOnClose(t *testing.T) {
	m, srv := startServer(t, Defaults{})
	conn := dial(t, srv)
	handshake(t, conn)
	require.Eventually(t, func() bool { return m.Count() == 1 }, 5*time.Second, 10*time.Millisecond)

	conn.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return m.Count() == 0 }, 5*time.Second, 10*time.Millisecond)
}
