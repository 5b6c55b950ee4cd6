package live

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/recera/flowcanvas/pkg/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, srv *httptest.Server, session string) *testClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + PathPrefix + session
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testClient{t: t, conn: conn}
}

func (c *testClient) send(frame []byte) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteMessage(websocket.BinaryMessage, frame))
}

func (c *testClient) read() []byte {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.conn.ReadMessage()
	require.NoError(c.t, err)
	return data
}

func (c *testClient) readNodes() []NodeState {
	c.t.Helper()
	nodes, err := DecodeNodes(c.read())
	require.NoError(c.t, err)
	return nodes
}

func (c *testClient) readControl() string {
	c.t.Helper()
	name, _, err := DecodeControl(c.read())
	require.NoError(c.t, err)
	return name
}

func newTestServer(t *testing.T, seed SeedFunc) (*Server, *httptest.Server) {
	t.Helper()
	live := NewServer(seed)
	mux := http.NewServeMux()
	mux.HandleFunc(PathPrefix, live.HandleWebSocket)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		live.Close()
		srv.Close()
	})
	return live, srv
}

func TestSession_DragScenario(t *testing.T) {
	_, srv := newTestServer(t, nil)
	c := dial(t, srv, "scenario")

	assert.Equal(t, EncodeControl(ControlHello), c.read())
	assert.Equal(t, []NodeState{{ID: 0, X: 0, Y: 0, Cursor: "default"}}, c.readNodes())

	c.send(EncodeEvent(Event{Type: EventPointerDown, NodeID: 0, X: 100, Y: 100}))
	assert.Equal(t, []NodeState{{ID: 0, X: 0, Y: 0, Cursor: "grabbing"}}, c.readNodes())

	c.send(EncodeEvent(Event{Type: EventPointerMove, X: 150, Y: 80}))
	assert.Equal(t, []NodeState{{ID: 0, X: 50, Y: -20, Cursor: "grabbing"}}, c.readNodes())

	c.send(EncodeEvent(Event{Type: EventPointerUp, X: 150, Y: 80}))
	assert.Equal(t, []NodeState{{ID: 0, X: 50, Y: -20, Cursor: "grab"}}, c.readNodes())

	// Idle move produces no frame: the next thing back is the PONG
	c.send(EncodeEvent(Event{Type: EventPointerMove, X: 200, Y: 200}))
	c.send(EncodeControl(ControlPing))
	assert.Equal(t, ControlPong, c.readControl())
}

func TestSession_HoverAndCancel(t *testing.T) {
	_, srv := newTestServer(t, func() []flow.Node {
		return []flow.Node{flow.NewNode(4, "a", 10, 10), flow.NewNode(5, "b", 90, 90)}
	})
	c := dial(t, srv, "hover")

	c.readControl()
	assert.Len(t, c.readNodes(), 2)

	c.send(EncodeEvent(Event{Type: EventPointerOver, NodeID: 5}))
	assert.Equal(t, []NodeState{{ID: 5, X: 90, Y: 90, Cursor: "grab"}}, c.readNodes())

	c.send(EncodeEvent(Event{Type: EventPointerDown, NodeID: 5, X: 0, Y: 0}))
	c.readNodes()
	c.send(EncodeEvent(Event{Type: EventPointerMove, X: -5, Y: 3}))
	c.readNodes()

	c.send(EncodeEvent(Event{Type: EventPointerCancel}))
	assert.Equal(t, []NodeState{{ID: 5, X: 85, Y: 93, Cursor: "grab"}}, c.readNodes())
}

func TestSession_GrabWhileDraggingReleasesPreviousCursor(t *testing.T) {
	_, srv := newTestServer(t, func() []flow.Node {
		return []flow.Node{flow.NewNode(0, "a", 0, 0), flow.NewNode(1, "b", 100, 0)}
	})
	c := dial(t, srv, "regrab")
	c.readControl()
	c.readNodes()

	c.send(EncodeEvent(Event{Type: EventPointerDown, NodeID: 0, X: 0, Y: 0}))
	c.readNodes()
	c.send(EncodeEvent(Event{Type: EventPointerMove, X: 10, Y: 10}))
	c.readNodes()

	// pointer-up for node 0 never arrived
	c.send(EncodeEvent(Event{Type: EventPointerDown, NodeID: 1, X: 100, Y: 0}))
	assert.Equal(t, []NodeState{{ID: 0, X: 10, Y: 10, Cursor: "grab"}}, c.readNodes())
	assert.Equal(t, []NodeState{{ID: 1, X: 100, Y: 0, Cursor: "grabbing"}}, c.readNodes())
}

func TestSession_IgnoresBadInput(t *testing.T) {
	_, srv := newTestServer(t, nil)
	c := dial(t, srv, "bad")
	c.readControl()
	c.readNodes()

	c.send(EncodeEvent(Event{Type: EventPointerDown, NodeID: 99, X: 1, Y: 1}))
	c.send([]byte{byte(FrameEvent), 0x7f})
	c.send([]byte{0x55})
	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("hi")))

	c.send(EncodeControl(ControlPing))
	assert.Equal(t, ControlPong, c.readControl())
}

func TestServer_BroadcastAndSessions(t *testing.T) {
	live, srv := newTestServer(t, nil)
	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	for _, c := range []*testClient{a, b} {
		c.readControl()
		c.readNodes()
	}

	require.Eventually(t, func() bool { return live.SessionCount() == 2 }, time.Second, 10*time.Millisecond)
	_, ok := live.GetSession("a")
	assert.True(t, ok)

	live.Broadcast(ControlReload)
	assert.Equal(t, ControlReload, a.readControl())
	assert.Equal(t, ControlReload, b.readControl())

	a.conn.Close()
	require.Eventually(t, func() bool { return live.SessionCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestServer_RequiresSessionID(t *testing.T) {
	_, srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + PathPrefix)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_RejectsBadSeed(t *testing.T) {
	_, srv := newTestServer(t, func() []flow.Node {
		return []flow.Node{flow.NewNode(1, "", 0, 0), flow.NewNode(1, "", 0, 0)}
	})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + PathPrefix + "dup"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
