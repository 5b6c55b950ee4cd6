package live

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/recera/flowcanvas/pkg/flow"
	"github.com/recera/flowcanvas/pkg/view"
)

// PathPrefix is where the live endpoint is mounted; the session ID follows it
const PathPrefix = "/flow/live/"

const (
	writeWait    = 10 * time.Second
	pongWait     = 300 * time.Second
	pingInterval = 54 * time.Second
	sendBuffer   = 256
)

// SeedFunc returns the nodes a new session starts with
type SeedFunc func() []flow.Node

// Server handles WebSocket connections for live canvases
type Server struct {
	upgrader websocket.Upgrader
	seed     SeedFunc
	sessions map[string]*Session
	mu       sync.RWMutex
}

// Session is one browser tab: a connection plus the canvas it drives
type Session struct {
	ID         string
	server     *Server
	conn       *websocket.Conn
	registry   *flow.Registry
	controller *flow.Controller
	canvas     *view.Canvas
	sendChan   chan []byte
	closeChan  chan struct{}
	closeOnce  sync.Once
}

// NewServer creates a new live protocol server
func NewServer(seed SeedFunc) *Server {
	if seed == nil {
		seed = flow.DefaultSeed
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin:     sameOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		seed:     seed,
		sessions: make(map[string]*Session),
	}
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// HandleWebSocket handles WebSocket upgrade and session management
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimPrefix(r.URL.Path, PathPrefix)
	if sessionID == "" || sessionID == r.URL.Path || strings.Contains(sessionID, "/") {
		http.Error(w, "Session ID required", http.StatusBadRequest)
		return
	}

	session, err := s.newSession(sessionID)
	if err != nil {
		log.Printf("[Live Server] Failed to seed session %s: %v", sessionID, err)
		http.Error(w, "invalid canvas seed", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Live Server] Failed to upgrade connection: %v", err)
		return
	}
	session.conn = conn

	s.register(session)
	go session.handleConnection()
}

func (s *Server) newSession(id string) (*Session, error) {
	reg, err := flow.NewRegistry(s.seed()...)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:         id,
		server:     s,
		registry:   reg,
		controller: flow.NewController(reg),
		canvas:     view.NewCanvas(view.DefaultTheme()),
		sendChan:   make(chan []byte, sendBuffer),
		closeChan:  make(chan struct{}),
	}
	session.controller.Subscribe(session.onChange)
	return session, nil
}

// register stores the session, closing any previous connection that used
// the same ID
func (s *Server) register(session *Session) {
	s.mu.Lock()
	prev, exists := s.sessions[session.ID]
	s.sessions[session.ID] = session
	s.mu.Unlock()

	if exists {
		log.Printf("[Live Server] Session %s reconnected, closing previous connection", session.ID)
		prev.close()
	}
}

// GetSession retrieves a session by ID
func (s *Server) GetSession(sessionID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

// SessionCount returns the number of connected sessions
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// removeSession removes a session if it is still the registered one
func (s *Server) removeSession(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.sessions[session.ID]; ok && current == session {
		delete(s.sessions, session.ID)
	}
}

// Broadcast sends a control frame to every connected session
func (s *Server) Broadcast(name string) {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.RUnlock()

	for _, session := range sessions {
		session.send(EncodeControl(name))
	}
	log.Printf("[Live Server] Broadcast %s to %d sessions", name, len(sessions))
}

// Close disconnects every session
func (s *Server) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, session := range sessions {
		session.close()
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.closeChan)
		if s.conn != nil {
			s.conn.Close()
		}
	})
}

// handleConnection runs the session. All events are processed here, one at
// a time and in arrival order, so the canvas needs no locking.
func (s *Session) handleConnection() {
	defer func() {
		// A lost connection mid-drag must not leave the node stuck
		s.controller.Cancel()
		s.close()
		s.server.removeSession(s)
		log.Printf("[Live Session %s] Closed", s.ID)
	}()

	go s.writer()

	s.send(EncodeControl(ControlHello))
	s.sendNodes(s.snapshot()...)
	log.Printf("[Live Session %s] Sent server HELLO", s.ID)

	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Live Session %s] Unexpected close: %v", s.ID, err)
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			s.handleBinaryMessage(data)
		default:
			log.Printf("[Live Session %s] Ignoring message type %d", s.ID, messageType)
		}
	}
}

// writer handles writing messages to the WebSocket
func (s *Session) writer() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case message := <-s.sendChan:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				log.Printf("[Live Session %s] Failed to write message: %v", s.ID, err)
				s.close()
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}

		case <-s.closeChan:
			return
		}
	}
}

// send queues a frame without blocking the event loop
func (s *Session) send(frame []byte) {
	select {
	case <-s.closeChan:
	case s.sendChan <- frame:
	default:
		log.Printf("[Live Session %s] Send buffer full, dropping frame", s.ID)
	}
}

// handleBinaryMessage processes binary protocol messages
func (s *Session) handleBinaryMessage(data []byte) {
	if len(data) == 0 {
		return
	}

	switch MessageType(data[0]) {
	case FrameEvent:
		event, err := DecodeEvent(data)
		if err != nil {
			log.Printf("[Live Session %s] Failed to decode event: %v", s.ID, err)
			return
		}
		s.handleEvent(event)

	case FrameControl:
		name, _, err := DecodeControl(data)
		if err != nil {
			log.Printf("[Live Session %s] Failed to decode control message: %v", s.ID, err)
			return
		}

		switch name {
		case ControlHello:
			log.Printf("[Live Session %s] Client hello", s.ID)

		case ControlPing:
			s.send(EncodeControl(ControlPong))
		}

	default:
		log.Printf("[Live Session %s] Unknown frame type 0x%02x", s.ID, data[0])
	}
}

// handleEvent applies one pointer event to the canvas
func (s *Session) handleEvent(event *Event) {
	switch event.Type {
	case EventPointerDown:
		id := int(event.NodeID)
		if _, err := s.registry.Get(id); err != nil {
			log.Printf("[Live Session %s] Ignoring %s: %v", s.ID, event.Type, err)
			return
		}
		// Grab commits a drag whose pointer-up was lost; its cursor goes
		// back to grab with it
		if active, ok := s.controller.Active(); ok {
			s.canvas.View(active).Release()
		}
		s.canvas.View(id).Press()
		if err := s.controller.Grab(id, event.X, event.Y); err != nil {
			log.Printf("[Live Session %s] Grab failed: %v", s.ID, err)
		}

	case EventPointerMove:
		s.controller.Move(event.X, event.Y)

	case EventPointerUp:
		if id, ok := s.controller.Active(); ok {
			s.canvas.View(id).Release()
		}
		s.controller.Release()

	case EventPointerOver:
		id := int(event.NodeID)
		if _, err := s.registry.Get(id); err != nil {
			return
		}
		s.canvas.View(id).Hover()
		s.sendNodes(s.nodeState(s.registry.MustGet(id)))

	case EventPointerCancel:
		if id, ok := s.controller.Active(); ok {
			s.canvas.View(id).Release()
		}
		s.controller.Cancel()
	}
}

// onChange pushes the changed node to the client after every controller
// mutation
func (s *Session) onChange(ch flow.Change) {
	s.sendNodes(s.nodeState(s.registry.MustGet(ch.NodeID)))
}

func (s *Session) sendNodes(nodes ...NodeState) {
	if len(nodes) == 0 {
		return
	}
	s.send(EncodeNodes(nodes))
}

func (s *Session) nodeState(n *flow.Node) NodeState {
	pos := n.Displayed()
	return NodeState{
		ID:     uint32(n.ID),
		X:      pos.X,
		Y:      pos.Y,
		Cursor: string(s.canvas.View(n.ID).Cursor()),
	}
}

func (s *Session) snapshot() []NodeState {
	nodes := s.registry.List()
	out := make([]NodeState, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, s.nodeState(n))
	}
	return out
}
