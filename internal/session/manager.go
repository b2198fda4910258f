package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"github.com/shapeboard/shapeboard/internal/board"
	"github.com/shapeboard/shapeboard/internal/engine"
	"github.com/shapeboard/shapeboard/internal/typeid"
)

// Defaults seeds the creation settings of every new session's board.
type Defaults struct {
	Color  string
	Radius string
}

// Manager tracks live sessions. Sessions never share a board.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	register   chan *Session
	unregister chan *Session
	done       chan struct{}

	defaults       Defaults
	originPatterns []string
	boardOpts      []board.Option
}

func NewManager(defaults Defaults, originPatterns []string, opts ...board.Option) *Manager {
	return &Manager{
		sessions:       make(map[string]*Session),
		register:       make(chan *Session),
		unregister:     make(chan *Session),
		done:           make(chan struct{}),
		defaults:       defaults,
		originPatterns: originPatterns,
		boardOpts:      opts,
	}
}

// Run processes registrations until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case s := <-m.register:
			m.addSession(s)
		case s := <-m.unregister:
			m.removeSession(s)
		case <-ctx.Done():
			m.closeAll()
			return
		}
	}
}

func (m *Manager) Register(s *Session) {
	select {
	case m.register <- s:
	case <-m.done:
	}
}

func (m *Manager) Unregister(s *Session) {
	select {
	case m.unregister <- s:
	case <-m.done:
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) addSession(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	slog.Info("session opened", "session", s.ID, "sessions", count)
}

func (m *Manager) removeSession(s *Session) {
	m.mu.Lock()
	if _, ok := m.sessions[s.ID]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, s.ID)
	close(s.send)
	count := len(m.sessions)
	m.mu.Unlock()

	slog.Info("session closed", "session", s.ID, "sessions", count)
}

// closeAll asks every client to go away. Read pumps notice the close and
// exit on their own; send channels stay open since they may still be writing.
func (m *Manager) closeAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		go s.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
	slog.Info("sessions closed", "count", len(sessions))
}

func (m *Manager) newEngine() *engine.Engine {
	eng := engine.NewEngine(m.boardOpts...)
	if m.defaults.Color != "" {
		eng.SetColor(m.defaults.Color)
	}
	if m.defaults.Radius != "" {
		eng.SetRadiusInput(m.defaults.Radius)
	}
	return eng
}

// ServeWS upgrades the request and drives a fresh board over the connection.
func (m *Manager) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: m.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	s := newSession(m, conn, typeid.NewSessionID(), m.newEngine())
	m.Register(s)

	s.Send(TypeWelcome, WelcomePayload{SessionID: s.ID, Settings: s.engine.Settings()})
	s.sendFrame(board.Effect{Redraw: true, State: s.engine.GetState()})

	ctx := r.Context()
	go s.WritePump(ctx)
	s.ReadPump(ctx)
}
