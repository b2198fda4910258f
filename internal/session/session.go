package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"github.com/shapeboard/shapeboard/internal/board"
	"github.com/shapeboard/shapeboard/internal/engine"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
)

// Session is one websocket connection with its own private board.
// The engine is only touched from ReadPump.
type Session struct {
	manager *Manager
	conn    *websocket.Conn
	send    chan []byte
	engine  *engine.Engine
	ID      string
}

func newSession(m *Manager, conn *websocket.Conn, id string, eng *engine.Engine) *Session {
	return &Session{
		manager: m,
		conn:    conn,
		send:    make(chan []byte, 256),
		engine:  eng,
		ID:      id,
	}
}

func (s *Session) ReadPump(ctx context.Context) {
	defer func() {
		s.manager.Unregister(s)
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	s.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "session", s.ID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "session", s.ID)
			s.sendError("invalid message")
			continue
		}

		if err := s.handleMessage(&msg); err != nil {
			slog.Warn("message rejected", "error", err, "type", msg.Type, "session", s.ID)
			s.sendError(err.Error())
		}
	}
}

func (s *Session) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-s.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "session", s.ID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) handleMessage(msg *Message) error {
	switch msg.Type {
	case TypeInput:
		var ev board.Event
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("invalid input payload: %w", err)
		}
		eff, err := s.engine.Dispatch(ev)
		if err != nil {
			return err
		}
		s.sendFrame(eff)

	case TypeSettings:
		var settings SettingsPayload
		if err := json.Unmarshal(msg.Payload, &settings); err != nil {
			return fmt.Errorf("invalid settings payload: %w", err)
		}
		if settings.Color != nil {
			s.engine.SetColor(*settings.Color)
		}
		if settings.Radius != nil {
			s.engine.SetRadiusInput(*settings.Radius)
		}

	case TypeLoad:
		var snap engine.Snapshot
		if err := json.Unmarshal(msg.Payload, &snap); err != nil {
			return fmt.Errorf("invalid snapshot payload: %w", err)
		}
		if err := s.engine.LoadSnapshot(snap); err != nil {
			return err
		}
		s.sendFrame(board.Effect{Redraw: true, State: s.engine.GetState()})

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
	return nil
}

func (s *Session) sendFrame(eff board.Effect) {
	frame := FramePayload{
		Redraw:         eff.Redraw,
		PreventDefault: eff.PreventDefault,
		State:          eff.State,
		Info:           s.engine.Info(),
	}
	if eff.Redraw {
		frame.Commands = s.engine.Commands()
	}
	s.Send(TypeFrame, frame)
}

func (s *Session) sendError(message string) {
	s.Send(TypeError, ErrorPayload{Message: message})
}

// Send queues a message for the write pump, dropping it if the buffer is full.
func (s *Session) Send(msgType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "error", err, "type", msgType)
		return
	}
	data, err := json.Marshal(&Message{Type: msgType, SessionID: s.ID, Payload: raw})
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case s.send <- data:
	default:
		slog.Warn("session send buffer full, dropping message", "session", s.ID)
	}
}
