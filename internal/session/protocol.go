package session

import (
	"encoding/json"

	"github.com/shapeboard/shapeboard/internal/board"
	"github.com/shapeboard/shapeboard/internal/engine"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client → server
	TypeInput    = "input"
	TypeSettings = "settings"
	TypeLoad     = "load"

	// Server → client
	TypeWelcome = "welcome"
	TypeFrame   = "frame"
	TypeError   = "error"
)

// SettingsPayload updates the creation settings. Missing fields are left alone.
type SettingsPayload struct {
	Color  *string `json:"color,omitempty"`
	Radius *string `json:"radius,omitempty"`
}

type WelcomePayload struct {
	SessionID string          `json:"sessionId"`
	Settings  engine.Settings `json:"settings"`
}

// FramePayload carries the result of one input. Commands are only present
// when the board has to be repainted.
type FramePayload struct {
	Redraw         bool                 `json:"redraw"`
	PreventDefault bool                 `json:"preventDefault"`
	State          board.State          `json:"state"`
	Commands       []engine.DrawCommand `json:"commands,omitempty"`
	Info           board.Info           `json:"info"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
