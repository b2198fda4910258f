package engine

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shapeboard/shapeboard/internal/board"
)

// Default canvas size, matching the web page's canvas element.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Engine owns a board and the creation settings fed by the UI controls.
// It processes commands from the frontend and returns query results.
type Engine struct {
	board *board.Board

	width  int
	height int
}

// Snapshot is the serializable form of a board.
type Snapshot struct {
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Circles  []board.Circle `json:"circles"`
	Selected *int           `json:"selected"`
}

// Settings are the creation settings applied to new circles.
type Settings struct {
	Color  string `json:"color"`
	Radius string `json:"radius"`
}

// NewEngine creates a new engine instance with an empty board.
func NewEngine(opts ...board.Option) *Engine {
	return &Engine{
		board:  board.New(opts...),
		width:  DefaultWidth,
		height: DefaultHeight,
	}
}

// Board exposes the underlying board.
func (e *Engine) Board() *board.Board {
	return e.board
}

// --- Commands (frontend → engine) ---

// SetColor sets the color for circles created from now on.
func (e *Engine) SetColor(color string) {
	e.board.SetColor(color)
}

// SetRadiusInput sets the raw radius input for circles created from now on.
func (e *Engine) SetRadiusInput(s string) {
	e.board.SetRadiusInput(s)
}

// SetRadius is SetRadiusInput for numeric callers.
func (e *Engine) SetRadius(r int) {
	e.board.SetRadiusInput(strconv.Itoa(r))
}

// SetSize records the drawing surface size, used for snapshots.
func (e *Engine) SetSize(width, height int) {
	if width > 0 {
		e.width = width
	}
	if height > 0 {
		e.height = height
	}
}

// Dispatch applies an input event to the board.
func (e *Engine) Dispatch(ev board.Event) (board.Effect, error) {
	return e.board.Dispatch(ev)
}

// DispatchJSON decodes an event from JSON and applies it.
func (e *Engine) DispatchJSON(jsonData string) (board.Effect, error) {
	var ev board.Event
	if err := json.Unmarshal([]byte(jsonData), &ev); err != nil {
		return board.Effect{}, fmt.Errorf("decode event: %w", err)
	}
	return e.Dispatch(ev)
}

func (e *Engine) dispatch(ev board.Event) board.Effect {
	// Every kind used below is known to the board.
	eff, _ := e.board.Dispatch(ev)
	return eff
}

// Click selects the circle under (x, y) or creates one there.
func (e *Engine) Click(x, y float64) board.Effect {
	return e.dispatch(board.Event{Kind: board.EventClick, X: x, Y: y})
}

// PointerDown starts a mouse drag when pressing on the selected circle.
func (e *Engine) PointerDown(x, y float64) board.Effect {
	return e.dispatch(board.Event{Kind: board.EventPointerDown, X: x, Y: y})
}

// PointerMove drags the selected circle keeping the grab offset.
func (e *Engine) PointerMove(x, y float64) board.Effect {
	return e.dispatch(board.Event{Kind: board.EventPointerMove, X: x, Y: y})
}

// PointerUp ends a mouse drag.
func (e *Engine) PointerUp() board.Effect {
	return e.dispatch(board.Event{Kind: board.EventPointerUp})
}

// TouchStart selects or creates a circle under the finger and grabs it.
func (e *Engine) TouchStart(x, y float64) board.Effect {
	return e.dispatch(board.Event{Kind: board.EventTouchStart, X: x, Y: y})
}

// TouchMove moves the grabbed circle's center to the finger.
func (e *Engine) TouchMove(x, y float64) board.Effect {
	return e.dispatch(board.Event{Kind: board.EventTouchMove, X: x, Y: y})
}

// TouchEnd ends a touch drag.
func (e *Engine) TouchEnd() board.Effect {
	return e.dispatch(board.Event{Kind: board.EventTouchEnd})
}

// Wheel resizes the selected circle.
func (e *Engine) Wheel(deltaY float64) board.Effect {
	return e.dispatch(board.Event{Kind: board.EventWheel, DeltaY: deltaY})
}

// KeyDown handles a key press; only the Delete key does anything.
func (e *Engine) KeyDown(key string) board.Effect {
	return e.dispatch(board.Event{Kind: board.EventKeyDown, Key: key})
}

// Clear removes all circles.
func (e *Engine) Clear() board.Effect {
	return e.dispatch(board.Event{Kind: board.EventClear})
}

// LoadSnapshot replaces the board with the snapshot contents.
// Nothing changes when the snapshot holds an invalid circle.
func (e *Engine) LoadSnapshot(s Snapshot) error {
	selected := board.NoSelection
	if s.Selected != nil {
		selected = *s.Selected
	}
	if err := e.board.Load(s.Circles, selected); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	e.SetSize(s.Width, s.Height)
	return nil
}

// LoadSnapshotJSON decodes and loads a snapshot.
func (e *Engine) LoadSnapshotJSON(jsonData string) error {
	var s Snapshot
	if err := json.Unmarshal([]byte(jsonData), &s); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return e.LoadSnapshot(s)
}

// --- Queries (frontend ← engine) ---

// Commands returns the draw commands for a full repaint.
func (e *Engine) Commands() []DrawCommand {
	return CompileDrawCommands(e.board)
}

// Render returns the draw commands for a full repaint as JSON.
func (e *Engine) Render() string {
	result, _ := DrawCommandsToJSON(e.Commands())
	return result
}

// HitTest returns the ID of the topmost circle at (x, y), or empty string.
func (e *Engine) HitTest(x, y float64) string {
	i := e.board.HitTest(x, y)
	if i == -1 {
		return ""
	}
	return e.board.Circles()[i].ID
}

// Info returns the readout of the selected circle.
func (e *Engine) Info() board.Info {
	return e.board.Info()
}

// GetInfo returns the readout of the selected circle as JSON.
func (e *Engine) GetInfo() string {
	data, _ := json.Marshal(e.board.Info())
	return string(data)
}

// GetSelection returns the selected circle ID as JSON, or null.
func (e *Engine) GetSelection() string {
	c, ok := e.board.Selected()
	if !ok {
		return "null"
	}
	data, _ := json.Marshal(c.ID)
	return string(data)
}

// GetSelectionBounds returns the bounding box of the selection as JSON.
func (e *Engine) GetSelectionBounds() string {
	return RectToJSON(e.board.SelectionBounds())
}

// Settings returns the current creation settings.
func (e *Engine) Settings() Settings {
	return Settings{Color: e.board.Color(), Radius: e.board.RadiusInput()}
}

// GetSettings returns the current creation settings as JSON.
func (e *Engine) GetSettings() string {
	data, _ := json.Marshal(e.Settings())
	return string(data)
}

// GetState returns the interaction state.
func (e *Engine) GetState() board.State {
	return e.board.State()
}

// Snapshot returns the current board contents.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Width:   e.width,
		Height:  e.height,
		Circles: e.board.Circles(),
	}
	if i := e.board.SelectedIndex(); i != board.NoSelection {
		s.Selected = &i
	}
	return s
}

// GetCircles returns the board contents as JSON.
func (e *Engine) GetCircles() string {
	data, _ := json.Marshal(e.Snapshot())
	return string(data)
}
