package board

import "fmt"

// State is the interaction state of a board.
type State string

const (
	StateIdle     State = "idle"
	StateSelected State = "selected"
	StateDragging State = "dragging"
)

// EventKind names one discrete kind of input.
type EventKind string

const (
	EventClick       EventKind = "click"
	EventPointerDown EventKind = "pointerdown"
	EventPointerMove EventKind = "pointermove"
	EventPointerUp   EventKind = "pointerup"
	EventTouchStart  EventKind = "touchstart"
	EventTouchMove   EventKind = "touchmove"
	EventTouchEnd    EventKind = "touchend"
	EventWheel       EventKind = "wheel"
	EventKeyDown     EventKind = "keydown"
	EventClear       EventKind = "clear"
)

// DeleteKey is the key name that removes the selected circle.
const DeleteKey = "Delete"

// Event is one normalized input. Coordinates are relative to the canvas.
type Event struct {
	Kind   EventKind `json:"kind"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
	DeltaY float64   `json:"deltaY,omitempty"`
	Key    string    `json:"key,omitempty"`
}

func (e Event) point() Point {
	return Point{X: e.X, Y: e.Y}
}

// Effect is the render instruction produced by Dispatch.
type Effect struct {
	// Redraw means the surface and the info readout must be refreshed.
	Redraw bool `json:"redraw"`
	// PreventDefault means the host must suppress the browser default (page scroll, synthetic mouse events).
	PreventDefault bool  `json:"preventDefault"`
	State          State `json:"state"`
}

// UnknownEventError is returned by Dispatch for an unrecognized event kind.
type UnknownEventError struct {
	Kind EventKind
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event kind: %q", e.Kind)
}

// Dispatch applies one input event to the board and reports what the host
// has to do next.
func (b *Board) Dispatch(ev Event) (Effect, error) {
	var eff Effect

	switch ev.Kind {
	case EventClick:
		b.SelectOrCreate(ev.point())
		eff.Redraw = true

	case EventPointerDown:
		b.BeginDrag(ev.point())

	case EventPointerMove:
		eff.Redraw = b.DragMouse(ev.point())

	case EventPointerUp:
		b.EndDrag()

	case EventTouchStart:
		// A tap both selects and grabs, there is no separate press on touch.
		b.SelectOrCreate(ev.point())
		b.BeginDrag(ev.point())
		eff.Redraw = true
		eff.PreventDefault = true

	case EventTouchMove:
		eff.Redraw = b.DragTouch(ev.point())
		eff.PreventDefault = true

	case EventTouchEnd:
		b.EndDrag()
		eff.PreventDefault = true

	case EventWheel:
		resized := b.Resize(ev.DeltaY)
		eff.Redraw = resized
		eff.PreventDefault = resized

	case EventKeyDown:
		if ev.Key == DeleteKey {
			eff.Redraw = b.DeleteSelected()
		}

	case EventClear:
		b.Clear()
		eff.Redraw = true

	default:
		return Effect{State: b.State()}, &UnknownEventError{Kind: ev.Kind}
	}

	eff.State = b.State()
	return eff, nil
}
