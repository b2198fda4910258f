package board

import (
	"errors"
	"fmt"
	"math"

	"github.com/shapeboard/shapeboard/internal/typeid"
)

// ErrInvalidRadius is returned by Load for a circle whose radius is not a positive number.
var ErrInvalidRadius = errors.New("radius must be positive")

// NoSelection is the selected index when no circle is selected.
const NoSelection = -1

// DefaultColor matches the initial value of an HTML color input.
const DefaultColor = "#000000"

// Board owns the circles and the selection/drag state.
// It is not safe for concurrent use; each board is driven by one event loop.
type Board struct {
	// Insertion order is z-order: later circles are drawn on top and hit first.
	circles []Circle

	selected int
	dragging bool
	offset   Point

	// Creation settings, read when a new circle is appended.
	color       string
	radiusInput string

	newID func() string
}

// Option configures a Board.
type Option func(*Board)

// WithIDGenerator overrides how circle IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(b *Board) {
		b.newID = fn
	}
}

// New creates an empty board with default creation settings.
func New(opts ...Option) *Board {
	b := &Board{
		selected:    NoSelection,
		color:       DefaultColor,
		radiusInput: "20",
		newID:       typeid.NewCircleID,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// --- Settings ---

// SetColor sets the color used for circles created from now on.
func (b *Board) SetColor(color string) {
	b.color = color
}

// SetRadiusInput sets the raw radius input used for circles created from now on.
func (b *Board) SetRadiusInput(s string) {
	b.radiusInput = s
}

// Color returns the configured creation color.
func (b *Board) Color() string {
	return b.color
}

// RadiusInput returns the raw configured radius input.
func (b *Board) RadiusInput() string {
	return b.radiusInput
}

// --- Queries ---

// Circles returns a copy of the circles in z-order.
func (b *Board) Circles() []Circle {
	out := make([]Circle, len(b.circles))
	copy(out, b.circles)
	return out
}

// Len returns the number of circles.
func (b *Board) Len() int {
	return len(b.circles)
}

// SelectedIndex returns the selected index or NoSelection.
func (b *Board) SelectedIndex() int {
	return b.selected
}

// Selected returns the selected circle, if any.
func (b *Board) Selected() (Circle, bool) {
	if b.selected == NoSelection {
		return Circle{}, false
	}
	return b.circles[b.selected], true
}

// Dragging reports whether a drag is in progress.
func (b *Board) Dragging() bool {
	return b.dragging
}

// State returns the current interaction state.
func (b *Board) State() State {
	switch {
	case b.selected == NoSelection:
		return StateIdle
	case b.dragging:
		return StateDragging
	default:
		return StateSelected
	}
}

// HitTest returns the index of the topmost circle containing (x, y), or -1.
func (b *Board) HitTest(x, y float64) int {
	for i := len(b.circles) - 1; i >= 0; i-- {
		if b.circles[i].Contains(x, y) {
			return i
		}
	}
	return -1
}

// SelectionBounds returns the bounding box of the selected circle, or an empty rect.
func (b *Board) SelectionBounds() Rect {
	c, ok := b.Selected()
	if !ok {
		return Rect{}
	}
	return c.Bounds()
}

// --- Mutations ---

// SelectOrCreate selects the topmost circle under p. When nothing is hit a
// new circle is appended at p with the configured color and radius and
// becomes the selection. It returns the selected index. Any drag in progress
// ends.
func (b *Board) SelectOrCreate(p Point) int {
	b.EndDrag()
	if i := b.HitTest(p.X, p.Y); i != -1 {
		b.selected = i
		return i
	}

	b.circles = append(b.circles, Circle{
		ID:     b.newID(),
		X:      p.X,
		Y:      p.Y,
		Radius: ParseRadius(b.radiusInput),
		Color:  b.color,
	})
	b.selected = len(b.circles) - 1
	return b.selected
}

// BeginDrag arms a drag if p is inside the selected circle and records the
// grab offset so the circle does not jump to the pointer.
func (b *Board) BeginDrag(p Point) bool {
	c, ok := b.Selected()
	if !ok || !c.Contains(p.X, p.Y) {
		return false
	}
	b.dragging = true
	b.offset = p.Sub(c.Center())
	return true
}

// DragMouse moves the dragged circle so the grab point follows p.
func (b *Board) DragMouse(p Point) bool {
	if !b.dragging {
		return false
	}
	c := &b.circles[b.selected]
	c.X = p.X - b.offset.X
	c.Y = p.Y - b.offset.Y
	return true
}

// DragTouch moves the dragged circle's center onto p. Unlike DragMouse the
// grab offset is ignored, so the circle snaps to the finger.
func (b *Board) DragTouch(p Point) bool {
	if !b.dragging {
		return false
	}
	c := &b.circles[b.selected]
	c.X = p.X
	c.Y = p.Y
	return true
}

// EndDrag stops any drag in progress.
func (b *Board) EndDrag() {
	b.dragging = false
	b.offset = Point{}
}

// Resize grows the selected circle for negative deltaY (scroll up) and
// shrinks it, floored at MinRadius, for positive deltaY. It reports whether
// a circle was selected, which is also whether the page scroll is consumed.
func (b *Board) Resize(deltaY float64) bool {
	if b.selected == NoSelection {
		return false
	}
	c := &b.circles[b.selected]
	switch {
	case deltaY < 0:
		c.Radius += ResizeStep
	case deltaY > 0:
		c.Radius = math.Max(MinRadius, c.Radius-ResizeStep)
	}
	return true
}

// DeleteSelected removes the selected circle and clears the selection.
func (b *Board) DeleteSelected() bool {
	if b.selected == NoSelection {
		return false
	}
	b.circles = append(b.circles[:b.selected], b.circles[b.selected+1:]...)
	b.selected = NoSelection
	b.EndDrag()
	return true
}

// Clear removes every circle.
func (b *Board) Clear() {
	b.circles = nil
	b.selected = NoSelection
	b.EndDrag()
}

// Load replaces the board contents. An out of range selection is dropped.
// The board is left untouched when any circle is invalid.
func (b *Board) Load(circles []Circle, selected int) error {
	for i, c := range circles {
		if !(c.Radius > 0) || math.IsInf(c.Radius, 1) {
			return fmt.Errorf("circle %d: %w, got %v", i, ErrInvalidRadius, c.Radius)
		}
	}

	b.circles = make([]Circle, len(circles))
	copy(b.circles, circles)
	for i := range b.circles {
		if b.circles[i].ID == "" {
			b.circles[i].ID = b.newID()
		}
	}
	if selected < 0 || selected >= len(b.circles) {
		selected = NoSelection
	}
	b.selected = selected
	b.EndDrag()
	return nil
}
