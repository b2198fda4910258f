package board

// Point is a position in canvas coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Circle is a filled disc on the board.
// Color is opaque to the board and never changes after creation.
type Circle struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
}

// Center returns the circle's center point.
func (c Circle) Center() Point {
	return Point{X: c.X, Y: c.Y}
}

// Contains reports whether (x, y) lies inside the circle. The boundary counts as inside.
func (c Circle) Contains(x, y float64) bool {
	dx := x - c.X
	dy := y - c.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Bounds returns the axis-aligned bounding box of the circle.
func (c Circle) Bounds() Rect {
	return Rect{
		X:      c.X - c.Radius,
		Y:      c.Y - c.Radius,
		Width:  2 * c.Radius,
		Height: 2 * c.Radius,
	}
}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}
