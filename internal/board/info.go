package board

import (
	"fmt"
	"math"
	"strconv"
)

const notAvailable = "N/A"

// Info is the human-readable readout of the selected circle.
type Info struct {
	Position string `json:"position"`
	Radius   string `json:"radius"`
	Color    string `json:"color"`
}

// Info describes the selected circle, or the N/A placeholders when nothing
// is selected.
func (b *Board) Info() Info {
	c, ok := b.Selected()
	if !ok {
		return Info{
			Position: "Position: " + notAvailable,
			Radius:   "Radius: " + notAvailable,
			Color:    "Color: " + notAvailable,
		}
	}
	return Info{
		Position: fmt.Sprintf("Position: (%s, %s)", formatNumber(roundHalfUp(c.X)), formatNumber(roundHalfUp(c.Y))),
		Radius:   "Radius: " + formatNumber(c.Radius),
		Color:    "Color: " + c.Color,
	}
}

// roundHalfUp rounds .5 toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func formatNumber(v float64) string {
	if v == 0 {
		// avoid "-0"
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
