package engine

import (
	"encoding/json"

	"github.com/shapeboard/shapeboard/internal/board"
)

// HighlightColor is the fill of the selected circle, whatever its own color.
const HighlightColor = "red"

const (
	OpClear  = "clear"
	OpCircle = "circle"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op       string  `json:"op"`                 // Operation: "clear", "circle"
	ObjectID string  `json:"objectId,omitempty"` // For hit correlation
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"radius"`
	Fill     string  `json:"fill,omitempty"`
	Selected bool    `json:"selected,omitempty"`
}

// CompileDrawCommands generates a full repaint of the board.
// Commands are in painter's order (back to front).
func CompileDrawCommands(b *board.Board) []DrawCommand {
	circles := b.Circles()
	selected := b.SelectedIndex()

	commands := make([]DrawCommand, 0, len(circles)+1)
	commands = append(commands, DrawCommand{Op: OpClear})

	for i, c := range circles {
		cmd := DrawCommand{
			Op:       OpCircle,
			ObjectID: c.ID,
			X:        c.X,
			Y:        c.Y,
			Radius:   c.Radius,
			Fill:     c.Color,
		}
		if i == selected {
			cmd.Fill = HighlightColor
			cmd.Selected = true
		}
		commands = append(commands, cmd)
	}

	return commands
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r board.Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
