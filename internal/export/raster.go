package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/shapeboard/shapeboard/internal/engine"
)

// kappa is the control point distance for approximating a quarter circle with a cubic Bézier.
const kappa = 0.5522847498

var ErrInvalidSize = errors.New("invalid image size")

// Background is what a clear command paints.
var Background color.Color = color.White

// namedColors covers the CSS keywords the board emits or users are likely to pick.
var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"lime":    "#00ff00",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"cyan":    "#00ffff",
	"aqua":    "#00ffff",
	"magenta": "#ff00ff",
	"fuchsia": "#ff00ff",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"maroon":  "#800000",
	"olive":   "#808000",
	"navy":    "#000080",
	"purple":  "#800080",
	"teal":    "#008080",
	"orange":  "#ffa500",
}

// ParseColor understands #rgb, #rrggbb and the keywords in namedColors.
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("parse color %q: %w", s, err)
	}
	return c.Clamped(), nil
}

// Rasterize executes draw commands onto a width x height RGBA image.
// Unparseable fills are drawn black.
func Rasterize(commands []engine.DrawCommand, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	var z vector.Rasterizer

	for _, cmd := range commands {
		switch cmd.Op {
		case engine.OpClear:
			draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

		case engine.OpCircle:
			if cmd.Radius <= 0 {
				continue
			}
			bounds := circleBounds(cmd.X, cmd.Y, cmd.Radius, dst.Bounds())
			if bounds.Empty() {
				continue
			}
			fill, err := ParseColor(cmd.Fill)
			if err != nil {
				fill = color.Black
			}
			if coversBox(cmd.X, cmd.Y, cmd.Radius, bounds) {
				draw.Draw(dst, bounds, image.NewUniform(fill), image.Point{}, draw.Over)
				continue
			}
			// The mask only covers the circle's box; Draw places it at bounds.Min.
			z.Reset(bounds.Dx(), bounds.Dy())
			addCircle(&z,
				float32(cmd.X-float64(bounds.Min.X)),
				float32(cmd.Y-float64(bounds.Min.Y)),
				float32(cmd.Radius))
			z.Draw(dst, bounds, image.NewUniform(fill), image.Point{})
		}
	}

	return dst, nil
}

// circleBounds is the pixel box covering a circle, clipped to clip.
// Clamping happens before the int conversion so huge radii stay in range.
func circleBounds(cx, cy, r float64, clip image.Rectangle) image.Rectangle {
	clamp := func(v float64, lo, hi int) int {
		return int(math.Max(float64(lo), math.Min(float64(hi), v)))
	}
	return image.Rect(
		clamp(math.Floor(cx-r), clip.Min.X, clip.Max.X),
		clamp(math.Floor(cy-r), clip.Min.Y, clip.Max.Y),
		clamp(math.Ceil(cx+r), clip.Min.X, clip.Max.X),
		clamp(math.Ceil(cy+r), clip.Min.Y, clip.Max.Y),
	)
}

// coversBox reports whether every corner of b lies inside the circle.
func coversBox(cx, cy, r float64, b image.Rectangle) bool {
	for _, p := range [][2]int{{b.Min.X, b.Min.Y}, {b.Max.X, b.Min.Y}, {b.Min.X, b.Max.Y}, {b.Max.X, b.Max.Y}} {
		dx, dy := float64(p[0])-cx, float64(p[1])-cy
		if dx*dx+dy*dy > r*r {
			return false
		}
	}
	return true
}

// addCircle appends a closed circle path made of four cubic segments.
func addCircle(z *vector.Rasterizer, cx, cy, r float32) {
	k := kappa * r
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()
}

// EncodePNG rasterizes the commands and writes them as PNG.
func EncodePNG(w io.Writer, commands []engine.DrawCommand, width, height int) error {
	img, err := Rasterize(commands, width, height)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
