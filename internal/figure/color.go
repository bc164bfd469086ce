package figure

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGBA colour. Alpha drives opacity in every backend.
type Color struct {
	R, G, B, A uint8
}

var (
	Black = Color{A: 255}
	White = Color{R: 255, G: 255, B: 255, A: 255}
)

// Hex parses "#rrggbb" or "#rgb" into an opaque colour.
func Hex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, err
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b, A: 255}, nil
}

// Opacity is alpha in [0,1].
func (c Color) Opacity() float64 {
	return float64(c.A) / 255
}

// Floats returns the channels in [0,1].
func (c Color) Floats() (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, c.Opacity()
}

// CSS renders the colour channels for an SVG fill/stroke attribute.
// Alpha goes to the separate opacity attribute.
func (c Color) CSS() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

func (c Color) HexString() string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// Lerp blends every channel, alpha included, and rounds to the nearest
// integer.
func (c Color) Lerp(d Color, k float64) Color {
	ch := func(a, b uint8) uint8 {
		v := math.Round(float64(a)*(1-k) + float64(b)*k)
		return uint8(math.Max(0, math.Min(255, v)))
	}
	return Color{R: ch(c.R, d.R), G: ch(c.G, d.G), B: ch(c.B, d.B), A: ch(c.A, d.A)}
}
