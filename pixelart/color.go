// Package pixelart maps images onto small palettes, the way pixel art is drawn.
//
// The package holds the colour type, the palette and pixel grid types, the colour
// metrics, and the quantization engine that replaces every pixel of a grid with the
// nearest palette colour. It does no I/O.
package pixelart

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	// ErrBadColor is returned for colors with the wrong number of channels or
	// with channel values outside of 0-255.
	ErrBadColor = errors.New("malformed color")

	// ErrConversionDomain is returned when a normalized channel value is outside
	// of [0, 1]. It wraps ErrBadColor.
	ErrConversionDomain = fmt.Errorf("%w: value outside of the normalizable range", ErrBadColor)
)

// Color is an opaque 8-bit RGB color. It implements color.Color.
type Color struct {
	R, G, B uint8
}

// NewColor returns the color with the given channel values, or ErrBadColor if any
// of them is outside of 0-255.
func NewColor(r, g, b int) (Color, error) {
	for _, v := range [3]int{r, g, b} {
		if v < 0 || v > 255 {
			return Color{}, fmt.Errorf("%w: channel value %d is not in the range 0-255", ErrBadColor, v)
		}
	}
	return Color{uint8(r), uint8(g), uint8(b)}, nil
}

// ColorFromSlice is like NewColor, but takes the channels as a slice that must
// hold exactly three values.
func ColorFromSlice(ch []int) (Color, error) {
	if len(ch) != 3 {
		return Color{}, fmt.Errorf("%w: got %d channels, want 3", ErrBadColor, len(ch))
	}
	return NewColor(ch[0], ch[1], ch[2])
}

// ColorFromFloat takes gamma-corrected channels normalized to [0, 1].
func ColorFromFloat(r, g, b float64) (Color, error) {
	c := colorful.Color{R: r, G: g, B: b}
	if !c.IsValid() {
		return Color{}, fmt.Errorf("%w: (%g, %g, %g)", ErrConversionDomain, r, g, b)
	}
	r8, g8, b8 := c.RGB255()
	return Color{r8, g8, b8}, nil
}

// ParseHex parses colors like "#00ff00" or "00FF00". The short "#0f0" form is
// accepted too.
func ParseHex(s string) (Color, error) {
	if len(s) > 0 && s[0] != '#' {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %s is not a hex color", ErrBadColor, s)
	}
	r, g, b := c.RGB255()
	return Color{r, g, b}, nil
}

// FromStd converts any color.Color to a Color. Alpha is dropped, the channels
// are taken un-premultiplied.
func FromStd(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{n.R, n.G, n.B}
}

// RGBA implements color.Color. The color is always fully opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.Hex()
}
