package pixelart

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// ErrEmptyPalette is returned when a palette with no colors is used.
var ErrEmptyPalette = errors.New("palette is empty")

// Palette is the ordered list of colors an image may be quantized to.
// Order only matters for ties: the earlier color wins.
//
// A Palette is never modified after it has been handed to a Quantizer.
type Palette []Color

// NewPalette copies the colors into a new Palette. At least one color is required.
func NewPalette(colors ...Color) (Palette, error) {
	if len(colors) == 0 {
		return nil, ErrEmptyPalette
	}
	p := make(Palette, len(colors))
	copy(p, colors)
	return p, nil
}

// PaletteFromStd converts a standard library palette, dropping alpha.
func PaletteFromStd(colors []color.Color) (Palette, error) {
	if len(colors) == 0 {
		return nil, ErrEmptyPalette
	}
	p := make(Palette, len(colors))
	for i := range colors {
		p[i] = FromStd(colors[i])
	}
	return p, nil
}

// Std returns the palette as a color.Palette, for use with the image packages.
func (p Palette) Std() color.Palette {
	cp := make(color.Palette, len(p))
	for i := range p {
		cp[i] = p[i]
	}
	return cp
}

// Index returns the index of the first palette entry equal to c, or -1.
func (p Palette) Index(c Color) int {
	for i := range p {
		if p[i] == c {
			return i
		}
	}
	return -1
}

// Contains reports whether c is one of the palette colors.
func (p Palette) Contains(c Color) bool {
	return p.Index(c) != -1
}

func (p Palette) validate() error {
	if len(p) == 0 {
		return ErrEmptyPalette
	}
	return nil
}

func (p Palette) String() string {
	hexes := make([]string, len(p))
	for i := range p {
		hexes[i] = p[i].Hex()
	}
	return fmt.Sprintf("[%s]", strings.Join(hexes, " "))
}
