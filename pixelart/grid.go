package pixelart

import (
	"errors"
	"fmt"
	"image"
)

// ErrBadShape is returned for grids with a non-positive size, or with a pixel
// buffer that doesn't match their size.
var ErrBadShape = errors.New("bad grid shape")

// Grid is a W×H array of colors, stored row by row.
type Grid struct {
	W, H int
	Pix  []Color
}

// NewGrid allocates a black grid of the given size.
func NewGrid(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadShape, w, h)
	}
	return &Grid{W: w, H: h, Pix: make([]Color, w*h)}, nil
}

// GridFromImage copies an image into a new grid. Transparency is ignored,
// the un-premultiplied color channels are kept.
func GridFromImage(img image.Image) (*Grid, error) {
	b := img.Bounds()
	g, err := NewGrid(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	// Fast path for the type imaging returns
	if n, ok := img.(*image.NRGBA); ok {
		for y := 0; y < g.H; y++ {
			row := n.Pix[n.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < g.W; x++ {
				g.Pix[y*g.W+x] = Color{row[x*4], row[x*4+1], row[x*4+2]}
			}
		}
		return g, nil
	}

	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			g.Pix[y*g.W+x] = FromStd(img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return g, nil
}

func (g *Grid) validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrBadShape)
	}
	if g.W <= 0 || g.H <= 0 || len(g.Pix) != g.W*g.H {
		return fmt.Errorf("%w: %dx%d with %d pixels", ErrBadShape, g.W, g.H, len(g.Pix))
	}
	return nil
}

// At returns the color in column x of row y.
func (g *Grid) At(x, y int) Color {
	return g.Pix[y*g.W+x]
}

// Set changes the color in column x of row y.
func (g *Grid) Set(x, y int, c Color) {
	g.Pix[y*g.W+x] = c
}

// Row returns the slice of the pixel buffer holding row y.
func (g *Grid) Row(y int) []Color {
	return g.Pix[y*g.W : (y+1)*g.W]
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	pix := make([]Color, len(g.Pix))
	copy(pix, g.Pix)
	return &Grid{W: g.W, H: g.H, Pix: pix}
}

// Equal reports whether both grids have the same size and pixels.
func (g *Grid) Equal(o *Grid) bool {
	if g.W != o.W || g.H != o.H || len(g.Pix) != len(o.Pix) {
		return false
	}
	for i := range g.Pix {
		if g.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Image returns an opaque copy of the grid as an image.
func (g *Grid) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.W, g.H))
	for i, c := range g.Pix {
		img.Pix[i*4] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = 255
	}
	return img
}

// Paletted returns the grid as a paletted image using p. Every grid color must
// be in the palette, which is always true for the output of a Quantizer using p.
func (g *Grid) Paletted(p Palette) (*image.Paletted, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(p) > 256 {
		return nil, fmt.Errorf("paletted images support 256 colors at most, palette has %d", len(p))
	}

	// Palette lookups are cached since quantized images only hold a handful of colors
	index := make(map[Color]uint8, len(p))
	for i := len(p) - 1; i >= 0; i-- {
		// Iterating backwards leaves the first index for duplicate colors
		index[p[i]] = uint8(i)
	}

	img := image.NewPaletted(image.Rect(0, 0, g.W, g.H), p.Std())
	for i, c := range g.Pix {
		idx, ok := index[c]
		if !ok {
			return nil, fmt.Errorf("color %s at (%d, %d) is not in the palette", c, i%g.W, i/g.W)
		}
		img.Pix[i] = idx
	}
	return img, nil
}
