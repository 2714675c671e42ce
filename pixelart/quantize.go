package pixelart

import (
	"context"
	"image"
	"runtime"
	"sync"
)

// Quantizer replaces every pixel of a grid with the closest palette color.
//
// The palette and metric are only read, so one Quantizer can be used from
// several goroutines at once.
type Quantizer struct {
	Palette Palette
	Metric  Metric

	// Workers is the number of goroutines rows are spread over.
	// Zero means runtime.GOMAXPROCS(0). One runs everything in the calling goroutine.
	Workers int
}

// NewQuantizer returns a Quantizer for the palette and metric, or an error if
// either can't be used.
func NewQuantizer(p Palette, m Metric) (*Quantizer, error) {
	q := &Quantizer{Palette: p, Metric: m}
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Quantizer) validate() error {
	if err := q.Palette.validate(); err != nil {
		return err
	}
	return validateMetric(q.Metric)
}

// Quantize returns a new grid of the same size as g, where every pixel is the
// palette color closest to the pixel of g. g is not modified.
func (q *Quantizer) Quantize(g *Grid) (*Grid, error) {
	return q.QuantizeContext(context.Background(), g)
}

// QuantizeContext is like Quantize, but stops before the next row once ctx is done.
func (q *Quantizer) QuantizeContext(ctx context.Context, g *Grid) (*Grid, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	if err := g.validate(); err != nil {
		return nil, err
	}

	out := &Grid{W: g.W, H: g.H, Pix: make([]Color, len(g.Pix))}

	if len(q.Palette) == 1 {
		// Nothing to compare
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := range out.Pix {
			out.Pix[i] = q.Palette[0]
		}
		return out, nil
	}

	var doRow func(y int)

	switch m := q.Metric.(type) {
	case Raw:
		doRow = func(y int) {
			src, dst := g.Row(y), out.Row(y)
			for x := range src {
				dst[x] = q.Palette[rawIndex(src[x], q.Palette)]
			}
		}
	case Projector:
		// Convert the palette once, and each image row once, then match
		// in the projected space
		proj := make([]Vec3, len(q.Palette))
		for i := range q.Palette {
			proj[i] = m.Project(q.Palette[i])
		}
		doRow = func(y int) {
			src, dst := g.Row(y), out.Row(y)
			row := make([]Vec3, len(src))
			for x := range src {
				row[x] = m.Project(src[x])
			}
			for x := range row {
				dst[x] = q.Palette[projectedIndex(row[x], proj)]
			}
		}
	default:
		doRow = func(y int) {
			src, dst := g.Row(y), out.Row(y)
			for x := range src {
				dst[x] = q.Palette[matchIndex(src[x], q.Palette, q.Metric)]
			}
		}
	}

	if err := q.forEachRow(ctx, g.H, doRow); err != nil {
		return nil, err
	}
	return out, nil
}

// forEachRow calls fn for every row index, spread over the workers.
// Rows are independent of each other, so no locking is needed.
func (q *Quantizer) forEachRow(ctx context.Context, h int, fn func(y int)) error {
	workers := q.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > h {
		workers = h
	}

	if workers == 1 {
		for y := 0; y < h; y++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(y)
		}
		return nil
	}

	rows := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for y := range rows {
				fn(y)
			}
		}()
	}

	var err error
	for y := 0; y < h && err == nil; y++ {
		if err = ctx.Err(); err == nil {
			rows <- y
		}
	}
	close(rows)
	wg.Wait()
	return err
}

// QuantizeImage quantizes an image and returns it as a paletted image using the
// Quantizer's palette. Transparency is ignored.
func (q *Quantizer) QuantizeImage(img image.Image) (*image.Paletted, error) {
	g, err := GridFromImage(img)
	if err != nil {
		return nil, err
	}
	out, err := q.Quantize(g)
	if err != nil {
		return nil, err
	}
	return out.Paletted(q.Palette)
}
