package main

import (
	"image"
	"image/color"
)

// fakeQuantizer implements draw.Quantizer. It ignores the provided image
// and just returns the provided palette each time. The GIF encoder only takes
// a palette through a draw.Quantizer, and the output palette must be the
// conversion palette (or the recolor palette), never one made up by image/gif.
type fakeQuantizer struct {
	p color.Palette
}

func (fq *fakeQuantizer) Quantize(p color.Palette, m image.Image) color.Palette {
	return append(p, fq.p...)
}
