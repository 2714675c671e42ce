package main

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/makeworld-the-better-one/pixelartconv/pixelart"
	"github.com/mccutchen/palettor"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/urfave/cli/v2"
)

// Palette extraction methods, for the --extract flag
const (
	extractPalettor = "palettor"
	extractKMeans   = "kmeans"
	extractDominant = "dominant"
)

// loadPalette works out the palette for this run. In order:
//
//   - the --palette flag: a list of colors, a palette file, or "sample"
//   - a palette file next to the first input, named like it with a .txt extension
//   - a palette extracted from the first input, with --colors colors
//
// A palette file that exists but can't be parsed is reported and extraction is
// used instead.
func loadPalette(c *cli.Context) (pixelart.Palette, error) {
	if globalIsSet("palette", c) {
		arg := strings.TrimSpace(globalFlag("palette", c).(string))
		if arg == "sample" {
			return extractInputPalette(c)
		}
		if fi, err := os.Stat(arg); err == nil && !fi.IsDir() {
			return readPaletteFile(arg)
		}
		colors, err := parseColors("palette", c)
		if err != nil {
			return nil, err
		}
		return pixelart.PaletteFromStd(colors)
	}

	if inputImages[0] == "-" {
		return nil, errors.New("a palette must be given with --palette when reading the image from stdin")
	}

	path := paletteFilePath(inputImages[0])
	p, err := readPaletteFile(path)
	if err == nil {
		log.Printf("Using palette file %s: %v", path, p)
		return p, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		log.Printf("%v\nFalling back to an extracted palette...", err)
	}
	return extractInputPalette(c)
}

// paletteFilePath returns the palette file that belongs to an input image:
// same directory and name, .txt extension.
func paletteFilePath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".txt"
}

// readPaletteFile reads a palette file. See parsePaletteFile for the format.
func readPaletteFile(path string) (pixelart.Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := parsePaletteFile(f)
	if err != nil {
		return nil, fmt.Errorf("palette file '%s': %w", path, err)
	}
	return p, nil
}

// parsePaletteFile parses one hex color per line, like:
//
//	#00ff00
//	#ff00ff
//
// Blank lines are skipped.
func parsePaletteFile(r io.Reader) (pixelart.Palette, error) {
	var p pixelart.Palette
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		c, err := pixelart.ParseHex(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		p = append(p, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return nil, pixelart.ErrEmptyPalette
	}
	return p, nil
}

// extractInputPalette extracts a palette from the first input image, with as
// many colors as the --colors flag says.
func extractInputPalette(c *cli.Context) (pixelart.Palette, error) {
	if inputImages[0] == "-" {
		return nil, errors.New("can't extract a palette from stdin, set one with --palette")
	}

	img, err := loadImage(inputImages[0])
	if err != nil {
		return nil, fmt.Errorf("error loading image for palette extraction '%s': %w", inputImages[0], err)
	}

	n := int(globalFlag("colors", c).(uint))
	method := globalFlag("extract", c).(string)

	p, err := extractPalette(img, n, method)
	if err != nil {
		return nil, fmt.Errorf("error extracting image palette: %w", err)
	}

	log.Printf("Extracted palette: %v", p)
	return p, nil
}

// extractPalette extracts an n color palette from the image. If the method
// fails, the dominant color method is used instead, like when the image has
// fewer distinct colors than asked for.
func extractPalette(img image.Image, n int, method string) (pixelart.Palette, error) {
	if n < 1 {
		return nil, fmt.Errorf("palette size must be at least 1, got %d", n)
	}

	// Resize: keep extraction fast. See the palettor CLI source:
	// https://github.com/mccutchen/palettor/blob/3eaed180/cmd/palettor/palettor.go#L57
	thumbnail := img
	if b := img.Bounds(); b.Dx() > 200 || b.Dy() > 200 {
		thumbnail = imaging.Resize(img, 200, 200, imaging.NearestNeighbor)
	}

	var (
		p   pixelart.Palette
		err error
	)
	switch method {
	case extractPalettor:
		p, err = extractPalettorPalette(thumbnail, n)
	case extractKMeans:
		p, err = extractKMeansPalette(thumbnail, n)
	case extractDominant:
		return extractDominantPalette(thumbnail, n)
	default:
		return nil, fmt.Errorf("unknown palette extraction method '%s', expected %s, %s or %s",
			method, extractPalettor, extractKMeans, extractDominant)
	}
	if err == nil && len(p) != 0 {
		return p, nil
	}
	log.Printf("palette warning: %s failed (%v), falling back to %s", method, err, extractDominant)
	return extractDominantPalette(thumbnail, n)
}

func extractPalettorPalette(img image.Image, n int) (pixelart.Palette, error) {
	pal, err := palettor.Extract(n, 500, img)
	if err != nil {
		return nil, err
	}

	colors := pal.Colors()
	// Heaviest first, the order palettor returns isn't stable
	sort.SliceStable(colors, func(i, j int) bool {
		wi, wj := pal.Weight(colors[i]), pal.Weight(colors[j])
		if wi != wj {
			return wi > wj
		}
		return pixelart.FromStd(colors[i]).Hex() < pixelart.FromStd(colors[j]).Hex()
	})
	return pixelart.PaletteFromStd(colors)
}

// extractKMeansPalette clusters the opaque pixels of the image in RGB.
// Clusters are ordered by population.
func extractKMeansPalette(img image.Image, n int) (pixelart.Palette, error) {
	b := img.Bounds()

	dataset := make(clusters.Observations, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			nc := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if nc.A == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(nc.R) / 255.0,
				float64(nc.G) / 255.0,
				float64(nc.B) / 255.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil, errors.New("image has no opaque pixels")
	}

	k := min(n, len(dataset))
	cc, err := kmeans.New().Partition(dataset, k)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(cc, func(i, j int) bool {
		return len(cc[i].Observations) > len(cc[j].Observations)
	})

	p := make(pixelart.Palette, 0, len(cc))
	for _, cl := range cc {
		if len(cl.Observations) == 0 || len(cl.Center) < 3 {
			continue
		}
		cr, cg, cb := colorful.Color{R: cl.Center[0], G: cl.Center[1], B: cl.Center[2]}.Clamped().RGB255()
		p = append(p, pixelart.Color{R: cr, G: cg, B: cb})
	}
	if len(p) == 0 {
		return nil, pixelart.ErrEmptyPalette
	}
	return p, nil
}

func extractDominantPalette(img image.Image, n int) (pixelart.Palette, error) {
	found := dominantcolor.FindWeight(img, n)
	if len(found) == 0 {
		return nil, fmt.Errorf("no dominant colors found: %w", pixelart.ErrEmptyPalette)
	}
	p := make(pixelart.Palette, len(found))
	for i, c := range found {
		p[i] = pixelart.FromStd(c.RGBA)
	}
	return p, nil
}
