package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/makeworld-the-better-one/pixelartconv/pixelart"
	"github.com/urfave/cli/v2"
	"golang.org/x/image/colornames"
)

// converter turns a prepared input image into a paletted image that only uses
// palette colors, in palette order.
type converter func(img image.Image) (*image.Paletted, error)

// parsePercentArg takes a string like "0.5" or "50%" and will return a float
// like 50 or 0.5, depending on the second argument. An empty string returns 0.
//
// If `maxOne` is true, then "50%" will return 0.5. Otherwise it will return 50.
func parsePercentArg(arg string, maxOne bool) (float64, error) {
	if arg == "" {
		return 0, nil
	}
	if strings.HasSuffix(arg, "%") {
		arg = arg[:len(arg)-1]
		f64, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return 0, err
		}
		if maxOne {
			f64 /= 100.0
		}
		return f64, nil
	}
	f64, err := strconv.ParseFloat(arg, 64)
	if !maxOne {
		f64 *= 100.0
	}
	return f64, err
}

// globalFlag returns the value of flag at the top level of the command.
// For example, with the command:
//
//	pixelartconv --threads 1 hue -w 2
//
// "threads" is a global flag, and "w" is a flag local to the hue subcommand.
func globalFlag(flag string, c *cli.Context) interface{} {
	ancestor := c.Lineage()[len(c.Lineage())-1]
	if len(ancestor.Args().Slice()) == 0 {
		// When the global context calls this func, the last in the lineage
		// has no args for some reason. So return the second-last instead.
		return c.Lineage()[len(c.Lineage())-2].Value(flag)
	}
	return ancestor.Value(flag)
}

// globalIsSet returns a bool indicating whether the provided global flag
// was actually set.
func globalIsSet(flag string, c *cli.Context) bool {
	ancestor := c.Lineage()[len(c.Lineage())-1]
	if len(ancestor.Args().Slice()) == 0 {
		// See globalFlag for why this if statement exists
		return c.Lineage()[len(c.Lineage())-2].IsSet(flag)
	}
	return ancestor.IsSet(flag)
}

// parseArgs takes arguments and splits them using the provided split characters.
func parseArgs(args []string, splitRunes string) []string {
	finalArgs := make([]string, 0)
	for _, arg := range args {
		finalArgs = append(finalArgs, strings.FieldsFunc(arg, func(c rune) bool {
			for _, c2 := range splitRunes {
				if c == c2 {
					return true
				}
			}
			return false
		})...)
	}
	return finalArgs
}

func hexToColor(hex string) (color.NRGBA, error) {
	pc, err := pixelart.ParseHex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{pc.R, pc.G, pc.B, 255}, nil
}

func rgbToColor(s string) (color.NRGBA, error) {
	format := "%d,%d,%d"
	var r, g, b uint8
	n, err := fmt.Sscanf(s, format, &r, &g, &b)
	if err != nil {
		return color.NRGBA{}, err
	}
	if n != 3 {
		return color.NRGBA{}, fmt.Errorf("%s is not an RGB tuple", s)
	}
	return color.NRGBA{r, g, b, 255}, nil
}

func rgbaToColor(s string) (color.NRGBA, error) {
	format := "%d,%d,%d,%d"
	var r, g, b, a uint8
	n, err := fmt.Sscanf(s, format, &r, &g, &b, &a)
	if err != nil {
		return color.NRGBA{}, err
	}
	if n != 4 {
		return color.NRGBA{}, fmt.Errorf("%s is not an RGBA tuple", s)
	}
	// Parse as non-premult, as that's more user-friendly
	return color.NRGBA{r, g, b, a}, nil
}

// parseColors takes the value of a global flag and turns it into a color slice.
// All returned colors are guaranteed to only be color.NRGBA.
func parseColors(flag string, c *cli.Context) ([]color.Color, error) {
	return parseColorArgs(flag, parseArgs([]string{globalFlag(flag, c).(string)}, " "))
}

// parseColorArgs is parseColors for already split arguments.
func parseColorArgs(flag string, args []string) ([]color.Color, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: no colors given", flag)
	}

	colors := make([]color.Color, len(args))

	for i, arg := range args {
		// Try to parse as RGB numbers, then grayscale, then hex, then SVG colors, then fail
		// Numbers go before hex so "123" is gray and not #112233
		// Optionally try for RGBA if it's recolor

		if strings.Count(arg, ",") == 2 {
			rgbColor, err := rgbToColor(arg)
			if err != nil {
				return nil, fmt.Errorf("%s: %s is not a valid RGB tuple. Example: 25,200,150", flag, arg)
			}
			colors[i] = rgbColor
			continue
		}

		if flag == "recolor" && strings.Count(arg, ",") == 3 {
			rgbaColor, err := rgbaToColor(arg)
			if err != nil {
				return nil, fmt.Errorf("%s: %s is not a valid RGBA tuple. Example: 25,200,150,100", flag, arg)
			}
			colors[i] = rgbaColor
			continue
		}

		n, err := strconv.Atoi(arg)
		if err == nil {
			if n > 255 || n < 0 {
				return nil, fmt.Errorf("%s: single numbers like %d must be in the range 0-255", flag, n)
			}
			colors[i] = color.NRGBA{uint8(n), uint8(n), uint8(n), 255}
			continue
		}

		hexColor, err := hexToColor(arg)
		if err == nil {
			colors[i] = hexColor
			continue
		}

		htmlColor, ok := colornames.Map[strings.ToLower(arg)]
		if ok {
			colors[i] = color.NRGBAModel.Convert(htmlColor).(color.NRGBA)
			continue
		}

		return nil, fmt.Errorf("%s: %s not recognized as an RGB tuple, hex code, number 0-255, or SVG color name", flag, arg)
	}

	return colors, nil
}

// loadImage decodes an input image, "-" being stdin. EXIF orientation is
// applied unless disabled.
func loadImage(arg string) (image.Image, error) {
	if arg == "-" {
		return imaging.Decode(os.Stdin, autoOrientation)
	}
	return imaging.Open(arg, autoOrientation)
}

// targetSize resolves the grid size for an image of the given bounds.
// A zero width or height is derived from the other one and the aspect ratio.
// Images are never upscaled.
func targetSize(b image.Rectangle, w, h int) (int, int, error) {
	if w == 0 && h == 0 {
		return b.Dx(), b.Dy(), nil
	}
	if w == 0 {
		w = int(math.Round(float64(h) * float64(b.Dx()) / float64(b.Dy())))
	} else if h == 0 {
		h = int(math.Round(float64(w) * float64(b.Dy()) / float64(b.Dx())))
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if b.Dx() < w || b.Dy() < h {
		return 0, 0, fmt.Errorf(
			"original image dimensions must be greater or equal to new dimensions: %dx%d is smaller than %dx%d",
			b.Dx(), b.Dy(), w, h,
		)
	}
	return w, h, nil
}

// getInputImage takes an input image arg and returns an image that has
// been fit to the target grid and had modifications applied.
func getInputImage(arg string, c *cli.Context) (image.Image, error) {
	img, err := loadImage(arg)
	if err != nil {
		return nil, err
	}

	w, h, err := targetSize(img.Bounds(), width, height)
	if err != nil {
		return nil, err
	}
	if w != img.Bounds().Dx() || h != img.Bounds().Dy() {
		// Crop to the target aspect ratio around the center, then resample
		// with a bicubic filter
		img = imaging.Fill(img, w, h, imaging.Center, imaging.CatmullRom)
	}

	if grayscale {
		img = imaging.Grayscale(img)
	}
	if saturation != 0 {
		img = imaging.AdjustSaturation(img, saturation)
	}
	if contrast != 0 {
		img = imaging.AdjustContrast(img, contrast)
	}
	if brightness != 0 {
		img = imaging.AdjustBrightness(img, brightness)
	}

	return img, nil
}

// From dither library

func copyImage(dst draw.Image, src image.Image) {
	draw.Draw(dst, src.Bounds(), src, src.Bounds().Min, draw.Src)
}

///////

// recolor swaps the palette of a converted image for the recolor palette,
// if there is one. The palette of img is replaced, not modified, since it
// may be shared with the converter.
func recolor(img *image.Paletted) *image.Paletted {
	if len(recolorPalette) == 0 {
		return img
	}
	p := make(color.Palette, len(recolorPalette))
	copy(p, recolorPalette)
	img.Palette = p
	return img
}

// upscaleImage scales a paletted image up by an integer factor with
// nearest-neighbour sampling. The output is paletted as well.
func upscaleImage(img *image.Paletted, factor int) *image.Paletted {
	if factor <= 1 {
		return img
	}
	scaled := imaging.Resize(
		img,
		img.Bounds().Dx()*factor,
		0,
		imaging.NearestNeighbor,
	)
	pi := image.NewPaletted(scaled.Bounds(), img.Palette)
	copyImage(pi, scaled)
	return pi
}

// previewFactor is the upscale factor for the _scaled preview of an image
// with the given height. Anything of 1 or less means no preview.
func previewFactor(h int) int {
	if previewSize <= 0 || h <= 0 {
		return 0
	}
	return int(math.Round(float64(previewSize) / float64(h)))
}

// previewPath returns the path of the _scaled preview for an output path.
func previewPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_scaled" + ext
}

// writeImage encodes img to w in the output format.
func writeImage(w io.Writer, img *image.Paletted) error {
	if outFormat == "png" {
		return (&png.Encoder{CompressionLevel: compLevel}).Encode(w, img)
	}
	// The gif package won't change the image since it's *image.Paletted,
	// but make sure it never picks a palette on its own
	return gif.Encode(
		w, img,
		&gif.Options{
			NumColors: len(img.Palette),
			Quantizer: &fakeQuantizer{img.Palette},
			Drawer:    draw.Src,
		},
	)
}

// writeFile writes img to a new file at path.
func writeFile(path string, img *image.Paletted) error {
	file, err := os.OpenFile(path, outFileFlags, 0644)
	if err != nil {
		return fmt.Errorf("'%s': %w", path, err)
	}
	err = writeImage(file, img)
	if err != nil {
		file.Close()
		return fmt.Errorf("error writing %s to '%s': %w", strings.ToUpper(outFormat), path, err)
	}
	return file.Close()
}

// outputPath returns where the output for inputPath is written.
func outputPath(inputPath, outPath string) string {
	if !outIsDir {
		return outPath
	}
	// Inside output directory
	// Same name as input file but potentially different extension
	return filepath.Join(
		outPath,
		strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))+"."+outFormat,
	)
}

// processImages converts all the input images and writes them.
// It handles all image I/O.
func processImages(conv converter, c *cli.Context) error {
	outPath := globalFlag("out", c).(string)

	for _, inputPath := range inputImages {
		start := time.Now()

		if inputPath != "-" {
			abs, err := filepath.Abs(inputPath)
			if err == nil {
				log.Printf("Searched path is: %s", filepath.Dir(abs))
			}
		}

		img, err := getInputImage(inputPath, c)
		if err != nil {
			return fmt.Errorf("error loading '%s': %w", inputPath, err)
		}

		res, err := conv(img)
		if err != nil {
			return fmt.Errorf("error converting '%s': %w", inputPath, err)
		}
		res = recolor(res)
		out := upscaleImage(res, upscale)

		if outPath == "-" {
			err = writeImage(os.Stdout, out)
			if err != nil {
				return fmt.Errorf("error writing %s to stdout: %w", strings.ToUpper(outFormat), err)
			}
			continue
		}

		path := outputPath(inputPath, outPath)
		if err := writeFile(path, out); err != nil {
			return err
		}

		// The preview is always derived from the grid itself, not the upscaled output
		if factor := previewFactor(res.Bounds().Dy()); factor > 1 {
			if err := writeFile(previewPath(path), upscaleImage(res, factor)); err != nil {
				return err
			}
		}

		log.Printf("Conversion was successful.\nImage saved to %s", path)
		log.Printf("Duration: %.2f s", time.Since(start).Seconds())
	}

	return nil
}

