package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/makeworld-the-better-one/dither/v2"
	"github.com/makeworld-the-better-one/pixelartconv/pixelart"
	"github.com/urfave/cli/v2"
)

const (
	unsupportedFormat string = "'%s' is an unsupported format, only 'png' or 'gif' are accepted"
)

var (
	// palette stores the palette colors. It's set after pre-processing.
	palette pixelart.Palette

	// recolorPalette stores the recolor palette colors. It's set after pre-processing.
	// Guaranteed to only hold color.NRGBA.
	recolorPalette []color.Color

	grayscale bool

	// Range -100,100

	saturation float64
	brightness float64
	contrast   float64

	autoOrientation imaging.DecodeOption

	inputImages []string
	outFormat   string // "png" or "gif"
	outIsDir    bool

	compLevel png.CompressionLevel

	outFileFlags int // For os.OpenFile

	// Target grid size. Zero means derived from the other one and the aspect
	// ratio, both zero means the image isn't resized.
	width  int
	height int
	// upscale will always be 1 or above
	upscale int
	// previewSize is the height the _scaled preview aims for, 0 disables it
	previewSize int

	threads int

	// range [-1, 1]
	strength float32
)

// preProcess is automatically called by the app before anything else.
// It's run in the global context.
func preProcess(c *cli.Context) error {
	threads = int(c.Uint("threads"))
	runtime.GOMAXPROCS(threads)

	var err error

	grayscale = c.Bool("grayscale")
	saturation, err = parsePercentArg(c.String("saturation"), false)
	if err != nil {
		return fmt.Errorf("saturation: %w", err)
	}
	if saturation <= -100 {
		grayscale = true
		saturation = 0
	}
	brightness, err = parsePercentArg(c.String("brightness"), false)
	if err != nil {
		return fmt.Errorf("brightness: %w", err)
	}
	contrast, err = parsePercentArg(c.String("contrast"), false)
	if err != nil {
		return fmt.Errorf("contrast: %w", err)
	}

	autoOrientation = imaging.AutoOrientation(!c.Bool("no-exif-rotation"))

	inputImages = make([]string, 0)
	for _, path := range c.StringSlice("in") {
		if strings.Contains(path, "*") {
			// Parse as glob
			paths, err := filepath.Glob(path)
			if err != nil {
				return fmt.Errorf("bad glob pattern '%s': %w", path, err)
			}
			inputImages = append(inputImages, paths...)
		} else {
			inputImages = append(inputImages, path)
		}
	}
	if len(inputImages) == 0 {
		return errors.New("no input images found")
	}

	// Set here for convenience
	width = int(c.Uint("width"))
	height = int(c.Uint("height"))
	upscale = int(c.Uint("upscale"))
	if upscale == 0 {
		// Invalid
		upscale = 1
	}
	previewSize = int(c.Uint("preview-size"))

	palette, err = loadPalette(c)
	if err != nil {
		return err
	}

	if c.String("recolor") != "" {
		recolorPalette, err = parseColors("recolor", c)
		if err != nil {
			return err
		}
		if len(recolorPalette) != len(palette) {
			return errors.New("recolor palette must have the same number of colors as the initial palette")
		}
	}

	formatVal := c.String("format")
	if formatVal != "png" && formatVal != "gif" {
		return fmt.Errorf(unsupportedFormat, formatVal)
	}

	// Figure out output format

	outVal := c.String("out")

	if outVal == "-" {
		// Outputting to stdout, so just use whatever the flag is
		outFormat = formatVal
	} else {
		// Outputting to dir or file

		outFI, err := os.Stat(outVal)

		if err == nil && outFI.IsDir() {
			// Exists and is a directory
			// Just use what the flag is
			outFormat = formatVal
			outIsDir = true

		} else {
			// Outputting to file, that already exists
			// Or something that doesn't exist - assumed to be a file

			if !c.IsSet("format") {
				// Format wasn't set, so ignore default value of "png"
				// Try to figure out format from output filename
				ext := strings.TrimPrefix(filepath.Ext(outVal), ".")
				if ext == "png" || ext == "gif" {
					// Acceptable extension
					outFormat = ext
				} else if ext == "" {
					// No extension, use default format
					outFormat = "png"
				} else {
					// Unsupported extension and no format flag override
					return fmt.Errorf(unsupportedFormat, ext)
				}
			} else {
				// Format flag was set, so ignore what the file looks like
				outFormat = formatVal
			}
		}

	}

	// Multiple input images are only valid if the output points to a directory.
	if len(inputImages) > 1 && !outIsDir {
		return errors.New("multiple input images are only allowed if the output is an existing directory")
	}

	if len(palette) > 256 {
		return errors.New("the output formats only support 256 colors or less in the palette")
	}

	// Set PNG compression type

	switch c.String("compression") {
	case "default":
		compLevel = png.DefaultCompression
	case "no":
		compLevel = png.NoCompression
	case "speed":
		compLevel = png.BestSpeed
	case "size":
		compLevel = png.BestCompression
	default:
		return fmt.Errorf("invalid compression type '%s'", c.String("compression"))
	}

	if c.Bool("no-overwrite") {
		outFileFlags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	} else {
		outFileFlags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	tmp, err := parsePercentArg(c.String("strength"), true)
	if err != nil {
		return fmt.Errorf("strength: %w", err)
	}
	strength = float32(tmp)
	if strength == 0 {
		// Ignore
		strength = 1
	}

	return nil
}

// quantizeWith returns a converter that maps every pixel to the closest
// palette color under the metric.
func quantizeWith(m pixelart.Metric) (converter, error) {
	q, err := pixelart.NewQuantizer(palette, m)
	if err != nil {
		return nil, err
	}
	q.Workers = threads
	return q.QuantizeImage, nil
}

func raw(c *cli.Context) error {
	conv, err := quantizeWith(pixelart.Raw{})
	if err != nil {
		return err
	}
	return processImages(conv, c)
}

func hue(c *cli.Context) error {
	m, err := pixelart.ParseMetric("hue", c.Float64("weight"))
	if err != nil {
		return err
	}
	conv, err := quantizeWith(m)
	if err != nil {
		return err
	}
	return processImages(conv, c)
}

func lab(c *cli.Context) error {
	conv, err := quantizeWith(pixelart.Lab{})
	if err != nil {
		return err
	}
	return processImages(conv, c)
}

// newDitherer makes a ditherer for the palette. The dither library can't work
// with less than two colors.
func newDitherer() (*dither.Ditherer, error) {
	if len(palette) < 2 {
		return nil, errors.New("dithering needs a palette with at least two colors")
	}
	d := dither.NewDitherer(palette.Std())
	if d == nil {
		return nil, errors.New("couldn't create a ditherer for the palette")
	}
	return d, nil
}

// ditherWith wraps a ditherer as a converter. DitherPaletted works on a copy,
// and its palette has the same order as the conversion palette.
func ditherWith(d *dither.Ditherer) converter {
	return func(img image.Image) (*image.Paletted, error) {
		return d.DitherPaletted(img), nil
	}
}

func bayer(c *cli.Context) error {
	args := parseArgs(c.Args().Slice(), " ,x")

	if len(args) != 2 {
		return errors.New("bayer needs 2 arguments exactly. Example: 4x4")
	}

	uintArgs := make([]uint, 2)
	for i, arg := range args {
		u64, err := strconv.ParseUint(arg, 10, 0)
		if err != nil {
			return err
		}
		uintArgs[i] = uint(u64)
	}

	// Validate args to prevent dither.Bayer from panicking

	x, y := uintArgs[0], uintArgs[1]
	if x == 0 || y == 0 {
		return errors.New("neither dimension can be 0")
	}
	if x == 1 && y == 1 {
		return errors.New("a 1x1 matrix will not dither the image")
	}
	if ((x&(x-1)) != 0 || (y&(y-1)) != 0) && // Power of two?
		!((x == 3 && y == 3) || (x == 5 && y == 3) || (x == 3 && y == 5)) { // Exceptions
		// Not a power of two, and not an exception
		return errors.New("both dimensions must be powers of two")
	}

	d, err := newDitherer()
	if err != nil {
		return err
	}
	d.Mapper = dither.Bayer(x, y, strength)

	return processImages(ditherWith(d), c)
}

var odmName = map[string]dither.OrderedDitherMatrix{
	"clustereddot4x4":            dither.ClusteredDot4x4,
	"clustereddotdiagonal8x8":    dither.ClusteredDotDiagonal8x8,
	"vertical5x3":                dither.Vertical5x3,
	"horizontal3x5":              dither.Horizontal3x5,
	"clustereddotdiagonal6x6":    dither.ClusteredDotDiagonal6x6,
	"clustereddotdiagonal8x8_2":  dither.ClusteredDotDiagonal8x8_2,
	"clustereddotdiagonal16x16":  dither.ClusteredDotDiagonal16x16,
	"clustereddot6x6":            dither.ClusteredDot6x6,
	"clustereddotspiral5x5":      dither.ClusteredDotSpiral5x5,
	"clustereddothorizontalline": dither.ClusteredDotHorizontalLine,
	"clustereddotverticalline":   dither.ClusteredDotVerticalLine,
	"clustereddot8x8":            dither.ClusteredDot8x8,
	"clustereddot6x6_2":          dither.ClusteredDot6x6_2,
	"clustereddot6x6_3":          dither.ClusteredDot6x6_3,
	"clustereddotdiagonal8x8_3":  dither.ClusteredDotDiagonal8x8_3,
}

// parseODM returns the ordered dither matrix for a matrix name, inline JSON,
// or the path to a JSON file.
func parseODM(arg string) (dither.OrderedDitherMatrix, error) {
	matrix, ok := odmName[strings.ReplaceAll(strings.ToLower(arg), "-", "_")]
	if ok {
		return matrix, nil
	}

	if err := json.Unmarshal([]byte(arg), &matrix); err != nil {
		b, err := os.ReadFile(arg)
		if err != nil {
			return matrix, errors.New("couldn't process argument as matrix name, inline JSON, or path to accessible JSON file")
		}
		if err := json.Unmarshal(b, &matrix); err != nil {
			return matrix, errors.New("couldn't process argument as matrix name, inline JSON, or path to accessible JSON file")
		}
	}

	// Validate, dither.PixelMapperFromMatrix panics otherwise

	if matrix.Max == 0 {
		return matrix, errors.New("the max value of the matrix cannot be 0")
	}
	if len(matrix.Matrix) == 0 {
		return matrix, errors.New("matrix is empty")
	}
	width := len(matrix.Matrix[0])
	if width == 0 {
		return matrix, errors.New("matrix has empty row")
	}
	for _, row := range matrix.Matrix {
		if len(row) != width {
			return matrix, errors.New("matrix is not rectangular, all rows must be the same length")
		}
	}
	return matrix, nil
}

func odm(c *cli.Context) error {
	args := c.Args().Slice()

	if len(args) != 1 {
		return errors.New("odm only accepts one argument")
	}

	matrix, err := parseODM(args[0])
	if err != nil {
		return err
	}

	d, err := newDitherer()
	if err != nil {
		return err
	}
	d.Mapper = dither.PixelMapperFromMatrix(matrix, strength)

	return processImages(ditherWith(d), c)
}

var edmName = map[string]dither.ErrorDiffusionMatrix{
	"simple2d":            dither.Simple2D,
	"floydsteinberg":      dither.FloydSteinberg,
	"falsefloydsteinberg": dither.FalseFloydSteinberg,
	"jarvisjudiceninke":   dither.JarvisJudiceNinke,
	"atkinson":            dither.Atkinson,
	"stucki":              dither.Stucki,
	"burkes":              dither.Burkes,
	"sierra":              dither.Sierra,
	"sierra3":             dither.Sierra3,
	"tworowsierra":        dither.TwoRowSierra,
	"sierralite":          dither.SierraLite,
	"sierra2_4a":          dither.Sierra2_4A,
	"stevenpigeon":        dither.StevenPigeon,
}

func edm(c *cli.Context) error {
	args := c.Args().Slice()

	if len(args) != 1 {
		return errors.New("edm only accepts one argument")
	}

	matrix, ok := edmName[strings.ReplaceAll(strings.ToLower(args[0]), "-", "_")]
	if !ok {
		return fmt.Errorf("unknown error diffusion matrix '%s'", args[0])
	}

	d, err := newDitherer()
	if err != nil {
		return err
	}
	d.Matrix = dither.ErrorDiffusionStrength(matrix, strength)
	if c.Bool("serpentine") {
		d.Serpentine = true
	}

	return processImages(ditherWith(d), c)
}
