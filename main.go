package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/makeworld-the-better-one/pixelartconv/pixelart"
	"github.com/urfave/cli/v2"
)

// Set by compiler, see Makefile
var (
	version = "v0.1.0"
	commit  = "unknown"
	builtBy = "unknown"
)

func main() {

	app := &cli.App{
		Name:                   "pixelartconv",
		Usage:                  "turn images into pixel art with a small palette.",
		Description:            "pixelartconv shrinks images to a small grid and maps every pixel to the closest color of a palette.\n\nThe palette is given with --palette, read from a .txt file next to the input image\n(one #rrggbb color per line), or extracted from the image itself.",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:    "threads",
				Aliases: []string{"j"},
			},
			&cli.StringFlag{
				Name:    "palette",
				Aliases: []string{"p"},
			},
			&cli.UintFlag{
				Name:    "colors",
				Aliases: []string{"n"},
				Value:   6,
			},
			&cli.StringFlag{
				Name:    "extract",
				Aliases: []string{"e"},
				Value:   "palettor",
			},
			&cli.BoolFlag{
				Name:    "grayscale",
				Aliases: []string{"g"},
			},
			&cli.StringFlag{
				Name: "saturation",
			},
			&cli.StringFlag{
				Name: "brightness",
			},
			&cli.StringFlag{
				Name: "contrast",
			},
			&cli.StringFlag{
				Name:    "recolor",
				Aliases: []string{"r"},
			},
			&cli.BoolFlag{
				Name: "no-exif-rotation",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "png",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "export.png",
			},
			&cli.StringSliceFlag{
				Name:     "in",
				Aliases:  []string{"i"},
				Required: true,
			},
			&cli.BoolFlag{
				Name: "no-overwrite",
			},
			&cli.StringFlag{
				Name:    "compression",
				Aliases: []string{"c"},
				Value:   "default",
			},
			&cli.UintFlag{
				Name:    "width",
				Aliases: []string{"x"},
			},
			&cli.UintFlag{
				Name:    "height",
				Aliases: []string{"y"},
				Value:   16,
			},
			&cli.UintFlag{
				Name:    "upscale",
				Aliases: []string{"u"},
				Value:   1,
			},
			&cli.UintFlag{
				Name:  "preview-size",
				Value: 512,
			},
			&cli.StringFlag{
				Name:    "strength",
				Aliases: []string{"s"},
			},
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"v"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:                   "raw",
				Usage:                  "closest color by RGB distance",
				UseShortOptionHandling: true,
				Action:                 raw,
			},
			{
				Name:  "hue",
				Usage: "closest color by RGB distance, weighted against hue distance",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:    "weight",
						Aliases: []string{"w"},
						Value:   pixelart.DefaultHueWeight,
					},
				},
				UseShortOptionHandling: true,
				Action:                 hue,
			},
			{
				Name:                   "lab",
				Usage:                  "closest color by perceptual distance in CIE Lab space",
				UseShortOptionHandling: true,
				Action:                 lab,
			},
			{
				Name:  "edm",
				Usage: "Error Diffusion Matrix dithering with the palette",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "serpentine",
						Aliases: []string{"s"},
					},
				},
				UseShortOptionHandling: true,
				Action:                 edm,
			},
			{
				Name:                   "bayer",
				Usage:                  "Bayer matrix ordered dithering with the palette",
				UseShortOptionHandling: true,
				Action:                 bayer,
			},
			{
				Name:                   "odm",
				Usage:                  "Ordered Dither Matrix dithering with the palette, by name, inline JSON, or JSON file",
				UseShortOptionHandling: true,
				Action:                 odm,
			},
		},
		Before: preProcess,
		Action: func(c *cli.Context) error {
			return errors.New("no command specified")
		},
	}

	// Handle version flag
	if len(os.Args) == 2 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println("pixelartconv", version)
		fmt.Println("Commit:", commit)
		fmt.Println("Built by:", builtBy)
		return
	}

	// Hack around issue where required flags are still required even for help
	// https://github.com/urfave/cli/issues/1247
	if len(os.Args) == 3 {
		if os.Args[1] == "h" || os.Args[1] == "help" {
			// Like: pixelartconv help hue
			for _, c := range app.Commands {
				if c.Name == os.Args[2] {
					cli.HelpPrinter(os.Stdout, cli.CommandHelpTemplate, c)
					return
				}
			}
			fmt.Println("no command with that name")
			os.Exit(1)
		} else if os.Args[len(os.Args)-1] == "-h" || os.Args[len(os.Args)-1] == "--help" {
			// Like: pixelartconv hue --help
			for _, c := range app.Commands {
				if c.Name == os.Args[1] {
					cli.HelpPrinter(os.Stdout, cli.CommandHelpTemplate, c)
					return
				}
			}
			fmt.Println("no command with that name")
			os.Exit(1)
		}
	}

	err := app.Run(os.Args)
	if err != nil {
		if len(os.Args) == 1 {
			// Just ran the command with no flags
			return
		}
		fmt.Println(err)
		fmt.Println("For more info, type:\n    pixelartconv --help")
		os.Exit(1)
	}
}
