package main

import (
	"fmt"
	"image/png"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/csimage"
	"github.com/bodgit/csimage/container"
	"github.com/bodgit/csimage/payload"
	"github.com/bodgit/csimage/pixel"
	"github.com/urfave/cli/v2"
)

const defaultDB = ".csimage.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

var conversionFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "force output `FORMAT` (L8, LA88, RGB565, RGBA4444, RGB888, RGBA8888)",
	},
	&cli.StringFlag{
		Name:  "alpha-format",
		Usage: "output `FORMAT` for images with alpha",
	},
	&cli.StringFlag{
		Name:  "no-alpha-format",
		Usage: "output `FORMAT` for images without alpha",
	},
	&cli.BoolFlag{
		Name:  "premultiply",
		Usage: "premultiply color channels by alpha",
	},
	&cli.BoolFlag{
		Name:  "dither",
		Usage: "dither RGB565 and RGBA4444 output",
	},
	&cli.StringFlag{
		Name:    "compression",
		Aliases: []string{"c"},
		Value:   "none",
		Usage:   "payload compression (none, deflate)",
	},
	&cli.BoolFlag{
		Name:  "stats",
		Usage: "print size statistics",
	},
}

func options(c *cli.Context) (o csimage.Options, err error) {
	if o.ForcedFormat, err = pixel.ParseFormat(c.String("format")); err != nil {
		return
	}
	if o.AlphaFormat, err = pixel.ParseFormat(c.String("alpha-format")); err != nil {
		return
	}
	if o.NoAlphaFormat, err = pixel.ParseFormat(c.String("no-alpha-format")); err != nil {
		return
	}
	if o.Compression, err = payload.ParseCompression(c.String("compression")); err != nil {
		return
	}
	o.Premultiply = c.Bool("premultiply")
	o.Dither = c.Bool("dither")
	o.Stats = c.Bool("stats")
	return
}

func newConverter(c *cli.Context) *csimage.Converter {
	logger := log.New(os.Stderr, "", 0)
	return csimage.New(csimage.NewLogReporter(logger, c.Bool("verbose")))
}

func main() {
	app := cli.NewApp()

	app.Name = "csimage"
	app.Usage = "Convert images to csimage texture containers"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"CSIMAGE_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to scan manifest database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "convert",
			Usage:     "Convert an image to a csimage container",
			ArgsUsage: "INPUT OUTPUT",
			Flags:     conversionFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				o, err := options(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				res, err := newConverter(c).ConvertFile(c.Args().Get(0), c.Args().Get(1), o)
				if err != nil {
					return cli.Exit(err, 1)
				}

				if o.Stats {
					res.Stats.WriteTo(os.Stdout)
				}

				if res.CompressionErr != nil {
					return cli.Exit(res.CompressionErr, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Convert every image under a directory",
			Description: "Each image is converted to a container alongside it. Unchanged images recorded in the manifest database are skipped.",
			ArgsUsage:   "DIRECTORY",
			Flags:       conversionFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				o, err := options(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				m, err := csimage.NewManifest(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer m.Close()

				stats, err := newConverter(c).Scan(c.Args().First(), o, m)
				if o.Stats {
					for _, s := range stats {
						s.WriteTo(os.Stdout)
					}
				}
				if err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Print the header of a csimage container",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				ct, err := readContainer(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				writeInfo(os.Stdout, ct)

				if _, err := ct.Pixels(); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "decode",
			Usage:     "Decode a csimage container to PNG",
			ArgsUsage: "INPUT OUTPUT",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				ct, err := readContainer(c.Args().Get(0))
				if err != nil {
					return cli.Exit(err, 1)
				}

				m, err := ct.Raster()
				if err != nil {
					return cli.Exit(err, 1)
				}

				f, err := os.Create(c.Args().Get(1))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				if err := png.Encode(f, m.NRGBA()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func writeInfo(w io.Writer, ct *container.Container) {
	h := ct.Header
	f, _ := ct.Format()
	comp, _ := ct.Compression()
	fmt.Fprintf(w, "Version:           %d\n", h.Version)
	fmt.Fprintf(w, "Size:              %dx%d\n", h.Width, h.Height)
	fmt.Fprintf(w, "Format:            %s\n", f)
	fmt.Fprintf(w, "Compression:       %s\n", comp)
	if h.HasChecksum() {
		fmt.Fprintf(w, "Checksum:          %08X\n", h.Checksum)
	} else {
		fmt.Fprintf(w, "Checksum:          none (legacy uncompressed container, payload not verified)\n")
	}
	fmt.Fprintf(w, "Uncompressed size: %d\n", h.UncompressedSize)
	fmt.Fprintf(w, "Final size:        %d\n", h.FinalSize)
}

func readContainer(file string) (*container.Container, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}

	ct := new(container.Container)
	if err := ct.UnmarshalBinary(b); err != nil {
		return nil, err
	}

	return ct, nil
}
