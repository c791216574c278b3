package main

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bodgit/s4c"
	"github.com/bodgit/s4c/emit"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func sheetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "width",
			Usage: "sprite width",
		},
		&cli.IntFlag{
			Name:  "height",
			Usage: "sprite height",
		},
		&cli.IntFlag{
			Name:  "separator",
			Usage: "separator thickness between sprites",
		},
		&cli.IntFlag{
			Name:  "start-x",
			Usage: "X coordinate of the first sprite",
		},
		&cli.IntFlag{
			Name:  "start-y",
			Usage: "Y coordinate of the first sprite",
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "output mode, one of s4c-file, C-header or C-impl",
		},
		&cli.StringFlag{
			Name:  "format-version",
			Usage: "s4c file format version to write",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "write to `FILE` instead of stdout",
		},
	}
}

func conversionFlags() []cli.Flag {
	return append(outputFlags(),
		&cli.IntFlag{
			Name:  "colors",
			Usage: "maximum number of colors per quantization",
		},
		&cli.StringFlag{
			Name:  "palette",
			Usage: "match colors against the GIMP palette `FILE`",
		},
		&cli.StringFlag{
			Name:  "alphabet",
			Usage: "characters assigned to colors, in order",
		},
	)
}

func loadConfig(c *cli.Context) (*s4c.Config, error) {
	cfg, err := s4c.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if db := c.String("db"); db != "" {
		cfg.Cache.DB = db
	}

	for name, p := range map[string]*int{
		"width":     &cfg.Sheet.SpriteWidth,
		"height":    &cfg.Sheet.SpriteHeight,
		"separator": &cfg.Sheet.Separator,
		"start-x":   &cfg.Sheet.StartX,
		"start-y":   &cfg.Sheet.StartY,
		"colors":    &cfg.Output.MaxColors,
	} {
		if c.IsSet(name) {
			*p = c.Int(name)
		}
	}

	for name, p := range map[string]*string{
		"mode":           &cfg.Output.Mode,
		"format-version": &cfg.Output.Version,
		"scope":          &cfg.Output.Scope,
		"palette":        &cfg.Output.Palette,
		"alphabet":       &cfg.Output.Alphabet,
		"s4c-path":       &cfg.Output.S4CPath,
	} {
		if c.IsSet(name) {
			*p = c.String(name)
		}
	}

	return cfg, nil
}

func newS4C(c *cli.Context, cfg *s4c.Config) (*s4c.S4C, error) {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	return s4c.New(cfg.Cache.DB, logger)
}

// Replace file with the contents of b, or write b to stdout if file is empty.
// An existing file is only replaced once b has been written out in full.
func writeOutput(file string, b *bytes.Buffer) error {
	if file == "" {
		_, err := b.WriteTo(os.Stdout)
		return err
	}

	f, err := ioutil.TempFile(filepath.Dir(file), "."+filepath.Base(file)+".*")
	if err != nil {
		return err
	}

	if _, err := b.WriteTo(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}

	if err := os.Chmod(f.Name(), 0644); err != nil {
		os.Remove(f.Name())
		return err
	}

	return os.Rename(f.Name(), file)
}

// Shared boilerplate of every conversion command
func convert(c *cli.Context, nargs int, fn func(*s4c.S4C, *s4c.Config, s4c.Options, io.Writer) error) error {
	if c.NArg() < nargs {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	opt, err := cfg.Options()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	m, err := newS4C(c, cfg)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer m.Close()

	b := new(bytes.Buffer)
	if err := fn(m, cfg, opt, b); err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := writeOutput(c.String("output"), b); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

// Paths the watch command reacts to
func watchPaths(c *cli.Context, cfg *s4c.Config) []string {
	paths := []string{c.Args().First()}
	if cfg.Output.Palette != "" {
		paths = append(paths, cfg.Output.Palette)
	}
	return paths
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "s4c"
	app.Usage = "Spritesheet to s4c character array converter"
	app.Version = "0.2.2"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"S4C_CONFIG"},
			Value:   s4c.DefaultConfigFile,
			Usage:   "path to configuration file",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"S4C_DB"},
			Usage:   "path to conversion cache database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "sheet",
			Usage:       "Convert a spritesheet",
			Description: "Split FILE into a grid of sprites and print them as a character array.",
			ArgsUsage:   "FILE",
			Flags: append(append(sheetFlags(), conversionFlags()...),
				&cli.StringFlag{
					Name:  "scope",
					Usage: "quantize the whole \"sheet\" at once or each \"sprite\" on its own",
				},
			),
			Action: func(c *cli.Context) error {
				return convert(c, 1, func(m *s4c.S4C, cfg *s4c.Config, opt s4c.Options, w io.Writer) error {
					return m.ConvertSheet(w, c.Args().First(), cfg.SheetOptions(), opt)
				})
			},
		},
		{
			Name:        "sprites",
			Usage:       "Convert a directory of sprites",
			Description: "Print every PNG in DIRECTORY as one frame, ordered by the number in each filename.",
			ArgsUsage:   "DIRECTORY",
			Flags:       conversionFlags(),
			Action: func(c *cli.Context) error {
				return convert(c, 1, func(m *s4c.S4C, cfg *s4c.Config, opt s4c.Options, w io.Writer) error {
					return m.ConvertDirectory(w, c.Args().First(), opt)
				})
			},
		},
		{
			Name:        "palette",
			Usage:       "Convert a GIMP palette",
			Description: "Print FILE as an S4C_Color array, either a C-header or C-impl.",
			ArgsUsage:   "FILE",
			Flags: append(outputFlags(),
				&cli.StringFlag{
					Name:  "s4c-path",
					Usage: "path to the directory containing sprites4curses",
				},
			),
			Action: func(c *cli.Context) error {
				return convert(c, 1, func(m *s4c.S4C, cfg *s4c.Config, opt s4c.Options, w io.Writer) error {
					// A palette has no s4c-file form
					if !c.IsSet("mode") && opt.Mode == emit.VersionedData {
						opt.Mode = emit.Header
					}
					return m.ConvertPalette(w, c.Args().First(), cfg.Output.S4CPath, opt)
				})
			},
		},
		{
			Name:        "cut",
			Usage:       "Cut a spritesheet into files",
			Description: "Write each sprite of FILE into DIRECTORY as imageN.png.",
			ArgsUsage:   "FILE DIRECTORY",
			Flags:       sheetFlags(),
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := loadConfig(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m, err := newS4C(c, cfg)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer m.Close()

				if err := m.Cut(c.Args().Get(0), c.Args().Get(1), cfg.SheetOptions()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "resize",
			Usage:       "Crop and resize a directory of sprites",
			Description: "Crop every PNG in DIRECTORY to its non-transparent pixels and scale it, in place.",
			ArgsUsage:   "DIRECTORY",
			Flags:       sheetFlags()[:2],
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := loadConfig(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m, err := newS4C(c, cfg)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer m.Close()

				ctx, cancel := signalContext()
				defer cancel()

				if err := m.Resize(ctx, c.Args().First(), cfg.Sheet.SpriteWidth, cfg.Sheet.SpriteHeight); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "watch",
			Usage:       "Convert a spritesheet or directory whenever it changes",
			Description: "Rewrite the output FILE each time the sheet or any sprite in the directory changes.",
			ArgsUsage:   "FILE|DIRECTORY",
			Flags: append(append(sheetFlags(), conversionFlags()...),
				&cli.StringFlag{
					Name:  "scope",
					Usage: "quantize the whole \"sheet\" at once or each \"sprite\" on its own",
				},
			),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 || c.String("output") == "" {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := loadConfig(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m, err := newS4C(c, cfg)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer m.Close()

				target := c.Args().First()
				regenerate := func(string) error {
					// Reload the palette along with everything else
					opt, err := cfg.Options()
					if err != nil {
						return err
					}

					info, err := os.Stat(target)
					if err != nil {
						return err
					}

					b := new(bytes.Buffer)
					if info.IsDir() {
						err = m.ConvertDirectory(b, target, opt)
					} else {
						err = m.ConvertSheet(b, target, cfg.SheetOptions(), opt)
					}
					if err != nil {
						return err
					}

					return writeOutput(c.String("output"), b)
				}

				if err := regenerate(target); err != nil {
					return cli.NewExitError(err, 1)
				}

				ctx, cancel := signalContext()
				defer cancel()

				if err := m.Watch(ctx, watchPaths(c, cfg), regenerate); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "purge",
			Usage: "Empty the conversion cache",
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m, err := newS4C(c, cfg)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer m.Close()

				if err := m.PurgeCache(); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
