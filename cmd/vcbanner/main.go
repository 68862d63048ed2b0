package main

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/bodgit/vcbanner"
	"github.com/bodgit/vcbanner/cbmd"
	"github.com/bodgit/vcbanner/texture"
	"github.com/urfave/cli/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const defaultDB = "vcbanner.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func openDB(c *cli.Context) (*vcbanner.GameDB, error) {
	return vcbanner.NewGameDB(c.String("db"))
}

func loadImage(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return m, nil
}

func loadContainer(file string) (*cbmd.Container, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return cbmd.Parse(b)
}

func build(c *cli.Context) error {
	logger := newLogger(c)

	config, err := vcbanner.LoadConfig(c.String("templates"), c.String("config"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	config.Output = c.String("output")
	if c.IsSet("workers") {
		if config.Workers = c.Int("workers"); config.Workers < 1 {
			return cli.Exit(fmt.Sprintf("workers must be at least 1, got %d", config.Workers), 1)
		}
	}
	if err := config.Filter(c.StringSlice("region")...); err != nil {
		return cli.Exit(err, 1)
	}

	in := vcbanner.Input{
		Title:    c.String("title"),
		Subtitle: c.String("subtitle"),
		ROM:      c.String("rom"),
	}
	if c.IsSet("background") {
		in.Background = c.Generic("background").(*vcbanner.Color)
	}
	if c.IsSet("shell") {
		in.Shell = c.Generic("shell").(*vcbanner.Color)
	}
	if file := c.String("label"); file != "" {
		if in.Label, err = loadImage(file); err != nil {
			return cli.Exit(err, 1)
		}
	}

	var db *vcbanner.GameDB
	if in.ROM != "" {
		if db, err = openDB(c); err != nil {
			return cli.Exit(err, 1)
		}
		defer db.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := vcbanner.New(config, db, logger).Build(ctx, in)
	if err != nil {
		return cli.Exit(err, 1)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 8, 1, ' ', 0)
	for _, r := range summary.Results {
		switch {
		case r.Err == nil && r.Path != "":
			fmt.Fprintf(w, "%s\tbuilt\t%s\n", r.Region.Code, r.Path)
		case r.Err == nil:
			fmt.Fprintf(w, "%s\tbuilt\t%d bytes\n", r.Region.Code, len(r.Output))
		case r.Skipped():
			fmt.Fprintf(w, "%s\tskipped\t%v\n", r.Region.Code, r.Err)
		default:
			fmt.Fprintf(w, "%s\tfailed\t%v\n", r.Region.Code, r.Err)
		}
	}
	w.Flush()

	if l := summary.Prepared.Layout; l.Truncated || l.SubtitleDropped {
		fmt.Fprintf(c.App.ErrWriter, "title laid out as %q, subtitle dropped: %v\n", l.Lines, l.SubtitleDropped)
	}

	if err := summary.Err(); err != nil {
		return cli.Exit(fmt.Sprintf("%d of %d regions failed", len(summary.Failed()), len(summary.Results)), 1)
	}

	return nil
}

func inspect(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	container, err := loadContainer(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 8, 1, ' ', 0)
	fmt.Fprintln(w, "SECTION\tOFFSET\tCOMPRESSED\tSIZE")
	for _, s := range container.Sections() {
		name := cbmd.SlotName(s.Slot)
		if s.Slot > 0 {
			name = vcbanner.Locale(s.Slot - 1).String()
		}
		fmt.Fprintf(w, "%s\t%#x\t%d\t%d\n", name, s.Offset, s.CompressedSize(), s.Size())
	}
	if container.HasAudio() {
		fmt.Fprintf(w, "audio\t%#x\t%d\t\n", container.AudioOffset(), container.AudioSize())
	} else {
		fmt.Fprintln(w, "audio\tmissing\t\t")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "SECTION\tTEXTURE\tFORMAT\tWIDTH\tHEIGHT\tLEVELS\tOFFSET\tLENGTH")
	for _, s := range container.Sections() {
		for _, t := range s.Textures {
			fmt.Fprintf(w, "%s\t%s\t%v\t%d\t%d\t%d\t%#x\t%d\n", cbmd.SlotName(s.Slot), t.Name, t.Format, t.Width, t.Height, t.Levels, t.Offset, t.Length)
		}
	}

	return w.Flush()
}

func extract(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	container, err := loadContainer(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	level := c.Int("level")
	t, b, err := container.Chunk(c.String("chunk"), level)
	if err != nil {
		return cli.Exit(err, 1)
	}

	m, err := texture.Decode(b, t.LevelWidth(level), t.LevelHeight(level), t.Format)
	if err != nil {
		return cli.Exit(err, 1)
	}

	output := c.String("output")
	if output == "" {
		output = fmt.Sprintf("%s_%d.png", t.Name, level)
	}

	if err := vcbanner.WriteFunc(output, func(w io.Writer) error {
		return png.Encode(w, m)
	}); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func add(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	db, err := openDB(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer db.Close()

	if err := db.AddGame(c.Args().First(), c.String("title"), c.String("subtitle"), c.String("label")); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func labelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "label",
		Aliases: []string{"l"},
		Usage:   "cartridge label image",
	}
}

func titleFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "title",
		Aliases: []string{"t"},
		Usage:   "title text",
	}
}

func subtitleFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "subtitle",
		Aliases: []string{"s"},
		Usage:   "subtitle text",
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "vcbanner"
	app.Usage = "Virtual Console home menu banner builder"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"VCBANNER_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "build",
			Usage:       "Build a banner for each region",
			Description: "Patches each regional template with the label image and title text.",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "templates",
					EnvVars: []string{"VCBANNER_TEMPLATES"},
					Value:   cwd,
					Usage:   "template directory",
				},
				&cli.StringFlag{
					Name:    "config",
					EnvVars: []string{"VCBANNER_CONFIG"},
					Usage:   "template manifest, defaults to " + vcbanner.ManifestName + " in the template directory",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   filepath.Join(cwd, "banners"),
					Usage:   "output directory",
				},
				labelFlag(),
				titleFlag(),
				subtitleFlag(),
				&cli.StringFlag{
					Name:  "rom",
					Usage: "look up anything not given in the database using this ROM",
				},
				&cli.GenericFlag{
					Name:  "background",
					Value: &vcbanner.Color{},
					Usage: "label padding colour, R,G,B, #RRGGBB or auto",
				},
				&cli.GenericFlag{
					Name:  "shell",
					Value: &vcbanner.Color{},
					Usage: "fill the shell texture with a colour, R,G,B, #RRGGBB or auto",
				},
				&cli.StringSliceFlag{
					Name:    "region",
					Aliases: []string{"r"},
					Usage:   "only build these regions",
				},
				&cli.IntFlag{
					Name:  "workers",
					Usage: "number of regions to build at once",
				},
			},
			Action: build,
		},
		{
			Name:      "inspect",
			Usage:     "List the sections and textures of a banner",
			ArgsUsage: "FILE",
			Action:    inspect,
		},
		{
			Name:      "extract",
			Usage:     "Extract a texture from a banner as PNG",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "chunk",
					Aliases: []string{"c"},
					Value:   vcbanner.DefaultChunks().Label,
					Usage:   "texture name",
				},
				&cli.IntFlag{
					Name:  "level",
					Usage: "mip level",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "output file, defaults to <CHUNK>_<LEVEL>.png",
				},
			},
			Action: extract,
		},
		{
			Name:      "add",
			Usage:     "Add a game to the database",
			ArgsUsage: "ROM",
			Flags: []cli.Flag{
				labelFlag(),
				titleFlag(),
				subtitleFlag(),
			},
			Action: add,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
