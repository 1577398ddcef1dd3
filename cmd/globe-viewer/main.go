package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	_ "github.com/silbinarywolf/preferdiscretegpu"
	"go.uber.org/zap"

	"github.com/sudorandom/emissions-globe/pkg/config"
	"github.com/sudorandom/emissions-globe/pkg/datasets"
	"github.com/sudorandom/emissions-globe/pkg/globe"
	"github.com/sudorandom/emissions-globe/pkg/logging"
	"github.com/sudorandom/emissions-globe/pkg/markers"
	"github.com/sudorandom/emissions-globe/pkg/mesh"
	"github.com/sudorandom/emissions-globe/pkg/playback"
	"github.com/sudorandom/emissions-globe/pkg/render"
	"github.com/sudorandom/emissions-globe/pkg/utils"
	"github.com/sudorandom/emissions-globe/pkg/view"
)

type CLI struct {
	config.Options `embed:""`

	View     ViewCmd     `cmd:"" default:"withargs" help:"Open the globe (default)."`
	Rankings RankingsCmd `cmd:"" help:"Print the polluter and sufferer rankings for a year."`
}

type ViewCmd struct {
	Headless        bool    `help:"Advance years and log the rankings without opening a window."`
	Years           int     `help:"Stop headless playback after this many year advances. 0 runs until interrupted."`
	Width           int     `help:"Internal rendering width." default:"1920"`
	Height          int     `help:"Internal rendering height." default:"1080"`
	WindowWidth     int     `help:"Initial window width." default:"1280"`
	WindowHeight    int     `help:"Initial window height." default:"720"`
	TPS             int     `help:"Ticks per second (engine updates)." default:"60"`
	RotationSpeed   float64 `help:"Globe rotation in radians per tick while playing." default:"0.002"`
	FrameCaptureDir string  `help:"Write a PNG of the first frame of every year to this directory." env:"GLOBE_FRAME_CAPTURE_DIR"`
}

func (c *ViewCmd) Run(opts *config.Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opener := &utils.Opener{CacheDir: opts.CacheDir}
	boundaries := loadBoundaries(ctx, opener, opts)
	completions := datasets.NewLoader(opener).Load(ctx, opts.Sources())

	if c.Headless {
		engine := globe.NewEngine(logScene{}, opts.Engine())
		engine.SetBoundaries(boundaries)
		defer engine.Close()
		return c.runHeadless(ctx, engine, completions, opts)
	}

	scene := render.NewScene()
	engine := globe.NewEngine(scene, opts.Engine())
	engine.SetBoundaries(boundaries)
	defer engine.Close()

	game := render.NewGame(render.Config{
		Width:           c.Width,
		Height:          c.Height,
		Interval:        opts.Interval,
		RotationSpeed:   c.RotationSpeed,
		Radius:          opts.Radius,
		FrameCaptureDir: c.FrameCaptureDir,
	}, engine, scene, completions)

	ebiten.SetTPS(c.TPS)
	ebiten.SetWindowSize(c.WindowWidth, c.WindowHeight)
	ebiten.SetWindowTitle("Emissions Globe")
	return ebiten.RunGame(game)
}

func (c *ViewCmd) runHeadless(ctx context.Context, engine *globe.Engine, completions <-chan datasets.Completion, opts *config.Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	advanced := 0
	playback.Run(ctx, opts.Interval, func() {
		if completions != nil && !engine.Pump(completions) {
			completions = nil
		}
		if !engine.Tick() {
			return
		}
		logRankings(engine)
		advanced++
		if c.Years > 0 && advanced >= c.Years {
			cancel()
		}
	})
	return nil
}

type RankingsCmd struct {
	Year int `arg:"" help:"Year to rank."`
}

func (c *RankingsCmd) Run(opts *config.Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := globe.NewEngine(logScene{}, opts.Engine())
	for comp := range datasets.NewLoader(&utils.Opener{CacheDir: opts.CacheDir}).Load(ctx, opts.Sources()) {
		engine.Apply(comp)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !engine.Registry().Ready(datasets.ViewRankings) {
		return fmt.Errorf("rankings unavailable: centroids, emissions and a well-formed suffering table are required")
	}

	engine.SetYear(c.Year)
	if engine.CurrentYear() != c.Year {
		zap.S().Warnw("year clamped into range", "requested", c.Year, "year", engine.CurrentYear())
	}
	r := engine.Rankings()
	printEntries("Top polluters", engine.CurrentYear(), r.Polluters, render.FormatTonnes)
	printEntries("Top sufferers", engine.CurrentYear(), r.Sufferers, func(v float64) string { return fmt.Sprintf("%.2f", v) })
	return nil
}

func printEntries(title string, year int, entries []view.Entry, format func(float64) string) {
	fmt.Printf("%s (%d)\n", title, year)
	for i, e := range entries {
		fmt.Printf("%2d. %-24s %s\n", i+1, e.Country, format(e.Value))
	}
}

func logRankings(engine *globe.Engine) {
	r := engine.Rankings()
	polluters := make([]string, len(r.Polluters))
	for i, e := range r.Polluters {
		polluters[i] = e.Country
	}
	sufferers := make([]string, len(r.Sufferers))
	for i, e := range r.Sufferers {
		sufferers[i] = e.Country
	}
	zap.S().Infow("year",
		"year", engine.CurrentYear(),
		"emission_markers", engine.MarkerCount(view.KindEmission),
		"disaster_markers", engine.MarkerCount(view.KindDisaster),
		"polluters", polluters,
		"sufferers", sufferers,
	)
}

// logScene stands in for the ebiten scene when nothing is drawn.
type logScene struct{}

func (logScene) Add(h *markers.Handle) {}
func (logScene) Remove(h *markers.Handle) {}

// loadBoundaries builds the land outline mesh. A failure leaves the globe
// without outlines rather than stopping the viewer.
func loadBoundaries(ctx context.Context, opener *utils.Opener, opts *config.Options) *mesh.MeshGroup {
	if opts.Boundaries == "" {
		return nil
	}
	data, err := opener.ReadAll(ctx, opts.Boundaries, "boundaries")
	if err != nil {
		zap.S().Warnw("boundaries failed to load", "location", opts.Boundaries, "error", err)
		return nil
	}
	group, err := mesh.Build(data, opts.Radius, opts.MeshStyle())
	if err != nil {
		zap.S().Warnw("boundaries failed to decode", "location", opts.Boundaries, "error", err)
		return nil
	}
	zap.S().Infow("boundaries loaded", "loops", len(group.Loops), "segments", group.Segments(), "skipped", group.Skipped)
	return group
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("globe-viewer"),
		kong.Description("Emissions and natural disasters on a rotating globe, one year at a time."),
		kong.Vars(config.Vars()),
		kong.UsageOnError(),
	)

	logger, err := logging.Setup(cli.LogLevel, cli.Debug)
	ctx.FatalIfErrorf(err)
	defer func() { _ = logger.Sync() }()

	ctx.FatalIfErrorf(ctx.Run(&cli.Options))
}
