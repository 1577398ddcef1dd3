package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	geojson "github.com/paulmach/go.geojson"
	"go.uber.org/zap"

	"github.com/sudorandom/emissions-globe/pkg/config"
	"github.com/sudorandom/emissions-globe/pkg/datasets"
	"github.com/sudorandom/emissions-globe/pkg/logging"
	"github.com/sudorandom/emissions-globe/pkg/prep"
	"github.com/sudorandom/emissions-globe/pkg/utils"
)

type CLI struct {
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info" env:"GLOBE_LOG_LEVEL"`
	Debug    bool   `help:"Human-readable development logging." env:"GLOBE_DEBUG"`
	CacheDir string `help:"Directory to cache downloaded inputs in." env:"GLOBE_CACHE_DIR"`

	Centroids CentroidsCmd `cmd:"" help:"Derive country centroids from a boundary GeoJSON."`
	Disasters DisastersCmd `cmd:"" help:"Aggregate raw disaster rows into marker records."`
	Suffering SufferingCmd `cmd:"" help:"Compute the cumulative suffering index per country and year."`
	Emissions EmissionsCmd `cmd:"" help:"Normalise annual emissions per year and group them by country."`
}

type OutputFlag struct {
	Output string `short:"o" help:"Output file. - writes to stdout." default:"-"`
}

// write runs fn against the output file, replacing it only on success.
func (o OutputFlag) write(fn func(io.Writer) error) error {
	if o.Output == "-" || o.Output == "" {
		return fn(os.Stdout)
	}
	tmp := o.Output + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp, o.Output); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	zap.S().Infow("wrote output", "path", o.Output)
	return nil
}

type CentroidsCmd struct {
	OutputFlag `embed:""`
	Input        string `arg:"" help:"Boundary GeoJSON (path or URL)."`
	NameProperty string `help:"Feature property holding the country name." default:"ADMIN"`
}

func (c *CentroidsCmd) Run(ctx context.Context, opener *utils.Opener) error {
	data, err := opener.ReadAll(ctx, c.Input, "boundaries")
	if err != nil {
		return err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", c.Input, err)
	}
	centroids := datasets.CentroidsFromFeatures(fc, c.NameProperty)
	zap.S().Infow("derived centroids", "features", len(fc.Features), "centroids", len(centroids))
	return c.write(func(w io.Writer) error { return prep.WriteCentroids(w, centroids) })
}

type DisastersCmd struct {
	OutputFlag `embed:""`
	Inputs []string `arg:"" help:"Raw disaster CSV files (paths or URLs), concatenated in order."`
}

func (c *DisastersCmd) Run(ctx context.Context, opener *utils.Opener) error {
	rows, err := readDisasters(ctx, opener, c.Inputs)
	if err != nil {
		return err
	}
	out := prep.AggregateDisasters(rows)
	zap.S().Infow("aggregated disasters", "rows", len(rows), "records", len(out))
	return c.write(func(w io.Writer) error { return prep.WriteJSON(w, out) })
}

type SufferingCmd struct {
	OutputFlag `embed:""`
	Inputs    []string `arg:"" help:"Raw disaster CSV files (paths or URLs), concatenated in order."`
	Emissions string   `help:"Normalised emissions JSON (path or URL)." default:"${emissions}"`
}

func (c *SufferingCmd) Run(ctx context.Context, opener *utils.Opener) error {
	rows, err := readDisasters(ctx, opener, c.Inputs)
	if err != nil {
		return err
	}

	rc, err := opener.Open(ctx, c.Emissions, "emissions")
	if err != nil {
		return err
	}
	defer rc.Close()
	emissions, report, err := datasets.ParseEmissions(rc)
	if err != nil {
		return err
	}
	zap.S().Infow("read emissions", "location", c.Emissions, "report", report.String())

	out := prep.SufferingIndex(rows, emissions)
	return c.write(func(w io.Writer) error { return prep.WriteJSON(w, out) })
}

type EmissionsCmd struct {
	OutputFlag `embed:""`
	Input string `arg:"" help:"Annual CO2 emissions CSV (path or URL)."`
}

func (c *EmissionsCmd) Run(ctx context.Context, opener *utils.Opener) error {
	rc, err := opener.Open(ctx, c.Input, "emissions")
	if err != nil {
		return err
	}
	defer rc.Close()
	rows, report, err := prep.ParseEmissionRows(rc)
	if err != nil {
		return err
	}
	zap.S().Infow("read emissions", "location", c.Input, "report", report.String())

	out := prep.NormalizeEmissions(rows)
	return c.write(func(w io.Writer) error { return prep.WriteEmissions(w, out) })
}

func readDisasters(ctx context.Context, opener *utils.Opener, inputs []string) ([]prep.RawDisaster, error) {
	var all []prep.RawDisaster
	for _, in := range inputs {
		rc, err := opener.Open(ctx, in, "disasters")
		if err != nil {
			return nil, err
		}
		rows, report, err := prep.ParseRawDisasters(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in, err)
		}
		zap.S().Infow("read disasters", "location", in, "report", report.String())
		all = append(all, rows...)
	}
	return all, nil
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("globe-prep"),
		kong.Description("Derive the emissions globe datasets from raw exports."),
		kong.Vars(config.Vars()),
		kong.UsageOnError(),
	)

	logger, err := logging.Setup(cli.LogLevel, cli.Debug)
	kctx.FatalIfErrorf(err)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.FatalIfErrorf(kctx.Run(&utils.Opener{CacheDir: cli.CacheDir}))
}
