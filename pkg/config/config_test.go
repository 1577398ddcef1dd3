package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/golang/geo/s1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudorandom/emissions-globe/pkg/datasets"
)

func parse(t *testing.T, args ...string) Options {
	t.Helper()
	var o Options
	p, err := kong.New(&o, kong.Vars(Vars()), kong.Exit(func(int) { t.Fatal("kong exited") }))
	require.NoError(t, err)
	_, err = p.Parse(args)
	require.NoError(t, err)
	return o
}

func TestDefaults(t *testing.T) {
	o := parse(t)

	assert.Equal(t, 1968, o.MinYear)
	assert.Equal(t, 2018, o.MaxYear)
	assert.Equal(t, 2000, o.StartYear)
	assert.Equal(t, 2*time.Second, o.Interval)
	assert.Equal(t, 5, o.TopN)
	assert.InDelta(t, 2.0, o.Radius, 1e-9)
	assert.InDelta(t, 2e10, o.EmissionDivisor, 1)
	assert.InDelta(t, 0.015, o.DisasterPerLevel, 1e-12)
	assert.Equal(t, "info", o.LogLevel)
	assert.Equal(t, NaturalEarthLandURL, o.Boundaries)
	assert.Equal(t, DefaultSufferingPath, o.Suffering)
	assert.NoError(t, o.Validate())
}

func TestFlagsAndEnv(t *testing.T) {
	t.Setenv("GLOBE_START_YEAR", "1990")
	t.Setenv("GLOBE_EMISSIONS", "https://example.com/e.json")

	o := parse(t, "--top=3", "--data-centroids=c.csv", "--interval=500ms")
	assert.Equal(t, 1990, o.StartYear)
	assert.Equal(t, 3, o.TopN)
	assert.Equal(t, "c.csv", o.Centroids)
	assert.Equal(t, "https://example.com/e.json", o.Emissions)
	assert.Equal(t, 500*time.Millisecond, o.Interval)

	sources := o.Sources()
	require.Len(t, sources, 4)
	assert.Equal(t, datasets.Source{Kind: datasets.KindCentroids, Location: "c.csv"}, sources[0])
	assert.Equal(t, datasets.KindSuffering, sources[3].Kind)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"min after max", func(o *Options) { o.MinYear = 2020 }},
		{"start outside range", func(o *Options) { o.StartYear = 1900 }},
		{"zero interval", func(o *Options) { o.Interval = 0 }},
		{"no rankings", func(o *Options) { o.TopN = 0 }},
		{"zero radius", func(o *Options) { o.Radius = 0 }},
		{"zero divisor", func(o *Options) { o.EmissionDivisor = 0 }},
		{"negative segment", func(o *Options) { o.SegmentDegrees = -1 }},
		{"bad log level", func(o *Options) { o.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := parse(t)
			tt.mutate(&o)
			assert.Error(t, o.Validate())
		})
	}
}

func TestDerivedOptions(t *testing.T) {
	o := parse(t, "--radius=3", "--segment-degrees=5")

	assert.InDelta(t, 3.0, o.Scale().Radius, 1e-9)
	eng := o.Engine()
	assert.Equal(t, 2000, eng.StartYear)
	assert.Equal(t, 5, eng.TopN)
	assert.InDelta(t, float64(5*s1.Degree), float64(o.MeshStyle().MaxSegmentAngle), 1e-12)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "GLOBE_TEST_DOTENV_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o644))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv(key))
}
