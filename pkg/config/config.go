// Package config holds the viewer options shared by the commands. Options
// are read from flags with environment fallbacks; a .env file is loaded
// first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/golang/geo/s1"
	"github.com/joho/godotenv"

	"github.com/sudorandom/emissions-globe/pkg/datasets"
	"github.com/sudorandom/emissions-globe/pkg/globe"
	"github.com/sudorandom/emissions-globe/pkg/logging"
	"github.com/sudorandom/emissions-globe/pkg/mesh"
	"github.com/sudorandom/emissions-globe/pkg/view"
)

type Datasets struct {
	Boundaries string `help:"Land boundary GeoJSON (path or URL)." default:"${boundaries}" env:"GLOBE_BOUNDARIES"`
	Centroids  string `help:"Country centroid CSV (path or URL)." default:"${centroids}" env:"GLOBE_CENTROIDS"`
	Emissions  string `help:"Per-country emissions JSON (path or URL)." default:"${emissions}" env:"GLOBE_EMISSIONS"`
	Disasters  string `help:"Aggregated disasters JSON (path or URL)." default:"${disasters}" env:"GLOBE_DISASTERS"`
	Suffering  string `help:"Suffering index JSON (path or URL)." default:"${suffering}" env:"GLOBE_SUFFERING"`
	CacheDir   string `help:"Directory to cache downloaded datasets in. Empty disables caching." env:"GLOBE_CACHE_DIR"`
}

// Sources lists the table sources in load order. Boundaries are loaded
// separately since they are not a registry table.
func (d Datasets) Sources() []datasets.Source {
	return []datasets.Source{
		{Kind: datasets.KindCentroids, Location: d.Centroids},
		{Kind: datasets.KindEmissions, Location: d.Emissions},
		{Kind: datasets.KindDisasters, Location: d.Disasters},
		{Kind: datasets.KindSuffering, Location: d.Suffering},
	}
}

type Options struct {
	Datasets `embed:"" prefix:"data-"`

	MinYear   int           `help:"First selectable year." default:"1968" env:"GLOBE_MIN_YEAR"`
	MaxYear   int           `help:"Last selectable year." default:"2018" env:"GLOBE_MAX_YEAR"`
	StartYear int           `help:"Year shown at startup." default:"2000" env:"GLOBE_START_YEAR"`
	Interval  time.Duration `help:"Time between automatic year advances." default:"2s" env:"GLOBE_INTERVAL"`
	TopN      int           `name:"top" help:"Entries per ranking list." default:"5" env:"GLOBE_TOP"`

	Radius           float64 `help:"Globe radius in world units." default:"2" env:"GLOBE_RADIUS"`
	EmissionDivisor  float64 `help:"Tonnes of CO2 per world unit of emission marker radius." default:"2e10" env:"GLOBE_EMISSION_DIVISOR"`
	DisasterPerLevel float64 `help:"Disaster marker radius per severity level." default:"0.015" env:"GLOBE_DISASTER_PER_LEVEL"`
	SegmentDegrees   float64 `help:"Subdivide boundary edges longer than this many degrees. 0 disables." default:"0" env:"GLOBE_SEGMENT_DEGREES"`

	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info" env:"GLOBE_LOG_LEVEL"`
	Debug    bool   `help:"Human-readable development logging." env:"GLOBE_DEBUG"`
}

// Vars are the kong interpolation variables for the dataset defaults.
func Vars() map[string]string {
	return map[string]string{
		"boundaries": NaturalEarthLandURL,
		"centroids":  DefaultCentroidsPath,
		"emissions":  DefaultEmissionsPath,
		"disasters":  DefaultDisastersPath,
		"suffering":  DefaultSufferingPath,
	}
}

// Validate is called by kong after parsing.
func (o *Options) Validate() error {
	if o.MinYear > o.MaxYear {
		return fmt.Errorf("min year %d is after max year %d", o.MinYear, o.MaxYear)
	}
	if o.StartYear < o.MinYear || o.StartYear > o.MaxYear {
		return fmt.Errorf("start year %d outside [%d, %d]", o.StartYear, o.MinYear, o.MaxYear)
	}
	if o.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", o.Interval)
	}
	if o.TopN < 1 {
		return fmt.Errorf("top must be at least 1, got %d", o.TopN)
	}
	if !(o.Radius > 0) {
		return fmt.Errorf("radius must be positive, got %g", o.Radius)
	}
	if !(o.EmissionDivisor > 0) {
		return fmt.Errorf("emission divisor must be positive, got %g", o.EmissionDivisor)
	}
	if o.DisasterPerLevel < 0 || o.SegmentDegrees < 0 {
		return errors.New("marker and segment scales must not be negative")
	}
	if !slices.Contains(logging.Levels, o.LogLevel) {
		return fmt.Errorf("invalid log level: %s", o.LogLevel)
	}
	return nil
}

func (o *Options) Scale() view.Scale {
	return view.Scale{
		Radius:           o.Radius,
		EmissionDivisor:  o.EmissionDivisor,
		DisasterPerLevel: o.DisasterPerLevel,
	}
}

func (o *Options) Engine() globe.Options {
	return globe.Options{
		MinYear:   o.MinYear,
		MaxYear:   o.MaxYear,
		StartYear: o.StartYear,
		TopN:      o.TopN,
		Scale:     o.Scale(),
	}
}

func (o *Options) MeshStyle() mesh.Style {
	style := mesh.DefaultStyle()
	style.MaxSegmentAngle = s1.Angle(o.SegmentDegrees) * s1.Degree
	return style
}

// LoadDotEnv loads each file that exists. Variables already set in the
// environment win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}
