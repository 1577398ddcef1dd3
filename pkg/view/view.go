// Package view derives the per-year markers and rankings shown on the
// globe. Every function here is pure: the same tables and year always give
// structurally equal output, and nothing returned aliases the inputs.
package view

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/sudorandom/emissions-globe/pkg/datasets"
	"github.com/sudorandom/emissions-globe/pkg/geo"
)

type Kind int

const (
	KindEmission Kind = iota
	KindDisaster
)

func (k Kind) String() string {
	switch k {
	case KindEmission:
		return "emission"
	case KindDisaster:
		return "disaster"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type MarkerSpec struct {
	Position geo.Point
	Kind     Kind
	Size     float64
}

// Scale holds the presentation constants that turn data values into
// marker sizes.
type Scale struct {
	Radius           float64
	EmissionDivisor  float64
	DisasterPerLevel float64
}

func DefaultScale() Scale {
	return Scale{
		Radius:           geo.DefaultRadius,
		EmissionDivisor:  2e10,
		DisasterPerLevel: 0.015,
	}
}

// EmissionMarkers places one marker per centroid country that has an
// emission record for year, keyed by the centroid's country name.
func EmissionMarkers(t datasets.Tables, year int, s Scale) map[string]MarkerSpec {
	byKey := make(map[string]datasets.CountryEmissions, len(t.Emissions))
	for _, e := range t.Emissions {
		if _, ok := byKey[e.Key]; !ok {
			byKey[e.Key] = e
		}
	}

	out := make(map[string]MarkerSpec)
	for _, c := range t.Centroids {
		if !c.Valid() {
			continue
		}
		e, ok := byKey[c.Key]
		if !ok {
			continue
		}
		rec, ok := e.ForYear(year)
		if !ok {
			continue
		}
		size := rec.Raw / s.EmissionDivisor
		if !(size > 0) {
			continue
		}
		out[c.Country] = MarkerSpec{
			Position: c.Project(s.Radius),
			Kind:     KindEmission,
			Size:     size,
		}
	}
	return out
}

// DisasterKey identifies a disaster marker. Records sharing all four
// fields collapse into one marker.
type DisasterKey struct {
	Types    string
	Lat, Lon float64
	Year     int
}

func (k DisasterKey) String() string {
	return k.Types + "_" +
		strconv.FormatFloat(k.Lat, 'f', -1, 64) + "_" +
		strconv.FormatFloat(k.Lon, 'f', -1, 64) + "_" +
		strconv.Itoa(k.Year)
}

// DisasterMarkers places a marker for every disaster recorded in exactly
// year, sized linearly by severity level. Later records win on key clashes.
func DisasterMarkers(t datasets.Tables, year int, s Scale) map[string]MarkerSpec {
	out := make(map[string]MarkerSpec)
	for _, d := range t.Disasters {
		if d.Year != year || !d.Valid() {
			continue
		}
		size := s.DisasterPerLevel * float64(d.Level)
		if !(size > 0) {
			continue
		}
		key := DisasterKey{Types: d.Types, Lat: d.Lat, Lon: d.Lon, Year: year}
		out[key.String()] = MarkerSpec{
			Position: d.Project(s.Radius),
			Kind:     KindDisaster,
			Size:     size,
		}
	}
	return out
}

type Entry struct {
	Country string
	Value   float64
}

type Rankings struct {
	Polluters []Entry
	Sufferers []Entry
}

const DefaultTopN = 5

// ComputeRankings returns the top n polluters and sufferers for year.
//
// Polluters only consider countries with a centroid and take the single
// record for the year. Sufferers sum every record for the country and
// year. Both sorts are stable so ties keep input order. A malformed
// suffering table yields empty rankings.
func ComputeRankings(t datasets.Tables, year, n int) Rankings {
	if t.Suffering.Malformed || n <= 0 {
		return Rankings{Polluters: []Entry{}, Sufferers: []Entry{}}
	}
	return Rankings{
		Polluters: topPolluters(t, year, n),
		Sufferers: topSufferers(t, year, n),
	}
}

func topPolluters(t datasets.Tables, year, n int) []Entry {
	names := make(map[string]string, len(t.Centroids))
	for _, c := range t.Centroids {
		if _, ok := names[c.Key]; !ok {
			names[c.Key] = c.Country
		}
	}

	entries := []Entry{}
	for _, e := range t.Emissions {
		name, ok := names[e.Key]
		if !ok {
			continue
		}
		if rec, ok := e.ForYear(year); ok {
			entries = append(entries, Entry{Country: name, Value: rec.Raw})
		}
	}
	return top(entries, n)
}

func topSufferers(t datasets.Tables, year, n int) []Entry {
	entries := []Entry{}
	index := make(map[string]int)
	for _, r := range t.Suffering.Records {
		if r.Year != year {
			continue
		}
		if i, ok := index[r.Key]; ok {
			entries[i].Value += r.Index
			continue
		}
		index[r.Key] = len(entries)
		entries = append(entries, Entry{Country: r.Country, Value: r.Index})
	}
	return top(entries, n)
}

func top(entries []Entry, n int) []Entry {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// YearView is everything drawn for one year. It is rebuilt from scratch on
// every year change.
type YearView struct {
	Year            int
	EmissionMarkers map[string]MarkerSpec
	DisasterMarkers map[string]MarkerSpec
	Rankings        Rankings
}

// Build computes the views whose readiness gate is open. Closed views are
// left empty.
func Build(t datasets.Tables, ready map[datasets.ViewKind]bool, year, n int, s Scale) YearView {
	v := YearView{
		Year:            year,
		EmissionMarkers: map[string]MarkerSpec{},
		DisasterMarkers: map[string]MarkerSpec{},
		Rankings:        Rankings{Polluters: []Entry{}, Sufferers: []Entry{}},
	}
	if ready[datasets.ViewEmissions] {
		v.EmissionMarkers = EmissionMarkers(t, year, s)
	}
	if ready[datasets.ViewDisasters] {
		v.DisasterMarkers = DisasterMarkers(t, year, s)
	}
	if ready[datasets.ViewRankings] {
		v.Rankings = ComputeRankings(t, year, n)
	}
	return v
}
