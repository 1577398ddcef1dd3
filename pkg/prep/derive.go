package prep

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/sudorandom/emissions-globe/pkg/datasets"
)

// AggregatedDisaster is one marker-ready disaster record. The JSON shape
// is what datasets.ParseDisasters reads.
type AggregatedDisaster struct {
	Year         int     `json:"year"`
	LatRounded   float64 `json:"lat_rounded"`
	LonRounded   float64 `json:"lon_rounded"`
	Country      string  `json:"country"`
	Level        int     `json:"level"`
	DisasterType string  `json:"disastertype"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type siteKey struct {
	year     int
	lat, lon float64
}

// AggregateDisasters drops level 1 events and merges the rest by year and
// coordinates rounded to two decimals. Levels are summed and types joined;
// country and exact coordinates come from the first row of each group.
// Output is ordered by year, latitude and longitude.
func AggregateDisasters(rows []RawDisaster) []AggregatedDisaster {
	groups := make(map[siteKey]*AggregatedDisaster)
	types := make(map[siteKey][]string)
	var keys []siteKey
	for _, r := range rows {
		if r.Level <= 1 {
			continue
		}
		k := siteKey{year: r.Year, lat: round2(r.Lat), lon: round2(r.Lon)}
		g, ok := groups[k]
		if !ok {
			g = &AggregatedDisaster{
				Year:       r.Year,
				LatRounded: k.lat,
				LonRounded: k.lon,
				Country:    r.Country,
				Latitude:   r.Lat,
				Longitude:  r.Lon,
			}
			groups[k] = g
			keys = append(keys, k)
		}
		g.Level += r.Level
		types[k] = append(types[k], r.Type)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.year != b.year {
			return a.year < b.year
		}
		if a.lat != b.lat {
			return a.lat < b.lat
		}
		return a.lon < b.lon
	})

	out := make([]AggregatedDisaster, len(keys))
	for i, k := range keys {
		g := groups[k]
		g.DisasterType = strings.Join(types[k], ", ")
		out[i] = *g
	}
	return out
}

// SufferingRow is one country-year of the suffering index. The JSON shape
// is what datasets.ParseSuffering reads.
type SufferingRow struct {
	Country        string  `json:"country"`
	Year           int     `json:"year"`
	TotalLevel     float64 `json:"total_level"`
	NumDisasters   float64 `json:"num_disasters"`
	DisasterTypes  string  `json:"disaster_types"`
	Emissions      float64 `json:"emissions"`
	CumDisasters   float64 `json:"cum_disasters"`
	CumLevel       float64 `json:"cum_level"`
	CumEmissions   float64 `json:"cum_emissions"`
	SufferingIndex float64 `json:"suffering_index"`
}

// tonnesPerBillion converts cumulative emissions to billions of tonnes.
const tonnesPerBillion = 1e9

// SufferingIndex totals disasters per country and year, then accumulates
// level and emissions over each country's years. The index is cumulative
// level per billion tonnes of cumulative emissions, or 0 when the country
// has no emissions yet. Emissions are joined by country key; a missing
// year counts as 0. Rows are ordered by country then year.
func SufferingIndex(rows []RawDisaster, emissions []datasets.CountryEmissions) []SufferingRow {
	byKey := make(map[string]datasets.CountryEmissions, len(emissions))
	for _, e := range emissions {
		if _, ok := byKey[e.Key]; !ok {
			byKey[e.Key] = e
		}
	}

	type countryYear struct {
		country string
		year    int
	}
	groups := make(map[countryYear]*SufferingRow)
	seenTypes := make(map[countryYear]map[string]bool)
	var order []countryYear
	for _, r := range rows {
		if r.Country == "" {
			continue
		}
		k := countryYear{country: r.Country, year: r.Year}
		g, ok := groups[k]
		if !ok {
			g = &SufferingRow{Country: r.Country, Year: r.Year}
			groups[k] = g
			seenTypes[k] = make(map[string]bool)
			order = append(order, k)
		}
		g.TotalLevel += float64(r.Level)
		g.NumDisasters++
		if !seenTypes[k][r.Type] {
			seenTypes[k][r.Type] = true
			if g.DisasterTypes != "" {
				g.DisasterTypes += ", "
			}
			g.DisasterTypes += r.Type
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].country != order[j].country {
			return order[i].country < order[j].country
		}
		return order[i].year < order[j].year
	})

	out := make([]SufferingRow, 0, len(order))
	for start := 0; start < len(order); {
		end := start
		for end < len(order) && order[end].country == order[start].country {
			end++
		}
		country := order[start].country
		e, hasEmissions := byKey[datasets.CountryKey(country)]

		n := end - start
		levels := make([]float64, n)
		counts := make([]float64, n)
		emitted := make([]float64, n)
		for i, k := range order[start:end] {
			g := groups[k]
			if hasEmissions {
				if rec, ok := e.ForYear(k.year); ok {
					g.Emissions = rec.Raw
				}
			}
			levels[i], counts[i], emitted[i] = g.TotalLevel, g.NumDisasters, g.Emissions
		}
		floats.CumSum(levels, levels)
		floats.CumSum(counts, counts)
		floats.CumSum(emitted, emitted)

		for i, k := range order[start:end] {
			g := groups[k]
			g.CumLevel, g.CumDisasters, g.CumEmissions = levels[i], counts[i], emitted[i]
			if g.CumEmissions > 0 {
				g.SufferingIndex = g.CumLevel / (g.CumEmissions / tonnesPerBillion)
			}
			out = append(out, *g)
		}
		start = end
	}
	return out
}

// NormalizeEmissions groups rows by entity, sorted by name, and sets each
// record's value to its share of the largest emitter that year.
func NormalizeEmissions(rows []EmissionRow) []datasets.CountryEmissions {
	yearly := make(map[int][]float64)
	for _, r := range rows {
		yearly[r.Year] = append(yearly[r.Year], r.Raw)
	}
	maxByYear := make(map[int]float64, len(yearly))
	for year, values := range yearly {
		maxByYear[year] = floats.Max(values)
	}

	index := make(map[string]int)
	var out []datasets.CountryEmissions
	for _, r := range rows {
		i, ok := index[r.Entity]
		if !ok {
			i = len(out)
			index[r.Entity] = i
			out = append(out, datasets.CountryEmissions{Country: r.Entity, Key: datasets.CountryKey(r.Entity)})
		}
		rec := datasets.EmissionRecord{Year: r.Year, Raw: r.Raw}
		if m := maxByYear[r.Year]; m != 0 {
			rec.Value = r.Raw / m
		}
		out[i].Records = append(out[i].Records, rec)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out
}
