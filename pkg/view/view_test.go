package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudorandom/emissions-globe/pkg/datasets"
	"github.com/sudorandom/emissions-globe/pkg/geo"
)

func centroid(name string, lat, lon float64) datasets.Centroid {
	return datasets.Centroid{Country: name, Key: datasets.CountryKey(name), Coordinate: geo.Coordinate{Lat: lat, Lon: lon}}
}

func emissions(name string, recs ...datasets.EmissionRecord) datasets.CountryEmissions {
	return datasets.CountryEmissions{Country: name, Key: datasets.CountryKey(name), Records: recs}
}

func suffering(name string, year int, index float64) datasets.SufferingRecord {
	return datasets.SufferingRecord{Country: name, Key: datasets.CountryKey(name), Year: year, Index: index}
}

func testTables() datasets.Tables {
	return datasets.Tables{
		Centroids: []datasets.Centroid{
			centroid("Alpha", 10, 20),
			centroid("Bravo", -30, 40),
			centroid("Charlie", 50, -60),
		},
		Emissions: []datasets.CountryEmissions{
			emissions("Alpha", datasets.EmissionRecord{Year: 2000, Raw: 100}, datasets.EmissionRecord{Year: 2001, Raw: 150}),
			emissions("Bravo", datasets.EmissionRecord{Year: 2000, Raw: 200}),
			emissions("Delta", datasets.EmissionRecord{Year: 2000, Raw: 9000}),
		},
		Disasters: []datasets.DisasterRecord{
			{Year: 2000, Level: 2, Types: "flood", Coordinate: geo.Coordinate{Lat: 1, Lon: 2}},
			{Year: 2000, Level: 4, Types: "storm", Coordinate: geo.Coordinate{Lat: 3, Lon: 4}},
			{Year: 1999, Level: 5, Types: "flood", Coordinate: geo.Coordinate{Lat: 5, Lon: 6}},
		},
		Suffering: datasets.SufferingTable{Records: []datasets.SufferingRecord{
			suffering("X-Land", 2000, 3),
			suffering("Y-Land", 2000, 5),
			suffering("X-Land", 2000, 4),
			suffering("Y-Land", 1999, 100),
		}},
	}
}

func TestEmissionMarkers(t *testing.T) {
	tables := testTables()
	s := DefaultScale()
	s.EmissionDivisor = 100

	got := EmissionMarkers(tables, 2000, s)
	require.Len(t, got, 2)
	assert.NotContains(t, got, "Charlie", "no emissions data")
	assert.NotContains(t, got, "Delta", "no centroid")

	alpha := got["Alpha"]
	assert.Equal(t, KindEmission, alpha.Kind)
	assert.InDelta(t, 1.0, alpha.Size, 1e-9)
	assert.Equal(t, geo.Project(10, 20, geo.DefaultRadius), alpha.Position)
	assert.InDelta(t, 2.0, got["Bravo"].Size, 1e-9)

	got2001 := EmissionMarkers(tables, 2001, s)
	assert.Len(t, got2001, 1)
	assert.Contains(t, got2001, "Alpha")
	assert.NotContains(t, got2001, "Bravo")
}

func TestEmissionMarkersPure(t *testing.T) {
	tables := testTables()
	s := DefaultScale()

	first := EmissionMarkers(tables, 2000, s)
	_ = EmissionMarkers(tables, 2001, s)
	second := EmissionMarkers(tables, 2000, s)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2, "building another year left the earlier map alone")
}

func TestEmissionMarkersSkipInvalidCentroid(t *testing.T) {
	tables := testTables()
	tables.Centroids[0].Lat = 123
	got := EmissionMarkers(tables, 2000, DefaultScale())
	assert.NotContains(t, got, "Alpha")
}

func TestDisasterMarkers(t *testing.T) {
	tables := testTables()
	got := DisasterMarkers(tables, 2000, DefaultScale())
	require.Len(t, got, 2)

	flood, ok := got[DisasterKey{Types: "flood", Lat: 1, Lon: 2, Year: 2000}.String()]
	require.True(t, ok)
	assert.Equal(t, KindDisaster, flood.Kind)
	assert.InDelta(t, 0.03, flood.Size, 1e-9)
	assert.InDelta(t, 0.06, got["storm_3_4_2000"].Size, 1e-9)

	for key := range got {
		assert.NotContains(t, key, "_1999", "year filter")
	}
	assert.NotContains(t, got, "flood_5_6_2000")
}

func TestDisasterMarkersDuplicateKeysCollapse(t *testing.T) {
	tables := datasets.Tables{Disasters: []datasets.DisasterRecord{
		{Year: 2000, Level: 1, Types: "quake", Coordinate: geo.Coordinate{Lat: 1.5, Lon: -2}},
		{Year: 2000, Level: 3, Types: "quake", Coordinate: geo.Coordinate{Lat: 1.5, Lon: -2}},
	}}
	got := DisasterMarkers(tables, 2000, DefaultScale())
	require.Len(t, got, 1)
	assert.InDelta(t, 0.045, got["quake_1.5_-2_2000"].Size, 1e-9, "last record wins")
}

func TestComputeRankings(t *testing.T) {
	r := ComputeRankings(testTables(), 2000, DefaultTopN)

	assert.Equal(t, []Entry{{"Bravo", 200}, {"Alpha", 100}}, r.Polluters, "Delta has no centroid")
	assert.Equal(t, []Entry{{"X-Land", 7}, {"Y-Land", 5}}, r.Sufferers)
}

func TestComputeRankingsTopNAndTies(t *testing.T) {
	tables := datasets.Tables{}
	for _, name := range []string{"Echo", "Foxtrot", "Golf", "Hotel", "India", "Juliett", "Kilo"} {
		tables.Centroids = append(tables.Centroids, centroid(name, 0, 0))
		tables.Emissions = append(tables.Emissions, emissions(name, datasets.EmissionRecord{Year: 2010, Raw: 50}))
	}
	tables.Emissions[5].Records[0].Raw = 60

	r := ComputeRankings(tables, 2010, 3)
	assert.Equal(t, []Entry{{"Juliett", 60}, {"Echo", 50}, {"Foxtrot", 50}}, r.Polluters)
	assert.Empty(t, r.Sufferers)
}

func TestComputeRankingsMalformedSuffering(t *testing.T) {
	tables := testTables()
	tables.Suffering = datasets.SufferingTable{Malformed: true}

	r := ComputeRankings(tables, 2000, DefaultTopN)
	assert.NotNil(t, r.Polluters)
	assert.Empty(t, r.Polluters)
	assert.Empty(t, r.Sufferers)
}

func TestBuildHonoursReadiness(t *testing.T) {
	tables := testTables()
	v := Build(tables, map[datasets.ViewKind]bool{datasets.ViewDisasters: true}, 2000, DefaultTopN, DefaultScale())

	assert.Equal(t, 2000, v.Year)
	assert.Empty(t, v.EmissionMarkers)
	assert.Len(t, v.DisasterMarkers, 2)
	assert.Empty(t, v.Rankings.Polluters)

	v = Build(tables, map[datasets.ViewKind]bool{
		datasets.ViewEmissions: true,
		datasets.ViewDisasters: true,
		datasets.ViewRankings:  true,
	}, 2000, DefaultTopN, DefaultScale())
	assert.Len(t, v.EmissionMarkers, 2)
	assert.Len(t, v.Rankings.Polluters, 2)
}

func TestChartBars(t *testing.T) {
	bars := ChartBars([]Entry{{"Bravo", 200}, {"Alpha", 100}, {"Zero", 0}}, 150)
	require.Len(t, bars, 3)
	assert.InDelta(t, 150, bars[0].Height, 1e-9)
	assert.InDelta(t, 75, bars[1].Height, 1e-9)
	assert.InDelta(t, 0, bars[2].Height, 1e-9)

	assert.Nil(t, ChartBars(nil, 100))
	assert.Nil(t, ChartBars([]Entry{{"A", 0}}, 100))
	assert.Nil(t, ChartBars([]Entry{{"A", 10}}, 0))
}
