package datasets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountryKey(t *testing.T) {
	assert.Equal(t, "FRA", CountryKey("France"))
	assert.Equal(t, CountryKey("France"), CountryKey("  france "))
	assert.Equal(t, "atlantis federation", CountryKey(" Atlantis  Federation "))
	assert.Equal(t, "", CountryKey("   "))
}

func TestParseCentroids(t *testing.T) {
	csv := `COUNTRY,latitude,longitude,ISO
France,46.2,2.2,FR
Brazil,-14.2,-51.9,BR
Nowhere,abc,10,XX
Faraway,95,10,XX
,10,10,XX
france,40,1,FR
Short,1
Japan, 36.2 , 138.2 ,JP
`
	got, report, err := ParseCentroids(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ParseReport{Accepted: 3, Dropped: 5}, report)

	assert.Equal(t, "France", got[0].Country)
	assert.Equal(t, "FRA", got[0].Key)
	assert.InDelta(t, 46.2, got[0].Lat, 1e-9)
	assert.InDelta(t, 2.2, got[0].Lon, 1e-9)
	assert.Equal(t, "Japan", got[2].Country)
	assert.InDelta(t, 138.2, got[2].Lon, 1e-9)
}

func TestParseCentroidsHeader(t *testing.T) {
	got, _, err := ParseCentroids(strings.NewReader("name,lat,lng\nPeru,-9.2,-75.0\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Peru", got[0].Country)

	_, _, err = ParseCentroids(strings.NewReader("country,x,y\nPeru,1,2\n"))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, _, err = ParseCentroids(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseEmissions(t *testing.T) {
	doc := `{
		"Zimbabwe": [{"year": 2000, "value": 0.1, "raw": 100}, {"year": 2001, "raw": 110}],
		"Albania": [{"year": "2000", "raw": "5.5"}, {"year": null, "raw": 1}, {"year": 2002}],
		"Broken": {"year": 2000},
		"China": [{"year": 2000.0, "raw": 3.4e9}]
	}`
	got, report, err := ParseEmissions(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ParseReport{Accepted: 4, Dropped: 3}, report)

	// document order is preserved
	assert.Equal(t, "Zimbabwe", got[0].Country)
	assert.Equal(t, "Albania", got[1].Country)
	assert.Equal(t, "China", got[2].Country)

	rec, ok := got[1].ForYear(2000)
	require.True(t, ok)
	assert.InDelta(t, 5.5, rec.Raw, 1e-9)

	rec, ok = got[0].ForYear(2000)
	require.True(t, ok)
	assert.InDelta(t, 0.1, rec.Value, 1e-9)

	_, ok = got[0].ForYear(1999)
	assert.False(t, ok)
}

func TestParseEmissionsShape(t *testing.T) {
	_, _, err := ParseEmissions(strings.NewReader(`[{"year": 2000}]`))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, _, err = ParseEmissions(strings.NewReader(`{"A": [`))
	assert.Error(t, err)
}

func TestParseDisasters(t *testing.T) {
	doc := `[
		{"year": 2000, "latitude": 10.5, "longitude": 20.25, "level": 3, "disaster_types": "flood"},
		{"year": "1999", "latitude": "1", "longitude": "2", "level": "4.0", "disastertype": "storm", "country": "Chile"},
		{"year": 2000, "latitude": null, "longitude": 2, "level": 1},
		{"year": 2000, "latitude": 1, "longitude": 200, "level": 1},
		{"year": 2000, "latitude": 1, "longitude": 2, "level": "high"},
		"garbage"
	]`
	got, report, err := ParseDisasters(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ParseReport{Accepted: 2, Dropped: 4}, report)

	assert.Equal(t, "flood", got[0].Types)
	assert.Equal(t, 3, got[0].Level)
	assert.InDelta(t, 20.25, got[0].Lon, 1e-9)
	assert.Equal(t, 1999, got[1].Year)
	assert.Equal(t, 4, got[1].Level)
	assert.Equal(t, "storm", got[1].Types)
	assert.Equal(t, "Chile", got[1].Country)

	_, _, err = ParseDisasters(strings.NewReader(`{"year": 2000}`))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestParseSuffering(t *testing.T) {
	doc := `[
		{"country": "Kenya", "year": 2000, "suffering_index": 3},
		{"country": "Kenya", "year": 2000, "suffering_index": "4"},
		{"country": "", "year": 2000, "suffering_index": 1},
		{"country": "Peru", "year": 2000}
	]`
	got, report, err := ParseSuffering(strings.NewReader(doc))
	require.NoError(t, err)
	assert.False(t, got.Malformed)
	require.Len(t, got.Records, 2)
	assert.Equal(t, ParseReport{Accepted: 2, Dropped: 2}, report)
	assert.Equal(t, CountryKey("Kenya"), got.Records[1].Key)

	got, _, err = ParseSuffering(strings.NewReader(`{"Kenya": 3}`))
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.True(t, got.Malformed)

	got, _, err = ParseSuffering(strings.NewReader(`[oops`))
	assert.Error(t, err)
	assert.False(t, got.Malformed)
}
