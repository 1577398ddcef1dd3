package datasets

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sudorandom/emissions-globe/pkg/geo"
)

// number accepts a JSON number or a numeric string. Anything else leaves
// it unset so the row can be dropped instead of failing the whole file.
type number struct {
	v  float64
	ok bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	n.v, n.ok = parseFloat(s)
	return nil
}

// int truncates toward zero like the integer parsing the datasets were
// produced for ("2000.0" is year 2000).
func (n number) int() (int, bool) {
	if !n.ok || math.Abs(n.v) > math.MaxInt32 {
		return 0, false
	}
	return int(n.v), true
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var (
	countryColumns   = []string{"country", "name", "entity"}
	latitudeColumns  = []string{"latitude", "lat"}
	longitudeColumns = []string{"longitude", "lon", "lng"}
)

// ParseCentroids reads a CSV with a header row naming a country column and
// numeric latitude/longitude columns. Rows with unusable coordinates, blank
// names or a country already seen are dropped.
func ParseCentroids(r io.Reader) ([]Centroid, ParseReport, error) {
	var report ParseReport

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, report, fmt.Errorf("reading centroid header: %w", err)
	}
	countryCol := findColumn(header, countryColumns)
	latCol := findColumn(header, latitudeColumns)
	lonCol := findColumn(header, longitudeColumns)
	if countryCol < 0 || latCol < 0 || lonCol < 0 {
		return nil, report, fmt.Errorf("%w: centroid header %q needs country, latitude and longitude columns", ErrShapeMismatch, header)
	}

	var out []Centroid
	seen := make(map[string]bool)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				report.Dropped++
				zap.S().Debugw("dropping unreadable centroid row", "line", line, "error", err)
				continue
			}
			return nil, report, fmt.Errorf("reading centroids: %w", err)
		}

		if len(rec) <= max(countryCol, latCol, lonCol) {
			report.Dropped++
			continue
		}
		name := strings.TrimSpace(rec[countryCol])
		lat, latOK := parseFloat(rec[latCol])
		lon, lonOK := parseFloat(rec[lonCol])
		c := geo.Coordinate{Lat: lat, Lon: lon}
		key := CountryKey(name)
		if name == "" || !latOK || !lonOK || !c.Valid() || seen[key] {
			report.Dropped++
			zap.S().Debugw("dropping centroid row", "line", line, "country", name)
			continue
		}
		seen[key] = true
		out = append(out, Centroid{Country: name, Key: key, Coordinate: c})
		report.Accepted++
	}
	return out, report, nil
}

func findColumn(header []string, names []string) int {
	for _, want := range names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i
			}
		}
	}
	return -1
}

type emissionRow struct {
	Year  number `json:"year"`
	Raw   number `json:"raw"`
	Value number `json:"value"`
}

// ParseEmissions reads a JSON object mapping country name to a list of
// {year, raw, value} records. Countries keep the order they appear in the
// document, which later breaks ranking ties.
func ParseEmissions(r io.Reader) ([]CountryEmissions, ParseReport, error) {
	var report ParseReport
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, report, fmt.Errorf("reading emissions: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, report, fmt.Errorf("%w: emissions must be a JSON object", ErrShapeMismatch)
	}

	var out []CountryEmissions
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, report, fmt.Errorf("reading emissions: %w", err)
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, report, fmt.Errorf("reading emissions for %q: %w", name, err)
		}
		var rows []emissionRow
		if err := json.Unmarshal(raw, &rows); err != nil || strings.TrimSpace(name) == "" {
			report.Dropped++
			zap.S().Debugw("dropping emissions entry", "country", name)
			continue
		}

		records := make([]EmissionRecord, 0, len(rows))
		for _, row := range rows {
			year, yearOK := row.Year.int()
			if !yearOK || !row.Raw.ok {
				report.Dropped++
				continue
			}
			records = append(records, EmissionRecord{Year: year, Raw: row.Raw.v, Value: row.Value.v})
			report.Accepted++
		}

		key := CountryKey(name)
		if i, ok := index[key]; ok {
			out[i].Records = append(out[i].Records, records...)
			continue
		}
		index[key] = len(out)
		out = append(out, CountryEmissions{Country: strings.TrimSpace(name), Key: key, Records: records})
	}
	if _, err := dec.Token(); err != nil {
		return nil, report, fmt.Errorf("reading emissions: %w", err)
	}
	return out, report, nil
}

type disasterRow struct {
	Year         number `json:"year"`
	Latitude     number `json:"latitude"`
	Longitude    number `json:"longitude"`
	Level        number `json:"level"`
	Types        string `json:"disaster_types"`
	DisasterType string `json:"disastertype"`
	Country      string `json:"country"`
}

// ParseDisasters reads a JSON array of disaster records.
func ParseDisasters(r io.Reader) ([]DisasterRecord, ParseReport, error) {
	var report ParseReport
	var items []json.RawMessage
	if err := decodeArray(r, &items); err != nil {
		return nil, report, fmt.Errorf("reading disasters: %w", err)
	}

	out := make([]DisasterRecord, 0, len(items))
	for i, item := range items {
		var row disasterRow
		if err := json.Unmarshal(item, &row); err != nil {
			report.Dropped++
			continue
		}
		year, yearOK := row.Year.int()
		level, levelOK := row.Level.int()
		c := geo.Coordinate{Lat: row.Latitude.v, Lon: row.Longitude.v}
		if !yearOK || !levelOK || !row.Latitude.ok || !row.Longitude.ok || !c.Valid() {
			report.Dropped++
			zap.S().Debugw("dropping disaster record", "index", i)
			continue
		}
		types := row.Types
		if types == "" {
			types = row.DisasterType
		}
		out = append(out, DisasterRecord{Year: year, Level: level, Types: types, Country: row.Country, Coordinate: c})
		report.Accepted++
	}
	return out, report, nil
}

type sufferingRow struct {
	Country string `json:"country"`
	Year    number `json:"year"`
	Index   number `json:"suffering_index"`
}

// ParseSuffering reads a JSON array of suffering index records. A document
// of any other shape yields a table marked Malformed along with an error
// wrapping ErrShapeMismatch; rankings treat such a table as empty.
func ParseSuffering(r io.Reader) (SufferingTable, ParseReport, error) {
	var report ParseReport
	var items []json.RawMessage
	if err := decodeArray(r, &items); err != nil {
		if errors.Is(err, ErrShapeMismatch) {
			return SufferingTable{Malformed: true}, report, fmt.Errorf("reading suffering: %w", err)
		}
		return SufferingTable{}, report, fmt.Errorf("reading suffering: %w", err)
	}

	records := make([]SufferingRecord, 0, len(items))
	for _, item := range items {
		var row sufferingRow
		if err := json.Unmarshal(item, &row); err != nil {
			report.Dropped++
			continue
		}
		name := strings.TrimSpace(row.Country)
		year, yearOK := row.Year.int()
		if name == "" || !yearOK || !row.Index.ok {
			report.Dropped++
			continue
		}
		records = append(records, SufferingRecord{Country: name, Key: CountryKey(name), Year: year, Index: row.Index.v})
		report.Accepted++
	}
	return SufferingTable{Records: records}, report, nil
}

func decodeArray(r io.Reader, items *[]json.RawMessage) error {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return fmt.Errorf("%w: expected a JSON array", ErrShapeMismatch)
	}
	return json.Unmarshal(raw, items)
}
