// Package prep derives the viewer's datasets from raw disaster and
// emissions exports.
package prep

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sudorandom/emissions-globe/pkg/datasets"
)

var ErrMissingColumn = errors.New("missing column")

// RawDisaster is one row of the geocoded disaster export.
type RawDisaster struct {
	Year    int
	Level   int
	Type    string
	Country string
	Lat     float64
	Lon     float64
}

// EmissionRow is one row of the per-country annual CO2 export.
type EmissionRow struct {
	Entity string
	Code   string
	Year   int
	Raw    float64
}

type csvTable struct {
	r      *csv.Reader
	header map[string]int
}

func newCSVTable(r io.Reader) (*csvTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	t := &csvTable{r: cr, header: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, ok := t.header[h]; !ok {
			t.header[h] = i
		}
	}
	return t, nil
}

// columns resolves each name to an index, matching exactly first and then
// by prefix.
func (t *csvTable) columns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		col, ok := t.header[name]
		if !ok {
			col = -1
			for h, j := range t.header {
				if strings.HasPrefix(h, name) && (col == -1 || j < col) {
					col = j
				}
			}
		}
		if col == -1 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		idx[i] = col
	}
	return idx, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseRawDisasters reads the disaster CSV. It needs year, level,
// disastertype, latitude, longitude and country columns.
func ParseRawDisasters(r io.Reader) ([]RawDisaster, datasets.ParseReport, error) {
	var report datasets.ParseReport
	t, err := newCSVTable(r)
	if err != nil {
		return nil, report, fmt.Errorf("reading disasters: %w", err)
	}
	cols, err := t.columns("year", "level", "disastertype", "latitude", "longitude", "country")
	if err != nil {
		return nil, report, fmt.Errorf("reading disasters: %w", err)
	}

	var out []RawDisaster
	for line := 2; ; line++ {
		rec, err := t.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("reading disasters line %d: %w", line, err)
		}
		year, yearOK := parseNumber(field(rec, cols[0]))
		level, levelOK := parseNumber(field(rec, cols[1]))
		lat, latOK := parseNumber(field(rec, cols[3]))
		lon, lonOK := parseNumber(field(rec, cols[4]))
		if !yearOK || !levelOK || !latOK || !lonOK {
			report.Dropped++
			zap.S().Debugw("dropping disaster row", "line", line)
			continue
		}
		out = append(out, RawDisaster{
			Year:    int(year),
			Level:   int(level),
			Type:    field(rec, cols[2]),
			Country: field(rec, cols[5]),
			Lat:     lat,
			Lon:     lon,
		})
		report.Accepted++
	}
	return out, report, nil
}

// ParseEmissionRows reads the annual emissions CSV: Entity, Code, Year and
// a column starting with "annual co" holding the tonnes emitted.
func ParseEmissionRows(r io.Reader) ([]EmissionRow, datasets.ParseReport, error) {
	var report datasets.ParseReport
	t, err := newCSVTable(r)
	if err != nil {
		return nil, report, fmt.Errorf("reading emissions: %w", err)
	}
	cols, err := t.columns("entity", "code", "year", "annual co")
	if err != nil {
		return nil, report, fmt.Errorf("reading emissions: %w", err)
	}

	var out []EmissionRow
	for line := 2; ; line++ {
		rec, err := t.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("reading emissions line %d: %w", line, err)
		}
		entity := field(rec, cols[0])
		year, yearOK := parseNumber(field(rec, cols[2]))
		raw, rawOK := parseNumber(field(rec, cols[3]))
		if entity == "" || !yearOK || !rawOK {
			report.Dropped++
			continue
		}
		out = append(out, EmissionRow{Entity: entity, Code: field(rec, cols[1]), Year: int(year), Raw: raw})
		report.Accepted++
	}
	return out, report, nil
}
