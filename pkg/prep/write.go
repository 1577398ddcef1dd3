package prep

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/sudorandom/emissions-globe/pkg/datasets"
)

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

type emissionJSON struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
	Raw   float64 `json:"raw"`
}

// WriteEmissions writes emissions as a JSON object keyed by country name,
// keeping the slice order so datasets.ParseEmissions reads it back in the
// same order.
func WriteEmissions(w io.Writer, emissions []datasets.CountryEmissions) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("{")
	for i, e := range emissions {
		if i > 0 {
			bw.WriteString(",")
		}
		name, err := json.Marshal(e.Country)
		if err != nil {
			return fmt.Errorf("encoding country %q: %w", e.Country, err)
		}
		records := make([]emissionJSON, len(e.Records))
		for j, r := range e.Records {
			records[j] = emissionJSON{Year: r.Year, Value: r.Value, Raw: r.Raw}
		}
		body, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("encoding records for %q: %w", e.Country, err)
		}
		bw.WriteString("\n  ")
		bw.Write(name)
		bw.WriteString(": ")
		bw.Write(body)
	}
	bw.WriteString("\n}\n")
	return bw.Flush()
}

// WriteCentroids writes centroids as a COUNTRY,latitude,longitude CSV.
func WriteCentroids(w io.Writer, centroids []datasets.Centroid) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"COUNTRY", "latitude", "longitude"}); err != nil {
		return fmt.Errorf("writing centroid header: %w", err)
	}
	for _, c := range centroids {
		rec := []string{
			c.Country,
			strconv.FormatFloat(c.Lat, 'f', -1, 64),
			strconv.FormatFloat(c.Lon, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing centroid %q: %w", c.Country, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
