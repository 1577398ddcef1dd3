// Package datasets holds the independently loaded tables the globe views
// are derived from, and the ingestion code that validates them.
package datasets

import (
	"errors"
	"fmt"

	"github.com/sudorandom/emissions-globe/pkg/geo"
)

// ErrShapeMismatch is returned when a source decodes to the wrong JSON shape.
var ErrShapeMismatch = errors.New("unexpected dataset shape")

type Kind int

const (
	KindCentroids Kind = iota
	KindEmissions
	KindDisasters
	KindSuffering
)

var kindNames = [...]string{"centroids", "emissions", "disasters", "suffering"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func Kinds() []Kind {
	return []Kind{KindCentroids, KindEmissions, KindDisasters, KindSuffering}
}

type Centroid struct {
	Country string
	Key     string
	geo.Coordinate
}

type EmissionRecord struct {
	Year  int
	Raw   float64
	Value float64
}

type CountryEmissions struct {
	Country string
	Key     string
	Records []EmissionRecord
}

// ForYear returns the first record for year, matching how the source
// data is looked up.
func (c CountryEmissions) ForYear(year int) (EmissionRecord, bool) {
	for _, r := range c.Records {
		if r.Year == year {
			return r, true
		}
	}
	return EmissionRecord{}, false
}

type DisasterRecord struct {
	Year    int
	Level   int
	Types   string
	Country string
	geo.Coordinate
}

type SufferingRecord struct {
	Country string
	Key     string
	Year    int
	Index   float64
}

// SufferingTable distinguishes a payload that decoded to the wrong shape
// from an empty but valid one.
type SufferingTable struct {
	Records   []SufferingRecord
	Malformed bool
}

// ParseReport counts rows kept and rows dropped as malformed.
type ParseReport struct {
	Accepted int
	Dropped  int
}

func (r ParseReport) String() string {
	return fmt.Sprintf("%d accepted, %d dropped", r.Accepted, r.Dropped)
}
