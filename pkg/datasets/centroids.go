package datasets

import (
	geojson "github.com/paulmach/go.geojson"
	"gonum.org/v1/gonum/stat"

	"github.com/sudorandom/emissions-globe/pkg/geo"
)

// CentroidsFromFeatures derives one centroid per Polygon or MultiPolygon
// feature as the plain mean of every ring vertex. It is a quick
// representative point for marker placement, not an area centroid.
// Features without a usable name or vertices are skipped.
func CentroidsFromFeatures(fc *geojson.FeatureCollection, nameProperty string) []Centroid {
	if fc == nil {
		return nil
	}
	var out []Centroid
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		name := f.PropertyMustString(nameProperty, "")
		if name == "" {
			continue
		}

		var rings [][][]float64
		switch {
		case f.Geometry.IsPolygon():
			rings = f.Geometry.Polygon
		case f.Geometry.IsMultiPolygon():
			for _, poly := range f.Geometry.MultiPolygon {
				rings = append(rings, poly...)
			}
		default:
			continue
		}

		var lons, lats []float64
		for _, ring := range rings {
			for _, p := range ring {
				if len(p) < 2 || !geo.ValidLatLon(p[1], p[0]) {
					continue
				}
				lons = append(lons, p[0])
				lats = append(lats, p[1])
			}
		}
		if len(lats) == 0 {
			continue
		}
		out = append(out, Centroid{
			Country:    name,
			Key:        CountryKey(name),
			Coordinate: geo.Coordinate{Lat: stat.Mean(lats, nil), Lon: stat.Mean(lons, nil)},
		})
	}
	return out
}
