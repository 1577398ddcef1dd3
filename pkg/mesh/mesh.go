// Package mesh turns GeoJSON boundaries into line loops on the globe sphere.
package mesh

import (
	"encoding/json"
	"fmt"
	"image/color"

	"github.com/golang/geo/s1"
	geojson "github.com/paulmach/go.geojson"
	"go.uber.org/zap"

	"github.com/sudorandom/emissions-globe/pkg/geo"
)

var DefaultColor = color.RGBA{128, 255, 128, 255}

type Style struct {
	Color   color.RGBA
	Opacity float64
	// MaxSegmentAngle densifies long edges along great circles when > 0.
	// Zero keeps straight chords between the projected vertices.
	MaxSegmentAngle s1.Angle
}

func DefaultStyle() Style {
	return Style{Color: DefaultColor, Opacity: 1}
}

// LineLoop is one projected ring or line. Closed loops connect the last
// point back to the first.
type LineLoop struct {
	Points []geo.Point
	Closed bool
}

// Segments is the number of line segments drawn for the loop.
func (l LineLoop) Segments() int {
	switch {
	case len(l.Points) < 2:
		return 0
	case l.Closed:
		return len(l.Points)
	default:
		return len(l.Points) - 1
	}
}

// Edges calls fn for each drawn segment in order.
func (l LineLoop) Edges(fn func(a, b geo.Point)) {
	n := len(l.Points)
	if n < 2 {
		return
	}
	for i := 0; i < n-1; i++ {
		fn(l.Points[i], l.Points[i+1])
	}
	if l.Closed {
		fn(l.Points[n-1], l.Points[0])
	}
}

type MeshGroup struct {
	Loops   []LineLoop
	Style   Style
	Radius  float64
	Skipped int
}

func (g *MeshGroup) Segments() int {
	total := 0
	for _, l := range g.Loops {
		total += l.Segments()
	}
	return total
}

// Build decodes a GeoJSON document and builds its boundary mesh. The
// document may be a FeatureCollection, a single Feature or a bare geometry.
func Build(data []byte, radius float64, style Style) (*MeshGroup, error) {
	fc, err := decode(data)
	if err != nil {
		return nil, err
	}
	return BuildFeatures(fc, radius, style), nil
}

func decode(data []byte) (*geojson.FeatureCollection, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decoding geojson: %w", err)
	}

	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decoding feature collection: %w", err)
		}
		return fc, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decoding feature: %w", err)
		}
		fc := geojson.NewFeatureCollection()
		fc.AddFeature(f)
		return fc, nil
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("decoding geometry: %w", err)
		}
		fc := geojson.NewFeatureCollection()
		fc.AddFeature(geojson.NewFeature(g))
		return fc, nil
	}
}

// BuildFeatures projects every ring of every feature. Malformed rings are
// skipped and counted in Skipped; the build itself never fails.
func BuildFeatures(fc *geojson.FeatureCollection, radius float64, style Style) *MeshGroup {
	g := &MeshGroup{Style: style, Radius: radius}
	if fc == nil {
		return g
	}
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			g.Skipped++
			zap.S().Warnw("skipping feature without geometry", "feature", i)
			continue
		}
		g.addGeometry(i, f.Geometry)
	}
	return g
}

func (g *MeshGroup) addGeometry(feature int, geom *geojson.Geometry) {
	switch geom.Type {
	case geojson.GeometryPolygon:
		for _, ring := range geom.Polygon {
			g.addRing(feature, ring, true)
		}
	case geojson.GeometryMultiPolygon:
		for _, poly := range geom.MultiPolygon {
			for _, ring := range poly {
				g.addRing(feature, ring, true)
			}
		}
	case geojson.GeometryLineString:
		g.addRing(feature, geom.LineString, false)
	case geojson.GeometryMultiLineString:
		for _, line := range geom.MultiLineString {
			g.addRing(feature, line, false)
		}
	case geojson.GeometryCollection:
		for _, child := range geom.Geometries {
			if child != nil {
				g.addGeometry(feature, child)
			}
		}
	default:
		zap.S().Debugw("ignoring unsupported geometry", "feature", feature, "type", geom.Type)
	}
}

func (g *MeshGroup) addRing(feature int, ring [][]float64, closed bool) {
	loop, ok := projectRing(ring, closed, g.Radius, g.Style.MaxSegmentAngle)
	if !ok {
		g.Skipped++
		zap.S().Warnw("skipping malformed ring", "feature", feature, "vertices", len(ring))
		return
	}
	g.Loops = append(g.Loops, loop)
}

// projectRing converts [lon, lat] pairs. Any bad vertex rejects the whole
// ring so a single NaN cannot draw a chord through the globe.
func projectRing(ring [][]float64, closed bool, radius float64, maxStep s1.Angle) (LineLoop, bool) {
	coords := make([]geo.Coordinate, 0, len(ring))
	for _, pos := range ring {
		if len(pos) < 2 {
			return LineLoop{}, false
		}
		c := geo.Coordinate{Lat: pos[1], Lon: pos[0]}
		if !c.Valid() {
			return LineLoop{}, false
		}
		coords = append(coords, c)
	}
	if closed && len(coords) > 1 && coords[0] == coords[len(coords)-1] {
		coords = coords[:len(coords)-1]
	}
	if len(coords) < 2 {
		return LineLoop{}, false
	}

	pts := make([]geo.Point, 0, len(coords))
	for i, c := range coords {
		p := c.Project(radius)
		if i > 0 {
			pts = append(pts, geo.Subdivide(pts[len(pts)-1], p, maxStep)...)
		}
		pts = append(pts, p)
	}
	if closed && maxStep > 0 {
		pts = append(pts, geo.Subdivide(pts[len(pts)-1], pts[0], maxStep)...)
	}
	return LineLoop{Points: pts, Closed: closed}, true
}
