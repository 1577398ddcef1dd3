// Package geo maps geographic coordinates onto the globe sphere.
package geo

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// DefaultRadius is the sphere radius the boundary mesh and markers share.
const DefaultRadius = 2.0

// Point is a position in globe space.
type Point = r3.Vector

type Coordinate struct {
	Lat, Lon float64
}

// Valid reports whether c is finite and inside [-90,90] x [-180,180].
// Out of range coordinates are rejected, never clamped.
func (c Coordinate) Valid() bool {
	return ValidLatLon(c.Lat, c.Lon)
}

func ValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Project places lat/lon on a sphere of the given radius. Longitude -180
// sits on the +x seam and latitude 90 on +y; markers and boundary meshes
// both rely on this exact orientation.
func Project(lat, lon, radius float64) Point {
	phi := (90 - lat) * (math.Pi / 180)
	theta := (lon + 180) * (math.Pi / 180)

	return Point{
		X: -radius * math.Sin(phi) * math.Cos(theta),
		Y: radius * math.Cos(phi),
		Z: radius * math.Sin(phi) * math.Sin(theta),
	}
}

func (c Coordinate) Project(radius float64) Point {
	return Project(c.Lat, c.Lon, radius)
}

// Subdivide returns the points strictly between a and b along the great
// circle joining them, spaced so no step exceeds maxStep. Both points must
// lie on the same sphere centred at the origin. A non-positive maxStep, or
// an edge already shorter than it, yields nil.
func Subdivide(a, b Point, maxStep s1.Angle) []Point {
	if maxStep <= 0 {
		return nil
	}
	radius := a.Norm()
	if radius == 0 || b.Norm() == 0 {
		return nil
	}

	pa := s2.Point{Vector: a.Normalize()}
	pb := s2.Point{Vector: b.Normalize()}
	dist := pa.Distance(pb)
	if dist <= maxStep {
		return nil
	}
	// Antipodal endpoints have no unique great circle.
	if math.Abs(dist.Radians()-math.Pi) < 1e-9 {
		return nil
	}

	steps := int(math.Ceil(float64(dist / maxStep)))
	out := make([]Point, 0, steps-1)
	for i := 1; i < steps; i++ {
		p := s2.Interpolate(float64(i)/float64(steps), pa, pb)
		out = append(out, p.Vector.Mul(radius))
	}
	return out
}
