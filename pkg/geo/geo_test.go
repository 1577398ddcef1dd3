package geo

import (
	"math"
	"testing"

	"github.com/golang/geo/s1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     Point
	}{
		{0, 0, Point{X: 2, Y: 0, Z: 0}},
		{0, -180, Point{X: -2, Y: 0, Z: 0}},
		{0, 90, Point{X: 0, Y: 0, Z: -2}},
		{0, -90, Point{X: 0, Y: 0, Z: 2}},
		{90, 0, Point{X: 0, Y: 2, Z: 0}},
		{-90, 0, Point{X: 0, Y: -2, Z: 0}},
	}

	for _, tt := range tests {
		got := Project(tt.lat, tt.lon, DefaultRadius)
		assert.InDelta(t, tt.want.X, got.X, 1e-9, "x for (%v, %v)", tt.lat, tt.lon)
		assert.InDelta(t, tt.want.Y, got.Y, 1e-9, "y for (%v, %v)", tt.lat, tt.lon)
		assert.InDelta(t, tt.want.Z, got.Z, 1e-9, "z for (%v, %v)", tt.lat, tt.lon)
	}
}

func TestProjectOnSphere(t *testing.T) {
	for lat := -90.0; lat <= 90; lat += 7.5 {
		for lon := -180.0; lon <= 180; lon += 11.25 {
			p := Project(lat, lon, DefaultRadius)
			assert.InDelta(t, DefaultRadius, p.Norm(), 1e-9, "(%v, %v) off the sphere", lat, lon)
		}
	}
}

func TestProjectNorthPoleIgnoresLongitude(t *testing.T) {
	pole := Project(90, 0, DefaultRadius)
	for _, lon := range []float64{-180, -97.3, -1, 45, 120, 180} {
		p := Project(90, lon, DefaultRadius)
		assert.InDelta(t, 0, p.Sub(pole).Norm(), 1e-9, "lon %v", lon)
	}
}

func TestCoordinateValid(t *testing.T) {
	tests := []struct {
		c    Coordinate
		want bool
	}{
		{Coordinate{0, 0}, true},
		{Coordinate{90, 180}, true},
		{Coordinate{-90, -180}, true},
		{Coordinate{90.0001, 0}, false},
		{Coordinate{0, -180.5}, false},
		{Coordinate{math.NaN(), 10}, false},
		{Coordinate{10, math.Inf(1)}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.Valid(), "%+v", tt.c)
	}
}

func TestSubdivide(t *testing.T) {
	a := Project(0, 0, DefaultRadius)
	b := Project(0, 90, DefaultRadius)

	pts := Subdivide(a, b, s1.Angle(11)*s1.Degree)
	require.Len(t, pts, 8)

	prev := a
	for _, p := range pts {
		assert.InDelta(t, DefaultRadius, p.Norm(), 1e-9)
		assert.InDelta(t, 0, p.Y, 1e-9, "stays on the equator")
		assert.LessOrEqual(t, prev.Angle(p).Degrees(), 11.0)
		prev = p
	}
	assert.LessOrEqual(t, prev.Angle(b).Degrees(), 11.0)
}

func TestSubdivideDisabled(t *testing.T) {
	a := Project(10, 10, DefaultRadius)
	b := Project(12, 11, DefaultRadius)

	assert.Nil(t, Subdivide(a, b, 0))
	assert.Nil(t, Subdivide(a, b, s1.Angle(30)*s1.Degree), "short edge needs no extra points")
	assert.Nil(t, Subdivide(a, a.Mul(-1), s1.Degree), "antipodal edge")
}
