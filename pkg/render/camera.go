package render

import (
	"math"

	"github.com/sudorandom/emissions-globe/pkg/geo"
)

// Camera is an orthographic view of the globe looking down -Z, with the
// globe spun about its Y axis by Rotation radians.
type Camera struct {
	Width, Height int
	// Zoom is screen pixels per world unit.
	Zoom     float64
	Rotation float64
}

// NewCamera fits a sphere of radius into the smaller screen dimension.
func NewCamera(width, height int, radius float64) Camera {
	zoom := 1.0
	if radius > 0 {
		zoom = float64(min(width, height)) * 0.4 / radius
	}
	return Camera{Width: width, Height: height, Zoom: zoom}
}

// Project maps p to screen space. Points on the far hemisphere are
// reported as not visible.
func (c Camera) Project(p geo.Point) (x, y float64, visible bool) {
	sin, cos := math.Sincos(c.Rotation)
	rx := p.X*cos + p.Z*sin
	rz := -p.X*sin + p.Z*cos

	x = float64(c.Width)/2 + rx*c.Zoom
	y = float64(c.Height)/2 - p.Y*c.Zoom
	return x, y, rz >= 0
}

// Spin advances the rotation, keeping it within one turn.
func (c *Camera) Spin(delta float64) {
	c.Rotation = math.Mod(c.Rotation+delta, 2*math.Pi)
}
