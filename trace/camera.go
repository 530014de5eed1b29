package trace

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"

	"github.com/soypat/gmarch"
)

// Ray is a half-infinite line from an origin along a unit direction.
type Ray struct {
	Origin    ms3.Vec
	Direction ms3.Vec
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) ms3.Vec {
	return ms3.Add(r.Origin, ms3.Scale(t, r.Direction))
}

// Camera maps raster pixel coordinates to world-space rays. The basis and
// pixel scale are derived on construction and on every scene size change.
type Camera struct {
	tfm         gmarch.Transform // right/up/forward basis columns + center
	center      ms3.Vec
	lookAt      ms3.Vec
	width       uint32
	height      uint32
	scale       float32
	fov         float32
	verticalFOV bool
}

const (
	defaultWidth  = 640
	defaultHeight = 480
)

// NewCamera creates a camera at center looking toward lookAt with the given
// field of view in radians. verticalFOV selects whether the angle spans the
// image height instead of the width.
func NewCamera(center, lookAt ms3.Vec, fov float32, verticalFOV bool) Camera {
	c := Camera{
		center:      center,
		lookAt:      lookAt,
		width:       defaultWidth,
		height:      defaultHeight,
		fov:         fov,
		verticalFOV: verticalFOV,
	}
	c.derive()
	return c
}

// DefaultCamera returns a camera at the origin looking along +Z with a 45
// degree horizontal field of view.
func DefaultCamera() Camera {
	return NewCamera(ms3.Vec{}, ms3.Vec{Z: 1}, math32.Pi/4, false)
}

func (c *Camera) derive() {
	worldUp := ms3.Vec{Y: 1}
	fovScale := 2 * math32.Tan(c.fov/2)
	if c.verticalFOV {
		c.scale = fovScale / float32(c.height)
	} else {
		c.scale = fovScale / float32(c.width)
	}
	forward := ms3.Unit(ms3.Sub(c.lookAt, c.center))
	right := ms3.Unit(ms3.Cross(forward, worldUp))
	up := ms3.Cross(right, forward)
	c.tfm = gmarch.FromBasis(right, up, forward, c.center)
}

// SetSceneSize updates the raster dimensions and re-derives the pixel scale.
func (c *Camera) SetSceneSize(width, height uint32) {
	c.width = width
	c.height = height
	c.derive()
}

// RayAt returns the world-space ray through pixel (x, y). The origin is the
// camera center and the direction is unit length.
func (c *Camera) RayAt(x, y uint32) Ray {
	hFactor := (float32(x) - float32(c.width)*0.5) * c.scale
	vFactor := -(float32(y) - float32(c.height)*0.5) * c.scale
	dir := ms3.Add(c.tfm.ZBasis(), ms3.Scale(hFactor, c.tfm.XBasis()))
	dir = ms3.Add(dir, ms3.Scale(vFactor, c.tfm.YBasis()))
	return Ray{Origin: c.tfm.Translation(), Direction: ms3.Unit(dir)}
}
