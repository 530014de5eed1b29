package gmarch

import (
	"github.com/soypat/geometry/ms3"
)

// Distance functions follow Inigo Quilez's catalog:
// https://iquilezles.org/articles/distfunctions/

type sphere struct {
	r float32
}

// NewSphere creates a sphere centered at the origin of radius r.
func (bld *Builder) NewSphere(r float32) *Object {
	if r <= 0 {
		bld.shapeErrorf("zero or negative sphere radius")
	}
	return newObject(&sphere{r: r})
}

func (s *sphere) Distance(p ms3.Vec) float32 {
	return ms3.Norm(p) - s.r
}

type plane struct {
	n ms3.Vec // unit
	h float32
}

// NewPlane creates a half-space boundary with the given outward normal and
// height along it. The normal is normalized; a zero normal is invalid.
func (bld *Builder) NewPlane(normal ms3.Vec, height float32) *Object {
	if ms3.Norm(normal) < epstol {
		bld.shapeErrorf("zero plane normal")
		normal = ms3.Vec{Y: 1}
	}
	return newObject(&plane{n: ms3.Unit(normal), h: height})
}

func (s *plane) Distance(p ms3.Vec) float32 {
	return ms3.Dot(s.n, p) - s.h
}

type box struct {
	half ms3.Vec
}

// NewBox creates a box centered at the origin with x,y,z side lengths.
func (bld *Builder) NewBox(x, y, z float32) *Object {
	if x <= 0 || y <= 0 || z <= 0 {
		bld.shapeErrorf("zero or negative box dimension")
	}
	return newObject(&box{half: ms3.Vec{X: x / 2, Y: y / 2, Z: z / 2}})
}

// NewCube creates a cube centered at the origin with the given side length.
func (bld *Builder) NewCube(size float32) *Object {
	return bld.NewBox(size, size, size)
}

func (s *box) Distance(p ms3.Vec) float32 {
	d := ms3.Sub(ms3.AbsElem(p), s.half)
	outside := ms3.Norm(ms3.MaxElem(d, ms3.Vec{}))
	inside := minf(maxf(d.X, maxf(d.Y, d.Z)), 0)
	return outside + inside
}

// DistanceFunc is a user-supplied signed distance function. It must be
// Lipschitz continuous with constant 1 (never change faster than the
// Euclidean distance) for sphere tracing to converge on its surface.
type DistanceFunc func(p ms3.Vec) float32

type custom struct {
	fn DistanceFunc
}

// NewCustom creates a shape from a caller-supplied distance function.
// See [DistanceFunc] for the contract fn must satisfy.
func (bld *Builder) NewCustom(fn DistanceFunc) *Object {
	if fn == nil {
		bld.shapeErrorf("nil custom distance function")
		fn = func(ms3.Vec) float32 { return largenum }
	}
	return newObject(&custom{fn: fn})
}

func (s *custom) Distance(p ms3.Vec) float32 {
	return s.fn(p)
}
