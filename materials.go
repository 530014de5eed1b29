package gmarch

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

type materialKind uint8

const (
	matSolid materialKind = iota
	matChecker
	matGradient
	matCustom
)

// ColorFunc is a user-supplied color lookup in material-local space.
type ColorFunc func(p ms3.Vec) Color

// Material produces a color for any point on a surface. Sampling happens in
// material-local space: the material's own inverse transform is applied to
// the query point, so a material can be scaled or rotated independently of
// the object it is bound to.
type Material struct {
	kind   materialKind
	c0, c1 Color
	fn     ColorFunc
	tfm    Transform
	tfmInv Transform
}

func newMaterial(kind materialKind) *Material {
	return &Material{kind: kind, tfm: Identity(), tfmInv: Identity()}
}

// NewColorMaterial creates a material with a single uniform color.
func (bld *Builder) NewColorMaterial(c Color) *Material {
	m := newMaterial(matSolid)
	m.c0 = c
	return m
}

// NewCheckerMaterial creates a 3D checkerboard with unit cells alternating
// between c0 and c1.
func (bld *Builder) NewCheckerMaterial(c0, c1 Color) *Material {
	m := newMaterial(matChecker)
	m.c0, m.c1 = c0, c1
	return m
}

// NewGradientMaterial creates concentric bands fading from c0 to c1 with
// distance from the material origin, repeating every unit.
func (bld *Builder) NewGradientMaterial(c0, c1 Color) *Material {
	m := newMaterial(matGradient)
	m.c0, m.c1 = c0, c1
	return m
}

// NewCustomMaterial creates a material from a caller-supplied color lookup.
func (bld *Builder) NewCustomMaterial(fn ColorFunc) *Material {
	if fn == nil {
		bld.shapeErrorf("nil custom color function")
		fn = func(ms3.Vec) Color { return White }
	}
	m := newMaterial(matCustom)
	m.fn = fn
	return m
}

// SetTransform assigns the material's transform and recomputes the cached
// inverse. Returns the material for chaining.
func (m *Material) SetTransform(tr Transform) *Material {
	m.tfm = tr
	m.tfmInv = tr.Inverse()
	return m
}

// Transform returns the material's transform.
func (m *Material) Transform() Transform { return m.tfm }

// ColorAt samples the material at a point, applying the material's inverse
// transform first.
func (m *Material) ColorAt(p ms3.Vec) Color {
	p = m.tfmInv.ApplyPosition(p)
	switch m.kind {
	case matChecker:
		sum := int(math32.Floor(p.X)) + int(math32.Floor(p.Y)) + int(math32.Floor(p.Z))
		if sum&1 == 0 {
			return m.c0
		}
		return m.c1
	case matGradient:
		dist := ms3.Norm(p)
		return LerpColor(m.c0, m.c1, dist-math32.Floor(dist))
	case matCustom:
		return m.fn(p)
	default:
		return m.c0
	}
}
