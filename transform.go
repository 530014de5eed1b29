package gmarch

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// Transform is a 3x4 affine transformation: a 3x3 rotation/scale block
// stored as basis columns and a translation column. Shapes, materials and
// the camera are positioned with Transforms; distance and color lookups
// run through the cached inverse.
type Transform struct {
	x, y, z, t ms3.Vec
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		x: ms3.Vec{X: 1},
		y: ms3.Vec{Y: 1},
		z: ms3.Vec{Z: 1},
	}
}

// Translate returns a translation by (x, y, z).
func Translate(x, y, z float32) Transform {
	tr := Identity()
	tr.t = ms3.Vec{X: x, Y: y, Z: z}
	return tr
}

// TranslateVec returns a translation by v.
func TranslateVec(v ms3.Vec) Transform {
	tr := Identity()
	tr.t = v
	return tr
}

// Scale returns a scaling by (x, y, z) around the origin.
func Scale(x, y, z float32) Transform {
	return Transform{
		x: ms3.Vec{X: x},
		y: ms3.Vec{Y: y},
		z: ms3.Vec{Z: z},
	}
}

// ScaleUniform returns a uniform scaling by s around the origin.
func ScaleUniform(s float32) Transform {
	return Scale(s, s, s)
}

// RotateX returns a rotation of radians around the X axis.
func RotateX(radians float32) Transform {
	s, c := math32.Sincos(radians)
	return Transform{
		x: ms3.Vec{X: 1},
		y: ms3.Vec{Y: c, Z: s},
		z: ms3.Vec{Y: -s, Z: c},
	}
}

// RotateY returns a rotation of radians around the Y axis.
func RotateY(radians float32) Transform {
	s, c := math32.Sincos(radians)
	return Transform{
		x: ms3.Vec{X: c, Z: -s},
		y: ms3.Vec{Y: 1},
		z: ms3.Vec{X: s, Z: c},
	}
}

// RotateZ returns a rotation of radians around the Z axis.
func RotateZ(radians float32) Transform {
	s, c := math32.Sincos(radians)
	return Transform{
		x: ms3.Vec{X: c, Y: s},
		y: ms3.Vec{X: -s, Y: c},
		z: ms3.Vec{Z: 1},
	}
}

// Rotate returns a rotation of radians around an arbitrary axis through the
// origin. The axis need not be unit length but must be nonzero.
func Rotate(radians float32, axis ms3.Vec) Transform {
	u := ms3.Unit(axis)
	s, c := math32.Sincos(radians)
	rotate := func(v ms3.Vec) ms3.Vec {
		// Rodrigues' rotation formula.
		term1 := ms3.Scale(c, v)
		term2 := ms3.Scale(s, ms3.Cross(u, v))
		term3 := ms3.Scale(ms3.Dot(u, v)*(1-c), u)
		return ms3.Add(ms3.Add(term1, term2), term3)
	}
	return Transform{
		x: rotate(ms3.Vec{X: 1}),
		y: rotate(ms3.Vec{Y: 1}),
		z: rotate(ms3.Vec{Z: 1}),
	}
}

// FromBasis builds a transform from basis vectors and a translation.
func FromBasis(x, y, z, translation ms3.Vec) Transform {
	return Transform{x: x, y: y, z: z, t: translation}
}

// Mul composes transforms: the result applies b first, then a.
func (a Transform) Mul(b Transform) Transform {
	return Transform{
		x: a.ApplyDirection(b.x),
		y: a.ApplyDirection(b.y),
		z: a.ApplyDirection(b.z),
		t: a.ApplyPosition(b.t),
	}
}

// ApplyPosition transforms a point.
func (tr Transform) ApplyPosition(p ms3.Vec) ms3.Vec {
	v := ms3.Add(ms3.Scale(p.X, tr.x), ms3.Scale(p.Y, tr.y))
	v = ms3.Add(v, ms3.Scale(p.Z, tr.z))
	return ms3.Add(v, tr.t)
}

// ApplyDirection transforms a direction, ignoring translation.
func (tr Transform) ApplyDirection(d ms3.Vec) ms3.Vec {
	v := ms3.Add(ms3.Scale(d.X, tr.x), ms3.Scale(d.Y, tr.y))
	return ms3.Add(v, ms3.Scale(d.Z, tr.z))
}

// XBasis returns the first basis column.
func (tr Transform) XBasis() ms3.Vec { return tr.x }

// YBasis returns the second basis column.
func (tr Transform) YBasis() ms3.Vec { return tr.y }

// ZBasis returns the third basis column.
func (tr Transform) ZBasis() ms3.Vec { return tr.z }

// Translation returns the translation column.
func (tr Transform) Translation() ms3.Vec { return tr.t }

// Determinant returns the determinant of the 3x3 block.
func (tr Transform) Determinant() float32 {
	return ms3.Dot(tr.x, ms3.Cross(tr.y, tr.z))
}

// Inverse returns the inverse transform. A near-singular transform
// (determinant below 1e-5) yields the identity; rendering with it is
// visually wrong but never crashes.
func (tr Transform) Inverse() Transform {
	det := tr.Determinant()
	if absf(det) < epstol {
		return Identity()
	}
	// Adjugate rows via cross products.
	r0 := ms3.Scale(1/det, ms3.Cross(tr.y, tr.z))
	r1 := ms3.Scale(1/det, ms3.Cross(tr.z, tr.x))
	r2 := ms3.Scale(1/det, ms3.Cross(tr.x, tr.y))
	inv := Transform{
		x: ms3.Vec{X: r0.X, Y: r1.X, Z: r2.X},
		y: ms3.Vec{X: r0.Y, Y: r1.Y, Z: r2.Y},
		z: ms3.Vec{X: r0.Z, Y: r1.Z, Z: r2.Z},
	}
	inv.t = ms3.Scale(-1, inv.ApplyDirection(tr.t))
	return inv
}
