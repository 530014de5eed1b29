package gmarch

import "github.com/soypat/geometry/ms3"

// Shape computes a signed Euclidean distance to a surface in the shape's
// local frame: negative inside, positive outside, zero on the surface.
type Shape interface {
	Distance(p ms3.Vec) float32
}

// SurfaceInfo describes how a surface responds to light. Albedo scales
// direct lighting, Metallic tints reflections by the surface color and
// Dielectric adds uncolored reflection. All three are in [0, 1].
type SurfaceInfo struct {
	Albedo     float32
	Metallic   float32
	Dielectric float32
}

// DefaultSurface returns the default surface response: full albedo,
// no reflections.
func DefaultSurface() SurfaceInfo {
	return SurfaceInfo{Albedo: 1}
}

// Object binds a Shape to a world transform, an optional material and a
// surface response. The inverse transform is cached alongside the forward
// transform and refreshed on every assignment.
type Object struct {
	shape    Shape
	tfm      Transform
	tfmInv   Transform
	material *Material
	surface  SurfaceInfo
}

func newObject(s Shape) *Object {
	return &Object{
		shape:   s,
		tfm:     Identity(),
		tfmInv:  Identity(),
		surface: DefaultSurface(),
	}
}

// SetTransform assigns the object's world transform and recomputes the
// cached inverse. Returns the object for chaining during scene building.
func (o *Object) SetTransform(tr Transform) *Object {
	o.tfm = tr
	o.tfmInv = tr.Inverse()
	return o
}

// Transform returns the object's world transform.
func (o *Object) Transform() Transform { return o.tfm }

// InverseTransform returns the cached inverse of the world transform.
func (o *Object) InverseTransform() Transform { return o.tfmInv }

// SetMaterial binds a material to the object. On composites the binding is
// forwarded to every child instead.
func (o *Object) SetMaterial(m *Material) *Object {
	if c, ok := o.shape.(composite); ok {
		c.setMaterial(m)
		return o
	}
	o.material = m
	return o
}

// SetColor binds a solid color material to the object.
func (o *Object) SetColor(c Color) *Object {
	return o.SetMaterial(&Material{kind: matSolid, c0: c, tfm: Identity(), tfmInv: Identity()})
}

// SetSurface assigns the object's surface response.
func (o *Object) SetSurface(s SurfaceInfo) *Object {
	o.surface = s
	return o
}

// Surface returns the object's surface response.
func (o *Object) Surface() SurfaceInfo { return o.surface }

// Distance evaluates the signed distance in the object's local frame.
func (o *Object) Distance(p ms3.Vec) float32 {
	return o.shape.Distance(p)
}

// TransformedDistance evaluates the signed distance to a point given in the
// parent frame, applying the cached inverse transform first.
func (o *Object) TransformedDistance(p ms3.Vec) float32 {
	return o.shape.Distance(o.tfmInv.ApplyPosition(p))
}

// ColorAt samples the object's surface color at a point given in the parent
// frame. Composites blend their children's colors; an object without a
// bound material is white.
func (o *Object) ColorAt(p ms3.Vec) Color {
	local := o.tfmInv.ApplyPosition(p)
	if c, ok := o.shape.(composite); ok {
		return c.colorAt(local)
	}
	if o.material != nil {
		return o.material.ColorAt(local)
	}
	return White
}
