package gmarch

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

type lightKind uint8

const (
	lightAmbient lightKind = iota
	lightPoint
	lightDirectional
	lightSpot
)

// Attenuation controls how a positional light's contribution falls off with
// distance d: the contribution is divided by Constant + Linear*d +
// Exponential*d*d. The zero value means no falloff.
type Attenuation struct {
	Constant    float32
	Linear      float32
	Exponential float32
}

func (a Attenuation) factor(d float32) float32 {
	f := a.Constant + a.Linear*d + a.Exponential*d*d
	if f <= 0 {
		return 1
	}
	return f
}

// Light illuminates surfaces in a scene. Ambient lights contribute
// unconditionally; point and spot lights contribute by incidence angle and
// cast shadows; directional lights contribute by angle only.
type Light struct {
	kind      lightKind
	position  ms3.Vec
	direction ms3.Vec // unit, travel direction of the light
	color     Color
	atten     Attenuation
	cosCutoff float32
}

// NewAmbientLight creates a light that contributes its color everywhere.
func (bld *Builder) NewAmbientLight(c Color) *Light {
	return &Light{kind: lightAmbient, color: c}
}

// NewPointLight creates a shadow-casting light radiating from a position.
func (bld *Builder) NewPointLight(position ms3.Vec, c Color) *Light {
	return &Light{kind: lightPoint, position: position, color: c}
}

// NewDirectionalLight creates a light shining everywhere along direction.
// The direction is normalized; a zero direction is invalid.
func (bld *Builder) NewDirectionalLight(direction ms3.Vec, c Color) *Light {
	if ms3.Norm(direction) < epstol {
		bld.shapeErrorf("zero directional light direction")
		direction = ms3.Vec{Y: -1}
	}
	return &Light{kind: lightDirectional, direction: ms3.Unit(direction), color: c}
}

// NewSpotLight creates a shadow-casting light radiating from a position
// into a cone around direction with the given half-angle in radians.
func (bld *Builder) NewSpotLight(position, direction ms3.Vec, halfAngle float32, c Color) *Light {
	if ms3.Norm(direction) < epstol {
		bld.shapeErrorf("zero spot light direction")
		direction = ms3.Vec{Y: -1}
	}
	if halfAngle <= 0 || halfAngle >= math32.Pi/2 {
		bld.shapeErrorf("spot light half-angle outside (0, pi/2)")
		halfAngle = math32.Pi / 4
	}
	return &Light{
		kind:      lightSpot,
		position:  position,
		direction: ms3.Unit(direction),
		color:     c,
		cosCutoff: math32.Cos(halfAngle),
	}
}

// SetAttenuation assigns distance falloff to a point or spot light.
// Returns the light for chaining.
func (l *Light) SetAttenuation(a Attenuation) *Light {
	l.atten = a
	return l
}

// Position returns the light's position. Ambient and directional lights
// report the origin.
func (l *Light) Position() ms3.Vec { return l.position }

// CastsShadow reports whether surfaces must march a shadow ray toward this
// light before applying its contribution.
func (l *Light) CastsShadow() bool {
	return l.kind == lightPoint || l.kind == lightSpot
}

// Contribute returns the light's radiance at a surface point with the given
// unit normal, before albedo and shadowing are applied.
func (l *Light) Contribute(p, n ms3.Vec) Color {
	switch l.kind {
	case lightAmbient:
		return l.color
	case lightDirectional:
		angle := ms3.Dot(n, ms3.Scale(-1, l.direction))
		if angle <= 0 {
			return Black
		}
		return l.color.Scale(angle)
	case lightSpot:
		toPoint := ms3.Sub(p, l.position)
		dist := ms3.Norm(toPoint)
		cone := ms3.Dot(ms3.Scale(1/dist, toPoint), l.direction)
		if cone < l.cosCutoff {
			return Black
		}
		angle := ms3.Dot(n, ms3.Scale(-1/dist, toPoint))
		if angle <= 0 {
			return Black
		}
		falloff := (cone - l.cosCutoff) / (1 - l.cosCutoff)
		return l.color.Scale(angle * falloff / l.atten.factor(dist))
	default: // point
		toLight := ms3.Sub(l.position, p)
		dist := ms3.Norm(toLight)
		angle := ms3.Dot(n, ms3.Scale(1/dist, toLight))
		if angle <= 0 {
			return Black
		}
		return l.color.Scale(angle / l.atten.factor(dist))
	}
}
