// Package trace evaluates a scene of signed distance field objects into
// colors by sphere tracing: primary rays from the camera, soft shadow rays
// toward lights and reflection rays off reflective surfaces, recursing up to
// MaxReflectionDepth levels.
package trace

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"

	"github.com/soypat/gmarch"
)

// Tracer tuning constants.
const (
	// MinStep is the surface threshold: a march step shorter than this
	// counts as a hit. It also seeds the primary ray parameter.
	MinStep = 1e-4
	// MaxLength bounds ray travel. Surfaces further away are not rendered.
	MaxLength = 60.0
	// SecondaryRayOffset lifts shadow and reflection ray origins off the
	// surface so they do not immediately re-hit it.
	SecondaryRayOffset = 10 * MinStep
	// StepLimit bounds march iterations per ray.
	StepLimit = 200
	// MaxReflectionDepth caps recursive reflection bounces per primary ray.
	MaxReflectionDepth = 4
	// ShadowPenumbraK controls soft shadow edge hardness.
	ShadowPenumbraK = 24.0

	largenum = 1e12
	smallnum = 1e-5
)

// DefaultBackground is the color of rays that hit nothing.
var DefaultBackground = gmarch.Color{R: 0.2, G: 0.3, B: 0.4}

// Scene owns the objects, lights and camera of a single frame and evaluates
// camera rays to colors. Scenes are rebuilt whole between frames; they are
// never mutated while rays are in flight.
type Scene struct {
	camera  Camera
	objects []*gmarch.Object
	lights  []*gmarch.Light

	// Background is the color of rays that miss every object.
	Background gmarch.Color
	// OutlineMisses shades missed rays that pass close to an object with a
	// white outline fading into the background.
	OutlineMisses bool
}

// NewScene returns an empty scene with the default camera and background.
func NewScene() *Scene {
	return &Scene{
		camera:     DefaultCamera(),
		Background: DefaultBackground,
	}
}

// Reset restores the scene to its empty state so a builder can repopulate
// it for the next frame.
func (s *Scene) Reset() {
	s.camera = DefaultCamera()
	s.objects = s.objects[:0]
	s.lights = s.lights[:0]
	s.Background = DefaultBackground
	s.OutlineMisses = false
}

// SetCamera assigns the scene camera.
func (s *Scene) SetCamera(c Camera) {
	s.camera = c
}

// Camera returns the scene camera.
func (s *Scene) Camera() Camera { return s.camera }

// Add appends objects to the scene. The scene takes ownership.
func (s *Scene) Add(objs ...*gmarch.Object) {
	s.objects = append(s.objects, objs...)
}

// AddLight appends lights to the scene. The scene takes ownership.
func (s *Scene) AddLight(lights ...*gmarch.Light) {
	s.lights = append(s.lights, lights...)
}

// SetSize propagates the raster dimensions to the camera.
func (s *Scene) SetSize(width, height uint32) {
	s.camera.SetSceneSize(width, height)
}

// ColorAtPixel traces the primary ray through pixel (x, y) and returns its
// unclamped color.
func (s *Scene) ColorAtPixel(x, y uint32) gmarch.Color {
	return s.trace(s.camera.RayAt(x, y), MaxReflectionDepth)
}

func (s *Scene) trace(r Ray, depth int) gmarch.Color {
	if depth == 0 {
		return gmarch.Black
	}
	res := s.march(r, MaxLength)
	if res.hit {
		if obj := s.closestObject(res.point); obj != nil {
			return s.shade(obj, r.Direction, res.point, depth)
		}
	} else if s.OutlineMisses && res.minDistance < 0.05 {
		return gmarch.LerpColor(gmarch.White, s.Background, res.minDistance*20)
	}
	return s.Background
}

type marchResult struct {
	point       ms3.Vec
	t           float32
	minDistance float32
	hit         bool
}

// march sphere-traces a ray: each step advances by the scene distance at
// the current point, converging on the nearest surface along the ray.
func (s *Scene) march(r Ray, maxLength float32) marchResult {
	t := float32(MinStep)
	minDistance := float32(largenum)
	steps := 0
	for t < maxLength {
		p := r.At(t)
		d := s.MinDistance(p)
		minDistance = math32.Min(minDistance, d)
		if math32.Abs(d) < MinStep || steps > StepLimit {
			return marchResult{point: p, t: t, minDistance: minDistance, hit: true}
		}
		steps++
		t += d
	}
	return marchResult{minDistance: minDistance}
}

// shadowMarch returns occlusion toward a light in [0, 1]: 0 fully occluded,
// 1 fully lit, in between for penumbra. The penumbra tracks the smallest
// ratio of clearance to distance traveled.
// See https://iquilezles.org/articles/rmshadows/
func (s *Scene) shadowMarch(r Ray, maxLength, penumbra float32) float32 {
	shadow := float32(1)
	t := float32(0)
	for t < maxLength {
		d := s.MinDistance(r.At(t))
		if d < MinStep {
			return 0
		}
		shadow = math32.Min(shadow, penumbra*d/t)
		t += d
	}
	return shadow
}

// MinDistance returns the signed distance from p to the nearest surface of
// any top-level object.
func (s *Scene) MinDistance(p ms3.Vec) float32 {
	min := float32(largenum)
	for _, obj := range s.objects {
		min = math32.Min(min, obj.TransformedDistance(p))
	}
	return min
}

func (s *Scene) closestObject(p ms3.Vec) *gmarch.Object {
	min := float32(largenum)
	var closest *gmarch.Object
	for _, obj := range s.objects {
		if d := obj.TransformedDistance(p); d < min {
			min = d
			closest = obj
		}
	}
	return closest
}

// normalAt estimates the surface normal at p from the central-difference
// gradient of the scene distance field.
func (s *Scene) normalAt(p ms3.Vec) ms3.Vec {
	const eps = SecondaryRayOffset
	return ms3.Unit(ms3.Vec{
		X: s.MinDistance(ms3.Add(p, ms3.Vec{X: eps})) - s.MinDistance(ms3.Sub(p, ms3.Vec{X: eps})),
		Y: s.MinDistance(ms3.Add(p, ms3.Vec{Y: eps})) - s.MinDistance(ms3.Sub(p, ms3.Vec{Y: eps})),
		Z: s.MinDistance(ms3.Add(p, ms3.Vec{Z: eps})) - s.MinDistance(ms3.Sub(p, ms3.Vec{Z: eps})),
	})
}

// shade computes the color of a hit on obj: an optional reflection ray
// traced with depth-1 followed by the contribution of every light, shadowed
// for lights that cast shadows.
func (s *Scene) shade(obj *gmarch.Object, viewDir, p ms3.Vec, depth int) gmarch.Color {
	color := gmarch.Black
	normal := s.normalAt(p)
	surfaceColor := obj.ColorAt(p)
	// Secondary rays start just off the surface.
	start := ms3.Add(p, ms3.Scale(SecondaryRayOffset, normal))
	surface := obj.Surface()

	if math32.Abs(surface.Dielectric) > smallnum || math32.Abs(surface.Metallic) > smallnum {
		reflection := ms3.Sub(viewDir, ms3.Scale(2*ms3.Dot(viewDir, normal), normal))
		reflected := s.trace(Ray{Origin: start, Direction: reflection}, depth-1)
		color = color.Add(reflected.Mul(surfaceColor).Scale(surface.Metallic))
		color = color.Add(reflected.Scale(surface.Dielectric))
	}

	for _, light := range s.lights {
		if !light.CastsShadow() {
			color = color.Add(light.Contribute(p, normal).Mul(surfaceColor).Scale(surface.Albedo))
			continue
		}
		toLight := ms3.Sub(light.Position(), p)
		dist := ms3.Norm(toLight)
		dir := ms3.Scale(1/dist, toLight)
		shadow := s.shadowMarch(Ray{Origin: start, Direction: dir}, dist, ShadowPenumbraK)
		if shadow > 0 {
			color = color.Add(light.Contribute(p, normal).Mul(surfaceColor).Scale(surface.Albedo * shadow))
		}
	}
	return color
}
