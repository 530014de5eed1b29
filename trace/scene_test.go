package trace_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"

	"github.com/soypat/gmarch"
	"github.com/soypat/gmarch/trace"
)

func closeColor(t *testing.T, got, want gmarch.Color, tol float32, msg string) {
	t.Helper()
	closef(t, got.R, want.R, tol, msg+" R")
	closef(t, got.G, want.G, tol, msg+" G")
	closef(t, got.B, want.B, tol, msg+" B")
}

// Single unit sphere at the origin under a half-intensity ambient light.
func ambientSphereScene() *trace.Scene {
	var bld gmarch.Builder
	s := trace.NewScene()
	s.SetCamera(trace.NewCamera(ms3.Vec{Z: -5}, ms3.Vec{}, math32.Pi/4, false))
	s.SetSize(100, 100)
	s.Add(bld.NewSphere(1))
	s.AddLight(bld.NewAmbientLight(gmarch.NewColor(0.5, 0.5, 0.5)))
	return s
}

func TestAmbientSphereCenterAndCorners(t *testing.T) {
	s := ambientSphereScene()

	// The center ray hits the sphere; ambient light times white albedo.
	closeColor(t, s.ColorAtPixel(50, 50), gmarch.NewColor(0.5, 0.5, 0.5), 1e-5, "center pixel")

	// Corner rays miss everything.
	for _, px := range [][2]uint32{{0, 0}, {99, 0}, {0, 99}, {99, 99}} {
		closeColor(t, s.ColorAtPixel(px[0], px[1]), s.Background, 0, "corner pixel")
	}
}

func TestMissReturnsBackground(t *testing.T) {
	s := trace.NewScene()
	s.SetCamera(trace.NewCamera(ms3.Vec{Z: -5}, ms3.Vec{}, math32.Pi/4, false))
	s.SetSize(64, 64)
	closeColor(t, s.ColorAtPixel(32, 32), trace.DefaultBackground, 0, "empty scene is background")

	s.Background = gmarch.NewColor(0, 0, 0.5)
	closeColor(t, s.ColorAtPixel(32, 32), gmarch.NewColor(0, 0, 0.5), 0, "custom background")
}

func TestPointLitPlane(t *testing.T) {
	var bld gmarch.Builder
	s := trace.NewScene()
	// The center ray passes through the origin and hits the y=0 plane there,
	// directly under the light.
	s.SetCamera(trace.NewCamera(ms3.Vec{Y: 3, Z: 4}, ms3.Vec{}, math32.Pi/4, false))
	s.SetSize(100, 100)
	s.Add(bld.NewPlane(ms3.Vec{Y: 1}, 0))
	s.AddLight(bld.NewPointLight(ms3.Vec{Y: 5}, gmarch.NewColor(1, 1, 1)))

	// n = (0,1,0) and the light is straight up: n.l = 1, unshadowed.
	got := s.ColorAtPixel(50, 50)
	closeColor(t, got, gmarch.NewColor(1, 1, 1), 0.02, "plane under point light")
}

func TestShadowedPlane(t *testing.T) {
	var bld gmarch.Builder
	s := trace.NewScene()
	s.SetCamera(trace.NewCamera(ms3.Vec{Y: 3, Z: 6}, ms3.Vec{}, math32.Pi/4, false))
	s.SetSize(100, 100)
	s.Add(bld.NewPlane(ms3.Vec{Y: 1}, 0))
	// Sphere between the hit point and the light blocks it completely.
	s.Add(bld.NewSphere(1).SetTransform(gmarch.Translate(0, 2, 0)))
	s.AddLight(bld.NewPointLight(ms3.Vec{Y: 5}, gmarch.NewColor(1, 1, 1)))

	got := s.ColorAtPixel(50, 50)
	closeColor(t, got, gmarch.Black, 1e-5, "fully occluded point on plane")
}

func TestDielectricReflectsBackground(t *testing.T) {
	var bld gmarch.Builder
	s := trace.NewScene()
	s.SetCamera(trace.NewCamera(ms3.Vec{Z: -5}, ms3.Vec{}, math32.Pi/4, false))
	s.SetSize(100, 100)
	mirror := bld.NewSphere(1)
	mirror.SetSurface(gmarch.SurfaceInfo{Albedo: 0, Dielectric: 1})
	s.Add(mirror)

	// The center ray reflects straight back toward the camera and misses
	// everything; with zero albedo and no lights the pixel is exactly the
	// reflected background.
	closeColor(t, s.ColorAtPixel(50, 50), s.Background, 1e-5, "head-on dielectric reflection")
}

func TestNonReflectiveUnlitIsBlack(t *testing.T) {
	var bld gmarch.Builder
	s := trace.NewScene()
	s.SetCamera(trace.NewCamera(ms3.Vec{Z: -5}, ms3.Vec{}, math32.Pi/4, false))
	s.SetSize(100, 100)
	s.Add(bld.NewSphere(1))

	closeColor(t, s.ColorAtPixel(50, 50), gmarch.Black, 0, "no lights, no reflection")
}

func TestMetallicTintsReflection(t *testing.T) {
	var bld gmarch.Builder
	s := trace.NewScene()
	s.SetCamera(trace.NewCamera(ms3.Vec{Z: -5}, ms3.Vec{}, math32.Pi/4, false))
	s.SetSize(100, 100)
	s.Background = gmarch.NewColor(1, 1, 1)
	tinted := bld.NewSphere(1).SetColor(gmarch.NewColor(1, 0, 0))
	tinted.SetSurface(gmarch.SurfaceInfo{Albedo: 0, Metallic: 1})
	s.Add(tinted)

	// Metallic reflection multiplies the reflected white by the surface
	// color: only the red channel survives.
	closeColor(t, s.ColorAtPixel(50, 50), gmarch.NewColor(1, 0, 0), 1e-5, "metallic tint")
}

func TestOutlineMisses(t *testing.T) {
	var bld gmarch.Builder
	s := trace.NewScene()
	s.SetCamera(trace.NewCamera(ms3.Vec{Z: -5}, ms3.Vec{}, math32.Pi/4, false))
	s.SetSize(100, 100)
	// The center ray passes 0.02 under this sphere's surface at closest
	// approach: a miss, but within outline range.
	s.Add(bld.NewSphere(1).SetTransform(gmarch.Translate(0, 1.02, 0)))

	plain := s.ColorAtPixel(50, 50)
	closeColor(t, plain, s.Background, 0, "outline off: background")

	s.OutlineMisses = true
	outlined := s.ColorAtPixel(50, 50)
	if outlined == s.Background {
		t.Error("outline on: grazing miss must differ from background")
	}
	if outlined.R <= s.Background.R {
		t.Errorf("outline leans white, got %+v", outlined)
	}
}

func TestSceneReset(t *testing.T) {
	var bld gmarch.Builder
	s := trace.NewScene()
	s.Add(bld.NewSphere(1))
	s.AddLight(bld.NewAmbientLight(gmarch.White))
	s.Background = gmarch.NewColor(1, 0, 0)
	s.OutlineMisses = true

	s.Reset()
	s.SetSize(64, 64)
	closeColor(t, s.ColorAtPixel(32, 32), trace.DefaultBackground, 0, "reset scene is empty with default background")
	if s.OutlineMisses {
		t.Error("reset must clear outline flag")
	}
}
