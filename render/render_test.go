package render

import (
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"

	"github.com/soypat/gmarch"
	"github.com/soypat/gmarch/trace"
)

func emptyScene(s *trace.Scene, time float32) {}

func sphereScene(s *trace.Scene, time float32) {
	var bld gmarch.Builder
	s.SetCamera(trace.NewCamera(ms3.Vec{Z: -5}, ms3.Vec{}, math32.Pi/4, false))
	s.Add(bld.NewSphere(1).SetColor(gmarch.NewColor(0.9, 0.1, 0.1)))
	s.AddLight(bld.NewAmbientLight(gmarch.NewColor(0.5, 0.5, 0.5)))
	s.AddLight(bld.NewPointLight(ms3.Vec{X: 3, Y: 3, Z: -3}, gmarch.NewColor(1, 1, 1)))
}

// gateScene blocks every distance evaluation until gate closes, keeping a
// frame in flight for as long as a test needs.
func gateScene(gate <-chan struct{}) SceneBuilder {
	return func(s *trace.Scene, time float32) {
		var bld gmarch.Builder
		s.Add(bld.NewCustom(func(p ms3.Vec) float32 {
			<-gate
			return largeDistance
		}))
	}
}

const largeDistance = 1e12

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTileLayout(t *testing.T) {
	r := NewWithConfig(emptyScene, Config{Workers: 4, TilesPerWorker: 5})
	defer r.Close()
	r.Resize(640, 480)

	if !r.IsDone() {
		t.Fatal("fresh renderer must be done")
	}
	r.Update(0.1)
	r.RenderFrame()

	// 20 jobs yield a 4x4 tile grid.
	r.mu.Lock()
	tileCount := len(r.tiles)
	var covered uint64
	for _, tl := range r.tiles {
		if tl.maxX > 640 || tl.maxY > 480 {
			t.Errorf("tile exceeds buffer: %+v", tl)
		}
		covered += uint64(tl.maxX-tl.minX) * uint64(tl.maxY-tl.minY)
	}
	r.mu.Unlock()
	if tileCount != 16 {
		t.Errorf("tile count = %d, want 16", tileCount)
	}
	if covered != 640*480 {
		t.Errorf("tiles cover %d pixels, want %d", covered, 640*480)
	}

	r.Wait()
	if !r.IsDone() {
		t.Error("frame must be done after Wait")
	}
	r.mu.Lock()
	for i, tl := range r.tiles {
		if !tl.done.Load() {
			t.Errorf("tile %d not done after frame completion", i)
		}
	}
	r.mu.Unlock()

	// An empty scene renders pure background.
	for i, c := range r.Buffer() {
		if c != trace.DefaultBackground {
			t.Fatalf("pixel %d = %+v, want background", i, c)
		}
	}
}

func TestTinyBufferTileClipping(t *testing.T) {
	r := NewWithConfig(emptyScene, Config{Workers: 8, TilesPerWorker: 5})
	defer r.Close()
	// Fewer pixels per axis than tile edges: steps clamp to 1 pixel.
	r.Resize(3, 2)
	r.Update(0)
	r.RenderFrame()
	r.Wait()
	r.mu.Lock()
	n := len(r.tiles)
	r.mu.Unlock()
	if n != 6 {
		t.Errorf("tile count = %d, want one per pixel (6)", n)
	}
}

func TestRenderFrameAndUpdateNoopWhileBusy(t *testing.T) {
	gate := make(chan struct{})
	r := NewWithConfig(gateScene(gate), Config{Workers: 2, TilesPerWorker: 2})
	defer r.Close()
	r.Resize(32, 32)
	r.Update(0.5)
	timeBefore := r.Time()
	r.RenderFrame()

	// Workers are now blocked inside the first pixels of their tiles.
	waitFor(t, "workers to pop tiles", func() bool { return r.cursor.Load() > 0 })
	if r.IsDone() {
		t.Fatal("frame with blocked workers cannot be done")
	}

	cursorBefore := r.cursor.Load()
	r.mu.Lock()
	tilesBefore := len(r.tiles)
	r.mu.Unlock()

	r.RenderFrame() // must not reset the queue
	r.Update(1)     // must not advance time or rebuild the scene

	if got := r.cursor.Load(); got != cursorBefore {
		t.Errorf("cursor changed from %d to %d during busy RenderFrame", cursorBefore, got)
	}
	r.mu.Lock()
	if len(r.tiles) != tilesBefore {
		t.Errorf("tile list swapped during busy RenderFrame")
	}
	r.mu.Unlock()
	if r.Time() != timeBefore {
		t.Errorf("time advanced during busy Update: %v -> %v", timeBefore, r.Time())
	}

	close(gate)
	r.Wait()
	if !r.IsDone() {
		t.Error("frame must complete after gate release")
	}
}

func TestCancelSkipsQueuedTiles(t *testing.T) {
	gate := make(chan struct{})
	r := NewWithConfig(gateScene(gate), Config{Workers: 1, TilesPerWorker: 4})
	defer r.Close()
	r.Resize(64, 64)
	r.Update(0)
	r.RenderFrame()
	waitFor(t, "worker to pop a tile", func() bool { return r.cursor.Load() > 0 })

	// Cancel waits for the in-flight tile, so release it shortly.
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(gate)
	}()
	r.Cancel()

	if !r.IsDone() {
		t.Error("cancelled frame must report done")
	}
	r.mu.Lock()
	if int(r.cursor.Load()) != len(r.tiles) {
		t.Errorf("cancel must consume the whole queue: cursor %d of %d", r.cursor.Load(), len(r.tiles))
	}
	r.mu.Unlock()
}

func TestResize(t *testing.T) {
	r := NewWithConfig(emptyScene, Config{Workers: 1})
	defer r.Close()

	// Zero dimensions are a no-op.
	r.Resize(0, 32)
	r.Resize(32, 0)
	if w, h := r.Size(); w != 0 || h != 0 {
		t.Errorf("zero resize must not take effect, got %dx%d", w, h)
	}

	r.Resize(16, 8)
	if w, h := r.Size(); w != 16 || h != 8 {
		t.Errorf("size = %dx%d, want 16x8", w, h)
	}
	if len(r.Buffer()) != 16*8 {
		t.Errorf("buffer length = %d, want %d", len(r.Buffer()), 16*8)
	}
	for i, c := range r.Buffer() {
		if c != resizeFill {
			t.Fatalf("fresh buffer pixel %d = %+v, want neutral fill", i, c)
		}
	}

	// Render, then resize to the same dimensions: buffer contents survive.
	r.Update(0)
	r.RenderFrame()
	r.Wait()
	r.Resize(16, 8)
	if r.Buffer()[0] != trace.DefaultBackground {
		t.Error("same-size resize must not reallocate the buffer")
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := NewWithConfig(sphereScene, Config{Workers: 4})
	defer r.Close()
	r.Resize(64, 64)

	r.Update(0.1)
	r.RenderFrame()
	r.Wait()
	first := make([]gmarch.Color, len(r.Buffer()))
	copy(first, r.Buffer())

	// Same scene time, same size: the buffer must match bit for bit.
	r.Update(0)
	r.RenderFrame()
	r.Wait()
	for i, c := range r.Buffer() {
		if c != first[i] {
			t.Fatalf("pixel %d differs between identical renders: %+v vs %+v", i, c, first[i])
		}
	}
}

func TestStepDrivesFrames(t *testing.T) {
	r := NewWithConfig(emptyScene, Config{Workers: 2})
	defer r.Close()
	r.Resize(32, 32)

	r.Step(0.1)
	r.Wait()
	if r.Time() != 0.1 {
		t.Errorf("time after first step = %v, want 0.1", r.Time())
	}
	r.Step(0.1)
	r.Wait()
	closeEnough := math32.Abs(r.Time()-0.2) < 1e-6
	if !closeEnough {
		t.Errorf("time after second step = %v, want 0.2", r.Time())
	}
}

func TestBlockPreviewStride(t *testing.T) {
	r := NewWithConfig(sphereScene, Config{Workers: 2, PixelStride: 4})
	defer r.Close()
	r.Resize(32, 32)
	r.Update(0.1)
	r.RenderFrame()
	r.Wait()

	// Every 4x4 block holds a single color.
	buf := r.Buffer()
	for by := uint32(0); by < 32; by += 4 {
		for bx := uint32(0); bx < 32; bx += 4 {
			want := buf[by*32+bx]
			for j := uint32(0); j < 4; j++ {
				for i := uint32(0); i < 4; i++ {
					if got := buf[(by+j)*32+bx+i]; got != want {
						t.Fatalf("block (%d,%d) pixel (%d,%d) = %+v, want %+v", bx, by, i, j, got, want)
					}
				}
			}
		}
	}
}
