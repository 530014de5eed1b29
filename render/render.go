// Package render schedules sphere tracing over a pool of workers. A frame
// is split into tiles; workers pop tiles from a shared cursor and write
// pixels into a single shared color buffer that a presenter may read
// while rendering is still in flight.
package render

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"

	"github.com/soypat/gmarch"
	"github.com/soypat/gmarch/trace"
)

// SceneBuilder populates a freshly reset scene for the given frame time.
// The renderer calls it once per frame.
type SceneBuilder func(s *trace.Scene, time float32)

const (
	// JobCoreMultiplier is the default number of tiles generated per worker.
	JobCoreMultiplier = 5
	// InitialStepSize is the default pixel stride. Strides above 1 render
	// coarse blocks, trading resolution for speed.
	InitialStepSize = 1
)

// resizeFill initializes fresh buffers so unrendered regions read as a
// neutral tone rather than garbage.
var resizeFill = gmarch.Color{R: 0.5, G: 0.6, B: 0.7}

// Config carries per-renderer tuning. The zero value selects defaults.
type Config struct {
	// Workers is the worker count. Defaults to the logical CPU count.
	Workers int
	// TilesPerWorker scales the tile count. More tiles means earlier
	// progressive feedback at slightly more scheduling overhead.
	// Defaults to JobCoreMultiplier.
	TilesPerWorker int
	// PixelStride renders stride-wide square blocks with a single traced
	// color. Defaults to InitialStepSize.
	PixelStride uint32
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.TilesPerWorker <= 0 {
		c.TilesPerWorker = JobCoreMultiplier
	}
	if c.PixelStride == 0 {
		c.PixelStride = InitialStepSize
	}
	return c
}

// tile is one rectangular unit of render work. done has a single writer:
// the worker that popped the tile, or the canceller for skipped tiles.
type tile struct {
	minX, minY, maxX, maxY uint32
	done                   atomic.Bool
}

// Renderer owns the worker pool, the tile queue of the current frame and
// the shared pixel buffer. Workers live for the renderer's lifetime and
// park on a condition variable between frames.
type Renderer struct {
	build SceneBuilder
	scene *trace.Scene
	cfg   Config

	// mu guards the tile list and cursor mutation. The cursor is also
	// atomic so it can be read without taking the lock.
	mu     sync.Mutex
	tiles  []*tile
	cursor atomic.Uint32

	width  uint32
	height uint32
	buf    []gmarch.Color
	time   float32

	shutdown atomic.Bool
	sleepMu  sync.Mutex
	sleep    *sync.Cond
	wg       sync.WaitGroup
}

// New creates a renderer with default configuration and starts its workers.
// The caller must Close the renderer to release them.
func New(build SceneBuilder) *Renderer {
	return NewWithConfig(build, Config{})
}

// NewWithConfig creates a renderer with explicit configuration and starts
// its workers.
func NewWithConfig(build SceneBuilder, cfg Config) *Renderer {
	r := &Renderer{
		build: build,
		scene: trace.NewScene(),
		cfg:   cfg.withDefaults(),
	}
	r.sleep = sync.NewCond(&r.sleepMu)
	for i := 0; i < r.cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	return r
}

// IsDone reports whether every tile of the current frame has completed.
// A renderer with no enqueued frame is done.
func (r *Renderer) IsDone() bool {
	r.mu.Lock()
	tiles := r.tiles
	r.mu.Unlock()
	for _, t := range tiles {
		if !t.done.Load() {
			return false
		}
	}
	return true
}

// Update advances frame time by dt and rebuilds the scene through the
// scene builder. No-op while a frame is in flight.
func (r *Renderer) Update(dt float32) {
	if !r.IsDone() {
		return
	}
	r.time += dt
	r.scene.Reset()
	r.build(r.scene, r.time)
	r.scene.SetSize(r.width, r.height)
}

// RenderFrame partitions the buffer into tiles and wakes the workers.
// No-op while a frame is in flight.
func (r *Renderer) RenderFrame() {
	if !r.IsDone() {
		return
	}
	r.mu.Lock()
	jobs := r.cfg.Workers * r.cfg.TilesPerWorker
	edge := uint32(math32.Max(math32.Sqrt(float32(jobs)), 1))
	hStep := max(1, r.width/edge)
	vStep := max(1, r.height/edge)

	r.tiles = r.tiles[:0]
	r.cursor.Store(0)
	for y := uint32(0); y < r.height; y += vStep {
		for x := uint32(0); x < r.width; x += hStep {
			r.tiles = append(r.tiles, &tile{
				minX: x, minY: y,
				maxX: min(r.width, x+hStep),
				maxY: min(r.height, y+vStep),
			})
		}
	}
	r.mu.Unlock()

	r.sleepMu.Lock()
	r.sleep.Broadcast()
	r.sleepMu.Unlock()
}

// Step is one frame-driver tick: when the previous frame is complete it
// advances time, rebuilds the scene and enqueues the next frame. Call it
// on every presentation timer tick; present the buffer regardless.
func (r *Renderer) Step(dt float32) {
	if r.IsDone() {
		r.Update(dt)
		r.RenderFrame()
	}
}

// Cancel abandons the current frame: tiles not yet started are marked done
// without rendering, then Cancel spins until in-flight tiles drain. Stale
// pixels remain in the buffer until the next frame overwrites them.
func (r *Renderer) Cancel() {
	r.mu.Lock()
	for int(r.cursor.Load()) < len(r.tiles) {
		cur := r.cursor.Load()
		r.tiles[cur].done.Store(true)
		r.cursor.Store(cur + 1)
	}
	r.mu.Unlock()

	for !r.IsDone() {
		runtime.Gosched()
	}
}

// Resize cancels any in-flight frame, reallocates the buffer when the
// dimensions changed and propagates the size to the scene. A zero
// dimension is a no-op.
func (r *Renderer) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	if !r.IsDone() {
		r.Cancel()
	}
	if width != r.width || height != r.height {
		r.width = width
		r.height = height
		r.buf = make([]gmarch.Color, width*height)
		for i := range r.buf {
			r.buf[i] = resizeFill
		}
	}
	r.scene.SetSize(width, height)
}

// Buffer returns the shared pixel buffer, row-major with origin top-left.
// Reads during rendering see partial frames; the buffer is consistent once
// IsDone reports true. Values are unclamped.
func (r *Renderer) Buffer() []gmarch.Color { return r.buf }

// Size returns the buffer dimensions.
func (r *Renderer) Size() (width, height uint32) { return r.width, r.height }

// Time returns the accumulated frame time.
func (r *Renderer) Time() float32 { return r.time }

// Wait blocks until the current frame completes.
func (r *Renderer) Wait() {
	for !r.IsDone() {
		runtime.Gosched()
	}
}

// Close shuts the worker pool down and joins every worker. In-flight tiles
// finish first. The renderer must not be used afterwards.
func (r *Renderer) Close() error {
	r.shutdown.Store(true)
	r.sleepMu.Lock()
	r.sleep.Broadcast()
	r.sleepMu.Unlock()
	r.wg.Wait()
	return nil
}

func (r *Renderer) nextTile() *tile {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.cursor.Load()
	if int(cur) < len(r.tiles) {
		r.cursor.Store(cur + 1)
		return r.tiles[cur]
	}
	return nil
}

func (r *Renderer) hasPendingTile() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.cursor.Load()) < len(r.tiles)
}

func (r *Renderer) worker() {
	defer r.wg.Done()
	for !r.shutdown.Load() {
		t := r.nextTile()
		if t == nil {
			r.park()
			continue
		}
		r.renderTile(t)
		t.done.Store(true)
	}
}

func (r *Renderer) park() {
	r.sleepMu.Lock()
	for !r.shutdown.Load() && !r.hasPendingTile() {
		r.sleep.Wait()
	}
	r.sleepMu.Unlock()
}

// renderTile walks the tile's pixels in raster order. With a stride above 1
// the buffer is divided into stride-wide square blocks aligned to multiples
// of the stride; each block takes the color traced at its top-left pixel and
// only the part of the block inside the tile is written.
func (r *Renderer) renderTile(t *tile) {
	stride := r.cfg.PixelStride
	for by := t.minY - t.minY%stride; by < t.maxY; by += stride {
		for bx := t.minX - t.minX%stride; bx < t.maxX; bx += stride {
			c := r.scene.ColorAtPixel(bx, by)
			for y := max(by, t.minY); y < min(by+stride, t.maxY); y++ {
				for x := max(bx, t.minX); x < min(bx+stride, t.maxX); x++ {
					r.setPixel(x, y, c)
				}
			}
		}
	}
}

func (r *Renderer) setPixel(x, y uint32, c gmarch.Color) {
	if x < r.width && y < r.height {
		r.buf[y*r.width+x] = c
	}
}
