// Package gmarchaux provides auxiliary glue to get images out of the
// renderer quickly: buffer-to-image conversion with presentation clamping,
// PNG and BMP encoding and simple drive-to-completion helpers. Ideally
// users embed the renderer behind their own presentation layer since
// applications vary widely.
package gmarchaux

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"time"

	"golang.org/x/image/bmp"

	"github.com/soypat/gmarch"
	"github.com/soypat/gmarch/render"
)

// ImageFromBuffer converts a renderer color buffer to an 8-bit RGBA image.
// Channels are clamped to [0,1] here and nowhere earlier; shading is free
// to overshoot.
func ImageFromBuffer(buf []gmarch.Color, width, height uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			c := buf[y*width+x].Clamped()
			img.SetRGBA(int(x), int(y), color.RGBA{
				R: uint8(c.R * 255),
				G: uint8(c.G * 255),
				B: uint8(c.B * 255),
				A: 255,
			})
		}
	}
	return img
}

// RenderImage builds the scene at the given frame time, renders it to
// completion at width x height and returns the image.
func RenderImage(build render.SceneBuilder, frameTime float32, width, height uint32) (*image.RGBA, error) {
	if width == 0 || height == 0 {
		return nil, errors.New("zero image dimension")
	}
	r := render.New(build)
	defer r.Close()
	r.Resize(width, height)
	r.Update(frameTime)
	r.RenderFrame()
	r.Wait()
	return ImageFromBuffer(r.Buffer(), width, height), nil
}

// RenderPNG renders a single frame and PNG-encodes it to w.
func RenderPNG(w io.Writer, build render.SceneBuilder, frameTime float32, width, height uint32) error {
	img, err := RenderImage(build, frameTime, width, height)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// RenderBMP renders a single frame and BMP-encodes it to w.
func RenderBMP(w io.Writer, build render.SceneBuilder, frameTime float32, width, height uint32) error {
	img, err := RenderImage(build, frameTime, width, height)
	if err != nil {
		return err
	}
	return bmp.Encode(w, img)
}

// AnimateConfig configures Animate.
type AnimateConfig struct {
	Width, Height uint32
	// Frames is the number of frames to render.
	Frames int
	// DeltaTime advances the scene time between frames. Defaults to 0.1.
	DeltaTime float32
	// FrameOutput returns the destination for each encoded frame.
	FrameOutput func(frame int) (io.WriteCloser, error)
	// EncodeBMP selects BMP frame encoding instead of PNG.
	EncodeBMP bool
	// Silent suppresses progress output.
	Silent bool
	// Renderer tunes the worker pool.
	Renderer render.Config
}

// Animate renders a fixed-length animation frame by frame, encoding each
// completed frame through cfg.FrameOutput.
func Animate(build render.SceneBuilder, cfg AnimateConfig) error {
	if cfg.Width == 0 || cfg.Height == 0 {
		return errors.New("zero animation dimension")
	}
	if cfg.Frames <= 0 {
		return errors.New("animation needs at least 1 frame")
	}
	if cfg.FrameOutput == nil {
		return errors.New("Animate requires FrameOutput in config")
	}
	if cfg.DeltaTime == 0 {
		cfg.DeltaTime = 0.1
	}
	log := func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}

	r := render.NewWithConfig(build, cfg.Renderer)
	defer r.Close()
	r.Resize(cfg.Width, cfg.Height)

	encode := png.Encode
	if cfg.EncodeBMP {
		encode = bmp.Encode
	}
	for frame := 0; frame < cfg.Frames; frame++ {
		watch := stopwatch()
		r.Step(cfg.DeltaTime)
		r.Wait()
		img := ImageFromBuffer(r.Buffer(), cfg.Width, cfg.Height)
		if err := writeFrame(cfg.FrameOutput, encode, frame, img); err != nil {
			return err
		}
		log("frame", frame, "rendered in", watch())
	}
	return nil
}

func writeFrame(output func(int) (io.WriteCloser, error), encode func(io.Writer, image.Image) error, frame int, img image.Image) error {
	w, err := output(frame)
	if err != nil {
		return fmt.Errorf("opening frame %d output: %w", frame, err)
	}
	if err := encode(w, img); err != nil {
		w.Close()
		return fmt.Errorf("encoding frame %d: %w", frame, err)
	}
	return w.Close()
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
