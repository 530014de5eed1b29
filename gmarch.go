// Package gmarch implements a scene model for sphere-traced rendering of
// signed distance fields: primitive shapes, constructive solid geometry
// combinators, materials, surface properties and lights. The trace and
// render subpackages evaluate a scene into a color buffer.
package gmarch

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

const (
	// largenum substitutes for an infinite distance in folds and sentinels.
	largenum = 1e12
	// epstol is used to check for badly conditioned denominators such as
	// transform determinants and near-surface distances.
	epstol = 1e-5
)

// Builder wraps scene element construction logic: shapes, CSG operations,
// materials and lights. Provides error handling strategies with panics or
// error accumulation during scene generation.
type Builder struct {
	// NoValidationPanic accumulates validation errors
	// instead of panicking on bad construction arguments.
	NoValidationPanic bool
	accumErrs         []error
}

func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

func (bld *Builder) shapeErrorf(msg string, args ...any) {
	if !bld.NoValidationPanic {
		panic(fmt.Sprintf(msg, args...))
	}
	bld.accumErrs = append(bld.accumErrs, fmt.Errorf(msg, args...))
}

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}

func absf(a float32) float32 {
	return math32.Abs(a)
}

func clampf(v, Min, Max float32) float32 {
	if v < Min {
		return Min
	} else if v > Max {
		return Max
	}
	return v
}

func mixf(x, y, a float32) float32 {
	return x*(1-a) + y*a
}
