package gmarch

import "github.com/chewxy/math32"

// Color is an RGB triple of float32 channels. Channels are unclamped during
// shading; clamping to [0,1] happens at the presentation boundary.
type Color struct {
	R, G, B float32
}

// Common colors.
var (
	White = Color{1, 1, 1}
	Black = Color{}
)

// NewColor returns a color with the given channels.
func NewColor(r, g, b float32) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromHex converts a 24-bit 0xRRGGBB value to a Color.
func ColorFromHex(hex uint32) Color {
	return Color{
		R: float32(uint8(hex>>16)) / 255,
		G: float32(uint8(hex>>8)) / 255,
		B: float32(uint8(hex)) / 255,
	}
}

// Add returns the channel-wise sum of c and d.
func (c Color) Add(d Color) Color {
	return Color{R: c.R + d.R, G: c.G + d.G, B: c.B + d.B}
}

// Mul returns the channel-wise product of c and d.
func (c Color) Mul(d Color) Color {
	return Color{R: c.R * d.R, G: c.G * d.G, B: c.B * d.B}
}

// Scale returns c with every channel multiplied by s.
func (c Color) Scale(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s}
}

// Clamped returns c with every channel clamped to [0, 1].
// NaN channels clamp to 0.
func (c Color) Clamped() Color {
	clamp := func(v float32) float32 {
		if math32.IsNaN(v) {
			return 0
		}
		return clampf(v, 0, 1)
	}
	return Color{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B)}
}

// LerpColor interpolates channel-wise between c0 at t=0 and c1 at t=1.
func LerpColor(c0, c1 Color, t float32) Color {
	return Color{
		R: mixf(c0.R, c1.R, t),
		G: mixf(c0.G, c1.G, t),
		B: mixf(c0.B, c1.B, t),
	}
}
