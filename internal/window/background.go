package window

import (
	"image"
	"image/color"
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/vanderheijden86/foodgalaxy/pkg/viewport"
)

const (
	// NebulaTile is the edge of the repeating noise texture in pixels.
	NebulaTile = 512
	// ParallaxFactor scales how far the nebula follows a pan.
	ParallaxFactor = 0.3

	minGridCell = 8.0

	noiseAlpha  = 2.0
	noiseBeta   = 2.0
	noiseOctave = 3
	noiseScale  = 1.0 / 160
)

var spaceColor = color.RGBA{0x0b, 0x10, 0x20, 0xff}

// Nebula samples perlin noise for the slowly drifting background.
type Nebula struct {
	noise *perlin.Perlin
}

// NewNebula returns a nebula seeded with seed. Equal seeds give equal
// textures.
func NewNebula(seed int64) *Nebula {
	return &Nebula{noise: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctave, seed)}
}

// Value returns the noise at pixel (x, y), mapped to [0, 1].
func (n *Nebula) Value(x, y float64) float64 {
	v := n.noise.Noise2D(x*noiseScale, y*noiseScale)
	return clamp01(v*0.5 + 0.5)
}

// Tile renders a size×size texture. The noise is mirrored at the edges so
// tiles join without seams.
func (n *Nebula) Tile(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	half := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx := half - math.Abs(float64(x)-half)
			fy := half - math.Abs(float64(y)-half)
			img.SetRGBA(x, y, Shade(n.Value(fx, fy)))
		}
	}
	return img
}

// Shade maps a noise value to a dim blue-violet.
func Shade(v float64) color.RGBA {
	v = clamp01(v)
	// only the upper half of the noise lights up
	glow := math.Max(0, v-0.5) * 2
	return color.RGBA{
		R: spaceColor.R + uint8(glow*40),
		G: spaceColor.G + uint8(glow*18),
		B: spaceColor.B + uint8(glow*70),
		A: 0xff,
	}
}

// ParallaxOffset returns where the first nebula tile starts for bg. The
// result lies in (-tile, 0].
func ParallaxOffset(bg viewport.Background, factor, tile float64) (x, y float64) {
	return wrap(bg.OffsetX*factor, tile), wrap(bg.OffsetY*factor, tile)
}

// GridLines returns the screen positions of grid lines along one axis of
// length extent. Cells smaller than a few pixels are not drawn.
func GridLines(offset, cell, extent float64) []float64 {
	if cell < minGridCell || extent <= 0 {
		return nil
	}
	start := wrap(offset, cell)
	if start < 0 {
		start += cell
	}
	var lines []float64
	for v := start; v < extent; v += cell {
		lines = append(lines, v)
	}
	return lines
}

// wrap maps v into (-m, 0].
func wrap(v, m float64) float64 {
	r := math.Mod(v, m)
	if r > 0 {
		r -= m
	}
	return r
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
