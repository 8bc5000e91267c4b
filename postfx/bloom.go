package postfx

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"

	"github.com/nobonobo/lowpoly-church/schema"
)

const defaultBloomLevels = 3

// BloomPass adds a glow around bright pixels. Pixels whose luminance is
// at least Threshold are blurred at several resolutions, scaled by
// Strength and added back onto the frame.
type BloomPass struct {
	Threshold float64
	Strength  float64
	Radius    float64
	Levels    int
}

func NewBloomPass(b schema.Bloom) *BloomPass {
	return &BloomPass{
		Threshold: b.Threshold,
		Strength:  b.Strength,
		Radius:    b.Radius,
		Levels:    defaultBloomLevels,
	}
}

func (p *BloomPass) Apply(src *image.RGBA) (*image.RGBA, error) {
	if p.Strength <= 0 || !p.hasBrightPixels(src) {
		return src, nil
	}
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	bright := adjust.Apply(src, func(c color.RGBA) color.RGBA {
		if luminance(c) < p.Threshold {
			return color.RGBA{A: 0xFF}
		}
		return c
	})

	glow := image.NewRGBA(image.Rect(0, 0, width, height))
	fillOpaque(glow)
	for level := range max(1, p.Levels) {
		w, h := max(1, width>>level), max(1, height>>level)
		layer := bright
		if level > 0 {
			layer = transform.Resize(bright, w, h, transform.Linear)
		}
		if p.Radius > 0 {
			layer = blur.Gaussian(layer, p.Radius)
		}
		if level > 0 {
			layer = transform.Resize(layer, width, height, transform.Linear)
		}
		glow = blend.Add(glow, layer)
	}

	strength := p.Strength
	glow = adjust.Apply(glow, func(c color.RGBA) color.RGBA {
		return color.RGBA{
			R: scale(c.R, strength),
			G: scale(c.G, strength),
			B: scale(c.B, strength),
			A: 0xFF,
		}
	})
	return blend.Add(clone.AsRGBA(src), glow), nil
}

func (p *BloomPass) hasBrightPixels(img *image.RGBA) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if luminance(img.RGBAAt(x, y)) >= p.Threshold {
				return true
			}
		}
	}
	return false
}

func luminance(c color.RGBA) float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
}

func scale(v uint8, factor float64) uint8 {
	return uint8(min(255, float64(v)*factor+0.5))
}

func fillOpaque(img *image.RGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
}
