package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/nobonobo/lowpoly-church/scene"
)

const (
	ambientImagePath   = "resources/raw/images/ambient.png"
	ambientImageWidth  = 64
	ambientImageHeight = 32
)

// ambientColor is the ambient light color scaled by its intensity. The
// engine lights scenes from an environment image, so a uniform image of
// this color reproduces a flat ambient term.
func ambientColor(light scene.AmbientLight) color.RGBA {
	c, _ := colorful.MakeColor(light.Color)
	r, g, b := c.LinearRgb()
	k := light.Intensity
	r, g, b = colorful.LinearRgb(r*k, g*k, b*k).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// writeAmbientImage renders the equirectangular environment for s.
func writeAmbientImage(path string, s *scene.Scene) error {
	fill := ambientColor(s.Ambient)
	img := image.NewRGBA(image.Rect(0, 0, ambientImageWidth, ambientImageHeight))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = fill.R
		img.Pix[i+1] = fill.G
		img.Pix[i+2] = fill.B
		img.Pix[i+3] = fill.A
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to write ambient image: %w", err)
	}
	return nil
}
