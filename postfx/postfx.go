// Package postfx runs rendered frames through a chain of image passes.
package postfx

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/schema"
	"github.com/nobonobo/lowpoly-church/stage"
)

// ErrSizeMismatch is returned when the source frame does not have the
// size the composer was configured for.
var ErrSizeMismatch = errors.New("frame size does not match composer size")

// Pass transforms one frame into the next. Implementations must not keep
// src.
type Pass interface {
	Apply(src *image.RGBA) (*image.RGBA, error)
}

// Source is a renderer whose last frame can be read back.
type Source interface {
	stage.Renderer
	Frame() *image.RGBA
}

// Composer renders through its source and then through every pass in
// order. It implements stage.Composer.
type Composer struct {
	source Source
	passes []Pass

	width  int
	height int
	ratio  float64

	output *image.RGBA
}

var _ stage.Composer = (*Composer)(nil)

func NewComposer(source Source, passes ...Pass) *Composer {
	return &Composer{
		source: source,
		passes: passes,
		ratio:  1,
	}
}

// ForLayout returns a composer with the layout's bloom pass, or nil when
// bloom is disabled.
func ForLayout(l *schema.Layout, source Source) *Composer {
	if !l.Bloom.Enabled {
		return nil
	}
	return NewComposer(source, NewBloomPass(l.Bloom))
}

func (c *Composer) AddPass(pass Pass) {
	c.passes = append(c.passes, pass)
}

func (c *Composer) SetSize(width, height int) {
	c.width, c.height = width, height
}

func (c *Composer) SetPixelRatio(ratio float64) {
	c.ratio = ratio
}

// BufferSize returns the expected frame size in device pixels.
func (c *Composer) BufferSize() (width, height int) {
	if c.width <= 0 || c.height <= 0 {
		return 0, 0
	}
	return max(1, int(math.Round(float64(c.width)*c.ratio))),
		max(1, int(math.Round(float64(c.height)*c.ratio)))
}

// Output returns the last composed frame.
func (c *Composer) Output() *image.RGBA {
	return c.output
}

// Frame is an alias of Output so that composers can be chained as
// sources.
func (c *Composer) Frame() *image.RGBA {
	return c.output
}

func (c *Composer) Render(s *scene.Scene, camera *stage.Camera) error {
	if err := c.source.Render(s, camera); err != nil {
		return err
	}
	output, err := c.Process(c.source.Frame())
	if err != nil {
		return err
	}
	c.output = output
	return nil
}

// Process runs src through the passes.
func (c *Composer) Process(src *image.RGBA) (*image.RGBA, error) {
	if src == nil {
		return nil, errors.New("source has no frame")
	}
	width, height := c.BufferSize()
	if src.Rect.Dx() != width || src.Rect.Dy() != height {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrSizeMismatch, src.Rect.Dx(), src.Rect.Dy(), width, height)
	}
	current := src
	for i, pass := range c.passes {
		next, err := pass.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("pass %d failed: %w", i, err)
		}
		current = next
	}
	return current, nil
}
