// Package stage ties a scene, its camera, the camera controls and the light
// rig to a renderer. A Context is created once and passed explicitly to
// everything that renders or reacts to window events.
package stage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nobonobo/lowpoly-church/orbit"
	"github.com/nobonobo/lowpoly-church/rig"
	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/schema"
)

// ErrInvalidSize is returned when a viewport dimension is not positive.
var ErrInvalidSize = errors.New("invalid viewport size")

const maxPixelRatio = 2.0

// Surface is anything with a drawing buffer that follows the viewport.
type Surface interface {
	SetSize(width, height int)
	SetPixelRatio(ratio float64)
}

type Renderer interface {
	Surface
	Render(s *scene.Scene, camera *Camera) error
}

// Composer renders the frame through post-processing passes. When a
// context has one, it replaces the direct renderer call.
type Composer interface {
	Surface
	Render(s *scene.Scene, camera *Camera) error
}

type Option func(c *Context)

func WithComposer(composer Composer) Option {
	return func(c *Context) {
		c.Composer = composer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		c.logger = logger
	}
}

// WithPixelRatio sets the device pixel ratio. It is capped at 2.
func WithPixelRatio(ratio float64) Option {
	return func(c *Context) {
		c.pixelRatio = ratio
	}
}

// WithSize overrides the initial viewport size from the layout.
func WithSize(width, height int) Option {
	return func(c *Context) {
		c.width, c.height = width, height
	}
}

// Context holds everything a frame needs.
type Context struct {
	Layout   *schema.Layout
	Scene    *scene.Scene
	Camera   *Camera
	Controls *orbit.Controls
	Rig      *rig.Rig
	Renderer Renderer
	Composer Composer

	width      int
	height     int
	pixelRatio float64
	frames     uint64
	elapsed    float64
	logger     *slog.Logger
}

// New builds the scene for the layout and sizes the renderer to the
// layout's output.
func New(l *schema.Layout, renderer Renderer, opts ...Option) (*Context, error) {
	if renderer == nil {
		return nil, errors.New("renderer is required")
	}
	s, err := scene.Build(l)
	if err != nil {
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}
	c := &Context{
		Layout:     l,
		Scene:      s,
		Camera:     NewCamera(l.Camera),
		Controls:   orbit.FromLayout(l),
		Rig:        rig.FromLayout(l, s),
		Renderer:   renderer,
		width:      l.Output.Width,
		height:     l.Output.Height,
		pixelRatio: l.Output.PixelRatio,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.SetPixelRatio(c.pixelRatio)
	if err := c.Resize(c.width, c.height); err != nil {
		return nil, err
	}
	c.Camera.Sync(c.Controls)
	return c, nil
}

// Size returns the viewport size in CSS pixels.
func (c *Context) Size() (width, height int) {
	return c.width, c.height
}

func (c *Context) PixelRatio() float64 {
	return c.pixelRatio
}

// Frames returns the number of frames rendered since creation or the last
// restart.
func (c *Context) Frames() uint64 {
	return c.frames
}

// Elapsed returns the animated time in seconds.
func (c *Context) Elapsed() float64 {
	return c.elapsed
}

// Resize adapts the camera and every drawing surface to a new viewport.
// The camera aspect becomes width/height and the renderer and composer
// receive the same size.
func (c *Context) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	c.width, c.height = width, height
	c.Camera.Aspect = float64(width) / float64(height)
	viewWidth, viewHeight := c.Camera.ViewSize()
	c.Controls.SetView(viewWidth, viewHeight, width, height)
	c.Renderer.SetSize(width, height)
	if c.Composer != nil {
		c.Composer.SetSize(width, height)
	}
	c.logger.Debug("Viewport resized", "width", width, "height", height, "aspect", c.Camera.Aspect)
	return nil
}

// SetPixelRatio applies min(ratio, 2) to every surface. Invalid ratios
// fall back to 1.
func (c *Context) SetPixelRatio(ratio float64) {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 1
	}
	c.pixelRatio = math.Min(ratio, maxPixelRatio)
	c.Renderer.SetPixelRatio(c.pixelRatio)
	if c.Composer != nil {
		c.Composer.SetPixelRatio(c.pixelRatio)
	}
}

// Frame advances the animation by dt seconds and renders once: controls,
// then the light rig, then the renderer or composer.
func (c *Context) Frame(dt float64) error {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}
	c.Controls.Update()
	c.Camera.Sync(c.Controls)
	if !c.Camera.finite() {
		c.logger.Warn("Camera became invalid, restoring saved pose")
		c.Controls.Reset()
		c.Camera.Sync(c.Controls)
	}
	if c.Rig != nil {
		c.Rig.Update(dt)
		c.Rig.Apply(c.Scene)
	}

	var err error
	if c.Composer != nil {
		err = c.Composer.Render(c.Scene, c.Camera)
	} else {
		err = c.Renderer.Render(c.Scene, c.Camera)
	}
	if err != nil {
		return fmt.Errorf("failed to render frame %d: %w", c.frames, err)
	}
	c.frames++
	c.elapsed += dt
	return nil
}

// Restart returns the camera and the light to their initial state.
func (c *Context) Restart() {
	c.Controls.Reset()
	c.Camera.Sync(c.Controls)
	if c.Rig != nil {
		c.Rig.Reset()
		c.Rig.Apply(c.Scene)
	}
	c.frames = 0
	c.elapsed = 0
}

// Run renders a frame for every tick until ctx is cancelled or ticks is
// closed. The time between ticks drives the animation.
func (c *Context) Run(ctx context.Context, ticks <-chan time.Time) error {
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case now, ok := <-ticks:
			if !ok {
				return nil
			}
			var dt float64
			if !last.IsZero() {
				dt = now.Sub(last).Seconds()
			}
			last = now
			if err := c.Frame(dt); err != nil {
				return err
			}
		}
	}
}
