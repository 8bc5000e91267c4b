package stage

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mokiat/gomath/dprec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nobonobo/lowpoly-church/layout"
	"github.com/nobonobo/lowpoly-church/orbit"
	"github.com/nobonobo/lowpoly-church/scene"
)

type recorder struct {
	width, height int
	ratio         float64
	renders       int
	cameras       []Camera
	err           error
}

func (r *recorder) SetSize(width, height int) {
	r.width, r.height = width, height
}

func (r *recorder) SetPixelRatio(ratio float64) {
	r.ratio = ratio
}

func (r *recorder) Render(s *scene.Scene, camera *Camera) error {
	if r.err != nil {
		return r.err
	}
	r.renders++
	r.cameras = append(r.cameras, *camera)
	return nil
}

func newContext(t *testing.T, preset string, opts ...Option) (*Context, *recorder) {
	t.Helper()
	l, err := layout.Preset(preset)
	require.NoError(t, err)
	renderer := &recorder{}
	c, err := New(l, renderer, opts...)
	require.NoError(t, err)
	return c, renderer
}

func TestNewUsesLayoutOutput(t *testing.T) {
	c, renderer := newContext(t, "still")
	assert.Equal(t, 650, renderer.width)
	assert.Equal(t, 650, renderer.height)
	assert.Equal(t, 1.0, renderer.ratio)
	assert.Equal(t, 1.0, c.Camera.Aspect)
	assert.Nil(t, c.Rig)
	assert.Nil(t, c.Composer)
}

func TestResizeUpdatesAspectAndSurfaces(t *testing.T) {
	composer := &recorder{}
	c, renderer := newContext(t, "orbit", WithComposer(composer))

	sizes := [][2]int{{800, 600}, {320, 640}, {1, 1}, {1920, 1080}}
	for _, size := range sizes {
		require.NoError(t, c.Resize(size[0], size[1]))
		assert.Equal(t, float64(size[0])/float64(size[1]), c.Camera.Aspect)
		assert.Equal(t, size[0], renderer.width)
		assert.Equal(t, size[1], renderer.height)
		assert.Equal(t, size[0], composer.width)
		assert.Equal(t, size[1], composer.height)
	}

	left, right, bottom, top := c.Camera.Frustum()
	assert.InDelta(t, -1.5*1920.0/1080.0, left, 1e-12)
	assert.InDelta(t, 1.5*1920.0/1080.0, right, 1e-12)
	assert.Equal(t, -1.5, bottom)
	assert.Equal(t, 1.5, top)
}

func TestResizeRejectsEmptyViewport(t *testing.T) {
	c, renderer := newContext(t, "still")
	for _, size := range [][2]int{{0, 100}, {100, 0}, {-1, 10}} {
		err := c.Resize(size[0], size[1])
		assert.ErrorIs(t, err, ErrInvalidSize)
	}
	assert.Equal(t, 650, renderer.width)
	assert.Equal(t, 1.0, c.Camera.Aspect)
}

func TestPixelRatioIsCapped(t *testing.T) {
	composer := &recorder{}
	c, renderer := newContext(t, "still", WithComposer(composer), WithPixelRatio(3))
	assert.Equal(t, 2.0, c.PixelRatio())
	assert.Equal(t, 2.0, renderer.ratio)
	assert.Equal(t, 2.0, composer.ratio)

	c.SetPixelRatio(1.5)
	assert.Equal(t, 1.5, renderer.ratio)
	c.SetPixelRatio(math.NaN())
	assert.Equal(t, 1.0, renderer.ratio)
}

func TestFrameUsesComposerWhenPresent(t *testing.T) {
	composer := &recorder{}
	c, renderer := newContext(t, "orbit", WithComposer(composer), WithSize(400, 200))
	assert.Equal(t, 400, composer.width)
	assert.Equal(t, 2.0, c.Camera.Aspect)

	require.NoError(t, c.Frame(1.0/60.0))
	assert.Equal(t, 0, renderer.renders)
	assert.Equal(t, 1, composer.renders)
	assert.Equal(t, uint64(1), c.Frames())
}

func TestFrameAdvancesRig(t *testing.T) {
	c, _ := newContext(t, "orbit")
	require.NotNil(t, c.Rig)
	start := c.Scene.Directional.Position

	require.NoError(t, c.Frame(1))
	assert.InDelta(t, 0.5, c.Rig.Angle(), 1e-12)
	assert.NotEqual(t, start, c.Scene.Directional.Position)
	assert.InDelta(t, 1.0, c.Elapsed(), 1e-12)

	c.Restart()
	assert.Zero(t, c.Rig.Angle())
	assert.InDelta(t, start.X, c.Scene.Directional.Position.X, 1e-9)
	assert.InDelta(t, start.Z, c.Scene.Directional.Position.Z, 1e-9)
	assert.Zero(t, c.Frames())
}

func TestFramesStayFinite(t *testing.T) {
	c, renderer := newContext(t, "orbit")
	c.Controls.PointerDown(orbit.ButtonRotate, 10, 10)
	for i := range 500 {
		c.Controls.PointerMove(10+float64(i%37), 10-float64(i%23))
		dt := 1.0 / 60.0
		switch i % 7 {
		case 3:
			dt = math.NaN()
		case 5:
			dt = -1
		}
		require.NoError(t, c.Frame(dt))
	}
	c.Controls.PointerUp()

	for _, camera := range renderer.cameras {
		assert.True(t, camera.finite())
	}
	p := c.Scene.Directional.Position
	assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z))
	assert.GreaterOrEqual(t, c.Rig.Angle(), 0.0)
	assert.Less(t, c.Rig.Angle(), 2*math.Pi)
}

func TestFrameWrapsRenderError(t *testing.T) {
	c, renderer := newContext(t, "still")
	failure := errors.New("device lost")
	renderer.err = failure
	err := c.Frame(0.1)
	assert.ErrorIs(t, err, failure)
	assert.Zero(t, c.Frames())
}

func TestRunStopsOnCancel(t *testing.T) {
	c, renderer := newContext(t, "orbit")
	ticks := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, ticks)
	}()

	start := time.Unix(100, 0)
	ticks <- start
	ticks <- start.Add(500 * time.Millisecond)
	ticks <- start.Add(time.Second)
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, 3, renderer.renders)
	assert.InDelta(t, 1.0, c.Elapsed(), 1e-9)
}

func TestRunStopsWhenTicksClose(t *testing.T) {
	c, renderer := newContext(t, "still")
	ticks := make(chan time.Time, 2)
	ticks <- time.Unix(0, 0)
	ticks <- time.Unix(1, 0)
	close(ticks)
	require.NoError(t, c.Run(context.Background(), ticks))
	assert.Equal(t, 2, renderer.renders)
}

func TestProject(t *testing.T) {
	c, _ := newContext(t, "still")
	target := c.Camera.Project(dprec.ZeroVec3())
	assert.InDelta(t, 0.0, target.X, 1e-12)
	assert.InDelta(t, 0.0, target.Y, 1e-12)

	// a point along the camera's right axis at the frustum edge
	right, _, _ := c.Camera.Basis()
	edge := c.Camera.Project(dprec.Vec3Prod(right, 1.5))
	assert.InDelta(t, 1.0, edge.X, 1e-12)

	assert.InDelta(t, math.Sqrt(12), c.Camera.ViewDepth(dprec.ZeroVec3()), 1e-12)
}
