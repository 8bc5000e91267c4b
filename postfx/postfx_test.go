package postfx

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nobonobo/lowpoly-church/layout"
	"github.com/nobonobo/lowpoly-church/raster"
	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/schema"
	"github.com/nobonobo/lowpoly-church/stage"
)

func solid(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

type fixedSource struct {
	frame   *image.RGBA
	renders int
	err     error
}

func (f *fixedSource) SetSize(width, height int)   {}
func (f *fixedSource) SetPixelRatio(ratio float64) {}

func (f *fixedSource) Render(s *scene.Scene, camera *stage.Camera) error {
	f.renders++
	return f.err
}

func (f *fixedSource) Frame() *image.RGBA {
	return f.frame
}

type invert struct{}

func (invert) Apply(src *image.RGBA) (*image.RGBA, error) {
	dst := image.NewRGBA(src.Rect)
	for i := range src.Pix {
		dst.Pix[i] = 0xFF - src.Pix[i]
		if i%4 == 3 {
			dst.Pix[i] = src.Pix[i]
		}
	}
	return dst, nil
}

func TestBloomLeavesDarkFramesAlone(t *testing.T) {
	pass := &BloomPass{Threshold: 0.85, Strength: 1, Radius: 2, Levels: 3}
	src := solid(16, 16, color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xFF})
	out, err := pass.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, out.Pix)
}

func TestBloomSpreadsBrightPixels(t *testing.T) {
	pass := &BloomPass{Threshold: 0.85, Strength: 1, Radius: 2, Levels: 3}
	src := solid(32, 32, color.RGBA{A: 0xFF})
	src.SetRGBA(16, 16, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})

	out, err := pass.Apply(src)
	require.NoError(t, err)
	require.Equal(t, src.Rect, out.Rect)

	assert.Equal(t, uint8(0xFF), out.RGBAAt(16, 16).R)
	assert.Greater(t, out.RGBAAt(17, 16).R, uint8(0))
	assert.Greater(t, out.RGBAAt(16, 18).G, uint8(0))

	// the source is not modified
	assert.Equal(t, uint8(0), src.RGBAAt(17, 16).R)
}

func TestBloomStrengthZeroIsIdentity(t *testing.T) {
	pass := &BloomPass{Threshold: 0, Strength: 0, Radius: 2}
	src := solid(4, 4, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	out, err := pass.Apply(src)
	require.NoError(t, err)
	assert.Same(t, src, out)
}

func TestNewBloomPassFromLayout(t *testing.T) {
	pass := NewBloomPass(schema.Bloom{Enabled: true, Threshold: 0.5, Strength: 0.6, Radius: 4})
	assert.Equal(t, 0.5, pass.Threshold)
	assert.Equal(t, 0.6, pass.Strength)
	assert.Equal(t, 4.0, pass.Radius)
	assert.Equal(t, defaultBloomLevels, pass.Levels)
}

func TestComposerRunsPassesInOrder(t *testing.T) {
	source := &fixedSource{frame: solid(4, 2, color.RGBA{R: 0x10, A: 0xFF})}
	composer := NewComposer(source, invert{})
	composer.AddPass(invert{})
	composer.SetSize(4, 2)

	require.NoError(t, composer.Render(nil, nil))
	assert.Equal(t, 1, source.renders)
	assert.Equal(t, source.frame.Pix, composer.Output().Pix)

	composer = NewComposer(source, invert{})
	composer.SetSize(4, 2)
	require.NoError(t, composer.Render(nil, nil))
	assert.Equal(t, uint8(0xEF), composer.Output().RGBAAt(0, 0).R)
}

func TestComposerRejectsMismatchedFrames(t *testing.T) {
	source := &fixedSource{frame: solid(4, 4, color.RGBA{A: 0xFF})}
	composer := NewComposer(source)
	composer.SetSize(4, 4)
	composer.SetPixelRatio(2)

	err := composer.Render(nil, nil)
	assert.ErrorIs(t, err, ErrSizeMismatch)
	assert.Nil(t, composer.Output())

	composer.SetSize(2, 2)
	assert.NoError(t, composer.Render(nil, nil))
}

func TestComposerForwardsSourceErrors(t *testing.T) {
	failure := errors.New("boom")
	composer := NewComposer(&fixedSource{err: failure})
	composer.SetSize(1, 1)
	assert.ErrorIs(t, composer.Render(nil, nil), failure)
}

func TestForLayout(t *testing.T) {
	still, err := layout.Preset("still")
	require.NoError(t, err)
	assert.Nil(t, ForLayout(still, raster.New()))

	orbit, err := layout.Preset("orbit")
	require.NoError(t, err)
	composer := ForLayout(orbit, raster.New())
	require.NotNil(t, composer)
	require.Len(t, composer.passes, 1)
}

func TestComposerWithStage(t *testing.T) {
	l, err := layout.Preset("orbit")
	require.NoError(t, err)
	renderer := raster.New(raster.WithWorkers(2))
	composer := ForLayout(l, renderer)
	require.NotNil(t, composer)

	c, err := stage.New(l, renderer, stage.WithComposer(composer), stage.WithSize(40, 30), stage.WithPixelRatio(1.5))
	require.NoError(t, err)
	require.NoError(t, c.Frame(0.1))

	out := composer.Output()
	require.NotNil(t, out)
	assert.Equal(t, 60, out.Rect.Dx())
	assert.Equal(t, 45, out.Rect.Dy())
	assert.Equal(t, renderer.Frame().Rect, out.Rect)
}
