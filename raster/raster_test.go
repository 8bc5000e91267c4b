package raster

import (
	"image/color"
	"math"
	"testing"

	"github.com/mokiat/gomath/dprec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nobonobo/lowpoly-church/geometry"
	"github.com/nobonobo/lowpoly-church/layout"
	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/schema"
	"github.com/nobonobo/lowpoly-church/stage"
)

var (
	white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	grey  = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	red   = color.RGBA{R: 0xFF, A: 0xFF}
	green = color.RGBA{G: 0xFF, A: 0xFF}
	blue  = color.RGBA{B: 0xFF, A: 0xFF}
)

func frontCamera() *stage.Camera {
	return &stage.Camera{
		HalfSize: 1,
		Aspect:   1,
		Zoom:     1,
		Near:     0.1,
		Far:      100,
		Position: dprec.NewVec3(0, 0, 5),
		Target:   dprec.ZeroVec3(),
	}
}

func lambert(name string, c color.RGBA) *scene.Material {
	return &scene.Material{Name: name, Kind: schema.MaterialLambert, Color: c, Emissive: color.RGBA{A: 0xFF}}
}

func addPlane(t *testing.T, s *scene.Scene, name string, size float32, material *scene.Material, transform scene.Transform) *scene.Node {
	t.Helper()
	mesh, err := geometry.Plane(size, size)
	require.NoError(t, err)
	node := scene.NewMesh(name, &scene.Geometry{Key: name, Mesh: mesh}, material)
	node.Transform = transform
	require.NoError(t, s.Attach("", node))
	return node
}

func at(x, y, z float64) scene.Transform {
	transform := scene.IdentityTransform()
	transform.Position = dprec.NewVec3(x, y, z)
	return transform
}

func render(t *testing.T, s *scene.Scene, camera *stage.Camera, size int) *Renderer {
	t.Helper()
	r := New(WithWorkers(3))
	r.SetSize(size, size)
	require.NoError(t, r.Render(s, camera))
	return r
}

func center(r *Renderer) color.RGBA {
	frame := r.Frame()
	return frame.RGBAAt(frame.Rect.Dx()/2, frame.Rect.Dy()/2)
}

func pixelOf(r *Renderer, camera *stage.Camera, p dprec.Vec3) color.RGBA {
	frame := r.Frame()
	ndc := camera.Project(p)
	x := int((ndc.X + 1) / 2 * float64(frame.Rect.Dx()))
	y := int((1 - ndc.Y) / 2 * float64(frame.Rect.Dy()))
	return frame.RGBAAt(x, y)
}

func TestEmptySceneShowsBackground(t *testing.T) {
	s := scene.New("empty")
	s.Background = color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF}
	r := render(t, s, frontCamera(), 16)

	frame := r.Frame()
	for y := range 16 {
		for x := range 16 {
			require.Equal(t, s.Background, frame.RGBAAt(x, y))
		}
	}
}

func TestRenderNeedsSize(t *testing.T) {
	r := New()
	err := r.Render(scene.New("empty"), frontCamera())
	assert.Error(t, err)
}

func TestBufferFollowsPixelRatio(t *testing.T) {
	r := New()
	r.SetSize(10, 8)
	r.SetPixelRatio(2)
	require.NoError(t, r.Render(scene.New("empty"), frontCamera()))
	assert.Equal(t, 20, r.Frame().Rect.Dx())
	assert.Equal(t, 16, r.Frame().Rect.Dy())

	r.SetPixelRatio(1)
	require.NoError(t, r.Render(scene.New("empty"), frontCamera()))
	assert.Equal(t, 10, r.Frame().Rect.Dx())
}

func TestFacingLightIsBrighter(t *testing.T) {
	build := func(light dprec.Vec3) color.RGBA {
		s := scene.New("lit")
		s.Ambient = scene.AmbientLight{Color: white, Intensity: 0.25}
		s.Directional = scene.DirectionalLight{Color: white, Intensity: 1, Position: light}
		addPlane(t, s, "plane", 1, lambert("grey", grey), at(0, 0, 0))
		return center(render(t, s, frontCamera(), 16))
	}
	front := build(dprec.NewVec3(0, 0, 5))
	behind := build(dprec.NewVec3(0, 0, -5))
	assert.Greater(t, front.R, behind.R)
	assert.Equal(t, behind.R, behind.G)
	assert.NotEqual(t, white, behind)
}

func TestNearerSurfaceWins(t *testing.T) {
	for _, order := range [][2]string{{"red", "green"}, {"green", "red"}} {
		s := scene.New("depth")
		s.Ambient = scene.AmbientLight{Color: white, Intensity: 1}
		positions := map[string]float64{"red": 0, "green": 1}
		colors := map[string]color.RGBA{"red": red, "green": green}
		for _, name := range order {
			addPlane(t, s, name, 1, lambert(name, colors[name]), at(0, 0, positions[name]))
		}
		c := center(render(t, s, frontCamera(), 16))
		assert.Equal(t, uint8(0), c.R, order)
		assert.Greater(t, c.G, uint8(0), order)
	}
}

func TestBackFacesAreCulled(t *testing.T) {
	s := scene.New("culled")
	transform := at(0, 0, 0)
	transform.Rotation = dprec.NewVec3(0, math.Pi, 0)
	addPlane(t, s, "away", 1, lambert("red", red), transform)
	assert.Equal(t, s.Background, center(render(t, s, frontCamera(), 16)))
}

func TestFogBlendsTowardsFogColor(t *testing.T) {
	build := func(fog *scene.Fog) color.RGBA {
		s := scene.New("fog")
		s.Ambient = scene.AmbientLight{Color: white, Intensity: 1}
		s.Fog = fog
		addPlane(t, s, "plane", 1, lambert("red", red), at(0, 0, 0))
		return center(render(t, s, frontCamera(), 16))
	}

	clear := build(nil)
	assert.Equal(t, red, clear)

	thick := build(&scene.Fog{Color: blue, Near: 1, Far: 2})
	assert.Equal(t, blue, thick)

	partial := build(&scene.Fog{Color: blue, Near: 4, Far: 6})
	assert.Greater(t, partial.R, uint8(0))
	assert.Greater(t, partial.B, uint8(0))
	assert.Less(t, partial.R, uint8(0xFF))
}

func TestShadowDarkensReceiver(t *testing.T) {
	build := func(castShadow bool) (*Renderer, *stage.Camera) {
		s := scene.New("shadow")
		s.Ambient = scene.AmbientLight{Color: white, Intensity: 0.25}
		s.Directional = scene.DirectionalLight{
			Color:      white,
			Intensity:  1,
			Position:   dprec.NewVec3(0, 5, 0),
			CastShadow: castShadow,
		}
		ground := at(0, 0, 0)
		ground.Rotation = dprec.NewVec3(-math.Pi/2, 0, 0)
		floor := addPlane(t, s, "ground", 4, lambert("grey", grey), ground)
		floor.ReceiveShadow = true

		mesh, err := geometry.Box(0.5, 0.5, 0.5)
		require.NoError(t, err)
		box := scene.NewMesh("box", &scene.Geometry{Key: "box", Mesh: mesh}, lambert("grey", grey))
		box.Transform = at(0, 1, 0)
		box.CastShadow = true
		require.NoError(t, s.Attach("", box))

		camera := &stage.Camera{
			HalfSize: 2,
			Aspect:   1,
			Zoom:     1,
			Near:     0.1,
			Far:      100,
			Position: dprec.NewVec3(0, 5, 5),
			Target:   dprec.ZeroVec3(),
		}
		return render(t, s, camera, 64), camera
	}

	r, camera := build(true)
	shadowed := pixelOf(r, camera, dprec.ZeroVec3())
	lit := pixelOf(r, camera, dprec.NewVec3(1.5, 0, 0))
	assert.Less(t, shadowed.R, lit.R)

	r, camera = build(false)
	assert.Equal(t, pixelOf(r, camera, dprec.NewVec3(1.5, 0, 0)), pixelOf(r, camera, dprec.ZeroVec3()))
}

func TestWorkerCountDoesNotChangeImage(t *testing.T) {
	l, err := layout.Preset("still")
	require.NoError(t, err)
	s, err := scene.Build(l)
	require.NoError(t, err)
	camera := stage.NewCamera(l.Camera)

	single := New(WithWorkers(1))
	single.SetSize(48, 48)
	require.NoError(t, single.Render(s, camera))

	many := New(WithWorkers(7))
	many.SetSize(48, 48)
	require.NoError(t, many.Render(s, camera))

	assert.Equal(t, single.Frame().Pix, many.Frame().Pix)
}

func TestStillPresetThroughStage(t *testing.T) {
	l, err := layout.Preset("still")
	require.NoError(t, err)
	r := New()
	c, err := stage.New(l, r, stage.WithSize(64, 64))
	require.NoError(t, err)
	require.NoError(t, c.Frame(1.0/60.0))

	frame := r.Frame()
	require.Equal(t, 64, frame.Rect.Dx())
	// the church sits at the orbit target in the middle of the view
	assert.NotEqual(t, white, center(r))
}
