package ui

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/mokiat/gog/opt"
	"github.com/mokiat/gomath/dprec"
	"github.com/mokiat/gomath/sprec"
	"github.com/mokiat/lacking/debug/metric/metricui"
	"github.com/mokiat/lacking/game"
	"github.com/mokiat/lacking/game/graphics"
	"github.com/mokiat/lacking/ui"
	co "github.com/mokiat/lacking/ui/component"
	"github.com/mokiat/lacking/ui/layout"
	"github.com/mokiat/lacking/ui/std"

	"github.com/nobonobo/lowpoly-church/glb"
	"github.com/nobonobo/lowpoly-church/orbit"
	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/schema"
	"github.com/nobonobo/lowpoly-church/stage"
)

type transformNode interface {
	SetPosition(dprec.Vec3)
	SetRotation(dprec.Quat)
}

// churchStage drives the nodes of an instantiated church model from a
// stage.Context. It is the context's renderer: the engine draws the
// scene, so rendering here means writing the camera and light poses.
type churchStage struct {
	context *stage.Context

	camera     *graphics.Camera
	cameraNode transformNode
	lightRig   transformNode

	width  int
	height int
}

func newChurchStage(s *game.Scene, model *game.Model, l *schema.Layout) (*churchStage, error) {
	result := &churchStage{}
	ctx, err := stage.New(l, result)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage: %w", err)
	}
	result.context = ctx
	result.width, result.height = ctx.Size()

	result.camera = newCamera(s, ctx.Camera)
	s.Graphics().SetActiveCamera(result.camera)

	if cameraNode := model.FindNode(glb.CameraNode); !cameraNode.IsNil() {
		s.CameraBindingSet().Bind(cameraNode, result.camera)
		result.cameraNode = s.Hierarchy().Wrap(cameraNode)
	} else {
		slog.Warn("Model has no camera node", "node", glb.CameraNode)
	}
	if rigNode := model.FindNode(glb.RigNode); !rigNode.IsNil() {
		result.lightRig = s.Hierarchy().Wrap(rigNode)
	}
	return result, nil
}

func newCamera(s *game.Scene, camera *stage.Camera) *graphics.Camera {
	result := s.Graphics().CreateCamera()
	result.SetFoVMode(graphics.FoVModeHorizontalPlus)
	result.SetFoV(fieldOfView(camera))
	result.SetAutoExposure(false)
	result.SetExposure(1.0)
	result.SetAutoFocus(false)
	result.SetAutoExposureSpeed(0.1)
	result.SetCascadeDistances([]float32{float32(camera.Far)})
	return result
}

// fieldOfView returns the vertical angle that frames the same height at
// the target as the orthographic frustum.
func fieldOfView(camera *stage.Camera) sprec.Angle {
	distance := dprec.Vec3Diff(camera.Position, camera.Target).Length()
	if distance <= 0 || camera.Zoom <= 0 {
		return sprec.Degrees(30)
	}
	return sprec.Radians(float32(2 * math.Atan(camera.HalfSize/camera.Zoom/distance)))
}

func (cs *churchStage) SetSize(width, height int) {}

func (cs *churchStage) SetPixelRatio(ratio float64) {}

func (cs *churchStage) Render(s *scene.Scene, camera *stage.Camera) error {
	if cs.cameraNode != nil {
		cs.cameraNode.SetPosition(camera.Position)
		cs.cameraNode.SetRotation(scene.LookAt(camera.Position, camera.Target))
	}
	cs.camera.SetFoV(fieldOfView(camera))
	if cs.lightRig != nil && cs.context.Rig != nil {
		cs.lightRig.SetRotation(cs.context.Rig.Rotation())
	}
	return nil
}

// Frame follows the element size and advances the stage.
func (cs *churchStage) Frame(element *ui.Element, elapsed time.Duration) {
	bounds := element.Bounds()
	if bounds.Width != cs.width || bounds.Height != cs.height {
		if err := cs.context.Resize(bounds.Width, bounds.Height); err == nil {
			cs.width, cs.height = bounds.Width, bounds.Height
		}
	}
	if err := cs.context.Frame(elapsed.Seconds()); err != nil {
		slog.Error("Frame failed", "err", err)
	}
}

var ViewScreen = co.Define[*viewScreenComponent]()

type ViewScreenData struct {
	App *applicationComponent
}

type viewScreenComponent struct {
	co.BaseComponent

	app *applicationComponent

	debugVisible bool

	engine *game.Engine
	layout *schema.Layout

	scene  *game.Scene
	church *churchStage

	textFont *ui.Font
}

var (
	_ ui.ElementKeyboardHandler = (*viewScreenComponent)(nil)
	_ ui.ElementMouseHandler    = (*viewScreenComponent)(nil)
	_ ui.ElementRenderHandler   = (*viewScreenComponent)(nil)
)

func (c *viewScreenComponent) OnCreate() {
	globalState := co.TypedValue[GlobalState](c.Scope())
	c.engine = globalState.Engine
	c.layout = globalState.Layout

	componentData := co.GetData[ViewScreenData](c.Properties())
	c.app = componentData.App

	c.textFont = co.OpenFont(c.Scope(), "ui:///roboto-regular.ttf")

	if err := c.createScene(); err != nil {
		loadingError = err
		c.app.SetActiveView(ViewNameError)
		return
	}
	c.engine.SetActiveScene(c.scene)
	c.engine.ResetDeltaTime()

	Fullscreen(true)
}

func (c *viewScreenComponent) OnDelete() {
	c.engine.SetActiveScene(nil)
	Fullscreen(false)
}

func (c *viewScreenComponent) createScene() error {
	c.scene = c.engine.CreateScene(game.SceneInfo{
		IncludePhysics: opt.V(false),
		IncludeECS:     opt.V(false),
	})
	model := c.scene.InstantiateModel(game.ModelInfo{
		Template:  homeSceneData.Scene,
		Name:      opt.V("Church"),
		IsDynamic: true,
	})
	church, err := newChurchStage(c.scene, model, c.layout)
	if err != nil {
		return err
	}
	c.church = church
	return nil
}

func (c *viewScreenComponent) OnRender(element *ui.Element, canvas *ui.Canvas) {
	if c.church == nil {
		return
	}
	c.church.Frame(element, canvas.ElapsedTime())
	c.Invalidate()
}

func (c *viewScreenComponent) OnMouseEvent(element *ui.Element, event ui.MouseEvent) bool {
	if c.church == nil {
		return false
	}
	controls := c.church.context.Controls
	x, y := float64(event.X), float64(event.Y)
	switch event.Action {
	case ui.MouseActionDown:
		button := orbit.ButtonRotate
		if event.Button == ui.MouseButtonRight {
			button = orbit.ButtonPan
		}
		controls.PointerDown(button, x, y)
	case ui.MouseActionMove:
		controls.PointerMove(x, y)
	case ui.MouseActionUp:
		controls.PointerUp()
	case ui.MouseActionScroll:
		// scrolling up zooms in, like a negative wheel delta in a browser
		controls.Wheel(-float64(event.ScrollY))
	default:
		return false
	}
	return true
}

func (c *viewScreenComponent) OnKeyboardEvent(element *ui.Element, event ui.KeyboardEvent) bool {
	switch event.Code {

	case ui.KeyCodeEscape:
		if event.Action == ui.KeyboardActionUp {
			c.app.SetActiveView(ViewNameHome)
		}
		return true

	case ui.KeyCodeR:
		if event.Action == ui.KeyboardActionDown && c.church != nil {
			c.church.context.Restart()
			c.engine.ResetDeltaTime()
		}
		return true

	case ui.KeyCodeTab:
		if event.Action == ui.KeyboardActionDown {
			c.debugVisible = !c.debugVisible
			c.Invalidate()
		}
		return true

	default:
		return false
	}
}

func (c *viewScreenComponent) Render() co.Instance {
	return co.New(std.Element, func() {
		co.WithData(std.ElementData{
			Essence:       c,
			CanAutoFocus:  opt.V(true),
			CreateFocused: true,
			Layout:        layout.Anchor(),
		})

		if c.debugVisible {
			co.WithChild("flamegraph", co.New(metricui.FlameGraph, func() {
				co.WithData(metricui.FlameGraphData{
					UpdateInterval: time.Second,
				})
				co.WithLayoutData(layout.Data{
					Top:   opt.V(0),
					Left:  opt.V(0),
					Right: opt.V(0),
				})
			}))
		}

		co.WithChild("hint", co.New(std.Label, func() {
			co.WithLayoutData(layout.Data{
				Bottom:           opt.V(20),
				HorizontalCenter: opt.V(0),
			})
			co.WithData(std.LabelData{
				Font:      c.textFont,
				FontSize:  opt.V(float32(16)),
				FontColor: opt.V(ui.RGBA(0x33, 0x33, 0x33, 0xFF)),
				Text:      "drag to orbit, right drag to pan, scroll to zoom, R to restart, ESC to go back",
			})
		}))
	})
}
