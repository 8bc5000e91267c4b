package ui

import (
	"net/url"

	"github.com/mokiat/gog/opt"
	"github.com/mokiat/lacking/game"
	"github.com/mokiat/lacking/ui"
	co "github.com/mokiat/lacking/ui/component"
	"github.com/mokiat/lacking/ui/layout"
	"github.com/mokiat/lacking/ui/std"
	"github.com/mokiat/lacking/util/async"

	"github.com/nobonobo/lowpoly-church/host/ui/widget"
	"github.com/nobonobo/lowpoly-church/schema"
)

// ChurchResource is the studio output for the exported church model.
const ChurchResource = "church.dat"

func LoadHomeData(engine *game.Engine, resourceSet *game.ResourceSet) async.Promise[*HomeData] {
	var data HomeData
	return async.InjectionPromise(async.JoinOperations(
		resourceSet.FetchResource(ChurchResource, &data.Scene),
	), &data)
}

type HomeData struct {
	Scene *game.ModelTemplate
}

var HomeScreen = co.Define[*homeScreenComponent]()

type HomeScreenData struct {
	App *applicationComponent
}

type homeScreenComponent struct {
	co.BaseComponent

	app *applicationComponent

	engine      *game.Engine
	resourceSet *game.ResourceSet
	layout      *schema.Layout

	scene  *game.Scene
	church *churchStage
}

var _ ui.ElementRenderHandler = (*homeScreenComponent)(nil)

func (c *homeScreenComponent) OnCreate() {
	globalState := co.TypedValue[GlobalState](c.Scope())
	c.engine = globalState.Engine
	c.resourceSet = globalState.ResourceSet
	c.layout = globalState.Layout

	componentData := co.GetData[HomeScreenData](c.Properties())
	c.app = componentData.App

	if err := c.createScene(); err != nil {
		loadingError = err
		c.app.SetActiveView(ViewNameError)
		return
	}

	c.engine.SetActiveScene(c.scene)
	c.engine.ResetDeltaTime()

	initRouter(c)
}

func (c *homeScreenComponent) OnDelete() {
	c.engine.SetActiveScene(nil)
}

func (c *homeScreenComponent) Render() co.Instance {
	return co.New(std.Element, func() {
		co.WithData(std.ElementData{
			Essence: c,
			Layout:  layout.Anchor(),
		})

		co.WithChild("pane", co.New(std.Container, func() {
			co.WithLayoutData(layout.Data{
				Top:    opt.V(0),
				Bottom: opt.V(0),
				Left:   opt.V(0),
				Width:  opt.V(320),
			})
			co.WithData(std.ContainerData{
				BackgroundColor: opt.V(ui.RGBA(0, 0, 0, 192)),
				Layout:          layout.Anchor(),
			})

			co.WithChild("holder", co.New(std.Element, func() {
				co.WithLayoutData(layout.Data{
					Left:           opt.V(75),
					VerticalCenter: opt.V(0),
				})
				co.WithData(std.ElementData{
					Layout: layout.Vertical(layout.VerticalSettings{
						ContentAlignment: layout.HorizontalAlignmentLeft,
						ContentSpacing:   15,
					}),
				})

				co.WithChild("view-button", co.New(std.Button, func() {
					co.WithData(std.ButtonData{
						Text: "View",
					})
					co.WithCallbackData(std.ButtonCallbackData{
						OnClick: c.onViewClicked,
					})
				}))

				co.WithChild("licenses-button", co.New(std.Button, func() {
					co.WithData(std.ButtonData{
						Text: "Licenses",
					})
					co.WithCallbackData(std.ButtonCallbackData{
						OnClick: c.onLicensesClicked,
					})
				}))

				co.WithChild("exit-button", co.New(std.Button, func() {
					co.WithData(std.ButtonData{
						Text: "Exit",
					})
					co.WithCallbackData(std.ButtonCallbackData{
						OnClick: c.onExitClicked,
					})
				}))
			}))

			co.WithChild("qr-code", co.New(widget.QRCode, func() {
				co.WithLayoutData(layout.Data{
					HorizontalCenter: opt.V(0),
					Bottom:           opt.V(40),
				})
				co.WithData(widget.QRCodeData{
					Text: c.viewerLink(),
					Size: 160,
				})
				co.WithCallbackData(widget.QRCodeCallbackData{
					OnClick: func() {
						URLOpen(c.viewerLink())
					},
				})
			}))
		}))
	})
}

// viewerLink points at the web viewer showing the same layout.
func (c *homeScreenComponent) viewerLink() string {
	query := url.Values{}
	query.Set("preset", string(c.layout.Variant))
	return BaseURL() + "viewer/?" + query.Encode()
}

func (c *homeScreenComponent) createScene() error {
	c.scene = c.engine.CreateScene(game.SceneInfo{
		IncludePhysics: opt.V(false),
		IncludeECS:     opt.V(false),
	})

	sceneModel := c.scene.InstantiateModel(game.ModelInfo{
		Template:  homeSceneData.Scene,
		Name:      opt.V("Church"),
		IsDynamic: false,
	})

	church, err := newChurchStage(c.scene, sceneModel, c.layout)
	if err != nil {
		return err
	}
	c.church = church
	return nil
}

// OnRender keeps the light rig moving behind the menu.
func (c *homeScreenComponent) OnRender(element *ui.Element, canvas *ui.Canvas) {
	if c.church == nil {
		return
	}
	c.church.Frame(element, canvas.ElapsedTime())
	if c.church.context.Rig != nil {
		c.Invalidate()
	}
}

func (c *homeScreenComponent) onViewClicked() {
	c.app.SetActiveView(ViewNameView)
}

func (c *homeScreenComponent) onLicensesClicked() {
	c.app.SetActiveView(ViewNameLicenses)
}

func (c *homeScreenComponent) onExitClicked() {
	co.Window(c.Scope()).Close()
}

var homeSceneData *HomeData
