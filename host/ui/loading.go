package ui

import (
	"log/slog"
	"time"

	"github.com/mokiat/gog/opt"
	"github.com/mokiat/lacking/game"
	"github.com/mokiat/lacking/ui"
	co "github.com/mokiat/lacking/ui/component"
	"github.com/mokiat/lacking/ui/layout"
	"github.com/mokiat/lacking/ui/std"
	"github.com/mokiat/lacking/util/async"

	"github.com/nobonobo/lowpoly-church/host/ui/widget"
	churchlayout "github.com/nobonobo/lowpoly-church/layout"
)

var (
	loadingState LoadingState
	loadingError error
)

// backdrop is the layout background, so that the switch from the menus to
// the rendered scene does not flash.
func backdrop(scope co.Scope) ui.Color {
	l := co.TypedValue[GlobalState](scope).Layout
	c, err := churchlayout.ParseColor(l.Background)
	if err != nil {
		return ui.Black()
	}
	return ui.RGB(c.R, c.G, c.B)
}

type LoadingState struct {
	Promise         LoadingPromise
	SuccessViewName ViewName
	ErrorViewName   ViewName
}

type LoadingPromise interface {
	OnSuccess(func())
	OnError(func())
}

// NewLoadingPromise delivers the outcome of promise on the worker, which
// is the UI thread for windows.
func NewLoadingPromise[T any](worker game.Worker, promise async.Promise[T], onSuccess func(T), onError func(error)) LoadingPromise {
	return &loadingPromise[T]{
		worker:    worker,
		promise:   promise,
		onSuccess: onSuccess,
		onError:   onError,
	}
}

type loadingPromise[T any] struct {
	worker    game.Worker
	promise   async.Promise[T]
	onSuccess func(T)
	onError   func(error)
}

func (p *loadingPromise[T]) OnSuccess(cb func()) {
	p.promise.OnSuccess(func(value T) {
		p.worker.Schedule(func() {
			p.onSuccess(value)
			cb()
		})
	})
}

func (p *loadingPromise[T]) OnError(cb func()) {
	p.promise.OnError(func(err error) {
		p.worker.Schedule(func() {
			p.onError(err)
			cb()
		})
	})
}

var IntroScreen = co.Define[*introScreenComponent]()

type IntroScreenData struct {
	App *applicationComponent
}

type introScreenComponent struct {
	co.BaseComponent
}

func (c *introScreenComponent) OnCreate() {
	co.Window(c.Scope()).SetCursorVisible(false)

	globalState := co.TypedValue[GlobalState](c.Scope())
	app := co.GetData[IntroScreenData](c.Properties()).App

	slog.Info("Loading church model",
		slog.String("resource", ChurchResource),
		slog.String("variant", string(globalState.Layout.Variant)),
	)
	loadingState = LoadingState{
		Promise: NewLoadingPromise(
			co.Window(c.Scope()),
			LoadHomeData(globalState.Engine, globalState.ResourceSet),
			func(d *HomeData) {
				homeSceneData = d
			},
			func(err error) {
				slog.Error("Failed to load church model", slog.String("error", err.Error()))
				loadingError = err
			},
		),
		SuccessViewName: ViewNameHome,
		ErrorViewName:   ViewNameError,
	}

	co.After(c.Scope(), time.Second, func() {
		app.SetActiveView(ViewNameLoading)
	})
}

func (c *introScreenComponent) OnDelete() {
	co.Window(c.Scope()).SetCursorVisible(true)
}

func (c *introScreenComponent) Render() co.Instance {
	return co.New(std.Container, func() {
		co.WithData(std.ContainerData{
			BackgroundColor: opt.V(ui.RGB(0x22, 0x22, 0x2A)),
			Layout:          layout.Anchor(),
		})

		co.WithChild("logo", co.New(std.Picture, func() {
			co.WithLayoutData(layout.Data{
				Width:            opt.V(512),
				Height:           opt.V(128),
				HorizontalCenter: opt.V(0),
				VerticalCenter:   opt.V(0),
			})
			co.WithData(std.PictureData{
				BackgroundColor: opt.V(ui.Transparent()),
				Image:           co.OpenImage(c.Scope(), "ui/images/logo.png"),
				Mode:            std.ImageModeFit,
			})
		}))
	})
}

var LoadingScreen = co.Define[*loadingScreenComponent]()

type LoadingScreenData struct {
	App *applicationComponent
}

type loadingScreenComponent struct {
	co.BaseComponent
}

func (c *loadingScreenComponent) OnCreate() {
	app := co.GetData[LoadingScreenData](c.Properties()).App

	state := loadingState
	state.Promise.OnSuccess(func() {
		app.SetActiveView(state.SuccessViewName)
	})
	state.Promise.OnError(func() {
		app.SetActiveView(state.ErrorViewName)
	})
}

func (c *loadingScreenComponent) Render() co.Instance {
	return co.New(std.Container, func() {
		co.WithData(std.ContainerData{
			BackgroundColor: opt.V(backdrop(c.Scope())),
			Layout:          layout.Anchor(),
		})

		co.WithChild("indicator", co.New(widget.Loading, func() {
			co.WithLayoutData(layout.Data{
				HorizontalCenter: opt.V(0),
				VerticalCenter:   opt.V(0),
			})
			co.WithData(widget.LoadingData{
				Text:  "Building the church",
				Color: ui.RGB(0x44, 0x44, 0x44),
			})
		}))
	})
}
