//go:build js

package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"syscall/js"

	"github.com/nobonobo/lowpoly-church/layout"
	"github.com/nobonobo/lowpoly-church/orbit"
	"github.com/nobonobo/lowpoly-church/schema"
	"github.com/nobonobo/lowpoly-church/stage"
)

var addons = []string{
	"three/addons/postprocessing/EffectComposer.js",
	"three/addons/postprocessing/RenderPass.js",
	"three/addons/postprocessing/UnrealBloomPass.js",
	"three/addons/postprocessing/OutputPass.js",
}

type Application struct {
	layout   *schema.Layout
	context  *stage.Context
	renderer js.Value
	canvas   js.Value
	objects  *objects
	last     float64
}

func NewApplication(l *schema.Layout) *Application {
	return &Application{
		layout: l,
		last:   math.NaN(),
	}
}

func (app *Application) Run() error {
	app.canvas = document.Call("createElement", "canvas")
	document.Get("body").Call("appendChild", app.canvas)

	app.renderer = THREE.Get("WebGLRenderer").New(map[string]any{
		"canvas":    app.canvas,
		"antialias": true,
	})
	app.renderer.Get("shadowMap").Set("enabled", true)

	surface := &webGLRenderer{renderer: app.renderer}
	ctx, err := stage.New(app.layout, surface,
		stage.WithSize(window.Get("innerWidth").Int(), window.Get("innerHeight").Int()),
		stage.WithPixelRatio(window.Get("devicePixelRatio").Float()),
	)
	if err != nil {
		return fmt.Errorf("failed to create stage: %w", err)
	}
	app.context = ctx

	app.objects, err = newObjects(ctx.Scene, ctx.Camera)
	if err != nil {
		return fmt.Errorf("failed to create three.js scene: %w", err)
	}
	surface.objects = app.objects
	app.renderer.Call("setClearColor", threeColor(ctx.Scene.Background))

	if app.layout.Bloom.Enabled {
		app.loadBloom()
	}
	app.bindInput()

	listen(window, "resize", func(js.Value) {
		app.onResize()
	}, nil)
	app.renderer.Call("setAnimationLoop", js.FuncOf(func(this js.Value, args []js.Value) any {
		app.render(args[0].Float())
		return nil
	}))
	return nil
}

// loadBloom swaps in the post-processing chain once its modules are loaded.
// Frames are rendered directly until then.
func (app *Application) loadBloom() {
	ImportAll(addons).Then(func(modules []js.Value) {
		bloom := app.layout.Bloom
		width, height := app.context.Size()

		composer := modules[0].Get("EffectComposer").New(app.renderer)
		composer.Call("addPass", modules[1].Get("RenderPass").New(app.objects.scene, app.objects.camera))
		composer.Call("addPass", modules[2].Get("UnrealBloomPass").New(
			THREE.Get("Vector2").New(width, height),
			bloom.Strength,
			// UnrealBloomPass expects a radius in [0, 1]
			math.Min(1, bloom.Radius/10),
			bloom.Threshold,
		))
		composer.Call("addPass", modules[3].Get("OutputPass").New())

		app.context.Composer = &effectComposer{composer: composer, objects: app.objects}
		app.context.SetPixelRatio(app.context.PixelRatio())
		if err := app.context.Resize(width, height); err != nil {
			slog.Error("Failed to size composer", "err", err)
		}
		slog.Info("Bloom enabled")
	}).Catch(func(err error) {
		slog.Error("Failed to load post-processing modules, rendering without bloom", "err", err)
	})
}

func (app *Application) bindInput() {
	controls := app.context.Controls
	listen(app.canvas, "pointerdown", func(event js.Value) {
		button := orbit.ButtonRotate
		if event.Get("button").Int() == 2 || event.Get("shiftKey").Bool() {
			button = orbit.ButtonPan
		}
		app.canvas.Call("setPointerCapture", event.Get("pointerId"))
		controls.PointerDown(button, event.Get("clientX").Float(), event.Get("clientY").Float())
	}, nil)
	listen(app.canvas, "pointermove", func(event js.Value) {
		controls.PointerMove(event.Get("clientX").Float(), event.Get("clientY").Float())
	}, nil)
	for _, name := range []string{"pointerup", "pointercancel"} {
		listen(app.canvas, name, func(event js.Value) {
			controls.PointerUp()
		}, nil)
	}
	listen(app.canvas, "wheel", func(event js.Value) {
		event.Call("preventDefault")
		controls.Wheel(event.Get("deltaY").Float())
	}, map[string]any{"passive": false})
	listen(app.canvas, "contextmenu", func(event js.Value) {
		event.Call("preventDefault")
	}, nil)
	listen(window, "keydown", func(event js.Value) {
		if event.Get("key").String() == "r" {
			app.context.Restart()
			app.last = math.NaN()
		}
	}, nil)
}

func (app *Application) render(timestamp float64) {
	dt := 0.0
	if !math.IsNaN(app.last) {
		dt = (timestamp - app.last) / 1000
	}
	app.last = timestamp
	if err := app.context.Frame(dt); err != nil {
		slog.Error("Frame failed", "err", err)
	}
}

func (app *Application) onResize() {
	app.context.SetPixelRatio(window.Get("devicePixelRatio").Float())
	width, height := window.Get("innerWidth").Int(), window.Get("innerHeight").Int()
	if err := app.context.Resize(width, height); err != nil {
		// minimized windows report an empty viewport
		slog.Debug("Ignoring resize", "err", err)
	}
}

func main() {
	name := GetParam("preset", "still")
	l, err := layout.Preset(name)
	if err != nil {
		slog.Error("Failed to load layout", "preset", name, "err", err)
		os.Exit(1)
	}
	slog.Info("Starting viewer", "preset", name, "variant", l.Variant)

	app := NewApplication(l)
	if err := app.Run(); err != nil {
		slog.Error("Viewer crashed", "err", err)
		os.Exit(1)
	}
	select {}
}
