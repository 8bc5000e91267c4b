package main

import (
	"fmt"

	"github.com/mokiat/lacking/app"
	"github.com/mokiat/lacking/game"
	"github.com/mokiat/lacking/game/graphics"
	"github.com/mokiat/lacking/storage/chunked"
	"github.com/mokiat/lacking/ui"
	"github.com/mokiat/lacking/util/resource"

	"github.com/nobonobo/lowpoly-church/host/resources"
	gameui "github.com/nobonobo/lowpoly-church/host/ui"
	"github.com/nobonobo/lowpoly-church/layout"
	"github.com/nobonobo/lowpoly-church/schema"
)

const defaultPreset = "still"

// loadLayout picks the preset named by the "preset" parameter. It must
// match the one the church.dat asset was exported from.
func loadLayout() (*schema.Layout, error) {
	name := gameui.GetParam("preset")
	if name == "" {
		name = defaultPreset
	}
	l, err := layout.Preset(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load layout preset %q: %w", name, err)
	}
	return l, nil
}

func createController(l *schema.Layout, storage chunked.Storage, gameShaders graphics.ShaderCollection, gameBuilder graphics.ShaderBuilder, uiShaders ui.ShaderCollection) app.Controller {
	locator := ui.WrappedLocator(resource.NewFSLocator(resources.UI))

	gameController := game.NewController(storage, gameShaders, gameBuilder)
	uiController := ui.NewController(locator, uiShaders, func(w *ui.Window) {
		gameui.BootstrapApplication(w, gameController, l)
	})

	return app.NewLayeredController(gameController, uiController)
}
