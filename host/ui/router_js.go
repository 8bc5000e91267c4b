//go:build js

package ui

import (
	"log/slog"
	"net/url"
	"strings"
	"syscall/js"
)

var (
	document    = js.Global().Get("document")
	window      = js.Global().Get("window")
	location    = js.Global().Get("location")
	initialized = false
	params      url.Values
)

func init() {
	u, _ := url.Parse(location.Get("href").String())
	params = u.Query()
}

func Fullscreen(on bool) {
	slog.Debug("Fullscreen", "on", on)
	elm := document.Get("documentElement")
	if on {
		var f js.Func
		f = js.FuncOf(func(this js.Value, args []js.Value) any {
			defer f.Release()
			slog.Warn("Fullscreen request rejected", "err", js.Error{Value: args[0]})
			return nil
		})
		elm.Call("requestFullscreen").Call("catch", f)
	} else {
		if document.Get("fullscreenElement").Truthy() {
			go document.Call("exitFullscreen")
		}
	}
}

func BaseURL() string {
	return location.Get("origin").String() + location.Get("pathname").String()
}

func URLOpen(u string) {
	window.Call("open", u)
}

func GetParam(key string) string {
	return params.Get(key)
}

func getViewFromHash() ViewName {
	return ViewName(strings.TrimPrefix(location.Get("hash").String(), "#"))
}

func navigate(c *homeScreenComponent, view ViewName) {
	switch view {
	case ViewNameView:
		c.onViewClicked()
	case ViewNameLicenses:
		c.onLicensesClicked()
	case ViewNameHome:
		c.app.SetActiveView(view)
	default:
		slog.Warn("Unknown view in location", "view", view)
	}
}

func initRouter(c *homeScreenComponent) {
	if view := getViewFromHash(); view != "" && view != c.app.ActiveView() {
		slog.Info("Initial view", "view", view)
		navigate(c, view)
	}
	initialized = true

	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		if view := getViewFromHash(); view != "" && view != c.app.ActiveView() {
			navigate(c, view)
		}
		return nil
	})
	window.Call("addEventListener", "hashchange", cb)
}

func updateHash(view ViewName) {
	if !initialized {
		return
	}
	switch view {
	default:
		return
	case ViewNameHome, ViewNameView, ViewNameLicenses:
	}
	targetHash := "#" + string(view)
	if location.Get("hash").String() != targetHash {
		location.Set("hash", targetHash)
	}
}
