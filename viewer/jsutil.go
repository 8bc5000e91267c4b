//go:build js

package main

import (
	"net/url"
	"syscall/js"
)

var (
	document = js.Global().Get("document")
	window   = js.Global().Get("window")
	location = js.Global().Get("location")
	THREE    = js.Global().Get("THREE")
	params   url.Values
)

func init() {
	u, _ := url.Parse(location.Get("href").String())
	params = u.Query()
}

// GetParam returns a query parameter of the page URL, or fallback when it
// is missing.
func GetParam(key, fallback string) string {
	if value := params.Get(key); value != "" {
		return value
	}
	return fallback
}

type goObject struct {
	jsValue js.Value
}

type Promise[T any] interface {
	Then(cb func(value T)) Promise[T]
	Catch(cb func(err error)) Promise[T]
}

var _ Promise[struct{}] = goPromise[struct{}]{}

type goPromise[T any] struct {
	goObject
	convert func(value js.Value) T
}

func (g goPromise[T]) Then(cb func(value T)) Promise[T] {
	var jsFunc js.Func
	jsFunc = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer jsFunc.Release()
		cb(g.convert(args[0]))
		return nil
	})
	g.jsValue.Call("then", jsFunc)
	return g
}

func (g goPromise[T]) Catch(cb func(err error)) Promise[T] {
	var jsFunc js.Func
	jsFunc = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer jsFunc.Release()
		cb(js.Error{
			Value: args[0],
		})
		return js.Undefined()
	})
	g.jsValue.Call("catch", jsFunc)
	return g
}

// importModule loads an ES module.
func importModule(url string) goPromise[js.Value] {
	return goPromise[js.Value]{
		goObject: goObject{jsValue: js.Global().Call("import", url)},
		convert: func(value js.Value) js.Value {
			return value
		},
	}
}

// ImportAll loads every module. The promise resolves with the modules in
// the order of urls once all are available.
func ImportAll(urls []string) Promise[[]js.Value] {
	promises := make([]any, len(urls))
	for i, u := range urls {
		promises[i] = importModule(u).jsValue
	}
	return goPromise[[]js.Value]{
		goObject: goObject{jsValue: js.Global().Get("Promise").Call("all", promises)},
		convert: func(value js.Value) []js.Value {
			result := make([]js.Value, value.Length())
			for i := range result {
				result[i] = value.Index(i)
			}
			return result
		},
	}
}

// listen registers a DOM event handler for the lifetime of the page.
func listen(target js.Value, event string, handler func(event js.Value), options map[string]any) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		handler(args[0])
		return nil
	})
	if options != nil {
		target.Call("addEventListener", event, fn, options)
	} else {
		target.Call("addEventListener", event, fn)
	}
}

func hexColor(r, g, b uint8) int {
	return int(r)<<16 | int(g)<<8 | int(b)
}
