//go:build js

package main

import (
	"syscall/js"

	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/stage"
)

// webGLRenderer adapts THREE.WebGLRenderer to stage.Renderer.
type webGLRenderer struct {
	renderer js.Value
	objects  *objects
}

func (r *webGLRenderer) SetSize(width, height int) {
	r.renderer.Call("setSize", width, height)
}

func (r *webGLRenderer) SetPixelRatio(ratio float64) {
	r.renderer.Call("setPixelRatio", ratio)
}

func (r *webGLRenderer) Render(s *scene.Scene, camera *stage.Camera) error {
	r.objects.sync(s, camera)
	r.renderer.Call("render", r.objects.scene, r.objects.camera)
	return nil
}

// effectComposer adapts the EffectComposer addon to stage.Composer.
type effectComposer struct {
	composer js.Value
	objects  *objects
}

func (c *effectComposer) SetSize(width, height int) {
	c.composer.Call("setSize", width, height)
}

func (c *effectComposer) SetPixelRatio(ratio float64) {
	c.composer.Call("setPixelRatio", ratio)
}

func (c *effectComposer) Render(s *scene.Scene, camera *stage.Camera) error {
	c.objects.sync(s, camera)
	c.composer.Call("render")
	return nil
}
