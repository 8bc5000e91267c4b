//go:build js

package main

import (
	"fmt"
	"image/color"
	"syscall/js"

	"github.com/mokiat/gomath/dprec"

	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/schema"
	"github.com/nobonobo/lowpoly-church/stage"
)

// objects mirrors a scene.Scene as three.js objects.
type objects struct {
	scene  js.Value
	camera js.Value
	sun    js.Value

	geometries map[string]js.Value
	materials  map[string]js.Value
}

func newObjects(s *scene.Scene, camera *stage.Camera) (*objects, error) {
	o := &objects{
		scene:      THREE.Get("Scene").New(),
		geometries: make(map[string]js.Value),
		materials:  make(map[string]js.Value),
	}
	o.scene.Set("background", threeColor(s.Background))
	if s.Fog != nil {
		o.scene.Set("fog", THREE.Get("Fog").New(threeColor(s.Fog.Color), s.Fog.Near, s.Fog.Far))
	}

	left, right, bottom, top := camera.Frustum()
	o.camera = THREE.Get("OrthographicCamera").New(left, right, top, bottom, camera.Near, camera.Far)
	o.scene.Call("add", o.camera)

	o.scene.Call("add", THREE.Get("AmbientLight").New(threeColor(s.Ambient.Color), s.Ambient.Intensity))
	o.sun = THREE.Get("DirectionalLight").New(threeColor(s.Directional.Color), s.Directional.Intensity)
	o.sun.Set("castShadow", s.Directional.CastShadow)
	o.scene.Call("add", o.sun)
	o.scene.Call("add", o.sun.Get("target"))

	for _, child := range s.Root.Children() {
		obj, err := o.object(child)
		if err != nil {
			return nil, err
		}
		o.scene.Call("add", obj)
	}
	o.sync(s, camera)
	return o, nil
}

func (o *objects) object(n *scene.Node) (js.Value, error) {
	var obj js.Value
	switch n.Kind {
	case scene.KindGroup:
		obj = THREE.Get("Group").New()
	case scene.KindMesh:
		geo, err := o.geometry(n.Geometry)
		if err != nil {
			return js.Undefined(), err
		}
		obj = THREE.Get("Mesh").New(geo, o.material(n.Material))
		obj.Set("castShadow", n.CastShadow)
		obj.Set("receiveShadow", n.ReceiveShadow)
	}
	obj.Set("name", n.Name)
	obj.Set("visible", n.Visible)
	setVec3(obj.Get("position"), n.Transform.Position)
	setVec3(obj.Get("rotation"), n.Transform.Rotation)
	setVec3(obj.Get("scale"), n.Transform.Scale)

	for _, child := range n.Children() {
		childObj, err := o.object(child)
		if err != nil {
			return js.Undefined(), err
		}
		obj.Call("add", childObj)
	}
	return obj, nil
}

func (o *objects) geometry(geo *scene.Geometry) (js.Value, error) {
	if value, ok := o.geometries[geo.Key]; ok {
		return value, nil
	}
	shape := geo.Shape
	var value js.Value
	switch shape.Kind {
	case schema.ShapeBox:
		value = THREE.Get("BoxGeometry").New(shape.Width, shape.Height, shape.Depth)
	case schema.ShapePlane:
		value = THREE.Get("PlaneGeometry").New(shape.Width, shape.Height)
	case schema.ShapeSphere:
		if shape.Segments > 0 {
			value = THREE.Get("SphereGeometry").New(shape.Radius, shape.Segments, shape.Segments)
		} else {
			value = THREE.Get("SphereGeometry").New(shape.Radius)
		}
	default:
		return js.Undefined(), fmt.Errorf("shape %q has no geometry", shape.Kind)
	}
	o.geometries[geo.Key] = value
	return value, nil
}

func (o *objects) material(m *scene.Material) js.Value {
	if value, ok := o.materials[m.Name]; ok {
		return value
	}
	var value js.Value
	switch m.Kind {
	case schema.MaterialLambert:
		value = THREE.Get("MeshLambertMaterial").New(map[string]any{
			"color":    threeColor(m.Color),
			"emissive": threeColor(m.Emissive),
		})
	default:
		value = THREE.Get("MeshStandardMaterial").New(map[string]any{
			"color":     threeColor(m.Color),
			"emissive":  threeColor(m.Emissive),
			"roughness": m.Roughness,
			"metalness": m.Metalness,
		})
	}
	value.Set("name", m.Name)
	o.materials[m.Name] = value
	return value
}

// sync copies the animated state: the camera pose and projection and the
// light position.
func (o *objects) sync(s *scene.Scene, camera *stage.Camera) {
	width, height := camera.HalfSize*camera.Aspect, camera.HalfSize
	o.camera.Set("left", -width)
	o.camera.Set("right", width)
	o.camera.Set("top", height)
	o.camera.Set("bottom", -height)
	o.camera.Set("zoom", camera.Zoom)
	setVec3(o.camera.Get("position"), camera.Position)
	o.camera.Call("lookAt", camera.Target.X, camera.Target.Y, camera.Target.Z)
	o.camera.Call("updateProjectionMatrix")

	setVec3(o.sun.Get("position"), s.Directional.Position)
	setVec3(o.sun.Get("target").Get("position"), s.Directional.Target)
}

func setVec3(target js.Value, v dprec.Vec3) {
	target.Call("set", v.X, v.Y, v.Z)
}

func threeColor(c color.RGBA) js.Value {
	return THREE.Get("Color").New(hexColor(c.R, c.G, c.B))
}
