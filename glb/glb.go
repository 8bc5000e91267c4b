// Package glb exports scenes as binary glTF models. The output is the input
// of the studio asset pipeline and can be opened by any glTF viewer.
package glb

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/mokiat/gomath/dprec"
	"github.com/mokiat/gomath/sprec"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspunctual"
	"github.com/qmuntal/gltf/modeler"

	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/schema"
	"github.com/nobonobo/lowpoly-church/stage"
)

const (
	Generator = "lowpoly-church"

	// CameraNode and LightNode name the nodes the host app looks up.
	CameraNode = "Camera"
	LightNode  = "Sun"

	// RigNode names the pivot node that carries the light. Orbiting the
	// light is a rotation of this node around the vertical axis.
	RigNode = "LightRig"

	// OrbitAnimation names the looping light animation.
	OrbitAnimation = "SunOrbit"
)

type encoder struct {
	doc       *gltf.Document
	materials map[*scene.Material]int
	buffers   map[*scene.Geometry]geometryAccessors
	meshes    map[meshKey]int
}

type geometryAccessors struct {
	positions int
	normals   int
	indices   int
}

type meshKey struct {
	geometry *scene.Geometry
	material *scene.Material
}

// Encode converts the scene into a glTF document. Meshes share accessors
// per geometry and get one glTF mesh per geometry and material pair. Hidden
// subtrees are left out. When camera is not nil a camera node is added.
func Encode(s *scene.Scene, camera *stage.Camera) (*gltf.Document, error) {
	buildID, err := uuid.NewV6()
	if err != nil {
		return nil, fmt.Errorf("failed to generate build id: %w", err)
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = Generator
	doc.Asset.Extras = map[string]any{
		"buildId": buildID.String(),
		"scene":   s.Name,
		"ambient": map[string]any{
			"color":     colorFactor(s.Ambient.Color),
			"intensity": s.Ambient.Intensity,
		},
	}
	doc.Scenes[0].Name = s.Name

	e := &encoder{
		doc:       doc,
		materials: make(map[*scene.Material]int),
		buffers:   make(map[*scene.Geometry]geometryAccessors),
		meshes:    make(map[meshKey]int),
	}
	for _, child := range s.Root.Children() {
		if !child.Visible {
			continue
		}
		index, err := e.node(child)
		if err != nil {
			return nil, err
		}
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, index)
	}

	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, e.light(s.Directional))
	if camera != nil {
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, e.camera(camera))
	}
	return doc, nil
}

// Write encodes the document in the binary container format.
func Write(w io.Writer, doc *gltf.Document) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode glb: %w", err)
	}
	return nil
}

// Save writes the document to path.
func Save(path string, doc *gltf.Document) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := Write(file, doc); err != nil {
		return err
	}
	return file.Close()
}

func (e *encoder) node(n *scene.Node) (int, error) {
	rotation := n.Transform.Quat()
	out := &gltf.Node{
		Name:        n.Name,
		Translation: [3]float64{n.Transform.Position.X, n.Transform.Position.Y, n.Transform.Position.Z},
		Rotation:    [4]float64{rotation.X, rotation.Y, rotation.Z, rotation.W},
		Scale:       [3]float64{n.Transform.Scale.X, n.Transform.Scale.Y, n.Transform.Scale.Z},
	}
	extras := map[string]any{}
	if n.CastShadow {
		extras["castShadow"] = true
	}
	if n.ReceiveShadow {
		extras["receiveShadow"] = true
	}
	if len(extras) > 0 {
		out.Extras = extras
	}

	if n.Kind == scene.KindMesh {
		mesh, err := e.mesh(n.Geometry, n.Material)
		if err != nil {
			return 0, fmt.Errorf("failed to export %q: %w", n.Name, err)
		}
		out.Mesh = gltf.Index(mesh)
	}

	index := len(e.doc.Nodes)
	e.doc.Nodes = append(e.doc.Nodes, out)
	for _, child := range n.Children() {
		if !child.Visible {
			continue
		}
		childIndex, err := e.node(child)
		if err != nil {
			return 0, err
		}
		out.Children = append(out.Children, childIndex)
	}
	return index, nil
}

func (e *encoder) mesh(geo *scene.Geometry, material *scene.Material) (int, error) {
	key := meshKey{geometry: geo, material: material}
	if index, ok := e.meshes[key]; ok {
		return index, nil
	}
	accessors, err := e.accessors(geo)
	if err != nil {
		return 0, err
	}
	index := len(e.doc.Meshes)
	e.doc.Meshes = append(e.doc.Meshes, &gltf.Mesh{
		Name: geo.Key + "/" + material.Name,
		Primitives: []*gltf.Primitive{{
			Indices: gltf.Index(accessors.indices),
			Attributes: gltf.PrimitiveAttributes{
				gltf.POSITION: accessors.positions,
				gltf.NORMAL:   accessors.normals,
			},
			Material: gltf.Index(e.material(material)),
		}},
	})
	e.meshes[key] = index
	return index, nil
}

func (e *encoder) accessors(geo *scene.Geometry) (geometryAccessors, error) {
	if accessors, ok := e.buffers[geo]; ok {
		return accessors, nil
	}
	mesh := geo.Mesh
	if len(mesh.Positions) == 0 || len(mesh.Indices) == 0 {
		return geometryAccessors{}, fmt.Errorf("geometry %q is empty", geo.Key)
	}
	accessors := geometryAccessors{
		positions: modeler.WritePosition(e.doc, vectors(mesh.Positions)),
		normals:   modeler.WriteNormal(e.doc, vectors(mesh.Normals)),
		indices:   modeler.WriteIndices(e.doc, mesh.Indices),
	}
	e.buffers[geo] = accessors
	return accessors, nil
}

func (e *encoder) material(m *scene.Material) int {
	if index, ok := e.materials[m]; ok {
		return index
	}
	base := colorFactor(m.Color)
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float64{base[0], base[1], base[2], 1},
		MetallicFactor:  gltf.Float(m.Metalness),
		RoughnessFactor: gltf.Float(m.Roughness),
	}
	if m.Kind == schema.MaterialLambert {
		pbr.MetallicFactor = gltf.Float(0)
		pbr.RoughnessFactor = gltf.Float(1)
	}
	index := len(e.doc.Materials)
	e.doc.Materials = append(e.doc.Materials, &gltf.Material{
		Name:                 m.Name,
		PBRMetallicRoughness: pbr,
		EmissiveFactor:       colorFactor(m.Emissive),
		Extras:               map[string]any{"kind": string(m.Kind)},
	})
	e.materials[m] = index
	return index
}

// light adds the directional light below a pivot node at the light
// target. The light itself sits at its offset from the target and faces it.
func (e *encoder) light(light scene.DirectionalLight) int {
	e.doc.ExtensionsUsed = append(e.doc.ExtensionsUsed, lightspunctual.ExtensionName)
	if e.doc.Extensions == nil {
		e.doc.Extensions = gltf.Extensions{}
	}
	lightColor := colorFactor(light.Color)
	e.doc.Extensions[lightspunctual.ExtensionName] = lightspunctual.Lights{{
		Name:      LightNode,
		Type:      lightspunctual.TypeDirectional,
		Color:     &lightColor,
		Intensity: gltf.Float(light.Intensity),
	}}

	offset := dprec.Vec3Diff(light.Position, light.Target)
	rotation := scene.LookAt(offset, dprec.ZeroVec3())
	sun := len(e.doc.Nodes)
	e.doc.Nodes = append(e.doc.Nodes, &gltf.Node{
		Name:        LightNode,
		Translation: [3]float64{offset.X, offset.Y, offset.Z},
		Rotation:    [4]float64{rotation.X, rotation.Y, rotation.Z, rotation.W},
		Scale:       [3]float64{1, 1, 1},
		Extensions: gltf.Extensions{
			lightspunctual.ExtensionName: lightspunctual.LightIndex(0),
		},
		Extras: map[string]any{"castShadow": light.CastShadow},
	})

	pivot := len(e.doc.Nodes)
	e.doc.Nodes = append(e.doc.Nodes, &gltf.Node{
		Name:        RigNode,
		Translation: [3]float64{light.Target.X, light.Target.Y, light.Target.Z},
		Rotation:    [4]float64{0, 0, 0, 1},
		Scale:       [3]float64{1, 1, 1},
		Children:    []int{sun},
	})
	return pivot
}

func (e *encoder) camera(camera *stage.Camera) int {
	left, right, bottom, top := camera.Frustum()
	cameraIndex := len(e.doc.Cameras)
	e.doc.Cameras = append(e.doc.Cameras, &gltf.Camera{
		Name: CameraNode,
		Orthographic: &gltf.Orthographic{
			Xmag:  (right - left) / 2,
			Ymag:  (top - bottom) / 2,
			Znear: camera.Near,
			Zfar:  camera.Far,
		},
	})

	rotation := scene.LookAt(camera.Position, camera.Target)
	index := len(e.doc.Nodes)
	e.doc.Nodes = append(e.doc.Nodes, &gltf.Node{
		Name:        CameraNode,
		Camera:      gltf.Index(cameraIndex),
		Translation: [3]float64{camera.Position.X, camera.Position.Y, camera.Position.Z},
		Rotation:    [4]float64{rotation.X, rotation.Y, rotation.Z, rotation.W},
		Scale:       [3]float64{1, 1, 1},
		Extras: map[string]any{
			"target": []float64{camera.Target.X, camera.Target.Y, camera.Target.Z},
		},
	})
	return index
}

func vectors(values []sprec.Vec3) [][3]float32 {
	result := make([][3]float32, len(values))
	for i, v := range values {
		result[i] = [3]float32{v.X, v.Y, v.Z}
	}
	return result
}

func colorFactor(c color.RGBA) [3]float64 {
	return [3]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}
