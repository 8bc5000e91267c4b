package scene

import (
	"fmt"
	"image/color"

	"github.com/mokiat/gomath/dprec"

	"github.com/nobonobo/lowpoly-church/geometry"
	"github.com/nobonobo/lowpoly-church/layout"
	"github.com/nobonobo/lowpoly-church/schema"
)

const (
	defaultSphereWidthSegments  = 32
	defaultSphereHeightSegments = 16
)

// Build assembles the scene graph described by l. Nodes built from the
// same shape share one geometry, nodes naming the same material share one
// material.
func Build(l *schema.Layout) (*Scene, error) {
	placements, err := layout.Resolve(l)
	if err != nil {
		return nil, err
	}

	result := New(l.Name)
	result.Background = layout.MustParseColor(l.Background)
	if l.Fog.Enabled {
		result.Fog = &Fog{
			Color: layout.MustParseColor(l.Fog.Color),
			Near:  l.Fog.Near,
			Far:   l.Fog.Far,
		}
	}
	result.Ambient = AmbientLight{
		Color:     layout.MustParseColor(l.Lighting.Ambient.Color),
		Intensity: l.Lighting.Ambient.Intensity,
	}
	pos := l.Lighting.Directional.Position
	result.Directional = DirectionalLight{
		Color:      layout.MustParseColor(l.Lighting.Directional.Color),
		Intensity:  l.Lighting.Directional.Intensity,
		Position:   dprec.NewVec3(pos[0], pos[1], pos[2]),
		Target:     dprec.ZeroVec3(),
		CastShadow: l.Lighting.Directional.CastShadow,
	}

	for _, placement := range placements {
		node, err := result.nodeFor(l, placement)
		if err != nil {
			return nil, fmt.Errorf("failed to build %q: %w", placement.Name, err)
		}
		if err := result.Attach(placement.Parent, node); err != nil {
			return nil, fmt.Errorf("failed to attach %q: %w", placement.Name, err)
		}
	}
	return result, nil
}

func (s *Scene) nodeFor(l *schema.Layout, p layout.Placement) (*Node, error) {
	var node *Node
	if p.Shape.Kind == schema.ShapeGroup {
		node = NewGroup(p.Name)
	} else {
		geo, err := s.geometry(p.Shape)
		if err != nil {
			return nil, err
		}
		material, err := s.material(l, p.Material)
		if err != nil {
			return nil, err
		}
		node = NewMesh(p.Name, geo, material)
	}
	node.Transform = Transform{
		Position: p.Position,
		Rotation: p.Rotation,
		Scale:    p.Scale,
	}
	node.CastShadow = p.CastShadow
	node.ReceiveShadow = p.ReceiveShadow
	node.Visible = !p.Hidden
	return node, nil
}

func (s *Scene) geometry(shape schema.Shape) (*Geometry, error) {
	key := shapeKey(shape)
	if geo, ok := s.geometries[key]; ok {
		return geo, nil
	}

	var (
		mesh *geometry.Mesh
		err  error
	)
	switch shape.Kind {
	case schema.ShapeBox:
		mesh, err = geometry.Box(float32(shape.Width), float32(shape.Height), float32(shape.Depth))
	case schema.ShapePlane:
		mesh, err = geometry.Plane(float32(shape.Width), float32(shape.Height))
	case schema.ShapeSphere:
		width, height := defaultSphereWidthSegments, defaultSphereHeightSegments
		if shape.Segments != 0 {
			width, height = shape.Segments, shape.Segments
		}
		mesh, err = geometry.Sphere(float32(shape.Radius), width, height)
	default:
		err = fmt.Errorf("shape %q has no geometry", shape.Kind)
	}
	if err != nil {
		return nil, err
	}

	geo := &Geometry{
		Key:   key,
		Shape: shape,
		Mesh:  mesh,
	}
	s.geometries[key] = geo
	return geo, nil
}

func (s *Scene) material(l *schema.Layout, name string) (*Material, error) {
	if material, ok := s.materials[name]; ok {
		return material, nil
	}
	def, ok := l.Materials[name]
	if !ok {
		return nil, fmt.Errorf("unknown material %q", name)
	}
	material := &Material{
		Name:      name,
		Kind:      def.Kind,
		Color:     layout.MustParseColor(def.Color),
		Roughness: def.Roughness,
		Metalness: def.Metalness,
		Emissive:  color.RGBA{A: 0xFF},
	}
	if def.Emissive != "" {
		material.Emissive = layout.MustParseColor(def.Emissive)
	}
	s.materials[name] = material
	return material, nil
}

func shapeKey(shape schema.Shape) string {
	switch shape.Kind {
	case schema.ShapeBox:
		return fmt.Sprintf("box(%g,%g,%g)", shape.Width, shape.Height, shape.Depth)
	case schema.ShapePlane:
		return fmt.Sprintf("plane(%g,%g)", shape.Width, shape.Height)
	case schema.ShapeSphere:
		return fmt.Sprintf("sphere(%g,%d)", shape.Radius, shape.Segments)
	default:
		return string(shape.Kind)
	}
}
