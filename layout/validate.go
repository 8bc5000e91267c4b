package layout

import (
	"errors"
	"fmt"

	"github.com/nobonobo/lowpoly-church/schema"
)

// Validate checks a layout and reports every problem it finds, joined
// under ErrInvalidLayout.
func Validate(l *schema.Layout) error {
	var problems []error
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}
	checkColor := func(where, value string) {
		if _, err := ParseColor(value); err != nil {
			report("%s: %w", where, err)
		}
	}

	switch l.Variant {
	case schema.VariantStill, schema.VariantOrbit:
	default:
		report("unknown variant %q", l.Variant)
	}
	checkColor("background", l.Background)

	if l.Fog.Enabled {
		checkColor("fog", l.Fog.Color)
		if l.Fog.Near < 0 || l.Fog.Near >= l.Fog.Far {
			report("fog: near %v must be non-negative and below far %v", l.Fog.Near, l.Fog.Far)
		}
	}

	if l.Camera.HalfSize <= 0 {
		report("camera: half size must be positive, got %v", l.Camera.HalfSize)
	}
	if l.Camera.Near >= l.Camera.Far {
		report("camera: near %v must be below far %v", l.Camera.Near, l.Camera.Far)
	}
	if l.Camera.Zoom <= 0 {
		report("camera: zoom must be positive, got %v", l.Camera.Zoom)
	}
	if l.Camera.Position == l.Camera.Target {
		report("camera: position and target coincide")
	}

	if l.Controls.DampingFactor <= 0 || l.Controls.DampingFactor > 1 {
		report("controls: damping factor %v outside (0, 1]", l.Controls.DampingFactor)
	}
	if l.Controls.MinZoom < 0 || l.Controls.MinZoom > l.Controls.MaxZoom {
		report("controls: zoom range [%v, %v] is empty", l.Controls.MinZoom, l.Controls.MaxZoom)
	}

	for name, material := range l.Materials {
		switch material.Kind {
		case schema.MaterialStandard, schema.MaterialLambert:
		default:
			report("material %q: unknown kind %q", name, material.Kind)
		}
		checkColor(fmt.Sprintf("material %q", name), material.Color)
		if material.Emissive != "" {
			checkColor(fmt.Sprintf("material %q emissive", name), material.Emissive)
		}
		if material.Roughness < 0 || material.Roughness > 1 {
			report("material %q: roughness %v outside [0, 1]", name, material.Roughness)
		}
		if material.Metalness < 0 || material.Metalness > 1 {
			report("material %q: metalness %v outside [0, 1]", name, material.Metalness)
		}
	}

	names := make(map[string]bool)
	claim := func(name string) {
		if name == "" {
			report("unnamed node")
			return
		}
		if names[name] {
			report("duplicate name %q", name)
		}
		names[name] = true
	}
	groups := make(map[string]bool)
	parents := make(map[string]string)
	for _, element := range l.Elements {
		claim(element.Name)
		if element.Shape.Kind == schema.ShapeGroup {
			groups[element.Name] = true
		}
		parents[element.Name] = element.Parent
	}
	for _, row := range l.Rows {
		claim(row.Name)
		for i := range max(row.Count, 0) {
			claim(instanceName(row.Name, i))
			if row.Mirror != nil {
				claim(mirrorName(row.Name, i))
			}
		}
	}
	for _, scatter := range l.Scatter {
		claim(scatter.Name)
		for i := range max(scatter.Count, 0) {
			claim(instanceName(scatter.Name, i))
		}
	}

	checkParent := func(name, parent string) {
		if parent != "" && !groups[parent] {
			report("%q: parent %q is not a group element", name, parent)
		}
	}
	checkMesh := func(name string, shape schema.Shape, material string) {
		if err := validateShape(shape); err != nil {
			report("%q: %w", name, err)
		}
		if shape.Kind == schema.ShapeGroup {
			return
		}
		if _, ok := l.Materials[material]; !ok {
			report("%q: unknown material %q", name, material)
		}
	}

	for _, element := range l.Elements {
		checkParent(element.Name, element.Parent)
		checkMesh(element.Name, element.Shape, element.Material)
		if element.Scale != nil {
			for _, s := range element.Scale {
				if s == 0 {
					report("%q: zero scale", element.Name)
					break
				}
			}
		}
	}
	for name := range parents {
		if hasCycle(name, parents) {
			report("%q: parent chain forms a cycle", name)
		}
	}

	for _, row := range l.Rows {
		checkParent(row.Name, row.Parent)
		checkMesh(row.Name, row.Shape, row.Material)
		if row.Shape.Kind == schema.ShapeGroup {
			report("%q: rows cannot repeat groups", row.Name)
		}
		if row.Count < 0 {
			report("%q: negative count %d", row.Name, row.Count)
		}
		if row.Pitch <= 0 {
			report("%q: pitch must be positive, got %v", row.Name, row.Pitch)
		}
		if row.Axis.Index() < 0 {
			report("%q: unknown axis %q", row.Name, row.Axis)
		}
		if row.Mirror != nil && row.Mirror.Axis.Index() < 0 {
			report("%q: unknown mirror axis %q", row.Name, row.Mirror.Axis)
		}
	}

	for _, scatter := range l.Scatter {
		checkMesh(scatter.Name, scatter.Shape, scatter.Material)
		if scatter.Count < 0 {
			report("%q: negative count %d", scatter.Name, scatter.Count)
		}
		if scatter.Extent < 0 {
			report("%q: negative extent %v", scatter.Name, scatter.Extent)
		}
	}

	checkColor("ambient light", l.Lighting.Ambient.Color)
	checkColor("directional light", l.Lighting.Directional.Color)
	if l.Lighting.Ambient.Intensity < 0 || l.Lighting.Directional.Intensity < 0 {
		report("lighting: negative intensity")
	}

	if l.Bloom.Enabled {
		if l.Bloom.Threshold < 0 || l.Bloom.Threshold > 1 {
			report("bloom: threshold %v outside [0, 1]", l.Bloom.Threshold)
		}
		if l.Bloom.Strength < 0 {
			report("bloom: negative strength %v", l.Bloom.Strength)
		}
		if l.Bloom.Radius < 0 {
			report("bloom: negative radius %v", l.Bloom.Radius)
		}
	}

	if l.Output.Width <= 0 || l.Output.Height <= 0 {
		report("output: size %dx%d must be positive", l.Output.Width, l.Output.Height)
	}
	if l.Output.PixelRatio <= 0 {
		report("output: pixel ratio must be positive, got %v", l.Output.PixelRatio)
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidLayout, errors.Join(problems...))
}

func validateShape(shape schema.Shape) error {
	switch shape.Kind {
	case schema.ShapeGroup:
		return nil
	case schema.ShapeBox:
		if shape.Width <= 0 || shape.Height <= 0 || shape.Depth <= 0 {
			return fmt.Errorf("box dimensions %vx%vx%v must be positive", shape.Width, shape.Height, shape.Depth)
		}
	case schema.ShapePlane:
		if shape.Width <= 0 || shape.Height <= 0 {
			return fmt.Errorf("plane dimensions %vx%v must be positive", shape.Width, shape.Height)
		}
	case schema.ShapeSphere:
		if shape.Radius <= 0 {
			return fmt.Errorf("sphere radius %v must be positive", shape.Radius)
		}
		if shape.Segments != 0 && shape.Segments < 3 {
			return fmt.Errorf("sphere needs at least 3 segments, got %d", shape.Segments)
		}
	default:
		return fmt.Errorf("unknown shape kind %q", shape.Kind)
	}
	return nil
}

func hasCycle(name string, parents map[string]string) bool {
	seen := map[string]bool{name: true}
	for current := parents[name]; current != ""; current = parents[current] {
		if seen[current] {
			return true
		}
		seen[current] = true
	}
	return false
}
