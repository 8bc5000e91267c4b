// Package layout turns a declarative scene description into concrete,
// named placements.
//
// The only procedural part of the scene is the repetition of identical
// shapes: a row places Count instances along one axis at a fixed pitch,
// optionally mirrored onto the opposite side of the building, and a scatter
// drops instances at seeded random spots on the ground.
package layout

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/mokiat/gomath/dprec"

	"github.com/nobonobo/lowpoly-church/schema"
)

var (
	ErrInvalidLayout = errors.New("invalid layout")
	ErrUnknownPreset = errors.New("unknown preset")
)

// Placement is a fully resolved scene node.
type Placement struct {
	Name          string
	Source        string
	Parent        string
	Shape         schema.Shape
	Material      string
	Position      dprec.Vec3
	Rotation      dprec.Vec3
	Scale         dprec.Vec3
	CastShadow    bool
	ReceiveShadow bool
	Hidden        bool
}

// RowCoordinates returns the coordinate of each row instance on the row
// axis: i/pitch - offset for 0 <= i < count.
func RowCoordinates(count int, pitch, offset float64) []float64 {
	if count <= 0 {
		return nil
	}
	result := make([]float64, count)
	for i := range result {
		result[i] = float64(i)/pitch - offset
	}
	return result
}

// ExpandRow resolves every instance of a row, followed by the mirrored
// instances when the row declares a mirror.
func ExpandRow(row schema.Row) []Placement {
	axis := row.Axis.Index()
	coords := RowCoordinates(row.Count, row.Pitch, row.Offset)

	result := make([]Placement, 0, len(coords)*2)
	for i, c := range coords {
		pos := row.Base
		pos[axis] = c
		result = append(result, Placement{
			Name:          instanceName(row.Name, i),
			Source:        row.Name,
			Parent:        row.Parent,
			Shape:         row.Shape,
			Material:      row.Material,
			Position:      vec3(pos),
			Rotation:      vec3(row.Rotation),
			Scale:         dprec.NewVec3(1.0, 1.0, 1.0),
			CastShadow:    row.CastShadow,
			ReceiveShadow: row.ReceiveShadow,
		})
	}
	if row.Mirror == nil {
		return result
	}

	count := len(result)
	for i := range count {
		mirrored := Mirror(result[i], row.Mirror.Axis, row.Mirror.Rotate)
		mirrored.Name = mirrorName(row.Name, i)
		result = append(result, mirrored)
	}
	return result
}

func instanceName(source string, i int) string {
	return fmt.Sprintf("%s[%d]", source, i)
}

func mirrorName(source string, i int) string {
	return fmt.Sprintf("%s.mirror[%d]", source, i)
}

// Mirror reflects a placement across the plane orthogonal to axis. With
// rotate set the copy is also turned half way around the vertical axis so
// that it faces its source row.
func Mirror(p Placement, axis schema.Axis, rotate bool) Placement {
	switch axis {
	case schema.AxisX:
		p.Position.X = -p.Position.X
	case schema.AxisY:
		p.Position.Y = -p.Position.Y
	case schema.AxisZ:
		p.Position.Z = -p.Position.Z
	}
	if rotate {
		p.Rotation.Y = math.Mod(p.Rotation.Y+math.Pi, 2*math.Pi)
	}
	return p
}

// ExpandScatter places the scatter instances. The same seed always
// yields the same spots.
func ExpandScatter(s schema.Scatter) []Placement {
	if s.Count <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(uint64(s.Seed), uint64(s.Count)))
	result := make([]Placement, s.Count)
	for i := range result {
		x := (rng.Float64() - 0.5) * s.Extent
		z := (rng.Float64() - 0.5) * s.Extent
		result[i] = Placement{
			Name:     instanceName(s.Name, i),
			Source:   s.Name,
			Shape:    s.Shape,
			Material: s.Material,
			Position: dprec.NewVec3(x, 0.0, z),
			Scale:    dprec.NewVec3(1.0, 1.0, 1.0),
			Hidden:   s.Hidden,
		}
	}
	return result
}

// Resolve flattens all elements, rows and scatters of a layout into
// placements, in declaration order. Parents always precede their children.
func Resolve(l *schema.Layout) ([]Placement, error) {
	if err := Validate(l); err != nil {
		return nil, err
	}

	var result []Placement
	for _, element := range l.Elements {
		scale := dprec.NewVec3(1.0, 1.0, 1.0)
		if element.Scale != nil {
			scale = vec3(*element.Scale)
		}
		result = append(result, Placement{
			Name:          element.Name,
			Source:        element.Name,
			Parent:        element.Parent,
			Shape:         element.Shape,
			Material:      element.Material,
			Position:      vec3(element.Position),
			Rotation:      vec3(element.Rotation),
			Scale:         scale,
			CastShadow:    element.CastShadow,
			ReceiveShadow: element.ReceiveShadow,
			Hidden:        element.Hidden,
		})
	}
	for _, row := range l.Rows {
		result = append(result, ExpandRow(row)...)
	}
	for _, scatter := range l.Scatter {
		result = append(result, ExpandScatter(scatter)...)
	}
	return orderByParent(result), nil
}

// orderByParent moves every placement after its parent while keeping the
// declaration order otherwise stable.
func orderByParent(placements []Placement) []Placement {
	placed := make(map[string]bool, len(placements))
	result := make([]Placement, 0, len(placements))
	pending := placements
	for len(pending) > 0 {
		var deferred []Placement
		for _, p := range pending {
			if p.Parent == "" || placed[p.Parent] {
				placed[p.Name] = true
				result = append(result, p)
			} else {
				deferred = append(deferred, p)
			}
		}
		if len(deferred) == len(pending) {
			// cycles are rejected by Validate; keep whatever is left
			return append(result, deferred...)
		}
		pending = deferred
	}
	return result
}

func vec3(v schema.Vec3) dprec.Vec3 {
	return dprec.NewVec3(v[0], v[1], v[2])
}
