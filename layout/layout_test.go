package layout

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nobonobo/lowpoly-church/schema"
)

func TestRowCoordinates(t *testing.T) {
	tests := []struct {
		count  int
		pitch  float64
		offset float64
	}{
		{count: 15, pitch: 8, offset: 1},
		{count: 1, pitch: 1, offset: 0},
		{count: 7, pitch: 0.5, offset: -3},
		{count: 100, pitch: 3, offset: 12.5},
	}
	for _, test := range tests {
		coords := RowCoordinates(test.count, test.pitch, test.offset)
		require.Len(t, coords, test.count)
		for i, c := range coords {
			assert.Equal(t, float64(i)/test.pitch-test.offset, c)
		}
	}

	assert.Empty(t, RowCoordinates(0, 8, 1))
	assert.Empty(t, RowCoordinates(-4, 8, 1))
}

func TestExpandRowBenches(t *testing.T) {
	row := schema.Row{
		Name:     "bench",
		Shape:    schema.Shape{Kind: schema.ShapeBox, Width: 0.05, Height: 0.0075, Depth: 0.2},
		Material: "bench",
		Count:    15,
		Pitch:    8,
		Offset:   1,
		Axis:     schema.AxisX,
		Base:     schema.Vec3{0, 0.05, -0.85},
		Mirror:   &schema.Mirror{Axis: schema.AxisZ},
	}
	placements := ExpandRow(row)
	require.Len(t, placements, 30)

	assert.Equal(t, "bench[0]", placements[0].Name)
	assert.Equal(t, -1.0, placements[0].Position.X)
	assert.Equal(t, 0.75, placements[14].Position.X)
	assert.Equal(t, "bench.mirror[14]", placements[29].Name)

	for i := range 15 {
		original := placements[i]
		mirrored := placements[15+i]
		assert.Equal(t, float64(i)/8-1, original.Position.X)
		assert.Equal(t, 0.05, original.Position.Y)
		assert.Equal(t, -0.85, original.Position.Z)

		assert.Equal(t, original.Position.X, mirrored.Position.X)
		assert.Equal(t, original.Position.Y, mirrored.Position.Y)
		assert.Equal(t, math.Abs(original.Position.Z), math.Abs(mirrored.Position.Z))
		assert.Equal(t, -original.Position.Z, mirrored.Position.Z)
		assert.Equal(t, "bench", mirrored.Source)
	}
}

func TestMirrorOnRowAxis(t *testing.T) {
	row := schema.Row{
		Name:   "post",
		Count:  4,
		Pitch:  2,
		Offset: 0.25,
		Axis:   schema.AxisZ,
		Mirror: &schema.Mirror{Axis: schema.AxisZ, Rotate: true},
	}
	placements := ExpandRow(row)
	require.Len(t, placements, 8)
	for i := range 4 {
		assert.Equal(t, -placements[i].Position.Z, placements[4+i].Position.Z)
		assert.InDelta(t, math.Pi, placements[4+i].Rotation.Y, 1e-12)
	}
}

func TestExpandScatterIsDeterministic(t *testing.T) {
	scatter := schema.Scatter{Name: "grass", Count: 25, Extent: 2.5, Seed: 7}
	first := ExpandScatter(scatter)
	second := ExpandScatter(scatter)
	require.Len(t, first, 25)
	assert.Equal(t, first, second)
	for _, p := range first {
		assert.LessOrEqual(t, math.Abs(p.Position.X), 1.25)
		assert.LessOrEqual(t, math.Abs(p.Position.Z), 1.25)
		assert.Zero(t, p.Position.Y)
	}

	scatter.Seed = 8
	assert.NotEqual(t, first, ExpandScatter(scatter))
}

func TestPresetsValidate(t *testing.T) {
	names := Presets()
	assert.Equal(t, []string{"orbit", "still"}, names)
	for _, name := range names {
		l, err := Preset(name)
		require.NoError(t, err, name)
		assert.Equal(t, schema.Variant(name), l.Variant)
	}

	_, err := Preset("missing")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestResolveStill(t *testing.T) {
	l, err := Preset("still")
	require.NoError(t, err)

	placements, err := Resolve(l)
	require.NoError(t, err)
	// 6 elements, 2 rows of 15 benches, 25 grass tufts
	require.Len(t, placements, 6+30+25)

	index := make(map[string]int)
	for i, p := range placements {
		index[p.Name] = i
	}
	assert.Less(t, index["cross"], index["crossVertical"])
	assert.Less(t, index["cross"], index["crossHorizontal"])

	cross := placements[index["cross"]]
	assert.Equal(t, 0.5, cross.Scale.X)
	assert.Equal(t, 0.5, cross.Scale.Y)
	assert.Equal(t, 1.0, cross.Scale.Z)

	church := placements[index["church"]]
	assert.Equal(t, 0.325, church.Position.Y)
	assert.True(t, church.CastShadow)

	grass := placements[index["grass[0]"]]
	assert.True(t, grass.Hidden)
}

func TestResolveOrdersChildrenAfterParents(t *testing.T) {
	l := validLayout()
	l.Elements = []schema.Element{
		{Name: "child", Parent: "group", Shape: schema.Shape{Kind: schema.ShapeBox, Width: 1, Height: 1, Depth: 1}, Material: "m"},
		{Name: "group", Shape: schema.Shape{Kind: schema.ShapeGroup}},
	}
	placements, err := Resolve(l)
	require.NoError(t, err)
	require.Len(t, placements, 2)
	assert.Equal(t, "group", placements[0].Name)
	assert.Equal(t, "child", placements[1].Name)
}

func TestValidateReportsAllProblems(t *testing.T) {
	l := validLayout()
	l.Variant = "night"
	l.Fog = schema.Fog{Enabled: true, Color: "white", Near: 6, Far: 2}
	l.Rows = []schema.Row{
		{Name: "bench", Shape: schema.Shape{Kind: schema.ShapeBox, Width: 1, Height: 1, Depth: 1}, Material: "nope", Count: 3, Pitch: 0, Axis: schema.AxisX},
	}
	l.Elements = append(l.Elements, schema.Element{Name: "bench", Shape: schema.Shape{Kind: schema.ShapeGroup}})

	err := Validate(l)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLayout)

	message := err.Error()
	for _, fragment := range []string{
		`unknown variant "night"`,
		"fog: near",
		`unknown material "nope"`,
		"pitch must be positive",
		`duplicate name "bench"`,
	} {
		assert.Contains(t, message, fragment)
	}
}

func TestValidateRejectsBadParents(t *testing.T) {
	l := validLayout()
	l.Elements = []schema.Element{
		{Name: "a", Parent: "b", Shape: schema.Shape{Kind: schema.ShapeGroup}},
		{Name: "b", Parent: "a", Shape: schema.Shape{Kind: schema.ShapeGroup}},
		{Name: "c", Parent: "missing", Shape: schema.Shape{Kind: schema.ShapeGroup}},
	}
	err := Validate(l)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
	assert.Contains(t, err.Error(), `parent "missing"`)
}

func TestValidateRejectsExpandedNameClash(t *testing.T) {
	l := validLayout()
	l.Rows = []schema.Row{
		{Name: "bench", Shape: schema.Shape{Kind: schema.ShapeBox, Width: 1, Height: 1, Depth: 1}, Material: "m", Count: 4, Pitch: 1, Axis: schema.AxisX, Mirror: &schema.Mirror{Axis: schema.AxisZ}},
	}
	l.Scatter = []schema.Scatter{
		{Name: "grass", Shape: schema.Shape{Kind: schema.ShapeSphere, Radius: 0.1}, Material: "m", Count: 2, Extent: 1},
	}
	for _, name := range []string{"bench[3]", "bench.mirror[0]", "grass[1]"} {
		t.Run(name, func(t *testing.T) {
			clashing := *l
			clashing.Elements = append(slices.Clone(l.Elements), schema.Element{Name: name, Shape: schema.Shape{Kind: schema.ShapeGroup}})
			err := Validate(&clashing)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidLayout)
			assert.Contains(t, err.Error(), fmt.Sprintf("duplicate name %q", name))
		})
	}
	assert.NoError(t, Validate(l))
}

func TestParseTOML(t *testing.T) {
	source := `
name = "tiny"
variant = "orbit"

[camera]
halfSize = 2.0
near = 0.1
far = 50.0
position = [1.0, 1.0, 1.0]
target = [0.0, 0.0, 0.0]

[materials.stone]
kind = "lambert"
color = "#808080"

[[elements]]
name = "block"
material = "stone"
position = [0.0, 0.5, 0.0]
shape = { kind = "box", width = 1.0, height = 1.0, depth = 1.0 }

[lighting.rig]
enabled = true
speed = 0.25

[output]
width = 64
height = 32
`
	l, err := Parse([]byte(source), FormatTOML)
	require.NoError(t, err)
	require.NoError(t, Validate(l))

	assert.Equal(t, schema.VariantOrbit, l.Variant)
	assert.Equal(t, "white", l.Background)
	assert.Equal(t, 0.05, l.Controls.DampingFactor)
	assert.Zero(t, l.Materials["stone"].Roughness)
	assert.Equal(t, schema.MaterialLambert, l.Materials["stone"].Kind)
	assert.True(t, l.Lighting.Rig.Enabled)
	assert.Equal(t, 64, l.Output.Width)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("name: x\nbenches: 4\n"), FormatYAML)
	assert.Error(t, err)

	_, err = Parse([]byte("name = \"x\"\nbenches = 4\n"), FormatTOML)
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	format, err := FormatOf("scene.YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, format)

	format, err = FormatOf("dir/scene.toml")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, format)

	_, err = FormatOf("scene.json")
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("lightgrey")
	require.NoError(t, err)
	assert.Equal(t, uint8(0xd3), c.R)

	c, err = ParseColor(" Maroon ")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), c.R)
	assert.Zero(t, c.G)

	c, err = ParseColor("#102030")
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{0x10, 0x20, 0x30, 0xff}, [4]uint8{c.R, c.G, c.B, c.A})

	_, err = ParseColor("chartreuse-ish")
	assert.Error(t, err)
	_, err = ParseColor("#zz")
	assert.Error(t, err)
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	filename := dir + "/scene.yaml"
	data, err := presets.ReadFile("presets/orbit.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filename, data, 0o644))

	l, err := Load(filename)
	require.NoError(t, err)
	assert.True(t, l.Bloom.Enabled)

	broken := strings.Replace(string(data), "pitch: 8", "pitch: 0", 1)
	require.NoError(t, os.WriteFile(filename, []byte(broken), 0o644))
	_, err = Load(filename)
	assert.True(t, errors.Is(err, ErrInvalidLayout))
}

func validLayout() *schema.Layout {
	l := &schema.Layout{
		Name: "test",
		Camera: schema.Camera{
			Position: schema.Vec3{1, 1, 1},
		},
		Materials: map[string]schema.Material{
			"m": {Kind: schema.MaterialLambert, Color: "white"},
		},
		Output: schema.Output{Width: 16, Height: 16},
	}
	ApplyDefaults(l)
	return l
}
