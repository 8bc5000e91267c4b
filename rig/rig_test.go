package rig

import (
	"math"
	"testing"

	"github.com/mokiat/gomath/dprec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nobonobo/lowpoly-church/layout"
	"github.com/nobonobo/lowpoly-church/scene"
)

func assertVec(t *testing.T, expected, actual dprec.Vec3) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, 1e-9)
	assert.InDelta(t, expected.Y, actual.Y, 1e-9)
	assert.InDelta(t, expected.Z, actual.Z, 1e-9)
}

func TestStartsAtLightPosition(t *testing.T) {
	light := dprec.NewVec3(6.5, 2.5, 5)
	r := New(dprec.ZeroVec3(), light, 0.5)
	assertVec(t, light, r.Position())
	assert.InDelta(t, math.Hypot(6.5, 5), r.Radius, 1e-12)
	assert.Equal(t, 2.5, r.Height)
}

func TestUpdateKeepsRadiusAndHeight(t *testing.T) {
	pivot := dprec.NewVec3(1, 0, -1)
	r := New(pivot, dprec.NewVec3(4, 3, -1), 1.3)
	for range 1000 {
		r.Update(1.0 / 60.0)
		offset := dprec.Vec3Diff(r.Position(), pivot)
		assert.InDelta(t, 3.0, math.Hypot(offset.X, offset.Z), 1e-9)
		assert.InDelta(t, 3.0, offset.Y, 1e-12)
		assert.GreaterOrEqual(t, r.Angle(), 0.0)
		assert.Less(t, r.Angle(), 2*math.Pi)
	}
}

func TestFullTurnReturnsHome(t *testing.T) {
	light := dprec.NewVec3(2, 1, 0)
	r := New(dprec.ZeroVec3(), light, math.Pi)
	r.Update(1)
	assertVec(t, dprec.NewVec3(-2, 1, 0), r.Position())
	r.Update(1)
	assertVec(t, light, r.Position())
}

func TestRestartSafe(t *testing.T) {
	r := New(dprec.ZeroVec3(), dprec.NewVec3(1, 1, 1), 2)
	r.Update(0.25)
	before := r.Angle()

	r.Update(math.NaN())
	r.Update(math.Inf(1))
	r.Update(-5)
	r.SetAngle(math.Inf(-1))
	assert.Equal(t, before, r.Angle())

	broken := New(dprec.ZeroVec3(), dprec.NewVec3(1, 1, 1), math.NaN())
	broken.Update(1)
	p := broken.Position()
	assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z))

	r.Reset()
	assert.Zero(t, r.Angle())
	r.SetAngle(-math.Pi / 2)
	assert.InDelta(t, 1.5*math.Pi, r.Angle(), 1e-12)
}

func TestRotationMatchesPosition(t *testing.T) {
	light := dprec.NewVec3(3, 2, 0)
	r := New(dprec.ZeroVec3(), light, 1)
	r.SetAngle(0.7)
	rotated := dprec.QuatVec3Rotation(r.Rotation(), light)
	assertVec(t, r.Position(), rotated)
}

func TestFromLayout(t *testing.T) {
	still, err := layout.Preset("still")
	require.NoError(t, err)
	s, err := scene.Build(still)
	require.NoError(t, err)
	assert.Nil(t, FromLayout(still, s))

	orbit, err := layout.Preset("orbit")
	require.NoError(t, err)
	s, err = scene.Build(orbit)
	require.NoError(t, err)
	r := FromLayout(orbit, s)
	require.NotNil(t, r)

	r.Update(1)
	r.Apply(s)
	assert.InDelta(t, 0.5, r.Angle(), 1e-12)
	assert.Equal(t, r.Position(), s.Directional.Position)
	assert.Equal(t, r.Pivot, s.Directional.Target)
}
