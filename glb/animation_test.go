package glb

import (
	"math"
	"testing"

	"github.com/mokiat/gomath/dprec"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nobonobo/lowpoly-church/layout"
	"github.com/nobonobo/lowpoly-church/rig"
	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/stage"
)

func TestAnimateOrbit(t *testing.T) {
	l, err := layout.Preset("orbit")
	require.NoError(t, err)
	s, err := scene.Build(l)
	require.NoError(t, err)
	r := rig.FromLayout(l, s)
	require.NotNil(t, r)

	doc, err := Encode(s, stage.NewCamera(l.Camera))
	require.NoError(t, err)
	accessors := len(doc.Accessors)
	require.NoError(t, Animate(doc, r, 16))

	require.Len(t, doc.Animations, 1)
	animation := doc.Animations[0]
	assert.Equal(t, OrbitAnimation, animation.Name)
	require.Len(t, animation.Channels, 1)
	require.Len(t, animation.Samplers, 1)
	assert.Equal(t, gltf.TRSRotation, animation.Channels[0].Target.Path)
	pivot := doc.Nodes[*animation.Channels[0].Target.Node]
	assert.Equal(t, RigNode, pivot.Name)
	require.Len(t, pivot.Children, 1)
	sun := doc.Nodes[pivot.Children[0]]
	assert.Equal(t, LightNode, sun.Name)

	// angle zero of the rig reproduces the exported light
	start := r.Position()
	assert.InDelta(t, start.X-r.Pivot.X, sun.Translation[0], 1e-12)
	assert.InDelta(t, start.Y-r.Pivot.Y, sun.Translation[1], 1e-12)
	assert.InDelta(t, start.Z-r.Pivot.Z, sun.Translation[2], 1e-12)

	assert.Len(t, doc.Accessors, accessors+2)
	input := doc.Accessors[animation.Samplers[0].Input]
	assert.Equal(t, 17, input.Count)
	// keyframe times are stored as float32
	assert.InDelta(t, 2*math.Pi/0.5, input.Max[0], 1e-5)
	assert.Equal(t, 17, doc.Accessors[animation.Samplers[0].Output].Count)

	// the rig was not advanced
	assert.Zero(t, r.Angle())
}

func TestOrbitRotationMatchesRig(t *testing.T) {
	r := rig.New(dprec.ZeroVec3(), dprec.NewVec3(2, 1, 0), 0.5)
	start := r.Position()
	r.SetAngle(1.2)

	// turning the starting offset by the rig rotation lands on the
	// orbiting light
	moved := dprec.QuatVec3Rotation(r.Rotation(), start)
	expected := r.Position()
	assert.InDelta(t, expected.X, moved.X, 1e-9)
	assert.InDelta(t, expected.Y, moved.Y, 1e-9)
	assert.InDelta(t, expected.Z, moved.Z, 1e-9)
}

func TestAnimateIgnoresStillRig(t *testing.T) {
	s, camera := stillScene(t)
	doc, err := Encode(s, camera)
	require.NoError(t, err)

	require.NoError(t, Animate(doc, nil, 16))
	require.NoError(t, Animate(doc, rig.New(dprec.ZeroVec3(), dprec.NewVec3(1, 1, 0), 0), 16))
	assert.Empty(t, doc.Animations)
}

func TestAnimateRequiresLightNode(t *testing.T) {
	doc := gltf.NewDocument()
	err := Animate(doc, rig.New(dprec.ZeroVec3(), dprec.NewVec3(1, 1, 0), 1), 8)
	assert.ErrorIs(t, err, ErrNoLightNode)
}
