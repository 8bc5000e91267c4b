package glb

import (
	"errors"
	"fmt"
	"math"

	"github.com/mokiat/gomath/dprec"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/nobonobo/lowpoly-church/rig"
	"github.com/nobonobo/lowpoly-church/scene"
)

const minOrbitSamples = 4

var ErrNoLightNode = errors.New("document has no light rig")

// Animate appends one full revolution of the rig as a looping rotation of
// the light pivot. The pivot is moved to the rig's pivot first, with the
// light at its starting offset. The last keyframe matches the first so
// that playback wraps without a jump. Rigs that do not move are ignored.
func Animate(doc *gltf.Document, r *rig.Rig, samples int) error {
	if r == nil || r.Speed == 0 || math.IsNaN(r.Speed) || math.IsInf(r.Speed, 0) {
		return nil
	}
	samples = max(samples, minOrbitSamples)

	pivot, sun := -1, -1
	for i, node := range doc.Nodes {
		if node.Name != RigNode {
			continue
		}
		for _, child := range node.Children {
			if doc.Nodes[child].Name == LightNode {
				pivot, sun = i, child
			}
		}
	}
	if pivot < 0 {
		return ErrNoLightNode
	}

	period := 2 * math.Pi / math.Abs(r.Speed)
	if math.IsInf(period, 0) {
		return fmt.Errorf("orbit speed %v is too slow to sample", r.Speed)
	}

	start := *r
	start.Reset()
	offset := dprec.Vec3Diff(start.Position(), r.Pivot)
	facing := scene.LookAt(offset, dprec.ZeroVec3())
	doc.Nodes[pivot].Translation = [3]float64{r.Pivot.X, r.Pivot.Y, r.Pivot.Z}
	doc.Nodes[sun].Translation = [3]float64{offset.X, offset.Y, offset.Z}
	doc.Nodes[sun].Rotation = [4]float64{facing.X, facing.Y, facing.Z, facing.W}

	times := make([]float32, samples+1)
	rotations := make([][4]float32, samples+1)
	for i := range times {
		t := period * float64(i) / float64(samples)
		// same turn as rig.Rotation, without wrapping the angle so that
		// neighbouring keyframes stay in one hemisphere
		rotation := dprec.RotationQuat(dprec.Radians(-r.Speed*t), dprec.BasisYVec3())
		times[i] = float32(t)
		rotations[i] = [4]float32{float32(rotation.X), float32(rotation.Y), float32(rotation.Z), float32(rotation.W)}
	}

	input := modeler.WriteAccessor(doc, gltf.TargetNone, times)
	doc.Accessors[input].Min = []float64{0}
	doc.Accessors[input].Max = []float64{float64(times[samples])}
	output := modeler.WriteAccessor(doc, gltf.TargetNone, rotations)

	doc.Animations = append(doc.Animations, &gltf.Animation{
		Name: OrbitAnimation,
		Samplers: []*gltf.AnimationSampler{
			{Input: input, Output: output, Interpolation: gltf.InterpolationLinear},
		},
		Channels: []*gltf.AnimationChannel{
			{Sampler: 0, Target: gltf.AnimationChannelTarget{Node: gltf.Index(pivot), Path: gltf.TRSRotation}},
		},
		Extras: map[string]any{"period": period},
	})
	return nil
}
