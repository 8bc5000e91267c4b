// Package rig animates the directional light on a horizontal circle
// around a pivot.
package rig

import (
	"math"

	"github.com/mokiat/gomath/dprec"

	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/schema"
)

// Rig orbits a light around Pivot. The orbit radius and height come from
// the light's initial position so that angle zero reproduces it.
type Rig struct {
	Pivot  dprec.Vec3
	Radius float64
	Height float64
	Speed  float64

	phase float64
	angle float64
}

// New derives a rig from the light's starting position.
func New(pivot, light dprec.Vec3, speed float64) *Rig {
	offset := dprec.Vec3Diff(light, pivot)
	return &Rig{
		Pivot:  pivot,
		Radius: math.Hypot(offset.X, offset.Z),
		Height: offset.Y,
		Speed:  sanitize(speed),
		phase:  math.Atan2(offset.Z, offset.X),
	}
}

// FromLayout builds the rig configured by the layout for the scene's
// directional light. It returns nil when the layout keeps the light still.
func FromLayout(l *schema.Layout, s *scene.Scene) *Rig {
	if l.Variant != schema.VariantOrbit || !l.Lighting.Rig.Enabled {
		return nil
	}
	pivot := l.Lighting.Rig.Pivot
	return New(dprec.NewVec3(pivot[0], pivot[1], pivot[2]), s.Directional.Position, l.Lighting.Rig.Speed)
}

// Angle returns the current rotation in radians, always in [0, 2π).
func (r *Rig) Angle() float64 {
	return r.angle
}

// Update advances the orbit by dt seconds. Negative or non-finite steps
// are ignored.
func (r *Rig) Update(dt float64) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return
	}
	r.SetAngle(r.angle + sanitize(r.Speed)*dt)
}

// SetAngle jumps to the given rotation.
func (r *Rig) SetAngle(angle float64) {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return
	}
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	r.angle = angle
}

// Reset returns the light to its starting position.
func (r *Rig) Reset() {
	r.angle = 0
}

// Position returns the light position for the current angle.
func (r *Rig) Position() dprec.Vec3 {
	theta := r.phase + r.angle
	return dprec.Vec3Sum(r.Pivot, dprec.NewVec3(
		r.Radius*math.Cos(theta),
		r.Height,
		r.Radius*math.Sin(theta),
	))
}

// Rotation returns the rig rotation around the vertical axis, for engines
// that attach the light to a pivot node instead of moving it directly.
func (r *Rig) Rotation() dprec.Quat {
	// positive angles move the light from +X towards +Z, which is a
	// clockwise turn when looking down the Y axis
	return dprec.RotationQuat(dprec.Radians(-r.angle), dprec.BasisYVec3())
}

// Apply moves the scene's directional light and points it at the pivot.
func (r *Rig) Apply(s *scene.Scene) {
	s.Directional.Position = r.Position()
	s.Directional.Target = r.Pivot
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
