package stage

import (
	"math"

	"github.com/mokiat/gomath/dprec"

	"github.com/nobonobo/lowpoly-church/orbit"
	"github.com/nobonobo/lowpoly-church/schema"
)

// Camera is an orthographic camera. The visible volume spans
// HalfSize*Aspect horizontally and HalfSize vertically in each direction
// from the view axis, divided by Zoom.
type Camera struct {
	HalfSize float64
	Aspect   float64
	Zoom     float64
	Near     float64
	Far      float64
	Position dprec.Vec3
	Target   dprec.Vec3
}

func NewCamera(c schema.Camera) *Camera {
	return &Camera{
		HalfSize: c.HalfSize,
		Aspect:   1,
		Zoom:     c.Zoom,
		Near:     c.Near,
		Far:      c.Far,
		Position: dprec.NewVec3(c.Position[0], c.Position[1], c.Position[2]),
		Target:   dprec.NewVec3(c.Target[0], c.Target[1], c.Target[2]),
	}
}

// Frustum returns the left, right, bottom and top planes of the view
// volume with zoom applied.
func (c *Camera) Frustum() (left, right, bottom, top float64) {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	w := c.HalfSize * c.Aspect / zoom
	h := c.HalfSize / zoom
	return -w, w, -h, h
}

// Sync copies the controlled camera pose.
func (c *Camera) Sync(controls *orbit.Controls) {
	c.Position = controls.Position()
	c.Target = controls.Target()
	c.Zoom = controls.Zoom()
}

// Basis returns the camera's right, up and backward unit vectors. The
// camera looks along the negated backward vector.
func (c *Camera) Basis() (right, up, back dprec.Vec3) {
	offset := dprec.Vec3Diff(c.Position, c.Target)
	if offset.Length() == 0 {
		return dprec.BasisXVec3(), dprec.BasisYVec3(), dprec.BasisZVec3()
	}
	back = dprec.UnitVec3(offset)
	right = dprec.Vec3Cross(dprec.BasisYVec3(), back)
	if right.Length() < 1e-12 {
		right = dprec.BasisXVec3()
	}
	right = dprec.UnitVec3(right)
	up = dprec.Vec3Cross(back, right)
	return right, up, back
}

// ViewDepth returns the distance of p in front of the camera plane.
func (c *Camera) ViewDepth(p dprec.Vec3) float64 {
	_, _, back := c.Basis()
	return -dprec.Vec3Dot(dprec.Vec3Diff(p, c.Position), back)
}

// Project maps a world point to normalized device coordinates. X and Y
// are in [-1, 1] inside the view, Z is -1 on the near plane and 1 on the
// far plane.
func (c *Camera) Project(p dprec.Vec3) dprec.Vec3 {
	right, up, back := c.Basis()
	rel := dprec.Vec3Diff(p, c.Position)
	left, rgt, bottom, top := c.Frustum()
	x := dprec.Vec3Dot(rel, right)
	y := dprec.Vec3Dot(rel, up)
	depth := -dprec.Vec3Dot(rel, back)
	return dprec.NewVec3(
		(2*x-(rgt+left))/(rgt-left),
		(2*y-(top+bottom))/(top-bottom),
		2*(depth-c.Near)/(c.Far-c.Near)-1,
	)
}

// ViewSize returns the world size of the view at zoom 1.
func (c *Camera) ViewSize() (width, height float64) {
	return 2 * c.HalfSize * c.Aspect, 2 * c.HalfSize
}

func (c *Camera) finite() bool {
	for _, v := range []float64{
		c.Aspect, c.Zoom,
		c.Position.X, c.Position.Y, c.Position.Z,
		c.Target.X, c.Target.Y, c.Target.Z,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
