// Package orbit implements damped orbit camera controls: dragging rotates
// the camera around a target, the wheel zooms, secondary drag pans.
package orbit

import (
	"math"

	"github.com/mokiat/gomath/dprec"

	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/schema"
)

// polarEpsilon keeps the camera off the poles where the view basis
// degenerates.
const polarEpsilon = 1e-6

type Button int

const (
	ButtonNone Button = iota
	ButtonRotate
	ButtonPan
)

type Settings struct {
	Damping       bool
	DampingFactor float64
	RotateSpeed   float64
	ZoomSpeed     float64
	PanSpeed      float64
	MinZoom       float64
	MaxZoom       float64
}

// SettingsFromLayout maps the layout's control section.
func SettingsFromLayout(c schema.Controls) Settings {
	return Settings{
		Damping:       c.Damping,
		DampingFactor: c.DampingFactor,
		RotateSpeed:   c.RotateSpeed,
		ZoomSpeed:     c.ZoomSpeed,
		PanSpeed:      1.0,
		MinZoom:       c.MinZoom,
		MaxZoom:       c.MaxZoom,
	}
}

type spherical struct {
	radius float64
	theta  float64 // azimuth around +Y, measured from +Z towards +X
	phi    float64 // polar angle from +Y
}

func sphericalFrom(offset dprec.Vec3) spherical {
	radius := offset.Length()
	if radius == 0 {
		return spherical{phi: math.Pi / 2}
	}
	return spherical{
		radius: radius,
		theta:  math.Atan2(offset.X, offset.Z),
		phi:    math.Acos(clamp(offset.Y/radius, -1, 1)),
	}
}

func (s spherical) vec3() dprec.Vec3 {
	sinPhi := math.Sin(s.phi)
	return dprec.NewVec3(
		s.radius*sinPhi*math.Sin(s.theta),
		s.radius*math.Cos(s.phi),
		s.radius*sinPhi*math.Cos(s.theta),
	)
}

type state struct {
	position dprec.Vec3
	target   dprec.Vec3
	zoom     float64
}

// Controls holds the camera state driven by pointer input. It is not safe
// for concurrent use.
type Controls struct {
	settings Settings

	position dprec.Vec3
	target   dprec.Vec3
	zoom     float64

	deltaTheta float64
	deltaPhi   float64
	panOffset  dprec.Vec3

	// world size of the view at zoom 1 and the screen size in pixels
	viewWidth    float64
	viewHeight   float64
	screenWidth  float64
	screenHeight float64

	button Button
	lastX  float64
	lastY  float64

	saved state
}

func New(position, target dprec.Vec3, zoom float64, settings Settings) *Controls {
	if settings.DampingFactor <= 0 || settings.DampingFactor > 1 {
		settings.DampingFactor = 0.05
	}
	if zoom <= 0 {
		zoom = 1
	}
	c := &Controls{
		settings:     settings,
		position:     position,
		target:       target,
		zoom:         zoom,
		viewWidth:    2,
		viewHeight:   2,
		screenWidth:  1,
		screenHeight: 1,
	}
	c.SaveState()
	return c
}

// FromLayout creates controls for the layout's camera.
func FromLayout(l *schema.Layout) *Controls {
	p, t := l.Camera.Position, l.Camera.Target
	return New(
		dprec.NewVec3(p[0], p[1], p[2]),
		dprec.NewVec3(t[0], t[1], t[2]),
		l.Camera.Zoom,
		SettingsFromLayout(l.Controls),
	)
}

func (c *Controls) Position() dprec.Vec3 { return c.position }
func (c *Controls) Target() dprec.Vec3   { return c.target }
func (c *Controls) Zoom() float64        { return c.zoom }

// SetView tells the controls how large the view volume is in world units
// at zoom 1 and how many pixels it covers, so that drags follow the pointer.
func (c *Controls) SetView(viewWidth, viewHeight float64, screenWidth, screenHeight int) {
	if finite(viewWidth) && viewWidth > 0 && finite(viewHeight) && viewHeight > 0 {
		c.viewWidth, c.viewHeight = viewWidth, viewHeight
	}
	if screenWidth > 0 && screenHeight > 0 {
		c.screenWidth, c.screenHeight = float64(screenWidth), float64(screenHeight)
	}
}

func (c *Controls) PointerDown(button Button, x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	c.button = button
	c.lastX, c.lastY = x, y
}

func (c *Controls) PointerMove(x, y float64) {
	if c.button == ButtonNone || !finite(x) || !finite(y) {
		return
	}
	dx, dy := x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y
	switch c.button {
	case ButtonRotate:
		c.RotateLeft(2 * math.Pi * dx / c.screenHeight * c.settings.RotateSpeed)
		c.RotateUp(2 * math.Pi * dy / c.screenHeight * c.settings.RotateSpeed)
	case ButtonPan:
		c.Pan(dx*c.settings.PanSpeed, dy*c.settings.PanSpeed)
	}
}

func (c *Controls) PointerUp() {
	c.button = ButtonNone
}

// Dragging reports whether a pointer button is held.
func (c *Controls) Dragging() bool {
	return c.button != ButtonNone
}

// Wheel zooms in for negative deltas and out for positive ones.
func (c *Controls) Wheel(deltaY float64) {
	if !finite(deltaY) || deltaY == 0 {
		return
	}
	scale := math.Pow(0.95, c.settings.ZoomSpeed)
	if deltaY < 0 {
		c.setZoom(c.zoom / scale)
	} else {
		c.setZoom(c.zoom * scale)
	}
}

func (c *Controls) RotateLeft(angle float64) {
	if finite(angle) {
		c.deltaTheta -= angle
	}
}

func (c *Controls) RotateUp(angle float64) {
	if finite(angle) {
		c.deltaPhi -= angle
	}
}

// Pan moves the target in screen space by the given pixel offsets.
func (c *Controls) Pan(dx, dy float64) {
	if !finite(dx) || !finite(dy) {
		return
	}
	right, up, _ := c.basis()
	unitsX := dx * c.viewWidth / c.zoom / c.screenWidth
	unitsY := dy * c.viewHeight / c.zoom / c.screenHeight
	c.panOffset = dprec.Vec3Sum(c.panOffset, dprec.Vec3Prod(right, -unitsX))
	c.panOffset = dprec.Vec3Sum(c.panOffset, dprec.Vec3Prod(up, unitsY))
}

// Update applies pending rotation and panning. With damping enabled only
// a fraction of the pending motion is applied per call and the rest decays,
// so Update must be called once per frame. It reports whether the camera
// moved.
func (c *Controls) Update() bool {
	before := state{position: c.position, target: c.target, zoom: c.zoom}

	offset := dprec.Vec3Diff(c.position, c.target)
	s := sphericalFrom(offset)

	factor := 1.0
	if c.settings.Damping {
		factor = c.settings.DampingFactor
	}
	s.theta += c.deltaTheta * factor
	s.phi = clamp(s.phi+c.deltaPhi*factor, polarEpsilon, math.Pi-polarEpsilon)

	target := dprec.Vec3Sum(c.target, dprec.Vec3Prod(c.panOffset, factor))
	position := dprec.Vec3Sum(target, s.vec3())

	if c.settings.Damping {
		c.deltaTheta *= 1 - factor
		c.deltaPhi *= 1 - factor
		c.panOffset = dprec.Vec3Prod(c.panOffset, 1-factor)
	} else {
		c.deltaTheta, c.deltaPhi = 0, 0
		c.panOffset = dprec.ZeroVec3()
	}

	if !finiteVec(position) || !finiteVec(target) {
		c.discardMotion()
		return false
	}
	c.position, c.target = position, target

	const settled = 1e-9
	if math.Abs(c.deltaTheta) < settled && math.Abs(c.deltaPhi) < settled && c.panOffset.Length() < settled {
		c.discardMotion()
	}
	return dprec.Vec3Diff(before.position, c.position).Length() > settled ||
		dprec.Vec3Diff(before.target, c.target).Length() > settled ||
		before.zoom != c.zoom
}

// SaveState remembers the current camera so Reset can return to it.
func (c *Controls) SaveState() {
	c.saved = state{position: c.position, target: c.target, zoom: c.zoom}
}

// Reset restores the saved camera and drops pending motion.
func (c *Controls) Reset() {
	c.position, c.target, c.zoom = c.saved.position, c.saved.target, c.saved.zoom
	c.discardMotion()
	c.button = ButtonNone
}

// Orientation returns the camera rotation looking from the position at the
// target, with -Z forward and +Y up.
func (c *Controls) Orientation() dprec.Quat {
	return scene.LookAt(c.position, c.target)
}

func (c *Controls) setZoom(zoom float64) {
	lo, hi := c.settings.MinZoom, c.settings.MaxZoom
	if hi <= 0 {
		hi = math.Inf(1)
	}
	if !finite(zoom) {
		return
	}
	c.zoom = clamp(zoom, math.Max(lo, 1e-6), hi)
}

func (c *Controls) discardMotion() {
	c.deltaTheta, c.deltaPhi = 0, 0
	c.panOffset = dprec.ZeroVec3()
}

// basis returns the camera's right, up and backward unit vectors.
func (c *Controls) basis() (right, up, back dprec.Vec3) {
	offset := dprec.Vec3Diff(c.position, c.target)
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

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteVec(v dprec.Vec3) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}
