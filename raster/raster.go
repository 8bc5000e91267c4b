// Package raster is a headless software renderer for scenes. It draws
// visible meshes with a depth buffer, ambient plus directional lighting,
// directional shadows and linear fog into an RGBA image.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mokiat/gomath/dprec"
	"golang.org/x/sync/errgroup"

	"github.com/nobonobo/lowpoly-church/geometry"
	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/schema"
	"github.com/nobonobo/lowpoly-church/stage"
)

var errNoSize = errors.New("renderer has no size")

type Option func(r *Renderer)

// WithWorkers sets how many row bands are rendered concurrently.
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		r.workers = max(1, n)
	}
}

func WithShadowMapSize(size int) Option {
	return func(r *Renderer) {
		r.shadowSize = max(1, size)
	}
}

// WithShadowHalfExtent sets the half width of the area around the light
// target that the shadow map covers.
func WithShadowHalfExtent(extent float64) Option {
	return func(r *Renderer) {
		r.shadowExtent = extent
	}
}

func WithShadowBias(bias float64) Option {
	return func(r *Renderer) {
		r.shadowBias = bias
	}
}

// Renderer implements stage.Renderer. The drawing buffer is the viewport
// size multiplied by the pixel ratio.
type Renderer struct {
	workers      int
	shadowSize   int
	shadowExtent float64
	shadowBias   float64

	width  int
	height int
	ratio  float64

	frame *image.RGBA
	depth []float64
}

var _ stage.Renderer = (*Renderer)(nil)

func New(opts ...Option) *Renderer {
	r := &Renderer{
		workers:      runtime.GOMAXPROCS(0),
		shadowSize:   512,
		shadowExtent: 5,
		shadowBias:   0.02,
		ratio:        1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) SetSize(width, height int) {
	r.width, r.height = width, height
}

func (r *Renderer) SetPixelRatio(ratio float64) {
	r.ratio = ratio
}

// BufferSize returns the size of the drawing buffer in device pixels.
func (r *Renderer) BufferSize() (width, height int) {
	if r.width <= 0 || r.height <= 0 {
		return 0, 0
	}
	return max(1, int(math.Round(float64(r.width)*r.ratio))),
		max(1, int(math.Round(float64(r.height)*r.ratio)))
}

// Frame returns the last rendered image. It is reused between renders.
func (r *Renderer) Frame() *image.RGBA {
	return r.frame
}

func (r *Renderer) Render(s *scene.Scene, camera *stage.Camera) error {
	width, height := r.BufferSize()
	if width == 0 || height == 0 {
		return errNoSize
	}
	if r.frame == nil || r.frame.Rect.Dx() != width || r.frame.Rect.Dy() != height {
		r.frame = image.NewRGBA(image.Rect(0, 0, width, height))
		r.depth = make([]float64, width*height)
	}

	triangles := collect(s)
	var shadows *shadowMap
	if s.Directional.CastShadow {
		shadows = newShadowMap(s.Directional, r.shadowSize, r.shadowExtent, r.shadowBias)
		shadows.draw(triangles)
	}
	projected := project(triangles, camera, width, height)
	sh := newShader(s, camera, shadows)

	bandHeight := (height + r.workers - 1) / r.workers
	var group errgroup.Group
	group.SetLimit(r.workers)
	for top := 0; top < height; top += bandHeight {
		bottom := min(height, top+bandHeight)
		group.Go(func() error {
			r.drawBand(top, bottom, projected, sh, s.Background)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return fmt.Errorf("failed to rasterize: %w", err)
	}
	return nil
}

// worldTriangle is a mesh triangle transformed into world space.
type worldTriangle struct {
	positions     [3]dprec.Vec3
	normals       [3]dprec.Vec3
	material      *scene.Material
	castShadow    bool
	receiveShadow bool
}

func collect(s *scene.Scene) []worldTriangle {
	var result []worldTriangle
	for _, instance := range s.Instances() {
		node := instance.Node
		node.Geometry.Mesh.Triangles(func(tri geometry.Triangle) bool {
			var wt worldTriangle
			for i := range 3 {
				wt.positions[i] = scene.TransformPoint(instance.World, vec64(tri.Vertices[i].X, tri.Vertices[i].Y, tri.Vertices[i].Z))
				wt.normals[i] = scene.TransformNormal(instance.World, vec64(tri.Normals[i].X, tri.Normals[i].Y, tri.Normals[i].Z))
			}
			wt.material = node.Material
			wt.castShadow = node.CastShadow
			wt.receiveShadow = node.ReceiveShadow
			result = append(result, wt)
			return true
		})
	}
	return result
}

func vec64(x, y, z float32) dprec.Vec3 {
	return dprec.NewVec3(float64(x), float64(y), float64(z))
}

type screenVertex struct {
	x, y   float64 // device pixels, y down
	z      float64 // normalized depth in [-1, 1]
	view   float64 // distance in front of the camera
	world  dprec.Vec3
	normal dprec.Vec3
}

type screenTriangle struct {
	v             [3]screenVertex
	area          float64
	minX, maxX    int
	minY, maxY    int
	material      *scene.Material
	receiveShadow bool
}

// project maps front facing triangles to device pixels. Triangles are
// reordered so that their signed area is positive.
func project(triangles []worldTriangle, camera *stage.Camera, width, height int) []screenTriangle {
	result := make([]screenTriangle, 0, len(triangles))
	for _, wt := range triangles {
		var st screenTriangle
		for i := range 3 {
			ndc := camera.Project(wt.positions[i])
			st.v[i] = screenVertex{
				x:      (ndc.X + 1) / 2 * float64(width),
				y:      (1 - ndc.Y) / 2 * float64(height),
				z:      ndc.Z,
				view:   camera.ViewDepth(wt.positions[i]),
				world:  wt.positions[i],
				normal: wt.normals[i],
			}
		}
		// counter-clockwise in view space is clockwise once y points down
		area := edge(st.v[0], st.v[1], st.v[2])
		if area >= 0 {
			continue
		}
		st.v[1], st.v[2] = st.v[2], st.v[1]
		st.area = -area

		minX := math.Min(st.v[0].x, math.Min(st.v[1].x, st.v[2].x))
		maxX := math.Max(st.v[0].x, math.Max(st.v[1].x, st.v[2].x))
		minY := math.Min(st.v[0].y, math.Min(st.v[1].y, st.v[2].y))
		maxY := math.Max(st.v[0].y, math.Max(st.v[1].y, st.v[2].y))
		st.minX = max(0, int(math.Floor(minX)))
		st.maxX = min(width-1, int(math.Ceil(maxX)))
		st.minY = max(0, int(math.Floor(minY)))
		st.maxY = min(height-1, int(math.Ceil(maxY)))
		if st.minX > st.maxX || st.minY > st.maxY {
			continue
		}
		st.material = wt.material
		st.receiveShadow = wt.receiveShadow
		result = append(result, st)
	}
	return result
}

func edge(a, b, c screenVertex) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

func edgeAt(a, b screenVertex, x, y float64) float64 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

// drawBand clears and draws the rows [top, bottom). Bands never share rows.
func (r *Renderer) drawBand(top, bottom int, triangles []screenTriangle, sh *shader, background color.RGBA) {
	width := r.frame.Rect.Dx()
	for y := top; y < bottom; y++ {
		for x := range width {
			r.frame.SetRGBA(x, y, background)
			r.depth[y*width+x] = math.Inf(1)
		}
	}

	for i := range triangles {
		tri := &triangles[i]
		if tri.maxY < top || tri.minY >= bottom {
			continue
		}
		for y := max(top, tri.minY); y <= min(bottom-1, tri.maxY); y++ {
			py := float64(y) + 0.5
			for x := tri.minX; x <= tri.maxX; x++ {
				px := float64(x) + 0.5
				w0 := edgeAt(tri.v[1], tri.v[2], px, py)
				w1 := edgeAt(tri.v[2], tri.v[0], px, py)
				w2 := edgeAt(tri.v[0], tri.v[1], px, py)
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
				b0, b1, b2 := w0/tri.area, w1/tri.area, w2/tri.area
				z := b0*tri.v[0].z + b1*tri.v[1].z + b2*tri.v[2].z
				if z < -1 || z > 1 {
					continue
				}
				idx := y*width + x
				if z >= r.depth[idx] {
					continue
				}
				r.depth[idx] = z
				r.frame.SetRGBA(x, y, sh.shade(tri, b0, b1, b2))
			}
		}
	}
}

type shader struct {
	ambient  colorful.Color
	light    colorful.Color
	toLight  dprec.Vec3
	toCamera dprec.Vec3
	fog      *scene.Fog
	fogColor colorful.Color
	shadows  *shadowMap
}

func newShader(s *scene.Scene, camera *stage.Camera, shadows *shadowMap) *shader {
	_, _, back := camera.Basis()
	sh := &shader{
		ambient:  scaled(linear(s.Ambient.Color), s.Ambient.Intensity),
		light:    scaled(linear(s.Directional.Color), s.Directional.Intensity),
		toLight:  dprec.InverseVec3(s.Directional.Direction()),
		toCamera: back,
		fog:      s.Fog,
		shadows:  shadows,
	}
	if s.Fog != nil {
		sh.fogColor = toColorful(s.Fog.Color)
	}
	return sh
}

func (sh *shader) shade(tri *screenTriangle, b0, b1, b2 float64) color.RGBA {
	v0, v1, v2 := tri.v[0], tri.v[1], tri.v[2]
	world := dprec.Vec3Sum(dprec.Vec3Sum(
		dprec.Vec3Prod(v0.world, b0),
		dprec.Vec3Prod(v1.world, b1)),
		dprec.Vec3Prod(v2.world, b2))
	normal := dprec.Vec3Sum(dprec.Vec3Sum(
		dprec.Vec3Prod(v0.normal, b0),
		dprec.Vec3Prod(v1.normal, b1)),
		dprec.Vec3Prod(v2.normal, b2))
	if normal.Length() > 0 {
		normal = dprec.UnitVec3(normal)
	}

	material := tri.material
	visibility := 1.0
	if tri.receiveShadow && sh.shadows != nil {
		visibility = sh.shadows.visibility(world)
	}
	diffuse := math.Max(0, dprec.Vec3Dot(normal, sh.toLight)) * visibility

	albedo := linear(material.Color)
	weight := 1.0
	var specular float64
	if material.Kind == schema.MaterialStandard {
		weight = 1 - material.Metalness
		if material.Roughness < 1 && diffuse > 0 {
			half := dprec.UnitVec3(dprec.Vec3Sum(sh.toLight, sh.toCamera))
			shininess := 2 + (1-material.Roughness)*126
			specular = math.Pow(math.Max(0, dprec.Vec3Dot(normal, half)), shininess) * (1 - material.Roughness) * visibility
		}
	}
	emissive := linear(material.Emissive)

	channel := func(albedo, ambient, light, emissive float64) float64 {
		return albedo*weight*(ambient+light*diffuse) + light*specular + emissive
	}
	result := colorful.LinearRgb(
		channel(albedo.R, sh.ambient.R, sh.light.R, emissive.R),
		channel(albedo.G, sh.ambient.G, sh.light.G, emissive.G),
		channel(albedo.B, sh.ambient.B, sh.light.B, emissive.B),
	).Clamped()

	if factor := sh.fog.Factor(b0*v0.view + b1*v1.view + b2*v2.view); factor > 0 {
		result = result.BlendRgb(sh.fogColor, factor).Clamped()
	}
	r, g, b := result.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

func toColorful(c color.RGBA) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// linear returns the color in linear RGB, stored in a colorful.Color.
func linear(c color.RGBA) colorful.Color {
	r, g, b := toColorful(c).LinearRgb()
	return colorful.Color{R: r, G: g, B: b}
}

func scaled(c colorful.Color, factor float64) colorful.Color {
	return colorful.Color{R: c.R * factor, G: c.G * factor, B: c.B * factor}
}
