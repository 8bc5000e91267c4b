package raster

import (
	"math"

	"github.com/mokiat/gomath/dprec"

	"github.com/nobonobo/lowpoly-church/scene"
)

// shadowMap is an orthographic depth map seen from the directional light,
// centered on the light target.
type shadowMap struct {
	size   int
	extent float64
	bias   float64

	origin dprec.Vec3
	right  dprec.Vec3
	up     dprec.Vec3
	dir    dprec.Vec3

	depth []float64
}

func newShadowMap(light scene.DirectionalLight, size int, extent, bias float64) *shadowMap {
	dir := light.Direction()
	right := dprec.Vec3Cross(dir, dprec.BasisYVec3())
	if right.Length() < 1e-9 {
		right = dprec.BasisXVec3()
	}
	right = dprec.UnitVec3(right)
	up := dprec.Vec3Cross(right, dir)

	depth := make([]float64, size*size)
	for i := range depth {
		depth[i] = math.Inf(1)
	}
	return &shadowMap{
		size:   size,
		extent: extent,
		bias:   bias,
		origin: light.Target,
		right:  right,
		up:     up,
		dir:    dir,
		depth:  depth,
	}
}

// texel maps a world point to map coordinates and its depth along the
// light direction.
func (m *shadowMap) texel(p dprec.Vec3) (x, y, depth float64) {
	rel := dprec.Vec3Diff(p, m.origin)
	u := dprec.Vec3Dot(rel, m.right) / m.extent
	v := dprec.Vec3Dot(rel, m.up) / m.extent
	return (u + 1) / 2 * float64(m.size), (1 - v) / 2 * float64(m.size), dprec.Vec3Dot(rel, m.dir)
}

// draw records the nearest depth of every shadow casting triangle. Both
// faces are drawn.
func (m *shadowMap) draw(triangles []worldTriangle) {
	for _, tri := range triangles {
		if !tri.castShadow {
			continue
		}
		var v [3]screenVertex
		for i := range 3 {
			v[i].x, v[i].y, v[i].z = m.texel(tri.positions[i])
		}
		area := edge(v[0], v[1], v[2])
		if area == 0 {
			continue
		}
		minX := max(0, int(math.Floor(math.Min(v[0].x, math.Min(v[1].x, v[2].x)))))
		maxX := min(m.size-1, int(math.Ceil(math.Max(v[0].x, math.Max(v[1].x, v[2].x)))))
		minY := max(0, int(math.Floor(math.Min(v[0].y, math.Min(v[1].y, v[2].y)))))
		maxY := min(m.size-1, int(math.Ceil(math.Max(v[0].y, math.Max(v[1].y, v[2].y)))))
		for y := minY; y <= maxY; y++ {
			py := float64(y) + 0.5
			for x := minX; x <= maxX; x++ {
				px := float64(x) + 0.5
				w0 := edgeAt(v[1], v[2], px, py) / area
				w1 := edgeAt(v[2], v[0], px, py) / area
				w2 := edgeAt(v[0], v[1], px, py) / area
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
				z := w0*v[0].z + w1*v[1].z + w2*v[2].z
				idx := y*m.size + x
				if z < m.depth[idx] {
					m.depth[idx] = z
				}
			}
		}
	}
}

// visibility returns the lit fraction of p, filtered over the
// neighbouring texels. Points outside the map are lit.
func (m *shadowMap) visibility(p dprec.Vec3) float64 {
	x, y, depth := m.texel(p)
	cx, cy := int(math.Floor(x)), int(math.Floor(y))
	var lit, total float64
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			tx, ty := cx+dx, cy+dy
			total++
			if tx < 0 || ty < 0 || tx >= m.size || ty >= m.size {
				lit++
				continue
			}
			if depth-m.bias <= m.depth[ty*m.size+tx] {
				lit++
			}
		}
	}
	return lit / total
}
