// Package geometry builds the primitive meshes the scene is made of.
//
// All primitives are centered on the origin and follow the three.js
// conventions: a plane lies in the XY plane facing +Z, a box spans
// [-w/2, w/2] x [-h/2, h/2] x [-d/2, d/2].
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/mokiat/gomath/sprec"
)

var ErrInvalidDimension = errors.New("invalid dimension")

// Mesh is an indexed triangle list.
type Mesh struct {
	Positions []sprec.Vec3
	Normals   []sprec.Vec3
	Indices   []uint32
}

// Triangle is a single face of a mesh, with per-vertex normals.
type Triangle struct {
	Vertices [3]sprec.Vec3
	Normals  [3]sprec.Vec3
}

// Triangles calls yield for every face of the mesh.
func (m *Mesh) Triangles(yield func(Triangle) bool) {
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		tri := Triangle{
			Vertices: [3]sprec.Vec3{m.Positions[a], m.Positions[b], m.Positions[c]},
			Normals:  [3]sprec.Vec3{m.Normals[a], m.Normals[b], m.Normals[c]},
		}
		if !yield(tri) {
			return
		}
	}
}

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (min, max sprec.Vec3) {
	if len(m.Positions) == 0 {
		return sprec.ZeroVec3(), sprec.ZeroVec3()
	}
	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		min = sprec.NewVec3(sprec.Min(min.X, p.X), sprec.Min(min.Y, p.Y), sprec.Min(min.Z, p.Z))
		max = sprec.NewVec3(sprec.Max(max.X, p.X), sprec.Max(max.Y, p.Y), sprec.Max(max.Z, p.Z))
	}
	return min, max
}

type builder struct {
	mesh Mesh
}

func (b *builder) vertex(position, normal sprec.Vec3) uint32 {
	b.mesh.Positions = append(b.mesh.Positions, position)
	b.mesh.Normals = append(b.mesh.Normals, normal)
	return uint32(len(b.mesh.Positions) - 1)
}

// quad adds two counter-clockwise triangles a-b-c and a-c-d.
func (b *builder) quad(a, bb, c, d uint32) {
	b.mesh.Indices = append(b.mesh.Indices, a, bb, c, a, c, d)
}

// Box returns a cuboid with flat normals, four vertices per face.
func Box(width, height, depth float32) (*Mesh, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: box %vx%vx%v", ErrInvalidDimension, width, height, depth)
	}
	hw, hh, hd := width/2, height/2, depth/2

	faces := []struct {
		normal sprec.Vec3
		corner [4]sprec.Vec3
	}{
		{ // +X
			normal: sprec.BasisXVec3(),
			corner: [4]sprec.Vec3{{X: hw, Y: -hh, Z: hd}, {X: hw, Y: -hh, Z: -hd}, {X: hw, Y: hh, Z: -hd}, {X: hw, Y: hh, Z: hd}},
		},
		{ // -X
			normal: sprec.InverseVec3(sprec.BasisXVec3()),
			corner: [4]sprec.Vec3{{X: -hw, Y: -hh, Z: -hd}, {X: -hw, Y: -hh, Z: hd}, {X: -hw, Y: hh, Z: hd}, {X: -hw, Y: hh, Z: -hd}},
		},
		{ // +Y
			normal: sprec.BasisYVec3(),
			corner: [4]sprec.Vec3{{X: -hw, Y: hh, Z: hd}, {X: hw, Y: hh, Z: hd}, {X: hw, Y: hh, Z: -hd}, {X: -hw, Y: hh, Z: -hd}},
		},
		{ // -Y
			normal: sprec.InverseVec3(sprec.BasisYVec3()),
			corner: [4]sprec.Vec3{{X: -hw, Y: -hh, Z: -hd}, {X: hw, Y: -hh, Z: -hd}, {X: hw, Y: -hh, Z: hd}, {X: -hw, Y: -hh, Z: hd}},
		},
		{ // +Z
			normal: sprec.BasisZVec3(),
			corner: [4]sprec.Vec3{{X: -hw, Y: -hh, Z: hd}, {X: hw, Y: -hh, Z: hd}, {X: hw, Y: hh, Z: hd}, {X: -hw, Y: hh, Z: hd}},
		},
		{ // -Z
			normal: sprec.InverseVec3(sprec.BasisZVec3()),
			corner: [4]sprec.Vec3{{X: hw, Y: -hh, Z: -hd}, {X: -hw, Y: -hh, Z: -hd}, {X: -hw, Y: hh, Z: -hd}, {X: hw, Y: hh, Z: -hd}},
		},
	}

	var b builder
	for _, face := range faces {
		a := b.vertex(face.corner[0], face.normal)
		bb := b.vertex(face.corner[1], face.normal)
		c := b.vertex(face.corner[2], face.normal)
		d := b.vertex(face.corner[3], face.normal)
		b.quad(a, bb, c, d)
	}
	return &b.mesh, nil
}

// Plane returns a single quad in the XY plane facing +Z.
func Plane(width, height float32) (*Mesh, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: plane %vx%v", ErrInvalidDimension, width, height)
	}
	hw, hh := width/2, height/2
	normal := sprec.BasisZVec3()

	var b builder
	a := b.vertex(sprec.NewVec3(-hw, -hh, 0), normal)
	bb := b.vertex(sprec.NewVec3(hw, -hh, 0), normal)
	c := b.vertex(sprec.NewVec3(hw, hh, 0), normal)
	d := b.vertex(sprec.NewVec3(-hw, hh, 0), normal)
	b.quad(a, bb, c, d)
	return &b.mesh, nil
}

// Sphere returns a UV sphere with smooth normals.
func Sphere(radius float32, widthSegments, heightSegments int) (*Mesh, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: sphere radius %v", ErrInvalidDimension, radius)
	}
	if widthSegments < 3 || heightSegments < 2 {
		return nil, fmt.Errorf("%w: sphere segments %dx%d", ErrInvalidDimension, widthSegments, heightSegments)
	}

	var b builder
	rows := make([][]uint32, heightSegments+1)
	for y := 0; y <= heightSegments; y++ {
		v := float64(y) / float64(heightSegments)
		theta := v * math.Pi
		rows[y] = make([]uint32, widthSegments+1)
		for x := 0; x <= widthSegments; x++ {
			u := float64(x) / float64(widthSegments)
			phi := u * 2 * math.Pi
			normal := sprec.NewVec3(
				float32(-math.Cos(phi)*math.Sin(theta)),
				float32(math.Cos(theta)),
				float32(math.Sin(phi)*math.Sin(theta)),
			)
			rows[y][x] = b.vertex(sprec.Vec3Prod(normal, radius), normal)
		}
	}
	for y := 0; y < heightSegments; y++ {
		for x := 0; x < widthSegments; x++ {
			a := rows[y][x+1]
			bb := rows[y][x]
			c := rows[y+1][x]
			d := rows[y+1][x+1]
			if y != 0 {
				b.mesh.Indices = append(b.mesh.Indices, a, bb, d)
			}
			if y != heightSegments-1 {
				b.mesh.Indices = append(b.mesh.Indices, bb, c, d)
			}
		}
	}
	return &b.mesh, nil
}
