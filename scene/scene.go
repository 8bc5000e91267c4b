// Package scene holds the in-memory scene graph assembled from a layout.
package scene

import (
	"errors"
	"fmt"
	"image/color"
	"maps"
	"slices"

	"github.com/mokiat/gomath/dprec"

	"github.com/nobonobo/lowpoly-church/geometry"
	"github.com/nobonobo/lowpoly-church/schema"
)

// ErrIncompleteMesh is returned when a mesh node without geometry or
// material is added to the graph.
var ErrIncompleteMesh = errors.New("mesh needs geometry and material")

type Kind int

const (
	KindGroup Kind = iota
	KindMesh
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Geometry is a mesh shared by every node built from the same shape.
type Geometry struct {
	Key   string
	Shape schema.Shape
	Mesh  *geometry.Mesh
}

type Material struct {
	Name      string
	Kind      schema.MaterialKind
	Color     color.RGBA
	Emissive  color.RGBA
	Roughness float64
	Metalness float64
}

type Node struct {
	Name          string
	Kind          Kind
	Transform     Transform
	Geometry      *Geometry
	Material      *Material
	CastShadow    bool
	ReceiveShadow bool
	Visible       bool

	parent   *Node
	children []*Node
}

func NewGroup(name string) *Node {
	return &Node{
		Name:      name,
		Kind:      KindGroup,
		Transform: IdentityTransform(),
		Visible:   true,
	}
}

func NewMesh(name string, geo *Geometry, material *Material) *Node {
	return &Node{
		Name:      name,
		Kind:      KindMesh,
		Transform: IdentityTransform(),
		Geometry:  geo,
		Material:  material,
		Visible:   true,
	}
}

// Add attaches children to the node. Mesh nodes must carry both a geometry
// and a material; nothing is attached if any child is incomplete.
func (n *Node) Add(children ...*Node) error {
	for _, child := range children {
		if child.Kind == KindMesh && (child.Geometry == nil || child.Geometry.Mesh == nil || child.Material == nil) {
			return fmt.Errorf("%w: %q", ErrIncompleteMesh, child.Name)
		}
	}
	for _, child := range children {
		if child.parent != nil {
			child.parent.remove(child)
		}
		child.parent = n
		n.children = append(n.children, child)
	}
	return nil
}

func (n *Node) remove(child *Node) {
	n.children = slices.DeleteFunc(n.children, func(c *Node) bool {
		return c == child
	})
	child.parent = nil
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Children() []*Node {
	return n.children
}

// World returns the node's world matrix.
func (n *Node) World() dprec.Mat4 {
	matrix := n.Transform.Matrix()
	for p := n.parent; p != nil; p = p.parent {
		matrix = dprec.Mat4Prod(p.Transform.Matrix(), matrix)
	}
	return matrix
}

type AmbientLight struct {
	Color     color.RGBA
	Intensity float64
}

type DirectionalLight struct {
	Color      color.RGBA
	Intensity  float64
	Position   dprec.Vec3
	Target     dprec.Vec3
	CastShadow bool
}

// Direction returns the unit vector pointing from the light to its target.
func (l DirectionalLight) Direction() dprec.Vec3 {
	dir := dprec.Vec3Diff(l.Target, l.Position)
	if dir.Length() == 0 {
		return dprec.InverseVec3(dprec.BasisYVec3())
	}
	return dprec.UnitVec3(dir)
}

// Fog fades geometry linearly into Color between Near and Far.
type Fog struct {
	Color color.RGBA
	Near  float64
	Far   float64
}

// Factor returns how much of the fog color applies at the given distance.
func (f *Fog) Factor(distance float64) float64 {
	if f == nil {
		return 0
	}
	switch {
	case distance <= f.Near:
		return 0
	case distance >= f.Far:
		return 1
	default:
		return (distance - f.Near) / (f.Far - f.Near)
	}
}

type Scene struct {
	Name        string
	Root        *Node
	Background  color.RGBA
	Fog         *Fog
	Ambient     AmbientLight
	Directional DirectionalLight

	nodes      map[string]*Node
	geometries map[string]*Geometry
	materials  map[string]*Material
}

func New(name string) *Scene {
	return &Scene{
		Name:       name,
		Root:       NewGroup(name),
		Background: color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		nodes:      make(map[string]*Node),
		geometries: make(map[string]*Geometry),
		materials:  make(map[string]*Material),
	}
}

// Attach adds node below the named parent, or below the root when parent
// is empty.
func (s *Scene) Attach(parent string, node *Node) error {
	if _, ok := s.nodes[node.Name]; ok {
		return fmt.Errorf("node %q already exists", node.Name)
	}
	target := s.Root
	if parent != "" {
		target = s.nodes[parent]
		if target == nil {
			return fmt.Errorf("parent %q of %q not found", parent, node.Name)
		}
	}
	if err := target.Add(node); err != nil {
		return err
	}
	s.nodes[node.Name] = node
	if node.Geometry != nil {
		s.geometries[node.Geometry.Key] = node.Geometry
	}
	if node.Material != nil {
		s.materials[node.Material.Name] = node.Material
	}
	return nil
}

// Find returns the named node or nil.
func (s *Scene) Find(name string) *Node {
	return s.nodes[name]
}

// Len returns the number of nodes below the root.
func (s *Scene) Len() int {
	return len(s.nodes)
}

// Geometries returns the shared geometries ordered by key.
func (s *Scene) Geometries() []*Geometry {
	return sortedValues(s.geometries)
}

// Materials returns the shared materials ordered by name.
func (s *Scene) Materials() []*Material {
	return sortedValues(s.materials)
}

// Walk visits every node depth first with its world matrix. Returning
// false from fn skips the node's subtree.
func (s *Scene) Walk(fn func(node *Node, world dprec.Mat4) bool) {
	var visit func(node *Node, parent dprec.Mat4)
	visit = func(node *Node, parent dprec.Mat4) {
		world := dprec.Mat4Prod(parent, node.Transform.Matrix())
		if !fn(node, world) {
			return
		}
		for _, child := range node.children {
			visit(child, world)
		}
	}
	for _, child := range s.Root.children {
		visit(child, s.Root.Transform.Matrix())
	}
}

// Instance is a visible mesh together with its world matrix.
type Instance struct {
	Node  *Node
	World dprec.Mat4
}

// Instances returns every visible mesh of the scene.
func (s *Scene) Instances() []Instance {
	var result []Instance
	s.Walk(func(node *Node, world dprec.Mat4) bool {
		if !node.Visible {
			return false
		}
		if node.Kind == KindMesh {
			result = append(result, Instance{Node: node, World: world})
		}
		return true
	})
	return result
}

func sortedValues[T any](m map[string]*T) []*T {
	keys := slices.Sorted(maps.Keys(m))
	result := make([]*T, len(keys))
	for i, key := range keys {
		result[i] = m[key]
	}
	return result
}
