// Package scene provides the node tree produced by the geometry importers.
// Nodes form a closed set of kinds (group, mesh, line segments) so that tree
// walks dispatch on a tag instead of a runtime type test.
package scene

import (
	"fmt"

	"github.com/g3n/engine/math32"
)

// Kind identifies what a node is.
type Kind int

const (
	KindGroup Kind = iota // container only, no geometry
	KindMesh              // triangle geometry
	KindLines             // line-segment geometry
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "Group"
	case KindMesh:
		return "Mesh"
	case KindLines:
		return "Lines"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Annotation keys stored in Node.UserData.
const (
	UserDataSize    = "size"    // string-encoded bounding-box dimensions
	UserDataOpacity = "opacity" // per-object opacity override, "0".."1"
	UserDataVisible = "visible" // "false" hides the subtree in the UI
)

// Node is one element of an imported scene tree. Group nodes carry only a
// name, transform and children; mesh and lines nodes additionally carry
// geometry and a material. The importer is the single owner of a tree while
// it normalizes it; afterwards the tree is handed to the renderer and must
// not be mutated concurrently.
type Node struct {
	Kind      Kind
	Name      string
	Transform math32.Matrix4 // local transform, identity unless set

	Children []*Node

	// Mesh / lines only.
	Geometry *Geometry
	Material *Material

	// RenderOrder controls draw sequence among transparent surfaces.
	// Lower values draw first.
	RenderOrder int

	// UserData holds string annotations consumed by the UI layer.
	UserData map[string]string
}

// NewGroup creates an empty group node.
func NewGroup(name string) *Node {
	n := &Node{Kind: KindGroup, Name: name}
	n.Transform.Identity()
	return n
}

// NewMesh creates a mesh node with the given geometry and material.
func NewMesh(name string, geom *Geometry, mat *Material) *Node {
	n := &Node{Kind: KindMesh, Name: name, Geometry: geom, Material: mat}
	n.Transform.Identity()
	return n
}

// NewLines creates a line-segments node with the given geometry and material.
func NewLines(name string, geom *Geometry, mat *Material) *Node {
	n := &Node{Kind: KindLines, Name: name, Geometry: geom, Material: mat}
	n.Transform.Identity()
	return n
}

// Add appends children to the node and returns the node.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// SetUserData stores an annotation, allocating the map on first use.
func (n *Node) SetUserData(key, value string) {
	if n.UserData == nil {
		n.UserData = make(map[string]string)
	}
	n.UserData[key] = value
}

// Walk calls fn for every node in the subtree in depth-first pre-order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the first node in the subtree with the given name, or nil.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// Meshes returns all mesh and lines nodes reachable from the node.
func (n *Node) Meshes() []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Kind == KindMesh || c.Kind == KindLines {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Count returns the number of nodes in the subtree, the node included.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node) bool {
		total++
		return true
	})
	return total
}

// BoundingBox returns the union of all descendant geometry bounds, with each
// geometry's points taken as-is (local transforms are assumed baked, which
// holds for every tree the importers produce). Returns false if the subtree
// has no geometry.
func (n *Node) BoundingBox() (math32.Box3, bool) {
	var box math32.Box3
	have := false
	n.Walk(func(c *Node) bool {
		if c.Geometry == nil {
			return true
		}
		gb, ok := c.Geometry.BoundingBox()
		if !ok {
			return true
		}
		if !have {
			box = gb
			have = true
		} else {
			box.Union(&gb)
		}
		return true
	})
	return box, have
}
