package scene

import (
	"errors"
	"fmt"

	"github.com/g3n/engine/math32"
)

// Geometry errors.
var (
	ErrEmptyGeometry     = errors.New("geometry has no vertices")
	ErrMismatchedNormals = errors.New("normal count does not match vertex count")
)

// Geometry holds indexed triangle or line geometry as flat float32 arrays,
// three components per vertex. Indices may be empty for non-indexed data.
type Geometry struct {
	Positions []float32
	Normals   []float32
	Indices   []uint32

	bounds      math32.Box3
	boundsValid bool
}

// NewGeometry creates a geometry from flat position data.
func NewGeometry(positions []float32) *Geometry {
	return &Geometry{Positions: positions}
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Validate checks the internal consistency of the geometry.
func (g *Geometry) Validate() error {
	if len(g.Positions) == 0 {
		return ErrEmptyGeometry
	}
	if len(g.Normals) != 0 && len(g.Normals) != len(g.Positions) {
		return ErrMismatchedNormals
	}
	n := uint32(g.VertexCount())
	for _, idx := range g.Indices {
		if idx >= n {
			return fmt.Errorf("index %d out of range (%d vertices)", idx, n)
		}
	}
	return nil
}

// BoundingBox returns the axis-aligned bounds of the positions, caching the
// result until the geometry is next transformed. Returns false for empty
// geometry.
func (g *Geometry) BoundingBox() (math32.Box3, bool) {
	if g.boundsValid {
		return g.bounds, true
	}
	if len(g.Positions) < 3 {
		return math32.Box3{}, false
	}
	min := math32.Vector3{X: g.Positions[0], Y: g.Positions[1], Z: g.Positions[2]}
	max := min
	box := math32.Box3{Min: min, Max: max}
	v := math32.Vector3{}
	for i := 3; i+2 < len(g.Positions); i += 3 {
		v.Set(g.Positions[i], g.Positions[i+1], g.Positions[i+2])
		box.ExpandByPoint(&v)
	}
	g.bounds = box
	g.boundsValid = true
	return box, true
}

// Size returns the bounding-box dimensions, or the zero vector for empty
// geometry.
func (g *Geometry) Size() math32.Vector3 {
	box, ok := g.BoundingBox()
	if !ok {
		return math32.Vector3{}
	}
	var size math32.Vector3
	box.Size(&size)
	return size
}

// ApplyMatrix4 bakes the transform into the vertex positions and, if normals
// are present, rotates them by the corresponding normal matrix. Invalidates
// cached bounds.
func (g *Geometry) ApplyMatrix4(m *math32.Matrix4) {
	v := math32.Vector3{}
	for i := 0; i+2 < len(g.Positions); i += 3 {
		v.Set(g.Positions[i], g.Positions[i+1], g.Positions[i+2])
		v.ApplyMatrix4(m)
		g.Positions[i] = v.X
		g.Positions[i+1] = v.Y
		g.Positions[i+2] = v.Z
	}
	if len(g.Normals) > 0 {
		var nm math32.Matrix3
		nm.GetNormalMatrix(m)
		for i := 0; i+2 < len(g.Normals); i += 3 {
			v.Set(g.Normals[i], g.Normals[i+1], g.Normals[i+2])
			v.ApplyMatrix3(&nm).Normalize()
			g.Normals[i] = v.X
			g.Normals[i+1] = v.Y
			g.Normals[i+2] = v.Z
		}
	}
	g.boundsValid = false
}

// Clone returns a deep copy of the geometry.
func (g *Geometry) Clone() *Geometry {
	c := &Geometry{
		Positions: append([]float32(nil), g.Positions...),
		Normals:   append([]float32(nil), g.Normals...),
		Indices:   append([]uint32(nil), g.Indices...),
	}
	return c
}

// MergeGeometries combines geometries already expressed in a common space
// into one indexed geometry. Inputs with no index buffer are treated as
// sequential. Normals are kept only when every input provides them.
func MergeGeometries(geoms []*Geometry) (*Geometry, error) {
	if len(geoms) == 0 {
		return nil, ErrEmptyGeometry
	}
	merged := &Geometry{}
	haveNormals := true
	for _, g := range geoms {
		if len(g.Normals) != len(g.Positions) {
			haveNormals = false
			break
		}
	}
	for _, g := range geoms {
		if err := g.Validate(); err != nil {
			return nil, err
		}
		base := uint32(merged.VertexCount())
		merged.Positions = append(merged.Positions, g.Positions...)
		if haveNormals {
			merged.Normals = append(merged.Normals, g.Normals...)
		}
		if len(g.Indices) > 0 {
			for _, idx := range g.Indices {
				merged.Indices = append(merged.Indices, base+idx)
			}
		} else {
			for i := 0; i < g.VertexCount(); i++ {
				merged.Indices = append(merged.Indices, base+uint32(i))
			}
		}
	}
	return merged, nil
}
