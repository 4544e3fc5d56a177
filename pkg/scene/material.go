package scene

import "github.com/g3n/engine/math32"

// DefaultColor is the fallback base color applied when an imported material
// carries no color of its own.
var DefaultColor = math32.Color{R: 0.8, G: 0.8, B: 0.8}

// Material is the uniform Phong-like material the normalizer assigns to every
// imported mesh. One instance may be shared by many nodes; the clip-plane
// slice is always shared by reference with the pipeline configuration.
type Material struct {
	Color       math32.Color
	Shininess   float32 // always 0 after normalization (matte response)
	DoubleSided bool
	Wireframe   bool
	FlatShading bool

	Transparent bool
	Opacity     float32

	// ClipPlanes is the caller-supplied clipping set. Never modified here.
	ClipPlanes       []*math32.Plane
	ClipIntersection bool
	ClipShadows      bool

	disposed bool
}

// NewMaterial returns an opaque single-sided material with the default color.
func NewMaterial() *Material {
	return &Material{
		Color:   DefaultColor,
		Opacity: 1,
	}
}

// Clone returns a copy of the material sharing the same clip-plane slice.
func (m *Material) Clone() *Material {
	c := *m
	c.disposed = false
	return &c
}

// Dispose releases the material. GPU-side resources are the renderer's
// concern; here the material is only marked so reuse can be detected.
func (m *Material) Dispose() {
	m.disposed = true
}

// Disposed reports whether Dispose has been called.
func (m *Material) Disposed() bool {
	return m.disposed
}
