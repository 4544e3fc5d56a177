package importer

import (
	"fmt"
	"strconv"

	"github.com/g3n/engine/math32"

	"github.com/Mayank77maruti/phoenix/pkg/scene"
)

// normalize makes an imported tree uniform before it reaches the renderer:
// the root takes the display name, which is propagated to every descendant
// mesh so a multi-mesh import selects and highlights as one unit; each mesh
// gets a size annotation and a fresh clipped material.
func (im *Importer) normalize(root *scene.Node, req Request, name string) {
	root.Name = name
	if req.Scale != 0 && req.Scale != 1 {
		var m math32.Matrix4
		m.MakeScale(req.Scale, req.Scale, req.Scale)
		root.Transform.Multiply(&m)
	}
	root.Walk(func(n *scene.Node) bool {
		if n.Kind != scene.KindGroup {
			n.Name = name
		}
		return true
	})
	im.applyTreatment(root, req)
}

// applyTreatment runs the uniform material and size pass over a subtree
// without renaming anything. Used directly for combined scenes, where meshes
// keep their individual names.
func (im *Importer) applyTreatment(root *scene.Node, req Request) {
	root.Walk(func(n *scene.Node) bool {
		if n.Kind == scene.KindGroup {
			return true
		}
		im.annotateSize(n)
		im.replaceMaterial(n, req.DoubleSided)
		return true
	})
}

// annotateSize recomputes the mesh's bounding-box dimensions and stores them
// as a string-encoded vector annotation for UI display.
func (im *Importer) annotateSize(n *scene.Node) {
	if n.Geometry == nil {
		return
	}
	size := n.Geometry.Size()
	n.SetUserData(scene.UserDataSize, encodeSize(size))
}

// encodeSize formats bounding-box dimensions the way the UI expects them.
func encodeSize(v math32.Vector3) string {
	return fmt.Sprintf("%.2f x %.2f x %.2f", v.X, v.Y, v.Z)
}

// replaceMaterial disposes the node's current material and substitutes the
// pipeline's uniform Phong-like material: the original base color when there
// is one, matte response, transparency on with the node's opacity annotation
// applied, and the configured clip planes attached by reference with
// intersection clipping enabled and shadow clipping off. Sidedness comes
// from the caller override when present, else from the original material.
func (im *Importer) replaceMaterial(n *scene.Node, doubleSided *bool) {
	old := n.Material

	mat := scene.NewMaterial()
	if old != nil {
		mat.Color = old.Color
		mat.DoubleSided = old.DoubleSided
	}
	if doubleSided != nil {
		mat.DoubleSided = *doubleSided
	}
	mat.Shininess = 0
	mat.Wireframe = false
	mat.Transparent = true
	mat.Opacity = nodeOpacity(n)
	mat.ClipPlanes = im.cfg.ClipPlanes
	mat.ClipIntersection = true
	mat.ClipShadows = false

	if old != nil {
		old.Dispose()
	}
	n.Material = mat
}

// nodeOpacity reads the per-object opacity annotation, defaulting to fully
// opaque for absent or unparseable values.
func nodeOpacity(n *scene.Node) float32 {
	raw, ok := n.UserData[scene.UserDataOpacity]
	if !ok {
		return 1
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil || v < 0 || v > 1 {
		return 1
	}
	return float32(v)
}
