package importer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/g3n/engine/loader/obj"

	"github.com/Mayank77maruti/phoenix/pkg/scene"
)

// ImportOBJ imports OBJ geometry from the request's source. A zip source has
// every entry parsed as OBJ, producing one result per entry.
func (im *Importer) ImportOBJ(ctx context.Context, req Request) ([]Result, error) {
	return im.resolveSource(ctx, req, func(logical string, data []byte) ([]Result, error) {
		name := displayName(req, logical)
		root, err := im.parseOBJ(data, name)
		if err != nil {
			return nil, fmt.Errorf("parsing OBJ %s: %w", logical, err)
		}
		im.normalize(root, req, name)
		im.log.Infow("imported OBJ", "name", name, "meshes", len(root.Meshes()))
		return []Result{{Node: root, MenuPath: req.MenuRoot}}, nil
	})
}

// parseOBJ delegates OBJ grammar to the external decoder and reshapes its
// output into the tagged node tree: one mesh per object/material pair, faces
// triangulated as fans.
func (im *Importer) parseOBJ(data []byte, name string) (*scene.Node, error) {
	dec, err := obj.DecodeReader(bytes.NewReader(data), nil)
	if err != nil {
		return nil, err
	}

	root := scene.NewGroup(name)
	for i := range dec.Objects {
		object := &dec.Objects[i]
		for matName, faces := range facesByMaterial(object) {
			geom := buildOBJGeometry(dec, faces)
			if geom.VertexCount() == 0 {
				continue
			}
			mat := scene.NewMaterial()
			if src, ok := dec.Materials[matName]; ok && !isZeroColor(src) {
				mat.Color = src.Diffuse
				if src.Opacity > 0 && src.Opacity < 1 {
					mat.Opacity = src.Opacity
				}
			}
			mesh := scene.NewMesh(object.Name, geom, mat)
			if mat.Opacity < 1 {
				mesh.SetUserData(scene.UserDataOpacity, fmt.Sprintf("%g", mat.Opacity))
			}
			root.Add(mesh)
		}
	}
	if len(root.Children) == 0 {
		return nil, fmt.Errorf("%w: OBJ contains no faces", ErrUnsupportedFormat)
	}
	return root, nil
}

// facesByMaterial groups an object's faces by their material name so each
// distinct material yields one mesh.
func facesByMaterial(object *obj.Object) map[string][]obj.Face {
	groups := make(map[string][]obj.Face)
	for _, face := range object.Faces {
		groups[face.Material] = append(groups[face.Material], face)
	}
	return groups
}

// buildOBJGeometry expands the decoder's shared vertex pool into flat
// per-corner geometry, triangulating polygon faces as fans.
func buildOBJGeometry(dec *obj.Decoder, faces []obj.Face) *scene.Geometry {
	geom := &scene.Geometry{}
	for _, face := range faces {
		if len(face.Vertices) < 3 {
			continue
		}
		hasNormals := len(face.Normals) == len(face.Vertices)
		for i := 1; i < len(face.Vertices)-1; i++ {
			corners := [3]int{0, i, i + 1}
			for _, c := range corners {
				vi := face.Vertices[c]
				if vi < 0 || 3*vi+2 >= len(dec.Vertices) {
					continue
				}
				geom.Positions = append(geom.Positions,
					dec.Vertices[3*vi], dec.Vertices[3*vi+1], dec.Vertices[3*vi+2])
				if hasNormals {
					ni := face.Normals[c]
					if ni >= 0 && 3*ni+2 < len(dec.Normals) {
						geom.Normals = append(geom.Normals,
							dec.Normals[3*ni], dec.Normals[3*ni+1], dec.Normals[3*ni+2])
					}
				}
			}
		}
	}
	if len(geom.Normals) != len(geom.Positions) {
		geom.Normals = nil
	}
	return geom
}

// isZeroColor reports whether an OBJ material carries no usable diffuse
// color. Black zero values mean the MTL was absent or colorless; the
// normalizer substitutes the fallback color instead.
func isZeroColor(m *obj.Material) bool {
	return m.Diffuse.R == 0 && m.Diffuse.G == 0 && m.Diffuse.B == 0
}
