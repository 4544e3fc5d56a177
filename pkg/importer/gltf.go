package importer

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/g3n/engine/math32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"golang.org/x/sync/errgroup"

	"github.com/Mayank77maruti/phoenix/pkg/scene"
)

const dracoExtension = "KHR_draco_mesh_compression"

// ImportGLTF imports GLTF or GLB scenes. A zip source is treated as a
// bundle: every .gltf/.glb entry is imported, with the remaining entries
// serving as the sibling-resource set for external buffers and textures.
// Multi-scene files yield one result per scene, in file order.
func (im *Importer) ImportGLTF(ctx context.Context, req Request) ([]Result, error) {
	data, name, err := im.resolveBytes(ctx, req)
	if err != nil {
		return nil, err
	}

	if strings.ToLower(path.Ext(name)) == archiveExt {
		return im.importGLTFArchive(ctx, req, name, data)
	}

	fsys := im.resourceFS(ctx, req)
	results, err := im.parseGLTF(data, fsys, req, logicalName(name))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return results, nil
}

// importGLTFArchive imports every GLTF entry of a zip concurrently,
// collecting results flat in entry order. One failed entry fails the whole
// archive.
func (im *Importer) importGLTFArchive(ctx context.Context, req Request, name string, data []byte) ([]Result, error) {
	entries, err := archiveEntries(data)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", name, err)
	}
	fsys := memFS{files: entries}

	var names []string
	for entry := range entries {
		switch strings.ToLower(path.Ext(entry)) {
		case ".gltf", ".glb":
			names = append(names, entry)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: archive %s has no GLTF entries", ErrUnsupportedFormat, name)
	}
	sort.Strings(names)

	perEntry := make([][]Result, len(names))
	g, _ := errgroup.WithContext(ctx)
	for i, entry := range names {
		i, entry := i, entry
		g.Go(func() error {
			results, err := im.parseGLTF(entries[entry], fsys, req, logicalName(entry))
			if err != nil {
				return fmt.Errorf("entry %s: %w", entry, err)
			}
			perEntry[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("archive %s: %w", name, err)
	}

	var flat []Result
	for _, results := range perEntry {
		flat = append(flat, results...)
	}
	return flat, nil
}

// resourceFS picks the filesystem used to resolve external GLTF resources:
// the request's base directory, the URL's parent, or nothing (data-URI and
// GLB-embedded buffers still work).
func (im *Importer) resourceFS(ctx context.Context, req Request) fs.FS {
	if req.BaseDir != "" {
		return os.DirFS(req.BaseDir)
	}
	if req.URL != "" {
		if base := path.Dir(req.URL); base != "." {
			return fetchFS{ctx: ctx, im: im, baseURL: base}
		}
	}
	return memFS{}
}

// meshInstance is one mesh primitive located during the scene walk, with the
// cumulative root-to-mesh transform and the depth it occurred at.
type meshInstance struct {
	geom     *scene.Geometry
	kind     scene.Kind
	material int // index into doc.Materials, -1 for none
	world    math32.Matrix4
	depth    int
}

// parseGLTF decodes a GLTF/GLB payload and produces one normalized result
// per scene. Per-material submeshes are regrouped: every mesh reachable in a
// scene is baked into world space and merged with the other members of its
// material group, so the scene root ends up with one mesh per distinct
// material. Merged meshes draw in order of -maxDepth, a documented
// approximation that favors deeper (typically smaller, foreground) geometry
// when blending transparency.
func (im *Importer) parseGLTF(data []byte, fsys fs.FS, req Request, logical string) ([]Result, error) {
	doc := gltf.NewDocument()
	if err := gltf.NewDecoderFS(bytes.NewReader(data), fsys).Decode(doc); err != nil {
		return nil, err
	}
	if slices.Contains(doc.ExtensionsRequired, dracoExtension) {
		if im.cfg.DracoDecoderPath == "" {
			return nil, ErrDracoUnsupported
		}
		return nil, fmt.Errorf("%w: decoder %s cannot decode in-process", ErrDracoUnsupported, im.cfg.DracoDecoderPath)
	}

	var results []Result
	for _, sc := range doc.Scenes {
		var instances []meshInstance
		var identity math32.Matrix4
		identity.Identity()
		for _, ni := range sc.Nodes {
			if err := collectMeshes(doc, int(ni), &identity, 1, &instances); err != nil {
				return nil, err
			}
		}

		raw := sc.Name
		if raw == "" {
			raw = displayName(req, logical)
		}
		display, menuPath := decodeSceneName(raw, req.MenuRoot)

		root := scene.NewGroup(display)
		merged, err := mergeInstances(doc, instances)
		if err != nil {
			return nil, err
		}
		root.Add(merged...)

		im.normalize(root, req, display)
		im.log.Infow("imported GLTF scene",
			"scene", display, "meshes", len(merged), "menu", menuPath)
		results = append(results, Result{Node: root, MenuPath: menuPath})
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: GLTF file has no scenes", ErrUnsupportedFormat)
	}
	return results, nil
}

// collectMeshes walks the node hierarchy depth-first, accumulating the
// root-to-node transform and recording every mesh primitive it passes.
func collectMeshes(doc *gltf.Document, index int, parent *math32.Matrix4, depth int, out *[]meshInstance) error {
	if index < 0 || index >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", index)
	}
	node := doc.Nodes[index]

	local := nodeMatrix(node)
	var world math32.Matrix4
	world.MultiplyMatrices(parent, &local)

	if node.Mesh != nil {
		mi := int(*node.Mesh)
		if mi < 0 || mi >= len(doc.Meshes) {
			return fmt.Errorf("mesh index %d out of range", mi)
		}
		for _, prim := range doc.Meshes[mi].Primitives {
			inst, err := primitiveInstance(doc, prim)
			if err != nil {
				return fmt.Errorf("mesh %s: %w", doc.Meshes[mi].Name, err)
			}
			if inst == nil {
				continue
			}
			inst.world = world
			inst.depth = depth
			*out = append(*out, *inst)
		}
	}

	for _, child := range node.Children {
		if err := collectMeshes(doc, int(child), &world, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}

// primitiveInstance reads one primitive's geometry through the accessor
// layer. Unsupported primitive modes are skipped.
func primitiveInstance(doc *gltf.Document, prim *gltf.Primitive) (*meshInstance, error) {
	kind := scene.KindMesh
	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		kind = scene.KindMesh
	case gltf.PrimitiveLines:
		kind = scene.KindLines
	default:
		return nil, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[int(posIdx)], nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	geom := &scene.Geometry{}
	for _, p := range positions {
		geom.Positions = append(geom.Positions, p[0], p[1], p[2])
	}

	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[int(normIdx)], nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		for _, n := range normals {
			geom.Normals = append(geom.Normals, n[0], n[1], n[2])
		}
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[int(*prim.Indices)], nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
		geom.Indices = indices
	}

	material := -1
	if prim.Material != nil {
		material = int(*prim.Material)
	}
	return &meshInstance{geom: geom, kind: kind, material: material}, nil
}

// materialGroup accumulates the members of one material identity during
// regrouping.
type materialGroup struct {
	kind     scene.Kind
	material int
	geoms    []*scene.Geometry
	maxDepth int
}

// mergeInstances bakes each instance's accumulated transform into its
// vertices, groups instances by material identity (and primitive kind), and
// emits one merged node per group with renderOrder = -(max source depth).
func mergeInstances(doc *gltf.Document, instances []meshInstance) ([]*scene.Node, error) {
	groups := make(map[[2]int]*materialGroup)
	var order [][2]int
	for i := range instances {
		inst := &instances[i]
		inst.geom.ApplyMatrix4(&inst.world)
		key := [2]int{int(inst.kind), inst.material}
		g, ok := groups[key]
		if !ok {
			g = &materialGroup{kind: inst.kind, material: inst.material}
			groups[key] = g
			order = append(order, key)
		}
		g.geoms = append(g.geoms, inst.geom)
		if inst.depth > g.maxDepth {
			g.maxDepth = inst.depth
		}
	}

	var nodes []*scene.Node
	for _, key := range order {
		g := groups[key]
		merged, err := scene.MergeGeometries(g.geoms)
		if err != nil {
			return nil, fmt.Errorf("merging material group: %w", err)
		}
		mat := gltfMaterial(doc, g.material)
		var node *scene.Node
		if g.kind == scene.KindLines {
			node = scene.NewLines("", merged, mat)
		} else {
			node = scene.NewMesh("", merged, mat)
		}
		node.RenderOrder = -g.maxDepth
		if mat.Opacity < 1 {
			node.SetUserData(scene.UserDataOpacity, fmt.Sprintf("%g", mat.Opacity))
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// gltfMaterial converts a document material to the intermediate material the
// normalizer consumes. Index -1 yields the default.
func gltfMaterial(doc *gltf.Document, index int) *scene.Material {
	mat := scene.NewMaterial()
	if index < 0 || index >= len(doc.Materials) {
		return mat
	}
	src := doc.Materials[index]
	mat.DoubleSided = src.DoubleSided
	if pbr := src.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		c := *pbr.BaseColorFactor
		mat.Color = math32.Color{R: float32(c[0]), G: float32(c[1]), B: float32(c[2])}
		if src.AlphaMode == gltf.AlphaBlend && float32(c[3]) < 1 {
			mat.Opacity = float32(c[3])
		}
	}
	return mat
}

// nodeMatrix returns a node's local transform, preferring the explicit
// matrix over the TRS triplet when one is present.
func nodeMatrix(node *gltf.Node) math32.Matrix4 {
	var m math32.Matrix4
	identity := true
	arr := make([]float32, 16)
	for i, v := range node.Matrix {
		arr[i] = float32(v)
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if arr[i] != want {
			identity = false
		}
	}
	if !identity {
		m.FromArray(arr, 0)
		return m
	}
	t := math32.NewVector3(float32(node.Translation[0]), float32(node.Translation[1]), float32(node.Translation[2]))
	r := math32.NewQuaternion(float32(node.Rotation[0]), float32(node.Rotation[1]), float32(node.Rotation[2]), float32(node.Rotation[3]))
	s := math32.NewVector3(float32(node.Scale[0]), float32(node.Scale[1]), float32(node.Scale[2]))
	m.Compose(t, r, s)
	return m
}
