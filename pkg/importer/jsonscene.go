package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/g3n/engine/math32"

	"github.com/Mayank77maruti/phoenix/pkg/scene"
)

// JSON scene errors.
var (
	ErrNoSceneObject = errors.New("JSON scene has no root object")
)

// jsonSceneFile is the subset of the three.js object-graph format the
// display emits and consumes: buffer geometries, flat materials and an
// object hierarchy.
type jsonSceneFile struct {
	Geometries []jsonGeometry `json:"geometries"`
	Materials  []jsonMaterial `json:"materials"`
	Object     *jsonObject    `json:"object"`
}

type jsonGeometry struct {
	UUID string `json:"uuid"`
	Type string `json:"type"`
	Data struct {
		Attributes map[string]jsonAttribute `json:"attributes"`
		Index      *jsonAttribute           `json:"index"`
	} `json:"data"`
}

type jsonAttribute struct {
	ItemSize int       `json:"itemSize"`
	Array    []float64 `json:"array"`
}

type jsonMaterial struct {
	UUID        string   `json:"uuid"`
	Color       *uint32  `json:"color"`
	Opacity     *float64 `json:"opacity"`
	Transparent bool     `json:"transparent"`
	Side        int      `json:"side"` // 2 = double-sided, three.js convention
}

type jsonObject struct {
	Type     string                     `json:"type"`
	Name     string                     `json:"name"`
	Matrix   []float32                  `json:"matrix"`
	Children []jsonObject               `json:"children"`
	Geometry string                     `json:"geometry"`
	Material json.RawMessage            `json:"material"`
	UserData map[string]json.RawMessage `json:"userData"`
	Visible  *bool                      `json:"visible"`
}

// ImportScene imports a JSON scene graph as one named unit. The source may
// be a URL (fetched asynchronously), an in-memory file, or an inline JSON
// value; all converge on the same normalization.
func (im *Importer) ImportScene(ctx context.Context, req Request) (*Result, error) {
	raw, logical, err := im.resolveJSON(ctx, req)
	if err != nil {
		return nil, err
	}
	return im.sceneResult(logical, raw, req)
}

// ImportScenes imports JSON scenes from the request's source, parsing every
// entry of a zip source as its own scene file.
func (im *Importer) ImportScenes(ctx context.Context, req Request) ([]Result, error) {
	return im.resolveSource(ctx, req, func(logical string, data []byte) ([]Result, error) {
		res, err := im.sceneResult(logical, data, req)
		if err != nil {
			return nil, err
		}
		return []Result{*res}, nil
	})
}

// sceneResult decodes and normalizes one JSON scene value.
func (im *Importer) sceneResult(logical string, raw []byte, req Request) (*Result, error) {
	root, err := decodeScene(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON scene %s: %w", logical, err)
	}
	name := displayName(req, logical)
	im.normalize(root, req, name)
	im.log.Infow("imported JSON scene", "name", name, "nodes", root.Count())
	return &Result{Node: root, MenuPath: req.MenuRoot}, nil
}

// Combined holds the two optional subtrees of a combined scene file. A
// subtree absent from the file is nil, not an error.
type Combined struct {
	EventData  *scene.Node
	Geometries *scene.Node
}

// ImportCombined imports a combined scene file and extracts the event-data
// and geometries subtrees by their configured root names. Meshes keep their
// own names so individual physics objects stay selectable.
func (im *Importer) ImportCombined(ctx context.Context, req Request) (*Combined, error) {
	raw, logical, err := im.resolveJSON(ctx, req)
	if err != nil {
		return nil, err
	}
	root, err := decodeScene(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing combined scene %s: %w", logical, err)
	}

	out := &Combined{}
	if n := root.Find(im.cfg.EventDataRoot); n != nil {
		im.applyTreatment(n, req)
		out.EventData = n
	}
	if n := root.Find(im.cfg.GeometriesRoot); n != nil {
		im.applyTreatment(n, req)
		out.Geometries = n
	}
	im.log.Infow("imported combined scene", "name", logical,
		"eventData", out.EventData != nil, "geometries", out.Geometries != nil)
	return out, nil
}

// resolveJSON obtains the raw JSON value for a request: inline value,
// in-memory bytes, or a fetched URL.
func (im *Importer) resolveJSON(ctx context.Context, req Request) ([]byte, string, error) {
	if len(req.JSON) > 0 {
		name := req.Name
		if name == "" {
			name = "scene"
		}
		return req.JSON, name, nil
	}
	data, name, err := im.resolveBytes(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return data, logicalName(name), nil
}

// decodeScene turns the JSON object graph into a node tree. Geometries are
// cloned per referencing object since the file may share them.
func decodeScene(raw []byte) (*scene.Node, error) {
	var file jsonSceneFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	if file.Object == nil {
		return nil, ErrNoSceneObject
	}

	geoms := make(map[string]*scene.Geometry, len(file.Geometries))
	for _, jg := range file.Geometries {
		geoms[jg.UUID] = decodeGeometry(jg)
	}
	mats := make(map[string]*scene.Material, len(file.Materials))
	for _, jm := range file.Materials {
		mats[jm.UUID] = decodeMaterial(jm)
	}

	return decodeObject(file.Object, geoms, mats), nil
}

// decodeObject converts one object node and its children. Unknown object
// types become plain groups.
func decodeObject(obj *jsonObject, geoms map[string]*scene.Geometry, mats map[string]*scene.Material) *scene.Node {
	var node *scene.Node
	switch obj.Type {
	case "Mesh":
		node = scene.NewMesh(obj.Name, lookupGeometry(obj, geoms), lookupMaterial(obj, mats))
	case "Line", "LineSegments":
		node = scene.NewLines(obj.Name, lookupGeometry(obj, geoms), lookupMaterial(obj, mats))
	default:
		node = scene.NewGroup(obj.Name)
	}
	if node.Material != nil && node.Material.Opacity < 1 {
		node.SetUserData(scene.UserDataOpacity, fmt.Sprintf("%g", node.Material.Opacity))
	}

	if len(obj.Matrix) == 16 {
		node.Transform.FromArray(obj.Matrix, 0)
	}
	if obj.Visible != nil && !*obj.Visible {
		node.SetUserData(scene.UserDataVisible, "false")
	}
	for key, val := range obj.UserData {
		var s string
		if err := json.Unmarshal(val, &s); err != nil {
			s = string(val)
		}
		node.SetUserData(key, s)
	}

	for i := range obj.Children {
		node.Add(decodeObject(&obj.Children[i], geoms, mats))
	}
	return node
}

func lookupGeometry(obj *jsonObject, geoms map[string]*scene.Geometry) *scene.Geometry {
	if g, ok := geoms[obj.Geometry]; ok {
		return g.Clone()
	}
	return &scene.Geometry{}
}

// lookupMaterial resolves an object's material reference. Multi-material
// arrays use their first entry; the normalizer replaces them all anyway.
func lookupMaterial(obj *jsonObject, mats map[string]*scene.Material) *scene.Material {
	var uuid string
	if err := json.Unmarshal(obj.Material, &uuid); err != nil {
		var uuids []string
		if err := json.Unmarshal(obj.Material, &uuids); err == nil && len(uuids) > 0 {
			uuid = uuids[0]
		}
	}
	if m, ok := mats[uuid]; ok {
		return m.Clone()
	}
	return scene.NewMaterial()
}

// decodeGeometry reads position/normal attributes and the optional index.
func decodeGeometry(jg jsonGeometry) *scene.Geometry {
	geom := &scene.Geometry{}
	if pos, ok := jg.Data.Attributes["position"]; ok {
		geom.Positions = toFloat32(pos.Array)
	}
	if norm, ok := jg.Data.Attributes["normal"]; ok {
		geom.Normals = toFloat32(norm.Array)
	}
	if jg.Data.Index != nil {
		geom.Indices = make([]uint32, len(jg.Data.Index.Array))
		for i, v := range jg.Data.Index.Array {
			geom.Indices[i] = uint32(v)
		}
	}
	return geom
}

func decodeMaterial(jm jsonMaterial) *scene.Material {
	mat := scene.NewMaterial()
	if jm.Color != nil {
		c := *jm.Color
		mat.Color = math32.Color{
			R: float32((c>>16)&0xff) / 255,
			G: float32((c>>8)&0xff) / 255,
			B: float32(c&0xff) / 255,
		}
	}
	if jm.Opacity != nil && *jm.Opacity < 1 {
		mat.Opacity = float32(*jm.Opacity)
		mat.Transparent = jm.Transparent
	}
	mat.DoubleSided = jm.Side == 2
	return mat
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
