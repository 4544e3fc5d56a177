package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/Mayank77maruti/phoenix/pkg/scene"
)

// combinedScene is a small object graph in the display's save format: an
// event-data subtree with one named track and a geometries subtree with one
// detector mesh.
const combinedScene = `{
  "geometries": [
    {
      "uuid": "geo-1",
      "type": "BufferGeometry",
      "data": {
        "attributes": {
          "position": {"itemSize": 3, "array": [0, 0, 0, 2, 0, 0, 0, 1, 0]}
        },
        "index": {"itemSize": 1, "array": [0, 1, 2]}
      }
    }
  ],
  "materials": [
    {"uuid": "mat-1", "color": 16711680, "opacity": 0.5, "transparent": true},
    {"uuid": "mat-2", "color": 255, "side": 2}
  ],
  "object": {
    "type": "Scene",
    "name": "root",
    "children": [
      {
        "type": "Group",
        "name": "EventData",
        "children": [
          {
            "type": "Line",
            "name": "track-7",
            "geometry": "geo-1",
            "material": "mat-1"
          }
        ]
      },
      {
        "type": "Group",
        "name": "Geometries",
        "children": [
          {
            "type": "Mesh",
            "name": "barrel",
            "geometry": "geo-1",
            "material": "mat-2",
            "visible": false,
            "userData": {"run": "142"}
          }
        ]
      }
    ]
  }
}`

func TestDecodeScene(t *testing.T) {
	root, err := decodeScene([]byte(combinedScene))
	if err != nil {
		t.Fatalf("decodeScene: %v", err)
	}
	if root.Name != "root" || root.Kind != scene.KindGroup {
		t.Errorf("root = %q/%v, want group named root", root.Name, root.Kind)
	}

	track := root.Find("track-7")
	if track == nil {
		t.Fatal("track-7 not found")
	}
	if track.Kind != scene.KindLines {
		t.Errorf("track kind = %v, want lines", track.Kind)
	}
	if got := track.Geometry.VertexCount(); got != 3 {
		t.Errorf("track vertex count = %d, want 3", got)
	}
	if track.Material.Color.R != 1 || track.Material.Color.G != 0 {
		t.Errorf("track color = %v, want red from 0xFF0000", track.Material.Color)
	}
	if track.Material.Opacity != 0.5 {
		t.Errorf("track opacity = %v, want 0.5", track.Material.Opacity)
	}
	if got := track.UserData[scene.UserDataOpacity]; got != "0.5" {
		t.Errorf("opacity annotation = %q, want 0.5", got)
	}

	barrel := root.Find("barrel")
	if barrel == nil {
		t.Fatal("barrel not found")
	}
	if !barrel.Material.DoubleSided {
		t.Error("side 2 did not produce a double-sided material")
	}
	if got := barrel.UserData[scene.UserDataVisible]; got != "false" {
		t.Errorf("visibility annotation = %q, want false", got)
	}
	if got := barrel.UserData["run"]; got != "142" {
		t.Errorf("userData run = %q, want 142", got)
	}
}

func TestDecodeScene_SharedGeometryCloned(t *testing.T) {
	root, err := decodeScene([]byte(combinedScene))
	if err != nil {
		t.Fatalf("decodeScene: %v", err)
	}
	track := root.Find("track-7")
	barrel := root.Find("barrel")
	if track.Geometry == barrel.Geometry {
		t.Fatal("objects referencing the same geometry share one instance")
	}
}

func TestImportScene_Inline(t *testing.T) {
	im := testImporter()
	req := Request{JSON: []byte(combinedScene), Name: "run-142", MenuRoot: "Imported"}

	res, err := im.ImportScene(context.Background(), req)
	if err != nil {
		t.Fatalf("ImportScene: %v", err)
	}
	if res.Node.Name != "run-142" {
		t.Errorf("root name = %q, want run-142", res.Node.Name)
	}
	if res.MenuPath != "Imported" {
		t.Errorf("menu path = %q, want Imported", res.MenuPath)
	}
	// After normalization every mesh carries the configured clip planes.
	for _, m := range res.Node.Meshes() {
		if len(m.Material.ClipPlanes) != len(im.ClipPlanes()) {
			t.Errorf("mesh %q missing clip planes", m.Name)
		}
	}
}

func TestImportScene_DefaultName(t *testing.T) {
	im := testImporter()
	res, err := im.ImportScene(context.Background(), Request{JSON: []byte(combinedScene)})
	if err != nil {
		t.Fatalf("ImportScene: %v", err)
	}
	if res.Node.Name != "scene" {
		t.Errorf("root name = %q, want default \"scene\"", res.Node.Name)
	}
}

func TestImportCombined(t *testing.T) {
	im := testImporter()
	req := Request{Data: []byte(combinedScene), FileName: "run.json"}

	combined, err := im.ImportCombined(context.Background(), req)
	if err != nil {
		t.Fatalf("ImportCombined: %v", err)
	}
	if combined.EventData == nil {
		t.Fatal("event-data subtree not extracted")
	}
	if combined.Geometries == nil {
		t.Fatal("geometries subtree not extracted")
	}

	// Combined imports keep individual object names so physics objects stay
	// selectable, unlike single-unit imports.
	track := combined.EventData.Find("track-7")
	if track == nil {
		t.Fatal("track-7 renamed or missing after combined import")
	}
	if track.Material.Opacity != 0.5 {
		t.Errorf("track opacity = %v, want annotation applied", track.Material.Opacity)
	}
	if len(track.Material.ClipPlanes) != len(im.ClipPlanes()) {
		t.Error("combined subtree mesh missing clip planes")
	}
}

func TestImportCombined_MissingSubtreesSilent(t *testing.T) {
	im := testImporter()
	plain := `{"object": {"type": "Scene", "name": "root"}}`
	combined, err := im.ImportCombined(context.Background(), Request{Data: []byte(plain), FileName: "empty.json"})
	if err != nil {
		t.Fatalf("ImportCombined: %v", err)
	}
	if combined.EventData != nil || combined.Geometries != nil {
		t.Error("absent subtrees should be nil, not synthesized")
	}
}

func TestImportScenes_Archive(t *testing.T) {
	im := testImporter()
	data := buildZip(t, [][2]string{
		{"run-1.json", combinedScene},
		{"run-2.json", combinedScene},
	})

	results, err := im.Import(context.Background(), Request{Data: data, FileName: "runs.zip"})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Node.Name != "run-1" || results[1].Node.Name != "run-2" {
		t.Errorf("names = %q, %q; want run-1, run-2",
			results[0].Node.Name, results[1].Node.Name)
	}
}

func TestDecodeScene_NoObject(t *testing.T) {
	_, err := decodeScene([]byte(`{"geometries": []}`))
	if !errors.Is(err, ErrNoSceneObject) {
		t.Fatalf("err = %v, want ErrNoSceneObject", err)
	}
}

func TestDecodeMaterial_AbsentColorKeepsDefault(t *testing.T) {
	mat := decodeMaterial(jsonMaterial{UUID: "m"})
	if mat.Color != scene.DefaultColor {
		t.Errorf("color = %v, want default when absent", mat.Color)
	}
	if mat.Opacity != 1 {
		t.Errorf("opacity = %v, want 1", mat.Opacity)
	}
}
