package scene

import "testing"

func buildTree() *Node {
	root := NewGroup("detector")
	barrel := NewGroup("barrel")
	barrel.Add(
		NewMesh("inner", quad(), NewMaterial()),
		NewLines("tracks", NewGeometry([]float32{0, 0, 0, 1, 1, 1}), NewMaterial()),
	)
	root.Add(barrel, NewMesh("endcap", quad(), NewMaterial()))
	return root
}

func TestNode_Walk(t *testing.T) {
	root := buildTree()

	var order []string
	root.Walk(func(n *Node) bool {
		order = append(order, n.Name)
		return true
	})

	want := []string{"detector", "barrel", "inner", "tracks", "endcap"}
	if len(order) != len(want) {
		t.Fatalf("visited %d nodes, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("visit[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestNode_WalkPrune(t *testing.T) {
	root := buildTree()

	count := 0
	root.Walk(func(n *Node) bool {
		count++
		return n.Name != "barrel" // skip barrel's children
	})
	if count != 3 {
		t.Errorf("visited %d nodes with pruning, want 3", count)
	}
}

func TestNode_Find(t *testing.T) {
	root := buildTree()

	if n := root.Find("tracks"); n == nil || n.Kind != KindLines {
		t.Errorf("Find(tracks) = %v, want lines node", n)
	}
	if n := root.Find("missing"); n != nil {
		t.Errorf("Find(missing) = %v, want nil", n)
	}
}

func TestNode_Meshes(t *testing.T) {
	root := buildTree()

	meshes := root.Meshes()
	if len(meshes) != 3 {
		t.Fatalf("Meshes() returned %d nodes, want 3", len(meshes))
	}
	for _, m := range meshes {
		if m.Geometry == nil || m.Material == nil {
			t.Errorf("mesh %q missing geometry or material", m.Name)
		}
	}
}

func TestNode_BoundingBox(t *testing.T) {
	root := buildTree()

	box, ok := root.BoundingBox()
	if !ok {
		t.Fatal("expected bounds")
	}
	if box.Min.X != 0 || box.Max.X != 1 {
		t.Errorf("X bounds = %v..%v, want 0..1", box.Min.X, box.Max.X)
	}

	if _, ok := NewGroup("empty").BoundingBox(); ok {
		t.Error("empty group should have no bounds")
	}
}

func TestNode_SetUserData(t *testing.T) {
	n := NewGroup("g")
	n.SetUserData(UserDataOpacity, "0.5")
	if got := n.UserData[UserDataOpacity]; got != "0.5" {
		t.Errorf("opacity annotation = %q, want 0.5", got)
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindGroup, "Group"},
		{KindMesh, "Mesh"},
		{KindLines, "Lines"},
		{Kind(9), "Unknown(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
