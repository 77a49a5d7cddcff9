package libscn

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testGraph() *Graph {
	mat := &MaterialDesc{Name: "stone"}
	lamp := &Node{
		Name:      "lamp",
		Transform: mgl32.Translate3D(0, 2, 0),
		Light:     &Light{Kind: PointLightKind, Color: mgl32.Vec3{1, 0.5, 0}, Intensity: 4, Range: 10},
	}
	sun := &Node{
		Name:      "sun",
		Transform: mgl32.HomogRotate3DX(mgl32.DegToRad(-90)),
		Light:     &Light{Kind: DirectionalLightKind, Color: mgl32.Vec3{1, 1, 1}, Intensity: 2},
	}
	house := &Node{
		Name:       "house",
		Transform:  mgl32.Translate3D(5, 0, 0),
		Primitives: []Primitive{{Mesh: Rect(1, 1), Material: mat}},
		Children:   []*Node{lamp},
	}
	cam := &Node{Name: "cam", Transform: mgl32.Translate3D(0, 0, 8), Camera: true}
	return &Graph{Roots: []*Node{house, sun, cam}}
}

func TestTraverseCollectsWorldSpace(t *testing.T) {
	agg := Traverse(testGraph())

	if len(agg.Objects) != 1 || agg.Objects[0].Name != "house" {
		t.Fatalf("expected the house object, got %+v", agg.Objects)
	}
	if len(agg.PointLights) != 1 {
		t.Fatalf("expected one point light but got %d", len(agg.PointLights))
	}
	lamp := agg.PointLights[0]
	if !lamp.Position.ApproxEqual(mgl32.Vec3{5, 2, 0}) {
		t.Errorf("lamp should inherit the house translation, got %v", lamp.Position)
	}
	if lamp.Color.W() != 4 || lamp.Range != 10 {
		t.Errorf("lamp intensity and range should be kept, got %v %f", lamp.Color, lamp.Range)
	}

	if len(agg.DirLights) != 1 {
		t.Fatalf("expected one directional light but got %d", len(agg.DirLights))
	}
	// -z rotated by -90 degrees around x points down
	if dir := agg.DirLights[0].Direction; !dir.ApproxEqualThreshold(mgl32.Vec3{0, -1, 0}, 1e-5) {
		t.Errorf("sun should point down but points %v", dir)
	}

	cam, ok := agg.Camera("cam")
	if !ok {
		t.Fatal("camera not collected")
	}
	if !cam.World.Col(3).Vec3().ApproxEqual(mgl32.Vec3{0, 0, 8}) {
		t.Errorf("camera world transform wrong: %v", cam.World)
	}
	if _, ok := agg.Camera("missing"); ok {
		t.Error("unknown camera should not be found")
	}
}

func TestTraverseIsPure(t *testing.T) {
	g := testGraph()
	first := Traverse(g)
	second := Traverse(g)

	if len(first.Objects) != len(second.Objects) || len(first.PointLights) != len(second.PointLights) {
		t.Fatal("traversal should not depend on previous runs")
	}
	if g.Roots[0].Transform != mgl32.Translate3D(5, 0, 0) {
		t.Error("traversal modified the graph")
	}
}

func TestTraverseOrder(t *testing.T) {
	var roots []*Node
	for _, name := range []string{"a", "b", "c"} {
		roots = append(roots, &Node{
			Name:      name,
			Transform: mgl32.Ident4(),
			Children: []*Node{{
				Name:      name + "1",
				Transform: mgl32.Ident4(),
				Camera:    true,
			}},
			Camera: true,
		})
	}

	agg := Traverse(&Graph{Roots: roots})
	expected := []string{"a", "a1", "b", "b1", "c", "c1"}
	if len(agg.Cameras) != len(expected) {
		t.Fatalf("expected %d cameras but got %d", len(expected), len(agg.Cameras))
	}
	for i, name := range expected {
		if agg.Cameras[i].Name != name {
			t.Errorf("camera %d should be %q but was %q", i, name, agg.Cameras[i].Name)
		}
	}
}
