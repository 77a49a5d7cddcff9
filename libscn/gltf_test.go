package libscn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf/ext/lightspunctual"
)

const lightsScene = `{
	"asset": {"version": "2.0"},
	"extensionsUsed": ["KHR_lights_punctual"],
	"extensions": {
		"KHR_lights_punctual": {
			"lights": [
				{"name": "lamp", "type": "point", "color": [1, 0.5, 0], "intensity": 4, "range": 10},
				{"name": "sun", "type": "directional"},
				{"name": "torch", "type": "spot", "spot": {}}
			]
		}
	},
	"scene": 0,
	"scenes": [{"nodes": [0, 1, 2]}],
	"nodes": [
		{"name": "lamp", "translation": [0, 2, 0], "extensions": {"KHR_lights_punctual": {"light": 0}}},
		{"name": "sun", "extensions": {"KHR_lights_punctual": {"light": 1}}},
		{"name": "torch", "extensions": {"KHR_lights_punctual": {"light": 2}}}
	]
}`

func writeGLTF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.gltf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGLTFLights(t *testing.T) {
	graph, err := LoadGLTF(writeGLTF(t, lightsScene))
	if err != nil {
		t.Fatal(err)
	}
	if len(graph.Roots) != 3 {
		t.Fatalf("expected 3 root nodes but got %d", len(graph.Roots))
	}

	lamp := graph.Roots[0].Light
	if lamp == nil || lamp.Kind != PointLightKind {
		t.Fatalf("lamp should be a point light, got %+v", lamp)
	}
	if lamp.Color != (mgl32.Vec3{1, 0.5, 0}) || lamp.Intensity != 4 || lamp.Range != 10 {
		t.Errorf("lamp parameters not applied: %+v", lamp)
	}

	sun := graph.Roots[1].Light
	if sun == nil || sun.Kind != DirectionalLightKind {
		t.Fatalf("sun should be a directional light, got %+v", sun)
	}
	if sun.Color != (mgl32.Vec3{1, 1, 1}) || sun.Intensity != 1 || sun.Range != 0 {
		t.Errorf("sun should use white, unit intensity and unbounded range, got %+v", sun)
	}

	if graph.Roots[2].Light != nil {
		t.Error("spot lights are skipped")
	}

	agg := Traverse(graph)
	if len(agg.PointLights) != 1 || len(agg.DirLights) != 1 {
		t.Errorf("expected one point and one directional light, got %d and %d", len(agg.PointLights), len(agg.DirLights))
	}
}

func TestLoadGLTFLightIndexOutOfRange(t *testing.T) {
	scene := `{
	"asset": {"version": "2.0"},
	"extensionsUsed": ["KHR_lights_punctual"],
	"extensions": {"KHR_lights_punctual": {"lights": [{"type": "point"}]}},
	"nodes": [{"extensions": {"KHR_lights_punctual": {"light": 3}}}]
}`
	if _, err := LoadGLTF(writeGLTF(t, scene)); err == nil {
		t.Error("a reference past the light list should be rejected")
	}
}

func TestConvertLightRange(t *testing.T) {
	r := 2.5
	light := convertLight(&lightspunctual.Light{Type: lightspunctual.TypePoint, Range: &r})
	if light == nil || light.Range != 2.5 {
		t.Errorf("expected range 2.5, got %+v", light)
	}
	if light.Color != (mgl32.Vec3{1, 1, 1}) || light.Intensity != 1 {
		t.Errorf("missing color and intensity should default to white and 1, got %+v", light)
	}
}
