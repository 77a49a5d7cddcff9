package effects

import (
	"testing"

	"deferred-gl/libgl"
	"deferred-gl/render"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeTexture struct {
	libgl.UnboundTexture
	id   uint32
	kind uint32
	size int
}

func (tex *fakeTexture) Id() uint32   { return tex.id }
func (tex *fakeTexture) Type() uint32 { return tex.kind }
func (tex *fakeTexture) Width() int   { return tex.size }
func (tex *fakeTexture) Height() int  { return tex.size }

func newFake(id uint32) *fakeTexture {
	return &fakeTexture{id: id, kind: gl.TEXTURE_2D, size: 64}
}

func TestCompositeBindings(t *testing.T) {
	color, depth, ao, ssr, rm := newFake(1), newFake(2), newFake(3), newFake(4), newFake(5)
	units, err := bindings(color, Composite{Depth: depth, AO: ao, SSR: ssr, RoughMetal: rm}, Screen(64, 64))
	if err != nil {
		t.Fatal(err)
	}

	expected := []struct {
		name string
		tex  libgl.UnboundTexture
	}{{"tex", color}, {"depth", depth}, {"ao", ao}, {"ssr", ssr}, {"rough_metal", rm}}
	if len(units) != len(expected) {
		t.Fatalf("expected %d bindings but got %d", len(expected), len(units))
	}
	for i, e := range expected {
		if units[i].unit != i || units[i].name != e.name || units[i].texture != e.tex {
			t.Errorf("unit %d should bind %s, got %+v", i, e.name, units[i])
		}
	}
}

func TestPassAuxInputs(t *testing.T) {
	depth, normal, out := newFake(1), newFake(2), newFake(3)

	units, err := bindings(depth, AmbientOcclusion{Normal: normal}, TextureTarget(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 2 || units[1].name != "normal" || units[1].unit != 1 {
		t.Errorf("ao should sample the normals at unit 1, got %+v", units)
	}

	units, err = bindings(newFake(4), Reflection{Normal: normal, Depth: depth}, TextureTarget(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 3 || units[1].name != "normal" || units[2].name != "depth" {
		t.Errorf("ssr should sample normal then depth, got %+v", units)
	}

	for _, pass := range []Pass{BoxBlur{Size: 0.1}, Copy{}} {
		units, err := bindings(depth, pass, TextureTarget(out))
		if err != nil {
			t.Fatal(err)
		}
		if len(units) != 1 {
			t.Errorf("%T should only sample its primary input", pass)
		}
	}
}

func TestPassRejectsOwnTarget(t *testing.T) {
	tex, normal := newFake(1), newFake(2)

	if _, err := bindings(tex, BoxBlur{}, TextureTarget(tex)); err == nil {
		t.Error("a pass reading its primary input as target should fail")
	}
	if _, err := bindings(tex, AmbientOcclusion{Normal: normal}, TextureTarget(normal)); err == nil {
		t.Error("a pass reading an aux input as target should fail")
	}
	if _, err := bindings(tex, AmbientOcclusion{}, TextureTarget(newFake(3))); err == nil {
		t.Error("a missing aux input should fail")
	}
	if _, err := bindings(nil, Copy{}, Screen(1, 1)); err == nil {
		t.Error("a missing primary input should fail")
	}
}

func TestTargets(t *testing.T) {
	cube := &fakeTexture{id: 9, kind: gl.TEXTURE_CUBE_MAP, size: 512}

	face := CubeFace(cube, 3, 2)
	if !face.isCube() || face.Face != 3 || face.Level != 2 {
		t.Errorf("cube face target wrong: %+v", face)
	}
	if face.Width != 128 || face.Height != 128 {
		t.Errorf("level 2 of 512 should be 128, got %dx%d", face.Width, face.Height)
	}
	if tiny := LevelTarget(cube, 12); tiny.Width != 1 {
		t.Errorf("levels past the chain clamp to 1, got %d", tiny.Width)
	}
	if !Screen(10, 10).isScreen() {
		t.Error("screen target should have no texture")
	}
}

func TestResolveBlursOcclusion(t *testing.T) {
	gbuf := &render.GBuffer{Color: newFake(1), Normal: newFake(2), RoughMetal: newFake(3), Depth: newFake(4)}
	targets := &ScreenTargets{AO: newFake(5), AOBlurred: newFake(6), SSR: newFake(7)}

	steps := resolveSteps(gbuf, targets, Settings{AORadius: 0.5, AOSamples: 16, SSR: true}, mgl32.Ident4(), 0, 64, 64)
	if len(steps) != 4 {
		t.Fatalf("expected occlusion, blur, reflection and composite, got %d steps", len(steps))
	}
	blur, ok := steps[1].pass.(BoxBlur)
	if !ok || steps[1].src != targets.AO || steps[1].dst.Texture != targets.AOBlurred {
		t.Fatalf("the second step should blur the occlusion target, got %+v", steps[1])
	}
	if blur.Size != 1.0/64 {
		t.Errorf("blur taps should be one texel apart, got %v", blur.Size)
	}
	composite, ok := steps[3].pass.(Composite)
	if !ok || composite.AO != targets.AOBlurred || !steps[3].dst.isScreen() {
		t.Errorf("the composite should read the blurred occlusion, got %+v", steps[3])
	}

	steps = resolveSteps(gbuf, targets, Settings{AORadius: 0.5, AOSamples: 16}, mgl32.Ident4(), 0, 64, 64)
	if len(steps) != 3 {
		t.Errorf("disabled reflections should skip their pass, got %d steps", len(steps))
	}
}
