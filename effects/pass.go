package effects

import (
	"deferred-gl/libgl"
	"deferred-gl/shaders"

	"github.com/go-gl/mathgl/mgl32"
)

// Pass is one of BoxBlur, AmbientOcclusion, Reflection, Composite or Copy.
// The primary input is always bound to unit 0, named inputs follow from unit 1.
type Pass interface {
	stage() shaders.Stage
	inputs() []input
	uniforms() []uniform
}

type input struct {
	name    string
	texture libgl.UnboundTexture
}

type uniform struct {
	name  string
	value any
}

// BoxBlur averages a 3x3 neighbourhood, Size is the tap distance in uv units.
type BoxBlur struct {
	Size float32
}

func (BoxBlur) stage() shaders.Stage { return shaders.BoxFilter }
func (BoxBlur) inputs() []input      { return nil }
func (p BoxBlur) uniforms() []uniform {
	return []uniform{{"size", p.Size}}
}

// AmbientOcclusion reads the depth buffer as its primary input.
type AmbientOcclusion struct {
	Radius     float32
	Samples    int
	Seed       float32
	Normal     libgl.UnboundTexture
	Projection mgl32.Mat4
}

func (AmbientOcclusion) stage() shaders.Stage { return shaders.AmbientOcclusion }
func (p AmbientOcclusion) inputs() []input {
	return []input{{"normal", p.Normal}}
}
func (p AmbientOcclusion) uniforms() []uniform {
	return []uniform{
		{"radius", p.Radius},
		{"samples", int32(p.Samples)},
		{"seed", p.Seed},
		{"projection", p.Projection},
	}
}

// Reflection traces screen space reflections of the lit color.
type Reflection struct {
	Normal     libgl.UnboundTexture
	Depth      libgl.UnboundTexture
	Size       mgl32.Vec2
	Far        float32
	Projection mgl32.Mat4
}

func (Reflection) stage() shaders.Stage { return shaders.Reflection }
func (p Reflection) inputs() []input {
	return []input{{"normal", p.Normal}, {"depth", p.Depth}}
}
func (p Reflection) uniforms() []uniform {
	return []uniform{
		{"size", p.Size},
		{"view_far", p.Far},
		{"projection", p.Projection},
	}
}

// Composite applies occlusion and blends in reflections.
type Composite struct {
	Depth      libgl.UnboundTexture
	AO         libgl.UnboundTexture
	SSR        libgl.UnboundTexture
	RoughMetal libgl.UnboundTexture
	Size       mgl32.Vec2
}

func (Composite) stage() shaders.Stage { return shaders.Composite }
func (p Composite) inputs() []input {
	return []input{{"depth", p.Depth}, {"ao", p.AO}, {"ssr", p.SSR}, {"rough_metal", p.RoughMetal}}
}
func (p Composite) uniforms() []uniform {
	return []uniform{{"size", p.Size}}
}

type Copy struct{}

func (Copy) stage() shaders.Stage { return shaders.Copy }
func (Copy) inputs() []input      { return nil }
func (Copy) uniforms() []uniform  { return nil }
