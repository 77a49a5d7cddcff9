package render

import (
	"deferred-gl/libgl"
	"deferred-gl/shaders"

	"github.com/go-gl/mathgl/mgl32"
)

// Material is one of Flat, Textured, Cubemap, Glyph or PBR.
type Material interface {
	material()
}

type Flat struct {
	Color mgl32.Vec4
}

type Textured struct {
	Color   mgl32.Vec4
	Texture libgl.UnboundTexture
}

type Cubemap struct {
	Texture libgl.UnboundTexture
}

type Glyph struct {
	Color mgl32.Vec4
	Atlas *GlyphAtlas
}

// PBR is a metallic-roughness material. Nil maps fall back to the shared
// 1x1 white textures.
type PBR struct {
	BaseColor      mgl32.Vec4
	Metallic       float32
	Roughness      float32
	NormalScale    float32
	OcclusionScale float32
	Emissive       mgl32.Vec3

	Diffuse     libgl.UnboundTexture
	Normal      libgl.UnboundTexture
	EmissiveMap libgl.UnboundTexture
	Orm         libgl.UnboundTexture
}

func (Flat) material()     {}
func (Textured) material() {}
func (Cubemap) material()  {}
func (Glyph) material()    {}
func (PBR) material()      {}

// Texture units of the pbr shader
const (
	UnitDiffuse = iota
	UnitEmissive
	UnitNormal
	UnitOrm
	UnitGlobalEnv
	UnitLocalEnv
)

type textureBinding struct {
	Unit    int
	Texture libgl.UnboundTexture
}

type uniformValue struct {
	Name  string
	Value any
}

// drawPlan is everything a draw call binds for a material, resolved without
// touching GL.
type drawPlan struct {
	stage    shaders.Stage
	textures []textureBinding
	uniforms []uniformValue
}

func orDefault(tex, fallback libgl.UnboundTexture) libgl.UnboundTexture {
	if tex == nil {
		return fallback
	}
	return tex
}

func planMaterial(mat Material, lighting *LightingState, defaults *DefaultTextures) drawPlan {
	switch m := mat.(type) {
	case Flat:
		return drawPlan{
			stage:    shaders.Fill,
			uniforms: []uniformValue{{"color", m.Color}},
		}
	case Textured:
		return drawPlan{
			stage:    shaders.Textured,
			textures: []textureBinding{{0, orDefault(m.Texture, defaults.RGBA)}},
			uniforms: []uniformValue{{"color", m.Color}, {"tex", 0}},
		}
	case Cubemap:
		return drawPlan{
			stage:    shaders.Cubemap,
			textures: []textureBinding{{0, m.Texture}},
			uniforms: []uniformValue{{"tex", 0}},
		}
	case Glyph:
		return drawPlan{
			stage:    shaders.Text,
			textures: []textureBinding{{0, m.Atlas.Texture}},
			uniforms: []uniformValue{{"color", m.Color}, {"tex", 0}},
		}
	case PBR:
		plan := drawPlan{
			stage: shaders.Pbr,
			textures: []textureBinding{
				{UnitDiffuse, orDefault(m.Diffuse, defaults.RGBA)},
				{UnitEmissive, orDefault(m.EmissiveMap, defaults.RGB)},
				{UnitNormal, orDefault(m.Normal, defaults.Normal)},
				{UnitOrm, orDefault(m.Orm, defaults.RGB)},
			},
			uniforms: []uniformValue{
				{"color", m.BaseColor},
				{"emissive", m.Emissive},
				{"metal", m.Metallic},
				{"rough", m.Roughness},
				{"occlusion", m.OcclusionScale},
				{"normal_scale", m.NormalScale},
				{"diffusetex", UnitDiffuse},
				{"emissivetex", UnitEmissive},
				{"normaltex", UnitNormal},
				{"ormtex", UnitOrm},
				{"global_env", UnitGlobalEnv},
				{"local_env", UnitLocalEnv},
			},
		}
		if lighting != nil {
			ibl := lighting.IBL()
			if ibl.GlobalEnabled && lighting.GlobalEnv() != nil {
				plan.textures = append(plan.textures, textureBinding{UnitGlobalEnv, lighting.GlobalEnv()})
			}
			if ibl.LocalEnabled && lighting.LocalEnv() != nil {
				plan.textures = append(plan.textures, textureBinding{UnitLocalEnv, lighting.LocalEnv()})
			}
		}
		return plan
	}
	panic("unknown material type")
}
