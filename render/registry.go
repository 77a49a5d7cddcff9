package render

import (
	"fmt"

	"deferred-gl/libgl"
	"deferred-gl/liblog"
	"deferred-gl/shaders"
)

const (
	ObjectBlockBinding   = 0
	LightingBlockBinding = 1
)

// uniformNames lists the fragment uniforms each stage is driven with.
var uniformNames = map[string][]string{
	shaders.Fill.Name:     {"color"},
	shaders.Textured.Name: {"color", "tex"},
	shaders.Cubemap.Name:  {"tex"},
	shaders.Text.Name:     {"color", "tex"},
	shaders.Pbr.Name: {"color", "emissive", "metal", "rough", "occlusion", "normal_scale",
		"diffusetex", "emissivetex", "normaltex", "ormtex", "global_env", "local_env"},

	shaders.BoxFilter.Name:        {"tex", "size"},
	shaders.AmbientOcclusion.Name: {"tex", "normal", "radius", "samples", "seed", "projection"},
	shaders.Reflection.Name:       {"tex", "normal", "depth", "size", "view_far", "projection"},
	shaders.Composite.Name:        {"tex", "depth", "ao", "ssr", "rough_metal", "size"},
	shaders.Copy.Name:             {"tex"},
}

type shaderUniforms struct {
	program   libgl.ShaderProgram
	locations map[string]int32
}

func resolveUniforms(stage shaders.Stage, program libgl.ShaderProgram) shaderUniforms {
	u := shaderUniforms{program: program, locations: map[string]int32{}}
	for _, name := range uniformNames[stage.Name] {
		u.locations[name] = program.GetUniformLocation(name)
	}
	return u
}

// Set uploads to a cached location. Names that were not resolved at load time are ignored.
func (u shaderUniforms) Set(name string, value any) {
	location, ok := u.locations[name]
	if !ok {
		liblog.Debugf("uniform %q was not resolved", name)
		return
	}
	u.program.SetUniformAt(location, value)
}

// ObjectShader draws meshes; the transform lives in the vertex stage, the
// material uniforms in the fragment stage.
type ObjectShader struct {
	Stage     shaders.Stage
	Pipeline  libgl.UnboundShaderPipeline
	transform int32
	uniforms  shaderUniforms
}

func (s *ObjectShader) SetTransform(transform any) {
	s.Pipeline.VertexStage().SetUniformAt(s.transform, transform)
}

func (s *ObjectShader) Set(name string, value any) {
	s.uniforms.Set(name, value)
}

// TextureShader runs a full screen quad over its input textures.
type TextureShader struct {
	Stage    shaders.Stage
	Pipeline libgl.UnboundShaderPipeline
	uniforms shaderUniforms
}

func (s *TextureShader) Set(name string, value any) {
	s.uniforms.Set(name, value)
}

type Registry struct {
	objects  map[string]*ObjectShader
	textures map[string]*TextureShader
}

// LoadRegistry compiles every stage. On error nothing stays allocated.
func LoadRegistry(src *shaders.Sources) (reg *Registry, err error) {
	reg = &Registry{
		objects:  map[string]*ObjectShader{},
		textures: map[string]*TextureShader{},
	}
	defer func() {
		if err != nil {
			reg.Delete()
			reg = nil
		}
	}()

	for _, stage := range shaders.ObjectStages {
		pipeline, err := link(src, stage)
		if err != nil {
			return reg, err
		}
		shader := &ObjectShader{
			Stage:     stage,
			Pipeline:  pipeline,
			transform: pipeline.VertexStage().GetUniformLocation("transform"),
			uniforms:  resolveUniforms(stage, pipeline.FragmentStage()),
		}
		reg.objects[stage.Name] = shader

		if !pipeline.VertexStage().BindUniformBlock("object", ObjectBlockBinding) {
			return reg, fmt.Errorf("shader %q does not declare the object block", stage.Name)
		}
		pipeline.FragmentStage().BindUniformBlock("object", ObjectBlockBinding)
		if stage == shaders.Pbr && !pipeline.FragmentStage().BindUniformBlock("lighting", LightingBlockBinding) {
			return reg, fmt.Errorf("shader %q does not declare the lighting block", stage.Name)
		}
	}

	for _, stage := range shaders.TextureStages {
		pipeline, err := link(src, stage)
		if err != nil {
			return reg, err
		}
		reg.textures[stage.Name] = &TextureShader{
			Stage:    stage,
			Pipeline: pipeline,
			uniforms: resolveUniforms(stage, pipeline.FragmentStage()),
		}
	}

	liblog.Debugf("loaded %d object and %d texture shaders", len(reg.objects), len(reg.textures))
	return reg, nil
}

func link(src *shaders.Sources, stage shaders.Stage) (libgl.UnboundShaderPipeline, error) {
	vert, frag, err := src.Load(stage)
	if err != nil {
		return nil, err
	}
	pipeline, err := libgl.LinkPipeline(stage.Name, vert, frag)
	if err != nil {
		return nil, fmt.Errorf("could not link shader %q: %w", stage.Name, err)
	}
	return pipeline, nil
}

func (reg *Registry) Object(stage shaders.Stage) *ObjectShader {
	shader, ok := reg.objects[stage.Name]
	if !ok {
		panic(fmt.Sprintf("object shader %q is not registered", stage.Name))
	}
	return shader
}

func (reg *Registry) Texture(stage shaders.Stage) *TextureShader {
	shader, ok := reg.textures[stage.Name]
	if !ok {
		panic(fmt.Sprintf("texture shader %q is not registered", stage.Name))
	}
	return shader
}

func (reg *Registry) Delete() {
	for _, shader := range reg.objects {
		shader.Pipeline.Delete()
	}
	for _, shader := range reg.textures {
		shader.Pipeline.Delete()
	}
	reg.objects = map[string]*ObjectShader{}
	reg.textures = map[string]*TextureShader{}
}
