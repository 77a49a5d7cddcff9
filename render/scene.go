package render

import (
	"fmt"
	"image"

	"deferred-gl/libgl"
	"deferred-gl/libscn"
	"deferred-gl/liblog"

	"github.com/go-gl/gl/v4.5-core/gl"
)

// Scene is the uploaded content of an aggregate. Textures are shared between
// its objects and belong to the scene.
type Scene struct {
	Objects  []*Object
	Cameras  []libscn.Camera
	textures map[image.Image]libgl.UnboundTexture
}

// ImportScene uploads every object and appends the lights to the lighting
// state. On error everything uploaded so far is released.
func (c *Context) ImportScene(agg libscn.Aggregate) (scene *Scene, err error) {
	scene = &Scene{
		Cameras:  agg.Cameras,
		textures: map[image.Image]libgl.UnboundTexture{},
	}
	defer func() {
		if err != nil {
			c.RemoveScene(scene)
			scene = nil
		}
	}()

	for i, src := range agg.Objects {
		if src.Material == nil {
			return scene, fmt.Errorf("object %q has no material", src.Name)
		}
		obj := NewObject(src.Name, src.Mesh, scene.material(src.Material), Space3D)
		obj.Transform = src.World
		if err := c.Add(obj); err != nil {
			return scene, fmt.Errorf("could not upload object %d %q: %w", i, src.Name, err)
		}
		scene.Objects = append(scene.Objects, obj)
	}

	for _, light := range agg.PointLights {
		c.Lighting.AddPointLight(PointLight{Color: light.Color, Position: light.Position, Range: light.Range})
	}
	for _, light := range agg.DirLights {
		c.Lighting.AddDirLight(DirLight{Color: light.Color, Direction: light.Direction})
	}

	liblog.Infof("imported %d objects, %d point and %d directional lights, %d cameras",
		len(scene.Objects), len(agg.PointLights), len(agg.DirLights), len(agg.Cameras))
	return scene, nil
}

func (scene *Scene) material(desc *libscn.MaterialDesc) PBR {
	return PBR{
		BaseColor:      desc.BaseColor,
		Metallic:       desc.Metallic,
		Roughness:      desc.Roughness,
		NormalScale:    desc.NormalScale,
		OcclusionScale: desc.OcclusionScale,
		Emissive:       desc.Emissive,
		Diffuse:        scene.texture(desc.BaseColorTexture, gl.SRGB8_ALPHA8, desc.Name+" base color"),
		Normal:         scene.texture(desc.NormalTexture, gl.RGB8, desc.Name+" normal"),
		EmissiveMap:    scene.texture(desc.EmissiveTexture, gl.SRGB8, desc.Name+" emissive"),
		Orm:            scene.texture(desc.OrmTexture, gl.RGB8, desc.Name+" orm"),
	}
}

// texture returns nil for a missing image so the material falls back to a default.
func (scene *Scene) texture(img image.Image, internalFormat uint32, label string) libgl.UnboundTexture {
	if img == nil {
		return nil
	}
	if tex, ok := scene.textures[img]; ok {
		return tex
	}
	tex := UploadImage(img, internalFormat, label)
	scene.textures[img] = tex
	return tex
}

func (c *Context) DrawScene(scene *Scene) {
	for _, obj := range scene.Objects {
		c.Draw(obj)
	}
}

func (c *Context) RemoveScene(scene *Scene) {
	for _, obj := range scene.Objects {
		c.Remove(obj)
	}
	for _, tex := range scene.textures {
		tex.Delete()
	}
	scene.Objects = nil
	scene.textures = map[image.Image]libgl.UnboundTexture{}
}
