package main

import (
	"fmt"

	"deferred-gl/config"
	"deferred-gl/effects"
	"deferred-gl/ibl"
	"deferred-gl/libgl"
	"deferred-gl/liblog"
	"deferred-gl/libscn"
	"deferred-gl/render"

	"github.com/go-gl/mathgl/mgl32"
)

// loadEnvironment prefers a precomputed environment file over projecting a
// panorama. It returns nil when neither is configured.
func loadEnvironment(cfg config.IBL) (*ibl.IblEnv, error) {
	switch {
	case cfg.EnvFile != "":
		liblog.Infof("Loading environment %q", cfg.EnvFile)
		return ibl.LoadIblEnv(cfg.EnvFile)
	case cfg.Panorama != "":
		liblog.Infof("Projecting panorama %q to %dx%d faces", cfg.Panorama, cfg.Resolution, cfg.Resolution)
		pano, err := ibl.LoadPanorama(cfg.Panorama)
		if err != nil {
			return nil, err
		}
		return ibl.Project(pano, cfg.Resolution), nil
	}
	return nil, nil
}

// newSky uploads the environment as global IBL and returns a sky box that
// owns the cube map.
func newSky(ctx *render.Context, chain *effects.Chain, env *ibl.IblEnv) (*render.Object, error) {
	cubemap, err := ibl.NewConvolver(chain).Upload(env)
	if err != nil {
		return nil, fmt.Errorf("could not convolve environment: %w", err)
	}

	mesh := &libscn.Mesh{Name: "sky"}
	mesh.AddCube(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{2, 2, 2})
	sky := render.NewObject("sky", mesh, render.Cubemap{Texture: cubemap}, render.Space3D)
	sky.Own(cubemap)
	if err := ctx.Add(sky); err != nil {
		cubemap.Delete()
		return nil, err
	}

	ctx.Lighting.SetGlobalEnv(cubemap)
	return sky, nil
}

// sceneCapture draws the sky and the scene into probe faces.
func sceneCapture(ctx *render.Context, scene *render.Scene, sky *render.Object) ibl.FaceRenderer {
	return ibl.FaceRendererFunc(func(target libgl.UnboundTexture, view, projection mgl32.Mat4) error {
		if err := ctx.BeginCapture(target, view, projection); err != nil {
			return err
		}
		defer ctx.EndCapture()

		if sky != nil {
			ctx.Draw(sky)
		}
		if scene != nil {
			ctx.DrawScene(scene)
		}
		return nil
	})
}

func loadScene(ctx *render.Context, path string) (*render.Scene, libscn.Aggregate, error) {
	graph, err := libscn.LoadGLTF(path)
	if err != nil {
		return nil, libscn.Aggregate{}, err
	}
	agg := libscn.Traverse(graph)
	scene, err := ctx.ImportScene(agg)
	if err != nil {
		return nil, agg, fmt.Errorf("could not import %q: %w", path, err)
	}
	return scene, agg, nil
}
