package shaders

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed glsl/*.vert glsl/*.frag
var embedded embed.FS

// Stage names a vertex and fragment source pair that is linked into one pipeline.
type Stage struct {
	Name     string
	Vertex   string
	Fragment string
}

var (
	Fill     = Stage{"fill", "object.vert", "fill.frag"}
	Textured = Stage{"textured", "object.vert", "textured.frag"}
	Cubemap  = Stage{"cubemap", "cubemap.vert", "cubemap.frag"}
	Text     = Stage{"text", "object.vert", "text.frag"}
	Pbr      = Stage{"pbr", "pbr.vert", "pbr.frag"}

	BoxFilter        = Stage{"boxfilter", "tex.vert", "boxfilter.frag"}
	AmbientOcclusion = Stage{"ao", "tex.vert", "ao.frag"}
	Reflection       = Stage{"ssr", "tex.vert", "ssr.frag"}
	Composite        = Stage{"postprocess3d", "tex.vert", "postprocess3d.frag"}
	Copy             = Stage{"tex", "tex.vert", "tex.frag"}

	Gui = Stage{"imgui", "imgui.vert", "imgui.frag"}
)

var ObjectStages = []Stage{Fill, Textured, Cubemap, Text, Pbr}
var TextureStages = []Stage{BoxFilter, AmbientOcclusion, Reflection, Composite, Copy}

// Sources resolves shader files. Files in the override directory shadow the
// embedded defaults.
type Sources struct {
	dir string
}

func Embedded() *Sources {
	return &Sources{}
}

func Dir(path string) *Sources {
	return &Sources{dir: path}
}

func (s *Sources) OverrideDir() string {
	return s.dir
}

func (s *Sources) Read(name string) (string, error) {
	if s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("could not read shader %q: %w", name, err)
		}
	}

	data, err := embedded.ReadFile("glsl/" + name)
	if err != nil {
		return "", fmt.Errorf("could not read shader %q: %w", name, err)
	}
	return string(data), nil
}

func (s *Sources) Load(stage Stage) (vertex, fragment string, err error) {
	if vertex, err = s.Read(stage.Vertex); err != nil {
		return "", "", err
	}
	if fragment, err = s.Read(stage.Fragment); err != nil {
		return "", "", err
	}
	return vertex, fragment, nil
}

// Uses reports whether the stage is built from the named file.
func (stage Stage) Uses(file string) bool {
	base := filepath.Base(file)
	return base == stage.Vertex || base == stage.Fragment
}
