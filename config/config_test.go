package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("the default config should be valid: %v", err)
	}
	if Default().IBL.Resolution != 512 {
		t.Error("environment cubemaps default to 512")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[window]
width = 800
title = "probe test"

[ibl]
panorama = "sky.hdr"
probe_radius = 2.5

[shaders]
dir = "glsl"
watch = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window.Width != 800 || cfg.Window.Title != "probe test" {
		t.Errorf("window section not applied: %+v", cfg.Window)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("unset keys should keep their default, height was %d", cfg.Window.Height)
	}
	if cfg.IBL.Panorama != "sky.hdr" || cfg.IBL.ProbeRadius != 2.5 || cfg.IBL.Resolution != 512 {
		t.Errorf("ibl section not applied: %+v", cfg.IBL)
	}
	if !cfg.Shaders.Watch || cfg.Shaders.Dir != "glsl" {
		t.Errorf("shaders section not applied: %+v", cfg.Shaders)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[window]\nwidht = 800\n")
	if _, err := Load(path); err == nil {
		t.Error("a misspelled key should be rejected")
	}
}

func TestLoadValidates(t *testing.T) {
	path := writeConfig(t, "[ibl]\nresolution = 500\n\n[shaders]\nwatch = true\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), "power of two") || !strings.Contains(err.Error(), "shader directory") {
		t.Errorf("all problems should be reported, got %q", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.toml")
	cfg := Default()
	cfg.Scene.GLTF = "scene.gltf"
	cfg.Render.SSR = false
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != cfg {
		t.Errorf("expected %+v but got %+v", cfg, loaded)
	}
}
