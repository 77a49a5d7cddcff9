package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Window  Window  `toml:"window"`
	Render  Render  `toml:"render"`
	IBL     IBL     `toml:"ibl"`
	Scene   Scene   `toml:"scene"`
	Shaders Shaders `toml:"shaders"`
	Log     Log     `toml:"log"`
}

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
	// request a debug context and forward driver messages to the log
	Debug bool `toml:"debug"`
}

type Render struct {
	AORadius  float32 `toml:"ao_radius"`
	AOSamples int     `toml:"ao_samples"`
	SSR       bool    `toml:"ssr"`
}

type IBL struct {
	// equirectangular .hdr, .png or .jpg
	Panorama string `toml:"panorama"`
	// precomputed .iblenv, preferred over the panorama
	EnvFile         string  `toml:"env_file"`
	Resolution      int     `toml:"resolution"`
	Probes          bool    `toml:"probes"`
	ProbeRadius     float32 `toml:"probe_radius"`
	ProbeResolution int     `toml:"probe_resolution"`
}

type Scene struct {
	GLTF     string  `toml:"gltf"`
	Font     string  `toml:"font"`
	FontSize float64 `toml:"font_size"`
}

type Shaders struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
	// program binary cache, empty disables it
	Cache string `toml:"cache"`
}

type Log struct {
	Level string `toml:"level"`
}

func Default() Config {
	return Config{
		Window: Window{
			Width:  1600,
			Height: 900,
			Title:  "deferred-gl",
			VSync:  true,
		},
		Render: Render{
			AORadius:  0.5,
			AOSamples: 16,
			SSR:       true,
		},
		IBL: IBL{
			Resolution:      512,
			Probes:          true,
			ProbeRadius:     4,
			ProbeResolution: 128,
		},
		Scene: Scene{
			FontSize: 24,
		},
		Shaders: Shaders{
			Cache: ".shadercache",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads a TOML file on top of the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config %q: %w", path, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return cfg, fmt.Errorf("config %q:%d:%d: %w", path, row, col, err)
		}
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (cfg Config) Save(path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (cfg Config) Validate() error {
	var errs []error
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", cfg.Window.Width, cfg.Window.Height))
	}
	if res := cfg.IBL.Resolution; res < 1 || res&(res-1) != 0 {
		errs = append(errs, fmt.Errorf("ibl resolution %d must be a power of two", res))
	}
	if res := cfg.IBL.ProbeResolution; res < 1 || res&(res-1) != 0 {
		errs = append(errs, fmt.Errorf("probe resolution %d must be a power of two", res))
	}
	if cfg.IBL.ProbeRadius <= 0 {
		errs = append(errs, fmt.Errorf("probe radius %v must be positive", cfg.IBL.ProbeRadius))
	}
	if cfg.Render.AOSamples < 1 || cfg.Render.AOSamples > 64 {
		errs = append(errs, fmt.Errorf("ao samples %d out of range 1..64", cfg.Render.AOSamples))
	}
	if cfg.Render.AORadius <= 0 {
		errs = append(errs, fmt.Errorf("ao radius %v must be positive", cfg.Render.AORadius))
	}
	if cfg.Scene.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("font size %v must be positive", cfg.Scene.FontSize))
	}
	if cfg.Shaders.Watch && cfg.Shaders.Dir == "" {
		errs = append(errs, errors.New("watching shaders requires a shader directory"))
	}
	return errors.Join(errs...)
}
