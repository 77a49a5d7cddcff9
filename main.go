package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"unsafe"

	"deferred-gl/config"
	"deferred-gl/effects"
	"deferred-gl/ibl"
	"deferred-gl/libgl"
	"deferred-gl/liblog"
	"deferred-gl/render"
	"deferred-gl/shaders"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"
)

var Arguments struct {
	Config   string
	Scene    string
	Panorama string
	EnvFile  string
	Shaders  string
	LogLevel string
}

func main() {
	flag.StringVar(&Arguments.Config, "config", Arguments.Config, "the TOML config file")
	flag.StringVar(&Arguments.Scene, "scene", Arguments.Scene, "a glTF scene, overrides the config")
	flag.StringVar(&Arguments.Panorama, "panorama", Arguments.Panorama, "an equirectangular environment, overrides the config")
	flag.StringVar(&Arguments.EnvFile, "env", Arguments.EnvFile, "a precomputed .iblenv environment, overrides the config")
	flag.StringVar(&Arguments.Shaders, "shaders", Arguments.Shaders, "a directory shadowing the embedded shaders")
	flag.StringVar(&Arguments.LogLevel, "log", Arguments.LogLevel, "the log level")
	flag.Parse()

	cfg, err := loadConfig()
	check(err)
	check(liblog.SetLevel(cfg.Log.Level))

	runtime.LockOSThread()
	check(glfw.Init())
	defer glfw.Terminate()

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 5)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	if cfg.Window.Debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}
	win, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	check(err)
	win.MakeContextCurrent()
	if cfg.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	err = gl.InitWithProcAddrFunc(func(name string) unsafe.Pointer {
		addr := glfw.GetProcAddress(name)
		if addr == nil {
			return unsafe.Pointer(uintptr(0xffff_ffff_ffff_ffff))
		}
		return addr
	})
	check(err)
	libgl.Init()
	libgl.ShaderCache.Dir = cfg.Shaders.Cache
	libgl.ShaderCache.Disabled = cfg.Shaders.Cache == ""
	if cfg.Window.Debug {
		libgl.EnableDebugOutput()
	}
	liblog.Infof("Using %s (%s)", libgl.GlEnv.Renderer, libgl.GlEnv.Version)

	v, err := newViewer(win, cfg)
	check(err)
	defer v.Delete()

	for !win.ShouldClose() {
		glfw.PollEvents()
		if err := v.Frame(); err != nil {
			liblog.Fatalf("%v", err)
		}
		win.SwapBuffers()
	}
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if Arguments.Config != "" {
		var err error
		if cfg, err = config.Load(Arguments.Config); err != nil {
			return cfg, err
		}
	}
	if Arguments.Scene != "" {
		cfg.Scene.GLTF = Arguments.Scene
	}
	if Arguments.Panorama != "" {
		cfg.IBL.Panorama = Arguments.Panorama
		cfg.IBL.EnvFile = ""
	}
	if Arguments.EnvFile != "" {
		cfg.IBL.EnvFile = Arguments.EnvFile
	}
	if Arguments.Shaders != "" {
		cfg.Shaders.Dir = Arguments.Shaders
	}
	if Arguments.LogLevel != "" {
		cfg.Log.Level = Arguments.LogLevel
	}
	return cfg, cfg.Validate()
}

type viewer struct {
	cfg      config.Config
	win      *glfw.Window
	sources  *shaders.Sources
	watcher  *shaders.Watcher
	ctx      *render.Context
	chain    *effects.Chain
	targets  *effects.ScreenTargets
	settings effects.Settings
	scene    *render.Scene
	sky      *render.Object
	probes   *ibl.ProbeSystem
	font     *render.GlyphAtlas
	label    *render.Object
	input    *Input
	gui      *ImGui
	camera   *Camera

	frame     int
	labelTime float32
}

func newViewer(win *glfw.Window, cfg config.Config) (v *viewer, err error) {
	v = &viewer{
		cfg:     cfg,
		win:     win,
		sources: shaders.Embedded(),
		targets: &effects.ScreenTargets{},
		settings: effects.Settings{
			AORadius:  cfg.Render.AORadius,
			AOSamples: cfg.Render.AOSamples,
			SSR:       cfg.Render.SSR,
		},
		camera: &Camera{Position: mgl32.Vec3{0, 1, 3}, Speed: 2},
	}
	defer func() {
		if err != nil {
			v.Delete()
		}
	}()

	if cfg.Shaders.Dir != "" {
		v.sources = shaders.Dir(cfg.Shaders.Dir)
		if cfg.Shaders.Watch {
			if v.watcher, err = shaders.Watch(cfg.Shaders.Dir); err != nil {
				return v, fmt.Errorf("could not watch shaders: %w", err)
			}
		}
	}

	registry, err := render.LoadRegistry(v.sources)
	if err != nil {
		return v, err
	}
	width, height := win.GetFramebufferSize()
	if v.ctx, err = render.Initialize(width, height, registry); err != nil {
		registry.Delete()
		return v, err
	}
	win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		if width > 0 && height > 0 {
			v.ctx.SetBounds(width, height)
		}
	})
	v.chain = effects.NewChain(registry)
	v.ctx.Lighting.SetAmbient(mgl32.Vec4{0.03, 0.03, 0.03, 1})

	if cfg.Scene.GLTF != "" {
		scene, agg, err := loadScene(v.ctx, cfg.Scene.GLTF)
		if err != nil {
			return v, err
		}
		v.scene = scene
		if len(agg.Cameras) > 0 {
			v.camera.LookFrom(agg.Cameras[0].World)
			liblog.Infof("Starting at camera %q", agg.Cameras[0].Name)
		}
	}

	env, err := loadEnvironment(cfg.IBL)
	if err != nil {
		return v, err
	}
	if env != nil {
		if v.sky, err = newSky(v.ctx, v.chain, env); err != nil {
			return v, err
		}
	}
	if cfg.IBL.Probes {
		v.probes = ibl.NewProbeSystem(cfg.IBL.ProbeRadius, cfg.IBL.ProbeResolution, sceneCapture(v.ctx, v.scene, v.sky), v.chain)
	}

	var ttf []byte
	if cfg.Scene.Font != "" {
		if ttf, err = os.ReadFile(cfg.Scene.Font); err != nil {
			return v, fmt.Errorf("could not read font: %w", err)
		}
	}
	if v.font, err = render.NewFontAtlas(ttf, cfg.Scene.FontSize); err != nil {
		return v, err
	}
	v.label = render.Text(v.font, "deferred-gl", mgl32.Vec4{1, 1, 1, 1})
	if err = v.ctx.Add(v.label); err != nil {
		return v, err
	}

	if v.gui, err = NewImGui(win, v.sources); err != nil {
		return v, err
	}
	v.input = NewInput(win)
	return v, nil
}

func (v *viewer) Frame() error {
	v.input.Update(v.win)
	v.reloadShaders()
	v.move()

	v.ctx.SetCamera(v.camera.ViewMatrix())
	if v.probes != nil {
		v.probes.Select(v.camera.Position, v.ctx.Lighting)
	}

	if err := v.ctx.BeginFrame(); err != nil {
		return err
	}
	if v.probes != nil {
		if _, ok := v.probes.Lookup(v.camera.Position); !ok {
			if _, err := v.probes.Create(v.camera.Position); err != nil {
				return err
			}
		}
	}

	libgl.PushDebugGroup("Geometry")
	if v.sky != nil {
		v.ctx.Draw(v.sky)
	}
	if v.scene != nil {
		v.ctx.DrawScene(v.scene)
	}
	libgl.PopDebugGroup()

	libgl.PushDebugGroup("Post")
	err := v.chain.Resolve(v.ctx, v.targets, v.settings, float32(v.frame%1024))
	libgl.PopDebugGroup()
	if err != nil {
		return err
	}

	v.updateLabel()
	v.ctx.Draw(v.label)

	v.gui.NewFrame(v.win)
	v.overlay()
	v.gui.Draw(v.win)

	v.frame++
	return nil
}

func (v *viewer) move() {
	movement := v.input.Movement(glfw.KeyW, glfw.KeyS, glfw.KeyA, glfw.KeyD, glfw.KeySpace, glfw.KeyLeftControl)
	if movement.LenSqr() != 0 {
		speed := v.camera.Speed
		if v.input.IsKeyDown(glfw.KeyLeftShift) {
			speed *= 4
		}
		v.camera.Fly(movement.Normalize().Mul(speed * v.input.TimeDelta()))
	}
	if v.input.IsMouseDown(glfw.MouseButtonRight) && !v.gui.WantsMouse() {
		rotation := v.input.CursorDelta()
		v.camera.Rotate(rotation[1]*0.35, rotation[0]*0.35)
	}
	if v.input.IsKeyTap(glfw.KeyF5) {
		v.reloadRegistry()
	}
}

// updateLabel re-lays the frame time twice a second and pins it to the top left.
func (v *viewer) updateLabel() {
	width, height := v.ctx.Bounds()
	v.label.Transform = mgl32.Translate3D(float32(-width/2+8), float32(height/2)-float32(v.cfg.Scene.FontSize)-4, 0)

	now := float32(glfw.GetTime())
	if now-v.labelTime < 0.5 {
		return
	}
	v.labelTime = now
	text := fmt.Sprintf("%.1f ms  %d objects", v.input.TimeDelta()*1000, v.ctx.LiveObjects())
	v.label.Mesh = render.LayoutText(v.font, text)
	if err := v.label.Reupload(); err != nil {
		liblog.Warnf("could not update label: %v", err)
	}
}

func (v *viewer) reloadShaders() {
	if v.watcher == nil {
		return
	}
	if changed := v.watcher.Poll(); len(changed) > 0 {
		liblog.Infof("Shaders changed: %s", strings.Join(changed, ", "))
		v.reloadRegistry()
	}
}

// reloadRegistry keeps the previous shaders when the new ones do not link.
func (v *viewer) reloadRegistry() {
	registry, err := render.LoadRegistry(v.sources)
	if err != nil {
		liblog.Errorf("Shader reload failed: %v", err)
		return
	}
	v.ctx.ReplaceRegistry(registry)
	v.chain.SetRegistry(registry)
	liblog.Infof("Shaders reloaded")
}

func (v *viewer) overlay() {
	imgui.SetNextWindowPosV(imgui.Vec2{X: 10, Y: 40}, imgui.ConditionFirstUseEver, imgui.Vec2{})
	imgui.Begin("deferred-gl")
	defer imgui.End()

	imgui.PushID("camera")
	if imgui.CollapsingHeader("Camera") {
		imgui.DragFloat3("Pos", (*[3]float32)(&v.camera.Position))
		imgui.DragFloat("Pitch", &v.camera.Pitch)
		imgui.DragFloat("Yaw", &v.camera.Yaw)
		imgui.SliderFloat("Speed", &v.camera.Speed, 0.1, 20)
	}
	imgui.PopID()

	imgui.PushID("post")
	if imgui.CollapsingHeader("Post processing") {
		imgui.SliderFloat("AO radius", &v.settings.AORadius, 0.05, 4)
		samples := int32(v.settings.AOSamples)
		if imgui.SliderInt("AO samples", &samples, 1, 64) {
			v.settings.AOSamples = int(samples)
		}
		imgui.Checkbox("Reflections", &v.settings.SSR)
	}
	imgui.PopID()

	imgui.PushID("lights")
	if imgui.CollapsingHeader("Lights") {
		lighting := v.ctx.Lighting
		ambient := lighting.Ambient()
		if imgui.ColorEdit4V("Ambient", (*[4]float32)(&ambient), imgui.ColorEditFlagsFloat) {
			lighting.SetAmbient(ambient)
		}
		for i, light := range lighting.PointLights() {
			imgui.Textf("Point %d  %.2f %.2f %.2f  range %.1f", i+1, light.Position[0], light.Position[1], light.Position[2], light.Range)
		}
		for i, light := range lighting.DirLights() {
			imgui.Textf("Directional %d  %.2f %.2f %.2f", i+1, light.Direction[0], light.Direction[1], light.Direction[2])
		}
	}
	imgui.PopID()

	imgui.PushID("ibl")
	if imgui.CollapsingHeader("Environment") {
		state := v.ctx.Lighting.IBL()
		imgui.Textf("Global: %t", state.GlobalEnabled)
		imgui.Textf("Local:  %t", state.LocalEnabled)
		if v.probes != nil {
			imgui.Textf("Probes: %d (radius %.1f)", v.probes.Len(), v.probes.Radius)
			if imgui.Button("Release probes") {
				v.probes.Release()
				v.ctx.Lighting.DisableLocalEnv()
			}
		}
	}
	imgui.PopID()
}

func (v *viewer) Delete() {
	if v.gui != nil {
		v.gui.Delete()
	}
	if v.probes != nil {
		v.probes.Release()
	}
	if v.font != nil {
		v.font.Delete()
	}
	if v.watcher != nil {
		v.watcher.Close()
	}
	v.targets.Delete()
	if v.chain != nil {
		v.chain.Delete()
	}
	if v.scene != nil {
		v.ctx.RemoveScene(v.scene)
	}
	if v.ctx != nil {
		v.ctx.Shutdown()
	}
}

func check(err error) {
	if err != nil {
		liblog.Fatalf("%v", err)
	}
}
