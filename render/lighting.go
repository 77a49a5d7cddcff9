package render

import (
	"deferred-gl/libgl"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the size of each light array in the lighting block.
const MaxLights = 10

type PointLight struct {
	// w is the intensity
	Color    mgl32.Vec4
	Position mgl32.Vec3
	Range    float32
}

type DirLight struct {
	Color     mgl32.Vec4
	Direction mgl32.Vec3
}

type IBL struct {
	GlobalEnabled bool
	LocalEnabled  bool
	LocalPosition mgl32.Vec3
	LocalRadius   float32
}

// LightingState holds every input of the lighting block. Lights beyond
// MaxLights are kept but never uploaded.
type LightingState struct {
	points    []PointLight
	dirs      []DirLight
	ambient   mgl32.Vec4
	ibl       IBL
	globalEnv libgl.UnboundTexture
	localEnv  libgl.UnboundTexture
}

func NewLightingState() *LightingState {
	return &LightingState{}
}

func (ls *LightingState) AddPointLight(light PointLight) {
	ls.points = append(ls.points, light)
}

func (ls *LightingState) AddDirLight(light DirLight) {
	ls.dirs = append(ls.dirs, light)
}

func (ls *LightingState) PointLights() []PointLight {
	return ls.points
}

func (ls *LightingState) DirLights() []DirLight {
	return ls.dirs
}

func (ls *LightingState) ClearLights() {
	ls.points = nil
	ls.dirs = nil
}

func (ls *LightingState) SetAmbient(color mgl32.Vec4) {
	ls.ambient = color
}

func (ls *LightingState) Ambient() mgl32.Vec4 {
	return ls.ambient
}

// SetGlobalEnv enables global image based lighting; nil disables it.
func (ls *LightingState) SetGlobalEnv(cubemap libgl.UnboundTexture) {
	ls.globalEnv = cubemap
	ls.ibl.GlobalEnabled = cubemap != nil
}

func (ls *LightingState) EnableLocalEnv(position mgl32.Vec3, radius float32, cubemap libgl.UnboundTexture) {
	ls.localEnv = cubemap
	ls.ibl.LocalEnabled = true
	ls.ibl.LocalPosition = position
	ls.ibl.LocalRadius = radius
}

func (ls *LightingState) DisableLocalEnv() {
	ls.localEnv = nil
	ls.ibl.LocalEnabled = false
}

func (ls *LightingState) IBL() IBL {
	return ls.ibl
}

func (ls *LightingState) GlobalEnv() libgl.UnboundTexture {
	return ls.globalEnv
}

func (ls *LightingState) LocalEnv() libgl.UnboundTexture {
	return ls.localEnv
}

type pointLightStd140 struct {
	Color    mgl32.Vec4
	Position mgl32.Vec3
	Range    float32
}

type dirLightStd140 struct {
	Color     mgl32.Vec4
	Direction mgl32.Vec3
	_         float32
}

// LightingBlock mirrors the std140 layout of the "lighting" uniform block.
type LightingBlock struct {
	PointCount       int32
	_                [3]int32
	Points           [MaxLights]pointLightStd140
	DirCount         int32
	_                [3]int32
	Dirs             [MaxLights]dirLightStd140
	GlobalEnvEnabled uint32
	LocalEnvEnabled  uint32
	_                [2]uint32
	LocalEnvPosition mgl32.Vec4
	LocalEnvRadius   float32
	_                [3]float32
	Ambient          mgl32.Vec4
}

// Block packs the first MaxLights lights of each kind in insertion order.
func (ls *LightingState) Block() LightingBlock {
	block := LightingBlock{Ambient: ls.ambient}

	for i, light := range ls.points {
		if i == MaxLights {
			break
		}
		block.Points[i] = pointLightStd140{Color: light.Color, Position: light.Position, Range: light.Range}
		block.PointCount++
	}
	for i, light := range ls.dirs {
		if i == MaxLights {
			break
		}
		block.Dirs[i] = dirLightStd140{Color: light.Color, Direction: light.Direction}
		block.DirCount++
	}

	if ls.ibl.GlobalEnabled {
		block.GlobalEnvEnabled = 1
	}
	if ls.ibl.LocalEnabled {
		block.LocalEnvEnabled = 1
		block.LocalEnvPosition = ls.ibl.LocalPosition.Vec4(1)
		block.LocalEnvRadius = ls.ibl.LocalRadius
	}
	return block
}
