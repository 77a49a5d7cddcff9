package libgl

import (
	"strings"

	"github.com/go-gl/gl/v4.5-core/gl"
)

type GlCapability uint32

const (
	DepthTest           GlCapability = gl.DEPTH_TEST
	Blend               GlCapability = gl.BLEND
	ScissorTest         GlCapability = gl.SCISSOR_TEST
	CullFace            GlCapability = gl.CULL_FACE
	Multisample         GlCapability = gl.MULTISAMPLE
	TextureCubeSeamless GlCapability = gl.TEXTURE_CUBE_MAP_SEAMLESS
)

type GlBlendFactor uint32

const (
	BlendZero             GlBlendFactor = gl.ZERO
	BlendOne              GlBlendFactor = gl.ONE
	BlendSrcAlpha         GlBlendFactor = gl.SRC_ALPHA
	BlendOneMinusSrcAlpha GlBlendFactor = gl.ONE_MINUS_SRC_ALPHA
)

type GlBlendEquation uint32

const (
	BlendFuncAdd GlBlendEquation = gl.FUNC_ADD
)

type GlDepthFunc uint32

const (
	DepthFuncLess   GlDepthFunc = gl.LESS
	DepthFuncLEqual GlDepthFunc = gl.LEQUAL
	DepthFuncAlways GlDepthFunc = gl.ALWAYS
)

// GlStateManager shadows the bits of GL state the renderer touches so that
// redundant binds never reach the driver.
type GlStateManager struct {
	Caps                                           map[GlCapability]bool
	TextureUnits, SamplerUnits                     []uint32
	DrawFramebuffer, ReadFramebuffer               uint32
	ArrayBuffer, ElementArrayBuffer, UniformBuffer uint32
	ProgramPipeline, VertexArray                   uint32
	ActiveTextureUnit                              int
	ViewportRect, ScissorRect                      [4]int
	BlendFactorSrc, BlendFactorDst                 GlBlendFactor
	BlendEquationMode                              GlBlendEquation
	DepthFuncFn                                    GlDepthFunc
	DepthWriteMask                                 bool
	CullFaceMask                                   uint32
	ClearColorRGBA                                 [4]float32
	UniformBindings                                map[uint32]uint32
}

var GlEnv *GlEnvironment

type GlEnvironment struct {
	Vendor                     string
	Renderer                   string
	Version                    string
	UseIntelTextureBindingFix  bool
	UseIntelCubemapDsaFix      bool
	IntelTextureBindingTargets map[uint32]uint32
	Features                   GlFeatures
}

type GlFeatures struct {
	MaxTextureMaxAnisotropy float32
	MaxColorAttachments     int32
}

const (
	VendorIntel   = "intel"
	VendorNvidia  = "nvidia"
	VendorAmd     = "ati"
	VendorUnknown = "unknown"
)

func GetGlEnv() *GlEnvironment {
	rawVendor := gl.GoStr(gl.GetString(gl.VENDOR))
	vendor := strings.ToLower(strings.TrimSuffix(rawVendor, "\x00"))
	if strings.Contains(vendor, "intel") {
		vendor = VendorIntel
	} else if strings.Contains(vendor, "nvidia") {
		vendor = VendorNvidia
	} else if strings.Contains(vendor, "ati ") || strings.Contains(vendor, "amd") {
		vendor = VendorAmd
	} else {
		vendor = VendorUnknown
	}

	features := GlFeatures{}
	gl.GetFloatv(gl.MAX_TEXTURE_MAX_ANISOTROPY, &features.MaxTextureMaxAnisotropy)
	gl.GetIntegerv(gl.MAX_COLOR_ATTACHMENTS, &features.MaxColorAttachments)

	return &GlEnvironment{
		Vendor:                     vendor,
		Renderer:                   gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:                    gl.GoStr(gl.GetString(gl.VERSION)),
		UseIntelTextureBindingFix:  vendor == VendorIntel,
		UseIntelCubemapDsaFix:      vendor == VendorIntel,
		IntelTextureBindingTargets: map[uint32]uint32{},
		Features:                   features,
	}
}

var State *GlStateManager

func NewGlStateManager() *GlStateManager {
	return &GlStateManager{
		Caps:            map[GlCapability]bool{},
		TextureUnits:    make([]uint32, 32),
		SamplerUnits:    make([]uint32, 32),
		UniformBindings: map[uint32]uint32{},
	}
}

// Init must run on the thread owning the current context, after gl.Init.
func Init() {
	GlEnv = GetGlEnv()
	State = NewGlStateManager()
}

func (s *GlStateManager) Enable(cap GlCapability) {
	if s.Caps[cap] {
		return
	}
	gl.Enable(uint32(cap))
	s.Caps[cap] = true
}

func (s *GlStateManager) Disable(cap GlCapability) {
	if enabled, known := s.Caps[cap]; known && !enabled {
		return
	}
	gl.Disable(uint32(cap))
	s.Caps[cap] = false
}

// SetEnabled enables exactly the given capabilities, disabling every other one this manager knows about.
func (s *GlStateManager) SetEnabled(caps ...GlCapability) {
	want := map[GlCapability]bool{}
	for _, c := range caps {
		want[c] = true
	}
	for c, v := range s.Caps {
		if v && !want[c] {
			s.Disable(c)
		}
	}
	for c := range want {
		s.Enable(c)
	}
}

func (s *GlStateManager) CullBack() {
	if s.CullFaceMask == gl.BACK {
		return
	}
	gl.CullFace(gl.BACK)
	s.CullFaceMask = gl.BACK
}

func (s *GlStateManager) BlendFunc(sfactor, dfactor GlBlendFactor) {
	if s.BlendFactorSrc == sfactor && s.BlendFactorDst == dfactor {
		return
	}
	gl.BlendFunc(uint32(sfactor), uint32(dfactor))
	s.BlendFactorSrc = sfactor
	s.BlendFactorDst = dfactor
}

func (s *GlStateManager) BlendEquation(mode GlBlendEquation) {
	if s.BlendEquationMode == mode {
		return
	}
	gl.BlendEquation(uint32(mode))
	s.BlendEquationMode = mode
}

func (s *GlStateManager) DepthFunc(fn GlDepthFunc) {
	if s.DepthFuncFn == fn {
		return
	}
	gl.DepthFunc(uint32(fn))
	s.DepthFuncFn = fn
}

func (s *GlStateManager) DepthMask(flag bool) {
	if s.DepthWriteMask == flag {
		return
	}
	gl.DepthMask(flag)
	s.DepthWriteMask = flag
}

func (s *GlStateManager) BindTextureUnit(unit int, texture uint32) {
	if s.TextureUnits[unit] == texture {
		return
	}
	if GlEnv.UseIntelTextureBindingFix {
		s.ActiveTexture(unit)
		if texture == 0 {
			s.TextureUnits[unit] = texture
			return
		}
		gl.BindTexture(GlEnv.IntelTextureBindingTargets[texture], texture)
		s.TextureUnits[unit] = texture
		return
	}
	gl.BindTextureUnit(uint32(unit), texture)
	s.TextureUnits[unit] = texture
}

func (s *GlStateManager) BindTexture(target uint32, texture uint32) {
	if s.TextureUnits[s.ActiveTextureUnit] == texture {
		return
	}
	gl.BindTexture(target, texture)
	s.TextureUnits[s.ActiveTextureUnit] = texture
}

func (s *GlStateManager) ActiveTexture(unit int) {
	if s.ActiveTextureUnit == unit {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	s.ActiveTextureUnit = unit
}

func (s *GlStateManager) BindSampler(unit int, sampler uint32) {
	if s.SamplerUnits[unit] == sampler {
		return
	}
	gl.BindSampler(uint32(unit), sampler)
	s.SamplerUnits[unit] = sampler
}

func (s *GlStateManager) BindBuffer(target uint32, buffer uint32) {
	switch target {
	case gl.ARRAY_BUFFER:
		if s.ArrayBuffer == buffer {
			return
		}
		s.ArrayBuffer = buffer
	case gl.ELEMENT_ARRAY_BUFFER:
		if s.ElementArrayBuffer == buffer {
			return
		}
		s.ElementArrayBuffer = buffer
	case gl.UNIFORM_BUFFER:
		if s.UniformBuffer == buffer {
			return
		}
		s.UniformBuffer = buffer
	}
	gl.BindBuffer(target, buffer)
}

// BindUniformBufferBase attaches buffer to the indexed uniform binding point.
func (s *GlStateManager) BindUniformBufferBase(index uint32, buffer uint32) {
	if current, ok := s.UniformBindings[index]; ok && current == buffer {
		return
	}
	gl.BindBufferBase(gl.UNIFORM_BUFFER, index, buffer)
	s.UniformBindings[index] = buffer
	s.UniformBuffer = buffer
}

func (s *GlStateManager) BindFramebuffer(target, framebuffer uint32) {
	if target == gl.DRAW_FRAMEBUFFER {
		s.BindDrawFramebuffer(framebuffer)
	} else if target == gl.READ_FRAMEBUFFER {
		s.BindReadFramebuffer(framebuffer)
	} else {
		if framebuffer == s.DrawFramebuffer && framebuffer == s.ReadFramebuffer {
			return
		}
		gl.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
		s.DrawFramebuffer = framebuffer
		s.ReadFramebuffer = framebuffer
	}
}

func (s *GlStateManager) BindDrawFramebuffer(framebuffer uint32) {
	if s.DrawFramebuffer == framebuffer {
		return
	}
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, framebuffer)
	s.DrawFramebuffer = framebuffer
}

func (s *GlStateManager) BindReadFramebuffer(framebuffer uint32) {
	if s.ReadFramebuffer == framebuffer {
		return
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, framebuffer)
	s.ReadFramebuffer = framebuffer
}

func (s *GlStateManager) BindProgramPipeline(pipeline uint32) {
	if s.ProgramPipeline == pipeline {
		return
	}
	gl.BindProgramPipeline(pipeline)
	s.ProgramPipeline = pipeline
}

func (s *GlStateManager) BindVertexArray(array uint32) {
	if s.VertexArray == array {
		return
	}
	gl.BindVertexArray(array)
	s.VertexArray = array
}

func (s *GlStateManager) Viewport(x, y, w, h int) {
	if s.ViewportRect[0] == x && s.ViewportRect[1] == y && s.ViewportRect[2] == w && s.ViewportRect[3] == h {
		return
	}
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
	s.ViewportRect = [4]int{x, y, w, h}
}

func (s *GlStateManager) Scissor(x, y, w, h int) {
	if s.ScissorRect[0] == x && s.ScissorRect[1] == y && s.ScissorRect[2] == w && s.ScissorRect[3] == h {
		return
	}
	gl.Scissor(int32(x), int32(y), int32(w), int32(h))
	s.ScissorRect = [4]int{x, y, w, h}
}

func (s *GlStateManager) ClearColor(r, g, b, a float32) {
	if s.ClearColorRGBA[0] == r && s.ClearColorRGBA[1] == g && s.ClearColorRGBA[2] == b && s.ClearColorRGBA[3] == a {
		return
	}
	gl.ClearColor(r, g, b, a)
	s.ClearColorRGBA = [4]float32{r, g, b, a}
}
