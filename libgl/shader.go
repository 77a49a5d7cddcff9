package libgl

import (
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"

	"deferred-gl/liblog"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var shaderMetaPattern = regexp.MustCompile(`(?m)^\/\/meta:(\w+)(.+)$`)
var shaderDefinePattern = regexp.MustCompile(`(?m)^\s*(\/\/)?\s*#define ([\w\d]+) ?(.*)$`)
var shaderVersionPattern = regexp.MustCompile(`(?m)^\s*#version.+$`)

type shaderPipeline struct {
	glId      uint32
	name      string
	vertStage ShaderProgram
	fragStage ShaderProgram
}

type UnboundShaderPipeline interface {
	LabeledGlObject
	Id() uint32
	Name() string
	Bind() BoundShaderPipeline
	Attach(program ShaderProgram, stages int)
	VertexStage() ShaderProgram
	FragmentStage() ShaderProgram
	Delete()
}

type BoundShaderPipeline interface {
	UnboundShaderPipeline
}

func NewPipeline(name string) UnboundShaderPipeline {
	var id uint32
	gl.CreateProgramPipelines(1, &id)
	pipeline := &shaderPipeline{
		glId: id,
		name: name,
	}
	pipeline.SetDebugLabel(name)
	return pipeline
}

// LinkPipeline compiles a vertex and a fragment stage and links them into a pipeline.
func LinkPipeline(name, vertexSource, fragmentSource string) (UnboundShaderPipeline, error) {
	vert := NewShader(vertexSource, gl.VERTEX_SHADER)
	if err := vert.Compile(); err != nil {
		return nil, fmt.Errorf("could not compile vertex shader of %q: %w", name, err)
	}
	frag := NewShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err := frag.Compile(); err != nil {
		vert.Delete()
		return nil, fmt.Errorf("could not compile fragment shader of %q: %w", name, err)
	}

	pipeline := NewPipeline(name)
	pipeline.Attach(vert, gl.VERTEX_SHADER_BIT)
	pipeline.Attach(frag, gl.FRAGMENT_SHADER_BIT)
	return pipeline, nil
}

func (pipeline *shaderPipeline) SetDebugLabel(label string) {
	setObjectLabel(gl.PROGRAM_PIPELINE, pipeline.glId, label)
}

func (pipeline *shaderPipeline) Name() string {
	return pipeline.name
}

func (pipeline *shaderPipeline) Attach(program ShaderProgram, stages int) {
	gl.UseProgramStages(pipeline.glId, uint32(stages), program.Id())
	if stages&gl.VERTEX_SHADER_BIT != 0 {
		pipeline.vertStage = program
	}
	if stages&gl.FRAGMENT_SHADER_BIT != 0 {
		pipeline.fragStage = program
	}
}

func (pipeline *shaderPipeline) VertexStage() ShaderProgram {
	return pipeline.vertStage
}

func (pipeline *shaderPipeline) FragmentStage() ShaderProgram {
	return pipeline.fragStage
}

func (pipeline *shaderPipeline) Bind() BoundShaderPipeline {
	State.BindProgramPipeline(pipeline.glId)
	return BoundShaderPipeline(pipeline)
}

func (pipeline *shaderPipeline) Id() uint32 {
	return pipeline.glId
}

func (pipeline *shaderPipeline) Delete() {
	if pipeline.vertStage != nil {
		pipeline.vertStage.Delete()
	}
	if pipeline.fragStage != nil {
		pipeline.fragStage.Delete()
	}
	if State != nil && State.ProgramPipeline == pipeline.glId {
		State.ProgramPipeline = 0
	}
	gl.DeleteProgramPipelines(1, &pipeline.glId)
	pipeline.glId = 0
}

type shaderCacheManager struct {
	Dir      string
	Disabled bool
	MaxAge   time.Duration
}

// ShaderCache stores driver program binaries keyed by source and driver identity.
var ShaderCache = &shaderCacheManager{
	Dir:    ".shadercache",
	MaxAge: 30 * 24 * time.Hour,
}

func (cache *shaderCacheManager) Put(source string, program ShaderProgram) {
	if cache.Disabled {
		return
	}
	err := os.MkdirAll(cache.Dir, 0755)
	if err != nil {
		liblog.Warnf("could not create shader cache directory: %v", err)
		return
	}
	file, err := os.OpenFile(filepath.Join(cache.Dir, cache.hash(source)+".bin"), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		liblog.Warnf("could not write shader cache: %v", err)
		return
	}
	defer file.Close()

	var length int32
	gl.GetProgramiv(program.Id(), gl.PROGRAM_BINARY_LENGTH, &length)
	if length == 0 {
		return
	}
	buf := make([]byte, length)
	var format uint32
	gl.GetProgramBinary(program.Id(), length, &length, &format, Pointer(buf))
	buf = buf[:length]
	if err := binary.Write(file, binary.LittleEndian, format); err != nil {
		liblog.Warnf("could not write shader cache: %v", err)
		return
	}
	if _, err := file.Write(buf); err != nil {
		liblog.Warnf("could not write shader cache: %v", err)
	}
}

func (cache *shaderCacheManager) hash(source string) string {
	hasher := md5.New()
	hasher.Write([]byte(source))
	if GlEnv != nil {
		hasher.Write([]byte(GlEnv.Vendor))
		hasher.Write([]byte(GlEnv.Renderer))
		hasher.Write([]byte(GlEnv.Version))
	}
	return fmt.Sprintf("%x", hasher.Sum(nil))
}

func (cache *shaderCacheManager) Get(source string) (ok bool, buf []byte, format uint32) {
	if cache.Disabled {
		return
	}
	var err error
	defer func() {
		if err != nil {
			liblog.Warnf("could not read shader cache: %v", err)
		}
	}()
	shaderPath := filepath.Join(cache.Dir, cache.hash(source)+".bin")
	info, err := os.Stat(shaderPath)
	if errors.Is(err, os.ErrNotExist) {
		err = nil
		return
	}
	if err != nil {
		return
	}
	// a driver update may produce different code, so old entries are dropped
	if time.Since(info.ModTime()) > cache.MaxAge {
		os.Remove(shaderPath)
		return
	}
	file, err := os.Open(shaderPath)
	if err != nil {
		return
	}
	defer file.Close()
	if err = binary.Read(file, binary.LittleEndian, &format); err != nil {
		return
	}
	buf, err = io.ReadAll(file)
	if err != nil {
		return
	}
	return true, buf, format
}

type glslDef struct {
	marker  string
	name    string
	value   string
	boolean bool
}

type program struct {
	uniformLocations map[string]int32
	definitions      map[string]glslDef
	versionEnd       int
	glId             uint32
	name             string
	sourceTemplate   string
	sourceLive       string
	stage            int
}

type ShaderProgram interface {
	Id() uint32
	Name() string
	Compile() error
	CompileWith(defs map[string]string) error
	Delete()
	GetUniformLocation(name string) int32
	BindUniformBlock(name string, binding uint32) bool
	SetUniform(name string, value any)
	SetUniformAt(location int32, value any)
	Source() string
}

func NewShader(source string, stage int) ShaderProgram {
	name := "untitled"

	metaMatches := shaderMetaPattern.FindAllStringSubmatch(source, -1)
	for _, match := range metaMatches {
		key, value := match[1], strings.TrimSpace(match[2])
		if strings.EqualFold(key, "name") {
			name = value
		}
	}

	defineMatches := shaderDefinePattern.FindAllStringSubmatch(source, -1)
	definitions := make(map[string]glslDef, len(defineMatches))
	defineMarkers := make(map[string]string, len(defineMatches))
	for i, match := range defineMatches {
		value := strings.TrimSpace(match[3])
		marker := fmt.Sprintf("$def_%v$", i)
		boolean := value == ""
		if boolean && match[1] == "//" {
			value = "false"
		}
		definitions[strings.ToLower(match[2])] = glslDef{
			marker:  marker,
			name:    match[2],
			value:   value,
			boolean: boolean,
		}
		defineMarkers[match[0]] = marker
	}
	source = shaderDefinePattern.ReplaceAllStringFunc(source, func(s string) string {
		return defineMarkers[s]
	})

	versionEnd := 0
	if loc := shaderVersionPattern.FindStringIndex(source); loc != nil {
		versionEnd = loc[1]
	}

	return &program{
		definitions:    definitions,
		name:           name,
		stage:          stage,
		sourceTemplate: source,
		versionEnd:     versionEnd,
	}
}

func (prog *program) Name() string {
	return prog.name
}

func (prog *program) Compile() error {
	return prog.CompileWith(nil)
}

func (prog *program) CompileWith(defs map[string]string) error {
	source := prog.sourceTemplate

	for n, v := range defs {
		k := strings.ToLower(n)
		if def, ok := prog.definitions[k]; ok {
			source = strings.Replace(source, def.marker, def.line(v), 1)
		} else {
			source = source[:prog.versionEnd] + fmt.Sprintf("\n#define %v %v", n, v) + source[prog.versionEnd:]
		}
	}

	for _, def := range prog.definitions {
		source = strings.Replace(source, def.marker, def.line(def.value), 1)
	}

	cached := false
	var id uint32
	if ok, buf, format := ShaderCache.Get(source); ok {
		id = gl.CreateProgram()
		gl.ProgramParameteri(id, gl.PROGRAM_SEPARABLE, gl.TRUE)
		gl.ProgramBinary(id, format, Pointer(buf), int32(len(buf)))
		cached = true
	} else {
		cStrs, free := gl.Strs(source + "\x00")
		id = gl.CreateShaderProgramv(uint32(prog.stage), 1, cStrs)
		free()
	}

	var ok int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &ok)
	if ok == gl.FALSE && cached {
		// stale binary, rebuild from source
		gl.DeleteProgram(id)
		cStrs, free := gl.Strs(source + "\x00")
		id = gl.CreateShaderProgramv(uint32(prog.stage), 1, cStrs)
		free()
		cached = false
		gl.GetProgramiv(id, gl.LINK_STATUS, &ok)
	}
	if ok == gl.FALSE {
		infoLog := readProgramInfoLog(id)
		gl.DeleteProgram(id)
		return fmt.Errorf("failed to link %v shader, log: %v", prog.name, infoLog)
	}

	prog.glId = id
	prog.sourceLive = source
	prog.uniformLocations = map[string]int32{}

	if !cached {
		ShaderCache.Put(source, prog)
	}

	return nil
}

func (def glslDef) line(value string) string {
	sub := fmt.Sprintf("#define %v %v", def.name, value)
	if def.boolean {
		sub = fmt.Sprintf("#define %v", def.name)
	}
	if def.boolean && value == "false" {
		return "// " + sub
	}
	return sub
}

func (prog *program) Source() string {
	return prog.sourceLive
}

func (prog *program) Id() uint32 {
	return prog.glId
}

func (prog *program) Delete() {
	gl.DeleteProgram(prog.glId)
	prog.glId = 0
}

func readProgramInfoLog(id uint32) string {
	var logLength int32
	gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)

	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (prog *program) GetUniformLocation(name string) int32 {
	if location, ok := prog.uniformLocations[name]; ok {
		return location
	}

	location := gl.GetUniformLocation(prog.glId, gl.Str(name+"\x00"))
	prog.uniformLocations[name] = location

	if location == -1 {
		liblog.Debugf("%v shader: could not get location of %q", prog.name, name)
	}

	return location
}

// BindUniformBlock assigns the named uniform block to a binding point.
// It reports false when the stage does not declare the block.
func (prog *program) BindUniformBlock(name string, binding uint32) bool {
	index := gl.GetUniformBlockIndex(prog.glId, gl.Str(name+"\x00"))
	if index == gl.INVALID_INDEX {
		return false
	}
	gl.UniformBlockBinding(prog.glId, index, binding)
	return true
}

func (prog *program) SetUniform(name string, value any) {
	prog.SetUniformAt(prog.GetUniformLocation(name), value)
}

func (prog *program) SetUniformAt(location int32, value any) {
	if location == -1 {
		return
	}
	setProgramUniformAny(prog.glId, location, value)
}

func setProgramUniformAny(prog uint32, location int32, value any) {
	for refVal := reflect.ValueOf(value); refVal.Kind() == reflect.Ptr; refVal = reflect.ValueOf(value) {
		value = refVal.Elem().Interface()
	}

	switch v := value.(type) {
	case float32:
		gl.ProgramUniform1f(prog, location, v)
	case float64:
		gl.ProgramUniform1f(prog, location, float32(v))
	case int:
		gl.ProgramUniform1i(prog, location, int32(v))
	case int32:
		gl.ProgramUniform1i(prog, location, v)
	case uint32:
		gl.ProgramUniform1ui(prog, location, v)
	case bool:
		if v {
			gl.ProgramUniform1i(prog, location, 1)
		} else {
			gl.ProgramUniform1i(prog, location, 0)
		}
	case mgl32.Vec2:
		gl.ProgramUniform2f(prog, location, v.X(), v.Y())
	case mgl32.Vec3:
		gl.ProgramUniform3f(prog, location, v.X(), v.Y(), v.Z())
	case mgl32.Vec4:
		gl.ProgramUniform4f(prog, location, v.X(), v.Y(), v.Z(), v.W())
	case mgl32.Mat3:
		gl.ProgramUniformMatrix3fv(prog, location, 1, false, &v[0])
	case mgl32.Mat4:
		gl.ProgramUniformMatrix4fv(prog, location, 1, false, &v[0])
	default:
		panic(fmt.Sprintf("unsupported uniform type %T", value))
	}
}
