package ibl

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"deferred-gl/effects"
	"deferred-gl/libgl"
	"deferred-gl/liblog"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// FaceRenderer draws the scene into a square 2D texture.
type FaceRenderer interface {
	RenderFace(target libgl.UnboundTexture, view, projection mgl32.Mat4) error
}

type FaceRendererFunc func(target libgl.UnboundTexture, view, projection mgl32.Mat4) error

func (f FaceRendererFunc) RenderFace(target libgl.UnboundTexture, view, projection mgl32.Mat4) error {
	return f(target, view, projection)
}

// LocalEnvironment receives the probe picked by Select.
type LocalEnvironment interface {
	EnableLocalEnv(position mgl32.Vec3, radius float32, cubemap libgl.UnboundTexture)
	DisableLocalEnv()
}

type Probe struct {
	Position mgl32.Vec3
	Cubemap  libgl.UnboundTexture
}

var ProbeProjection = mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)

var faceOrientations = [6]mgl32.Mat4{
	mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}),
	mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}),
	mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}),
	mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}),
	mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}),
	mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}),
}

// ProbeViews are the six camera matrices of a probe at pos in face order.
func ProbeViews(pos mgl32.Vec3) [6]mgl32.Mat4 {
	translation := mgl32.Translate3D(-pos.X(), -pos.Y(), -pos.Z())
	var views [6]mgl32.Mat4
	for i, orientation := range faceOrientations {
		views[i] = orientation.Mul4(translation)
	}
	return views
}

// HashProbeKey quantizes pos/radius + radius to integer cells and hashes the cell.
func HashProbeKey(radius float32, pos mgl32.Vec3) uint64 {
	var buf [24]byte
	for i := 0; i < 3; i++ {
		cell := int64(math32.Floor(pos[i]/radius + radius))
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(cell))
	}
	h := fnv.New64a()
	h.Write(buf[:])
	return h.Sum64()
}

// probeBackend owns the textures of a capture and moves rendered faces into
// the probe cube map.
type probeBackend interface {
	mipFilter
	newCubemap(resolution int, label string) libgl.UnboundTexture
	newScratch(resolution int) libgl.UnboundTexture
	// copyFace copies level 0 of scratch into level 0 of a cube face
	copyFace(scratch, cubemap libgl.UnboundTexture, face CubeMapFace) error
}

// ProbeSystem caches light probes by cell. Probes live until Release.
type ProbeSystem struct {
	Radius     float32
	Resolution int
	renderer   FaceRenderer
	backend    probeBackend
	probes     map[uint64]*Probe
}

func NewProbeSystem(radius float32, resolution int, renderer FaceRenderer, chain *effects.Chain) *ProbeSystem {
	return newProbeSystem(radius, resolution, renderer, NewConvolver(chain))
}

func newProbeSystem(radius float32, resolution int, renderer FaceRenderer, backend probeBackend) *ProbeSystem {
	return &ProbeSystem{
		Radius:     radius,
		Resolution: resolution,
		renderer:   renderer,
		backend:    backend,
		probes:     map[uint64]*Probe{},
	}
}

func (ps *ProbeSystem) Len() int {
	return len(ps.probes)
}

func (ps *ProbeSystem) Lookup(pos mgl32.Vec3) (*Probe, bool) {
	probe, ok := ps.probes[HashProbeKey(ps.Radius, pos)]
	return probe, ok
}

// Create captures and convolves a probe at pos. An existing probe in the
// same cell is returned unchanged.
func (ps *ProbeSystem) Create(pos mgl32.Vec3) (*Probe, error) {
	key := HashProbeKey(ps.Radius, pos)
	if probe, ok := ps.probes[key]; ok {
		return probe, nil
	}

	cubemap := ps.backend.newCubemap(ps.Resolution, fmt.Sprintf("probe %v", pos))
	scratch := ps.backend.newScratch(ps.Resolution)
	defer scratch.Delete()

	views := ProbeViews(pos)
	for face := CubeMapPositiveX; face <= CubeMapNegativeZ; face++ {
		if err := ps.captureFace(scratch, cubemap, face, views[face]); err != nil {
			cubemap.Delete()
			return nil, fmt.Errorf("could not create probe at %v: %w", pos, err)
		}
	}

	probe := &Probe{Position: pos, Cubemap: cubemap}
	ps.probes[key] = probe
	liblog.Debugf("created probe %d at %v", len(ps.probes), pos)
	return probe, nil
}

func (ps *ProbeSystem) captureFace(scratch, cubemap libgl.UnboundTexture, face CubeMapFace, view mgl32.Mat4) error {
	scratch.MipmapLevels(0, 1000)
	if err := ps.renderer.RenderFace(scratch, view, ProbeProjection); err != nil {
		return err
	}
	if err := ps.backend.copyFace(scratch, cubemap, face); err != nil {
		return err
	}
	return convolveFace(ps.backend, scratch, cubemap, face, ps.Resolution)
}

// Select enables the probe of the cell containing pos as local environment,
// or disables the local environment when the cell has none.
func (ps *ProbeSystem) Select(pos mgl32.Vec3, env LocalEnvironment) bool {
	probe, ok := ps.Lookup(pos)
	if !ok {
		env.DisableLocalEnv()
		return false
	}
	env.EnableLocalEnv(probe.Position, ps.Radius, probe.Cubemap)
	return true
}

func (ps *ProbeSystem) Release() {
	for key, probe := range ps.probes {
		probe.Cubemap.Delete()
		delete(ps.probes, key)
	}
}
