package libscn

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"deferred-gl/liblog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspunctual"
	"github.com/qmuntal/gltf/modeler"
)

type gltfLoader struct {
	doc      *gltf.Document
	dir      string
	images   map[int]image.Image
	lights   lightspunctual.Lights
	meshes   map[int][]Primitive
	visiting map[int]bool
}

// LoadGLTF reads a .gltf or .glb file into a scene graph.
// A primitive without a material is an error.
func LoadGLTF(path string) (*Graph, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open gltf %q: %w", path, err)
	}

	loader := &gltfLoader{
		doc:      doc,
		dir:      filepath.Dir(path),
		images:   map[int]image.Image{},
		meshes:   map[int][]Primitive{},
		visiting: map[int]bool{},
	}

	if ext, ok := doc.Extensions[lightspunctual.ExtensionName]; ok {
		lights, ok := ext.(lightspunctual.Lights)
		if !ok {
			return nil, fmt.Errorf("could not read lights of %q: unexpected %T", path, ext)
		}
		loader.lights = lights
	}

	roots := loader.rootNodes()
	graph := &Graph{Roots: make([]*Node, 0, len(roots))}
	for _, idx := range roots {
		node, err := loader.node(idx)
		if err != nil {
			return nil, fmt.Errorf("could not load gltf %q: %w", path, err)
		}
		graph.Roots = append(graph.Roots, node)
	}

	liblog.Debugf("Loaded gltf %q with %d root nodes", path, len(graph.Roots))
	return graph, nil
}

func (l *gltfLoader) rootNodes() []int {
	if l.doc.Scene != nil && *l.doc.Scene < len(l.doc.Scenes) {
		return l.doc.Scenes[*l.doc.Scene].Nodes
	}
	if len(l.doc.Scenes) > 0 {
		return l.doc.Scenes[0].Nodes
	}

	hasParent := make([]bool, len(l.doc.Nodes))
	for _, gn := range l.doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range l.doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (l *gltfLoader) node(idx int) (*Node, error) {
	if idx < 0 || idx >= len(l.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if l.visiting[idx] {
		return nil, fmt.Errorf("node %d is its own ancestor", idx)
	}
	l.visiting[idx] = true
	defer delete(l.visiting, idx)

	gn := l.doc.Nodes[idx]
	node := &Node{
		Name:      gn.Name,
		Transform: nodeTransform(gn),
		Camera:    gn.Camera != nil,
	}
	if node.Name == "" {
		node.Name = fmt.Sprintf("node_%d", idx)
	}

	if gn.Mesh != nil {
		prims, err := l.mesh(*gn.Mesh)
		if err != nil {
			return nil, fmt.Errorf("mesh of %q: %w", node.Name, err)
		}
		node.Primitives = prims
	}

	light, err := l.nodeLight(gn)
	if err != nil {
		return nil, fmt.Errorf("light of %q: %w", node.Name, err)
	}
	node.Light = light

	for _, c := range gn.Children {
		child, err := l.node(c)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}

func nodeTransform(gn *gltf.Node) mgl32.Mat4 {
	identity := [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	if m := gn.MatrixOrDefault(); m != identity {
		var result mgl32.Mat4
		for i := range m {
			result[i] = float32(m[i])
		}
		return result
	}

	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	rot := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

func (l *gltfLoader) nodeLight(gn *gltf.Node) (*Light, error) {
	ext, ok := gn.Extensions[lightspunctual.ExtensionName]
	if !ok {
		return nil, nil
	}
	idx, ok := ext.(lightspunctual.LightIndex)
	if !ok {
		return nil, fmt.Errorf("unexpected light reference %T", ext)
	}
	if int(idx) < 0 || int(idx) >= len(l.lights) || l.lights[idx] == nil {
		return nil, fmt.Errorf("light index %d out of range", idx)
	}
	return convertLight(l.lights[idx]), nil
}

// convertLight returns nil for light types the renderer has no slot for.
func convertLight(src *lightspunctual.Light) *Light {
	color := src.ColorOrDefault()
	light := &Light{
		Color:     mgl32.Vec3{float32(color[0]), float32(color[1]), float32(color[2])},
		Intensity: float32(src.IntensityOrDefault()),
	}
	if src.Range != nil && !math.IsInf(*src.Range, 0) {
		light.Range = float32(*src.Range)
	}
	switch src.Type {
	case lightspunctual.TypeDirectional:
		light.Kind = DirectionalLightKind
	case lightspunctual.TypePoint:
		light.Kind = PointLightKind
	default:
		liblog.Warnf("Skipping unsupported %s light %q", src.Type, src.Name)
		return nil
	}
	return light
}

func (l *gltfLoader) mesh(idx int) ([]Primitive, error) {
	if prims, ok := l.meshes[idx]; ok {
		return prims, nil
	}
	if idx < 0 || idx >= len(l.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", idx)
	}

	gm := l.doc.Meshes[idx]
	prims := make([]Primitive, 0, len(gm.Primitives))
	for p, prim := range gm.Primitives {
		if prim.Material == nil {
			return nil, fmt.Errorf("primitive %d of %q does not have a material", p, gm.Name)
		}
		mesh, err := l.primitiveMesh(gm.Name, p, prim)
		if err != nil {
			return nil, fmt.Errorf("primitive %d of %q: %w", p, gm.Name, err)
		}
		mat, err := l.material(*prim.Material)
		if err != nil {
			return nil, fmt.Errorf("material of primitive %d of %q: %w", p, gm.Name, err)
		}
		prims = append(prims, Primitive{Mesh: mesh, Material: mat})
	}

	l.meshes[idx] = prims
	return prims, nil
}

func (l *gltfLoader) primitiveMesh(name string, p int, prim *gltf.Primitive) (*Mesh, error) {
	doc := l.doc
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("texture coordinates: %w", err)
		}
	}

	mesh := &Mesh{
		Name:     fmt.Sprintf("%s_%d", name, p),
		Vertices: make([]Vertex, len(positions)),
	}
	for i, pos := range positions {
		v := Vertex{Position: mgl32.Vec3(pos)}
		if i < len(normals) {
			v.Normal = mgl32.Vec3(normals[i])
		}
		if i < len(uvs) {
			// gltf has the uv origin at the top left
			v.Uv = mgl32.Vec2{uvs[i][0], 1 - uvs[i][1]}
		}
		mesh.Vertices[i] = v
	}

	if prim.Indices != nil {
		if mesh.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		mesh.Indices = make([]uint32, len(positions))
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}

	mesh.ComputeTangents()
	return mesh, nil
}

func (l *gltfLoader) material(idx int) (*MaterialDesc, error) {
	if idx < 0 || idx >= len(l.doc.Materials) {
		return nil, fmt.Errorf("material index %d out of range", idx)
	}
	gm := l.doc.Materials[idx]

	mat := &MaterialDesc{
		Name:           gm.Name,
		BaseColor:      mgl32.Vec4{1, 1, 1, 1},
		Metallic:       1,
		Roughness:      1,
		OcclusionScale: 1,
		Emissive: mgl32.Vec3{
			float32(gm.EmissiveFactor[0]),
			float32(gm.EmissiveFactor[1]),
			float32(gm.EmissiveFactor[2]),
		},
	}

	var err error
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		mat.BaseColor = mgl32.Vec4{float32(cf[0]), float32(cf[1]), float32(cf[2]), float32(cf[3])}
		mat.Metallic = float32(pbr.MetallicFactorOrDefault())
		mat.Roughness = float32(pbr.RoughnessFactorOrDefault())

		if pbr.BaseColorTexture != nil {
			if mat.BaseColorTexture, err = l.texture(pbr.BaseColorTexture.Index); err != nil {
				return nil, err
			}
		}
		if pbr.MetallicRoughnessTexture != nil {
			if mat.OrmTexture, err = l.texture(pbr.MetallicRoughnessTexture.Index); err != nil {
				return nil, err
			}
		}
	}

	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		if mat.NormalTexture, err = l.texture(*gm.NormalTexture.Index); err != nil {
			return nil, err
		}
		mat.NormalScale = float32(gm.NormalTexture.ScaleOrDefault())
	}
	if gm.OcclusionTexture != nil && gm.OcclusionTexture.Index != nil {
		mat.OcclusionScale = float32(gm.OcclusionTexture.StrengthOrDefault())
	}
	if gm.EmissiveTexture != nil {
		if mat.EmissiveTexture, err = l.texture(gm.EmissiveTexture.Index); err != nil {
			return nil, err
		}
	}

	return mat, nil
}

func (l *gltfLoader) texture(idx int) (image.Image, error) {
	if idx < 0 || idx >= len(l.doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", idx)
	}
	gt := l.doc.Textures[idx]
	if gt.Source == nil {
		return nil, nil
	}
	if img, ok := l.images[*gt.Source]; ok {
		return img, nil
	}

	gi := l.doc.Images[*gt.Source]
	var raw []byte
	var err error
	switch {
	case gi.BufferView != nil:
		raw, err = modeler.ReadBufferView(l.doc, l.doc.BufferViews[*gi.BufferView])
	case gi.IsEmbeddedResource():
		raw, err = gi.MarshalData()
	case gi.URI != "":
		raw, err = os.ReadFile(filepath.Join(l.dir, gi.URI))
	default:
		err = fmt.Errorf("image %d has no data", *gt.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read image %d: %w", *gt.Source, err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("could not decode image %d: %w", *gt.Source, err)
	}
	l.images[*gt.Source] = img
	return img, nil
}
