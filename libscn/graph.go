package libscn

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/slices"
)

type LightKind int

const (
	PointLightKind = LightKind(iota)
	DirectionalLightKind
)

type Light struct {
	Kind      LightKind
	Color     mgl32.Vec3
	Intensity float32
	// only meaningful for point lights, zero means unbounded
	Range float32
}

// MaterialDesc is the asset side description of a metallic-roughness material.
// Nil textures are replaced by neutral defaults when the object is built.
type MaterialDesc struct {
	Name           string
	BaseColor      mgl32.Vec4
	Metallic       float32
	Roughness      float32
	NormalScale    float32
	OcclusionScale float32
	Emissive       mgl32.Vec3

	BaseColorTexture image.Image
	NormalTexture    image.Image
	EmissiveTexture  image.Image
	OrmTexture       image.Image
}

type Primitive struct {
	Mesh     *Mesh
	Material *MaterialDesc
}

type Node struct {
	Name       string
	Transform  mgl32.Mat4
	Children   []*Node
	Primitives []Primitive
	Light      *Light
	Camera     bool
}

type Graph struct {
	Roots []*Node
}

type Object struct {
	Name     string
	World    mgl32.Mat4
	Mesh     *Mesh
	Material *MaterialDesc
}

type PointLight struct {
	Name     string
	Color    mgl32.Vec4
	Position mgl32.Vec3
	Range    float32
}

type DirLight struct {
	Name      string
	Color     mgl32.Vec4
	Direction mgl32.Vec3
}

type Camera struct {
	Name  string
	World mgl32.Mat4
}

// Aggregate is the flattened content of a graph in depth first, child order.
// The light colors carry the intensity in w.
type Aggregate struct {
	Objects     []Object
	PointLights []PointLight
	DirLights   []DirLight
	Cameras     []Camera
}

func (agg Aggregate) Camera(name string) (Camera, bool) {
	i := slices.IndexFunc(agg.Cameras, func(c Camera) bool { return c.Name == name })
	if i < 0 {
		return Camera{}, false
	}
	return agg.Cameras[i], true
}

type pending struct {
	node   *Node
	parent mgl32.Mat4
}

// Traverse walks the graph with an explicit stack. The graph is not modified.
func Traverse(g *Graph) Aggregate {
	agg := Aggregate{}
	if g == nil {
		return agg
	}

	stack := make([]pending, 0, len(g.Roots))
	for i := len(g.Roots) - 1; i >= 0; i-- {
		stack = append(stack, pending{g.Roots[i], mgl32.Ident4()})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.node == nil {
			continue
		}

		world := top.parent.Mul4(top.node.Transform)
		agg.collect(top.node, world)

		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, pending{top.node.Children[i], world})
		}
	}

	return agg
}

func (agg *Aggregate) collect(node *Node, world mgl32.Mat4) {
	for _, prim := range node.Primitives {
		agg.Objects = append(agg.Objects, Object{
			Name:     node.Name,
			World:    world,
			Mesh:     prim.Mesh,
			Material: prim.Material,
		})
	}

	if node.Light != nil {
		color := node.Light.Color.Vec4(node.Light.Intensity)
		switch node.Light.Kind {
		case DirectionalLightKind:
			dir := world.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
			if dir.Len() > 0 {
				dir = dir.Normalize()
			}
			agg.DirLights = append(agg.DirLights, DirLight{Name: node.Name, Color: color, Direction: dir})
		case PointLightKind:
			agg.PointLights = append(agg.PointLights, PointLight{
				Name:     node.Name,
				Color:    color,
				Position: world.Col(3).Vec3(),
				Range:    node.Light.Range,
			})
		}
	}

	if node.Camera {
		agg.Cameras = append(agg.Cameras, Camera{Name: node.Name, World: world})
	}
}
