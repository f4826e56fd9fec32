package scene

import (
	"fmt"
	"strings"

	"github.com/achilleasa/nori-export/asset/material"
	"github.com/achilleasa/nori-export/types"
)

// NodeKind tags the payload carried by a scene graph node.
type NodeKind int

const (
	KindGroup NodeKind = iota
	KindCamera
	KindMesh
	KindLight
)

// Lookup node kind by its name. "empty" is accepted as an alias for groups.
func NodeKindFromName(name string) (NodeKind, error) {
	switch strings.ToLower(name) {
	case "group", "empty":
		return KindGroup, nil
	case "camera":
		return KindCamera, nil
	case "mesh":
		return KindMesh, nil
	case "light", "lamp":
		return KindLight, nil
	}

	return KindGroup, fmt.Errorf("scene: unknown node type %q", name)
}

func (k NodeKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindCamera:
		return "camera"
	case KindMesh:
		return "mesh"
	case KindLight:
		return "light"
	}
	return "invalid"
}

// LightType enumerates the light sources a host may define. Only point
// lights can be represented in the exported scene.
type LightType int

const (
	LightPoint LightType = iota
	LightSpot
	LightSun
	LightArea
	LightHemi
)

// Lookup light type by its name.
func LightTypeFromName(name string) (LightType, error) {
	switch strings.ToLower(name) {
	case "point", "":
		return LightPoint, nil
	case "spot":
		return LightSpot, nil
	case "sun":
		return LightSun, nil
	case "area":
		return LightArea, nil
	case "hemi":
		return LightHemi, nil
	}

	return LightPoint, fmt.Errorf("scene: unknown light type %q", name)
}

func (t LightType) String() string {
	switch t {
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	case LightSun:
		return "sun"
	case LightArea:
		return "area"
	case LightHemi:
		return "hemi"
	}
	return "invalid"
}

// Camera settings.
type Camera struct {
	// Field of view in radians.
	FOV float32

	NearClip float32
	FarClip  float32
}

// A light source. Its position is the translation of the owning node's
// world transform.
type Light struct {
	Type LightType
}

// A material slot.
type Material struct {
	Name   string
	BSDF   material.BSDFType
	Albedo types.Vec3
}

// A polygon referencing mesh vertices by their 0-based index.
type Face struct {
	Indices []int

	// Face normal as reported by the host. May be zero if unknown.
	Normal types.Vec3

	// Index into the owning mesh material slots.
	Material int
}

// Mesh geometry and its material slots.
type Mesh struct {
	Vertices []types.Vec3

	// Optional per-vertex attributes.
	Normals []types.Vec3
	UVs     []types.Vec2

	Faces     []Face
	Materials []*Material
}

// Returns true if the mesh defines one normal per vertex.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) != 0 && len(m.Normals) == len(m.Vertices)
}

// Returns true if the mesh defines one uv coordinate per vertex.
func (m *Mesh) HasUVs() bool {
	return len(m.UVs) != 0 && len(m.UVs) == len(m.Vertices)
}

// Returns the host supplied normal for a face. If the host did not supply one,
// the normal is estimated from the polygon vertices using Newell's method.
func (m *Mesh) FaceNormal(f Face) types.Vec3 {
	if !f.Normal.IsZero() {
		return f.Normal
	}

	var n types.Vec3
	for i := range f.Indices {
		cur := m.Vertices[f.Indices[i]]
		next := m.Vertices[f.Indices[(i+1)%len(f.Indices)]]
		n[0] += (cur[1] - next[1]) * (cur[2] + next[2])
		n[1] += (cur[2] - next[2]) * (cur[0] + next[0])
		n[2] += (cur[0] - next[0]) * (cur[1] + next[1])
	}
	return n.Normalize()
}

// A scene graph node. Exactly one of the Camera, Mesh and Light payloads is
// set depending on Kind; group nodes carry none.
type Node struct {
	Kind NodeKind
	Name string

	// World transformation.
	World types.Mat4

	Parent   *Node
	Children []*Node

	Camera *Camera
	Mesh   *Mesh
	Light  *Light
}

// Create a new node with an identity world transform and an empty payload
// matching its kind.
func NewNode(kind NodeKind, name string) *Node {
	n := &Node{
		Kind:  kind,
		Name:  name,
		World: types.Ident4(),
	}

	switch kind {
	case KindCamera:
		n.Camera = &Camera{}
	case KindMesh:
		n.Mesh = &Mesh{}
	case KindLight:
		n.Light = &Light{}
	}
	return n
}

// Attach a child node.
func (n *Node) AddChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// Get the world-space node position.
func (n *Node) Position() types.Vec3 {
	return n.World.Translation()
}

// Render settings that control the exported frame size.
type RenderSettings struct {
	ResolutionX int
	ResolutionY int

	// Resolution scale in percent.
	Percentage int
}

// Get the scaled frame dimensions.
func (r RenderSettings) FrameSize() (int, int) {
	percent := float64(r.Percentage) / 100.0
	return int(float64(r.ResolutionX) * percent), int(float64(r.ResolutionY) * percent)
}

// A scene graph.
type Scene struct {
	// Top-level nodes in traversal order.
	Roots []*Node

	Render RenderSettings
}

// Create a new empty scene.
func NewScene() *Scene {
	return &Scene{
		Roots: make([]*Node, 0),
		Render: RenderSettings{
			ResolutionX: 1920,
			ResolutionY: 1080,
			Percentage:  50,
		},
	}
}

// Append a top-level node.
func (sc *Scene) AddRoot(n *Node) {
	n.Parent = nil
	sc.Roots = append(sc.Roots, n)
}

// Visit all nodes depth-first, pre-order.
func (sc *Scene) Walk(fn func(n *Node)) {
	var visit func(n *Node)
	visit = func(n *Node) {
		fn(n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, n := range sc.Roots {
		visit(n)
	}
}

// Get all scene nodes in traversal order.
func (sc *Scene) Objects() []*Node {
	out := make([]*Node, 0)
	sc.Walk(func(n *Node) {
		out = append(out, n)
	})
	return out
}

// Get all scene nodes of a particular kind in traversal order.
func (sc *Scene) Find(kind NodeKind) []*Node {
	out := make([]*Node, 0)
	for _, n := range sc.Objects() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
