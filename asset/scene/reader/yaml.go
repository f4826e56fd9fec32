package reader

import (
	"fmt"
	"math"
	"time"

	"github.com/achilleasa/nori-export/asset"
	"github.com/achilleasa/nori-export/asset/material"
	"github.com/achilleasa/nori-export/asset/scene"
	"github.com/achilleasa/nori-export/log"
	"github.com/achilleasa/nori-export/types"
	"gopkg.in/yaml.v3"
)

// Camera defaults match a 35mm lens.
const (
	defaultCameraFOV  float32 = 0.857556
	defaultCameraNear float32 = 0.1
	defaultCameraFar  float32 = 100
)

type yamlScene struct {
	Render  *yamlRender `yaml:"render"`
	Objects []*yamlNode `yaml:"objects"`
}

type yamlRender struct {
	ResolutionX int `yaml:"resolution_x"`
	ResolutionY int `yaml:"resolution_y"`
	Percentage  int `yaml:"percentage"`
}

type yamlNode struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`

	// Local transformation. Either a row-major matrix or a combination of
	// location, euler rotation (degrees) and scale.
	Matrix   []float32 `yaml:"matrix"`
	Location []float32 `yaml:"location"`
	Rotation []float32 `yaml:"rotation"`
	Scale    []float32 `yaml:"scale"`

	Camera *yamlCamera `yaml:"camera"`
	Light  *yamlLight  `yaml:"light"`
	Mesh   *yamlMesh   `yaml:"mesh"`

	Children []*yamlNode `yaml:"children"`
}

type yamlCamera struct {
	// Field of view in radians; FOVDegrees takes precedence if set.
	FOV        *float32 `yaml:"fov"`
	FOVDegrees *float32 `yaml:"fov_degrees"`
	Near       *float32 `yaml:"near"`
	Far        *float32 `yaml:"far"`
}

type yamlLight struct {
	Type string `yaml:"type"`
}

type yamlMesh struct {
	// Load geometry from a wavefront file relative to the scene file. The
	// file is Y-up; its geometry is rotated into the Z-up scene frame the
	// same way a wavefront scene file is.
	File string `yaml:"file"`

	Vertices  [][]float32    `yaml:"vertices"`
	Normals   [][]float32    `yaml:"normals"`
	UVs       [][]float32    `yaml:"uvs"`
	Faces     []yamlFace     `yaml:"faces"`
	Materials []yamlMaterial `yaml:"materials"`
}

type yamlFace struct {
	Indices  []int     `yaml:"v"`
	Normal   []float32 `yaml:"normal"`
	Material int       `yaml:"material"`
}

// Faces may be written either as a plain index list or as a mapping.
func (f *yamlFace) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		return value.Decode(&f.Indices)
	}

	type plain yamlFace
	return value.Decode((*plain)(f))
}

type yamlMaterial struct {
	Name   string    `yaml:"name"`
	BSDF   string    `yaml:"bsdf"`
	Albedo []float32 `yaml:"albedo"`
}

type yamlSceneReader struct {
	logger log.Logger

	// The resource being parsed; referenced mesh files resolve relative to it.
	res *asset.Resource
}

// Create a new yaml scene reader.
func newYamlReader() *yamlSceneReader {
	return &yamlSceneReader{
		logger: log.New("yaml scene reader"),
	}
}

// Read scene definition.
func (r *yamlSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()
	r.res = sceneRes

	var doc yamlScene
	if err := yaml.NewDecoder(sceneRes).Decode(&doc); err != nil {
		return nil, fmt.Errorf("[%s] error: %w", sceneRes.Path(), err)
	}

	sc := scene.NewScene()
	if doc.Render != nil {
		if doc.Render.ResolutionX > 0 {
			sc.Render.ResolutionX = doc.Render.ResolutionX
		}
		if doc.Render.ResolutionY > 0 {
			sc.Render.ResolutionY = doc.Render.ResolutionY
		}
		if doc.Render.Percentage > 0 {
			sc.Render.Percentage = doc.Render.Percentage
		}
	}

	for index, yn := range doc.Objects {
		node, err := r.decodeNode(yn, types.Ident4(), fmt.Sprintf("objects[%d]", index))
		if err != nil {
			return nil, fmt.Errorf("[%s] error: %w", sceneRes.Path(), err)
		}
		sc.AddRoot(node)
	}

	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return sc, nil
}

// Decode a node and its children. The world transform of the node is the
// parent world transform combined with the node's local transform.
func (r *yamlSceneReader) decodeNode(yn *yamlNode, parentWorld types.Mat4, path string) (*scene.Node, error) {
	kind, err := scene.NodeKindFromName(yn.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	name := yn.Name
	if name == "" {
		name = fmt.Sprintf("%s.%s", kind, path)
	}
	node := scene.NewNode(kind, name)

	local, err := yn.localTransform()
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", path, name, err)
	}
	node.World = parentWorld.Mul4(local)

	switch kind {
	case scene.KindCamera:
		yn.decodeCamera(node.Camera)
	case scene.KindLight:
		if yn.Light != nil {
			node.Light.Type, err = scene.LightTypeFromName(yn.Light.Type)
		}
	case scene.KindMesh:
		if yn.Mesh == nil {
			return nil, fmt.Errorf("%s (%s): mesh node without mesh data", path, name)
		}
		node.Mesh, err = r.decodeMesh(yn.Mesh)
	}
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", path, name, err)
	}

	for index, child := range yn.Children {
		childNode, err := r.decodeNode(child, node.World, fmt.Sprintf("%s.children[%d]", path, index))
		if err != nil {
			return nil, err
		}
		node.AddChild(childNode)
	}

	return node, nil
}

// Build the local node transformation: M = T * R * S.
func (yn *yamlNode) localTransform() (types.Mat4, error) {
	if len(yn.Matrix) != 0 {
		return types.Mat4FromSlice(yn.Matrix)
	}

	translation, err := vec3Or(yn.Location, types.Vec3{0, 0, 0}, "location")
	if err != nil {
		return types.Mat4{}, err
	}
	rotation, err := vec3Or(yn.Rotation, types.Vec3{0, 0, 0}, "rotation")
	if err != nil {
		return types.Mat4{}, err
	}
	scale, err := vec3Or(yn.Scale, types.Vec3{1, 1, 1}, "scale")
	if err != nil {
		return types.Mat4{}, err
	}

	rotation = rotation.Mul(math.Pi / 180.0)
	rotMat := types.QuatFromEuler(rotation).Mat4()
	return types.Translate4(translation).Mul4(rotMat.Mul4(types.Scale4(scale))), nil
}

func (yn *yamlNode) decodeCamera(cam *scene.Camera) {
	cam.FOV = defaultCameraFOV
	cam.NearClip = defaultCameraNear
	cam.FarClip = defaultCameraFar
	if yn.Camera == nil {
		return
	}

	if yn.Camera.FOVDegrees != nil {
		cam.FOV = *yn.Camera.FOVDegrees * math.Pi / 180.0
	} else if yn.Camera.FOV != nil {
		cam.FOV = *yn.Camera.FOV
	}
	if yn.Camera.Near != nil {
		cam.NearClip = *yn.Camera.Near
	}
	if yn.Camera.Far != nil {
		cam.FarClip = *yn.Camera.Far
	}
}

func (r *yamlSceneReader) decodeMesh(ym *yamlMesh) (*scene.Mesh, error) {
	mesh := &scene.Mesh{}

	if ym.File != "" {
		res, err := asset.NewResource(ym.File, r.res)
		if err != nil {
			return nil, err
		}
		defer res.Close()

		mesh, err = readWavefrontMesh(res)
		if err != nil {
			return nil, err
		}
		r.logger.Infof("loaded %d vertices from %s", len(mesh.Vertices), res.Name())
	}

	for index, v := range ym.Vertices {
		vec, err := vec3Or(v, types.Vec3{}, fmt.Sprintf("vertices[%d]", index))
		if err != nil {
			return nil, err
		}
		mesh.Vertices = append(mesh.Vertices, vec)
	}
	for index, n := range ym.Normals {
		vec, err := vec3Or(n, types.Vec3{}, fmt.Sprintf("normals[%d]", index))
		if err != nil {
			return nil, err
		}
		mesh.Normals = append(mesh.Normals, vec)
	}
	for index, uv := range ym.UVs {
		if len(uv) != 2 {
			return nil, fmt.Errorf("uvs[%d]: expected 2 values; got %d", index, len(uv))
		}
		mesh.UVs = append(mesh.UVs, types.Vec2{uv[0], uv[1]})
	}

	for index, yf := range ym.Faces {
		face := scene.Face{
			Indices:  yf.Indices,
			Material: yf.Material,
		}
		for _, vIndex := range yf.Indices {
			if vIndex < 0 || vIndex >= len(mesh.Vertices) {
				return nil, fmt.Errorf("faces[%d]: vertex index %d out of bounds; mesh has %d vertices", index, vIndex, len(mesh.Vertices))
			}
		}
		if len(yf.Normal) != 0 {
			normal, err := vec3Or(yf.Normal, types.Vec3{}, fmt.Sprintf("faces[%d].normal", index))
			if err != nil {
				return nil, err
			}
			face.Normal = normal
		}
		mesh.Faces = append(mesh.Faces, face)
	}

	for index, ymat := range ym.Materials {
		bsdf, err := material.BSDFTypeFromName(ymat.BSDF)
		if err != nil {
			return nil, fmt.Errorf("materials[%d]: %w", index, err)
		}
		albedo, err := vec3Or(ymat.Albedo, material.DefaultAlbedo, fmt.Sprintf("materials[%d].albedo", index))
		if err != nil {
			return nil, err
		}
		mesh.Materials = append(mesh.Materials, &scene.Material{
			Name:   ymat.Name,
			BSDF:   bsdf,
			Albedo: albedo,
		})
	}

	return mesh, nil
}

// Convert a value list into a Vec3 or return def if the list is empty.
func vec3Or(values []float32, def types.Vec3, field string) (types.Vec3, error) {
	if len(values) == 0 {
		return def, nil
	}
	if len(values) != 3 {
		return types.Vec3{}, fmt.Errorf("%s: expected 3 values; got %d", field, len(values))
	}
	return types.Vec3{values[0], values[1], values[2]}, nil
}
