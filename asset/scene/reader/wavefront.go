package reader

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/nori-export/asset"
	"github.com/achilleasa/nori-export/asset/material"
	"github.com/achilleasa/nori-export/asset/scene"
	"github.com/achilleasa/nori-export/log"
	"github.com/achilleasa/nori-export/types"
)

type wavefrontMaterial struct {
	Name string

	// Diffuse/Albedo color.
	Kd types.Vec3

	// Specular color.
	Ks types.Vec3

	// Illumination model.
	Illum int
}

// Convert to a scene material. Materials with a specular component (or
// illumination model 3, raytraced reflection) are treated as mirrors.
func (wf *wavefrontMaterial) sceneMaterial() *scene.Material {
	mat := &scene.Material{
		Name:   wf.Name,
		BSDF:   material.BSDFDiffuse,
		Albedo: wf.Kd,
	}
	if wf.Ks.MaxComponent() > 0.0 || wf.Illum == 3 {
		mat.BSDF = material.BSDFMirror
	}
	return mat
}

// A wavefront object ("o" or "g") that is being assembled into a mesh node.
type wavefrontObject struct {
	node *scene.Node

	// Wavefront faces index positions, normals and uvs independently. Each
	// unique (vertex, uv, normal) triplet becomes a single mesh vertex.
	vertexMap map[[3]int]int

	// Material name to mesh slot index.
	slotMap map[string]int

	// Set if at least one face corner omits the channel.
	missingNormals bool
	missingUVs     bool

	// Faces that were parsed before any material was selected.
	unassigned []int
}

type wavefrontCamera struct {
	defined bool

	// Field of view in degrees.
	fov  float32
	eye  types.Vec3
	look types.Vec3
	up   types.Vec3
}

type wavefrontSceneReader struct {
	logger log.Logger

	// The assembled scene.
	scene *scene.Scene

	objects   []*wavefrontObject
	curObject *wavefrontObject

	// A map of material names to parsed wavefront materials
	matNameToIndex map[string]int

	// Currently selected material.
	curMaterial *wavefrontMaterial

	// Parsed wavefront materials.
	materials []*wavefrontMaterial

	// Light nodes in definition order.
	lights []*scene.Node

	camera wavefrontCamera

	// List of vertices, normals and uv coords.
	vertexList []types.Vec3
	normalList []types.Vec3
	uvList     []types.Vec2

	// An error stack that provides additional error information when
	// scene files include other files (models, mat libs e.t.c)
	errStack []string
}

// Create a new wavefront scene reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:         log.New("wavefront scene reader"),
		scene:          scene.NewScene(),
		objects:        make([]*wavefrontObject, 0),
		matNameToIndex: make(map[string]int, 0),
		lights:         make([]*scene.Node, 0),
		camera: wavefrontCamera{
			fov:  45.0,
			look: types.Vec3{0, 0, -1},
			up:   types.Vec3{0, 1, 0},
		},
		vertexList: make([]types.Vec3, 0),
		normalList: make([]types.Vec3, 0),
		uvList:     make([]types.Vec2, 0),
		errStack:   make([]string, 0),
	}
}

// Read scene definition. Wavefront files are Y-up; the returned graph uses
// the Z-up host convention so every node is placed under a Y-up to Z-up
// conversion.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	toHost := types.YUpToZUp4()
	if r.camera.defined {
		camNode := scene.NewNode(scene.KindCamera, "Camera")
		camNode.Camera.FOV = r.camera.fov * math.Pi / 180.0
		camNode.Camera.NearClip = 0.1
		camNode.Camera.FarClip = 1000
		camNode.World = toHost.Mul4(types.LookAt4(r.camera.eye, r.camera.look, r.camera.up))
		r.scene.AddRoot(camNode)
	}

	for _, light := range r.lights {
		light.World = toHost.Mul4(light.World)
		r.scene.AddRoot(light)
	}

	for _, obj := range r.objects {
		r.finalizeObject(obj)
		obj.node.World = toHost
		r.scene.AddRoot(obj.node)
	}

	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return r.scene, nil
}

// Read a wavefront file and merge all its objects into a single mesh. This
// is used by other readers that reference external geometry. Like Read, the
// Y-up file geometry is converted to the Z-up host convention.
func readWavefrontMesh(res *asset.Resource) (*scene.Mesh, error) {
	r := newWavefrontReader()
	err := r.parse(res)
	if err != nil {
		return nil, err
	}

	// Merge all objects into a single object
	merged := r.newObject("merged")
	unassigned := make([]int, 0)
	for _, obj := range r.objects {
		r.finalizeObject(obj)
		mesh := obj.node.Mesh
		vOffset := len(merged.node.Mesh.Vertices)
		slotOffset := len(merged.node.Mesh.Materials)
		merged.node.Mesh.Vertices = append(merged.node.Mesh.Vertices, mesh.Vertices...)
		merged.node.Mesh.Materials = append(merged.node.Mesh.Materials, mesh.Materials...)
		for _, face := range mesh.Faces {
			indices := make([]int, len(face.Indices))
			for i, index := range face.Indices {
				indices[i] = index + vOffset
			}
			if len(mesh.Materials) == 0 {
				unassigned = append(unassigned, len(merged.node.Mesh.Faces))
			}
			merged.node.Mesh.Faces = append(merged.node.Mesh.Faces, scene.Face{
				Indices:  indices,
				Normal:   face.Normal,
				Material: face.Material + slotOffset,
			})
		}

		// Channels survive only if every merged object provides them
		if mesh.HasNormals() && !merged.missingNormals {
			merged.node.Mesh.Normals = append(merged.node.Mesh.Normals, mesh.Normals...)
		} else {
			merged.missingNormals = true
		}
		if mesh.HasUVs() && !merged.missingUVs {
			merged.node.Mesh.UVs = append(merged.node.Mesh.UVs, mesh.UVs...)
		} else {
			merged.missingUVs = true
		}
	}

	// Faces of objects without materials share the default slot if any
	// other object contributed material slots.
	merged.unassigned = unassigned
	r.finalizeObject(merged)

	transformMesh(merged.node.Mesh, types.YUpToZUp4())
	return merged.node.Mesh, nil
}

// Apply a rigid transformation to mesh vertices and normals.
func transformMesh(mesh *scene.Mesh, m types.Mat4) {
	for i, v := range mesh.Vertices {
		mesh.Vertices[i] = m.Mul4x1(v.Vec4(1)).Vec3()
	}
	for i, n := range mesh.Normals {
		mesh.Normals[i] = m.Mul4x1(n.Vec4(0)).Vec3()
	}
	for i, f := range mesh.Faces {
		if !f.Normal.IsZero() {
			mesh.Faces[i].Normal = m.Mul4x1(f.Normal.Vec4(0)).Vec3()
		}
	}
}

// Drop partial vertex channels and assign a slot to faces without a material.
func (r *wavefrontSceneReader) finalizeObject(obj *wavefrontObject) {
	mesh := obj.node.Mesh
	if obj.missingNormals {
		mesh.Normals = nil
	}
	if obj.missingUVs {
		mesh.UVs = nil
	}

	if len(obj.unassigned) != 0 && len(mesh.Materials) != 0 {
		defaultSlot := len(mesh.Materials)
		mesh.Materials = append(mesh.Materials, r.defaultMaterial().sceneMaterial())
		for _, faceIndex := range obj.unassigned {
			mesh.Faces[faceIndex].Material = defaultSlot
		}
	}
	obj.unassigned = nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	}

	return fmt.Errorf("%s", errMsg)
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Get the default material used for faces that do not select one.
func (r *wavefrontSceneReader) defaultMaterial() *wavefrontMaterial {
	return &wavefrontMaterial{
		Name: "default",
		Kd:   material.DefaultWavefrontAlbedo,
	}
}

// Create a new object and make it current.
func (r *wavefrontSceneReader) newObject(name string) *wavefrontObject {
	obj := &wavefrontObject{
		node:      scene.NewNode(scene.KindMesh, name),
		vertexMap: make(map[[3]int]int),
		slotMap:   make(map[string]int),
	}
	r.curObject = obj
	return obj
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv/normal offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)
	relUvOffset := len(r.uvList)
	relNormalOffset := len(r.normalList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call", "mtllib":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}

			switch lineTokens[0] {
			case "call":
				err = r.parse(incRes)
			case "mtllib":
				err = r.parseMaterials(incRes)
			}
			incRes.Close()

			if err != nil {
				return err
			}
			r.popFrame()
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for 'usemtl'; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			// Lookup material
			matName := lineTokens[1]
			matIndex, exists := r.matNameToIndex[matName]
			if !exists {
				return r.emitError(res.Path(), lineNum, `undefined material with name "%s"`, matName)
			}

			// Activate material
			r.curMaterial = r.materials[matIndex]
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.normalList = append(r.normalList, v)
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.uvList = append(r.uvList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.verifyLastParsedObject()
			r.objects = append(r.objects, r.newObject(lineTokens[1]))
		case "f":
			// If no object has been defined create a default one
			if r.curObject == nil {
				r.objects = append(r.objects, r.newObject("default"))
			}

			err = r.parseFace(lineTokens, relVertexOffset, relUvOffset, relNormalOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "camera_fov":
			r.camera.fov, err = parseFloat32(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.camera.defined = true
		case "camera_eye":
			r.camera.eye, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.camera.defined = true
		case "camera_look":
			r.camera.look, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.camera.defined = true
		case "camera_up":
			r.camera.up, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.camera.defined = true
		case "light":
			light, err := r.parseLight(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.lights = append(r.lights, light)
		}
	}

	// Objects may span included files; only close them at the top level.
	if len(r.errStack) == 0 {
		r.verifyLastParsedObject()
	}
	return scanner.Err()
}

// Drop the last parsed object if it contains no faces.
func (r *wavefrontSceneReader) verifyLastParsedObject() {
	lastIndex := len(r.objects) - 1
	if lastIndex >= 0 && len(r.objects[lastIndex].node.Mesh.Faces) == 0 {
		r.logger.Warningf(`dropping mesh "%s" as it contains no polygons`, r.objects[lastIndex].node.Name)
		r.objects = r.objects[:lastIndex]
	}
	r.curObject = nil
}

// Parse light definition. Definitions use the following format:
// light type x y z
func (r *wavefrontSceneReader) parseLight(lineTokens []string) (*scene.Node, error) {
	if len(lineTokens) != 5 {
		return nil, fmt.Errorf(`unsupported syntax for "light"; expected 4 arguments: type x y z; got %d`, len(lineTokens)-1)
	}

	lightType, err := scene.LightTypeFromName(lineTokens[1])
	if err != nil {
		return nil, err
	}

	pos, err := parseVec3(lineTokens[1:])
	if err != nil {
		return nil, err
	}

	node := scene.NewNode(scene.KindLight, fmt.Sprintf("Light.%03d", len(r.lights)))
	node.Light.Type = lightType
	node.World = types.Translate4(pos)
	return node, nil
}

// Parse face definition. Each face definition consists of at least 3
// arguments, one for each vertex. Each one of the vertex arguments is
// comprised of 1, 2 or 3 args separated by a slash character. The following
// formats are supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex/uv list.
//
// Polygons are kept intact; deciding which vertex counts are acceptable is
// left to the consumer of the scene graph.
func (r *wavefrontSceneReader) parseFace(lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	obj := r.curObject
	mesh := obj.node.Mesh
	indices := make([]int, 0, len(lineTokens)-1)
	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		key := [3]int{-1, -1, -1}
		var err error
		key[0], err = selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}

		// Parse UV coords if specified
		if expIndices > 1 && vTokens[1] != "" {
			key[1], err = selectFaceCoordIndex(vTokens[1], len(r.uvList), relUvOffset)
			if err != nil {
				return fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}

		// Parse normal coords if specified
		if expIndices > 2 && vTokens[2] != "" {
			key[2], err = selectFaceCoordIndex(vTokens[2], len(r.normalList), relNormalOffset)
			if err != nil {
				return fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
		}

		index, exists := obj.vertexMap[key]
		if !exists {
			index = len(mesh.Vertices)
			obj.vertexMap[key] = index
			mesh.Vertices = append(mesh.Vertices, r.vertexList[key[0]])

			var uv types.Vec2
			if key[1] >= 0 {
				uv = r.uvList[key[1]]
			} else {
				obj.missingUVs = true
			}
			mesh.UVs = append(mesh.UVs, uv)

			var normal types.Vec3
			if key[2] >= 0 {
				normal = r.normalList[key[2]]
			} else {
				obj.missingNormals = true
			}
			mesh.Normals = append(mesh.Normals, normal)
		}
		indices = append(indices, index)
	}

	face := scene.Face{Indices: indices}
	if r.curMaterial == nil {
		obj.unassigned = append(obj.unassigned, len(mesh.Faces))
	} else {
		slot, exists := obj.slotMap[r.curMaterial.Name]
		if !exists {
			slot = len(mesh.Materials)
			obj.slotMap[r.curMaterial.Name] = slot
			mesh.Materials = append(mesh.Materials, r.curMaterial.sceneMaterial())
		}
		face.Material = slot
	}
	mesh.Faces = append(mesh.Faces, face)
	return nil
}

// Parse a wavefront material library.
func (r *wavefrontSceneReader) parseMaterials(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	r.logger.Infof(`parsing material library "%s"`, res.Path())

	scanner := bufio.NewScanner(res)

	var curMaterial *wavefrontMaterial = nil
	var matName string = ""

	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "newmtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "newmtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			matName = lineTokens[1]
			if _, exists := r.matNameToIndex[matName]; exists {
				return r.emitError(res.Path(), lineNum, `material "%s" already defined`, matName)
			}

			// Allocate new material and add it to library
			curMaterial = &wavefrontMaterial{
				Name: matName,
				Kd:   material.DefaultWavefrontAlbedo,
			}
			r.materials = append(r.materials, curMaterial)
			r.matNameToIndex[matName] = len(r.materials) - 1
		default:
			if curMaterial == nil {
				return r.emitError(res.Path(), lineNum, `got "%s" without a "newmtl"`, lineTokens[0])
			}

			switch lineTokens[0] {
			case "include":
				if len(lineTokens) < 2 {
					return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
				}

				baseMaterialIndex, exists := r.matNameToIndex[lineTokens[1]]
				if !exists {
					return r.emitError(res.Path(), lineNum, `could not include unknown material "%s"`, lineTokens[1])
				}

				// Overwrite material but keep the original name
				*curMaterial = *r.materials[baseMaterialIndex]
				curMaterial.Name = matName
			case "Kd":
				curMaterial.Kd, err = parseVec3(lineTokens)
			case "Ks":
				curMaterial.Ks, err = parseVec3(lineTokens)
			case "illum":
				var illum float32
				illum, err = parseFloat32(lineTokens)
				curMaterial.Illum = int(illum)
			}

			// Report any errors
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		}
	}

	return scanner.Err()
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
