package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/achilleasa/nori-export/asset/material"
	"github.com/achilleasa/nori-export/asset/scene"
	"github.com/achilleasa/nori-export/types"
)

const meshFolder = "meshes"

// A triangle as three 0-based vertex indices.
type triangle [3]int

// Split a face into triangles. Triangles are kept as-is and quads are split
// into (0, 1, 2) and (2, 3, 0). Any other polygon is not supported.
func triangulate(face scene.Face) ([]triangle, bool) {
	idx := face.Indices
	switch len(idx) {
	case 3:
		return []triangle{{idx[0], idx[1], idx[2]}}, true
	case 4:
		return []triangle{
			{idx[0], idx[1], idx[2]},
			{idx[2], idx[3], idx[0]},
		}, true
	}
	return nil, false
}

// Reverse the triangle winding if its geometric normal points away from
// the face normal.
func orient(mesh *scene.Mesh, tri triangle, faceNormal types.Vec3) triangle {
	v0 := mesh.Vertices[tri[0]]
	ab := mesh.Vertices[tri[1]].Sub(v0)
	ac := mesh.Vertices[tri[2]].Sub(v0)
	if ab.Cross(ac).Dot(faceNormal) < 0 {
		return triangle{tri[2], tri[1], tri[0]}
	}
	return tri
}

// Replace path separators and whitespace so names can be used as file names.
func sanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		return "unnamed"
	}
	return name
}

// Stats for a single exported mesh file.
type MeshStats struct {
	Object    string
	File      string
	Material  string
	BSDF      material.BSDFType
	Vertices  int
	Triangles int
}

// Export a mesh node. Returns the document entries for the written files.
func (j *exportJob) exportMesh(node *scene.Node) ([]*Element, error) {
	mesh := node.Mesh
	if mesh == nil {
		j.warn(MissingPayload, "mesh node %q has no mesh data; skipping", node.Name)
		return nil, nil
	}
	ch := j.meshChannels(node)

	// Every slot gets its own file, named or not; nil slots use the default
	// material.
	haveMaterial := len(mesh.Materials) != 0
	slotCount := 1
	if haveMaterial {
		slotCount = len(mesh.Materials)
	}

	// Triangulate everything before touching the file system so a fatal
	// polygon never leaves files behind.
	slotTris := make([][]triangle, slotCount)
	for faceIndex, face := range mesh.Faces {
		for _, index := range face.Indices {
			if index < 0 || index >= len(mesh.Vertices) {
				return nil, fmt.Errorf("exporter: mesh %q face %d references vertex %d; mesh has %d vertices", node.Name, faceIndex, index, len(mesh.Vertices))
			}
		}

		slot := 0
		if haveMaterial {
			slot = face.Material
			if slot < 0 || slot >= slotCount {
				j.warn(FaceMaterialOutOfRange, "mesh %q face %d uses material slot %d; mesh has %d slots", node.Name, faceIndex, slot, slotCount)
				continue
			}
		}

		tris, ok := triangulate(face)
		if !ok {
			ctx := fmt.Sprintf("mesh %q face %d has %d vertices", node.Name, faceIndex, len(face.Indices))
			if !j.opts.SkipInvalidFaces {
				return nil, j.fatal(UnsupportedPolygon, ctx)
			}
			j.warn(UnsupportedPolygon, "%s; skipping face", ctx)
			continue
		}

		normal := mesh.FaceNormal(face)
		for _, tri := range tris {
			slotTris[slot] = append(slotTris[slot], orient(mesh, tri, normal))
		}
	}

	baseName := j.uniqueName(sanitizeName(node.Name))
	basePath := filepath.Join(j.opts.meshDir(), baseName+".obj")
	written := make([]string, 0, slotCount+1)
	cleanup := func() {
		for _, path := range written {
			os.Remove(path)
		}
	}

	f, err := os.Create(basePath)
	if err != nil {
		return nil, err
	}
	written = append(written, basePath)
	err = writeVertexData(f, mesh, ch)
	if err == nil && !haveMaterial {
		err = writeTriangles(f, slotTris[0], ch)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return nil, err
	}

	toWorld := transformElement(toRenderer(node.World))
	if !haveMaterial {
		j.addMeshStats(node, baseName, nil, len(slotTris[0]))
		j.result.MeshFiles = append(j.result.MeshFiles, basePath)
		return []*Element{meshElement(baseName, toWorld, bsdfElement(nil))}, nil
	}

	entries := make([]*Element, 0, slotCount)
	for slot, mat := range mesh.Materials {
		slotName := j.uniqueName(baseName + "_" + sanitizeName(materialName(mat, slot)))
		slotPath := filepath.Join(j.opts.meshDir(), slotName+".obj")
		j.logger.Infof("mesh %q slot %d: writing %d triangles to %s", node.Name, slot, len(slotTris[slot]), slotPath)

		err = writeSlotFile(slotPath, basePath, slotTris[slot], ch)
		written = append(written, slotPath)
		if err != nil {
			cleanup()
			return nil, err
		}

		j.addMeshStats(node, slotName, mat, len(slotTris[slot]))
		entries = append(entries, meshElement(slotName, toWorld, bsdfElement(mat)))
	}

	// The combined file is superseded by the per-slot files
	if err = os.Remove(basePath); err != nil {
		cleanup()
		return nil, err
	}
	j.result.MeshFiles = append(j.result.MeshFiles, written[1:]...)

	return entries, nil
}

// Select the vertex channels to export. Channels that do not provide one
// entry per vertex are dropped.
func (j *exportJob) meshChannels(node *scene.Node) objChannels {
	mesh := node.Mesh
	if len(mesh.Normals) != 0 && !mesh.HasNormals() {
		j.warn(ChannelMismatch, "mesh %q defines %d normals for %d vertices; skipping normals", node.Name, len(mesh.Normals), len(mesh.Vertices))
	}
	if len(mesh.UVs) != 0 && !mesh.HasUVs() {
		j.warn(ChannelMismatch, "mesh %q defines %d uvs for %d vertices; skipping uvs", node.Name, len(mesh.UVs), len(mesh.Vertices))
	}
	return objChannels{
		uvs:     mesh.HasUVs(),
		normals: mesh.HasNormals(),
	}
}

func (j *exportJob) addMeshStats(node *scene.Node, fileName string, mat *scene.Material, triangles int) {
	stats := MeshStats{
		Object:    node.Name,
		File:      fileName + ".obj",
		Material:  "default",
		BSDF:      material.BSDFDiffuse,
		Vertices:  len(node.Mesh.Vertices),
		Triangles: triangles,
	}
	if mat != nil {
		stats.Material = mat.Name
		stats.BSDF = mat.BSDF
	}
	j.result.Meshes = append(j.result.Meshes, stats)
}

func materialName(mat *scene.Material, slot int) string {
	if mat == nil || mat.Name == "" {
		return fmt.Sprintf("slot%d", slot)
	}
	return mat.Name
}

func meshElement(fileName string, toWorld, bsdf *Element) *Element {
	return Typed("mesh", "obj",
		Entry("string", "filename", meshFolder+"/"+fileName+".obj"),
		toWorld,
		bsdf,
	)
}

// Build the bsdf element for a material slot. A nil material selects the
// default diffuse bsdf.
func bsdfElement(mat *scene.Material) *Element {
	if mat == nil {
		return Typed("bsdf", material.BSDFDiffuse.String(),
			Entry("color", "albedo", FormatVec3(material.DefaultAlbedo)),
		)
	}

	switch mat.BSDF {
	case material.BSDFMirror:
		return Typed("bsdf", material.BSDFMirror.String())
	default:
		return Typed("bsdf", material.BSDFDiffuse.String(),
			Entry("color", "albedo", FormatVec3(mat.Albedo)),
		)
	}
}
