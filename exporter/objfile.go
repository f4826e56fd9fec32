package exporter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/achilleasa/nori-export/asset/scene"
)

// Vertex channels written to an obj file besides positions.
type objChannels struct {
	uvs     bool
	normals bool
}

// Write the shared part of an obj file: positions followed by the optional
// uv and normal channels.
func writeVertexData(w io.Writer, mesh *scene.Mesh, ch objChannels) error {
	bw := bufio.NewWriter(w)
	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "v %f %f %f\n", v[0], v[1], v[2])
	}
	if ch.uvs {
		for _, uv := range mesh.UVs {
			fmt.Fprintf(bw, "vt %f %f\n", uv[0], uv[1])
		}
	}
	if ch.normals {
		for _, n := range mesh.Normals {
			fmt.Fprintf(bw, "vn %f %f %f\n", n[0], n[1], n[2])
		}
	}
	return bw.Flush()
}

// Write triangle records. Channels share the vertex index so every corner
// references the same 1-based index for all of them.
func writeTriangles(w io.Writer, tris []triangle, ch objChannels) error {
	bw := bufio.NewWriter(w)
	for _, tri := range tris {
		bw.WriteString("f")
		for _, index := range tri {
			bw.WriteByte(' ')
			bw.WriteString(faceCorner(index, ch))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Format a face corner for a 0-based vertex index.
func faceCorner(index int, ch objChannels) string {
	i := strconv.Itoa(index + 1)
	switch {
	case ch.uvs && ch.normals:
		return i + "/" + i + "/" + i
	case ch.uvs:
		return i + "/" + i
	case ch.normals:
		return i + "//" + i
	}
	return i
}

// Create an obj file by copying the shared vertex data from basePath and
// appending tris.
func writeSlotFile(path, basePath string, tris []triangle, ch objChannels) error {
	base, err := os.Open(basePath)
	if err != nil {
		return err
	}
	defer base.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err = io.Copy(f, base); err == nil {
		err = writeTriangles(f, tris, ch)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
