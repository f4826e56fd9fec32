package luminaire

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/nori-export/exporter"
	"github.com/achilleasa/nori-export/types"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsReproducible(t *testing.T) {
	tc1 := Generate(rand.New(rand.NewSource(42)))
	tc2 := Generate(rand.New(rand.NewSource(42)))
	assert.Equal(t, tc1, tc2)

	tc3 := Generate(rand.New(rand.NewSource(7)))
	assert.NotEqual(t, tc1.Vertices, tc3.Vertices)
}

func TestGeneratedTriangleFacesOrigin(t *testing.T) {
	for seed := int64(1); seed <= 32; seed++ {
		tc := Generate(rand.New(rand.NewSource(seed)))
		v := tc.Vertices

		normal := v[1].Sub(v[0]).Cross(v[2].Sub(v[0]))
		if d := normal.Dot(v[0]); d > 0 {
			t.Fatalf("[seed %d] expected triangle to face the origin; normal dot v0 = %f", seed, d)
		}

		for i, vert := range v {
			if vert[1] < 0 || vert[0] < -0.5 || vert[0] >= 0.5 || vert[2] < -0.5 || vert[2] >= 0.5 {
				t.Fatalf("[seed %d] vertex %d out of range: %v", seed, i, vert)
			}
		}

		if tc.Irradiance <= 0 {
			t.Fatalf("[seed %d] expected positive irradiance; got %f", seed, tc.Irradiance)
		}
	}
}

func TestVectorIrradiance(t *testing.T) {
	// A large square just above the origin covers almost the entire upper
	// hemisphere; each edge subtends a right angle.
	const h float32 = 1e-3
	square := []types.Vec3{
		types.XYZ(1, h, -1),
		types.XYZ(1, h, 1),
		types.XYZ(-1, h, 1),
		types.XYZ(-1, h, -1),
	}
	e := -VectorIrradiance(square).Dot(types.XYZ(0, 1, 0))
	assert.InDelta(t, math32.Pi/2, e, 1e-2)

	// Reversing the winding flips the sign
	reversed := []types.Vec3{square[3], square[2], square[1], square[0]}
	assert.InDelta(t, -e, -VectorIrradiance(reversed).Dot(types.XYZ(0, 1, 0)), 1e-5)
}

func TestReference(t *testing.T) {
	tc := TestCase{Irradiance: math32.Pi}
	assert.InDelta(t, 0.5, tc.Reference(), 1e-6)
}

func TestWriteObj(t *testing.T) {
	tc := TestCase{
		Vertices: [3]types.Vec3{
			types.XYZ(0.25, 0.5, -0.125),
			types.XYZ(-0.5, 1, 0),
			types.XYZ(0, 0.75, 0.375),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, tc.WriteObj(&buf))

	expObj := "v 0.25 0.5 -0.125\nv -0.5 1 0\nv 0 0.75 0.375\nf 1 2 3\n"
	assert.Equal(t, expObj, buf.String())
}

func TestDocument(t *testing.T) {
	tc := TestCase{Irradiance: math32.Pi}
	doc := tc.Document("meshes/polylum.obj")

	typ, _ := doc.Attr("type")
	assert.Equal(t, "ttest", typ)

	ref := doc.Child("string", "references")
	require.NotNil(t, ref)
	val, _ := ref.Attr("value")
	assert.Equal(t, exporter.FormatFloat(tc.Reference()), val)

	sc := doc.Child("scene", "")
	require.NotNil(t, sc)
	meshes := sc.ChildrenNamed("mesh")
	require.Len(t, meshes, 2)

	fname, _ := meshes[0].Child("string", "filename").Attr("value")
	assert.Equal(t, "floor.obj", fname)
	fname, _ = meshes[1].Child("string", "filename").Attr("value")
	assert.Equal(t, "meshes/polylum.obj", fname)
	require.NotNil(t, meshes[1].Child("luminaire", ""))

	cam := sc.Child("camera", "")
	require.NotNil(t, cam)
	lookat := cam.Child("transform", "").Child("lookat", "")
	require.NotNil(t, lookat)
	origin, _ := lookat.Attr("origin")
	assert.Equal(t, "0, 0.01, 0", origin)
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "polylum.xml")
	objPath := filepath.Join(dir, "polylum.obj")

	tc := Generate(rand.New(rand.NewSource(1)))
	require.NoError(t, tc.WriteFiles(xmlPath, objPath))

	xmlData, err := os.ReadFile(xmlPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(xmlData), `<?xml version="1.0" encoding="utf-8"?>`))
	assert.Contains(t, string(xmlData), `<test type="ttest">`)
	assert.Contains(t, string(xmlData), `value="`+objPath+`"`)

	objData, err := os.ReadFile(objPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(objData)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "f 1 2 3", lines[3])
	for _, line := range lines[:3] {
		assert.True(t, strings.HasPrefix(line, "v "), line)
	}
}

func TestWriteFilesError(t *testing.T) {
	dir := t.TempDir()
	tc := Generate(rand.New(rand.NewSource(1)))
	assert.Error(t, tc.WriteFiles(filepath.Join(dir, "missing", "a.xml"), filepath.Join(dir, "a.obj")))
}
