package reader

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/achilleasa/nori-export/asset"
	"github.com/achilleasa/nori-export/asset/material"
	"github.com/achilleasa/nori-export/asset/scene"
	"github.com/achilleasa/nori-export/types"
)

func TestFloat32Parser(t *testing.T) {
	expError := `unsupported syntax for "v"; expected 1 argument; got 0`
	_, err := parseFloat32([]string{"v"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	_, err = parseFloat32([]string{"v", "not-a-float"})
	if err == nil {
		t.Fatal("expected to get a parse error")
	}

	v, err := parseFloat32([]string{"v", "3.14"})
	if err != nil {
		t.Fatal(err)
	}

	if v != 3.14 {
		t.Fatalf("expected parsed value to be 3.14; got %f", v)
	}
}

func TestVec2Parser(t *testing.T) {
	expError := `unsupported syntax for "v"; expected 2 arguments; got 0`
	_, err := parseVec2([]string{"v"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	v, err := parseVec2([]string{"v", "3.14", "0"})
	if err != nil {
		t.Fatal(err)
	}

	expVal := types.Vec2{3.14, 0}
	if !reflect.DeepEqual(v, expVal) {
		t.Fatalf("expected parsed value to be %v; got %v", expVal, v)
	}
}

func TestVec3Parser(t *testing.T) {
	expError := `unsupported syntax for "v"; expected 3 arguments; got 0`
	_, err := parseVec3([]string{"v"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	_, err = parseVec3([]string{"v", "not-a-float", "2", "3"})
	if err == nil {
		t.Fatal("expected to get a parse error")
	}

	v, err := parseVec3([]string{"v", "3.14", "0", "0.4"})
	if err != nil {
		t.Fatal(err)
	}

	expVal := types.Vec3{3.14, 0, 0.4}
	if !reflect.DeepEqual(v, expVal) {
		t.Fatalf("expected parsed value to be %v; got %v", expVal, v)
	}
}

func TestSelectFaceCoordinate(t *testing.T) {
	expError := "index out of bounds"
	type spec struct {
		in       string
		listLen  int
		out      int
		expError string
	}
	specs := []spec{
		{"2", 1, -1, expError},
		{"-2", 1, -1, expError},
		{"1", 10, 0, ""}, // indices are 1-based
		{"-1", 10, 9, ""},
	}

	for idx, s := range specs {
		v, err := selectFaceCoordIndex(s.in, s.listLen, 0)
		if s.expError != "" && (err == nil || err.Error() != s.expError) {
			t.Fatalf("[spec %d] expected error %s; got %v", idx, s.expError, err)
		} else if v != s.out {
			t.Fatalf("[spec %d] expected index to be %d; got %d", idx, s.out, v)
		}
	}
}

func TestParseSingleFacedObject(t *testing.T) {
	payload := `
o testObj
v 0 0 0
v 1 0 0
v 0 1 0
vn 1 0 0
vt 0 0
vn 0 1 0
vt 0 1
vn 0 1 0
vt 1 0
vn 0 0 1
# Comment
f 1/1/1 2/2/2 -1/-1/-1
`

	sc, err := newWavefrontReader().Read(mockResource(payload))
	if err != nil {
		t.Fatal(err)
	}

	meshes := sc.Find(scene.KindMesh)
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh to be parsed; got %d", len(meshes))
	}

	mesh0 := meshes[0]
	if mesh0.Name != "testObj" {
		t.Fatalf("expected mesh[0] name to be 'testObj'; got %s", mesh0.Name)
	}

	if len(mesh0.Mesh.Faces) != 1 {
		t.Fatalf("expected mesh[0] to contain 1 face; got %d", len(mesh0.Mesh.Faces))
	}

	if !mesh0.Mesh.HasNormals() || !mesh0.Mesh.HasUVs() {
		t.Fatal("expected mesh to carry normals and uvs")
	}

	expVertices := []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	if !reflect.DeepEqual(mesh0.Mesh.Vertices, expVertices) {
		t.Fatalf("expected vertices %v; got %v", expVertices, mesh0.Mesh.Vertices)
	}

	expNormals := []types.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	if !reflect.DeepEqual(mesh0.Mesh.Normals, expNormals) {
		t.Fatalf("expected normals %v; got %v", expNormals, mesh0.Mesh.Normals)
	}

	// Wavefront data is Y-up
	if !mesh0.World.ApproxEqual(types.YUpToZUp4(), 0) {
		t.Fatalf("expected mesh world transform to convert Y-up to Z-up; got\n%s", mesh0.World)
	}
}

func TestPolygonsAreKeptIntact(t *testing.T) {
	payload := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v -1 1 0
f 1 2 3 4
f 1 2 3 4 5
`

	sc, err := newWavefrontReader().Read(mockResource(payload))
	if err != nil {
		t.Fatal(err)
	}

	meshes := sc.Find(scene.KindMesh)
	if len(meshes) != 1 || meshes[0].Name != "default" {
		t.Fatalf("expected a single default mesh; got %d", len(meshes))
	}

	faces := meshes[0].Mesh.Faces
	if len(faces[0].Indices) != 4 || len(faces[1].Indices) != 5 {
		t.Fatalf("expected a quad and a pentagon; got %v", faces)
	}

	if meshes[0].Mesh.HasNormals() || meshes[0].Mesh.HasUVs() {
		t.Fatal("expected mesh without normals or uvs")
	}
}

func TestFaceErrors(t *testing.T) {
	specs := []struct {
		payload  string
		expError string
	}{
		{"v 0 0 0\nf 1 1", `[embedded: 2] error: unsupported syntax for "f"; expected at least 3 arguments; got 2`},
		{"v 0 0 0\nf 1 2 3", "[embedded: 2] error: could not parse vertex coord for face argument 1: index out of bounds"},
		{"v 0 0 0\nf 1 1/1 1", "[embedded: 2] error: expected each face argument to contain 1 indices; arg 1 contains 2 indices"},
		{"usemtl foo", `[embedded: 1] error: undefined material with name "foo"`},
	}

	for idx, s := range specs {
		_, err := newWavefrontReader().Read(mockResource(s.payload))
		if err == nil || err.Error() != s.expError {
			t.Fatalf("[spec %d] expected error %q; got %v", idx, s.expError, err)
		}
	}
}

func TestEmptyObjectsAreDropped(t *testing.T) {
	payload := `
o empty
o full
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`
	sc, err := newWavefrontReader().Read(mockResource(payload))
	if err != nil {
		t.Fatal(err)
	}

	meshes := sc.Find(scene.KindMesh)
	if len(meshes) != 1 || meshes[0].Name != "full" {
		t.Fatalf("expected only the 'full' mesh to survive; got %d meshes", len(meshes))
	}
}

func TestMaterialSlots(t *testing.T) {
	mtl := `
newmtl red
Kd 1 0 0

newmtl chrome
Kd 0 0 0
Ks 1 1 1

newmtl redCopy
include red
`
	obj := `
mtllib scene.mtl
v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
o cube
f 1 2 3
usemtl red
f 2 4 3
usemtl chrome
f 1 2 4
usemtl red
f 1 3 4
`
	server := mockServer(map[string]string{
		"/scene.obj": obj,
		"/scene.mtl": mtl,
	})
	defer server.Close()

	res, err := asset.NewResource(server.URL+"/scene.obj", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	sc, err := newWavefrontReader().Read(res)
	if err != nil {
		t.Fatal(err)
	}

	mesh := sc.Find(scene.KindMesh)[0].Mesh
	if len(mesh.Materials) != 3 {
		t.Fatalf("expected 3 material slots (red, chrome, default); got %d", len(mesh.Materials))
	}

	type spec struct {
		name string
		bsdf material.BSDFType
	}
	specs := []spec{
		{"red", material.BSDFDiffuse},
		{"chrome", material.BSDFMirror},
		{"default", material.BSDFDiffuse},
	}
	for idx, s := range specs {
		if mesh.Materials[idx].Name != s.name || mesh.Materials[idx].BSDF != s.bsdf {
			t.Fatalf("[slot %d] expected %s (%s); got %s (%s)", idx, s.name, s.bsdf, mesh.Materials[idx].Name, mesh.Materials[idx].BSDF)
		}
	}

	expFaceSlots := []int{2, 0, 1, 0}
	for idx, exp := range expFaceSlots {
		if mesh.Faces[idx].Material != exp {
			t.Fatalf("[face %d] expected material slot %d; got %d", idx, exp, mesh.Faces[idx].Material)
		}
	}

	if mesh.Materials[0].Albedo != (types.Vec3{1, 0, 0}) {
		t.Fatalf("expected red albedo; got %v", mesh.Materials[0].Albedo)
	}
}

func TestCameraAndLights(t *testing.T) {
	payload := `
camera_fov 90
camera_eye 0 0 5
camera_look 0 0 0
camera_up 0 1 0
light point 0 4 0
light spot 1 2 3
`
	sc, err := newWavefrontReader().Read(mockResource(payload))
	if err != nil {
		t.Fatal(err)
	}

	cams := sc.Find(scene.KindCamera)
	if len(cams) != 1 {
		t.Fatalf("expected 1 camera; got %d", len(cams))
	}
	if d := cams[0].Camera.FOV - 1.5707964; d > 1e-6 || d < -1e-6 {
		t.Fatalf("expected fov to be converted to radians; got %f", cams[0].Camera.FOV)
	}

	// Eye (0, 0, 5) in Y-up space is (0, -5, 0) in Z-up space
	if pos := cams[0].Position(); pos.Sub(types.Vec3{0, -5, 0}).Len() > 1e-6 {
		t.Fatalf("expected camera position (0, -5, 0); got %v", pos)
	}

	lights := sc.Find(scene.KindLight)
	if len(lights) != 2 {
		t.Fatalf("expected 2 lights; got %d", len(lights))
	}
	if lights[0].Light.Type != scene.LightPoint || lights[1].Light.Type != scene.LightSpot {
		t.Fatalf("unexpected light types %s, %s", lights[0].Light.Type, lights[1].Light.Type)
	}
	if pos := lights[0].Position(); pos.Sub(types.Vec3{0, 0, 4}).Len() > 1e-6 {
		t.Fatalf("expected light position (0, 0, 4); got %v", pos)
	}
}

func mockResource(payload string) *asset.Resource {
	return asset.NewResourceFromStream("embedded", strings.NewReader(payload))
}

func mockServer(files map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, exists := files[r.URL.Path]
		if !exists {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(payload))
	}))
}
