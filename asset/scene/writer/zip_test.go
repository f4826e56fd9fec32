package writer

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/achilleasa/nori-export/asset/scene"
	"github.com/achilleasa/nori-export/exporter"
	"github.com/achilleasa/nori-export/types"
)

func TestWriteBundle(t *testing.T) {
	dir := t.TempDir()

	node := scene.NewNode(scene.KindMesh, "Tri")
	node.Mesh.Vertices = []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	node.Mesh.Faces = []scene.Face{{Indices: []int{0, 1, 2}, Normal: types.Vec3{0, 0, 1}}}
	sc := scene.NewScene()
	sc.AddRoot(node)

	opts := exporter.DefaultOptions()
	opts.OutputPath = filepath.Join(dir, "export", "scene.xml")
	res, err := exporter.New(opts).Export(sc)
	if err != nil {
		t.Fatal(err)
	}

	bundle := filepath.Join(dir, "bundle.zip")
	if err = WriteBundle(res, bundle); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.OpenReader(bundle)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)

	expNames := []string{"meshes/Tri.obj", "scene.xml"}
	if len(names) != len(expNames) {
		t.Fatalf("expected archive to contain %v; got %v", expNames, names)
	}
	for idx, name := range expNames {
		if names[idx] != name {
			t.Fatalf("expected archive entry %d to be %q; got %q", idx, name, names[idx])
		}
	}

	// Archived document must match the one on disk
	expDoc, err := os.ReadFile(opts.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range zr.File {
		if f.Name != "scene.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != string(expDoc) {
			t.Fatalf("archived document does not match:\n%s", data)
		}
	}
}

func TestWriteBundleErrors(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle.zip")

	if err := WriteBundle(nil, bundle); err != ErrNoDocument {
		t.Fatalf("expected ErrNoDocument; got %v", err)
	}
	if err := WriteBundle(&exporter.Result{}, bundle); err != ErrNoDocument {
		t.Fatalf("expected ErrNoDocument; got %v", err)
	}

	res := &exporter.Result{
		DocumentPath: filepath.Join(dir, "missing.xml"),
		Document:     exporter.NewElement("scene", nil),
	}
	if err := WriteBundle(res, bundle); err == nil {
		t.Fatal("expected an error for a missing document file")
	}
	if _, err := os.Stat(bundle); !os.IsNotExist(err) {
		t.Fatalf("expected partial bundle to be removed; stat returned %v", err)
	}
}
