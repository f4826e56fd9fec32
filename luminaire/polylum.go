// Package luminaire generates renderer t-test scenes that check direct
// illumination from a polygonal area light against an analytic reference.
package luminaire

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/achilleasa/nori-export/exporter"
	"github.com/achilleasa/nori-export/types"
	"github.com/chewxy/math32"
)

// The triangle is lit by a unit radiance emitter and viewed through a
// single-pixel camera looking straight down at a floor with this albedo.
const floorAlbedo float32 = 0.5

// TestCase describes a triangular luminaire together with the irradiance it
// produces at the origin.
type TestCase struct {
	// Triangle vertices, wound so that the triangle faces the origin.
	Vertices [3]types.Vec3

	// Irradiance at the origin on a surface with normal (0, 1, 0).
	Irradiance float32
}

// Generate a random triangle in the +y half-space and compute its
// irradiance at the origin.
func Generate(rng *rand.Rand) TestCase {
	var tc TestCase
	for i := range tc.Vertices {
		tc.Vertices[i] = types.XYZ(
			rng.Float32()-0.5,
			rng.Float32(),
			rng.Float32()-0.5,
		)
	}

	v := tc.Vertices
	normal := v[1].Sub(v[0]).Cross(v[2].Sub(v[0]))
	if normal.Dot(v[0]) > 0 {
		tc.Vertices[0], tc.Vertices[2] = v[2], v[0]
	}

	tc.Irradiance = -VectorIrradiance(tc.Vertices[:]).Dot(types.XYZ(0, 1, 0))
	return tc
}

// Calculate the vector irradiance at the origin due to a polygon with unit
// radiance using Lambert's formula.
func VectorIrradiance(poly []types.Vec3) types.Vec3 {
	var phi types.Vec3
	for k0 := range poly {
		k1 := (k0 + 1) % len(poly)
		cosTheta := poly[k0].Dot(poly[k1]) / (poly[k0].Len() * poly[k1].Len())
		theta := math32.Acos(math32.Max(-1, math32.Min(1, cosTheta)))
		gamma := poly[k0].Cross(poly[k1]).Normalize()
		phi = phi.Add(gamma.Mul(0.25 * theta))
	}
	return phi
}

// Get the expected pixel value for the test scene.
func (tc TestCase) Reference() float32 {
	return floorAlbedo / math32.Pi * tc.Irradiance
}

// Build the t-test document. The luminaire mesh is loaded from objFile.
func (tc TestCase) Document(objFile string) *exporter.Element {
	albedo := exporter.FormatVec3(types.XYZ(floorAlbedo, floorAlbedo, floorAlbedo))

	return exporter.NewElement("test", []exporter.Attr{{Name: "type", Value: "ttest"}},
		exporter.Entry("string", "references", exporter.FormatFloat(tc.Reference())),
		exporter.NewElement("scene", nil,
			exporter.Typed("integrator", "path"),
			exporter.Typed("camera", "perspective",
				exporter.NewElement("transform", []exporter.Attr{{Name: "name", Value: "toWorld"}},
					exporter.NewElement("lookat", []exporter.Attr{
						{Name: "origin", Value: "0, 0.01, 0"},
						{Name: "target", Value: "0, 0, 0"},
						{Name: "up", Value: "0, 0, 1"},
					}),
				),
				exporter.Entry("float", "fov", "1e-6"),
				exporter.Entry("integer", "width", "1"),
				exporter.Entry("integer", "height", "1"),
			),
			exporter.Typed("mesh", "obj",
				exporter.Entry("string", "filename", "floor.obj"),
				exporter.Typed("bsdf", "diffuse",
					exporter.Entry("color", "albedo", albedo),
				),
			),
			exporter.Typed("mesh", "obj",
				exporter.Entry("string", "filename", objFile),
				exporter.Typed("bsdf", "diffuse",
					exporter.Entry("color", "albedo", "0, 0, 0"),
				),
				exporter.Typed("luminaire", "area",
					exporter.Entry("color", "radiance", "1, 1, 1"),
				),
			),
		),
	)
}

// Write the luminaire triangle in wavefront format.
func (tc TestCase) WriteObj(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, v := range tc.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v[0], v[1], v[2])
	}
	fmt.Fprintln(bw, "f 1 2 3")
	return bw.Flush()
}

// Write the test document to xmlPath and the luminaire mesh to objPath. The
// document references objPath as given.
func (tc TestCase) WriteFiles(xmlPath, objPath string) error {
	if err := writeFile(xmlPath, tc.Document(objPath).Write); err != nil {
		return err
	}
	return writeFile(objPath, tc.WriteObj)
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = fn(f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
