package exporter

import (
	"path/filepath"
	"strings"
)

// Options control the output of a scene export.
type Options struct {
	// Export point lights and select the path_mis integrator. When false
	// the document uses the ambient visibility (av) debug integrator.
	ExportLight bool

	// Number of samples per pixel.
	SampleCount int

	// Path to the scene document. Mesh files are written to a meshes
	// folder next to it.
	OutputPath string

	// Skip polygons that are neither triangles nor quads and report a
	// warning instead of aborting the export.
	SkipInvalidFaces bool
}

// Get the default export options.
func DefaultOptions() Options {
	return Options{
		ExportLight: true,
		SampleCount: 32,
		OutputPath:  "scene.xml",
	}
}

// Validate export options.
func (o Options) Validate() error {
	if o.SampleCount <= 0 {
		return ErrInvalidSampleCount
	}
	if o.OutputPath == "" {
		return ErrNoOutputPath
	}
	if strings.ToLower(filepath.Ext(o.OutputPath)) != ".xml" {
		return ErrInvalidOutputPath
	}
	return nil
}

// The folder where mesh files are written.
func (o Options) meshDir() string {
	return filepath.Join(filepath.Dir(o.OutputPath), meshFolder)
}
