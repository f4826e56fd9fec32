package exporter

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/achilleasa/nori-export/asset/scene"
	"github.com/achilleasa/nori-export/log"
	"github.com/olekukonko/tablewriter"
)

// Result describes the output of an export.
type Result struct {
	// Path to the written scene document. Empty if the export was aborted.
	DocumentPath string

	// The document tree. Nil if the export was aborted.
	Document *Element

	// Paths to all mesh files written to disk.
	MeshFiles []string

	// Per mesh file stats.
	Meshes []MeshStats

	// Diagnostics reported while exporting.
	Diagnostics Diagnostics
}

// Render a table with the exported mesh files.
func (r *Result) Summary() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Object", "File", "Material", "BSDF", "Vertices", "Triangles"})

	var triangles int
	for _, m := range r.Meshes {
		triangles += m.Triangles
		table.Append([]string{
			m.Object,
			m.File,
			m.Material,
			m.BSDF.String(),
			strconv.Itoa(m.Vertices),
			strconv.Itoa(m.Triangles),
		})
	}
	table.SetFooter([]string{"", "", "", "", "TOTAL", strconv.Itoa(triangles)})

	table.Render()
	return buf.String()
}

// Exporter converts scene graphs into renderer scene documents.
type Exporter struct {
	logger log.Logger
	opts   Options
}

// Create a new exporter.
func New(opts Options) *Exporter {
	return &Exporter{
		logger: log.New("scene exporter"),
		opts:   opts,
	}
}

// Export a scene. The document is written to the configured output path and
// mesh files to a meshes folder next to it.
//
// If a fatal condition is encountered the export is aborted and a
// *FatalError is returned together with the partial result.
func (e *Exporter) Export(sc *scene.Scene) (*Result, error) {
	if sc == nil {
		return nil, ErrNoScene
	}
	if err := e.opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	e.logger.Noticef(`exporting scene to "%s"`, e.opts.OutputPath)

	job := &exportJob{
		logger:    e.logger,
		opts:      e.opts,
		result:    &Result{},
		usedNames: make(map[string]struct{}),
	}

	if err := os.MkdirAll(e.opts.meshDir(), os.ModePerm); err != nil {
		return job.result, err
	}

	root, err := job.buildDocument(sc)
	if err != nil {
		return job.result, err
	}

	f, err := os.Create(e.opts.OutputPath)
	if err != nil {
		return job.result, err
	}
	err = root.Write(f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return job.result, err
	}

	job.result.Document = root
	job.result.DocumentPath = e.opts.OutputPath
	e.logger.Noticef(
		"exported %d mesh file(s) with %d warning(s) in %d ms",
		len(job.result.MeshFiles),
		job.result.Diagnostics.Warnings(),
		time.Since(start).Nanoseconds()/1e6,
	)
	return job.result, nil
}

// State for a single export invocation.
type exportJob struct {
	logger log.Logger
	opts   Options
	result *Result

	// File names (without extension) handed out so far.
	usedNames map[string]struct{}
}

// Assemble the scene document, writing mesh files as meshes are visited.
func (j *exportJob) buildDocument(sc *scene.Scene) (*Element, error) {
	integrator := "av"
	if j.opts.ExportLight {
		integrator = "path_mis"
	}

	children := []*Element{
		Typed("integrator", integrator),
		Typed("sampler", "independent",
			Entry("integer", "sampleCount", strconv.Itoa(j.opts.SampleCount)),
		),
	}

	cameras := make([]*scene.Node, 0)
	for _, node := range sc.Find(scene.KindCamera) {
		if node.Camera == nil {
			j.warn(MissingPayload, "camera node %q has no camera settings; skipping", node.Name)
			continue
		}
		cameras = append(cameras, node)
	}
	switch len(cameras) {
	case 0:
		j.warn(NoCamera, "scene does not contain a camera")
	default:
		if len(cameras) > 1 {
			j.warn(MultipleCameras, "found %d cameras; only %q will be exported", len(cameras), cameras[0].Name)
		}
		children = append(children, cameraElement(cameras[0], sc.Render))
	}

	if j.opts.ExportLight {
		for _, node := range sc.Find(scene.KindLight) {
			if node.Light == nil {
				j.warn(MissingPayload, "light node %q has no light settings; skipping", node.Name)
				continue
			}
			if node.Light.Type != scene.LightPoint {
				j.warn(UnsupportedLight, "light %q has unsupported type %s", node.Name, node.Light.Type)
				continue
			}
			children = append(children, pointLightElement(node))
		}
	}

	for _, node := range sc.Roots {
		if node.Parent != nil {
			continue
		}
		entries, err := j.visit(node, nil)
		if err != nil {
			return nil, err
		}
		children = append(children, entries...)
	}

	return NewElement("scene", nil, children...), nil
}

// Visit a mesh or group node and its mesh/group descendants in pre-order.
func (j *exportJob) visit(node *scene.Node, entries []*Element) ([]*Element, error) {
	switch node.Kind {
	case scene.KindMesh:
		meshEntries, err := j.exportMesh(node)
		if err != nil {
			return entries, err
		}
		entries = append(entries, meshEntries...)
	case scene.KindGroup:
	default:
		return entries, nil
	}

	var err error
	for _, child := range node.Children {
		if entries, err = j.visit(child, entries); err != nil {
			return entries, err
		}
	}
	return entries, nil
}

// Reserve a file name. Names that are already taken get a numeric suffix.
func (j *exportJob) uniqueName(name string) string {
	candidate := name
	for suffix := 1; ; suffix++ {
		if _, taken := j.usedNames[candidate]; !taken {
			break
		}
		candidate = fmt.Sprintf("%s.%03d", name, suffix)
	}

	if candidate != name {
		j.warn(DuplicateFileName, "file name %q is already in use; using %q", name, candidate)
	}
	j.usedNames[candidate] = struct{}{}
	return candidate
}

func (j *exportJob) warn(kind Kind, format string, args ...interface{}) {
	diag := Diagnostic{Severity: Warning, Kind: kind, Context: fmt.Sprintf(format, args...)}
	j.result.Diagnostics = append(j.result.Diagnostics, diag)
	j.logger.Warning(diag.String())
}

func (j *exportJob) fatal(kind Kind, context string) error {
	diag := Diagnostic{Severity: Fatal, Kind: kind, Context: context}
	j.result.Diagnostics = append(j.result.Diagnostics, diag)
	j.logger.Error(diag.String())
	return &FatalError{Diagnostic: diag}
}
