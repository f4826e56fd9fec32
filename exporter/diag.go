package exporter

import "fmt"

// Severity of a diagnostic.
type Severity int

const (
	// Reported and the export continues.
	Warning Severity = iota

	// Aborts the export.
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

// Kind identifies the condition that triggered a diagnostic.
type Kind int

const (
	NoCamera Kind = iota
	MultipleCameras
	UnsupportedLight
	UnsupportedPolygon
	FaceMaterialOutOfRange
	ChannelMismatch
	DuplicateFileName

	// A camera, light or mesh node without its payload.
	MissingPayload
)

func (k Kind) String() string {
	switch k {
	case NoCamera:
		return "no camera"
	case MultipleCameras:
		return "multiple cameras"
	case UnsupportedLight:
		return "unsupported light"
	case UnsupportedPolygon:
		return "unsupported polygon"
	case FaceMaterialOutOfRange:
		return "face material out of range"
	case ChannelMismatch:
		return "channel mismatch"
	case DuplicateFileName:
		return "duplicate file name"
	case MissingPayload:
		return "missing payload"
	}
	return "unknown"
}

// A Diagnostic describes a condition encountered while exporting a scene.
type Diagnostic struct {
	Severity Severity
	Kind     Kind

	// Human readable details (object names, counts e.t.c).
	Context string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Kind, d.Context)
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []Diagnostic

// Get the diagnostics matching kind.
func (d Diagnostics) OfKind(kind Kind) Diagnostics {
	out := make(Diagnostics, 0)
	for _, diag := range d {
		if diag.Kind == kind {
			out = append(out, diag)
		}
	}
	return out
}

// Get the number of warnings.
func (d Diagnostics) Warnings() int {
	count := 0
	for _, diag := range d {
		if diag.Severity == Warning {
			count++
		}
	}
	return count
}
