package writer

import (
	"errors"

	"github.com/achilleasa/nori-export/exporter"
)

var (
	ErrNoDocument = errors.New("writer: export result does not contain a scene document")
)

// The Writer interface is implemented by all export bundle writers.
type Writer interface {
	// Write an export result.
	Write(*exporter.Result) error
}

// Bundle the scene document and mesh files of an export into a zip archive.
func WriteBundle(res *exporter.Result, filename string) error {
	writer := newZipBundleWriter(filename)
	return writer.Write(res)
}
