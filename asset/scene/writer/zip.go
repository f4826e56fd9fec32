package writer

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/achilleasa/nori-export/exporter"
	"github.com/achilleasa/nori-export/log"
)

type zipBundleWriter struct {
	logger     log.Logger
	bundleFile string
}

// Create a new zip bundle writer
func newZipBundleWriter(bundleFile string) *zipBundleWriter {
	return &zipBundleWriter{
		logger:     log.New("zip bundle writer"),
		bundleFile: bundleFile,
	}
}

// Write the scene document and its mesh files to a zip file. Paths inside the
// archive are relative to the folder containing the scene document so the
// document references stay valid once the archive is extracted.
func (w *zipBundleWriter) Write(res *exporter.Result) error {
	if res == nil || res.Document == nil || res.DocumentPath == "" {
		return ErrNoDocument
	}

	w.logger.Noticef(`writing export bundle to "%s"`, w.bundleFile)
	start := time.Now()

	zipFile, err := os.Create(w.bundleFile)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(zipFile)
	baseDir := filepath.Dir(res.DocumentPath)
	files := append([]string{res.DocumentPath}, res.MeshFiles...)
	for _, file := range files {
		if err = addFile(zw, baseDir, file); err != nil {
			break
		}
	}

	if closeErr := zw.Close(); err == nil {
		err = closeErr
	}
	if closeErr := zipFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(w.bundleFile)
		return err
	}

	w.logger.Noticef("bundled %d file(s) in %d ms", len(files), time.Since(start).Nanoseconds()/1000000)
	return nil
}

// Copy a file into the archive using its path relative to baseDir.
func addFile(zw *zip.Writer, baseDir, file string) error {
	rel, err := filepath.Rel(baseDir, file)
	if err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	cw, err := zw.Create(path.Clean(filepath.ToSlash(rel)))
	if err != nil {
		return err
	}
	_, err = io.Copy(cw, f)
	return err
}
