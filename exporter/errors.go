package exporter

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSampleCount = errors.New("exporter: sample count must be a positive integer")
	ErrNoOutputPath       = errors.New("exporter: no output path specified")
	ErrInvalidOutputPath  = errors.New("exporter: output path must point to an .xml file")
	ErrNoScene            = errors.New("exporter: no scene specified")
)

// FatalError is returned when a fatal diagnostic aborts an export.
type FatalError struct {
	Diagnostic Diagnostic
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("exporter: %s: %s", e.Diagnostic.Kind, e.Diagnostic.Context)
}
