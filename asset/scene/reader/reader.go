package reader

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/achilleasa/nori-export/asset"
	"github.com/achilleasa/nori-export/asset/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from a file or http(s) URL.
func ReadScene(filename string) (*scene.Scene, error) {
	reader, err := readerFor(filename)
	if err != nil {
		return nil, err
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}

// Read scene from a stream. The reader is selected by the extension of name;
// files referenced by the scene are resolved relative to name.
func ReadSceneFrom(name string, source io.Reader) (*scene.Scene, error) {
	reader, err := readerFor(name)
	if err != nil {
		return nil, err
	}

	return reader.Read(asset.NewResourceFromStream(name, source))
}

// Returns true if filename has an extension handled by ReadScene.
func IsSupported(filename string) bool {
	_, err := readerFor(filename)
	return err == nil
}

// Select reader based on file extension.
func readerFor(filename string) (Reader, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".yaml", ".yml":
		return newYamlReader(), nil
	case ".obj":
		return newWavefrontReader(), nil
	}
	return nil, fmt.Errorf("readScene: unsupported file format %q", path.Ext(filename))
}
