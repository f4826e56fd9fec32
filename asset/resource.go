package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// The Resource type wraps a streamable scene file, material library or
// referenced mesh that is either stored locally or fetched over http(s).
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Returns the base name of this resource without any leading path.
func (r *Resource) Name() string {
	if r.IsRemote() {
		return path.Base(r.url.Path)
	}
	return filepath.Base(r.url.Path)
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Create a new Resource data stream. If relTo is specified and pathToResource
// does not define a scheme, then the path to the new Resource will be generated
// by concatenating the base path of relTo and pathToResource.
//
// This function can handle http/https URLs by delegating to the net/http package.
// The caller must make sure to close the returned Resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	// Replace backslashes with forward slashes and try parsing as a URL
	resURL, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	// If this is a relative url, clone parent url and adjust its path
	if resURL.Scheme == "" && relTo != nil && !filepath.IsAbs(resURL.Path) {
		relPath := resURL.Path
		resURL, _ = url.Parse(relTo.url.String())
		if resURL.Scheme == "" {
			prefix, err := filepath.Abs(relTo.url.Path)
			if err != nil {
				return nil, fmt.Errorf("resource: could not detect abs path for %s; %s", relTo.url.String(), err.Error())
			}
			resURL.Path = filepath.Join(filepath.Dir(prefix), relPath)
		} else {
			resURL.Path = path.Join(path.Dir(resURL.Path), relPath)
		}
	}

	var reader io.ReadCloser
	switch resURL.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(resURL.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		resp, err := http.Get(resURL.String())
		if err != nil {
			return nil, fmt.Errorf("resource: could not fetch '%s': %s", resURL.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("resource: could not fetch '%s': status %d", resURL.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", resURL.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        resURL,
	}, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	resURL, err := url.Parse(name)
	if err != nil {
		resURL = &url.URL{Path: name}
	}
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        resURL,
	}
}
