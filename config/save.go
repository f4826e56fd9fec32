package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrExists is returned by SaveTo when the destination exists and overwrite
// is not set.
var ErrExists = errors.New("config: file already exists")

// UserFile returns the path of the per-user config file or an empty string
// if the OS does not define a config folder.
func UserFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// SaveTo validates the config and writes it as YAML to path, creating any
// missing parent folders.
func (c *Config) SaveTo(path string, overwrite bool) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
