package route

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies a route table file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Load decodes a route table: a top-level mapping from route name to route.
func Load(r io.Reader, format Format) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	routes := make(map[string]Route)
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(bytes.NewReader(data)).Decode(&routes)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		_, err = toml.Decode(string(data), &routes)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}

	return NewTable(routes)
}

// LoadFile reads a route table from disk.
func LoadFile(path string) (*Table, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, format)
}

// LoadFS reads a route table from a filesystem, e.g. an embed.FS.
func LoadFS(fsys fs.FS, name string) (*Table, error) {
	format, err := FormatFromPath(name)
	if err != nil {
		return nil, err
	}
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, format)
}
