// Package loader reads configuration files and environment variables
// into nested maps.
//
// TOML, YAML and JSON files are supported; the format is chosen by file
// extension. Every loader returns nil, nil for a missing file so callers
// can treat optional files uniformly.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader reads configuration from one source.
type Loader interface {
	// Load returns the source's settings, or nil, nil if it does not exist.
	Load() (map[string]any, error)
}

// FileSystem is the part of a file system the loaders read through.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS reads the real file system.
type OSFS struct{}

// ReadFile reads the file at path.
func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// Extensions lists the recognized config file extensions in lookup order.
var Extensions = []string{".toml", ".yaml", ".yml", ".json"}

// ForFile returns the loader for path's extension.
func ForFile(fsys FileSystem, path string) (Loader, error) {
	if fsys == nil {
		fsys = OSFS{}
	}
	var parse func(string, []byte) (map[string]any, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parse = parseTOML
	case ".yaml", ".yml":
		parse = parseYAML
	case ".json":
		parse = parseJSON
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return &fileLoader{fs: fsys, path: path, parse: parse}, nil
}

// Find returns the first existing file named base plus one of
// Extensions in dir, or "" if there is none.
func Find(fsys FileSystem, dir, base string) string {
	if fsys == nil {
		fsys = OSFS{}
	}
	for _, ext := range Extensions {
		p := filepath.Join(dir, base+ext)
		if _, err := fsys.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

type fileLoader struct {
	fs    FileSystem
	path  string
	parse func(source string, data []byte) (map[string]any, error)
}

func (l *fileLoader) Load() (map[string]any, error) {
	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", l.path, err)
	}
	cfg, err := l.parse(l.path, data)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return cfg, nil
}

// ParseError describes a config file that could not be parsed.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
