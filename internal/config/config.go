package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/quill/internal/config/loader"
)

// File base names searched for in the config directories. Any of
// loader.Extensions may follow.
const (
	UserFileBase    = "config"
	ProjectFileBase = ".quill"
	EnvPrefix       = "QUILL_"
)

// Layer is one source of settings.
type Layer struct {
	Name string
	Path string // "" for non-file layers
	Data map[string]any
}

// Config holds settings merged from, lowest priority first: built-in
// defaults, the user config file, the project config file, an explicit
// config file, the environment and runtime overrides.
//
// A Config is built once at startup and read from one goroutine; it
// does no locking.
type Config struct {
	layers []Layer
	merged map[string]any
}

type options struct {
	fs         loader.FileSystem
	userDir    string
	projectDir string
	file       string
	env        bool
}

// Option configures Load.
type Option func(*options)

// WithUserConfigDir sets the user configuration directory.
func WithUserConfigDir(dir string) Option {
	return func(o *options) { o.userDir = dir }
}

// WithProjectDir sets the directory searched for a project config file.
func WithProjectDir(dir string) Option {
	return func(o *options) { o.projectDir = dir }
}

// WithFile adds an explicit config file above the user and project
// files. Unlike those, it must exist.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithFileSystem sets the file system config files are read from.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *options) { o.fs = fsys }
}

// WithEnv turns the environment layer on or off.
func WithEnv(enabled bool) Option {
	return func(o *options) { o.env = enabled }
}

// Default returns a Config holding only the built-in defaults.
func Default() *Config {
	c := &Config{}
	c.addLayer(Layer{Name: "defaults", Data: defaultConfig()})
	return c
}

// Load builds a Config from all sources.
func Load(opts ...Option) (*Config, error) {
	o := options{fs: loader.OSFS{}, userDir: defaultUserConfigDir(), env: true}
	for _, opt := range opts {
		opt(&o)
	}

	c := Default()

	if o.userDir != "" {
		if err := c.loadFile("user", loader.Find(o.fs, o.userDir, UserFileBase), o.fs); err != nil {
			return nil, err
		}
	}
	if o.projectDir != "" {
		if err := c.loadFile("project", loader.Find(o.fs, o.projectDir, ProjectFileBase), o.fs); err != nil {
			return nil, err
		}
	}
	if o.file != "" {
		if _, err := o.fs.Stat(o.file); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, o.file)
		}
		if err := c.loadFile("file", o.file, o.fs); err != nil {
			return nil, err
		}
	}
	if o.env {
		data, err := loader.NewEnvLoader(EnvPrefix).Load()
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			c.addLayer(Layer{Name: "environment", Data: data})
		}
	}
	return c, nil
}

func (c *Config) loadFile(name, path string, fsys loader.FileSystem) error {
	if path == "" {
		return nil
	}
	l, err := loader.ForFile(fsys, path)
	if err != nil {
		return err
	}
	data, err := l.Load()
	if err != nil {
		return err
	}
	if data != nil {
		c.addLayer(Layer{Name: name, Path: path, Data: data})
	}
	return nil
}

func (c *Config) addLayer(l Layer) {
	c.layers = append(c.layers, l)
	c.merged = loader.DeepMerge(c.merged, l.Data)
}

// Layers returns the loaded layers, lowest priority first.
func (c *Config) Layers() []Layer {
	return c.layers
}

// Merged returns a copy of the merged settings.
func (c *Config) Merged() map[string]any {
	return loader.Clone(c.merged)
}

// Set overrides one setting above every loaded layer, as command-line
// flags do.
func (c *Config) Set(path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return ErrInvalidPath
	}
	override := map[string]any{}
	cur := override
	for _, p := range parts[:len(parts)-1] {
		next := map[string]any{}
		cur[p] = next
		cur = next
	}
	cur[parts[len(parts)-1]] = value
	c.addLayer(Layer{Name: "override", Data: override})
	return nil
}

// Get returns the value at a dot-separated path.
func (c *Config) Get(path string) (any, bool) {
	return getPath(c.merged, path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path. Whole floats, as
// JSON produces, are accepted.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float64:
		if val == float64(int(val)) {
			return int(val), nil
		}
	}
	return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetDuration returns a duration at the given path. Strings are parsed
// with time.ParseDuration; bare numbers are milliseconds.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: "string"}
		}
		return d, nil
	case int, int64, uint64, float64:
		ms, err := c.GetInt(path)
		if err != nil {
			return 0, err
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
}

func defaultUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "quill")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "quill")
}

func defaultConfig() map[string]any {
	return map[string]any{
		"editor": map[string]any{
			"tabWidth":          4,
			"autoIndent":        true,
			"coalesceThreshold": "500ms",
			"maxUndo":           1000,
			"lineEnding":        "lf",
			"viewportHeight":    40,
			"viewportWidth":     120,
		},
		"workspace": map[string]any{
			"maxRecent": 10,
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "text",
			"file":   "",
		},
		"watcher": map[string]any{
			"enabled":  true,
			"debounce": "100ms",
		},
		"clipboard": map[string]any{
			"system": true,
		},
	}
}

func getPath(m map[string]any, path string) (any, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}
	var current any = m
	for _, part := range parts {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, ".") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int, int64, uint64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
