package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/rowmap/internal/logging"
)

// Format identifies a settings file encoding.
type Format int

const (
	// FormatTOML is a TOML document.
	FormatTOML Format = iota
	// FormatYAML is a YAML document.
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatFor picks a format from the extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// FileSystem is the file access a Loader needs.
// testing/fstest.MapFS satisfies it.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader reads settings files.
type Loader struct {
	fs     FileSystem
	logger *logging.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithFileSystem sets the file system the loader reads from.
func WithFileSystem(fsys FileSystem) Option {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithLogger sets the logger for load reports and rejected values.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Loader) {
		l.logger = logger.WithComponent("config")
	}
}

// NewLoader creates a loader reading from the OS file system.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{fs: OSFS{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads settings from path. A missing file is not an error and yields
// Default().
func (l *Loader) Load(path string) (Settings, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Settings{}, err
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("no settings file at %s, using defaults", path)
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	settings, err := l.parse(path, format, data)
	if err != nil {
		return Settings{}, err
	}
	l.logger.Info("loaded settings from %s", path)
	return settings, nil
}

// LoadFromReader reads settings encoded as format from r.
func (l *Loader) LoadFromReader(r io.Reader, format Format) (Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Settings{}, fmt.Errorf("reading config: %w", err)
	}
	return l.parse("<reader>", format, data)
}

func (l *Loader) parse(source string, format Format, data []byte) (Settings, error) {
	doc := file{Editor: Default()}

	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return Settings{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Settings{}, &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
	}

	return doc.Editor.Normalize(l.logger), nil
}
