package config

import (
	"github.com/dshills/rowmap/internal/logging"
)

// Default configuration values.
const (
	DefaultTabSize         = 4
	DefaultScrollOff       = 3
	DefaultLayoutCacheSize = 4096
	MaxTabSize             = 16
)

// Settings holds the view settings of the editor.
type Settings struct {
	// TabSize is the number of columns a tab advances to.
	TabSize int `toml:"tab_size" yaml:"tab_size"`

	// WordWrapColumn is the column at which lines wrap. 0 disables wrapping.
	WordWrapColumn int `toml:"word_wrap_column" yaml:"word_wrap_column"`

	// WordWrapAtWord prefers breaking after whitespace.
	WordWrapAtWord bool `toml:"word_wrap_at_word" yaml:"word_wrap_at_word"`

	// ScrollOff is the number of rows kept visible around the revealed line.
	ScrollOff int `toml:"scroll_off" yaml:"scroll_off"`

	// SmoothScroll animates scrolling.
	SmoothScroll bool `toml:"smooth_scroll" yaml:"smooth_scroll"`

	// LayoutCacheSize is the number of line layouts kept in memory.
	LayoutCacheSize int `toml:"layout_cache_size" yaml:"layout_cache_size"`
}

// file is the on-disk shape of a settings file.
type file struct {
	Editor Settings `toml:"editor" yaml:"editor"`
}

// Default returns the default settings.
func Default() Settings {
	return Settings{
		TabSize:         DefaultTabSize,
		WordWrapColumn:  0,
		WordWrapAtWord:  true,
		ScrollOff:       DefaultScrollOff,
		SmoothScroll:    false,
		LayoutCacheSize: DefaultLayoutCacheSize,
	}
}

// Normalize replaces out-of-range values with defaults, reporting each
// replacement to logger.
func (s Settings) Normalize(logger *logging.Logger) Settings {
	if s.TabSize < 1 || s.TabSize > MaxTabSize {
		logger.Warn("tab_size %d not in [1, %d], using %d", s.TabSize, MaxTabSize, DefaultTabSize)
		s.TabSize = DefaultTabSize
	}
	if s.WordWrapColumn < 0 {
		logger.Warn("word_wrap_column %d is negative, disabling wrap", s.WordWrapColumn)
		s.WordWrapColumn = 0
	}
	if s.ScrollOff < 0 {
		logger.Warn("scroll_off %d is negative, using 0", s.ScrollOff)
		s.ScrollOff = 0
	}
	if s.LayoutCacheSize <= 0 {
		logger.Warn("layout_cache_size %d must be positive, using %d", s.LayoutCacheSize, DefaultLayoutCacheSize)
		s.LayoutCacheSize = DefaultLayoutCacheSize
	}
	return s
}
