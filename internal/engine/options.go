package engine

import (
	"github.com/dshills/rowmap/internal/config"
	"github.com/dshills/rowmap/internal/logging"
)

// DefaultMaxUndoEntries is the undo history limit when none is given.
const DefaultMaxUndoEntries = 1000

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content of the engine.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.text = content
	}
}

// WithID sets the document ID. Without it a random UUID is used.
func WithID(id string) Option {
	return func(e *Engine) {
		e.id = id
	}
}

// WithSettings sets the view settings used to wrap lines.
func WithSettings(settings config.Settings) Option {
	return func(e *Engine) {
		e.settings = settings
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithReadOnly creates a read-only engine.
// Write operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}
