// Package rowmap tracks how many visual rows each buffer line occupies and
// converts between buffer lines and visual rows.
//
// Row counts come from the layout engine (wrapping, tab expansion, wide
// graphemes) and are kept in a prefixsum.Index, so the first row of a line
// is a prefix sum and the line under a row is a binary search.
package rowmap

import (
	"errors"
	"fmt"

	"github.com/dshills/rowmap/internal/config"
	"github.com/dshills/rowmap/internal/engine/prefixsum"
	"github.com/dshills/rowmap/internal/logging"
	"github.com/dshills/rowmap/internal/renderer/layout"
)

// Errors returned by RowMap operations.
var (
	// ErrLineOutOfRange indicates a line number outside the map.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrLineCountMismatch indicates text that does not match the map's lines.
	ErrLineCountMismatch = errors.New("line count mismatch")
)

// RowMap maps buffer lines to visual rows. It is not safe for concurrent
// use; the viewport serializes access to the map it displays.
type RowMap struct {
	rows   *prefixsum.Index
	cache  *layout.Cache
	logger *logging.Logger
}

// Option configures a RowMap.
type Option func(*RowMap)

// WithCache sets the layout cache used to measure lines.
func WithCache(cache *layout.Cache) Option {
	return func(m *RowMap) {
		m.cache = cache
	}
}

// WithLogger sets the logger for rewrap reports.
func WithLogger(logger *logging.Logger) Option {
	return func(m *RowMap) {
		m.logger = logger.WithComponent("rowmap")
	}
}

// New creates a row map for lines. Without WithCache, lines are measured by
// a default layout engine (no wrapping) behind a default-sized cache.
func New(lines []string, opts ...Option) (*RowMap, error) {
	m := &RowMap{}
	for _, opt := range opts {
		opt(m)
	}
	if m.cache == nil {
		cache, err := layout.NewCache(layout.NewEngine(), layout.DefaultCacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating layout cache: %w", err)
		}
		m.cache = cache
	}
	m.rows = prefixsum.New(m.measure(lines))
	return m, nil
}

// NewFromSettings creates a row map whose layout engine and cache size come
// from settings.
func NewFromSettings(lines []string, settings config.Settings, opts ...Option) (*RowMap, error) {
	cache, err := layout.NewCache(EngineFor(settings), settings.LayoutCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating layout cache: %w", err)
	}
	return New(lines, append([]Option{WithCache(cache)}, opts...)...)
}

// LineCount returns the number of lines.
func (m *RowMap) LineCount() int {
	return m.rows.Len()
}

// TotalRows returns the number of visual rows of all lines.
func (m *RowMap) TotalRows() uint32 {
	return m.rows.TotalSum()
}

// RowCount returns the number of visual rows of line.
func (m *RowMap) RowCount(line int) (uint32, error) {
	if err := m.checkLine(line); err != nil {
		return 0, err
	}
	return m.rows.Value(line), nil
}

// LineStartRow returns the first visual row of line.
func (m *RowMap) LineStartRow(line int) (uint32, error) {
	if err := m.checkLine(line); err != nil {
		return 0, err
	}
	return m.rows.SumThrough(line - 1), nil
}

// RowToLine returns the line displayed on row and which of that line's
// rows it is. Rows past the end resolve to the last row of the last line.
// An empty map resolves every row to (0, 0).
func (m *RowMap) RowToLine(row uint32) (line, subRow int) {
	if m.rows.Len() == 0 {
		return 0, 0
	}
	if total := m.rows.TotalSum(); total > 0 && row >= total {
		row = total - 1
	}
	return m.resolve(m.rows.Locate(int64(row)))
}

// RowToLineFloat is RowToLine for a fractional row position, such as the
// top of a viewport in the middle of a scroll animation.
func (m *RowMap) RowToLineFloat(pos float64) (line, subRow int) {
	if m.rows.Len() == 0 {
		return 0, 0
	}
	if pos < 0 {
		pos = 0
	}
	if total := float64(m.rows.TotalSum()); total > 0 && pos >= total {
		pos = total - 1
	}
	return m.resolve(m.rows.LocateFloat(pos))
}

func (m *RowMap) resolve(loc prefixsum.Location) (line, subRow int) {
	subRow = int(loc.Remainder)
	if n := int(m.rows.Value(loc.Index)); subRow >= n {
		subRow = max(n-1, 0)
	}
	return loc.Index, subRow
}

// InsertLines inserts lines before line at.
func (m *RowMap) InsertLines(at int, lines []string) error {
	if _, err := m.rows.Insert(at, m.measure(lines)); err != nil {
		return fmt.Errorf("inserting %d lines at %d: %w", len(lines), at, err)
	}
	return nil
}

// DeleteLines removes count lines starting at line at. The count is clamped
// to the end of the map.
func (m *RowMap) DeleteLines(at, count int) error {
	if _, err := m.rows.Remove(at, count); err != nil {
		return fmt.Errorf("deleting %d lines at %d: %w", count, at, err)
	}
	return nil
}

// UpdateLine re-measures line after its text changed. It reports whether
// the line's row count changed.
func (m *RowMap) UpdateLine(line int, text string) (bool, error) {
	if err := m.checkLine(line); err != nil {
		return false, err
	}
	return m.rows.Replace(line, uint32(m.cache.RowCount(text)))
}

// Rewrap switches to engine and re-measures every line. The caller passes
// the current text because the map does not keep it.
func (m *RowMap) Rewrap(engine *layout.Engine, lines []string) error {
	if len(lines) != m.rows.Len() {
		return fmt.Errorf("%w: rewrap with %d lines, map has %d", ErrLineCountMismatch, len(lines), m.rows.Len())
	}
	before := m.rows.TotalSum()
	m.cache.SetEngine(engine)
	m.rows.Reset(m.measure(lines))
	m.logger.Debug("rewrapped %d lines at width %d: %d -> %d rows",
		len(lines), engine.WrapWidth(), before, m.rows.TotalSum())
	return nil
}

// ApplySettings rewraps lines with an engine built from settings.
func (m *RowMap) ApplySettings(settings config.Settings, lines []string) error {
	return m.Rewrap(EngineFor(settings), lines)
}

// Cache returns the layout cache used to measure lines.
func (m *RowMap) Cache() *layout.Cache {
	return m.cache
}

// EngineFor builds a layout engine from view settings.
func EngineFor(settings config.Settings) *layout.Engine {
	return layout.NewEngine(
		layout.WithTabWidth(settings.TabSize),
		layout.WithWrap(settings.WordWrapColumn, settings.WordWrapAtWord),
	)
}

func (m *RowMap) measure(lines []string) []uint32 {
	rows := make([]uint32, len(lines))
	for i, line := range lines {
		rows[i] = uint32(m.cache.RowCount(line))
	}
	return rows
}

func (m *RowMap) checkLine(line int) error {
	if line < 0 || line >= m.rows.Len() {
		return fmt.Errorf("%w: line %d, have %d", ErrLineOutOfRange, line, m.rows.Len())
	}
	return nil
}
