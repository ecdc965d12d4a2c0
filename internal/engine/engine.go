package engine

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/rowmap/internal/config"
	"github.com/dshills/rowmap/internal/engine/lineindex"
	"github.com/dshills/rowmap/internal/logging"
	"github.com/dshills/rowmap/internal/renderer/rowmap"
)

// Re-export commonly used types for convenience.
type (
	// Point represents a line/column position.
	Point = lineindex.Point

	// Range represents a range between two points.
	Range = lineindex.Range

	// Edit represents an edit operation.
	Edit = lineindex.Edit
)

// appliedEdit is a replacement that has already been applied to the text.
// It stores what is needed to undo/redo it.
type appliedEdit struct {
	start   int64
	oldText string
	newText string
}

// Description returns a human-readable description.
func (a appliedEdit) Description() string {
	if a.oldText == "" {
		return "Insert"
	}
	if a.newText == "" {
		return "Delete"
	}
	return "Replace"
}

// Engine holds a document's text and keeps its line index and row map
// in step with every edit.
type Engine struct {
	mu sync.Mutex

	id string

	text  string
	lines []string // line contents without terminators
	index *lineindex.Index
	rows  *rowmap.RowMap

	undo     []appliedEdit
	redo     []appliedEdit
	revision uint64

	// Configuration
	settings       config.Settings
	logger         *logging.Logger
	maxUndoEntries int
	readOnly       bool
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		settings:       config.Default(),
		maxUndoEntries: DefaultMaxUndoEntries,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.id == "" {
		e.id = uuid.New().String()
	}
	e.logger = e.logger.WithFields(map[string]any{"component": "engine", "document": e.id})

	e.index = lineindex.New(e.text)
	e.lines = e.lineContents(0, e.index.LineCount()-1)

	rows, err := rowmap.NewFromSettings(e.lines, e.settings, rowmap.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("creating row map: %w", err)
	}
	e.rows = rows
	return e, nil
}

// NewFromReader creates an Engine from an io.Reader.
func NewFromReader(r io.Reader, opts ...Option) (*Engine, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	return New(append(opts, WithContent(string(data)))...)
}

// ID returns the document ID.
func (e *Engine) ID() string {
	return e.id
}

// Text returns the entire text.
func (e *Engine) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// TextRange returns text in the given byte range.
func (e *Engine) TextRange(start, end int64) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkRange(start, end); err != nil {
		return "", err
	}
	return e.text[start:end], nil
}

// Len returns the total byte length of the text.
func (e *Engine) Len() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return int64(len(e.text))
}

// LineCount returns the number of lines. An empty text has one line.
func (e *Engine) LineCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.lines)
}

// LineText returns the content of line without its terminator.
func (e *Engine) LineText(line int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if line < 0 || line >= len(e.lines) {
		return "", fmt.Errorf("%w: line %d, have %d", ErrLineOutOfRange, line, len(e.lines))
	}
	return e.lines[line], nil
}

// Revision returns a counter that increases with every change to the text.
func (e *Engine) Revision() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revision
}

// OffsetToPoint converts a byte offset to a point.
func (e *Engine) OffsetToPoint(offset int64) Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.OffsetToPoint(offset)
}

// PointToOffset converts a point to a byte offset.
func (e *Engine) PointToOffset(p Point) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.PointToOffset(p)
}

// Insert inserts text at offset and returns the offset after it.
func (e *Engine) Insert(offset int64, text string) (int64, error) {
	return e.Replace(offset, offset, text)
}

// Delete removes the text between start and end.
func (e *Engine) Delete(start, end int64) error {
	_, err := e.Replace(start, end, "")
	return err
}

// Replace replaces the text between start and end and returns the offset
// after the new text.
func (e *Engine) Replace(start, end int64, text string) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return 0, ErrReadOnly
	}
	return e.replaceLocked(start, end, text)
}

// ApplyEdit applies a point-based edit.
func (e *Engine) ApplyEdit(edit Edit) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	return e.applyEditLocked(edit)
}

// ApplyEdits applies edits in order. Each edit's range refers to the text
// as left by the previous edit.
func (e *Engine) ApplyEdits(edits []Edit) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	for i, edit := range edits {
		if err := e.applyEditLocked(edit); err != nil {
			return fmt.Errorf("edit %d %s: %w", i, edit, err)
		}
	}
	return nil
}

func (e *Engine) applyEditLocked(edit Edit) error {
	if edit.Range.End.Before(edit.Range.Start) {
		return fmt.Errorf("%w: %s before %s", ErrRangeInvalid, edit.Range.End, edit.Range.Start)
	}
	start, err := e.index.PointToOffset(edit.Range.Start)
	if err != nil {
		return err
	}
	end, err := e.index.PointToOffset(edit.Range.End)
	if err != nil {
		return err
	}
	_, err = e.replaceLocked(start, end, edit.Text)
	return err
}

// replaceLocked performs replacement without acquiring the lock.
func (e *Engine) replaceLocked(start, end int64, text string) (int64, error) {
	if err := e.checkRange(start, end); err != nil {
		return 0, err
	}
	applied := appliedEdit{start: start, oldText: e.text[start:end], newText: text}
	if err := e.apply(start, end, text); err != nil {
		return 0, err
	}

	e.undo = append(e.undo, applied)
	if len(e.undo) > e.maxUndoEntries {
		e.undo = slices.Delete(e.undo, 0, len(e.undo)-e.maxUndoEntries)
	}
	e.redo = e.redo[:0]
	return start + int64(len(text)), nil
}

// Undo undoes the last edit.
func (e *Engine) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	if len(e.undo) == 0 {
		return ErrNothingToUndo
	}

	a := e.undo[len(e.undo)-1]
	if err := e.apply(a.start, a.start+int64(len(a.newText)), a.oldText); err != nil {
		return fmt.Errorf("undo %s: %w", a.Description(), err)
	}
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, a)
	return nil
}

// Redo redoes the last undone edit.
func (e *Engine) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	if len(e.redo) == 0 {
		return ErrNothingToRedo
	}

	a := e.redo[len(e.redo)-1]
	if err := e.apply(a.start, a.start+int64(len(a.oldText)), a.newText); err != nil {
		return fmt.Errorf("redo %s: %w", a.Description(), err)
	}
	e.redo = e.redo[:len(e.redo)-1]
	e.undo = append(e.undo, a)
	return nil
}

// CanUndo returns true if there are edits to undo.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.undo) > 0
}

// CanRedo returns true if there are edits to redo.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.redo) > 0
}

// Settings returns the view settings lines are wrapped with.
func (e *Engine) Settings() config.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// ApplySettings rewraps every line with settings.
func (e *Engine) ApplySettings(settings config.Settings) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.rows.ApplySettings(settings, e.lines); err != nil {
		return fmt.Errorf("applying settings: %w", err)
	}
	e.settings = settings
	return nil
}

// TotalRows returns the number of visual rows of the document.
func (e *Engine) TotalRows() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rows.TotalRows()
}

// RowCount returns the number of visual rows of line.
func (e *Engine) RowCount(line int) (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rows.RowCount(line)
}

// LineStartRow returns the first visual row of line.
func (e *Engine) LineStartRow(line int) (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rows.LineStartRow(line)
}

// RowToLine returns the line displayed on row and which of its rows it is.
func (e *Engine) RowToLine(row uint32) (line, subRow int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rows.RowToLine(row)
}

// RowToLineFloat is RowToLine for a fractional row position.
func (e *Engine) RowToLineFloat(pos float64) (line, subRow int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rows.RowToLineFloat(pos)
}

// apply replaces [start, end) with text and updates both indexes. Only the
// lines the edit touches are re-measured, unless it splits or forms a
// "\r\n" pair, in which case the indexes are rebuilt.
func (e *Engine) apply(start, end int64, text string) error {
	newText := e.text[:start] + text + e.text[end:]

	sp, ep := e.index.OffsetToPoint(start), e.index.OffsetToPoint(end)
	if !e.exact(sp, start) || !e.exact(ep, end) ||
		joinsCRLF(newText, start, start+int64(len(text))) {
		return e.rebuild(newText)
	}

	oldCount := e.index.LineCount()
	if err := e.index.ApplyEdit(Edit{Range: Range{Start: sp, End: ep}, Text: text}); err != nil {
		return err
	}
	e.text = newText
	e.revision++

	first, last := int(sp.Line), int(ep.Line)
	newLast := last + e.index.LineCount() - oldCount
	contents := e.lineContents(first, newLast)
	e.lines = slices.Concat(e.lines[:first], contents, e.lines[last+1:])

	if last > first {
		if err := e.rows.DeleteLines(first+1, last-first); err != nil {
			return err
		}
	}
	if _, err := e.rows.UpdateLine(first, contents[0]); err != nil {
		return err
	}
	if len(contents) > 1 {
		return e.rows.InsertLines(first+1, contents[1:])
	}
	return nil
}

// rebuild replaces the text and recomputes both indexes from scratch.
func (e *Engine) rebuild(text string) error {
	e.text = text
	e.revision++
	e.index = lineindex.New(text)
	e.lines = e.lineContents(0, e.index.LineCount()-1)

	if err := e.rows.DeleteLines(0, e.rows.LineCount()); err != nil {
		return err
	}
	e.logger.Debug("rebuilt indexes for %d lines", len(e.lines))
	return e.rows.InsertLines(0, e.lines)
}

// exact reports whether p addresses offset without clamping, which fails
// for offsets inside a "\r\n" terminator.
func (e *Engine) exact(p Point, offset int64) bool {
	o, err := e.index.PointToOffset(p)
	return err == nil && o == offset
}

// joinsCRLF reports whether a '\r' and '\n' meet at any of the offsets.
func joinsCRLF(text string, offsets ...int64) bool {
	for _, j := range offsets {
		if j > 0 && j < int64(len(text)) && text[j-1] == '\r' && text[j] == '\n' {
			return true
		}
	}
	return false
}

// lineContents returns the contents of lines first through last.
func (e *Engine) lineContents(first, last int) []string {
	contents := make([]string, 0, last-first+1)
	for line := first; line <= last; line++ {
		start, _ := e.index.LineStart(line)
		n, _ := e.index.LineLength(line)
		contents = append(contents, e.text[start:start+int64(n)])
	}
	return contents
}

func (e *Engine) checkRange(start, end int64) error {
	if start < 0 || end > int64(len(e.text)) {
		return fmt.Errorf("%w: [%d, %d) not in [0, %d]", ErrOffsetOutOfRange, start, end, len(e.text))
	}
	if end < start {
		return fmt.Errorf("%w: end %d before start %d", ErrRangeInvalid, end, start)
	}
	return nil
}
