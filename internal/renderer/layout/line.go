// Package layout measures how buffer lines occupy visual rows.
package layout

import (
	"github.com/rivo/uniseg"
)

// maxWordLookback is how far back, in columns, a word wrap may move the
// break to reach a space.
const maxWordLookback = 20

// LineLayout is the visual shape of a single buffer line.
type LineLayout struct {
	Width      int   // Total visual width in columns
	WrapPoints []int // Visual columns where a new row starts
	RowCount   int   // Number of visual rows (1 if no wrap)
	HasTabs    bool  // Contains tab characters
	HasWide    bool  // Contains double-width graphemes
}

// VisualRow returns which visual row a visual column falls on.
func (l LineLayout) VisualRow(visCol int) int {
	row := 0
	for _, wp := range l.WrapPoints {
		if visCol < wp {
			break
		}
		row++
	}
	return row
}

// RowStartColumn returns the visual column where a wrapped row starts.
func (l LineLayout) RowStartColumn(row int) int {
	if row <= 0 || len(l.WrapPoints) == 0 {
		return 0
	}
	if row > len(l.WrapPoints) {
		row = len(l.WrapPoints)
	}
	return l.WrapPoints[row-1]
}

// RowEndColumn returns the visual column where a wrapped row ends (exclusive).
func (l LineLayout) RowEndColumn(row int) int {
	if row < 0 {
		row = 0
	}
	if row >= len(l.WrapPoints) {
		return l.Width
	}
	return l.WrapPoints[row]
}

// Engine computes line layouts.
type Engine struct {
	tabs       *TabExpander
	wrapWidth  int  // 0 = no wrap
	wrapAtWord bool // Try to wrap at word boundaries
}

// Option configures an Engine.
type Option func(*Engine)

// WithTabWidth sets the tab width. Values below 1 are ignored.
func WithTabWidth(width int) Option {
	return func(e *Engine) {
		if width > 0 {
			e.tabs = NewTabExpander(width)
		}
	}
}

// WithWrap enables wrapping at width columns. A width of 0 disables it.
func WithWrap(width int, atWord bool) Option {
	return func(e *Engine) {
		if width < 0 {
			width = 0
		}
		e.wrapWidth = width
		e.wrapAtWord = atWord
	}
}

// NewEngine creates a layout engine. By default tabs are 4 columns wide and
// lines do not wrap.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		tabs:       DefaultTabExpander(),
		wrapAtWord: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TabWidth returns the tab width.
func (e *Engine) TabWidth() int {
	return e.tabs.TabWidth()
}

// WrapWidth returns the wrap width (0 = no wrap).
func (e *Engine) WrapWidth() int {
	return e.wrapWidth
}

// WrapAtWord reports whether wrapping prefers word boundaries.
func (e *Engine) WrapAtWord() bool {
	return e.wrapAtWord
}

// Layout computes the visual layout of line.
func (e *Engine) Layout(line string) LineLayout {
	var layout LineLayout

	visCol := 0
	rowStart := 0
	lastBreak := -1 // column just after the most recent space

	g := uniseg.NewGraphemes(line)
	for g.Next() {
		cluster := g.Str()

		var w int
		if cluster == "\t" {
			layout.HasTabs = true
			w = e.tabs.TabStopOffset(visCol)
		} else {
			w = g.Width()
			if w == 0 {
				continue
			}
			if w > 1 {
				layout.HasWide = true
			}
		}

		for e.wrapWidth > 0 && visCol > rowStart && visCol+w-rowStart > e.wrapWidth {
			wp := visCol
			if e.wrapAtWord && lastBreak > rowStart && visCol-lastBreak <= maxWordLookback {
				wp = lastBreak
			}
			layout.WrapPoints = append(layout.WrapPoints, wp)
			rowStart = wp
		}

		visCol += w
		if cluster == " " || cluster == "\t" {
			lastBreak = visCol
		}
	}

	layout.Width = visCol
	layout.RowCount = len(layout.WrapPoints) + 1
	return layout
}

// RowCount returns the number of visual rows line occupies.
func (e *Engine) RowCount(line string) int {
	return e.Layout(line).RowCount
}
