package layout

import "github.com/rivo/uniseg"

// TabExpander provides tab stop arithmetic.
type TabExpander struct {
	tabWidth int
}

// NewTabExpander creates a tab expander with the given tab width.
func NewTabExpander(tabWidth int) *TabExpander {
	if tabWidth < 1 {
		tabWidth = 4
	}
	return &TabExpander{tabWidth: tabWidth}
}

// DefaultTabExpander returns a tab expander with the default tab width of 4.
func DefaultTabExpander() *TabExpander {
	return NewTabExpander(4)
}

// TabWidth returns the tab width.
func (t *TabExpander) TabWidth() int {
	return t.tabWidth
}

// NextTabStop returns the next tab stop column after col.
func (t *TabExpander) NextTabStop(col int) int {
	return col + t.TabStopOffset(col)
}

// TabStopOffset returns how many columns a tab at col expands to.
func (t *TabExpander) TabStopOffset(col int) int {
	return t.tabWidth - (col % t.tabWidth)
}

// PrevTabStop returns the tab stop before col, or 0.
func (t *TabExpander) PrevTabStop(col int) int {
	if col <= 0 {
		return 0
	}
	if col%t.tabWidth == 0 {
		return col - t.tabWidth
	}
	return (col / t.tabWidth) * t.tabWidth
}

// ExpandedWidth returns the visual width of s with tabs expanded.
func (t *TabExpander) ExpandedWidth(s string) int {
	col := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if g.Str() == "\t" {
			col = t.NextTabStop(col)
			continue
		}
		col += g.Width()
	}
	return col
}
