package lineindex

import "fmt"

// Point is a line and column position.
// Both are 0-indexed and Column is measured in bytes.
type Point struct {
	Line   uint32
	Column uint32
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Point) After(other Point) bool {
	return p.Compare(other) > 0
}

// Range is a span between two points. Start is inclusive, End exclusive.
type Range struct {
	Start Point
	End   Point
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Edit replaces the text covered by Range with Text.
type Edit struct {
	Range Range
	Text  string
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%s, %q)", e.Range.Start, e.Text)
	}
	if e.Text == "" {
		return fmt.Sprintf("Delete[%s-%s)", e.Range.Start, e.Range.End)
	}
	return fmt.Sprintf("Replace[%s-%s) with %q", e.Range.Start, e.Range.End, e.Text)
}
