package lineindex

import (
	"fmt"

	"github.com/dshills/rowmap/internal/engine/prefixsum"
)

// span is the shape of one line: content bytes and terminator bytes.
type span struct {
	content uint32
	eol     uint8
}

// splitLines measures the lines of text. There is always at least one span;
// the last one has no terminator.
func splitLines(text string) []span {
	spans := make([]span, 0, 1)
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			spans = append(spans, span{content: uint32(i - start), eol: 1})
			start = i + 1
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				spans = append(spans, span{content: uint32(i - start), eol: 2})
				i++
			} else {
				spans = append(spans, span{content: uint32(i - start), eol: 1})
			}
			start = i + 1
		}
	}
	return append(spans, span{content: uint32(len(text) - start)})
}

// Index converts between byte offsets and points for a text whose content
// it does not hold.
type Index struct {
	starts *prefixsum.Index // content + terminator bytes per line
	eols   []uint8          // terminator bytes per line
}

// New builds an index for text.
func New(text string) *Index {
	spans := splitLines(text)
	weights := make([]uint32, len(spans))
	eols := make([]uint8, len(spans))
	for i, s := range spans {
		weights[i] = s.content + uint32(s.eol)
		eols[i] = s.eol
	}
	return &Index{
		starts: prefixsum.New(weights),
		eols:   eols,
	}
}

// LineCount returns the number of lines. An empty text has one line.
func (x *Index) LineCount() int {
	return x.starts.Len()
}

// Len returns the total number of bytes in the text.
func (x *Index) Len() int64 {
	return int64(x.starts.TotalSum())
}

// LineLength returns the content length of line, excluding its terminator.
func (x *Index) LineLength(line int) (uint32, error) {
	if err := x.checkLine(line); err != nil {
		return 0, err
	}
	return x.contentLen(line), nil
}

// LineStart returns the offset of the first byte of line.
func (x *Index) LineStart(line int) (int64, error) {
	if err := x.checkLine(line); err != nil {
		return 0, err
	}
	return int64(x.starts.SumThrough(line - 1)), nil
}

// OffsetToPoint converts a byte offset to a point. Offsets outside the text
// are clamped; offsets inside a line terminator resolve to the end of the
// line's content.
func (x *Index) OffsetToPoint(offset int64) Point {
	if offset < 0 {
		offset = 0
	}
	if total := x.Len(); offset > total {
		offset = total
	}

	loc := x.starts.Locate(offset)
	col := uint32(loc.Remainder)
	if n := x.contentLen(loc.Index); col > n {
		col = n
	}
	return Point{Line: uint32(loc.Index), Column: col}
}

// PointToOffset converts a point to a byte offset. The column is clamped to
// the line's content length.
func (x *Index) PointToOffset(p Point) (int64, error) {
	line := int(p.Line)
	if err := x.checkLine(line); err != nil {
		return 0, err
	}
	col := p.Column
	if n := x.contentLen(line); col > n {
		col = n
	}
	return int64(x.starts.SumThrough(line-1)) + int64(col), nil
}

// ApplyEdits applies edits in order. Each edit's range refers to the text
// as left by the previous edit.
func (x *Index) ApplyEdits(edits []Edit) error {
	for i, e := range edits {
		if err := x.ApplyEdit(e); err != nil {
			return fmt.Errorf("edit %d %s: %w", i, e, err)
		}
	}
	return nil
}

// ApplyEdit replaces the range of e with its text.
func (x *Index) ApplyEdit(e Edit) error {
	start, end, err := x.clampRange(e.Range)
	if err != nil {
		return err
	}
	if err := x.deleteRange(start, end); err != nil {
		return err
	}
	if e.Text == "" {
		return nil
	}
	return x.insertText(start, e.Text)
}

// deleteRange joins the head of start's line with the tail of end's line.
func (x *Index) deleteRange(start, end Point) error {
	first, last := int(start.Line), int(end.Line)
	tail := x.contentLen(last) - end.Column
	eol := x.eols[last]

	if last > first {
		if _, err := x.starts.Remove(first+1, last-first); err != nil {
			return err
		}
		x.eols = append(x.eols[:first+1], x.eols[last+1:]...)
	}
	x.eols[first] = eol
	_, err := x.starts.Replace(first, start.Column+tail+uint32(eol))
	return err
}

// insertText splits the line at p and splices the lines of text in between.
func (x *Index) insertText(p Point, text string) error {
	line := int(p.Line)
	spans := splitLines(text)
	head := p.Column
	tail := x.contentLen(line) - p.Column
	eol := x.eols[line]

	if len(spans) == 1 {
		_, err := x.starts.Replace(line, head+spans[0].content+tail+uint32(eol))
		return err
	}

	firstSpan := spans[0]
	if _, err := x.starts.Replace(line, head+firstSpan.content+uint32(firstSpan.eol)); err != nil {
		return err
	}
	x.eols[line] = firstSpan.eol

	rest := spans[1:]
	weights := make([]uint32, len(rest))
	eols := make([]uint8, len(rest))
	for i, s := range rest {
		weights[i] = s.content + uint32(s.eol)
		eols[i] = s.eol
	}
	lastSpan := len(rest) - 1
	weights[lastSpan] = rest[lastSpan].content + tail + uint32(eol)
	eols[lastSpan] = eol

	if _, err := x.starts.Insert(line+1, weights); err != nil {
		return err
	}
	x.eols = append(x.eols[:line+1], append(eols, x.eols[line+1:]...)...)
	return nil
}

// clampRange validates the lines of r and clamps its columns.
func (x *Index) clampRange(r Range) (Point, Point, error) {
	if r.End.Before(r.Start) {
		return Point{}, Point{}, fmt.Errorf("%w: %s before %s", ErrRangeInvalid, r.End, r.Start)
	}
	for _, p := range []Point{r.Start, r.End} {
		if err := x.checkLine(int(p.Line)); err != nil {
			return Point{}, Point{}, err
		}
	}
	start, end := r.Start, r.End
	if n := x.contentLen(int(start.Line)); start.Column > n {
		start.Column = n
	}
	if n := x.contentLen(int(end.Line)); end.Column > n {
		end.Column = n
	}
	// Clamping can reorder points on the same line.
	if end.Before(start) {
		end = start
	}
	return start, end, nil
}

func (x *Index) contentLen(line int) uint32 {
	return x.starts.Value(line) - uint32(x.eols[line])
}

func (x *Index) checkLine(line int) error {
	if line < 0 || line >= x.starts.Len() {
		return fmt.Errorf("%w: line %d, have %d", ErrLineOutOfRange, line, x.starts.Len())
	}
	return nil
}
