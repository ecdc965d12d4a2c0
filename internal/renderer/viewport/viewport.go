// Package viewport provides viewport management for the renderer.
//
// The viewport scrolls in visual rows rather than buffer lines, so wrapped
// lines scroll one row at a time. Row positions come from a RowSource.
package viewport

import (
	"fmt"
	"math"
	"sync"

	"github.com/dshills/rowmap/internal/config"
)

// RowSource maps buffer lines to visual rows.
// *rowmap.RowMap implements it.
type RowSource interface {
	LineCount() int
	TotalRows() uint32
	RowCount(line int) (uint32, error)
	LineStartRow(line int) (uint32, error)
	RowToLine(row uint32) (line, subRow int)
	RowToLineFloat(pos float64) (line, subRow int)
}

// Tuning for the scroll animation.
const (
	// snapDistance is how close, in rows, the animation gets before it lands.
	snapDistance = 0.01
	// minStep is the smallest distance, in rows, an animation frame moves.
	minStep = 0.05
)

// Viewport represents the visible rows of a buffer.
//
// Queries on the row source update its caches, so every method takes an
// exclusive lock. Mutate the source only while no viewport call is in
// progress, then call Refresh.
type Viewport struct {
	mu sync.Mutex

	source RowSource

	// Size in screen cells
	width  int
	height int

	// Scroll position in rows; fractional while animating
	top       float64
	target    int
	animating bool

	smoothScroll bool
	margin       int
}

// New creates a viewport over source with the given size.
// Width and height are clamped to a minimum of 1.
func New(source RowSource, width, height int) *Viewport {
	return &Viewport{
		source: source,
		width:  max(width, 1),
		height: max(height, 1),
		margin: config.DefaultScrollOff,
	}
}

// Width returns the viewport width.
func (v *Viewport) Width() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width
}

// Height returns the viewport height in rows.
func (v *Viewport) Height() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// TopRow returns the first visible row.
func (v *Viewport) TopRow() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.topRow()
}

func (v *Viewport) topRow() int {
	return int(math.Floor(v.top))
}

// Resize updates the viewport size and re-clamps the scroll position.
// Width and height are clamped to a minimum of 1.
func (v *Viewport) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.width = max(width, 1)
	v.height = max(height, 1)
	v.clamp()
}

// SetMargin sets how many rows ScrollToReveal keeps around a line.
// Negative values are treated as 0.
func (v *Viewport) SetMargin(rows int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.margin = max(rows, 0)
}

// Margin returns the configured scroll margin.
func (v *Viewport) Margin() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.margin
}

// SetSmoothScroll enables or disables smooth scrolling.
func (v *Viewport) SetSmoothScroll(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.smoothScroll = enabled
	if !enabled {
		v.stop()
	}
}

// SmoothScroll returns whether smooth scrolling is enabled.
func (v *Viewport) SmoothScroll() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.smoothScroll
}

// ApplySettings takes the scroll margin and smooth scrolling from settings.
func (v *Viewport) ApplySettings(settings config.Settings) {
	v.SetMargin(settings.ScrollOff)
	v.SetSmoothScroll(settings.SmoothScroll)
}

// Refresh re-clamps the scroll position after the row source changed.
func (v *Viewport) Refresh() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.clamp()
}

// VisibleLineRange returns the first and last buffer lines with a row on
// screen. An empty source returns (0, 0).
func (v *Viewport) VisibleLineRange() (first, last int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	first, _ = v.source.RowToLineFloat(v.top)
	last, _ = v.source.RowToLine(uint32(v.topRow() + v.height - 1))
	return first, last
}

// FirstLineSubRow returns which row of the first visible line is at the top
// of the screen.
func (v *Viewport) FirstLineSubRow() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	_, sub := v.source.RowToLineFloat(v.top)
	return sub
}

// ScreenRowToLine returns the buffer line and its row shown at screenRow.
// Screen rows outside the viewport are clamped to it.
func (v *Viewport) ScreenRowToLine(screenRow int) (line, subRow int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	screenRow = min(max(screenRow, 0), v.height-1)
	return v.source.RowToLine(uint32(v.topRow() + screenRow))
}

// LineToScreenRow returns the screen row of the first visible row of line.
// Returns -1 if no row of line is visible.
func (v *Viewport) LineToScreenRow(line int) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	start, count, err := v.lineRows(line)
	if err != nil {
		return -1
	}
	top := v.topRow()
	bottom := top + v.height - 1
	if start+count-1 < top || start > bottom {
		return -1
	}
	return max(start, top) - top
}

// IsLineVisible returns true if any row of line is on screen.
func (v *Viewport) IsLineVisible(line int) bool {
	return v.LineToScreenRow(line) >= 0
}

// IsAnimating returns true if a scroll animation is in progress.
func (v *Viewport) IsAnimating() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.animating
}

// ScrollTo scrolls so that row is at the top. The row is clamped so the
// last row of the buffer does not scroll above the bottom of the screen.
func (v *Viewport) ScrollTo(row int, smooth bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollTo(row, smooth)
}

// ScrollBy scrolls by a delta number of rows.
func (v *Viewport) ScrollBy(deltaRows int, smooth bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollTo(v.target+deltaRows, smooth)
}

// ScrollToLine scrolls so that the first row of line is at the top.
func (v *Viewport) ScrollToLine(line int, smooth bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	start, _, err := v.lineRows(line)
	if err != nil {
		return fmt.Errorf("scroll to line: %w", err)
	}
	v.scrollTo(start, smooth)
	return nil
}

// ScrollToReveal scrolls minimally so that every row of line is visible
// with the margin kept above and below it. A line taller than the screen
// is revealed from its first row. Returns true if scrolling occurred.
func (v *Viewport) ScrollToReveal(line int, smooth bool) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	start, count, err := v.lineRows(line)
	if err != nil {
		return false, fmt.Errorf("reveal line: %w", err)
	}

	margin := v.effectiveMargin()
	top := v.target
	end := start + count - 1

	newTop := top
	switch {
	case start < top+margin:
		newTop = start - margin
	case end > top+v.height-1-margin:
		newTop = min(end+margin-v.height+1, start)
	}
	newTop = v.clampTop(newTop)
	if newTop == top {
		return false, nil
	}
	v.scrollTo(newTop, smooth)
	return true, nil
}

// CenterOn scrolls so that the middle row of line is centered.
func (v *Viewport) CenterOn(line int, smooth bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	start, count, err := v.lineRows(line)
	if err != nil {
		return fmt.Errorf("center on line: %w", err)
	}
	v.scrollTo(start+count/2-v.height/2, smooth)
	return nil
}

// PageUp scrolls up by one page (viewport height minus overlap).
func (v *Viewport) PageUp(smooth bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollTo(v.target-v.pageSize(), smooth)
}

// PageDown scrolls down by one page (viewport height minus overlap).
func (v *Viewport) PageDown(smooth bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollTo(v.target+v.pageSize(), smooth)
}

// HalfPageUp scrolls up by half a page.
func (v *Viewport) HalfPageUp(smooth bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollTo(v.target-max(v.height/2, 1), smooth)
}

// HalfPageDown scrolls down by half a page.
func (v *Viewport) HalfPageDown(smooth bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollTo(v.target+max(v.height/2, 1), smooth)
}

// ScrollToTop scrolls to the first row.
func (v *Viewport) ScrollToTop(smooth bool) {
	v.ScrollTo(0, smooth)
}

// ScrollToBottom scrolls so the last row is at the bottom of the screen.
func (v *Viewport) ScrollToBottom(smooth bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollTo(v.maxTop(), smooth)
}

// Update advances scroll animation by dt seconds.
// Returns true if the viewport moved.
func (v *Viewport) Update(dt float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.animating {
		return false
	}

	diff := float64(v.target) - v.top
	if math.Abs(diff) < snapDistance {
		v.stop()
		return diff != 0
	}

	// Exponential decay: ~30% of the remaining distance per frame at 60fps.
	move := diff * (1.0 - math.Pow(0.1, dt*10))
	if math.Abs(move) < minStep {
		move = math.Copysign(minStep, diff)
	}
	if math.Abs(diff-move) < snapDistance || math.Abs(move) >= math.Abs(diff) {
		v.stop()
		return true
	}
	v.top += move
	return true
}

// StopAnimation lands any ongoing scroll animation on its target.
func (v *Viewport) StopAnimation() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stop()
}

func (v *Viewport) stop() {
	v.top = float64(v.target)
	v.animating = false
}

func (v *Viewport) scrollTo(row int, smooth bool) {
	v.target = v.clampTop(row)
	if smooth && v.smoothScroll && float64(v.target) != v.top {
		v.animating = true
		return
	}
	v.stop()
}

// clamp keeps the position valid for the current size and source.
func (v *Viewport) clamp() {
	v.target = v.clampTop(v.target)
	if v.top > float64(v.maxTop()) || !v.animating {
		v.stop()
	}
}

func (v *Viewport) clampTop(row int) int {
	return min(max(row, 0), v.maxTop())
}

// maxTop is the largest top row that keeps the screen full.
func (v *Viewport) maxTop() int {
	return max(int(v.source.TotalRows())-v.height, 0)
}

func (v *Viewport) pageSize() int {
	return max(v.height-2, 1) // Keep 2 rows of overlap
}

// lineRows returns the first row of line and its row count.
func (v *Viewport) lineRows(line int) (start, count int, err error) {
	s, err := v.source.LineStartRow(line)
	if err != nil {
		return 0, 0, err
	}
	n, err := v.source.RowCount(line)
	if err != nil {
		return 0, 0, err
	}
	return int(s), int(n), nil
}
