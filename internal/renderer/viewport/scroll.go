package viewport

// ScrollState represents the current scroll state.
type ScrollState struct {
	Top       float64 // Current position in rows, fractional while animating
	TargetRow int     // Row the animation is heading to
	Animating bool
}

// State returns the current scroll state.
func (v *Viewport) State() ScrollState {
	v.mu.Lock()
	defer v.mu.Unlock()

	return ScrollState{
		Top:       v.top,
		TargetRow: v.target,
		Animating: v.animating,
	}
}

// ScrollDirection represents the scroll direction.
type ScrollDirection uint8

const (
	ScrollNone ScrollDirection = iota
	ScrollUp
	ScrollDown
)

// ScrollingDirection returns the direction of the current animation.
func (v *Viewport) ScrollingDirection() ScrollDirection {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case !v.animating:
		return ScrollNone
	case float64(v.target) > v.top:
		return ScrollDown
	case float64(v.target) < v.top:
		return ScrollUp
	default:
		return ScrollNone
	}
}

// RowScrollOffset returns the fractional row offset during smooth scroll,
// for backends that can draw partial rows. Returns 0.0 when not animating.
func (v *Viewport) RowScrollOffset() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.top - float64(v.topRow())
}

// ScrollPercent returns how far through the document we've scrolled (0.0 to 1.0).
func (v *Viewport) ScrollPercent() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	maxTop := v.maxTop()
	if maxTop == 0 {
		return 0.0
	}
	return v.top / float64(maxTop)
}

// ScrollToPercent scrolls to a percentage of the document.
func (v *Viewport) ScrollToPercent(percent float64, smooth bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	percent = min(max(percent, 0), 1)
	v.scrollTo(int(float64(v.maxTop())*percent), smooth)
}
