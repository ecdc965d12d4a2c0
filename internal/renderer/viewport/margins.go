package viewport

// maxMarginRatio limits the margin to 1/3 of the viewport height so there
// is always usable space in the center.
const maxMarginRatio = 3

// EffectiveMargin returns the margin adjusted for the viewport height.
func (v *Viewport) EffectiveMargin() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.effectiveMargin()
}

// effectiveMargin returns the clamped margin (internal, no lock).
func (v *Viewport) effectiveMargin() int {
	return min(v.margin, v.height/maxMarginRatio)
}

// LineZone represents where a line starts relative to the margins.
type LineZone uint8

const (
	ZoneCenter       LineZone = iota // Line starts in the comfortable zone
	ZoneTopMargin                    // Line starts in the top margin
	ZoneBottomMargin                 // Line starts in the bottom margin
	ZoneAbove                        // Line starts above the viewport
	ZoneBelow                        // Line starts below the viewport
)

// String returns the zone name.
func (z LineZone) String() string {
	switch z {
	case ZoneCenter:
		return "center"
	case ZoneTopMargin:
		return "top-margin"
	case ZoneBottomMargin:
		return "bottom-margin"
	case ZoneAbove:
		return "above"
	case ZoneBelow:
		return "below"
	default:
		return "unknown"
	}
}

// Zone returns where the first row of line falls.
func (v *Viewport) Zone(line int) (LineZone, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	start, _, err := v.lineRows(line)
	if err != nil {
		return ZoneCenter, err
	}

	top := v.topRow()
	margin := v.effectiveMargin()
	switch screenRow := start - top; {
	case screenRow < 0:
		return ZoneAbove, nil
	case screenRow >= v.height:
		return ZoneBelow, nil
	case screenRow < margin:
		// The first rows of the buffer cannot scroll further down.
		if top == 0 {
			return ZoneCenter, nil
		}
		return ZoneTopMargin, nil
	case screenRow >= v.height-margin:
		if top == v.maxTop() {
			return ZoneCenter, nil
		}
		return ZoneBottomMargin, nil
	default:
		return ZoneCenter, nil
	}
}

// ContentArea is the range of rows inside the margins.
type ContentArea struct {
	StartRow int // Inclusive
	EndRow   int // Inclusive
}

// VisibleContentArea returns the visible rows accounting for margins.
func (v *Viewport) VisibleContentArea() ContentArea {
	v.mu.Lock()
	defer v.mu.Unlock()

	top := v.topRow()
	margin := v.effectiveMargin()
	start := top + margin
	end := max(top+v.height-1-margin, start)
	return ContentArea{StartRow: start, EndRow: end}
}
