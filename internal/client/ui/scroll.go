package ui

// ScrollAction says how the message pane should move after a refresh.
type ScrollAction int

const (
	// ScrollNone leaves the pane alone.
	ScrollNone ScrollAction = iota
	// ScrollJump snaps to the bottom without animation.
	ScrollJump
	// ScrollAnimate scrolls to the bottom smoothly.
	ScrollAnimate
)

// BulkArrivalThreshold separates a handful of new messages (animated) from a
// bulk arrival (snapped).
const BulkArrivalThreshold = 10

// ScrollPolicy decides the scroll action from successive message counts:
// the first non-empty render jumps, small growth animates, bulk growth
// jumps, and an unchanged count stays put.
type ScrollPolicy struct {
	seenNonEmpty bool
	lastCount    int
}

func (p *ScrollPolicy) Next(count int) ScrollAction {
	prev := p.lastCount
	seen := p.seenNonEmpty
	p.lastCount = count
	if count > 0 {
		p.seenNonEmpty = true
	}

	if count == 0 {
		return ScrollNone
	}
	if !seen {
		return ScrollJump
	}

	delta := count - prev
	switch {
	case delta <= 0:
		return ScrollNone
	case delta > BulkArrivalThreshold:
		return ScrollJump
	default:
		return ScrollAnimate
	}
}
