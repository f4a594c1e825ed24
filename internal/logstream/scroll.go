package logstream

// DefaultScrollThreshold is the distance from the bottom beyond which the
// user is considered to have scrolled away.
const DefaultScrollThreshold = 50

// ScrollTracker arbitrates between auto-scroll and manual scrolling.
// Distances are in whatever unit the view measures (pixels, rows).
type ScrollTracker struct {
	threshold    int
	autoScroll   bool
	userScrolled bool
}

// NewScrollTracker creates a tracker with auto-scroll enabled.
// A negative threshold falls back to DefaultScrollThreshold.
func NewScrollTracker(threshold int) *ScrollTracker {
	if threshold < 0 {
		threshold = DefaultScrollThreshold
	}

	return &ScrollTracker{
		threshold:    threshold,
		autoScroll:   true,
		userScrolled: false,
	}
}

// Observe records the current distance from the bottom after a scroll event.
func (s *ScrollTracker) Observe(distanceFromBottom int) {
	if distanceFromBottom < 0 {
		distanceFromBottom = -distanceFromBottom
	}

	s.userScrolled = distanceFromBottom > s.threshold
}

// OnAppend is called after every buffer mutation; it reports whether the view
// should scroll to the newest entry.
func (s *ScrollTracker) OnAppend() bool {
	return s.autoScroll && !s.userScrolled
}

// ShowJumpToLatest reports whether the "new logs" affordance is visible.
func (s *ScrollTracker) ShowJumpToLatest() bool {
	return s.userScrolled
}

// JumpToLatest clears the manual-scroll flag. The caller scrolls to the bottom.
func (s *ScrollTracker) JumpToLatest() {
	s.userScrolled = false
}

// SetAutoScroll toggles auto-scroll.
func (s *ScrollTracker) SetAutoScroll(enabled bool) {
	s.autoScroll = enabled
}

// AutoScroll reports whether auto-scroll is enabled.
func (s *ScrollTracker) AutoScroll() bool {
	return s.autoScroll
}

// UserScrolled reports whether the user scrolled away from the bottom.
func (s *ScrollTracker) UserScrolled() bool {
	return s.userScrolled
}
