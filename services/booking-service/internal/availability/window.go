package availability

// Window is the half-open interval [Start, End) of a day.
type Window struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// Span returns the interval covered by an appointment of duration minutes starting at start.
func Span(start Clock, duration int) Window {
	return Window{Start: start, End: start.Add(duration)}
}

func (w Window) Valid() bool {
	return w.Start >= 0 && w.End <= MinutesPerDay && w.Start < w.End
}

// Contains reports whether other lies entirely within w.
func (w Window) Contains(other Window) bool {
	return w.Start <= other.Start && other.End <= w.End
}

// Overlaps uses half-open semantics: touching endpoints do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start < other.End && other.Start < w.End
}

func overlapsAny(span Window, busy []Window) bool {
	for _, b := range busy {
		if span.Overlaps(b) {
			return true
		}
	}
	return false
}

func containedInAny(span Window, windows []Window) bool {
	for _, w := range windows {
		if w.Contains(span) {
			return true
		}
	}
	return false
}
