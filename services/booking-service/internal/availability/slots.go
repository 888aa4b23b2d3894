package availability

import "sort"

// Slots returns every start time, stepped by step minutes from each window's
// start, for which an appointment of duration minutes fits inside the window
// and overlaps none of the busy intervals. The result is ascending even when
// windows are given out of order.
func Slots(windows []Window, busy []Window, duration, step int) []Clock {
	if duration <= 0 || step <= 0 {
		return nil
	}

	var slots []Clock
	for _, w := range windows {
		if !w.Valid() {
			continue
		}
		for t := w.Start; t.Add(duration) <= w.End; t = t.Add(step) {
			if !overlapsAny(Span(t, duration), busy) {
				slots = append(slots, t)
			}
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots
}
