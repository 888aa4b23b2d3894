package availability

import "testing"

func win(start, end string) Window {
	return Window{Start: MustParseClock(start), End: MustParseClock(end)}
}

func TestWindowOverlapIsHalfOpen(t *testing.T) {
	booked := win("10:00", "11:00")
	if booked.Overlaps(win("11:00", "12:00")) {
		t.Fatalf("touching at end must not overlap")
	}
	if booked.Overlaps(win("09:00", "10:00")) {
		t.Fatalf("touching at start must not overlap")
	}
	if !booked.Overlaps(win("10:59", "11:59")) {
		t.Fatalf("expected overlap one minute before end")
	}
	if !booked.Overlaps(win("09:01", "10:01")) {
		t.Fatalf("expected overlap one minute after start")
	}
}

func TestSlots_FullDay(t *testing.T) {
	slots := Slots([]Window{win("09:00", "17:00")}, nil, 60, 30)
	if len(slots) != 15 {
		t.Fatalf("expected 15 slots, got %d", len(slots))
	}
	if slots[0].String() != "09:00" || slots[len(slots)-1].String() != "16:00" {
		t.Fatalf("unexpected range %s..%s", slots[0], slots[len(slots)-1])
	}
}

func TestSlots_SkipsBusy(t *testing.T) {
	busy := []Window{win("10:00", "11:00")}
	slots := Slots([]Window{win("09:00", "12:00")}, busy, 60, 30)
	var got []string
	for _, s := range slots {
		got = append(got, s.String())
	}
	want := []string{"09:00", "11:00"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSlots_SortedAcrossWindows(t *testing.T) {
	windows := []Window{win("14:00", "15:00"), win("09:00", "10:00")}
	slots := Slots(windows, nil, 30, 30)
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	for i := 1; i < len(slots); i++ {
		if slots[i] <= slots[i-1] {
			t.Fatalf("slots not ascending: %v", slots)
		}
	}
}

func TestSlots_EveryResultFitsAndIsFree(t *testing.T) {
	windows := []Window{win("08:00", "12:00"), win("13:00", "17:30")}
	busy := []Window{win("09:15", "10:00"), win("13:30", "14:45"), win("17:00", "17:30")}
	for _, d := range []int{15, 30, 45, 60, 90} {
		for _, s := range Slots(windows, busy, d, 30) {
			span := Span(s, d)
			if !containedInAny(span, windows) {
				t.Fatalf("duration %d: slot %s not inside a window", d, s)
			}
			if overlapsAny(span, busy) {
				t.Fatalf("duration %d: slot %s overlaps a booking", d, s)
			}
		}
	}
}

func TestSlots_DurationLongerThanWindow(t *testing.T) {
	if got := Slots([]Window{win("09:00", "09:30")}, nil, 60, 30); len(got) != 0 {
		t.Fatalf("expected no slots, got %v", got)
	}
	if got := Slots([]Window{win("09:00", "17:00")}, nil, 0, 30); got != nil {
		t.Fatalf("expected nil for zero duration")
	}
}
