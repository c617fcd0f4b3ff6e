package scheduler

import (
	"strconv"
	"strings"
)

type minuteRange struct {
	start int
	end   int
}

// parseTimeSlot reads "HH:MM-HH:MM" into minutes since midnight.
func parseTimeSlot(raw string) (minuteRange, bool) {
	parts := strings.SplitN(strings.TrimSpace(raw), "-", 2)
	if len(parts) != 2 {
		return minuteRange{}, false
	}
	start, ok := parseClock(parts[0])
	if !ok {
		return minuteRange{}, false
	}
	end, ok := parseClock(parts[1])
	if !ok || end <= start {
		return minuteRange{}, false
	}
	return minuteRange{start: start, end: end}, true
}

func parseClock(raw string) (int, bool) {
	hm := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(hm) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(hm[0])
	if err != nil || h < 0 || h > 24 {
		return 0, false
	}
	m, err := strconv.Atoi(hm[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	total := h*60 + m
	if total > 24*60 {
		return 0, false
	}
	return total, true
}

// slotsOverlap treats unreadable slots as overlapping.
func slotsOverlap(a, b string) bool {
	ra, okA := parseTimeSlot(a)
	rb, okB := parseTimeSlot(b)
	if !okA || !okB {
		return true
	}
	return ra.start < rb.end && rb.start < ra.end
}

// slotWithin reports whether slot lies entirely inside window.
func slotWithin(slot, window string) bool {
	rs, okS := parseTimeSlot(slot)
	rw, okW := parseTimeSlot(window)
	if !okS || !okW {
		return false
	}
	return rs.start >= rw.start && rs.end <= rw.end
}

func formatSlot(start, end string) string {
	return strings.TrimSpace(start) + "-" + strings.TrimSpace(end)
}
