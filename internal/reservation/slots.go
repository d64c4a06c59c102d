package reservation

import (
	"fmt"
	"regexp"
)

// Opening hours of every terrain. Used by the free-slot walk.
const (
	OpeningClock = "08:00"
	ClosingClock = "23:00"

	// SlotMinutes is the fixed length of a reservation.
	SlotMinutes = 90
)

// TimeSlot is a half-open [Start, End) wall-clock interval.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

var clockRe = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// ParseClock converts "HH:mm" to minutes since midnight.
func ParseClock(s string) (int, error) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, ErrInvalidTime
	}
	var h, min int
	fmt.Sscanf(s, "%d:%d", &h, &min)
	return h*60 + min, nil
}

// FormatClock renders minutes since midnight as "HH:mm".
func FormatClock(minutes int) string {
	minutes %= 24 * 60
	if minutes < 0 {
		minutes += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SlotEnd returns the end of the 90-minute slot starting at start.
// A slot starting late in the evening wraps past midnight on the clock
// ("23:45" ends at "01:15").
func SlotEnd(start string) (string, error) {
	m, err := ParseClock(start)
	if err != nil {
		return "", err
	}
	return FormatClock(m + SlotMinutes), nil
}

// Overlaps reports whether two wall-clock intervals intersect.
// Intervals that merely touch ("10:00-11:30" and "11:30-13:00") do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	as, err1 := ParseClock(aStart)
	ae, err2 := ParseClock(aEnd)
	bs, err3 := ParseClock(bStart)
	be, err4 := ParseClock(bEnd)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return false
	}
	return as < be && ae > bs
}

// FreeSlots walks the busy intervals (sorted by start time) and returns
// the gaps between OpeningClock and ClosingClock.
func FreeSlots(busy []TimeSlot) []TimeSlot {
	open, _ := ParseClock(OpeningClock)
	close_, _ := ParseClock(ClosingClock)

	free := make([]TimeSlot, 0)
	cursor := open

	for _, b := range busy {
		start, err := ParseClock(b.Start)
		if err != nil {
			continue
		}
		end, err := ParseClock(b.End)
		if err != nil {
			continue
		}

		if start > cursor {
			free = append(free, TimeSlot{Start: FormatClock(cursor), End: FormatClock(min(start, close_))})
		}
		if end > cursor {
			cursor = end
		}
		if cursor >= close_ {
			return free
		}
	}

	if cursor < close_ {
		free = append(free, TimeSlot{Start: FormatClock(cursor), End: FormatClock(close_)})
	}
	return free
}
