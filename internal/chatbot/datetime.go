package chatbot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnresolvedDateTime is returned when no parameter combination
// yields a usable date or time.
type ErrUnresolvedDateTime struct {
	Reason string
}

func (e *ErrUnresolvedDateTime) Error() string {
	return "could not resolve date/time: " + e.Reason
}

// DateTimeInput carries the raw NLU parameters feeding the resolver.
// Fields are tried in declaration order; the first date signal wins.
type DateTimeInput struct {
	DateExact    string // "le 10 mars", "1er avril"
	RelativeWord string // "aujourd'hui", "demain", "après-demain", "hier"
	DateTimeISO  string // full ISO timestamp from the NLU date-time entity
	DateNoTime   string // "10/03", "10/03/2026", "10-03-2026", "2026-03-10"
	WeekdayWord  string // "lundi" .. "dimanche"
	TimeISO      string // ISO timestamp whose clock part is wanted
	TimeWord     string // "midi", "minuit", "matin", "après-midi", "soir", "nuit"
	TimeText     string // "18h", "18h30", "18:30", "18"
}

func (in DateTimeInput) empty() bool {
	return in.DateExact == "" && in.RelativeWord == "" && in.DateTimeISO == "" &&
		in.DateNoTime == "" && in.WeekdayWord == "" && in.TimeISO == "" &&
		in.TimeWord == "" && in.TimeText == ""
}

// hasDateSignal reports whether any date-bearing field is set.
func (in DateTimeInput) hasDateSignal() bool {
	return in.DateExact != "" || in.RelativeWord != "" || in.DateTimeISO != "" ||
		in.DateNoTime != "" || in.WeekdayWord != ""
}

// ResolvedDateTime is the outcome: a calendar day, an optional clock
// time, and the phrase echoed back to the user.
type ResolvedDateTime struct {
	Date    time.Time // midnight in the booking timezone
	HasDate bool
	Start   string // "HH:mm", empty if the user gave no time
	HasTime bool
	Display string
}

// DateTimeResolver turns the NLU's half-parsed French date and time
// parameters into a concrete day and clock time.
type DateTimeResolver struct {
	tz  *time.Location
	now func() time.Time
}

func NewDateTimeResolver(tz *time.Location) *DateTimeResolver {
	return &DateTimeResolver{
		tz:  tz,
		now: time.Now,
	}
}

var frenchMonths = map[string]time.Month{
	"janvier": time.January, "février": time.February, "fevrier": time.February,
	"mars": time.March, "avril": time.April, "mai": time.May, "juin": time.June,
	"juillet": time.July, "août": time.August, "aout": time.August,
	"septembre": time.September, "octobre": time.October,
	"novembre": time.November, "décembre": time.December, "decembre": time.December,
}

var frenchMonthNames = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

var frenchWeekdays = map[string]time.Weekday{
	"dimanche": time.Sunday, "lundi": time.Monday, "mardi": time.Tuesday,
	"mercredi": time.Wednesday, "jeudi": time.Thursday,
	"vendredi": time.Friday, "samedi": time.Saturday,
}

var relativeOffsets = map[string]int{
	"aujourd'hui":  0,
	"demain":       1,
	"après-demain": 2,
	"apres-demain": 2,
	"hier":         -1,
}

// timeWords are spoken times mapped to a starting hour.
var timeWords = map[string]int{
	"midi": 12, "minuit": 0, "matin": 9,
	"après-midi": 15, "apres-midi": 15,
	"soir": 19, "nuit": 23,
}

var (
	exactDateRe = regexp.MustCompile(`^(?:le\s+)?(\d{1,2}|1er)\s+(\p{L}+)$`)
	slashDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{4}))?$`)
	dashDateRe  = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	isoDateRe   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	clockTextRe = regexp.MustCompile(`^(\d{1,2})(?:[h:](\d{1,2})?)?$`)
)

// Resolve merges all date/time signals into one ResolvedDateTime.
func (r *DateTimeResolver) Resolve(in DateTimeInput) (*ResolvedDateTime, error) {
	if in.empty() {
		return nil, &ErrUnresolvedDateTime{Reason: "no date or time parameter provided"}
	}

	now := r.now().In(r.tz)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.tz)

	out := &ResolvedDateTime{}

	// Date: first signal wins, in a fixed priority order.
	switch {
	case in.DateExact != "":
		d, err := r.parseExactDate(in.DateExact, now.Year())
		if err != nil {
			return nil, err
		}
		out.Date, out.HasDate = d, true

	case in.RelativeWord != "":
		offset, ok := relativeOffsets[normalize(in.RelativeWord)]
		if !ok {
			return nil, &ErrUnresolvedDateTime{Reason: "unknown relative day " + in.RelativeWord}
		}
		out.Date, out.HasDate = today.AddDate(0, 0, offset), true

	case in.DateTimeISO != "":
		t, err := parseISO(in.DateTimeISO, r.tz)
		if err != nil {
			return nil, &ErrUnresolvedDateTime{Reason: "unparseable date-time " + in.DateTimeISO}
		}
		out.Date = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.tz)
		out.HasDate = true
		if t.Hour() != 0 || t.Minute() != 0 {
			out.Start = fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
			out.HasTime = true
		}

	case in.DateNoTime != "":
		d, err := r.parseBareDate(in.DateNoTime, now.Year())
		if err != nil {
			return nil, err
		}
		out.Date, out.HasDate = d, true

	case in.WeekdayWord != "":
		wd, ok := frenchWeekdays[normalize(in.WeekdayWord)]
		if !ok {
			return nil, &ErrUnresolvedDateTime{Reason: "unknown weekday " + in.WeekdayWord}
		}
		diff := (int(wd) - int(today.Weekday()) + 7) % 7
		out.Date, out.HasDate = today.AddDate(0, 0, diff), true
	}

	// Time: merge the clock part onto the date (or onto today when the
	// user gave a bare time).
	if !out.HasTime {
		switch {
		case in.TimeISO != "":
			t, err := parseISO(in.TimeISO, r.tz)
			if err != nil {
				return nil, &ErrUnresolvedDateTime{Reason: "unparseable time " + in.TimeISO}
			}
			out.Start = fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
			out.HasTime = true

		case in.TimeWord != "":
			word := strings.TrimSuffix(normalize(in.TimeWord), "h")
			hour, ok := timeWords[word]
			if !ok {
				return nil, &ErrUnresolvedDateTime{Reason: "unknown time word " + in.TimeWord}
			}
			out.Start = fmt.Sprintf("%02d:00", hour)
			out.HasTime = true

		case in.TimeText != "":
			clock, err := parseClockText(in.TimeText)
			if err != nil {
				return nil, err
			}
			out.Start = clock
			out.HasTime = true
		}
	}

	if out.HasTime && !out.HasDate {
		out.Date, out.HasDate = today, true
	}

	if !out.HasDate {
		return nil, &ErrUnresolvedDateTime{Reason: "no usable date or time"}
	}

	out.Display = r.display(out, in)
	return out, nil
}

// parseExactDate handles spoken dates like "le 10 mars" or "1er avril".
// The current year is assumed.
func (r *DateTimeResolver) parseExactDate(raw string, year int) (time.Time, error) {
	m := exactDateRe.FindStringSubmatch(normalize(raw))
	if m == nil {
		return time.Time{}, &ErrUnresolvedDateTime{Reason: "unparseable date " + raw}
	}

	dayStr := m[1]
	if dayStr == "1er" {
		dayStr = "1"
	}
	day, _ := strconv.Atoi(dayStr)

	month, ok := frenchMonths[m[2]]
	if !ok {
		return time.Time{}, &ErrUnresolvedDateTime{Reason: "unknown month " + m[2]}
	}

	return time.Date(year, month, day, 0, 0, 0, 0, r.tz), nil
}

// parseBareDate handles numeric dates. A missing year means this year.
func (r *DateTimeResolver) parseBareDate(raw string, year int) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if m := slashDateRe.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		y := year
		if m[3] != "" {
			y, _ = strconv.Atoi(m[3])
		}
		return time.Date(y, time.Month(month), day, 0, 0, 0, 0, r.tz), nil
	}
	if m := dashDateRe.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		return time.Date(y, time.Month(month), day, 0, 0, 0, 0, r.tz), nil
	}
	if m := isoDateRe.FindStringSubmatch(raw); m != nil {
		y, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return time.Date(y, time.Month(month), day, 0, 0, 0, 0, r.tz), nil
	}

	return time.Time{}, &ErrUnresolvedDateTime{Reason: "unparseable date " + raw}
}

// parseClockText handles "18", "18h", "18h30", "18:30".
// A missing minute part means on the hour; garbage falls back to noon.
func parseClockText(raw string) (string, error) {
	m := clockTextRe.FindStringSubmatch(strings.TrimSpace(strings.ToLower(raw)))
	if m == nil {
		return "12:00", nil
	}

	hour, _ := strconv.Atoi(m[1])
	if hour > 23 {
		return "", &ErrUnresolvedDateTime{Reason: "invalid hour " + raw}
	}
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
		if minute > 59 {
			return "", &ErrUnresolvedDateTime{Reason: "invalid minutes " + raw}
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// display formats the phrase echoed back to the user:
// date only -> "10 mars 2026", bare time only -> "18:30",
// both -> "10 mars 2026 à 18:30".
func (r *DateTimeResolver) display(out *ResolvedDateTime, in DateTimeInput) string {
	dateStr := fmt.Sprintf("%d %s %d",
		out.Date.Day(), frenchMonthNames[out.Date.Month()-1], out.Date.Year())

	switch {
	case !out.HasTime:
		return dateStr
	case !in.hasDateSignal():
		return out.Start
	default:
		return dateStr + " à " + out.Start
	}
}

// DisplayFor formats a known day/time pair the same way Resolve does.
func (r *DateTimeResolver) DisplayFor(date time.Time, start string) string {
	d := fmt.Sprintf("%d %s %d", date.Day(), frenchMonthNames[date.Month()-1], date.Year())
	if start == "" {
		return d
	}
	return d + " à " + start
}

// parseISO accepts RFC 3339 and the truncated layouts the NLU emits.
func parseISO(raw string, tz *time.Location) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, tz); err == nil {
			return t.In(tz), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

// normalize lowercases and trims the NLU's raw French tokens.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
