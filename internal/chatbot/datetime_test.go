package chatbot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestResolver pins the clock to Wednesday 2026-03-04 10:00 UTC so
// relative dates and weekdays are deterministic.
func newTestResolver(t *testing.T) *DateTimeResolver {
	t.Helper()
	r := NewDateTimeResolver(time.UTC)
	r.now = func() time.Time {
		return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	}
	return r
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveSpokenFrenchDate(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "le 10 mars", want: day(2026, time.March, 10)},
		{in: "10 mars", want: day(2026, time.March, 10)},
		{in: "1er avril", want: day(2026, time.April, 1)},
		{in: "le 25 décembre", want: day(2026, time.December, 25)},
		{in: "Le 5 Juin", want: day(2026, time.June, 5)},
	}

	for _, tt := range tests {
		got, err := r.Resolve(DateTimeInput{DateExact: tt.in})
		require.NoError(t, err, "input %q", tt.in)
		assert.True(t, got.HasDate, "input %q", tt.in)
		assert.False(t, got.HasTime, "input %q", tt.in)
		assert.Equal(t, tt.want, got.Date, "input %q", tt.in)
	}
}

func TestResolveRelativeWords(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "aujourd'hui", want: day(2026, time.March, 4)},
		{in: "demain", want: day(2026, time.March, 5)},
		{in: "après-demain", want: day(2026, time.March, 6)},
		{in: "hier", want: day(2026, time.March, 3)},
	}

	for _, tt := range tests {
		got, err := r.Resolve(DateTimeInput{RelativeWord: tt.in})
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got.Date, "input %q", tt.in)
	}
}

func TestResolveBareDates(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "10/03", want: day(2026, time.March, 10)},
		{in: "10/03/2027", want: day(2027, time.March, 10)},
		{in: "10-03-2027", want: day(2027, time.March, 10)},
		{in: "2027-03-10", want: day(2027, time.March, 10)},
	}

	for _, tt := range tests {
		got, err := r.Resolve(DateTimeInput{DateNoTime: tt.in})
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got.Date, "input %q", tt.in)
	}
}

func TestResolveWeekday(t *testing.T) {
	r := newTestResolver(t)

	// The pinned now is a Wednesday.
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "jeudi", want: day(2026, time.March, 5)},
		{in: "samedi", want: day(2026, time.March, 7)},
		{in: "dimanche", want: day(2026, time.March, 8)},
		{in: "lundi", want: day(2026, time.March, 9)},
		// The same weekday as today resolves to today, not next week.
		{in: "mercredi", want: day(2026, time.March, 4)},
	}

	for _, tt := range tests {
		got, err := r.Resolve(DateTimeInput{WeekdayWord: tt.in})
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got.Date, "input %q", tt.in)
	}
}

func TestResolveISODateTime(t *testing.T) {
	r := newTestResolver(t)

	got, err := r.Resolve(DateTimeInput{DateTimeISO: "2026-03-10T18:30:00Z"})
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.March, 10), got.Date)
	assert.True(t, got.HasTime)
	assert.Equal(t, "18:30", got.Start)
	assert.Equal(t, "10 mars 2026 à 18:30", got.Display)
}

func TestResolveTimeText(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		in   string
		want string
	}{
		{in: "18", want: "18:00"},
		{in: "18h", want: "18:00"},
		{in: "18h30", want: "18:30"},
		{in: "18:30", want: "18:30"},
		{in: "8h05", want: "08:05"},
		// Free text the patterns miss falls back to noon.
		{in: "vers la fin de matinée", want: "12:00"},
	}

	for _, tt := range tests {
		got, err := r.Resolve(DateTimeInput{TimeText: tt.in})
		require.NoError(t, err, "input %q", tt.in)
		assert.True(t, got.HasTime, "input %q", tt.in)
		assert.Equal(t, tt.want, got.Start, "input %q", tt.in)
		// A bare time lands on today.
		assert.Equal(t, day(2026, time.March, 4), got.Date, "input %q", tt.in)
	}
}

func TestResolveTimeWords(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		in   string
		want string
	}{
		{in: "midi", want: "12:00"},
		{in: "minuit", want: "00:00"},
		{in: "matin", want: "09:00"},
		{in: "après-midi", want: "15:00"},
		{in: "soir", want: "19:00"},
		{in: "nuit", want: "23:00"},
	}

	for _, tt := range tests {
		got, err := r.Resolve(DateTimeInput{TimeWord: tt.in})
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got.Start, "input %q", tt.in)
	}
}

func TestResolveInvalidTime(t *testing.T) {
	r := newTestResolver(t)

	_, err := r.Resolve(DateTimeInput{TimeText: "25h"})
	var unresolved *ErrUnresolvedDateTime
	assert.ErrorAs(t, err, &unresolved)
}

func TestResolveDisplayRules(t *testing.T) {
	r := newTestResolver(t)

	// Date only.
	got, err := r.Resolve(DateTimeInput{DateExact: "le 10 mars"})
	require.NoError(t, err)
	assert.Equal(t, "10 mars 2026", got.Display)

	// Bare time only.
	got, err = r.Resolve(DateTimeInput{TimeText: "18h30"})
	require.NoError(t, err)
	assert.Equal(t, "18:30", got.Display)

	// Date and time.
	got, err = r.Resolve(DateTimeInput{RelativeWord: "demain", TimeText: "18h30"})
	require.NoError(t, err)
	assert.Equal(t, "5 mars 2026 à 18:30", got.Display)
}

func TestResolveEmptyInput(t *testing.T) {
	r := newTestResolver(t)

	_, err := r.Resolve(DateTimeInput{})
	var unresolved *ErrUnresolvedDateTime
	require.ErrorAs(t, err, &unresolved)
}

func TestResolveDatePriorityOrder(t *testing.T) {
	r := newTestResolver(t)

	// A spoken date beats everything else present at the same time.
	got, err := r.Resolve(DateTimeInput{
		DateExact:    "le 10 mars",
		RelativeWord: "demain",
		WeekdayWord:  "samedi",
	})
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.March, 10), got.Date)
}

func TestDisplayFor(t *testing.T) {
	r := newTestResolver(t)

	assert.Equal(t, "10 mars 2026", r.DisplayFor(day(2026, time.March, 10), ""))
	assert.Equal(t, "10 mars 2026 à 18:00", r.DisplayFor(day(2026, time.March, 10), "18:00"))
}
