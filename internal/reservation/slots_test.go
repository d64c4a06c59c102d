package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "08:00", want: 480},
		{in: "8:30", want: 510},
		{in: "23:59", want: 1439},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12h30", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidTime, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestSlotEnd(t *testing.T) {
	tests := []struct {
		start string
		want  string
	}{
		{start: "08:00", want: "09:30"},
		{start: "18:30", want: "20:00"},
		{start: "22:30", want: "00:00"},
		{start: "23:00", want: "00:30"},
		// Late slots wrap past midnight on the clock.
		{start: "23:45", want: "01:15"},
	}

	for _, tt := range tests {
		got, err := SlotEnd(tt.start)
		require.NoError(t, err, "start %q", tt.start)
		assert.Equal(t, tt.want, got, "start %q", tt.start)
	}
}

func TestSlotEndInvalid(t *testing.T) {
	_, err := SlotEnd("25:00")
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name         string
		aStart, aEnd string
		bStart, bEnd string
		want         bool
	}{
		{name: "disjoint", aStart: "08:00", aEnd: "09:30", bStart: "10:00", bEnd: "11:30", want: false},
		{name: "touching edges do not overlap", aStart: "10:00", aEnd: "11:30", bStart: "11:30", bEnd: "13:00", want: false},
		{name: "identical", aStart: "10:00", aEnd: "11:30", bStart: "10:00", bEnd: "11:30", want: true},
		{name: "b starts inside a", aStart: "10:00", aEnd: "11:30", bStart: "11:00", bEnd: "12:30", want: true},
		{name: "b ends inside a", aStart: "10:00", aEnd: "11:30", bStart: "09:00", bEnd: "10:30", want: true},
		{name: "a inside b", aStart: "10:30", aEnd: "11:00", bStart: "10:00", bEnd: "11:30", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// Overlap is symmetric.
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestFreeSlots(t *testing.T) {
	tests := []struct {
		name string
		busy []TimeSlot
		want []TimeSlot
	}{
		{
			name: "empty day is one big gap",
			busy: nil,
			want: []TimeSlot{{Start: "08:00", End: "23:00"}},
		},
		{
			name: "one booking in the middle",
			busy: []TimeSlot{{Start: "12:00", End: "13:30"}},
			want: []TimeSlot{
				{Start: "08:00", End: "12:00"},
				{Start: "13:30", End: "23:00"},
			},
		},
		{
			name: "booking at opening",
			busy: []TimeSlot{{Start: "08:00", End: "09:30"}},
			want: []TimeSlot{{Start: "09:30", End: "23:00"}},
		},
		{
			name: "back to back bookings leave no gap between them",
			busy: []TimeSlot{
				{Start: "10:00", End: "11:30"},
				{Start: "11:30", End: "13:00"},
			},
			want: []TimeSlot{
				{Start: "08:00", End: "10:00"},
				{Start: "13:00", End: "23:00"},
			},
		},
		{
			name: "booking running past closing truncates the walk",
			busy: []TimeSlot{{Start: "21:30", End: "23:00"}},
			want: []TimeSlot{{Start: "08:00", End: "21:30"}},
		},
		{
			name: "fully booked day",
			busy: []TimeSlot{{Start: "08:00", End: "23:00"}},
			want: []TimeSlot{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FreeSlots(tt.busy))
		})
	}
}
