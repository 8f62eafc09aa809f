package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
)

func TestParseDate(t *testing.T) {
	d, err := leave.ParseDate("2025-07-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01", d.String())
	assert.True(t, d.Equal(leave.NewDate(2025, time.July, 1)))
}

func TestParseDate_RejectsOtherFormats(t *testing.T) {
	for _, input := range []string{"", "07/01/2025", "2025-7-1", "2025-07-01T00:00:00Z", "yesterday"} {
		_, err := leave.ParseDate(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestDaysSince(t *testing.T) {
	base := leave.NewDate(2025, time.July, 1)

	assert.Equal(t, 0, base.DaysSince(base))
	assert.Equal(t, 9, leave.NewDate(2025, time.July, 10).DaysSince(base))
	assert.Equal(t, -1, leave.NewDate(2025, time.June, 30).DaysSince(base))

	// Across a month boundary.
	assert.Equal(t, 31, leave.NewDate(2025, time.August, 1).DaysSince(base))
}

func TestAddDays(t *testing.T) {
	d := leave.NewDate(2025, time.July, 30).AddDays(3)
	assert.Equal(t, "2025-08-02", d.String())
}

func TestRecordDuration(t *testing.T) {
	rec := leave.LeaveRecord{
		Start: leave.NewDate(2025, time.July, 1),
		End:   leave.NewDate(2025, time.July, 3),
	}
	assert.Equal(t, 3, rec.Duration())

	oneDay := leave.LeaveRecord{
		Start: leave.NewDate(2025, time.July, 10),
		End:   leave.NewDate(2025, time.July, 10),
	}
	assert.Equal(t, 1, oneDay.Duration())
}

func TestRecordOverlaps(t *testing.T) {
	rec := leave.LeaveRecord{
		Start: leave.NewDate(2025, time.July, 5),
		End:   leave.NewDate(2025, time.July, 10),
	}

	tests := []struct {
		name       string
		start, end leave.Date
		want       bool
	}{
		{"identical range", leave.NewDate(2025, time.July, 5), leave.NewDate(2025, time.July, 10), true},
		{"fully inside", leave.NewDate(2025, time.July, 6), leave.NewDate(2025, time.July, 7), true},
		{"touching the start", leave.NewDate(2025, time.July, 1), leave.NewDate(2025, time.July, 5), true},
		{"touching the end", leave.NewDate(2025, time.July, 10), leave.NewDate(2025, time.July, 12), true},
		{"containing the record", leave.NewDate(2025, time.July, 1), leave.NewDate(2025, time.July, 20), true},
		{"ends the day before", leave.NewDate(2025, time.July, 1), leave.NewDate(2025, time.July, 4), false},
		{"starts the day after", leave.NewDate(2025, time.July, 11), leave.NewDate(2025, time.July, 12), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rec.Overlaps(tt.start, tt.end))
		})
	}
}

func TestStatusNonTerminal(t *testing.T) {
	assert.True(t, leave.StatusPending.NonTerminal())
	assert.True(t, leave.StatusApproved.NonTerminal())
	assert.False(t, leave.StatusRejected.NonTerminal())
	assert.False(t, leave.StatusCancelled.NonTerminal())
}
