package leave_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/leave-engine/leave"
)

func TestStructuredErrors_UnwrapToSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{&leave.NotFoundError{Kind: "employee", ID: "mallory"}, leave.ErrNotFound},
		{&leave.InvalidDateError{Field: "start", Value: "bogus"}, leave.ErrInvalidInput},
		{&leave.InvalidDurationError{}, leave.ErrInvalidDuration},
		{&leave.InsufficientNoticeError{Type: "annual", Required: 2, Given: 1}, leave.ErrInsufficientNotice},
		{&leave.InsufficientBalanceError{Type: "casual"}, leave.ErrInsufficientBalance},
		{&leave.ConflictError{Existing: 1}, leave.ErrConflict},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.err, tt.sentinel)
		assert.True(t, leave.IsClientError(tt.err), "%T", tt.err)
	}
}

func TestIsClientError_InternalFailuresAreNot(t *testing.T) {
	assert.False(t, leave.IsClientError(errors.New("disk on fire")))
	assert.False(t, leave.IsClientError(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, leave.IsNotFound(&leave.NotFoundError{Kind: "leave record", ID: "9"}))
	assert.False(t, leave.IsNotFound(&leave.ConflictError{Existing: 1}))
}

func TestDays_Arithmetic(t *testing.T) {
	a := leave.DaysOf(5)
	b := leave.DaysOf(3)

	assert.Equal(t, 8, a.Add(b).Int())
	assert.Equal(t, 2, a.Sub(b).Int())
	assert.True(t, a.GreaterThan(b))
	assert.True(t, b.LessThan(a))
	assert.True(t, b.Sub(a).IsNegative())
	assert.True(t, a.Sub(a).IsZero())

	parsed, err := leave.ParseDays("7")
	assert.NoError(t, err)
	assert.True(t, parsed.Equal(leave.DaysOf(7)))

	_, err = leave.ParseDays("many")
	assert.Error(t, err)
}
