package leave

import "time"

// Clock supplies the current date so notice-period checks are deterministic
// in tests.
type Clock interface {
	Today() Date
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// FixedClock always returns the same date.
type FixedClock struct {
	Date Date
}

func (c FixedClock) Today() Date { return c.Date }
