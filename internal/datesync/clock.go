package datesync

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The Synchronizer uses it for the default selected date ("today") and for the
// reference year of the month labels.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
