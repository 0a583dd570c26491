// Package clock abstracts the current time so scheduling logic can be
// tested against fixed instants instead of the wall clock.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the wall clock time in UTC.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Ensure SystemClock implements Clock
var _ Clock = SystemClock{}
