package client

import "time"

// Clock supplies timestamps for audit events. Tests inject a fixed clock.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts an ordinary function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

// realClock reads the system time.
type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}
