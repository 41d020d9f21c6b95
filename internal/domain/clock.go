package domain

import "time"

// Clock abstracts the current time so services can be tested with fixed
// timestamps (check-in timestamps, timeline bucketing, early-bird cutoffs).
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
