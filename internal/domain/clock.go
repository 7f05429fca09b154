package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps loaded datasets and derives the latest reporting year.
// Tests freeze it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the package time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the package clock.
func Now() time.Time {
	return clock.Now()
}

// LatestReportingYear is the most recent year TRI data is expected to be
// published for: the year before the current one.
func LatestReportingYear() int {
	return clock.Now().Year() - 1
}
