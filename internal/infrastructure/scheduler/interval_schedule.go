package scheduler

import (
	"fmt"
	"time"
)

// IntervalSchedule runs a job on a fixed cadence, measured from the
// start of the previous run. It drives the per-session dashboard refresh
// pass, whose interval comes from SCHEDULER_REFRESH_INTERVAL (30s by
// default).
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a fixed-interval schedule.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{
		Interval: interval,
	}
}

// Next returns the run time following t.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String describes the schedule, e.g. "@every 30s".
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}
