package notify

import "time"

// repeatingSchedule fires at first and then every interval after each run.
type repeatingSchedule struct {
	first time.Time
	every time.Duration
}

func (s repeatingSchedule) Next(t time.Time) time.Time {
	if t.Before(s.first) {
		return s.first
	}
	return t.Add(s.every)
}

// oneShotSchedule fires once at at. The zero time tells cron the entry is
// done.
type oneShotSchedule struct {
	at time.Time
}

func (s oneShotSchedule) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at
	}
	return time.Time{}
}
