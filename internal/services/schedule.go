package services

import (
	"fmt"
	"strings"
	"time"
)

// DailyTime is a wall-clock time of day.
type DailyTime struct {
	Hour   int
	Minute int
}

func (t DailyTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseDailyTime parses "HH:MM" in 24-hour form.
func ParseDailyTime(s string) (DailyTime, error) {
	trimmed := strings.TrimSpace(s)
	parsed, err := time.Parse("15:04", trimmed)
	if err != nil || len(trimmed) != len("15:04") {
		return DailyTime{}, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	return DailyTime{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

// NextRun returns the first occurrence of at strictly after now, in now's
// location. The date is rebuilt with time.Date so DST shifts keep the wall
// clock time.
func NextRun(now time.Time, at DailyTime) time.Time {
	y, m, d := now.Date()
	next := time.Date(y, m, d, at.Hour, at.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(y, m, d+1, at.Hour, at.Minute, 0, 0, now.Location())
	}
	return next
}

// DailyChecker decides whether a once-a-day job still has to run today.
type DailyChecker struct{}

// IsDue returns true if the job never ran or last ran on an earlier date.
func (DailyChecker) IsDue(lastRun, now time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	return lastRun.In(now.Location()).Format("2006-01-02") != now.Format("2006-01-02")
}
