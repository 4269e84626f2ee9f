package timeutil

import (
	"fmt"
	"time"
)

// NowFunc supplies the current wall-clock time in the recorder's zone.
// Injectable so tests can drive a deterministic clock.
type NowFunc func() time.Time

// StampMillis is the row timestamp layout: YYYY-MM-DD HH:MM:SS.mmm.
const StampMillis = "2006-01-02 15:04:05.000"

// DateKey is the layout used in daily file names.
const DateKey = "2006.01.02"

// TimeKey is the layout used in collision-fallback file names.
const TimeKey = "15.04.05"

// LoadZone resolves an IANA zone name, defaulting to America/New_York
// when empty.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		name = "America/New_York"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// ZoneNow returns a NowFunc reporting wall-clock time in loc.
func ZoneNow(loc *time.Location) NowFunc {
	return func() time.Time { return time.Now().In(loc) }
}

// FormatStamp renders t with millisecond precision.
func FormatStamp(t time.Time) string {
	return t.Format(StampMillis)
}

// MidnightOf returns local midnight at the start of t's day.
func MidnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextMidnight returns local midnight at the start of the day after t.
func NextMidnight(t time.Time) time.Time {
	return MidnightOf(t).AddDate(0, 0, 1)
}
