// Package schedule normalizes and validates timezone-anchored date ranges.
//
// Every function takes the zones it works in as arguments. Nothing here
// reads time.Local or time.Now, so results depend only on the inputs.
package schedule

import (
	"strings"
	"time"

	"booking-cost/internal/errors"
)

// ISODate is the calendar-date layout used for interchange
const ISODate = "2006-01-02"

// LoadZone resolves an IANA zone name. The ambient "Local" zone and the empty
// name are refused so that callers always thread an explicit zone.
func LoadZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "Local" {
		return nil, errors.Newf(errors.TypeZoneConversion, "time zone %q is not an explicit IANA zone", name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeZoneConversion, err, "unknown time zone %q", name)
	}
	return loc, nil
}

// FromLocal reads the wall clock of t in its own location and returns the
// instant with the same wall clock in zone.
func FromLocal(t time.Time, zone *time.Location) time.Time {
	y, m, d := t.Date()
	return onDay(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), zone)
}

// ToLocal is the inverse of FromLocal: it reads the wall clock of t in zone
// and returns the instant with the same wall clock in local.
func ToLocal(t time.Time, zone, local *time.Location) time.Time {
	return FromLocal(t.In(zone), local)
}

// StartOfDay truncates t to 00:00 of its calendar day in zone.
func StartOfDay(t time.Time, zone *time.Location) time.Time {
	y, m, d := t.In(zone).Date()
	return onDay(y, m, d, 0, 0, 0, 0, zone)
}

// AddDays moves n calendar days from the start of t's day in zone.
// The result is a start of day; DST changes do not shift it.
func AddDays(t time.Time, n int, zone *time.Location) time.Time {
	y, m, d := t.In(zone).Date()
	return onDay(y, m, d+n, 0, 0, 0, 0, zone)
}

// IsInRange reports start <= t < end
func IsInRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// SameDay reports whether a and b fall on the same calendar day in zone
func SameDay(a, b time.Time, zone *time.Location) bool {
	ay, am, ad := a.In(zone).Date()
	by, bm, bd := b.In(zone).Date()
	return ay == by && am == bm && ad == bd
}

// FormatISO renders the calendar day of t in zone as YYYY-MM-DD
func FormatISO(t time.Time, zone *time.Location) string {
	return t.In(zone).Format(ISODate)
}

// ParseISO parses YYYY-MM-DD as the start of that day in zone.
// ParseISO(FormatISO(d, z), z) equals d for every start-of-day d in z.
func ParseISO(s string, zone *time.Location) (time.Time, error) {
	t, err := time.Parse(ISODate, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Parsing("invalid calendar date "+s, err)
	}
	y, m, d := t.Date()
	return onDay(y, m, d, 0, 0, 0, 0, zone), nil
}

// onDay builds a wall-clock time in loc that is guaranteed to land on the
// requested calendar day. time.Date may resolve a wall clock inside a DST
// gap to the previous day (for zones that spring forward at midnight); in
// that case the result is moved forward an hour at a time until it is on
// the right day.
func onDay(y int, m time.Month, d, hh, mm, ss, ns int, loc *time.Location) time.Time {
	t := time.Date(y, m, d, hh, mm, ss, ns, loc)
	want := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		gy, gm, gd := t.Date()
		got := time.Date(gy, gm, gd, 0, 0, 0, 0, time.UTC)
		switch {
		case got.Before(want):
			t = t.Add(time.Hour)
		case got.After(want):
			t = t.Add(-time.Hour)
		default:
			return t
		}
	}
	return t
}
