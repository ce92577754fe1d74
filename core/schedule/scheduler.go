package schedule

import (
	"encoding/json"
	"time"

	"booking-cost/internal/errors"
)

// MaxRangeDays is the length of the actionable exception window
const MaxRangeDays = 366

// RawRange is a date-picker value in the caller's local wall clock.
// Pickers anchor each day at local noon; a zero time is a missing endpoint.
type RawRange struct {
	Start time.Time
	End   time.Time
}

// NormalizedRange holds zone-anchored start-of-day endpoints.
// A zero time is a missing endpoint.
type NormalizedRange struct {
	Start time.Time
	End   time.Time
}

// Complete reports whether both endpoints are present
func (r NormalizedRange) Complete() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// Raw returns the range as picker input, for re-normalization
func (r NormalizedRange) Raw() RawRange {
	return RawRange{Start: r.Start, End: r.End}
}

// Equal compares endpoints as instants
func (r NormalizedRange) Equal(other NormalizedRange) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End)
}

// Days is the number of calendar days covered by [Start, End)
func (r NormalizedRange) Days(zone *time.Location) int {
	if !r.Complete() {
		return 0
	}
	n := 0
	for d := StartOfDay(r.Start, zone); d.Before(r.End); d = AddDays(d, 1, zone) {
		n++
	}
	return n
}

// ISO returns both endpoints as calendar-date strings in zone.
// Missing endpoints are returned as "".
func (r NormalizedRange) ISO(zone *time.Location) (start, end string) {
	if !r.Start.IsZero() {
		start = FormatISO(r.Start, zone)
	}
	if !r.End.IsZero() {
		end = FormatISO(r.End, zone)
	}
	return start, end
}

// ParseRange parses a pair of ISO calendar dates into a normalized range.
// Empty strings leave the endpoint missing.
func ParseRange(start, end string, zone *time.Location) (NormalizedRange, error) {
	if zone == nil {
		return NormalizedRange{}, errors.New(errors.TypeZoneConversion, "no time zone given")
	}
	var r NormalizedRange
	var err error
	if start != "" {
		if r.Start, err = ParseISO(start, zone); err != nil {
			return NormalizedRange{}, err
		}
	}
	if end != "" {
		if r.End, err = ParseISO(end, zone); err != nil {
			return NormalizedRange{}, err
		}
	}
	return r, nil
}

// Normalize converts each present endpoint from the caller's local wall
// clock into zone and truncates it to 00:00 there. Normalize is idempotent:
// Normalize(n.Raw(), zone) equals n for any n it returned.
func Normalize(raw RawRange, zone *time.Location) (NormalizedRange, error) {
	if zone == nil {
		return NormalizedRange{}, errors.New(errors.TypeZoneConversion, "no time zone given")
	}
	var r NormalizedRange
	if !raw.Start.IsZero() {
		r.Start = StartOfDay(FromLocal(raw.Start, zone), zone)
	}
	if !raw.End.IsZero() {
		r.End = StartOfDay(FromLocal(raw.End, zone), zone)
	}
	return r, nil
}

// Display converts a normalized range back to the local wall clock for a
// picker. The calendar days are preserved across DST transitions.
func Display(r NormalizedRange, zone, local *time.Location) RawRange {
	var out RawRange
	if !r.Start.IsZero() {
		out.Start = ToLocal(r.Start, zone, local)
	}
	if !r.End.IsZero() {
		out.End = ToLocal(r.End, zone, local)
	}
	return out
}

// Window returns the actionable window [start of today, that + maxDays days)
// in zone. A non-positive maxDays uses MaxRangeDays.
func Window(today time.Time, zone *time.Location, maxDays int) (start, end time.Time) {
	if maxDays <= 0 {
		maxDays = MaxRangeDays
	}
	start = StartOfDay(today, zone)
	end = AddDays(start, maxDays, zone)
	return start, end
}

// IsOutsideRange reports whether a picker day (local wall clock) falls
// outside the actionable window of zone.
func IsOutsideRange(day time.Time, zone *time.Location, today time.Time, maxDays int) bool {
	start, end := Window(today, zone, maxDays)
	return !IsInRange(FromLocal(day, zone), start, end)
}

// Validate checks a normalized range against ordering and the actionable
// window. Ordering is checked first, so an inverted range is reported as
// such even when it also lies outside the window.
func Validate(r NormalizedRange, zone *time.Location, today time.Time, maxDays int) error {
	if zone == nil {
		return errors.New(errors.TypeZoneConversion, "no time zone given")
	}
	if r.Start.IsZero() {
		return errors.Input("start date is required").WithContext("field", "startDate")
	}
	if r.End.IsZero() {
		return errors.Input("end date is required").WithContext("field", "endDate")
	}

	startISO, endISO := r.ISO(zone)
	if !r.End.After(r.Start) {
		return errors.Newf(errors.TypeInvertedRange, "end date %s must be after start date %s", endISO, startISO).
			WithContext("start", startISO).
			WithContext("end", endISO)
	}

	windowStart, windowEnd := Window(today, zone, maxDays)
	for _, ep := range []struct {
		field string
		at    time.Time
	}{{"startDate", r.Start}, {"endDate", r.End}} {
		if !IsInRange(ep.at, windowStart, windowEnd) {
			return errors.Newf(errors.TypeOutOfRange, "%s %s is outside %s..%s", ep.field, FormatISO(ep.at, zone),
				FormatISO(windowStart, zone), FormatISO(windowEnd, zone)).
				WithContext("field", ep.field)
		}
	}
	return nil
}

// MarshalJSON renders present endpoints as RFC 3339 instants
func (r NormalizedRange) MarshalJSON() ([]byte, error) {
	type wire struct {
		Start *time.Time `json:"startDate,omitempty"`
		End   *time.Time `json:"endDate,omitempty"`
	}
	var w wire
	if !r.Start.IsZero() {
		w.Start = &r.Start
	}
	if !r.End.IsZero() {
		w.End = &r.End
	}
	return json.Marshal(w)
}
