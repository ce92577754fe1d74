// Package availability models listing availability exceptions and the
// replace-on-edit workflow around the listing availability service.
package availability

import (
	"context"
	"time"

	"booking-cost/core/schedule"
)

// PlanTypeTime is the availability plan type written by the editor
const PlanTypeTime = "availability-plan/time"

// Exception overrides a listing's default availability for [Start, End)
type Exception struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listingId"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Seats     int       `json:"seats"`
}

// Range returns the exception's endpoints as a normalized range
func (e Exception) Range() schedule.NormalizedRange {
	return schedule.NormalizedRange{Start: e.Start, End: e.End}
}

// PlanEntry is one weekly slot of an availability plan
type PlanEntry struct {
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Seats     int    `json:"seats"`
}

// Plan is a listing's default weekly availability
type Plan struct {
	Type     string      `json:"type"`
	TimeZone string      `json:"timezone"`
	Entries  []PlanEntry `json:"entries"`
}

// EmptyPlan is a time plan with no availability in zone
func EmptyPlan(zone string) Plan {
	return Plan{Type: PlanTypeTime, TimeZone: zone, Entries: []PlanEntry{}}
}

// Service is the listing availability collaborator
type Service interface {
	// CreateException stores a new exception and returns its ID
	CreateException(ctx context.Context, e Exception) (string, error)

	// DeleteException removes an exception by ID
	DeleteException(ctx context.Context, id string) error

	// ListExceptions returns a listing's exceptions ordered by start
	ListExceptions(ctx context.Context, listingID string) ([]Exception, error)

	// UpdatePlan replaces a listing's availability plan
	UpdatePlan(ctx context.Context, listingID string, plan Plan) error
}

// InitialRange returns the range of the first existing exception, which is
// what an edit form starts from. ok is false when there are none.
func InitialRange(exceptions []Exception) (r schedule.NormalizedRange, ok bool) {
	if len(exceptions) == 0 {
		return schedule.NormalizedRange{}, false
	}
	return exceptions[0].Range(), true
}
