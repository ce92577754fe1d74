// Package api - API types for price breakdowns and availability exceptions.
// These types define the JSON contract; the engines never see them.
package api

import (
	"booking-cost/core/breakdown"
	"booking-cost/core/schedule"
	"booking-cost/core/types"
)

// BreakdownRequest is the input to POST /v1/breakdown
type BreakdownRequest struct {
	// UnitType is day, night or units
	UnitType string `json:"unitType" validate:"required,oneof=day night units"`

	// Currency is used when there are no line items
	Currency string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`

	// Booking is the dated stay, if any
	Booking *BookingInput `json:"booking,omitempty"`

	// LineItems in display order
	LineItems []types.LineItem `json:"lineItems"`

	// Party limits the response view
	Party string `json:"party,omitempty" validate:"omitempty,oneof=customer provider"`

	// VerifyLineTotals rejects lines whose total is not price x quantity
	VerifyLineTotals bool `json:"verifyLineTotals,omitempty"`
}

// BookingInput is a booking period as ISO calendar dates in a zone
type BookingInput struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	TimeZone  string `json:"timeZone" validate:"required,timezone"`
}

// BreakdownResponse is the output of POST /v1/breakdown
type BreakdownResponse struct {
	Breakdown *breakdown.Result `json:"breakdown"`
	View      []breakdown.Line  `json:"view,omitempty"`
	Metadata  ResponseMetadata  `json:"metadata"`
}

// ResponseMetadata identifies the request and engine
type ResponseMetadata struct {
	RequestID     string `json:"requestId"`
	InputHash     string `json:"inputHash"`
	EngineVersion string `json:"engineVersion"`
	DurationMs    int64  `json:"durationMs"`
}

// NormalizeRequest carries raw picker values in the browser's wall clock
type NormalizeRequest struct {
	TimeZone      string `json:"timeZone" validate:"required,timezone"`
	LocalTimeZone string `json:"localTimeZone" validate:"required,timezone"`
	Start         string `json:"start,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05"`
	End           string `json:"end,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05"`
}

// RangeRequest carries an exception range as ISO calendar dates
type RangeRequest struct {
	TimeZone  string `json:"timeZone" validate:"required,timezone"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`

	// Today overrides the server clock, as a calendar date in TimeZone
	Today string `json:"today,omitempty" validate:"omitempty,datetime=2006-01-02"`

	// PlanTimeZone is the editor's own zone for the cleared plan; empty uses TimeZone
	PlanTimeZone string `json:"planTimeZone,omitempty" validate:"omitempty,timezone"`
}

// RangeResponse is a normalized range in both interchange forms
type RangeResponse struct {
	StartDate string                   `json:"startDate,omitempty"`
	EndDate   string                   `json:"endDate,omitempty"`
	Range     schedule.NormalizedRange `json:"range"`
	Display   *DisplayPair             `json:"display,omitempty"`
}

// DisplayPair is a range converted back to the browser's wall clock
type DisplayPair struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// ValidateResponse is the output of POST /v1/ranges/validate
type ValidateResponse struct {
	Valid       bool   `json:"valid"`
	WindowStart string `json:"windowStart"`
	WindowEnd   string `json:"windowEnd"`
}

// ExceptionResponse is one exception in a listing's zone
type ExceptionResponse struct {
	ID        string `json:"id"`
	ListingID string `json:"listingId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Seats     int    `json:"seats"`
}

// ExceptionListResponse is the output of GET /v1/listings/{id}/exceptions
type ExceptionListResponse struct {
	Exceptions []ExceptionResponse `json:"exceptions"`
	Initial    *RangeResponse      `json:"initial,omitempty"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failure
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}
