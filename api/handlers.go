package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"booking-cost/core/availability"
	"booking-cost/core/breakdown"
	"booking-cost/core/money"
	"booking-cost/core/schedule"
	"booking-cost/core/types"
	"booking-cost/internal/errors"
)

const localLayout = "2006-01-02T15:04:05"

// handleBreakdown handles POST /v1/breakdown
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req BreakdownRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	opts := breakdown.Options{
		DefaultCurrency:  s.opts.DefaultCurrency,
		VerifyLineTotals: req.VerifyLineTotals,
	}
	if req.Currency != "" {
		opts.DefaultCurrency = money.Currency(req.Currency)
	}
	if req.Booking != nil {
		period, err := bookingPeriod(req.Booking)
		if err != nil {
			s.writeError(w, err)
			return
		}
		opts.Period = period
	}

	// NO PRICING LOGIC HERE
	result, err := breakdown.Compute(req.LineItems, types.UnitType(req.UnitType), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := BreakdownResponse{
		Breakdown: result,
		Metadata: ResponseMetadata{
			RequestID:     chimw.GetReqID(r.Context()),
			InputHash:     computeInputHash(&req),
			EngineVersion: s.opts.Version,
			DurationMs:    time.Since(start).Milliseconds(),
		},
	}
	if req.Party != "" {
		resp.View = result.Filter(types.Party(req.Party))
		if resp.View == nil {
			resp.View = []breakdown.Line{}
		}
	}
	s.writeJSON(w, resp, http.StatusOK)
}

func bookingPeriod(in *BookingInput) (*types.BookingPeriod, error) {
	zone, err := schedule.LoadZone(in.TimeZone)
	if err != nil {
		return nil, err
	}
	rg, err := schedule.ParseRange(in.StartDate, in.EndDate, zone)
	if err != nil {
		return nil, err
	}
	return &types.BookingPeriod{Start: rg.Start, End: rg.End}, nil
}

// handleNormalize handles POST /v1/ranges/normalize
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	zone, err := schedule.LoadZone(req.TimeZone)
	if err != nil {
		s.writeError(w, err)
		return
	}
	local, err := schedule.LoadZone(req.LocalTimeZone)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var raw schedule.RawRange
	if req.Start != "" {
		if raw.Start, err = time.ParseInLocation(localLayout, req.Start, local); err != nil {
			s.writeError(w, errors.Parsing("invalid start", err))
			return
		}
	}
	if req.End != "" {
		if raw.End, err = time.ParseInLocation(localLayout, req.End, local); err != nil {
			s.writeError(w, errors.Parsing("invalid end", err))
			return
		}
	}

	normalized, err := schedule.Normalize(raw, zone)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, rangeResponse(normalized, zone, local), http.StatusOK)
}

func rangeResponse(rg schedule.NormalizedRange, zone, local *time.Location) *RangeResponse {
	resp := &RangeResponse{Range: rg}
	resp.StartDate, resp.EndDate = rg.ISO(zone)
	if local != nil {
		shown := schedule.Display(rg, zone, local)
		resp.Display = &DisplayPair{}
		if !shown.Start.IsZero() {
			resp.Display.Start = shown.Start.Format(time.RFC3339)
		}
		if !shown.End.IsZero() {
			resp.Display.End = shown.End.Format(time.RFC3339)
		}
	}
	return resp
}

// parseRangeRequest resolves the zone, the range and "today"
func (s *Server) parseRangeRequest(req *RangeRequest) (schedule.NormalizedRange, *time.Location, time.Time, error) {
	zone, err := schedule.LoadZone(req.TimeZone)
	if err != nil {
		return schedule.NormalizedRange{}, nil, time.Time{}, err
	}
	rg, err := schedule.ParseRange(req.StartDate, req.EndDate, zone)
	if err != nil {
		return schedule.NormalizedRange{}, nil, time.Time{}, err
	}
	today := s.opts.Now()
	if req.Today != "" {
		if today, err = schedule.ParseISO(req.Today, zone); err != nil {
			return schedule.NormalizedRange{}, nil, time.Time{}, err
		}
	}
	return rg, zone, today, nil
}

// handleValidate handles POST /v1/ranges/validate
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req RangeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	rg, zone, today, err := s.parseRangeRequest(&req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := schedule.Validate(rg, zone, today, s.opts.MaxRangeDays); err != nil {
		s.writeError(w, err)
		return
	}

	windowStart, windowEnd := schedule.Window(today, zone, s.opts.MaxRangeDays)
	s.writeJSON(w, ValidateResponse{
		Valid:       true,
		WindowStart: schedule.FormatISO(windowStart, zone),
		WindowEnd:   schedule.FormatISO(windowEnd, zone),
	}, http.StatusOK)
}

// handleListExceptions handles GET /v1/listings/{listingID}/exceptions?timeZone=
func (s *Server) handleListExceptions(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	zone, err := schedule.LoadZone(r.URL.Query().Get("timeZone"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	existing, err := s.service.ListExceptions(r.Context(), listingID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := ExceptionListResponse{Exceptions: make([]ExceptionResponse, 0, len(existing))}
	for _, e := range existing {
		resp.Exceptions = append(resp.Exceptions, exceptionResponse(e, zone))
	}
	if rg, ok := availability.InitialRange(existing); ok {
		resp.Initial = rangeResponse(rg, zone, nil)
	}
	s.writeJSON(w, resp, http.StatusOK)
}

// handleReplaceExceptions handles PUT /v1/listings/{listingID}/exceptions
func (s *Server) handleReplaceExceptions(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")

	var req RangeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	rg, zone, today, err := s.parseRangeRequest(&req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var planZone *time.Location
	if req.PlanTimeZone != "" {
		if planZone, err = schedule.LoadZone(req.PlanTimeZone); err != nil {
			s.writeError(w, err)
			return
		}
	}

	created, err := s.editor.Replace(r.Context(), listingID, rg, zone, planZone, today)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, exceptionResponse(created, zone), http.StatusOK)
}

func exceptionResponse(e availability.Exception, zone *time.Location) ExceptionResponse {
	return ExceptionResponse{
		ID:        e.ID,
		ListingID: e.ListingID,
		StartDate: schedule.FormatISO(e.Start, zone),
		EndDate:   schedule.FormatISO(e.End, zone),
		Seats:     e.Seats,
	}
}
