package availability

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"booking-cost/core/schedule"
	"booking-cost/internal/errors"
)

// ExceptionSeats is the seat count of an exception written by the editor
const ExceptionSeats = 1

// Editor replaces a listing's availability with a single exception range.
//
// The service has no partial update, so an edit is: clear the plan, delete
// every existing exception, then create the new one. Creation never starts
// until all deletes have succeeded.
type Editor struct {
	service Service
	maxDays int
	logger  *zap.Logger
}

// NewEditor creates an Editor. maxDays <= 0 uses schedule.MaxRangeDays.
func NewEditor(service Service, maxDays int, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{service: service, maxDays: maxDays, logger: logger}
}

// Current returns the range an edit starts from
func (e *Editor) Current(ctx context.Context, listingID string) (schedule.NormalizedRange, bool, error) {
	existing, err := e.service.ListExceptions(ctx, listingID)
	if err != nil {
		return schedule.NormalizedRange{}, false, err
	}
	r, ok := InitialRange(existing)
	return r, ok, nil
}

// Replace validates r in zone against today's window and makes it the
// listing's only exception. The cleared plan is written in planZone, the
// zone of whoever makes the edit; nil uses zone.
func (e *Editor) Replace(ctx context.Context, listingID string, r schedule.NormalizedRange, zone, planZone *time.Location, today time.Time) (Exception, error) {
	if listingID == "" {
		return Exception{}, errors.Input("listing id is required")
	}
	if err := schedule.Validate(r, zone, today, e.maxDays); err != nil {
		return Exception{}, err
	}

	if planZone == nil {
		planZone = zone
	}
	log := e.logger.With(zap.String("listing_id", listingID))

	if err := e.service.UpdatePlan(ctx, listingID, EmptyPlan(planZone.String())); err != nil {
		return Exception{}, errors.Internal("failed to clear availability plan", err)
	}

	existing, err := e.service.ListExceptions(ctx, listingID)
	if err != nil {
		return Exception{}, errors.Internal("failed to list availability exceptions", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, ex := range existing {
		id := ex.ID
		g.Go(func() error {
			return e.service.DeleteException(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("deleting availability exceptions failed", zap.Error(err))
		return Exception{}, errors.Internal("failed to delete availability exceptions", err)
	}
	log.Debug("deleted availability exceptions", zap.Int("count", len(existing)))

	created := Exception{
		ListingID: listingID,
		Start:     r.Start,
		End:       r.End,
		Seats:     ExceptionSeats,
	}
	created.ID, err = e.service.CreateException(ctx, created)
	if err != nil {
		return Exception{}, errors.Internal("failed to create availability exception", err)
	}

	start, end := r.ISO(zone)
	log.Info("availability exception replaced",
		zap.String("exception_id", created.ID),
		zap.String("start", start),
		zap.String("end", end))
	return created, nil
}
