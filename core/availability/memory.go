package availability

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"booking-cost/internal/errors"
)

// MemoryService is an in-process Service. It is safe for concurrent use.
type MemoryService struct {
	mu         sync.RWMutex
	exceptions map[string]Exception
	plans      map[string]Plan
	newID      func() string
}

// NewMemoryService creates an empty MemoryService
func NewMemoryService() *MemoryService {
	return &MemoryService{
		exceptions: make(map[string]Exception),
		plans:      make(map[string]Plan),
		newID:      func() string { return uuid.NewString() },
	}
}

// CreateException implements Service
func (s *MemoryService) CreateException(ctx context.Context, e Exception) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.ListingID == "" {
		return "", errors.Input("exception has no listing id")
	}
	if e.Seats < 0 {
		return "", errors.Newf(errors.TypeInput, "seats must be non-negative, got %d", e.Seats)
	}
	if !e.End.After(e.Start) {
		return "", errors.New(errors.TypeInvertedRange, "exception end must be after start")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.newID()
	s.exceptions[e.ID] = e
	return e.ID, nil
}

// DeleteException implements Service
func (s *MemoryService) DeleteException(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exceptions[id]; !ok {
		return errors.NotFound("availability exception", id)
	}
	delete(s.exceptions, id)
	return nil
}

// ListExceptions implements Service
func (s *MemoryService) ListExceptions(ctx context.Context, listingID string) ([]Exception, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Exception, 0)
	for _, e := range s.exceptions {
		if e.ListingID == listingID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdatePlan implements Service
func (s *MemoryService) UpdatePlan(ctx context.Context, listingID string, plan Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans[listingID] = plan
	return nil
}

// Plan returns the stored plan for a listing
func (s *MemoryService) Plan(listingID string) (Plan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[listingID]
	return p, ok
}
