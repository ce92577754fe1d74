// Package storage provides persistent backends for listing availability.
// Supports file and in-memory backends.
package storage

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"booking-cost/core/availability"
	"booking-cost/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

const planFile = "plan.json"

// FileStore keeps one directory per listing holding a JSON file per
// exception and the listing's plan.
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file store
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "failed to create storage directory", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) listingDir(listingID string) (string, error) {
	if listingID == "" || strings.ContainsAny(listingID, `/\`) || listingID == "." || listingID == ".." {
		return "", errors.Newf(errors.TypeInput, "invalid listing id %q", listingID)
	}
	return filepath.Join(s.basePath, listingID), nil
}

// CreateException implements availability.Service
func (s *FileStore) CreateException(ctx context.Context, e availability.Exception) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.Seats < 0 {
		return "", errors.Newf(errors.TypeInput, "seats must be non-negative, got %d", e.Seats)
	}
	if !e.End.After(e.Start) {
		return "", errors.New(errors.TypeInvertedRange, "exception end must be after start")
	}
	dir, err := s.listingDir(e.ListingID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(errors.TypeInternal, "failed to create listing directory", err)
	}

	e.ID = uuid.New().String()
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.TypeInternal, "failed to marshal exception", err)
	}
	if err := os.WriteFile(filepath.Join(dir, e.ID+".json"), data, 0644); err != nil {
		return "", errors.Wrap(errors.TypeInternal, "failed to write exception", err)
	}
	return e.ID, nil
}

// DeleteException implements availability.Service
func (s *FileStore) DeleteException(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return errors.NotFound("availability exception", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to read storage", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		filePath := filepath.Join(s.basePath, entry.Name(), id+".json")
		if _, err := os.Stat(filePath); err == nil {
			if err := os.Remove(filePath); err != nil {
				return errors.Wrap(errors.TypeInternal, "failed to delete exception", err)
			}
			return nil
		}
	}
	return errors.NotFound("availability exception", id)
}

// ListExceptions implements availability.Service
func (s *FileStore) ListExceptions(ctx context.Context, listingID string) ([]availability.Exception, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.listingDir(listingID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]availability.Exception, 0)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "failed to read listing", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == planFile || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, errors.Wrap(errors.TypeInternal, "failed to read exception", err)
		}
		var e availability.Exception
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, errors.Wrapf(errors.TypeParsing, err, "corrupt exception file %s", entry.Name())
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdatePlan implements availability.Service
func (s *FileStore) UpdatePlan(ctx context.Context, listingID string, plan availability.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, err := s.listingDir(listingID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to create listing directory", err)
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to marshal plan", err)
	}
	return os.WriteFile(filepath.Join(dir, planFile), data, 0644)
}

// Plan reads a listing's stored plan
func (s *FileStore) Plan(listingID string) (availability.Plan, bool, error) {
	dir, err := s.listingDir(listingID)
	if err != nil {
		return availability.Plan{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(dir, planFile))
	if os.IsNotExist(err) {
		return availability.Plan{}, false, nil
	}
	if err != nil {
		return availability.Plan{}, false, errors.Wrap(errors.TypeInternal, "failed to read plan", err)
	}
	var plan availability.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return availability.Plan{}, false, errors.Wrap(errors.TypeParsing, "corrupt plan file", err)
	}
	return plan, true, nil
}

func (s *FileStore) Close() error {
	return nil
}

// Open creates an availability service for a backend.
// The file backend reads its directory from config["path"].
func Open(backend Backend, config map[string]string) (availability.Service, error) {
	switch backend {
	case BackendFile:
		path := config["path"]
		if path == "" {
			path = ".booking-cost"
		}
		return NewFileStore(path)
	case BackendMemory, "":
		return availability.NewMemoryService(), nil
	default:
		return nil, errors.Newf(errors.TypeConfig, "unsupported storage backend: %s", backend)
	}
}

var _ availability.Service = (*FileStore)(nil)
var _ io.Closer = (*FileStore)(nil)
