// Package api - Thin HTTP layer over the breakdown and schedule engines.
// The API is ONLY responsible for: input decoding, engine orchestration, output serialization.
// The API NEVER performs pricing or calendar logic itself.
package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"booking-cost/core/availability"
	"booking-cost/core/money"
	"booking-cost/internal/errors"
)

// Options configure a Server
type Options struct {
	Version         string
	DefaultCurrency money.Currency
	MaxRangeDays    int
	ReadTimeout     time.Duration

	// Service backs the exception endpoints; nil uses an in-memory service
	Service availability.Service

	// Now is the server clock; nil uses time.Now
	Now func() time.Time

	Logger *zap.Logger
}

// Server is the API server
type Server struct {
	router   chi.Router
	opts     Options
	editor   *availability.Editor
	service  availability.Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	if opts.Service == nil {
		opts.Service = availability.NewMemoryService()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = money.CurrencyUSD
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 15 * time.Second
	}

	s := &Server{
		router:   chi.NewRouter(),
		opts:     opts,
		service:  opts.Service,
		editor:   availability.NewEditor(opts.Service, opts.MaxRangeDays, opts.Logger.Named("availability")),
		validate: validator.New(),
		logger:   opts.Logger,
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(chimw.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/version", s.handleVersion)

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/breakdown", s.handleBreakdown)
		r.Post("/ranges/normalize", s.handleNormalize)
		r.Post("/ranges/validate", s.handleValidate)
		r.Get("/listings/{listingID}/exceptions", s.handleListExceptions)
		r.Put("/listings/{listingID}/exceptions", s.handleReplaceExceptions)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.opts.Version,
		"time":    s.opts.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.opts.Version,
		"engine":      "booking-cost",
		"api_version": "v1",
	}, http.StatusOK)
}

// decode reads a JSON body into dst and runs its validate tags
func (s *Server) decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Parsing("invalid JSON body", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return errors.Wrap(errors.TypeInput, "request validation failed", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	body := ErrorBody{Code: string(errors.TypeOf(err)), Message: err.Error()}
	var e *errors.Error
	if errors.As(err, &e) {
		body.Message = e.Message
		if e.Cause != nil {
			body.Message += ": " + e.Cause.Error()
		}
		body.Context = e.Context
	}

	status := statusFor(errors.TypeOf(err))
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, ErrorResponse{Error: body}, status)
}

func statusFor(t errors.Type) int {
	switch t {
	case errors.TypeInput, errors.TypeParsing:
		return http.StatusBadRequest
	case errors.TypeCurrencyMismatch, errors.TypeDateRange, errors.TypeInvertedRange,
		errors.TypeOutOfRange, errors.TypeZoneConversion:
		return http.StatusUnprocessableEntity
	case errors.TypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// computeInputHash identifies a request body for caching and audit
func computeInputHash(v interface{}) string {
	data, _ := json.Marshal(v)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
