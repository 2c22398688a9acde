package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"acorn/internal/log"
	"acorn/internal/middleware/ratelimit"
	"acorn/internal/middleware/security"
	"acorn/internal/middleware/trace"
	"acorn/internal/services"
)

// DefaultLookupDelay is the artificial latency of the cost-of-living lookup.
const DefaultLookupDelay = 500 * time.Millisecond

// Options configures NewServer. Zero values use defaults.
type Options struct {
	// LookupDelay of zero disables the artificial lookup latency.
	LookupDelay        time.Duration
	RateLimitPerMinute int
	TrustedProxies     []string
	Logger             *log.Logger
	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready func(context.Context) error
}

type Server struct {
	http.Server
	expenses    *services.ExpenseService
	lookupDelay time.Duration
	ready       func(context.Context) error
	logger      *log.Logger

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, expenses *services.ExpenseService, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, fmt.Errorf("trusted proxies: %w", err)
		}
	}

	rlCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		expenses:    expenses,
		lookupDelay: opts.LookupDelay,
		ready:       opts.Ready,
		logger:      logger,
		detector:    detector,
		rateLimiter: ratelimit.NewLimiter(rlCfg),
		tracer:      trace.NewMiddleware(detector.ExtractClientIP),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.Addr = addr
	s.Handler = s.middleware(mux)
	s.ReadHeaderTimeout = 10 * time.Second
	s.ReadTimeout = 30 * time.Second
	s.WriteTimeout = 30 * time.Second
	s.IdleTimeout = 120 * time.Second
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/cost-of-living", s.handleCostOfLiving)
	mux.HandleFunc("GET /api/locations", s.handleLocations)
	mux.HandleFunc("GET /api/suggest", s.handleSuggest)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /api/expenses", s.handleClearExpenses)
	mux.HandleFunc("GET /api/expenses/summary", s.handleSummary)
	mux.HandleFunc("GET /api/expenses/export", s.handleExport)
	mux.HandleFunc("POST /api/expenses/import", s.handleImport)
	mux.HandleFunc("GET /api/expenses/recurring/due", s.handleDueRecurring)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleReplaceExpense)
	mux.HandleFunc("PATCH /api/expenses/{id}", s.handlePatchExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/storage", s.handleStorage)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
}

// middleware wraps the mux, outermost first: logger, http component tag,
// tracing, security headers, suspicious request detection, rate limiting.
func (s *Server) middleware(next http.Handler) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
			"Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Header("Retry-After", "60").Write(w)
	}

	h := s.rateLimiter.Middleware(s.detector.ExtractClientIP, onLimit)(next)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	h = log.ComponentMiddleware(log.ComponentHTTP)(h)
	return log.Middleware(s.logger)(h)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics is a point-in-time view of request counters.
type Metrics struct {
	TotalRequests       int64 `json:"totalRequests"`
	AverageResponseTime int64 `json:"averageResponseTimeMicros"`
	RateLimited         int64 `json:"rateLimited"`
	SuspiciousRequests  int64 `json:"suspiciousRequests"`
}

func (s *Server) Metrics() Metrics {
	tm := s.tracer.GetMetrics()
	return Metrics{
		TotalRequests:       tm.TotalRequests,
		AverageResponseTime: tm.AverageResponseTime,
		RateLimited:         s.rateLimiter.GetMetrics().TotalHits,
		SuspiciousRequests:  s.detector.GetMetrics().SuspiciousRequests,
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	JSON(http.StatusOK, s.Metrics()).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
