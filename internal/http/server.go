package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"petcare/internal/cache"
	"petcare/internal/core"
	applog "petcare/internal/log"
	"petcare/internal/middleware/ratelimit"
	"petcare/internal/middleware/security"
	"petcare/internal/middleware/trace"
	"petcare/internal/services"
)

const (
	defaultSummaryCacheSize = 256
	defaultSummaryCacheTTL  = 30 * time.Second
)

// ServerOptions configures the HTTP boundary. Zero values are usable.
type ServerOptions struct {
	AllowedOrigin      string
	Production         bool
	RateLimitPerMinute int
	Logger             *applog.Logger
	SummaryCacheSize   int
	SummaryCacheTTL    time.Duration
}

type Server struct {
	http.Server
	api        *services.ActivityService
	logger     *applog.Logger
	events     *applog.StructuredLogger
	production bool
	started    time.Time

	summaryCache *cache.LRUCache[core.DaySummary]
	// summaryMu orders cache fills against invalidation. summaryGen is
	// bumped on every invalidation; a fill computed under an older
	// generation is dropped.
	summaryMu  sync.Mutex
	summaryGen uint64

	rateLimiter  *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, api *services.ActivityService, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background()).WithComponent(applog.ComponentHTTP)
	}

	size := opts.SummaryCacheSize
	if size <= 0 {
		size = defaultSummaryCacheSize
	}
	ttl := opts.SummaryCacheTTL
	if ttl <= 0 {
		ttl = defaultSummaryCacheTTL
	}

	s := &Server{
		api:          api,
		logger:       logger,
		events:       applog.NewStructuredLogger(logger),
		production:   opts.Production,
		started:      time.Now(),
		summaryCache: cache.NewLRUCache[core.DaySummary](size, ttl),
		rateLimiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:     security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleAPIHealth)
	mux.HandleFunc("/api/activities", s.handleActivities)
	mux.HandleFunc("/api/summary/today", s.handleSummaryToday)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/needs-walk", s.handleNeedsWalk)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", s.handleNotFound)

	onLimit := func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	}

	// Each wrapper encloses the previous one, so applog.Middleware is the
	// outermost handler and the mux the innermost. Trace sees the final
	// status of every response.
	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.detector.ExtractClientIP, onLimit)(handler)
	handler = security.CORS(security.DefaultCORSConfig(opts.AllowedOrigin))(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = trace.LoggerMiddleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// SummaryCache exposes the summary cache for periodic cleanup.
func (s *Server) SummaryCache() cache.Cleaner {
	return s.summaryCache
}

// Shutdown gracefully shuts down the server and its cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// summaryGeneration returns the invalidation generation to pass to
// storeSummary once the summary has been computed.
func (s *Server) summaryGeneration() uint64 {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	return s.summaryGen
}

// storeSummary caches summary unless an invalidation ran since gen was read.
func (s *Server) storeSummary(key string, gen uint64, summary core.DaySummary) bool {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	if s.summaryGen != gen {
		return false
	}
	s.summaryCache.Set(key, summary)
	return true
}

func (s *Server) invalidateSummaries(day core.Date) {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	s.summaryGen++

	prefix := day.String() + "|"
	removed := s.summaryCache.DeleteFunc(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
	if removed > 0 {
		s.logger.Debug("Summary cache invalidated", applog.FieldDate, day.String(), "entries", removed)
	}
}
