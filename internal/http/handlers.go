package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"petcare/internal/core"
	applog "petcare/internal/log"
	"petcare/internal/observability"
	"petcare/internal/services"
)

// handleAPIHealth is the public health probe used by the front end.
func (s *Server) handleAPIHealth(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	NewJSONResponse().JSON(map[string]bool{"ok": true}).Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := map[string]any{}

	if err := s.api.Ping(ctx); err != nil {
		checks["ledger"] = "failed: " + err.Error()
		status = "not_ready"
		code = http.StatusServiceUnavailable
	} else {
		checks["ledger"] = "ok"
	}
	checks["summary_cache"] = map[string]any{"entries": s.summaryCache.Size()}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients()}

	NewJSONResponse().Status(code).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    uptime(s.started),
		"checks":    checks,
	}).Write(w)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	NotFoundError("no route for " + r.URL.Path).Write(w)
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleListActivities(w, r)
	case http.MethodPost:
		s.handleCreateActivity(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		s.logger.WarnContext(r.Context(), "Unreadable activity body",
			applog.FieldOperation, applog.OpParse, applog.FieldError, err)
		BadRequestError(ErrInvalidBody.Error()).Write(w)
		return
	}

	a, err := s.api.CreateActivity(r.Context(), parser.ActivityRequest())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateSummaries(core.DateOf(a.DateTime, s.api.Location()))
	s.events.LogActivityCreated(r.Context(), a.ID, a.PetName, string(a.Type), a.Amount)
	NewJSONResponse().Status(http.StatusCreated).JSON(toActivityJSON(a)).Write(w)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	today, err := queryBool(q, "today")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	acts, err := s.api.ListActivities(r.Context(), services.ListOptions{
		PetName: queryString(q, "petName"),
		Today:   today,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().JSON(toActivityListJSON(acts)).Write(w)
}

func (s *Server) handleSummaryToday(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	s.writeSummary(w, r, services.SummaryOptions{PetName: queryString(r.URL.Query(), "petName")})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	q := r.URL.Query()
	s.writeSummary(w, r, services.SummaryOptions{
		PetName: queryString(q, "petName"),
		Date:    queryString(q, "date"),
	})
}

func (s *Server) writeSummary(w http.ResponseWriter, r *http.Request, opts services.SummaryOptions) {
	day, err := s.api.ResolveDate(opts.Date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	key := summaryCacheKey(day, opts.PetName)
	if cached, ok := s.summaryCache.Get(key); ok {
		observability.RecordSummaryCacheLookup(true)
		NewJSONResponse().JSON(toSummaryJSON(cached)).Write(w)
		return
	}
	observability.RecordSummaryCacheLookup(false)

	gen := s.summaryGeneration()
	date := day.String()
	summary, err := s.api.SummaryForDate(r.Context(), services.SummaryOptions{PetName: opts.PetName, Date: &date})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.storeSummary(key, gen, summary) {
		s.logger.Debug("Summary not cached, ledger changed while computing", applog.FieldDate, date)
	}
	NewJSONResponse().JSON(toSummaryJSON(summary)).Write(w)
}

func (s *Server) handleNeedsWalk(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	q := r.URL.Query()
	cutoff, err := queryInt(q, core.FieldCutoffHour)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.api.NeedsWalk(r.Context(), services.NeedsWalkOptions{
		PetName:    queryString(q, "petName"),
		CutoffHour: cutoff,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().JSON(needsWalkJSON{ShouldPrompt: res.ShouldPrompt, WalkMinutes: res.WalkMinutes}).Write(w)
}

// writeError maps service errors onto the API's error envelope. Internal
// details are hidden in production.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := core.AsValidationError(err); ok {
		s.events.LogValidationFailure(r.Context(), ve.Field, ve.Reason)
		ValidationErrorResponse(ve).Write(w)
		return
	}
	if errors.Is(err, core.ErrNotFound) {
		NotFoundError(err.Error()).Write(w)
		return
	}
	if errors.Is(err, core.ErrNotToday) {
		BadRequestError(err.Error()).Write(w)
		return
	}

	s.events.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, r.Method+" "+r.URL.Path, applog.NewFields())
	msg := err.Error()
	if s.production {
		msg = "internal server error"
	}
	InternalServerError(msg).Write(w)
}
