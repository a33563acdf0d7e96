package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activitiesCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petcare",
		Subsystem: "ledger",
		Name:      "activities_created_total",
		Help:      "Activities appended to the ledger, by type.",
	}, []string{"type"})
	validationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petcare",
		Subsystem: "ledger",
		Name:      "validation_failures_total",
		Help:      "Rejected activity requests, by offending field.",
	}, []string{"field"})
	summariesServed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "petcare",
		Subsystem: "summary",
		Name:      "computed_total",
		Help:      "Day summaries computed from the ledger.",
	})
	summaryCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petcare",
		Subsystem: "summary",
		Name:      "cache_lookups_total",
		Help:      "Summary cache lookups, by result.",
	}, []string{"result"})
	walkPrompts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "petcare",
		Subsystem: "walks",
		Name:      "prompts_total",
		Help:      "Needs-walk evaluations that asked the user to walk the pet.",
	})
	remindersSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petcare",
		Subsystem: "walks",
		Name:      "reminders_total",
		Help:      "Walk reminders emitted by the scheduled job, by outcome.",
	}, []string{"outcome"})
	eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petcare",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Ledger events handed to the message broker, by outcome.",
	}, []string{"outcome"})
	rowsExported = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petcare",
		Subsystem: "export",
		Name:      "rows_total",
		Help:      "Activities mirrored to the spreadsheet, by outcome.",
	}, []string{"outcome"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petcare",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by method and status code.",
	}, []string{"method", "code"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "petcare",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
	rateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "petcare",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-client rate limiter.",
	})
	suspiciousRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "petcare",
		Subsystem: "http",
		Name:      "suspicious_requests_total",
		Help:      "Requests matching a known probing pattern.",
	})
)

func init() {
	prometheus.MustRegister(
		activitiesCreated,
		validationFailures,
		summariesServed,
		summaryCache,
		walkPrompts,
		remindersSent,
		eventsPublished,
		rowsExported,
		httpRequests,
		httpDuration,
		rateLimited,
		suspiciousRequests,
	)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordActivityCreated counts a stored activity.
func RecordActivityCreated(activityType string) {
	activitiesCreated.WithLabelValues(activityType).Inc()
}

// RecordValidationFailure counts a rejected request.
func RecordValidationFailure(field string) {
	validationFailures.WithLabelValues(field).Inc()
}

func RecordSummaryComputed() {
	summariesServed.Inc()
}

// RecordSummaryCacheLookup counts a hit or a miss.
func RecordSummaryCacheLookup(hit bool) {
	if hit {
		summaryCache.WithLabelValues("hit").Inc()
		return
	}
	summaryCache.WithLabelValues("miss").Inc()
}

func RecordWalkPrompt() {
	walkPrompts.Inc()
}

func RecordReminder(err error) {
	remindersSent.WithLabelValues(outcome(err)).Inc()
}

func RecordEventPublished(err error) {
	eventsPublished.WithLabelValues(outcome(err)).Inc()
}

func RecordRowExported(err error) {
	rowsExported.WithLabelValues(outcome(err)).Inc()
}

// RecordHTTPRequest counts a served request and observes its latency.
func RecordHTTPRequest(method string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

func RecordRateLimited() {
	rateLimited.Inc()
}

func RecordSuspiciousRequest() {
	suspiciousRequests.Inc()
}
