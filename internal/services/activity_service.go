package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"petcare/internal/core"
	"petcare/internal/ledger"
	"petcare/internal/observability"
)

// EventPublisher fans ledger events out to other processes.
type EventPublisher interface {
	PublishActivityRecorded(ctx context.Context, a core.Activity) error
	PublishWalkReminder(ctx context.Context, r core.WalkReminder) error
}

// Options configures an ActivityService. Zero values fall back to the
// process local zone, the wall clock, an 18:00 cutoff and a 30 minute goal.
type Options struct {
	Location        *time.Location
	Clock           core.Clock
	CutoffHour      *int
	WalkGoalMinutes float64
	Publisher       EventPublisher
}

type (
	ListOptions struct {
		PetName *string
		Today   bool
	}

	SummaryOptions struct {
		PetName *string
		Date    *string // YYYY-MM-DD; nil or blank means today
	}

	NeedsWalkOptions struct {
		PetName    *string
		CutoffHour *int
	}
)

// ActivityService is the single entry point for ledger reads and writes.
type ActivityService struct {
	store     ledger.Store
	publisher EventPublisher
	loc       *time.Location
	clock     core.Clock
	rule      core.NeedsWalkRule
	walkGoal  float64
}

func NewActivityService(store ledger.Store, opts Options) (*ActivityService, error) {
	if store == nil {
		return nil, errors.New("activity service requires a store")
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	clock := opts.Clock
	if clock == nil {
		clock = core.SystemClock
	}
	cutoff := core.DefaultCutoffHour
	if opts.CutoffHour != nil {
		cutoff = *opts.CutoffHour
	}
	rule, err := core.NewNeedsWalkRule(cutoff, loc)
	if err != nil {
		return nil, fmt.Errorf("needs-walk rule: %w", err)
	}
	goal := opts.WalkGoalMinutes
	if goal <= 0 {
		goal = core.DefaultWalkGoalMinutes
	}
	return &ActivityService{
		store:     store,
		publisher: opts.Publisher,
		loc:       loc,
		clock:     clock,
		rule:      rule,
		walkGoal:  goal,
	}, nil
}

// Location is the zone used for calendar days.
func (s *ActivityService) Location() *time.Location {
	return s.loc
}

// Today is the current calendar day.
func (s *ActivityService) Today() core.Date {
	return core.DateOf(s.clock(), s.loc)
}

// CreateActivity validates and stores a new activity, then announces it.
// Publishing is best effort: a failure is logged and the stored record is
// still returned.
func (s *ActivityService) CreateActivity(ctx context.Context, req core.ActivityRequest) (core.Activity, error) {
	a, err := s.store.Append(ctx, req)
	if err != nil {
		if ve, ok := core.AsValidationError(err); ok {
			observability.RecordValidationFailure(ve.Field)
			return core.Activity{}, err
		}
		return core.Activity{}, fmt.Errorf("append activity: %w", err)
	}
	observability.RecordActivityCreated(string(a.Type))

	if err := s.publishRecorded(ctx, a); err != nil {
		slog.ErrorContext(ctx, "Failed to publish activity message",
			"id", a.ID, "error", err)
	}
	return a, nil
}

func (s *ActivityService) publishRecorded(ctx context.Context, a core.Activity) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not available, skipping activity message")
		return nil
	}
	err := s.publisher.PublishActivityRecorded(ctx, a)
	observability.RecordEventPublished(err)
	return err
}

// ListActivities returns activities in insertion order, optionally
// restricted to one pet and to the current day.
func (s *ActivityService) ListActivities(ctx context.Context, opts ListOptions) ([]core.Activity, error) {
	preds := []core.Predicate{petFilter(opts.PetName)}
	if opts.Today {
		preds = append(preds, core.OnDate(s.Today()))
	}
	out, err := s.store.Query(ctx, core.All(preds...))
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	return out, nil
}

// ResolveDate parses an optional YYYY-MM-DD value; absent means today.
func (s *ActivityService) ResolveDate(raw *string) (core.Date, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return s.Today(), nil
	}
	return core.ParseDate(*raw, s.loc)
}

// SummaryForDate aggregates one calendar day, optionally for one pet.
func (s *ActivityService) SummaryForDate(ctx context.Context, opts SummaryOptions) (core.DaySummary, error) {
	day, err := s.ResolveDate(opts.Date)
	if err != nil {
		return core.DaySummary{}, err
	}
	acts, err := s.store.Query(ctx, core.All(petFilter(opts.PetName), core.OnDate(day)))
	if err != nil {
		return core.DaySummary{}, fmt.Errorf("query activities: %w", err)
	}
	observability.RecordSummaryComputed()
	return core.NewDaySummary(day, acts, s.walkGoal), nil
}

// NeedsWalk evaluates the reminder rule for today.
func (s *ActivityService) NeedsWalk(ctx context.Context, opts NeedsWalkOptions) (core.NeedsWalk, error) {
	rule := s.rule
	if opts.CutoffHour != nil {
		r, err := core.NewNeedsWalkRule(*opts.CutoffHour, s.loc)
		if err != nil {
			return core.NeedsWalk{}, err
		}
		rule = r
	}

	now := s.clock()
	day := core.DateOf(now, s.loc)
	walks, err := s.store.Query(ctx, core.All(petFilter(opts.PetName), core.OnDate(day), core.OfType(core.Walk)))
	if err != nil {
		return core.NeedsWalk{}, fmt.Errorf("query walks: %w", err)
	}

	res, err := rule.Evaluate(now, day, core.Summarize(walks).TotalWalkMinutes)
	if err != nil {
		return core.NeedsWalk{}, err
	}
	if res.ShouldPrompt {
		observability.RecordWalkPrompt()
	}
	return res, nil
}

// Pets lists distinct pet names in the order they were first logged.
// Names differing only by case are reported once.
func (s *ActivityService) Pets(ctx context.Context) ([]string, error) {
	acts, err := s.store.Query(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	names := make([]string, 0, len(acts))
	for _, a := range acts {
		names = append(names, a.PetName)
	}
	return dedupeFold(names), nil
}

// Ping reports backend health when the store supports it.
func (s *ActivityService) Ping(ctx context.Context) error {
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func petFilter(name *string) core.Predicate {
	if name == nil {
		return nil
	}
	return core.ForPet(*name)
}
