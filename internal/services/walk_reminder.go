package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"petcare/internal/core"
	"petcare/internal/observability"
)

// WalkReminder periodically checks every known pet and emits a reminder for
// each one that has not been walked today once the cutoff has passed. A pet
// is reminded at most once per calendar day, so the schedule may fire
// repeatedly through the evening.
type WalkReminder struct {
	service   *ActivityService
	publisher EventPublisher
	schedule  string

	remindedMu sync.Mutex
	reminded   map[string]string // lower-case pet name -> last reminded day

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

func NewWalkReminder(service *ActivityService, publisher EventPublisher, schedule string) *WalkReminder {
	return &WalkReminder{
		service:   service,
		publisher: publisher,
		schedule:  schedule,
		reminded:  map[string]string{},
	}
}

// due reports whether pet has not been reminded on day yet.
func (w *WalkReminder) due(pet string, day core.Date) bool {
	w.remindedMu.Lock()
	defer w.remindedMu.Unlock()
	return w.reminded[strings.ToLower(pet)] != day.String()
}

func (w *WalkReminder) markReminded(pet string, day core.Date) {
	w.remindedMu.Lock()
	defer w.remindedMu.Unlock()
	w.reminded[strings.ToLower(pet)] = day.String()
}

// Run evaluates every pet once and returns the number of reminders emitted.
func (w *WalkReminder) Run(ctx context.Context) (int, error) {
	if w.service == nil {
		return 0, errors.New("walk reminder not properly initialized")
	}
	pets, err := w.service.Pets(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pets: %w", err)
	}

	slog.InfoContext(ctx, "Checking walks", "pets", len(pets))

	sent := 0
	for _, pet := range pets {
		pet := pet
		res, err := w.service.NeedsWalk(ctx, NeedsWalkOptions{PetName: &pet})
		if err != nil {
			slog.ErrorContext(ctx, "Failed to evaluate needs-walk", "pet_name", pet, "error", err)
			continue
		}
		day := core.DateOf(res.Cutoff, w.service.Location())
		if !res.ShouldPrompt || !w.due(pet, day) {
			continue
		}

		reminder := core.WalkReminder{
			PetName:     pet,
			Date:        day,
			Cutoff:      res.Cutoff,
			WalkMinutes: res.WalkMinutes,
		}
		slog.InfoContext(ctx, "Pet has not been walked today",
			"pet_name", pet,
			"cutoff", res.Cutoff.Format("15:04"))

		if w.publisher != nil {
			err = w.publisher.PublishWalkReminder(ctx, reminder)
			observability.RecordReminder(err)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to publish walk reminder", "pet_name", pet, "error", err)
				continue
			}
		} else {
			observability.RecordReminder(nil)
		}
		w.markReminded(pet, day)
		sent++
	}

	slog.InfoContext(ctx, "Walk check complete", "reminders", sent, "total_checked", len(pets))
	return sent, nil
}

// Start schedules Run. An empty schedule disables the job.
func (w *WalkReminder) Start() error {
	if w.schedule == "" {
		slog.Info("Walk reminder disabled, no schedule configured")
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return errors.New("walk reminder already started")
	}

	loc := time.Local
	if w.service != nil {
		loc = w.service.Location()
	}
	c := cron.New(cron.WithLocation(loc))
	ctx, cancel := context.WithCancel(context.Background())

	_, err := c.AddFunc(w.schedule, func() {
		if _, err := w.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "Scheduled walk check failed", "error", err)
		}
	})
	if err != nil {
		cancel()
		return fmt.Errorf("schedule walk reminder %q: %w", w.schedule, err)
	}

	c.Start()
	w.cron, w.cancel = c, cancel
	slog.Info("Walk reminder scheduled", "schedule", w.schedule, "location", loc.String())
	return nil
}

// Stop waits for a running check to finish and cancels future ones.
func (w *WalkReminder) Stop() {
	w.mu.Lock()
	c, cancel := w.cron, w.cancel
	w.cron, w.cancel = nil, nil
	w.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	if cancel != nil {
		cancel()
	}
}
