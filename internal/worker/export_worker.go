package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"petcare/internal/amqp"
	"petcare/internal/cache"
	"petcare/internal/core"
	"petcare/internal/observability"
	"petcare/internal/sheets"
)

const (
	exportedCacheSize = 10000
	exportedCacheTTL  = 24 * time.Hour
)

// ExportWorker mirrors ledger events received from the queue into a
// spreadsheet.
type ExportWorker struct {
	exporter sheets.ActivityExporter
	// exported remembers recent ids so a redelivered message does not
	// append a second row.
	exported *cache.LRUCache[string]
}

func NewExportWorker(exporter sheets.ActivityExporter) *ExportWorker {
	return &ExportWorker{
		exporter: exporter,
		exported: cache.NewLRUCache[string](exportedCacheSize, exportedCacheTTL),
	}
}

// Cache exposes the dedupe cache so it can be registered for cleanup.
func (w *ExportWorker) Cache() cache.Cleaner {
	return w.exported
}

// HandleActivityRecorded exports one activity. Returning an error makes the
// consumer requeue the message.
func (w *ExportWorker) HandleActivityRecorded(ctx context.Context, a core.Activity) error {
	if ref, ok := w.exported.Get(a.ID); ok {
		slog.InfoContext(ctx, "Activity already exported, skipping",
			"id", a.ID,
			"ref", ref)
		return nil
	}

	if w.exporter == nil {
		slog.InfoContext(ctx, "No exporter configured, activity logged only",
			"id", a.ID,
			"pet_name", a.PetName,
			"type", a.Type,
			"amount", a.Amount)
		return nil
	}

	ref, err := w.exporter.ExportActivity(ctx, a)
	observability.RecordRowExported(err)
	if err != nil {
		return fmt.Errorf("export activity %s: %w", a.ID, err)
	}
	w.exported.Set(a.ID, ref)

	slog.InfoContext(ctx, "Activity exported",
		"id", a.ID,
		"pet_name", a.PetName,
		"ref", ref)
	return nil
}

// HandleWalkReminder surfaces a reminder in the worker log.
func (w *ExportWorker) HandleWalkReminder(ctx context.Context, r amqp.ReminderPayload) error {
	slog.WarnContext(ctx, "Walk reminder",
		"pet_name", r.PetName,
		"date", r.Date,
		"cutoff", r.Cutoff.Format(time.RFC3339),
		"walk_minutes", r.WalkMinutes)
	return nil
}

// Handlers wires the worker into an AMQP consumer.
func (w *ExportWorker) Handlers() amqp.Handlers {
	return amqp.Handlers{
		ActivityRecorded: w.HandleActivityRecorded,
		WalkReminder:     w.HandleWalkReminder,
	}
}
