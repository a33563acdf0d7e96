package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"petcare/internal/amqp"
	"petcare/internal/core"
	"petcare/internal/sheets/memory"
)

type failingExporter struct{ calls int }

func (f *failingExporter) ExportActivity(context.Context, core.Activity) (string, error) {
	f.calls++
	return "", errors.New("quota exceeded")
}

func TestHandleActivityRecordedExportsOnce(t *testing.T) {
	exp := memory.New(time.UTC)
	w := NewExportWorker(exp)
	ctx := context.Background()
	a := core.Activity{ID: "a1", PetName: "Rex", Type: core.Walk, Amount: 15, DateTime: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}

	if err := w.HandleActivityRecorded(ctx, a); err != nil {
		t.Fatalf("first export: %v", err)
	}
	if err := w.HandleActivityRecorded(ctx, a); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if rows := exp.Rows(); len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
}

func TestHandleActivityRecordedPropagatesErrors(t *testing.T) {
	exp := &failingExporter{}
	w := NewExportWorker(exp)
	a := core.Activity{ID: "a1", PetName: "Rex", Type: core.Meal, Amount: 1}

	for i := 0; i < 2; i++ {
		if err := w.HandleActivityRecorded(context.Background(), a); err == nil {
			t.Fatal("expected error so the message is requeued")
		}
	}
	if exp.calls != 2 {
		t.Fatalf("failed exports must be retried, got %d calls", exp.calls)
	}
}

func TestHandleActivityRecordedWithoutExporter(t *testing.T) {
	w := NewExportWorker(nil)
	if err := w.HandleActivityRecorded(context.Background(), core.Activity{ID: "a1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestHandlers(t *testing.T) {
	h := NewExportWorker(nil).Handlers()
	if h.ActivityRecorded == nil || h.WalkReminder == nil {
		t.Fatal("expected both handlers")
	}
	if err := h.WalkReminder(context.Background(), amqp.ReminderPayload{PetName: "Rex", Date: "2024-03-01"}); err != nil {
		t.Fatalf("WalkReminder: %v", err)
	}
}
