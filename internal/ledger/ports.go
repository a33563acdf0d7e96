package ledger

import (
	"context"

	"petcare/internal/core"
)

// Ports implemented by activity store backends.
type (
	ActivityAppender interface {
		// Append validates req, assigns a fresh id and stores the record.
		// Invalid input returns a *core.ValidationError and leaves the
		// store unchanged.
		Append(ctx context.Context, req core.ActivityRequest) (core.Activity, error)
	}

	ActivityQuerier interface {
		// Query returns the records matching pred in insertion order. A nil
		// pred matches everything.
		Query(ctx context.Context, pred core.Predicate) ([]core.Activity, error)
	}

	// Store is the append-only activity ledger.
	Store interface {
		ActivityAppender
		ActivityQuerier
	}
)

// IDGenerator produces candidate record ids. Stores re-draw on collision.
type IDGenerator func() string
