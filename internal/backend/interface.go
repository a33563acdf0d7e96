package backend

import (
	"context"
	"time"

	"petcare/internal/core"
	"petcare/internal/ledger"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult contains the ledger store and an optional cleanup function.
type BackendResult struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Factory creates ledger stores based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific: name of the in-memory database
	SQLiteDBName string

	// Shared by every backend
	Location *time.Location
	Clock    core.Clock
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
