package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"petcare/internal/core"
	"petcare/internal/ledger"

	_ "modernc.org/sqlite"
)

// storedTimeLayout is fixed width so text order matches time order.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// maxIDAttempts bounds re-draws after a unique constraint violation.
const maxIDAttempts = 5

// SQLiteRepository is an activity store backed by an in-memory SQLite
// database. Nothing is written to disk; the data lives as long as the
// repository is open.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries

	clock core.Clock
	loc   *time.Location
	newID ledger.IDGenerator
}

// Option configures a SQLiteRepository.
type Option func(*SQLiteRepository)

func WithClock(c core.Clock) Option {
	return func(r *SQLiteRepository) {
		if c != nil {
			r.clock = c
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(r *SQLiteRepository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func WithIDGenerator(g ledger.IDGenerator) Option {
	return func(r *SQLiteRepository) {
		if g != nil {
			r.newID = g
		}
	}
}

// MemoryDSN is the shared-cache DSN of the named in-memory database.
func MemoryDSN(name string) string {
	if name == "" {
		name = "petcare"
	}
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// NewSQLiteRepository opens the named in-memory database and applies the
// schema.
func NewSQLiteRepository(name string, opts ...Option) (*SQLiteRepository, error) {
	dsn := MemoryDSN(name)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps a single writer and holds the memory db open.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		clock:   core.SystemClock,
		loc:     time.Local,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append implements ledger.ActivityAppender.
func (r *SQLiteRepository) Append(ctx context.Context, req core.ActivityRequest) (core.Activity, error) {
	a, err := req.Build(r.clock(), r.loc)
	if err != nil {
		return core.Activity{}, err
	}

	var row ActivityRow
	for attempt := 1; ; attempt++ {
		row, err = r.queries.CreateActivity(ctx, CreateActivityParams{
			ID:       r.newID(),
			PetName:  a.PetName,
			Type:     string(a.Type),
			Amount:   a.Amount,
			DateTime: a.DateTime.UTC().Format(storedTimeLayout),
		})
		if err == nil {
			break
		}
		if !isUniqueViolation(err) || attempt >= maxIDAttempts {
			return core.Activity{}, fmt.Errorf("create activity: %w", err)
		}
		slog.WarnContext(ctx, "Activity id collision, drawing a new one", "attempt", attempt)
	}

	saved, err := toActivity(row)
	if err != nil {
		return core.Activity{}, err
	}

	slog.DebugContext(ctx, "Activity saved to SQLite",
		"id", saved.ID,
		"pet_name", saved.PetName,
		"type", saved.Type,
		"amount", saved.Amount)

	return saved, nil
}

// Query implements ledger.ActivityQuerier.
func (r *SQLiteRepository) Query(ctx context.Context, pred core.Predicate) ([]core.Activity, error) {
	rows, err := r.queries.ListActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	out := make([]core.Activity, 0, len(rows))
	for _, row := range rows {
		a, err := toActivity(row)
		if err != nil {
			return nil, err
		}
		if pred == nil || pred(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Len reports the number of stored activities.
func (r *SQLiteRepository) Len(ctx context.Context) (int, error) {
	n, err := r.queries.CountActivities(ctx)
	if err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return int(n), nil
}

func toActivity(row ActivityRow) (core.Activity, error) {
	at, err := time.Parse(storedTimeLayout, row.DateTime)
	if err != nil {
		return core.Activity{}, fmt.Errorf("parse stored date_time %q: %w", row.DateTime, err)
	}
	return core.Activity{
		ID:       row.ID,
		PetName:  row.PetName,
		Type:     core.ActivityType(row.Type),
		Amount:   row.Amount,
		DateTime: at.UTC(),
	}, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ ledger.Store = (*SQLiteRepository)(nil)
