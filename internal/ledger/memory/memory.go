package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"petcare/internal/core"
	"petcare/internal/ledger"
)

// Store keeps activities in process memory. Records are only ever appended.
type Store struct {
	mu    sync.RWMutex
	items []core.Activity
	ids   map[string]struct{}

	clock core.Clock
	loc   *time.Location
	newID ledger.IDGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to default dateTime.
func WithClock(c core.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLocation sets the location used for wall-clock dateTime input.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(g ledger.IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.newID = g
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		ids:   map[string]struct{}{},
		clock: core.SystemClock,
		loc:   time.Local,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append validates the request and stores the resulting activity.
func (s *Store) Append(_ context.Context, req core.ActivityRequest) (core.Activity, error) {
	a, err := req.Build(s.clock(), s.loc)
	if err != nil {
		return core.Activity{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.uniqueID()
	s.ids[a.ID] = struct{}{}
	s.items = append(s.items, a)
	return a, nil
}

// uniqueID draws ids until one is unused. Caller holds the write lock.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if id == "" {
			continue
		}
		if _, taken := s.ids[id]; !taken {
			return id
		}
	}
}

// Query returns a copy of the matching activities in insertion order.
func (s *Store) Query(_ context.Context, pred core.Predicate) ([]core.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Filter(s.items, pred), nil
}

// Len reports the number of stored activities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

var _ ledger.Store = (*Store)(nil)
