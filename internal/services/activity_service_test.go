package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"petcare/internal/core"
	"petcare/internal/ledger/memory"
)

type fakePublisher struct {
	mu        sync.Mutex
	activity  []core.Activity
	reminders []core.WalkReminder
	err       error
}

func (f *fakePublisher) PublishActivityRecorded(_ context.Context, a core.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activity = append(f.activity, a)
	return f.err
}

func (f *fakePublisher) PublishWalkReminder(_ context.Context, r core.WalkReminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders = append(f.reminders, r)
	return f.err
}

// testClock is a settable clock shared by the store and the service.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func str(s string) *string { return &s }

func newTestService(t *testing.T, now time.Time, pub EventPublisher) (*ActivityService, *memory.Store, *testClock) {
	t.Helper()
	clock := &testClock{now: now}
	store := memory.New(memory.WithClock(clock.Now), memory.WithLocation(time.UTC))
	svc, err := NewActivityService(store, Options{
		Location:  time.UTC,
		Clock:     clock.Now,
		Publisher: pub,
	})
	if err != nil {
		t.Fatalf("NewActivityService: %v", err)
	}
	return svc, store, clock
}

func create(t *testing.T, svc *ActivityService, pet, typ, amount string) core.Activity {
	t.Helper()
	a, err := svc.CreateActivity(context.Background(), core.ActivityRequest{
		PetName: str(pet), Type: str(typ), Amount: str(amount),
	})
	if err != nil {
		t.Fatalf("CreateActivity(%s,%s,%s): %v", pet, typ, amount, err)
	}
	return a
}

func TestNewActivityServiceRequiresStore(t *testing.T) {
	if _, err := NewActivityService(nil, Options{}); err == nil {
		t.Fatal("expected error without store")
	}
	bad := 30
	if _, err := NewActivityService(memory.New(), Options{CutoffHour: &bad}); err == nil {
		t.Fatal("expected error for cutoff hour 30")
	}
}

func TestScenarioWalkMinutesAddUp(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, now, nil)
	create(t, svc, "Rex", "walk", "15")
	create(t, svc, "Rex", "walk", "10")
	create(t, svc, "Mia", "walk", "40")

	got, err := svc.SummaryForDate(context.Background(), SummaryOptions{PetName: str("Rex")})
	if err != nil {
		t.Fatalf("SummaryForDate: %v", err)
	}
	if got.TotalWalkMinutes != 25 || got.Meals != 0 || got.Meds != 0 {
		t.Fatalf("unexpected summary %+v", got.Summary)
	}
	if got.Date.String() != "2024-03-01" {
		t.Fatalf("unexpected date %s", got.Date)
	}
	if got.WalkGoalMinutes != core.DefaultWalkGoalMinutes || got.WalkProgressPercent != 83 {
		t.Fatalf("unexpected progress %+v", got)
	}
}

func TestScenarioMealsCounted(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, now, nil)
	for i := 0; i < 3; i++ {
		create(t, svc, "Rex", "meal", "1")
	}

	got, err := svc.SummaryForDate(context.Background(), SummaryOptions{PetName: str("rex")})
	if err != nil {
		t.Fatalf("SummaryForDate: %v", err)
	}
	if got.Meals != 3 || got.TotalWalkMinutes != 0 || got.Meds != 0 {
		t.Fatalf("unexpected summary %+v", got.Summary)
	}
}

func TestScenarioNeedsWalkCutoff(t *testing.T) {
	svc, _, clock := newTestService(t, time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC), nil)
	ctx := context.Background()

	res, err := svc.NeedsWalk(ctx, NeedsWalkOptions{})
	if err != nil {
		t.Fatalf("NeedsWalk: %v", err)
	}
	if !res.ShouldPrompt || res.WalkMinutes != 0 {
		t.Fatalf("expected prompt at 18:00, got %+v", res)
	}

	clock.Set(time.Date(2024, 3, 1, 17, 59, 0, 0, time.UTC))
	res, err = svc.NeedsWalk(ctx, NeedsWalkOptions{})
	if err != nil {
		t.Fatalf("NeedsWalk: %v", err)
	}
	if res.ShouldPrompt || res.WalkMinutes != 0 {
		t.Fatalf("expected no prompt at 17:59, got %+v", res)
	}

	clock.Set(time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC))
	create(t, svc, "Rex", "walk", "5")
	res, err = svc.NeedsWalk(ctx, NeedsWalkOptions{PetName: str("Rex")})
	if err != nil {
		t.Fatalf("NeedsWalk: %v", err)
	}
	if res.ShouldPrompt || res.WalkMinutes != 5 {
		t.Fatalf("expected no prompt after walk, got %+v", res)
	}

	res, err = svc.NeedsWalk(ctx, NeedsWalkOptions{PetName: str("Mia")})
	if err != nil {
		t.Fatalf("NeedsWalk: %v", err)
	}
	if !res.ShouldPrompt {
		t.Fatalf("expected prompt for unwalked pet, got %+v", res)
	}

	early := 20
	res, err = svc.NeedsWalk(ctx, NeedsWalkOptions{PetName: str("Mia"), CutoffHour: &early})
	if err != nil {
		t.Fatalf("NeedsWalk: %v", err)
	}
	if res.ShouldPrompt {
		t.Fatalf("expected no prompt before custom cutoff, got %+v", res)
	}
}

func TestScenarioPastDateSummary(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), nil)
	create(t, svc, "Rex", "walk", "15")
	create(t, svc, "Rex", "meal", "1")

	got, err := svc.SummaryForDate(context.Background(), SummaryOptions{Date: str("2024-02-15")})
	if err != nil {
		t.Fatalf("SummaryForDate: %v", err)
	}
	if got.Summary != (core.Summary{}) {
		t.Fatalf("expected empty summary, got %+v", got.Summary)
	}

	_, err = svc.SummaryForDate(context.Background(), SummaryOptions{Date: str("15/02/2024")})
	ve, ok := core.AsValidationError(err)
	if !ok || ve.Field != core.FieldDate {
		t.Fatalf("expected date validation error, got %v", err)
	}
}

func TestCreateActivityRejectsInvalidInput(t *testing.T) {
	pub := &fakePublisher{}
	svc, store, _ := newTestService(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), pub)
	create(t, svc, "Rex", "walk", "15")

	bad := []core.ActivityRequest{
		{PetName: str("Rex"), Type: str("walk")},
		{PetName: str("Rex"), Type: str("walk"), Amount: str("0")},
		{PetName: str("Rex"), Type: str("walk"), Amount: str("-5")},
		{PetName: str("Rex"), Type: str("bath"), Amount: str("1")},
	}
	for i, req := range bad {
		before := store.Len()
		_, err := svc.CreateActivity(context.Background(), req)
		if _, ok := core.AsValidationError(err); !ok {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
		if store.Len() != before {
			t.Fatalf("case %d: store changed", i)
		}
	}
	if len(pub.activity) != 1 {
		t.Fatalf("expected one published activity, got %d", len(pub.activity))
	}
}

func TestCreateActivityPublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, store, _ := newTestService(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), pub)

	a := create(t, svc, "Rex", "meal", "1")
	if a.ID == "" || store.Len() != 1 {
		t.Fatalf("expected stored activity, got %+v len=%d", a, store.Len())
	}
}

func TestListActivities(t *testing.T) {
	svc, _, clock := newTestService(t, time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC), nil)
	create(t, svc, "Rex", "walk", "15")
	clock.Set(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	create(t, svc, "rex", "meal", "1")
	create(t, svc, "Mia", "meal", "1")

	ctx := context.Background()
	all, _ := svc.ListActivities(ctx, ListOptions{})
	if len(all) != 3 {
		t.Fatalf("expected 3, got %d", len(all))
	}
	rex, _ := svc.ListActivities(ctx, ListOptions{PetName: str("REX")})
	if len(rex) != 2 {
		t.Fatalf("expected 2 for rex, got %d", len(rex))
	}
	today, _ := svc.ListActivities(ctx, ListOptions{PetName: str("Rex"), Today: true})
	if len(today) != 1 || today[0].Type != core.Meal {
		t.Fatalf("unexpected today list %+v", today)
	}
}

func TestPetsDedupesIgnoringCase(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), nil)
	create(t, svc, "Rex", "walk", "15")
	create(t, svc, "Mia", "meal", "1")
	create(t, svc, "rex", "meal", "1")

	pets, err := svc.Pets(context.Background())
	if err != nil {
		t.Fatalf("Pets: %v", err)
	}
	if len(pets) != 2 || pets[0] != "Rex" || pets[1] != "Mia" {
		t.Fatalf("unexpected pets %v", pets)
	}
}
