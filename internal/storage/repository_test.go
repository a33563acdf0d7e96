package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"petcare/internal/core"
)

func newTestRepo(t *testing.T, opts ...Option) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(fmt.Sprintf("test_%s_%d", t.Name(), time.Now().UnixNano()), opts...)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func request(pet, typ, amount string) core.ActivityRequest {
	return core.ActivityRequest{PetName: &pet, Type: &typ, Amount: &amount}
}

func TestSQLiteAppendAndQuery(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newTestRepo(t,
		WithClock(func() time.Time { return now }),
		WithLocation(time.UTC),
	)
	ctx := context.Background()

	walk, err := repo.Append(ctx, request(" Rex ", "walk", "15"))
	if err != nil {
		t.Fatalf("append walk: %v", err)
	}
	if walk.ID == "" || walk.PetName != "Rex" || walk.Amount != 15 || !walk.DateTime.Equal(now) {
		t.Fatalf("unexpected record: %+v", walk)
	}
	if _, err := repo.Append(ctx, request("Mia", "meal", "1")); err != nil {
		t.Fatalf("append meal: %v", err)
	}

	all, err := repo.Query(ctx, nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 2 || all[0].ID != walk.ID {
		t.Fatalf("expected insertion order, got %+v", all)
	}

	rex, err := repo.Query(ctx, core.ForPet("REX"))
	if err != nil {
		t.Fatalf("query rex: %v", err)
	}
	if len(rex) != 1 || rex[0] != walk {
		t.Fatalf("unexpected rex records: %+v", rex)
	}
}

func TestSQLiteRejectedInputLeavesStoreUnchanged(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Append(ctx, request("Rex", "nap", "5")); err == nil {
		t.Fatal("expected validation error")
	}
	n, err := repo.Len(ctx)
	if err != nil {
		t.Fatalf("len: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}
}

func TestSQLiteRedrawsCollidingIDs(t *testing.T) {
	ids := []string{"dup", "dup", "fresh"}
	i := 0
	repo := newTestRepo(t, WithIDGenerator(func() string {
		id := ids[i]
		i++
		return id
	}))
	ctx := context.Background()

	first, err := repo.Append(ctx, request("Rex", "walk", "5"))
	if err != nil {
		t.Fatalf("first append: %v", err)
	}
	second, err := repo.Append(ctx, request("Rex", "walk", "5"))
	if err != nil {
		t.Fatalf("second append: %v", err)
	}
	if first.ID != "dup" || second.ID != "fresh" {
		t.Fatalf("unexpected ids %q %q", first.ID, second.ID)
	}
}

func TestSQLiteDatabasesAreIsolatedByName(t *testing.T) {
	a := newTestRepo(t)
	b := newTestRepo(t)
	ctx := context.Background()
	if _, err := a.Append(ctx, request("Rex", "walk", "5")); err != nil {
		t.Fatalf("append: %v", err)
	}
	n, err := b.Len(ctx)
	if err != nil || n != 0 {
		t.Fatalf("expected isolated db, got n=%d err=%v", n, err)
	}
}
