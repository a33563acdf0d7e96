package core

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestActivityTypeValid(t *testing.T) {
	for _, typ := range ActivityTypes() {
		assert.True(t, typ.Valid(), typ)
	}
	for _, bad := range []ActivityType{"", "run", "Walk", "meds"} {
		assert.False(t, bad.Valid(), bad)
	}
}

func TestActivityRequestBuild(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		name  string
		req   ActivityRequest
		field string
	}{
		{"missing pet", ActivityRequest{Type: strPtr("walk"), Amount: strPtr("10")}, FieldPetName},
		{"blank pet", ActivityRequest{PetName: strPtr("   "), Type: strPtr("walk"), Amount: strPtr("10")}, FieldPetName},
		{"missing type", ActivityRequest{PetName: strPtr("Rex"), Amount: strPtr("10")}, FieldType},
		{"unknown type", ActivityRequest{PetName: strPtr("Rex"), Type: strPtr("run"), Amount: strPtr("10")}, FieldType},
		{"missing amount", ActivityRequest{PetName: strPtr("Rex"), Type: strPtr("walk")}, FieldAmount},
		{"zero amount", ActivityRequest{PetName: strPtr("Rex"), Type: strPtr("walk"), Amount: strPtr("0")}, FieldAmount},
		{"negative amount", ActivityRequest{PetName: strPtr("Rex"), Type: strPtr("meal"), Amount: strPtr("-1")}, FieldAmount},
		{"text amount", ActivityRequest{PetName: strPtr("Rex"), Type: strPtr("meal"), Amount: strPtr("lots")}, FieldAmount},
		{"bad date", ActivityRequest{PetName: strPtr("Rex"), Type: strPtr("meal"), Amount: strPtr("1"), DateTime: strPtr("yesterday")}, FieldDateTime},
		// petName is reported first when several fields are wrong
		{"order", ActivityRequest{Type: strPtr("run"), Amount: strPtr("0")}, FieldPetName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.req.Build(now, time.UTC)
			require.Error(t, err)
			ve, ok := AsValidationError(err)
			require.True(t, ok, "expected ValidationError, got %T", err)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestActivityRequestBuildNormalises(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	a, err := ActivityRequest{
		PetName: strPtr("  Rex "),
		Type:    strPtr("walk"),
		Amount:  strPtr("12,5"),
	}.Build(now, rome)
	require.NoError(t, err)
	assert.Equal(t, "Rex", a.PetName)
	assert.Equal(t, Walk, a.Type)
	assert.Equal(t, 12.5, a.Amount)
	assert.True(t, a.DateTime.Equal(now))
	assert.Equal(t, time.UTC, a.DateTime.Location())

	a, err = ActivityRequest{
		PetName:  strPtr("Rex"),
		Type:     strPtr("meal"),
		Amount:   strPtr("1"),
		DateTime: strPtr("2024-05-01T08:00"),
	}.Build(now, rome)
	require.NoError(t, err)
	// 08:00 in Rome during CEST is 06:00 UTC
	assert.Equal(t, time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC), a.DateTime)

	a, err = ActivityRequest{
		PetName:  strPtr("Rex"),
		Type:     strPtr("medication"),
		Amount:   strPtr("1"),
		DateTime: strPtr("2024-05-01T08:00:00Z"),
	}.Build(now, rome)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), a.DateTime)

	// a bare date is midnight UTC, not local midnight
	a, err = ActivityRequest{
		PetName:  strPtr("Rex"),
		Type:     strPtr("meal"),
		Amount:   strPtr("1"),
		DateTime: strPtr("2024-05-01"),
	}.Build(now, rome)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), a.DateTime)
}

func TestParseAmount(t *testing.T) {
	good := map[string]float64{"15": 15, "2.5": 2.5, "2,5": 2.5, " 7 ": 7, "1e1": 10}
	for in, want := range good {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "0", "-3", "NaN", "Inf", "abc", "1,2,3", "1.000,5"} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestSameCalendarDayMidnightBoundary(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	late := time.Date(2024, 3, 9, 23, 59, 59, 999_000_000, loc)
	early := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)

	assert.False(t, SameCalendarDay(late, early, loc))
	assert.True(t, SameCalendarDay(late, late.Add(-time.Hour), loc))
	// the same two instants fall on one UTC day
	assert.True(t, SameCalendarDay(late, early, time.UTC))

	day := DateOf(late, loc)
	assert.True(t, day.Contains(late))
	assert.False(t, day.Contains(early))
	assert.Equal(t, "2024-03-09", day.String())
	assert.True(t, day.End().Equal(early))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", d.String())

	for _, in := range []string{"", "03/01/2024", "2024-13-01", "today"} {
		_, err := ParseDate(in, time.UTC)
		ve, ok := AsValidationError(err)
		require.True(t, ok, in)
		assert.Equal(t, FieldDate, ve.Field)
	}
}

func TestFilters(t *testing.T) {
	day := NewDate(2024, 3, 1, time.UTC)
	acts := []Activity{
		{ID: "1", PetName: "Rex", Type: Walk, Amount: 10, DateTime: day.Start().Add(8 * time.Hour)},
		{ID: "2", PetName: "rex", Type: Meal, Amount: 1, DateTime: day.Start().Add(9 * time.Hour)},
		{ID: "3", PetName: "Mia", Type: Walk, Amount: 5, DateTime: day.Start().Add(10 * time.Hour)},
		{ID: "4", PetName: "Rex", Type: Walk, Amount: 20, DateTime: day.End().Add(time.Hour)},
	}

	ids := func(as []Activity) []string {
		out := []string{}
		for _, a := range as {
			out = append(out, a.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(Filter(acts, All())))
	assert.Equal(t, []string{"1", "2", "4"}, ids(Filter(acts, ForPet(" REX "))))
	assert.Equal(t, []string{"1", "2", "3"}, ids(Filter(acts, OnDate(day))))
	assert.Equal(t, []string{"1"}, ids(Filter(acts, All(ForPet("rex"), OnDate(day), OfType(Walk)))))
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(Filter(acts, All(ForPet(""), nil))))
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, Summary{}, Summarize([]Activity{}))
}

func TestSummarizeShuffleInvariant(t *testing.T) {
	acts := []Activity{
		{Type: Walk, Amount: 0.1},
		{Type: Walk, Amount: 0.2},
		{Type: Walk, Amount: 0.3},
		{Type: Walk, Amount: 1e-9},
		{Type: Walk, Amount: 17},
		{Type: Meal, Amount: 1},
		{Type: Meal, Amount: 2},
		{Type: Medication, Amount: 1},
	}
	want := Summarize(acts)
	assert.Equal(t, 2, want.Meals)
	assert.Equal(t, 1, want.Meds)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]Activity(nil), acts...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Summarize(shuffled))
	}
}

func TestWalkProgress(t *testing.T) {
	assert.Equal(t, 0, WalkProgress(0, 30))
	assert.Equal(t, 50, WalkProgress(15, 30))
	assert.Equal(t, 33, WalkProgress(10, 30))
	assert.Equal(t, 100, WalkProgress(45, 30))
	assert.Equal(t, 100, WalkProgress(0, 0))

	ds := NewDaySummary(NewDate(2024, 3, 1, time.UTC), []Activity{{Type: Walk, Amount: 15}}, 30)
	assert.Equal(t, 15.0, ds.TotalWalkMinutes)
	assert.Equal(t, 50, ds.WalkProgressPercent)
}

func TestNeedsWalkRule(t *testing.T) {
	loc := time.UTC
	rule, err := NewNeedsWalkRule(DefaultCutoffHour, loc)
	require.NoError(t, err)
	day := NewDate(2024, 3, 1, loc)

	cases := []struct {
		name   string
		now    time.Time
		walked float64
		want   bool
	}{
		{"before cutoff", time.Date(2024, 3, 1, 17, 59, 59, 0, loc), 0, false},
		{"at cutoff", time.Date(2024, 3, 1, 18, 0, 0, 0, loc), 0, true},
		{"after cutoff", time.Date(2024, 3, 1, 19, 0, 0, 0, loc), 0, true},
		{"walked", time.Date(2024, 3, 1, 19, 0, 0, 0, loc), 15, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := rule.Evaluate(tc.now, day, tc.walked)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.ShouldPrompt)
			assert.Equal(t, tc.walked, got.WalkMinutes)
		})
	}

	_, err = rule.Evaluate(time.Date(2024, 3, 2, 19, 0, 0, 0, loc), day, 0)
	assert.True(t, errors.Is(err, ErrNotToday))

	for _, h := range []int{-1, 24} {
		_, err := NewNeedsWalkRule(h, loc)
		ve, ok := AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, FieldCutoffHour, ve.Field)
	}
}

func TestNotFoundError(t *testing.T) {
	err := error(&NotFoundError{Resource: "activity", ID: "abc"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "abc")
}
