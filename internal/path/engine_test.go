package path

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/growth90/internal/cache"
	"github.com/abhisek/growth90/internal/events"
	"github.com/abhisek/growth90/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), store.WithBus(bus))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	eng := NewEngine(st, bus, cache.NewSessionKV(), DefaultConfig())
	return eng, st, bus
}

func createTestPath(t *testing.T, eng *Engine, userID string, days int) *LearningPath {
	t.Helper()
	p, err := eng.CreatePath(context.Background(), CreateInput{
		UserID:           userID,
		SpecializationID: "golang",
		Title:            "Go in 90 Days",
		Payload:          map[string]any{"daily_curriculum": dayPayload(days)},
	})
	if err != nil {
		t.Fatalf("CreatePath: %v", err)
	}
	return p
}

func TestCreatePathArchivesPriorActive(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	first := createTestPath(t, eng, "u1", 7)
	time.Sleep(2 * time.Millisecond) // distinct path ids
	second := createTestPath(t, eng, "u1", 14)

	active, err := eng.ActivePath(ctx, "u1")
	if err != nil {
		t.Fatalf("ActivePath: %v", err)
	}
	if active == nil || active.ID != second.ID {
		t.Fatalf("active path = %+v, want %s", active, second.ID)
	}

	old, err := eng.GetPath(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetPath: %v", err)
	}
	if old.Status != StatusArchived {
		t.Errorf("first path status = %q, want archived", old.Status)
	}
}

func TestCreatePathInitialProgress(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	p := createTestPath(t, eng, "u1", 90)
	if p.Progress.CurrentDay != 1 {
		t.Errorf("currentDay = %d, want 1", p.Progress.CurrentDay)
	}
	if p.Progress.TotalDays != 90 {
		t.Errorf("totalDays = %d, want 90", p.Progress.TotalDays)
	}
	if p.Status != StatusActive {
		t.Errorf("status = %q, want active", p.Status)
	}
}

func TestGetPathNotFound(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	_, err := eng.GetPath(context.Background(), "path_missing")
	if !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("err = %v, want ErrPathNotFound", err)
	}
}

func TestWeeksPartition(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	p := createTestPath(t, eng, "u1", 95)

	weeks := Weeks(p)
	if len(weeks) != 14 {
		t.Fatalf("got %d weeks, want 14", len(weeks))
	}
	if len(weeks[0].Days) != 7 {
		t.Errorf("week 1 has %d days, want 7", len(weeks[0].Days))
	}
	if len(weeks[13].Days) != 4 {
		t.Errorf("week 14 has %d days, want 4", len(weeks[13].Days))
	}
	if weeks[13].Number != 14 {
		t.Errorf("last week number = %d, want 14", weeks[13].Number)
	}
}

func TestCurrentDayEmptyCurriculum(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	p := &LearningPath{ID: "p", UserID: "u1"}
	day, err := eng.CurrentDay(context.Background(), "u1", p)
	if err != nil {
		t.Fatalf("CurrentDay: %v", err)
	}
	if day != 1 {
		t.Errorf("day = %d, want 1", day)
	}
}

func TestCurrentDayAdvances(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()
	p := createTestPath(t, eng, "u1", 10)

	for day := 1; day <= 4; day++ {
		if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, day, LessonInput{LessonID: fmt.Sprintf("lesson_%d", day)}); err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
	}

	day, err := eng.CurrentDay(ctx, "u1", p)
	if err != nil {
		t.Fatalf("CurrentDay: %v", err)
	}
	if day != 5 {
		t.Errorf("current day = %d, want 5", day)
	}
}

func TestCurrentDayAllComplete(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()
	p := createTestPath(t, eng, "u1", 3)

	for day := 1; day <= 3; day++ {
		if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, day, LessonInput{LessonID: fmt.Sprintf("l%d", day)}); err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
	}

	day, err := eng.CurrentDay(ctx, "u1", p)
	if err != nil {
		t.Fatalf("CurrentDay: %v", err)
	}
	if day != 3 {
		t.Errorf("current day = %d, want last day 3", day)
	}
}

func TestMultiLessonDayNeedsEveryLesson(t *testing.T) {
	eng, _, bus := newTestEngine(t)
	ctx := context.Background()
	p := createTestPath(t, eng, "u1", 2)

	eng.WithLessonCount(func(_ *LearningPath, day int) int {
		if day == 1 {
			return 3
		}
		return 0
	})

	dayDone := 0
	bus.On(events.DayCompleted, func(any) { dayDone++ })

	if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, 1, LessonInput{LessonID: "l1a"}); err != nil {
		t.Fatalf("lesson 1: %v", err)
	}

	complete, err := eng.IsDayComplete(ctx, "u1", p, 1)
	if err != nil {
		t.Fatalf("IsDayComplete: %v", err)
	}
	if complete {
		t.Fatal("day 1 reported complete after 1 of 3 lessons")
	}
	day, err := eng.CurrentDay(ctx, "u1", p)
	if err != nil {
		t.Fatalf("CurrentDay: %v", err)
	}
	if day != 1 {
		t.Fatalf("current day = %d, want 1 while lessons remain", day)
	}
	if dayDone != 0 {
		t.Fatalf("day:completed emitted %d times after 1 of 3 lessons", dayDone)
	}

	for _, id := range []string{"l1b", "l1c"} {
		if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, 1, LessonInput{LessonID: id}); err != nil {
			t.Fatalf("lesson %s: %v", id, err)
		}
	}

	complete, err = eng.IsDayComplete(ctx, "u1", p, 1)
	if err != nil {
		t.Fatalf("IsDayComplete: %v", err)
	}
	if !complete {
		t.Error("day 1 not complete after all 3 lessons")
	}
	day, err = eng.CurrentDay(ctx, "u1", p)
	if err != nil {
		t.Fatalf("CurrentDay: %v", err)
	}
	if day != 2 {
		t.Errorf("current day = %d, want 2", day)
	}
	if dayDone != 1 {
		t.Errorf("day:completed emitted %d times, want 1", dayDone)
	}

	// Day 2 has no disclosed count; its single narrative suffices.
	if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, 2, LessonInput{LessonID: "l2"}); err != nil {
		t.Fatalf("day 2: %v", err)
	}
	complete, err = eng.IsDayComplete(ctx, "u1", p, 2)
	if err != nil {
		t.Fatalf("IsDayComplete: %v", err)
	}
	if !complete {
		t.Error("day 2 not complete after its single lesson")
	}
}

func TestMarkLessonCompletedIdempotent(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()
	p := createTestPath(t, eng, "u1", 5)

	for i := 0; i < 3; i++ {
		if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, 1, LessonInput{LessonID: "l1", TimeSpent: 30}); err != nil {
			t.Fatalf("replay %d: %v", i, err)
		}
	}

	recs, err := st.QueryItems(ctx, store.LearningProgress, store.Query{
		Index: "pathId",
		Range: &store.Range{Only: p.ID},
	})
	if err != nil {
		t.Fatalf("QueryItems: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d progress records, want 1 after replays", len(recs))
	}
}

func TestMarkLessonCompletedUnknownPath(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	_, err := eng.MarkLessonCompleted(context.Background(), "u1", "path_nope", 1, LessonInput{LessonID: "l1"})
	if !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("err = %v, want ErrPathNotFound", err)
	}
}

func TestCompletionCascadeEvents(t *testing.T) {
	eng, _, bus := newTestEngine(t)
	ctx := context.Background()
	p := createTestPath(t, eng, "u1", 2)

	var names []string
	for _, name := range []string{events.LessonCompleted, events.DayCompleted, events.PathCompleted} {
		n := name
		bus.On(n, func(any) { names = append(names, n) })
	}

	if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, 1, LessonInput{LessonID: "l1"}); err != nil {
		t.Fatalf("day 1: %v", err)
	}
	if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, 2, LessonInput{LessonID: "l2"}); err != nil {
		t.Fatalf("day 2: %v", err)
	}

	want := []string{
		events.LessonCompleted, events.DayCompleted,
		events.LessonCompleted, events.DayCompleted, events.PathCompleted,
	}
	if len(names) != len(want) {
		t.Fatalf("events = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestMilestoneReachedOnce(t *testing.T) {
	eng, _, bus := newTestEngine(t)
	ctx := context.Background()

	p, err := eng.CreatePath(ctx, CreateInput{
		UserID:           "u1",
		SpecializationID: "golang",
		Title:            "Go in 90 Days",
		Payload: map[string]any{
			"daily_curriculum": dayPayload(4),
			"milestones": []any{
				map[string]any{"day": float64(2), "type": "checkpoint", "description": "Halfway."},
			},
		},
	})
	if err != nil {
		t.Fatalf("CreatePath: %v", err)
	}

	reached := 0
	bus.On(events.MilestoneReached, func(any) { reached++ })

	for day := 1; day <= 2; day++ {
		if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, day, LessonInput{LessonID: fmt.Sprintf("l%d", day)}); err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
	}
	if reached != 1 {
		t.Fatalf("milestone emitted %d times, want 1", reached)
	}

	// Later completions must not re-fire the milestone.
	if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, 3, LessonInput{LessonID: "l3"}); err != nil {
		t.Fatalf("day 3: %v", err)
	}
	if reached != 1 {
		t.Errorf("milestone emitted %d times after day 3, want 1", reached)
	}
}

func TestMilestoneDedupAcrossSessions(t *testing.T) {
	eng, st, bus := newTestEngine(t)
	ctx := context.Background()

	p, err := eng.CreatePath(ctx, CreateInput{
		UserID:           "u1",
		SpecializationID: "golang",
		Title:            "Go in 90 Days",
		Payload: map[string]any{
			"daily_curriculum": dayPayload(2),
			"milestones": []any{
				map[string]any{"day": float64(1), "type": "checkpoint", "description": "Start."},
			},
		},
	})
	if err != nil {
		t.Fatalf("CreatePath: %v", err)
	}

	reached := 0
	bus.On(events.MilestoneReached, func(any) { reached++ })

	if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, 1, LessonInput{LessonID: "l1"}); err != nil {
		t.Fatalf("day 1: %v", err)
	}
	if reached != 1 {
		t.Fatalf("milestone emitted %d times, want 1", reached)
	}

	// A fresh engine simulates a restart: the durable event log still
	// remembers the milestone.
	eng2 := NewEngine(st, bus, cache.NewSessionKV(), DefaultConfig())
	if _, err := eng2.MarkLessonCompleted(ctx, "u1", p.ID, 2, LessonInput{LessonID: "l2"}); err != nil {
		t.Fatalf("day 2: %v", err)
	}
	if reached != 1 {
		t.Errorf("milestone emitted %d times across sessions, want 1", reached)
	}
}

func TestWeekProgress(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()
	p := createTestPath(t, eng, "u1", 14)

	for day := 1; day <= 3; day++ {
		if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, day, LessonInput{LessonID: fmt.Sprintf("l%d", day)}); err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
	}

	wp, err := eng.WeekProgressOf(ctx, "u1", p, 1)
	if err != nil {
		t.Fatalf("WeekProgressOf: %v", err)
	}
	if wp.CompletedDays != 3 || wp.TotalDays != 7 {
		t.Errorf("progress = %d/%d, want 3/7", wp.CompletedDays, wp.TotalDays)
	}
	if wp.Percent != 43 {
		t.Errorf("percent = %d, want 43", wp.Percent)
	}

	wp2, err := eng.WeekProgressOf(ctx, "u1", p, 2)
	if err != nil {
		t.Fatalf("WeekProgressOf: %v", err)
	}
	if wp2.CompletedDays != 0 {
		t.Errorf("week 2 completed = %d, want 0", wp2.CompletedDays)
	}

	if _, err := eng.WeekProgressOf(ctx, "u1", p, 3); !errors.Is(err, ErrMalformed) {
		t.Errorf("week 3 err = %v, want ErrMalformed", err)
	}
}

func TestStreakConsecutiveDays(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()
	p := createTestPath(t, eng, "u1", 10)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		day := i
		eng.WithClock(func() time.Time { return base.AddDate(0, 0, day) })
		if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, day+1, LessonInput{LessonID: fmt.Sprintf("l%d", day+1)}); err != nil {
			t.Fatalf("day %d: %v", day+1, err)
		}
	}

	eng.WithClock(func() time.Time { return base.AddDate(0, 0, 2) })
	streak, err := eng.Streak(ctx, "u1", p.ID)
	if err != nil {
		t.Fatalf("Streak: %v", err)
	}
	if streak != 3 {
		t.Errorf("streak = %d, want 3", streak)
	}

	// Nothing done today yet keeps yesterday's streak alive.
	eng.WithClock(func() time.Time { return base.AddDate(0, 0, 3) })
	streak, err = eng.Streak(ctx, "u1", p.ID)
	if err != nil {
		t.Fatalf("Streak: %v", err)
	}
	if streak != 3 {
		t.Errorf("streak on next morning = %d, want 3", streak)
	}

	// A missed day resets the streak.
	eng.WithClock(func() time.Time { return base.AddDate(0, 0, 5) })
	streak, err = eng.Streak(ctx, "u1", p.ID)
	if err != nil {
		t.Fatalf("Streak: %v", err)
	}
	if streak != 0 {
		t.Errorf("streak after gap = %d, want 0", streak)
	}
}

func TestTimeInvested(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()
	p := createTestPath(t, eng, "u1", 10)

	if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, 1, LessonInput{LessonID: "l1", TimeSpent: 25}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.MarkLessonCompleted(ctx, "u1", p.ID, 2, LessonInput{LessonID: "l2", TimeSpent: 40}); err != nil {
		t.Fatal(err)
	}

	total, err := eng.TimeInvested(ctx, "u1", p.ID)
	if err != nil {
		t.Fatalf("TimeInvested: %v", err)
	}
	if total != 65 {
		t.Errorf("total = %d, want 65", total)
	}
}
