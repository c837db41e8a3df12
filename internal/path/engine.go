package path

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/abhisek/growth90/internal/cache"
	"github.com/abhisek/growth90/internal/events"
	"github.com/abhisek/growth90/internal/store"
)

// DaysPerWeek partitions a curriculum into weeks.
const DaysPerWeek = 7

// LessonCountFunc reports how many lessons the content source produced
// for a day, or 0 when unknown.
type LessonCountFunc func(path *LearningPath, day int) int

// Config holds path engine settings.
type Config struct {
	// DefaultLessonsPerDay is the conservative fallback used when a day
	// has no curriculum narrative and the content source has not
	// disclosed a lesson count. Its use is recorded in the event log.
	DefaultLessonsPerDay int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{DefaultLessonsPerDay: 6}
}

// Engine owns learning path ingestion, projection, and progress.
type Engine struct {
	store       *store.Store
	bus         *events.Bus
	session     *cache.SessionKV
	cfg         Config
	lessonCount LessonCountFunc
	now         func() time.Time
}

// NewEngine creates a path engine over the given store and bus.
func NewEngine(st *store.Store, bus *events.Bus, session *cache.SessionKV, cfg Config) *Engine {
	return &Engine{
		store:   st,
		bus:     bus,
		session: session,
		cfg:     cfg,
		now:     time.Now,
	}
}

// WithLessonCount installs the content collaborator's lesson counter.
func (e *Engine) WithLessonCount(fn LessonCountFunc) *Engine {
	e.lessonCount = fn
	return e
}

// WithClock overrides the clock. Used in tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// CreateInput describes a new path to ingest.
type CreateInput struct {
	UserID           string
	SpecializationID string
	Title            string
	Description      string
	Payload          map[string]any // externally generated pathData
}

// CreatePath normalizes the payload and stores a new active path. Any
// previously active path of the user is archived in the same
// transaction; archived paths are kept, not deleted.
func (e *Engine) CreatePath(ctx context.Context, in CreateInput) (*LearningPath, error) {
	data, err := ParsePathData(in.Payload)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	p := &LearningPath{
		ID:             fmt.Sprintf("path_%s_%s_%d", in.UserID, in.SpecializationID, now.UnixMilli()),
		UserID:         in.UserID,
		Title:          in.Title,
		Description:    in.Description,
		Status:         StatusActive,
		Specialization: in.SpecializationID,
		PathData:       data,
		Curriculum:     data.DailyCurriculum, // legacy alias
		Milestones:     data.Milestones,
		Progress: Progress{
			CurrentDay:    1,
			CompletedDays: []int{},
			TotalDays:     len(data.DailyCurriculum),
			StartDate:     now.Format(time.RFC3339),
		},
	}

	rec, err := store.ToRecord(p)
	if err != nil {
		return nil, fmt.Errorf("encode path: %w", err)
	}

	ops := []store.Op{{Type: store.OpPut, Store: store.LearningPaths, Record: rec}}

	prior, err := e.activePaths(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	for _, old := range prior {
		old.Status = StatusArchived
		oldRec, err := store.ToRecord(old)
		if err != nil {
			return nil, fmt.Errorf("encode archived path: %w", err)
		}
		ops = append(ops, store.Op{Type: store.OpPut, Store: store.LearningPaths, Record: oldRec})
	}

	if err := e.store.Batch(ctx, ops); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPath loads a path by id.
func (e *Engine) GetPath(ctx context.Context, pathID string) (*LearningPath, error) {
	rec, err := e.store.Get(ctx, store.LearningPaths, pathID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, pathID)
	}
	var p LearningPath
	if err := store.FromRecord(rec, &p); err != nil {
		return nil, fmt.Errorf("decode path: %w", err)
	}
	return &p, nil
}

// ActivePath returns the user's active path, or nil when none exists.
func (e *Engine) ActivePath(ctx context.Context, userID string) (*LearningPath, error) {
	paths, err := e.activePaths(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	// Newest wins if the single-active invariant was ever violated.
	sort.Slice(paths, func(i, j int) bool { return paths[i].CreatedAt > paths[j].CreatedAt })
	return paths[0], nil
}

// UserPaths returns all paths owned by the user, newest first.
func (e *Engine) UserPaths(ctx context.Context, userID string) ([]*LearningPath, error) {
	recs, err := e.store.QueryItems(ctx, store.LearningPaths, store.Query{
		Index: "userId",
		Range: &store.Range{Only: userID},
	})
	if err != nil {
		return nil, err
	}
	paths := make([]*LearningPath, 0, len(recs))
	for _, rec := range recs {
		var p LearningPath
		if err := store.FromRecord(rec, &p); err != nil {
			return nil, fmt.Errorf("decode path: %w", err)
		}
		paths = append(paths, &p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].CreatedAt > paths[j].CreatedAt })
	return paths, nil
}

func (e *Engine) activePaths(ctx context.Context, userID string) ([]*LearningPath, error) {
	paths, err := e.UserPaths(ctx, userID)
	if err != nil {
		return nil, err
	}
	active := paths[:0]
	for _, p := range paths {
		if p.Status == StatusActive {
			active = append(active, p)
		}
	}
	return active, nil
}

// Curriculum resolves the canonical day sequence, accepting both the
// new and the legacy stored shape.
func Curriculum(p *LearningPath) []CurriculumDay {
	if len(p.PathData.DailyCurriculum) > 0 {
		return p.PathData.DailyCurriculum
	}
	return p.Curriculum
}

// Weeks partitions the curriculum into contiguous blocks of seven days,
// numbered from 1. The final week may be short.
func Weeks(p *LearningPath) []Week {
	days := Curriculum(p)
	var weeks []Week
	for start := 0; start < len(days); start += DaysPerWeek {
		end := min(start+DaysPerWeek, len(days))
		weeks = append(weeks, Week{
			Number: len(weeks) + 1,
			Days:   days[start:end],
		})
	}
	return weeks
}

// Milestones returns the path's milestones unchanged.
func Milestones(p *LearningPath) []Milestone {
	if len(p.Milestones) > 0 {
		return p.Milestones
	}
	return p.PathData.Milestones
}

// progressFor loads all LessonProgress records for a path.
func (e *Engine) progressFor(ctx context.Context, pathID string) ([]LessonProgress, error) {
	recs, err := e.store.QueryItems(ctx, store.LearningProgress, store.Query{
		Index: "pathId",
		Range: &store.Range{Only: pathID},
	})
	if err != nil {
		return nil, err
	}
	out := make([]LessonProgress, 0, len(recs))
	for _, rec := range recs {
		var lp LessonProgress
		if err := store.FromRecord(rec, &lp); err != nil {
			return nil, fmt.Errorf("decode progress: %w", err)
		}
		out = append(out, lp)
	}
	return out, nil
}

// completedLessons counts distinct completed lessons per day.
func completedLessons(records []LessonProgress, userID string) map[int]map[string]bool {
	byDay := make(map[int]map[string]bool)
	for _, lp := range records {
		if lp.UserID != userID || lp.Status != StatusCompleted {
			continue
		}
		if byDay[lp.Day] == nil {
			byDay[lp.Day] = make(map[string]bool)
		}
		byDay[lp.Day][lp.LessonID] = true
	}
	return byDay
}

// CompletedLessons reports the lesson ids the user has completed on one
// day of a path.
func (e *Engine) CompletedLessons(ctx context.Context, userID, pathID string, day int) (map[string]bool, error) {
	records, err := e.progressFor(ctx, pathID)
	if err != nil {
		return nil, err
	}
	done := completedLessons(records, userID)[day]
	if done == nil {
		done = make(map[string]bool)
	}
	return done, nil
}

// totalLessonsForDay resolves the lesson count for a day. The content
// source's disclosed count wins; a day it has not counted is one lesson
// when the curriculum carries its narrative, else the configured
// conservative default.
func (e *Engine) totalLessonsForDay(ctx context.Context, p *LearningPath, day int) int {
	if e.lessonCount != nil {
		if n := e.lessonCount(p, day); n > 0 {
			return n
		}
	}
	for _, d := range Curriculum(p) {
		if d.Day == day {
			return 1
		}
	}
	// Fallback in use is worth knowing about; record it.
	_ = e.store.AppendEvent(ctx, p.UserID, "progress:default-lesson-count", map[string]any{
		"pathId": p.ID,
		"day":    day,
	})
	return e.cfg.DefaultLessonsPerDay
}

// IsDayComplete reports whether every lesson declared for the day has a
// completed LessonProgress record.
func (e *Engine) IsDayComplete(ctx context.Context, userID string, p *LearningPath, day int) (bool, error) {
	records, err := e.progressFor(ctx, p.ID)
	if err != nil {
		return false, err
	}
	return e.dayComplete(ctx, userID, p, day, completedLessons(records, userID)), nil
}

func (e *Engine) dayComplete(ctx context.Context, userID string, p *LearningPath, day int, byDay map[int]map[string]bool) bool {
	return len(byDay[day]) >= e.totalLessonsForDay(ctx, p, day)
}

// CurrentDay computes the active day: the earliest incomplete day, or
// the last day once everything is complete. An empty curriculum yields 1.
func (e *Engine) CurrentDay(ctx context.Context, userID string, p *LearningPath) (int, error) {
	days := Curriculum(p)
	if len(days) == 0 {
		return 1, nil
	}
	records, err := e.progressFor(ctx, p.ID)
	if err != nil {
		return 0, err
	}
	byDay := completedLessons(records, userID)
	for day := 1; day <= len(days); day++ {
		if !e.dayComplete(ctx, userID, p, day, byDay) {
			return day, nil
		}
	}
	return len(days), nil
}

// LessonInput describes a completed lesson.
type LessonInput struct {
	LessonID  string
	TimeSpent int
	Score     *float64
	Notes     string
}

// MarkLessonCompleted writes an idempotent LessonProgress record and
// runs the completion cascade. Replaying the same lesson id yields the
// same state. Emits lesson:completed, and day:completed /
// path:completed / milestone:reached as the cascade observes them.
func (e *Engine) MarkLessonCompleted(ctx context.Context, userID, pathID string, day int, in LessonInput) (*LessonProgress, error) {
	p, err := e.GetPath(ctx, pathID)
	if err != nil {
		return nil, err
	}
	if in.LessonID == "" {
		return nil, malformedErr("lesson id is required")
	}

	lp := &LessonProgress{
		ID:          fmt.Sprintf("%s|%s|%d|%s", userID, pathID, day, in.LessonID),
		UserID:      userID,
		PathID:      pathID,
		Day:         day,
		LessonID:    in.LessonID,
		Status:      StatusCompleted,
		CompletedAt: e.now().UTC().Format(time.RFC3339),
		TimeSpent:   in.TimeSpent,
		Score:       in.Score,
		Notes:       in.Notes,
	}

	rec, err := store.ToRecord(lp)
	if err != nil {
		return nil, fmt.Errorf("encode progress: %w", err)
	}
	if _, err := e.store.Put(ctx, store.LearningProgress, rec); err != nil {
		return nil, err
	}

	e.emit(events.LessonCompleted, lp)

	if err := e.cascade(ctx, userID, p, day); err != nil {
		return nil, err
	}
	return lp, nil
}

// cascade recomputes day, path, and milestone completion after a
// durable lesson write.
func (e *Engine) cascade(ctx context.Context, userID string, p *LearningPath, day int) error {
	records, err := e.progressFor(ctx, p.ID)
	if err != nil {
		return err
	}
	byDay := completedLessons(records, userID)

	if !e.dayComplete(ctx, userID, p, day, byDay) {
		return nil
	}
	e.emit(events.DayCompleted, DayCompletion{UserID: userID, PathID: p.ID, Day: day})

	totalDays := len(Curriculum(p))
	allComplete := totalDays > 0
	for d := 1; d <= totalDays; d++ {
		if !e.dayComplete(ctx, userID, p, d, byDay) {
			allComplete = false
			break
		}
	}
	if day == totalDays && allComplete {
		e.emit(events.PathCompleted, DayCompletion{UserID: userID, PathID: p.ID, Day: day})
	}

	return e.checkMilestones(ctx, userID, p, byDay)
}

// checkMilestones emits milestone:reached for every milestone whose
// days are all complete, once per session (session guard) and once
// durably (event log).
func (e *Engine) checkMilestones(ctx context.Context, userID string, p *LearningPath, byDay map[int]map[string]bool) error {
	for _, m := range Milestones(p) {
		reached := true
		for d := 1; d <= m.Day; d++ {
			if !e.dayComplete(ctx, userID, p, d, byDay) {
				reached = false
				break
			}
		}
		if !reached {
			continue
		}

		guard := fmt.Sprintf("milestone_%s_%d", p.ID, m.Day)
		if e.session != nil {
			if _, seen := e.session.Get(guard); seen {
				continue
			}
		}
		logged, err := e.milestoneLogged(ctx, userID, p.ID, m.Day)
		if err != nil {
			return err
		}
		if e.session != nil {
			e.session.Set(guard, true)
		}
		if logged {
			continue
		}

		if err := e.store.AppendEvent(ctx, userID, events.MilestoneReached, map[string]any{
			"pathId": p.ID,
			"day":    float64(m.Day),
		}); err != nil {
			return err
		}
		e.emit(events.MilestoneReached, MilestoneReached{UserID: userID, PathID: p.ID, Milestone: m})
	}
	return nil
}

// milestoneLogged checks the durable event log for a prior
// milestone:reached emission. This is the cross-session deduplication.
func (e *Engine) milestoneLogged(ctx context.Context, userID, pathID string, day int) (bool, error) {
	recs, err := e.store.QueryItems(ctx, store.Analytics, store.Query{
		Index: "event",
		Range: &store.Range{Only: events.MilestoneReached},
	})
	if err != nil {
		return false, err
	}
	for _, rec := range recs {
		if rec["userId"] != userID {
			continue
		}
		data, _ := rec["data"].(map[string]any)
		if data == nil {
			continue
		}
		if data["pathId"] == pathID && data["day"] == float64(day) {
			return true, nil
		}
	}
	return false, nil
}

// WeekProgressOf returns the completion rollup for week w (1-based).
func (e *Engine) WeekProgressOf(ctx context.Context, userID string, p *LearningPath, w int) (WeekProgress, error) {
	weeks := Weeks(p)
	if w < 1 || w > len(weeks) {
		return WeekProgress{}, malformedErr("week %d out of range", w)
	}
	week := weeks[w-1]

	records, err := e.progressFor(ctx, p.ID)
	if err != nil {
		return WeekProgress{}, err
	}
	byDay := completedLessons(records, userID)

	done := 0
	for _, d := range week.Days {
		if e.dayComplete(ctx, userID, p, d.Day, byDay) {
			done++
		}
	}
	total := len(week.Days)
	return WeekProgress{
		CompletedDays: done,
		TotalDays:     total,
		Percent:       int(math.Round(float64(done) / float64(total) * 100)),
	}, nil
}

// Streak computes the current consecutive-day completion streak from
// the progress log: distinct completion dates running back from today
// or yesterday.
func (e *Engine) Streak(ctx context.Context, userID, pathID string) (int, error) {
	records, err := e.progressFor(ctx, pathID)
	if err != nil {
		return 0, err
	}

	dates := make(map[string]bool)
	for _, lp := range records {
		if lp.UserID != userID || lp.Status != StatusCompleted {
			continue
		}
		t, err := time.Parse(time.RFC3339, lp.CompletedAt)
		if err != nil {
			continue
		}
		dates[t.UTC().Format("2006-01-02")] = true
	}

	day := e.now().UTC()
	if !dates[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1) // streak survives until tomorrow
	}

	streak := 0
	for dates[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

// TimeInvested sums recorded lesson minutes for a path.
func (e *Engine) TimeInvested(ctx context.Context, userID, pathID string) (int, error) {
	records, err := e.progressFor(ctx, pathID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, lp := range records {
		if lp.UserID == userID && lp.Status == StatusCompleted {
			total += lp.TimeSpent
		}
	}
	return total, nil
}

func (e *Engine) emit(name string, payload any) {
	if e.bus != nil {
		e.bus.Emit(name, payload)
	}
}
