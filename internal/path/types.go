// Package path implements the learning path and progress engine:
// ingestion and normalization of generated curricula, projection into
// days, weeks, and milestones, and idempotent lesson completion with
// the day/path completion cascade.
package path

// Path and lesson status values.
const (
	StatusActive    = "active"
	StatusArchived  = "archived"
	StatusCompleted = "completed"
)

// TimeAllocation splits a day's minutes across activities.
type TimeAllocation struct {
	Learn    int `json:"learn"`
	Practice int `json:"practice"`
	Review   int `json:"review"`
}

// CurriculumDay is one entry of the 90-day curriculum.
type CurriculumDay struct {
	Day                      int             `json:"day"`
	PrimaryLearningObjective string          `json:"primary_learning_objective"`
	SupportingConcepts       []string        `json:"supporting_concepts,omitempty"`
	PracticalApplication     string          `json:"practical_application,omitempty"`
	AssessmentCriteria       string          `json:"assessment_criteria,omitempty"`
	TimeAllocation           *TimeAllocation `json:"time_allocation,omitempty"`
	ExtensionOpportunities   string          `json:"extension_opportunities,omitempty"`
	Prerequisites            string          `json:"prerequisites,omitempty"`
}

// Milestone marks a checkpoint day in a path.
type Milestone struct {
	Day         int    `json:"day"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// PathData is the normalized curriculum payload.
type PathData struct {
	DailyCurriculum []CurriculumDay `json:"daily_curriculum"`
	Milestones      []Milestone     `json:"milestones,omitempty"`
}

// Progress is the rollup state embedded in a LearningPath.
type Progress struct {
	CurrentDay    int    `json:"currentDay"`
	CompletedDays []int  `json:"completedDays"`
	TotalDays     int    `json:"totalDays"`
	StartDate     string `json:"startDate"`
}

// LearningPath is a stored 90-day learning path. A user may own several
// paths; at most one is active.
type LearningPath struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Status         string          `json:"status"`
	Specialization string          `json:"specialization"`
	PathData       PathData        `json:"pathData"`
	Curriculum     []CurriculumDay `json:"curriculum"` // legacy alias of pathData.daily_curriculum
	Milestones     []Milestone     `json:"milestones,omitempty"`
	Progress       Progress        `json:"progress"`
	CreatedAt      string          `json:"createdAt,omitempty"`
	UpdatedAt      string          `json:"updatedAt,omitempty"`
}

// LessonProgress records one completed lesson. The id is the compound
// key userId|pathId|day|lessonId, so replays are idempotent. Records are
// never updated or deleted.
type LessonProgress struct {
	ID          string   `json:"id"`
	UserID      string   `json:"userId"`
	PathID      string   `json:"pathId"`
	Day         int      `json:"day"`
	LessonID    string   `json:"lessonId"`
	Status      string   `json:"status"`
	CompletedAt string   `json:"completedAt"`
	TimeSpent   int      `json:"timeSpent,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Week is a contiguous block of up to seven curriculum days.
type Week struct {
	Number int
	Days   []CurriculumDay
}

// WeekProgress is the completion rollup for one week.
type WeekProgress struct {
	CompletedDays int
	TotalDays     int
	Percent       int
}

// DayCompletion is the payload of day:completed.
type DayCompletion struct {
	UserID string
	PathID string
	Day    int
}

// MilestoneReached is the payload of milestone:reached.
type MilestoneReached struct {
	UserID    string
	PathID    string
	Milestone Milestone
}
