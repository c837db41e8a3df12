// Package assessment implements a computer-adaptive test over a bank of
// items: per-competency ability estimation with a three-parameter
// logistic model, confidence-based stopping, and score aggregation into
// competency, dimension, and overall scores.
package assessment

import "errors"

// Item types.
const (
	TypeRating         = "rating"
	TypeMultipleChoice = "multiple-choice"
	TypeScenario       = "scenario-response"
	TypeBehavioral     = "behavioral-indicator"
	TypePractical      = "practical-demonstration"
	TypePeerEval       = "peer-evaluation"
)

// Session status values.
const (
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Assessment invariant violations. Session state is untouched when one
// of these is returned.
var (
	ErrUnknownItem     = errors.New("unknown assessment item")
	ErrAlreadyAnswered = errors.New("assessment item already answered")
	ErrInvalidResponse = errors.New("response out of range for item")
	ErrNotActive       = errors.New("assessment session not in progress")
	ErrSessionNotFound = errors.New("assessment session not found")
)

// IRTParameters are the three-parameter logistic item parameters.
// Missing discrimination defaults to 1.0 and missing guessing to 0.0.
type IRTParameters struct {
	Difficulty     float64 `json:"difficulty"`
	Discrimination float64 `json:"discrimination"`
	Guessing       float64 `json:"guessing"`
}

// Option is one multiple-choice option.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Scale bounds a rating item. Min defaults to 1.
type Scale struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Scenario is one selectable outcome of a scenario-response item.
type Scenario struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Item is one bank entry.
type Item struct {
	ID               string             `json:"id"`
	Type             string             `json:"type"`
	Competency       string             `json:"competency"`
	Dimension        string             `json:"dimension"`
	IRT              IRTParameters      `json:"irtParameters"`
	Prompt           string             `json:"prompt"`
	Options          []Option           `json:"options,omitempty"`
	CorrectOptionIDs []string           `json:"correctOptionIds,omitempty"`
	Scale            *Scale             `json:"scale,omitempty"`
	Scenarios        []Scenario         `json:"scenarios,omitempty"`
	ScoringRule      map[string]float64 `json:"scoringRule,omitempty"`
	Industries       []string           `json:"industries,omitempty"`
	Roles            []string           `json:"roles,omitempty"`
	ExperienceLevels []string           `json:"experienceLevels,omitempty"`
}

// AdaptiveSettings govern the stopping rule.
type AdaptiveSettings struct {
	Adaptive            bool    `json:"adaptive"`
	ConfidenceThreshold float64 `json:"confidenceThreshold"`
	MinQuestions        int     `json:"minQuestions"`
	MaxQuestions        int     `json:"maxQuestions"`
}

// DefaultAdaptiveSettings returns the standard stopping rule.
func DefaultAdaptiveSettings() AdaptiveSettings {
	return AdaptiveSettings{
		Adaptive:            true,
		ConfidenceThreshold: 0.8,
		MinQuestions:        3,
		MaxQuestions:        15,
	}
}

// Context carries the respondent attributes used for item relevance
// filtering at session creation.
type Context struct {
	Industry        string `json:"industry,omitempty"`
	Role            string `json:"role,omitempty"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
}

// Estimate is the per-competency latent ability state.
type Estimate struct {
	Ability       float64 `json:"ability"`
	StandardError float64 `json:"standardError"`
	LastUpdated   string  `json:"lastUpdated"`
}

// Response records one answered item.
type Response struct {
	QuestionID   string  `json:"qid"`
	Raw          any     `json:"response"`
	Normalized   float64 `json:"normalized"`
	Timestamp    string  `json:"timestamp"`
	ResponseTime int64   `json:"responseTime"` // milliseconds since delivery
}

// Session is a stored assessment session. It is mutated incrementally
// while in progress and becomes immutable once completed.
type Session struct {
	ID                   string              `json:"id"`
	UserID               string              `json:"userId"`
	PathID               string              `json:"pathId,omitempty"`
	Type                 string              `json:"type"`
	Purpose              string              `json:"purpose,omitempty"`
	TargetCompetencies   []string            `json:"targetCompetencies"`
	AdaptiveSettings     AdaptiveSettings    `json:"adaptiveSettings"`
	Questions            []string            `json:"questions"` // item ids, delivery order
	Responses            []Response          `json:"responses"`
	CurrentQuestionIndex int                 `json:"currentQuestionIndex"`
	CompetencyEstimates  map[string]Estimate `json:"competencyEstimates"`
	ConfidenceLevels     map[string]float64  `json:"confidenceLevels"`
	Status               string              `json:"status"`
	StartTime            string              `json:"startTime"`
	LastDeliveredAt      string              `json:"lastDeliveredAt,omitempty"`
	CompletedAt          string              `json:"completedAt,omitempty"`
	Result               *Result             `json:"result,omitempty"`
}

// CompetencyScore is the finalized measurement of one competency.
type CompetencyScore struct {
	StandardizedScore float64 `json:"standardizedScore"` // T-score, clamped to [0,100]
	PercentileRank    float64 `json:"percentileRank"`
	MeasurementError  float64 `json:"measurementError"`
	QuestionsAsked    int     `json:"questionsAsked"`
}

// Scores aggregates competency, dimension, and overall scores.
type Scores struct {
	Competencies map[string]CompetencyScore `json:"competencies"`
	Dimensions   map[string]float64         `json:"dimensions"`
	Overall      float64                    `json:"overall"`
}

// Result is the persisted outcome of a completed session.
type Result struct {
	ID                string             `json:"id"`
	AssessmentID      string             `json:"assessmentId"`
	UserID            string             `json:"userId"`
	CompletedAt       string             `json:"completedAt"`
	TotalTime         int64              `json:"totalTime"` // milliseconds
	QuestionsAnswered int                `json:"questionsAnswered"`
	Scores            Scores             `json:"scores"`
	Analysis          string             `json:"analysis,omitempty"`
	CompetencyProfile map[string]float64 `json:"competencyProfile"` // mean normalized response, type-weighted
	Recommendations   []string           `json:"recommendations,omitempty"`
	Reliability       float64            `json:"reliability"`
	Validity          string             `json:"validity"`
}

// ResponseProcessed is the payload of assessment:response-processed.
type ResponseProcessed struct {
	SessionID  string
	QuestionID string
	Competency string
	Normalized float64
	Confidence float64
}
