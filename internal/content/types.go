// Package content is the content source: it generates specializations,
// learning path curricula, and daily lessons through the LLM provider,
// caches results, and falls back to bundled defaults when the provider
// is unreachable.
package content

import "encoding/json"

// Specialization is a selectable skill track within an industry.
type Specialization struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Industry    string `json:"industry,omitempty"`
}

// Lesson is one unit of a day's learning content.
type Lesson struct {
	ID               string   `json:"id,omitempty"`
	Title            string   `json:"title"`
	Objective        string   `json:"objective,omitempty"`
	KeyConcepts      []string `json:"key_concepts,omitempty"`
	Narrative        string   `json:"narrative,omitempty"`
	Applications     []string `json:"applications,omitempty"`
	EstimatedMinutes int      `json:"estimated_minutes,omitempty"`
}

// DailyLesson is the full lesson set for one day of a path.
type DailyLesson struct {
	PathID  string   `json:"pathId"`
	Day     int      `json:"day"`
	Title   string   `json:"title,omitempty"`
	Lessons []Lesson `json:"lessons"`
}

// PathRequest describes the learner for path generation.
type PathRequest struct {
	UserID         string
	Specialization Specialization
	Industry       string
	Role           string
	Experience     string
	Goal           string
	TimeCommitment string
	TotalDays      int // default 90
}

// rawJSON round-trips an LLM payload into a generic map.
func rawJSON(content json.RawMessage) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, err
	}
	return m, nil
}
