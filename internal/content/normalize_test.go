package content

import (
	"strings"
	"testing"
)

func TestNormalizeDailyLessonCanonical(t *testing.T) {
	payload := map[string]any{
		"title": "Negotiating scope",
		"lessons": []any{
			map[string]any{"title": "Anchoring", "narrative": "text one"},
			map[string]any{"id": "custom", "title": "Tradeoffs", "narrative": "text two"},
		},
	}
	got, err := NormalizeDailyLesson(payload, "p1", 4)
	if err != nil {
		t.Fatalf("NormalizeDailyLesson: %v", err)
	}
	if got.Title != "Negotiating scope" || got.Day != 4 || got.PathID != "p1" {
		t.Errorf("got %+v", got)
	}
	if got.Lessons[0].ID != "lesson_1" {
		t.Errorf("first id = %q, want positional lesson_1", got.Lessons[0].ID)
	}
	if got.Lessons[1].ID != "custom" {
		t.Errorf("second id = %q, want provided id kept", got.Lessons[1].ID)
	}
}

func TestNormalizeDailyLessonLegacyShape(t *testing.T) {
	payload := map[string]any{
		"title":        "Feedback that lands",
		"key_concepts": []any{"specificity", "timing"},
		"narrative":    "Feedback works when it is specific and timely.",
		"applications": []any{"Give one piece of specific feedback today"},
	}
	got, err := NormalizeDailyLesson(payload, "p1", 9)
	if err != nil {
		t.Fatalf("NormalizeDailyLesson: %v", err)
	}
	if len(got.Lessons) != 1 {
		t.Fatalf("got %d lessons, want 1 from legacy shape", len(got.Lessons))
	}
	l := got.Lessons[0]
	if l.ID != "lesson_1" || l.Title != "Feedback that lands" {
		t.Errorf("lesson = %+v", l)
	}
	if len(l.KeyConcepts) != 2 || len(l.Applications) != 1 {
		t.Errorf("lesson fields not carried over: %+v", l)
	}
}

func TestNormalizeDailyLessonSectionedShape(t *testing.T) {
	payload := map[string]any{
		"title":               "Delegating without drift",
		"narrative_intro":     "Your plate is full and the deadline moved up.",
		"narrative_challenge": "Which tasks do you hand off, and to whom?",
		"concept_explanation": "Delegation assigns outcomes, not steps.",
		"summary":             "Delegate outcomes and hold a check-in cadence.",
		"skill_application":   "Hand one owned task to a teammate this week.",
		"actionable_steps":    []any{"List tasks only you can do", "Pick a delegate for the rest"},
	}
	got, err := NormalizeDailyLesson(payload, "p1", 3)
	if err != nil {
		t.Fatalf("NormalizeDailyLesson: %v", err)
	}
	if len(got.Lessons) != 1 {
		t.Fatalf("got %d lessons, want 1 from sectioned shape", len(got.Lessons))
	}
	l := got.Lessons[0]
	if l.ID != "lesson_1" || l.Title != "Delegating without drift" {
		t.Errorf("lesson = %+v", l)
	}
	for _, want := range []string{"deadline moved up", "hand off", "outcomes, not steps", "check-in cadence"} {
		if !strings.Contains(l.Narrative, want) {
			t.Errorf("narrative missing %q: %q", want, l.Narrative)
		}
	}
	if len(l.Applications) != 3 {
		t.Fatalf("got %d applications, want skill_application + 2 steps", len(l.Applications))
	}
	if l.Applications[0] != "Hand one owned task to a teammate this week." {
		t.Errorf("applications[0] = %q", l.Applications[0])
	}
}

func TestNormalizeDailyLessonSectionedSubset(t *testing.T) {
	payload := map[string]any{
		"narrative_intro":     "A stakeholder pushes back in the review.",
		"concept_explanation": "Acknowledge, clarify, then respond.",
		"summary":             "Pushback is information, not an attack.",
		"actionable_steps":    []any{"Write down the objection before answering"},
	}
	got, err := NormalizeDailyLesson(payload, "p1", 3)
	if err != nil {
		t.Fatalf("NormalizeDailyLesson: %v", err)
	}
	l := got.Lessons[0]
	if !strings.Contains(l.Narrative, "Acknowledge, clarify") {
		t.Errorf("narrative = %q", l.Narrative)
	}
	if len(l.Applications) != 1 {
		t.Errorf("applications = %v, want the single step", l.Applications)
	}
}

func TestNormalizeDailyLessonEmpty(t *testing.T) {
	if _, err := NormalizeDailyLesson(map[string]any{"title": "x"}, "p1", 1); err == nil {
		t.Fatal("expected error for payload with no lessons")
	}
}
