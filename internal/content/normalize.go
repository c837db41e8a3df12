package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// narrativeSections are the keys of the sectioned lesson shape, in the
// order they are stitched into one narrative. Any subset may appear.
var narrativeSections = []string{
	"narrative_intro",
	"narrative_challenge",
	"concept_explanation",
	"reflection_question",
	"summary",
	"additional_resources",
}

// NormalizeDailyLesson converts a provider lesson payload into the
// canonical DailyLesson shape. Three shapes are accepted: the sectioned
// form (narrative_intro, concept_explanation, actionable_steps, ...,
// any subset, folded into one lesson), the {title, lessons[]} form, and
// the legacy single-lesson form with key_concepts, narrative, and
// applications at the top level. Lesson ids are filled in positionally
// when absent.
func NormalizeDailyLesson(payload map[string]any, pathID string, day int) (*DailyLesson, error) {
	out := &DailyLesson{PathID: pathID, Day: day}
	if title, ok := payload["title"].(string); ok {
		out.Title = title
	}

	if raw, ok := payload["lessons"]; ok {
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("lesson payload: %w", err)
		}
		if err := json.Unmarshal(b, &out.Lessons); err != nil {
			return nil, fmt.Errorf("lesson payload: %w", err)
		}
	} else if _, ok := payload["narrative"]; ok {
		// Legacy shape: the whole payload is one lesson.
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("lesson payload: %w", err)
		}
		var single Lesson
		if err := json.Unmarshal(b, &single); err != nil {
			return nil, fmt.Errorf("lesson payload: %w", err)
		}
		if single.Title == "" {
			single.Title = out.Title
		}
		out.Lessons = []Lesson{single}
	} else if single, ok := sectionedLesson(payload); ok {
		if single.Title == "" {
			single.Title = out.Title
		}
		out.Lessons = []Lesson{single}
	}

	if len(out.Lessons) == 0 {
		return nil, fmt.Errorf("lesson payload for day %d has no lessons", day)
	}

	for i := range out.Lessons {
		if out.Lessons[i].ID == "" {
			out.Lessons[i].ID = fmt.Sprintf("lesson_%d", i+1)
		}
	}
	if out.Title == "" {
		out.Title = out.Lessons[0].Title
	}
	return out, nil
}

// sectionedLesson folds the sectioned payload shape into one Lesson:
// the narrative keys become the narrative, skill_application and
// actionable_steps become applications. Reports false when none of the
// section keys carry content.
func sectionedLesson(payload map[string]any) (Lesson, bool) {
	var l Lesson
	found := false

	var parts []string
	for _, key := range narrativeSections {
		switch v := payload[key].(type) {
		case string:
			if v != "" {
				parts = append(parts, v)
				found = true
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					parts = append(parts, s)
					found = true
				}
			}
		}
	}
	l.Narrative = strings.Join(parts, "\n\n")

	if s, ok := payload["skill_application"].(string); ok && s != "" {
		l.Applications = append(l.Applications, s)
		found = true
	}
	if steps, ok := payload["actionable_steps"].([]any); ok {
		for _, v := range steps {
			if s, ok := v.(string); ok && s != "" {
				l.Applications = append(l.Applications, s)
				found = true
			}
		}
	}

	return l, found
}
