package path

import (
	"encoding/json"
	"strings"
)

// curriculumKeys lists the accepted payload shapes, newest first. The
// content source has shipped all of these over time; new shapes add one
// entry here.
var curriculumKeys = []string{
	"daily_curriculum",
	"curriculum",
	"days",
	"plan",
	"learning_plan",
	"content",
}

// ParsePathData normalizes an externally produced path payload into the
// canonical PathData shape: the first recognized curriculum key wins,
// supporting concepts are trimmed, milestone descriptions end with a
// sentence terminator, and day numbers are filled in when absent.
func ParsePathData(payload map[string]any) (PathData, error) {
	var data PathData

	raw, ok := findCurriculum(payload)
	if !ok {
		return data, malformedErr("no curriculum in payload")
	}

	days, err := decodeDays(raw)
	if err != nil {
		return data, malformedErr("curriculum entries: %v", err)
	}
	if len(days) == 0 {
		return data, malformedErr("empty curriculum")
	}

	for i := range days {
		if days[i].Day == 0 {
			days[i].Day = i + 1
		}
		for j, c := range days[i].SupportingConcepts {
			days[i].SupportingConcepts[j] = strings.TrimSpace(c)
		}
	}
	data.DailyCurriculum = days

	if raw, ok := payload["milestones"]; ok {
		milestones, err := decodeMilestones(raw)
		if err != nil {
			return data, malformedErr("milestones: %v", err)
		}
		for i := range milestones {
			milestones[i].Description = ensureTerminator(milestones[i].Description)
		}
		data.Milestones = milestones
	}

	return data, nil
}

func findCurriculum(payload map[string]any) (any, bool) {
	for _, key := range curriculumKeys {
		v, ok := payload[key]
		if !ok {
			continue
		}
		if list, ok := v.([]any); ok && len(list) > 0 {
			return v, true
		}
	}
	return nil, false
}

func decodeDays(raw any) ([]CurriculumDay, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var days []CurriculumDay
	if err := json.Unmarshal(b, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func decodeMilestones(raw any) ([]Milestone, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var milestones []Milestone
	if err := json.Unmarshal(b, &milestones); err != nil {
		return nil, err
	}
	return milestones, nil
}

// ensureTerminator appends a period when a description does not already
// end with a sentence terminator.
func ensureTerminator(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return trimmed
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return trimmed
	}
	return trimmed + "."
}
