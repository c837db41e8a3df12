package content

import "fmt"

// defaultSpecializations is served when the provider is unreachable and
// nothing is cached. Keyed by industry; the empty key is the generic set.
var defaultSpecializations = map[string][]Specialization{
	"": {
		{ID: "effective_communication", Name: "Effective Communication", Description: "Explain complex work clearly to any audience and close the loop on decisions."},
		{ID: "project_leadership", Name: "Project Leadership", Description: "Plan, run, and land cross-functional projects without formal authority."},
		{ID: "data_driven_decisions", Name: "Data-Driven Decisions", Description: "Frame questions, read evidence, and defend decisions with data."},
		{ID: "time_management", Name: "Time Management", Description: "Protect focus time and deliver predictably under competing demands."},
	},
	"technology": {
		{ID: "system_design", Name: "System Design", Description: "Design services that survive load, failure, and the next requirement.", Industry: "technology"},
		{ID: "technical_leadership", Name: "Technical Leadership", Description: "Raise a team's output through reviews, mentoring, and direction setting.", Industry: "technology"},
		{ID: "incident_management", Name: "Incident Management", Description: "Run incidents calmly from detection through blameless review.", Industry: "technology"},
		{ID: "effective_communication", Name: "Effective Communication", Description: "Explain complex work clearly to any audience and close the loop on decisions.", Industry: "technology"},
	},
	"finance": {
		{ID: "financial_modeling", Name: "Financial Modeling", Description: "Build models that make assumptions explicit and scenarios cheap.", Industry: "finance"},
		{ID: "risk_analysis", Name: "Risk Analysis", Description: "Identify, quantify, and communicate exposure before it materializes.", Industry: "finance"},
		{ID: "stakeholder_reporting", Name: "Stakeholder Reporting", Description: "Turn raw numbers into narratives executives act on.", Industry: "finance"},
	},
}

// fallbackSpecializations returns the bundled set for an industry.
func fallbackSpecializations(industry string) []Specialization {
	if specs, ok := defaultSpecializations[industry]; ok {
		return specs
	}
	return defaultSpecializations[""]
}

// dayTemplate is one rotating fallback curriculum day.
type dayTemplate struct {
	objective   string
	concepts    []string
	application string
}

// fallbackWeek is the repeating weekly structure of the offline
// curriculum: learn, deepen, apply, connect, stretch, consolidate, review.
var fallbackWeek = []dayTemplate{
	{"Study one core concept of %s in depth", []string{"definitions", "when it applies", "common mistakes"}, "Write a half-page summary in your own words"},
	{"Deepen yesterday's concept with a worked example", []string{"worked example", "variations"}, "Reproduce the example from memory, then vary one input"},
	{"Apply the week's concept to your current work", []string{"transfer", "constraints at work"}, "Use the concept on a real task and note what changed"},
	{"Connect the concept to an adjacent skill in %s", []string{"adjacent skills", "tradeoffs"}, "Map where the concept helps and where it does not"},
	{"Stretch: attempt a task one level above your comfort", []string{"deliberate practice", "feedback"}, "Do the task, then ask a peer for one piece of feedback"},
	{"Consolidate the week's notes into a reference sheet", []string{"summarization", "spaced repetition"}, "Produce a one-page reference you will reuse"},
	{"Review the week and plan the next", []string{"self-assessment", "planning"}, "Score yourself 1-5 on the week's objective and write why"},
}

// fallbackPathPayload builds an offline curriculum payload in the same
// shape the provider returns, so ingestion treats both identically.
func fallbackPathPayload(req PathRequest) map[string]any {
	days := make([]any, 0, req.TotalDays)
	for d := 1; d <= req.TotalDays; d++ {
		tpl := fallbackWeek[(d-1)%len(fallbackWeek)]
		concepts := make([]any, len(tpl.concepts))
		for i, c := range tpl.concepts {
			concepts[i] = c
		}
		days = append(days, map[string]any{
			"day":                        float64(d),
			"primary_learning_objective": sprintfMaybe(tpl.objective, req.Specialization.Name),
			"supporting_concepts":        concepts,
			"practical_application":      tpl.application,
			"time_allocation":            map[string]any{"learn": float64(20), "practice": float64(20), "review": float64(10)},
		})
	}

	var milestones []any
	for d := 7; d < req.TotalDays; d += 7 {
		milestones = append(milestones, map[string]any{
			"day":         float64(d),
			"type":        "weekly",
			"description": fmt.Sprintf("Completed week %d of %s.", d/7, req.Specialization.Name),
		})
	}
	milestones = append(milestones, map[string]any{
		"day":         float64(req.TotalDays),
		"type":        "completion",
		"description": fmt.Sprintf("Finished the %d-day %s path.", req.TotalDays, req.Specialization.Name),
	})

	return map[string]any{
		"daily_curriculum": days,
		"milestones":       milestones,
	}
}

func sprintfMaybe(format, arg string) string {
	if !containsVerb(format) {
		return format
	}
	return fmt.Sprintf(format, arg)
}

func containsVerb(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '%' && s[i+1] == 's' {
			return true
		}
	}
	return false
}

// fallbackLesson builds a single-lesson day from the curriculum entry
// when the provider is unreachable.
func fallbackLesson(pathID string, day int, objective string, concepts []string, application string) *DailyLesson {
	narrative := fmt.Sprintf(
		"Today's focus is: %s. Work through it in three passes. First, read any material you have on the topic and restate the objective in your own words. Second, connect it to something you already do well and note the overlap. Third, apply it: %s. Finish by writing down one thing that surprised you.",
		objective, application)
	if application == "" {
		narrative = fmt.Sprintf(
			"Today's focus is: %s. Work through it in three passes. First, read any material you have on the topic and restate the objective in your own words. Second, connect it to something you already do well and note the overlap. Third, write down one question the topic leaves open and where you would look for the answer.",
			objective)
	}
	return &DailyLesson{
		PathID: pathID,
		Day:    day,
		Title:  objective,
		Lessons: []Lesson{{
			ID:               "lesson_1",
			Title:            objective,
			Objective:        objective,
			KeyConcepts:      concepts,
			Narrative:        narrative,
			Applications:     nonEmpty(application),
			EstimatedMinutes: 30,
		}},
	}
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
