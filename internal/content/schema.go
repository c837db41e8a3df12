package content

import "github.com/abhisek/growth90/internal/llm"

// SpecializationsSchema defines the JSON schema for specialization
// discovery responses.
var SpecializationsSchema = &llm.Schema{
	Name:        "specialization-list",
	Description: "Professional specializations relevant to an industry and role",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"specializations": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Stable snake_case identifier",
						},
						"name": map[string]any{
							"type":        "string",
							"description": "Display name of the specialization",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "One sentence on what mastering it unlocks",
						},
					},
					"required":             []any{"id", "name", "description"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"specializations"},
		"additionalProperties": false,
	},
}

// PathSchema defines the JSON schema for generated learning paths. The
// day entries mirror the canonical curriculum shape the path engine
// ingests.
var PathSchema = &llm.Schema{
	Name:        "learning-path",
	Description: "A multi-week daily curriculum for one professional specialization",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"daily_curriculum": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"day": map[string]any{
							"type":    "integer",
							"minimum": 1,
						},
						"primary_learning_objective": map[string]any{
							"type":        "string",
							"description": "The single skill outcome for the day",
						},
						"supporting_concepts": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"practical_application": map[string]any{
							"type":        "string",
							"description": "A concrete exercise applying the objective at work",
						},
						"assessment_criteria": map[string]any{
							"type": "string",
						},
						"time_allocation": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"learn":    map[string]any{"type": "integer"},
								"practice": map[string]any{"type": "integer"},
								"review":   map[string]any{"type": "integer"},
							},
							"additionalProperties": false,
						},
					},
					"required":             []any{"day", "primary_learning_objective"},
					"additionalProperties": true,
				},
			},
			"milestones": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"day":         map[string]any{"type": "integer"},
						"type":        map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
					},
					"required":             []any{"day", "description"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"daily_curriculum"},
		"additionalProperties": false,
	},
}

// LessonSchema defines the JSON schema for daily lesson responses.
var LessonSchema = &llm.Schema{
	Name:        "daily-lesson",
	Description: "The lesson content for one day of a learning path",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type": "string",
			},
			"lessons": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Stable identifier within the day, e.g. lesson_1",
						},
						"title":     map[string]any{"type": "string"},
						"objective": map[string]any{"type": "string"},
						"key_concepts": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"narrative": map[string]any{
							"type":        "string",
							"description": "The teaching text, 200-400 words",
						},
						"applications": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"estimated_minutes": map[string]any{"type": "integer"},
					},
					"required":             []any{"title", "narrative"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"title", "lessons"},
		"additionalProperties": false,
	},
}
