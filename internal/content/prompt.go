package content

import (
	"fmt"
	"strings"
)

const specializationsSystemPrompt = `You are a career development advisor mapping an industry and role to concrete professional specializations.

Rules:
- Suggest 4 to 8 specializations a professional in the given industry and role could pursue over 90 days.
- Each specialization must be narrow enough to show measurable progress in 90 days.
- Use stable snake_case identifiers derived from the name.
- Descriptions are one sentence: what mastering the specialization unlocks at work.`

const pathSystemPrompt = `You are a learning designer building a day-by-day professional development curriculum.

Rules:
- Produce one entry per day, numbered from 1, covering the requested number of days.
- Each day has exactly one primary learning objective. Supporting concepts break it into 2-4 pieces.
- The practical application must be doable inside the learner's stated daily time commitment.
- Sequence days so earlier objectives are prerequisites of later ones.
- Place a milestone roughly every 7 days and at the final day. Milestone descriptions are complete sentences.
- Respect the learner's experience level: do not re-teach what their role already implies.`

const lessonSystemPrompt = `You are a professional learning coach writing the lesson content for one day of a structured curriculum.

Rules:
- Split the day's objective into 1 to 4 focused lessons.
- Each lesson teaches through a narrative of 200-400 words in plain prose. No markdown headings.
- Key concepts name the ideas, applications name concrete at-work exercises.
- Estimated minutes across the day's lessons should sum close to the learner's daily time commitment.
- Give each lesson a stable id like lesson_1, lesson_2 in order.`

// buildSpecializationsMessage constructs the discovery request.
func buildSpecializationsMessage(industry, role string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Industry: %s\n", orUnspecified(industry))
	fmt.Fprintf(&b, "Role: %s\n", orUnspecified(role))
	return b.String()
}

// buildPathMessage constructs the path generation request.
func buildPathMessage(req PathRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Specialization: %s\n", req.Specialization.Name)
	if req.Specialization.Description != "" {
		fmt.Fprintf(&b, "Specialization description: %s\n", req.Specialization.Description)
	}
	fmt.Fprintf(&b, "Industry: %s\n", orUnspecified(req.Industry))
	fmt.Fprintf(&b, "Role: %s\n", orUnspecified(req.Role))
	fmt.Fprintf(&b, "Experience level: %s\n", orUnspecified(req.Experience))
	fmt.Fprintf(&b, "Days: %d\n", req.TotalDays)

	if req.Goal != "" {
		fmt.Fprintf(&b, "\nLearner's goal:\n%s\n", req.Goal)
	}
	if req.TimeCommitment != "" {
		fmt.Fprintf(&b, "\nDaily time commitment: %s\n", req.TimeCommitment)
	}

	return b.String()
}

// buildLessonMessage constructs the daily lesson request from the
// curriculum entry.
func buildLessonMessage(specialization string, day int, objective string, concepts []string, application, timeCommitment string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Specialization: %s\n", specialization)
	fmt.Fprintf(&b, "Day: %d\n", day)
	fmt.Fprintf(&b, "Primary learning objective: %s\n", objective)
	if len(concepts) > 0 {
		fmt.Fprintf(&b, "Supporting concepts: %s\n", strings.Join(concepts, ", "))
	}
	if application != "" {
		fmt.Fprintf(&b, "Practical application: %s\n", application)
	}
	if timeCommitment != "" {
		fmt.Fprintf(&b, "Daily time commitment: %s\n", timeCommitment)
	}

	return b.String()
}

func orUnspecified(s string) string {
	if s == "" {
		return "unspecified"
	}
	return s
}
