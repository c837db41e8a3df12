// Package assess runs an adaptive assessment session interactively and
// presents the scored result.
package assess

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/growth90/internal/assessment"
	"github.com/abhisek/growth90/internal/screen"
	"github.com/abhisek/growth90/internal/ui/components"
	"github.com/abhisek/growth90/internal/ui/layout"
	"github.com/abhisek/growth90/internal/ui/theme"
)

// defaultCompetencies covers every dimension of the bundled item bank.
var defaultCompetencies = []string{
	"problem_solving",
	"technical_analysis",
	"communication",
	"collaboration",
	"decision_making",
	"adaptability",
}

// agreementLabels map a five-point self-report onto response strength.
var agreementLabels = []string{
	"Strongly disagree",
	"Disagree",
	"Neutral",
	"Agree",
	"Strongly agree",
}

type sessionStartedMsg struct {
	session *assessment.Session
	item    *assessment.Item
	err     error
}

type answerRecordedMsg struct {
	session *assessment.Session
	item    *assessment.Item
	done    bool
	err     error
}

// AssessScreen drives one adaptive session from start to result.
type AssessScreen struct {
	engine *assessment.Engine
	userID string
	pathID string

	session  *assessment.Session
	item     *assessment.Item
	choice   components.Choice
	answered int
	result   *assessment.Result
	errMsg   string
	loading  bool
}

var _ screen.Screen = (*AssessScreen)(nil)

// New creates the assessment screen. The session starts on Init.
func New(engine *assessment.Engine, userID, pathID string) *AssessScreen {
	return &AssessScreen{
		engine:  engine,
		userID:  userID,
		pathID:  pathID,
		loading: true,
	}
}

func (s *AssessScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		session, err := s.engine.CreateSession(ctx, assessment.CreateInput{
			UserID:       s.userID,
			PathID:       s.pathID,
			Type:         "skill-gap",
			Purpose:      "baseline",
			Competencies: defaultCompetencies,
		})
		if err != nil {
			return sessionStartedMsg{err: err}
		}
		item, _, err := s.engine.NextQuestion(ctx, session.ID)
		return sessionStartedMsg{session: session, item: item, err: err}
	}
}

// submit scores the current answer and advances the session.
func (s *AssessScreen) submit(raw any) tea.Cmd {
	sessionID := s.session.ID
	questionID := s.item.ID
	return func() tea.Msg {
		ctx := context.Background()
		session, err := s.engine.SubmitResponse(ctx, sessionID, questionID, raw)
		if err != nil {
			return answerRecordedMsg{err: err}
		}
		if session.Status == assessment.StatusCompleted {
			return answerRecordedMsg{session: session, done: true}
		}
		item, done, err := s.engine.NextQuestion(ctx, sessionID)
		if err != nil {
			return answerRecordedMsg{err: err}
		}
		if done {
			session, err = s.engine.GetSession(ctx, sessionID)
			if err != nil {
				return answerRecordedMsg{err: err}
			}
		}
		return answerRecordedMsg{session: session, item: item, done: done}
	}
}

// rawFor translates the selected option index into the engine's
// expected response value for the item type.
func rawFor(item *assessment.Item, idx int) any {
	switch item.Type {
	case assessment.TypeMultipleChoice:
		return item.Options[idx].ID
	case assessment.TypeScenario:
		return item.Scenarios[idx].ID
	case assessment.TypeRating:
		min := 1
		if item.Scale != nil && item.Scale.Min != 0 {
			min = item.Scale.Min
		}
		return float64(min + idx)
	default:
		// Self-report strength on [0, 1].
		return float64(idx) / float64(len(agreementLabels)-1)
	}
}

// choiceFor builds the option list for an item.
func choiceFor(item *assessment.Item) components.Choice {
	var options []string
	switch item.Type {
	case assessment.TypeMultipleChoice:
		for _, o := range item.Options {
			options = append(options, o.Text)
		}
	case assessment.TypeScenario:
		for _, sc := range item.Scenarios {
			options = append(options, sc.Text)
		}
	case assessment.TypeRating:
		min, max := 1, 5
		if item.Scale != nil {
			if item.Scale.Min != 0 {
				min = item.Scale.Min
			}
			max = item.Scale.Max
		}
		for v := min; v <= max; v++ {
			options = append(options, strconv.Itoa(v))
		}
	default:
		options = append(options, agreementLabels...)
	}
	return components.NewChoice(item.Prompt, options)
}

func (s *AssessScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionStartedMsg:
		s.loading = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.session = msg.session
		s.item = msg.item
		if s.item != nil {
			s.choice = choiceFor(s.item)
		}
		return s, nil

	case answerRecordedMsg:
		s.loading = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.session = msg.session
		s.answered++
		if msg.done {
			s.item = nil
			s.result = msg.session.Result
			return s, nil
		}
		s.item = msg.item
		s.choice = choiceFor(s.item)
		return s, nil

	case tea.KeyMsg:
		if s.item == nil || s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		if s.choice.Submitted {
			s.loading = true
			return s, s.submit(rawFor(s.item, s.choice.Value()))
		}
		return s, cmd
	}
	return s, nil
}

func (s *AssessScreen) View(width, height int) string {
	var b strings.Builder

	switch {
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render("Assessment error: "+s.errMsg) + "\n\n")
		b.WriteString(theme.Hint.Render("Esc: back"))
	case s.result != nil:
		b.WriteString(s.viewResult(width))
	case s.loading || s.item == nil:
		b.WriteString(theme.Hint.Render("Preparing the next question..."))
	default:
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Question %d", s.answered+1)) + "\n\n")
		b.WriteString(s.choice.View())
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 4).
		Render(b.String())
}

func (s *AssessScreen) viewResult(width int) string {
	var b strings.Builder
	r := s.result

	b.WriteString(theme.Title.Render("Assessment Complete") + "\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Overall score: %.0f", r.Scores.Overall)) + "\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Questions answered: %d", r.QuestionsAnswered)) + "\n\n")

	dims := make([]string, 0, len(r.Scores.Dimensions))
	for d := range r.Scores.Dimensions {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	for _, d := range dims {
		b.WriteString(fmt.Sprintf("  %-12s %.0f\n", d, r.Scores.Dimensions[d]))
	}

	comps := make([]string, 0, len(r.Scores.Competencies))
	for c := range r.Scores.Competencies {
		comps = append(comps, c)
	}
	sort.Strings(comps)
	b.WriteString("\n" + theme.Subtitle.Render("Competencies") + "\n")
	for _, c := range comps {
		cs := r.Scores.Competencies[c]
		b.WriteString(fmt.Sprintf("  %-20s %.0f  (p%.0f)\n", c, cs.StandardizedScore, cs.PercentileRank))
	}

	if r.Analysis != "" {
		body := lipgloss.NewStyle().Foreground(theme.Text).Width(width - 12).Render(r.Analysis)
		b.WriteString("\n" + theme.Card.Render(body) + "\n")
	}
	for _, rec := range r.Recommendations {
		b.WriteString(theme.Hint.Render("• "+rec) + "\n")
	}

	b.WriteString("\n" + theme.Hint.Render("Esc: back"))
	return b.String()
}

func (s *AssessScreen) Title() string {
	return "Assessment"
}

// KeyHints provides footer hints for this screen.
func (s *AssessScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "Enter", Description: "Answer"},
		{Key: "Esc", Description: "Back"},
	}
}
