// Package pathview renders a learning path: the 90-day overview with
// per-week progress, and the current day's lesson list with completion.
package pathview

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/growth90/internal/content"
	"github.com/abhisek/growth90/internal/path"
	"github.com/abhisek/growth90/internal/screen"
	"github.com/abhisek/growth90/internal/ui/components"
	"github.com/abhisek/growth90/internal/ui/layout"
	"github.com/abhisek/growth90/internal/ui/theme"
)

// Focus selects which view the screen opens on.
type Focus int

const (
	FocusToday Focus = iota
	FocusOverview
)

// Deps bundles the services the path screen needs.
type Deps struct {
	Paths   *path.Engine
	Content *content.Service
	UserID  string
}

type lessonLoadedMsg struct {
	lesson *content.DailyLesson
	done   map[string]bool
	err    error
}

type lessonMarkedMsg struct {
	err error
}

// PathScreen shows one learning path and lets the user complete lessons.
type PathScreen struct {
	deps  Deps
	p     *path.LearningPath
	focus Focus

	currentDay int
	weeks      []path.Week
	weekProg   []path.WeekProgress

	loading  bool
	lesson   *content.DailyLesson
	done     map[string]bool
	selected int
	errMsg   string
}

var _ screen.Screen = (*PathScreen)(nil)

// New creates the path screen for an already loaded path.
func New(deps Deps, p *path.LearningPath, focus Focus) *PathScreen {
	s := &PathScreen{deps: deps, p: p, focus: focus, loading: true}
	s.refreshProjection()
	return s
}

func (s *PathScreen) refreshProjection() {
	ctx := context.Background()
	s.currentDay, _ = s.deps.Paths.CurrentDay(ctx, s.deps.UserID, s.p)
	s.weeks = path.Weeks(s.p)
	s.weekProg = make([]path.WeekProgress, len(s.weeks))
	for i, w := range s.weeks {
		wp, err := s.deps.Paths.WeekProgressOf(ctx, s.deps.UserID, s.p, w.Number)
		if err == nil {
			s.weekProg[i] = wp
		}
	}
}

func (s *PathScreen) Init() tea.Cmd {
	return s.loadLesson()
}

// loadLesson fetches the current day's lesson set and completion state.
func (s *PathScreen) loadLesson() tea.Cmd {
	day := s.currentDay
	return func() tea.Msg {
		ctx := context.Background()

		req := content.LessonRequest{
			PathID:         s.p.ID,
			Day:            day,
			Specialization: s.p.Specialization,
		}
		for _, d := range path.Curriculum(s.p) {
			if d.Day == day {
				req.Objective = d.PrimaryLearningObjective
				req.Concepts = d.SupportingConcepts
				req.Application = d.PracticalApplication
				break
			}
		}

		lesson, err := s.deps.Content.GetDailyLesson(ctx, req)
		if err != nil {
			return lessonLoadedMsg{err: err}
		}
		done, err := s.deps.Paths.CompletedLessons(ctx, s.deps.UserID, s.p.ID, day)
		if err != nil {
			return lessonLoadedMsg{err: err}
		}
		return lessonLoadedMsg{lesson: lesson, done: done}
	}
}

func (s *PathScreen) markSelected() tea.Cmd {
	if s.lesson == nil || s.selected >= len(s.lesson.Lessons) {
		return nil
	}
	l := s.lesson.Lessons[s.selected]
	if s.done[l.ID] {
		return nil
	}
	day := s.currentDay
	return func() tea.Msg {
		_, err := s.deps.Paths.MarkLessonCompleted(context.Background(), s.deps.UserID, s.p.ID, day, path.LessonInput{
			LessonID:  l.ID,
			TimeSpent: l.EstimatedMinutes,
		})
		return lessonMarkedMsg{err: err}
	}
}

func (s *PathScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case lessonLoadedMsg:
		s.loading = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.lesson = msg.lesson
		s.done = msg.done
		if s.selected >= len(s.lesson.Lessons) {
			s.selected = 0
		}
		return s, nil

	case lessonMarkedMsg:
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		// Completion may advance the current day; reproject and reload.
		s.refreshProjection()
		s.loading = true
		return s, s.loadLesson()

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			if s.focus == FocusToday {
				s.focus = FocusOverview
			} else {
				s.focus = FocusToday
			}
		case "up", "k":
			if s.focus == FocusToday && s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.focus == FocusToday && s.lesson != nil && s.selected < len(s.lesson.Lessons)-1 {
				s.selected++
			}
		case "enter":
			if s.focus == FocusToday {
				return s, s.markSelected()
			}
		}
	}
	return s, nil
}

func (s *PathScreen) View(width, height int) string {
	if s.focus == FocusOverview {
		return s.viewOverview(width, height)
	}
	return s.viewToday(width, height)
}

func (s *PathScreen) viewOverview(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render(s.p.Title) + "\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Day %d of %d", s.currentDay, s.p.Progress.TotalDays)) + "\n\n")

	barWidth := width - 8
	if barWidth > 60 {
		barWidth = 60
	}
	for i, w := range s.weeks {
		wp := s.weekProg[i]
		label := fmt.Sprintf("Week %2d", w.Number)
		bar := components.NewProgressBar(label, float64(wp.Percent)/100, true, barWidth)
		b.WriteString(bar.View() + "\n")
	}

	milestones := path.Milestones(s.p)
	if len(milestones) > 0 {
		b.WriteString("\n" + theme.Subtitle.Render("Milestones") + "\n")
		for _, m := range milestones {
			marker := "○"
			if m.Day < s.currentDay {
				marker = lipgloss.NewStyle().Foreground(theme.Success).Render("●")
			}
			b.WriteString(fmt.Sprintf("  %s Day %2d  %s\n", marker, m.Day, m.Description))
		}
	}

	b.WriteString("\n" + theme.Hint.Render("Tab: today's lessons"))
	return frame(b.String(), width, height)
}

func (s *PathScreen) viewToday(width, height int) string {
	var b strings.Builder

	title := fmt.Sprintf("Day %d", s.currentDay)
	if s.lesson != nil && s.lesson.Title != "" {
		title += "  " + s.lesson.Title
	}
	b.WriteString(theme.Title.Render(title) + "\n\n")

	switch {
	case s.loading:
		b.WriteString(theme.Hint.Render("Preparing today's lessons...") + "\n")
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render("Could not load lessons: "+s.errMsg) + "\n")
	case s.lesson == nil || len(s.lesson.Lessons) == 0:
		b.WriteString(theme.Hint.Render("No lessons for today.") + "\n")
	default:
		for i, l := range s.lesson.Lessons {
			marker := "○"
			if s.done[l.ID] {
				marker = lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
			}
			line := fmt.Sprintf("%s %s", marker, l.Title)
			if l.EstimatedMinutes > 0 {
				line += theme.Hint.Render(fmt.Sprintf("  (%d min)", l.EstimatedMinutes))
			}
			if i == s.selected {
				b.WriteString(theme.Selected.Render("▸ "+line) + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}

		sel := s.lesson.Lessons[s.selected]
		if sel.Narrative != "" {
			body := lipgloss.NewStyle().Foreground(theme.Text).Width(width - 6).Render(sel.Narrative)
			b.WriteString("\n" + theme.Card.Render(body) + "\n")
		}
		if !s.done[sel.ID] {
			b.WriteString("\n" + theme.Hint.Render("Enter: mark complete"))
		}
	}

	b.WriteString("\n" + theme.Hint.Render("Tab: path overview"))
	return frame(b.String(), width, height)
}

// frame left-pads the content and pins it to the content area.
func frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 4).
		Render(content)
}

func (s *PathScreen) Title() string {
	return "Learning Path"
}

// Day feeds the frame header.
func (s *PathScreen) Day() int {
	return s.currentDay
}

// KeyHints provides footer hints for this screen.
func (s *PathScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "Enter", Description: "Complete"},
		{Key: "Tab", Description: "Switch view"},
		{Key: "Esc", Description: "Back"},
	}
}
