// Package home is the main menu screen: a summary of the active path
// and navigation into the path, assessment, and profile screens.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/growth90/internal/assessment"
	"github.com/abhisek/growth90/internal/cache"
	"github.com/abhisek/growth90/internal/content"
	"github.com/abhisek/growth90/internal/path"
	"github.com/abhisek/growth90/internal/profile"
	"github.com/abhisek/growth90/internal/router"
	"github.com/abhisek/growth90/internal/screen"
	"github.com/abhisek/growth90/internal/screens/assess"
	"github.com/abhisek/growth90/internal/screens/onboard"
	"github.com/abhisek/growth90/internal/screens/pathview"
	"github.com/abhisek/growth90/internal/ui/components"
	"github.com/abhisek/growth90/internal/ui/theme"
)

// Deps bundles the services the home screen and its children need.
type Deps struct {
	Paths    *path.Engine
	Assess   *assessment.Engine
	Content  *content.Service
	Profiles *profile.Service
	KV       *cache.DurableKV
	UserID   string
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	deps Deps
	menu components.Menu

	userID     string
	prof       *profile.Profile
	activePath *path.LearningPath
	currentDay int
	streak     int
	invested   int
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen and loads the active path summary.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.reload()
	return h
}

// reload resolves the current user and active path, then rebuilds the
// menu so item availability tracks the loaded state.
func (h *HomeScreen) reload() {
	ctx := context.Background()

	h.userID = h.deps.UserID
	if h.deps.KV != nil {
		if v, ok, err := h.deps.KV.Get(ctx, onboard.CurrentUserKey); err == nil && ok {
			if id, ok := v.(string); ok && id != "" {
				h.userID = id
			}
		}
	}

	h.prof = nil
	if h.userID != "" {
		h.prof, _ = h.deps.Profiles.Get(ctx, h.userID)
	}

	h.activePath = nil
	if h.userID != "" {
		if p, err := h.deps.Paths.ActivePath(ctx, h.userID); err == nil && p != nil {
			h.activePath = p
			h.currentDay, _ = h.deps.Paths.CurrentDay(ctx, h.userID, p)
			h.streak, _ = h.deps.Paths.Streak(ctx, h.userID, p.ID)
			h.invested, _ = h.deps.Paths.TimeInvested(ctx, h.userID, p.ID)
		}
	}

	selected := h.menu.Selected
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "TODAY'S LESSON", Action: h.openToday, Disabled: h.activePath == nil},
		{Label: "LEARNING PATH", Action: h.openPath, Disabled: h.activePath == nil},
		{Label: "ASSESSMENT", Action: h.openAssessment, Disabled: h.userID == ""},
		{Label: "PROFILE", Action: h.openProfile},
		{Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }},
	})
	if selected > 0 && selected < len(h.menu.Items) && !h.menu.Items[selected].Disabled {
		h.menu.Selected = selected
	}
}

func (h *HomeScreen) pathDeps() pathview.Deps {
	return pathview.Deps{
		Paths:   h.deps.Paths,
		Content: h.deps.Content,
		UserID:  h.userID,
	}
}

func (h *HomeScreen) openToday() tea.Cmd {
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: pathview.New(h.pathDeps(), h.activePath, pathview.FocusToday)}
	}
}

func (h *HomeScreen) openPath() tea.Cmd {
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: pathview.New(h.pathDeps(), h.activePath, pathview.FocusOverview)}
	}
}

func (h *HomeScreen) openAssessment() tea.Cmd {
	return func() tea.Msg {
		var pathID string
		if h.activePath != nil {
			pathID = h.activePath.ID
		}
		return router.PushScreenMsg{Screen: assess.New(h.deps.Assess, h.userID, pathID)}
	}
}

func (h *HomeScreen) openProfile() tea.Cmd {
	return func() tea.Msg {
		return router.PushScreenMsg{
			Screen: onboard.NewWithKV(h.deps.Profiles, h.deps.KV, h.userID),
		}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	// Returning from a child screen refreshes the summary.
	if _, ok := msg.(router.PopScreenMsg); ok {
		h.reload()
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Width(width).Render("GROWTH90") + "\n")
	b.WriteString(theme.Subtitle.Width(width).Render("90 days of deliberate professional growth") + "\n\n")

	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	switch {
	case h.activePath != nil:
		summary := fmt.Sprintf("%s\nDay %d of %d   ★ %d day streak   %d min invested",
			h.activePath.Title, h.currentDay, h.activePath.Progress.TotalDays, h.streak, h.invested)
		b.WriteString(center.Render(theme.Card.Render(summary)) + "\n\n")
	case h.prof != nil:
		b.WriteString(center.Render(theme.Hint.Render(
			"Welcome back, "+displayName(h.prof)+". Create a path with `growth90 path new`.")) + "\n\n")
	default:
		b.WriteString(center.Render(theme.Hint.Render(
			"Start by setting up your profile.")) + "\n\n")
	}

	b.WriteString(center.Render(h.menu.View()))

	return lipgloss.NewStyle().Height(height).Render(b.String())
}

func displayName(p *profile.Profile) string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.Email
}

func (h *HomeScreen) Title() string {
	return "Home"
}

// Day reports the active day for the header, 0 when no path exists.
func (h *HomeScreen) Day() int {
	if h.activePath == nil {
		return 0
	}
	return h.currentDay
}

// Streak reports the completion streak for the header.
func (h *HomeScreen) Streak() int {
	return h.streak
}
