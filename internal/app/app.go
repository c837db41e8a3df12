package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/growth90/internal/router"
	"github.com/abhisek/growth90/internal/screen"
	"github.com/abhisek/growth90/internal/screens/home"
	"github.com/abhisek/growth90/internal/ui/layout"
)

// dayProvider lets a screen feed the active day into the frame header.
type dayProvider interface {
	Day() int
}

// streakProvider lets a screen feed the streak into the frame header.
type streakProvider interface {
	Streak() int
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(svc *Services, userID string) AppModel {
	homeScreen := home.New(home.Deps{
		Paths:    svc.Paths,
		Assess:   svc.Assess,
		Content:  svc.Content,
		Profiles: svc.Profiles,
		KV:       svc.KV,
		UserID:   userID,
	})
	return AppModel{
		router: router.New(homeScreen),
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	day, streak := 0, 0
	if active != nil {
		title = active.Title()
		if p, ok := active.(dayProvider); ok {
			day = p.Day()
		}
		if p, ok := active.(streakProvider); ok {
			streak = p.Streak()
		}
	}

	header := layout.RenderHeader(title, day, streak, m.width)
	footer := layout.RenderFooter(footerHints(active, m.router.Depth()), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func footerHints(active screen.Screen, depth int) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if depth > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run opens the services at dbPath and starts the Bubble Tea program.
func Run(ctx context.Context, dbPath string) error {
	svc, err := OpenServices(ctx, dbPath)
	if err != nil {
		return err
	}
	defer svc.Close()

	userID := svc.CurrentUserID(ctx)

	p := tea.NewProgram(newAppModel(svc, userID))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
