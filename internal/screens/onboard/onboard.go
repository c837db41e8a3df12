// Package onboard collects the user profile through a short sequence of
// text prompts and persists it.
package onboard

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/growth90/internal/cache"
	"github.com/abhisek/growth90/internal/profile"
	"github.com/abhisek/growth90/internal/router"
	"github.com/abhisek/growth90/internal/screen"
	"github.com/abhisek/growth90/internal/ui/components"
	"github.com/abhisek/growth90/internal/ui/layout"
	"github.com/abhisek/growth90/internal/ui/theme"
)

// CurrentUserKey is the settings key holding the active profile id.
const CurrentUserKey = "currentUserId"

type field struct {
	label    string
	required bool
	assign   func(p *profile.Profile, v string)
	initial  func(p *profile.Profile) string
}

var fields = []field{
	{
		label:    "Email",
		required: true,
		assign:   func(p *profile.Profile, v string) { p.Email = v },
		initial:  func(p *profile.Profile) string { return p.Email },
	},
	{
		label:   "Name",
		assign:  func(p *profile.Profile, v string) { p.Nickname = v },
		initial: func(p *profile.Profile) string { return p.Nickname },
	},
	{
		label:   "Industry",
		assign:  func(p *profile.Profile, v string) { p.Industry = v },
		initial: func(p *profile.Profile) string { return p.Industry },
	},
	{
		label:   "Role",
		assign:  func(p *profile.Profile, v string) { p.Role = v },
		initial: func(p *profile.Profile) string { return p.Role },
	},
	{
		label:   "Years of experience (junior / mid / senior)",
		assign:  func(p *profile.Profile, v string) { p.Experience = v },
		initial: func(p *profile.Profile) string { return p.Experience },
	},
	{
		label:   "What do you want to achieve in 90 days?",
		assign:  func(p *profile.Profile, v string) { p.Goal = v },
		initial: func(p *profile.Profile) string { return p.Goal },
	},
	{
		label:   "Daily time commitment (e.g. 30 minutes)",
		assign:  func(p *profile.Profile, v string) { p.TimeCommitment = v },
		initial: func(p *profile.Profile) string { return p.TimeCommitment },
	},
}

type savedMsg struct {
	profile *profile.Profile
	err     error
}

// ProfileSavedMsg notifies parent screens that the active profile
// changed.
type ProfileSavedMsg struct {
	UserID string
}

// OnboardScreen collects or edits the user profile.
type OnboardScreen struct {
	profiles *profile.Service
	kv       *cache.DurableKV

	p      *profile.Profile
	step   int
	input  components.TextInput
	errMsg string
	saving bool
}

var _ screen.Screen = (*OnboardScreen)(nil)

// New creates the profile screen. An existing profile id loads that
// profile for editing; an empty id starts a fresh one.
func New(profiles *profile.Service, userID string) *OnboardScreen {
	return NewWithKV(profiles, nil, userID)
}

// NewWithKV additionally records the saved profile id under
// CurrentUserKey.
func NewWithKV(profiles *profile.Service, kv *cache.DurableKV, userID string) *OnboardScreen {
	s := &OnboardScreen{profiles: profiles, kv: kv, p: &profile.Profile{}}
	if userID != "" {
		if existing, err := profiles.Get(context.Background(), userID); err == nil {
			s.p = existing
		}
	}
	s.input = s.inputFor(0)
	return s
}

func (s *OnboardScreen) inputFor(step int) components.TextInput {
	in := components.NewTextInput(fields[step].label, false, 120)
	in.Model.SetValue(fields[step].initial(s.p))
	return in
}

func (s *OnboardScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *OnboardScreen) save() tea.Cmd {
	p := s.p
	return func() tea.Msg {
		ctx := context.Background()
		p.ProfileCompleted = true

		var err error
		if p.ID == "" {
			p, err = s.profiles.Create(ctx, p)
		} else {
			err = s.profiles.Update(ctx, p)
		}
		if err != nil {
			return savedMsg{err: err}
		}
		if s.kv != nil {
			if err := s.kv.Set(ctx, CurrentUserKey, p.ID); err != nil {
				return savedMsg{err: err}
			}
		}
		return savedMsg{profile: p}
	}
}

func (s *OnboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.saving = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		userID := msg.profile.ID
		return s, func() tea.Msg { return ProfileSavedMsg{UserID: userID} }

	case ProfileSavedMsg:
		return s, func() tea.Msg { return router.PopScreenMsg{} }

	case tea.KeyMsg:
		if s.saving {
			return s, nil
		}
		if msg.String() == "enter" {
			value := strings.TrimSpace(s.input.Value())
			f := fields[s.step]
			if f.required && value == "" {
				s.errMsg = f.label + " is required"
				return s, nil
			}
			s.errMsg = ""
			f.assign(s.p, value)

			if s.step == len(fields)-1 {
				s.saving = true
				return s, s.save()
			}
			s.step++
			s.input = s.inputFor(s.step)
			return s, s.input.Init()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *OnboardScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Your Profile") + "\n")
	b.WriteString(theme.Subtitle.Render("This shapes your learning path and assessments.") + "\n\n")

	b.WriteString(theme.Body.Render(fields[s.step].label) + "\n")
	b.WriteString(s.input.View() + "\n")

	switch {
	case s.saving:
		b.WriteString("\n" + theme.Hint.Render("Saving..."))
	case s.errMsg != "":
		b.WriteString("\n" + theme.ErrorText.Render(s.errMsg))
	default:
		b.WriteString("\n" + theme.Hint.Render(
			"Step "+strings.Repeat("●", s.step+1)+strings.Repeat("○", len(fields)-s.step-1)))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 4).
		Render(b.String())
}

func (s *OnboardScreen) Title() string {
	return "Profile"
}

// KeyHints provides footer hints for this screen.
func (s *OnboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Next"},
		{Key: "Esc", Description: "Cancel"},
	}
}
