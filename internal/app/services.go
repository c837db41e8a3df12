package app

import (
	"context"
	"fmt"

	"github.com/abhisek/growth90/internal/assessment"
	"github.com/abhisek/growth90/internal/cache"
	"github.com/abhisek/growth90/internal/content"
	"github.com/abhisek/growth90/internal/events"
	"github.com/abhisek/growth90/internal/llm"
	"github.com/abhisek/growth90/internal/path"
	"github.com/abhisek/growth90/internal/profile"
	"github.com/abhisek/growth90/internal/screens/onboard"
	"github.com/abhisek/growth90/internal/store"
)

// Services is the wired application core shared by the TUI and the CLI
// subcommands.
type Services struct {
	Store    *store.Store
	Bus      *events.Bus
	Cache    *cache.ContentCache
	KV       *cache.DurableKV
	Session  *cache.SessionKV
	Profiles *profile.Service
	Paths    *path.Engine
	Assess   *assessment.Engine
	Content  *content.Service
	Provider llm.Provider
}

// telemetryRecorder appends LLM request telemetry to the durable event
// log.
type telemetryRecorder struct {
	store *store.Store
}

func (r telemetryRecorder) RecordLLMRequest(ctx context.Context, ev llm.RequestEvent) error {
	return r.store.AppendEvent(ctx, "", events.LLMRequest, map[string]any{
		"provider":     ev.Provider,
		"model":        ev.Model,
		"purpose":      ev.Purpose,
		"latencyMs":    ev.LatencyMs,
		"success":      ev.Success,
		"inputTokens":  ev.InputTokens,
		"outputTokens": ev.OutputTokens,
		"error":        ev.ErrorMessage,
	})
}

// OpenServices opens the store at dbPath and wires every service.
// When no LLM configuration is discovered the content service runs in
// offline mode on fallback templates.
func OpenServices(ctx context.Context, dbPath string) (*Services, error) {
	bus := events.NewBus()

	st, err := store.Open(dbPath, store.WithBus(bus))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	contentCache := cache.NewContentCache(st)
	session := cache.NewSessionKV()

	var provider llm.Provider
	if cfg, ok := llm.DiscoverConfig(); ok {
		provider, err = llm.NewProvider(ctx, cfg, telemetryRecorder{store: st})
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("configure llm provider: %w", err)
		}
	}

	contentSvc := content.NewService(provider, contentCache, content.DefaultConfig())

	paths := path.NewEngine(st, bus, session, path.DefaultConfig()).
		WithLessonCount(func(p *path.LearningPath, day int) int {
			return contentSvc.LessonCount(context.Background(), p.ID, day)
		})

	bank, err := assessment.DefaultBank()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load item bank: %w", err)
	}

	return &Services{
		Store:    st,
		Bus:      bus,
		Cache:    contentCache,
		KV:       cache.NewDurableKV(st),
		Session:  session,
		Profiles: profile.NewService(st),
		Paths:    paths,
		Assess:   assessment.NewEngine(st, bus, bank),
		Content:  contentSvc,
		Provider: provider,
	}, nil
}

// Close releases the underlying store.
func (s *Services) Close() error {
	return s.Store.Close()
}

// CurrentUserID resolves the active profile id, empty when onboarding
// has not happened yet.
func (s *Services) CurrentUserID(ctx context.Context) string {
	v, ok, err := s.KV.Get(ctx, onboard.CurrentUserKey)
	if err != nil || !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
