package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/abhisek/growth90/internal/cache"
	"github.com/abhisek/growth90/internal/llm"
)

// Cache content types.
const (
	cacheTypeSpecializations = "specializations"
	cacheTypeLesson          = "lesson"
)

// DefaultTotalDays is the standard path length.
const DefaultTotalDays = 90

// Config holds content generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   8192,
		Temperature: 0.4,
	}
}

// Service generates content through the LLM provider with cache and
// offline fallbacks. A nil provider serves fallbacks only.
type Service struct {
	provider llm.Provider
	cache    *cache.ContentCache
	cfg      Config
}

// NewService creates a content service.
func NewService(provider llm.Provider, contentCache *cache.ContentCache, cfg Config) *Service {
	return &Service{provider: provider, cache: contentCache, cfg: cfg}
}

// GetSpecializations returns the specializations for an industry and
// role: cached result first, then the provider, then bundled defaults.
func (s *Service) GetSpecializations(ctx context.Context, industry, role string) ([]Specialization, error) {
	key := fmt.Sprintf("specializations_%s_%s", industry, role)

	var cached []Specialization
	if ok, err := s.cached(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	if s.provider == nil {
		return fallbackSpecializations(industry), nil
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeSpecializations), llm.Request{
		System: specializationsSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSpecializationsMessage(industry, role)},
		},
		Schema:      SpecializationsSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.warn("specialization generation failed, serving defaults: %v", err)
		return fallbackSpecializations(industry), nil
	}

	var out struct {
		Specializations []Specialization `json:"specializations"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse specializations: %w", err)
	}
	for i := range out.Specializations {
		out.Specializations[i].Industry = industry
	}

	s.store(ctx, key, cacheTypeSpecializations, out.Specializations)
	return out.Specializations, nil
}

// GeneratePath produces a path payload for the path engine to ingest.
// Provider failures fall back to the bundled offline curriculum, so
// path creation works without connectivity.
func (s *Service) GeneratePath(ctx context.Context, req PathRequest) (map[string]any, error) {
	if req.TotalDays <= 0 {
		req.TotalDays = DefaultTotalDays
	}

	if s.provider == nil {
		return fallbackPathPayload(req), nil
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposePathGeneration), llm.Request{
		System: pathSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPathMessage(req)},
		},
		Schema:      PathSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.warn("path generation failed, using offline curriculum: %v", err)
		return fallbackPathPayload(req), nil
	}

	payload, err := rawJSON(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse path payload: %w", err)
	}
	return payload, nil
}

// LessonRequest describes the day to generate content for. The
// curriculum fields come from the path engine's projection.
type LessonRequest struct {
	PathID         string
	Day            int
	Specialization string
	Objective      string
	Concepts       []string
	Application    string
	TimeCommitment string
}

// GetDailyLesson returns the lesson set for one day: cache, then
// provider, then a fallback built from the curriculum entry itself.
func (s *Service) GetDailyLesson(ctx context.Context, req LessonRequest) (*DailyLesson, error) {
	key := fmt.Sprintf("lesson_%s_%d", req.PathID, req.Day)

	var cached DailyLesson
	if ok, err := s.cached(ctx, key, &cached); err == nil && ok && len(cached.Lessons) > 0 {
		return &cached, nil
	}

	if s.provider == nil {
		return fallbackLesson(req.PathID, req.Day, req.Objective, req.Concepts, req.Application), nil
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeLessonContent), llm.Request{
		System: lessonSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildLessonMessage(
				req.Specialization, req.Day, req.Objective, req.Concepts, req.Application, req.TimeCommitment,
			)},
		},
		Schema:      LessonSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.warn("lesson generation failed, using curriculum fallback: %v", err)
		return fallbackLesson(req.PathID, req.Day, req.Objective, req.Concepts, req.Application), nil
	}

	payload, err := rawJSON(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse lesson payload: %w", err)
	}
	lesson, err := NormalizeDailyLesson(payload, req.PathID, req.Day)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, cacheTypeLesson, lesson)
	return lesson, nil
}

// LessonCount reports how many lessons the cached lesson set for a day
// declares, or 0 when nothing is cached. It never triggers generation.
func (s *Service) LessonCount(ctx context.Context, pathID string, day int) int {
	var cached DailyLesson
	key := fmt.Sprintf("lesson_%s_%d", pathID, day)
	if ok, err := s.cached(ctx, key, &cached); err != nil || !ok {
		return 0
	}
	return len(cached.Lessons)
}

// InvalidateLesson drops a day's cached lesson so the next read
// regenerates it.
func (s *Service) InvalidateLesson(ctx context.Context, pathID string, day int) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, fmt.Sprintf("lesson_%s_%d", pathID, day))
}

// cached reads a cache entry into out through a JSON round trip.
func (s *Service) cached(ctx context.Context, key string, out any) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	value, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

// store caches a value best-effort; generation already succeeded.
func (s *Service) store(ctx context.Context, key, contentType string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, contentType, value, cache.DefaultTTL); err != nil {
		s.warn("caching %s failed: %v", key, err)
	}
}

func (s *Service) warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
