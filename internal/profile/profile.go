// Package profile stores user profiles. Profiles are created at first
// run, updated by onboarding and profile edits, and never deleted.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/abhisek/growth90/internal/store"
)

// ErrNotFound indicates a lookup against a profile that does not exist.
var ErrNotFound = errors.New("user profile not found")

// Profile is one user's onboarding and preference state.
type Profile struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	Nickname         string   `json:"nickname,omitempty"`
	Industry         string   `json:"industry,omitempty"`
	Role             string   `json:"role,omitempty"`
	Experience       string   `json:"experience,omitempty"`
	Goal             string   `json:"goal,omitempty"`
	TimeCommitment   string   `json:"timeCommitment,omitempty"`
	Motivations      []string `json:"motivations,omitempty"`
	ChallengeLevel   string   `json:"challengeLevel,omitempty"`
	FeedbackStyle    string   `json:"feedbackStyle,omitempty"`
	FocusAreas       []string `json:"focusAreas,omitempty"`
	SelectedTopic    string   `json:"selectedTopic,omitempty"`
	ProfileCompleted bool     `json:"profileCompleted"`
	CreatedAt        string   `json:"createdAt,omitempty"`
	UpdatedAt        string   `json:"updatedAt,omitempty"`
}

// Service is the profile CRUD surface.
type Service struct {
	store *store.Store
}

// NewService creates a profile service over the given store.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Create persists a new profile. The email unique index rejects
// duplicates at the storage layer.
func (s *Service) Create(ctx context.Context, p *Profile) (*Profile, error) {
	if p.Email == "" {
		return nil, fmt.Errorf("profile email is required")
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("user_%s", uuid.NewString())
	}
	if err := s.put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get loads a profile by id.
func (s *Service) Get(ctx context.Context, id string) (*Profile, error) {
	rec, err := s.store.Get(ctx, store.UserProfiles, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var p Profile
	if err := store.FromRecord(rec, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// ByEmail looks a profile up through the unique email index.
func (s *Service) ByEmail(ctx context.Context, email string) (*Profile, error) {
	recs, err := s.store.QueryItems(ctx, store.UserProfiles, store.Query{
		Index: "email",
		Range: &store.Range{Only: email},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, email)
	}
	var p Profile
	if err := store.FromRecord(recs[0], &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// Update overwrites an existing profile.
func (s *Service) Update(ctx context.Context, p *Profile) error {
	if _, err := s.Get(ctx, p.ID); err != nil {
		return err
	}
	return s.put(ctx, p)
}

func (s *Service) put(ctx context.Context, p *Profile) error {
	rec, err := store.ToRecord(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	stamped, err := s.store.Put(ctx, store.UserProfiles, rec)
	if err != nil {
		return err
	}
	return store.FromRecord(stamped, p)
}
