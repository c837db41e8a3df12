package assessment

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/growth90/internal/events"
	"github.com/abhisek/growth90/internal/store"
)

// Engine runs adaptive assessment sessions over an item bank. Sessions
// are persisted as single records, so a response append and its
// estimate update land atomically.
type Engine struct {
	store *store.Store
	bus   *events.Bus
	bank  *Bank
	now   func() time.Time
	newID func() string
}

// NewEngine creates an engine over the given store, bus, and bank.
func NewEngine(st *store.Store, bus *events.Bus, bank *Bank) *Engine {
	return &Engine{
		store: st,
		bus:   bus,
		bank:  bank,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock overrides the clock. Used in tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// CreateInput describes a new assessment session.
type CreateInput struct {
	UserID       string
	PathID       string
	Type         string
	Purpose      string
	Competencies []string
	Adaptive     *AdaptiveSettings // nil means DefaultAdaptiveSettings
	Context      Context
}

// CreateSession builds the initial question sequence and persists a new
// in-progress session. Items are filtered by competency and context,
// ordered by ascending difficulty, and interleaved so no competency
// receives two consecutive items. Emits assessment:created.
func (e *Engine) CreateSession(ctx context.Context, in CreateInput) (*Session, error) {
	if len(in.Competencies) == 0 {
		return nil, fmt.Errorf("assessment needs at least one target competency")
	}

	settings := DefaultAdaptiveSettings()
	if in.Adaptive != nil {
		settings = *in.Adaptive
	}

	now := e.now().UTC()
	s := &Session{
		ID:                  fmt.Sprintf("assessment_%s", e.newID()),
		UserID:              in.UserID,
		PathID:              in.PathID,
		Type:                in.Type,
		Purpose:             in.Purpose,
		TargetCompetencies:  in.Competencies,
		AdaptiveSettings:    settings,
		Questions:           e.initialSequence(in.Competencies, in.Context),
		Responses:           []Response{},
		CompetencyEstimates: make(map[string]Estimate, len(in.Competencies)),
		ConfidenceLevels:    make(map[string]float64, len(in.Competencies)),
		Status:              StatusInProgress,
		StartTime:           now.Format(time.RFC3339),
	}
	for _, c := range in.Competencies {
		s.CompetencyEstimates[c] = Estimate{
			Ability:       0,
			StandardError: initialStandardError,
			LastUpdated:   now.Format(time.RFC3339),
		}
		s.ConfidenceLevels[c] = 0
	}

	if err := e.save(ctx, s); err != nil {
		return nil, err
	}
	e.emit(events.AssessmentCreated, s)
	return s, nil
}

// initialSequence orders each competency's items by ascending
// difficulty, then interleaves competencies round-robin.
func (e *Engine) initialSequence(competencies []string, rctx Context) []string {
	perComp := make([][]Item, 0, len(competencies))
	for _, c := range competencies {
		items := e.bank.ForCompetency(c, rctx)
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].IRT.Difficulty < items[j].IRT.Difficulty
		})
		perComp = append(perComp, items)
	}

	var seq []string
	for round := 0; ; round++ {
		added := false
		for _, items := range perComp {
			if round < len(items) {
				seq = append(seq, items[round].ID)
				added = true
			}
		}
		if !added {
			return seq
		}
	}
}

// GetSession loads a session by id.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	rec, err := e.store.Get(ctx, store.Assessments, sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	var s Session
	if err := store.FromRecord(rec, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// NextQuestion returns the item to deliver next, or done=true after
// triggering finalization when the stopping rule holds.
func (e *Engine) NextQuestion(ctx context.Context, sessionID string) (*Item, bool, error) {
	s, err := e.GetSession(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if s.Status == StatusCompleted {
		return nil, true, nil
	}
	if s.Status != StatusInProgress {
		return nil, false, fmt.Errorf("%w: status %q", ErrNotActive, s.Status)
	}

	if e.terminated(s) {
		if err := e.finalize(ctx, s); err != nil {
			return nil, false, err
		}
		e.emit(events.AssessmentCompleted, s.Result)
		return nil, true, nil
	}

	it, ok := e.bank.Item(s.Questions[s.CurrentQuestionIndex])
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownItem, s.Questions[s.CurrentQuestionIndex])
	}

	s.LastDeliveredAt = e.now().UTC().Format(time.RFC3339)
	if err := e.save(ctx, s); err != nil {
		return nil, false, err
	}
	return &it, false, nil
}

// SubmitResponse validates and normalizes a response, applies the
// ability update, advances the sequence, and retargets the remaining
// items toward the least-confident open competency. The response and
// the estimate update are written in one record put. Emits
// assessment:response-processed, and assessment:completed when the
// stopping rule fires.
func (e *Engine) SubmitResponse(ctx context.Context, sessionID, questionID string, raw any) (*Session, error) {
	s, err := e.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusInProgress {
		return nil, fmt.Errorf("%w: status %q", ErrNotActive, s.Status)
	}

	it, ok := e.bank.Item(questionID)
	if !ok || !contains(s.Questions, questionID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, questionID)
	}
	for _, r := range s.Responses {
		if r.QuestionID == questionID {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyAnswered, questionID)
		}
	}

	normalized, err := normalize(it, raw)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	resp := Response{
		QuestionID: questionID,
		Raw:        raw,
		Normalized: normalized,
		Timestamp:  now.Format(time.RFC3339),
	}
	if s.LastDeliveredAt != "" {
		if delivered, perr := time.Parse(time.RFC3339, s.LastDeliveredAt); perr == nil {
			resp.ResponseTime = now.Sub(delivered).Milliseconds()
		}
	}

	est := UpdateEstimate(s.CompetencyEstimates[it.Competency], it.IRT, normalized)
	est.LastUpdated = now.Format(time.RFC3339)
	s.CompetencyEstimates[it.Competency] = est
	s.ConfidenceLevels[it.Competency] = ConfidenceOf(est.StandardError)

	s.Responses = append(s.Responses, resp)
	s.CurrentQuestionIndex++
	e.retarget(s)

	done := e.terminated(s)
	if done {
		if err := e.finalize(ctx, s); err != nil {
			return nil, err
		}
	} else if err := e.save(ctx, s); err != nil {
		return nil, err
	}

	e.emit(events.AssessmentResponseProcessed, ResponseProcessed{
		SessionID:  s.ID,
		QuestionID: questionID,
		Competency: it.Competency,
		Normalized: normalized,
		Confidence: s.ConfidenceLevels[it.Competency],
	})
	if done {
		e.emit(events.AssessmentCompleted, s.Result)
	}
	return s, nil
}

// retarget swaps into the next slot the undelivered item whose
// difficulty is closest to the current ability of the least-confident
// still-open competency.
func (e *Engine) retarget(s *Session) {
	idx := s.CurrentQuestionIndex
	if idx >= len(s.Questions) {
		return
	}

	asked := e.askedCounts(s)
	best := -1
	var bestDist float64
	for i := idx; i < len(s.Questions); i++ {
		it, ok := e.bank.Item(s.Questions[i])
		if !ok {
			continue
		}
		conf := s.ConfidenceLevels[it.Competency]
		if conf >= s.AdaptiveSettings.ConfidenceThreshold && asked[it.Competency] >= s.AdaptiveSettings.MinQuestions {
			continue
		}
		target := s.CompetencyEstimates[it.Competency]
		// Less confident competencies sort first, difficulty distance
		// breaks ties.
		dist := conf*10 + math.Abs(it.IRT.Difficulty-target.Ability)
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best >= 0 {
		s.Questions[idx], s.Questions[best] = s.Questions[best], s.Questions[idx]
	}
}

func (e *Engine) askedCounts(s *Session) map[string]int {
	counts := make(map[string]int)
	for _, r := range s.Responses {
		if it, ok := e.bank.Item(r.QuestionID); ok {
			counts[it.Competency]++
		}
	}
	return counts
}

// terminated evaluates the stopping rule.
func (e *Engine) terminated(s *Session) bool {
	if s.CurrentQuestionIndex >= len(s.Questions) {
		return true
	}

	asked := e.askedCounts(s)
	for _, n := range asked {
		if n >= s.AdaptiveSettings.MaxQuestions {
			return true
		}
	}
	if !s.AdaptiveSettings.Adaptive {
		return false
	}
	for _, c := range s.TargetCompetencies {
		if s.ConfidenceLevels[c] < s.AdaptiveSettings.ConfidenceThreshold {
			return false
		}
		if asked[c] < s.AdaptiveSettings.MinQuestions {
			return false
		}
	}
	return true
}

// finalize derives the persisted result and completes the session. The
// session update and the result record are written in one transaction.
func (e *Engine) finalize(ctx context.Context, s *Session) error {
	now := e.now().UTC()
	asked := e.askedCounts(s)

	competencies := make(map[string]CompetencyScore, len(s.TargetCompetencies))
	for _, c := range s.TargetCompetencies {
		est := s.CompetencyEstimates[c]
		competencies[c] = CompetencyScore{
			StandardizedScore: TScore(est.Ability),
			PercentileRank:    PercentileRank(est.Ability),
			MeasurementError:  est.StandardError,
			QuestionsAsked:    asked[c],
		}
	}

	result := &Result{
		ID:                fmt.Sprintf("result_%s", e.newID()),
		AssessmentID:      s.ID,
		UserID:            s.UserID,
		CompletedAt:       now.Format(time.RFC3339),
		QuestionsAnswered: len(s.Responses),
		Scores: Scores{
			Competencies: competencies,
			Dimensions:   e.dimensionScores(competencies),
		},
		CompetencyProfile: e.competencyProfile(s),
		Reliability:       e.sessionReliability(s),
		Validity:          e.validity(s, asked),
	}
	result.Scores.Overall = overallScore(result.Scores.Dimensions)
	result.Analysis, result.Recommendations = summarize(competencies)
	if start, err := time.Parse(time.RFC3339, s.StartTime); err == nil {
		result.TotalTime = now.Sub(start).Milliseconds()
	}

	s.Status = StatusCompleted
	s.CompletedAt = now.Format(time.RFC3339)
	s.Result = result

	sessionRec, err := store.ToRecord(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	resultRec, err := store.ToRecord(map[string]any{
		"id":     result.ID,
		"userId": s.UserID,
		"pathId": s.PathID,
		"type":   "result",
		"result": result,
	})
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	err = e.store.Batch(ctx, []store.Op{
		{Type: store.OpPut, Store: store.Assessments, Record: sessionRec},
		{Type: store.OpPut, Store: store.Assessments, Record: resultRec},
	})
	return err
}

// dimensionScores averages member competency T-scores per dimension.
func (e *Engine) dimensionScores(competencies map[string]CompetencyScore) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for c, score := range competencies {
		dim := e.dimensionOf(c)
		sums[dim] += score.StandardizedScore
		counts[dim]++
	}
	out := make(map[string]float64, len(sums))
	for dim, sum := range sums {
		out[dim] = sum / float64(counts[dim])
	}
	return out
}

func (e *Engine) dimensionOf(competency string) string {
	for _, id := range e.bank.order {
		if it := e.bank.items[id]; it.Competency == competency && it.Dimension != "" {
			return it.Dimension
		}
	}
	return "technical"
}

// overallScore is the dimension-weight mean of dimension scores.
func overallScore(dimensions map[string]float64) float64 {
	var weighted, total float64
	for dim, score := range dimensions {
		w, ok := dimensionWeights[dim]
		if !ok {
			w = 1.0
		}
		weighted += w * score
		total += w
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// competencyProfile is the type-weighted mean normalized response per
// competency.
func (e *Engine) competencyProfile(s *Session) map[string]float64 {
	sums := make(map[string]float64)
	weights := make(map[string]float64)
	for _, r := range s.Responses {
		it, ok := e.bank.Item(r.QuestionID)
		if !ok {
			continue
		}
		w, ok := typeWeight[it.Type]
		if !ok {
			w = 1.0
		}
		sums[it.Competency] += w * r.Normalized
		weights[it.Competency] += w
	}
	out := make(map[string]float64, len(sums))
	for c, sum := range sums {
		out[c] = sum / weights[c]
	}
	return out
}

// sessionReliability is the mean trust coefficient of the answered
// item types.
func (e *Engine) sessionReliability(s *Session) float64 {
	if len(s.Responses) == 0 {
		return 0
	}
	var sum float64
	for _, r := range s.Responses {
		if it, ok := e.bank.Item(r.QuestionID); ok {
			sum += typeReliability[it.Type]
		}
	}
	return sum / float64(len(s.Responses))
}

func (e *Engine) validity(s *Session, asked map[string]int) string {
	for _, c := range s.TargetCompetencies {
		if asked[c] < s.AdaptiveSettings.MinQuestions {
			return "partial"
		}
	}
	return "acceptable"
}

// summarize produces the plain-language analysis and the improvement
// recommendations for below-average competencies.
func summarize(competencies map[string]CompetencyScore) (string, []string) {
	var strongest, weakest string
	var high, low float64 = -1, 101
	names := make([]string, 0, len(competencies))
	for c := range competencies {
		names = append(names, c)
	}
	sort.Strings(names)

	var recs []string
	for _, c := range names {
		score := competencies[c].StandardizedScore
		if score > high {
			strongest, high = c, score
		}
		if score < low {
			weakest, low = c, score
		}
		if score < 50 {
			recs = append(recs, fmt.Sprintf("Prioritize practice in %s (score %.0f)", c, score))
		}
	}
	if strongest == "" {
		return "", nil
	}
	analysis := fmt.Sprintf("Strongest competency: %s (%.0f). Most room to grow: %s (%.0f).",
		strongest, high, weakest, low)
	return analysis, recs
}

// normalize maps a raw response to [0,1] per item type, validating its
// shape first.
func normalize(it Item, raw any) (float64, error) {
	switch it.Type {
	case TypeRating:
		r, ok := asFloat(raw)
		if !ok {
			return 0, fmt.Errorf("%w: rating must be numeric", ErrInvalidResponse)
		}
		scale := Scale{Min: 1, Max: 5}
		if it.Scale != nil {
			scale = *it.Scale
			if scale.Min == 0 {
				scale.Min = 1
			}
		}
		if r < float64(scale.Min) || r > float64(scale.Max) {
			return 0, fmt.Errorf("%w: rating %v outside [%d,%d]", ErrInvalidResponse, raw, scale.Min, scale.Max)
		}
		// The scale minimum maps to 0 and the maximum to 1, so scales
		// that do not start at 1 still span the full range. For 1-based
		// scales this is (r-1)/(max-1).
		return (r - float64(scale.Min)) / float64(scale.Max-scale.Min), nil

	case TypeMultipleChoice:
		sel, ok := raw.(string)
		if !ok {
			return 0, fmt.Errorf("%w: selection must be an option id", ErrInvalidResponse)
		}
		valid := false
		for _, opt := range it.Options {
			if opt.ID == sel {
				valid = true
				break
			}
		}
		if !valid {
			return 0, fmt.Errorf("%w: option %q", ErrInvalidResponse, sel)
		}
		for _, correct := range it.CorrectOptionIDs {
			if correct == sel {
				return 1, nil
			}
		}
		return 0, nil

	case TypeScenario:
		sel, ok := raw.(string)
		if !ok {
			return 0, fmt.Errorf("%w: selection must be a scenario id", ErrInvalidResponse)
		}
		score, ok := it.ScoringRule[sel]
		if !ok {
			return 0, fmt.Errorf("%w: scenario %q", ErrInvalidResponse, sel)
		}
		return score, nil

	default:
		// Free-form types arrive pre-scored.
		strength, ok := asFloat(raw)
		if !ok || strength < 0 || strength > 1 {
			return 0, fmt.Errorf("%w: pre-scored strength must be in [0,1]", ErrInvalidResponse)
		}
		return strength, nil
	}
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (e *Engine) save(ctx context.Context, s *Session) error {
	rec, err := store.ToRecord(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = e.store.Put(ctx, store.Assessments, rec)
	return err
}

func (e *Engine) emit(name string, payload any) {
	if e.bus != nil {
		e.bus.Emit(name, payload)
	}
}
