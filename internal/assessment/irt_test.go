package assessment

import (
	"math"
	"testing"
)

func TestUpdateEstimateWorkedExample(t *testing.T) {
	est := Estimate{Ability: 0, StandardError: 1.0}
	params := IRTParameters{Difficulty: 0, Discrimination: 1, Guessing: 0}

	got := UpdateEstimate(est, params, 1)

	if math.Abs(got.Ability-0.5) > 1e-9 {
		t.Errorf("ability = %v, want 0.5", got.Ability)
	}
	wantSE := math.Sqrt(1 - 0.25*0.25)
	if math.Abs(got.StandardError-wantSE) > 1e-9 {
		t.Errorf("standardError = %v, want %v", got.StandardError, wantSE)
	}
}

func TestUpdateEstimateMonotonicity(t *testing.T) {
	est := Estimate{Ability: 0, StandardError: 1.0}

	// Failing a very easy item must lower the estimate.
	easy := IRTParameters{Difficulty: -3, Discrimination: 1}
	if got := UpdateEstimate(est, easy, 0); got.Ability >= 0 {
		t.Errorf("ability after failing easy item = %v, want < 0", got.Ability)
	}

	// Passing a very hard item must raise it.
	hard := IRTParameters{Difficulty: 3, Discrimination: 1}
	if got := UpdateEstimate(est, hard, 1); got.Ability <= 0 {
		t.Errorf("ability after passing hard item = %v, want > 0", got.Ability)
	}
}

func TestUpdateEstimateErrorFloor(t *testing.T) {
	est := Estimate{Ability: 0, StandardError: 1.0}
	// Discrimination 4 at p=0.5 carries information 1, which would
	// collapse the error to zero without the floor.
	params := IRTParameters{Difficulty: 0, Discrimination: 4}
	got := UpdateEstimate(est, params, 1)
	if got.StandardError != minStandardError {
		t.Errorf("standardError = %v, want floor %v", got.StandardError, minStandardError)
	}
}

func TestProbabilityGuessingFloor(t *testing.T) {
	params := IRTParameters{Difficulty: 5, Discrimination: 2, Guessing: 0.25}
	p := Probability(-5, params)
	if p < 0.25 {
		t.Errorf("p = %v, want >= guessing 0.25", p)
	}
	if p > 0.26 {
		t.Errorf("p = %v, want near guessing floor for a hopeless item", p)
	}
}

func TestConfidenceOf(t *testing.T) {
	cases := []struct {
		se   float64
		want float64
	}{
		{1.0, 0},
		{0.2, 0.8},
		{0.1, 0.9},
		{1.5, 0}, // clamped
	}
	for _, c := range cases {
		if got := ConfidenceOf(c.se); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("ConfidenceOf(%v) = %v, want %v", c.se, got, c.want)
		}
	}
}

func TestTScoreClamps(t *testing.T) {
	if got := TScore(0); got != 50 {
		t.Errorf("TScore(0) = %v, want 50", got)
	}
	if got := TScore(2); got != 70 {
		t.Errorf("TScore(2) = %v, want 70", got)
	}
	if got := TScore(-8); got != 0 {
		t.Errorf("TScore(-8) = %v, want clamp to 0", got)
	}
	if got := TScore(8); got != 100 {
		t.Errorf("TScore(8) = %v, want clamp to 100", got)
	}
}

func TestPercentileRank(t *testing.T) {
	if got := PercentileRank(0); math.Abs(got-50) > 1e-9 {
		t.Errorf("PercentileRank(0) = %v, want 50", got)
	}
	if got := PercentileRank(1.0); got <= 80 || got >= 90 {
		t.Errorf("PercentileRank(1) = %v, want around 84", got)
	}
	if lo, hi := PercentileRank(-1), PercentileRank(1); lo >= hi {
		t.Errorf("percentile not monotone: %v >= %v", lo, hi)
	}
}
