package assessment

import "math"

// Estimate bounds.
const (
	initialStandardError = 1.0
	minStandardError     = 0.1
)

// Dimension weights used for the overall score.
var dimensionWeights = map[string]float64{
	"technical":  1.0,
	"behavioral": 1.2,
	"leadership": 1.3,
	"cultural":   1.1,
}

// typeReliability is the trust coefficient per item type. It scales the
// session-level reliability figure.
var typeReliability = map[string]float64{
	TypeRating:         0.70,
	TypeMultipleChoice: 0.90,
	TypeScenario:       0.85,
	TypeBehavioral:     0.75,
	TypePractical:      0.95,
	TypePeerEval:       0.80,
}

// typeWeight scales an item's contribution to the competency profile.
var typeWeight = map[string]float64{
	TypeRating:         0.8,
	TypeMultipleChoice: 1.0,
	TypeScenario:       1.1,
	TypeBehavioral:     0.9,
	TypePractical:      1.2,
	TypePeerEval:       0.85,
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Probability is the three-parameter logistic response function:
// p = g + (1-g) * sigmoid(a * (ability - b)).
func Probability(ability float64, p IRTParameters) float64 {
	return p.Guessing + (1-p.Guessing)*sigmoid(p.Discrimination*(ability-p.Difficulty))
}

// UpdateEstimate applies one response to an estimate. The ability moves
// toward the observation in proportion to the remaining uncertainty; the
// standard error shrinks by the item's information and never drops
// below minStandardError.
func UpdateEstimate(est Estimate, p IRTParameters, normalized float64) Estimate {
	prob := Probability(est.Ability, p)
	info := p.Discrimination * prob * (1 - prob)

	est.Ability += est.StandardError * (normalized - prob)
	est.StandardError = math.Max(minStandardError, est.StandardError*math.Sqrt(1-info*info))
	return est
}

// ConfidenceOf maps a standard error to the [0,1] stopping scale.
func ConfidenceOf(standardError float64) float64 {
	return clamp01(1 - standardError/initialStandardError)
}

// TScore is the z-to-T transform clamped to the reporting range.
func TScore(ability float64) float64 {
	return clamp(50+10*ability, 0, 100)
}

// PercentileRank is the standard-normal CDF of the ability estimate,
// expressed as a percentage.
func PercentileRank(ability float64) float64 {
	return 100 * 0.5 * (1 + math.Erf(ability/math.Sqrt2))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
