// Package calibration re-estimates 3PL item parameters from aggregated
// historical outcomes. Results are proposals: live pool parameters are only
// changed by an explicit approval step.
package calibration

import (
	"math"
	"sort"

	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/engine/irt"
)

// MinSampleSize is the smallest outcome count a calibration will run on.
const MinSampleSize = 30

// Outcome is one historical administration: the responder's ability estimate
// at the time and whether they answered correctly.
type Outcome struct {
	Ability float64
	Correct bool
}

type FitStatistics struct {
	PointBiserial float64 `json:"point_biserial"`
	ChiSquare     float64 `json:"chi_square"`
	Groups        int     `json:"groups"`
}

type Result struct {
	Difficulty     float64
	Discrimination float64
	Guessing       float64
	Status         domain.CalibrationStatus
	SampleSize     int
	Fit            FitStatistics
}

// Calibrate fits 3PL parameters by method of moments over ability terciles:
// the low tercile's correct rate bounds the guessing floor, the logit slope
// between terciles gives discrimination, and difficulty is solved from the
// middle tercile. Below MinSampleSize no parameters are produced.
func Calibrate(outcomes []Outcome) Result {
	n := len(outcomes)
	if n < MinSampleSize {
		return Result{Status: domain.CalibrationInsufficientData, SampleSize: n}
	}

	sorted := make([]Outcome, n)
	copy(sorted, outcomes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ability < sorted[j].Ability })

	low := sorted[:n/3]
	mid := sorted[n/3 : 2*n/3]
	high := sorted[2*n/3:]

	pLow, thetaLow := groupStats(low)
	pMid, thetaMid := groupStats(mid)
	pHigh, thetaHigh := groupStats(high)

	c := clamp(pLow, 0, domain.MaxGuessing-0.01)

	a := 1.0
	if spread := thetaHigh - thetaMid; spread > 1e-6 {
		a = (logit(corrected(pHigh, c)) - logit(corrected(pMid, c))) / spread
	}
	a = clamp(a, domain.MinDiscrimination, domain.MaxDiscrimination)

	b := thetaMid - logit(corrected(pMid, c))/a
	b = clamp(b, domain.MinDifficulty, domain.MaxDifficulty)

	params := irt.Params{A: a, B: b, C: c}
	return Result{
		Difficulty:     b,
		Discrimination: a,
		Guessing:       c,
		Status:         domain.CalibrationCalibrated,
		SampleSize:     n,
		Fit: FitStatistics{
			PointBiserial: pointBiserial(sorted),
			ChiSquare: chiSquare(params, []group{
				{p: pLow, theta: thetaLow, n: len(low)},
				{p: pMid, theta: thetaMid, n: len(mid)},
				{p: pHigh, theta: thetaHigh, n: len(high)},
			}),
			Groups: 3,
		},
	}
}

type group struct {
	p     float64
	theta float64
	n     int
}

func groupStats(outcomes []Outcome) (correctRate, meanAbility float64) {
	if len(outcomes) == 0 {
		return 0, 0
	}
	var correct int
	var sum float64
	for _, o := range outcomes {
		if o.Correct {
			correct++
		}
		sum += o.Ability
	}
	return float64(correct) / float64(len(outcomes)), sum / float64(len(outcomes))
}

func corrected(p, c float64) float64 {
	if c >= 1 {
		return p
	}
	return clamp((p-c)/(1-c), 0.02, 0.98)
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

func pointBiserial(outcomes []Outcome) float64 {
	n := float64(len(outcomes))
	var mean, meanCorrect float64
	var correct int
	for _, o := range outcomes {
		mean += o.Ability
		if o.Correct {
			meanCorrect += o.Ability
			correct++
		}
	}
	mean /= n
	p := float64(correct) / n
	if correct == 0 || correct == len(outcomes) {
		return 0
	}
	meanCorrect /= float64(correct)

	var variance float64
	for _, o := range outcomes {
		d := o.Ability - mean
		variance += d * d
	}
	sd := math.Sqrt(variance / n)
	if sd == 0 {
		return 0
	}
	return (meanCorrect - mean) / sd * math.Sqrt(p/(1-p))
}

func chiSquare(params irt.Params, groups []group) float64 {
	var total float64
	for _, g := range groups {
		if g.n == 0 {
			continue
		}
		expected := irt.Probability(g.theta, params)
		expected = clamp(expected, 0.01, 0.99)
		observed := g.p
		nf := float64(g.n)
		total += nf * (observed - expected) * (observed - expected) / (expected * (1 - expected))
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
