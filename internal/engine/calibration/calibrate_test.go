package calibration

import (
	"math"
	"math/rand"
	"testing"

	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/engine/irt"
)

func TestCalibrateInsufficientData(t *testing.T) {
	t.Parallel()

	outcomes := make([]Outcome, 10)
	for i := range outcomes {
		outcomes[i] = Outcome{Ability: float64(i) - 5, Correct: i%2 == 0}
	}

	res := Calibrate(outcomes)
	if res.Status != domain.CalibrationInsufficientData {
		t.Fatalf("status: got=%s want=%s", res.Status, domain.CalibrationInsufficientData)
	}
	if res.SampleSize != 10 {
		t.Fatalf("sample size: got=%d want=10", res.SampleSize)
	}
	if res.Difficulty != 0 || res.Discrimination != 0 || res.Guessing != 0 {
		t.Fatalf("no parameters expected below the sample floor: %+v", res)
	}
}

func TestCalibrateMinimumSampleBoundary(t *testing.T) {
	t.Parallel()

	outcomes := make([]Outcome, MinSampleSize)
	for i := range outcomes {
		theta := -2 + 4*float64(i)/float64(MinSampleSize-1)
		outcomes[i] = Outcome{Ability: theta, Correct: theta > 0}
	}
	res := Calibrate(outcomes)
	if res.Status != domain.CalibrationCalibrated {
		t.Fatalf("status at n=%d: got=%s want=%s", MinSampleSize, res.Status, domain.CalibrationCalibrated)
	}
}

func TestCalibrateParamsWithinRanges(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	outcomes := make([]Outcome, 200)
	for i := range outcomes {
		theta := rng.NormFloat64()
		outcomes[i] = Outcome{Ability: theta, Correct: rng.Float64() < 0.5}
	}

	res := Calibrate(outcomes)
	if res.Status != domain.CalibrationCalibrated {
		t.Fatalf("status: got=%s", res.Status)
	}
	if res.Difficulty < domain.MinDifficulty || res.Difficulty > domain.MaxDifficulty {
		t.Fatalf("difficulty out of range: %v", res.Difficulty)
	}
	if res.Discrimination < domain.MinDiscrimination || res.Discrimination > domain.MaxDiscrimination {
		t.Fatalf("discrimination out of range: %v", res.Discrimination)
	}
	if res.Guessing < domain.MinGuessing || res.Guessing >= domain.MaxGuessing {
		t.Fatalf("guessing out of range: %v", res.Guessing)
	}
}

func TestCalibrateRecoversSyntheticItem(t *testing.T) {
	t.Parallel()

	true3PL := irt.Params{A: 1.3, B: 0.4, C: 0.15}
	rng := rand.New(rand.NewSource(42))

	outcomes := make([]Outcome, 5000)
	for i := range outcomes {
		theta := rng.NormFloat64() * 1.5
		p := irt.Probability(theta, true3PL)
		outcomes[i] = Outcome{Ability: theta, Correct: rng.Float64() < p}
	}

	res := Calibrate(outcomes)
	if res.Status != domain.CalibrationCalibrated {
		t.Fatalf("status: got=%s", res.Status)
	}
	// Method-of-moments over terciles is coarse; only sanity tolerances.
	if math.Abs(res.Difficulty-true3PL.B) > 1.0 {
		t.Fatalf("difficulty far from truth: got=%v want~%v", res.Difficulty, true3PL.B)
	}
	if res.Discrimination < 0.5 || res.Discrimination > 2.5 {
		t.Fatalf("discrimination implausible: got=%v want~%v", res.Discrimination, true3PL.A)
	}
	if res.Fit.Groups != 3 {
		t.Fatalf("fit groups: got=%d want=3", res.Fit.Groups)
	}
	if res.Fit.PointBiserial <= 0 {
		t.Fatalf("a discriminating item must have positive point-biserial: got=%v", res.Fit.PointBiserial)
	}
}

func TestCalibrateHarderItemGetsHigherDifficulty(t *testing.T) {
	t.Parallel()

	gen := func(b float64, seed int64) Result {
		rng := rand.New(rand.NewSource(seed))
		params := irt.Params{A: 1.5, B: b, C: 0.1}
		outcomes := make([]Outcome, 3000)
		for i := range outcomes {
			theta := rng.NormFloat64() * 1.5
			outcomes[i] = Outcome{Ability: theta, Correct: rng.Float64() < irt.Probability(theta, params)}
		}
		return Calibrate(outcomes)
	}

	easy := gen(-1.0, 1)
	hard := gen(1.0, 2)
	if easy.Difficulty >= hard.Difficulty {
		t.Fatalf("difficulty ordering lost: easy=%v hard=%v", easy.Difficulty, hard.Difficulty)
	}
}
