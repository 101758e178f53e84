package irt

import (
	"math"
	"testing"
)

func TestProbabilityAtDifficulty(t *testing.T) {
	t.Parallel()

	// At theta == b the logistic term is 1/2, so P = c + (1-c)/2.
	p := Probability(0, Params{A: 1.2, B: 0, C: 0.2})
	if math.Abs(p-0.6) > 1e-9 {
		t.Fatalf("unexpected probability: got=%v want=0.6", p)
	}
}

func TestProbabilityBounds(t *testing.T) {
	t.Parallel()

	params := Params{A: 2.5, B: 1.5, C: 0.25}
	for _, theta := range []float64{-4, -2, 0, 2, 4} {
		p := Probability(theta, params)
		if p < params.C || p > 1 {
			t.Fatalf("probability out of [c, 1] at theta=%v: got=%v", theta, p)
		}
	}
	if p := Probability(-10, params); math.Abs(p-params.C) > 1e-3 {
		t.Fatalf("probability should approach guessing floor: got=%v want~%v", p, params.C)
	}
	if p := Probability(10, params); math.Abs(p-1) > 1e-3 {
		t.Fatalf("probability should approach 1: got=%v", p)
	}
}

func TestProbabilityMonotoneInTheta(t *testing.T) {
	t.Parallel()

	params := Params{A: 1.0, B: 0.5, C: 0.1}
	prev := Probability(-4, params)
	for theta := -3.5; theta <= 4; theta += 0.5 {
		p := Probability(theta, params)
		if p <= prev {
			t.Fatalf("probability not increasing at theta=%v: %v <= %v", theta, p, prev)
		}
		prev = p
	}
}

func TestInformationPeaksNearDifficulty(t *testing.T) {
	t.Parallel()

	params := Params{A: 1.5, B: 1.0, C: 0}
	atB := Information(params.B, params)
	far := Information(params.B+3, params)
	if atB <= far {
		t.Fatalf("information should peak near b: at_b=%v far=%v", atB, far)
	}
	if atB <= 0 {
		t.Fatalf("information must be positive near b: got=%v", atB)
	}
}

func TestInformationScalesWithDiscrimination(t *testing.T) {
	t.Parallel()

	lo := Information(0, Params{A: 0.5, B: 0, C: 0})
	hi := Information(0, Params{A: 2.0, B: 0, C: 0})
	if hi <= lo {
		t.Fatalf("higher discrimination should carry more information: lo=%v hi=%v", lo, hi)
	}
}

func TestTestInformationSums(t *testing.T) {
	t.Parallel()

	params := []Params{
		{A: 1.0, B: 0, C: 0},
		{A: 1.2, B: 0.5, C: 0.1},
	}
	want := Information(0, params[0]) + Information(0, params[1])
	got := TestInformation(0, params)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("test information mismatch: got=%v want=%v", got, want)
	}
}

func TestStandardNormalCDF(t *testing.T) {
	t.Parallel()

	if got := StandardNormalCDF(0); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("Phi(0): got=%v want=0.5", got)
	}
	if got := StandardNormalCDF(1.96); math.Abs(got-0.975) > 1e-3 {
		t.Fatalf("Phi(1.96): got=%v want~0.975", got)
	}
	if got := StandardNormalCDF(-1.96); math.Abs(got-0.025) > 1e-3 {
		t.Fatalf("Phi(-1.96): got=%v want~0.025", got)
	}
}
