package irt

import "math"

const (
	// ThetaMin and ThetaMax bound every reported ability estimate.
	ThetaMin = -4.0
	ThetaMax = 4.0

	newtonTolerance = 1e-4
	newtonMaxIter   = 50
	eapGridStep     = 0.01
	priorMean       = 0.0
	priorSD         = 1.0
)

// Estimate returns (theta, se) for a response history. Newton-Raphson maximum
// likelihood is the primary method; degenerate histories (all correct or all
// incorrect) have no finite MLE and fall back to an EAP estimate under a
// standard normal prior. The result depends only on the response multiset,
// not on administration order.
func Estimate(responses []Response) (theta, se float64) {
	if len(responses) == 0 {
		return priorMean, priorSD
	}

	if degenerate(responses) {
		theta = estimateEAP(responses)
	} else {
		var ok bool
		theta, ok = estimateNewton(responses)
		if !ok {
			theta = estimateEAP(responses)
		}
	}
	theta = clampTheta(theta)
	return theta, standardError(theta, responses)
}

// StandardError is 1/sqrt(total Fisher information) at theta.
func StandardError(theta float64, responses []Response) float64 {
	return standardError(theta, responses)
}

func standardError(theta float64, responses []Response) float64 {
	var info float64
	for _, r := range responses {
		info += Information(theta, r.Params)
	}
	if info <= 0 {
		return math.Inf(1)
	}
	return 1 / math.Sqrt(info)
}

func degenerate(responses []Response) bool {
	first := responses[0].Correct
	for _, r := range responses[1:] {
		if r.Correct != first {
			return false
		}
	}
	return true
}

// estimateNewton maximizes the log-likelihood by Newton-Raphson iteration on
// theta. Returns ok=false when the iteration fails to converge or the second
// derivative degenerates; the caller recovers with EAP.
func estimateNewton(responses []Response) (float64, bool) {
	theta := priorMean
	for iter := 0; iter < newtonMaxIter; iter++ {
		d1, d2 := logLikelihoodDerivs(theta, responses)
		if d2 >= 0 || math.Abs(d2) < 1e-12 {
			return 0, false
		}
		next := theta - d1/d2
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return 0, false
		}
		if next > ThetaMax+1 {
			next = ThetaMax + 1
		}
		if next < ThetaMin-1 {
			next = ThetaMin - 1
		}
		if math.Abs(next-theta) < newtonTolerance {
			return next, true
		}
		theta = next
	}
	return 0, false
}

// logLikelihoodDerivs returns the first and second derivatives of the 3PL
// log-likelihood at theta. Both are sums over items, which is what makes the
// estimate order-invariant.
func logLikelihoodDerivs(theta float64, responses []Response) (d1, d2 float64) {
	for _, r := range responses {
		p := Probability(theta, r.Params)
		if p <= 1e-10 {
			p = 1e-10
		}
		if p >= 1-1e-10 {
			p = 1 - 1e-10
		}
		q := 1 - p
		a := r.Params.A
		c := r.Params.C
		w := a * (p - c) / (p * (1 - c))
		if r.Correct {
			d1 += w * q
		} else {
			d1 -= w * p
		}
		// Fisher-scoring approximation of the second derivative.
		d2 -= Information(theta, r.Params)
	}
	return d1, d2
}

// estimateEAP is the expected a posteriori ability: the posterior mean over a
// fine grid with a N(priorMean, priorSD) prior.
func estimateEAP(responses []Response) float64 {
	var num, den float64
	for x := ThetaMin; x <= ThetaMax+eapGridStep/2; x += eapGridStep {
		w := normalPDF(x) * likelihood(x, responses)
		num += x * w
		den += w
	}
	if den == 0 {
		return priorMean
	}
	return num / den
}

func likelihood(theta float64, responses []Response) float64 {
	l := 1.0
	for _, r := range responses {
		p := Probability(theta, r.Params)
		if r.Correct {
			l *= p
		} else {
			l *= 1 - p
		}
	}
	return l
}

func normalPDF(x float64) float64 {
	z := (x - priorMean) / priorSD
	return math.Exp(-0.5*z*z) / (priorSD * math.Sqrt(2*math.Pi))
}

func clampTheta(theta float64) float64 {
	if theta < ThetaMin {
		return ThetaMin
	}
	if theta > ThetaMax {
		return ThetaMax
	}
	return theta
}
