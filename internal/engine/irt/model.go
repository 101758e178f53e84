// Package irt implements the three-parameter logistic (3PL) item response
// model used by the adaptive engine: probability of a correct response,
// item information, and ability estimation from a response history.
package irt

import "math"

// Params are the 3PL item parameters: discrimination (A), difficulty (B),
// guessing floor (C).
type Params struct {
	A float64
	B float64
	C float64
}

// Response pairs an administered item's parameters with the observed outcome.
type Response struct {
	Params  Params
	Correct bool
}

// Probability is P(correct | theta) under the 3PL model:
// c + (1-c) / (1 + exp(-a(theta-b))).
func Probability(theta float64, p Params) float64 {
	return p.C + (1-p.C)/(1+math.Exp(-p.A*(theta-p.B)))
}

// Information is the 3PL item information function at theta.
func Information(theta float64, p Params) float64 {
	prob := Probability(theta, p)
	if prob <= 0 || prob >= 1 {
		return 0
	}
	q := 1 - prob
	num := (prob - p.C) * (prob - p.C)
	den := (1 - p.C) * (1 - p.C)
	if den == 0 {
		return 0
	}
	return p.A * p.A * (q / prob) * (num / den)
}

// TestInformation sums item information over a set of parameters.
func TestInformation(theta float64, params []Params) float64 {
	var total float64
	for _, p := range params {
		total += Information(theta, p)
	}
	return total
}

// StandardNormalCDF is Phi(x), used for ability percentiles.
func StandardNormalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
