package gf256

import "errors"

// ErrUncorrectable reports that a codeword block contains more errors than
// the code can correct. No partial correction is applied.
var ErrUncorrectable = errors.New("gf256: uncorrectable data")

// Decode corrects up to numEC/2 codeword errors in received in-place and
// returns the number of errors corrected. numEC is the count of
// error-correction codewords at the end of the slice. If the errors exceed
// the correction capacity, received is left unspecified and
// ErrUncorrectable is returned.
func Decode(received []int, numEC int) (int, error) {
	p := newPoly(received)
	syndromes := make([]int, numEC)
	noError := true
	for i := 0; i < numEC; i++ {
		eval := p.evaluateAt(exp(i + generatorBase))
		syndromes[numEC-1-i] = eval
		if eval != 0 {
			noError = false
		}
	}
	if noError {
		return 0, nil
	}

	sigma, omega, err := runEuclidean(monomial(numEC, 1), newPoly(syndromes), numEC)
	if err != nil {
		return 0, err
	}
	locations, err := errorLocations(sigma)
	if err != nil {
		return 0, err
	}
	magnitudes := errorMagnitudes(omega, locations)
	for i, loc := range locations {
		position := len(received) - 1 - log(loc)
		if position < 0 {
			return 0, ErrUncorrectable
		}
		received[position] = add(received[position], magnitudes[i])
	}
	return len(locations), nil
}

// runEuclidean runs the extended Euclidean algorithm to find the error
// locator polynomial sigma and the error evaluator polynomial omega.
func runEuclidean(a, b *poly, r int) (sigma, omega *poly, err error) {
	if a.degree() < b.degree() {
		a, b = b, a
	}

	rLast, rCur := a, b
	tLast, tCur := polyZero, polyOne

	for 2*rCur.degree() >= r {
		rLastLast, tLastLast := rLast, tLast
		rLast, tLast = rCur, tCur

		if rLast.isZero() {
			return nil, nil, ErrUncorrectable
		}
		rCur = rLastLast
		q := polyZero
		inverseLeading := inverse(rLast.coefficient(rLast.degree()))
		for rCur.degree() >= rLast.degree() && !rCur.isZero() {
			degreeDiff := rCur.degree() - rLast.degree()
			scale := mul(rCur.coefficient(rCur.degree()), inverseLeading)
			q = q.addPoly(monomial(degreeDiff, scale))
			rCur = rCur.addPoly(rLast.mulMonomial(degreeDiff, scale))
		}
		tCur = q.mulPoly(tLast).addPoly(tLastLast)

		if rCur.degree() >= rLast.degree() {
			return nil, nil, ErrUncorrectable
		}
	}

	sigmaAtZero := tCur.coefficient(0)
	if sigmaAtZero == 0 {
		return nil, nil, ErrUncorrectable
	}
	inv := inverse(sigmaAtZero)
	return tCur.mulScalar(inv), rCur.mulScalar(inv), nil
}

// errorLocations finds the roots of the error locator polynomial by Chien
// search and returns their inverses (the error location field elements).
func errorLocations(locator *poly) ([]int, error) {
	numErrors := locator.degree()
	if numErrors == 1 {
		return []int{locator.coefficient(1)}, nil
	}
	result := make([]int, 0, numErrors)
	for i := 1; i < fieldSize && len(result) < numErrors; i++ {
		if locator.evaluateAt(i) == 0 {
			result = append(result, inverse(i))
		}
	}
	if len(result) != numErrors {
		return nil, ErrUncorrectable
	}
	return result, nil
}

// errorMagnitudes computes the error values at the given locations using the
// Forney algorithm.
func errorMagnitudes(evaluator *poly, locations []int) []int {
	s := len(locations)
	result := make([]int, s)
	for i := 0; i < s; i++ {
		xiInverse := inverse(locations[i])
		denominator := 1
		for j := 0; j < s; j++ {
			if i == j {
				continue
			}
			term := mul(locations[j], xiInverse)
			termPlus1 := term | 1
			if term&1 != 0 {
				termPlus1 = term &^ 1
			}
			denominator = mul(denominator, termPlus1)
		}
		result[i] = mul(evaluator.evaluateAt(xiInverse), inverse(denominator))
		// Generator base 1 requires an extra division by the location.
		result[i] = mul(result[i], xiInverse)
	}
	return result
}
