package gf256

// poly is a polynomial with GF(2^8) coefficients, stored from the
// highest-degree term down. Instances are immutable.
type poly struct {
	coefficients []int
}

var (
	polyZero = &poly{coefficients: []int{0}}
	polyOne  = &poly{coefficients: []int{1}}
)

// newPoly creates a polynomial, stripping leading zero coefficients.
func newPoly(coefficients []int) *poly {
	if len(coefficients) == 0 {
		panic("gf256: empty coefficients")
	}
	if len(coefficients) > 1 && coefficients[0] == 0 {
		firstNonZero := 1
		for firstNonZero < len(coefficients) && coefficients[firstNonZero] == 0 {
			firstNonZero++
		}
		if firstNonZero == len(coefficients) {
			return polyZero
		}
		trimmed := make([]int, len(coefficients)-firstNonZero)
		copy(trimmed, coefficients[firstNonZero:])
		coefficients = trimmed
	}
	return &poly{coefficients: coefficients}
}

// monomial returns coefficient * x^degree.
func monomial(degree, coefficient int) *poly {
	if degree < 0 {
		panic("gf256: negative degree")
	}
	if coefficient == 0 {
		return polyZero
	}
	coefficients := make([]int, degree+1)
	coefficients[0] = coefficient
	return newPoly(coefficients)
}

func (p *poly) degree() int { return len(p.coefficients) - 1 }

func (p *poly) isZero() bool { return p.coefficients[0] == 0 }

// coefficient returns the coefficient of x^degree.
func (p *poly) coefficient(degree int) int {
	return p.coefficients[len(p.coefficients)-1-degree]
}

// evaluateAt evaluates the polynomial at a using Horner's method.
func (p *poly) evaluateAt(a int) int {
	if a == 0 {
		return p.coefficient(0)
	}
	if a == 1 {
		result := 0
		for _, c := range p.coefficients {
			result = add(result, c)
		}
		return result
	}
	result := p.coefficients[0]
	for i := 1; i < len(p.coefficients); i++ {
		result = add(mul(a, result), p.coefficients[i])
	}
	return result
}

func (p *poly) addPoly(other *poly) *poly {
	if p.isZero() {
		return other
	}
	if other.isZero() {
		return p
	}
	smaller, larger := p.coefficients, other.coefficients
	if len(smaller) > len(larger) {
		smaller, larger = larger, smaller
	}
	sum := make([]int, len(larger))
	diff := len(larger) - len(smaller)
	copy(sum, larger[:diff])
	for i := diff; i < len(larger); i++ {
		sum[i] = add(smaller[i-diff], larger[i])
	}
	return newPoly(sum)
}

func (p *poly) mulPoly(other *poly) *poly {
	if p.isZero() || other.isZero() {
		return polyZero
	}
	product := make([]int, len(p.coefficients)+len(other.coefficients)-1)
	for i, ac := range p.coefficients {
		for j, bc := range other.coefficients {
			product[i+j] = add(product[i+j], mul(ac, bc))
		}
	}
	return newPoly(product)
}

func (p *poly) mulScalar(scalar int) *poly {
	if scalar == 0 {
		return polyZero
	}
	if scalar == 1 {
		return p
	}
	product := make([]int, len(p.coefficients))
	for i, c := range p.coefficients {
		product[i] = mul(c, scalar)
	}
	return newPoly(product)
}

func (p *poly) mulMonomial(degree, coefficient int) *poly {
	if degree < 0 {
		panic("gf256: negative degree")
	}
	if coefficient == 0 {
		return polyZero
	}
	product := make([]int, len(p.coefficients)+degree)
	for i, c := range p.coefficients {
		product[i] = mul(c, coefficient)
	}
	return newPoly(product)
}

// divide returns the quotient and remainder of p / other.
func (p *poly) divide(other *poly) (quotient, remainder *poly) {
	if other.isZero() {
		panic("gf256: divide by zero polynomial")
	}
	quotient = polyZero
	remainder = p

	inverseLeading := inverse(other.coefficient(other.degree()))
	for remainder.degree() >= other.degree() && !remainder.isZero() {
		degreeDiff := remainder.degree() - other.degree()
		scale := mul(remainder.coefficient(remainder.degree()), inverseLeading)
		quotient = quotient.addPoly(monomial(degreeDiff, scale))
		remainder = remainder.addPoly(other.mulMonomial(degreeDiff, scale))
	}
	return quotient, remainder
}
