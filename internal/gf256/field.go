// Package gf256 implements Reed-Solomon error correction over GF(2^8) with
// the primitive polynomial x^8 + x^5 + x^3 + x^2 + 1 (0x12D) and generator
// base 1, the field defined by ISO/IEC 16022 for Data Matrix ECC-200.
package gf256

// fieldSize is the number of elements in GF(2^8).
const fieldSize = 256

// primitive is the field's primitive polynomial, 0x12D.
const primitive = 0x12D

// generatorBase is the first consecutive root exponent of the generator
// polynomial. Data Matrix uses 1 (QR would use 0).
const generatorBase = 1

var (
	expTable [fieldSize]int
	logTable [fieldSize]int
)

func init() {
	x := 1
	for i := 0; i < fieldSize; i++ {
		expTable[i] = x
		x *= 2
		if x >= fieldSize {
			x ^= primitive
			x &= fieldSize - 1
		}
	}
	for i := 0; i < fieldSize-1; i++ {
		logTable[expTable[i]] = i
	}
}

// add is both addition and subtraction in GF(2^8).
func add(a, b int) int { return a ^ b }

// exp returns 2^a in the field.
func exp(a int) int { return expTable[a] }

// log returns log2(a) in the field. a must be non-zero.
func log(a int) int {
	if a == 0 {
		panic("gf256: log(0)")
	}
	return logTable[a]
}

// inverse returns the multiplicative inverse of a. a must be non-zero.
func inverse(a int) int {
	if a == 0 {
		panic("gf256: inverse(0)")
	}
	return expTable[fieldSize-logTable[a]-1]
}

// mul multiplies two field elements.
func mul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[(logTable[a]+logTable[b])%(fieldSize-1)]
}
