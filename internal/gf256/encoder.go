package gf256

import "sync"

var (
	generatorMu     sync.Mutex
	generatorsCache = []*poly{polyOne}
)

// generator returns the generator polynomial of the given degree, building
// and caching intermediate generators as needed.
func generator(degree int) *poly {
	generatorMu.Lock()
	defer generatorMu.Unlock()
	if degree < len(generatorsCache) {
		return generatorsCache[degree]
	}
	last := generatorsCache[len(generatorsCache)-1]
	for d := len(generatorsCache); d <= degree; d++ {
		next := last.mulPoly(newPoly([]int{1, exp(d - 1 + generatorBase)}))
		generatorsCache = append(generatorsCache, next)
		last = next
	}
	return generatorsCache[degree]
}

// Encode appends numEC error-correction codewords to the data in toEncode.
// toEncode must have room for the data followed by numEC values; the data
// occupies the first len(toEncode)-numEC positions.
func Encode(toEncode []int, numEC int) {
	if numEC == 0 {
		panic("gf256: no error correction codewords requested")
	}
	dataLen := len(toEncode) - numEC
	if dataLen <= 0 {
		panic("gf256: no data codewords provided")
	}
	gen := generator(numEC)
	info := make([]int, dataLen)
	copy(info, toEncode[:dataLen])
	p := newPoly(info).mulMonomial(numEC, 1)
	_, remainder := p.divide(gen)
	coefficients := remainder.coefficients
	numZero := numEC - len(coefficients)
	for i := 0; i < numZero; i++ {
		toEncode[dataLen+i] = 0
	}
	copy(toEncode[dataLen+numZero:], coefficients)
}
