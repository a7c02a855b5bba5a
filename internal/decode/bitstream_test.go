package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBitStream(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"ascii letters", []byte{66, 98}, "Aa"},
		{"digit pair", []byte{172}, "42"},
		{"digits then letter", []byte{142, 52}, "123"},
		{"pad terminates", []byte{66, 129, 70, 100}, "A"},
		{"upper shift", []byte{235, 66}, "Á"},
		{"fnc1 is gs", []byte{232, 66}, "\x1dA"},
		{"macro 05", []byte{236, 66}, "[)>\x1e05\x1dA"},
		{"macro 06", []byte{237}, "[)>\x1e06\x1d"},
		{"structured append skipped", []byte{233, 1, 2, 66}, "A"},
		{"c40 triplet", []byte{230, 89, 233, 254, 67}, "ABCB"},
		{"x12 triplet", []byte{238, 87, 171, 254}, "A*>"},
		{"edifact", []byte{240, 0, 16, 159}, "@AB"},
		{"edifact one trailing ascii", []byte{240, 66}, "A"},
		{"edifact two trailing ascii", []byte{240, 67, 66}, "BA"},
		{"edifact group then trailing ascii", []byte{240, 0, 16, 149, 66}, "@ABUA"},
		{"base 256", []byte{231, 46, 139, 85}, "Êþ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := decodeBitStream(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Text)
		})
	}
}

func TestDecodeBitStreamBytes(t *testing.T) {
	result, err := decodeBitStream([]byte{235, 66, 98})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC1, 'a'}, result.Bytes)
}

func TestDecodeBitStreamErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"zero codeword", []byte{0}},
		{"upper shift at end", []byte{235}},
		{"base 256 run past end", []byte{231, 49, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeBitStream(tt.data)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestDecodeC40Shifts(t *testing.T) {
	// Shift 1 then value 10 yields the raw control character 0x0A.
	// Triplet (0, 10, 3) -> "\nA"? No: shift-1 consumes the next value.
	// values: 0 (shift 1), 10 (LF), 3 (space).
	v := 0*1600 + 10*40 + 3 + 1
	data := []byte{230, byte(v / 256), byte(v % 256), 254}
	result, err := decodeBitStream(data)
	require.NoError(t, err)
	assert.Equal(t, "\n ", result.Text)

	// Shift 2 value 0 is '!'; trailing value 3 is a space.
	v = 1*1600 + 0*40 + 3 + 1
	data = []byte{230, byte(v / 256), byte(v % 256), 254}
	result, err = decodeBitStream(data)
	require.NoError(t, err)
	assert.Equal(t, "! ", result.Text)

	// Shift 3 maps to lower case in C40 mode.
	v = 2*1600 + 1*40 + 3 + 1
	data = []byte{230, byte(v / 256), byte(v % 256), 254}
	result, err = decodeBitStream(data)
	require.NoError(t, err)
	assert.Equal(t, "a ", result.Text)
}

func TestDecodeTextMode(t *testing.T) {
	// Text mode swaps the case of the basic set: value 14 is 'a'.
	v := 14*1600 + 15*40 + 16 + 1
	data := []byte{239, byte(v / 256), byte(v % 256), 254}
	result, err := decodeBitStream(data)
	require.NoError(t, err)
	assert.Equal(t, "abc", result.Text)
}

func TestUnrandomize255(t *testing.T) {
	// Masking then unmasking is the identity at any position.
	for pos := 1; pos < 300; pos++ {
		for _, v := range []int{0, 1, 127, 255} {
			pseudo := ((149 * pos) % 255) + 1
			masked := (v + pseudo) % 256
			assert.Equal(t, v, unrandomize255(masked, pos))
		}
	}
}
