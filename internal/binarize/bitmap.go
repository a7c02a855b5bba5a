package binarize

import (
	"math/bits"
	"strings"
)

// Bitmap is a 2D matrix of bits with one bit per pixel or module.
// x is the column and y is the row; the origin is the top-left corner.
// Set bits represent dark (foreground) samples.
type Bitmap struct {
	width   int
	height  int
	rowSize int
	data    []uint32
}

// NewBitmap creates an empty Bitmap with the given dimensions.
func NewBitmap(width, height int) *Bitmap {
	if width < 1 || height < 1 {
		panic("binarize: bitmap dimensions must be positive")
	}
	rowSize := (width + 31) / 32
	return &Bitmap{
		width:   width,
		height:  height,
		rowSize: rowSize,
		data:    make([]uint32, rowSize*height),
	}
}

// Width returns the bitmap width in bits.
func (b *Bitmap) Width() int { return b.width }

// Height returns the bitmap height in bits.
func (b *Bitmap) Height() int { return b.height }

// Get reports whether the bit at (x, y) is set. Out-of-bounds coordinates
// return false (light), so sampling never fails; only locating and decoding
// can.
func (b *Bitmap) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return false
	}
	return (b.data[y*b.rowSize+x/32]>>uint(x&0x1f))&1 != 0
}

// Set sets the bit at (x, y). Out-of-bounds coordinates are ignored.
func (b *Bitmap) Set(x, y int) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	b.data[y*b.rowSize+x/32] |= 1 << uint(x&0x1f)
}

// Unset clears the bit at (x, y). Out-of-bounds coordinates are ignored.
func (b *Bitmap) Unset(x, y int) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	b.data[y*b.rowSize+x/32] &^= 1 << uint(x&0x1f)
}

// Flip inverts the bit at (x, y).
func (b *Bitmap) Flip(x, y int) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	b.data[y*b.rowSize+x/32] ^= 1 << uint(x&0x1f)
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	d := make([]uint32, len(b.data))
	copy(d, b.data)
	return &Bitmap{width: b.width, height: b.height, rowSize: b.rowSize, data: d}
}

// TopLeftOnBit returns the coordinates of the first set bit in row-major
// order, or ok=false if no bit is set.
func (b *Bitmap) TopLeftOnBit() (x, y int, ok bool) {
	offset := 0
	for offset < len(b.data) && b.data[offset] == 0 {
		offset++
	}
	if offset == len(b.data) {
		return 0, 0, false
	}
	y = offset / b.rowSize
	x = (offset%b.rowSize)*32 + bits.TrailingZeros32(b.data[offset])
	return x, y, true
}

// BottomRightOnBit returns the coordinates of the last set bit in row-major
// order, or ok=false if no bit is set.
func (b *Bitmap) BottomRightOnBit() (x, y int, ok bool) {
	offset := len(b.data) - 1
	for offset >= 0 && b.data[offset] == 0 {
		offset--
	}
	if offset < 0 {
		return 0, 0, false
	}
	y = offset / b.rowSize
	x = (offset%b.rowSize)*32 + 31 - bits.LeadingZeros32(b.data[offset])
	return x, y, true
}

// Equals reports whether two bitmaps have identical dimensions and contents.
func (b *Bitmap) Equals(other *Bitmap) bool {
	if b.width != other.width || b.height != other.height {
		return false
	}
	for i := range b.data {
		if b.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// String renders the bitmap using "##" for dark and "  " for light modules.
func (b *Bitmap) String() string {
	var sb strings.Builder
	sb.Grow(b.height * (2*b.width + 1))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.Get(x, y) {
				sb.WriteString("##")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseBitmap builds a Bitmap from a multi-line string where dark modules are
// marked with setChar and everything else is light. Rows are separated by
// newlines; all rows must have equal length. Intended for tests.
func ParseBitmap(repr string, setChar byte) *Bitmap {
	lines := strings.Split(strings.Trim(repr, "\n"), "\n")
	height := len(lines)
	width := len(lines[0])
	bm := NewBitmap(width, height)
	for y, line := range lines {
		for x := 0; x < len(line) && x < width; x++ {
			if line[x] == setChar {
				bm.Set(x, y)
			}
		}
	}
	return bm
}
