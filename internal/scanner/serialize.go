package scanner

import "strings"

// emptyResult is the serialized form of "nothing found".
const emptyResult = "[]"

// Serialize renders detections as a JSON array of objects with a single
// "data" field. The payload is emitted byte for byte: backslash and double
// quote are escaped, bytes below 0x20 are replaced by '?', and everything
// from 0x20 up, DEL and high bytes included, passes through untouched. The
// output is byte-oriented on purpose; it is not guaranteed to be valid
// UTF-8.
func Serialize(detections []Detection) string {
	if len(detections) == 0 {
		return emptyResult
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, d := range detections {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"data":"`)
		writeEscaped(&b, d.Data)
		b.WriteString(`"}`)
	}
	b.WriteByte(']')
	return b.String()
}

func writeEscaped(b *strings.Builder, data []byte) {
	for _, c := range data {
		switch {
		case c == '\\' || c == '"':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20:
			b.WriteByte('?')
		default:
			b.WriteByte(c)
		}
	}
}
