package scanner

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestSerializeEmpty(t *testing.T) {
	assert.Equal(t, "[]", Serialize(nil))
	assert.Equal(t, "[]", Serialize([]Detection{}))
}

func TestSerialize(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"plain", []byte("hello"), `[{"data":"hello"}]`},
		{"quote", []byte(`say "hi"`), `[{"data":"say \"hi\""}]`},
		{"backslash", []byte(`a\b`), `[{"data":"a\\b"}]`},
		{"newline replaced", []byte("a\nb"), `[{"data":"a?b"}]`},
		{"gs replaced", []byte{0x1D}, `[{"data":"?"}]`},
		{"del passes through", []byte{0x7F}, "[{\"data\":\"\x7f\"}]"},
		{"space kept", []byte(" "), `[{"data":" "}]`},
		{"high bytes pass through", []byte{0x80, 0xFF}, "[{\"data\":\"\x80\xff\"}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Serialize([]Detection{{Data: tt.data}})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSerializeMultiple(t *testing.T) {
	got := Serialize([]Detection{{Data: []byte("one")}, {Data: []byte("two")}})
	assert.Equal(t, `[{"data":"one"},{"data":"two"}]`, got)
}

func TestSerializeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("output is framed and free of raw control bytes", prop.ForAll(
		func(data []byte) bool {
			out := Serialize([]Detection{{Data: data}})
			if !strings.HasPrefix(out, `[{"data":"`) || !strings.HasSuffix(out, `"}]`) {
				return false
			}
			body := out[len(`[{"data":"`) : len(out)-len(`"}]`)]
			for i := 0; i < len(body); i++ {
				c := body[i]
				if c < 0x20 {
					return false
				}
				// Any quote inside the body must be escaped.
				if c == '"' && (i == 0 || body[i-1] != '\\') {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("printable ascii without escapes round-trips verbatim", prop.ForAll(
		func(s string) bool {
			out := Serialize([]Detection{{Data: []byte(s)}})
			return out == `[{"data":"`+s+`"}]`
		},
		gen.RegexMatch(`[a-zA-Z0-9 .,;:!?+*/=()-]*`),
	))

	properties.TestingRun(t)
}
