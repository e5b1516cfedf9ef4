package parser

import (
	"encoding/json"
	"strings"
)

// Kind identifies the shape of a decoded value.
type Kind int

const (
	KindScalar Kind = iota
	KindArray
)

func (k Kind) String() string {
	if k == KindArray {
		return "array"
	}
	return "scalar"
}

// Value is a decoded lang value: either a scalar string or an array of strings.
type Value struct {
	Kind   Kind
	Scalar string
	Array  []string
}

// ScalarValue returns a scalar Value.
func ScalarValue(s string) Value { return Value{Kind: KindScalar, Scalar: s} }

// ArrayValue returns an array Value.
func ArrayValue(items ...string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{Kind: KindArray, Array: items}
}

// IsArray reports whether v holds an array of strings.
func (v Value) IsArray() bool { return v.Kind == KindArray }

// String returns the scalar, or the array items joined by newlines.
func (v Value) String() string {
	if v.IsArray() {
		return strings.Join(v.Array, "\n")
	}
	return v.Scalar
}

// Strings returns the array items, or the scalar as a single item.
func (v Value) Strings() []string {
	if v.IsArray() {
		return v.Array
	}
	return []string{v.Scalar}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsArray() {
		return json.Marshal(v.Array)
	}
	return json.Marshal(v.Scalar)
}

func (v Value) MarshalYAML() (interface{}, error) {
	if v.IsArray() {
		return v.Array, nil
	}
	return v.Scalar, nil
}

// Decode turns a raw value into its logical shape. It is pure and never fails:
// anything that is neither an array literal nor a quoted string is returned as a scalar unchanged.
func Decode(raw string) Value {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return ArrayValue(decodeArray(trimmed[1 : len(trimmed)-1])...)
	}

	if isQuoted(trimmed) {
		return ScalarValue(unescape(trimmed[1 : len(trimmed)-1]))
	}

	return ScalarValue(raw)
}

func decodeArray(inner string) []string {
	items := []string{}
	for _, line := range strings.Split(inner, "\n") {
		line = strings.TrimSuffix(strings.TrimSpace(line), ",")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, quotedItems(line)...)
	}
	return items
}

// quotedItems splits a line of comma separated quoted strings. A line that is not
// made only of quoted strings yields nothing.
func quotedItems(line string) []string {
	var items []string
	rest := line
	for rest != "" {
		if rest[0] != '"' {
			return nil
		}
		end := closingQuote(rest)
		if end < 0 {
			return nil
		}
		items = append(items, rest[1:end])

		rest = strings.TrimSpace(rest[end+1:])
		if rest == "" {
			break
		}
		if rest[0] != ',' {
			return nil
		}
		rest = strings.TrimSpace(rest[1:])
	}
	return items
}

// closingQuote returns the index of the quote closing the string opened at s[0], or -1.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

func isQuoted(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)
}

var unescaper = strings.NewReplacer(`\n`, "\n", `\"`, `"`)

func unescape(s string) string {
	return unescaper.Replace(s)
}
