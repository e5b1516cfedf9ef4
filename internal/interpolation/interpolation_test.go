package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholders(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text string
		want []string
	}{
		{"Hi {name}", []string{"name"}},
		{"{a} and {b} and {a} again", []string{"a", "b"}},
		{"{first_name} {n2}", []string{"first_name", "n2"}},
		{"no tokens", nil},
		{"{not valid} {} {{x}}", []string{"x"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Placeholders(tt.text), tt.text)
		assert.Equal(t, tt.want != nil, HasPlaceholders(tt.text), tt.text)
	}
}

func TestFill(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Hi Ana, Ana!", Fill("Hi {name}, {name}!", map[string]string{"name": "Ana"}))
	assert.Equal(t, "Bonjour Ana {unknown}", Fill("Bonjour {name} {unknown}", map[string]string{"name": "Ana"}))
	assert.Equal(t, "plain", Fill("plain", map[string]string{"x": "y"}))
	assert.Equal(t, "{x}", Fill("{x}", nil))
}

func TestMissing(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"b"}, Missing("{a} {b}", map[string]string{"a": "1"}))
	assert.Nil(t, Missing("{a}", map[string]string{"a": "1"}))
}
