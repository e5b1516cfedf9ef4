package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Skidy89/simple-language-loader/internal/loader"
	"github.com/Skidy89/simple-language-loader/internal/parser"
)

func sampleTable() loader.Table {
	return loader.Table{
		"en": parser.Parse("hello = \"hello <world>\"\nitems = [\n\"a\",\n\"b\",\n]\n"),
	}
}

func TestEncodeJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, sampleTable().Decoded()))
	assert.JSONEq(t, `{"en":{"hello":"hello <world>","items":["a","b"]}}`, buf.String())
	assert.Contains(t, buf.String(), "<world>")
}

func TestEncodeYAML(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "YAML", Resource(sampleTable()["en"])))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, map[string]any{
		"hello": "hello <world>",
		"items": []any{"a", "b"},
	}, got)
}

func TestEncodeUnknownFormat(t *testing.T) {
	t.Parallel()
	err := Encode(&bytes.Buffer{}, "toml", nil)
	require.ErrorIs(t, err, ErrUnknownFormat)
}
