package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skidy89/simple-language-loader/internal/loader"
	"github.com/Skidy89/simple-language-loader/internal/parser"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	table := loader.Table{
		"en": parser.Parse("hi = \"Hi {name}\"\nbye = Bye\nlist = [\"a\"]\nonly_en = x\n"),
		"fr": parser.Parse("hi = \"Bonjour {nom}\"\nbye = Au revoir\nlist = pas une liste\nonly_en = x\n"),
		"de": parser.Parse("hi = \"Hallo {name}\"\nbye = Tschuess\nlist = [\"b\"]\nonly_en = x\nextra = y\n"),
		"es": parser.Parse("hi = \"Hola {name}\"\nlist = [\"c\"]\nonly_en = x\n"),
	}

	report, err := Check(table, "en")
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, "en", report.Base)
	assert.Equal(t, []Issue{
		{Resource: "de", Key: "extra", Kind: ExtraKey},
		{Resource: "es", Key: "bye", Kind: MissingKey},
		{Resource: "fr", Key: "hi", Kind: PlaceholderMismatch, Detail: "base has {name}, got {nom}"},
		{Resource: "fr", Key: "list", Kind: ShapeMismatch, Detail: "base is array, got scalar"},
	}, report.Issues)
	assert.Equal(t, map[string][]string{"es": {"bye"}}, report.Missing())
	assert.Equal(t, "es: missing bye", report.Issues[1].String())
}

func TestCheckDefaultBase(t *testing.T) {
	t.Parallel()

	table := loader.Table{
		"b": parser.RawTable{"k": "1"},
		"a": parser.RawTable{"k": "2"},
	}
	report, err := Check(table, "")
	require.NoError(t, err)
	assert.Equal(t, "a", report.Base)
	assert.True(t, report.OK())

	report, err = Check(loader.Table{}, "")
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestCheckUnknownBase(t *testing.T) {
	t.Parallel()

	_, err := Check(loader.Table{"en": parser.RawTable{}}, "zz")
	require.ErrorIs(t, err, ErrUnknownBase)
}
