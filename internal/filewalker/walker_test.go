package filewalker

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalk(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "en.lang"), "a = 1")
	writeFile(t, filepath.Join(dir, "fr.LANG"), "a = 2")
	writeFile(t, filepath.Join(dir, "notes.txt"), "a = 3")
	writeFile(t, filepath.Join(dir, ".lang"), "a = 4")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.lang"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested", "de.lang"), "a = 5")

	entries, err := NewWalker("").Walk(dir)
	require.NoError(t, err)

	var resources []string
	for _, e := range entries {
		resources = append(resources, e.Resource)
		assert.Equal(t, dir, filepath.Dir(e.Path))
	}
	sort.Strings(resources)
	assert.Equal(t, []string{"en", "fr"}, resources)
}

func TestWalkCustomExt(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "en.strings"), "a = 1")
	writeFile(t, filepath.Join(dir, "en.lang"), "a = 1")

	w := NewWalker("strings")
	assert.Equal(t, ".strings", w.Ext())

	entries, err := w.Walk(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "en", entries[0].Resource)
}

func TestWalkNotADirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	file := filepath.Join(dir, "en.lang")
	writeFile(t, file, "a = 1")

	_, err := NewWalker("").Walk(file)
	require.ErrorIs(t, err, ErrNotADirectory)
	assert.Contains(t, err.Error(), file)

	_, err = NewWalker("").Walk(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, ErrNotADirectory)
}
