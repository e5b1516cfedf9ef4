package filewalker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Skidy89/simple-language-loader/internal/parser"

	"github.com/rs/zerolog/log"
)

// ErrNotADirectory is returned when an aggregation target is not a directory.
var ErrNotADirectory = errors.New("not a directory")

// Walker lists the lang files of a directory.
type Walker struct {
	ext string
}

// NewWalker creates a Walker matching files with the given extension
// (with or without a leading dot). An empty extension selects parser.DefaultExt.
func NewWalker(ext string) *Walker {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		ext = parser.DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Walker{ext: ext}
}

// Ext returns the extension the walker matches.
func (w *Walker) Ext() string { return w.ext }

// FileEntry is a discovered lang file.
type FileEntry struct {
	// Path is the file path, joined onto the directory given to Walk.
	Path string
	// Resource is the file name without its extension (e.g. "en" for en.lang).
	Resource string
}

// Walk lists the lang files directly inside dir. Subdirectories are not visited;
// symlinks are listed as-is and fail later at read time if they are broken.
func (w *Walker) Walk(dir string) ([]FileEntry, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("path '%s' is %w", dir, ErrNotADirectory)
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &parser.IOError{Op: "list directory", Path: dir, Err: err}
	}

	var entries []FileEntry
	for _, de := range dirEntries {
		name := de.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, w.ext) || len(name) == len(ext) {
			continue
		}
		if de.IsDir() {
			continue
		}

		entries = append(entries, FileEntry{
			Path:     filepath.Join(dir, name),
			Resource: strings.TrimSuffix(name, ext),
		})
	}

	log.Debug().Int("count", len(entries)).Str("dir", dir).Str("ext", w.ext).Msg("Discovered lang files")
	return entries, nil
}
