// Package loader aggregates every lang file of a directory into a single table.
package loader

import (
	"context"
	"os"
	"sort"

	"github.com/Skidy89/simple-language-loader/internal/filewalker"
	"github.com/Skidy89/simple-language-loader/internal/parser"
	"github.com/Skidy89/simple-language-loader/internal/worker"

	"github.com/rs/zerolog/log"
)

// ErrNotADirectory is returned by Load when the path is not a directory.
var ErrNotADirectory = filewalker.ErrNotADirectory

// IOError reports a listing or read failure.
type IOError = parser.IOError

// Table maps a resource identifier (file stem) to the raw table parsed from that file.
type Table map[string]parser.RawTable

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for id, raw := range t {
		out[id] = raw.Clone()
	}
	return out
}

// Resources returns the resource identifiers in sorted order.
func (t Table) Resources() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Decoded returns every resource with its values decoded.
func (t Table) Decoded() map[string]map[string]parser.Value {
	out := make(map[string]map[string]parser.Value, len(t))
	for id, raw := range t {
		out[id] = raw.Decoded()
	}
	return out
}

// Report summarizes what an aggregation run skipped.
type Report struct {
	Files        int
	Resources    int
	SkippedFiles []string
	SkippedLines int
	// Unterminated lists the resources whose last value was still open at end of file.
	Unterminated []string
}

// Loader aggregates lang files concurrently.
type Loader struct {
	walker  *filewalker.Walker
	workers int
}

// New creates a Loader matching ext (empty for parser.DefaultExt) with the given
// worker count (non-positive for one worker per CPU).
func New(ext string, workers int) *Loader {
	return &Loader{
		walker:  filewalker.NewWalker(ext),
		workers: workers,
	}
}

// Load parses every lang file in dir. Unreadable files are skipped.
func (l *Loader) Load(ctx context.Context, dir string) (Table, error) {
	table, _, err := l.LoadWithReport(ctx, dir)
	return table, err
}

type parsed struct {
	table parser.RawTable
	stats parser.Stats
}

// LoadWithReport is Load plus a report of the skipped files and lines.
func (l *Loader) LoadWithReport(ctx context.Context, dir string) (Table, Report, error) {
	entries, err := l.walker.Walk(dir)
	if err != nil {
		return nil, Report{}, err
	}

	pool := worker.NewPool[filewalker.FileEntry, parsed](l.workers, func(_ context.Context, entry filewalker.FileEntry) (parsed, error) {
		data, err := os.ReadFile(entry.Path)
		if err != nil {
			return parsed{}, err
		}
		table, stats := parser.ParseBytes(data)
		return parsed{table: table, stats: stats}, nil
	})

	tasks, err := pool.Execute(ctx, entries)
	if err != nil {
		return nil, Report{}, err
	}

	table := make(Table, len(tasks))
	report := Report{Files: len(entries)}
	for _, task := range tasks {
		if task.Err != nil {
			log.Warn().Err(task.Err).Str("file", task.Input.Path).Msg("Skipping unreadable lang file")
			report.SkippedFiles = append(report.SkippedFiles, task.Input.Path)
			continue
		}
		table[task.Input.Resource] = task.Result.table
		report.SkippedLines += task.Result.stats.Skipped
		if task.Result.stats.Unterminated {
			report.Unterminated = append(report.Unterminated, task.Input.Resource)
		}
	}
	report.Resources = len(table)
	sort.Strings(report.SkippedFiles)
	sort.Strings(report.Unterminated)

	log.Debug().
		Str("dir", dir).
		Int("files", report.Files).
		Int("resources", report.Resources).
		Int("skipped_files", len(report.SkippedFiles)).
		Int("skipped_lines", report.SkippedLines).
		Msg("Aggregated lang files")

	return table, report, nil
}

// LoadFile parses a single lang file.
func LoadFile(path string) (parser.RawTable, error) {
	table, _, err := parser.ParseFile(path)
	return table, err
}
