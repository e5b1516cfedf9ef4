package parser

import (
	"errors"
	"fmt"
)

// DefaultExt is the file extension of lang files.
const DefaultExt = ".lang"

// ErrNotAFile is returned when a single-file load target is missing or is not a regular file.
var ErrNotAFile = errors.New("not a file")

// RawTable maps a key to its raw value as captured from a lang file.
// Quoted strings and arrays keep their quote and bracket markers; Decode
// removes them.
type RawTable map[string]string

// Clone returns a copy of the table.
func (t RawTable) Clone() RawTable {
	out := make(RawTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Decoded returns the decoded value of every key.
func (t RawTable) Decoded() map[string]Value {
	out := make(map[string]Value, len(t))
	for k, v := range t {
		out[k] = Decode(v)
	}
	return out
}

// Stats holds diagnostics collected while parsing a single file.
type Stats struct {
	// Lines is the number of physical lines read.
	Lines int
	// Entries is the number of keys committed (duplicates included).
	Entries int
	// Skipped counts non-blank, non-comment lines that were dropped.
	Skipped int
	// Unterminated is set when a continuation was still open at end of input.
	Unterminated bool
}

// IOError reports a read, write or listing failure on a path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot %s '%s': %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
