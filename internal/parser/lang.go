package parser

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

type state int

const (
	stateNormal state = iota
	// stateValuePending follows a `key =` line with nothing after the '='.
	stateValuePending
	stateString
	stateArray
)

// machine holds the parser state. key and buf are only meaningful outside stateNormal.
type machine struct {
	state state
	key   string
	buf   strings.Builder
	table RawTable
	stats Stats
}

// Parse converts lang file text into a RawTable. It never fails: malformed lines
// are dropped and an unterminated continuation is committed at end of input.
func Parse(text string) RawTable {
	table, _ := ParseWithStats(text)
	return table
}

// ParseWithStats is Parse plus diagnostics about skipped lines and unterminated values.
func ParseWithStats(text string) (RawTable, Stats) {
	m := &machine{table: RawTable{}}

	for text != "" {
		var line string
		line, text, _ = strings.Cut(text, "\n")
		m.stats.Lines++
		m.feed(strings.TrimRight(line, " \t\r"))
	}
	m.finish()

	return m.table, m.stats
}

// ParseFile reads and parses a single lang file.
func ParseFile(path string) (RawTable, Stats, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, Stats{}, fmt.Errorf("path '%s' is %w", path, ErrNotAFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Stats{}, &IOError{Op: "read file", Path: path, Err: err}
	}

	table, stats := ParseBytes(data)
	return table, stats, nil
}

// ParseBytes parses raw file content, dropping a leading UTF-8 byte order mark.
func ParseBytes(data []byte) (RawTable, Stats) {
	return ParseWithStats(string(stripBOM(data)))
}

func (m *machine) feed(line string) {
	switch m.state {
	case stateString, stateArray:
		m.continueValue(line)
		return
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return
	}

	if m.state == stateValuePending {
		m.state = stateNormal
		if !startsEntry(trimmed) {
			m.startValue(m.key, trimmed)
			return
		}
		// The pending key had no value; this line is an entry of its own.
		m.commit(m.key, "")
		m.key = ""
	}

	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		m.stats.Skipped++
		return
	}

	key := strings.TrimSpace(line[:eq])
	if key == "" {
		m.stats.Skipped++
		return
	}
	value := strings.TrimSpace(line[eq+1:])

	if value == "" {
		m.state = stateValuePending
		m.key = key
		return
	}
	m.startValue(key, value)
}

// startValue classifies the first line of a value.
func (m *machine) startValue(key, value string) {
	switch {
	case strings.HasPrefix(value, "["):
		if strings.HasSuffix(value, "]") {
			m.commit(key, value)
			return
		}
		m.open(stateArray, key, value)
	case strings.HasPrefix(value, `"`):
		if len(value) >= 2 && closesString(value) {
			m.commit(key, value)
			return
		}
		m.open(stateString, key, value)
	default:
		m.commit(key, value)
	}
}

func (m *machine) open(s state, key, first string) {
	m.state = s
	m.key = key
	m.buf.Reset()
	m.buf.WriteString(first)
	m.buf.WriteByte('\n')
}

func (m *machine) continueValue(line string) {
	m.buf.WriteString(line)
	m.buf.WriteByte('\n')

	trimmed := strings.TrimSpace(line)
	var done bool
	if m.state == stateArray {
		done = strings.HasSuffix(trimmed, "]")
	} else {
		done = closesString(trimmed)
	}
	if done {
		m.flush()
	}
}

// flush commits the buffered continuation and returns to stateNormal.
func (m *machine) flush() {
	m.commit(m.key, strings.TrimSpace(m.buf.String()))
	m.buf.Reset()
	m.key = ""
	m.state = stateNormal
}

func (m *machine) finish() {
	switch m.state {
	case stateString, stateArray:
		m.stats.Unterminated = true
		m.flush()
	case stateValuePending:
		m.commit(m.key, "")
		m.key = ""
		m.state = stateNormal
	}
}

func (m *machine) commit(key, value string) {
	m.table[key] = value
	m.stats.Entries++
}

// startsEntry reports whether a line following `key =` is a `key = value` entry
// rather than the pending value. Quoted strings and arrays are always values.
func startsEntry(trimmed string) bool {
	if strings.HasPrefix(trimmed, `"`) || strings.HasPrefix(trimmed, "[") {
		return false
	}
	return strings.IndexByte(trimmed, '=') > 0
}

// closesString reports whether s ends with a double quote that is not escaped.
func closesString(s string) bool {
	return strings.HasSuffix(s, `"`) && !strings.HasSuffix(s, `\"`)
}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
}
