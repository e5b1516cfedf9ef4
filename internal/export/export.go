// Package export writes decoded lang tables as JSON or YAML.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Skidy89/simple-language-loader/internal/parser"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for formats other than json and yaml.
var ErrUnknownFormat = errors.New("unknown output format")

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode writes v, a decoded table or set of tables, in the given format.
func Encode(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
	return nil
}

// Resource decodes a single raw table for encoding.
func Resource(raw parser.RawTable) map[string]parser.Value {
	return raw.Decoded()
}
