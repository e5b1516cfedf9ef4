// Package typegen derives a TypeScript declaration file from an aggregated lang table.
//
// One resource, the first by sorted identifier, serves as the schema for every
// resource: all lang files are expected to share the same keys and shapes.
// Use the coverage package to verify that assumption.
package typegen

import (
	"os"
	"sort"
	"strings"

	"github.com/Skidy89/simple-language-loader/internal/interpolation"
	"github.com/Skidy89/simple-language-loader/internal/loader"
	"github.com/Skidy89/simple-language-loader/internal/parser"
)

// Shape is the declared type of a field.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeArray
	// ShapeTemplate is a scalar rendered as a function of its named placeholders.
	ShapeTemplate
)

func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeTemplate:
		return "template"
	default:
		return "scalar"
	}
}

// Options controls generation.
type Options struct {
	// Placeholders renders scalar values containing {name} tokens as functions
	// taking one string argument per distinct placeholder.
	Placeholders bool
}

// Field describes one key of the schema resource.
type Field struct {
	Name         string
	Doc          []string
	Placeholders []string
	Shape        Shape
}

// Fields returns the field descriptors of raw, sorted by key.
func Fields(raw parser.RawTable, opts Options) []Field {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, key := range keys {
		value := raw[key]
		decoded := parser.Decode(value)
		f := Field{Name: key}
		// Arrays are documented with their source lines, scalars with their text.
		if decoded.IsArray() {
			f.Doc = docLines(value)
		} else {
			f.Doc = docLines(decoded.Scalar)
			f.Placeholders = interpolation.Placeholders(decoded.Scalar)
		}

		switch {
		case decoded.IsArray():
			f.Shape = ShapeArray
		case opts.Placeholders && len(f.Placeholders) > 0:
			f.Shape = ShapeTemplate
		default:
			f.Shape = ShapeScalar
		}
		fields = append(fields, f)
	}
	return fields
}

// Schema returns the identifier of the resource used as the schema source, or
// false if the table is empty.
func Schema(table loader.Table) (string, bool) {
	ids := table.Resources()
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// Describe renders the declaration file for table.
func Describe(table loader.Table, opts Options) string {
	var b strings.Builder
	b.WriteString("// Code generated by langpack. DO NOT EDIT.\n\n")
	b.WriteString("/* eslint-disable */\n")

	b.WriteString("export interface Lang {\n")
	if id, ok := Schema(table); ok {
		for _, f := range Fields(table[id], opts) {
			writeField(&b, f)
		}
	}
	b.WriteString("}\n\n")

	b.WriteString("export interface Langs {\n")
	for _, id := range table.Resources() {
		b.WriteString("    " + quote(id) + ": Lang;\n")
	}
	b.WriteString("}\n\n")
	b.WriteString("export const langs: Langs;\n")

	return b.String()
}

// WriteFile renders the declaration file for table and writes it to path.
func WriteFile(path string, table loader.Table, opts Options) error {
	if err := os.WriteFile(path, []byte(Describe(table, opts)), 0o644); err != nil {
		return &parser.IOError{Op: "write type definitions to", Path: path, Err: err}
	}
	return nil
}

func writeField(b *strings.Builder, f Field) {
	switch len(f.Doc) {
	case 0:
	case 1:
		b.WriteString("    /** " + f.Doc[0] + " */\n")
	default:
		b.WriteString("    /**\n")
		for _, line := range f.Doc {
			b.WriteString(strings.TrimRight("     * "+line, " ") + "\n")
		}
		b.WriteString("     */\n")
	}

	name := quote(f.Name)
	switch f.Shape {
	case ShapeArray:
		b.WriteString("    " + name + ": string[];\n")
	case ShapeTemplate:
		args := make([]string, len(f.Placeholders))
		for i, p := range f.Placeholders {
			args[i] = p + ": string"
		}
		b.WriteString("    " + name + ": (args: { " + strings.Join(args, ", ") + " }) => string;\n")
	default:
		b.WriteString("    " + name + ": string;\n")
	}
}

// docLines splits a raw value into comment lines, keeping "*/" from closing the comment early.
func docLines(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		lines[i] = strings.ReplaceAll(line, "*/", `*\/`)
	}
	return lines
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quote(s string) string {
	return "'" + keyEscaper.Replace(s) + "'"
}
