// Package coverage compares lang resources against a base resource.
package coverage

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Skidy89/simple-language-loader/internal/interpolation"
	"github.com/Skidy89/simple-language-loader/internal/loader"
	"github.com/Skidy89/simple-language-loader/internal/parser"
)

// ErrUnknownBase is returned when the requested base resource is not in the table.
var ErrUnknownBase = errors.New("unknown base resource")

type IssueKind int

const (
	// MissingKey: the base defines the key, the resource does not.
	MissingKey IssueKind = iota
	// ExtraKey: the resource defines a key the base does not.
	ExtraKey
	ShapeMismatch
	PlaceholderMismatch
)

func (k IssueKind) String() string {
	switch k {
	case MissingKey:
		return "missing"
	case ExtraKey:
		return "extra"
	case ShapeMismatch:
		return "shape"
	case PlaceholderMismatch:
		return "placeholders"
	default:
		return fmt.Sprintf("IssueKind(%d)", int(k))
	}
}

// Issue is a single inconsistency between a resource and the base.
type Issue struct {
	Resource string
	Key      string
	Kind     IssueKind
	Detail   string
}

func (i Issue) String() string {
	s := fmt.Sprintf("%s: %s %s", i.Resource, i.Kind, i.Key)
	if i.Detail != "" {
		s += " (" + i.Detail + ")"
	}
	return s
}

// Report lists the issues found, sorted by resource then key.
type Report struct {
	Base   string
	Issues []Issue
}

// OK reports whether no issue was found.
func (r Report) OK() bool { return len(r.Issues) == 0 }

// Missing returns the missing keys per resource.
func (r Report) Missing() map[string][]string {
	out := map[string][]string{}
	for _, i := range r.Issues {
		if i.Kind == MissingKey {
			out[i.Resource] = append(out[i.Resource], i.Key)
		}
	}
	return out
}

// Check compares every resource of table with base. An empty base selects the
// first resource by sorted identifier, the same schema source typegen uses.
func Check(table loader.Table, base string) (Report, error) {
	ids := table.Resources()
	if base == "" {
		if len(ids) == 0 {
			return Report{}, nil
		}
		base = ids[0]
	}
	ref, ok := table[base]
	if !ok {
		return Report{}, fmt.Errorf("check coverage: %w %q", ErrUnknownBase, base)
	}

	report := Report{Base: base}
	for _, id := range ids {
		if id == base {
			continue
		}
		report.Issues = append(report.Issues, compare(id, ref, table[id])...)
	}
	sort.SliceStable(report.Issues, func(a, b int) bool {
		x, y := report.Issues[a], report.Issues[b]
		if x.Resource != y.Resource {
			return x.Resource < y.Resource
		}
		if x.Key != y.Key {
			return x.Key < y.Key
		}
		return x.Kind < y.Kind
	})
	return report, nil
}

func compare(id string, ref, raw parser.RawTable) []Issue {
	var issues []Issue
	for key, refValue := range ref {
		value, ok := raw[key]
		if !ok {
			issues = append(issues, Issue{Resource: id, Key: key, Kind: MissingKey})
			continue
		}

		refKind, kind := parser.Decode(refValue).Kind, parser.Decode(value).Kind
		if refKind != kind {
			issues = append(issues, Issue{
				Resource: id,
				Key:      key,
				Kind:     ShapeMismatch,
				Detail:   fmt.Sprintf("base is %s, got %s", refKind, kind),
			})
			continue
		}

		want, got := sortedPlaceholders(refValue), sortedPlaceholders(value)
		if strings.Join(want, ",") != strings.Join(got, ",") {
			issues = append(issues, Issue{
				Resource: id,
				Key:      key,
				Kind:     PlaceholderMismatch,
				Detail:   fmt.Sprintf("base has {%s}, got {%s}", strings.Join(want, "} {"), strings.Join(got, "} {")),
			})
		}
	}
	for key := range raw {
		if _, ok := ref[key]; !ok {
			issues = append(issues, Issue{Resource: id, Key: key, Kind: ExtraKey})
		}
	}
	return issues
}

func sortedPlaceholders(value string) []string {
	names := interpolation.Placeholders(value)
	sort.Strings(names)
	return names
}
