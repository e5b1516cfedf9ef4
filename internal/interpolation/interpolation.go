package interpolation

import (
	"regexp"
	"strings"
)

// placeholderPattern matches named placeholders such as {name} or {item_2}.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Placeholders returns the distinct placeholder names in text, in order of first occurrence.
func Placeholders(text string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// HasPlaceholders reports whether text contains at least one named placeholder.
func HasPlaceholders(text string) bool {
	return placeholderPattern.MatchString(text)
}

// Fill substitutes every {name} in template with args[name]. Placeholders
// without a matching argument are left as written.
func Fill(template string, args map[string]string) string {
	if len(args) == 0 || !strings.Contains(template, "{") {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		if v, ok := args[token[1:len(token)-1]]; ok {
			return v
		}
		return token
	})
}

// Missing returns the placeholder names of template that have no entry in args.
func Missing(template string, args map[string]string) []string {
	var missing []string
	for _, name := range Placeholders(template) {
		if _, ok := args[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
