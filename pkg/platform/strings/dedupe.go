// Package strings provides string manipulation utilities.
package strings

import (
	"strings"

	s "indy/pkg/string"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// DedupeCanonical keeps the first spelling of every attribute name whose
// canonical form (lowercase, no whitespace) was not seen before. Used for
// schema attribute sets, where "First Name" and "firstname" collide.
func DedupeCanonical(values []string) []string {
	return dedupe(values, s.Canonical)
}

func dedupe(values []string, key func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		k := key(v)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			result = append(result, strings.TrimSpace(v))
		}
	}

	return result
}
