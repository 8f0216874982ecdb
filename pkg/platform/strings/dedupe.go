// Package strings provides helpers for cleaning repeated request parameters.
package strings

import (
	"strings"
)

// Dedupe drops repeated values, keeping the first occurrence of each.
func Dedupe[T comparable](values []T) []T {
	if len(values) == 0 {
		return values
	}
	seen := make(map[T]struct{}, len(values))
	result := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// DedupeAndTrim trims each value, drops blanks and then drops repeats.
// Order is preserved and case is significant.
//
//	DedupeAndTrim([]string{"  bob ", "alice", "bob", "", "  "})
//	// []string{"bob", "alice"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}
	trimmed := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			trimmed = append(trimmed, v)
		}
	}
	return Dedupe(trimmed)
}
