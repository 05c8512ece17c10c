// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// SplitDedupeLower splits every value on sep, trims and lowercases the
// parts, and drops empties and duplicates. Order of first appearance is
// preserved. Returns nil when nothing remains.
//
// Example:
//
//	SplitDedupeLower([]string{"consent_granted, Consent_Granted", "session_started"}, ",")
//	// Returns: []string{"consent_granted", "session_started"}
func SplitDedupeLower(values []string, sep string) []string {
	var result []string
	seen := make(map[string]struct{})

	for _, v := range values {
		for _, part := range strings.Split(v, sep) {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			if _, ok := seen[part]; !ok {
				seen[part] = struct{}{}
				result = append(result, part)
			}
		}
	}

	return result
}
