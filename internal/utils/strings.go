package utils

import "strings"

// ParseCommaSeparatedAll splits the comma-separated values of a repeatable
// flag, trims spaces, and de-duplicates values, keeping first-seen order
// across all of them.
func ParseCommaSeparatedAll(values []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			item := strings.TrimSpace(p)
			if item == "" {
				continue
			}
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
