package domain

import (
	"sort"
	"strings"
)

// ParseTagString splits a whitespace-delimited tag string into tag names.
// Names are deduplicated case-insensitively (first spelling wins) and sorted
// case-insensitively. An empty or blank string yields an empty, non-nil slice.
func ParseTagString(s string) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, name := range strings.Fields(s) {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// BuildTagString joins tag names with delimiter. It is the inverse of
// ParseTagString for already-normalized names.
func BuildTagString(names []string, delimiter string) string {
	return strings.Join(names, delimiter)
}
