package utils

import "sort"

// CountEntry pairs a counted key with its tally for rank-ordered output.
type CountEntry struct {
	Key   string
	Count int
}

// TopCounts ranks a frequency map by descending count, ties broken
// alphabetically, and keeps at most limit entries. A limit of zero or
// less keeps everything.
func TopCounts(m map[string]int, limit int) []CountEntry {
	entries := make([]CountEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, CountEntry{Key: k, Count: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
