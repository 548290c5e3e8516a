// Package ranking totally orders processed items for the report.
package ranking

import (
	"sort"

	"redditqueue/internal/queue"
)

// Rank returns a new slice sorted by priority descending, ties broken by
// age ascending (freshest first). Items equal on both keys keep their
// discovery order, which follows the configured source order.
func Rank(items []queue.ProcessedItem) []queue.ProcessedItem {
	out := make([]queue.ProcessedItem, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].AgeHours < out[j].AgeHours
	})

	return out
}
