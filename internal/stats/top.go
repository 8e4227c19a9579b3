package stats

import (
	"sort"
	"strings"

	"github.com/verte-zerg/keycast/internal/model"
)

// SortByCount returns a copy of aggs ordered by count, then key.
func SortByCount(aggs []model.KeyAggregate) []model.KeyAggregate {
	out := make([]model.KeyAggregate, len(aggs))
	copy(out, aggs)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Key < out[j].Key
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// TopKeysByCount returns the names of the n most pressed keys.
func TopKeysByCount(aggs []model.KeyAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := SortByCount(aggs)
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]string, 0, n)
	for _, a := range sorted[:n] {
		out = append(out, a.Key)
	}
	return out
}

// ParseKeyList splits a comma separated key list, dropping blanks.
func ParseKeyList(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// AggregatesFromCounts converts lifetime counts into aggregates.
func AggregatesFromCounts(counts model.KeyCounts) []model.KeyAggregate {
	out := make([]model.KeyAggregate, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.KeyAggregate{Key: k, Count: n})
	}
	return SortByCount(out)
}
