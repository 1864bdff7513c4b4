// Package aggregate turns generator output into chart-ready shapes. Every
// function returns a new slice and leaves its input untouched.
package aggregate

import (
	"math"
	"sort"
)

// TopN returns up to n items ordered by metric, highest first. Ties keep
// input order. n larger than the input returns every item.
func TopN[T any](items []T, n int, metric func(T) float64) []T {
	if n <= 0 {
		return []T{}
	}
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return metric(out[i]) > metric(out[j])
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// Paginate sorts a copy of items with less (nil keeps input order) and
// returns the page at offset/limit. Out-of-range offsets yield an empty page.
func Paginate[T any](items []T, less func(a, b T) bool, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(items) {
		return []T{}
	}
	sorted := make([]T, len(items))
	copy(sorted, items)
	if less != nil {
		sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	page := make([]T, end-offset)
	copy(page, sorted[offset:end])
	return page
}

// Count is one group of a GroupCount.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// GroupCount counts items per key, largest group first, ties by key.
func GroupCount[T any](items []T, key func(T) string) []Count {
	counts := make(map[string]int)
	for _, it := range items {
		counts[key(it)]++
	}
	out := make([]Count, 0, len(counts))
	for k, c := range counts {
		out = append(out, Count{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Sum is one group of a GroupSum.
type Sum struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
}

// GroupSum totals value per key, largest first, ties by key.
func GroupSum[T any](items []T, key func(T) string, value func(T) float64) []Sum {
	sums := make(map[string]float64)
	for _, it := range items {
		sums[key(it)] += value(it)
	}
	out := make([]Sum, 0, len(sums))
	for k, v := range sums {
		out = append(out, Sum{Key: k, Total: Round(v, 1)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Share is a group with its percentage of the total.
type Share struct {
	Key     string  `json:"key"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Shares converts counts into percentages rounded to one decimal. A zero
// total gives zero percentages.
func Shares(counts []Count) []Share {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	out := make([]Share, len(counts))
	for i, c := range counts {
		out[i] = Share{Key: c.Key, Count: c.Count}
		if total > 0 {
			out[i].Percent = Round(float64(c.Count)*100/float64(total), 1)
		}
	}
	return out
}

// Percent returns part/whole as a percentage with one decimal, 0 when whole
// is zero.
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return Round(part*100/whole, 1)
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
