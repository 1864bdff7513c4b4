// Package reference holds the immutable administrative reference data
// (Nigerian states and malaria-endemic countries) that every synthetic
// dataset is keyed on.
package reference

import (
	"fmt"
	"sort"
)

// Coded is implemented by every reference row.
type Coded interface {
	RegionCode() string
	RegionGroup() string
}

// Table is an ordered, read-only collection of reference rows indexed by code.
type Table[T Coded] struct {
	rows  []T
	index map[string]int
}

// NewTable builds a table from rows, preserving their order. It panics on an
// empty or duplicate code since reference data is compiled in.
func NewTable[T Coded](rows []T) *Table[T] {
	t := &Table[T]{
		rows:  make([]T, len(rows)),
		index: make(map[string]int, len(rows)),
	}
	copy(t.rows, rows)
	for i, r := range t.rows {
		code := r.RegionCode()
		if code == "" {
			panic(fmt.Sprintf("reference: row %d has an empty code", i))
		}
		if _, dup := t.index[code]; dup {
			panic(fmt.Sprintf("reference: duplicate code %q", code))
		}
		t.index[code] = i
	}
	return t
}

// Len returns the number of rows.
func (t *Table[T]) Len() int { return len(t.rows) }

// All returns a copy of the rows in table order.
func (t *Table[T]) All() []T {
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	return out
}

// Lookup returns the row with the given code. The boolean is false when the
// code is unknown.
func (t *Table[T]) Lookup(code string) (T, bool) {
	i, ok := t.index[code]
	if !ok {
		var zero T
		return zero, false
	}
	return t.rows[i], true
}

// Has reports whether code exists in the table.
func (t *Table[T]) Has(code string) bool {
	_, ok := t.index[code]
	return ok
}

// Codes returns every code in table order.
func (t *Table[T]) Codes() []string {
	codes := make([]string, len(t.rows))
	for i, r := range t.rows {
		codes[i] = r.RegionCode()
	}
	return codes
}

// ByGroup returns the rows whose group (zone or sub-region) matches.
func (t *Table[T]) ByGroup(group string) []T {
	var out []T
	for _, r := range t.rows {
		if r.RegionGroup() == group {
			out = append(out, r)
		}
	}
	return out
}

// Groups returns the distinct groups in first-seen order.
func (t *Table[T]) Groups() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.rows {
		g := r.RegionGroup()
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

// Top returns up to n rows sorted by metric, highest first. Ties keep table
// order. When n exceeds the table size every row is returned.
func (t *Table[T]) Top(n int, metric func(T) float64) []T {
	if n <= 0 {
		return []T{}
	}
	out := t.All()
	sort.SliceStable(out, func(i, j int) bool {
		return metric(out[i]) > metric(out[j])
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}
