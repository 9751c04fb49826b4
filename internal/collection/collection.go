// Package collection holds the keyed-list helpers views use to patch
// fetched snapshots in place instead of refetching them.
package collection

import "strings"

// Keyed is implemented by records identified by a numeric id.
type Keyed interface {
	Key() int64
}

// Merge returns a copy of items where the record with id has been passed
// through patch. Every other record is carried over unchanged. The second
// result reports whether a record matched.
func Merge[T Keyed](items []T, id int64, patch func(*T)) ([]T, bool) {
	out := make([]T, len(items))
	copy(out, items)
	found := false
	for i := range out {
		if out[i].Key() == id {
			patch(&out[i])
			found = true
		}
	}
	return out, found
}

// Upsert replaces the record sharing item's key, or appends item.
func Upsert[T Keyed](items []T, item T) []T {
	out, found := Merge(items, item.Key(), func(existing *T) { *existing = item })
	if !found {
		out = append(out, item)
	}
	return out
}

// Prepend puts item first, dropping any older record with the same key.
func Prepend[T Keyed](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	for _, existing := range items {
		if existing.Key() != item.Key() {
			out = append(out, existing)
		}
	}
	return out
}

// Remove returns a copy of items without the record with id.
func Remove[T Keyed](items []T, id int64) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item.Key() != id {
			out = append(out, item)
		}
	}
	return out
}

// Find returns the record with id.
func Find[T Keyed](items []T, id int64) (T, bool) {
	for _, item := range items {
		if item.Key() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Keys returns the set of ids present in items.
func Keys[T Keyed](items []T) map[int64]bool {
	out := make(map[int64]bool, len(items))
	for _, item := range items {
		out[item.Key()] = true
	}
	return out
}

// Filter keeps the records where any of fields contains query,
// case-insensitively. A blank query keeps everything. The input is never
// modified.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if needle == "" || matches(fields(item), needle) {
			out = append(out, item)
		}
	}
	return out
}

func matches(fields []string, needle string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
