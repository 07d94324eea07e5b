// Package ordered provides a string-keyed map that keeps its entries sorted by
// a caller-supplied ordering, plus the capability interface shared by the
// registry containers that expose named children.
package ordered

import (
	"iter"
	"slices"
)

// Children is implemented by containers that hold named children in a
// defined order, such as pack collections (families) and device tree nodes.
type Children[T any] interface {
	// Child returns the child registered under name.
	Child(name string) (T, bool)
	// Children returns all children in container order.
	Children() []T
	// ChildCount returns the number of children.
	ChildCount() int
}

type entry[V any] struct {
	key   string
	value V
}

// Map is a sorted vector with binary search lookup. Keys that the ordering
// reports as equal are the same key, so a case-insensitive ordering yields a
// case-insensitive map.
//
// The zero value is not usable; create maps with New.
type Map[V any] struct {
	cmp     func(a, b string) int
	entries []entry[V]
}

// New creates an empty map ordered by cmp.
func New[V any](cmp func(a, b string) int) *Map[V] {
	return &Map[V]{cmp: cmp}
}

func (m *Map[V]) search(key string) (int, bool) {
	return slices.BinarySearchFunc(m.entries, key, func(e entry[V], k string) int {
		return m.cmp(e.key, k)
	})
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	if i, found := m.search(key); found {
		return m.entries[i].value, true
	}
	var zero V
	return zero, false
}

// Has reports whether key is present.
func (m *Map[V]) Has(key string) bool {
	_, found := m.search(key)
	return found
}

// Set stores value under key, replacing any existing value.
func (m *Map[V]) Set(key string, value V) {
	i, found := m.search(key)
	if found {
		m.entries[i].value = value
		return
	}
	m.entries = slices.Insert(m.entries, i, entry[V]{key: key, value: value})
}

// Delete removes key and reports whether it was present.
func (m *Map[V]) Delete(key string) bool {
	i, found := m.search(key)
	if !found {
		return false
	}
	m.entries = slices.Delete(m.entries, i, i+1)
	return true
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	return len(m.entries)
}

// First returns the entry that sorts first.
func (m *Map[V]) First() (string, V, bool) {
	if len(m.entries) == 0 {
		var zero V
		return "", zero, false
	}
	return m.entries[0].key, m.entries[0].value, true
}

// Keys returns the keys in order.
func (m *Map[V]) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.key
	}
	return keys
}

// Values returns the values in key order.
func (m *Map[V]) Values() []V {
	values := make([]V, len(m.entries))
	for i, e := range m.entries {
		values[i] = e.value
	}
	return values
}

// All iterates over the entries in key order. The map must not be modified
// during iteration.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, e := range m.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}
