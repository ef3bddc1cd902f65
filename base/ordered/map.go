// Package ordered provides containers iterating in insertion order.
package ordered

import "iter"

// Map maps keys to values. Iterations follow the order in which keys
// have been stored first.
type Map[K comparable, V any] struct {
	index   map[K]int
	entries []entry[K, V]
}

type entry[K comparable, V any] struct {
	key K
	val V
}

// NewMap returns an empty map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{index: make(map[K]int)}
}

// Store a value under a key.
// Storing an existing key replaces its value but keeps its position.
func (m *Map[K, V]) Store(k K, v V) {
	if i, ok := m.index[k]; ok {
		m.entries[i].val = v
		return
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, entry[K, V]{key: k, val: v})
}

// Load returns the value stored under a key.
func (m *Map[K, V]) Load(k K) (v V, ok bool) {
	i, ok := m.index[k]
	if !ok {
		return v, false
	}
	return m.entries[i].val, true
}

// All iterates over the key,value pairs.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range m.entries {
			if !yield(e.key, e.val) {
				return
			}
		}
	}
}

// Keys iterates over the keys.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, e := range m.entries {
			if !yield(e.key) {
				return
			}
		}
	}
}

// Clone returns a shallow copy of the map.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := &Map[K, V]{
		index:   make(map[K]int, len(m.index)),
		entries: append([]entry[K, V]{}, m.entries...),
	}
	for k, i := range m.index {
		c.index[k] = i
	}
	return c
}

// Size returns the number of keys.
func (m *Map[K, V]) Size() int {
	return len(m.entries)
}
