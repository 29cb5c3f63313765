// Package orderedmap provides a map that remembers insertion order and
// rejects duplicate keys. The parser uses it to keep attributes in
// document order while detecting attributes that collide after namespace
// resolution.
package orderedmap

import (
	"errors"
	"iter"
)

var ErrDuplicateEntry = errors.New("duplicate entry")

type Map[K comparable, V any] struct {
	entries []K
	keys    map[K]V
}

func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		keys: make(map[K]V),
	}
}

// Set stores value under key, preserving insertion order. It returns
// ErrDuplicateEntry if the key is already present.
func (m *Map[K, V]) Set(key K, value V) error {
	if _, exists := m.keys[key]; exists {
		return ErrDuplicateEntry
	}
	m.entries = append(m.entries, key)
	m.keys[key] = value
	return nil
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.keys[key]
	return v, ok
}

func (m *Map[K, V]) Len() int {
	return len(m.entries)
}

// Reset empties the map for reuse without releasing the key index.
func (m *Map[K, V]) Reset() {
	clear(m.keys)
	m.entries = m.entries[:0]
}

// Range iterates over entries in insertion order.
func (m *Map[K, V]) Range() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range m.entries {
			if !yield(k, m.keys[k]) {
				break
			}
		}
	}
}
