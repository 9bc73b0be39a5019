package exprid

import (
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
)

// Map is a hash map keyed by structural expression identity. Hash collisions
// are resolved by probing bucket entries with Equivalent.
type Map[V any] struct {
	buckets map[uint64][]entry[V]
	size    int
}

type entry[V any] struct {
	key   ast.Expr
	value V
}

// NewMap creates an empty identity-keyed map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{buckets: make(map[uint64][]entry[V])}
}

// Get returns the value stored for an expression structurally equivalent to e.
func (m *Map[V]) Get(e ast.Expr) (V, bool) {
	for _, ent := range m.buckets[Hash(e)] {
		if Equivalent(ent.key, e) {
			return ent.value, true
		}
	}
	var zero V
	return zero, false
}

// Put stores a value for e, replacing any existing equivalent key.
func (m *Map[V]) Put(e ast.Expr, value V) {
	h := Hash(e)
	bucket := m.buckets[h]
	for i, ent := range bucket {
		if Equivalent(ent.key, e) {
			bucket[i].value = value
			return
		}
	}
	m.buckets[h] = append(bucket, entry[V]{key: e, value: value})
	m.size++
}

// Len returns the number of distinct keys.
func (m *Map[V]) Len() int { return m.size }

// ForEach calls fn for every key/value pair, in unspecified order.
func (m *Map[V]) ForEach(fn func(key ast.Expr, value V)) {
	for _, bucket := range m.buckets {
		for _, ent := range bucket {
			fn(ent.key, ent.value)
		}
	}
}
