package ordered

// Set keeps the first value added under each key, in insertion order.
type Set[K comparable, V any] struct {
	m *Map[K, V]
}

// NewSet returns an empty set.
func NewSet[K comparable, V any]() *Set[K, V] {
	return &Set[K, V]{m: NewMap[K, V]()}
}

// Add a value under a key. Returns false, ignoring the value,
// if the key was already present.
func (s *Set[K, V]) Add(k K, v V) bool {
	if s.Contains(k) {
		return false
	}
	s.m.Store(k, v)
	return true
}

// Contains returns true if a value has been added under the key.
func (s *Set[K, V]) Contains(k K) bool {
	_, ok := s.m.Load(k)
	return ok
}

// Slice returns the values in insertion order. The slice is never nil.
func (s *Set[K, V]) Slice() []V {
	vals := make([]V, 0, s.m.Size())
	for _, v := range s.m.All() {
		vals = append(vals, v)
	}
	return vals
}

// Size returns the number of keys.
func (s *Set[K, V]) Size() int {
	return s.m.Size()
}
