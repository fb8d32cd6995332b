package collection

import "sort"

// Collection chains slice operations. Every operation works in place and
// returns the receiver.
type Collection[T any] struct {
	data []T
}

func New[T any](d []T) *Collection[T] {
	return &Collection[T]{data: append([]T(nil), d...)}
}

// Each can be used to iterate over the collection
func (c *Collection[T]) Each(f func(k int, i T)) *Collection[T] {
	for k, item := range c.data {
		f(k, item)
	}
	return c
}

// Map replaces every item with the result of f.
func (c *Collection[T]) Map(f func(k int, i T) T) *Collection[T] {
	for k, item := range c.data {
		c.data[k] = f(k, item)
	}
	return c
}

// Filter keeps the items for which f returns true.
func (c *Collection[T]) Filter(f func(i T) bool) *Collection[T] {
	match := c.data[:0]
	for _, item := range c.data {
		if f(item) {
			match = append(match, item)
		}
	}
	c.data = match
	return c
}

// Sort orders the items with less, keeping equal items in place.
func (c *Collection[T]) Sort(less func(i, j T) bool) *Collection[T] {
	sort.SliceStable(c.data, func(a, b int) bool { return less(c.data[a], c.data[b]) })
	return c
}

// First returns the first item matching f.
func (c *Collection[T]) First(f func(i T) bool) (T, bool) {
	for _, item := range c.data {
		if f(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Len() int {
	return len(c.data)
}

// Value returns the items as a new slice.
func (c *Collection[T]) Value() []T {
	return append(make([]T, 0, len(c.data)), c.data...)
}

func (c *Collection[T]) Merge(other *Collection[T]) *Collection[T] {
	c.data = append(c.data, other.data...)
	return c
}

// Where keeps the maps whose key holds value.
func Where[K comparable, V comparable, M ~map[K]V](c *Collection[M], key K, value V) *Collection[M] {
	return c.Filter(func(m M) bool { return m[key] == value })
}
