package cache

import (
	"iter"
	"slices"
)

// List is a Cache backed by a dense slice ordered from head to tail.
// Every operation is linear in the number of held values; it exists as the reference the other implementations are tested against.
type List[E comparable] struct {
	values  []E
	maxSize int
}

// NewList returns an empty List holding up to maxSize values.
func NewList[E comparable](maxSize int) *List[E] {
	checkMaxSize(maxSize)
	return &List[E]{
		values:  make([]E, 0, maxSize),
		maxSize: maxSize,
	}
}

// AddHead implements Cache.
func (l *List[E]) AddHead(v E) (evicted E, ok bool) {
	if len(l.values) == l.maxSize {
		evicted, ok = l.values[len(l.values)-1], true
		l.values = l.values[:len(l.values)-1]
	}
	l.values = slices.Insert(l.values, 0, v)
	return evicted, ok
}

// RemovePosition implements Cache.
func (l *List[E]) RemovePosition(pos int) (v E, ok bool) {
	if pos < 0 || pos >= len(l.values) {
		return v, false
	}
	v = l.values[pos]
	l.values = slices.Delete(l.values, pos, pos+1)
	return v, true
}

// RemoveElement implements Cache.
func (l *List[E]) RemoveElement(v E) int {
	pos := l.IndexOf(v)
	if pos >= 0 {
		l.values = slices.Delete(l.values, pos, pos+1)
	}
	return pos
}

// IndexOf implements Cache.
func (l *List[E]) IndexOf(v E) int {
	return slices.Index(l.values, v)
}

// Contains implements Cache.
func (l *List[E]) Contains(v E) bool {
	return l.IndexOf(v) >= 0
}

// Size implements Cache.
func (l *List[E]) Size() int { return len(l.values) }

// MaxSize implements Cache.
func (l *List[E]) MaxSize() int { return l.maxSize }

// All implements Cache.
func (l *List[E]) All() iter.Seq[E] {
	return slices.Values(l.values)
}

// String implements Cache.
func (l *List[E]) String() string {
	return format(l.All())
}
