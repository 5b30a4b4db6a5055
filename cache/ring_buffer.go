package cache

import (
	"iter"
)

// RingBuffer is a Cache backed by a fixed circular array.
// AddHead and eviction are constant time; RemovePosition shifts the shorter side of the ring, and searches are linear.
// It suits small and medium caches where shifting a few values is cheaper than maintaining an index.
type RingBuffer[E comparable] struct {
	ring []E
	head int // ring index of position 0
	size int
}

// NewRingBuffer returns an empty RingBuffer holding up to maxSize values.
func NewRingBuffer[E comparable](maxSize int) *RingBuffer[E] {
	checkMaxSize(maxSize)
	return &RingBuffer[E]{
		ring: make([]E, maxSize),
	}
}

// slot returns the ring index of pos.
func (r *RingBuffer[E]) slot(pos int) int {
	i := r.head + pos
	if i >= len(r.ring) {
		i -= len(r.ring)
	}
	return i
}

// AddHead implements Cache.
func (r *RingBuffer[E]) AddHead(v E) (evicted E, ok bool) {
	if r.size == len(r.ring) {
		// the tail slot is the one the new head moves into.
		evicted, ok = r.ring[r.slot(r.size-1)], true
		r.size--
	}

	r.head--
	if r.head < 0 {
		r.head += len(r.ring)
	}
	r.ring[r.head] = v
	r.size++
	return evicted, ok
}

// RemovePosition implements Cache.
func (r *RingBuffer[E]) RemovePosition(pos int) (v E, ok bool) {
	if pos < 0 || pos >= r.size {
		return v, false
	}
	return r.remove(pos), true
}

// RemoveElement implements Cache.
func (r *RingBuffer[E]) RemoveElement(v E) int {
	pos := r.IndexOf(v)
	if pos >= 0 {
		r.remove(pos)
	}
	return pos
}

// IndexOf implements Cache.
func (r *RingBuffer[E]) IndexOf(v E) int {
	for pos := 0; pos < r.size; pos++ {
		if r.ring[r.slot(pos)] == v {
			return pos
		}
	}
	return -1
}

// Contains implements Cache.
func (r *RingBuffer[E]) Contains(v E) bool {
	return r.IndexOf(v) >= 0
}

// Size implements Cache.
func (r *RingBuffer[E]) Size() int { return r.size }

// MaxSize implements Cache.
func (r *RingBuffer[E]) MaxSize() int { return len(r.ring) }

// All implements Cache.
func (r *RingBuffer[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		for pos := 0; pos < r.size; pos++ {
			if !yield(r.ring[r.slot(pos)]) {
				return
			}
		}
	}
}

// String implements Cache.
func (r *RingBuffer[E]) String() string {
	return format(r.All())
}

// remove closes the gap at pos by moving whichever side of it is shorter.
func (r *RingBuffer[E]) remove(pos int) E {
	var zero E
	v := r.ring[r.slot(pos)]

	if pos < r.size/2 {
		for i := pos; i > 0; i-- {
			r.ring[r.slot(i)] = r.ring[r.slot(i-1)]
		}
		r.ring[r.head] = zero
		r.head = r.slot(1)
	} else {
		for i := pos; i < r.size-1; i++ {
			r.ring[r.slot(i)] = r.ring[r.slot(i+1)]
		}
		r.ring[r.slot(r.size-1)] = zero
	}

	r.size--
	return v
}
