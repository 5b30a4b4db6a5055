// Package cache provides bounded, position-addressable identity caches used to replace repeated values with short back-reference ids.
//
// A Cache holds at most MaxSize values ordered from newest to oldest. Position 0 is the most recently added value (the head),
// and the value at position Size()-1 is the oldest (the tail). Values are compared with ==.
// A Cache is not a set; the same value may be held at several positions, and callers wanting set semantics must check Contains before AddHead.
//
// Three implementations exist with identical behaviour and different costs:
//
//	List        dense slice, linear time everything. Simple and obviously correct.
//	RingBuffer  circular array; constant time AddHead and eviction, linear time removal and search.
//	RingTree    circular slot arena indexed by a Fenwick tree and a value index; logarithmic time for all operations.
//
// Caches are not safe for concurrent use.
package cache

import (
	"fmt"
	"iter"
	"slices"
)

// Cache is a bounded most-recently-added ordered list of values.
type Cache[E comparable] interface {
	// AddHead inserts v at position 0, moving every other value one position back.
	// If the cache was full, the value at the last position is evicted and returned with ok set.
	AddHead(v E) (evicted E, ok bool)

	// RemovePosition removes and returns the value at pos, moving every value behind it one position forward.
	// If pos is out of range, the cache is unchanged and ok is false.
	RemovePosition(pos int) (v E, ok bool)

	// RemoveElement removes the value equal to v nearest to the head, returning the position it was at, or -1 if no value is equal to v.
	RemoveElement(v E) int

	// IndexOf returns the position of the value equal to v nearest to the head, or -1 if no value is equal to v.
	IndexOf(v E) int

	// Contains reports whether any value in the cache is equal to v.
	Contains(v E) bool

	// Size returns the number of values held.
	Size() int

	// MaxSize returns the capacity given at construction.
	MaxSize() int

	// All iterates over the held values from head to tail.
	All() iter.Seq[E]

	// String formats the held values from head to tail like a slice, i.e. [a b c].
	String() string
}

// Kind selects a Cache implementation.
type Kind uint8

// Cache kinds.
const (
	// KindAuto chooses RingBuffer for small caches and RingTree for large ones.
	KindAuto Kind = iota
	KindList
	KindRingBuffer
	KindRingTree
)

// RingTreeThreshold is the largest MaxSize for which KindAuto picks a RingBuffer.
// Past this, shifting values in the ring costs more than walking the tree.
const RingTreeThreshold = 256

// MaxCacheSize is the largest MaxSize accepted from configuration or from a stream.
// Caches allocate their storage up front.
const MaxCacheSize = 1 << 20

func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindList:
		return "list"
	case KindRingBuffer:
		return "ringbuffer"
	case KindRingTree:
		return "ringtree"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind returns the Kind named s, as returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := KindAuto; k <= KindRingTree; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("cache: unknown kind %q", s)
}

// New returns a Cache holding up to maxSize values, choosing the implementation by size.
// It panics if maxSize is not positive.
func New[E comparable](maxSize int) Cache[E] {
	return NewKind[E](KindAuto, maxSize)
}

// NewKind returns a Cache of the given kind holding up to maxSize values.
// It panics if maxSize is not positive or kind is unknown.
func NewKind[E comparable](kind Kind, maxSize int) Cache[E] {
	switch kind {
	case KindAuto:
		if maxSize <= RingTreeThreshold {
			return NewRingBuffer[E](maxSize)
		}
		return NewRingTree[E](maxSize)
	case KindList:
		return NewList[E](maxSize)
	case KindRingBuffer:
		return NewRingBuffer[E](maxSize)
	case KindRingTree:
		return NewRingTree[E](maxSize)
	default:
		panic(fmt.Sprintf("cache: unknown kind %v", kind))
	}
}

func checkMaxSize(maxSize int) {
	if maxSize <= 0 {
		panic(fmt.Sprintf("cache: max size must be positive, got %v", maxSize))
	}
}

func format[E any](seq iter.Seq[E]) string {
	return fmt.Sprint(slices.Collect(seq))
}
