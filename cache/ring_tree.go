package cache

import (
	"iter"
	"slices"
)

// RingTree is a Cache for large capacities, where the linear shifting of RingBuffer becomes the bottleneck.
//
// Values live in a circular arena of 2*MaxSize slots, written in insertion order. Removing a value only clears its slot,
// leaving a hole, so no other value moves. A Fenwick tree counts the live slots, which turns a position into a slot and a slot
// into a position in logarithmic time, and an index from value to slots makes searches logarithmic too.
// When the holes fill the arena the live values are packed to its start; at least MaxSize removals happen between packings,
// so the linear cost of packing is constant when amortised.
type RingTree[E comparable] struct {
	slots []E
	live  []bool
	tree  fenwick

	// index holds the slots of every held value, oldest first.
	index map[E][]int

	head    int // slot of position 0
	tail    int // slot of position size-1
	size    int
	maxSize int

	scratch []E
}

// NewRingTree returns an empty RingTree holding up to maxSize values.
func NewRingTree[E comparable](maxSize int) *RingTree[E] {
	checkMaxSize(maxSize)
	n := 2 * maxSize
	return &RingTree[E]{
		slots:   make([]E, n),
		live:    make([]bool, n),
		tree:    newFenwick(n),
		index:   make(map[E][]int),
		maxSize: maxSize,
	}
}

// AddHead implements Cache.
func (t *RingTree[E]) AddHead(v E) (evicted E, ok bool) {
	if t.size == t.maxSize {
		evicted, ok = t.slots[t.tail], true
		t.removeSlot(t.tail)
	}

	s := 0
	if t.size == 0 {
		t.tail = 0
	} else {
		if t.span() == len(t.slots) {
			t.compact()
		}
		s = t.next(t.head)
	}

	t.slots[s] = v
	t.live[s] = true
	t.tree.add(s, 1)
	t.index[v] = append(t.index[v], s)
	t.head = s
	t.size++
	return evicted, ok
}

// RemovePosition implements Cache.
func (t *RingTree[E]) RemovePosition(pos int) (v E, ok bool) {
	if pos < 0 || pos >= t.size {
		return v, false
	}
	s := t.slotAt(pos)
	v = t.slots[s]
	t.removeSlot(s)
	return v, true
}

// RemoveElement implements Cache.
func (t *RingTree[E]) RemoveElement(v E) int {
	slots := t.index[v]
	if len(slots) == 0 {
		return -1
	}
	s := slots[len(slots)-1]
	pos := t.positionOf(s)
	t.removeSlot(s)
	return pos
}

// IndexOf implements Cache.
func (t *RingTree[E]) IndexOf(v E) int {
	slots := t.index[v]
	if len(slots) == 0 {
		return -1
	}
	return t.positionOf(slots[len(slots)-1])
}

// Contains implements Cache.
func (t *RingTree[E]) Contains(v E) bool {
	return len(t.index[v]) > 0
}

// Size implements Cache.
func (t *RingTree[E]) Size() int { return t.size }

// MaxSize implements Cache.
func (t *RingTree[E]) MaxSize() int { return t.maxSize }

// All implements Cache.
func (t *RingTree[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		s := t.head
		for seen := 0; seen < t.size; s = t.prev(s) {
			if !t.live[s] {
				continue
			}
			if !yield(t.slots[s]) {
				return
			}
			seen++
		}
	}
}

// String implements Cache.
func (t *RingTree[E]) String() string {
	return format(t.All())
}

func (t *RingTree[E]) next(s int) int {
	if s++; s == len(t.slots) {
		return 0
	}
	return s
}

func (t *RingTree[E]) prev(s int) int {
	if s == 0 {
		return len(t.slots) - 1
	}
	return s - 1
}

// span returns the number of slots from tail to head inclusive, holes included.
func (t *RingTree[E]) span() int {
	d := t.head - t.tail
	if d < 0 {
		d += len(t.slots)
	}
	return d + 1
}

// slotAt returns the slot holding position pos.
// Walking back from head, positions first cover the live slots at or below head, then wrap to the top of the arena.
func (t *RingTree[E]) slotAt(pos int) int {
	below := t.tree.prefix(t.head)
	if pos < below {
		return t.tree.find(below - pos)
	}
	return t.tree.find(t.size + below - pos)
}

// positionOf returns the position of the live slot s; the number of live slots newer than it.
func (t *RingTree[E]) positionOf(s int) int {
	below := t.tree.prefix(t.head)
	if s <= t.head {
		return below - t.tree.prefix(s)
	}
	return below + t.size - t.tree.prefix(s)
}

// removeSlot clears the live slot s and moves head and tail if they pointed at it.
func (t *RingTree[E]) removeSlot(s int) {
	var zero E
	v := t.slots[s]
	t.slots[s] = zero
	t.live[s] = false
	t.tree.add(s, -1)
	t.size--
	t.unindex(v, s)

	if t.size == 0 {
		t.head, t.tail = 0, 0
		return
	}

	if s == t.head {
		// the newest remaining value is the highest live slot below s, or failing that the highest live slot overall.
		if below := t.tree.prefix(s); below > 0 {
			t.head = t.tree.find(below)
		} else {
			t.head = t.tree.find(t.size)
		}
	}
	if s == t.tail {
		t.tail = t.slotAt(t.size - 1)
	}
}

func (t *RingTree[E]) unindex(v E, s int) {
	slots := t.index[v]
	// promotions remove the newest copy, so search from the back.
	for i := len(slots) - 1; i >= 0; i-- {
		if slots[i] == s {
			slots = slices.Delete(slots, i, i+1)
			break
		}
	}
	if len(slots) == 0 {
		delete(t.index, v)
		return
	}
	t.index[v] = slots
}

// compact packs the live values, oldest first, into the start of the arena.
func (t *RingTree[E]) compact() {
	t.scratch = t.scratch[:0]
	for s, n := t.tail, 0; n < t.size; s = t.next(s) {
		if t.live[s] {
			t.scratch = append(t.scratch, t.slots[s])
			n++
		}
	}

	clear(t.slots)
	clear(t.live)
	clear(t.index)
	for s, v := range t.scratch {
		t.slots[s] = v
		t.live[s] = true
		t.index[v] = append(t.index[v], s)
	}
	t.tree.build(t.live)

	clear(t.scratch)
	t.tail = 0
	t.head = t.size - 1
}
