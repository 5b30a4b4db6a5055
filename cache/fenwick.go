package cache

import "math/bits"

// fenwick is a binary indexed tree counting live slots.
// Indexes passed to its methods are 0-based; the tree itself is stored 1-based.
type fenwick struct {
	tree []int32
	step int // largest power of two not above len(tree)-1
}

func newFenwick(n int) fenwick {
	return fenwick{
		tree: make([]int32, n+1),
		step: 1 << (bits.Len(uint(n)) - 1),
	}
}

// add adds delta to the count at i.
func (f *fenwick) add(i int, delta int32) {
	for i++; i < len(f.tree); i += i & -i {
		f.tree[i] += delta
	}
}

// prefix returns the sum of the counts at 0 through i inclusive.
func (f *fenwick) prefix(i int) int {
	var sum int32
	for i++; i > 0; i -= i & -i {
		sum += f.tree[i]
	}
	return int(sum)
}

// find returns the smallest i for which prefix(i) >= k.
// k must be between 1 and prefix(n-1).
func (f *fenwick) find(k int) int {
	pos := 0
	rem := int32(k)
	for step := f.step; step > 0; step >>= 1 {
		if next := pos + step; next < len(f.tree) && f.tree[next] < rem {
			pos = next
			rem -= f.tree[next]
		}
	}
	return pos
}

// build replaces the counts with 1 for every set entry in live, in linear time.
func (f *fenwick) build(live []bool) {
	clear(f.tree)
	for i := 1; i < len(f.tree); i++ {
		if live[i-1] {
			f.tree[i]++
		}
		if j := i + i&-i; j < len(f.tree) {
			f.tree[j] += f.tree[i]
		}
	}
}
