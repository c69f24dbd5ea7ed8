package engine

import (
	"fmt"
	"iter"
	"math/bits"
)

const maxBitSetWidth = 64

// BitSet is a set of small integers with a fixed width chosen at
// construction. Adding a member outside the width panics instead of being
// silently truncated. BitSet values are comparable with ==.
type BitSet struct {
	width uint8
	bits  uint64
}

// NewBitSet returns an empty set accepting members in [0, width).
func NewBitSet(width int) BitSet {
	if width < 0 || width > maxBitSetWidth {
		panic(fmt.Sprintf("engine: bit set width %d outside [0, %d]", width, maxBitSetWidth))
	}
	return BitSet{width: uint8(width)}
}

// Width returns the number of addressable members.
func (b BitSet) Width() int {
	return int(b.width)
}

// Add inserts i.
func (b *BitSet) Add(i int) {
	b.check(i)
	b.bits |= 1 << uint(i)
}

// Has reports whether i is a member.
func (b BitSet) Has(i int) bool {
	if i < 0 || i >= int(b.width) {
		return false
	}
	return b.bits&(1<<uint(i)) != 0
}

// Empty reports whether the set has no members.
func (b BitSet) Empty() bool {
	return b.bits == 0
}

// Len returns the number of members.
func (b BitSet) Len() int {
	return bits.OnesCount64(b.bits)
}

// Union adds every member of o. Both sets must have the same width.
func (b *BitSet) Union(o BitSet) {
	if o.width != b.width {
		panic(fmt.Sprintf("engine: union of bit sets with widths %d and %d", b.width, o.width))
	}
	b.bits |= o.bits
}

// All yields the members in ascending order.
func (b BitSet) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for rest := b.bits; rest != 0; rest &= rest - 1 {
			if !yield(bits.TrailingZeros64(rest)) {
				return
			}
		}
	}
}

// Uint64 returns the raw bit pattern.
func (b BitSet) Uint64() uint64 {
	return b.bits
}

func (b BitSet) check(i int) {
	if i < 0 || i >= int(b.width) {
		panic(fmt.Sprintf("engine: bit %d outside set of width %d", i, b.width))
	}
}
