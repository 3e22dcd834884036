package syntax

import "math/bits"

// KindSet is a bitset of node kinds. Category membership checks run on
// every node the scoring passes touch, so sets are built once up front and
// tested with a single mask.
type KindSet uint64

// NewKindSet builds a set containing the given kinds.
func NewKindSet(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= 1 << k
	}

	return s
}

// Contains reports whether k is in the set.
func (s KindSet) Contains(k Kind) bool {
	return s&(1<<k) != 0
}

// Union returns the set of kinds present in either operand.
func (s KindSet) Union(other KindSet) KindSet {
	return s | other
}

// Without returns the set with the given kinds removed.
func (s KindSet) Without(kinds ...Kind) KindSet {
	out := s
	for _, k := range kinds {
		out &^= 1 << k
	}

	return out
}

// Len returns the number of kinds in the set.
func (s KindSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Kinds returns the members of the set in ascending kind order.
func (s KindSet) Kinds() []Kind {
	out := make([]Kind, 0, s.Len())

	for k := Kind(0); k < kindCount; k++ {
		if s.Contains(k) {
			out = append(out, k)
		}
	}

	return out
}
