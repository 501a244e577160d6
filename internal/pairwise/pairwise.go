// Package pairwise provides a single-pass look-ahead sweep over a sequence.
package pairwise

import (
	"iter"
	"slices"
)

// Pair is one step of a look-ahead sweep: the current element and,
// when HasNext is set, the element that follows it.
type Pair[T any] struct {
	Cur     T
	Next    T
	HasNext bool
	First   bool // Cur is the first element of the sequence
}

// Last reports whether Cur is the final element of the sequence.
func (p Pair[T]) Last() bool {
	return !p.HasNext
}

// All yields a Pair for every element of seq. The final pair has
// HasNext unset. The returned sequence consumes seq once and is not
// restartable when seq is not.
func All[T any](seq iter.Seq[T]) iter.Seq[Pair[T]] {
	return func(yield func(Pair[T]) bool) {
		var cur T
		have, first := false, true
		for v := range seq {
			if have {
				if !yield(Pair[T]{Cur: cur, Next: v, HasNext: true, First: first}) {
					return
				}
				first = false
			}
			cur, have = v, true
		}
		if have {
			yield(Pair[T]{Cur: cur, First: first})
		}
	}
}

// Slice is All over the elements of s.
func Slice[T any](s []T) iter.Seq[Pair[T]] {
	return All(slices.Values(s))
}
