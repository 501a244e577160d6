// Package merge resolves overlapping gene calls from different
// prediction methods into one non-redundant set.
package merge

import (
	"github.com/biogo/store/interval"

	"github.com/inodb/panguess/internal/attr"
	"github.com/inodb/panguess/internal/pairwise"
)

// Strategy selects how overlaps are detected.
type Strategy int

const (
	// Adjacent compares each call only with the next call in sorted
	// order and drops the later one when they overlap. A long call can
	// hide an overlap between itself and a call beyond its immediate
	// neighbour, so merging the result again can remove more calls.
	Adjacent Strategy = iota

	// Sweep keeps a call only if it overlaps no call kept before it.
	// Its output contains no overlaps and is stable under re-merging.
	Sweep
)

func (s Strategy) String() string {
	switch s {
	case Adjacent:
		return "adjacent"
	case Sweep:
		return "sweep"
	default:
		return "unknown"
	}
}

type options struct {
	strategy Strategy
}

// Option configures Merge.
type Option func(*options)

// WithStrategy sets the overlap strategy. The default is Adjacent.
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// Result is the outcome of a merge.
type Result struct {
	Records []attr.Record // Sorted by contig and start
	Removed int
}

// Overlap reports whether a and b lie on the same contig and the start
// of one falls within the closed span of the other.
func Overlap(a, b attr.Record) bool {
	if a.ContigID != b.ContigID {
		return false
	}
	return within(a.Start, b) || within(b.Start, a)
}

func within(pos int64, r attr.Record) bool {
	return r.Start <= pos && pos <= r.End
}

// Merge combines two call sets and removes overlapping calls. The call
// that starts first wins; ties keep the call from first. Neither input
// is modified.
func Merge(first, second []attr.Record, opts ...Option) Result {
	o := options{strategy: Adjacent}
	for _, opt := range opts {
		opt(&o)
	}

	all := make([]attr.Record, 0, len(first)+len(second))
	all = append(all, first...)
	all = append(all, second...)
	attr.Sort(all)

	var kept []attr.Record
	switch o.strategy {
	case Sweep:
		kept = sweep(all)
	default:
		kept = adjacent(all)
	}
	return Result{Records: kept, Removed: len(all) - len(kept)}
}

// adjacent drops every call sharing the key of a later call in an
// overlapping neighbour pair.
func adjacent(all []attr.Record) []attr.Record {
	removed := make(map[attr.Key]bool)
	for p := range pairwise.Slice(all) {
		if p.HasNext && Overlap(p.Cur, p.Next) {
			removed[p.Next.Key()] = true
		}
	}
	if len(removed) == 0 {
		return all
	}

	kept := make([]attr.Record, 0, len(all)-len(removed))
	for _, r := range all {
		if !removed[r.Key()] {
			kept = append(kept, r)
		}
	}
	return kept
}

// sweep keeps one interval tree of kept calls per contig.
func sweep(all []attr.Record) []attr.Record {
	trees := make(map[string]*interval.IntTree)
	kept := make([]attr.Record, 0, len(all))
	for i, r := range all {
		t, ok := trees[r.ContigID]
		if !ok {
			t = &interval.IntTree{}
			trees[r.ContigID] = t
		}
		iv := callInterval{Record: r, id: uintptr(i + 1)}
		if len(t.Get(iv)) != 0 {
			continue
		}
		// Ranges are queried between inserts, so no fast insertion.
		if err := t.Insert(iv, false); err != nil {
			// Only reachable with start > end, which normalized
			// records never have.
			panic(err)
		}
		kept = append(kept, r)
	}
	return kept
}

// callInterval indexes a call as a half-open, 0-based interval.
type callInterval struct {
	attr.Record
	id uintptr
}

func (c callInterval) ID() uintptr { return c.id }
func (c callInterval) Range() interval.IntRange {
	return interval.IntRange{Start: int(c.Start - 1), End: int(c.End)}
}
func (c callInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return int(c.End) > b.Start && int(c.Start-1) < b.End
}
