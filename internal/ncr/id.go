// Package ncr carves the non-coding regions of a genome around a set of
// gene calls.
package ncr

import (
	"fmt"
	"strconv"
	"strings"
)

// sep separates the contig from the region bounds in a synthetic id.
const sep = "_NCR_"

// FormatID returns the synthetic sequence id for a region of contig:
// <contig>_NCR_<start>_<end>, with 1-based inclusive bounds.
func FormatID(contig string, start, end int64) string {
	return fmt.Sprintf("%s%s%d_%d", contig, sep, start, end)
}

// ParseID recovers the contig and region bounds from a synthetic id.
// The last occurrence of _NCR_ is used, so contig names may contain
// underscores.
func ParseID(id string) (contig string, start, end int64, err error) {
	idx := strings.LastIndex(id, sep)
	if idx <= 0 {
		return "", 0, 0, fmt.Errorf("synthetic id %q: missing %s marker", id, sep)
	}
	contig = id[:idx]

	bounds := strings.Split(id[idx+len(sep):], "_")
	if len(bounds) != 2 {
		return "", 0, 0, fmt.Errorf("synthetic id %q: expected start_end bounds", id)
	}
	start, err = strconv.ParseInt(bounds[0], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("synthetic id %q: parse start: %w", id, err)
	}
	end, err = strconv.ParseInt(bounds[1], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("synthetic id %q: parse end: %w", id, err)
	}
	return contig, start, end, nil
}

// Rebase converts a 1-based coordinate local to a region starting at
// regionStart into an absolute genome coordinate.
func Rebase(regionStart, relative int64) int64 {
	return regionStart + relative - 1
}
