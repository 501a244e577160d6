// Package attr defines the normalized gene-call record shared by every
// stage of the prediction pipeline.
package attr

import "sort"

// Method identifies the prediction method that produced a call.
type Method int

// Prediction methods.
const (
	MethodUnknown Method = iota
	MethodExonerate
	MethodGeneMark
	MethodTransDecoder
)

var methodNames = map[Method]string{
	MethodExonerate:    "Exonerate",
	MethodGeneMark:     "GeneMark",
	MethodTransDecoder: "TransDecoder",
}

// String returns the method tag used in annotation strings.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "Unknown"
}

// ParseMethod returns the Method for an annotation tag.
func ParseMethod(s string) (Method, bool) {
	for m, name := range methodNames {
		if name == s {
			return m, true
		}
	}
	return MethodUnknown, false
}

// Origin records where a call came from. ID is the call's identifier in
// the method's own namespace: the sequence store key for GeneMark and
// TransDecoder, the query protein for Exonerate.
type Origin struct {
	Method Method
	ID     string
}

// Record is a normalized gene call.
type Record struct {
	ContigID     string
	GeneID       string
	Start        int64 // 1-based, inclusive
	End          int64 // 1-based, inclusive, >= Start
	Origin       Origin
	InternalStop bool
	Introns      int
	SourceTag    string
}

// Key identifies a record within one merge: gene ids are only unique
// inside their method's namespace.
type Key struct {
	Method Method
	ID     string
}

// Key returns the record's merge key.
func (r Record) Key() Key {
	return Key{Method: r.Origin.Method, ID: r.GeneID}
}

// Len returns the number of bases the record spans.
func (r Record) Len() int64 {
	return r.End - r.Start + 1
}

// IntronCount converts an exon count to an intron count, floored at 0.
func IntronCount(exons int) int {
	if exons < 1 {
		return 0
	}
	return exons - 1
}

func less(a, b Record) bool {
	if a.ContigID != b.ContigID {
		return a.ContigID < b.ContigID
	}
	return a.Start < b.Start
}

// Sort orders records by (ContigID, Start), keeping the input order of
// records that compare equal.
func Sort(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return less(records[i], records[j])
	})
}

// IsSorted reports whether records are ordered by (ContigID, Start).
func IsSorted(records []Record) bool {
	return sort.SliceIsSorted(records, func(i, j int) bool {
		return less(records[i], records[j])
	})
}

// ByContig groups records by contig, preserving their order.
func ByContig(records []Record) map[string][]Record {
	groups := make(map[string][]Record)
	for _, r := range records {
		groups[r.ContigID] = append(groups[r.ContigID], r)
	}
	return groups
}
