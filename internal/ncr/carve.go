package ncr

import (
	"fmt"
	"io"
	"slices"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/inodb/panguess/internal/attr"
	"github.com/inodb/panguess/internal/pairwise"
)

// Region is an uncalled interval of a contig.
type Region struct {
	ContigID string
	Start    int64 // 1-based, inclusive
	End      int64 // 1-based, inclusive
	Seq      *linear.Seq
}

// ID returns the region's synthetic sequence id.
func (r Region) ID() string {
	return FormatID(r.ContigID, r.Start, r.End)
}

// Carve returns the non-coding regions of every contig. Records are
// matched to contigs by id; a contig without records is returned whole.
func Carve(contigs []*linear.Seq, records []attr.Record) []Region {
	byContig := attr.ByContig(records)

	var regions []Region
	for _, c := range contigs {
		regions = append(regions, carveContig(c, byContig[c.Name()])...)
	}
	return regions
}

// CarveFASTA streams genome sequences from r and writes the FASTA
// records of their non-coding regions to w. It returns the number of
// regions written.
func CarveFASTA(r io.Reader, records []attr.Record, w io.Writer) (int, error) {
	byContig := attr.ByContig(records)

	fw := fasta.NewWriter(w, 60)
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA)))

	n := 0
	for sc.Next() {
		contig := sc.Seq().(*linear.Seq)
		for _, region := range carveContig(contig, byContig[contig.Name()]) {
			if _, err := fw.Write(region.Seq); err != nil {
				return n, fmt.Errorf("write region %s: %w", region.ID(), err)
			}
			n++
		}
	}
	if err := sc.Error(); err != nil {
		return n, fmt.Errorf("read genome: %w", err)
	}
	return n, nil
}

// carveContig walks the calls on one contig and collects the gaps
// before the first call, between consecutive calls and after the last
// call. The running maximum end keeps gaps clear of overlapping calls.
func carveContig(contig *linear.Seq, calls []attr.Record) []Region {
	length := int64(contig.Len())

	var regions []Region
	add := func(start, end int64) {
		start = max(start, 1)
		end = min(end, length)
		if start > end {
			return
		}
		regions = append(regions, Region{
			ContigID: contig.Name(),
			Start:    start,
			End:      end,
			Seq:      linear.NewSeq(FormatID(contig.Name(), start, end), contig.Seq[start-1:end], contig.Alpha),
		})
	}

	if len(calls) == 0 {
		add(1, length)
		return regions
	}

	if !attr.IsSorted(calls) {
		calls = slices.Clone(calls)
		attr.Sort(calls)
	}

	var maxEnd int64
	for p := range pairwise.Slice(calls) {
		if p.First {
			add(1, p.Cur.Start-1)
		}
		maxEnd = max(maxEnd, p.Cur.End)
		if p.HasNext {
			add(maxEnd+1, p.Next.Start-1)
		} else {
			add(maxEnd+1, length)
		}
	}
	return regions
}
