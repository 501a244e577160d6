package normalize

import (
	"fmt"
	"io"

	"github.com/inodb/panguess/internal/attr"
	"github.com/inodb/panguess/internal/ncr"
	"github.com/inodb/panguess/internal/pairwise"
)

// TransDecoder converts a TransDecoder GFF3 produced from carved
// non-coding regions into attribute records with absolute genome
// coordinates.
//
// Genes are separated by empty lines. Rows that are not 9-column
// features are comments and are ignored without closing the gene.
// Sequence names are synthetic region ids (see ncr.FormatID) and CDS
// coordinates are rebased onto the genome.
func TransDecoder(r io.Reader, tag string) ([]attr.Record, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	var (
		records []attr.Record
		gene    span
		contig  string
		id      string
	)
	closeGene := func() {
		if gene.seen {
			records = append(records, attr.Record{
				ContigID:  contig,
				GeneID:    id,
				Start:     gene.start,
				End:       gene.end,
				Origin:    attr.Origin{Method: attr.MethodTransDecoder, ID: id},
				Introns:   attr.IntronCount(gene.exons),
				SourceTag: tag,
			})
		}
		gene, contig, id = span{}, "", ""
	}

	for p := range pairwise.Slice(rows) {
		rw := p.Cur
		switch {
		case rw.blank():
			closeGene()
		case !rw.feature():
			// Comment line.
		case rw.featType() == "exon":
			gene.exons++
		case rw.featType() == "CDS":
			c, regionStart, _, err := ncr.ParseID(rw.seqName())
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", rw.line, err)
			}
			start, end, err := rw.coords()
			if err != nil {
				return nil, err
			}
			parent, ok := gffAttribute(rw.attrs(), "Parent")
			if !ok {
				return nil, fmt.Errorf("line %d: CDS without Parent attribute", rw.line)
			}
			gene.add(ncr.Rebase(regionStart, start), ncr.Rebase(regionStart, end))
			contig, id = c, parent
		}

		if p.Last() {
			closeGene()
		}
	}

	attr.Sort(records)
	return records, nil
}
