package normalize

import (
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/io/featio"
	"github.com/biogo/biogo/io/featio/gff"

	"github.com/inodb/panguess/internal/attr"
	"github.com/inodb/panguess/internal/pairwise"
)

// GeneMark converts a GeneMark-ES GTF into attribute records.
//
// Rows of one gene are contiguous and share the gene_id attribute; a
// gene closes when the identifier changes or the input ends. Comment,
// metadata and empty lines are skipped. A row with missing or
// unparseable columns, or without a gene_id, is an error.
func GeneMark(r io.Reader, tag string) ([]attr.Record, error) {
	// The reader drops a final line that has no newline.
	sc := featio.NewScanner(gff.NewReader(io.MultiReader(r, strings.NewReader("\n"))))

	var features []*gff.Feature
	for sc.Next() {
		f, ok := sc.Feat().(*gff.Feature)
		if !ok {
			continue
		}
		features = append(features, f)
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("read GeneMark GTF: %w", err)
	}

	var (
		records []attr.Record
		gene    span
	)
	for p := range pairwise.Slice(features) {
		id := geneID(p.Cur)
		if id == "" {
			return nil, fmt.Errorf("feature %v: missing gene_id", p.Cur)
		}

		if p.Cur.Feature == "exon" {
			gene.exons++
		}
		gene.add(int64(p.Cur.FeatStart)+1, int64(p.Cur.FeatEnd))

		if p.HasNext && geneID(p.Next) == id {
			continue
		}

		contig, _, _ := strings.Cut(p.Cur.SeqName, " ")
		records = append(records, attr.Record{
			ContigID:  contig,
			GeneID:    id,
			Start:     gene.start,
			End:       gene.end,
			Origin:    attr.Origin{Method: attr.MethodGeneMark, ID: id},
			Introns:   attr.IntronCount(gene.exons),
			SourceTag: tag,
		})
		gene = span{}
	}

	attr.Sort(records)
	return records, nil
}

// geneID returns the unquoted gene_id attribute of f.
func geneID(f *gff.Feature) string {
	return strings.Trim(f.FeatAttributes.Get("gene_id"), `"`)
}
