package normalize

import (
	"github.com/inodb/panguess/internal/attr"
	"github.com/inodb/panguess/internal/exonerate"
)

// Exonerate converts alignment results into attribute records, one per
// gene.
func Exonerate(genes []*exonerate.Gene, tag string) []attr.Record {
	records := make([]attr.Record, 0, len(genes))
	for _, g := range genes {
		records = append(records, attr.Record{
			ContigID:     g.ContigID,
			GeneID:       g.ID,
			Start:        g.Start,
			End:          g.End,
			Origin:       attr.Origin{Method: attr.MethodExonerate, ID: g.ID},
			InternalStop: g.InternalStop,
			Introns:      g.Introns,
			SourceTag:    tag,
		})
	}
	attr.Sort(records)
	return records
}
