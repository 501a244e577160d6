package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/panguess/internal/attr"
	"github.com/inodb/panguess/internal/exonerate"
)

// gtf joins tab-separated columns of each row into GTF lines.
func gtf(rows ...[]string) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strings.Join(r, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

func gmRow(contig, feature, start, end, id string) []string {
	return []string{contig, "GeneMark.hmm", feature, start, end, ".", "+", "0",
		`gene_id "` + id + `"; transcript_id "` + id + `";`}
}

func checkRecords(t *testing.T, records []attr.Record) {
	t.Helper()
	assert.True(t, attr.IsSorted(records))
	for _, r := range records {
		assert.LessOrEqual(t, r.Start, r.End, r.GeneID)
		assert.GreaterOrEqual(t, r.Introns, 0, r.GeneID)
	}
}

func TestGeneMark_GroupsByIdentity(t *testing.T) {
	in := gtf(
		gmRow("chr1", "exon", "300", "350", "geneA"),
		gmRow("chr1", "CDS", "120", "180", "geneA"),
		gmRow("chr1", "exon", "100", "200", "geneA"),
		gmRow("chr1", "exon", "900", "1000", "geneB"),
	)

	records, err := GeneMark(strings.NewReader(in), "t1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	checkRecords(t, records)

	a := records[0]
	assert.Equal(t, attr.Record{
		ContigID:  "chr1",
		GeneID:    "geneA",
		Start:     100,
		End:       350,
		Origin:    attr.Origin{Method: attr.MethodGeneMark, ID: "geneA"},
		Introns:   1,
		SourceTag: "t1",
	}, a)
	assert.Equal(t, "GeneMark=geneA;IS=False;Introns=1", a.Annotation())

	assert.Equal(t, "geneB", records[1].GeneID)
	assert.Equal(t, 0, records[1].Introns)
}

func TestGeneMark_SkipsCommentsAndTrimsContig(t *testing.T) {
	in := "##gff-version 2\n# GeneMark-ES\n\n" + gtf(
		gmRow("scaffold_2 len=5000", "CDS", "40", "10", "7_g"),
		gmRow("chr1", "exon", "5", "9", "3_g"),
	)

	records, err := GeneMark(strings.NewReader(in), "t1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	checkRecords(t, records)

	assert.Equal(t, "chr1", records[0].ContigID)
	assert.Equal(t, "scaffold_2", records[1].ContigID)
	assert.Equal(t, int64(10), records[1].Start)
	assert.Equal(t, int64(40), records[1].End)
}

func TestGeneMark_NoTrailingNewline(t *testing.T) {
	in := gtf(gmRow("chr1", "exon", "100", "200", "1_g")) +
		strings.Join(gmRow("chr1", "exon", "300", "420", "1_g"), "\t")

	records, err := GeneMark(strings.NewReader(in), "t1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(420), records[0].End)
	assert.Equal(t, 1, records[0].Introns)
}

func TestGeneMark_CRLF(t *testing.T) {
	in := strings.ReplaceAll(gtf(
		gmRow("chr1", "exon", "100", "200", "1_g"),
		gmRow("chr1", "exon", "300", "420", "2_g"),
	), "\n", "\r\n")

	records, err := GeneMark(strings.NewReader(in), "t1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2_g", records[1].GeneID)
}

func TestGeneMark_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short row", "chr1\tGeneMark.hmm\texon\t1\t2\n", "missing fields"},
		{"bad start", gtf(gmRow("chr1", "exon", "x", "2", "g")), `parsing "x"`},
		{"bad end", gtf(gmRow("chr1", "exon", "1", "y", "g")), `parsing "y"`},
		{"no attributes", "chr1\tGeneMark.hmm\texon\t1\t2\t.\t+\t0\n", "missing gene_id"},
		{"missing id", "chr1\tGeneMark.hmm\texon\t1\t2\t.\t+\t0\ttranscript_id \"t\";\n", "missing gene_id"},
		{"empty id", "chr1\tGeneMark.hmm\texon\t1\t2\t.\t+\t0\tgene_id \"\";\n", "missing gene_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GeneMark(strings.NewReader(tt.in), "t1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func tdRow(seq, feature, start, end, attrs string) []string {
	return []string{seq, "transdecoder", feature, start, end, ".", "+", ".", attrs}
}

func TestTransDecoder_Rebase(t *testing.T) {
	in := gtf(
		tdRow("chr3_NCR_5000_6000", "gene", "100", "400", "ID=GENE.1;Name=ORF"),
		tdRow("chr3_NCR_5000_6000", "mRNA", "100", "400", "ID=Gene.1;Parent=GENE.1"),
		tdRow("chr3_NCR_5000_6000", "exon", "100", "400", "ID=Gene.1.exon1;Parent=Gene.1"),
		tdRow("chr3_NCR_5000_6000", "CDS", "120", "340", "ID=cds.Gene.1;Parent=Gene.1"),
	)

	records, err := TransDecoder(strings.NewReader(in), "t1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, attr.Record{
		ContigID:  "chr3",
		GeneID:    "Gene.1",
		Start:     5119,
		End:       5339,
		Origin:    attr.Origin{Method: attr.MethodTransDecoder, ID: "Gene.1"},
		SourceTag: "t1",
	}, records[0])
}

func TestTransDecoder_BlankLineGroups(t *testing.T) {
	in := gtf(
		tdRow("chr2_NCR_1_500", "exon", "10", "50", "Parent=Gene.2"),
		tdRow("chr2_NCR_1_500", "exon", "80", "120", "Parent=Gene.2"),
		tdRow("chr2_NCR_1_500", "CDS", "10", "50", "Parent=Gene.2"),
		tdRow("chr2_NCR_1_500", "CDS", "80", "120", "Parent=Gene.2"),
	) + "\n" + "# comment inside a group\n" + gtf(
		tdRow("chr1_NCR_201_900", "exon", "5", "30", "Parent=Gene.3"),
		[]string{"#", "stray"},
		tdRow("chr1_NCR_201_900", "CDS", "5", "30", "Parent=Gene.3"),
	) + "\n\n" + gtf(
		tdRow("chr1_NCR_201_900", "gene", "1", "9", "ID=GENE.4"),
	)

	records, err := TransDecoder(strings.NewReader(in), "t1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	checkRecords(t, records)

	assert.Equal(t, "Gene.3", records[0].GeneID)
	assert.Equal(t, "chr1", records[0].ContigID)
	assert.Equal(t, int64(205), records[0].Start)
	assert.Equal(t, int64(230), records[0].End)
	assert.Equal(t, 0, records[0].Introns)

	assert.Equal(t, "Gene.2", records[1].GeneID)
	assert.Equal(t, int64(10), records[1].Start)
	assert.Equal(t, int64(120), records[1].End)
	assert.Equal(t, 1, records[1].Introns)
}

func TestTransDecoder_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bad region id", gtf(tdRow("chr1", "CDS", "1", "9", "Parent=Gene.1")), "line 1"},
		{"bad coordinates", gtf(tdRow("chr1_NCR_1_90", "CDS", "a", "9", "Parent=Gene.1")), "parse start"},
		{"no parent", gtf(tdRow("chr1_NCR_1_90", "CDS", "1", "9", "ID=cds.Gene.1")), "Parent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TransDecoder(strings.NewReader(tt.in), "t1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExonerate(t *testing.T) {
	genes := []*exonerate.Gene{
		{ID: "p2", ContigID: "chr2", Start: 10, End: 90, InternalStop: true, Introns: 2},
		{ID: "p1", ContigID: "chr1", Start: 500, End: 900},
	}

	records := Exonerate(genes, "t1")
	require.Len(t, records, 2)
	checkRecords(t, records)

	assert.Equal(t, "p1", records[0].GeneID)
	assert.Equal(t, attr.Record{
		ContigID:     "chr2",
		GeneID:       "p2",
		Start:        10,
		End:          90,
		Origin:       attr.Origin{Method: attr.MethodExonerate, ID: "p2"},
		InternalStop: true,
		Introns:      2,
		SourceTag:    "t1",
	}, records[1])
	assert.Equal(t, "Exonerate=p2;IS=True;Introns=2", records[1].Annotation())
}
