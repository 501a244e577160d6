package exonerate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		cds  string
		want string
	}{
		{"start and stop", "ATGGGTTAA", "MG*"},
		{"lowercase", "atgtgt", "MC"},
		{"partial codon ignored", "ATGAA", "M"},
		{"unknown codon", "ATGNNN", "MX"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.cds))
		})
	}
}

func TestHasInternalStop(t *testing.T) {
	assert.False(t, hasInternalStop("MG*"))
	assert.False(t, hasInternalStop("MG"))
	assert.True(t, hasInternalStop("M*G*"))
	assert.True(t, hasInternalStop("M*G"))
}

func TestBuildCommand(t *testing.T) {
	cmd, err := New("", "genome.fa", "q1.faa", 90, 1).BuildCommand()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"exonerate",
		"--model", "protein2genome",
		"-t", "genome.fa",
		"-q", "q1.faa",
		"--percent", "90",
		"--bestn", "1",
		"--showalignment", "no",
		"--showvulgar", "no",
		"--showtargetgff", "yes",
		"--ryo", ryoFormat,
	}, cmd.Args)
}

func TestBuildCommand_CustomPath(t *testing.T) {
	cmd, err := New("/opt/bin/exonerate", "genome.fa", "q1.faa", 0, 0).BuildCommand()
	require.NoError(t, err)
	assert.Equal(t, "/opt/bin/exonerate", cmd.Args[0])
	assert.NotContains(t, cmd.Args, "--percent")
	assert.NotContains(t, cmd.Args, "--bestn")
}

func TestBuildCommand_MissingRequired(t *testing.T) {
	_, err := New("", "", "q1.faa", 90, 1).BuildCommand()
	assert.ErrorIs(t, err, ErrMissingRequired)

	_, err = New("", "genome.fa", "", 90, 1).BuildCommand()
	assert.ErrorIs(t, err, ErrMissingRequired)
}

const hitOutput = `Command line: [exonerate --model protein2genome -t genome.fa -q q1.faa]
Hostname: [node1]
# --- START OF GFF DUMP ---
#
#
##gff-version 2
##source-version exonerate:protein2genome:local 2.4.0
#
# seqname source feature start end score strand frame attributes
#
chr1	exonerate:protein2genome:local	gene	100	408	512	+	.	gene_id 1 ; sequence q1
chr1	exonerate:protein2genome:local	cds	100	150	.	+	.
chr1	exonerate:protein2genome:local	exon	100	150	.	+	.	insertions 0 ; deletions 0
chr1	exonerate:protein2genome:local	intron	151	300	.	+	.	intron_id 1
chr1	exonerate:protein2genome:local	cds	301	408	.	+	.
chr1	exonerate:protein2genome:local	exon	301	408	.	+	.	insertions 0 ; deletions 0
chr1	exonerate:protein2genome:local	similarity	100	408	512	+	.	alignment_id 1
# --- END OF GFF DUMP ---
#
RYO	q1	chr1	99	408	atgggttgttaa
-- completed exonerate analysis
`

func TestParse_Hit(t *testing.T) {
	g, err := Parse(strings.NewReader(hitOutput))
	require.NoError(t, err)
	require.NotNil(t, g)

	assert.Equal(t, "q1", g.ID)
	assert.Equal(t, "q1", g.Ref)
	assert.Equal(t, "chr1", g.ContigID)
	assert.Equal(t, int64(100), g.Start)
	assert.Equal(t, int64(408), g.End)
	assert.Equal(t, "ATGGGTTGTTAA", g.Nucleotide)
	assert.Equal(t, "MGC*", g.Called)
	assert.Equal(t, "MGC", g.Protein)
	assert.False(t, g.InternalStop)
	assert.Equal(t, 1, g.Introns)
}

func TestParse_MinusStrand(t *testing.T) {
	out := "RYO\tq2\tchr2\t500\t200\tATGTAATGA\n"
	g, err := Parse(strings.NewReader(out))
	require.NoError(t, err)
	require.NotNil(t, g)

	assert.Equal(t, int64(201), g.Start)
	assert.Equal(t, int64(500), g.End)
	assert.True(t, g.InternalStop)
	assert.Equal(t, 0, g.Introns)
}

func TestParse_FirstHitOnly(t *testing.T) {
	out := hitOutput + strings.ReplaceAll(hitOutput, "RYO\tq1\tchr1", "RYO\tq1\tchr9")
	g, err := Parse(strings.NewReader(out))
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "chr1", g.ContigID)
	assert.Equal(t, 1, g.Introns)
}

func TestParse_NoHit(t *testing.T) {
	out := "Command line: [exonerate]\nHostname: [node1]\n-- completed exonerate analysis\n"
	g, err := Parse(strings.NewReader(out))
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestParse_Malformed(t *testing.T) {
	for _, out := range []string{
		"RYO\tq1\tchr1\t99\n",
		"RYO\tq1\tchr1\tx\t408\tATG\n",
		"RYO\tq1\tchr1\t99\ty\tATG\n",
	} {
		_, err := Parse(strings.NewReader(out))
		assert.Error(t, err, out)
	}
}

func TestSplitReference(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "queries")
	in := ">p1 first\nMKVL\nAA\n>sp/p2\nMG\n"

	queries, err := SplitReference(strings.NewReader(in), dir)
	require.NoError(t, err)
	require.Len(t, queries, 2)

	assert.Equal(t, "p1", queries[0].ID)
	assert.Equal(t, 6, queries[0].Length)
	assert.Equal(t, filepath.Join(dir, "p1.faa"), queries[0].Path)

	assert.Equal(t, "sp/p2", queries[1].ID)
	assert.Equal(t, filepath.Join(dir, "sp_p2.faa"), queries[1].Path)

	data, err := os.ReadFile(queries[1].Path)
	require.NoError(t, err)
	assert.Equal(t, ">sp/p2\nMG\n", string(data))
}

func TestLengthFilter(t *testing.T) {
	queries := []Query{{ID: "a", Length: 100}, {ID: "b", Length: 10}}
	genes := []*Gene{
		{ID: "a", Ref: "a", Called: strings.Repeat("M", 95)},
		{ID: "b", Ref: "b", Called: strings.Repeat("M", 20)},
		{ID: "c", Ref: "c", Called: "M"},
	}

	assert.Equal(t, genes, LengthFilter(genes, queries, 0))

	kept := LengthFilter(genes, queries, 0.9)
	require.Len(t, kept, 1)
	assert.Equal(t, "a", kept[0].ID)

	assert.Len(t, LengthFilter(genes, queries, 0.5), 2)
}
