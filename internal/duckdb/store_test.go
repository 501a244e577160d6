package duckdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/panguess/internal/attr"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testCalls() []attr.Record {
	return []attr.Record{
		{ContigID: "chr1", GeneID: "t1|p1", Start: 10, End: 99,
			Origin: attr.Origin{Method: attr.MethodExonerate, ID: "p1"}, InternalStop: true, Introns: 2, SourceTag: "t1"},
		{ContigID: "chr1", GeneID: "t1|chr1_200_299", Start: 200, End: 299,
			Origin: attr.Origin{Method: attr.MethodGeneMark, ID: "1_g"}, Introns: 0, SourceTag: "t1"},
		{ContigID: "chr2", GeneID: "t1|chr2_1_50", Start: 1, End: 50,
			Origin: attr.Origin{Method: attr.MethodGeneMark, ID: "2_g"}, Introns: 4, SourceTag: "t1"},
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.db.Ping())
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "calls.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteCalls(testCalls()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.CountCalls()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestWriteCalls(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteCalls(nil))
	require.NoError(t, s.WriteCalls(testCalls()))

	n, err := s.CountCalls()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	var method, native string
	var introns int64
	var stop bool
	err = s.db.QueryRow(`SELECT method, native_id, introns, internal_stop
		FROM gene_calls WHERE gene_id = ?`, "t1|p1").Scan(&method, &native, &introns, &stop)
	require.NoError(t, err)
	assert.Equal(t, "Exonerate", method)
	assert.Equal(t, "p1", native)
	assert.Equal(t, int64(2), introns)
	assert.True(t, stop)
}

func TestMethodSummary(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteCalls(testCalls()))

	stats, err := s.MethodSummary()
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, MethodStats{
		Method: "Exonerate", Calls: 1, InternalStops: 1, MeanIntrons: 2, MeanLength: 90,
	}, stats[0])
	assert.Equal(t, MethodStats{
		Method: "GeneMark", Calls: 2, InternalStops: 0, MeanIntrons: 2, MeanLength: 75,
	}, stats[1])
}

func TestContigSummary(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteCalls(testCalls()))

	stats, err := s.ContigSummary()
	require.NoError(t, err)
	assert.Equal(t, []ContigStats{
		{ContigID: "chr1", Calls: 2, CoveredBases: 190},
		{ContigID: "chr2", Calls: 1, CoveredBases: 50},
	}, stats)
}

func TestClearCalls(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteCalls(testCalls()))
	require.NoError(t, s.ClearCalls())

	n, err := s.CountCalls()
	require.NoError(t, err)
	assert.Zero(t, n)

	stats, err := s.MethodSummary()
	require.NoError(t, err)
	assert.Empty(t, stats)
}
