package exonerate

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// mockAligner hits every third query, fails every fifth and misses
// the rest.
type mockAligner struct {
	calls atomic.Int64
}

func (m *mockAligner) Align(q Query) (*Gene, error) {
	m.calls.Add(1)
	switch {
	case q.Length%5 == 0:
		return nil, errors.New("exit status 1")
	case q.Length%3 == 0:
		return &Gene{ID: q.ID, Ref: q.ID, ContigID: "chr1", Start: int64(q.Length), End: int64(q.Length + 10)}, nil
	default:
		return nil, nil
	}
}

func makeQueries(n int) []Query {
	queries := make([]Query, n)
	for i := range n {
		queries[i] = Query{ID: fmt.Sprintf("q%d", i+1), Length: i + 1}
	}
	return queries
}

func TestPool_Run(t *testing.T) {
	aligner := &mockAligner{}
	core, logs := observer.New(zap.WarnLevel)

	pool := NewPool(aligner, 4)
	pool.SetLogger(zap.New(core))

	genes := pool.Run(makeQueries(30))

	assert.Equal(t, int64(30), aligner.calls.Load())

	// Multiples of 3 that are not multiples of 5.
	var want []string
	for i := 1; i <= 30; i++ {
		if i%3 == 0 && i%5 != 0 {
			want = append(want, fmt.Sprintf("q%d", i))
		}
	}
	var got []string
	for _, g := range genes {
		got = append(got, g.ID)
	}
	assert.Equal(t, want, got)

	assert.Equal(t, 6, logs.FilterMessage("alignment failed").Len())
}

func TestPool_SingleWorker(t *testing.T) {
	genes := NewPool(&mockAligner{}, 1).Run(makeQueries(9))
	require.Len(t, genes, 3)
	assert.Equal(t, "q3", genes[0].ID)
	assert.Equal(t, "q9", genes[2].ID)
}

func TestPool_Empty(t *testing.T) {
	genes := NewPool(&mockAligner{}, 2).Run(nil)
	assert.Empty(t, genes)
}

func TestNewPool_DefaultWorkers(t *testing.T) {
	p := NewPool(&mockAligner{}, 0)
	assert.Equal(t, DefaultWorkers(), p.workers)
	assert.GreaterOrEqual(t, p.workers, 1)
}
