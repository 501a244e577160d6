package exonerate

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

// Aligner aligns one query protein against the genome.
// A nil gene with a nil error means the query had no hit.
type Aligner interface {
	Align(q Query) (*Gene, error)
}

// Runner is an Aligner that invokes the exonerate binary.
type Runner struct {
	Cmd     string // Path to exonerate; "exonerate" if empty
	Genome  string
	Percent int
	BestN   int

	// Log receives exonerate's stderr at debug level. May be nil.
	Log *zap.Logger
}

// Align runs exonerate for q and parses its standard output.
func (r Runner) Align(q Query) (*Gene, error) {
	cmd, err := New(r.Cmd, r.Genome, q.Path, r.Percent, r.BestN).BuildCommand()
	if err != nil {
		return nil, err
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if r.Log != nil {
		stderr := &zapio.Writer{Log: r.Log.With(zap.String("query", q.ID)), Level: zapcore.DebugLevel}
		defer stderr.Close()
		cmd.Stderr = stderr
	}
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("exonerate %s: %w", q.ID, err)
	}
	g, err := Parse(&stdout)
	if err != nil {
		return nil, fmt.Errorf("exonerate %s: %w", q.ID, err)
	}
	return g, nil
}

// DefaultWorkers leaves one CPU free for the rest of the pipeline.
func DefaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

// Pool aligns queries concurrently.
type Pool struct {
	aligner Aligner
	workers int
	logger  *zap.Logger
}

// NewPool returns a pool running a over the given number of workers.
// If workers is 0 or less, DefaultWorkers is used.
func NewPool(a Aligner, workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return &Pool{aligner: a, workers: workers, logger: zap.NewNop()}
}

// SetLogger sets the logger for warning and info messages.
func (p *Pool) SetLogger(l *zap.Logger) {
	p.logger = l
}

type workItem struct {
	seq   int
	query Query
}

type workResult struct {
	seq   int
	query Query
	gene  *Gene
	err   error
}

// Run aligns every query and blocks until all have returned. Queries
// without a hit and failed alignments are dropped, failures with a
// warning. Genes are returned in query order.
func (p *Pool) Run(queries []Query) []*Gene {
	items := make(chan workItem)
	results := make(chan workResult, 2*p.workers)

	var wg sync.WaitGroup
	wg.Add(p.workers)

	for range p.workers {
		go func() {
			defer wg.Done()
			for item := range items {
				g, err := p.aligner.Align(item.query)
				results <- workResult{seq: item.seq, query: item.query, gene: g, err: err}
			}
		}()
	}

	go func() {
		for i, q := range queries {
			items <- workItem{seq: i, query: q}
		}
		close(items)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	byQuery := make([]*Gene, len(queries))
	var failed, noHit int
	for r := range results {
		switch {
		case r.err != nil:
			failed++
			p.logger.Warn("alignment failed",
				zap.String("query", r.query.ID),
				zap.Error(r.err))
		case r.gene == nil:
			noHit++
		default:
			byQuery[r.seq] = r.gene
		}
	}

	genes := make([]*Gene, 0, len(queries)-failed-noHit)
	for _, g := range byQuery {
		if g != nil {
			genes = append(genes, g)
		}
	}

	p.logger.Info("exonerate finished",
		zap.Int("queries", len(queries)),
		zap.Int("hits", len(genes)),
		zap.Int("no_hit", noHit),
		zap.Int("failed", failed))
	return genes
}
