// Package pipeline runs gene prediction over one genome: Exonerate
// alignments and GeneMark-ES calls are merged, TransDecoder searches the
// remaining non-coding regions, and the merged calls are materialized
// as a gene model set.
package pipeline

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/biogo/biogo/alphabet"
	"go.uber.org/zap"

	"github.com/inodb/panguess/internal/attr"
	"github.com/inodb/panguess/internal/exonerate"
	"github.com/inodb/panguess/internal/materialize"
	"github.com/inodb/panguess/internal/merge"
	"github.com/inodb/panguess/internal/ncr"
	"github.com/inodb/panguess/internal/normalize"
	"github.com/inodb/panguess/internal/seqstore"
	"github.com/inodb/panguess/internal/tools"
)

// Output file names of the external predictors.
const (
	geneMarkGTF      = "genemark.gtf"
	geneMarkProteins = "prot_seq.faa"
	geneMarkNucl     = "nuc_seq.fna"
	ncrFASTA         = "NCR.fna"
	tdGFF            = ncrFASTA + ".transdecoder.gff3"
	tdProteins       = ncrFASTA + ".transdecoder.pep"
	tdNucl           = ncrFASTA + ".transdecoder.cds"
)

// RunFunc runs an external command in dir.
type RunFunc func(cmd *exec.Cmd, dir string, logger *zap.Logger) error

// Pipeline runs the prediction stages for one Config.
type Pipeline struct {
	cfg     Config
	logger  *zap.Logger
	metrics *Metrics
	run     RunFunc
	aligner exonerate.Aligner
}

// Result describes a completed run.
type Result struct {
	Set   *materialize.Set
	Files []string
}

// New creates a pipeline for cfg. The configuration is validated by Run.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		logger:  zap.NewNop(),
		metrics: NewMetrics(),
		run:     tools.Run,
	}
}

// SetLogger sets the logger for progress and warning messages.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// SetRunner replaces the function used to run external commands.
func (p *Pipeline) SetRunner(fn RunFunc) {
	p.run = fn
}

// SetAligner replaces the Exonerate binary with a.
func (p *Pipeline) SetAligner(a exonerate.Aligner) {
	p.aligner = a
}

// Metrics returns the run metrics.
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Run executes every stage and writes the gene model set.
func (p *Pipeline) Run() (*Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	genome, err := filepath.Abs(p.cfg.Genome)
	if err != nil {
		return nil, fmt.Errorf("resolve genome path: %w", err)
	}
	p.cfg.Genome = genome
	start := time.Now()
	defer p.metrics.timeStage("total", start)

	p.logger.Info("starting prediction",
		zap.String("genome", genome),
		zap.String("tag", p.cfg.Tag),
		zap.String("workdir", p.cfg.WorkDir))

	genes, exoCalls, err := p.runExonerate()
	if err != nil {
		return nil, err
	}

	gmCalls, gmProt, gmNucl, err := p.runGeneMark()
	if err != nil {
		return nil, err
	}

	first := p.merge("exonerate+genemark", exoCalls, gmCalls)

	if err := p.carve(first); err != nil {
		return nil, err
	}

	tdCalls, tdProt, tdNucl, err := p.runTransDecoder()
	if err != nil {
		return nil, err
	}

	final := p.merge("transdecoder", first, tdCalls)

	res, err := p.materialize(final, materialize.Sources{
		GeneMarkProteins:        gmProt,
		GeneMarkNucleotides:     gmNucl,
		TransDecoderProteins:    tdProt,
		TransDecoderNucleotides: tdNucl,
		Exonerate:               genes,
	})
	if err != nil {
		return nil, err
	}

	if p.cfg.Archive {
		archives, err := p.archive()
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, archives...)
	}

	if p.cfg.MetricsFile != "" {
		p.metrics.timeStage("total", start)
		if err := p.metrics.WriteFile(p.cfg.MetricsFile); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, p.cfg.MetricsFile)
	}
	return res, nil
}

func (p *Pipeline) runExonerate() ([]*exonerate.Gene, []attr.Record, error) {
	if p.cfg.SkipExonerate {
		p.logger.Info("skipping exonerate")
		return nil, nil, nil
	}
	defer p.metrics.timeStage("exonerate", time.Now())

	f, err := os.Open(p.cfg.Reference)
	if err != nil {
		return nil, nil, fmt.Errorf("open reference proteins: %w", err)
	}
	queries, err := exonerate.SplitReference(f, p.cfg.queryDir())
	f.Close()
	if err != nil {
		return nil, nil, err
	}
	p.logger.Info("split reference proteins", zap.Int("count", len(queries)))

	aligner := p.aligner
	if aligner == nil {
		aligner = exonerate.Runner{
			Cmd:     p.cfg.Tools.Exonerate,
			Genome:  p.cfg.Genome,
			Percent: p.cfg.ExoneratePercent,
			BestN:   p.cfg.ExonerateBestN,
			Log:     p.logger,
		}
	}
	pool := exonerate.NewPool(aligner, p.cfg.Workers)
	pool.SetLogger(p.logger)
	genes := pool.Run(queries)

	if p.cfg.MinLengthRatio > 0 {
		n := len(genes)
		genes = exonerate.LengthFilter(genes, queries, p.cfg.MinLengthRatio)
		p.logger.Info("length filter",
			zap.Float64("ratio", p.cfg.MinLengthRatio),
			zap.Int("removed", n-len(genes)))
	}

	calls := normalize.Exonerate(genes, p.cfg.Tag)
	p.metrics.addCalls("exonerate", attr.MethodExonerate.String(), len(calls))
	return genes, calls, nil
}

func (p *Pipeline) runGeneMark() ([]attr.Record, *seqstore.Store, *seqstore.Store, error) {
	defer p.metrics.timeStage("genemark", time.Now())

	dir := p.cfg.geneMarkDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create GeneMark-ES directory: %w", err)
	}

	gm, err := tools.GeneMark{
		Cmd:      p.cfg.Tools.GeneMark,
		ES:       true,
		Fungus:   p.cfg.Fungus,
		Cores:    p.cfg.Cores,
		Sequence: p.cfg.Genome,
	}.BuildCommand()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := p.run(gm, dir, p.logger); err != nil {
		return nil, nil, nil, err
	}

	extract, err := tools.GetSequence{
		Cmd:    p.cfg.Tools.GTFExtract,
		GTF:    geneMarkGTF,
		Genome: p.cfg.Genome,
	}.BuildCommand()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := p.run(extract, dir, p.logger); err != nil {
		return nil, nil, nil, err
	}

	f, err := os.Open(filepath.Join(dir, geneMarkGTF))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open GeneMark-ES output: %w", err)
	}
	calls, err := normalize.GeneMark(f, p.cfg.Tag)
	f.Close()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", geneMarkGTF, err)
	}

	prot, nucl, err := loadPair(filepath.Join(dir, geneMarkProteins), filepath.Join(dir, geneMarkNucl))
	if err != nil {
		return nil, nil, nil, err
	}

	p.metrics.addCalls("genemark", attr.MethodGeneMark.String(), len(calls))
	p.logger.Info("GeneMark-ES calls", zap.Int("count", len(calls)), zap.Int("proteins", prot.Len()))
	return calls, prot, nucl, nil
}

func (p *Pipeline) merge(name string, a, b []attr.Record) []attr.Record {
	strategy := merge.Adjacent
	if p.cfg.FullOverlap {
		strategy = merge.Sweep
	}
	res := merge.Merge(a, b, merge.WithStrategy(strategy))

	p.metrics.addRemoved(name, res.Removed)
	p.logger.Info("merged calls",
		zap.String("merge", name),
		zap.String("strategy", strategy.String()),
		zap.Int("count", len(res.Records)),
		zap.Int("removed", res.Removed))
	return res.Records
}

func (p *Pipeline) carve(calls []attr.Record) error {
	defer p.metrics.timeStage("carve", time.Now())

	dir := p.cfg.transDecoderDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create TransDecoder directory: %w", err)
	}

	in, err := os.Open(p.cfg.Genome)
	if err != nil {
		return fmt.Errorf("open genome: %w", err)
	}
	defer in.Close()

	out, err := os.Create(filepath.Join(dir, ncrFASTA))
	if err != nil {
		return fmt.Errorf("create %s: %w", ncrFASTA, err)
	}
	n, err := ncr.CarveFASTA(in, calls, out)
	if err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	p.logger.Info("carved non-coding regions", zap.Int("count", n))
	return nil
}

func (p *Pipeline) runTransDecoder() ([]attr.Record, *seqstore.Store, *seqstore.Store, error) {
	defer p.metrics.timeStage("transdecoder", time.Now())

	dir := p.cfg.transDecoderDir()

	longOrfs, err := tools.LongOrfs{
		Cmd:         p.cfg.Tools.LongOrfs,
		Transcripts: ncrFASTA,
		MinLength:   p.cfg.TDMinLength,
	}.BuildCommand()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := p.run(longOrfs, dir, p.logger); err != nil {
		return nil, nil, nil, err
	}

	predict, err := tools.Predict{
		Cmd:            p.cfg.Tools.Predict,
		Transcripts:    ncrFASTA,
		SingleBestOnly: true,
	}.BuildCommand()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := p.run(predict, dir, p.logger); err != nil {
		return nil, nil, nil, err
	}

	f, err := os.Open(filepath.Join(dir, tdGFF))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open TransDecoder output: %w", err)
	}
	calls, err := normalize.TransDecoder(f, p.cfg.Tag)
	f.Close()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", tdGFF, err)
	}

	prot, nucl, err := loadPair(filepath.Join(dir, tdProteins), filepath.Join(dir, tdNucl))
	if err != nil {
		return nil, nil, nil, err
	}

	p.metrics.addCalls("transdecoder", attr.MethodTransDecoder.String(), len(calls))
	p.logger.Info("TransDecoder calls", zap.Int("count", len(calls)), zap.Int("proteins", prot.Len()))
	return calls, prot, nucl, nil
}

func (p *Pipeline) materialize(calls []attr.Record, src materialize.Sources) (*Result, error) {
	set, err := materialize.Build(calls, src, p.cfg.Tag)
	if err != nil {
		return nil, err
	}

	dir := p.cfg.SetsDir()
	if err := set.Write(dir); err != nil {
		return nil, err
	}
	faa, nucl, attributes := materialize.Paths(dir, set.Tag)
	res := &Result{Set: set, Files: []string{faa, nucl, attributes}}

	if p.cfg.WriteGFF {
		path, err := set.WriteGFFFile(dir)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, path)
	}

	for _, r := range set.Records {
		p.metrics.addCalls("final", r.Origin.Method.String(), 1)
	}
	p.logger.Info("wrote gene model set",
		zap.String("tag", set.Tag),
		zap.Int("models", len(set.Records)),
		zap.String("dir", dir))
	return res, nil
}

func loadPair(protPath, nuclPath string) (prot, nucl *seqstore.Store, err error) {
	prot, err = seqstore.Load(protPath, alphabet.Protein)
	if err != nil {
		return nil, nil, err
	}
	nucl, err = seqstore.Load(nuclPath, alphabet.DNA)
	if err != nil {
		return nil, nil, err
	}
	return prot, nucl, nil
}
