// Package tools builds and runs the external gene predictors used by the
// pipeline.
package tools

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/biogo/external"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

var ErrMissingRequired = errors.New("tools: missing required argument")

// GeneMark defines parameters for a GeneMark-ES self-training run.
type GeneMark struct {
	// Usage: gmes_petap.pl --ES [--fungus] --cores N --sequence genome.fa
	//
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}gmes_petap.pl{{end}}"` // gmes_petap.pl

	ES       bool   `buildarg:"{{if .}}--ES{{end}}"`                     // --ES: self-training mode
	Fungus   bool   `buildarg:"{{if .}}--fungus{{end}}"`                 // --fungus: fungal branch point model
	Cores    int    `buildarg:"{{if .}}--cores{{split}}{{.}}{{end}}"`    // --cores: number of threads
	Sequence string `buildarg:"{{if .}}--sequence{{split}}{{.}}{{end}}"` // --sequence: genome FASTA
}

// BuildCommand returns an exec.Cmd built from the parameters in g.
func (g GeneMark) BuildCommand() (*exec.Cmd, error) {
	if g.Sequence == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(g))
	return exec.Command(cl[0], cl[1:]...), nil
}

// GetSequence defines parameters for extracting GeneMark protein and
// nucleotide sequences into prot_seq.faa and nuc_seq.fna.
type GetSequence struct {
	// Usage: get_sequence_from_GTF.pl genemark.gtf genome.fa
	//
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}get_sequence_from_GTF.pl{{end}}"` // get_sequence_from_GTF.pl

	GTF    string `buildarg:"{{.}}"` // "genemark.gtf"
	Genome string `buildarg:"{{.}}"` // "genome.fa"
}

// BuildCommand returns an exec.Cmd built from the parameters in g.
func (g GetSequence) BuildCommand() (*exec.Cmd, error) {
	if g.GTF == "" || g.Genome == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(g))
	return exec.Command(cl[0], cl[1:]...), nil
}

// LongOrfs defines parameters for TransDecoder.LongOrfs.
type LongOrfs struct {
	// Usage: TransDecoder.LongOrfs -t transcripts.fa [-m min_length]
	//
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}TransDecoder.LongOrfs{{end}}"` // TransDecoder.LongOrfs

	Transcripts string `buildarg:"{{if .}}-t{{split}}{{.}}{{end}}"` // -t: transcript FASTA
	MinLength   int    `buildarg:"{{if .}}-m{{split}}{{.}}{{end}}"` // -m: minimum protein length
}

// BuildCommand returns an exec.Cmd built from the parameters in l.
func (l LongOrfs) BuildCommand() (*exec.Cmd, error) {
	if l.Transcripts == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(l))
	return exec.Command(cl[0], cl[1:]...), nil
}

// Predict defines parameters for TransDecoder.Predict.
type Predict struct {
	// Usage: TransDecoder.Predict -t transcripts.fa [--single_best_only]
	//
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}TransDecoder.Predict{{end}}"` // TransDecoder.Predict

	Transcripts    string `buildarg:"{{if .}}-t{{split}}{{.}}{{end}}"`   // -t: transcript FASTA
	SingleBestOnly bool   `buildarg:"{{if .}}--single_best_only{{end}}"` // --single_best_only: one ORF per transcript
}

// BuildCommand returns an exec.Cmd built from the parameters in p.
func (p Predict) BuildCommand() (*exec.Cmd, error) {
	if p.Transcripts == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(p))
	return exec.Command(cl[0], cl[1:]...), nil
}

// BUSCO defines parameters for a BUSCO completeness assessment.
type BUSCO struct {
	// Usage: busco -i set.faa -l lineage -o name -m prot
	//
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}busco{{end}}"` // busco

	Input   string `buildarg:"{{if .}}-i{{split}}{{.}}{{end}}"` // -i: protein set
	Lineage string `buildarg:"{{if .}}-l{{split}}{{.}}{{end}}"` // -l: lineage dataset
	Out     string `buildarg:"{{if .}}-o{{split}}{{.}}{{end}}"` // -o: run name
	Mode    string `buildarg:"{{if .}}-m{{split}}{{.}}{{end}}"` // -m: genome/prot/tran
	CPU     int    `buildarg:"{{if .}}-c{{split}}{{.}}{{end}}"` // -c: number of threads
}

// BuildCommand returns an exec.Cmd built from the parameters in b.
func (b BUSCO) BuildCommand() (*exec.Cmd, error) {
	if b.Input == "" || b.Lineage == "" || b.Out == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(b))
	return exec.Command(cl[0], cl[1:]...), nil
}

// Run runs cmd in dir, streaming its output into logger at debug level.
// An empty dir runs in the current directory.
func Run(cmd *exec.Cmd, dir string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := cmd.Args[0]
	log := logger.With(zap.String("tool", name))

	out := &zapio.Writer{Log: log, Level: zapcore.DebugLevel}
	defer out.Close()

	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out

	log.Info("running", zap.String("args", strings.Join(cmd.Args[1:], " ")), zap.String("dir", dir))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}
