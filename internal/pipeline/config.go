package pipeline

import (
	"errors"
	"path/filepath"
	"strings"
)

// Tools holds the paths of the external programs. Empty paths fall back
// to the program name.
type Tools struct {
	Exonerate  string
	GeneMark   string
	GTFExtract string
	LongOrfs   string // TransDecoder.LongOrfs
	Predict    string // TransDecoder.Predict
}

// Config defines one prediction run over a single genome.
type Config struct {
	Genome    string // Genome FASTA
	Reference string // Reference protein FASTA; unused when SkipExonerate
	WorkDir   string
	Tag       string // Prefix of canonical ids; defaults to the genome file stem

	Cores            int // GeneMark-ES threads
	Workers          int // Concurrent Exonerate searches; 0 uses exonerate.DefaultWorkers
	Fungus           bool
	TDMinLength      int
	ExoneratePercent int
	ExonerateBestN   int
	MinLengthRatio   float64
	SkipExonerate    bool
	FullOverlap      bool

	WriteGFF    bool
	Archive     bool   // Compress the GeneMark-ES and TransDecoder directories when done
	MetricsFile string // Prometheus textfile; empty disables

	Tools Tools
}

// DefaultConfig returns a Config with the usual search settings.
func DefaultConfig() Config {
	return Config{
		WorkDir:          ".",
		Cores:            1,
		TDMinLength:      100,
		ExoneratePercent: 90,
		ExonerateBestN:   1,
	}
}

var (
	errNoGenome    = errors.New("genome FASTA is required")
	errNoReference = errors.New("reference protein FASTA is required unless Exonerate is skipped")
)

// Validate checks the configuration and fills in derived defaults.
func (c *Config) Validate() error {
	if c.Genome == "" {
		return errNoGenome
	}
	if c.Reference == "" && !c.SkipExonerate {
		return errNoReference
	}
	if c.WorkDir == "" {
		c.WorkDir = "."
	}
	if c.Tag == "" {
		c.Tag = genomeStem(c.Genome)
	}
	if c.Cores <= 0 {
		c.Cores = 1
	}
	return nil
}

func (c Config) genomeName() string {
	return filepath.Base(c.Genome)
}

func (c Config) geneMarkDir() string {
	return filepath.Join(c.WorkDir, "gmes", c.genomeName())
}

func (c Config) transDecoderDir() string {
	return filepath.Join(c.WorkDir, "td", c.genomeName())
}

func (c Config) queryDir() string {
	return filepath.Join(c.WorkDir, "ref")
}

// SetsDir is where materialized gene model sets are written.
func (c Config) SetsDir() string {
	return filepath.Join(c.WorkDir, "sets")
}

func genomeStem(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}
