package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/panguess/internal/pipeline"
)

func newPredictCmd() *cobra.Command {
	var (
		reference     string
		workDir       string
		tag           string
		skipExonerate bool
		writeGFF      bool
		archive       bool
		metricsFile   string
	)

	cmd := &cobra.Command{
		Use:   "predict [flags] <genome.fasta>",
		Short: "Predict gene models for a genome assembly",
		Long: `Predict gene models for one genome assembly.

Reference proteins are aligned with Exonerate and GeneMark-ES is run on
the whole genome. The two call sets are merged, TransDecoder searches the
non-coding regions left over, and the final merged calls are written to
<workdir>/sets as <tag>.faa, <tag>.nucl and <tag>.attributes.`,
		Example: `  panguess predict --reference uniprot_fungi.faa Sc288.fasta
  panguess predict --skip-exonerate --fungus --cores 8 Sc288.fasta
  panguess predict --reference ref.faa --full-overlap --gff --archive -w run1 Sc288.fasta`,
		Args: usageArgs(cobra.ExactArgs(1)),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, predictFlags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := pipeline.DefaultConfig()
			cfg.Genome = args[0]
			cfg.Reference = reference
			cfg.WorkDir = workDir
			cfg.Tag = tag
			cfg.SkipExonerate = skipExonerate
			cfg.WriteGFF = writeGFF
			cfg.Archive = archive
			cfg.MetricsFile = metricsFile

			cfg.Cores = viper.GetInt("predict.cores")
			cfg.Workers = viper.GetInt("predict.workers")
			cfg.Fungus = viper.GetBool("predict.fungus")
			cfg.TDMinLength = viper.GetInt("predict.td_min_length")
			cfg.ExoneratePercent = viper.GetInt("predict.exonerate_percent")
			cfg.ExonerateBestN = viper.GetInt("predict.exonerate_bestn")
			cfg.MinLengthRatio = viper.GetFloat64("predict.min_length_ratio")
			cfg.FullOverlap = viper.GetBool("predict.full_overlap")
			cfg.Tools = toolsFromConfig()

			if err := cfg.Validate(); err != nil {
				return usageError{err}
			}

			p := pipeline.New(cfg)
			p.SetLogger(logger)
			res, err := p.Run()
			if err != nil {
				return err
			}
			for _, f := range res.Files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			logger.Info("prediction complete",
				zap.String("tag", res.Set.Tag),
				zap.Int("models", len(res.Set.Records)))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&reference, "reference", "r", "", "Reference protein FASTA for Exonerate")
	f.StringVarP(&workDir, "workdir", "w", ".", "Working directory for tool output and gene model sets")
	f.StringVarP(&tag, "tag", "t", "", "Gene id prefix (default: genome file stem)")
	f.BoolVar(&skipExonerate, "skip-exonerate", false, "Skip the Exonerate alignment step")
	f.BoolVar(&writeGFF, "gff", false, "Also write <tag>.gff")
	f.BoolVar(&archive, "archive", false, "Compress the GeneMark-ES and TransDecoder directories when done")
	f.StringVar(&metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format")

	f.IntP("cores", "c", 1, "GeneMark-ES threads")
	f.Int("workers", 0, "Concurrent Exonerate searches (default: CPUs - 1)")
	f.Bool("fungus", false, "Run GeneMark-ES with the fungal branch point model")
	f.Int("td-min-length", 100, "TransDecoder minimum protein length")
	f.Int("exonerate-percent", 90, "Exonerate --percent threshold")
	f.Int("exonerate-bestn", 1, "Exonerate --bestn")
	f.Float64("min-length-ratio", 0, "Drop Exonerate hits shorter than this fraction of the reference (0 disables)")
	f.Bool("full-overlap", false, "Resolve overlaps against every kept call instead of sorted neighbours")

	return cmd
}

// predictFlags maps config keys to the predict flags that override them.
var predictFlags = map[string]string{
	"predict.cores":             "cores",
	"predict.workers":           "workers",
	"predict.fungus":            "fungus",
	"predict.td_min_length":     "td-min-length",
	"predict.exonerate_percent": "exonerate-percent",
	"predict.exonerate_bestn":   "exonerate-bestn",
	"predict.min_length_ratio":  "min-length-ratio",
	"predict.full_overlap":      "full-overlap",
}

// bindFlags binds flags of the running command to config keys, so a flag
// set on the command line wins over the config file.
func bindFlags(cmd *cobra.Command, flags map[string]string) error {
	for key, name := range flags {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// toolsFromConfig reads the external program paths.
func toolsFromConfig() pipeline.Tools {
	return pipeline.Tools{
		Exonerate:  viper.GetString("tools.exonerate"),
		GeneMark:   viper.GetString("tools.genemark"),
		GTFExtract: viper.GetString("tools.gtf_extract"),
		LongOrfs:   viper.GetString("tools.transdecoder_longorfs"),
		Predict:    viper.GetString("tools.transdecoder_predict"),
	}
}
