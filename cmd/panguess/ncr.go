package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/panguess/internal/attr"
	"github.com/inodb/panguess/internal/ncr"
)

func newNCRCmd() *cobra.Command {
	var (
		genome string
		output string
	)

	cmd := &cobra.Command{
		Use:   "ncr --genome <genome.fasta> [flags] <calls.attributes>",
		Short: "Write the non-coding regions left between calls as FASTA",
		Long: `Write every genome interval not covered by a call in the attribute
table as FASTA. Records are named <contig>_NCR_<start>_<end> with
1-based inclusive coordinates.`,
		Example: `  panguess ncr --genome Sc288.fasta merged.attributes > NCR.fna`,
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := attr.ReadTableFile(args[0])
			if err != nil {
				return err
			}

			in, err := os.Open(genome)
			if err != nil {
				return fmt.Errorf("open genome: %w", err)
			}
			defer in.Close()

			out, err := createOutput(cmd, output)
			if err != nil {
				return err
			}
			n, err := ncr.CarveFASTA(in, records, out)
			if err != nil {
				out.Close()
				return err
			}
			logger.Info("carved non-coding regions", zap.Int("count", n))
			return out.Close()
		},
	}

	cmd.Flags().StringVarP(&genome, "genome", "g", "", "Genome FASTA")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.MarkFlagRequired("genome") //nolint:errcheck
	return cmd
}
