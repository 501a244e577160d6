package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/panguess/internal/attr"
	"github.com/inodb/panguess/internal/normalize"
)

func newNormalizeCmd() *cobra.Command {
	var (
		format string
		tag    string
		output string
	)

	cmd := &cobra.Command{
		Use:   "normalize --format genemark|transdecoder [flags] <file>",
		Short: "Convert predictor output to an attribute table",
		Example: `  panguess normalize --format genemark --tag Sc288 genemark.gtf
  panguess normalize --format transdecoder -o td.attributes NCR.fna.transdecoder.gff3`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parse func(*os.File, string) ([]attr.Record, error)
			switch format {
			case "genemark":
				parse = func(f *os.File, tag string) ([]attr.Record, error) { return normalize.GeneMark(f, tag) }
			case "transdecoder":
				parse = func(f *os.File, tag string) ([]attr.Record, error) { return normalize.TransDecoder(f, tag) }
			default:
				return usageError{fmt.Errorf("unknown format %q (want genemark or transdecoder)", format)}
			}

			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			records, err := parse(in, tag)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out, err := createOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := attr.WriteTable(out, records); err != nil {
				out.Close()
				return err
			}
			logger.Info("normalized calls", zap.String("format", format), zap.Int("count", len(records)))
			return out.Close()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Input format: genemark or transdecoder")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Source tag recorded on every call")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.MarkFlagRequired("format") //nolint:errcheck
	return cmd
}
