package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/panguess/internal/attr"
	"github.com/inodb/panguess/internal/merge"
)

func newMergeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge [flags] <first.attributes> <second.attributes>",
		Short: "Merge two attribute tables, resolving overlapping calls",
		Long: `Merge two attribute tables. Calls are sorted by contig and start; where
two calls overlap, the one that starts first is kept and on equal starts
the call from the first table wins. Call length plays no part.

By default each call is compared only with the next one in sorted order.
With --full-overlap each call is checked against every call kept before it.`,
		Example: `  panguess merge exonerate.attributes genemark.attributes > merged.attributes
  panguess merge --full-overlap -o final.attributes merged.attributes td.attributes`,
		Args: usageArgs(cobra.ExactArgs(2)),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{"predict.full_overlap": "full-overlap"})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := attr.ReadTableFile(args[0])
			if err != nil {
				return err
			}
			second, err := attr.ReadTableFile(args[1])
			if err != nil {
				return err
			}

			strategy := merge.Adjacent
			if viper.GetBool("predict.full_overlap") {
				strategy = merge.Sweep
			}
			res := merge.Merge(first, second, merge.WithStrategy(strategy))

			out, err := createOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := attr.WriteTable(out, res.Records); err != nil {
				out.Close()
				return err
			}
			logger.Info("merged calls",
				zap.String("strategy", strategy.String()),
				zap.Int("count", len(res.Records)),
				zap.Int("removed", res.Removed))
			return out.Close()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().Bool("full-overlap", false, "Resolve overlaps against every kept call instead of sorted neighbours")
	return cmd
}
