package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/panguess/internal/attr"
	"github.com/inodb/panguess/internal/duckdb"
)

func newStatsCmd() *cobra.Command {
	var (
		dbPath   string
		keep     bool
		byContig bool
	)

	cmd := &cobra.Command{
		Use:   "stats [flags] <calls.attributes>...",
		Short: "Summarize attribute tables per method and contig",
		Long: `Load one or more attribute tables into DuckDB and print per-method
counts, internal stop codons, mean intron count and mean length. With
--db the calls are kept in a database file for further queries.`,
		Example: `  panguess stats sets/Sc288.attributes
  panguess stats --contigs --db calls.duckdb sets/*.attributes`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := duckdb.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if !keep {
				if err := store.ClearCalls(); err != nil {
					return err
				}
			}
			for _, path := range args {
				records, err := attr.ReadTableFile(path)
				if err != nil {
					return err
				}
				if err := store.WriteCalls(records); err != nil {
					return fmt.Errorf("load %s: %w", path, err)
				}
				logger.Debug("loaded calls", zap.String("file", path), zap.Int("count", len(records)))
			}
			total, err := store.CountCalls()
			if err != nil {
				return err
			}
			logger.Info("calls in database", zap.Int64("count", total))

			methods, err := store.MethodSummary()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "method\tcalls\tinternal_stops\tmean_introns\tmean_length")
			for _, m := range methods {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.1f\n", m.Method, m.Calls, m.InternalStops, m.MeanIntrons, m.MeanLength)
			}

			if byContig {
				contigs, err := store.ContigSummary()
				if err != nil {
					return err
				}
				fmt.Fprintln(tw)
				fmt.Fprintln(tw, "contig\tcalls\tcovered_bases")
				for _, c := range contigs {
					fmt.Fprintf(tw, "%s\t%d\t%d\n", c.ContigID, c.Calls, c.CoveredBases)
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database file (default: in-memory)")
	cmd.Flags().BoolVar(&keep, "append", false, "Keep calls already in --db")
	cmd.Flags().BoolVar(&byContig, "contigs", false, "Also print a per-contig summary")
	return cmd
}
