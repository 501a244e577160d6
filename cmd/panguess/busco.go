package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/panguess/internal/tools"
)

func newBuscoCmd() *cobra.Command {
	var (
		lineage string
		cpu     int
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "busco --lineage <dataset> [flags] <set.faa>...",
		Short: "Assess gene model sets with BUSCO",
		Long: `Run BUSCO in protein mode on each gene model set. Each run is named
after the set file stem with a .busco suffix.`,
		Example: `  panguess busco --lineage fungi_odb10 --cpu 8 sets/*.faa`,
		Args:    usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, set := range args {
				abs, err := filepath.Abs(set)
				if err != nil {
					return err
				}
				c, err := tools.BUSCO{
					Cmd:     viper.GetString("tools.busco"),
					Input:   abs,
					Lineage: lineage,
					Out:     buscoName(set),
					Mode:    "prot",
					CPU:     cpu,
				}.BuildCommand()
				if err != nil {
					return err
				}
				if err := tools.Run(c, outDir, logger); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lineage, "lineage", "l", "", "BUSCO lineage dataset")
	cmd.Flags().IntVarP(&cpu, "cpu", "c", 1, "BUSCO threads")
	cmd.Flags().StringVarP(&outDir, "dir", "d", "", "Directory to run BUSCO in (default: current)")
	cmd.MarkFlagRequired("lineage") //nolint:errcheck
	return cmd
}

// buscoName returns the BUSCO run name for a set file, e.g. Sc288.busco.
func buscoName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".busco"
}
