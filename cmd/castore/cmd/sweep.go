package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete abandoned staging files",
	Args:  cobra.NoArgs,
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().Duration("older-than", 0, "minimum staging file age (default: staging_grace from config)")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	olderThan, _ := cmd.Flags().GetDuration("older-than")
	if !cmd.Flags().Changed("older-than") {
		olderThan = cfg.StagingGrace
	}

	s, err := openStore()
	if err != nil {
		return err
	}

	n, err := s.Sweep(cmd.Context(), olderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d staging files\n", n)
	return nil
}
