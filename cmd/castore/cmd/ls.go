package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored entries",
	Args:  cobra.NoArgs,
	RunE:  runLs,
}

func init() {
	lsCmd.Flags().Bool("stats", false, "print a summary instead of entries")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	showStats, _ := cmd.Flags().GetBool("stats")
	out := cmd.OutOrStdout()

	s, err := openStore()
	if err != nil {
		return err
	}

	if showStats {
		st, err := s.Stats()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "entries: %d\ncorrupt: %d\nstaging: %d\nbytes:   %d\n", st.Entries, st.Corrupt, st.Staging, st.Bytes)
		return nil
	}

	entries, err := s.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\t%d\t%s\n", e.Digest, e.Size, e.Name)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "(no entries)")
	}
	return nil
}
