package cmd

import (
	"github.com/aweris/castore"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <digest>...",
	Short: "Remove entries",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	for _, d := range args {
		if err := s.Remove(castore.Digest(d)); err != nil {
			return err
		}
	}
	return nil
}
