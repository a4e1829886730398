package cmd

import (
	"fmt"

	"github.com/aweris/castore"
	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat <digest>",
	Short: "Show the entry stored under a digest",
	Args:  cobra.ExactArgs(1),
	RunE:  runStat,
}

func init() {
	rootCmd.AddCommand(statCmd)
}

func runStat(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	e, err := s.Find(castore.Digest(args[0]))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "digest:    %s\n", e.Digest)
	fmt.Fprintf(out, "name:      %s\n", e.Name)
	fmt.Fprintf(out, "extension: %s\n", e.Extension)
	fmt.Fprintf(out, "size:      %d\n", e.Size)
	fmt.Fprintf(out, "path:      %s\n", e.Path)
	return nil
}
