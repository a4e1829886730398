package cmd

import (
	"fmt"
	"os"

	"github.com/aweris/castore"
	"github.com/spf13/cobra"
)

var digestCmd = &cobra.Command{
	Use:   "digest <file>...",
	Short: "Print the digest files would be stored under",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDigest,
}

func init() {
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		d, err := castore.ComputeDigest(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("digest %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", d, path)
	}
	return nil
}
