package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path> [name]",
	Short: "Move a file into the store",
	Long: `Move a file into the store by renaming it and print its digest.
The file no longer exists at its original path afterwards. The source must be
on the same filesystem as the store root; use put to copy across devices.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("overwrite", false, "replace an existing entry with the same digest")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	src := args[0]
	name := filepath.Base(src)
	if len(args) > 1 {
		name = args[1]
	}
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	s, err := openStore()
	if err != nil {
		return err
	}

	e, err := s.Move(src, name, overwrite)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), e.Digest)
	return nil
}
