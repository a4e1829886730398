package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aweris/castore"
	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put <file|-> [name]",
	Short: "Store a copy of a file",
	Long: `Store the content of a file (or stdin with "-") and print its digest.
The source is left in place. The name defaults to the file's base name; a
name without an extension such as "txt" gets a generated base name.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPut,
}

func init() {
	putCmd.Flags().Bool("overwrite", false, "replace an existing entry with the same digest")
	putCmd.Flags().String("encoding", string(castore.EncodingBinary), "input encoding (binary, base64, hex, utf8, zstd)")
	rootCmd.AddCommand(putCmd)
}

func runPut(cmd *cobra.Command, args []string) error {
	src := args[0]
	name := filepath.Base(src)
	if len(args) > 1 {
		name = args[1]
	} else if src == "-" {
		name = "bin"
	}

	overwrite, _ := cmd.Flags().GetBool("overwrite")
	encName, _ := cmd.Flags().GetString("encoding")
	enc, err := castore.ParseEncoding(encName)
	if err != nil {
		return err
	}

	var data []byte
	if src == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}

	s, err := openStore()
	if err != nil {
		return err
	}

	e, err := s.Write(data, name, enc, overwrite)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), e.Digest)
	return nil
}
