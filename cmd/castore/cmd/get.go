package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/aweris/castore"
	"github.com/aweris/castore/internal/compression"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <digest>",
	Short: "Write stored content to stdout or a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	getCmd.Flags().Bool("zstd", false, "compress output with zstd")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) (err error) {
	output, _ := cmd.Flags().GetString("output")
	compress, _ := cmd.Flags().GetBool("zstd")

	s, err := openStore()
	if err != nil {
		return err
	}

	rc, _, err := s.Reader(castore.Digest(args[0]))
	if err != nil {
		return err
	}
	defer rc.Close()

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if compress {
		level, err := compression.ParseLevel(cfg.CompressionLevel)
		if err != nil {
			return err
		}
		_, err = compression.CompressStream(w, rc, level)
		return err
	}

	_, err = io.Copy(w, rc)
	return err
}
