package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-hash every entry and report damage",
	Long:  "Re-hash every entry and report corrupted or mismatched entries. Nothing is repaired.",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	report, err := s.Verify(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range report.Problems {
		fmt.Fprintf(out, "%s\t%s\t%s\n", p.Digest, p.Kind, p.Detail)
	}
	fmt.Fprintf(out, "checked %d entries, %d problems\n", report.Checked, len(report.Problems))

	if !report.OK() {
		return fmt.Errorf("verify: %d damaged entries", len(report.Problems))
	}
	return nil
}
