package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unclesp1d3r/containercrack/lib/report"
)

var reportCmd = &cobra.Command{
	Use:   "report FILE",
	Short: "Print the summary of a saved JSON report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := report.Load(args[0])
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), report.FormatSummary(rep.Stats(), rep))

		return nil
	},
}
