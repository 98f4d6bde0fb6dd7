package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/verifier"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the verification backends compiled into this binary",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		for _, k := range container.Kinds {
			b, err := verifier.Default.Lookup(k)
			if err != nil {
				fmt.Fprintf(out, "%-8s not compiled in\n", k)
				continue
			}
			fmt.Fprintf(out, "%-8s %s\n", k, b.Name())
		}

		fmt.Fprintf(out, "\nsupported extensions: %v\n", container.SupportedExtensions())
	},
}
