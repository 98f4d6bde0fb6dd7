package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
	"github.com/unclesp1d3r/containercrack/lib/verifier"
)

// errWrongPassword makes verify exit with status 1 when the candidate is rejected.
var errWrongPassword = errors.New("password rejected") //nolint:gochecknoglobals // Sentinel

var verifyCmd = &cobra.Command{
	Use:   "verify FILE PASSWORD",
	Short: "Check one password against one file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, password := args[0], args[1]

		ok, err := verifier.Verify(path, password)
		if err != nil {
			h := &crackerrors.Handler{}
			return h.Handle(err, crackerrors.Options{Message: "Verification failed", Target: path})
		}

		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: password rejected\n", path)
			return errWrongPassword
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: password accepted\n", path)

		return nil
	},
}
