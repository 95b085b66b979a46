package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	dcoerr "github.com/fluxcd/dco/pkg/errors"
)

func main() {
	rootCmd := newRoot().Command()
	if cmd, err := rootCmd.ExecuteC(); err != nil {
		explain(cmd, err)
		os.Exit(1)
	}
}

// explain follows the error cobra has already printed with whatever
// helps the user do something about it.
func explain(cmd *cobra.Command, err error) {
	switch err := errors.Cause(err).(type) {
	case usageError:
		cmd.Println("")
		cmd.Println(cmd.UsageString())
	case *dcoerr.Error:
		if err.Help != "" {
			cmd.Println("")
			cmd.Print(err.Help)
		}
	}
}
