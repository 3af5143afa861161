// Package cmd implements the moc command-line driver: a thin cobra
// wrapper around the parse -> resolve -> flatten -> build DAE ->
// serialize pipeline (§6's external driver contract). Grounded on
// CWBudde-go-dws/cmd/dwscript/cmd: a package-level rootCmd, an
// exported Execute, and one file per subcommand registering itself
// from init().
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "moc",
	Short: "A Modelica-to-DAE translator",
	Long: `moc parses Modelica source, flattens it against a class table,
builds the resulting differential-algebraic system, and serializes it
as a stable JSON document (or a user-supplied template rendering of
one).`,
	Version:       buildVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Version is set by the release build via -ldflags; "dev" otherwise.
var Version = "dev"

func buildVersion() string {
	return Version
}

// Execute runs the command tree, printing any returned error to
// stderr and mapping it to a non-zero exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		os.Exit(1)
	}
}
