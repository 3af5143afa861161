package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/go-modelica/moc/internal/errors"
	"github.com/go-modelica/moc/internal/inspect"
)

var (
	inspectRoot     string
	inspectIncludes []string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file-or-package>",
	Short: "Build a DAE and drop into a read-only interactive inspector",
	Long: `inspect runs the same pipeline as build, then instead of
serializing immediately, opens a line-edited REPL over the resulting
Dae: list a partition, print one equation, check the balance report.
Type :help once inside for the command list.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectRoot, "root", "", "root class name (default: the primary file's sole top-level class, or the manifest's root_class)")
	inspectCmd.Flags().StringArrayVar(&inspectIncludes, "include", nil, "additional .mo file or package directory to load before flattening (repeatable)")
}

func runInspect(_ *cobra.Command, args []string) error {
	primary := args[0]
	set := loadSourceSet(primary, inspectIncludes, inspectRoot)

	sink := errors.NewSink()
	table, rootClass, err := loadTable(set, sink)
	if err != nil {
		printDiagnostics(sink, os.Stderr)
		return err
	}

	d, _, err := flattenAndBuild(table, rootClass, sink, true)
	if err != nil {
		printDiagnostics(sink, os.Stderr)
		return err
	}

	inspect.New(d).Start(os.Stdin, os.Stdout)
	return nil
}
