package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-modelica/moc/internal/config"
	"github.com/go-modelica/moc/internal/dae"
	"github.com/go-modelica/moc/internal/errors"
	"github.com/go-modelica/moc/internal/serialize"
)

var (
	buildRoot     string
	buildIncludes []string
	buildOut      string
	buildTemplate string
	buildVerbose  bool
)

var buildCmd = &cobra.Command{
	Use:   "build <file-or-package>",
	Short: "Translate a Modelica model into a DAE document",
	Long: `build runs the full pipeline: parse the primary file (or package
directory), resolve and flatten it against the root class, classify
the flattened components into the DAE partitions, and serialize the
result either as JSON (--out json, the default) or through a
user-supplied template (--out template --template path/to.tmpl).

A balance warning (over- or under-determined system) does not fail the
build; only a parse, resolve, flatten, or classify error does.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildRoot, "root", "", "root class name (default: the primary file's sole top-level class, or the manifest's root_class)")
	buildCmd.Flags().StringArrayVar(&buildIncludes, "include", nil, "additional .mo file or package directory to load before flattening (repeatable)")
	buildCmd.Flags().StringVar(&buildOut, "out", "json", "output format: json or template")
	buildCmd.Flags().StringVar(&buildTemplate, "template", "", "template path, required when --out=template")
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "print diagnostics (including warnings) to stderr")
}

func runBuild(_ *cobra.Command, args []string) error {
	primary := args[0]
	set := loadSourceSet(primary, buildIncludes, buildRoot)

	format := config.OutputFormat(buildOut)
	template := buildTemplate
	if set.manifest != nil {
		if buildOut == "json" && set.manifest.Output != "" {
			format = set.manifest.Output
		}
		if template == "" {
			template = set.manifest.Template
		}
	}
	if format != config.OutputJSON && format != config.OutputTemplate {
		return fmt.Errorf("unknown --out format %q (want json or template)", format)
	}
	if format == config.OutputTemplate && template == "" {
		return fmt.Errorf("--out=template requires --template")
	}

	sink := errors.NewSink()
	table, rootClass, err := loadTable(set, sink)
	if err != nil {
		printDiagnostics(sink, os.Stderr)
		return err
	}

	d, _, err := flattenAndBuild(table, rootClass, sink, true)
	if buildVerbose || sink.HasErrors() {
		printDiagnostics(sink, os.Stderr)
	}
	if err != nil {
		return err
	}

	doc := serialize.Build(d)

	var renderer serialize.Renderer
	if format == config.OutputTemplate {
		renderer = &serialize.TemplateRenderer{TemplatePath: template}
	} else {
		renderer = &serialize.JSONRenderer{}
	}

	rendered, err := renderer.Render(doc)
	if err != nil {
		return fmt.Errorf("rendering output: %w", err)
	}
	if _, err := os.Stdout.Write(rendered); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout)

	if d.Balance.Status != dae.Balanced {
		fmt.Fprintf(os.Stderr, "%s %s: %d equations, %d unknowns\n", yellow("warning:"), d.Balance.Status.String(), d.Balance.EquationCount, d.Balance.UnknownCount)
	}
	return nil
}
