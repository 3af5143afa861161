// Command moc is the CLI driver for the Modelica-to-DAE translator:
// build, check, and inspect subcommands over the parse -> flatten ->
// classify -> serialize pipeline.
package main

import "github.com/go-modelica/moc/cmd/moc/cmd"

func main() {
	cmd.Execute()
}
