// Package inspect implements a small read-only REPL over an
// already-built dae.Dae: list a partition, print one equation, print
// the balance report. It is a supplemental convenience, never part of
// the translation pipeline itself, grounded on the teacher's
// internal/repl package (liner for history/editing, fatih/color for
// output, a `:command` dispatch loop).
package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/go-modelica/moc/internal/dae"
	"github.com/go-modelica/moc/internal/serialize"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// partitionNames names every listable Dae partition, in the order they
// should be offered to `:partitions` and validated against for `:list`.
var partitionNames = []string{"p", "cp", "x", "x_dot", "y", "u", "z", "m", "pre_x", "pre_z", "pre_m"}

// equationSets names every listable Dae equation list for `:eq`.
var equationSetNames = []string{"fx", "fz", "fm", "fr"}

// Inspector is the read-only REPL state for one built Dae.
type Inspector struct {
	dae     *dae.Dae
	doc     *serialize.Document
	history []string
}

// New creates an Inspector over an already-built Dae.
func New(d *dae.Dae) *Inspector {
	return &Inspector{dae: d, doc: serialize.Build(d)}
}

func (r *Inspector) partition(name string) ([]*dae.Variable, bool) {
	switch name {
	case "p":
		return r.dae.P, true
	case "cp":
		return r.dae.Cp, true
	case "x":
		return r.dae.X, true
	case "x_dot":
		return r.dae.XDot, true
	case "y":
		return r.dae.Y, true
	case "u":
		return r.dae.U, true
	case "z":
		return r.dae.Z, true
	case "m":
		return r.dae.M, true
	case "pre_x":
		return r.dae.PreX, true
	case "pre_z":
		return r.dae.PreZ, true
	case "pre_m":
		return r.dae.PreM, true
	default:
		return nil, false
	}
}

func (r *Inspector) equationSet(name string) ([]any, bool) {
	switch name {
	case "fx":
		return r.doc.Equations, true
	case "fz":
		return r.doc.DiscreteEquations, true
	case "fm":
		return r.doc.ModeEquations, true
	case "fr":
		return r.doc.ReinitActions, true
	default:
		return nil, false
	}
}

func (r *Inspector) getPrompt() string {
	return fmt.Sprintf("moc[%s]> ", r.dae.Name)
}

// Start runs the interactive loop, reading from stdin via liner
// regardless of in (liner manages the terminal itself, the same way
// the teacher's REPL.Start does) and writing to out.
func (r *Inspector) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".moc_inspect_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s %s\n", bold("moc inspect"), dim(r.dae.Name))
	fmt.Fprintln(out, dim("Type :help for commands, :quit to exit"))
	fmt.Fprintln(out)

	line.SetCompleter(func(input string) (c []string) {
		if !strings.HasPrefix(input, ":") {
			return nil
		}
		for _, cmd := range []string{":help", ":quit", ":partitions", ":list", ":eq", ":balance", ":conditions", ":history"} {
			if strings.HasPrefix(cmd, input) {
				c = append(c, cmd)
			}
		}
		return
	})

	for {
		input, err := line.Prompt(r.getPrompt())
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if input == ":quit" || input == ":q" || input == ":exit" {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}

		r.handleCommand(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func (r *Inspector) handleCommand(input string, out io.Writer) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case ":help":
		r.printHelp(out)
	case ":partitions":
		r.printPartitions(out)
	case ":list":
		r.printList(fields[1:], out)
	case ":eq":
		r.printEquation(fields[1:], out)
	case ":balance":
		r.printBalance(out)
	case ":conditions":
		r.printConditions(out)
	case ":history":
		for i, h := range r.history {
			fmt.Fprintf(out, "%4d  %s\n", i+1, h)
		}
	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", red("Error"), fields[0])
	}
}

func (r *Inspector) printHelp(out io.Writer) {
	fmt.Fprintln(out, bold("Commands:"))
	fmt.Fprintln(out, "  :partitions            list every partition and its size")
	fmt.Fprintln(out, "  :list <partition>      list the variable names in one partition (p, cp, x, x_dot, y, u, z, m, pre_x, pre_z, pre_m)")
	fmt.Fprintln(out, "  :eq <set> <index>      print one equation by 1-based index (fx, fz, fm, fr)")
	fmt.Fprintln(out, "  :balance               print the equation/unknown balance report")
	fmt.Fprintln(out, "  :conditions            list extracted condition indicators")
	fmt.Fprintln(out, "  :history               show command history")
	fmt.Fprintln(out, "  :quit                  exit")
}

func (r *Inspector) printPartitions(out io.Writer) {
	for _, name := range partitionNames {
		vars, _ := r.partition(name)
		fmt.Fprintf(out, "  %s%-6s %s\n", cyan(""), name, dim(fmt.Sprintf("(%d)", len(vars))))
	}
	for _, name := range equationSetNames {
		eqs, _ := r.equationSet(name)
		fmt.Fprintf(out, "  %s%-6s %s\n", yellow(""), name, dim(fmt.Sprintf("(%d)", len(eqs))))
	}
}

func (r *Inspector) printList(args []string, out io.Writer) {
	if len(args) != 1 {
		fmt.Fprintf(out, "%s: usage: :list <partition>\n", red("Error"))
		return
	}
	vars, ok := r.partition(args[0])
	if !ok {
		fmt.Fprintf(out, "%s: unknown partition %q\n", red("Error"), args[0])
		return
	}
	if len(vars) == 0 {
		fmt.Fprintln(out, dim("(empty)"))
		return
	}
	for _, v := range vars {
		fmt.Fprintf(out, "  %s : %s\n", v.Name, v.TypeName)
	}
}

func (r *Inspector) printEquation(args []string, out io.Writer) {
	if len(args) != 2 {
		fmt.Fprintf(out, "%s: usage: :eq <fx|fz|fm|fr> <index>\n", red("Error"))
		return
	}
	eqs, ok := r.equationSet(args[0])
	if !ok {
		fmt.Fprintf(out, "%s: unknown equation set %q\n", red("Error"), args[0])
		return
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil || idx < 1 || idx > len(eqs) {
		fmt.Fprintf(out, "%s: index out of range (1..%d)\n", red("Error"), len(eqs))
		return
	}
	encoded, err := json.MarshalIndent(eqs[idx-1], "", "  ")
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	fmt.Fprintln(out, string(encoded))
}

func (r *Inspector) printBalance(out io.Writer) {
	b := r.dae.Balance
	status := green(b.Status.String())
	if b.Status != dae.Balanced {
		status = yellow(b.Status.String())
	}
	fmt.Fprintf(out, "%s: %d equations, %d unknowns, delta %d\n", status, b.EquationCount, b.UnknownCount, b.Delta)
}

func (r *Inspector) printConditions(out io.Writer) {
	names := make([]string, 0, len(r.dae.C))
	byName := make(map[string]*dae.Indicator, len(r.dae.C))
	for _, ind := range r.dae.C {
		names = append(names, ind.Name)
		byName[ind.Name] = ind
	}
	sort.Strings(names)
	if len(names) == 0 {
		fmt.Fprintln(out, dim("(no conditions)"))
		return
	}
	for _, name := range names {
		ind := byName[name]
		trigger := ""
		if ind.EventTrigger {
			trigger = dim(" (event)")
		}
		fmt.Fprintf(out, "  %s%s\n", name, trigger)
	}
}
