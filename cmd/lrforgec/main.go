/*
Lrforgec builds an LR(0) state graph from a grammar source file and either
prints it once or opens an interactive shell for inspecting it.

Usage:

	lrforgec [flags] GRAMMAR_FILE

The flags are:

	-v, --version
		Give the current version of lrforge and then exit.

	-t, --terminals FILE
		A TOML file declaring the terminal-name-to-value mapping the grammar
		references. Required unless the grammar has no terminals.

	-m, --markdown
		Treat GRAMMAR_FILE as literate Markdown and extract its fenced
		lrforge code blocks before parsing.

	-i, --interactive
		Open an interactive shell over the generated state graph instead of
		printing it once and exiting.

	-d, --direct
		Force reading shell input directly from stdin instead of through
		GNU-readline editing, even when attached to a tty.

	-c, --cache FILE
		Save the generated state graph to FILE in lrforge's binary format
		after building it. If GRAMMAR_FILE itself cannot be found but FILE
		can, the cached graph is loaded from FILE instead of regenerating.

Once the shell is open, type HELP for the list of available commands. To
exit, type QUIT.
*/
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dekarrin/lrforge"
	"github.com/dekarrin/lrforge/internal/litgrammar"
	"github.com/dekarrin/lrforge/internal/lrforge/lr"
	"github.com/dekarrin/lrforge/internal/lrforge/persist"
	"github.com/dekarrin/lrforge/internal/replio"
	"github.com/dekarrin/lrforge/internal/srcenc"
	"github.com/dekarrin/lrforge/internal/termcfg"
	"github.com/dekarrin/lrforge/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitInitError indicates a failure to read input files or generate the
	// state graph.
	ExitInitError

	// ExitShellError indicates an unrecoverable error while running the
	// interactive shell.
	ExitShellError
)

var (
	returnCode      int     = ExitSuccess
	flagVersion     *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	terminalsFile   *string = pflag.StringP("terminals", "t", "", "TOML file declaring the terminal name-to-value mapping")
	markdown        *bool   = pflag.BoolP("markdown", "m", false, "Treat the grammar file as literate Markdown")
	interactiveMode *bool   = pflag.BoolP("interactive", "i", false, "Open an interactive shell over the generated state graph")
	forceDirect     *bool   = pflag.BoolP("direct", "d", false, "Force reading shell input directly from stdin")
	cacheFile       *string = pflag.StringP("cache", "c", "", "Save the generated state graph to FILE, or load it from FILE if GRAMMAR_FILE is missing")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	args := pflag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "ERROR: expected exactly one GRAMMAR_FILE argument")
		returnCode = ExitInitError
		return
	}

	result, err := buildFromFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	if *cacheFile != "" {
		if err := os.WriteFile(*cacheFile, persist.EncodeResult(result.States), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: writing cache file: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
	}

	if !*interactiveMode {
		fmt.Println(result.States.String())
		return
	}

	if err := runShell(result); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitShellError
	}
}

func buildFromFile(path string) (*lrforge.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if *cacheFile != "" && errors.Is(err, os.ErrNotExist) {
			return loadFromCache(*cacheFile)
		}
		return nil, err
	}

	enc, _, err := srcenc.Detect(data, "utf-8")
	if err != nil {
		return nil, err
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	if *markdown {
		decoded = litgrammar.Extract(decoded)
	}

	var terminals []lrforge.TerminalDecl
	if *terminalsFile != "" {
		terminals, err = termcfg.Load(*terminalsFile)
		if err != nil {
			return nil, err
		}
	}

	return lrforge.Generate(path, string(decoded), terminals)
}

func loadFromCache(path string) (*lrforge.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	states, err := persist.DecodeResult(data)
	if err != nil {
		return nil, err
	}
	return &lrforge.Result{Grammar: states.Grammar, States: states}, nil
}

// runShell opens an interactive loop for inspecting a generated Result. It
// mirrors the teacher's game-engine "read a line, dispatch a command" loop,
// narrowed to a handful of introspection commands since lrforge's shell has
// no game state to mutate.
func runShell(result *lrforge.Result) error {
	var in replio.Reader
	var err error

	if *forceDirect {
		in = replio.NewDirectReader(os.Stdin)
	} else {
		in, err = replio.NewInteractiveReader("lrforge> ")
		if err != nil {
			in = replio.NewDirectReader(os.Stdin)
		}
	}
	defer in.Close()

	for {
		line, err := in.ReadLine()
		if err != nil {
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd, rest := splitCommand(line)
		switch strings.ToUpper(cmd) {
		case "QUIT", "EXIT":
			return nil
		case "HELP":
			printHelp()
		case "STATES":
			fmt.Println(result.States.String())
		case "STATE":
			printState(result.States, rest)
		case "CONFLICTS":
			printConflicts(result.States)
		case "FIRST":
			printFirst(result.States, rest)
		default:
			fmt.Printf("unrecognized command %q; type HELP for the list\n", cmd)
		}
	}
}

func splitCommand(line string) (cmd, rest string) {
	cmd, rest, _ = strings.Cut(line, " ")
	return cmd, strings.TrimSpace(rest)
}

func printHelp() {
	fmt.Println("STATES          print the full shift/goto/reduce table")
	fmt.Println("STATE <n>       print the items, shifts, gotos, and reductions of state n")
	fmt.Println("CONFLICTS       list any shift/reduce or reduce/reduce conflicts")
	fmt.Println("FIRST [name]    print the FIRST set of a nonterminal, or of every nonterminal if name is omitted")
	fmt.Println("QUIT            exit the shell")
}

func printState(result *lr.Result, arg string) {
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 0 || idx >= len(result.States) {
		fmt.Printf("no such state %q\n", arg)
		return
	}

	s := result.States[idx]
	fmt.Printf("state %d:\n", s.Index)
	for _, v := range s.Items.Values() {
		fmt.Printf("  %s\n", v)
	}
	for _, t := range s.ShiftTerminals() {
		fmt.Printf("  shift %s -> %d\n", t, s.Shifts[t])
	}
	for _, nt := range s.GotoNonterminals() {
		fmt.Printf("  goto %s -> %d\n", nt, s.Gotos[nt])
	}
	for _, p := range s.Reductions {
		fmt.Printf("  reduce %s\n", p)
	}
}

func printFirst(result *lr.Result, name string) {
	if name != "" {
		set, ok := result.First[name]
		if !ok {
			fmt.Printf("no such nonterminal %q\n", name)
			return
		}
		fmt.Printf("FIRST(%s) = {%s}\n", name, strings.Join(set, ", "))
		return
	}

	for _, ntName := range result.Grammar.NonterminalNames() {
		fmt.Printf("FIRST(%s) = {%s}\n", ntName, strings.Join(result.First[ntName], ", "))
	}
}

func printConflicts(result *lr.Result) {
	if len(result.Conflicts) == 0 {
		fmt.Println("no conflicts")
		return
	}
	for _, c := range result.Conflicts {
		if c.Kind == lr.ShiftReduce {
			fmt.Printf("state %d: shift/reduce on %q\n", c.State, c.Terminal)
		} else {
			fmt.Printf("state %d: reduce/reduce\n", c.State)
		}
	}
}
