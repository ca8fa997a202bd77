/*
Gazelletool builds a small set of demonstration grammars in-process and
reports statistics about the compiled parse table: state counts, detected
conflicts, and (for LR(0)/LR(1)/LALR(1)) a size comparison.

It is diagnostic tooling only, not a driver for externally-authored grammar
files: gazelle has no grammar file surface syntax, so every grammar this
tool reports on is built with the grammar.Builder API right here in main.go.

Usage:

	gazelletool [flags]

The flags are:

	-v, --version
		Give the current version of gazelle and then exit.

	-g, --grammar NAME
		Which built-in demo grammar to compile. One of "arith" (statically
		stratified arithmetic expressions) or "dynamic" (single production
		with runtime-supplied operator precedence). Defaults to "arith".

	-m, --mode NAME
		Automaton construction mode: "lr0", "lr1", or "lalr1". Defaults to
		"lalr1".

	-c, --compare
		Also build the LR(0) and LR(1) automata for the chosen grammar and
		report their state counts alongside the LALR(1) count.

	-o, --out FILE
		Write the compiled table's persisted snapshot to FILE using the
		persist package, in addition to printing the report.
*/
package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/gazelle/automaton"
	"github.com/dekarrin/gazelle/grammar"
	"github.com/dekarrin/gazelle/internal/version"
	"github.com/dekarrin/gazelle/persist"
	"github.com/dekarrin/gazelle/symbol"
	"github.com/dekarrin/gazelle/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitBadArgs indicates an unrecognized grammar or mode name was given.
	ExitBadArgs

	// ExitBuildError indicates the grammar or table failed to build.
	ExitBuildError

	// ExitIOError indicates a failure writing the --out snapshot.
	ExitIOError
)

var (
	returnCode  int     = ExitSuccess
	flagVersion *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	grammarName *string = pflag.StringP("grammar", "g", "arith", `Demo grammar to compile: "arith" or "dynamic"`)
	modeName    *string = pflag.StringP("mode", "m", "lalr1", `Automaton mode: "lr0", "lr1", or "lalr1"`)
	compare     *bool   = pflag.BoolP("compare", "c", false, "Also report LR(0)/LR(1) state counts for comparison")
	outFile     *string = pflag.StringP("out", "o", "", "Write the compiled table's persisted snapshot to FILE")
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

	g, err := demoGrammar(*grammarName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitBadArgs
		return
	}

	mode, err := parseMode(*modeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitBadArgs
		return
	}

	ct, err := table.Compile(g, mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: building table: %s\n", err.Error())
		returnCode = ExitBuildError
		return
	}

	fmt.Print(ct.String())

	if *compare {
		ff := grammar.Compute(g)
		report, err := automaton.Compare(g, ff)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: building comparison report: %s\n", err.Error())
			returnCode = ExitBuildError
			return
		}
		fmt.Printf("LR(0): %s states, LR(1): %s states, LALR(1): %s states\n",
			humanize.Comma(int64(report.LR0States)),
			humanize.Comma(int64(report.LR1States)),
			humanize.Comma(int64(report.LALR1States)),
		)
	}

	if *outFile != "" {
		blob := persist.Save(ct)
		if err := os.WriteFile(*outFile, blob, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: writing snapshot: %s\n", err.Error())
			returnCode = ExitIOError
			return
		}
		fmt.Printf("wrote %s bytes to %s\n", humanize.Comma(int64(len(blob))), *outFile)
	}
}

func parseMode(name string) (automaton.Mode, error) {
	switch name {
	case "lr0":
		return automaton.ModeLR0, nil
	case "lr1":
		return automaton.ModeLR1, nil
	case "lalr1":
		return automaton.ModeLALR1, nil
	default:
		return 0, fmt.Errorf(`unrecognized mode %q, want "lr0", "lr1", or "lalr1"`, name)
	}
}

// demoGrammar builds one of the two grammars this tool knows how to report
// on. Neither is read from a file: gazelle has no grammar source syntax, so
// every demo grammar is assembled directly with grammar.Builder.
func demoGrammar(name string) (*grammar.Grammar, error) {
	switch name {
	case "arith":
		return arithGrammar()
	case "dynamic":
		return dynamicOpGrammar()
	default:
		return nil, fmt.Errorf(`unrecognized grammar %q, want "arith" or "dynamic"`, name)
	}
}

// arithGrammar is the classic statically-stratified expression grammar:
// E -> E + T | T, T -> T * F | F, F -> NUM | ( E ).
func arithGrammar() (*grammar.Grammar, error) {
	b := grammar.NewBuilder()
	b.TerminalPrec("PLUS", 1, symbol.AssocLeft)
	b.TerminalPrec("STAR", 2, symbol.AssocLeft)
	b.Terminal("LPAREN")
	b.Terminal("RPAREN")
	b.Terminal("NUM")
	b.NonTerminal("E")
	b.NonTerminal("T")
	b.NonTerminal("F")
	b.Start("E")
	b.Rule("E", []string{"E", "PLUS", "T"})
	b.Rule("E", []string{"T"})
	b.Rule("T", []string{"T", "STAR", "F"})
	b.Rule("T", []string{"F"})
	b.Rule("F", []string{"NUM"})
	b.Rule("F", []string{"LPAREN", "E", "RPAREN"})
	return b.Build()
}

// dynamicOpGrammar is a single-non-terminal, two-production grammar whose binary
// operator carries no static precedence at all: expr = expr OP expr | atom.
// Every shift/reduce decision on OP is deferred to the runtime via
// table.ShiftOrReduce, driven by whatever precedence the caller attaches to
// each OP token at lex time.
func dynamicOpGrammar() (*grammar.Grammar, error) {
	b := grammar.NewBuilder()
	b.DynamicTerminal("OP")
	b.Terminal("ATOM")
	b.NonTerminal("expr")
	b.Start("expr")
	b.Rule("expr", []string{"expr", "OP", "expr"})
	b.Rule("expr", []string{"ATOM"})
	return b.Build()
}
