// Copyright © 2020 The Pea Authors under an MIT-style license.

// Flowc checks source files and prints their type errors.
//
// Usage:
//
//	flowc [flags] file-or-dir...
//
// A directory names the .w files within it.
// With no arguments, flowc reads standard input.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/eaburns/flow/ast"
	"github.com/eaburns/flow/check"
	"github.com/eaburns/flow/syn"
	"github.com/eaburns/peggy/peg"
	"github.com/eaburns/pretty"
)

var (
	trace      = flag.Bool("trace", false, "enable checker tracing")
	dump       = flag.Bool("dump", false, "print the type of each declaration")
	workers    = flag.Int("j", 0, "number of declarations checked concurrently")
	loopLimit  = flag.Int("loop", 0, "number of loop iterations before widening")
	configPath = flag.String("config", "", "path to a YAML configuration file")
	color      = flag.String("color", "", "color diagnostics: auto, always, or never")
)

const (
	red   = "\x1b[31m"
	reset = "\x1b[0m"
)

func main() {
	flag.Usage = usage
	flag.Parse()
	pretty.Indent = "    "

	var cfg config
	if *configPath != "" {
		var err error
		if cfg, err = readConfig(*configPath); err != nil {
			die("", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "trace":
			cfg.Trace = *trace
		case "j":
			cfg.Workers = *workers
		case "loop":
			cfg.LoopLimit = *loopLimit
		case "color":
			cfg.Color = *color
		}
	})
	if err := cfg.validate(); err != nil {
		die("", err)
	}

	p := syn.NewParser()
	if len(flag.Args()) == 0 {
		if _, err := p.Parse("", os.Stdin); err != nil {
			dieParse(err)
		}
	} else {
		paths, err := srcFiles(flag.Args())
		if err != nil {
			die("", err)
		}
		for _, path := range paths {
			if _, err := p.ParseFile(path); err != nil {
				dieParse(err)
			}
		}
	}

	tab := check.Table(p.Files()...)
	colorize := cfg.colorize(os.Stderr)
	failed := false
	for _, file := range p.Files() {
		errs := check.Check(file, tab, cfg.checkConfig(os.Stdout))
		for _, err := range errs {
			printError(os.Stderr, err, colorize)
		}
		failed = failed || len(errs) > 0
		if *dump {
			dumpFile(os.Stdout, file)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func printError(w io.Writer, err error, colorize bool) {
	s := err.Error()
	if colorize {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = red + s[:i] + reset + s[i:]
		} else {
			s = red + s + reset
		}
	}
	fmt.Fprintln(w, s)
}

// dumpFile prints the types of declarations.
// Syntax trees are not printed, since resolved invocations
// refer back to their declarations.
func dumpFile(w io.Writer, file *ast.File) {
	for _, d := range file.Decls {
		fmt.Fprintln(w, file.Locs.Loc(d.GetRange()), d.DeclName())
		switch d := d.(type) {
		case *ast.TypeDecl:
			fmt.Fprintln(w, pretty.String(d.Type))
		case *ast.ConstDecl:
			fmt.Fprintln(w, pretty.String(d.Type))
		case *ast.CallableDecl:
			fmt.Fprintln(w, pretty.String(d.Signature()))
		}
		fmt.Fprintln(w, "")
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
	fmt.Fprintf(out, "%s [flags] file-or-dir...\n", os.Args[0])
	flag.PrintDefaults()
}

func dieParse(err error) {
	if pe, ok := err.(interface{ Tree() *peg.Fail }); ok {
		peg.PrettyWrite(os.Stderr, pe.Tree())
		fmt.Fprintln(os.Stderr, "")
	}
	die("", err)
}

func die(s string, err error) {
	if s == "" {
		fmt.Fprintln(os.Stderr, err)
	} else {
		fmt.Fprintf(os.Stderr, "%s: %s\n", s, err)
	}
	os.Exit(1)
}
