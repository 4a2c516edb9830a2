// Copyright 2024 The x4c Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command x4c is the P4 compiler front end's CLI: a thin collaborator over
// api.Compiler, specified only for stability (spec.md §6).
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"

	"x4c/api"
	"x4c/tools/gxflag"
)

// version is x4c's own release marker, independent of the Go toolchain
// version used to build it.
const version = "0.1.0"

// minGoVersion is the oldest Go toolchain x4c is tested against; -V prints
// a warning when built with anything older, the way build tooling commonly
// gates itself on its own minimum.
const minGoVersion = "v1.22.0"

const (
	exitOK       = 0
	exitCompile  = 1
	exitCLIUsage = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: x4c [flags] <filename> [target]")
		fmt.Fprintln(os.Stderr, "  target is one of "+strings.Join(api.Targets, ", ")+" (default "+api.DefaultTarget+")")
		flag.PrintDefaults()
	}

	check := flag.Bool("check", false, "run all passes and report diagnostics, emit no code")
	out := flag.String("o", "out."+api.DefaultTarget, "output path")
	showAST := flag.Bool("show-ast", false, "dump the parsed AST")
	showHLIR := flag.Bool("show-hlir", false, "dump the resolved HLIR side-tables")
	showPre := flag.Bool("show-pre", false, "dump the preprocessed source")
	showTokens := flag.Bool("show-tokens", false, "dump the token stream")
	showVersion := flag.Bool("V", false, "print version and exit")
	flag.BoolVar(showVersion, "version", false, "print version and exit")
	includeDirs := gxflag.StringList("I", "search directory for #include (comma-separated, repeatable)")

	flag.Parse()

	if *showVersion {
		printVersion(os.Stdout)
		return exitOK
	}

	rest := flag.Args()
	if len(rest) < 1 || len(rest) > 2 {
		flag.Usage()
		return exitCLIUsage
	}
	filename := rest[0]
	target := api.DefaultTarget
	if len(rest) == 2 {
		target = rest[1]
	}

	opts := api.Options{
		Target:      target,
		Check:       *check,
		Output:      *out,
		ShowAST:     *showAST,
		ShowHLIR:    *showHLIR,
		ShowPre:     *showPre,
		ShowTokens:  *showTokens,
		IncludeDirs: *includeDirs,
	}

	res, err := api.New().Compile(filename, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "x4c: %v\n", err)
		return exitCLIUsage
	}

	if opts.ShowPre && res.Unit != nil {
		dumpPreprocessed(os.Stdout, res.Unit)
	}
	if opts.ShowTokens {
		dumpTokens(os.Stdout, res.Tokens)
	}
	if opts.ShowAST && res.AST != nil {
		dumpAST(os.Stdout, res.AST)
	}
	if opts.ShowHLIR && res.Program != nil {
		dumpHLIR(os.Stdout, res.AST, res.Program)
	}

	for _, d := range res.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}

	if res.HasErrors() {
		return exitCompile
	}
	return exitOK
}

func printVersion(w *os.File) {
	fmt.Fprintf(w, "x4c version %s\n", version)
	rt := runtimeSemver()
	if semver.Compare(rt, minGoVersion) < 0 {
		fmt.Fprintf(w, "warning: built with %s, x4c targets %s or newer\n", runtime.Version(), minGoVersion)
	}
}

// runtimeSemver converts runtime.Version()'s "go1.22.3" form to the "v1.22.3"
// form golang.org/x/mod/semver requires.
func runtimeSemver() string {
	v := strings.TrimPrefix(runtime.Version(), "go")
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return minGoVersion
	}
	return v
}
