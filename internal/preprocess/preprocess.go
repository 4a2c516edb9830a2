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

// Package preprocess implements x4c's C-style preprocessor: #include
// expansion, #define/#undef textual substitution, and source-position
// tracking so that every downstream token can be traced back to the file
// and line it was actually written in, even after #include splicing.
package preprocess

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"x4c/diag"
	"x4c/internal/token"
)

// Line is one logical line of preprocessed source, tagged with the file and
// line number it originated from before any #include expansion. The lexer
// consumes a Unit's Lines directly instead of re-reading files, which is
// what keeps span remapping exact: an #include'd line keeps pointing at its
// own file, never at the file that included it.
type Line struct {
	File   string
	Number int
	Text   string
}

// Unit is the output of a preprocessor run: a single logical line stream
// plus the raw content of every file that contributed to it, cached for
// diagnostic source-line rendering.
type Unit struct {
	Lines   []Line
	Sources map[string]string
}

type macro struct {
	name string
	body string
}

type expander struct {
	searchDirs []string
	sink       *diag.Sink
	sources    map[string]string
	stack      map[string]bool // files currently being expanded, for cycle detection
	out        []Line
	macros     map[string]*macro
}

// Run preprocesses root, resolving #include against the including file's
// own directory (for quoted includes) and against searchDirs (for both
// quoted and angle-bracket includes, quoted form tried first). Diagnostics
// are appended to sink; a non-nil Unit is still returned so a caller with
// --show-pre can inspect partial output even when errors occurred.
func Run(root string, searchDirs []string, sink *diag.Sink) *Unit {
	ex := &expander{
		searchDirs: searchDirs,
		sink:       sink,
		sources:    make(map[string]string),
		stack:      make(map[string]bool),
		macros:     make(map[string]*macro),
	}
	ex.expandFile(root, token.Span{})
	return &Unit{Lines: ex.out, Sources: ex.sources}
}

func (ex *expander) readFile(path string) (string, error) {
	if content, ok := ex.sources[path]; ok {
		return content, nil
	}
	if path == corePath {
		ex.sources[path] = CoreP4
		ex.sink.SetSource(path, CoreP4)
		return CoreP4, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content := string(b)
	ex.sources[path] = content
	ex.sink.SetSource(path, content)
	return content, nil
}

func (ex *expander) resolveInclude(spec string, quoted bool, fromDir string) (string, error) {
	if spec == corePath {
		return corePath, nil
	}
	var candidates []string
	if quoted {
		candidates = append(candidates, filepath.Join(fromDir, spec))
	}
	for _, dir := range ex.searchDirs {
		candidates = append(candidates, filepath.Join(dir, spec))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", errors.Errorf("include %q not found in search path", spec)
}

func (ex *expander) expandFile(path string, at token.Span) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if ex.stack[abs] {
		ex.sink.Errorf(at, diag.E0016, "include cycle detected: %s re-enters itself", path)
		return
	}
	content, err := ex.readFile(path)
	if err != nil {
		ex.sink.Errorf(at, diag.E0017, "cannot read %q: %v", path, err)
		return
	}
	ex.stack[abs] = true
	defer delete(ex.stack, abs)

	dir := filepath.Dir(path)
	// A file's final newline ends its last line rather than starting an
	// empty one.
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i := 0; i < len(lines); i++ {
		lineNo := i + 1
		raw := lines[i]
		trimmed := strings.TrimSpace(raw)
		span := token.Span{File: path, Line: lineNo, Column: 1, Length: len(raw)}

		switch {
		case strings.HasPrefix(trimmed, "#include"):
			ex.handleInclude(trimmed, span, dir)
			continue
		case strings.HasPrefix(trimmed, "#undef"):
			ex.handleUndef(trimmed, span)
			continue
		case strings.HasPrefix(trimmed, "#define"):
			i = ex.handleDefine(lines, i, path, dir)
			continue
		}
		ex.out = append(ex.out, Line{File: path, Number: lineNo, Text: ex.substitute(raw)})
	}
}

func (ex *expander) handleInclude(directive string, span token.Span, fromDir string) {
	rest := strings.TrimSpace(strings.TrimPrefix(directive, "#include"))
	var spec string
	var quoted bool
	switch {
	case strings.HasPrefix(rest, "\""):
		end := strings.Index(rest[1:], "\"")
		if end < 0 {
			ex.sink.Errorf(span, diag.E0018, "unterminated quoted #include")
			return
		}
		spec, quoted = rest[1:1+end], true
	case strings.HasPrefix(rest, "<"):
		end := strings.Index(rest, ">")
		if end < 0 {
			ex.sink.Errorf(span, diag.E0018, "unterminated <#include>")
			return
		}
		spec, quoted = rest[1:end], false
	default:
		ex.sink.Errorf(span, diag.E0018, "malformed #include directive")
		return
	}
	resolved, err := ex.resolveInclude(spec, quoted, fromDir)
	if err != nil {
		ex.sink.Errorf(span, diag.E0017, "%v", err)
		return
	}
	ex.expandFile(resolved, span)
}

func (ex *expander) handleUndef(directive string, span token.Span) {
	fields := strings.Fields(directive)
	if len(fields) < 2 {
		ex.sink.Errorf(span, diag.E0018, "#undef requires a macro name")
		return
	}
	delete(ex.macros, fields[1])
}

// handleDefine consumes one or more physical lines starting at index i for
// a #define directive, honoring trailing-backslash line continuation and
// brace-balanced multi-line replacement bodies. It returns the index of the
// last physical line consumed.
func (ex *expander) handleDefine(lines []string, i int, file, dir string) int {
	directive := strings.TrimSpace(lines[i])
	fields := strings.SplitN(directive, " ", 3)
	if len(fields) < 2 {
		ex.sink.Errorf(token.Span{File: file, Line: i + 1, Column: 1}, diag.E0018, "macros must have a name")
		return i
	}
	name := strings.TrimSpace(fields[1])
	body := ""
	if len(fields) == 3 {
		body = fields[2]
	}

	for strings.HasSuffix(body, "\\") && i+1 < len(lines) {
		body = strings.TrimSuffix(body, "\\")
		i++
		body += "\n" + lines[i]
	}
	for strings.Count(body, "{") > strings.Count(body, "}") && i+1 < len(lines) {
		i++
		body += "\n" + lines[i]
	}

	ex.macros[name] = &macro{name: name, body: body}
	return i
}

var identLike = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// substitute replaces every occurrence of a currently-live macro name with
// its body, matching on identifier boundaries so that a macro named FOO
// does not also rewrite FOOBAR.
func (ex *expander) substitute(line string) string {
	if len(ex.macros) == 0 {
		return line
	}
	return identLike.ReplaceAllStringFunc(line, func(word string) string {
		if m, ok := ex.macros[word]; ok {
			return m.body
		}
		return word
	})
}
