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

package preprocess

import (
	"os"
	"path/filepath"
	"testing"

	"x4c/diag"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIncludeSpanRemapping(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "defs.p4", "const bit<8> X = 1;\n")
	root := writeFile(t, dir, "main.p4", "#include \"defs.p4\"\nconst bit<8> Y = 2;\n")

	sink := diag.NewSink()
	unit := Run(root, nil, sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", sink.Format())
	}
	if len(unit.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %#v", len(unit.Lines), unit.Lines)
	}
	if unit.Lines[0].File != filepath.Join(dir, "defs.p4") || unit.Lines[0].Number != 1 {
		t.Errorf("included line did not keep its own file/line: %#v", unit.Lines[0])
	}
	if unit.Lines[1].File != root || unit.Lines[1].Number != 2 {
		t.Errorf("including file's line was misattributed: %#v", unit.Lines[1])
	}
}

func TestIncludeCycleIsFatal(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.p4")
	b := filepath.Join(dir, "b.p4")
	os.WriteFile(a, []byte("#include \"b.p4\"\n"), 0o644)
	os.WriteFile(b, []byte("#include \"a.p4\"\n"), 0o644)

	sink := diag.NewSink()
	Run(a, nil, sink)
	if !sink.HasErrors() {
		t.Fatal("expected an include-cycle error")
	}
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Code == diag.E0016 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected E0016, got %v", sink.Diagnostics())
	}
}

func TestDefineSubstitution(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.p4", "#define WIDTH 16\nbit<WIDTH> x;\n")
	sink := diag.NewSink()
	unit := Run(root, nil, sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", sink.Format())
	}
	if len(unit.Lines) != 1 || unit.Lines[0].Text != "bit<16> x;" {
		t.Fatalf("macro substitution failed: %#v", unit.Lines)
	}
}

func TestUndefStopsSubstitution(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.p4", "#define WIDTH 16\n#undef WIDTH\nbit<WIDTH> x;\n")
	sink := diag.NewSink()
	unit := Run(root, nil, sink)
	if len(unit.Lines) != 1 || unit.Lines[0].Text != "bit<WIDTH> x;" {
		t.Fatalf("expected macro to no longer substitute after #undef: %#v", unit.Lines)
	}
}

func TestCoreP4Include(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.p4", "#include <core.p4>\n")
	sink := diag.NewSink()
	unit := Run(root, nil, sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", sink.Format())
	}
	if len(unit.Lines) == 0 {
		t.Fatal("expected core.p4 shim content to be spliced in")
	}
}
