// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ldscript

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/embeddedgo/applink/applink/internal/layout"
)

const (
	base = 0x80400000
	step = 0x20000
)

const linkerSrc = `OUTPUT_ARCH(riscv)
ENTRY(_start)

BASE_ADDRESS = 0x80400000;

SECTIONS
{
    . = BASE_ADDRESS;
    .text : {
        *(.text.entry)
        *(.text .text.*)
    }
}
`

func TestParseLocatesMarker(t *testing.T) {
	tpl, err := Parse("linker_src.ld", linkerSrc, base)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tpl.Marker != 3 {
		t.Errorf("Marker = %d, want 3", tpl.Marker)
	}
	if tpl.Literal != "0x80400000" {
		t.Errorf("Literal = %s", tpl.Literal)
	}
	if strings.Join(tpl.Lines, "") != linkerSrc {
		t.Error("joined lines differ from the template text")
	}
}

func TestRenderReplacesOnlyMarkerLine(t *testing.T) {
	tpl, err := Parse("linker_src.ld", linkerSrc, base)
	if err != nil {
		t.Fatal(err)
	}
	w := layout.Allocate(1, base, step)
	lines := tpl.Render(w)
	if len(lines) != len(tpl.Lines) {
		t.Fatalf("Render returned %d lines, want %d", len(lines), len(tpl.Lines))
	}
	for i, line := range lines {
		if i == tpl.Marker {
			if line != "BASE_ADDRESS = 0x80420000;\n" {
				t.Errorf("marker line = %q", line)
			}
			continue
		}
		if line != tpl.Lines[i] {
			t.Errorf("line %d changed: %q -> %q", i, tpl.Lines[i], line)
		}
	}
}

func TestRenderIsNotCumulative(t *testing.T) {
	// The literal of the first window equals the base literal, so a
	// cumulative implementation would have nothing left to replace later.
	tpl, err := Parse("linker_src.ld", linkerSrc, base)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		w := layout.Allocate(i, base, step)
		got := tpl.Render(w)[tpl.Marker]
		want := "BASE_ADDRESS = " + layout.Literal(w.Start) + ";\n"
		if got != want {
			t.Errorf("render %d: marker line = %q, want %q", i, got, want)
		}
	}
	if tpl.Lines[tpl.Marker] != "BASE_ADDRESS = 0x80400000;\n" {
		t.Errorf("template modified: %q", tpl.Lines[tpl.Marker])
	}
}

func TestLocateLastOccurrenceWins(t *testing.T) {
	// Templates are expected to contain the literal once. If there are
	// more occurrences the last one is the marker.
	text := "/* 0x80400000 */\nBASE_ADDRESS = 0x80400000;\n. = BASE_ADDRESS;\n"
	tpl, err := Parse("t.ld", text, base)
	if err != nil {
		t.Fatal(err)
	}
	if tpl.Marker != 1 {
		t.Errorf("Marker = %d, want 1", tpl.Marker)
	}
	lines := tpl.Render(layout.Allocate(2, base, step))
	if lines[0] != "/* 0x80400000 */\n" {
		t.Errorf("first occurrence replaced: %q", lines[0])
	}
	if lines[1] != "BASE_ADDRESS = 0x80440000;\n" {
		t.Errorf("marker line = %q", lines[1])
	}
}

func TestMarkerNotFound(t *testing.T) {
	_, err := Parse("t.ld", "BASE_ADDRESS = 0x80000000;\n", base)
	if !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("got %v, want ErrMarkerNotFound", err)
	}
	if _, err := Locate(nil, "0x1"); !errors.Is(err, ErrMarkerNotFound) {
		t.Errorf("Locate(nil) = %v", err)
	}
}

func TestSplitLinesNoTrailingNewline(t *testing.T) {
	lines := SplitLines("a\r\nb")
	if len(lines) != 2 || lines[0] != "a\r\n" || lines[1] != "b" {
		t.Errorf("SplitLines = %q", lines)
	}
}

func TestLoadAndPersist(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "linker_src.ld")
	dst := filepath.Join(dir, "linker.ld")
	if err := os.WriteFile(src, []byte(linkerSrc), 0o644); err != nil {
		t.Fatal(err)
	}
	tpl, err := Load(src, base)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i := 0; i < 2; i++ {
		w := layout.Allocate(i, base, step)
		if err := tpl.Persist(tpl.Render(w), dst); err != nil {
			t.Fatalf("Persist: %v", err)
		}
		data, err := os.ReadFile(dst)
		if err != nil {
			t.Fatal(err)
		}
		s := string(data)
		if !strings.HasPrefix(s, "/* generated from linker_src.ld, DO NOT EDIT */\n") {
			t.Errorf("missing header: %q", s)
		}
		if !strings.Contains(s, "BASE_ADDRESS = "+layout.Literal(w.Start)+";\n") {
			t.Errorf("window %d: address not patched:\n%s", i, s)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.ld"), base)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want os.ErrNotExist", err)
	}
}
