// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ldscript rewrites the base address in a linker script template.
//
// The template is an ordinary linker script that contains the base address
// literal (for example 0x80400000) somewhere, typically in a line like
//
//	BASE_ADDRESS = 0x80400000;
//
// The script grammar is not parsed. The marker line is the last line that
// contains the literal and only the literal text in this line is replaced.
package ldscript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/embeddedgo/applink/applink/internal/layout"
)

var ErrMarkerNotFound = errors.New("base address not found in linker script template")

// Template is a linker script template loaded into memory. It is never
// modified after Load.
type Template struct {
	Name    string   // path the template was loaded from
	Literal string   // rendered base address
	Marker  int      // index of the marker line in Lines
	Lines   []string // pristine lines with their line terminators
}

// Load reads the template from the named file and locates the line that
// contains the base address.
func Load(name string, base uint64) (*Template, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return Parse(name, string(data), base)
}

// Parse is like Load but takes the template text.
func Parse(name, text string, base uint64) (*Template, error) {
	lines := SplitLines(text)
	lit := layout.Literal(base)
	marker, err := Locate(lines, lit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, lit)
	}
	return &Template{Name: name, Literal: lit, Marker: marker, Lines: lines}, nil
}

// SplitLines splits text after each newline. Joining the result gives the
// original text back.
func SplitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if n := len(lines) - 1; lines[n] == "" {
		lines = lines[:n]
	}
	return lines
}

// Locate returns the index of the last line that contains literal.
func Locate(lines []string, literal string) (int, error) {
	marker := -1
	for i, line := range lines {
		if strings.Contains(line, literal) {
			marker = i
		}
	}
	if marker < 0 {
		return -1, ErrMarkerNotFound
	}
	return marker, nil
}

// Render returns a copy of the template lines in which the base address in
// the marker line is replaced with w.Start. Every call starts from the
// pristine marker line.
func (t *Template) Render(w layout.Window) []string {
	lines := make([]string, len(t.Lines))
	copy(lines, t.Lines)
	lines[t.Marker] = strings.ReplaceAll(
		t.Lines[t.Marker], t.Literal, layout.Literal(w.Start),
	)
	return lines
}

// Header returns the comment that Persist writes at the beginning of the
// generated script.
func (t *Template) Header() string {
	return "/* generated from " + filepath.Base(t.Name) + ", DO NOT EDIT */\n"
}

// Persist overwrites the named linker script with the header and lines. The
// file is closed before Persist returns so the toolchain can read it.
func (t *Template) Persist(lines []string, name string) error {
	var sb strings.Builder
	sb.WriteString(t.Header())
	for _, line := range lines {
		sb.WriteString(line)
	}
	if err := os.WriteFile(name, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write linker script: %w", err)
	}
	return nil
}
