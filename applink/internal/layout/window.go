// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layout assigns every application its own address window.
package layout

import (
	"fmt"
	"strconv"
)

// Window is the half-open address range [Start, End) reserved for one
// application.
type Window struct {
	Start uint64
	End   uint64
}

// Allocate returns the window of the index-th application:
// [base+step*index, base+step*(index+1)). Callers must allocate indexes
// densely, starting from zero, in the build order. The caller is responsible
// for choosing base and step so that the address space doesn't overflow.
func Allocate(index int, base, step uint64) Window {
	start := base + step*uint64(index)
	return Window{start, start + step}
}

// Plan allocates windows for n applications.
func Plan(n int, base, step uint64) []Window {
	ws := make([]Window, n)
	for i := range ws {
		ws[i] = Allocate(i, base, step)
	}
	return ws
}

func (w Window) Size() uint64 { return w.End - w.Start }

func (w Window) Contains(addr uint64) bool {
	return w.Start <= addr && addr < w.End
}

// Overlaps reports whether w and v share at least one address.
func (w Window) Overlaps(v Window) bool {
	return w.Start < v.End && v.Start < w.End
}

func (w Window) String() string {
	return "[" + Literal(w.Start) + "," + Literal(w.End) + ")"
}

// Literal renders addr the way it appears in linker scripts and manifests,
// as a lower case hexadecimal number with the 0x prefix.
func Literal(addr uint64) string {
	return "0x" + strconv.FormatUint(addr, 16)
}

// ParseLiteral parses an address rendered by Literal.
func ParseLiteral(s string) (uint64, error) {
	a, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad address literal '%s': %w", s, err)
	}
	return a, nil
}
