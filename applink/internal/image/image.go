// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package image combines the built applications into a single memory image.
package image

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/marcinbor85/gohex"

	"github.com/embeddedgo/applink/applink/internal/binmap"
	"github.com/embeddedgo/applink/applink/internal/util"
)

// Load reads the files of recs. Relative file paths are relative to dir.
// ELF executables contribute their loadable sections. Any other file is a
// raw binary image loaded at the start of the application window and must
// fit in it.
func Load(recs []binmap.Record, dir string) (util.Sections, error) {
	var ss util.Sections
	for i := range recs {
		r := &recs[i]
		name := r.File
		if !filepath.IsAbs(name) {
			name = filepath.Join(dir, name)
		}
		win, hasWin, err := r.Window()
		if err != nil {
			return nil, err
		}
		isELF, err := util.IsELF(name)
		if err != nil {
			return nil, err
		}
		if isELF {
			es, err := util.ReadELF(name)
			if err != nil {
				return nil, err
			}
			for _, s := range es {
				end := s.Paddr + uint64(len(s.Data))
				if hasWin && (s.Paddr < win.Start || end > win.End) {
					return nil, fmt.Errorf(
						"%s: section at %#x-%#x outside its window %s",
						r.Name, s.Paddr, end, win,
					)
				}
			}
			ss = append(ss, es...)
			continue
		}
		if !hasWin {
			return nil, fmt.Errorf("%s: raw binary without address window", r.Name)
		}
		s, err := util.ReadBin(name, win.Start)
		if err != nil {
			return nil, err
		}
		if uint64(len(s.Data)) > win.Size() {
			return nil, fmt.Errorf(
				"%s: image size %#x exceeds its window %s",
				r.Name, len(s.Data), win,
			)
		}
		ss = append(ss, s)
	}
	ss.SortByPaddr()
	return ss, nil
}

// WriteHex writes the sections in the Intel HEX format.
func WriteHex(w io.Writer, ss util.Sections) error {
	mem := gohex.NewMemory()
	for _, s := range ss {
		addr := uint32(s.Paddr)
		if uint64(addr) != s.Paddr || uint64(addr)+uint64(len(s.Data)) > 1<<32 {
			return fmt.Errorf("hex: section at %#x doesn't fit in 32-bit address space", s.Paddr)
		}
		if err := mem.AddBinary(addr, s.Data); err != nil {
			return fmt.Errorf("hex: %w", err)
		}
	}
	return mem.DumpIntelHex(w, 16)
}

// WriteBin writes the sections as a flat binary starting at the lowest
// address. The gaps are filled with the pad byte.
func WriteBin(w io.Writer, ss util.Sections, pad byte) error {
	_, err := ss.Flatten(w, pad)
	return err
}
