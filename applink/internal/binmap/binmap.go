// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package binmap reads and writes the manifest of built applications.
//
// The manifest is a TOML file with one [[bin]] table per application, in
// build order:
//
//	[[bin]]
//	name = "00hello"
//	start = "0x80400000"
//	end = "0x80420000"
//	file = "target/riscv64gc-unknown-none-elf/release/00hello.bin"
//
// The start and end keys are present only for applications linked at
// their own address.
package binmap

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/embeddedgo/applink/applink/internal/layout"
)

type Record struct {
	Name  string `toml:"name"`
	Start string `toml:"start,omitempty"`
	End   string `toml:"end,omitempty"`
	File  string `toml:"file"`
}

// NewRecord returns the record of an application linked at the address
// window w.
func NewRecord(name string, w layout.Window, file string) Record {
	return Record{
		Name:  name,
		Start: layout.Literal(w.Start),
		End:   layout.Literal(w.End),
		File:  file,
	}
}

// Window returns the address window of the application. The ok result is
// false if the record has no window.
func (r *Record) Window() (w layout.Window, ok bool, err error) {
	if r.Start == "" && r.End == "" {
		return w, false, nil
	}
	if w.Start, err = layout.ParseLiteral(r.Start); err != nil {
		return w, false, fmt.Errorf("%s: %w", r.Name, err)
	}
	if w.End, err = layout.ParseLiteral(r.End); err != nil {
		return w, false, fmt.Errorf("%s: %w", r.Name, err)
	}
	if w.End < w.Start {
		return w, false, fmt.Errorf("%s: window %s ends before it starts", r.Name, w)
	}
	return w, true, nil
}

type manifest struct {
	Bin []Record `toml:"bin"`
}

// Encode returns the manifest text for recs.
func Encode(recs []Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(manifest{recs}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write replaces the content of the named file with the manifest. Nothing
// is written if recs cannot be encoded.
func Write(name string, recs []Record) error {
	data, err := Encode(recs)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read reads the manifest from the named file.
func Read(name string) ([]Record, error) {
	var m manifest
	md, err := toml.DecodeFile(name, &m)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if undec := md.Undecoded(); len(undec) != 0 {
		return nil, fmt.Errorf("read manifest %s: unknown key %s", name, undec[0])
	}
	for i, r := range m.Bin {
		if r.Name == "" || r.File == "" {
			return nil, fmt.Errorf("read manifest %s: bin %d: name or file missing", name, i)
		}
	}
	return m.Bin, nil
}

// RemoveStale removes the named file left by a previous run. It is not an
// error if the file does not exist.
func RemoveStale(name string) error {
	err := os.Remove(name)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
