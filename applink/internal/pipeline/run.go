// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline builds every application found in the source directory
// and writes the manifest describing them.
//
// A run goes through the following steps:
//
//	remove the stale manifest
//	discover and sort the applications
//	load the linker script template (addressed mode)
//	for every application, in order:
//		write the linker script patched with its address (addressed mode)
//		build it
//		record the result
//	write the manifest
//
// The first failure aborts the run and the manifest is not written. The
// builds run one after another because in the addressed mode they all read
// the same linker script file.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/embeddedgo/applink/applink/internal/apps"
	"github.com/embeddedgo/applink/applink/internal/binmap"
	"github.com/embeddedgo/applink/applink/internal/layout"
	"github.com/embeddedgo/applink/applink/internal/ldscript"
	"github.com/embeddedgo/applink/applink/internal/toolchain"
)

type Mode int

const (
	// Addressed links every application at its own address and produces
	// raw binary images.
	Addressed Mode = iota

	// Unaddressed produces ordinary executables linked at the address set
	// in the linker script.
	Unaddressed
)

func (m Mode) String() string {
	switch m {
	case Addressed:
		return "addressed"
	case Unaddressed:
		return "unaddressed"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "addressed":
		return Addressed, nil
	case "unaddressed":
		return Unaddressed, nil
	}
	return 0, fmt.Errorf("unknown mode: %s", s)
}

type Config struct {
	Mode   Mode
	SrcDir string // directory with the application sources
	Suffix string // suffix of application source names

	Base uint64 // address of the first application
	Step uint64 // size of the address window of every application

	Template string // linker script template
	Script   string // linker script read by the toolchain

	Manifest      string // manifest written at the end of the run
	StaleManifest string // left by older versions, removed at start

	Target  string // target triple
	Profile string // build profile

	Builder toolchain.Builder

	// OnBuild, if not nil, is called before the build of every application.
	OnBuild func(i, n int, s Step)
}

// Step describes the build of one application.
type Step struct {
	App    string
	Window layout.Window // zero in the Unaddressed mode
	Out    string        // path of the produced artifact
}

func (s *Step) Record(mode Mode) binmap.Record {
	if mode == Addressed {
		return binmap.NewRecord(s.App, s.Window, s.Out)
	}
	return binmap.Record{Name: s.App, File: s.Out}
}

func (cfg *Config) check() error {
	switch {
	case cfg.Mode != Addressed && cfg.Mode != Unaddressed:
		return fmt.Errorf("bad mode: %v", cfg.Mode)
	case cfg.Suffix == "":
		return errors.New("empty application suffix")
	case cfg.Manifest == "":
		return errors.New("no manifest path")
	case cfg.Mode == Addressed && cfg.Step == 0:
		return errors.New("zero address step")
	case cfg.Mode == Addressed && (cfg.Template == "" || cfg.Script == ""):
		return errors.New("no linker script template or output path")
	}
	return nil
}

// Plan discovers the applications and assigns them their windows and output
// paths. It does not modify anything.
func Plan(cfg *Config) ([]Step, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	names, err := apps.Dir(cfg.SrcDir, cfg.Suffix)
	if err != nil {
		return nil, err
	}
	addressed := cfg.Mode == Addressed
	steps := make([]Step, len(names))
	for i, name := range names {
		s := &steps[i]
		s.App = name
		s.Out = toolchain.OutputPath(cfg.Target, cfg.Profile, name, addressed)
		if addressed {
			s.Window = layout.Allocate(i, cfg.Base, cfg.Step)
		}
	}
	return steps, nil
}

// Run builds all applications and writes the manifest. It returns the
// written records.
func Run(cfg *Config) ([]binmap.Record, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	if cfg.Builder == nil {
		return nil, errors.New("no builder")
	}
	if cfg.StaleManifest != "" {
		if err := binmap.RemoveStale(cfg.StaleManifest); err != nil {
			return nil, err
		}
	}
	steps, err := Plan(cfg)
	if err != nil {
		return nil, err
	}
	var tpl *ldscript.Template
	if cfg.Mode == Addressed {
		tpl, err = ldscript.Load(cfg.Template, cfg.Base)
		if err != nil {
			return nil, err
		}
	}
	recs := make([]binmap.Record, 0, len(steps))
	for i := range steps {
		s := &steps[i]
		if tpl != nil {
			if err := tpl.Persist(tpl.Render(s.Window), cfg.Script); err != nil {
				return nil, fmt.Errorf("%s: %w", s.App, err)
			}
		}
		if cfg.OnBuild != nil {
			cfg.OnBuild(i, len(steps), *s)
		}
		if err := cfg.Builder.Build(s.App, s.Out); err != nil {
			return nil, err
		}
		recs = append(recs, s.Record(cfg.Mode))
	}
	if err := binmap.Write(cfg.Manifest, recs); err != nil {
		return nil, err
	}
	return recs, nil
}
