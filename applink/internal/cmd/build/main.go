// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/embeddedgo/applink/applink/internal/layout"
	"github.com/embeddedgo/applink/applink/internal/pipeline"
	"github.com/embeddedgo/applink/applink/internal/toolchain"
	"github.com/embeddedgo/applink/applink/internal/util"
)

const Descr = "build all applications, each at its own address, and write the manifest"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS]\n"+
				"Every option defaults to the APPLINK_<OPTION> environment variable if set.\n"+
				"Options:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	env := func(name, def string) string {
		return util.Getenv("APPLINK_"+strings.ToUpper(name), def)
	}
	mode := fs.String(
		"mode", env("mode", "addressed"),
		"build `mode`:\n"+
			"addressed:   link every app at its own address, produce raw binaries\n"+
			"unaddressed: produce plain executables\n",
	)
	dir := fs.String("C", env("dir", ""), "change to `dir` before doing anything")
	src := fs.String("src", env("src", "src/bin"), "directory with the app sources")
	suffix := fs.String("suffix", env("suffix", ".rs"), "suffix of the app source files")
	base := fs.String("base", env("base", "0x80400000"), "`address` of the first app")
	step := fs.String("step", env("step", "0x20000"), "`size` of the address window of every app")
	tpl := fs.String("template", env("template", "src/linker_src.ld"), "linker script template")
	script := fs.String("script", env("script", "src/linker.ld"), "linker script used by the build command")
	manifest := fs.String("manifest", env("manifest", "binmap.toml"), "manifest file")
	stale := fs.String("stale", env("stale", "binmap.txt"), "obsolete manifest file to remove")
	target := fs.String("target", env("target", "riscv64gc-unknown-none-elf"), "target triple")
	profile := fs.String("profile", env("profile", "release"), "build profile")
	buildCmd := fs.String(
		"cmd", env("cmd", "make $OUT"),
		"build `command`, $APP, $OUT, $TARGET and $PROFILE are replaced\n"+
			"with the app name, output path, target triple and build profile",
	)
	dryRun := fs.Bool("n", false, "print the build plan but do not build anything")
	quiet := fs.Bool("quiet", false, "do not print progress information")
	fs.Parse(args)
	if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}
	util.Quiet = *quiet
	if *dir != "" {
		util.FatalErr("", os.Chdir(*dir))
	}

	cfg := &pipeline.Config{
		SrcDir:        *src,
		Suffix:        *suffix,
		Template:      *tpl,
		Script:        *script,
		Manifest:      *manifest,
		StaleManifest: *stale,
		Target:        *target,
		Profile:       *profile,
	}
	var err error
	cfg.Mode, err = pipeline.ParseMode(*mode)
	util.FatalErr("", err)
	cfg.Base, err = layout.ParseLiteral(*base)
	util.FatalErr("base", err)
	cfg.Step, err = layout.ParseLiteral(*step)
	util.FatalErr("step", err)
	words := strings.Fields(*buildCmd)
	if len(words) == 0 {
		util.Fatal("empty build command")
	}
	cfg.Builder = &toolchain.Command{
		Args:    words,
		Target:  cfg.Target,
		Profile: cfg.Profile,
	}

	if *dryRun {
		steps, err := pipeline.Plan(cfg)
		util.FatalErr("", err)
		printPlan(cfg.Mode, steps)
		return
	}
	cfg.OnBuild = func(i, n int, s pipeline.Step) {
		if cfg.Mode == pipeline.Addressed {
			util.Info("[%d/%d] %s at %s", i+1, n, s.App, s.Window)
		} else {
			util.Info("[%d/%d] %s", i+1, n, s.App)
		}
	}
	recs, err := pipeline.Run(cfg)
	util.FatalErr("", err)
	util.Info("%s: %d apps", cfg.Manifest, len(recs))
}

func printPlan(mode pipeline.Mode, steps []pipeline.Step) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, s := range steps {
		if mode == pipeline.Addressed {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.App, s.Window, s.Out)
		} else {
			fmt.Fprintf(tw, "%s\t%s\n", s.App, s.Out)
		}
	}
	tw.Flush()
}
