// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/embeddedgo/applink/applink/internal/binmap"
	"github.com/embeddedgo/applink/applink/internal/image"
	"github.com/embeddedgo/applink/applink/internal/util"
)

const Descr = "combine the built apps into one Intel HEX or binary image"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] [MANIFEST [IMAGE]]\nOptions:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	format := fs.String("format", "hex", "output `format`: hex or bin")
	pad := fs.Uint(
		"pad", 0xff,
		"pad `byte` used to fill gaps between apps in the bin format",
	)
	fs.Parse(args)
	if fs.NArg() > 2 {
		fs.Usage()
		os.Exit(1)
	}
	if *format != "hex" && *format != "bin" {
		util.Fatal("unknown format: %s", *format)
	}
	manifest := fs.Arg(0)
	if manifest == "" {
		manifest = "binmap.toml"
	}
	out := fs.Arg(1)
	if out == "" {
		out = "apps." + *format
	}
	recs, err := binmap.Read(manifest)
	util.FatalErr("", err)
	sections, err := image.Load(recs, filepath.Dir(manifest))
	util.FatalErr("", err)
	of, err := os.Create(out)
	util.FatalErr("", err)
	defer of.Close()
	switch *format {
	case "hex":
		err = image.WriteHex(of, sections)
		util.FatalErr("dumpintelhex", err)
	case "bin":
		err = image.WriteBin(of, sections, byte(*pad))
		util.FatalErr("flatten", err)
	}
}
