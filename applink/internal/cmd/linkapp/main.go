// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linkapp

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/embeddedgo/applink/applink/internal/binmap"
	"github.com/embeddedgo/applink/applink/internal/linkapp"
	"github.com/embeddedgo/applink/applink/internal/util"
)

const Descr = "generate the assembly file that embeds the built apps in the kernel"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] [MANIFEST [OUTPUT]]\nOptions:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	dir := fs.String(
		"dir", "",
		"`prefix` of the app file paths (default: the manifest directory)",
	)
	fs.Parse(args)
	if fs.NArg() > 2 {
		fs.Usage()
		os.Exit(1)
	}
	manifest := fs.Arg(0)
	if manifest == "" {
		manifest = "binmap.toml"
	}
	out := fs.Arg(1)
	if out == "" {
		out = "link_app.S"
	}
	if *dir == "" {
		*dir = filepath.ToSlash(filepath.Dir(manifest))
	}
	recs, err := binmap.Read(manifest)
	util.FatalErr("", err)
	var buf bytes.Buffer
	util.FatalErr("", linkapp.Generate(&buf, recs, *dir))
	util.FatalErr("", os.WriteFile(out, buf.Bytes(), 0o644))
}
