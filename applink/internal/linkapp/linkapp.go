// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linkapp generates the assembly file that embeds the built
// applications into the kernel image.
//
// The generated file defines the _num_app symbol followed by a table with
// one entry of five 64-bit words per application: the address of its name,
// the start and end of its embedded image and the start and end of its
// address window (zeros if the application has no window).
package linkapp

import (
	"io"
	"path"
	"text/template"

	"github.com/embeddedgo/applink/applink/internal/binmap"
	"github.com/embeddedgo/applink/applink/internal/layout"
)

type app struct {
	N          int
	Name       string
	File       string
	Start, End string
}

var asm = template.Must(template.New("link_app").Parse(
	`# generated by applink linkapp, DO NOT EDIT

    .align 3
    .section .data
    .global _num_app
_num_app:
    .quad {{len .}}
{{range .}}
    .quad app_{{.N}}_name
    .quad app_{{.N}}_start
    .quad app_{{.N}}_end
    .quad {{.Start}}
    .quad {{.End}}
{{end}}{{range .}}
    .global app_{{.N}}_name
    .global app_{{.N}}_start
    .global app_{{.N}}_end
app_{{.N}}_name:
    .asciz {{printf "%q" .Name}}
app_{{.N}}_start:
    .incbin {{printf "%q" .File}}
app_{{.N}}_end:
{{end}}`))

// Generate writes the assembly for recs to w. Relative file paths in recs
// are prefixed with dir.
func Generate(w io.Writer, recs []binmap.Record, dir string) error {
	apps := make([]app, len(recs))
	for i := range recs {
		r := &recs[i]
		win, ok, err := r.Window()
		if err != nil {
			return err
		}
		a := &apps[i]
		a.N = i + 1
		a.Name = r.Name
		a.File = r.File
		if !path.IsAbs(a.File) {
			a.File = path.Join(dir, a.File)
		}
		a.Start, a.End = "0", "0"
		if ok {
			a.Start, a.End = layout.Literal(win.Start), layout.Literal(win.End)
		}
	}
	return asm.Execute(w, apps)
}
