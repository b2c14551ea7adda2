// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package apps finds the applications to build in a source directory.
package apps

import (
	"io/fs"
	"os"
	"slices"
	"strings"
)

// DiscoveryError is returned if the source directory cannot be listed.
type DiscoveryError struct {
	Dir string
	Err error
}

func (e *DiscoveryError) Error() string {
	return "discover apps in " + e.Dir + ": " + e.Err.Error()
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Discover returns the names of the entries in the root directory of fsys
// that end with suffix, with the suffix stripped. The names are sorted so
// the result does not depend on the order in which fsys lists them. An
// entry named exactly suffix is ignored.
func Discover(fsys fs.FS, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), suffix)
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Dir is like Discover but lists the directory dir of the host filesystem.
func Dir(dir, suffix string) ([]string, error) {
	names, err := Discover(os.DirFS(dir), suffix)
	if err != nil {
		return nil, &DiscoveryError{dir, err}
	}
	return names, nil
}
