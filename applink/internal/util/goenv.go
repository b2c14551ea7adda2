// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const goenvName = "go.env"

// FindGOENV looks for the go.env file in dir and its parents. The search
// stops at the first directory that contains go.mod but no go.env. It
// returns an empty string if no go.env file was found.
func FindGOENV(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		goenvPath := filepath.Join(dir, goenvName)
		fi, err := os.Stat(goenvPath)
		if err == nil {
			if !fi.Mode().IsRegular() {
				return "", fmt.Errorf("%s is not a regular file", goenvPath)
			}
			return goenvPath, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		_, err = os.Stat(filepath.Join(dir, "go.mod"))
		if err == nil {
			return "", nil // found go.mod but no goenvName, stop here
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
