// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"errors"
	"fmt"
	"os"
)

// Quiet suppresses the output of Info.
var Quiet bool

func Info(f string, args ...any) {
	if Quiet {
		return
	}
	fmt.Fprintf(os.Stderr, f+"\n", args...)
}

func Warn(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
}

func Fatal(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

// ExitCoder is implemented by errors that carry the exit status of a failed
// external command.
type ExitCoder interface {
	ExitCode() int
}

// FatalErr prints an error description and exits the program if the
// err != nil. If err wraps an ExitCoder with a non-zero code the program
// exits with this code.
func FatalErr(what string, err error) {
	if err == nil {
		return
	}
	s := err.Error() + "\n"
	if what != "" {
		s = what + ": " + s
	}
	os.Stderr.WriteString(s)
	var ec ExitCoder
	if errors.As(err, &ec) && ec.ExitCode() > 0 {
		os.Exit(ec.ExitCode())
	}
	os.Exit(1)
}

// Getenv returns the value of the environment variable key or def if the
// variable is not set or empty.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
