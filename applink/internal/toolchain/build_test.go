// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package toolchain

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestOutputPath(t *testing.T) {
	const target, profile = "riscv64gc-unknown-none-elf", "release"
	if p := OutputPath(target, profile, "00hello", true); p != "target/riscv64gc-unknown-none-elf/release/00hello.bin" {
		t.Errorf("bin path = %s", p)
	}
	if p := OutputPath(target, profile, "00hello", false); p != "target/riscv64gc-unknown-none-elf/release/00hello" {
		t.Errorf("elf path = %s", p)
	}
}

func TestExpand(t *testing.T) {
	c := &Command{
		Args:    []string{"make", "$OUT", "APP=${APP}", "T=$TARGET/$PROFILE", "$1", "$HOME"},
		Target:  "riscv64gc-unknown-none-elf",
		Profile: "release",
	}
	got := c.Expand("hello", "target/x/hello.bin")
	want := []string{
		"make", "target/x/hello.bin", "APP=hello",
		"T=riscv64gc-unknown-none-elf/release", "$1", "$HOME",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Expand = %q, want %q", got, want)
	}
}

func TestBuildSuccess(t *testing.T) {
	dir := t.TempDir()
	c := &Command{
		Args: []string{
			"sh", "-c", `printf '%s %s %s %s' "$1" "$2" "$3" "$4" > "$1.args"`,
			"sh", "$APP", "$OUT", "$TARGET", "$PROFILE",
		},
		Dir:     dir,
		Target:  "riscv",
		Profile: "debug",
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := c.Build("alpha", "target/riscv/debug/alpha.bin"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "alpha.args"))
	if err != nil {
		t.Fatal(err)
	}
	if s := string(data); s != "alpha target/riscv/debug/alpha.bin riscv debug" {
		t.Errorf("command saw %q", s)
	}
}

func TestBuildFailure(t *testing.T) {
	var stderr bytes.Buffer
	c := &Command{
		Args:   []string{"sh", "-c", "echo compiling $0; echo 'error: boom' >&2; exit 3", "$APP"},
		Dir:    t.TempDir(),
		Stdout: io.Discard,
		Stderr: &stderr,
	}
	err := c.Build("beta", "out")
	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatalf("got %v, want *BuildError", err)
	}
	if be.App != "beta" || be.Code != 3 || be.ExitCode() != 3 {
		t.Errorf("BuildError = %+v", be)
	}
	if !strings.Contains(string(be.Output), "error: boom") {
		t.Errorf("captured output %q", be.Output)
	}
	if !strings.Contains(stderr.String(), "error: boom") {
		t.Errorf("stderr not forwarded: %q", stderr.String())
	}
	if err.Error() != "build beta: exit status 3" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestBuildCommandNotFound(t *testing.T) {
	c := &Command{Args: []string{"applink-no-such-command"}, Dir: t.TempDir()}
	err := c.Build("x", "out")
	if err == nil {
		t.Fatal("Build succeeded")
	}
	var be *BuildError
	if errors.As(err, &be) {
		t.Errorf("got BuildError for a missing command: %v", err)
	}
	if err := (&Command{}).Build("x", "out"); err == nil {
		t.Error("empty command succeeded")
	}
}

func TestBuildSetsGOENV(t *testing.T) {
	t.Setenv("GOENV", "")
	root := t.TempDir()
	goenv := filepath.Join(root, "go.env")
	if err := os.WriteFile(goenv, []byte("GOOS=noos\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(root, "user")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	c := &Command{
		Args:   []string{"sh", "-c", `printf %s "$GOENV" > goenv.txt`},
		Dir:    dir,
		Stdout: io.Discard,
		Stderr: io.Discard,
	}
	if err := c.Build("x", "out"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "goenv.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != goenv {
		t.Errorf("GOENV = %q, want %q", data, goenv)
	}
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{max: 4}
	b.Write([]byte("abc"))
	b.Write([]byte("defg"))
	if s := string(b.Bytes()); s != "defg" {
		t.Errorf("tail = %q", s)
	}
}
