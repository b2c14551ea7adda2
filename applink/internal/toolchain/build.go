// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package toolchain runs the external build of a single application.
package toolchain

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"strconv"

	"github.com/embeddedgo/applink/applink/internal/util"
)

// Builder builds one application. The out argument is the path of the
// artifact the build is expected to produce.
type Builder interface {
	Build(app, out string) error
}

// OutputPath returns the path of the artifact produced for app:
// target/TARGET/PROFILE/APP for an executable or the same with the .bin
// suffix for a raw binary image.
func OutputPath(target, profile, app string, bin bool) string {
	p := path.Join("target", target, profile, app)
	if bin {
		p += ".bin"
	}
	return p
}

// BuildError is returned when the build command exits with a non-zero
// status.
type BuildError struct {
	App    string
	Code   int
	Output []byte // the tail of the standard error output
}

func (e *BuildError) Error() string {
	return "build " + e.App + ": exit status " + strconv.Itoa(e.Code)
}

func (e *BuildError) ExitCode() int { return e.Code }

// Command runs an external command for every built application. Words of
// Args are expanded before running it: $APP (or ${APP}) becomes the name of
// the application, $OUT the output path, $TARGET and $PROFILE the values of
// the fields with the same name. Other $ sequences are left as is. The
// command is not run by a shell.
type Command struct {
	Args    []string
	Dir     string   // working directory, "" means the current one
	Env     []string // added to the environment of the command
	Target  string
	Profile string
	Stdout  io.Writer // os.Stdout if nil
	Stderr  io.Writer // os.Stderr if nil
}

const outputTail = 4096

// Expand returns the arguments of the command run for app.
func (c *Command) Expand(app, out string) []string {
	vars := func(k string) string {
		switch k {
		case "APP":
			return app
		case "OUT":
			return out
		case "TARGET":
			return c.Target
		case "PROFILE":
			return c.Profile
		}
		return "$" + k
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = os.Expand(a, vars)
	}
	return args
}

// Build runs the command and waits for it to exit. There is no timeout.
func (c *Command) Build(app, out string) error {
	if len(c.Args) == 0 {
		return errors.New("build: empty command")
	}
	args := c.Expand(app, out)
	cmdPath, err := exec.LookPath(args[0])
	if err != nil {
		return fmt.Errorf("build %s: %w", app, err)
	}
	env, err := c.environ()
	if err != nil {
		return fmt.Errorf("build %s: %w", app, err)
	}
	tail := &tailBuffer{max: outputTail}
	stdout, stderr := c.Stdout, c.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	cmd := &exec.Cmd{
		Path:   cmdPath,
		Args:   args,
		Dir:    c.Dir,
		Env:    env,
		Stdout: stdout,
		Stderr: io.MultiWriter(stderr, tail),
	}
	err = cmd.Run()
	if err == nil {
		return nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &BuildError{App: app, Code: ee.ExitCode(), Output: tail.Bytes()}
	}
	return fmt.Errorf("build %s: %w", app, err)
}

// environ returns nil (inherit the environment) if there is nothing to add.
func (c *Command) environ() ([]string, error) {
	extra := c.Env
	if os.Getenv("GOENV") == "" {
		dir := c.Dir
		if dir == "" {
			dir = "."
		}
		goenv, err := util.FindGOENV(dir)
		if err != nil {
			return nil, err
		}
		if goenv != "" {
			extra = append(extra[:len(extra):len(extra)], "GOENV="+goenv)
		}
	}
	if len(extra) == 0 {
		return nil, nil
	}
	return append(os.Environ(), extra...), nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return n, nil
}

func (b *tailBuffer) Bytes() []byte { return b.buf }
