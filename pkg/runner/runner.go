// Package runner executes the external tools ntxbuild delegates to (make,
// configure.sh, git) and reports their exit codes and output.
package runner

import (
	"context"
	"io"
	"strings"
	"time"
)

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env is appended to the current process environment.
	Env []string
}

// String renders the command line for logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result holds the output of a finished process. A nonzero ExitCode is a
// result, not an error.
type Result struct {
	Stdout   []byte        `json:"stdout"`
	Stderr   []byte        `json:"stderr"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// Executor abstracts real vs recorded process execution.
type Executor interface {
	// Run captures both output streams.
	Run(ctx context.Context, cmd Command) (*Result, error)
	// Stream forwards output live to stdout/stderr while capturing it.
	Stream(ctx context.Context, cmd Command, stdout, stderr io.Writer) (*Result, error)
	// Interactive hands the terminal to the process and returns its exit code.
	Interactive(ctx context.Context, cmd Command) (int, error)
}
