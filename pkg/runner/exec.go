package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
)

const chunkSize = 1024

// RealExecutor runs commands via os/exec.
type RealExecutor struct {
	// Stdin, Stdout and Stderr are handed to interactive processes.
	// Nil means the corresponding os.Std* file.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (r *RealExecutor) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

// Run executes the command and captures stdout and stderr.
func (r *RealExecutor) Run(ctx context.Context, c Command) (*Result, error) {
	start := time.Now()
	cmd := r.command(ctx, c)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code, err := exitCode(c, cmd.Run())
	if err != nil {
		return nil, err
	}
	return &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: code,
		Duration: time.Since(start),
	}, nil
}

// Stream executes the command with one reader per output pipe. Each chunk
// is written to the live writer as soon as it arrives and kept for the
// Result. Ordering holds within a stream only.
func (r *RealExecutor) Stream(ctx context.Context, c Command, stdout, stderr io.Writer) (*Result, error) {
	start := time.Now()
	cmd := r.command(ctx, c)

	outPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, eris.Wrapf(err, "stdout pipe for %q", c.Name)
	}
	errPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, eris.Wrapf(err, "stderr pipe for %q", c.Name)
	}
	if _, err := exitCode(c, cmd.Start()); err != nil {
		return nil, err
	}

	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error { return pump(outPipe, stdout, &outBuf) })
	g.Go(func() error { return pump(errPipe, stderr, &errBuf) })
	copyErr := g.Wait()

	code, err := exitCode(c, cmd.Wait())
	if err != nil {
		return nil, err
	}
	if copyErr != nil {
		return nil, eris.Wrapf(copyErr, "read output of %q", c.Name)
	}
	return &Result{
		Stdout:   outBuf.Bytes(),
		Stderr:   errBuf.Bytes(),
		ExitCode: code,
		Duration: time.Since(start),
	}, nil
}

// Interactive runs the command in the foreground with the terminal attached.
func (r *RealExecutor) Interactive(ctx context.Context, c Command) (int, error) {
	cmd := r.command(ctx, c)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return exitCode(c, cmd.Run())
}

// pump copies src to live and keep in fixed-size chunks until EOF.
func pump(src io.Reader, live io.Writer, keep *bytes.Buffer) error {
	if live == nil {
		live = io.Discard
	}
	buf := make([]byte, chunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			keep.Write(buf[:n])
			if _, werr := live.Write(buf[:n]); werr != nil {
				live = io.Discard
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// exitCode separates a nonzero exit (returned as code) from a failure to
// run the process at all (returned as an ErrStart error). Death by signal
// N is reported as 128+N.
func exitCode(c Command, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// A signalled child has no exit status; report it the way shells do.
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		if code := exitErr.ExitCode(); code > 0 {
			return code, nil
		}
		return 1, nil
	}
	if isExecNotFound(err) {
		return 0, eris.Wrapf(ntxerr.ErrStart, "%q: executable not found", c.Name)
	}
	return 0, eris.Wrapf(ntxerr.ErrStart, "%q: %v", c.Name, err)
}

// isExecNotFound returns true when the error indicates the executable was not found.
func isExecNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var execErr *exec.Error
	return errors.As(err, &execErr)
}
