package runner

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rotisserie/eris"

	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRealExecutorEcho(t *testing.T) {
	skipWithoutShell(t)
	r := &RealExecutor{}
	result, err := r.Run(context.Background(), Command{Name: "echo", Args: []string{"hello"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := strings.TrimSpace(string(result.Stdout))
	if out != "hello" {
		t.Errorf("stdout = %q, want %q", out, "hello")
	}
	if result.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", result.ExitCode)
	}
}

func TestRealExecutorNonzeroExit(t *testing.T) {
	skipWithoutShell(t)
	r := &RealExecutor{}
	result, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo oops >&2; exit 3"}})
	if err != nil {
		t.Fatalf("nonzero exit must not be an error: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", result.ExitCode)
	}
	if strings.TrimSpace(string(result.Stderr)) != "oops" {
		t.Errorf("stderr = %q", result.Stderr)
	}
}

func TestRealExecutorSignalledChild(t *testing.T) {
	skipWithoutShell(t)
	r := &RealExecutor{}
	result, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "kill -TERM $$"}})
	if err != nil {
		t.Fatalf("signalled child must not be an error: %v", err)
	}
	if result.ExitCode != 128+15 {
		t.Errorf("exit code = %d, want 143", result.ExitCode)
	}
}

func TestRealExecutorStartFailure(t *testing.T) {
	r := &RealExecutor{}
	_, err := r.Run(context.Background(), Command{Name: "ntxbuild-definitely-missing-binary"})
	if err == nil {
		t.Fatal("expected start error")
	}
	if !eris.Is(err, ntxerr.ErrStart) {
		t.Errorf("error %v should wrap ErrStart", err)
	}
}

func TestRealExecutorDir(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	r := &RealExecutor{}
	result, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "pwd -P"}, Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.EvalSymlinks(dir)
	if got := strings.TrimSpace(string(result.Stdout)); got != want {
		t.Errorf("pwd = %q, want %q", got, want)
	}
}

func TestRealExecutorEnv(t *testing.T) {
	skipWithoutShell(t)
	r := &RealExecutor{}
	result, err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo $NTX_RUNNER_TEST"},
		Env:  []string{"NTX_RUNNER_TEST=42"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(result.Stdout)); got != "42" {
		t.Errorf("env value = %q, want 42", got)
	}
}

func TestRealExecutorStream(t *testing.T) {
	skipWithoutShell(t)
	var liveOut, liveErr bytes.Buffer
	r := &RealExecutor{}
	script := "for i in 1 2 3; do echo out$i; echo err$i >&2; done; exit 5"
	result, err := r.Stream(context.Background(), Command{Name: "sh", Args: []string{"-c", script}}, &liveOut, &liveErr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 5 {
		t.Errorf("exit code = %d, want 5", result.ExitCode)
	}
	wantOut := "out1\nout2\nout3\n"
	wantErr := "err1\nerr2\nerr3\n"
	if string(result.Stdout) != wantOut || liveOut.String() != wantOut {
		t.Errorf("stdout captured %q live %q, want %q", result.Stdout, liveOut.String(), wantOut)
	}
	if string(result.Stderr) != wantErr || liveErr.String() != wantErr {
		t.Errorf("stderr captured %q live %q, want %q", result.Stderr, liveErr.String(), wantErr)
	}
}

func TestRealExecutorStreamStartFailure(t *testing.T) {
	r := &RealExecutor{}
	_, err := r.Stream(context.Background(), Command{Name: "ntxbuild-definitely-missing-binary"}, nil, nil)
	if !eris.Is(err, ntxerr.ErrStart) {
		t.Errorf("error %v should wrap ErrStart", err)
	}
}

func TestRealExecutorInteractive(t *testing.T) {
	skipWithoutShell(t)
	var out bytes.Buffer
	r := &RealExecutor{Stdin: strings.NewReader("typed\n"), Stdout: &out, Stderr: &out}
	code, err := r.Interactive(context.Background(), Command{Name: "sh", Args: []string{"-c", "read x; echo got:$x; exit 4"}})
	if err != nil {
		t.Fatal(err)
	}
	if code != 4 {
		t.Errorf("exit code = %d, want 4", code)
	}
	if strings.TrimSpace(out.String()) != "got:typed" {
		t.Errorf("output = %q", out.String())
	}
}

func TestIsExecNotFound(t *testing.T) {
	if !isExecNotFound(exec.ErrNotFound) {
		t.Error("expected ErrNotFound to be detected")
	}
	err := &exec.Error{Name: "bogus", Err: exec.ErrNotFound}
	if !isExecNotFound(err) {
		t.Error("expected exec.Error wrapping ErrNotFound to be detected")
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "make", Args: []string{"-j4"}}
	if c.String() != "make -j4" {
		t.Errorf("String() = %q", c.String())
	}
	if (Command{Name: "make"}).String() != "make" {
		t.Error("String() without args")
	}
}
