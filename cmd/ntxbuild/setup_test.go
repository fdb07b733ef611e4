package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
	"github.com/fdcavalcanti/ntxbuild/pkg/runner"
	"github.com/fdcavalcanti/ntxbuild/pkg/settings"
	"github.com/fdcavalcanti/ntxbuild/pkg/workspace"
)

type scriptedExecutor struct {
	code int
	cmds []runner.Command
}

func (e *scriptedExecutor) Run(_ context.Context, c runner.Command) (*runner.Result, error) {
	e.cmds = append(e.cmds, c)
	return &runner.Result{ExitCode: e.code}, nil
}

func (e *scriptedExecutor) Stream(ctx context.Context, c runner.Command, _, _ io.Writer) (*runner.Result, error) {
	return e.Run(ctx, c)
}

func (e *scriptedExecutor) Interactive(ctx context.Context, c runner.Command) (int, error) {
	res, err := e.Run(ctx, c)
	if err != nil {
		return 1, err
	}
	return res.ExitCode, nil
}

// testWorkspace creates a minimal NuttX workspace, makes it the working
// directory and installs default settings and e as the executor.
func testWorkspace(t *testing.T, e runner.Executor) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range []string{"nuttx/Makefile", "nuttx/INVIOLABLES.md", "nuttx-apps/Make.defs"} {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
	t.Chdir(root)

	c, loader := settings.Loader()
	require.NoError(t, loader.Load())
	prevCfg, prevExec := cfg, executor
	cfg, executor = c, e
	t.Cleanup(func() { cfg, executor = prevCfg, prevExec })

	wd, err := os.Getwd()
	require.NoError(t, err)
	return wd
}

func runStartWith(t *testing.T, args ...string) error {
	t.Helper()
	startCmd.SetContext(context.Background())
	return runStart(startCmd, args)
}

func TestStartSavesRecord(t *testing.T) {
	exec := &scriptedExecutor{}
	root := testWorkspace(t, exec)

	require.NoError(t, runStartWith(t, "sim", "nsh"))

	rec, err := workspace.Load(root)
	require.NoError(t, err)
	require.Equal(t, root, rec.WorkspacePath)
	require.Equal(t, "nuttx", rec.OSDir)
	require.Equal(t, "nuttx-apps", rec.AppsDir)
	require.Equal(t, "make", rec.BuildTool)

	require.Len(t, exec.cmds, 1)
	cmd := exec.cmds[0]
	require.Equal(t, "./tools/configure.sh", cmd.Name)
	require.Equal(t, filepath.Join(root, "nuttx"), cmd.Dir)
	require.True(t, slices.Contains(cmd.Args, "sim:nsh"), "args %v", cmd.Args)
}

func TestStartFailureClearsRecord(t *testing.T) {
	exec := &scriptedExecutor{code: 3}
	root := testWorkspace(t, exec)

	err := runStartWith(t, "sim", "nsh")
	require.Error(t, err)
	require.Equal(t, ntxerr.KindExternal, ntxerr.KindOf(err))
	require.Equal(t, 3, ntxerr.ExitCode(err))

	_, err = os.Stat(workspace.RecordPath(root))
	require.True(t, os.IsNotExist(err), "record left behind: %v", err)
}

func TestDistcleanClearsRecord(t *testing.T) {
	exec := &scriptedExecutor{}
	root := testWorkspace(t, exec)
	require.NoError(t, workspace.Save(workspace.Record{WorkspacePath: root, OSDir: "nuttx", AppsDir: "nuttx-apps", BuildTool: "make"}))

	distcleanCmd.SetContext(context.Background())
	require.NoError(t, distcleanCmd.RunE(distcleanCmd, nil))

	require.Len(t, exec.cmds, 1)
	require.Equal(t, []string{"distclean"}, exec.cmds[0].Args)
	_, err := os.Stat(workspace.RecordPath(root))
	require.True(t, os.IsNotExist(err), "record left behind: %v", err)
}

func TestDistcleanFailureKeepsRecord(t *testing.T) {
	exec := &scriptedExecutor{code: 2}
	root := testWorkspace(t, exec)
	require.NoError(t, workspace.Save(workspace.Record{WorkspacePath: root, OSDir: "nuttx", AppsDir: "nuttx-apps", BuildTool: "make"}))

	distcleanCmd.SetContext(context.Background())
	err := distcleanCmd.RunE(distcleanCmd, nil)
	require.Equal(t, 2, ntxerr.ExitCode(err))

	_, err = workspace.Load(root)
	require.NoError(t, err)
}
