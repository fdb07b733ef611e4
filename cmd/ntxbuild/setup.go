package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fdcavalcanti/ntxbuild/pkg/catalog"
	"github.com/fdcavalcanti/ntxbuild/pkg/logging"
	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
	"github.com/fdcavalcanti/ntxbuild/pkg/runner"
	"github.com/fdcavalcanti/ntxbuild/pkg/shell"
	"github.com/fdcavalcanti/ntxbuild/pkg/tui"
	"github.com/fdcavalcanti/ntxbuild/pkg/workspace"
)

// --- install ---

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Clone the NuttX and apps repositories into the current directory",
	Args:  cobra.NoArgs,
	RunE:  runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.From(ctx)

	repos := []struct{ dir, url string }{
		{cfg.Workspace.OSDir, cfg.Install.OSURL},
		{cfg.Workspace.AppsDir, cfg.Install.AppsURL},
	}
	for _, r := range repos {
		if _, err := os.Stat(r.dir); err == nil {
			fmt.Printf("  ✓ %s already present\n", r.dir)
			continue
		}
		log.Info().Msgf("Cloning %s into %s", r.url, r.dir)
		res, err := executor.Stream(ctx, runner.Command{Name: "git", Args: []string{"clone", "--depth", "1", r.url, r.dir}}, os.Stdout, os.Stderr)
		if err != nil {
			return err
		}
		if res.ExitCode != 0 {
			return ntxerr.External("git clone", res.ExitCode)
		}
		fmt.Printf("  ✓ %s cloned\n", r.dir)
	}
	return nil
}

// --- start ---

var (
	startApps  string
	startTool  string
	startExtra string
	startPick  bool
)

var startCmd = &cobra.Command{
	Use:   "start [board] [defconfig] [-- configure.sh args]",
	Short: "Configure the workspace for a board and save the environment",
	Long: `Locates the workspace, runs tools/configure.sh for board:defconfig and
saves the environment record used by later commands. Without arguments,
or with --pick, the board and defconfig are chosen interactively.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.From(ctx)

	positional, extra := args, []string(nil)
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		positional, extra = args[:dash], args[dash:]
	}
	if startExtra != "" {
		words, err := shell.SplitArgs(startExtra)
		if err != nil {
			return err
		}
		extra = append(words, extra...)
	}

	appsDir := cfg.Workspace.AppsDir
	if startApps != "" {
		appsDir = startApps
	}
	root, err := workspace.Locate(".", cfg.Workspace.OSDir, appsDir)
	if err != nil {
		return err
	}
	rec := workspace.Record{
		WorkspacePath: root,
		OSDir:         cfg.Workspace.OSDir,
		AppsDir:       appsDir,
		BuildTool:     cfg.Build.Tool,
	}
	if startTool != "" {
		rec.BuildTool = startTool
	}

	board, defconfig, err := chooseTarget(rec.OSPath(), positional)
	if err != nil {
		return err
	}

	fmt.Printf("  📦 Board: %s\n", tui.Emphasis(board))
	fmt.Printf("  ⚙️  Defconfig: %s\n", tui.Emphasis(defconfig))
	fmt.Printf("\n🔧 Setting up NuttX configuration...\n")
	fmt.Printf("   Root directory: %s\n", rec.OSPath())
	fmt.Printf("   Apps directory: %s\n", rec.AppsPath())

	if err := workspace.Save(rec); err != nil {
		return err
	}
	if code := newBuilder(ctx, &rec).Setup(ctx, board, defconfig, extra); code != 0 {
		if err := workspace.Clear(root); err != nil {
			log.Warn().Err(err).Msg("Could not remove environment record")
		}
		fmt.Println(tui.Status(false, "Setup failed"))
		return ntxerr.External("configure.sh", code)
	}

	fmt.Println("   " + tui.Status(true, "Configuration completed successfully"))
	fmt.Println("\n🚀 NuttX environment is ready!")
	return nil
}

// chooseTarget returns board and defconfig from args, asking with the
// picker for whatever is missing.
func chooseTarget(osPath string, args []string) (string, string, error) {
	switch {
	case len(args) == 2 && !startPick:
		return args[0], args[1], nil
	case len(args) > 2:
		return "", "", eris.Wrapf(ntxerr.ErrInvalidArg, "expected board and defconfig, got %d arguments", len(args))
	}

	var board *catalog.Board
	if len(args) >= 1 {
		b, err := catalog.FindBoard(osPath, args[0])
		if err != nil {
			return "", "", err
		}
		board = b
	} else {
		boards, err := catalog.Boards(osPath, catalog.Filter{})
		if err != nil {
			return "", "", err
		}
		items := make([]tui.Item, len(boards))
		for i, b := range boards {
			items[i] = tui.Item{Title: b.Name, Detail: b.RelPath()}
		}
		idx, ok, err := tui.Pick("Select a board", items)
		if err != nil {
			return "", "", err
		}
		if !ok {
			return "", "", eris.Wrap(ntxerr.ErrInvalidArg, "no board selected")
		}
		board = &boards[idx]
	}

	if len(args) == 2 {
		if _, ok := board.Defconfig(args[1]); !ok {
			return "", "", eris.Wrapf(ntxerr.ErrInvalidArg, "board %s has no defconfig %s", board.Name, args[1])
		}
		return board.Name, args[1], nil
	}
	items := make([]tui.Item, len(board.Defconfigs))
	for i, d := range board.Defconfigs {
		items[i] = tui.Item{Title: d.Name, Detail: filepath.Join(board.RelPath(), "configs", d.Name)}
	}
	idx, ok, err := tui.Pick("Select a defconfig for "+board.Name, items)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", eris.Wrapf(ntxerr.ErrInvalidArg, "no defconfig selected for %s", board.Name)
	}
	return board.Name, board.Defconfigs[idx].Name, nil
}

func init() {
	startCmd.Flags().StringVarP(&startApps, "apps", "a", "", "Apps directory, relative to the workspace root (default from settings)")
	startCmd.Flags().StringVar(&startTool, "build-tool", "", "Build tool to record (default from settings)")
	startCmd.Flags().StringVar(&startExtra, "extra", "", `Extra configure.sh arguments as one shell-quoted string, e.g. "-l -E"`)
	startCmd.Flags().BoolVar(&startPick, "pick", false, "Choose board and defconfig interactively")
}
