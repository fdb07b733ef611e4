package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fdcavalcanti/ntxbuild/pkg/builder"
	"github.com/fdcavalcanti/ntxbuild/pkg/logging"
	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
	"github.com/fdcavalcanti/ntxbuild/pkg/tui"
	"github.com/fdcavalcanti/ntxbuild/pkg/workspace"
)

// --- build ---

var buildJobs int

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the configured NuttX tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := currentRecord()
		if err != nil {
			return err
		}
		jobs := cfg.Build.Jobs
		if cmd.Flags().Changed("parallel") {
			jobs = buildJobs
		}
		code, err := newBuilder(cmd.Context(), rec).Build(cmd.Context(), jobs)
		if err != nil {
			return err
		}
		return ntxerr.External(rec.BuildTool, code)
	},
}

// --- clean / distclean ---

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build artifacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := currentRecord()
		if err != nil {
			return err
		}
		fmt.Println("🧹 Cleaning build artifacts...")
		code, err := newBuilder(cmd.Context(), rec).Clean(cmd.Context())
		if err != nil {
			return err
		}
		return ntxerr.External(rec.BuildTool, code)
	},
}

var distcleanCmd = &cobra.Command{
	Use:   "distclean",
	Short: "Remove build artifacts, the configuration and the environment record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := currentRecord()
		if err != nil {
			return err
		}
		fmt.Println("🧹 Resetting NuttX environment...")
		code, err := newBuilder(cmd.Context(), rec).Distclean(cmd.Context())
		if err != nil {
			return err
		}
		if code != 0 {
			return ntxerr.External(rec.BuildTool, code)
		}
		return workspace.Clear(rec.WorkspacePath)
	},
}

// --- make ---

var makeCmd = &cobra.Command{
	Use:       "make <target>",
	Short:     "Run a single make target in the NuttX tree",
	Args:      cobra.ExactArgs(1),
	ValidArgs: makeTargetNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := builder.ParseMakeTarget(args[0])
		if err != nil {
			return err
		}
		rec, err := currentRecord()
		if err != nil {
			return err
		}
		code, err := newBuilder(cmd.Context(), rec).Make(cmd.Context(), target)
		if err != nil {
			return err
		}
		return ntxerr.External(rec.BuildTool, code)
	},
}

func makeTargetNames() []string {
	var names []string
	for _, t := range builder.MakeTargets() {
		names = append(names, t.String())
	}
	return names
}

// --- menuconfig ---

var menuconfigCmd = &cobra.Command{
	Use:   "menuconfig",
	Short: "Open the interactive Kconfig menu",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := currentRecord()
		if err != nil {
			return err
		}
		code, err := newManager(cmd.Context(), rec).Menuconfig(cmd.Context())
		if err != nil {
			return err
		}
		return ntxerr.External(rec.BuildTool+" menuconfig", code)
	},
}

// --- artifacts ---

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "List build outputs (.o .a .elf .bin .hex) under the NuttX tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := currentRecord()
		if err != nil {
			return err
		}
		artifacts, err := builder.Artifacts(rec.OSPath())
		if err != nil {
			return err
		}
		if len(artifacts) == 0 {
			fmt.Println("No build artifacts found")
			return nil
		}
		t := tui.Table{Headers: []string{"Artifact", "Size"}, MaxCellWidth: 72}
		var total int64
		for _, a := range artifacts {
			rel, err := filepath.Rel(rec.OSPath(), a.Path)
			if err != nil {
				rel = a.Path
			}
			t.Rows = append(t.Rows, []string{filepath.ToSlash(rel), humanize.Bytes(uint64(a.Size))})
			total += a.Size
		}
		fmt.Print(t.Render())
		fmt.Printf("%d artifacts, %s\n", len(artifacts), humanize.Bytes(uint64(total)))
		return nil
	},
}

// --- copy ---

var (
	copyCount   int
	copyTarget  string
	copyCleanup []string
)

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Make lightweight workspace copies for parallel builds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.From(cmd.Context())
		if len(copyCleanup) > 0 {
			if err := workspace.Cleanup(copyCleanup); err != nil {
				return err
			}
			log.Info().Msgf("Removed %d workspace copies", len(copyCleanup))
			return nil
		}

		rec, err := currentRecord()
		if err != nil {
			return err
		}
		target := cfg.Copy.TargetDir
		if copyTarget != "" {
			target = copyTarget
		}
		copies, err := workspace.CopyTree(rec.WorkspacePath, workspace.CopyOptions{
			Count:     copyCount,
			TargetDir: target,
			Progress:  os.Stderr,
		})
		if err != nil {
			return err
		}
		for _, c := range copies {
			fmt.Println(c)
		}
		log.Info().Msgf("Remove them with: ntxbuild copy --cleanup %s", strings.Join(copies, ","))
		return nil
	},
}

func init() {
	buildCmd.Flags().IntVarP(&buildJobs, "parallel", "j", 0, "Number of parallel jobs (default from settings)")

	copyCmd.Flags().IntVarP(&copyCount, "count", "n", 1, "Number of copies")
	copyCmd.Flags().StringVar(&copyTarget, "target-dir", "", "Directory receiving the copies (default from settings, then the system temp dir)")
	copyCmd.Flags().StringSliceVar(&copyCleanup, "cleanup", nil, "Remove the given copies instead of making new ones")
}
