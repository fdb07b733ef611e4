package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fdcavalcanti/ntxbuild/pkg/catalog"
	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
	"github.com/fdcavalcanti/ntxbuild/pkg/tui"
	"github.com/fdcavalcanti/ntxbuild/pkg/workspace"
)

// osPath is the OS tree of the current workspace. The catalog does not
// need a configured tree, so a located workspace is enough.
func osPath() (string, error) {
	rec, err := currentRecord()
	if err == nil {
		return rec.OSPath(), nil
	}
	if !eris.Is(err, ntxerr.ErrRecordNotFound) {
		return "", err
	}
	root, err := workspace.Locate(".", cfg.Workspace.OSDir, cfg.Workspace.AppsDir)
	if err != nil {
		return "", err
	}
	return (&workspace.Record{WorkspacePath: root, OSDir: cfg.Workspace.OSDir}).OSPath(), nil
}

// --- boards ---

var (
	boardsFilter catalog.Filter
	boardsPick   bool
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List the boards of the NuttX tree",
	Long: `Lists boards found under boards/<arch>/<soc>/<board>. --where takes an
expression over name, arch, soc, path and defconfigs, for example

  ntxbuild boards --where 'arch == "xtensa" && "nsh" in defconfigs'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := osPath()
		if err != nil {
			return err
		}
		boards, err := catalog.Boards(path, boardsFilter)
		if err != nil {
			return err
		}
		if len(boards) == 0 {
			fmt.Println("No boards match")
			return nil
		}

		if boardsPick {
			items := make([]tui.Item, len(boards))
			for i, b := range boards {
				items[i] = tui.Item{Title: b.Name, Detail: b.RelPath()}
			}
			idx, ok, err := tui.Pick("Boards", items)
			if err != nil || !ok {
				return err
			}
			return printDefconfigs(boards[idx])
		}

		names := make([]string, len(boards))
		for i, b := range boards {
			names[i] = b.Name
		}
		fmt.Print(tui.NameTable("Board", names).Render())
		fmt.Printf("%d boards\n", len(boards))
		return nil
	},
}

// --- defconfigs ---

var defconfigsCmd = &cobra.Command{
	Use:   "defconfigs <board>",
	Short: "List the defconfigs of a board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := osPath()
		if err != nil {
			return err
		}
		board, err := catalog.FindBoard(path, args[0])
		if err != nil {
			return err
		}
		return printDefconfigs(*board)
	},
}

func printDefconfigs(b catalog.Board) error {
	fmt.Printf("%s (%s)\n", tui.Emphasis(b.Name), b.RelPath())
	if len(b.Defconfigs) == 0 {
		fmt.Println("No defconfigs")
		return nil
	}
	fmt.Print(tui.NameTable("Defconfig", b.DefconfigNames()).Render())
	return nil
}

func init() {
	boardsCmd.Flags().StringVar(&boardsFilter.Arch, "arch", "", "Only boards of this architecture")
	boardsCmd.Flags().StringVar(&boardsFilter.Soc, "soc", "", "Only boards of this SoC")
	boardsCmd.Flags().StringVar(&boardsFilter.Board, "board", "", "Only the board with this name")
	boardsCmd.Flags().StringVar(&boardsFilter.Where, "where", "", "Filter expression")
	boardsCmd.Flags().BoolVar(&boardsPick, "pick", false, "Browse boards interactively and show the chosen board's defconfigs")
}
