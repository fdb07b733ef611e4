package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fdcavalcanti/ntxbuild/pkg/builder"
	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
	"github.com/fdcavalcanti/ntxbuild/pkg/tui"
	"github.com/fdcavalcanti/ntxbuild/pkg/workspace"
)

// --- info ---

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the workspace, environment record and selected board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := currentRecord()
		if err != nil {
			if !eris.Is(err, ntxerr.ErrRecordNotFound) {
				return err
			}
			root, lerr := workspace.Locate(".", cfg.Workspace.OSDir, cfg.Workspace.AppsDir)
			if lerr != nil {
				fmt.Println("NuttX root not found in current directory tree")
				return lerr
			}
			rec = &workspace.Record{
				WorkspacePath: root,
				OSDir:         cfg.Workspace.OSDir,
				AppsDir:       cfg.Workspace.AppsDir,
				BuildTool:     cfg.Build.Tool,
			}
		}

		info, err := builder.CollectInfo(*rec)
		if err != nil {
			return err
		}
		if infoJSON {
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return eris.Wrap(err, "marshal info")
			}
			fmt.Println(string(data))
			return nil
		}
		report := tui.InfoReport{Info: *info, Version: version}
		fmt.Print(tui.RenderMarkdown(report.Markdown(), terminalWidth()))
		return nil
	},
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the .ntxenv environment record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := workspace.GenerateRecordSchema()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Output as JSON")
}
