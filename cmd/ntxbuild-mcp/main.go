// Package main provides the ntxbuild-mcp binary, an MCP server for AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/fdcavalcanti/ntxbuild/pkg/logging"
	nmcp "github.com/fdcavalcanti/ntxbuild/pkg/mcp"
	"github.com/fdcavalcanti/ntxbuild/pkg/settings"
)

var version = "dev"

func main() {
	cfg, err := settings.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	h := &nmcp.Handlers{
		OSDir:     cfg.Workspace.OSDir,
		AppsDir:   cfg.Workspace.AppsDir,
		BuildTool: cfg.Build.Tool,
		Log:       logging.New(os.Stderr, cfg.LogLevel(), true),
	}
	s := nmcp.NewServer(version, h)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
