// Package mcp exposes workspace queries and build actions as MCP tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server with the ntxbuild tools registered.
func NewServer(version string, h *Handlers) *server.MCPServer {
	s := server.NewMCPServer(
		"ntxbuild",
		version,
		server.WithToolCapabilities(true),
	)

	workspaceArg := mcp.WithString("workspace", mcp.Description("Path inside the NuttX workspace (defaults to the server working directory)"))

	s.AddTool(
		mcp.NewTool("ntxbuild/boards",
			mcp.WithDescription("List NuttX boards with their defconfigs"),
			workspaceArg,
			mcp.WithString("arch", mcp.Description("Only boards of this architecture")),
			mcp.WithString("soc", mcp.Description("Only boards of this SoC")),
			mcp.WithString("where", mcp.Description(`expr condition over name, arch, soc, path and defconfigs, e.g. 'arch == "xtensa"'`)),
		),
		h.HandleBoards,
	)

	s.AddTool(
		mcp.NewTool("ntxbuild/defconfigs",
			mcp.WithDescription("List the defconfigs of one board"),
			workspaceArg,
			mcp.WithString("board", mcp.Required(), mcp.Description("Board name, e.g. esp32-devkitc")),
		),
		h.HandleDefconfigs,
	)

	s.AddTool(
		mcp.NewTool("ntxbuild/kconfig_read",
			mcp.WithDescription("Describe a Kconfig option of the configured tree"),
			workspaceArg,
			mcp.WithString("name", mcp.Required(), mcp.Description("Option name, with or without CONFIG_")),
		),
		h.HandleKconfigRead,
	)

	s.AddTool(
		mcp.NewTool("ntxbuild/kconfig_set",
			mcp.WithDescription("Set a Kconfig option and write .config"),
			workspaceArg,
			mcp.WithString("name", mcp.Required(), mcp.Description("Option name, with or without CONFIG_")),
			mcp.WithString("value", mcp.Required(), mcp.Description("y/n for bool options, decimal for int, 0x-prefixed for hex, text for string")),
			mcp.WithBoolean("apply", mcp.Description("Write .config (default true); false only checks the value")),
		),
		h.HandleKconfigSet,
	)

	s.AddTool(
		mcp.NewTool("ntxbuild/build",
			mcp.WithDescription("Build the configured NuttX tree"),
			workspaceArg,
			mcp.WithNumber("jobs", mcp.Description("Parallel make jobs (0 lets make decide)")),
		),
		h.HandleBuild,
	)

	s.AddTool(
		mcp.NewTool("ntxbuild/info",
			mcp.WithDescription("Report workspace paths, the selected board and build state"),
			workspaceArg,
		),
		h.HandleInfo,
	)

	return s
}
