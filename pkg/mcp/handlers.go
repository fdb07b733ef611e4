package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/fdcavalcanti/ntxbuild/pkg/builder"
	"github.com/fdcavalcanti/ntxbuild/pkg/catalog"
	"github.com/fdcavalcanti/ntxbuild/pkg/config"
	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
	"github.com/fdcavalcanti/ntxbuild/pkg/runner"
	"github.com/fdcavalcanti/ntxbuild/pkg/workspace"
)

// maxOutput caps the build output returned to the client.
const maxOutput = 16 * 1024

// Handlers implements the tools. The directory names and build tool are
// used when a workspace has no environment record yet.
type Handlers struct {
	OSDir     string
	AppsDir   string
	BuildTool string
	Exec      runner.Executor
	Log       zerolog.Logger
}

func (h *Handlers) executor() runner.Executor {
	if h.Exec == nil {
		return &runner.RealExecutor{}
	}
	return h.Exec
}

// record finds the workspace for the "workspace" argument: the nearest
// saved record, otherwise the located tree with the defaults.
func (h *Handlers) record(args map[string]any) (*workspace.Record, error) {
	start, _ := args["workspace"].(string)
	if start == "" {
		start = "."
	}
	rec, err := workspace.FindRecord(start)
	if err == nil {
		return rec, nil
	}
	if !eris.Is(err, ntxerr.ErrRecordNotFound) {
		return nil, err
	}
	root, err := workspace.Locate(start, h.OSDir, h.AppsDir)
	if err != nil {
		return nil, err
	}
	return &workspace.Record{WorkspacePath: root, OSDir: h.OSDir, AppsDir: h.AppsDir, BuildTool: h.BuildTool}, nil
}

func (h *Handlers) manager(rec *workspace.Record) *config.Manager {
	return config.New(rec.OSPath(), rec.AppsPath(),
		config.WithBuildTool(rec.BuildTool),
		config.WithExecutor(h.executor()),
		config.WithLogger(h.Log),
	)
}

// HandleBoards implements the ntxbuild/boards tool.
func (h *Handlers) HandleBoards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	rec, err := h.record(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	f := catalog.Filter{}
	f.Arch, _ = args["arch"].(string)
	f.Soc, _ = args["soc"].(string)
	f.Where, _ = args["where"].(string)

	boards, err := catalog.Boards(rec.OSPath(), f)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	type entry struct {
		Name       string   `json:"name"`
		Path       string   `json:"path"`
		Defconfigs []string `json:"defconfigs"`
	}
	out := make([]entry, len(boards))
	for i, b := range boards {
		out[i] = entry{Name: b.Name, Path: b.RelPath(), Defconfigs: b.DefconfigNames()}
	}
	return jsonResult(out)
}

// HandleDefconfigs implements the ntxbuild/defconfigs tool.
func (h *Handlers) HandleDefconfigs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["board"].(string)
	if name == "" {
		return errorResult("board argument is required"), nil
	}
	rec, err := h.record(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	board, err := catalog.FindBoard(rec.OSPath(), name)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if len(board.Defconfigs) == 0 {
		return textResult(fmt.Sprintf("board %s has no defconfigs", board.Name)), nil
	}
	return textResult(strings.Join(board.DefconfigNames(), "\n")), nil
}

// HandleKconfigRead implements the ntxbuild/kconfig_read tool.
func (h *Handlers) HandleKconfigRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return errorResult("name argument is required"), nil
	}
	rec, err := h.record(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	info, err := h.manager(rec).Describe(name)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(info)
}

// HandleKconfigSet implements the ntxbuild/kconfig_set tool.
func (h *Handlers) HandleKconfigSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return errorResult("name argument is required"), nil
	}
	value, ok := args["value"].(string)
	if !ok {
		return errorResult("value argument is required"), nil
	}
	apply := true
	if v, ok := args["apply"].(bool); ok {
		apply = v
	}

	rec, err := h.record(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	m := h.manager(rec)
	changed, err := m.Set(name, value)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	current, err := m.Read(name)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if !changed {
		return errorResult(fmt.Sprintf("%s is still %s", name, current)), nil
	}
	if !apply {
		return textResult(fmt.Sprintf("%s=%s accepted (not written)", name, current)), nil
	}
	if err := m.ApplyChanges(); err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(fmt.Sprintf("%s=%s written to %s", name, current, m.ConfigPath())), nil
}

// HandleBuild implements the ntxbuild/build tool.
func (h *Handlers) HandleBuild(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	jobs := 0
	if v, ok := args["jobs"].(float64); ok {
		jobs = int(v)
	}
	if jobs < 0 {
		return errorResult("jobs must not be negative"), nil
	}
	rec, err := h.record(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	var out bytes.Buffer
	b := builder.New(rec.OSPath(), rec.AppsPath(),
		builder.WithBuildTool(rec.BuildTool),
		builder.WithExecutor(h.executor()),
		builder.WithLogger(h.Log),
		builder.WithOutput(&out, &out),
	)
	code, err := b.Build(ctx, jobs)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	response := map[string]any{
		"exit_code": code,
		"output":    tail(out.String(), maxOutput),
	}
	data, _ := json.MarshalIndent(response, "", "  ")
	if code != 0 {
		return errorResult(string(data)), nil
	}
	return textResult(string(data)), nil
}

// HandleInfo implements the ntxbuild/info tool.
func (h *Handlers) HandleInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, err := h.record(req.GetArguments())
	if err != nil {
		return errorResult(err.Error()), nil
	}
	info, err := builder.CollectInfo(*rec)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(info)
}

// tail keeps the last n bytes of s.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
