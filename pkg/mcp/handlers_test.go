package mcp

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/fdcavalcanti/ntxbuild/pkg/runner"
)

const testKconfig = `config ARCH
	string
	default "sim"

config DEBUG_FEATURES
	bool "Enable debug features"

config RAM_SIZE
	int "RAM size"
	default 65536
`

type fakeExecutor struct {
	code int
	cmds []runner.Command
}

func (f *fakeExecutor) Run(_ context.Context, c runner.Command) (*runner.Result, error) {
	f.cmds = append(f.cmds, c)
	return &runner.Result{ExitCode: f.code}, nil
}

func (f *fakeExecutor) Stream(ctx context.Context, c runner.Command, stdout, _ io.Writer) (*runner.Result, error) {
	io.WriteString(stdout, "CC: "+c.String()+"\n")
	return f.Run(ctx, c)
}

func (f *fakeExecutor) Interactive(ctx context.Context, c runner.Command) (int, error) {
	res, _ := f.Run(ctx, c)
	return res.ExitCode, nil
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// setup lays out a configured workspace and returns its root.
func setup(t *testing.T) (string, *Handlers, *fakeExecutor) {
	t.Helper()
	root := t.TempDir()
	osPath := filepath.Join(root, "nuttx")
	write(t, filepath.Join(osPath, "Kconfig"), testKconfig)
	write(t, filepath.Join(osPath, ".config"), "CONFIG_ARCH=\"sim\"\nCONFIG_RAM_SIZE=65536\n")
	write(t, filepath.Join(osPath, "boards", "sim", "sim", "sim", "configs", "nsh", "defconfig"), "")
	write(t, filepath.Join(osPath, "boards", "sim", "sim", "sim", "configs", "ostest", "defconfig"), "")
	write(t, filepath.Join(osPath, "boards", "xtensa", "esp32", "esp32-devkitc", "configs", "wifi", "defconfig"), "")
	write(t, filepath.Join(root, "nuttx-apps", "Make.defs"), "")

	fake := &fakeExecutor{}
	h := &Handlers{OSDir: "nuttx", AppsDir: "nuttx-apps", BuildTool: "make", Exec: fake, Log: zerolog.Nop()}
	return root, h, fake
}

func call(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := fn(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Content) == 0 {
		t.Fatal("empty result content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content %T", result.Content[0])
	}
	return result, tc.Text
}

func TestHandleBoards(t *testing.T) {
	root, h, _ := setup(t)

	result, text := call(t, h.HandleBoards, map[string]any{"workspace": root})
	if result.IsError {
		t.Fatalf("unexpected error: %s", text)
	}
	var boards []struct {
		Name       string   `json:"name"`
		Defconfigs []string `json:"defconfigs"`
	}
	if err := json.Unmarshal([]byte(text), &boards); err != nil {
		t.Fatal(err)
	}
	if len(boards) != 2 || boards[0].Name != "esp32-devkitc" || boards[1].Name != "sim" {
		t.Fatalf("boards = %+v", boards)
	}
	if strings.Join(boards[1].Defconfigs, ",") != "nsh,ostest" {
		t.Errorf("sim defconfigs = %v", boards[1].Defconfigs)
	}

	_, text = call(t, h.HandleBoards, map[string]any{"workspace": root, "where": `arch == "xtensa"`})
	if !strings.Contains(text, "esp32-devkitc") || strings.Contains(text, `"sim"`) {
		t.Errorf("where filter: %s", text)
	}

	result, _ = call(t, h.HandleBoards, map[string]any{"workspace": root, "where": "arch =="})
	if !result.IsError {
		t.Error("expected error for bad where")
	}
}

func TestHandleBoardsNoWorkspace(t *testing.T) {
	_, h, _ := setup(t)
	result, _ := call(t, h.HandleBoards, map[string]any{"workspace": t.TempDir()})
	if !result.IsError {
		t.Error("expected error outside a workspace")
	}
}

func TestHandleDefconfigs(t *testing.T) {
	root, h, _ := setup(t)

	result, _ := call(t, h.HandleDefconfigs, map[string]any{"workspace": root})
	if !result.IsError {
		t.Error("expected error for missing board")
	}

	result, text := call(t, h.HandleDefconfigs, map[string]any{"workspace": root, "board": "sim"})
	if result.IsError || text != "nsh\nostest" {
		t.Errorf("defconfigs = %q (error %v)", text, result.IsError)
	}

	result, _ = call(t, h.HandleDefconfigs, map[string]any{"workspace": root, "board": "nope"})
	if !result.IsError {
		t.Error("expected error for unknown board")
	}
}

func TestHandleKconfigReadAndSet(t *testing.T) {
	root, h, _ := setup(t)
	sub := filepath.Join(root, "nuttx", "boards")

	result, text := call(t, h.HandleKconfigRead, map[string]any{"workspace": sub, "name": "CONFIG_RAM_SIZE"})
	if result.IsError {
		t.Fatalf("read: %s", text)
	}
	if !strings.Contains(text, `"value": "65536"`) || !strings.Contains(text, `"type": "int"`) {
		t.Errorf("read = %s", text)
	}

	result, _ = call(t, h.HandleKconfigSet, map[string]any{"workspace": root, "name": "RAM_SIZE", "value": "0x10"})
	if !result.IsError {
		t.Error("expected error for hex on int option")
	}

	result, text = call(t, h.HandleKconfigSet, map[string]any{"workspace": root, "name": "RAM_SIZE", "value": "4096", "apply": false})
	if result.IsError || !strings.Contains(text, "not written") {
		t.Fatalf("dry run: %s", text)
	}
	data, _ := os.ReadFile(filepath.Join(root, "nuttx", ".config"))
	if strings.Contains(string(data), "4096") {
		t.Error("dry run wrote .config")
	}

	result, text = call(t, h.HandleKconfigSet, map[string]any{"workspace": root, "name": "RAM_SIZE", "value": "4096"})
	if result.IsError {
		t.Fatalf("set: %s", text)
	}
	data, _ = os.ReadFile(filepath.Join(root, "nuttx", ".config"))
	if !strings.Contains(string(data), "CONFIG_RAM_SIZE=4096") {
		t.Errorf(".config not updated:\n%s", data)
	}

	result, _ = call(t, h.HandleKconfigRead, map[string]any{"workspace": root, "name": "MISSING"})
	if !result.IsError {
		t.Error("expected error for unknown option")
	}
}

func TestHandleBuild(t *testing.T) {
	root, h, fake := setup(t)

	result, text := call(t, h.HandleBuild, map[string]any{"workspace": root, "jobs": float64(4)})
	if result.IsError {
		t.Fatalf("build: %s", text)
	}
	if len(fake.cmds) != 1 || fake.cmds[0].String() != "make -j4" {
		t.Fatalf("commands = %v", fake.cmds)
	}
	if !strings.Contains(text, `"exit_code": 0`) || !strings.Contains(text, "CC: make -j4") {
		t.Errorf("build result = %s", text)
	}

	fake.code = 2
	result, text = call(t, h.HandleBuild, map[string]any{"workspace": root})
	if !result.IsError || !strings.Contains(text, `"exit_code": 2`) {
		t.Errorf("failed build = %s", text)
	}
}

func TestHandleInfo(t *testing.T) {
	root, h, _ := setup(t)
	result, text := call(t, h.HandleInfo, map[string]any{"workspace": root})
	if result.IsError {
		t.Fatalf("info: %s", text)
	}
	for _, want := range []string{`"configured": true`, `"arch": "sim"`, `"has_record": false`, `"build_tool": "make"`} {
		if !strings.Contains(text, want) {
			t.Errorf("info missing %s:\n%s", want, text)
		}
	}
}

func TestTail(t *testing.T) {
	if got := tail("abcdef", 10); got != "abcdef" {
		t.Errorf("tail short = %q", got)
	}
	if got := tail("abcdef", 3); got != "...def" {
		t.Errorf("tail long = %q", got)
	}
}
