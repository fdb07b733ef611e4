package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rotisserie/eris"

	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
)

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLocate(t *testing.T) {
	root := t.TempDir()
	ws := filepath.Join(root, "ws")
	deep := filepath.Join(ws, "nuttx", "arch", "sim", "src")
	mkdirs(t, deep, filepath.Join(ws, "nuttx-apps-ntxtest"))

	tests := []struct {
		name  string
		start string
	}{
		{"workspace root", ws},
		{"os dir", filepath.Join(ws, "nuttx")},
		{"deep inside", deep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Locate(tt.start, "nuttx", "nuttx-apps-ntxtest")
			if err != nil {
				t.Fatalf("Locate: %v", err)
			}
			if got != ws {
				t.Errorf("Locate = %q, want %q", got, ws)
			}
		})
	}
}

func TestLocateClosestWins(t *testing.T) {
	outer := t.TempDir()
	inner := filepath.Join(outer, "nested")
	mkdirs(t,
		filepath.Join(outer, "os-ntxtest"), filepath.Join(outer, "apps-ntxtest"),
		filepath.Join(inner, "os-ntxtest"), filepath.Join(inner, "apps-ntxtest"),
	)
	got, err := Locate(filepath.Join(inner, "os-ntxtest"), "os-ntxtest", "apps-ntxtest")
	if err != nil {
		t.Fatal(err)
	}
	if got != inner {
		t.Errorf("Locate = %q, want closest %q", got, inner)
	}
}

func TestLocateNotFound(t *testing.T) {
	dir := t.TempDir()
	mkdirs(t, filepath.Join(dir, "os-ntxtest-only"))
	_, err := Locate(dir, "os-ntxtest-only", "apps-ntxtest-never")
	if !eris.Is(err, ntxerr.ErrWorkspaceNotFound) {
		t.Fatalf("error = %v, want ErrWorkspaceNotFound", err)
	}
	if ntxerr.KindOf(err) != ntxerr.KindNotFound {
		t.Errorf("kind = %v, want not found", ntxerr.KindOf(err))
	}
}

func TestFindRecord(t *testing.T) {
	ws := t.TempDir()
	deep := filepath.Join(ws, "nuttx", "arch", "sim")
	mkdirs(t, deep)
	rec := Record{WorkspacePath: ws, OSDir: "nuttx", AppsDir: "apps", BuildTool: "make"}
	if err := Save(rec); err != nil {
		t.Fatal(err)
	}
	got, err := FindRecord(deep)
	if err != nil {
		t.Fatalf("FindRecord: %v", err)
	}
	if diff := cmp.Diff(rec, *got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	if err := Clear(ws); err != nil {
		t.Fatal(err)
	}
	if _, err := FindRecord(deep); !eris.Is(err, ntxerr.ErrRecordNotFound) {
		t.Errorf("FindRecord after Clear = %v, want ErrRecordNotFound", err)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	ws := t.TempDir()
	rec := Record{WorkspacePath: ws, OSDir: "nuttx", AppsDir: "nuttx-apps", BuildTool: "make"}
	if err := Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(ws)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(rec, *got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
	if got.OSPath() != filepath.Join(ws, "nuttx") {
		t.Errorf("OSPath = %q", got.OSPath())
	}
	if got.AppsPath() != filepath.Join(ws, "nuttx-apps") {
		t.Errorf("AppsPath = %q", got.AppsPath())
	}
}

func TestClear(t *testing.T) {
	ws := t.TempDir()
	if err := Save(Record{WorkspacePath: ws, OSDir: "nuttx", AppsDir: "apps", BuildTool: "make"}); err != nil {
		t.Fatal(err)
	}
	if err := Clear(ws); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := Load(ws); !eris.Is(err, ntxerr.ErrRecordNotFound) {
		t.Errorf("Load after Clear = %v, want ErrRecordNotFound", err)
	}
	if err := Clear(ws); err != nil {
		t.Errorf("Clear on absent record: %v", err)
	}
}

func TestLoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing key", "workspace_path: /ws\nos_dir: nuttx\nbuild_tool: make\n"},
		{"empty value", "workspace_path: /ws\nos_dir: nuttx\napps_dir: \"\"\nbuild_tool: make\n"},
		{"not yaml", "workspace_path: [unterminated\n"},
		{"wrong shape", "- just\n- a list\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := t.TempDir()
			if err := os.WriteFile(RecordPath(ws), []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(ws)
			if !eris.Is(err, ntxerr.ErrRecordCorrupt) {
				t.Fatalf("Load = %v, want ErrRecordCorrupt", err)
			}
			if ntxerr.KindOf(err) != ntxerr.KindCorrupt {
				t.Errorf("kind = %v", ntxerr.KindOf(err))
			}
		})
	}
}

func TestSaveRejectsIncompleteRecord(t *testing.T) {
	ws := t.TempDir()
	err := Save(Record{WorkspacePath: ws, OSDir: "nuttx"})
	if !eris.Is(err, ntxerr.ErrInvalidArg) {
		t.Fatalf("Save = %v, want ErrInvalidArg", err)
	}
	if _, statErr := os.Stat(RecordPath(ws)); !os.IsNotExist(statErr) {
		t.Error("incomplete record should not be written")
	}
}

func TestGenerateRecordSchema(t *testing.T) {
	data, err := GenerateRecordSchema()
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Title    string         `json:"title"`
		Required []string       `json:"required"`
		Props    map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	want := []string{"workspace_path", "os_dir", "apps_dir", "build_tool"}
	for _, k := range want {
		if _, ok := doc.Props[k]; !ok {
			t.Errorf("schema missing property %q", k)
		}
	}
	if len(doc.Required) != len(want) {
		t.Errorf("required = %v, want %v", doc.Required, want)
	}
}
