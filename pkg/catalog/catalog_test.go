package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rotisserie/eris"

	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
)

func makeTree(t *testing.T) string {
	t.Helper()
	osPath := t.TempDir()
	presets := map[string][]string{
		"sim/sim/sim":                   {"nsh", "ostest", "nsh2"},
		"xtensa/esp32/esp32-devkitc":    {"wifi", "nsh"},
		"arm/stm32/nucleo-f446re":       {"nsh"},
		"risc-v/esp32c3/esp32c3-devkit": {},
	}
	for board, names := range presets {
		dir := filepath.Join(osPath, "boards", filepath.FromSlash(board))
		if err := os.MkdirAll(filepath.Join(dir, "configs"), 0o755); err != nil {
			t.Fatal(err)
		}
		for _, n := range names {
			cfg := filepath.Join(dir, "configs", n)
			if err := os.MkdirAll(cfg, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(cfg, "defconfig"), []byte("CONFIG_ARCH=\""+n+"\"\n"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	// Stray files and shared helper directories at board level are ignored.
	os.WriteFile(filepath.Join(osPath, "boards", "sim", "sim", "Kconfig"), nil, 0o644)
	common := filepath.Join(osPath, "boards", "arm", "stm32", "common", "src")
	if err := os.MkdirAll(common, 0o755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(common, "stm32_boot.c"), nil, 0o644)
	return osPath
}

func names(boards []Board) []string {
	var out []string
	for _, b := range boards {
		out = append(out, b.Name)
	}
	return out
}

func TestBoards(t *testing.T) {
	osPath := makeTree(t)

	all, err := Boards(osPath, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"esp32-devkitc", "esp32c3-devkit", "nucleo-f446re", "sim"}
	if diff := cmp.Diff(want, names(all)); diff != "" {
		t.Errorf("boards (-want +got):\n%s", diff)
	}

	sim := all[3]
	if sim.Arch != "sim" || sim.Soc != "sim" || sim.RelPath() != "sim/sim/sim" {
		t.Errorf("sim board = %+v", sim)
	}
	if diff := cmp.Diff([]string{"nsh", "nsh2", "ostest"}, sim.DefconfigNames()); diff != "" {
		t.Errorf("defconfigs (-want +got):\n%s", diff)
	}

	d, ok := sim.Defconfig("ostest")
	if !ok {
		t.Fatal("ostest not found")
	}
	content, err := d.Content()
	if err != nil || content != "CONFIG_ARCH=\"ostest\"\n" {
		t.Errorf("Content = %q, %v", content, err)
	}
	if _, ok := sim.Defconfig("nope"); ok {
		t.Error("unexpected defconfig")
	}
}

func TestBoardsFilter(t *testing.T) {
	osPath := makeTree(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"arch", Filter{Arch: "xtensa"}, []string{"esp32-devkitc"}},
		{"soc", Filter{Soc: "stm32"}, []string{"nucleo-f446re"}},
		{"board", Filter{Board: "sim"}, []string{"sim"}},
		{"where arch", Filter{Where: `arch in ["xtensa", "risc-v"]`}, []string{"esp32-devkitc", "esp32c3-devkit"}},
		{"where defconfigs", Filter{Where: `"nsh" in defconfigs && len(defconfigs) > 1`}, []string{"esp32-devkitc", "sim"}},
		{"where prefix", Filter{Where: `name startsWith "esp32"`}, []string{"esp32-devkitc", "esp32c3-devkit"}},
		{"nothing", Filter{Arch: "mips"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Boards(osPath, tc.filter)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, names(got)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestBoardsBadWhere(t *testing.T) {
	_, err := Boards(makeTree(t), Filter{Where: `arch ==`})
	if !eris.Is(err, ntxerr.ErrInvalidArg) {
		t.Errorf("err = %v", err)
	}
	_, err = Boards(makeTree(t), Filter{Where: `len(name)`})
	if !eris.Is(err, ntxerr.ErrInvalidArg) {
		t.Errorf("non-bool where: %v", err)
	}
}

func TestFindBoard(t *testing.T) {
	osPath := makeTree(t)
	b, err := FindBoard(osPath, "nucleo-f446re")
	if err != nil {
		t.Fatal(err)
	}
	if b.Arch != "arm" {
		t.Errorf("arch = %q", b.Arch)
	}
	_, err = FindBoard(osPath, "missing")
	if ntxerr.KindOf(err) != ntxerr.KindNotFound {
		t.Errorf("err = %v", err)
	}
	_, err = FindBoard(osPath, "common")
	if !eris.Is(err, ntxerr.ErrBoardNotFound) {
		t.Errorf("helper directory resolved as a board: %v", err)
	}
}

func TestBoardsNoTree(t *testing.T) {
	boards, err := Boards(t.TempDir(), Filter{})
	if err != nil || len(boards) != 0 {
		t.Errorf("got %v, %v", boards, err)
	}
}
