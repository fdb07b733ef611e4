// Package catalog lists the boards and defconfigs shipped in a NuttX tree
// under boards/<arch>/<soc>/<board>/configs/<defconfig>.
package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rotisserie/eris"

	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
)

// Defconfig is one preset configuration of a board.
type Defconfig struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Content returns the text of the defconfig file.
func (d Defconfig) Content() (string, error) {
	data, err := os.ReadFile(filepath.Join(d.Path, "defconfig"))
	if err != nil {
		return "", eris.Wrapf(err, "read defconfig %s", d.Name)
	}
	return string(data), nil
}

// Board is a board directory and its presets.
type Board struct {
	Name       string      `json:"name"`
	Arch       string      `json:"arch"`
	Soc        string      `json:"soc"`
	Path       string      `json:"path"`
	Defconfigs []Defconfig `json:"defconfigs"`
}

// Defconfig looks up a preset by name.
func (b Board) Defconfig(name string) (*Defconfig, bool) {
	for i := range b.Defconfigs {
		if b.Defconfigs[i].Name == name {
			return &b.Defconfigs[i], true
		}
	}
	return nil, false
}

// DefconfigNames returns the preset names in order.
func (b Board) DefconfigNames() []string {
	names := make([]string, len(b.Defconfigs))
	for i, d := range b.Defconfigs {
		names[i] = d.Name
	}
	return names
}

// RelPath is the board path relative to the boards directory.
func (b Board) RelPath() string {
	return filepath.ToSlash(filepath.Join(b.Arch, b.Soc, b.Name))
}

// Filter narrows Boards. Empty fields match everything. Where is an expr
// condition over name, arch, soc, path and defconfigs.
type Filter struct {
	Arch  string
	Soc   string
	Board string
	Where string
}

func (f Filter) match(b Board) bool {
	return (f.Arch == "" || f.Arch == b.Arch) &&
		(f.Soc == "" || f.Soc == b.Soc) &&
		(f.Board == "" || f.Board == b.Name)
}

func boardEnv(b Board) map[string]interface{} {
	return map[string]interface{}{
		"name":       b.Name,
		"arch":       b.Arch,
		"soc":        b.Soc,
		"path":       b.RelPath(),
		"defconfigs": b.DefconfigNames(),
	}
}

func compileWhere(where string) (*vm.Program, error) {
	if strings.TrimSpace(where) == "" {
		return nil, nil
	}
	program, err := expr.Compile(where, expr.Env(boardEnv(Board{})), expr.AsBool())
	if err != nil {
		return nil, eris.Wrapf(ntxerr.ErrInvalidArg, "where %q: %v", where, err)
	}
	return program, nil
}

// Boards walks <osPath>/boards and returns matching boards sorted by name.
func Boards(osPath string, f Filter) ([]Board, error) {
	program, err := compileWhere(f.Where)
	if err != nil {
		return nil, err
	}

	// A board is a boards/<arch>/<soc>/<board> directory holding configs/.
	// Siblings such as common/ or drivers/ are helpers, not boards.
	root := filepath.Join(osPath, "boards")
	configs, err := filepath.Glob(filepath.Join(root, "*", "*", "*", "configs"))
	if err != nil {
		return nil, eris.Wrapf(err, "scan %s", root)
	}

	var boards []Board
	for _, cfgDir := range configs {
		fi, err := os.Stat(cfgDir)
		if err != nil || !fi.IsDir() {
			continue
		}
		b, err := loadBoard(filepath.Dir(cfgDir))
		if err != nil {
			return nil, err
		}
		if !f.match(b) {
			continue
		}
		if program != nil {
			out, err := expr.Run(program, boardEnv(b))
			if err != nil {
				return nil, eris.Wrapf(err, "evaluate where for %s", b.Name)
			}
			if ok, _ := out.(bool); !ok {
				continue
			}
		}
		boards = append(boards, b)
	}
	sort.SliceStable(boards, func(i, j int) bool {
		if boards[i].Name != boards[j].Name {
			return boards[i].Name < boards[j].Name
		}
		return boards[i].RelPath() < boards[j].RelPath()
	})
	return boards, nil
}

// FindBoard returns the board called name.
func FindBoard(osPath, name string) (*Board, error) {
	boards, err := Boards(osPath, Filter{Board: name})
	if err != nil {
		return nil, err
	}
	if len(boards) == 0 {
		return nil, eris.Wrapf(ntxerr.ErrBoardNotFound, "%s", name)
	}
	return &boards[0], nil
}

func loadBoard(dir string) (Board, error) {
	soc := filepath.Dir(dir)
	b := Board{
		Name: filepath.Base(dir),
		Soc:  filepath.Base(soc),
		Arch: filepath.Base(filepath.Dir(soc)),
		Path: dir,
	}
	entries, err := os.ReadDir(filepath.Join(dir, "configs"))
	if err != nil {
		return b, eris.Wrapf(err, "read configs of %s", b.Name)
	}
	for _, e := range entries {
		if e.IsDir() {
			b.Defconfigs = append(b.Defconfigs, Defconfig{Name: e.Name(), Path: filepath.Join(dir, "configs", e.Name())})
		}
	}
	sort.Slice(b.Defconfigs, func(i, j int) bool { return b.Defconfigs[i].Name < b.Defconfigs[j].Name })
	return b, nil
}
