package workspace

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
)

var copyExcludes = map[string]bool{
	".git":           true,
	".gitattributes": true,
	".github":        true,
	".vscode":        true,
}

var copyKeepHidden = map[string]bool{
	RecordFile: true,
	".config":  true,
}

// CopyOptions controls CopyTree.
type CopyOptions struct {
	Count     int
	TargetDir string
	// Progress receives a progress bar; nil hides it.
	Progress io.Writer
}

// skipCopy reports whether a workspace entry is left out of lightweight copies.
func skipCopy(name string) bool {
	if copyExcludes[name] {
		return true
	}
	return strings.HasPrefix(name, ".") && !copyKeepHidden[name]
}

// CopyTree makes opts.Count lightweight copies of the workspace at src for
// parallel builds and returns their paths. VCS metadata and hidden files
// other than the record and .config are skipped. A copied record is
// rewritten to point at its copy. On failure every copy made so far is
// removed.
func CopyTree(src string, opts CopyOptions) ([]string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, eris.Wrapf(err, "workspace directory not found: %s", src)
	}
	if !info.IsDir() {
		return nil, eris.Errorf("workspace path is not a directory: %s", src)
	}
	if opts.Count < 1 {
		return nil, eris.Errorf("copy count must be positive, got %d", opts.Count)
	}
	target := opts.TargetDir
	if target == "" {
		target = os.TempDir()
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, eris.Wrapf(err, "create %s", target)
	}

	files, err := countFiles(src)
	if err != nil {
		return nil, err
	}
	bar := newProgressBar(int64(files*opts.Count), opts.Progress)

	var copies []string
	for i := 0; i < opts.Count; i++ {
		dst, err := os.MkdirTemp(target, fmt.Sprintf("nuttxspace_%d_", i))
		if err != nil {
			_ = Cleanup(copies)
			return nil, eris.Wrapf(err, "create copy directory in %s", target)
		}
		copies = append(copies, dst)
		if err := copyDir(src, dst, bar); err != nil {
			_ = Cleanup(copies)
			return nil, err
		}
		if err := rebaseRecord(dst); err != nil {
			_ = Cleanup(copies)
			return nil, err
		}
	}
	_ = bar.Finish()
	return copies, nil
}

// rebaseRecord points a copied record at the copy, so commands run inside
// it act on the copied tree.
func rebaseRecord(dst string) error {
	if !exists(RecordPath(dst)) {
		return nil
	}
	rec, err := Load(dst)
	if err != nil {
		return err
	}
	rec.WorkspacePath = dst
	return Save(*rec)
}

// Cleanup removes copies made by CopyTree. It keeps going after a failure
// and reports the first one.
func Cleanup(paths []string) error {
	var first error
	for _, p := range paths {
		if err := os.RemoveAll(p); err != nil && first == nil {
			first = eris.Wrapf(err, "remove copy %s", p)
		}
	}
	return first
}

func newProgressBar(total int64, out io.Writer) *progressbar.ProgressBar {
	if out == nil {
		return progressbar.NewOptions64(total, progressbar.OptionSetVisibility(false))
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription("copying workspace"),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(out)
		}),
	)
}

func countFiles(src string) (int, error) {
	n := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != src && skipCopy(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, eris.Wrapf(err, "scan %s", src)
	}
	return n, nil
}

func copyDir(src, dst string, bar *progressbar.ProgressBar) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return eris.Wrapf(err, "walk %s", path)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return eris.Wrap(err, "relative path")
		}
		if rel == "." {
			return nil
		}
		if skipCopy(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		out := filepath.Join(dst, rel)
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return eris.Wrapf(err, "read link %s", path)
			}
			if err := os.Symlink(link, out); err != nil {
				return eris.Wrapf(err, "create link %s", out)
			}
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return eris.Wrapf(err, "stat %s", path)
			}
			if err := os.MkdirAll(out, info.Mode().Perm()|0o700); err != nil {
				return eris.Wrapf(err, "create %s", out)
			}
			return nil
		default:
			if err := copyFile(path, out); err != nil {
				return err
			}
		}
		_ = bar.Add(1)
		return nil
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return eris.Wrapf(err, "open %s", src)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return eris.Wrapf(err, "stat %s", src)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return eris.Wrapf(err, "create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return eris.Wrapf(err, "copy %s", src)
	}
	return out.Close()
}
