// Package workspace finds NuttX workspaces and persists the environment
// record that later commands read instead of re-discovering the tree.
package workspace

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
)

// Locate walks from start towards the filesystem root and returns the
// first directory holding both osDir and appsDir.
func Locate(start, osDir, appsDir string) (string, error) {
	path, err := filepath.Abs(start)
	if err != nil {
		return "", eris.Wrapf(err, "resolve %s", start)
	}
	for {
		if exists(filepath.Join(path, osDir)) && exists(filepath.Join(path, appsDir)) {
			return path, nil
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", eris.Wrapf(ntxerr.ErrWorkspaceNotFound, "searched from %s for %s and %s", start, osDir, appsDir)
		}
		path = parent
	}
}

// FindRecord walks from start towards the filesystem root and loads the
// first environment record found.
func FindRecord(start string) (*Record, error) {
	path, err := filepath.Abs(start)
	if err != nil {
		return nil, eris.Wrapf(err, "resolve %s", start)
	}
	for {
		if exists(RecordPath(path)) {
			return Load(path)
		}
		parent := filepath.Dir(path)
		if parent == path {
			return nil, eris.Wrapf(ntxerr.ErrRecordNotFound, "no %s above %s, run 'ntxbuild start' first", RecordFile, start)
		}
		path = parent
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
