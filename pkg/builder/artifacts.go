package builder

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
)

var artifactExts = map[string]bool{
	".o":   true,
	".a":   true,
	".elf": true,
	".bin": true,
	".hex": true,
}

// Artifact is one build output file.
type Artifact struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Artifacts lists build outputs under dir, sorted by path. A missing dir
// yields no artifacts.
func Artifacts(dir string) ([]Artifact, error) {
	var out []Artifact
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !artifactExts[filepath.Ext(path)] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, Artifact{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "scan %s", dir)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
