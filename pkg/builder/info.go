package builder

import (
	"os"
	"path/filepath"

	"github.com/fdcavalcanti/ntxbuild/pkg/kconfig"
	"github.com/fdcavalcanti/ntxbuild/pkg/workspace"
)

// Info summarizes the state of a workspace.
type Info struct {
	Workspace  string `json:"workspace"`
	OSDir      string `json:"os_dir"`
	AppsDir    string `json:"apps_dir"`
	BuildTool  string `json:"build_tool"`
	RecordPath string `json:"record_path"`
	HasRecord  bool   `json:"has_record"`
	Configured bool   `json:"configured"`
	Arch       string `json:"arch,omitempty"`
	Chip       string `json:"chip,omitempty"`
	Board      string `json:"board,omitempty"`
	Artifacts  int    `json:"artifacts"`
}

// CollectInfo inspects the workspace described by rec. The board fields
// come from .config when the tree has been configured.
func CollectInfo(rec workspace.Record) (*Info, error) {
	info := &Info{
		Workspace:  rec.WorkspacePath,
		OSDir:      rec.OSDir,
		AppsDir:    rec.AppsDir,
		BuildTool:  rec.BuildTool,
		RecordPath: workspace.RecordPath(rec.WorkspacePath),
	}
	if _, err := os.Stat(info.RecordPath); err == nil {
		info.HasRecord = true
	}

	dotConfig := filepath.Join(rec.OSPath(), ".config")
	if _, err := os.Stat(dotConfig); err == nil {
		values, err := kconfig.ReadValues(dotConfig)
		if err != nil {
			return nil, err
		}
		info.Configured = true
		info.Arch = values["ARCH"]
		info.Chip = values["ARCH_CHIP"]
		info.Board = values["ARCH_BOARD"]
	}

	artifacts, err := Artifacts(rec.OSPath())
	if err != nil {
		return nil, err
	}
	info.Artifacts = len(artifacts)
	return info, nil
}
