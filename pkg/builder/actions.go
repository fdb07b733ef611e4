package builder

import (
	"github.com/rotisserie/eris"

	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
)

// Action is a builder operation.
type Action int

const (
	ActionBuild Action = iota
	ActionClean
	ActionDistclean
	ActionConfigure
	ActionInfo
	ActionMake
)

var actionNames = [...]string{
	ActionBuild:     "build",
	ActionClean:     "clean",
	ActionDistclean: "distclean",
	ActionConfigure: "configure",
	ActionInfo:      "info",
	ActionMake:      "make",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// MakeTarget is a make goal of the NuttX top-level Makefile.
type MakeTarget int

const (
	TargetAll MakeTarget = iota
	TargetAppsClean
	TargetBootloader
	TargetClean
	TargetCleanBootloader
	TargetCrypto
	TargetDistclean
	TargetFlash
	TargetHostInfo
	TargetMenuconfig
	TargetOldconfig
	TargetOlddefconfig
	TargetSchedClean
)

var targetNames = [...]string{
	TargetAll:             "all",
	TargetAppsClean:       "apps_clean",
	TargetBootloader:      "bootloader",
	TargetClean:           "clean",
	TargetCleanBootloader: "clean_bootloader",
	TargetCrypto:          "crypto/",
	TargetDistclean:       "distclean",
	TargetFlash:           "flash",
	TargetHostInfo:        "host_info",
	TargetMenuconfig:      "menuconfig",
	TargetOldconfig:       "oldconfig",
	TargetOlddefconfig:    "olddefconfig",
	TargetSchedClean:      "sched_clean",
}

func (t MakeTarget) String() string {
	if t < 0 || int(t) >= len(targetNames) {
		return "unknown"
	}
	return targetNames[t]
}

// MakeTargets lists every known target.
func MakeTargets() []MakeTarget {
	out := make([]MakeTarget, len(targetNames))
	for i := range targetNames {
		out[i] = MakeTarget(i)
	}
	return out
}

// ParseMakeTarget maps a target name back to its MakeTarget.
func ParseMakeTarget(name string) (MakeTarget, error) {
	for i, n := range targetNames {
		if n == name {
			return MakeTarget(i), nil
		}
	}
	return 0, eris.Wrapf(ntxerr.ErrInvalidArg, "unknown make target %q", name)
}
