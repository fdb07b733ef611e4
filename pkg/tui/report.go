package tui

import (
	"fmt"
	"strings"

	"github.com/fdcavalcanti/ntxbuild/pkg/builder"
)

// InfoReport is the content of "ntxbuild info".
type InfoReport struct {
	builder.Info
	Version string
}

// Markdown renders the report as a markdown document.
func (r InfoReport) Markdown() string {
	var b strings.Builder
	b.WriteString("# NuttX workspace\n\n")
	fmt.Fprintf(&b, "NuttX root found at: `%s`\n\n", r.Workspace)

	b.WriteString("| Item | Value |\n|---|---|\n")
	row := func(k, v string) { fmt.Fprintf(&b, "| %s | %s |\n", k, v) }
	row("OS directory", code(r.OSDir))
	row("Apps directory", code(r.AppsDir))
	row("Build tool", code(r.BuildTool))
	if r.HasRecord {
		row("Environment record", code(r.RecordPath))
	} else {
		row("Environment record", "not created, run `ntxbuild start`")
	}
	b.WriteString("\n")

	b.WriteString("## Configuration\n\n")
	if !r.Configured {
		b.WriteString("No `.config` found. NuttX must be initialized first.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "- Board: **%s**\n", orDash(r.Board))
	fmt.Fprintf(&b, "- Chip: %s\n", orDash(r.Chip))
	fmt.Fprintf(&b, "- Arch: %s\n", orDash(r.Arch))
	fmt.Fprintf(&b, "- Build artifacts: %d\n", r.Artifacts)
	if r.Version != "" {
		fmt.Fprintf(&b, "\n_ntxbuild %s_\n", r.Version)
	}
	return b.String()
}

func code(s string) string {
	if s == "" {
		return "-"
	}
	return "`" + s + "`"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
