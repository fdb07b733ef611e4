package shell

import (
	"fmt"
	"strings"

	"github.com/fdcavalcanti/ntxbuild/pkg/kconfig"
)

func (s *Shell) fail(err error) {
	fmt.Fprintf(s.output, "Error: %v\n", err)
}

func (s *Shell) handleRead(parts []string) {
	if len(parts) != 2 {
		fmt.Fprintf(s.output, "Usage: read <OPTION>\n")
		return
	}
	v, err := s.cfg.Read(parts[1])
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.output, "%s%s=%s\n", kconfig.Prefix, strings.TrimPrefix(parts[1], kconfig.Prefix), v)
}

func (s *Shell) handleSet(parts []string) {
	if len(parts) != 3 {
		fmt.Fprintf(s.output, "Usage: set <OPTION> <VALUE>\n")
		return
	}
	ok, err := s.cfg.Set(parts[1], parts[2])
	s.report(strings.TrimPrefix(parts[1], kconfig.Prefix), ok, err)
}

func (s *Shell) handleToggle(parts []string, on bool) {
	if len(parts) != 2 {
		fmt.Fprintf(s.output, "Usage: %s <OPTION>\n", parts[0])
		return
	}
	var ok bool
	var err error
	if on {
		ok, err = s.cfg.Enable(parts[1])
	} else {
		ok, err = s.cfg.Disable(parts[1])
	}
	s.report(strings.TrimPrefix(parts[1], kconfig.Prefix), ok, err)
}

func (s *Shell) report(name string, ok bool, err error) {
	if err != nil {
		s.fail(err)
		return
	}
	s.dirty = true
	v, _ := s.cfg.Read(name)
	if ok {
		fmt.Fprintf(s.output, "  ✓ %s=%s\n", name, v)
	} else {
		fmt.Fprintf(s.output, "  ✗ %s is still %s\n", name, v)
	}
}

func (s *Shell) handleInfo(parts []string) {
	if len(parts) != 2 {
		fmt.Fprintf(s.output, "Usage: info <OPTION>\n")
		return
	}
	info, err := s.cfg.Describe(parts[1])
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.output, "%s (%s)\n", info.Name, info.Type)
	if info.Prompt != "" {
		fmt.Fprintf(s.output, "  prompt:     %s\n", info.Prompt)
	}
	fmt.Fprintf(s.output, "  value:      %s\n", info.Value)
	fmt.Fprintf(s.output, "  depends on: %s\n", info.DependsOn)
	fmt.Fprintf(s.output, "  visible:    %t\n", info.Visible)
	if len(info.Assignable) > 0 {
		fmt.Fprintf(s.output, "  assignable: %s\n", strings.Join(info.Assignable, " "))
	}
	if info.Help != "" {
		for _, l := range strings.Split(info.Help, "\n") {
			fmt.Fprintf(s.output, "    %s\n", l)
		}
	}
}

func (s *Shell) handleList(parts []string) {
	prefix := ""
	if len(parts) > 1 {
		prefix = parts[1]
	}
	names, err := s.cfg.Names(prefix)
	if err != nil {
		s.fail(err)
		return
	}
	for _, n := range names {
		v, _ := s.cfg.Read(n)
		fmt.Fprintf(s.output, "  %s=%s\n", n, v)
	}
	fmt.Fprintf(s.output, "%d options\n", len(names))
}

func (s *Shell) handleMerge(parts []string) {
	path := ""
	if len(parts) > 1 {
		path = parts[1]
	}
	if err := s.cfg.MergeConfigFile(path); err != nil {
		s.fail(err)
		return
	}
	s.dirty = true
	fmt.Fprintf(s.output, "Merged %s. Use 'apply' to write .config.\n", path)
}

func (s *Shell) handleApply() {
	if err := s.cfg.ApplyChanges(); err != nil {
		s.fail(err)
		return
	}
	s.dirty = false
	fmt.Fprintf(s.output, "Wrote %s\n", s.cfg.ConfigPath())
}

func (s *Shell) handleHelp() {
	fmt.Fprintf(s.output, `Commands:
  read <OPTION>           Show the current value
  set <OPTION> <VALUE>    Assign a value (y/n, number or string)
  enable <OPTION>         Set a bool option to y
  disable <OPTION>        Set a bool option to n
  info <OPTION>           Show type, dependencies and help
  list [PREFIX]           List options and values
  merge <FILE>            Merge a config fragment
  apply                   Write changes to .config
  help                    Show this help
  quit                    Leave the shell
`)
}
