// Package shell implements the interactive Kconfig prompt behind
// "ntxbuild shell".
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rotisserie/eris"
	sh "mvdan.cc/sh/v3/shell"

	"github.com/fdcavalcanti/ntxbuild/pkg/config"
)

// Shell reads commands from the terminal and applies them to one
// configuration manager.
type Shell struct {
	cfg    *config.Manager
	label  string
	output io.Writer
	rl     *readline.Instance
	dirty  bool
}

// New returns a shell over cfg. label is shown in the prompt.
func New(cfg *config.Manager, label string) *Shell {
	return &Shell{cfg: cfg, label: label, output: os.Stdout}
}

var commands = []string{"read", "set", "enable", "disable", "info", "list", "merge", "apply", "help", "quit"}

func (s *Shell) symbolNames(line string) []string {
	fields := strings.Fields(line)
	prefix := ""
	if len(fields) > 1 && !strings.HasSuffix(line, " ") {
		prefix = fields[len(fields)-1]
	}
	names, err := s.cfg.Names(prefix)
	if err != nil {
		return nil
	}
	return names
}

func (s *Shell) completer() *readline.PrefixCompleter {
	completer := readline.NewPrefixCompleter()
	for _, cmd := range commands {
		switch cmd {
		case "read", "set", "enable", "disable", "info":
			completer.Children = append(completer.Children,
				readline.PcItem(cmd, readline.PcItemDynamic(s.symbolNames)))
		default:
			completer.Children = append(completer.Children, readline.PcItem(cmd))
		}
	}
	return completer
}

// Run starts the read-eval loop. It returns when the user quits or
// closes the input.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.cfg.Load(); err != nil {
		return err
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return eris.Wrap(err, "init readline")
	}
	s.rl = rl
	defer rl.Close()

	fmt.Fprintf(s.output, "ntxbuild kconfig shell for %s\n", s.label)
	fmt.Fprintf(s.output, "Type 'help' for available commands, Tab completes option names.\n\n")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rl.SetPrompt(s.prompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				s.warnUnsaved()
				return nil
			}
			return err
		}
		if s.Execute(line) {
			return nil
		}
	}
}

func (s *Shell) prompt() string {
	mark := ""
	if s.dirty {
		mark = "*"
	}
	return fmt.Sprintf("ntxbuild[%s%s]> ", s.label, mark)
}

func (s *Shell) warnUnsaved() {
	if s.dirty {
		fmt.Fprintf(s.output, "Unapplied changes discarded.\n")
	}
}

// Execute runs one command line and reports whether the shell should exit.
func (s *Shell) Execute(line string) bool {
	parts, err := SplitArgs(line)
	if err != nil {
		fmt.Fprintf(s.output, "Error: %v\n", err)
		return false
	}
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case "read", "r":
		s.handleRead(parts)
	case "set", "s":
		s.handleSet(parts)
	case "enable", "e":
		s.handleToggle(parts, true)
	case "disable", "d":
		s.handleToggle(parts, false)
	case "info", "i":
		s.handleInfo(parts)
	case "list", "ls":
		s.handleList(parts)
	case "merge":
		s.handleMerge(parts)
	case "apply", "a":
		s.handleApply()
	case "help", "?":
		s.handleHelp()
	case "quit", "q", "exit":
		s.warnUnsaved()
		fmt.Fprintf(s.output, "Bye.\n")
		return true
	default:
		fmt.Fprintf(s.output, "Unknown command: %q. Type 'help' for available commands.\n", parts[0])
	}
	return false
}

// SplitArgs splits s into words with POSIX shell quoting rules and
// expands environment variables.
func SplitArgs(s string) ([]string, error) {
	fields, err := sh.Fields(s, os.Getenv)
	if err != nil {
		return nil, eris.Wrapf(err, "parse %q", s)
	}
	return fields, nil
}
