// Package kconfig evaluates a Kconfig tree in process: it parses the
// declarations, resolves symbol values against their dependencies and
// reads and writes .config files.
//
// Modules are not supported. Tristate symbols behave as bool and m is
// rounded up to y, matching trees that never enable MODULES.
package kconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
)

// Type is a symbol's declared type.
type Type int

const (
	Unknown Type = iota
	Bool
	TypeTristate
	String
	Int
	Hex
)

var typeNames = map[Type]string{
	Unknown:      "unknown",
	Bool:         "bool",
	TypeTristate: "tristate",
	String:       "string",
	Int:          "int",
	Hex:          "hex",
}

func (t Type) String() string { return typeNames[t] }

// IsBool reports whether t takes y/n values.
func (t Type) IsBool() bool { return t == Bool || t == TypeTristate }

// Tristate is an n/m/y value.
type Tristate int

const (
	No Tristate = iota
	Mod
	Yes
)

func (v Tristate) String() string {
	switch v {
	case Yes:
		return "y"
	case Mod:
		return "m"
	}
	return "n"
}

// Kconfig is a parsed configuration tree.
type Kconfig struct {
	// Mainmenu is the title from the mainmenu statement.
	Mainmenu string
	// Srctree is the directory source statements resolve against.
	Srctree string
	// Warnings collects non-fatal problems found while parsing and loading.
	Warnings []string

	getenv  func(string) string
	syms    map[string]*Symbol
	consts  map[string]*Symbol
	defined []*Symbol
	choices []*Choice
	top     *menuNode
	nodes   []*menuNode
	gen     int
}

// Option configures Parse.
type Option func(*Kconfig)

// WithSrctree resolves source statements against dir instead of the
// directory holding the top-level file.
func WithSrctree(dir string) Option {
	return func(k *Kconfig) { k.Srctree = dir }
}

// WithGetenv replaces os.Getenv for $VAR expansion and option env.
func WithGetenv(fn func(string) string) Option {
	return func(k *Kconfig) { k.getenv = fn }
}

// Parse reads the Kconfig tree rooted at filename.
func Parse(filename string, opts ...Option) (*Kconfig, error) {
	k := &Kconfig{
		getenv: os.Getenv,
		syms:   map[string]*Symbol{},
		consts: map[string]*Symbol{},
		gen:    1,
	}
	for _, opt := range opts {
		opt(k)
	}
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "resolve %s", filename)
	}
	if k.Srctree == "" {
		k.Srctree = filepath.Dir(abs)
	}
	for _, v := range []struct {
		name string
		val  Tristate
	}{{"n", No}, {"m", Mod}, {"y", Yes}} {
		k.consts[v.name] = &Symbol{Name: v.name, Type: TypeTristate, kc: k, isConst: true, constTri: v.val}
	}

	k.top = &menuNode{kind: nodeMenu, prompt: "Main menu"}
	p := &parser{kc: k}
	if err := p.parseFile(abs, k.top, nil, nil); err != nil {
		return nil, err
	}
	k.finalize()
	return k, nil
}

// Symbol returns the defined symbol called name.
func (k *Kconfig) Symbol(name string) (*Symbol, bool) {
	s, ok := k.syms[name]
	if !ok || len(s.nodes) == 0 {
		return nil, false
	}
	return s, true
}

// Symbols returns every defined symbol in definition order.
func (k *Kconfig) Symbols() []*Symbol {
	out := make([]*Symbol, len(k.defined))
	copy(out, k.defined)
	return out
}

// SymbolNames returns the defined symbol names sorted alphabetically.
func (k *Kconfig) SymbolNames() []string {
	names := make([]string, 0, len(k.defined))
	for _, s := range k.defined {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Choices returns every choice in definition order.
func (k *Kconfig) Choices() []*Choice {
	out := make([]*Choice, len(k.choices))
	copy(out, k.choices)
	return out
}

// ref returns the symbol a word in an expression refers to, creating an
// undefined placeholder on first use.
func (k *Kconfig) ref(name string) *Symbol {
	if c, ok := k.consts[name]; ok {
		return c
	}
	if s, ok := k.syms[name]; ok {
		return s
	}
	s := &Symbol{Name: name, kc: k}
	k.syms[name] = s
	return s
}

// constant returns the constant symbol for a quoted literal. "n", "m"
// and "y" are the tristate constants whether quoted or not.
func (k *Kconfig) constant(val string) *Symbol {
	if c, ok := k.consts[val]; ok && c.Type == TypeTristate {
		return c
	}
	key := "\"" + val
	if c, ok := k.consts[key]; ok {
		return c
	}
	c := &Symbol{Name: val, kc: k, isConst: true, constStr: val, quoted: true}
	k.consts[key] = c
	return c
}

// invalidate drops every cached value after a user value changes.
func (k *Kconfig) invalidate() { k.gen++ }

func (k *Kconfig) warn(format string, args ...interface{}) {
	k.Warnings = append(k.Warnings, fmt.Sprintf(format, args...))
}

func errorf(format string, args ...interface{}) error {
	return eris.Errorf(format, args...)
}
