package config

import (
	"path/filepath"

	"github.com/fdcavalcanti/ntxbuild/pkg/kconfig"
)

// Symbol is the view of one configuration option the manager works on.
type Symbol interface {
	Name() string
	Type() kconfig.Type
	Value() string
	Prompt() string
	Help() string
	DependsOn() string
	Visible() bool
	Assignable() []kconfig.Tristate
	Settable() bool
	Range() (low, high string, ok bool)
	InRange(value string) bool
	Set(value string) bool
}

// Database is a loaded configuration schema with its current values.
type Database interface {
	Lookup(name string) (Symbol, bool)
	Names() []string
	LoadConfig(path string, replace bool) error
	WriteConfig(path string) error
	Warnings() []string
}

// Opener parses the Kconfig tree rooted at osPath. It runs with the
// environment overlay in place.
type Opener func(osPath string) (Database, error)

// OpenKconfig is the default Opener, backed by the in-process engine.
func OpenKconfig(osPath string) (Database, error) {
	kc, err := kconfig.Parse(filepath.Join(osPath, KconfigFile), kconfig.WithSrctree(osPath))
	if err != nil {
		return nil, err
	}
	return &kconfigDB{kc: kc}, nil
}

type kconfigDB struct {
	kc *kconfig.Kconfig
}

func (d *kconfigDB) Lookup(name string) (Symbol, bool) {
	s, ok := d.kc.Symbol(name)
	if !ok {
		return nil, false
	}
	return kconfigSymbol{s}, true
}

func (d *kconfigDB) Names() []string { return d.kc.SymbolNames() }

func (d *kconfigDB) LoadConfig(path string, replace bool) error {
	return d.kc.LoadConfig(path, replace)
}

func (d *kconfigDB) WriteConfig(path string) error { return d.kc.WriteConfig(path) }

func (d *kconfigDB) Warnings() []string { return d.kc.Warnings }

type kconfigSymbol struct {
	s *kconfig.Symbol
}

func (k kconfigSymbol) Name() string { return k.s.Name }
func (k kconfigSymbol) Type() kconfig.Type { return k.s.Type }
func (k kconfigSymbol) Value() string { return k.s.StrValue() }
func (k kconfigSymbol) Prompt() string { return k.s.Prompt() }
func (k kconfigSymbol) Help() string { return k.s.Help() }
func (k kconfigSymbol) DependsOn() string { return k.s.DirectDep() }
func (k kconfigSymbol) Visible() bool { return k.s.Visibility() > kconfig.No }
func (k kconfigSymbol) Assignable() []kconfig.Tristate { return k.s.Assignable() }
func (k kconfigSymbol) Settable() bool { return k.s.Settable() }
func (k kconfigSymbol) Range() (string, string, bool) { return k.s.Range() }
func (k kconfigSymbol) InRange(value string) bool { return k.s.InRange(value) }
func (k kconfigSymbol) Set(value string) bool { return k.s.SetValue(value) }
