// Package config reads and changes the Kconfig options of a configured
// NuttX tree.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/fdcavalcanti/ntxbuild/pkg/kconfig"
	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
	"github.com/fdcavalcanti/ntxbuild/pkg/runner"
)

const (
	KconfigFile = "Kconfig"
	ConfigFile  = ".config"
)

// Manager holds one loaded configuration database for a workspace.
type Manager struct {
	osPath   string
	appsPath string
	tool     string
	exec     runner.Executor
	open     Opener
	log      zerolog.Logger
	db       Database
}

// Option configures a Manager.
type Option func(*Manager)

// WithExecutor sets the executor used for menuconfig.
func WithExecutor(e runner.Executor) Option {
	return func(m *Manager) { m.exec = e }
}

// WithBuildTool overrides the make executable.
func WithBuildTool(tool string) Option {
	return func(m *Manager) { m.tool = tool }
}

// WithOpener replaces the Kconfig engine.
func WithOpener(open Opener) Option {
	return func(m *Manager) { m.open = open }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// New binds a manager to an OS tree and apps tree. Nothing is loaded
// until the first operation or an explicit Load.
func New(osPath, appsPath string, opts ...Option) *Manager {
	m := &Manager{
		osPath:   osPath,
		appsPath: appsPath,
		tool:     "make",
		exec:     &runner.RealExecutor{},
		open:     OpenKconfig,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ConfigPath returns the .config the manager reads and writes.
func (m *Manager) ConfigPath() string {
	return filepath.Join(m.osPath, ConfigFile)
}

// Load parses the Kconfig tree and the current .config.
func (m *Manager) Load() error {
	cfg := m.ConfigPath()
	if _, err := os.Stat(cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return eris.Wrapf(ntxerr.ErrNotInitialized, "%s", cfg)
		}
		return eris.Wrapf(err, "stat %s", cfg)
	}

	m.log.Debug().Str("kconfig", filepath.Join(m.osPath, KconfigFile)).Msg("Initializing Kconfig parser")
	var db Database
	err := withEnv(kconfigEnv(m.osPath, m.appsPath), func() error {
		var err error
		if db, err = m.open(m.osPath); err != nil {
			return eris.Wrap(err, "parse Kconfig")
		}
		m.log.Debug().Str("config", cfg).Msg("Loading existing .config")
		return db.LoadConfig(cfg, true)
	})
	if err != nil {
		return err
	}
	for _, w := range db.Warnings() {
		m.log.Debug().Msg(w)
	}
	m.db = db
	return nil
}

// Loaded reports whether a database is in memory.
func (m *Manager) Loaded() bool { return m.db != nil }

func (m *Manager) database() (Database, error) {
	if m.db == nil {
		if err := m.Load(); err != nil {
			return nil, err
		}
	}
	return m.db, nil
}

func (m *Manager) lookup(name string) (Symbol, error) {
	db, err := m.database()
	if err != nil {
		return nil, err
	}
	name = strings.TrimPrefix(name, kconfig.Prefix)
	sym, ok := db.Lookup(name)
	if !ok {
		return nil, eris.Wrapf(ntxerr.ErrSymbolNotFound, "Kconfig option '%s'", name)
	}
	return sym, nil
}

// Read returns the current value of an option: y, n or m for bool and
// tristate, the literal text otherwise.
func (m *Manager) Read(name string) (string, error) {
	sym, err := m.lookup(name)
	if err != nil {
		return "", err
	}
	value := sym.Value()
	m.log.Debug().
		Str("symbol", sym.Name()).
		Str("type", sym.Type().String()).
		Str("assignable", fmt.Sprint(sym.Assignable())).
		Msg("Read symbol")
	m.log.Info().Msgf("Kconfig read: %s=%s", sym.Name(), value)
	return value, nil
}

// Enable sets a bool option to y. It reports whether the option reads y
// afterwards.
func (m *Manager) Enable(name string) (bool, error) {
	return m.setBool(name, kconfig.Yes, "enabled")
}

// Disable sets a bool option to n.
func (m *Manager) Disable(name string) (bool, error) {
	return m.setBool(name, kconfig.No, "disabled")
}

func (m *Manager) setBool(name string, want kconfig.Tristate, verb string) (bool, error) {
	sym, err := m.lookup(name)
	if err != nil {
		return false, err
	}
	action := strings.TrimSuffix(verb, "d")
	if !sym.Type().IsBool() {
		return false, eris.Wrapf(ntxerr.ErrWrongType, "Kconfig option '%s' can't be %s: symbol type is %s", sym.Name(), verb, sym.Type())
	}
	if len(sym.Assignable()) == 0 {
		return false, eris.Wrapf(ntxerr.ErrNotAssignable, "Kconfig option '%s' can't be %s: dependencies are not met", sym.Name(), verb)
	}

	sym.Set(want.String())
	ok := sym.Value() == want.String()
	if ok {
		m.log.Info().Msgf("Kconfig option '%s' %s", sym.Name(), verb)
	} else {
		m.log.Error().Msgf("Kconfig option '%s' %s failed", sym.Name(), action)
	}
	return ok, nil
}

// SetNumeric assigns an int or hex option. Int options take decimal
// text, hex options need a 0x prefix. The option must be user-settable:
// options whose value is derived from others are rejected.
func (m *Manager) SetNumeric(name, value string) (bool, error) {
	if !isNumber(value) {
		return false, eris.Wrapf(ntxerr.ErrBadFormat, "%q", value)
	}
	sym, err := m.lookup(name)
	if err != nil {
		return false, err
	}
	n, typ := sym.Name(), sym.Type()
	if typ != kconfig.Int && typ != kconfig.Hex {
		return false, eris.Wrapf(ntxerr.ErrWrongType, "%s (%s) requires a numerical or hexadecimal input", n, typ)
	}
	if !sym.Settable() {
		return false, eris.Wrapf(ntxerr.ErrNotAssignable, "Kconfig value for '%s' can't be set: option is not user-settable", n)
	}
	hex := isHexLiteral(value)
	if typ == kconfig.Int && hex {
		return false, eris.Wrapf(ntxerr.ErrBadFormat, "%s (%s) requires a int input, not hexadecimal", n, typ)
	}
	if typ == kconfig.Hex && !hex {
		return false, eris.Wrapf(ntxerr.ErrBadFormat, "%s (%s) requires a hexadecimal input (0x<hex>), not int", n, typ)
	}

	if !sym.InRange(value) {
		low, high, _ := sym.Range()
		return false, eris.Wrapf(ntxerr.ErrOutOfRange, "%s=%s is outside [%s, %s]", n, value, low, high)
	}

	ok := sym.Set(value)
	if !ok {
		m.log.Error().Msgf("Kconfig set value: %s=%s failed", n, value)
		return false, nil
	}
	m.log.Info().Msgf("Kconfig set value: %s=%s", n, value)
	return true, nil
}

// SetString assigns a string option. Any text is accepted.
func (m *Manager) SetString(name, value string) (bool, error) {
	sym, err := m.lookup(name)
	if err != nil {
		return false, err
	}
	if sym.Type() != kconfig.String {
		return false, eris.Wrapf(ntxerr.ErrWrongType, "%s (%s) requires a string input", sym.Name(), sym.Type())
	}
	ok := sym.Set(value)
	if !ok {
		m.log.Error().Msgf("Kconfig set string: %s=%s failed", sym.Name(), value)
		return false, nil
	}
	m.log.Info().Msgf("Kconfig set string: %s=%s", sym.Name(), value)
	return true, nil
}

// Set assigns value with the setter matching the option type. Bool and
// tristate options take y or n.
func (m *Manager) Set(name, value string) (bool, error) {
	sym, err := m.lookup(name)
	if err != nil {
		return false, err
	}
	switch sym.Type() {
	case kconfig.Bool, kconfig.TypeTristate:
		switch value {
		case "y":
			return m.Enable(name)
		case "n":
			return m.Disable(name)
		}
		return false, eris.Wrapf(ntxerr.ErrInvalidArg, "%s is %s, use y or n", sym.Name(), sym.Type())
	case kconfig.Int, kconfig.Hex:
		return m.SetNumeric(name, value)
	}
	return m.SetString(name, value)
}

// ApplyChanges writes the in-memory values to .config.
func (m *Manager) ApplyChanges() error {
	db, err := m.database()
	if err != nil {
		return err
	}
	if err := db.WriteConfig(m.ConfigPath()); err != nil {
		return err
	}
	m.log.Info().Str("path", m.ConfigPath()).Msg("Kconfig apply changes")
	return nil
}

// MergeConfigFile loads a fragment over the current values. Options the
// fragment does not mention keep their value. Call ApplyChanges to
// persist the result.
func (m *Manager) MergeConfigFile(source string) error {
	if source == "" {
		return eris.Wrap(ntxerr.ErrSourceRequired, "merge")
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return eris.Wrapf(err, "resolve %s", source)
	}
	db, err := m.database()
	if err != nil {
		return err
	}
	m.log.Info().Msgf("Kconfig merge config file: %s", abs)
	if err := db.LoadConfig(abs, false); err != nil {
		return err
	}
	for _, w := range db.Warnings() {
		m.log.Debug().Msg(w)
	}
	return nil
}

// Menuconfig runs "make menuconfig" in the foreground. On success the
// loaded values are dropped so the next operation rereads .config.
func (m *Manager) Menuconfig(ctx context.Context) (int, error) {
	m.log.Debug().Msg("Opening menuconfig")
	code, err := m.exec.Interactive(ctx, runner.Command{Name: m.tool, Args: []string{"menuconfig"}, Dir: m.osPath})
	if err != nil {
		return 1, err
	}
	if code == 0 {
		m.db = nil
	}
	return code, nil
}

func isHexLiteral(v string) bool {
	return strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X")
}

// isNumber accepts decimal int64 text or 0x-prefixed hex up to 64 bits.
func isNumber(v string) bool {
	if isHexLiteral(v) {
		_, err := strconv.ParseUint(v[2:], 16, 64)
		return err == nil
	}
	_, err := strconv.ParseInt(v, 10, 64)
	return err == nil
}
