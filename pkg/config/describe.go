package config

import (
	"sort"
	"strings"
)

// SymbolInfo is a read-only description of one option.
type SymbolInfo struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Value      string   `json:"value"`
	Prompt     string   `json:"prompt,omitempty"`
	Help       string   `json:"help,omitempty"`
	DependsOn  string   `json:"depends_on"`
	Visible    bool     `json:"visible"`
	Assignable []string `json:"assignable,omitempty"`
	Settable   bool     `json:"settable"`
}

// Describe reports everything known about an option.
func (m *Manager) Describe(name string) (*SymbolInfo, error) {
	sym, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	info := &SymbolInfo{
		Name:      sym.Name(),
		Type:      sym.Type().String(),
		Value:     sym.Value(),
		Prompt:    sym.Prompt(),
		Help:      sym.Help(),
		DependsOn: sym.DependsOn(),
		Visible:   sym.Visible(),
		Settable:  sym.Settable(),
	}
	for _, v := range sym.Assignable() {
		info.Assignable = append(info.Assignable, v.String())
	}
	return info, nil
}

// Names lists option names, optionally only those starting with prefix.
// A leading CONFIG_ in prefix is ignored.
func (m *Manager) Names(prefix string) ([]string, error) {
	db, err := m.database()
	if err != nil {
		return nil, err
	}
	prefix = strings.TrimPrefix(prefix, "CONFIG_")
	var out []string
	for _, n := range db.Names() {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out, nil
}
