package kconfig

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

const notSetSuffix = " is not set"

// LoadConfig assigns user values from a .config file. With replace set,
// values not mentioned in the file are dropped first; otherwise the file
// is merged over the current values.
func (k *Kconfig) LoadConfig(path string, replace bool) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	if replace {
		for _, s := range k.defined {
			s.user = nil
		}
		for _, c := range k.choices {
			c.userSelection = nil
		}
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		name, val, ok := parseConfigLine(line)
		if !ok {
			continue
		}
		s, found := k.Symbol(name)
		if !found {
			k.warn("%s:%d: unknown symbol %s", path, lineno, name)
			continue
		}
		if strings.HasPrefix(line, "#") && !s.Type.IsBool() {
			continue
		}
		if s.Type == String {
			uq, ok := unquote(val)
			if !ok {
				k.warn("%s:%d: malformed string value for %s", path, lineno, name)
				continue
			}
			val = uq
		}
		if !s.SetValue(val) {
			k.warn("%s:%d: %q is not a valid %s value for %s", path, lineno, val, s.Type, name)
		}
	}
	if err := sc.Err(); err != nil {
		return eris.Wrapf(err, "read %s", path)
	}
	k.invalidate()
	return nil
}

// ReadValues returns the raw assignments of a .config file without a
// Kconfig tree. String values are unquoted; "is not set" lines map to n.
func ReadValues(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	values := map[string]string{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		name, val, ok := parseConfigLine(strings.TrimSpace(sc.Text()))
		if !ok {
			continue
		}
		if uq, quoted := unquote(val); quoted {
			val = uq
		}
		values[name] = val
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return values, nil
}

// parseConfigLine splits "CONFIG_X=v" and "# CONFIG_X is not set".
func parseConfigLine(line string) (name, val string, ok bool) {
	if strings.HasPrefix(line, "# "+Prefix) && strings.HasSuffix(line, notSetSuffix) {
		name = strings.TrimSuffix(strings.TrimPrefix(line, "# "+Prefix), notSetSuffix)
		return name, "n", name != ""
	}
	if !strings.HasPrefix(line, Prefix) {
		return "", "", false
	}
	name, val, ok = strings.Cut(strings.TrimPrefix(line, Prefix), "=")
	return name, val, ok && name != ""
}

// ConfigString renders the current values in .config format.
func (k *Kconfig) ConfigString() string {
	var b strings.Builder
	b.WriteString("#\n# Automatically generated file; DO NOT EDIT.\n")
	if k.Mainmenu != "" {
		b.WriteString("# " + k.Mainmenu + "\n")
	}
	b.WriteString("#\n")

	written := map[*Symbol]bool{}
	var walk func(nodes []*menuNode)
	walk = func(nodes []*menuNode) {
		for _, n := range nodes {
			switch n.kind {
			case nodeSymbol:
				if !written[n.sym] {
					written[n.sym] = true
					if line := n.sym.configLine(); line != "" {
						b.WriteString(line + "\n")
					}
				}
				walk(n.children)
			case nodeChoice:
				walk(n.children)
			case nodeComment:
				if n.dep.value() > No {
					b.WriteString("\n#\n# " + n.prompt + "\n#\n")
				}
			case nodeMenu:
				if n.dep.value() == No || n.ownVisIf.value() == No {
					walk(n.children)
					continue
				}
				b.WriteString("\n#\n# " + n.prompt + "\n#\n")
				walk(n.children)
				b.WriteString("# end of " + n.prompt + "\n")
			}
		}
	}
	walk(k.top.children)
	return b.String()
}

// WriteConfig saves ConfigString to path, replacing it atomically.
func (k *Kconfig) WriteConfig(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config.tmp*")
	if err != nil {
		return eris.Wrapf(err, "create temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(k.ConfigString()); err != nil {
		tmp.Close()
		return eris.Wrapf(err, "write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return eris.Wrapf(err, "chmod %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "rename to %s", path)
	}
	return nil
}
