package kconfig

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Prefix is the .config name prefix of every symbol.
const Prefix = "CONFIG_"

type symDefault struct {
	value *Expr
	cond  *Expr
}

type symRange struct {
	low, high *Symbol
	cond      *Expr
}

// Symbol is a config or menuconfig entry, or a placeholder for a name
// referenced but never defined.
type Symbol struct {
	Name string
	Type Type

	kc          *Kconfig
	nodes       []*menuNode
	choice      *Choice
	defaults    []symDefault
	revDeps     []*Expr
	weakRevDeps []*Expr
	directDeps  []*Expr
	ranges      []symRange
	envVar      string

	isConst  bool
	quoted   bool
	constTri Tristate
	constStr string

	user *string

	visGen  int
	visBusy bool
	vis     Tristate

	valGen int
	busy   bool
	tri    Tristate
	str    string
	write  bool
}

// Defined reports whether a config statement declares the symbol.
func (s *Symbol) Defined() bool { return len(s.nodes) > 0 }

// Choice returns the choice the symbol belongs to, if any.
func (s *Symbol) Choice() *Choice { return s.choice }

// EnvVar returns the variable named by "option env", if any.
func (s *Symbol) EnvVar() string { return s.envVar }

// Prompt returns the first prompt text, or "" for promptless symbols.
func (s *Symbol) Prompt() string {
	for _, n := range s.nodes {
		if n.hasPrompt {
			return n.prompt
		}
	}
	return ""
}

// Help returns the help text of the first definition that has one.
func (s *Symbol) Help() string {
	for _, n := range s.nodes {
		if n.help != "" {
			return n.help
		}
	}
	return ""
}

// Locations lists file:line for each definition.
func (s *Symbol) Locations() []string {
	locs := make([]string, 0, len(s.nodes))
	for _, n := range s.nodes {
		locs = append(locs, fmt.Sprintf("%s:%d", n.file, n.line))
	}
	return locs
}

// DirectDep renders the symbol's dependencies.
func (s *Symbol) DirectDep() string {
	return orString(s.directDeps)
}

// SelectedBy renders the conditions under which other symbols select s.
func (s *Symbol) SelectedBy() string {
	if len(s.revDeps) == 0 {
		return "n"
	}
	return orString(s.revDeps)
}

// UserValue returns the value last assigned with SetValue.
func (s *Symbol) UserValue() (string, bool) {
	if s.user == nil {
		return "", false
	}
	return *s.user, true
}

func (s *Symbol) exprName() string {
	if s.quoted {
		return strconv.Quote(s.constStr)
	}
	return s.Name
}

// exprValue is the symbol's value in a tristate expression. Non-bool
// symbols are n there.
func (s *Symbol) exprValue() Tristate {
	if s.isConst {
		if s.quoted {
			return No
		}
		return s.constTri
	}
	if !s.Defined() || !s.Type.IsBool() {
		return No
	}
	return s.TriValue()
}

// Visibility is the highest value a prompt condition reaches, capped by
// the enclosing choice.
func (s *Symbol) Visibility() Tristate {
	if s.visGen == s.kc.gen || s.visBusy {
		return s.vis
	}
	s.visBusy = true
	defer func() { s.visBusy = false }()

	vis := No
	for _, n := range s.nodes {
		if n.hasPrompt {
			vis = max(vis, n.promptCond.value())
		}
	}
	if s.choice != nil {
		vis = min(vis, s.choice.Visibility())
	}
	if vis == Mod {
		vis = Yes
	}
	s.vis, s.visGen = vis, s.kc.gen
	return vis
}

// TriValue returns the value of a bool or tristate symbol.
func (s *Symbol) TriValue() Tristate {
	if s.isConst {
		return s.constTri
	}
	s.compute()
	return s.tri
}

// StrValue returns the value as written in .config, without quotes.
func (s *Symbol) StrValue() string {
	switch {
	case s.isConst && s.quoted:
		return s.constStr
	case s.isConst:
		return s.constTri.String()
	case !s.Defined():
		return s.Name
	}
	s.compute()
	return s.str
}

// Assignable returns the values a user may give a bool or tristate
// symbol in the current state. It is empty for invisible symbols and for
// non-bool types.
func (s *Symbol) Assignable() []Tristate {
	if !s.Defined() || !s.Type.IsBool() || s.Visibility() == No {
		return nil
	}
	if s.choice != nil {
		return []Tristate{Yes}
	}
	if orValue(s.revDeps) > No {
		return []Tristate{Yes}
	}
	return []Tristate{No, Yes}
}

// Settable reports whether a user value can take effect: bool symbols
// need an assignable value, other types a visible prompt.
func (s *Symbol) Settable() bool {
	if s.Type.IsBool() {
		return len(s.Assignable()) > 0
	}
	return s.Defined() && s.envVar == "" && s.Visibility() > No
}

// SetValue records a user value. It returns false, leaving the symbol
// untouched, when the text is not valid for the symbol's type.
func (s *Symbol) SetValue(v string) bool {
	if s.isConst || !s.Defined() {
		return false
	}
	switch s.Type {
	case Bool, TypeTristate:
		if v != "y" && v != "n" && v != "m" {
			return false
		}
	case Int:
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return false
		}
	case Hex:
		if !isHex(v) {
			return false
		}
	case String:
	default:
		return false
	}
	s.user = &v
	if s.choice != nil && v == "y" {
		s.choice.userSelection = s
	}
	s.kc.invalidate()
	return true
}

// Unset drops the user value.
func (s *Symbol) Unset() {
	if s.user == nil {
		return
	}
	s.user = nil
	if s.choice != nil && s.choice.userSelection == s {
		s.choice.userSelection = nil
	}
	s.kc.invalidate()
}

func (s *Symbol) compute() {
	if s.valGen == s.kc.gen {
		return
	}
	if s.busy {
		s.kc.warn("dependency loop through %s", s.Name)
		return
	}
	s.busy = true
	defer func() { s.busy = false }()

	vis := s.Visibility()
	tri, str, write := No, "", vis > No

	switch s.Type {
	case Bool, TypeTristate:
		switch {
		case s.choice != nil:
			if vis > No && s.choice.mode() == Yes && s.choice.Selection() == s {
				tri = Yes
			}
		case vis > No && s.user != nil:
			tri = min(parseTri(*s.user), vis)
		default:
			for _, d := range s.defaults {
				if c := d.cond.value(); c > No {
					tri = min(d.value.value(), c)
					if tri > No {
						write = true
					}
					break
				}
			}
			if w := orValue(s.weakRevDeps); w > No && orValue(s.directDeps) > No {
				tri = max(tri, w)
				write = true
			}
		}
		if r := orValue(s.revDeps); r > No {
			tri = max(tri, r)
			write = true
		}
		if tri == Mod {
			tri = Yes
		}
		str = tri.String()

	case String, Int, Hex:
		low, high, ranged := s.activeRange()
		useDefault := true
		if vis > No && s.user != nil {
			if !ranged || s.inRange(*s.user, low, high) {
				str, useDefault = *s.user, false
			} else {
				s.kc.warn("value %s of %s is outside [%v, %v], using the default", *s.user, s.Name, low, high)
			}
		}
		if useDefault {
			for _, d := range s.defaults {
				if d.cond.value() > No {
					str, write = d.value.defaultString(), true
					break
				}
			}
			if ranged {
				str = s.clamp(str, low, high)
			}
		}
	}

	if s.envVar != "" {
		write = false
	}
	s.tri, s.str, s.write = tri, str, write
	s.valGen = s.kc.gen
}

// defaultString is a default's value for string, int and hex symbols.
func (e *Expr) defaultString() string {
	if e != nil && e.op == opSym {
		return e.sym.StrValue()
	}
	return e.value().String()
}

func (s *Symbol) activeRange() (low, high *big.Int, ok bool) {
	if s.Type != Int && s.Type != Hex {
		return nil, nil, false
	}
	for _, r := range s.ranges {
		if r.cond.value() == No {
			continue
		}
		l, lok := s.number(r.low.StrValue())
		h, hok := s.number(r.high.StrValue())
		if !lok || !hok {
			return nil, nil, false
		}
		return l, h, true
	}
	return nil, nil, false
}

func (s *Symbol) inRange(v string, low, high *big.Int) bool {
	n, ok := s.number(v)
	return ok && n.Cmp(low) >= 0 && n.Cmp(high) <= 0
}

func (s *Symbol) clamp(v string, low, high *big.Int) string {
	n, ok := s.number(v)
	switch {
	case !ok || n.Cmp(low) < 0:
		n = low
	case n.Cmp(high) > 0:
		n = high
	default:
		return v
	}
	if s.Type == Hex {
		return fmt.Sprintf("0x%x", n)
	}
	return n.String()
}

// Range returns the bounds of the first active range of an int or hex
// symbol, formatted in the symbol's base.
func (s *Symbol) Range() (low, high string, ok bool) {
	l, h, ok := s.activeRange()
	if !ok {
		return "", "", false
	}
	if s.Type == Hex {
		return fmt.Sprintf("0x%x", l), fmt.Sprintf("0x%x", h), true
	}
	return l.String(), h.String(), true
}

// InRange reports whether v lies within the active range. Symbols without
// an active range accept any well-formed value.
func (s *Symbol) InRange(v string) bool {
	low, high, ok := s.activeRange()
	return !ok || s.inRange(v, low, high)
}

// configLine renders the .config line, or "" when the symbol is not written.
func (s *Symbol) configLine() string {
	if !s.Defined() || s.Type == Unknown {
		return ""
	}
	s.compute()
	if !s.write {
		return ""
	}
	switch s.Type {
	case Bool, TypeTristate:
		if s.tri == No {
			return "# " + Prefix + s.Name + " is not set"
		}
		return Prefix + s.Name + "=" + s.tri.String()
	case String:
		return Prefix + s.Name + "=" + quote(s.str)
	default:
		if s.str == "" {
			return ""
		}
		return Prefix + s.Name + "=" + s.str
	}
}

func parseTri(v string) Tristate {
	switch v {
	case "y":
		return Yes
	case "m":
		return Mod
	}
	return No
}

func isHex(v string) bool {
	v = strings.TrimPrefix(strings.TrimPrefix(v, "0x"), "0X")
	if v == "" {
		return false
	}
	_, err := strconv.ParseUint(v, 16, 64)
	return err == nil
}

func orValue(terms []*Expr) Tristate {
	v := No
	for _, t := range terms {
		if v = max(v, t.value()); v == Yes {
			break
		}
	}
	return v
}

func orString(terms []*Expr) string {
	if len(terms) == 0 {
		return "y"
	}
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == nil {
			return "y"
		}
		parts = append(parts, t.paren(opNot))
	}
	if len(parts) == 1 {
		return terms[0].String()
	}
	return strings.Join(parts, " || ")
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	v, n, err := scanString(s)
	if err != nil || n != len(s) {
		return "", false
	}
	return v, true
}
