package kconfig

type choiceDefault struct {
	sym  *Symbol
	cond *Expr
}

// Choice is a choice/endchoice block. At most one member is y.
type Choice struct {
	// Name is empty for anonymous choices.
	Name string
	Type Type

	kc            *Kconfig
	nodes         []*menuNode
	syms          []*Symbol
	defaults      []choiceDefault
	optional      bool
	userSelection *Symbol

	visGen int
	vis    Tristate
	selGen int
	sel    *Symbol
}

// Prompt returns the choice prompt.
func (c *Choice) Prompt() string {
	for _, n := range c.nodes {
		if n.hasPrompt {
			return n.prompt
		}
	}
	return ""
}

// Symbols returns the members in definition order.
func (c *Choice) Symbols() []*Symbol {
	out := make([]*Symbol, len(c.syms))
	copy(out, c.syms)
	return out
}

// Optional reports whether the choice may have no member selected.
func (c *Choice) Optional() bool { return c.optional }

// Visibility is the highest value a prompt condition reaches.
func (c *Choice) Visibility() Tristate {
	if c.visGen == c.kc.gen {
		return c.vis
	}
	vis := No
	for _, n := range c.nodes {
		if n.hasPrompt {
			vis = max(vis, n.promptCond.value())
		}
	}
	if vis == Mod {
		vis = Yes
	}
	c.vis, c.visGen = vis, c.kc.gen
	return vis
}

// mode is y when one member must be selected.
func (c *Choice) mode() Tristate {
	if c.Visibility() == No {
		return No
	}
	if c.optional && c.userSelection == nil {
		return No
	}
	return Yes
}

// Selection returns the selected member: the user's pick when visible,
// else the first active default, else the first visible member.
func (c *Choice) Selection() *Symbol {
	if c.selGen == c.kc.gen {
		return c.sel
	}
	c.sel = c.selection()
	c.selGen = c.kc.gen
	return c.sel
}

func (c *Choice) selection() *Symbol {
	if c.mode() != Yes {
		return nil
	}
	if u := c.userSelection; u != nil && u.Visibility() > No {
		return u
	}
	for _, d := range c.defaults {
		if d.cond.value() > No && d.sym.choice == c && d.sym.Visibility() > No {
			return d.sym
		}
	}
	for _, s := range c.syms {
		if s.Visibility() > No {
			return s
		}
	}
	return nil
}

func (c *Choice) addMember(s *Symbol) {
	for _, m := range c.syms {
		if m == s {
			return
		}
	}
	c.syms = append(c.syms, s)
}
