package kconfig

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

const maxSourceDepth = 64

type nodeKind int

const (
	nodeSymbol nodeKind = iota
	nodeChoice
	nodeMenu
	nodeComment
)

type rawTarget struct {
	sym  *Symbol
	cond *Expr
}

type rawRange struct {
	low, high *Symbol
	cond      *Expr
}

// menuNode is one statement in the menu tree. A symbol defined in several
// places has one node per definition.
type menuNode struct {
	kind     nodeKind
	sym      *Symbol
	choice   *Choice
	parent   *menuNode
	children []*menuNode

	hasPrompt  bool
	prompt     string
	promptIf   *Expr
	promptCond *Expr

	// dep holds inherited and own "depends on" conditions.
	dep      *Expr
	ownDep   *Expr
	visIf    *Expr
	ownVisIf *Expr

	defaults []symDefault
	selects  []rawTarget
	implies  []rawTarget
	ranges   []rawRange
	help     string

	file string
	line int
}

// lineReader yields logical lines, joining backslash continuations.
type lineReader struct {
	file      string
	lines     []string
	pos       int
	lastStart int
}

func newLineReader(file, content string) *lineReader {
	return &lineReader{file: file, lines: strings.Split(content, "\n")}
}

func (r *lineReader) next() (string, int, bool) {
	if r.pos >= len(r.lines) {
		return "", 0, false
	}
	r.lastStart = r.pos
	lineno := r.pos + 1
	var b strings.Builder
	for r.pos < len(r.lines) {
		l := strings.TrimRight(r.lines[r.pos], "\r")
		r.pos++
		if strings.HasSuffix(l, "\\") {
			b.WriteString(strings.TrimSuffix(l, "\\"))
			b.WriteByte(' ')
			continue
		}
		b.WriteString(l)
		break
	}
	return b.String(), lineno, true
}

func (r *lineReader) nextRaw() (string, bool) {
	if r.pos >= len(r.lines) {
		return "", false
	}
	r.lastStart = r.pos
	l := strings.TrimRight(r.lines[r.pos], "\r")
	r.pos++
	return l, true
}

func (r *lineReader) unread() { r.pos = r.lastStart }

var macroRe = regexp.MustCompile(`\$\(([^()]*)\)`)

// expandMacros replaces $(VAR) references with environment values.
// Function calls such as $(shell,...) expand to nothing.
func (k *Kconfig) expandMacros(line string) string {
	if !strings.Contains(line, "$(") {
		return line
	}
	return macroRe.ReplaceAllStringFunc(line, func(m string) string {
		name := m[2 : len(m)-1]
		if strings.Contains(name, ",") {
			k.warn("unsupported macro %s", m)
			return ""
		}
		return k.getenv(strings.TrimSpace(name))
	})
}

// expandEnv replaces $VAR and ${VAR} in source paths and the main menu title.
func (k *Kconfig) expandEnv(s string) string {
	return os.Expand(s, k.getenv)
}

type parser struct {
	kc    *Kconfig
	depth int
}

func (p *parser) parseFile(path string, parent *menuNode, dep, vis *Expr) error {
	if p.depth > maxSourceDepth {
		return eris.Errorf("%s: source nesting deeper than %d, recursive include?", path, maxSourceDepth)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read %s", path)
	}
	p.depth++
	defer func() { p.depth-- }()
	return p.parseBlock(newLineReader(path, string(data)), parent, dep, vis, "")
}

func (p *parser) fail(r *lineReader, lineno int, err error) error {
	return eris.Wrapf(err, "%s:%d", r.file, lineno)
}

func (p *parser) parseBlock(r *lineReader, parent *menuNode, dep, vis *Expr, end string) error {
	k := p.kc
	for {
		line, lineno, ok := r.next()
		if !ok {
			if end != "" {
				return eris.Errorf("%s: missing %s", r.file, end)
			}
			return nil
		}
		toks, err := tokenize(k.expandMacros(line))
		if err != nil {
			return p.fail(r, lineno, err)
		}
		if len(toks) == 0 {
			continue
		}
		if !toks[0].is(tokWord) {
			return p.fail(r, lineno, errorf("unexpected %q", toks[0].text))
		}

		switch kw := toks[0].text; kw {
		case "config", "menuconfig":
			if len(toks) != 2 || !toks[1].is(tokWord) {
				return p.fail(r, lineno, errorf("%s expects a symbol name", kw))
			}
			sym := k.ref(toks[1].text)
			if sym.isConst {
				return p.fail(r, lineno, errorf("cannot define constant %s", sym.Name))
			}
			if !sym.Defined() {
				k.defined = append(k.defined, sym)
			}
			node := &menuNode{kind: nodeSymbol, sym: sym, parent: parent, file: r.file, line: lineno}
			sym.nodes = append(sym.nodes, node)
			if parent.kind == nodeChoice {
				sym.choice = parent.choice
				parent.choice.addMember(sym)
			}
			if err := p.parseProps(r, node); err != nil {
				return err
			}
			p.attach(parent, node, dep, vis)

		case "choice":
			var ch *Choice
			if len(toks) > 1 {
				for _, c := range k.choices {
					if c.Name == toks[1].text {
						ch = c
					}
				}
			}
			if ch == nil {
				ch = &Choice{kc: k}
				if len(toks) > 1 {
					ch.Name = toks[1].text
				}
				k.choices = append(k.choices, ch)
			}
			node := &menuNode{kind: nodeChoice, choice: ch, parent: parent, file: r.file, line: lineno}
			ch.nodes = append(ch.nodes, node)
			if err := p.parseProps(r, node); err != nil {
				return err
			}
			p.attach(parent, node, dep, vis)
			if err := p.parseBlock(r, node, node.dep, vis, "endchoice"); err != nil {
				return err
			}

		case "menu":
			if len(toks) < 2 || !toks[1].is(tokString) {
				return p.fail(r, lineno, errorf("menu expects a title"))
			}
			node := &menuNode{kind: nodeMenu, parent: parent, hasPrompt: true, prompt: toks[1].text, file: r.file, line: lineno}
			if err := p.parseProps(r, node); err != nil {
				return err
			}
			p.attach(parent, node, dep, vis)
			if err := p.parseBlock(r, node, node.dep, and(vis, node.ownVisIf), "endmenu"); err != nil {
				return err
			}

		case "comment":
			if len(toks) < 2 || !toks[1].is(tokString) {
				return p.fail(r, lineno, errorf("comment expects a text"))
			}
			node := &menuNode{kind: nodeComment, parent: parent, hasPrompt: true, prompt: toks[1].text, file: r.file, line: lineno}
			if err := p.parseProps(r, node); err != nil {
				return err
			}
			p.attach(parent, node, dep, vis)

		case "if":
			cond, err := k.parseExpr(toks[1:])
			if err != nil {
				return p.fail(r, lineno, err)
			}
			if err := p.parseBlock(r, parent, and(dep, cond), vis, "endif"); err != nil {
				return err
			}

		case "endchoice", "endmenu", "endif":
			if kw != end {
				return p.fail(r, lineno, errorf("unexpected %s", kw))
			}
			return nil

		case "mainmenu":
			if len(toks) < 2 || !toks[1].is(tokString) {
				return p.fail(r, lineno, errorf("mainmenu expects a title"))
			}
			k.Mainmenu = k.expandEnv(toks[1].text)

		case "source", "rsource", "osource", "orsource":
			if len(toks) != 2 || !toks[1].is(tokString) {
				return p.fail(r, lineno, errorf("%s expects a quoted path", kw))
			}
			if err := p.source(r, lineno, kw, toks[1].text, parent, dep, vis); err != nil {
				return err
			}

		default:
			return p.fail(r, lineno, errorf("unknown statement %q", kw))
		}
	}
}

func (p *parser) attach(parent, node *menuNode, dep, vis *Expr) {
	node.dep = and(dep, node.ownDep)
	node.visIf = vis
	parent.children = append(parent.children, node)
	p.kc.nodes = append(p.kc.nodes, node)
}

func (p *parser) source(r *lineReader, lineno int, kw, pattern string, parent *menuNode, dep, vis *Expr) error {
	k := p.kc
	path := k.expandEnv(pattern)
	if !filepath.IsAbs(path) {
		base := k.Srctree
		if strings.HasPrefix(kw, "r") || kw == "orsource" {
			base = filepath.Dir(r.file)
		}
		path = filepath.Join(base, path)
	}
	optional := kw == "osource" || kw == "orsource"

	var files []string
	if strings.ContainsAny(path, "*?[") {
		matches, err := filepath.Glob(path)
		if err != nil {
			return p.fail(r, lineno, err)
		}
		sort.Strings(matches)
		files = matches
	} else if _, err := os.Stat(path); err == nil {
		files = []string{path}
	}
	if len(files) == 0 {
		if optional {
			return nil
		}
		return p.fail(r, lineno, errorf("%s: %q not found", kw, path))
	}
	for _, f := range files {
		if err := p.parseFile(f, parent, dep, vis); err != nil {
			return err
		}
	}
	return nil
}

var propKeywords = map[string]bool{
	"bool": true, "tristate": true, "string": true, "int": true, "hex": true,
	"def_bool": true, "def_tristate": true, "prompt": true, "default": true,
	"depends": true, "select": true, "imply": true, "range": true,
	"help": true, "---help---": true, "option": true, "optional": true,
	"visible": true, "modules": true, "transitional": true,
}

var typeKeywords = map[string]Type{
	"bool": Bool, "tristate": TypeTristate, "string": String, "int": Int, "hex": Hex,
	"def_bool": Bool, "def_tristate": TypeTristate,
}

// splitIf separates "<value> if <cond>" into its parts.
func splitIf(toks []token) ([]token, []token) {
	for i, t := range toks {
		if t.isWord("if") {
			return toks[:i], toks[i+1:]
		}
	}
	return toks, nil
}

func (p *parser) cond(toks []token) (*Expr, error) {
	if toks == nil {
		return nil, nil
	}
	return p.kc.parseExpr(toks)
}

func (p *parser) parseProps(r *lineReader, node *menuNode) error {
	k := p.kc
	for {
		line, lineno, ok := r.next()
		if !ok {
			return nil
		}
		toks, err := tokenize(k.expandMacros(line))
		if err != nil {
			return p.fail(r, lineno, err)
		}
		if len(toks) == 0 {
			continue
		}
		if !toks[0].is(tokWord) || !propKeywords[toks[0].text] {
			r.unread()
			return nil
		}
		if err := p.parseProp(r, node, toks); err != nil {
			return p.fail(r, lineno, err)
		}
	}
}

func (p *parser) parseProp(r *lineReader, node *menuNode, toks []token) error {
	k := p.kc
	kw := toks[0].text
	args, condToks := splitIf(toks[1:])
	cond, err := p.cond(condToks)
	if err != nil {
		return err
	}

	switch kw {
	case "bool", "tristate", "string", "int", "hex", "def_bool", "def_tristate":
		p.setType(node, typeKeywords[kw])
		if strings.HasPrefix(kw, "def_") {
			if len(args) == 0 {
				return errorf("%s expects a value", kw)
			}
			val, err := k.parseExpr(args)
			if err != nil {
				return err
			}
			node.defaults = append(node.defaults, symDefault{value: val, cond: cond})
			return nil
		}
		if len(args) > 0 {
			return p.setPrompt(node, args, cond)
		}

	case "prompt":
		return p.setPrompt(node, args, cond)

	case "default":
		if len(args) == 0 {
			return errorf("default expects a value")
		}
		val, err := k.parseExpr(args)
		if err != nil {
			return err
		}
		node.defaults = append(node.defaults, symDefault{value: val, cond: cond})

	case "depends":
		if len(toks) < 3 || !toks[1].isWord("on") {
			return errorf("expected 'depends on'")
		}
		e, err := k.parseExpr(toks[2:])
		if err != nil {
			return err
		}
		node.ownDep = and(node.ownDep, e)

	case "visible":
		if len(toks) < 3 || !toks[1].isWord("if") {
			return errorf("expected 'visible if'")
		}
		e, err := k.parseExpr(toks[2:])
		if err != nil {
			return err
		}
		node.ownVisIf = and(node.ownVisIf, e)

	case "select", "imply":
		if len(args) != 1 || !args[0].is(tokWord) {
			return errorf("%s expects a symbol", kw)
		}
		t := rawTarget{sym: k.ref(args[0].text), cond: cond}
		if kw == "select" {
			node.selects = append(node.selects, t)
		} else {
			node.implies = append(node.implies, t)
		}

	case "range":
		if len(args) != 2 {
			return errorf("range expects two values")
		}
		node.ranges = append(node.ranges, rawRange{low: p.operand(args[0]), high: p.operand(args[1]), cond: cond})

	case "help", "---help---":
		node.help = readHelp(r)

	case "option":
		return p.parseOption(node, toks[1:])

	case "optional":
		if node.kind != nodeChoice {
			return errorf("optional is only valid in a choice")
		}
		node.choice.optional = true
	}
	return nil
}

func (p *parser) operand(t token) *Symbol {
	if t.is(tokString) {
		return p.kc.constant(t.text)
	}
	return p.kc.ref(t.text)
}

func (p *parser) setType(node *menuNode, t Type) {
	switch node.kind {
	case nodeSymbol:
		if node.sym.Type != Unknown && node.sym.Type != t {
			p.kc.warn("%s redefined from %s to %s", node.sym.Name, node.sym.Type, t)
		}
		node.sym.Type = t
	case nodeChoice:
		node.choice.Type = t
	}
}

func (p *parser) setPrompt(node *menuNode, args []token, cond *Expr) error {
	if len(args) != 1 || !args[0].is(tokString) {
		return errorf("prompt expects a quoted text")
	}
	node.hasPrompt = true
	node.prompt = args[0].text
	node.promptIf = cond
	return nil
}

func (p *parser) parseOption(node *menuNode, toks []token) error {
	if len(toks) == 0 {
		return errorf("option expects a name")
	}
	switch toks[0].text {
	case "env":
		if len(toks) != 3 || !toks[1].is(tokEq) || !toks[2].is(tokString) {
			return errorf(`expected option env="VAR"`)
		}
		if node.kind == nodeSymbol {
			node.sym.envVar = toks[2].text
		}
	case "defconfig_list", "modules", "allnoconfig_y":
	default:
		p.kc.warn("ignoring unknown option %q", toks[0].text)
	}
	return nil
}

// readHelp consumes the indented help block following a help keyword.
func readHelp(r *lineReader) string {
	var lines []string
	indent := -1
	for {
		raw, ok := r.nextRaw()
		if !ok {
			break
		}
		if strings.TrimSpace(raw) == "" {
			lines = append(lines, "")
			continue
		}
		w := indentWidth(raw)
		if indent < 0 {
			if w == 0 {
				r.unread()
				break
			}
			indent = w
		}
		if w < indent {
			r.unread()
			break
		}
		lines = append(lines, strings.TrimLeft(raw, " \t"))
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

// finalize folds each node's dependencies into its properties.
func (k *Kconfig) finalize() {
	for _, n := range k.nodes {
		if n.hasPrompt {
			n.promptCond = and(and(n.promptIf, n.dep), n.visIf)
		}
		switch n.kind {
		case nodeSymbol:
			s := n.sym
			if s.envVar != "" && len(s.defaults) == 0 {
				s.defaults = append(s.defaults, symDefault{value: symExpr(k.constant(k.getenv(s.envVar)))})
			}
			for _, d := range n.defaults {
				s.defaults = append(s.defaults, symDefault{value: d.value, cond: and(d.cond, n.dep)})
			}
			for _, t := range n.selects {
				t.sym.revDeps = append(t.sym.revDeps, and(symExpr(s), and(t.cond, n.dep)))
			}
			for _, t := range n.implies {
				t.sym.weakRevDeps = append(t.sym.weakRevDeps, and(symExpr(s), and(t.cond, n.dep)))
			}
			for _, rg := range n.ranges {
				s.ranges = append(s.ranges, symRange{low: rg.low, high: rg.high, cond: and(rg.cond, n.dep)})
			}
			s.directDeps = append(s.directDeps, n.dep)
		case nodeChoice:
			c := n.choice
			for _, d := range n.defaults {
				if d.value == nil || d.value.op != opSym {
					k.warn("%s:%d: choice default must be a symbol", n.file, n.line)
					continue
				}
				c.defaults = append(c.defaults, choiceDefault{sym: d.value.sym, cond: and(d.cond, n.dep)})
			}
		}
	}

	for _, c := range k.choices {
		if c.Type == Unknown {
			for _, s := range c.syms {
				if s.Type != Unknown {
					c.Type = s.Type
					break
				}
			}
		}
		if c.Type == Unknown {
			c.Type = Bool
		}
		for _, s := range c.syms {
			if s.Type == Unknown {
				s.Type = c.Type
			}
		}
	}
	k.invalidate()
}
