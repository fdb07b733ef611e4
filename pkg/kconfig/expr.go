package kconfig

import (
	"math/big"
	"strings"
)

type exprOp int

const (
	opSym exprOp = iota
	opNot
	opAnd
	opOr
	opEq
	opNe
	opLt
	opLe
	opGt
	opGe
)

var relOps = map[tokenKind]exprOp{
	tokEq: opEq,
	tokNe: opNe,
	tokLt: opLt,
	tokLe: opLe,
	tokGt: opGt,
	tokGe: opGe,
}

var opText = map[exprOp]string{
	opEq: "=",
	opNe: "!=",
	opLt: "<",
	opLe: "<=",
	opGt: ">",
	opGe: ">=",
}

// Expr is a dependency expression. A nil *Expr is always y.
type Expr struct {
	op          exprOp
	sym         *Symbol
	left, right *Expr
	lsym, rsym  *Symbol
}

func symExpr(s *Symbol) *Expr { return &Expr{op: opSym, sym: s} }

// and joins two conditions; nil operands are y.
func and(a, b *Expr) *Expr {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return &Expr{op: opAnd, left: a, right: b}
}

func (e *Expr) String() string {
	if e == nil {
		return "y"
	}
	switch e.op {
	case opSym:
		return e.sym.exprName()
	case opNot:
		return "!" + e.left.paren(opNot)
	case opAnd:
		return e.left.paren(opAnd) + " && " + e.right.paren(opAnd)
	case opOr:
		return e.left.paren(opOr) + " || " + e.right.paren(opOr)
	default:
		return e.lsym.exprName() + " " + opText[e.op] + " " + e.rsym.exprName()
	}
}

func (e *Expr) paren(parent exprOp) string {
	needs := false
	switch parent {
	case opNot:
		needs = e.op != opSym && e.op != opNot
	case opAnd:
		needs = e.op == opOr
	}
	if needs {
		return "(" + e.String() + ")"
	}
	return e.String()
}

// value evaluates e in a tristate context.
func (e *Expr) value() Tristate {
	if e == nil {
		return Yes
	}
	switch e.op {
	case opSym:
		return e.sym.exprValue()
	case opNot:
		return Yes - e.left.value()
	case opAnd:
		return min(e.left.value(), e.right.value())
	case opOr:
		return max(e.left.value(), e.right.value())
	}

	cmp := compare(e.lsym, e.rsym)
	var ok bool
	switch e.op {
	case opEq:
		ok = cmp == 0
	case opNe:
		ok = cmp != 0
	case opLt:
		ok = cmp < 0
	case opLe:
		ok = cmp <= 0
	case opGt:
		ok = cmp > 0
	case opGe:
		ok = cmp >= 0
	}
	if ok {
		return Yes
	}
	return No
}

// compare orders two operands numerically when both read as numbers of
// their type, otherwise as strings.
func compare(a, b *Symbol) int {
	as, bs := a.StrValue(), b.StrValue()
	if an, aok := a.number(as); aok {
		if bn, bok := b.number(bs); bok {
			return an.Cmp(bn)
		}
	}
	return strings.Compare(as, bs)
}

// number parses v in the base of s's type. Hex values span the whole
// unsigned 64-bit range, so numbers are compared as big.Int.
func (s *Symbol) number(v string) (*big.Int, bool) {
	base := 0
	switch s.Type {
	case Bool, TypeTristate, String:
		return nil, false
	case Int:
		base = 10
	case Hex:
		base = 16
		v = strings.TrimPrefix(strings.TrimPrefix(v, "0x"), "0X")
	}
	if v == "" || strings.Contains(v, "_") {
		return nil, false
	}
	return new(big.Int).SetString(v, base)
}

// exprParser is a recursive-descent parser over one line's tokens.
type exprParser struct {
	kc   *Kconfig
	toks []token
	pos  int
}

func (p *exprParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *exprParser) parseOr() (*Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || !t.is(tokOr) {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Expr{op: opOr, left: left, right: right}
	}
}

func (p *exprParser) parseAnd() (*Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || !t.is(tokAnd) {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Expr{op: opAnd, left: left, right: right}
	}
}

func (p *exprParser) parseUnary() (*Expr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, errorf("expression ends unexpectedly")
	}
	switch t.kind {
	case tokNot:
		p.pos++
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Expr{op: opNot, left: e}, nil
	case tokLParen:
		p.pos++
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if t, ok := p.peek(); !ok || !t.is(tokRParen) {
			return nil, errorf("missing ')'")
		}
		p.pos++
		return e, nil
	}

	left, err := p.operand()
	if err != nil {
		return nil, err
	}
	if t, ok := p.peek(); ok {
		if op, isRel := relOps[t.kind]; isRel {
			p.pos++
			right, err := p.operand()
			if err != nil {
				return nil, err
			}
			return &Expr{op: op, lsym: left, rsym: right}, nil
		}
	}
	return symExpr(left), nil
}

func (p *exprParser) operand() (*Symbol, error) {
	t, ok := p.peek()
	if !ok {
		return nil, errorf("expected a symbol")
	}
	p.pos++
	switch t.kind {
	case tokWord:
		return p.kc.ref(t.text), nil
	case tokString:
		return p.kc.constant(t.text), nil
	}
	return nil, errorf("unexpected %q in expression", t.text)
}

// parseExpr parses toks[pos:] fully as one expression.
func (k *Kconfig) parseExpr(toks []token) (*Expr, error) {
	p := &exprParser{kc: k, toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(toks) {
		return nil, errorf("trailing %q after expression", toks[p.pos].text)
	}
	return e, nil
}
