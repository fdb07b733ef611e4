package kconfig

import (
	"strings"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokEq
	tokNe
	tokLt
	tokLe
	tokGt
	tokGe
)

type token struct {
	kind tokenKind
	text string
}

func (t token) is(kind tokenKind) bool { return t.kind == kind }

func (t token) isWord(w string) bool { return t.kind == tokWord && t.text == w }

func isWordChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("_-./$+:", c) >= 0
}

// tokenize splits one logical Kconfig line.
func tokenize(line string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#':
			return toks, nil
		case c == '"' || c == '\'':
			s, n, err := scanString(line[i:])
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{tokString, s})
			i += n
		case c == '&' && strings.HasPrefix(line[i:], "&&"):
			toks = append(toks, token{kind: tokAnd, text: "&&"})
			i += 2
		case c == '|' && strings.HasPrefix(line[i:], "||"):
			toks = append(toks, token{kind: tokOr, text: "||"})
			i += 2
		case c == '!':
			if strings.HasPrefix(line[i:], "!=") {
				toks = append(toks, token{kind: tokNe, text: "!="})
				i += 2
			} else {
				toks = append(toks, token{kind: tokNot, text: "!"})
				i++
			}
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case c == '=':
			toks = append(toks, token{kind: tokEq, text: "="})
			i++
		case c == '<':
			if strings.HasPrefix(line[i:], "<=") {
				toks = append(toks, token{kind: tokLe, text: "<="})
				i += 2
			} else {
				toks = append(toks, token{kind: tokLt, text: "<"})
				i++
			}
		case c == '>':
			if strings.HasPrefix(line[i:], ">=") {
				toks = append(toks, token{kind: tokGe, text: ">="})
				i += 2
			} else {
				toks = append(toks, token{kind: tokGt, text: ">"})
				i++
			}
		case isWordChar(c):
			j := i
			for j < len(line) && isWordChar(line[j]) {
				j++
			}
			toks = append(toks, token{tokWord, line[i:j]})
			i = j
		default:
			return nil, errorf("unexpected character %q", c)
		}
	}
	return toks, nil
}

// scanString reads a quoted string at the start of s and returns its
// unescaped value and the number of bytes consumed.
func scanString(s string) (string, int, error) {
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			b.WriteByte(s[i])
		case c == quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, errorf("unterminated string")
}

// indentWidth measures leading whitespace with tabs expanded to 8 columns.
func indentWidth(line string) int {
	w := 0
	for _, c := range line {
		switch c {
		case ' ':
			w++
		case '\t':
			w = (w/8 + 1) * 8
		default:
			return w
		}
	}
	return w
}
