// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package ngxconf

import (
	"strings"
	"unicode"
)

type token struct {
	text  string
	line  int
	quote bool
}

// special reports whether the token is an unquoted structural character.
func (t token) special(ch string) bool {
	return !t.quote && t.text == ch
}

type lexer struct {
	src    []rune
	pos    int
	line   int
	file   string
	tokens []token
	buf    strings.Builder
	start  int
}

func lex(file string, data []byte) ([]token, error) {
	lx := &lexer{src: []rune(string(data)), line: 1, file: file}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.tokens, nil
}

func (lx *lexer) next() (rune, bool) {
	if lx.pos >= len(lx.src) {
		return 0, false
	}
	ch := lx.src[lx.pos]
	lx.pos++
	if ch == '\n' {
		lx.line++
	}
	return ch, true
}

func (lx *lexer) peek() (rune, bool) {
	if lx.pos >= len(lx.src) {
		return 0, false
	}
	return lx.src[lx.pos], true
}

func (lx *lexer) flush() {
	if lx.buf.Len() == 0 {
		return
	}
	lx.tokens = append(lx.tokens, token{text: lx.buf.String(), line: lx.start})
	lx.buf.Reset()
}

func (lx *lexer) write(ch rune) {
	if lx.buf.Len() == 0 {
		lx.start = lx.line
	}
	lx.buf.WriteRune(ch)
}

func (lx *lexer) run() error {
	for {
		ch, ok := lx.next()
		if !ok {
			lx.flush()
			return nil
		}

		switch {
		case unicode.IsSpace(ch):
			lx.flush()

		case ch == '#' && lx.buf.Len() == 0:
			for c, ok := lx.peek(); ok && c != '\n'; c, ok = lx.peek() {
				lx.next()
			}

		case ch == '\\':
			// Escapes stay in the token, regexes need them verbatim.
			lx.write(ch)
			if c, ok := lx.next(); ok {
				lx.buf.WriteRune(c)
			}

		case ch == '$' && lx.peekIs('{'):
			lx.write(ch)
			for {
				c, ok := lx.next()
				if !ok {
					return syntaxError(lx.file, lx.line, "unexpected end of file, expecting \"}\" in variable")
				}
				lx.buf.WriteRune(c)
				if c == '}' {
					break
				}
			}

		case (ch == '"' || ch == '\'') && lx.buf.Len() == 0:
			if err := lx.quoted(ch); err != nil {
				return err
			}

		case ch == '{' || ch == '}' || ch == ';':
			lx.flush()
			lx.tokens = append(lx.tokens, token{text: string(ch), line: lx.line})

		default:
			lx.write(ch)
		}
	}
}

func (lx *lexer) peekIs(want rune) bool {
	c, ok := lx.peek()
	return ok && c == want
}

func (lx *lexer) quoted(quote rune) error {
	start := lx.line
	var sb strings.Builder
	for {
		ch, ok := lx.next()
		if !ok {
			return syntaxError(lx.file, start, "unexpected end of file, unterminated %c string", quote)
		}
		if ch == quote {
			break
		}
		if ch == '\\' {
			c, ok := lx.next()
			if !ok {
				return syntaxError(lx.file, start, "unexpected end of file, unterminated %c string", quote)
			}
			if c != quote {
				sb.WriteRune('\\')
			}
			sb.WriteRune(c)
			continue
		}
		sb.WriteRune(ch)
	}
	lx.tokens = append(lx.tokens, token{text: sb.String(), line: start, quote: true})
	return nil
}
