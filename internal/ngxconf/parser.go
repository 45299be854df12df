// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package ngxconf

import "strings"

// Parse parses configuration text into a document block. Includes are left
// as plain directives; use a Loader to expand them.
func Parse(file string, data []byte) (*Directive, error) {
	tokens, err := lex(file, data)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens, file: file}
	children, err := p.block(false)
	if err != nil {
		return nil, err
	}

	return &Directive{Block: true, Children: children, File: file, Line: 1}, nil
}

type parser struct {
	tokens []token
	pos    int
	file   string
}

func (p *parser) lastLine() int {
	if len(p.tokens) == 0 {
		return 1
	}
	return p.tokens[len(p.tokens)-1].line
}

// block parses statements until the closing brace (nested) or end of input.
func (p *parser) block(nested bool) ([]*Directive, error) {
	entries := []*Directive{}
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++

		switch {
		case tok.special("}"):
			if !nested {
				return nil, syntaxError(p.file, tok.line, "unexpected \"}\"")
			}
			return entries, nil
		case tok.special(";"):
			continue
		case tok.special("{"):
			return nil, syntaxError(p.file, tok.line, "unexpected \"{\"")
		}

		d := &Directive{Name: tok.text, File: p.file, Line: tok.line}
		if err := p.statement(d); err != nil {
			return nil, err
		}
		entries = append(entries, d)
	}

	if nested {
		return nil, syntaxError(p.file, p.lastLine(), "unexpected end of file, expecting \"}\"")
	}
	return entries, nil
}

// statement collects arguments up to ";" or a block body.
func (p *parser) statement(d *Directive) error {
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++

		switch {
		case tok.special(";"):
			return nil
		case tok.special("{"):
			if d.Name == "if" {
				d.Args = trimCondition(d.Args)
			}
			children, err := p.block(true)
			if err != nil {
				return err
			}
			d.Block = true
			d.Children = children
			return nil
		case tok.special("}"):
			return syntaxError(p.file, tok.line, "unexpected \"}\" after %q, expecting \";\"", d.Name)
		}
		d.Args = append(d.Args, tok.text)
	}
	return syntaxError(p.file, p.lastLine(), "unexpected end of file, expecting \";\" or \"}\"")
}

// trimCondition strips the parentheses around if arguments:
// "($request_method", "=", "POST)" becomes "$request_method", "=", "POST".
func trimCondition(args []string) []string {
	if len(args) == 0 {
		return args
	}
	out := make([]string, len(args))
	copy(out, args)
	out[0] = strings.TrimPrefix(out[0], "(")
	last := len(out) - 1
	out[last] = strings.TrimSuffix(out[last], ")")

	trimmed := out[:0]
	for _, a := range out {
		if a != "" {
			trimmed = append(trimmed, a)
		}
	}
	return trimmed
}
