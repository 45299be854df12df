// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rewrite

import (
	"errors"
	"slices"

	"github.com/ngxspec/ngxspec/internal/ngxconf"
)

// Program is a resolved configuration tree with every location and rewrite
// compiled. It is read-only after Compile and safe for concurrent use.
type Program struct {
	root    *ngxconf.Directive
	entries map[*ngxconf.Directive]*entry
}

// entry holds what was compiled for one location or rewrite directive.
// Errors are kept and raised when a path reaches the directive.
type entry struct {
	loc     *location
	rule    *rule
	inverse *rule
	invErr  error
	err     error
}

// Compile prepares a resolved configuration tree for rewriting.
func Compile(root *ngxconf.Directive) *Program {
	if root == nil {
		root = &ngxconf.Directive{Block: true}
	}
	p := &Program{root: root, entries: make(map[*ngxconf.Directive]*entry)}
	order := 0

	var walk func(list []*ngxconf.Directive, scope *location)
	walk = func(list []*ngxconf.Directive, scope *location) {
		for _, d := range list {
			switch {
			case d.Name == "location" && d.Block:
				order++
				loc, err := parseLocation(d, scope, order)
				p.entries[d] = &entry{loc: loc, err: err}
				if err == nil {
					walk(d.Children, loc)
				}
			case d.Name == "rewrite" && !d.Block:
				p.entries[d] = compileEntry(d, scope)
			case d.Block:
				walk(d.Children, scope)
			}
		}
	}
	walk(root.Children, nil)
	return p
}

func compileEntry(d *ngxconf.Directive, scope *location) *entry {
	r, err := ruleFromDirective(d)
	if err != nil {
		return &entry{err: err}
	}
	compiled, err := compileRule(r)
	if err != nil {
		return &entry{err: configError(d, "%v", err)}
	}
	compiled.source = d

	e := &entry{rule: compiled}
	inv, err := invert(r, scope)
	if err != nil {
		e.invErr = err
		return e
	}
	e.inverse, err = compileRule(inv)
	if err != nil {
		e.invErr = inversionError(r, "%v", err)
		return e
	}
	e.inverse.inverted = true
	e.inverse.source = d
	return e
}

// Problems returns the errors of every directive that cannot be evaluated.
// Paths that never reach such a directive are still processed.
func (p *Program) Problems() error {
	var errs []error
	ngxconf.Walk(p.root, func(d *ngxconf.Directive) bool {
		if e, ok := p.entries[d]; ok && e.err != nil {
			errs = append(errs, e.err)
		}
		return true
	})
	return errors.Join(errs...)
}

// Uninvertible lists the rewrites that have no inverse, in document order.
func (p *Program) Uninvertible() []*InversionError {
	var out []*InversionError
	ngxconf.Walk(p.root, func(d *ngxconf.Directive) bool {
		e, ok := p.entries[d]
		if !ok || e.invErr == nil {
			return true
		}
		var inv *InversionError
		if errors.As(e.invErr, &inv) && !slices.Contains(out, inv) {
			out = append(out, inv)
		}
		return true
	})
	return out
}

// Locations returns a description of every location block in document order.
func (p *Program) Locations() []string {
	var out []string
	ngxconf.Walk(p.root, func(d *ngxconf.Directive) bool {
		if e, ok := p.entries[d]; ok && e.loc != nil {
			out = append(out, e.loc.String())
		}
		return true
	})
	return out
}
