// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rewrite

import (
	"strings"

	"github.com/ngxspec/ngxspec/internal/ngxconf"
)

type flow int

const (
	flowNext flow = iota
	flowDescend
	flowBreak
	flowStop
)

// strategy is the direction specific part of a traversal.
type strategy interface {
	// identifyRewrite returns the rule to try for a rewrite inside a
	// location, or nil to skip it.
	identifyRewrite(e *entry) (*rule, error)

	// unconditionalRewrite handles a rewrite outside of any location.
	unconditionalRewrite(e *entry) error
}

type candidate struct {
	loc  *location
	rule *rule
}

// session is the state of one path going through a Program.
type session struct {
	program  *Program
	method   string
	subject  string
	strategy strategy

	prefix   *candidate
	regex    *candidate
	notFound []*location
}

type frame struct {
	entries []*ngxconf.Directive
	next    int
	scope   *location
	// body marks the frame holding the direct children of a location
	body bool
}

// run walks the configuration tree in document order.
func (s *session) run() error {
	stack := []*frame{{entries: s.program.root.Children}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		d := top.entries[top.next]
		top.next++

		f, child, err := s.visit(d, top.scope)
		if err != nil {
			return err
		}
		switch f {
		case flowDescend:
			stack = append(stack, child)
		case flowBreak:
			stack = leaveLocation(stack)
		case flowStop:
			return nil
		}
	}
	return nil
}

// leaveLocation pops frames up to and including the innermost location body.
func leaveLocation(stack []*frame) []*frame {
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.body {
			break
		}
	}
	return stack
}

func (s *session) visit(d *ngxconf.Directive, scope *location) (flow, *frame, error) {
	switch {
	case d.Name == "if" && d.Block:
		ok, err := s.condition(d)
		if err != nil || !ok {
			return flowNext, nil, err
		}
		return flowDescend, &frame{entries: d.Children, scope: scope}, nil

	case d.Name == "location" && d.Block:
		e := s.program.entries[d]
		if e == nil {
			return flowNext, nil, nil
		}
		if e.err != nil {
			return flowNext, nil, e.err
		}
		if e.loc.typ == MatchNamed || e.loc.typ.regex() && s.regex != nil {
			return flowNext, nil, nil
		}
		return flowDescend, &frame{entries: d.Children, scope: e.loc, body: true}, nil

	case d.Name == "rewrite" && !d.Block:
		e := s.program.entries[d]
		if e == nil {
			return flowNext, nil, nil
		}
		if e.err != nil {
			return flowNext, nil, e.err
		}
		if scope == nil {
			return flowNext, nil, s.strategy.unconditionalRewrite(e)
		}
		return s.locationRewrite(scope, e)

	case d.Name == "return" && !d.Block:
		if scope != nil && d.Arg(0) == "404" {
			s.notFound = append(s.notFound, scope)
		}
		return flowNext, nil, nil

	case d.Block:
		return flowDescend, &frame{entries: d.Children, scope: scope}, nil
	}
	return flowNext, nil, nil
}

// condition evaluates an if block. Only request method equality is known.
func (s *session) condition(d *ngxconf.Directive) (bool, error) {
	if len(d.Args) != 3 || d.Args[0] != "$request_method" || d.Args[1] != "=" {
		return false, configError(d, "unsupported if condition (%s), only ($request_method = METHOD) is understood",
			strings.Join(d.Args, " "))
	}
	return strings.EqualFold(d.Args[2], s.method), nil
}

func (s *session) locationRewrite(loc *location, e *entry) (flow, *frame, error) {
	r, err := s.strategy.identifyRewrite(e)
	if err != nil || r == nil {
		return flowNext, nil, err
	}
	out, ok := r.apply(s.subject)
	if !ok {
		return flowNext, nil, nil
	}
	// the location sees the request path, which is the rule output when
	// running backwards
	request := s.subject
	if r.inverted {
		request = out
	}
	if !loc.matches(request) {
		return flowNext, nil, nil
	}

	s.record(loc, r)
	if loc.typ == MatchStrict {
		return flowStop, nil, nil
	}
	switch r.Flag {
	case FlagBreak:
		return flowBreak, nil, nil
	case FlagLast:
		return flowStop, nil, nil
	}
	return flowNext, nil, nil
}

func (s *session) record(loc *location, r *rule) {
	c := &candidate{loc: loc, rule: r}
	switch {
	case loc.typ == MatchStrict:
		s.prefix, s.regex = c, nil
	case loc.typ.regex():
		if s.regex == nil {
			s.regex = c
		}
	default:
		if s.prefix == nil || len(loc.url) > len(s.prefix.loc.url) {
			s.prefix = c
		}
	}
}

// chosen returns the candidate nginx precedence selects.
func (s *session) chosen() *candidate {
	if s.prefix != nil && (s.prefix.loc.typ == MatchStrict || s.prefix.loc.typ == MatchNoRegex) {
		return s.prefix
	}
	if s.regex != nil {
		return s.regex
	}
	return s.prefix
}

// notFoundFor returns the first not-found location matching request. With
// precedence set, a not-found location must also outrank the chosen
// candidate's location.
func (s *session) notFoundFor(request string, c *candidate, precedence bool) *location {
	var chosen *location
	if c != nil {
		chosen = c.loc
	}
	for _, nf := range s.notFound {
		if !nf.matches(request) {
			continue
		}
		if !precedence || winner(nf, chosen) == nf {
			return nf
		}
	}
	return nil
}
