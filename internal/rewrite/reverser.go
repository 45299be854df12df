// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rewrite

import (
	"fmt"
	"log/slog"

	"github.com/ngxspec/ngxspec/internal/logging"
)

// Reverser maps upstream paths back to the public paths nginx rewrites
// into them.
type Reverser struct {
	program    *Program
	policy     InversionPolicy
	additional []*rule
	precedence bool
	log        *slog.Logger
}

// NewReverser creates a Reverser. With InversionKeep every uninvertible
// rewrite is reported once here and skipped afterwards.
func NewReverser(p *Program, opts Options) (*Reverser, error) {
	policy := opts.InversionPolicy
	switch policy {
	case "":
		policy = InversionKeep
	case InversionKeep, InversionFail:
	default:
		return nil, fmt.Errorf("unknown inversion policy %q", policy)
	}

	rv := &Reverser{
		program:    p,
		policy:     policy,
		precedence: opts.NotFoundPrecedence,
		log:        logging.OrDefault(opts.Logger, "rewrite"),
	}

	for _, r := range opts.AdditionalRewrites {
		inv, err := invert(r, nil)
		if err == nil {
			var c *rule
			c, err = compileRule(inv)
			if err == nil {
				c.inverted = true
				rv.additional = append(rv.additional, c)
				continue
			}
		}
		if policy == InversionFail {
			return nil, fmt.Errorf("additional rewrites: %w", err)
		}
		rv.log.Warn("additional rewrite cannot be inverted, skipping it", slog.String("error", err.Error()))
	}

	if policy == InversionKeep {
		for _, inv := range p.Uninvertible() {
			rv.log.Warn("rewrite cannot be inverted, skipping it", slog.String("error", inv.Error()))
		}
	}
	return rv, nil
}

// Revert returns the request path nginx would rewrite into path. Paths
// that would only be reachable through a 404 location are left as they are.
func (rv *Reverser) Revert(path, method string) (string, error) {
	marked := mark(path)
	s := &session{program: rv.program, method: method, subject: marked.path}
	pass := &backwardPass{s: s, policy: rv.policy}
	s.strategy = pass
	if err := s.run(); err != nil {
		return "", err
	}

	current := s.subject
	if c := s.chosen(); c != nil {
		if out, ok := c.rule.apply(s.subject); ok {
			if nf := s.notFoundFor(out, c, rv.precedence); nf != nil {
				rv.log.Debug("reverted path ends in a not-found location, keeping it",
					slog.String("path", path), slog.String("location", nf.String()))
			} else {
				current = out
			}
		}
	}

	for i := len(pass.undo) - 1; i >= 0; i-- {
		if out, ok := pass.undo[i].apply(current); ok {
			current = out
		}
	}
	for i := len(rv.additional) - 1; i >= 0; i-- {
		if out, ok := rv.additional[i].apply(current); ok {
			current = out
		}
	}
	return marked.restore(current)
}

type backwardPass struct {
	s      *session
	policy InversionPolicy
	// undo collects inverted unconditional rewrites in document order
	undo []*rule
}

func (b *backwardPass) identifyRewrite(e *entry) (*rule, error) {
	if e.invErr != nil {
		if b.policy == InversionFail {
			return nil, e.invErr
		}
		return nil, nil
	}
	return e.inverse, nil
}

func (b *backwardPass) unconditionalRewrite(e *entry) error {
	r, err := b.identifyRewrite(e)
	if err != nil || r == nil {
		return err
	}
	b.undo = append(b.undo, r)
	return nil
}
