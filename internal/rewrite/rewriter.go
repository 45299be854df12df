// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rewrite

import (
	"fmt"
	"log/slog"

	"github.com/ngxspec/ngxspec/internal/logging"
)

// NotFoundPath is returned by Rewriter.Rewrite for paths nginx answers with 404.
const NotFoundPath = "@404"

// InversionPolicy decides what happens to rewrites that cannot be inverted.
type InversionPolicy string

const (
	// InversionKeep skips uninvertible rewrites, leaving paths they would
	// have produced untouched.
	InversionKeep InversionPolicy = "keep"
	// InversionFail makes any path reaching an uninvertible rewrite fail.
	InversionFail InversionPolicy = "fail"
)

// Options configures a Rewriter or Reverser.
type Options struct {
	// AdditionalRewrites run before the configuration, as if declared
	// outside of any location
	AdditionalRewrites []Rule

	// InversionPolicy applies to the Reverser only (default InversionKeep)
	InversionPolicy InversionPolicy

	// NotFoundPrecedence makes a return 404 location apply only when nginx
	// would pick it over the location holding the matching rewrite. By
	// default any matching not-found location applies.
	NotFoundPrecedence bool

	Logger *slog.Logger
}

// Rewriter maps paths the way nginx rewrites incoming requests.
type Rewriter struct {
	program    *Program
	additional []*rule
	precedence bool
	log        *slog.Logger
}

// NewRewriter creates a Rewriter for a compiled configuration.
func NewRewriter(p *Program, opts Options) (*Rewriter, error) {
	additional, err := compileRules(opts.AdditionalRewrites)
	if err != nil {
		return nil, fmt.Errorf("additional rewrites: %w", err)
	}
	return &Rewriter{
		program:    p,
		additional: additional,
		precedence: opts.NotFoundPrecedence,
		log:        logging.OrDefault(opts.Logger, "rewrite"),
	}, nil
}

// Rewrite returns the path nginx would pass upstream for a request to path,
// or NotFoundPath when the request ends in a 404 location. Placeholders
// such as {id} survive the rewrite.
func (rw *Rewriter) Rewrite(path, method string) (string, error) {
	marked := mark(path)
	subject := marked.path
	for _, r := range rw.additional {
		if out, ok := r.apply(subject); ok {
			subject = out
		}
	}

	s := &session{program: rw.program, method: method, subject: subject}
	s.strategy = forwardPass{s: s}
	if err := s.run(); err != nil {
		return "", err
	}

	c := s.chosen()
	if nf := s.notFoundFor(s.subject, c, rw.precedence); nf != nil {
		rw.log.Debug("request ends in a not-found location",
			slog.String("path", path), slog.String("location", nf.String()))
		return NotFoundPath, nil
	}
	if c == nil {
		return marked.restore(s.subject)
	}

	out, ok := c.rule.apply(s.subject)
	if !ok {
		return "", configError(c.rule.source, "%s doesn't match path %s", c.rule.Rule, path)
	}
	rw.log.Debug("path rewritten",
		slog.String("path", path), slog.String("location", c.loc.String()), slog.String("rule", c.rule.String()))
	return marked.restore(out)
}

type forwardPass struct {
	s *session
}

func (f forwardPass) identifyRewrite(e *entry) (*rule, error) {
	return e.rule, nil
}

func (f forwardPass) unconditionalRewrite(e *entry) error {
	out, ok := e.rule.apply(f.s.subject)
	if !ok {
		return nil
	}
	if out == f.s.subject {
		return configError(e.rule.source, "%s matched %s without changing it", e.rule.Rule, out)
	}
	f.s.subject = out
	return nil
}
