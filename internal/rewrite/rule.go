// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rewrite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ngxspec/ngxspec/internal/ngxconf"
)

// Flag controls what happens after a rewrite inside a location matched.
type Flag string

const (
	FlagNone  Flag = ""
	FlagBreak Flag = "break"
	FlagLast  Flag = "last"
)

// Rule is a rewrite regex with its replacement.
type Rule struct {
	Regex   string
	Replace string
	Flag    Flag
}

func (r Rule) String() string {
	s := "rewrite " + r.Regex + " " + r.Replace
	if r.Flag != FlagNone {
		s += " " + string(r.Flag)
	}
	return s
}

// ruleFromDirective reads the arguments of a rewrite directive.
func ruleFromDirective(d *ngxconf.Directive) (Rule, error) {
	if len(d.Args) < 2 || len(d.Args) > 3 {
		return Rule{}, configError(d, "rewrite expects a regex, a replacement and an optional flag, got %d arguments", len(d.Args))
	}
	r := Rule{Regex: d.Args[0], Replace: d.Args[1], Flag: Flag(d.Arg(2))}
	switch r.Flag {
	case FlagNone, FlagBreak, FlagLast:
	default:
		return Rule{}, configError(d, "unsupported rewrite flag %q", r.Flag)
	}
	return r, nil
}

// part is a piece of a replacement: literal text or a group reference.
type part struct {
	text  string
	group int
}

// parseReplace splits a replacement into literals and group references.
// $N and ${N} reference groups, $$ is a literal dollar sign.
func parseReplace(s string) ([]part, error) {
	var (
		parts []part
		lit   strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, part{text: lit.String(), group: -1})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '$' || i+1 == len(s) {
			lit.WriteByte(c)
			continue
		}
		n := s[i+1]
		switch {
		case n == '$':
			lit.WriteByte('$')
			i++
		case n >= '0' && n <= '9':
			flush()
			parts = append(parts, part{group: int(n - '0')})
			i++
		case n == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated ${ in replacement %q", s)
			}
			name := s[i+2 : i+end]
			g, err := strconv.Atoi(name)
			if err != nil || g < 0 {
				return nil, fmt.Errorf("unsupported variable ${%s} in replacement %q", name, s)
			}
			flush()
			parts = append(parts, part{group: g})
			i += end
		default:
			j := i + 1
			for j < len(s) && (s[j] == '_' || isAlnum(s[j])) {
				j++
			}
			if j == i+1 {
				lit.WriteByte(c)
				continue
			}
			return nil, fmt.Errorf("unsupported variable %s in replacement %q", s[i:j], s)
		}
	}
	flush()
	return parts, nil
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// refs lists the referenced groups in order of appearance.
func refs(parts []part) []int {
	var out []int
	for _, p := range parts {
		if p.group >= 0 {
			out = append(out, p.group)
		}
	}
	return out
}

// rule is a compiled Rule.
type rule struct {
	Rule
	re       *regexp.Regexp
	parts    []part
	inverted bool
	source   *ngxconf.Directive
}

func compileRule(r Rule) (*rule, error) {
	re, err := regexp.Compile(r.Regex)
	if err != nil {
		return nil, fmt.Errorf("invalid rewrite regex %q: %w", r.Regex, err)
	}
	parts, err := parseReplace(r.Replace)
	if err != nil {
		return nil, err
	}
	for _, g := range refs(parts) {
		if g > re.NumSubexp() {
			return nil, fmt.Errorf("replacement %q references group %d but %q has %d", r.Replace, g, r.Regex, re.NumSubexp())
		}
	}
	return &rule{Rule: r, re: re, parts: parts}, nil
}

// apply runs the rule against subject. The whole subject is replaced by the
// expanded replacement when the regex matches anywhere in it.
func (r *rule) apply(subject string) (string, bool) {
	m := r.re.FindStringSubmatchIndex(subject)
	if m == nil {
		return "", false
	}
	var b strings.Builder
	for _, p := range r.parts {
		if p.group < 0 {
			b.WriteString(p.text)
			continue
		}
		if start := m[2*p.group]; start >= 0 {
			b.WriteString(subject[start:m[2*p.group+1]])
		}
	}
	return b.String(), true
}

// compileRules compiles rules given outside of any configuration file.
func compileRules(rules []Rule) ([]*rule, error) {
	out := make([]*rule, 0, len(rules))
	for _, r := range rules {
		c, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
