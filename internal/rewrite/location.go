// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ngxspec/ngxspec/internal/ngxconf"
)

// MatchType is the kind of comparison a location block performs.
type MatchType int

const (
	MatchPrefix MatchType = iota
	MatchNoRegex
	MatchStrict
	MatchRegex
	MatchIRegex
	MatchNamed
)

var matchModifiers = map[string]MatchType{
	"^~": MatchNoRegex,
	"=":  MatchStrict,
	"~*": MatchIRegex,
	"~":  MatchRegex,
}

func (t MatchType) String() string {
	switch t {
	case MatchPrefix:
		return "prefix"
	case MatchNoRegex:
		return "^~"
	case MatchStrict:
		return "="
	case MatchRegex:
		return "~"
	case MatchIRegex:
		return "~*"
	case MatchNamed:
		return "@"
	}
	return fmt.Sprintf("MatchType(%d)", int(t))
}

func (t MatchType) regex() bool {
	return t == MatchRegex || t == MatchIRegex
}

type location struct {
	typ     MatchType
	url     string
	pattern *regexp.Regexp
	parent  *location
	order   int
	source  *ngxconf.Directive
}

func (l *location) String() string {
	if l.typ == MatchPrefix || l.typ == MatchNamed {
		return "location " + l.url
	}
	return "location " + l.typ.String() + " " + l.url
}

// parseLocation reads the modifier and URL of a location block. The modifier
// may be a separate argument or glued to the URL.
func parseLocation(d *ngxconf.Directive, parent *location, order int) (*location, error) {
	loc := &location{parent: parent, order: order, source: d}

	switch len(d.Args) {
	case 1:
		arg := d.Args[0]
		switch {
		case strings.HasPrefix(arg, "@"):
			loc.typ, loc.url = MatchNamed, arg
		case strings.HasPrefix(arg, "^~"):
			loc.typ, loc.url = MatchNoRegex, arg[2:]
		case strings.HasPrefix(arg, "~*"):
			loc.typ, loc.url = MatchIRegex, arg[2:]
		case strings.HasPrefix(arg, "~"):
			loc.typ, loc.url = MatchRegex, arg[1:]
		case strings.HasPrefix(arg, "="):
			loc.typ, loc.url = MatchStrict, arg[1:]
		default:
			loc.typ, loc.url = MatchPrefix, arg
		}
	case 2:
		typ, ok := matchModifiers[d.Args[0]]
		if !ok {
			return nil, configError(d, "invalid location modifier %q", d.Args[0])
		}
		loc.typ, loc.url = typ, d.Args[1]
	default:
		return nil, configError(d, "location expects an optional modifier and a URL, got %d arguments", len(d.Args))
	}

	if loc.url == "" {
		return nil, configError(d, "location %q has no URL", strings.Join(d.Args, " "))
	}
	if loc.typ == MatchNamed {
		return loc, nil
	}

	pattern, err := regexp.Compile(locationPattern(loc.typ, loc.url))
	if err != nil {
		return nil, configError(d, "invalid location regex %q: %v", loc.url, err)
	}
	loc.pattern = pattern
	return loc, nil
}

// locationPattern builds the full-match regex for a location URL. Regex
// locations always match from the start of the path and are left open at
// the end unless the URL ends with $.
func locationPattern(typ MatchType, url string) string {
	switch typ {
	case MatchStrict:
		return "^" + regexp.QuoteMeta(url) + "$"
	case MatchRegex, MatchIRegex:
		body, tail := strings.TrimPrefix(url, "^"), "(.*)"
		if trimmed, ok := trimAnchor(body); ok {
			body, tail = trimmed, ""
		}
		flags := ""
		if typ == MatchIRegex {
			flags = "(?i)"
		}
		return flags + "^(?:" + body + ")" + tail + "$"
	}
	return "^" + regexp.QuoteMeta(url) + "(.*)$"
}

// trimAnchor strips an unescaped trailing $.
func trimAnchor(s string) (string, bool) {
	if !strings.HasSuffix(s, "$") {
		return s, false
	}
	backslashes := 0
	for i := len(s) - 2; i >= 0 && s[i] == '\\'; i-- {
		backslashes++
	}
	if backslashes%2 == 1 {
		return s, false
	}
	return s[:len(s)-1], true
}

func (l *location) matches(path string) bool {
	return l.pattern != nil && l.pattern.MatchString(path)
}

// literal returns the single path a location stands for, if it has one.
func (l *location) literal() (string, bool) {
	switch l.typ {
	case MatchPrefix, MatchNoRegex, MatchStrict:
		return l.url, !strings.Contains(l.url, "(")
	case MatchRegex, MatchIRegex:
		body := strings.TrimPrefix(l.url, "^")
		body, _ = trimAnchor(body)
		return unescapeLiteral(body)
	}
	return "", false
}

// winner picks the location nginx would select among matching ones: an
// exact match, then the longest prefix if it disables regex matching, then
// the first regex, then the longest prefix.
func winner(locs ...*location) *location {
	var strict, longest, firstRegex *location
	for _, l := range locs {
		if l == nil {
			continue
		}
		switch {
		case l.typ == MatchStrict:
			if strict == nil || l.order < strict.order {
				strict = l
			}
		case l.typ.regex():
			if firstRegex == nil || l.order < firstRegex.order {
				firstRegex = l
			}
		case l.typ != MatchNamed:
			if longest == nil || len(l.url) > len(longest.url) ||
				len(l.url) == len(longest.url) && l.order < longest.order {
				longest = l
			}
		}
	}
	switch {
	case strict != nil:
		return strict
	case longest != nil && longest.typ == MatchNoRegex:
		return longest
	case firstRegex != nil:
		return firstRegex
	}
	return longest
}
