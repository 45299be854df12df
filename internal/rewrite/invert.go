// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rewrite

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const regexMeta = `.[]()|*+?{}^$\`

// invert derives the rule that maps the output of r back to its input. loc
// is the location that owns r, nil for unconditional rewrites.
func invert(r Rule, loc *location) (Rule, error) {
	parts, err := parseReplace(r.Replace)
	if err != nil {
		return Rule{}, inversionError(r, "%v", err)
	}
	groups := refs(parts)

	if len(groups) == 0 {
		if loc == nil {
			return Rule{}, inversionError(r, "constant rewrite without location")
		}
		lit, ok := loc.literal()
		if !ok {
			return Rule{}, inversionError(r, "replacement and %s both have to be constant", loc)
		}
		return Rule{
			Regex:   "^" + regexp.QuoteMeta(literalText(parts)) + "$",
			Replace: escapeDollar(lit),
			Flag:    r.Flag,
		}, nil
	}

	var re strings.Builder
	re.WriteString("^")
	for _, p := range parts {
		if p.group < 0 {
			re.WriteString(regexp.QuoteMeta(p.text))
		} else {
			re.WriteString("(.*)")
		}
	}
	re.WriteString("$")

	// an inverse group is named after the first place its source group is used
	position := make(map[int]int, len(groups))
	for i, g := range groups {
		if _, ok := position[g]; !ok {
			position[g] = i + 1
		}
	}

	var replace string
	if pos, ok := position[0]; ok {
		replace = groupRef(pos)
	} else {
		replace, err = backSubstitute(r.Regex, position)
		if err != nil {
			return Rule{}, inversionError(r, "%v", err)
		}
	}
	return Rule{Regex: re.String(), Replace: replace, Flag: r.Flag}, nil
}

func literalText(parts []part) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.text)
	}
	return b.String()
}

func escapeDollar(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

func groupRef(n int) string {
	if n > 9 {
		return fmt.Sprintf("${%d}", n)
	}
	return fmt.Sprintf("$%d", n)
}

// backSubstitute rebuilds the input of a rewrite from its regex: referenced
// groups become references to the inverse groups in position, everything
// else has to be literal.
func backSubstitute(regex string, position map[int]int) (string, error) {
	body := strings.TrimPrefix(regex, "^")
	body, _ = trimAnchor(body)

	var (
		out   strings.Builder
		group int
		seen  = make(map[int]bool, len(position))
	)
	for i := 0; i < len(body); {
		c := body[i]
		switch {
		case c == '\\':
			if i+1 == len(body) {
				return "", errors.New("trailing backslash")
			}
			next := body[i+1]
			if !isPunct(next) {
				return "", fmt.Errorf(`\%c outside a capture group has no literal value`, next)
			}
			out.WriteString(escapeDollar(string(next)))
			i += 2

		case c == '(':
			end, err := closingParen(body, i)
			if err != nil {
				return "", err
			}
			capturing, content := groupKind(body[i+1 : end])
			nested, err := countGroups(content)
			if err != nil {
				return "", err
			}
			i = end + 1
			quant := ""
			if i < len(body) && strings.IndexByte("?*+{", body[i]) >= 0 {
				quant, i = readQuantifier(body, i)
			}

			own := 0
			if capturing {
				group++
				own = group
			}
			for g := group + 1; g <= group+nested; g++ {
				if _, ok := position[g]; ok {
					return "", fmt.Errorf("group %d is nested inside another group", g)
				}
			}
			group += nested

			if pos, ok := position[own]; ok && own > 0 {
				out.WriteString(groupRef(pos))
				seen[own] = true
				continue
			}
			if optional(quant) {
				continue
			}
			lit, ok := literalAlternative(content)
			if !ok {
				return "", fmt.Errorf("unreferenced group (%s) has no literal value", content)
			}
			out.WriteString(escapeDollar(lit))

		case strings.IndexByte(regexMeta, c) >= 0:
			return "", fmt.Errorf("%q outside a capture group has no literal value", c)

		default:
			out.WriteByte(c)
			i++
		}
	}

	if group == 0 {
		return "", errors.New("not a regex: it has no capture groups")
	}
	for g := range position {
		if !seen[g] {
			return "", fmt.Errorf("replacement references group %d, regex has %d", g, group)
		}
	}
	return out.String(), nil
}

func isPunct(c byte) bool {
	return c < 0x80 && !isAlnum(c) && c > ' '
}

func optional(quant string) bool {
	return strings.HasPrefix(quant, "?") || strings.HasPrefix(quant, "*") ||
		strings.HasPrefix(quant, "{0")
}

func readQuantifier(s string, i int) (string, int) {
	start := i
	if s[i] == '{' {
		end := strings.IndexByte(s[i:], '}')
		if end < 0 {
			return s[start:], len(s)
		}
		i += end + 1
	} else {
		i++
	}
	// lazy and possessive suffixes
	if i < len(s) && (s[i] == '?' || s[i] == '+') {
		i++
	}
	return s[start:i], i
}

// closingParen finds the parenthesis closing the group opened at s[open].
func closingParen(s string, open int) (int, error) {
	depth := 0
	for j := open; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '[':
			end := classEnd(s, j)
			if end < 0 {
				return 0, errors.New("unfinished character class")
			}
			j = end
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return j, nil
			}
		}
	}
	return 0, errors.New("unfinished group")
}

func classEnd(s string, open int) int {
	k := open + 1
	if k < len(s) && s[k] == '^' {
		k++
	}
	if k < len(s) && s[k] == ']' {
		k++
	}
	for k < len(s) {
		switch s[k] {
		case '\\':
			k += 2
			continue
		case ']':
			return k
		}
		k++
	}
	return -1
}

// groupKind reports whether a group body captures, and strips its prefix.
func groupKind(inner string) (bool, string) {
	if !strings.HasPrefix(inner, "?") {
		return true, inner
	}
	if rest, ok := strings.CutPrefix(inner, "?P<"); ok {
		if end := strings.IndexByte(rest, '>'); end >= 0 {
			return true, rest[end+1:]
		}
	}
	if rest, ok := strings.CutPrefix(inner, "?<"); ok && rest != "" && rest[0] != '=' && rest[0] != '!' {
		if end := strings.IndexByte(rest, '>'); end >= 0 {
			return true, rest[end+1:]
		}
	}
	// (?:x), (?i:x) and bare flag groups like (?i)
	if colon := strings.IndexByte(inner, ':'); colon >= 0 {
		return false, inner[colon+1:]
	}
	return false, ""
}

func countGroups(s string) (int, error) {
	n := 0
	for j := 0; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '[':
			end := classEnd(s, j)
			if end < 0 {
				return 0, errors.New("unfinished character class")
			}
			j = end
		case '(':
			if capturing, _ := groupKind(s[j+1:]); capturing {
				n++
			}
		}
	}
	return n, nil
}

// literalAlternative returns the first alternative of a group body when
// every alternative is plain text.
func literalAlternative(content string) (string, bool) {
	var alts []string
	start := 0
	for j := 0; j < len(content); j++ {
		switch content[j] {
		case '\\':
			j++
		case '|':
			alts = append(alts, content[start:j])
			start = j + 1
		}
	}
	alts = append(alts, content[start:])

	first := ""
	for i, alt := range alts {
		lit, ok := unescapeLiteral(alt)
		if !ok {
			return "", false
		}
		if i == 0 {
			first = lit
		}
	}
	return first, true
}

// unescapeLiteral decodes a regex fragment made only of literal characters
// and escaped punctuation.
func unescapeLiteral(s string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			if i+1 == len(s) || !isPunct(s[i+1]) {
				return "", false
			}
			b.WriteByte(s[i+1])
			i++
		case strings.IndexByte(regexMeta, c) >= 0:
			return "", false
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), true
}
