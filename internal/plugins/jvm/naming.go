// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package jvm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var handlerSuffixes = []string{"RestController", "Controller", "Resource", "Endpoint", "Api", "Impl"}

// DefaultTag derives a tag from a handler class name:
// "UserAccountResource" becomes "User Account".
func DefaultTag(className string) string {
	name := className
	for _, s := range handlerSuffixes {
		if trimmed := strings.TrimSuffix(name, s); trimmed != "" && trimmed != name {
			name = trimmed
			break
		}
	}
	return cases.Title(language.English, cases.NoLower).String(strings.Join(splitCamel(name), " "))
}

// PropertyName turns a getter into a bean property name: getUserId
// becomes userId, isActive becomes active and getURL stays URL.
func PropertyName(getter string) (string, bool) {
	var rest string
	switch {
	case strings.HasPrefix(getter, "get") && len(getter) > 3:
		rest = getter[3:]
	case strings.HasPrefix(getter, "is") && len(getter) > 2:
		rest = getter[2:]
	default:
		return "", false
	}
	r := []rune(rest)
	if !unicode.IsUpper(r[0]) {
		return "", false
	}
	if len(r) > 1 && unicode.IsUpper(r[1]) {
		return rest, true
	}
	return cases.Lower(language.Und).String(string(r[0])) + string(r[1:]), true
}

func splitCamel(s string) []string {
	var words []string
	r := []rune(s)
	start := 0
	for i := 1; i < len(r); i++ {
		lowerToUpper := unicode.IsLower(r[i-1]) && unicode.IsUpper(r[i])
		acronymEnd := i+1 < len(r) && unicode.IsUpper(r[i-1]) && unicode.IsUpper(r[i]) && unicode.IsLower(r[i+1])
		if lowerToUpper || acronymEnd || r[i] == '_' {
			if w := strings.Trim(string(r[start:i]), "_"); w != "" {
				words = append(words, w)
			}
			start = i
		}
	}
	if w := strings.Trim(string(r[start:]), "_"); w != "" {
		words = append(words, w)
	}
	return words
}
