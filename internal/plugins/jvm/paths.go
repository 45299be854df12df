// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package jvm

import "strings"

// JoinPaths joins path segments from class and method level mappings into
// one absolute path without duplicate or trailing slashes.
func JoinPaths(parts ...string) string {
	var segs []string
	for _, p := range parts {
		for _, s := range strings.Split(p, "/") {
			if s = strings.TrimSpace(s); s != "" {
				segs = append(segs, s)
			}
		}
	}
	return "/" + strings.Join(segs, "/")
}

// CleanTemplate removes regex constraints from path templates, so
// "/users/{id: [0-9]{1,6}}" becomes "/users/{id}". The constraints are
// returned by parameter name.
func CleanTemplate(path string) (string, map[string]string) {
	var sb strings.Builder
	patterns := make(map[string]string)

	for i := 0; i < len(path); i++ {
		if path[i] != '{' {
			sb.WriteByte(path[i])
			continue
		}
		end, colon := i+1, -1
		for depth := 1; end < len(path); end++ {
			switch path[end] {
			case '{':
				depth++
			case '}':
				depth--
			case ':':
				if depth == 1 && colon < 0 {
					colon = end
				}
			}
			if depth == 0 {
				break
			}
		}
		if end >= len(path) {
			// unbalanced, keep the rest as is
			sb.WriteString(path[i:])
			break
		}
		name := path[i+1 : end]
		if colon >= 0 {
			name = path[i+1 : colon]
			patterns[strings.TrimSpace(name)] = strings.TrimSpace(path[colon+1 : end])
		}
		sb.WriteString("{" + strings.TrimSpace(name) + "}")
		i = end
	}
	return sb.String(), patterns
}

// PathParams returns the template parameter names of a cleaned path in
// order.
func PathParams(path string) []string {
	var names []string
	for {
		start := strings.IndexByte(path, '{')
		if start < 0 {
			return names
		}
		end := strings.IndexByte(path[start:], '}')
		if end < 0 {
			return names
		}
		names = append(names, path[start+1:start+end])
		path = path[start+end+1:]
	}
}
