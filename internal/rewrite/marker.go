// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rewrite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var placeholderPattern = regexp.MustCompile(`\{[^{}/]+\}`)

// markerBase is a digit run chosen once per process. Placeholders are
// swapped for markerBase plus an index so that rewrite regexes written for
// concrete request paths, such as ([0-9]+), can match them.
var markerBase = strconv.FormatUint(uint64(uuid.New().ID())|1<<31, 10)

type markedPath struct {
	path     string
	restorer *strings.Replacer
}

func mark(p string) markedPath {
	var pairs []string
	marked := placeholderPattern.ReplaceAllStringFunc(p, func(placeholder string) string {
		marker := fmt.Sprintf("%s%03d", markerBase, len(pairs)/2)
		pairs = append(pairs, marker, placeholder)
		return marker
	})
	m := markedPath{path: marked}
	if len(pairs) > 0 {
		m.restorer = strings.NewReplacer(pairs...)
	}
	return m
}

// restore puts the placeholders back into a processed path.
func (m markedPath) restore(p string) (string, error) {
	out := p
	if m.restorer != nil {
		out = m.restorer.Replace(p)
	}
	if strings.Contains(out, markerBase) {
		return "", &ConfigError{Reason: fmt.Sprintf("path parameter was altered by a rewrite: %s", out)}
	}
	return out, nil
}
