// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package jvm

import (
	"fmt"

	"github.com/ngxspec/ngxspec/internal/logging"
	"github.com/ngxspec/ngxspec/internal/parser"
	"github.com/ngxspec/ngxspec/internal/scanner"
	"github.com/ngxspec/ngxspec/pkg/types"
)

// ParseAll parses every Java file in files. Files tree-sitter could only
// partially recover are kept and logged.
func ParseAll(p *parser.JavaParser, files []scanner.SourceFile, component string) ([]*parser.JavaFile, error) {
	log := logging.Logger(component)

	var out []*parser.JavaFile
	for _, f := range files {
		if f.Language != "java" {
			continue
		}
		jf, err := p.Parse(f.Path, f.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.Path, err)
		}
		if jf.Incomplete {
			log.Warn("syntax errors, extraction may be partial", "file", f.Path)
		}
		out = append(out, jf)
	}
	return out, nil
}

// HandlerFinder lists the endpoint methods of a parsed project.
type HandlerFinder func(files []*parser.JavaFile) []Handler

// Extract parses files, finds handlers and builds their routes. The
// returned Schemas holds every DTO the routes reference.
func Extract(p *parser.JavaParser, files []scanner.SourceFile, component string, find HandlerFinder) ([]types.Route, *Schemas, error) {
	parsed, err := ParseAll(p, files, component)
	if err != nil {
		return nil, nil, err
	}

	schemas := NewSchemas(parsed)
	handlers := find(parsed)
	routes := make([]types.Route, 0, len(handlers))
	for _, h := range handlers {
		routes = append(routes, BuildRoute(h, schemas))
	}
	logging.Logger(component).Debug("extracted routes",
		"files", len(parsed), "routes", len(routes))
	return routes, schemas, nil
}
