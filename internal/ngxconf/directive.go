// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package ngxconf reads nginx configuration files into a directive tree.
//
// Loading renders {{ name }} template placeholders, parses the text and
// expands include directives so that consumers only ever see one flattened,
// read-only tree.
package ngxconf

import (
	"fmt"
	"io"
	"strings"
)

// Directive is a single nginx statement. Block directives carry children,
// simple directives ("params") only carry arguments.
type Directive struct {
	// Name is the directive name. The document root has an empty name.
	Name string

	// Args are the positional arguments in source order
	Args []string

	// Block is true for directives written with a { } body
	Block bool

	// Children are the directives inside the block body
	Children []*Directive

	// File is the file the directive was read from
	File string

	// Line is the 1-based source line
	Line int
}

// IsBlock reports whether the directive has a body.
func (d *Directive) IsBlock() bool {
	return d.Block
}

// IsDocument reports whether the directive is the root of a parsed file.
func (d *Directive) IsDocument() bool {
	return d.Block && d.Name == ""
}

// Arg returns the i-th argument or "" when it is missing.
func (d *Directive) Arg(i int) string {
	if i < 0 || i >= len(d.Args) {
		return ""
	}
	return d.Args[i]
}

// String returns the directive head as it would appear in a config file.
func (d *Directive) String() string {
	if len(d.Args) == 0 {
		return d.Name
	}
	return d.Name + " " + strings.Join(quoteArgs(d.Args), " ")
}

// Walk calls fn for every directive below root in document order.
// Returning false from fn skips the directive's children.
func Walk(root *Directive, fn func(d *Directive) bool) {
	for _, child := range root.Children {
		if fn(child) && child.Block {
			Walk(child, fn)
		}
	}
}

// Files lists the files the tree was read from, in the order first seen.
func Files(root *Directive) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(d *Directive) {
		if d.File != "" && !seen[d.File] {
			seen[d.File] = true
			out = append(out, d.File)
		}
	}
	add(root)
	Walk(root, func(d *Directive) bool {
		add(d)
		return true
	})
	return out
}

// Format writes the tree back out as nginx configuration text.
// Documents spliced in by includes are marked with a comment naming the file.
func Format(w io.Writer, root *Directive) error {
	return format(w, root.Children, 0)
}

func format(w io.Writer, entries []*Directive, depth int) error {
	indent := strings.Repeat("    ", depth)
	for _, d := range entries {
		var err error
		switch {
		case d.IsDocument():
			if _, err = fmt.Fprintf(w, "%s# %s\n", indent, d.File); err == nil {
				err = format(w, d.Children, depth)
			}
		case d.Block:
			if _, err = fmt.Fprintf(w, "%s%s {\n", indent, d.String()); err == nil {
				if err = format(w, d.Children, depth+1); err == nil {
					_, err = fmt.Fprintf(w, "%s}\n", indent)
				}
			}
		default:
			_, err = fmt.Fprintf(w, "%s%s;\n", indent, d.String())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func quoteArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n;{}#\"'") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		out[i] = a
	}
	return out
}
