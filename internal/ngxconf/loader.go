// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package ngxconf

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ngxspec/ngxspec/internal/logging"
)

// ExcludeFunc reports whether an include candidate should be skipped.
type ExcludeFunc func(path string) bool

// Loader reads a configuration file and everything it includes.
type Loader struct {
	// Properties is the template context used to render every file
	Properties map[string]string

	// StrictTemplate turns unknown template variables into errors
	StrictTemplate bool

	// Exclude filters include candidates (optional)
	Exclude ExcludeFunc

	// Logger receives include warnings (defaults to the "ngxconf" logger)
	Logger *slog.Logger
}

// Load reads the file at path and resolves its includes. The returned tree
// never contains an include directive without a body.
func (l *Loader) Load(file string) (*Directive, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", file, err)
	}
	return l.load(abs, nil)
}

// Resolve expands the includes of an already parsed document. Relative
// include paths are resolved against baseDir.
func (l *Loader) Resolve(doc *Directive, baseDir string) (*Directive, error) {
	var stack []string
	if doc.File != "" {
		stack = []string{doc.File}
	}
	children, err := l.resolve(doc.Children, baseDir, stack)
	if err != nil {
		return nil, err
	}
	out := *doc
	out.Children = children
	return &out, nil
}

func (l *Loader) logger() *slog.Logger {
	return logging.OrDefault(l.Logger, "ngxconf")
}

func (l *Loader) load(file string, stack []string) (*Directive, error) {
	if slices.Contains(stack, file) {
		return nil, fmt.Errorf("%w: %s", ErrIncludeCycle, strings.Join(append(slices.Clip(stack), file), " -> "))
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read nginx config: %w", err)
	}

	text, err := Render(string(data), l.Properties, l.StrictTemplate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	doc, err := Parse(file, []byte(text))
	if err != nil {
		return nil, err
	}

	children, err := l.resolve(doc.Children, filepath.Dir(file), append(slices.Clip(stack), file))
	if err != nil {
		return nil, err
	}
	doc.Children = children
	return doc, nil
}

func (l *Loader) resolve(entries []*Directive, dir string, stack []string) ([]*Directive, error) {
	out := make([]*Directive, 0, len(entries))
	for _, d := range entries {
		switch {
		case d.Name == "include" && !d.Block:
			resolved, err := l.include(d, dir, stack)
			if err != nil {
				return nil, err
			}
			if resolved != nil {
				out = append(out, resolved)
			}
		case d.Block:
			children, err := l.resolve(d.Children, dir, stack)
			if err != nil {
				return nil, err
			}
			c := *d
			c.Children = children
			out = append(out, &c)
		default:
			out = append(out, d)
		}
	}
	return out, nil
}

// include replaces one include directive. A nil result drops the directive.
func (l *Loader) include(d *Directive, dir string, stack []string) (*Directive, error) {
	if len(d.Args) != 1 {
		return nil, syntaxError(d.File, d.Line, "include expects exactly one path, got %d", len(d.Args))
	}
	pattern := d.Args[0]
	log := l.logger().With(slog.String("include", pattern), slog.String("file", d.File), slog.Int("line", d.Line))

	dirPart, filter := path.Split(filepath.ToSlash(pattern))
	if filter == "" {
		return nil, syntaxError(d.File, d.Line, "include %q has no file name", pattern)
	}

	var target string
	if isAbsolute(pattern) {
		target = remapAbsolute(dirPart, dir)
		if target == "" {
			log.Warn("absolute include does not resolve under the config directory, dropping it")
			return nil, nil
		}
	} else {
		target = filepath.Join(dir, filepath.FromSlash(dirPart))
	}

	matches, err := l.scan(target, filter)
	if err != nil {
		return nil, fmt.Errorf("%s:%d: include %q: %w", d.File, d.Line, pattern, err)
	}

	switch len(matches) {
	case 0:
		log.Warn("include matched no files, dropping it", slog.String("dir", target))
		return nil, nil
	case 1:
		return l.load(matches[0], stack)
	}

	wrapper := &Directive{
		Name:     "include",
		Args:     []string{pattern},
		Block:    true,
		Children: make([]*Directive, 0, len(matches)),
		File:     d.File,
		Line:     d.Line,
	}
	for _, m := range matches {
		doc, err := l.load(m, stack)
		if err != nil {
			return nil, err
		}
		wrapper.Children = append(wrapper.Children, doc)
	}
	return wrapper, nil
}

// scan lists the files in dir whose name matches filter, sorted by name.
func (l *Loader) scan(dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := doublestar.Match(filter, e.Name())
		if err != nil {
			return nil, fmt.Errorf("bad include pattern %q: %w", filter, err)
		}
		if !ok {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if l.Exclude != nil && l.Exclude(p) {
			l.logger().Debug("include candidate excluded", slog.String("path", p))
			continue
		}
		matches = append(matches, p)
	}
	return matches, nil
}

func isAbsolute(p string) bool {
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return true
	}
	// Windows drive paths show up in configs written on other machines.
	return len(p) > 2 && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
}

// remapAbsolute maps an absolute include directory onto root. The path is
// tried as is first, then with leading segments stripped one at a time, so
// "/etc/nginx/conf.d/" can resolve to "<root>/nginx/conf.d" or "<root>/conf.d".
func remapAbsolute(dir, root string) string {
	native := filepath.FromSlash(dir)
	if isDir(native) {
		return filepath.Clean(native)
	}

	slashed := strings.ReplaceAll(dir, `\`, "/")
	if len(slashed) > 1 && slashed[1] == ':' {
		slashed = slashed[2:]
	}
	var segments []string
	for _, s := range strings.Split(slashed, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	for i := range segments {
		candidate := filepath.Join(root, filepath.Join(segments[i:]...))
		if isDir(candidate) {
			return candidate
		}
	}
	return ""
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// ExcludeLocations builds an ExcludeFunc from configured locations. A path is
// excluded when it ends with a location (compared segment by segment) or when
// the location, read as a doublestar pattern, matches it.
func ExcludeLocations(locations []string) ExcludeFunc {
	cleaned := make([]string, 0, len(locations))
	for _, loc := range locations {
		loc = strings.TrimSuffix(filepath.ToSlash(strings.TrimSpace(loc)), "/")
		if loc != "" {
			cleaned = append(cleaned, loc)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}

	return func(p string) bool {
		slashed := filepath.ToSlash(p)
		for _, loc := range cleaned {
			if slashed == loc || strings.HasSuffix(slashed, "/"+loc) {
				return true
			}
			if ok, _ := doublestar.Match(loc, slashed); ok {
				return true
			}
			if ok, _ := doublestar.Match(loc, strings.TrimPrefix(slashed, "/")); ok {
				return true
			}
		}
		return false
	}
}
