// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Config holds scanner configuration.
type Config struct {
	// BasePath is the directory patterns are relative to (defaults to ".")
	BasePath string

	// IncludePatterns are doublestar patterns for files to include
	IncludePatterns []string

	// ExcludePatterns are doublestar patterns for files and directories to skip
	ExcludePatterns []string
}

// Scanner discovers source files in a project.
type Scanner struct {
	config Config
	base   string
}

// New creates a new Scanner with the given configuration.
func New(config Config) *Scanner {
	if config.BasePath == "" {
		config.BasePath = "."
	}
	if len(config.IncludePatterns) == 0 {
		config.IncludePatterns = []string{"**/*.java"}
	}
	base, err := filepath.Abs(config.BasePath)
	if err != nil {
		base = config.BasePath
	}
	return &Scanner{config: config, base: base}
}

// Scan discovers all source files under the base path.
func (s *Scanner) Scan() ([]SourceFile, error) {
	return s.ScanPath(s.base)
}

// ScanPaths scans multiple paths, skipping files seen earlier.
func (s *Scanner) ScanPaths(paths []string) ([]SourceFile, error) {
	var all []SourceFile
	seen := make(map[string]bool)
	for _, path := range paths {
		files, err := s.ScanPath(path)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if !seen[f.Path] {
				seen[f.Path] = true
				all = append(all, f)
			}
		}
	}
	return all, nil
}

// ScanPath scans a file or directory for source files.
func (s *Scanner) ScanPath(path string) ([]SourceFile, error) {
	var files []SourceFile
	err := s.walk(path, func(p string, info fs.FileInfo) {
		content, err := os.ReadFile(p)
		if err != nil {
			return
		}
		files = append(files, SourceFile{
			Path:     p,
			Language: DetectLanguage(p),
			Content:  content,
			ModTime:  info.ModTime(),
		})
	}, nil)
	if err != nil {
		return nil, err
	}
	return files, nil
}

// FileCount returns the number of matching files without reading them.
func (s *Scanner) FileCount() (int, error) {
	count := 0
	err := s.walk(s.base, func(string, fs.FileInfo) { count++ }, nil)
	return count, err
}

// Dirs returns every directory under paths that is not excluded, for
// watching.
func (s *Scanner) Dirs(paths []string) ([]string, error) {
	var dirs []string
	for _, path := range paths {
		err := s.walk(path, func(string, fs.FileInfo) {}, func(dir string) {
			dirs = append(dirs, dir)
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(dirs)
	return slices.Compact(dirs), nil
}

func (s *Scanner) walk(path string, onFile func(string, fs.FileInfo), onDir func(string)) error {
	root, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("path does not exist: %s", root)
		}
		return fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		if s.includeFile(root) {
			onFile(root, info)
		}
		return nil
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped
			return nil
		}
		if d.IsDir() {
			if p != root && s.excludeDir(p) {
				return filepath.SkipDir
			}
			if onDir != nil {
				onDir(p)
			}
			return nil
		}
		if !s.includeFile(p) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		onFile(p, info)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}
	return nil
}

func (s *Scanner) rel(p string) string {
	rel, err := filepath.Rel(s.base, p)
	if err != nil {
		rel = filepath.Base(p)
	}
	return filepath.ToSlash(rel)
}

func (s *Scanner) includeFile(p string) bool {
	if !IsSupportedFile(p) {
		return false
	}
	rel := s.rel(p)
	if matchAny(s.config.ExcludePatterns, rel) {
		return false
	}
	return matchAny(s.config.IncludePatterns, rel)
}

// excludeDir reports whether every file below the directory is excluded,
// e.g. "target" under "**/target/**".
func (s *Scanner) excludeDir(p string) bool {
	return matchAny(s.config.ExcludePatterns, s.rel(p)+"/_.java")
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
