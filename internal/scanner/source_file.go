// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package scanner discovers the Java sources that handlers are extracted from.
package scanner

import (
	"path/filepath"
	"strings"
	"time"
)

// SourceFile represents a discovered source file.
type SourceFile struct {
	// Path is the absolute path to the file
	Path string

	// Language is the detected language ("java")
	Language string

	Content []byte
	ModTime time.Time
}

var languageExtensions = map[string]string{
	".java": "java",
}

// DetectLanguage detects the programming language from a file path.
func DetectLanguage(path string) string {
	return languageExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsSupportedFile checks if a file path has a supported extension.
func IsSupportedFile(path string) bool {
	return DetectLanguage(path) != ""
}
