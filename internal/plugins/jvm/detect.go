// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package jvm holds the extraction steps shared by the Java framework
// plugins: build file detection, path templates, bindings and schemas.
package jvm

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// buildFiles match Maven and Gradle build files at the project root and
// one module level below it.
var buildFiles = []string{
	"{pom.xml,build.gradle,build.gradle.kts}",
	"*/{pom.xml,build.gradle,build.gradle.kts}",
}

// DetectDependency reports whether any build file under projectRoot
// mentions one of markers, compared case-insensitively.
func DetectDependency(projectRoot string, markers ...string) (bool, error) {
	fsys := os.DirFS(projectRoot)
	for _, pattern := range buildFiles {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return false, fmt.Errorf("failed to search build files: %w", err)
		}
		for _, m := range matches {
			if found, err := fileMentions(fsys, m, markers); err == nil && found {
				return true, nil
			}
		}
	}
	return false, nil
}

func fileMentions(fsys fs.FS, name string, markers []string) (bool, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.ToLower(s.Text())
		for _, m := range markers {
			if strings.Contains(line, strings.ToLower(m)) {
				return true, nil
			}
		}
	}
	return false, s.Err()
}
