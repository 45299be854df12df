// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDir creates a temporary directory with test files.
func setupTestDir(t *testing.T, files map[string]string) string {
	t.Helper()

	tmpDir := t.TempDir()
	for path, content := range files {
		fullPath := filepath.Join(tmpDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
	return tmpDir
}

func relPaths(t *testing.T, base string, files []SourceFile) []string {
	t.Helper()
	paths := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(base, f.Path)
		require.NoError(t, err)
		paths[i] = filepath.ToSlash(rel)
	}
	sort.Strings(paths)
	return paths
}

var mavenProject = map[string]string{
	"src/main/java/com/acme/UserResource.java":     "package com.acme;",
	"src/main/java/com/acme/OrderResource.java":    "package com.acme;",
	"src/main/resources/application.yaml":          "server: {}",
	"src/test/java/com/acme/UserResourceTest.java": "package com.acme;",
	"target/generated-sources/Stub.java":           "package gen;",
	"README.md":                                    "# acme",
}

func TestNew_DefaultConfig(t *testing.T) {
	s := New(Config{})

	assert.Equal(t, ".", s.config.BasePath)
	assert.Equal(t, []string{"**/*.java"}, s.config.IncludePatterns)
	assert.True(t, filepath.IsAbs(s.base))
}

func TestScanner_Scan(t *testing.T) {
	dir := setupTestDir(t, mavenProject)

	files, err := New(Config{BasePath: dir}).Scan()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"src/main/java/com/acme/OrderResource.java",
		"src/main/java/com/acme/UserResource.java",
		"src/test/java/com/acme/UserResourceTest.java",
		"target/generated-sources/Stub.java",
	}, relPaths(t, dir, files))

	for _, f := range files {
		assert.Equal(t, "java", f.Language)
		assert.NotEmpty(t, f.Content)
		assert.False(t, f.ModTime.IsZero())
	}
}

func TestScanner_Scan_ExcludePatterns(t *testing.T) {
	dir := setupTestDir(t, mavenProject)

	s := New(Config{
		BasePath:        dir,
		ExcludePatterns: []string{"**/target/**", "**/src/test/**", "**/Order*.java"},
	})
	files, err := s.Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/main/java/com/acme/UserResource.java"}, relPaths(t, dir, files))

	count, err := s.FileCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestScanner_Scan_IncludePatterns(t *testing.T) {
	dir := setupTestDir(t, mavenProject)

	files, err := New(Config{
		BasePath:        dir,
		IncludePatterns: []string{"src/main/**/*.java"},
	}).Scan()
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestScanner_ScanPath_SingleFile(t *testing.T) {
	dir := setupTestDir(t, mavenProject)
	s := New(Config{BasePath: dir})

	files, err := s.ScanPath(filepath.Join(dir, "src/main/java/com/acme/UserResource.java"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "package com.acme;", string(files[0].Content))

	files, err = s.ScanPath(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScanner_ScanPath_Missing(t *testing.T) {
	_, err := New(Config{}).ScanPath(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path does not exist")
}

func TestScanner_ScanPaths_Dedup(t *testing.T) {
	dir := setupTestDir(t, mavenProject)
	s := New(Config{BasePath: dir, ExcludePatterns: []string{"**/target/**"}})

	files, err := s.ScanPaths([]string{
		filepath.Join(dir, "src/main"),
		filepath.Join(dir, "src"),
	})
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestScanner_Dirs(t *testing.T) {
	dir := setupTestDir(t, mavenProject)
	s := New(Config{BasePath: dir, ExcludePatterns: []string{"**/target/**", "**/src/test/**"}})

	dirs, err := s.Dirs([]string{dir})
	require.NoError(t, err)

	assert.Contains(t, dirs, dir)
	assert.Contains(t, dirs, filepath.Join(dir, "src", "main", "java", "com", "acme"))
	assert.NotContains(t, dirs, filepath.Join(dir, "target"))
	assert.NotContains(t, dirs, filepath.Join(dir, "src", "test"))
}
