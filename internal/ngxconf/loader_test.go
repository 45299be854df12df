// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package ngxconf

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFiles creates files relative to dir.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func testLoader(buf *bytes.Buffer) *Loader {
	return &Loader{Logger: slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
}

// names flattens the tree into directive names, skipping document blocks.
func names(root *Directive) []string {
	var out []string
	Walk(root, func(d *Directive) bool {
		if !d.IsDocument() {
			out = append(out, d.Name)
		}
		return true
	})
	return out
}

func TestLoader_GlobIncludeOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"nginx.conf":   "server { before on; include sub/*.conf; after on; }",
		"sub/c.conf":   "c on;",
		"sub/a.conf":   "a on;",
		"sub/b.conf":   "b on;",
		"sub/skip.txt": "skip on;",
		"sub/nested/x": "x on;",
	})

	var logs bytes.Buffer
	doc, err := testLoader(&logs).Load(filepath.Join(dir, "nginx.conf"))
	require.NoError(t, err)

	assert.Equal(t, []string{"server", "before", "include", "a", "b", "c", "after"}, names(doc))

	server := doc.Children[0]
	wrapper := server.Children[1]
	assert.True(t, wrapper.IsBlock())
	assert.Equal(t, []string{"sub/*.conf"}, wrapper.Args)
	require.Len(t, wrapper.Children, 3)
	assert.Equal(t, filepath.Join(dir, "sub", "a.conf"), wrapper.Children[0].File)
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"nginx.conf":          "include conf.d/*.conf; server { include snippets/api.conf; }",
		"conf.d/b.conf":       "b on;",
		"conf.d/a.conf":       "",
		"snippets/api.conf":   "location /api/ { include inner.conf; }",
		"snippets/inner.conf": "inner on;",
	})

	var logs bytes.Buffer
	doc, err := testLoader(&logs).Load(filepath.Join(dir, "nginx.conf"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "nginx.conf"),
		filepath.Join(dir, "conf.d", "a.conf"),
		filepath.Join(dir, "conf.d", "b.conf"),
		filepath.Join(dir, "snippets", "api.conf"),
		filepath.Join(dir, "snippets", "inner.conf"),
	}, Files(doc))
}

func TestLoader_SingleMatchSpliced(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"nginx.conf":        "include conf.d/api.conf;",
		"conf.d/api.conf":   "location /api/ { include ../rewrites/*.conf; }",
		"rewrites/one.conf": "rewrite ^/api/(.*)$ /v1/$1 break;",
	})

	var logs bytes.Buffer
	doc, err := testLoader(&logs).Load(filepath.Join(dir, "nginx.conf"))
	require.NoError(t, err)

	require.Len(t, doc.Children, 1)
	spliced := doc.Children[0]
	assert.True(t, spliced.IsDocument())
	assert.Equal(t, filepath.Join(dir, "conf.d", "api.conf"), spliced.File)
	assert.Equal(t, []string{"location", "rewrite"}, names(doc))

	Walk(doc, func(d *Directive) bool {
		assert.False(t, d.Name == "include" && !d.IsBlock(), "unresolved include left in tree")
		return true
	})
}

func TestLoader_NoMatchesDropped(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"nginx.conf":  "first on; include sites/*.conf; last on;",
		"sites/.keep": "",
	})

	var logs bytes.Buffer
	doc, err := testLoader(&logs).Load(filepath.Join(dir, "nginx.conf"))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "last"}, names(doc))
	assert.Contains(t, logs.String(), "include matched no files")
}

func TestLoader_MissingDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"nginx.conf": "include nowhere/*.conf;",
	})

	var logs bytes.Buffer
	_, err := testLoader(&logs).Load(filepath.Join(dir, "nginx.conf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_AbsoluteIncludeRemapped(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"nginx.conf":            "include /ngxspec-missing-root/nginx/conf.d/*.conf;",
		"nginx/conf.d/app.conf": "app on;",
	})

	var logs bytes.Buffer
	doc, err := testLoader(&logs).Load(filepath.Join(dir, "nginx.conf"))
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, names(doc))
}

func TestLoader_AbsoluteIncludeUnresolvable(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"nginx.conf": "keep on; include /ngxspec-missing-root/conf.d/*.conf;",
	})

	var logs bytes.Buffer
	doc, err := testLoader(&logs).Load(filepath.Join(dir, "nginx.conf"))
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, names(doc))
	assert.Contains(t, logs.String(), "absolute include does not resolve")
}

func TestLoader_Exclude(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"nginx.conf":          "include conf.d/*.conf;",
		"conf.d/public.conf":  "public on;",
		"conf.d/private.conf": "private on;",
		"conf.d/debug.conf":   "debug on;",
	})

	loader := &Loader{
		Exclude: ExcludeLocations([]string{"conf.d/private.conf", "**/debug.*"}),
		Logger:  slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	}
	doc, err := loader.Load(filepath.Join(dir, "nginx.conf"))
	require.NoError(t, err)
	assert.Equal(t, []string{"public"}, names(doc))
}

func TestLoader_RendersTemplates(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"nginx.conf":     "include {{ conf_dir }}/*.conf;",
		"extra/svc.conf": "location {{ prefix }}/ { }",
	})

	loader := &Loader{
		Properties: map[string]string{"conf_dir": "extra", "PREFIX": "/svc"},
		Logger:     slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	}
	doc, err := loader.Load(filepath.Join(dir, "nginx.conf"))
	require.NoError(t, err)

	var loc *Directive
	Walk(doc, func(d *Directive) bool {
		if d.Name == "location" {
			loc = d
		}
		return true
	})
	require.NotNil(t, loc)
	assert.Equal(t, []string{"/svc/"}, loc.Args)
}

func TestLoader_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"nginx.conf": "include loop.conf;",
		"loop.conf":  "include nginx.conf;",
	})

	var logs bytes.Buffer
	_, err := testLoader(&logs).Load(filepath.Join(dir, "nginx.conf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncludeCycle)
}

func TestLoader_IncludeArguments(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"nginx.conf": "include a.conf b.conf;",
	})

	var logs bytes.Buffer
	_, err := testLoader(&logs).Load(filepath.Join(dir, "nginx.conf"))

	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Contains(t, synErr.Reason, "exactly one path")
}

func TestLoader_Resolve(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"snippets/one.conf": "one on;",
	})

	doc, err := Parse("inline", []byte("include snippets/one.conf;"))
	require.NoError(t, err)

	var logs bytes.Buffer
	resolved, err := testLoader(&logs).Resolve(doc, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, names(resolved))
	assert.Equal(t, "include", doc.Children[0].Name, "input tree must not be mutated")
}

func TestExcludeLocations(t *testing.T) {
	exclude := ExcludeLocations([]string{"conf.d/private.conf", "  ", "**/*.bak"})
	require.NotNil(t, exclude)

	tests := []struct {
		path     string
		excluded bool
	}{
		{"/etc/nginx/conf.d/private.conf", true},
		{"/etc/nginx/other.d/private.conf", false},
		{"/etc/nginx/myconf.d/private.conf", false},
		{"/etc/nginx/conf.d/site.conf.bak", true},
		{"/etc/nginx/conf.d/site.conf", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.excluded, exclude(tt.path))
		})
	}

	assert.Nil(t, ExcludeLocations(nil))
}
