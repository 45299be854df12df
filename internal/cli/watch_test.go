// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngxspec/ngxspec/internal/config"
)

func TestRelevantChange(t *testing.T) {
	dir := t.TempDir()
	relevant := relevantChange([]string{filepath.Join(dir, "deploy"), filepath.Join(dir, "deploy", "conf.d")})

	tests := []struct {
		name string
		file string
		want bool
	}{
		{name: "java source", file: filepath.Join(dir, "src", "Order.java"), want: true},
		{name: "nginx config", file: filepath.Join(dir, "deploy", "nginx.conf"), want: true},
		{name: "sibling nginx file", file: filepath.Join(dir, "deploy", "upstreams.conf"), want: true},
		{name: "included nginx file", file: filepath.Join(dir, "deploy", "conf.d", "orders.conf"), want: true},
		{name: "readme", file: filepath.Join(dir, "README.md"), want: false},
		{name: "spec output", file: filepath.Join(dir, "openapi.yaml"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.file))
		})
	}

	assert.False(t, relevantChange(nil)(filepath.Join(dir, "deploy", "nginx.conf")))
}

func TestNginxDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "deploy", "nginx.conf"),
		"include conf.d/*.conf;\ninclude ../shared/proxy.conf;\n"+gatewayNginx)
	writeFile(t, filepath.Join(dir, "deploy", "conf.d", "orders.conf"), "proxy_buffering off;\n")
	writeFile(t, filepath.Join(dir, "shared", "proxy.conf"), "proxy_http_version 1.1;\n")

	cfg := config.Default()
	cfg.Nginx.Enabled = true
	cfg.Nginx.Location = filepath.Join(dir, "deploy", "nginx.conf")

	dirs, err := nginxDirs(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "deploy"),
		filepath.Join(dir, "deploy", "conf.d"),
		filepath.Join(dir, "shared"),
	}, dirs)

	// an unreadable config still watches its directory
	cfg.Nginx.Location = filepath.Join(dir, "missing", "nginx.conf")
	dirs, err = nginxDirs(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "missing")}, dirs)

	cfg.Nginx.Enabled = false
	dirs, err = nginxDirs(cfg)
	require.NoError(t, err)
	assert.Empty(t, dirs)
}

func TestWatchDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "main", "java"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "target", "classes"), 0o755))

	cfg := config.Default()
	confDirs := []string{filepath.Join(dir, "deploy"), filepath.Join(dir, "src", "main", "java")}

	dirs, err := watchDirs(cfg, []string{filepath.Join(dir, "src")}, confDirs)
	require.NoError(t, err)

	assert.Contains(t, dirs, filepath.Join(dir, "src", "main", "java"))
	assert.Contains(t, dirs, filepath.Join(dir, "deploy"))
	assert.NotContains(t, dirs, filepath.Join(dir, "target", "classes"))

	seen := map[string]int{}
	for _, d := range dirs {
		seen[d]++
	}
	assert.Equal(t, 1, seen[filepath.Join(dir, "src", "main", "java")])
}

func TestWatchLoop(t *testing.T) {
	dir := t.TempDir()
	w, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(dir))

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		watchLoop(ctx, w, 50*time.Millisecond, func(name string) bool {
			return filepath.Ext(name) == ".java"
		}, func() { runs.Add(1) })
	}()

	// a burst of writes triggers a single run
	for i := range 3 {
		writeFile(t, filepath.Join(dir, "A.java"), "class A { int x = "+string(rune('0'+i))+"; }")
	}
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	// files in new directories are picked up
	sub := filepath.Join(dir, "orders")
	require.NoError(t, os.Mkdir(sub, 0o755))
	assert.Eventually(t, func() bool {
		return os.WriteFile(filepath.Join(sub, "B.java"), []byte("class B {}"), 0o644) == nil && runs.Load() == 2
	}, 2*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch loop did not stop")
	}
}
