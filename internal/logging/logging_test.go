// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		want    slog.Level
	}{
		{"default", false, false, slog.LevelWarn},
		{"verbose", true, false, slog.LevelDebug},
		{"quiet", false, true, slog.LevelError},
		{"quiet wins", true, true, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Level(tt.verbose, tt.quiet))
		})
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Warn("include matched nothing", slog.String("pattern", "conf.d/*.conf"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "include matched nothing")
	assert.Contains(t, out, "pattern=conf.d/*.conf")
}

func TestOrDefault(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo)

	assert.Same(t, log, OrDefault(log, "x"))
	assert.NotNil(t, OrDefault(nil, "x"))
}
