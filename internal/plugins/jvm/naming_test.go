// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package jvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTag(t *testing.T) {
	tests := map[string]string{
		"UserController":      "User",
		"UserRestController":  "User",
		"UserAccountResource": "User Account",
		"HTTPStatusEndpoint":  "HTTP Status",
		"Api":                 "Api",
		"orders":              "Orders",
	}

	for in, want := range tests {
		assert.Equal(t, want, DefaultTag(in), in)
	}
}

func TestPropertyName(t *testing.T) {
	tests := []struct {
		method string
		want   string
		ok     bool
	}{
		{"getId", "id", true},
		{"getUserId", "userId", true},
		{"isActive", "active", true},
		{"getURL", "URL", true},
		{"get", "", false},
		{"getaway", "", false},
		{"toString", "", false},
	}

	for _, tt := range tests {
		got, ok := PropertyName(tt.method)
		assert.Equal(t, tt.ok, ok, tt.method)
		assert.Equal(t, tt.want, got, tt.method)
	}
}
