// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package jvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinPaths(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{nil, "/"},
		{[]string{"", ""}, "/"},
		{[]string{"/api/users", ""}, "/api/users"},
		{[]string{"/api/users/", "/{id}"}, "/api/users/{id}"},
		{[]string{"api", "users//roles/"}, "/api/users/roles"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinPaths(tt.parts...), "%q", tt.parts)
	}
}

func TestCleanTemplate(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     string
		patterns map[string]string
	}{
		{
			name:     "plain",
			in:       "/users/{id}",
			want:     "/users/{id}",
			patterns: map[string]string{},
		},
		{
			name:     "constraint",
			in:       `/users/{id: \d+}/roles`,
			want:     "/users/{id}/roles",
			patterns: map[string]string{"id": `\d+`},
		},
		{
			name:     "nested braces",
			in:       "/codes/{code:[A-Z]{2,3}}/{page}",
			want:     "/codes/{code}/{page}",
			patterns: map[string]string{"code": "[A-Z]{2,3}"},
		},
		{
			name:     "unbalanced",
			in:       "/broken/{id",
			want:     "/broken/{id",
			patterns: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, patterns := CleanTemplate(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.patterns, patterns)
		})
	}
}

func TestPathParams(t *testing.T) {
	assert.Equal(t, []string{"org", "id"}, PathParams("/orgs/{org}/users/{id}"))
	assert.Nil(t, PathParams("/health"))
}
