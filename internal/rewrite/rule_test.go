// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngxspec/ngxspec/internal/ngxconf"
)

func TestRule_Apply(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		subject string
		want    string
		matched bool
	}{
		{
			name:    "group reference",
			rule:    Rule{Regex: `^/api/(.*)$`, Replace: "/internal/$1"},
			subject: "/api/users",
			want:    "/internal/users",
			matched: true,
		},
		{
			name:    "braced reference followed by digit",
			rule:    Rule{Regex: `^/v(\d)/(.*)$`, Replace: "/${1}0/$2"},
			subject: "/v2/items",
			want:    "/20/items",
			matched: true,
		},
		{
			name:    "unanchored match replaces whole subject",
			rule:    Rule{Regex: `users/(\d+)`, Replace: "/people/$1"},
			subject: "/api/users/42/details",
			want:    "/people/42",
			matched: true,
		},
		{
			name:    "escaped dollar",
			rule:    Rule{Regex: `^/price$`, Replace: "/cost$$"},
			subject: "/price",
			want:    "/cost$",
			matched: true,
		},
		{
			name:    "unmatched optional group expands empty",
			rule:    Rule{Regex: `^/a(/b)?$`, Replace: "/x$1"},
			subject: "/a",
			want:    "/x",
			matched: true,
		},
		{
			name:    "no match",
			rule:    Rule{Regex: `^/api/(.*)$`, Replace: "/internal/$1"},
			subject: "/other",
			matched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := compileRule(tt.rule)
			require.NoError(t, err)

			got, ok := r.apply(tt.subject)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileRule_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr string
	}{
		{
			name:    "invalid regex",
			rule:    Rule{Regex: `^/(`, Replace: "/x"},
			wantErr: "invalid rewrite regex",
		},
		{
			name:    "nginx variable",
			rule:    Rule{Regex: `^/(.*)$`, Replace: "/$host/$1"},
			wantErr: "unsupported variable $host",
		},
		{
			name:    "group out of range",
			rule:    Rule{Regex: `^/(.*)$`, Replace: "/$2"},
			wantErr: "references group 2",
		},
		{
			name:    "unterminated brace",
			rule:    Rule{Regex: `^/(.*)$`, Replace: "/${1"},
			wantErr: "unterminated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileRule(tt.rule)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRuleFromDirective(t *testing.T) {
	r, err := ruleFromDirective(&ngxconf.Directive{Name: "rewrite", Args: []string{"^/a$", "/b", "last"}})
	require.NoError(t, err)
	assert.Equal(t, Rule{Regex: "^/a$", Replace: "/b", Flag: FlagLast}, r)
	assert.Equal(t, "rewrite ^/a$ /b last", r.String())

	_, err = ruleFromDirective(&ngxconf.Directive{Name: "rewrite", Args: []string{"^/a$", "/b", "permanent"}, File: "x.conf", Line: 3})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 3, cfgErr.Line)
	assert.Contains(t, cfgErr.Error(), "x.conf:3: unsupported rewrite flag")

	_, err = ruleFromDirective(&ngxconf.Directive{Name: "rewrite", Args: []string{"^/a$"}})
	assert.Error(t, err)
}
