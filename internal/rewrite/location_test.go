// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngxspec/ngxspec/internal/ngxconf"
)

func locationDirective(args ...string) *ngxconf.Directive {
	return &ngxconf.Directive{Name: "location", Args: args, Block: true, File: "nginx.conf", Line: 1}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		typ      MatchType
		url      string
		match    []string
		mismatch []string
	}{
		{
			name:     "prefix",
			args:     []string{"/api/"},
			typ:      MatchPrefix,
			url:      "/api/",
			match:    []string{"/api/", "/api/users"},
			mismatch: []string{"/api", "/v1/api/"},
		},
		{
			name:     "no regex",
			args:     []string{"^~", "/static/"},
			typ:      MatchNoRegex,
			url:      "/static/",
			match:    []string{"/static/app.js"},
			mismatch: []string{"/img/static/"},
		},
		{
			name:     "strict",
			args:     []string{"=", "/health"},
			typ:      MatchStrict,
			url:      "/health",
			match:    []string{"/health"},
			mismatch: []string{"/health/", "/healthz"},
		},
		{
			name:     "strict glued",
			args:     []string{"=/health"},
			typ:      MatchStrict,
			url:      "/health",
			match:    []string{"/health"},
			mismatch: []string{"/health/live"},
		},
		{
			name:     "regex without caret matches from the start",
			args:     []string{"~", `/api/`},
			typ:      MatchRegex,
			url:      `/api/`,
			match:    []string{"/api/", "/api/x"},
			mismatch: []string{"/v2/api/x", "/apix"},
		},
		{
			name:     "regex suffix only",
			args:     []string{"~", `\.php`},
			typ:      MatchRegex,
			url:      `\.php`,
			mismatch: []string{"/index.php", "/a.php/b"},
		},
		{
			name:     "regex with wildcard head",
			args:     []string{"~", `.*\.php`},
			typ:      MatchRegex,
			url:      `.*\.php`,
			match:    []string{"/index.php", "/a.php/b"},
			mismatch: []string{"/index.html"},
		},
		{
			name:     "regex anchored",
			args:     []string{"~", `^/users/[0-9]+$`},
			typ:      MatchRegex,
			url:      `^/users/[0-9]+$`,
			match:    []string{"/users/42"},
			mismatch: []string{"/users/42/x", "/v1/users/42"},
		},
		{
			name:     "regex with alternation",
			args:     []string{"~", `^/(a|b)$`},
			typ:      MatchRegex,
			url:      `^/(a|b)$`,
			match:    []string{"/a", "/b"},
			mismatch: []string{"/ab", "/c"},
		},
		{
			name:     "case insensitive glued",
			args:     []string{`~*/IMG/.+\.JPG$`},
			typ:      MatchIRegex,
			url:      `/IMG/.+\.JPG$`,
			match:    []string{"/img/photo.jpg", "/Img/photo.JPG"},
			mismatch: []string{"/img/photo.jpg.txt", "/a/img/photo.jpg"},
		},
		{
			name:     "escaped trailing dollar is literal",
			args:     []string{"~", `^/price\$`},
			typ:      MatchRegex,
			url:      `^/price\$`,
			match:    []string{"/price$", "/price$/x"},
			mismatch: []string{"/price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := parseLocation(locationDirective(tt.args...), nil, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, loc.typ)
			assert.Equal(t, tt.url, loc.url)
			for _, p := range tt.match {
				assert.True(t, loc.matches(p), "expected %s to match %s", loc, p)
			}
			for _, p := range tt.mismatch {
				assert.False(t, loc.matches(p), "expected %s not to match %s", loc, p)
			}
		})
	}
}

func TestParseLocation_Named(t *testing.T) {
	loc, err := parseLocation(locationDirective("@fallback"), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, MatchNamed, loc.typ)
	assert.False(t, loc.matches("/fallback"))
}

func TestParseLocation_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments"},
		{name: "modifier only", args: []string{"="}},
		{name: "unknown modifier", args: []string{"!", "/x"}},
		{name: "too many arguments", args: []string{"=", "/x", "/y"}},
		{name: "bad regex", args: []string{"~", "^/(x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseLocation(locationDirective(tt.args...), nil, 1)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "nginx.conf", cfgErr.File)
		})
	}
}

func TestLocation_Literal(t *testing.T) {
	tests := []struct {
		args []string
		want string
		ok   bool
	}{
		{args: []string{"/old/"}, want: "/old/", ok: true},
		{args: []string{"=", "/health"}, want: "/health", ok: true},
		{args: []string{"~", `^/data\.json$`}, want: "/data.json", ok: true},
		{args: []string{"~", `^/files/.+$`}, ok: false},
		{args: []string{"~", `^/(a|b)$`}, ok: false},
	}

	for _, tt := range tests {
		loc, err := parseLocation(locationDirective(tt.args...), nil, 1)
		require.NoError(t, err)
		got, ok := loc.literal()
		assert.Equal(t, tt.ok, ok, "%v", tt.args)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestWinner(t *testing.T) {
	api := &location{typ: MatchPrefix, url: "/api/", order: 1}
	apiAdmin := &location{typ: MatchPrefix, url: "/api/admin/", order: 2}
	static := &location{typ: MatchNoRegex, url: "/api/static/", order: 3}
	regexA := &location{typ: MatchRegex, url: `\.json$`, order: 4}
	regexB := &location{typ: MatchIRegex, url: `\.JSON$`, order: 5}
	exact := &location{typ: MatchStrict, url: "/api/", order: 6}

	tests := []struct {
		name string
		locs []*location
		want *location
	}{
		{name: "longest prefix", locs: []*location{api, apiAdmin}, want: apiAdmin},
		{name: "regex beats prefix", locs: []*location{apiAdmin, regexA}, want: regexA},
		{name: "first regex", locs: []*location{regexB, regexA}, want: regexA},
		{name: "no regex prefix beats regex", locs: []*location{static, regexA}, want: static},
		{name: "shorter no regex prefix loses", locs: []*location{static, &location{typ: MatchPrefix, url: "/api/static/x/", order: 7}, regexA}, want: regexA},
		{name: "exact beats everything", locs: []*location{static, regexA, exact}, want: exact},
		{name: "nil ignored", locs: []*location{nil, api}, want: api},
		{name: "empty", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, winner(tt.locs...))
		})
	}
}
