// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngxspec/ngxspec/internal/config"
	"github.com/ngxspec/ngxspec/internal/ngxconf"
	"github.com/ngxspec/ngxspec/internal/rewrite"
	"github.com/ngxspec/ngxspec/pkg/types"
)

func TestMapperOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Nginx.Direction = "forward"
	cfg.Nginx.InversionPolicy = "fail"
	cfg.Nginx.Concurrency = 3
	cfg.Nginx.NotFoundPrecedence = true
	cfg.Nginx.AdditionalRewrites = []config.RewriteConfig{{Regex: "^/v1/(.*)$", Replace: "/$1"}}
	cfg.Nginx.Tags = []config.TagRuleConfig{
		{URLs: []string{"/internal/.*"}},
		{Name: "Users", URLs: []string{"/users.*", "/me"}},
	}

	opts := mapperOptions(cfg)

	assert.Equal(t, rewrite.DirectionForward, opts.Direction)
	assert.Equal(t, rewrite.InversionFail, opts.InversionPolicy)
	assert.Equal(t, 3, opts.Concurrency)
	assert.True(t, opts.NotFoundPrecedence)
	assert.Equal(t, []rewrite.Rule{{Regex: "^/v1/(.*)$", Replace: "/$1"}}, opts.AdditionalRewrites)
	assert.Equal(t, []rewrite.TagRule{
		{URLs: []string{"/internal/.*"}},
		{Name: "Users", URLs: []string{"/users.*", "/me"}},
	}, opts.Tags)
}

func TestApplyNginxFlags(t *testing.T) {
	tests := []struct {
		name         string
		location     string
		props        map[string]string
		existing     map[string]string
		wantEnabled  bool
		wantLocation string
		wantProps    map[string]string
	}{
		{
			name:         "nothing set",
			wantLocation: "nginx.conf",
		},
		{
			name:         "location enables nginx",
			location:     "deploy/gw.conf",
			wantEnabled:  true,
			wantLocation: "deploy/gw.conf",
		},
		{
			name:         "properties merged over config",
			props:        map[string]string{"env": "prod"},
			existing:     map[string]string{"env": "dev", "region": "eu"},
			wantLocation: "nginx.conf",
			wantProps:    map[string]string{"env": "prod", "region": "eu"},
		},
		{
			name:         "properties without config",
			props:        map[string]string{"upstream": "orders"},
			wantLocation: "nginx.conf",
			wantProps:    map[string]string{"upstream": "orders"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Nginx.Properties = tt.existing

			applyNginxFlags(cfg, tt.location, tt.props)

			assert.Equal(t, tt.wantEnabled, cfg.Nginx.Enabled)
			assert.Equal(t, tt.wantLocation, cfg.Nginx.Location)
			assert.Equal(t, tt.wantProps, cfg.Nginx.Properties)
		})
	}
}

const pipelineConf = `
location /api/ {
    rewrite ^/api/(.*)$ /$1 break;
}
location /broken/ {
    if ($request_method = DELETE) {
        rewrite ^/broken/(.*)$ /$scheme/$1 break;
    }
}
`

func pipelineMapper(t *testing.T) *rewrite.Mapper {
	t.Helper()
	doc, err := ngxconf.Parse("nginx.conf", []byte(pipelineConf))
	require.NoError(t, err)
	m, err := rewrite.NewMapper(rewrite.Compile(doc), rewrite.MapperOptions{
		Tags: []rewrite.TagRule{
			{URLs: []string{"/api/debug/.*"}},
			{Name: "Users", URLs: []string{"/api/users.*"}},
		},
	})
	require.NoError(t, err)
	return m
}

func pipelineRoutes() []types.Route {
	return []types.Route{
		{Method: "GET", Path: "/users/{id}", OperationID: "UserResource.get", Tags: []string{"UserResource"}},
		{Method: "POST", Path: "/debug/flush", OperationID: "DebugResource.flush"},
		{Method: "DELETE", Path: "/orders/{id}", OperationID: "OrderResource.delete", Tags: []string{"OrderResource"}},
		{Method: "GET", Path: "/orders", OperationID: "OrderResource.list", Tags: []string{"OrderResource"}},
	}
}

func TestMapRoutes(t *testing.T) {
	cfg := config.Default()

	got, err := mapRoutes(context.Background(), cfg, pipelineMapper(t), pipelineRoutes())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "/api/users/{id}", got[0].Path)
	assert.Equal(t, []string{"Users"}, got[0].Tags)

	// the failed operation keeps its upstream path
	assert.Equal(t, "/orders/{id}", got[1].Path)
	assert.Equal(t, []string{"OrderResource"}, got[1].Tags)

	assert.Equal(t, "/api/orders", got[2].Path)
	assert.Equal(t, []string{"OrderResource"}, got[2].Tags)
}

func TestMapRoutes_Strict(t *testing.T) {
	cfg := config.Default()
	cfg.Generation.StrictMode = true

	_, err := mapRoutes(context.Background(), cfg, pipelineMapper(t), pipelineRoutes())
	require.Error(t, err)

	var opErr *rewrite.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "OrderResource.delete", opErr.OperationID)
}

func TestMapRoutes_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mapRoutes(ctx, config.Default(), pipelineMapper(t), pipelineRoutes())
	assert.ErrorIs(t, err, context.Canceled)
}
