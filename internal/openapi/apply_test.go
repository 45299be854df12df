// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package openapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ngxspec/ngxspec/internal/ngxconf"
	"github.com/ngxspec/ngxspec/internal/rewrite"
	"github.com/ngxspec/ngxspec/pkg/types"
)

const gatewayConf = `
server {
    location /api/ {
        rewrite ^/api/(.*)$ /internal/$1 break;
    }
}
`

const upstreamSpec = `openapi: 3.0.3
info:
  title: Widgets
  version: 1.0.0
x-upstream: widgets-service
tags:
  - name: Widgets
    description: Widget operations
paths:
  /internal/widgets:
    get:
      operationId: listWidgets
      tags: [Old]
      responses:
        "200":
          description: OK
  /internal/widgets/{id}:
    parameters:
      - name: id
        in: path
        required: true
        schema:
          type: string
    get:
      operationId: getWidget
      responses:
        "200":
          description: OK
    delete:
      operationId: deleteWidget
      responses:
        "204":
          description: Deleted
  /internal/debug/heap:
    get:
      operationId: heapDump
      responses:
        "200":
          description: OK
  /health:
    get:
      operationId: health
      responses:
        "200":
          description: OK
  /shared:
    $ref: "#/components/pathItems/Shared"
`

func newMapper(t *testing.T, tags []rewrite.TagRule) *rewrite.Mapper {
	t.Helper()
	root, err := ngxconf.Parse("nginx.conf", []byte(gatewayConf))
	require.NoError(t, err)
	m, err := rewrite.NewMapper(rewrite.Compile(root), rewrite.MapperOptions{Tags: tags})
	require.NoError(t, err)
	return m
}

func parseNode(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &node))
	return &node
}

func decode(t *testing.T, node *yaml.Node) *types.OpenAPI {
	t.Helper()
	var doc types.OpenAPI
	require.NoError(t, node.Decode(&doc))
	return &doc
}

func TestApply(t *testing.T) {
	node := parseNode(t, upstreamSpec)
	m := newMapper(t, []rewrite.TagRule{
		{URLs: []string{"/api/debug/.*"}},
		{Name: "Gateway", URLs: []string{"/api/widgets"}},
	})

	res, err := Apply(context.Background(), node, m)
	require.NoError(t, err)
	assert.Equal(t, ApplyResult{Operations: 5, Moved: 3, Excluded: 1}, res)

	doc := decode(t, node)
	assert.Equal(t, []string{"/api/widgets", "/api/widgets/{id}", "/health", "/shared"}, SortedPaths(doc.Paths))

	list := doc.Paths["/api/widgets"].Get
	require.NotNil(t, list)
	assert.Equal(t, []string{"Gateway"}, list.Tags)

	byID := doc.Paths["/api/widgets/{id}"]
	assert.Equal(t, []string{"GET", "DELETE"}, byID.Methods())
	require.Len(t, byID.Parameters, 1, "path level parameters move with the operations")
	assert.Equal(t, "deleteWidget", byID.Delete.OperationID)

	assert.Equal(t, []types.Tag{
		{Name: "Widgets", Description: "Widget operations"},
		{Name: "Gateway"},
	}, doc.Tags)

	out, err := NewWriter().ToYAML(node)
	require.NoError(t, err)
	assert.Contains(t, out, "x-upstream: widgets-service")
	assert.Contains(t, out, "#/components/pathItems/Shared")
}

func TestApply_KeepsPathOrder(t *testing.T) {
	node := parseNode(t, upstreamSpec)
	_, err := Apply(context.Background(), node, newMapper(t, nil))
	require.NoError(t, err)

	paths := mappingValue(node.Content[0], "paths")
	var keys []string
	for i := 0; i < len(paths.Content); i += 2 {
		keys = append(keys, paths.Content[i].Value)
	}
	assert.Equal(t, []string{"/api/widgets", "/api/widgets/{id}", "/api/debug/heap", "/health", "/shared"}, keys)
}

func TestApply_NoPaths(t *testing.T) {
	node := parseNode(t, "openapi: 3.0.3\ninfo: {title: x, version: '1'}\n")
	res, err := Apply(context.Background(), node, newMapper(t, nil))
	require.NoError(t, err)
	assert.Zero(t, res)
}

func TestApply_NotADocument(t *testing.T) {
	_, err := Apply(context.Background(), parseNode(t, "- a\n"), newMapper(t, nil))
	assert.Error(t, err)
}
