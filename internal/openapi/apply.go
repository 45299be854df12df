// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package openapi

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ngxspec/ngxspec/internal/logging"
	"github.com/ngxspec/ngxspec/internal/rewrite"
	"github.com/ngxspec/ngxspec/pkg/types"
)

// ApplyResult summarizes what Apply changed.
type ApplyResult struct {
	Operations int
	Moved      int
	Excluded   int
	Failed     int
}

// Apply maps the operation paths of an OpenAPI document read with
// ReadNode. Operations are moved to their mapped path, tagged or dropped
// according to the mapper's tag rules. Everything else in the document is
// left untouched.
//
// Operations whose mapping fails keep their path; the joined errors are
// returned together with the updated document.
func Apply(ctx context.Context, doc *yaml.Node, m *rewrite.Mapper) (ApplyResult, error) {
	log := logging.Logger("openapi")

	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return ApplyResult{}, fmt.Errorf("not an OpenAPI document")
	}
	paths := mappingValue(root, "paths")
	if paths == nil || paths.Kind != yaml.MappingNode {
		return ApplyResult{}, nil
	}

	type located struct {
		path   string
		method string
		item   *yaml.Node
		op     *yaml.Node
	}
	var found []located
	var ops []rewrite.Operation
	for i := 0; i+1 < len(paths.Content); i += 2 {
		path, item := paths.Content[i].Value, paths.Content[i+1]
		if item.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(item.Content); j += 2 {
			method := strings.ToUpper(item.Content[j].Value)
			if !slices.Contains(types.Methods, method) {
				continue
			}
			op := item.Content[j+1]
			found = append(found, located{path: path, method: method, item: item, op: op})
			ops = append(ops, rewrite.Operation{
				Method:      method,
				Path:        path,
				OperationID: scalarValue(op, "operationId"),
			})
		}
	}

	mappings, mapErr := m.MapAll(ctx, ops)
	res := ApplyResult{Operations: len(ops)}

	// rebuild the paths mapping, keeping first-seen order of the new paths
	var order []string
	items := make(map[string]*yaml.Node)
	var newTags []string
	for i, f := range found {
		mp := mappings[i]
		if mp.Excluded {
			res.Excluded++
			continue
		}
		if mp.Path != f.path {
			res.Moved++
		}
		if mp.Tag != "" {
			setTags(f.op, mp.Tag)
			newTags = append(newTags, mp.Tag)
		}

		item, ok := items[mp.Path]
		if !ok {
			item = pathItemShell(f.item)
			items[mp.Path] = item
			order = append(order, mp.Path)
		}
		if setMappingValue(item, strings.ToLower(f.method), f.op) {
			log.Warn("two operations map to the same path, keeping the last one",
				slog.String("method", f.method), slog.String("path", mp.Path))
		}
	}

	// path items without operations (only $ref or parameters) stay as they are
	for i := 0; i+1 < len(paths.Content); i += 2 {
		path, item := paths.Content[i].Value, paths.Content[i+1]
		if _, ok := items[path]; !ok && !hasOperations(item) {
			items[path] = item
			order = append(order, path)
		}
	}

	content := make([]*yaml.Node, 0, 2*len(order))
	for _, path := range order {
		content = append(content, scalar(path), items[path])
	}
	paths.Content = content

	addDocumentTags(root, newTags)

	if mapErr != nil {
		res.Failed = countErrors(mapErr)
	}
	return res, mapErr
}

func countErrors(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}

func hasOperations(item *yaml.Node) bool {
	if item.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(item.Content); i += 2 {
		if slices.Contains(types.Methods, strings.ToUpper(item.Content[i].Value)) {
			return true
		}
	}
	return false
}

// pathItemShell copies the non-operation fields of a path item.
func pathItemShell(item *yaml.Node) *yaml.Node {
	shell := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: item.Style}
	for i := 0; i+1 < len(item.Content); i += 2 {
		if !slices.Contains(types.Methods, strings.ToUpper(item.Content[i].Value)) {
			shell.Content = append(shell.Content, item.Content[i], item.Content[i+1])
		}
	}
	return shell
}

func setTags(op *yaml.Node, tag string) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{scalar(tag)}}
	setMappingValue(op, "tags", seq)
}

// addDocumentTags appends the names missing from the document's tags list.
func addDocumentTags(root *yaml.Node, names []string) {
	if len(names) == 0 {
		return
	}
	tags := mappingValue(root, "tags")
	if tags == nil {
		tags = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		setMappingValue(root, "tags", tags)
	}
	if tags.Kind != yaml.SequenceNode {
		return
	}

	existing := make(map[string]bool)
	for _, t := range tags.Content {
		existing[scalarValue(t, "name")] = true
	}
	for _, name := range names {
		if existing[name] {
			continue
		}
		existing[name] = true
		tags.Content = append(tags.Content, &yaml.Node{
			Kind:    yaml.MappingNode,
			Tag:     "!!map",
			Content: []*yaml.Node{scalar("name"), scalar(name)},
		})
	}
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func scalarValue(m *yaml.Node, key string) string {
	if v := mappingValue(m, key); v != nil && v.Kind == yaml.ScalarNode {
		return v.Value
	}
	return ""
}

// setMappingValue sets key to v and reports whether key already existed.
func setMappingValue(m *yaml.Node, key string, v *yaml.Node) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = v
			return true
		}
	}
	m.Content = append(m.Content, scalar(key), v)
	return false
}
