// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package openapi

import (
	"maps"
	"slices"

	"github.com/ngxspec/ngxspec/pkg/types"
)

// MergeOptions configures the merge behavior.
type MergeOptions struct {
	// PreservePaths keeps operations that only exist in the existing document.
	PreservePaths bool

	// PreserveSchemas keeps schemas that only exist in the existing document.
	PreserveSchemas bool

	// PreserveInfo preserves info from the existing document.
	PreserveInfo bool

	// PreserveServers preserves servers from the existing document.
	PreserveServers bool

	// PreserveTags keeps the existing tags, with their descriptions, ahead
	// of newly generated ones.
	PreserveTags bool

	// PreserveSecurity preserves security from the existing document.
	PreserveSecurity bool

	// PreserveDescriptions copies hand written summaries and descriptions
	// onto generated operations at the same path and method.
	PreserveDescriptions bool
}

// DefaultMergeOptions returns the default merge options.
func DefaultMergeOptions() MergeOptions {
	return MergeOptions{
		PreserveInfo:         true,
		PreserveServers:      true,
		PreserveTags:         true,
		PreserveSecurity:     true,
		PreserveDescriptions: true,
	}
}

// Merger handles merging OpenAPI documents.
type Merger struct {
	options MergeOptions
}

// NewMerger creates a new Merger with the given options.
func NewMerger(options MergeOptions) *Merger {
	return &Merger{
		options: options,
	}
}

// Merge combines an existing OpenAPI document with a generated one. The
// generated document is not modified.
func (m *Merger) Merge(existing, generated *types.OpenAPI) (*types.OpenAPI, error) {
	if existing == nil {
		return generated, nil
	}

	result := *generated

	if m.options.PreserveInfo && existing.Info.Title != "" {
		result.Info = existing.Info
	}

	if m.options.PreserveServers && len(existing.Servers) > 0 {
		result.Servers = existing.Servers
	}

	if m.options.PreserveTags && len(existing.Tags) > 0 {
		result.Tags = mergeTags(existing.Tags, generated.Tags)
	}

	if m.options.PreserveSecurity && len(existing.Security) > 0 {
		result.Security = existing.Security
	}

	result.Paths = m.mergePaths(existing.Paths, generated.Paths)

	if m.options.PreserveSchemas && existing.Components != nil && len(existing.Components.Schemas) > 0 {
		components := types.Components{}
		if generated.Components != nil {
			components = *generated.Components
		}
		schemas := maps.Clone(existing.Components.Schemas)
		maps.Copy(schemas, components.Schemas)
		components.Schemas = schemas
		result.Components = &components
	}

	return &result, nil
}

func mergeTags(existing, generated []types.Tag) []types.Tag {
	tags := slices.Clone(existing)
	for _, t := range generated {
		i := slices.IndexFunc(tags, func(e types.Tag) bool { return e.Name == t.Name })
		switch {
		case i < 0:
			tags = append(tags, t)
		case tags[i].Description == "":
			tags[i].Description = t.Description
		}
	}
	return tags
}

func (m *Merger) mergePaths(existing, generated map[string]types.PathItem) map[string]types.PathItem {
	if !m.options.PreservePaths && !m.options.PreserveDescriptions {
		return generated
	}

	out := make(map[string]types.PathItem, len(generated))
	for path, item := range generated {
		prev := existing[path]
		for _, method := range item.Methods() {
			op := *item.Operation(method)
			if old := prev.Operation(method); old != nil && m.options.PreserveDescriptions {
				if op.Summary == "" {
					op.Summary = old.Summary
				}
				if op.Description == "" {
					op.Description = old.Description
				}
			}
			_ = item.SetOperation(method, &op)
		}
		out[path] = item
	}

	if m.options.PreservePaths {
		for path, item := range existing {
			merged := out[path]
			for _, method := range item.Methods() {
				if merged.Operation(method) == nil {
					_ = merged.SetOperation(method, item.Operation(method))
				}
			}
			if len(merged.Methods()) > 0 {
				out[path] = merged
			}
		}
	}

	if len(out) == 0 {
		return generated
	}
	return out
}
