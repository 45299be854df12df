// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package openapi

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ngxspec/ngxspec/pkg/types"
)

// DiffType represents the type of change detected.
type DiffType string

const (
	// DiffTypeAdded indicates a new item was added.
	DiffTypeAdded DiffType = "added"

	// DiffTypeRemoved indicates an item was removed.
	DiffTypeRemoved DiffType = "removed"

	// DiffTypeModified indicates an item was modified.
	DiffTypeModified DiffType = "modified"

	// DiffTypeMoved indicates an operation kept its operation id but now
	// lives under another path, typically after a gateway rewrite changed.
	DiffTypeMoved DiffType = "moved"
)

// PathChange represents a change to an operation.
type PathChange struct {
	Type   DiffType
	Path   string
	Method string

	// From is the previous path of a moved operation
	From string

	OperationID string
	Description string
}

// SchemaChange represents a change to a schema.
type SchemaChange struct {
	Type        DiffType
	Name        string
	Description string
}

// DiffResult contains the differences between two OpenAPI documents.
type DiffResult struct {
	// PathChanges is sorted by path, then method
	PathChanges []PathChange

	// SchemaChanges is sorted by name
	SchemaChanges []SchemaChange

	// HasBreakingChanges is set when an operation or schema was removed
	// or an operation moved
	HasBreakingChanges bool

	Summary string
}

// IsEmpty returns true if there are no differences.
func (d *DiffResult) IsEmpty() bool {
	return len(d.PathChanges) == 0 && len(d.SchemaChanges) == 0
}

// Differ compares two OpenAPI documents.
type Differ struct{}

// NewDiffer creates a new Differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// Diff compares two OpenAPI documents and returns the differences. Either
// document may be nil.
func (d *Differ) Diff(a, b *types.OpenAPI) (*DiffResult, error) {
	result := &DiffResult{
		PathChanges:   []PathChange{},
		SchemaChanges: []SchemaChange{},
	}

	d.diffPaths(a, b, result)
	d.diffSchemas(a, b, result)

	result.HasBreakingChanges = d.detectBreakingChanges(result)
	result.Summary = d.generateSummary(result)

	return result, nil
}

func paths(doc *types.OpenAPI) map[string]types.PathItem {
	if doc == nil || doc.Paths == nil {
		return map[string]types.PathItem{}
	}
	return doc.Paths
}

// diffPaths compares operations by path and method, then pairs removed and
// added operations sharing an operation id into moves.
func (d *Differ) diffPaths(a, b *types.OpenAPI, result *DiffResult) {
	aPaths, bPaths := paths(a), paths(b)

	var changes []PathChange
	for _, path := range sortedUnion(aPaths, bPaths) {
		aItem, bItem := aPaths[path], bPaths[path]
		for _, method := range types.Methods {
			aOp, bOp := aItem.Operation(method), bItem.Operation(method)
			switch {
			case aOp == nil && bOp != nil:
				changes = append(changes, PathChange{Type: DiffTypeAdded, Path: path, Method: method, OperationID: bOp.OperationID})
			case aOp != nil && bOp == nil:
				changes = append(changes, PathChange{Type: DiffTypeRemoved, Path: path, Method: method, OperationID: aOp.OperationID})
			case aOp != nil && d.operationModified(aOp, bOp):
				changes = append(changes, PathChange{Type: DiffTypeModified, Path: path, Method: method, OperationID: bOp.OperationID})
			}
		}
	}

	changes = pairMoves(changes)
	for i := range changes {
		changes[i].Description = describe(changes[i])
	}
	slices.SortStableFunc(changes, func(x, y PathChange) int {
		return cmp.Or(cmp.Compare(x.Path, y.Path), cmp.Compare(x.Method, y.Method))
	})
	result.PathChanges = append(result.PathChanges, changes...)
}

func pairMoves(changes []PathChange) []PathChange {
	type key struct{ method, id string }
	removed := make(map[key]int)
	for i, c := range changes {
		if c.Type == DiffTypeRemoved && c.OperationID != "" {
			removed[key{c.Method, c.OperationID}] = i
		}
	}

	drop := make(map[int]bool)
	for i, c := range changes {
		if c.Type != DiffTypeAdded || c.OperationID == "" {
			continue
		}
		k := key{c.Method, c.OperationID}
		if j, ok := removed[k]; ok {
			changes[i].Type = DiffTypeMoved
			changes[i].From = changes[j].Path
			drop[j] = true
			delete(removed, k)
		}
	}

	out := changes[:0]
	for i, c := range changes {
		if !drop[i] {
			out = append(out, c)
		}
	}
	return out
}

func describe(c PathChange) string {
	switch c.Type {
	case DiffTypeAdded:
		return fmt.Sprintf("Added %s %s", c.Method, c.Path)
	case DiffTypeRemoved:
		return fmt.Sprintf("Removed %s %s", c.Method, c.Path)
	case DiffTypeMoved:
		return fmt.Sprintf("Moved %s %s to %s", c.Method, c.From, c.Path)
	default:
		return fmt.Sprintf("Modified %s %s", c.Method, c.Path)
	}
}

func sortedUnion[V any](a, b map[string]V) []string {
	keys := slices.Collect(maps.Keys(a))
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// operationModified checks if an operation was modified.
func (d *Differ) operationModified(a, b *types.Operation) bool {
	if a.Summary != b.Summary ||
		a.Description != b.Description ||
		a.OperationID != b.OperationID ||
		a.Deprecated != b.Deprecated {
		return true
	}

	if !slices.Equal(a.Tags, b.Tags) {
		return true
	}

	if !slices.Equal(parameterKeys(a.Parameters), parameterKeys(b.Parameters)) {
		return true
	}

	if (a.RequestBody == nil) != (b.RequestBody == nil) {
		return true
	}

	return !slices.Equal(slices.Sorted(maps.Keys(a.Responses)), slices.Sorted(maps.Keys(b.Responses)))
}

func parameterKeys(params []types.Parameter) []string {
	keys := make([]string, len(params))
	for i, p := range params {
		keys[i] = p.In + ":" + p.Name
	}
	slices.Sort(keys)
	return keys
}

// diffSchemas compares the schemas between two documents.
func (d *Differ) diffSchemas(a, b *types.OpenAPI, result *DiffResult) {
	aSchemas := make(map[string]*types.Schema)
	bSchemas := make(map[string]*types.Schema)

	if a != nil && a.Components != nil && a.Components.Schemas != nil {
		aSchemas = a.Components.Schemas
	}
	if b != nil && b.Components != nil && b.Components.Schemas != nil {
		bSchemas = b.Components.Schemas
	}

	for _, name := range sortedUnion(aSchemas, bSchemas) {
		aSchema, inA := aSchemas[name]
		bSchema, inB := bSchemas[name]
		switch {
		case !inB:
			result.SchemaChanges = append(result.SchemaChanges, SchemaChange{
				Type:        DiffTypeRemoved,
				Name:        name,
				Description: fmt.Sprintf("Removed schema: %s", name),
			})
		case !inA:
			result.SchemaChanges = append(result.SchemaChanges, SchemaChange{
				Type:        DiffTypeAdded,
				Name:        name,
				Description: fmt.Sprintf("Added schema: %s", name),
			})
		case d.schemaModified(aSchema, bSchema):
			result.SchemaChanges = append(result.SchemaChanges, SchemaChange{
				Type:        DiffTypeModified,
				Name:        name,
				Description: fmt.Sprintf("Modified schema: %s", name),
			})
		}
	}
}

// schemaModified checks if a schema was modified.
func (d *Differ) schemaModified(a, b *types.Schema) bool {
	if a == nil || b == nil {
		return a != b
	}

	if a.Ref != b.Ref ||
		a.Type != b.Type ||
		a.Format != b.Format ||
		a.Title != b.Title ||
		a.Description != b.Description ||
		a.Nullable != b.Nullable ||
		a.Deprecated != b.Deprecated {
		return true
	}

	if !slices.Equal(slices.Sorted(maps.Keys(a.Properties)), slices.Sorted(maps.Keys(b.Properties))) {
		return true
	}
	for name, p := range a.Properties {
		if d.schemaModified(p, b.Properties[name]) {
			return true
		}
	}

	if d.schemaModified(a.Items, b.Items) {
		return true
	}

	return !slices.Equal(slices.Sorted(slices.Values(a.Required)), slices.Sorted(slices.Values(b.Required)))
}

// detectBreakingChanges checks if any changes are breaking.
func (d *Differ) detectBreakingChanges(result *DiffResult) bool {
	for _, change := range result.PathChanges {
		if change.Type == DiffTypeRemoved || change.Type == DiffTypeMoved {
			return true
		}
	}

	for _, change := range result.SchemaChanges {
		if change.Type == DiffTypeRemoved {
			return true
		}
	}

	return false
}

// generateSummary creates a human-readable summary of changes.
func (d *Differ) generateSummary(result *DiffResult) string {
	if result.IsEmpty() {
		return "No changes detected"
	}

	operations := make(map[DiffType]int)
	for _, c := range result.PathChanges {
		operations[c.Type]++
	}
	schemas := make(map[DiffType]int)
	for _, c := range result.SchemaChanges {
		schemas[c.Type]++
	}

	var parts []string
	for _, t := range []DiffType{DiffTypeAdded, DiffTypeRemoved, DiffTypeMoved, DiffTypeModified} {
		if n := operations[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d operation(s) %s", n, t))
		}
	}
	for _, t := range []DiffType{DiffTypeAdded, DiffTypeRemoved, DiffTypeModified} {
		if n := schemas[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d schema(s) %s", n, t))
		}
	}

	summary := strings.Join(parts, ", ")
	if result.HasBreakingChanges {
		summary += " [BREAKING CHANGES DETECTED]"
	}
	return summary
}

var diffSymbols = map[DiffType]string{
	DiffTypeAdded:    "+ ",
	DiffTypeRemoved:  "- ",
	DiffTypeModified: "~ ",
	DiffTypeMoved:    "> ",
}

// FormatDiff returns a formatted string representation of the diff.
func FormatDiff(result *DiffResult) string {
	if result.IsEmpty() {
		return "No differences found."
	}

	var sb strings.Builder

	sb.WriteString("=== OpenAPI Diff ===\n\n")
	sb.WriteString(result.Summary)
	sb.WriteString("\n\n")

	if len(result.PathChanges) > 0 {
		sb.WriteString("--- Operation Changes ---\n")
		for _, c := range result.PathChanges {
			if c.Type == DiffTypeMoved {
				fmt.Fprintf(&sb, "%s%s %s -> %s\n", diffSymbols[c.Type], c.Method, c.From, c.Path)
				continue
			}
			fmt.Fprintf(&sb, "%s%s %s\n", diffSymbols[c.Type], c.Method, c.Path)
		}
		sb.WriteString("\n")
	}

	if len(result.SchemaChanges) > 0 {
		sb.WriteString("--- Schema Changes ---\n")
		for _, c := range result.SchemaChanges {
			fmt.Fprintf(&sb, "%s%s\n", diffSymbols[c.Type], c.Name)
		}
	}

	return sb.String()
}
