// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package jvm

import (
	"maps"
	"slices"

	"github.com/ngxspec/ngxspec/internal/openapi"
	"github.com/ngxspec/ngxspec/internal/parser"
	"github.com/ngxspec/ngxspec/pkg/types"
)

var requiredAnnotations = []string{"NotNull", "NonNull", "Nonnull", "NotBlank", "NotEmpty"}

// Schemas resolves Java types to OpenAPI schemas. Types declared in the
// scanned sources become components, referenced by $ref, and are only
// emitted once something reaches them.
type Schemas struct {
	declared map[string]*parser.JavaType
	used     map[string]bool
}

// NewSchemas indexes the types declared in files.
func NewSchemas(files []*parser.JavaFile) *Schemas {
	s := &Schemas{
		declared: make(map[string]*parser.JavaType),
		used:     make(map[string]bool),
	}
	for _, f := range files {
		for i := range f.Types {
			s.declared[f.Types[i].Name] = &f.Types[i]
		}
	}
	return s
}

// For returns the schema for a Java type, or nil for void.
func (s *Schemas) For(javaType string) *types.Schema {
	javaType = parser.Unwrap(javaType)

	if elem, ok := parser.ElementType(javaType); ok {
		return &types.Schema{Type: "array", Items: s.orObject(elem)}
	}
	if value, ok := parser.MapValueType(javaType); ok {
		return &types.Schema{Type: "object", AdditionalProperties: s.orObject(value)}
	}

	raw, _ := parser.SplitGeneric(javaType)
	if _, ok := s.declared[raw]; ok {
		s.use(raw)
		return openapi.SchemaRef(raw)
	}

	typ, format := parser.JavaTypeToOpenAPI(javaType)
	if typ == "" {
		return nil
	}
	return &types.Schema{Type: typ, Format: format}
}

func (s *Schemas) orObject(javaType string) *types.Schema {
	if sch := s.For(javaType); sch != nil {
		return sch
	}
	return &types.Schema{Type: "object"}
}

func (s *Schemas) use(name string) {
	if s.used[name] {
		return
	}
	s.used[name] = true
	// resolve nested references now so Components sees all of them
	s.component(s.declared[name])
}

// Components returns the schemas of every declared type reached through
// For, sorted by name. Each schema's Title is the component name.
func (s *Schemas) Components() []types.Schema {
	out := make([]types.Schema, 0, len(s.used))
	for _, name := range slices.Sorted(maps.Keys(s.used)) {
		out = append(out, *s.component(s.declared[name]))
	}
	return out
}

func (s *Schemas) component(t *parser.JavaType) *types.Schema {
	schema := &types.Schema{
		Title:      t.Name,
		Deprecated: t.HasAnnotation("Deprecated"),
	}
	if t.Kind == parser.KindEnum {
		schema.Type = "string"
		for _, c := range t.EnumConstants {
			schema.Enum = append(schema.Enum, c)
		}
		return schema
	}

	schema.Type = "object"
	schema.Properties = make(map[string]*types.Schema)

	add := func(name, javaType string, annos []parser.JavaAnnotation) {
		if parser.FindAnnotation(annos, "JsonIgnore") != nil {
			return
		}
		if a := parser.FindAnnotation(annos, "JsonProperty", "SerializedName"); a != nil && a.Value() != "" {
			name = a.Value()
		}
		if _, dup := schema.Properties[name]; dup {
			return
		}
		prop := s.orObject(javaType)
		if parser.FindAnnotation(annos, "Deprecated") != nil && prop.Ref == "" {
			prop.Deprecated = true
		}
		schema.Properties[name] = prop
		if parser.FindAnnotation(annos, requiredAnnotations...) != nil {
			schema.Required = append(schema.Required, name)
		}
	}

	for _, f := range t.Fields {
		if !f.HasModifier("static") {
			add(f.Name, f.Type, f.Annotations)
		}
	}
	for _, m := range t.Methods {
		if len(m.Parameters) > 0 || m.HasModifier("static") || m.ReturnType == "void" {
			continue
		}
		if name, ok := PropertyName(m.Name); ok {
			add(name, m.ReturnType, m.Annotations)
		}
	}
	return schema
}
