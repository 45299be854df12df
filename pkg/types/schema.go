// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package types

// Schema represents the subset of an OpenAPI schema object that Java
// handler signatures and DTOs can describe.
type Schema struct {
	// Ref is a reference to another schema ($ref)
	Ref string `json:"$ref,omitempty" yaml:"$ref,omitempty"`

	// Type is the data type (string, number, integer, boolean, array, object)
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Format is the data format (int64, date-time, uuid, etc.)
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Pattern comes from a path template regex such as {id: \d+}
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Enum lists the constants of a Java enum
	Enum []any `json:"enum,omitempty" yaml:"enum,omitempty"`

	Nullable   bool `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Deprecated bool `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`

	// Items is the schema for array items
	Items *Schema `json:"items,omitempty" yaml:"items,omitempty"`

	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string           `json:"required,omitempty" yaml:"required,omitempty"`

	// AdditionalProperties is the value schema of a Map
	AdditionalProperties *Schema `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
}
